package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nilp12200/truckproject/internal/trucking/entity"
	"github.com/nilp12200/truckproject/internal/trucking/repository"
)

// PlantService manages the plant directory.
type PlantService struct {
	repo *repository.PlantRepository
}

func NewPlantService(repo *repository.PlantRepository) *PlantService {
	return &PlantService{repo: repo}
}

type SavePlantRequest struct {
	Name          string `json:"plant_name" binding:"required"`
	Address       string `json:"plant_address"`
	ContactPerson string `json:"contact_person"`
	MobileNo      string `json:"mobile_no"`
	Remarks       string `json:"remarks"`
}

func (s *PlantService) ListActive(ctx context.Context) ([]entity.Plant, error) {
	return s.repo.FindActive(ctx)
}

func (s *PlantService) ListAll(ctx context.Context) ([]entity.Plant, error) {
	return s.repo.FindAll(ctx)
}

func (s *PlantService) GetByID(ctx context.Context, id uint) (*entity.Plant, error) {
	return s.repo.FindByID(ctx, id)
}

// Create adds a plant. Names must be unique under normalization, otherwise
// itinerary rows could resolve ambiguously.
func (s *PlantService) Create(ctx context.Context, req *SavePlantRequest) (*entity.Plant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: plant name is required", ErrValidation)
	}
	if existing, err := s.repo.FindActiveByName(ctx, NormalizePlantName(name)); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: plant %q already exists", ErrDuplicate, name)
	}

	plant := &entity.Plant{
		Name:          name,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
		MobileNo:      req.MobileNo,
		Remarks:       req.Remarks,
	}
	if err := s.repo.Create(ctx, plant); err != nil {
		return nil, fmt.Errorf("create plant: %w", err)
	}
	return plant, nil
}

func (s *PlantService) Update(ctx context.Context, id uint, req *SavePlantRequest) (*entity.Plant, error) {
	plant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: plant name is required", ErrValidation)
	}
	if NormalizePlantName(name) != NormalizePlantName(plant.Name) {
		if existing, err := s.repo.FindActiveByName(ctx, NormalizePlantName(name)); err == nil && existing != nil {
			return nil, fmt.Errorf("%w: plant %q already exists", ErrDuplicate, name)
		}
	}

	plant.Name = name
	plant.Address = req.Address
	plant.ContactPerson = req.ContactPerson
	plant.MobileNo = req.MobileNo
	plant.Remarks = req.Remarks
	if err := s.repo.Update(ctx, plant); err != nil {
		return nil, fmt.Errorf("update plant: %w", err)
	}
	return plant, nil
}

// Delete soft-deletes; historical reports keep referencing the plant.
func (s *PlantService) Delete(ctx context.Context, id uint) error {
	return s.repo.SoftDelete(ctx, id)
}
