package repository

import (
	"context"
	"errors"

	"github.com/nilp12200/truckproject/internal/trucking/entity"
	"gorm.io/gorm"
)

// PlantRepository persists the plant directory.
type PlantRepository struct {
	db *gorm.DB
}

func NewPlantRepository(db *gorm.DB) *PlantRepository {
	return &PlantRepository{db: db}
}

// FindActive lists plants that are not soft-deleted, ordered by name.
func (r *PlantRepository) FindActive(ctx context.Context) ([]entity.Plant, error) {
	var plants []entity.Plant
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("name ASC").
		Find(&plants).Error
	return plants, err
}

// FindAll lists every plant including soft-deleted ones.
func (r *PlantRepository) FindAll(ctx context.Context) ([]entity.Plant, error) {
	var plants []entity.Plant
	err := r.db.WithContext(ctx).Order("name ASC").Find(&plants).Error
	return plants, err
}

func (r *PlantRepository) FindByID(ctx context.Context, id uint) (*entity.Plant, error) {
	var plant entity.Plant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&plant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &plant, nil
}

// FindByName resolves a plant by its normalized (trimmed, lowercased) name
// regardless of deletion state. Lookups against already-committed itinerary
// rows use this so a retired plant stays addressable.
func (r *PlantRepository) FindByName(ctx context.Context, normName string) (*entity.Plant, error) {
	var plant entity.Plant
	err := r.db.WithContext(ctx).
		Where("LOWER(TRIM(name)) = ?", normName).
		First(&plant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &plant, nil
}

// FindActiveByName resolves a plant by its normalized (trimmed, lowercased)
// name. The caller passes the name already normalized.
func (r *PlantRepository) FindActiveByName(ctx context.Context, normName string) (*entity.Plant, error) {
	var plant entity.Plant
	err := r.db.WithContext(ctx).
		Where("LOWER(TRIM(name)) = ? AND is_deleted = ?", normName, false).
		First(&plant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &plant, nil
}

func (r *PlantRepository) Create(ctx context.Context, plant *entity.Plant) error {
	return r.db.WithContext(ctx).Create(plant).Error
}

func (r *PlantRepository) Update(ctx context.Context, plant *entity.Plant) error {
	return r.db.WithContext(ctx).Save(plant).Error
}

// SoftDelete marks a plant deleted without removing the row.
func (r *PlantRepository) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Plant{}).
		Where("id = ?", id).
		Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
