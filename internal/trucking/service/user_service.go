package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nilp12200/truckproject/internal/trucking/entity"
	"github.com/nilp12200/truckproject/internal/trucking/repository"
)

// UserService manages operator accounts. Module rights and allowed plants
// are stored comma-joined, the way operators are administered upstream.
type UserService struct {
	repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

type CreateUserRequest struct {
	Username      string   `json:"username" binding:"required"`
	Password      string   `json:"password" binding:"required"`
	ContactNumber string   `json:"contact_number" binding:"required"`
	ModuleRights  []string `json:"module_rights"`
	AllowedPlants []string `json:"allowed_plants"`
}

type UpdateUserRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	AllowedPlants string `json:"allowed_plants"`
	ContactNumber string `json:"contact_number"`
}

func (s *UserService) List(ctx context.Context) ([]entity.User, error) {
	return s.repo.FindActive(ctx)
}

func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*entity.User, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" || strings.TrimSpace(req.ContactNumber) == "" {
		return nil, fmt.Errorf("%w: username, password and contact number are required", ErrValidation)
	}

	if existing, err := s.repo.FindByUsername(ctx, strings.TrimSpace(req.Username)); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: username %q is taken", ErrDuplicate, req.Username)
	}

	user := &entity.User{
		Username:      strings.TrimSpace(req.Username),
		Password:      req.Password,
		ContactNumber: strings.TrimSpace(req.ContactNumber),
		Role:          strings.Join(req.ModuleRights, ","),
		AllowedPlants: strings.Join(req.AllowedPlants, ","),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, username string, req *UpdateUserRequest) (*entity.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if req.Username != "" {
		user.Username = strings.TrimSpace(req.Username)
	}
	if req.Password != "" {
		user.Password = req.Password
	}
	user.Role = req.Role
	user.AllowedPlants = req.AllowedPlants
	if req.ContactNumber != "" {
		user.ContactNumber = strings.TrimSpace(req.ContactNumber)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	return s.repo.SoftDelete(ctx, username)
}
