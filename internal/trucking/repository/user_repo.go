package repository

import (
	"context"
	"errors"

	"github.com/nilp12200/truckproject/internal/trucking/entity"
	"gorm.io/gorm"
)

// UserRepository persists operator accounts.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername resolves an active user, case-insensitively.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?) AND is_deleted = ?", username, false).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindActive lists users that are not soft-deleted, ordered by username.
func (r *UserRepository) FindActive(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("username ASC").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// SoftDelete marks a user deleted without removing the row.
func (r *UserRepository) SoftDelete(ctx context.Context, username string) error {
	res := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("LOWER(username) = LOWER(?)", username).
		Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
