package repository

import (
	"context"
	"errors"

	"github.com/nilp12200/truckproject/internal/trucking/entity"
	"gorm.io/gorm"
)

// TransactionRepository persists itinerary headers and detail rows.
// Multi-step writes (submission, status transitions) run in the service
// layer inside db.Transaction; this repository covers the read paths and
// single-row operations.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// FindOpenByTruckNo returns the truck's open header with its detail rows
// ordered by priority. TruckNo is matched against the stored normalized
// form. If the invariant is ever violated and more than one open header
// exists, the most recent wins.
func (r *TransactionRepository) FindOpenByTruckNo(ctx context.Context, truckNo string) (*entity.TruckTransaction, error) {
	var txn entity.TruckTransaction
	err := r.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("priority ASC")
		}).
		Preload("Details.Plant").
		Where("truck_no = ? AND completed = ?", truckNo, false).
		Order("id DESC").
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionRepository) FindDetailByID(ctx context.Context, id uint) (*entity.TransactionDetail, error) {
	var detail entity.TransactionDetail
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&detail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &detail, nil
}

// DeleteDetail removes one detail row. Lock enforcement happens in the
// service before calling this.
func (r *TransactionRepository) DeleteDetail(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.TransactionDetail{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
