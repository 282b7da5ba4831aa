package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nilp12200/truckproject/internal/trucking/entity"
	"github.com/nilp12200/truckproject/internal/trucking/repository"
	"github.com/nilp12200/truckproject/internal/trucking/sse"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Status actions
const (
	ActionCheckIn  = "CheckIn"
	ActionCheckOut = "CheckOut"
)

// StatusService is the check-in/check-out state machine. Each transition
// runs in one database transaction with the target row locked, so two
// concurrent requests for the same row serialize instead of both passing
// the same precondition.
type StatusService struct {
	db        *gorm.DB
	txnRepo   *repository.TransactionRepository
	plantRepo *repository.PlantRepository
	logger    *zap.Logger
}

func NewStatusService(db *gorm.DB, txnRepo *repository.TransactionRepository, plantRepo *repository.PlantRepository, logger *zap.Logger) *StatusService {
	return &StatusService{db: db, txnRepo: txnRepo, plantRepo: plantRepo, logger: logger}
}

// StatusResult reports a successful transition.
type StatusResult struct {
	Message   string                    `json:"message"`
	Completed bool                      `json:"completed"`
	Detail    *entity.TransactionDetail `json:"detail"`
}

// Advance records a check-in or check-out of truckNo at plantName.
//
// Resolution order: open header for the truck, then plant by name, then
// the (header, plant) row. A check-in is legal only while the row has none
// recorded; a check-out requires a prior check-in and stores the invoice
// number. After a successful check-out the header completion is recomputed
// inside the same transaction.
func (s *StatusService) Advance(ctx context.Context, truckNo, plantName, action, invoiceNumber string) (*StatusResult, error) {
	norm := NormalizeTruckNo(truckNo)
	if norm == "" {
		return nil, fmt.Errorf("%w: truck number is required", ErrValidation)
	}
	if action != ActionCheckIn && action != ActionCheckOut {
		return nil, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}

	var result StatusResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var header entity.TruckTransaction
		err := tx.Where("truck_no = ? AND completed = ?", norm, false).
			Order("id DESC").
			First(&header).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: truck %s not found or already completed", repository.ErrNotFound, norm)
			}
			return err
		}

		// No is_deleted filter: rows committed before a plant was retired
		// must still complete their check-in/out pair, or the header could
		// never close. Only new itinerary rows require an active plant.
		var plant entity.Plant
		err = tx.Where("LOWER(TRIM(name)) = ?", NormalizePlantName(plantName)).
			First(&plant).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: plant %q", repository.ErrNotFound, plantName)
			}
			return err
		}

		var detail entity.TransactionDetail
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("transaction_id = ? AND plant_id = ?", header.ID, plant.ID).
			First(&detail).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: truck %s has no visit planned at %s", repository.ErrNotFound, norm, plant.Name)
			}
			return err
		}

		now := time.Now()
		switch action {
		case ActionCheckIn:
			if detail.CheckInStatus {
				return fmt.Errorf("%w: truck %s is already checked in at %s", ErrInvalidTransition, norm, plant.Name)
			}
			detail.CheckInStatus = true
			detail.CheckInTime = &now
			if err := tx.Model(&detail).Updates(map[string]interface{}{
				"check_in_status": true,
				"check_in_time":   now,
			}).Error; err != nil {
				return err
			}
			result.Message = "truck checked in successfully"

		case ActionCheckOut:
			if !detail.CheckInStatus {
				return fmt.Errorf("%w: check in first before check out", ErrInvalidTransition)
			}
			if detail.CheckOutStatus {
				return fmt.Errorf("%w: truck %s has already been checked out at %s", ErrInvalidTransition, norm, plant.Name)
			}
			detail.CheckOutStatus = true
			detail.CheckOutTime = &now
			detail.InvoiceNumber = invoiceNumber
			if err := tx.Model(&detail).Updates(map[string]interface{}{
				"check_out_status": true,
				"check_out_time":   now,
				"invoice_number":   invoiceNumber,
			}).Error; err != nil {
				return err
			}

			completed, err := recomputeCompletion(tx, header.ID)
			if err != nil {
				return err
			}
			result.Completed = completed
			if completed {
				result.Message = "all plants processed, truck process completed"
			} else {
				result.Message = "truck checked out successfully"
			}
		}

		result.Detail = &detail
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("truck status advanced",
		zap.String("truck_no", norm),
		zap.String("plant", plantName),
		zap.String("action", action),
		zap.Bool("completed", result.Completed),
	)

	sse.PublishStatusUpdate(norm, plantName, action)
	if result.Completed {
		sse.PublishItineraryUpdate(norm, "completed")
	}
	return &result, nil
}

// recomputeCompletion marks the header completed exactly when no row of it
// misses a check flag, and reports the outcome. The header row is locked
// first: two final check-outs at different plants of the same trip then
// recompute one after the other, and the second one's count sees the first
// one's committed transition.
func recomputeCompletion(tx *gorm.DB, transactionID uint) (bool, error) {
	var header entity.TruckTransaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", transactionID).
		First(&header).Error
	if err != nil {
		return false, err
	}

	var pending int64
	err = tx.Model(&entity.TransactionDetail{}).
		Where("transaction_id = ?", transactionID).
		Where("check_in_status = ? OR check_out_status = ?", false, false).
		Count(&pending).Error
	if err != nil {
		return false, err
	}
	if pending > 0 {
		return false, nil
	}

	err = tx.Model(&entity.TruckTransaction{}).
		Where("id = ?", transactionID).
		Update("completed", true).Error
	return err == nil, err
}

// PriorityStatus is the read-side gate consulted before Advance: a plant
// may process a truck only while it is the lowest-priority plant with an
// incomplete check-in/out pair.
type PriorityStatus struct {
	HasPending   bool   `json:"has_pending"`
	CanProceed   bool   `json:"can_proceed"`
	NextPriority int    `json:"next_priority,omitempty"`
	NextPlant    string `json:"next_plant,omitempty"`
}

// QueryPendingPriority inspects the truck's open header. HasPending=false
// means either no open itinerary or every row fully processed. A plant not
// part of the itinerary is an error.
func (s *StatusService) QueryPendingPriority(ctx context.Context, truckNo, plantName string) (*PriorityStatus, error) {
	norm := NormalizeTruckNo(truckNo)
	if norm == "" {
		return nil, fmt.Errorf("%w: truck number is required", ErrValidation)
	}

	txn, err := s.txnRepo.FindOpenByTruckNo(ctx, norm)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &PriorityStatus{HasPending: false}, nil
		}
		return nil, err
	}
	if len(txn.Details) == 0 {
		return &PriorityStatus{HasPending: false}, nil
	}

	// Details come back sorted by priority; the first incomplete row is
	// the one whose plant may act.
	var pending *entity.TransactionDetail
	for i := range txn.Details {
		if !txn.Details[i].FullyProcessed() {
			pending = &txn.Details[i]
			break
		}
	}
	if pending == nil {
		return &PriorityStatus{HasPending: false}, nil
	}

	normPlant := NormalizePlantName(plantName)
	var current *entity.TransactionDetail
	for i := range txn.Details {
		d := &txn.Details[i]
		if d.Plant != nil && NormalizePlantName(d.Plant.Name) == normPlant {
			current = d
			break
		}
	}
	if current == nil {
		return nil, fmt.Errorf("%w: plant %q has no row for truck %s", ErrPlantNotInItinerary, plantName, norm)
	}

	status := &PriorityStatus{
		HasPending:   true,
		CanProceed:   current.Priority == pending.Priority,
		NextPriority: pending.Priority,
	}
	if pending.Plant != nil {
		status.NextPlant = pending.Plant.Name
	}
	return status, nil
}

// LastFinishedPlant returns the name of the highest-priority fully
// processed plant of the truck's open header, or "" when none is.
func (s *StatusService) LastFinishedPlant(ctx context.Context, truckNo string) (string, error) {
	norm := NormalizeTruckNo(truckNo)
	if norm == "" {
		return "", fmt.Errorf("%w: truck number is required", ErrValidation)
	}

	txn, err := s.txnRepo.FindOpenByTruckNo(ctx, norm)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	last := ""
	for i := range txn.Details {
		d := &txn.Details[i]
		if d.FullyProcessed() && d.Plant != nil {
			last = d.Plant.Name
		}
	}
	return last, nil
}
