package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nilp12200/truckproject/internal/trucking/entity"
	"github.com/nilp12200/truckproject/internal/trucking/repository"
	"github.com/nilp12200/truckproject/internal/trucking/sse"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ItineraryService validates and writes a full itinerary (header + row set)
// in one database transaction: either every write of a submission commits
// or none does.
type ItineraryService struct {
	db      *gorm.DB
	txnRepo *repository.TransactionRepository
	logger  *zap.Logger
}

func NewItineraryService(db *gorm.DB, txnRepo *repository.TransactionRepository, logger *zap.Logger) *ItineraryService {
	return &ItineraryService{db: db, txnRepo: txnRepo, logger: logger}
}

// ItineraryRow is one plant visit in a submission. DetailID identifies a
// previously persisted row; zero means a new row.
type ItineraryRow struct {
	DetailID      uint    `json:"detail_id"`
	PlantName     string  `json:"plant_name"`
	LoadingSlipNo string  `json:"loading_slip_no"`
	Qty           float64 `json:"qty"`
	Priority      int     `json:"priority"`
	Remarks       string  `json:"remarks"`
	Freight       string  `json:"freight"`
}

// SubmitItineraryRequest carries the header fields and the full row set.
// TransactionID zero means a new itinerary.
type SubmitItineraryRequest struct {
	TransactionID   uint           `json:"transaction_id"`
	TruckNo         string         `json:"truck_no"`
	TransactionDate string         `json:"transaction_date"`
	CityName        string         `json:"city_name"`
	Transporter     string         `json:"transporter"`
	AmountPerTon    float64        `json:"amount_per_ton"`
	TruckWeight     float64        `json:"truck_weight"`
	DeliverPoint    string         `json:"deliver_point"`
	Remarks         string         `json:"remarks"`
	Rows            []ItineraryRow `json:"rows"`
}

// Submit validates the request, upserts the header and reconciles the row
// set against what is persisted. Rows the operator removed are deleted
// unless locked; locked rows are carried forward untouched, their plant,
// quantity and priority never change again.
// Any failure, including an unresolved plant name mid-batch, rolls back
// the entire submission.
func (s *ItineraryService) Submit(ctx context.Context, req *SubmitItineraryRequest) (uint, error) {
	truckNo := NormalizeTruckNo(req.TruckNo)
	if truckNo == "" {
		return 0, fmt.Errorf("%w: truck number is required", ErrValidation)
	}
	date, err := time.Parse("2006-01-02", req.TransactionDate)
	if err != nil {
		return 0, fmt.Errorf("%w: transaction date is required (YYYY-MM-DD)", ErrValidation)
	}
	if strings.TrimSpace(req.CityName) == "" {
		return 0, fmt.Errorf("%w: city name is required", ErrValidation)
	}
	if strings.TrimSpace(req.DeliverPoint) == "" {
		return 0, fmt.Errorf("%w: deliver point is required", ErrValidation)
	}
	if req.TruckWeight <= 0 {
		return 0, fmt.Errorf("%w: truck weight is required", ErrValidation)
	}

	rows, err := validateRows(req.Rows)
	if err != nil {
		return 0, err
	}

	var transactionID uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.TransactionID == 0 {
			if err := checkTruckFree(tx, truckNo); err != nil {
				return err
			}
		}

		header, err := upsertHeader(tx, req, truckNo, date)
		if err != nil {
			return err
		}
		transactionID = header.ID

		return reconcileRows(tx, transactionID, rows)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("itinerary submitted",
		zap.String("truck_no", truckNo),
		zap.Uint("transaction_id", transactionID),
		zap.Int("rows", len(rows)),
	)

	sse.PublishItineraryUpdate(truckNo, "saved")
	return transactionID, nil
}

// validateRows drops rows with an empty plant name, then checks the
// remaining set: required fields per row, and no duplicate plant or
// priority within the submission.
func validateRows(in []ItineraryRow) ([]ItineraryRow, error) {
	rows := make([]ItineraryRow, 0, len(in))
	for _, row := range in {
		if strings.TrimSpace(row.PlantName) != "" {
			rows = append(rows, row)
		}
	}

	seenPlants := make(map[string]bool, len(rows))
	seenPriorities := make(map[int]bool, len(rows))
	for i := range rows {
		row := &rows[i]
		if strings.TrimSpace(row.LoadingSlipNo) == "" {
			return nil, fmt.Errorf("%w: loading slip number is required on every row", ErrValidation)
		}
		if row.Qty <= 0 {
			return nil, fmt.Errorf("%w: quantity is required on every row", ErrValidation)
		}
		if row.Priority <= 0 {
			return nil, fmt.Errorf("%w: priority is required on every row", ErrValidation)
		}
		switch row.Freight {
		case "":
			row.Freight = entity.FreightToPay
		case entity.FreightToPay, entity.FreightPaid:
		default:
			return nil, fmt.Errorf("%w: freight must be %s or %s", ErrValidation, entity.FreightToPay, entity.FreightPaid)
		}

		norm := NormalizePlantName(row.PlantName)
		if seenPlants[norm] {
			return nil, fmt.Errorf("%w: plant %q appears more than once", ErrValidation, row.PlantName)
		}
		seenPlants[norm] = true
		if seenPriorities[row.Priority] {
			return nil, fmt.Errorf("%w: priority %d assigned to more than one plant", ErrValidation, row.Priority)
		}
		seenPriorities[row.Priority] = true
	}
	return rows, nil
}

// checkTruckFree rejects a new itinerary while the truck still has an open
// header or any row anywhere with an incomplete check-in/out pair.
func checkTruckFree(tx *gorm.DB, truckNo string) error {
	var count int64
	if err := tx.Model(&entity.TruckTransaction{}).
		Where("truck_no = ? AND completed = ?", truckNo, false).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: truck %s already has an open itinerary", ErrTruckBusy, truckNo)
	}

	if err := tx.Model(&entity.TransactionDetail{}).
		Joins("JOIN truck_transaction_master m ON m.id = truck_transaction_details.transaction_id").
		Where("m.truck_no = ?", truckNo).
		Where("truck_transaction_details.check_in_status = ? OR truck_transaction_details.check_out_status = ?", false, false).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: truck %s has unfinished plant visits, complete check-out first", ErrTruckBusy, truckNo)
	}
	return nil
}

func upsertHeader(tx *gorm.DB, req *SubmitItineraryRequest, truckNo string, date time.Time) (*entity.TruckTransaction, error) {
	if req.TransactionID == 0 {
		header := &entity.TruckTransaction{
			TruckNo:         truckNo,
			TransactionDate: date,
			CityName:        req.CityName,
			Transporter:     req.Transporter,
			AmountPerTon:    req.AmountPerTon,
			TruckWeight:     req.TruckWeight,
			DeliverPoint:    req.DeliverPoint,
			Remarks:         req.Remarks,
		}
		if err := tx.Create(header).Error; err != nil {
			return nil, err
		}
		return header, nil
	}

	var header entity.TruckTransaction
	if err := tx.Where("id = ?", req.TransactionID).First(&header).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: itinerary %d", repository.ErrNotFound, req.TransactionID)
		}
		return nil, err
	}
	if header.Completed {
		return nil, fmt.Errorf("%w: itinerary %d is already completed", ErrTruckBusy, req.TransactionID)
	}
	// Reassigning the header to a different truck must not give that truck
	// a second open itinerary.
	if header.TruckNo != truckNo {
		if err := checkTruckFree(tx, truckNo); err != nil {
			return nil, err
		}
	}

	err := tx.Model(&header).Updates(map[string]interface{}{
		"truck_no":         truckNo,
		"transaction_date": date,
		"city_name":        req.CityName,
		"transporter":      req.Transporter,
		"amount_per_ton":   req.AmountPerTon,
		"truck_weight":     req.TruckWeight,
		"deliver_point":    req.DeliverPoint,
		"remarks":          req.Remarks,
	}).Error
	if err != nil {
		return nil, err
	}
	return &header, nil
}

// reconcileRows diffs the incoming row set against the persisted rows of
// the header: delete unlocked rows the operator removed, update rows that
// carry a detail ID, insert the rest. Locked rows are never deleted and
// their fields are never rewritten here; only the status engine touches
// them.
func reconcileRows(tx *gorm.DB, transactionID uint, rows []ItineraryRow) error {
	var existing []entity.TransactionDetail
	if err := tx.Where("transaction_id = ?", transactionID).Find(&existing).Error; err != nil {
		return err
	}
	existingByID := make(map[uint]*entity.TransactionDetail, len(existing))
	for i := range existing {
		existingByID[existing[i].ID] = &existing[i]
	}

	incoming := make(map[uint]bool, len(rows))
	for _, row := range rows {
		if row.DetailID != 0 {
			incoming[row.DetailID] = true
		}
	}

	var obsolete []uint
	for i := range existing {
		if !existing[i].Locked() && !incoming[existing[i].ID] {
			obsolete = append(obsolete, existing[i].ID)
		}
	}
	if len(obsolete) > 0 {
		if err := tx.Where("id IN ?", obsolete).Delete(&entity.TransactionDetail{}).Error; err != nil {
			return err
		}
	}

	for _, row := range rows {
		var plant entity.Plant
		err := tx.Where("LOWER(TRIM(name)) = ? AND is_deleted = ?", NormalizePlantName(row.PlantName), false).
			First(&plant).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: plant %q", repository.ErrNotFound, row.PlantName)
			}
			return err
		}

		if row.DetailID != 0 {
			detail, ok := existingByID[row.DetailID]
			if !ok {
				return fmt.Errorf("%w: detail row %d", repository.ErrNotFound, row.DetailID)
			}
			if detail.Locked() {
				// Carried forward untouched, even if the client sent edits.
				continue
			}
			err := tx.Model(&entity.TransactionDetail{}).
				Where("id = ?", detail.ID).
				Updates(map[string]interface{}{
					"plant_id":        plant.ID,
					"loading_slip_no": row.LoadingSlipNo,
					"qty":             row.Qty,
					"priority":        row.Priority,
					"remarks":         row.Remarks,
					"freight":         row.Freight,
				}).Error
			if err != nil {
				return err
			}
			continue
		}

		detail := &entity.TransactionDetail{
			TransactionID: transactionID,
			PlantID:       plant.ID,
			LoadingSlipNo: row.LoadingSlipNo,
			Qty:           row.Qty,
			Priority:      row.Priority,
			Remarks:       row.Remarks,
			Freight:       row.Freight,
		}
		if err := tx.Create(detail).Error; err != nil {
			return err
		}
	}
	return nil
}

// Open returns the truck's open itinerary with rows ordered by priority.
func (s *ItineraryService) Open(ctx context.Context, truckNo string) (*entity.TruckTransaction, error) {
	norm := NormalizeTruckNo(truckNo)
	if norm == "" {
		return nil, fmt.Errorf("%w: truck number is required", ErrValidation)
	}
	return s.txnRepo.FindOpenByTruckNo(ctx, norm)
}

// DeleteDetail removes one detail row, enforcing the lock invariant at the
// store boundary: a row with a recorded check-in or check-out is never
// deleted.
func (s *ItineraryService) DeleteDetail(ctx context.Context, detailID uint) error {
	detail, err := s.txnRepo.FindDetailByID(ctx, detailID)
	if err != nil {
		return err
	}
	if detail.Locked() {
		return fmt.Errorf("%w: detail row %d has check-in/out recorded", ErrRowLocked, detailID)
	}
	return s.txnRepo.DeleteDetail(ctx, detailID)
}
