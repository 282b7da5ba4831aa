package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nilp12200/truckproject/internal/trucking/entity"
	"gorm.io/gorm"
)

// ReportRepository holds the read-only projections over the transaction
// store. Nothing here mutates state; readers tolerate racing with in-flight
// writers.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// ActiveTruck is one open header in the dispatch overview.
type ActiveTruck struct {
	TruckNo         string    `json:"truck_no"`
	TransactionDate time.Time `json:"transaction_date"`
	CityName        string    `json:"city_name"`
}

// PlantQuantity aggregates the remaining load for one plant of a truck's
// open header.
type PlantQuantity struct {
	PlantName string  `json:"plant_name"`
	Quantity  float64 `json:"quantity"`
	Priority  int     `json:"priority"`
}

// ReportRow is one detail row joined with its header and plant, as served
// by the historical report and the schedule.
type ReportRow struct {
	TruckNo         string     `json:"truck_no"`
	TransactionDate time.Time  `json:"transaction_date"`
	PlantName       string     `json:"plant_name"`
	CheckInTime     *time.Time `json:"check_in_time"`
	CheckOutTime    *time.Time `json:"check_out_time"`
	LoadingSlipNo   string     `json:"loading_slip_no"`
	Qty             float64    `json:"qty"`
	Freight         string     `json:"freight"`
	Priority        int        `json:"priority"`
	Remarks         string     `json:"remarks"`
}

// TrucksAwaitingCheckIn lists trucks with an open header that have not yet
// checked in at the given plant. plantName is passed normalized.
func (r *ReportRepository) TrucksAwaitingCheckIn(ctx context.Context, plantName string) ([]string, error) {
	var trucks []string
	err := r.db.WithContext(ctx).
		Model(&entity.TransactionDetail{}).
		Distinct("m.truck_no").
		Joins("JOIN plant_master p ON p.id = truck_transaction_details.plant_id").
		Joins("JOIN truck_transaction_master m ON m.id = truck_transaction_details.transaction_id").
		Where("LOWER(TRIM(p.name)) = ?", plantName).
		Where("truck_transaction_details.check_in_status = ?", false).
		Where("m.completed = ?", false).
		Pluck("m.truck_no", &trucks).Error
	return trucks, err
}

// CheckedInTrucks lists trucks checked in but not yet checked out at the
// given plant. plantName is passed normalized.
func (r *ReportRepository) CheckedInTrucks(ctx context.Context, plantName string) ([]string, error) {
	var trucks []string
	err := r.db.WithContext(ctx).
		Model(&entity.TransactionDetail{}).
		Distinct("m.truck_no").
		Joins("JOIN plant_master p ON p.id = truck_transaction_details.plant_id").
		Joins("JOIN truck_transaction_master m ON m.id = truck_transaction_details.transaction_id").
		Where("LOWER(TRIM(p.name)) = ?", plantName).
		Where("truck_transaction_details.check_in_status = ?", true).
		Where("truck_transaction_details.check_out_status = ?", false).
		Where("m.completed = ?", false).
		Pluck("m.truck_no", &trucks).Error
	return trucks, err
}

// PlantQuantities aggregates remaining quantity and earliest priority per
// plant for the truck's open header, ordered by that priority.
func (r *ReportRepository) PlantQuantities(ctx context.Context, truckNo string) ([]PlantQuantity, error) {
	var rows []PlantQuantity
	err := r.db.WithContext(ctx).
		Model(&entity.TransactionDetail{}).
		Select("p.name AS plant_name, SUM(truck_transaction_details.qty) AS quantity, MIN(truck_transaction_details.priority) AS priority").
		Joins("JOIN truck_transaction_master m ON m.id = truck_transaction_details.transaction_id").
		Joins("JOIN plant_master p ON p.id = truck_transaction_details.plant_id").
		Where("m.truck_no = ? AND m.completed = ?", truckNo, false).
		Group("p.name").
		Order("MIN(truck_transaction_details.priority) ASC").
		Scan(&rows).Error
	return rows, err
}

// ActiveTrucks lists all open headers, newest trip first.
func (r *ReportRepository) ActiveTrucks(ctx context.Context) ([]ActiveTruck, error) {
	var rows []ActiveTruck
	err := r.db.WithContext(ctx).
		Model(&entity.TruckTransaction{}).
		Select("truck_no, transaction_date, city_name").
		Where("completed = ?", false).
		Order("transaction_date DESC").
		Scan(&rows).Error
	return rows, err
}

// DetailRemarks fetches the remarks of the row for (open header of truck,
// plant).
func (r *ReportRepository) DetailRemarks(ctx context.Context, truckNo string, plantID uint) (string, error) {
	var txnID uint
	err := r.db.WithContext(ctx).
		Model(&entity.TruckTransaction{}).
		Select("id").
		Where("truck_no = ?", truckNo).
		Order("id DESC").
		Limit(1).
		Scan(&txnID).Error
	if err != nil {
		return "", err
	}
	if txnID == 0 {
		return "", ErrNotFound
	}

	var detail entity.TransactionDetail
	err = r.db.WithContext(ctx).
		Where("transaction_id = ? AND plant_id = ?", txnID, plantID).
		First(&detail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return detail.Remarks, nil
}

// Report returns all detail rows for the given plants whose header date
// falls inside [from, to], regardless of completion state.
func (r *ReportRepository) Report(ctx context.Context, from, to time.Time, plantIDs []uint) ([]ReportRow, error) {
	return r.reportRows(ctx, from, to, plantIDs, nil)
}

// ScheduleStatus filters for the schedule projection.
const (
	ScheduleDispatched = "Dispatched"
	ScheduleInTransit  = "InTransit"
	ScheduleCheckedOut = "CheckedOut"
	ScheduleAll        = "All"
)

// Schedule is the report narrowed by per-row check state.
func (r *ReportRepository) Schedule(ctx context.Context, from, to time.Time, plantIDs []uint, status string) ([]ReportRow, error) {
	var cond func(db *gorm.DB) *gorm.DB
	switch status {
	case ScheduleDispatched:
		cond = func(db *gorm.DB) *gorm.DB {
			return db.Where("truck_transaction_details.check_in_status = ? AND truck_transaction_details.check_out_status = ?", false, false)
		}
	case ScheduleInTransit:
		cond = func(db *gorm.DB) *gorm.DB {
			return db.Where("truck_transaction_details.check_in_status = ? AND truck_transaction_details.check_out_status = ?", true, false)
		}
	case ScheduleCheckedOut:
		cond = func(db *gorm.DB) *gorm.DB {
			return db.Where("truck_transaction_details.check_in_status = ? AND truck_transaction_details.check_out_status = ?", true, true)
		}
	case ScheduleAll:
		cond = nil
	default:
		return nil, errors.New("invalid status filter")
	}
	return r.reportRows(ctx, from, to, plantIDs, cond)
}

func (r *ReportRepository) reportRows(ctx context.Context, from, to time.Time, plantIDs []uint, cond func(db *gorm.DB) *gorm.DB) ([]ReportRow, error) {
	query := r.db.WithContext(ctx).
		Model(&entity.TransactionDetail{}).
		Select(`m.truck_no AS truck_no,
			m.transaction_date AS transaction_date,
			p.name AS plant_name,
			truck_transaction_details.check_in_time AS check_in_time,
			truck_transaction_details.check_out_time AS check_out_time,
			truck_transaction_details.loading_slip_no AS loading_slip_no,
			truck_transaction_details.qty AS qty,
			truck_transaction_details.freight AS freight,
			truck_transaction_details.priority AS priority,
			truck_transaction_details.remarks AS remarks`).
		Joins("JOIN plant_master p ON p.id = truck_transaction_details.plant_id").
		Joins("JOIN truck_transaction_master m ON m.id = truck_transaction_details.transaction_id").
		Where("truck_transaction_details.plant_id IN ?", plantIDs).
		Where("m.transaction_date BETWEEN ? AND ?", from, to).
		Order("m.transaction_date DESC")
	if cond != nil {
		query = cond(query)
	}

	var rows []ReportRow
	err := query.Scan(&rows).Error
	return rows, err
}
