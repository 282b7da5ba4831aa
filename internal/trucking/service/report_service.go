package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nilp12200/truckproject/internal/trucking/repository"
	"github.com/xuri/excelize/v2"
)

// ReportService exposes the read-only projections: plant queues, remaining
// quantities, active trucks and the historical report.
type ReportService struct {
	reports *repository.ReportRepository
	plants  *repository.PlantRepository
}

func NewReportService(reports *repository.ReportRepository, plants *repository.PlantRepository) *ReportService {
	return &ReportService{reports: reports, plants: plants}
}

func (s *ReportService) TrucksAwaitingCheckIn(ctx context.Context, plantName string) ([]string, error) {
	return s.reports.TrucksAwaitingCheckIn(ctx, NormalizePlantName(plantName))
}

func (s *ReportService) CheckedInTrucks(ctx context.Context, plantName string) ([]string, error) {
	return s.reports.CheckedInTrucks(ctx, NormalizePlantName(plantName))
}

func (s *ReportService) PlantQuantities(ctx context.Context, truckNo string) ([]repository.PlantQuantity, error) {
	norm := NormalizeTruckNo(truckNo)
	if norm == "" {
		return nil, fmt.Errorf("%w: truck number is required", ErrValidation)
	}
	return s.reports.PlantQuantities(ctx, norm)
}

func (s *ReportService) ActiveTrucks(ctx context.Context) ([]repository.ActiveTruck, error) {
	return s.reports.ActiveTrucks(ctx)
}

// DetailRemarks returns the remarks of the row for the truck's latest
// header at the given plant.
func (s *ReportService) DetailRemarks(ctx context.Context, truckNo, plantName string) (string, error) {
	norm := NormalizeTruckNo(truckNo)
	if norm == "" {
		return "", fmt.Errorf("%w: truck number is required", ErrValidation)
	}
	plant, err := s.plants.FindByName(ctx, NormalizePlantName(plantName))
	if err != nil {
		return "", err
	}
	return s.reports.DetailRemarks(ctx, norm, plant.ID)
}

// ReportFilter is the shared filter of the report and schedule queries.
type ReportFilter struct {
	FromDate string `json:"from_date" form:"from_date"`
	ToDate   string `json:"to_date" form:"to_date"`
	PlantIDs []uint `json:"plant_ids" form:"plant_ids"`
	Status   string `json:"status" form:"status"`
}

func (f *ReportFilter) dates() (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", f.FromDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from_date is required (YYYY-MM-DD)", ErrValidation)
	}
	to, err := time.Parse("2006-01-02", f.ToDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to_date is required (YYYY-MM-DD)", ErrValidation)
	}
	return from, to, nil
}

// Report returns historical rows across all headers regardless of
// completion, filtered by date range and plant set.
func (s *ReportService) Report(ctx context.Context, filter *ReportFilter) ([]repository.ReportRow, error) {
	from, to, err := filter.dates()
	if err != nil {
		return nil, err
	}
	if len(filter.PlantIDs) == 0 {
		return nil, fmt.Errorf("%w: no plants selected", ErrValidation)
	}
	return s.reports.Report(ctx, from, to, filter.PlantIDs)
}

// Schedule is the report narrowed to one per-row check state.
func (s *ReportService) Schedule(ctx context.Context, filter *ReportFilter) ([]repository.ReportRow, error) {
	from, to, err := filter.dates()
	if err != nil {
		return nil, err
	}
	if len(filter.PlantIDs) == 0 {
		return nil, fmt.Errorf("%w: no plants selected", ErrValidation)
	}
	switch filter.Status {
	case repository.ScheduleDispatched, repository.ScheduleInTransit, repository.ScheduleCheckedOut, repository.ScheduleAll:
	default:
		return nil, fmt.Errorf("%w: invalid status filter %q", ErrValidation, filter.Status)
	}
	return s.reports.Schedule(ctx, from, to, filter.PlantIDs, filter.Status)
}

var reportExportHeaders = []string{
	"Truck No", "Date", "Plant", "Check-In", "Check-Out",
	"Slip No", "Qty", "Freight", "Priority", "Remarks",
}

// ExportReport renders the historical report as an xlsx workbook.
func (s *ReportService) ExportReport(ctx context.Context, filter *ReportFilter) (*excelize.File, error) {
	rows, err := s.Report(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Truck Report"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	for i, h := range reportExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	colWidths := []float64{14, 12, 20, 18, 18, 14, 10, 10, 8, 24}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	for i, row := range rows {
		r := i + 2
		values := []interface{}{
			row.TruckNo,
			row.TransactionDate.Format("2006-01-02"),
			row.PlantName,
			formatTime(row.CheckInTime),
			formatTime(row.CheckOutTime),
			row.LoadingSlipNo,
			row.Qty,
			row.Freight,
			row.Priority,
			row.Remarks,
		}
		for j, v := range values {
			col, _ := excelize.ColumnNumberToName(j + 1)
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, r), v)
		}
	}

	return f, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
