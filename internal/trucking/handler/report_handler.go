package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nilp12200/truckproject/internal/trucking/service"
)

type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// TrucksAwaitingCheckIn GET /api/trucks?plantName=
func (h *ReportHandler) TrucksAwaitingCheckIn(c *gin.Context) {
	plantName := c.Query("plantName")
	if plantName == "" {
		BadRequest(c, "plantName is required")
		return
	}

	trucks, err := h.svc.TrucksAwaitingCheckIn(c.Request.Context(), plantName)
	if err != nil {
		InternalError(c, "server error")
		return
	}
	Success(c, trucks)
}

// CheckedInTrucks GET /api/checked-in-trucks?plantName=
func (h *ReportHandler) CheckedInTrucks(c *gin.Context) {
	plantName := c.Query("plantName")
	if plantName == "" {
		BadRequest(c, "plantName is required")
		return
	}

	trucks, err := h.svc.CheckedInTrucks(c.Request.Context(), plantName)
	if err != nil {
		InternalError(c, "server error")
		return
	}
	Success(c, trucks)
}

// PlantQuantities GET /api/truck-plant-quantities?truckNo=
func (h *ReportHandler) PlantQuantities(c *gin.Context) {
	truckNo := c.Query("truckNo")
	if truckNo == "" {
		BadRequest(c, "truckNo is required")
		return
	}

	rows, err := h.svc.PlantQuantities(c.Request.Context(), truckNo)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, rows)
}

// ActiveTrucks GET /api/truck-find
func (h *ReportHandler) ActiveTrucks(c *gin.Context) {
	trucks, err := h.svc.ActiveTrucks(c.Request.Context())
	if err != nil {
		InternalError(c, "failed to fetch truck data")
		return
	}
	Success(c, trucks)
}

// Remarks GET /api/fetch-remarks?truckNo=&plantName=
func (h *ReportHandler) Remarks(c *gin.Context) {
	truckNo := c.Query("truckNo")
	plantName := c.Query("plantName")
	if truckNo == "" || plantName == "" {
		BadRequest(c, "truckNo and plantName are required")
		return
	}

	remarks, err := h.svc.DetailRemarks(c.Request.Context(), truckNo, plantName)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, gin.H{"remarks": remarks})
}

// parseReportFilter reads fromDate/toDate/plant query params. Plants come
// comma-separated ("1,2,3").
func parseReportFilter(c *gin.Context) (*service.ReportFilter, bool) {
	filter := &service.ReportFilter{
		FromDate: c.Query("fromDate"),
		ToDate:   c.Query("toDate"),
		Status:   c.Query("status"),
	}
	if filter.FromDate == "" || filter.ToDate == "" || c.Query("plant") == "" {
		BadRequest(c, "missing required filters")
		return nil, false
	}

	for _, p := range strings.Split(c.Query("plant"), ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			BadRequest(c, "invalid plant parameter")
			return nil, false
		}
		filter.PlantIDs = append(filter.PlantIDs, uint(id))
	}
	return filter, true
}

// Report GET /api/truck-report?fromDate=&toDate=&plant=1,2
func (h *ReportHandler) Report(c *gin.Context) {
	filter, ok := parseReportFilter(c)
	if !ok {
		return
	}

	rows, err := h.svc.Report(c.Request.Context(), filter)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, rows)
}

// Schedule GET /api/truck-schedule?fromDate=&toDate=&plant=&status=
func (h *ReportHandler) Schedule(c *gin.Context) {
	filter, ok := parseReportFilter(c)
	if !ok {
		return
	}
	if filter.Status == "" {
		BadRequest(c, "missing required filters")
		return
	}

	rows, err := h.svc.Schedule(c.Request.Context(), filter)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, rows)
}

// ExportReport GET /api/truck-report/export?fromDate=&toDate=&plant=
func (h *ReportHandler) ExportReport(c *gin.Context) {
	filter, ok := parseReportFilter(c)
	if !ok {
		return
	}

	f, err := h.svc.ExportReport(c.Request.Context(), filter)
	if err != nil {
		FromError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\"Truck_Report.xlsx\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "failed to write report")
	}
}
