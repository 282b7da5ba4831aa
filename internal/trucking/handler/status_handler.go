package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/nilp12200/truckproject/internal/middleware"
	"github.com/nilp12200/truckproject/internal/trucking/service"
)

type StatusHandler struct {
	svc *service.StatusService
}

func NewStatusHandler(svc *service.StatusService) *StatusHandler {
	return &StatusHandler{svc: svc}
}

type advanceRequest struct {
	TruckNo       string `json:"truck_no" binding:"required"`
	PlantName     string `json:"plant_name" binding:"required"`
	Action        string `json:"action" binding:"required"`
	InvoiceNumber string `json:"invoice_number"`
}

// Advance POST /api/update-truck-status
//
// Records a check-in or check-out. The operator must hold the plant in
// their capability set.
func (h *StatusHandler) Advance(c *gin.Context) {
	var req advanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "truck_no, plant_name and action are required")
		return
	}

	if !middleware.PlantAllowed(c, req.PlantName) {
		Forbidden(c, "not authorized for plant "+req.PlantName)
		return
	}

	result, err := h.svc.Advance(c.Request.Context(), req.TruckNo, req.PlantName, req.Action, req.InvoiceNumber)
	if err != nil {
		FromError(c, err)
		return
	}

	Success(c, result)
}

// PriorityStatus GET /api/check-priority-status?truckNo=&plantName=
func (h *StatusHandler) PriorityStatus(c *gin.Context) {
	truckNo := c.Query("truckNo")
	plantName := c.Query("plantName")
	if truckNo == "" || plantName == "" {
		BadRequest(c, "truckNo and plantName are required")
		return
	}

	status, err := h.svc.QueryPendingPriority(c.Request.Context(), truckNo, plantName)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, status)
}

// FinishedPlant GET /api/finished-plant?truckNo=
func (h *StatusHandler) FinishedPlant(c *gin.Context) {
	truckNo := c.Query("truckNo")
	if truckNo == "" {
		BadRequest(c, "truckNo is required")
		return
	}

	last, err := h.svc.LastFinishedPlant(c.Request.Context(), truckNo)
	if err != nil {
		FromError(c, err)
		return
	}

	if last == "" {
		Success(c, gin.H{"last_finished": nil})
		return
	}
	Success(c, gin.H{"last_finished": last})
}
