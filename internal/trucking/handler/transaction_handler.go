package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nilp12200/truckproject/internal/trucking/service"
)

type TransactionHandler struct {
	svc *service.ItineraryService
}

func NewTransactionHandler(svc *service.ItineraryService) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

// Submit POST /api/truck-transaction
//
// Creates or updates a full itinerary (header + rows) atomically. A truck
// with an open or unfinished itinerary is rejected with 409.
func (h *TransactionHandler) Submit(c *gin.Context) {
	var req service.SubmitItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	transactionID, err := h.svc.Submit(c.Request.Context(), &req)
	if err != nil {
		FromError(c, err)
		return
	}

	Success(c, gin.H{"transaction_id": transactionID})
}

// Open GET /api/truck-transaction/:truckNo
//
// Fetches the truck's open itinerary with its rows ordered by priority.
func (h *TransactionHandler) Open(c *gin.Context) {
	txn, err := h.svc.Open(c.Request.Context(), c.Param("truckNo"))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, txn)
}

// DeleteDetail DELETE /api/truck-transaction/detail/:detailId
//
// Locked rows (check-in or check-out recorded) are rejected with 409.
func (h *TransactionHandler) DeleteDetail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("detailId"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid detail id")
		return
	}

	if err := h.svc.DeleteDetail(c.Request.Context(), uint(id)); err != nil {
		FromError(c, err)
		return
	}
	Success(c, gin.H{"success": true})
}
