package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/nilp12200/truckproject/internal/trucking/repository"
	"github.com/nilp12200/truckproject/internal/trucking/service"
)

// Handlers is the trucking HTTP handler collection.
type Handlers struct {
	Auth        *AuthHandler
	Plant       *PlantHandler
	User        *UserHandler
	Transaction *TransactionHandler
	Status      *StatusHandler
	Report      *ReportHandler
	SSE         *SSEHandler
}

// NewHandlers wires handlers to their services.
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:        NewAuthHandler(services.Auth),
		Plant:       NewPlantHandler(services.Plant),
		User:        NewUserHandler(services.User),
		Transaction: NewTransactionHandler(services.Itinerary),
		Status:      NewStatusHandler(services.Status),
		Report:      NewReportHandler(services.Report),
		SSE:         NewSSEHandler(),
	}
}

// === response envelope ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40101, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// FromError maps domain failures onto the envelope: validation and illegal
// transitions are client errors, busy trucks and locked rows conflicts,
// unresolved references not-found, everything else an opaque server error.
func FromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrPlantNotInItinerary):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrTruckBusy),
		errors.Is(err, service.ErrRowLocked),
		errors.Is(err, service.ErrDuplicate):
		Conflict(c, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, err.Error())
	default:
		InternalError(c, "server error")
	}
}

func GetUsername(c *gin.Context) string {
	username, _ := c.Get("username")
	if name, ok := username.(string); ok {
		return name
	}
	return ""
}
