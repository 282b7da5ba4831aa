package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nilp12200/truckproject/internal/trucking/service"
)

type PlantHandler struct {
	svc *service.PlantService
}

func NewPlantHandler(svc *service.PlantService) *PlantHandler {
	return &PlantHandler{svc: svc}
}

// ListActive GET /api/plants
func (h *PlantHandler) ListActive(c *gin.Context) {
	plants, err := h.svc.ListActive(c.Request.Context())
	if err != nil {
		InternalError(c, "failed to fetch plant list")
		return
	}
	Success(c, plants)
}

// ListAll GET /api/plant-master
func (h *PlantHandler) ListAll(c *gin.Context) {
	plants, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		InternalError(c, "failed to fetch plants")
		return
	}
	Success(c, plants)
}

// Get GET /api/plant-master/:id
func (h *PlantHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid plant id")
		return
	}

	plant, err := h.svc.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		NotFound(c, "plant not found")
		return
	}
	Success(c, plant)
}

// Create POST /api/plant-master
func (h *PlantHandler) Create(c *gin.Context) {
	var req service.SavePlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	plant, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, plant)
}

// Update PUT /api/plant-master/:id
func (h *PlantHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid plant id")
		return
	}

	var req service.SavePlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	plant, err := h.svc.Update(c.Request.Context(), uint(id), &req)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, plant)
}

// Delete DELETE /api/plant-master/:id
func (h *PlantHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid plant id")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), uint(id)); err != nil {
		FromError(c, err)
		return
	}
	Success(c, gin.H{"message": "plant deleted"})
}
