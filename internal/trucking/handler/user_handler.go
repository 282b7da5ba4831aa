package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/nilp12200/truckproject/internal/trucking/service"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context())
	if err != nil {
		InternalError(c, "failed to fetch users")
		return
	}
	Success(c, users)
}

// Create POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "username, password and contact number are required")
		return
	}

	user, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, user)
}

// Update PUT /api/users/:username
func (h *UserHandler) Update(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.svc.Update(c.Request.Context(), c.Param("username"), &req)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, user)
}

// Delete DELETE /api/users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("username")); err != nil {
		FromError(c, err)
		return
	}
	Success(c, gin.H{"message": "user deleted"})
}
