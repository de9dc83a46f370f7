package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/csr-compliance-api/internal/dto"
	"github.com/noah-isme/csr-compliance-api/internal/models"
	appErrors "github.com/noah-isme/csr-compliance-api/pkg/errors"
	"github.com/noah-isme/csr-compliance-api/pkg/response"
)

type requirementService interface {
	List(ctx context.Context) ([]models.Requirement, error)
	UpdateStatus(ctx context.Context, id uint, req dto.UpdateRequirementRequest) error
}

// RequirementHandler serves requirement endpoints.
type RequirementHandler struct {
	service requirementService
}

// NewRequirementHandler constructs the handler.
func NewRequirementHandler(service requirementService) *RequirementHandler {
	return &RequirementHandler{service: service}
}

// List godoc
// @Summary List requirements with nested documents and versions
// @Tags Requirements
// @Produce json
// @Success 200 {object} dto.RequirementsResponse
// @Failure 500 {object} response.Envelope
// @Router /requirements [get]
func (h *RequirementHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, "requirements", items)
}

// UpdateStatus godoc
// @Summary Update requirement status
// @Tags Requirements
// @Accept json
// @Produce json
// @Param id path int true "Requirement ID"
// @Param payload body dto.UpdateRequirementRequest true "New status"
// @Success 200 {object} response.MessageBody
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requirements/{id} [patch]
func (h *RequirementHandler) UpdateStatus(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	if err := h.service.UpdateStatus(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Requirement status updated")
}
