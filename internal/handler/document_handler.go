package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/csr-compliance-api/internal/dto"
	"github.com/noah-isme/csr-compliance-api/internal/models"
	appErrors "github.com/noah-isme/csr-compliance-api/pkg/errors"
	"github.com/noah-isme/csr-compliance-api/pkg/response"
)

type documentService interface {
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
	Update(ctx context.Context, id uint, req dto.UpdateDocumentRequest) error
}

// DocumentHandler serves document endpoints.
type DocumentHandler struct {
	service documentService
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(service documentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// List godoc
// @Summary List documents with their versions
// @Tags Documents
// @Produce json
// @Param ReferenceId query int false "Requirement filter"
// @Param requirement_id query int false "Requirement filter (alias)"
// @Param includeArchived query bool false "Include archived documents"
// @Success 200 {object} dto.DocumentsResponse
// @Failure 400 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	requirementID, err := optionalUintQuery(c, "ReferenceId", "requirement_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.DocumentFilter{
		RequirementID:   requirementID,
		IncludeArchived: boolQuery(c, "includeArchived"),
	}
	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, "documents", items)
}

// Update godoc
// @Summary Partially update a document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param payload body dto.UpdateDocumentRequest true "Changed fields"
// @Success 200 {object} response.MessageBody
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /documents/{id} [patch]
func (h *DocumentHandler) Update(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	if err := h.service.Update(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Document updated")
}
