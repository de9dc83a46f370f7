package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/csr-compliance-api/internal/dto"
	appErrors "github.com/noah-isme/csr-compliance-api/pkg/errors"
	"github.com/noah-isme/csr-compliance-api/pkg/response"
)

type importService interface {
	Import(ctx context.Context, r io.Reader) (*dto.ImportResult, error)
}

// ImportHandler serves the CSV bulk import.
type ImportHandler struct {
	service importService
}

// NewImportHandler constructs the handler.
func NewImportHandler(service importService) *ImportHandler {
	return &ImportHandler{service: service}
}

// UploadCSV godoc
// @Summary Import requirements and documents from CSV
// @Description Columns: Name, Description, Documents (comma separated), Status. The first row is a header.
// @Tags Import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /upload-csv [post]
func (h *ImportHandler) UploadCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	result, err := h.service.Import(c.Request.Context(), src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Data(c, http.StatusOK, result, map[string]interface{}{"message": "CSV data imported"})
}
