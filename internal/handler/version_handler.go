package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/csr-compliance-api/internal/dto"
	"github.com/noah-isme/csr-compliance-api/internal/models"
	"github.com/noah-isme/csr-compliance-api/internal/service"
	appErrors "github.com/noah-isme/csr-compliance-api/pkg/errors"
	"github.com/noah-isme/csr-compliance-api/pkg/response"
)

type versionService interface {
	Create(ctx context.Context, documentID uint) (*models.DocumentVersion, error)
	Update(ctx context.Context, id uint, req dto.UpdateVersionRequest) error
}

type attachmentService interface {
	Attach(ctx context.Context, versionID uint, upload service.AttachmentUpload) (*models.DocumentVersion, error)
	DownloadURL(ctx context.Context, versionID uint) (*dto.DownloadURLResponse, error)
	Download(ctx context.Context, versionID uint, token string) (*service.AttachmentDownload, error)
}

// VersionHandler serves document version endpoints, including attachments.
type VersionHandler struct {
	versions    versionService
	attachments attachmentService
}

// NewVersionHandler constructs the handler.
func NewVersionHandler(versions versionService, attachments attachmentService) *VersionHandler {
	return &VersionHandler{versions: versions, attachments: attachments}
}

// Create godoc
// @Summary Create the next version of a document
// @Tags Versions
// @Produce json
// @Param id path int true "Document ID"
// @Success 201 {object} dto.CreateVersionResponse
// @Failure 404 {object} response.Envelope
// @Router /documents/{id}/versions [post]
func (h *VersionHandler) Create(c *gin.Context) {
	documentID, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	version, err := h.versions.Create(c.Request.Context(), documentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, dto.CreateVersionResponse{
		Message: "Version created",
		Version: *version,
	})
}

// Update godoc
// @Summary Partially update a version
// @Tags Versions
// @Accept json
// @Produce json
// @Param id path int true "Version ID"
// @Param payload body dto.UpdateVersionRequest true "Changed fields"
// @Success 200 {object} response.MessageBody
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/versions/{id} [patch]
func (h *VersionHandler) Update(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	if err := h.versions.Update(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Version updated")
}

// UploadFile godoc
// @Summary Attach or replace the file of a version
// @Tags Versions
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Version ID"
// @Param file formData file true "Evidence file"
// @Success 200 {object} response.MessageBody
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /documents/versions/{id}/upload-file [patch]
func (h *VersionHandler) UploadFile(c *gin.Context) {
	if h.attachments == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "attachment service not configured"))
		return
	}
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
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

	reader, ok := src.(io.ReadSeeker)
	if !ok {
		buf, readErr := io.ReadAll(src)
		if readErr != nil {
			response.Error(c, appErrors.Wrap(readErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file"))
			return
		}
		reader = bytes.NewReader(buf)
	}
	upload := service.AttachmentUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  reader,
	}
	if _, err := h.attachments.Attach(c.Request.Context(), id, upload); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "File uploaded")
}

// DownloadURL godoc
// @Summary Issue a signed download link for a version's file
// @Tags Versions
// @Produce json
// @Param id path int true "Version ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/versions/{id}/download-url [get]
func (h *VersionHandler) DownloadURL(c *gin.Context) {
	if h.attachments == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "attachment service not configured"))
		return
	}
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	link, err := h.attachments.DownloadURL(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Data(c, http.StatusOK, link)
}

// Download godoc
// @Summary Download a version's file via signed token
// @Tags Versions
// @Produce octet-stream
// @Param id path int true "Version ID"
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /documents/versions/{id}/file [get]
func (h *VersionHandler) Download(c *gin.Context) {
	if h.attachments == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "attachment service not configured"))
		return
	}
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	token := c.Query("token")
	if strings.TrimSpace(token) == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.attachments.Download(c.Request.Context(), id, token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.Reader.Close() //nolint:errcheck
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, result.Size, result.ContentType, result.Reader, nil)
}
