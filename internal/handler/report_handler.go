package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/csr-compliance-api/pkg/response"
)

type reportService interface {
	CSV(ctx context.Context) ([]byte, error)
	PDF(ctx context.Context) ([]byte, error)
}

// ReportHandler serves the compliance report downloads.
type ReportHandler struct {
	service reportService
	now     func() time.Time
}

// NewReportHandler constructs the handler.
func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service, now: time.Now}
}

// CSV godoc
// @Summary Compliance report as CSV
// @Tags Reports
// @Produce text/csv
// @Success 200 {file} binary
// @Router /reports/compliance.csv [get]
func (h *ReportHandler) CSV(c *gin.Context) {
	h.render(c, "text/csv", "csv", h.service.CSV)
}

// PDF godoc
// @Summary Compliance report as PDF
// @Tags Reports
// @Produce application/pdf
// @Success 200 {file} binary
// @Router /reports/compliance.pdf [get]
func (h *ReportHandler) PDF(c *gin.Context) {
	h.render(c, "application/pdf", "pdf", h.service.PDF)
}

func (h *ReportHandler) render(c *gin.Context, contentType, ext string, build func(context.Context) ([]byte, error)) {
	body, err := build(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("compliance-%s.%s", h.now().UTC().Format("20060102"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, body)
}
