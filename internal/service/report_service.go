package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/csr-compliance-api/internal/models"
	appErrors "github.com/noah-isme/csr-compliance-api/pkg/errors"
	"github.com/noah-isme/csr-compliance-api/pkg/export"
)

var complianceReportHeaders = []string{"ID", "Requirement", "Status", "Compliant", "Documents", "Ratio"}

type summaryStore interface {
	Summaries(ctx context.Context) ([]models.ComplianceSummary, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportService renders the per-requirement compliance report.
type ReportService struct {
	store  summaryStore
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewReportService constructs the service with the default exporters when none are given.
func NewReportService(store summaryStore, csvExporter csvRenderer, pdfExporter pdfRenderer, logger *zap.Logger) *ReportService {
	if csvExporter == nil {
		csvExporter = export.NewCSVExporter()
	}
	if pdfExporter == nil {
		pdfExporter = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{store: store, csv: csvExporter, pdf: pdfExporter, logger: logger}
}

// CSV renders the report as CSV.
func (s *ReportService) CSV(ctx context.Context) ([]byte, error) {
	data, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
	}
	return out, nil
}

// PDF renders the report as a PDF table.
func (s *ReportService) PDF(ctx context.Context) ([]byte, error) {
	data, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.pdf.Render(data, "Compliance report")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
	}
	return out, nil
}

func (s *ReportService) dataset(ctx context.Context) (export.Dataset, error) {
	rows, err := s.store.Summaries(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load compliance summary")
	}
	data := export.Dataset{
		Headers: complianceReportHeaders,
		Rows:    make([]map[string]string, 0, len(rows)),
		Widths:  []float64{1, 5, 2.5, 1.5, 1.5, 1.2},
	}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"ID":          strconv.FormatUint(uint64(row.RequirementID), 10),
			"Requirement": row.Name,
			"Status":      string(row.Status),
			"Compliant":   strconv.Itoa(row.Compliant),
			"Documents":   strconv.Itoa(row.Total),
			"Ratio":       fmt.Sprintf("%.0f%%", row.Ratio()*100),
		})
	}
	return data, nil
}
