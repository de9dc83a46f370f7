package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/csr-compliance-api/internal/dto"
	"github.com/noah-isme/csr-compliance-api/internal/models"
	appErrors "github.com/noah-isme/csr-compliance-api/pkg/errors"
)

// importColumns is the minimum row width: Name, Description, Documents, Status.
const importColumns = 4

type requirementImporter interface {
	CreateWithDocuments(ctx context.Context, req *models.Requirement) error
}

// ImportService seeds requirements and documents from a CSV export.
type ImportService struct {
	store         requirementImporter
	cache         *CacheService
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	defaultStatus models.Status
}

// NewImportService constructs the service.
func NewImportService(store requirementImporter, cacheSvc *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, defaultStatus models.Status) *ImportService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if !defaultStatus.Valid() {
		defaultStatus = models.StatusNonCompliant
	}
	return &ImportService{store: store, cache: cacheSvc, metrics: metrics, validator: validate, logger: logger, defaultStatus: defaultStatus}
}

// Import reads rows of Name, Description, Documents (comma separated), Status.
// The first row is a header. Short or invalid rows are skipped and reported; each
// imported document starts with version 1. The whole file is parsed before any
// row is stored, so a malformed file writes nothing.
func (s *ImportService) Import(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	rows, skipped, err := s.readRows(r)
	if err != nil {
		return nil, err
	}

	result := &dto.ImportResult{Skipped: skipped}
	for _, row := range rows {
		req := s.buildRequirement(row)
		if err := s.store.CreateWithDocuments(ctx, req); err != nil {
			s.logger.Warn("import row failed", zap.Int("line", row.Line), zap.Error(err))
			result.Skipped = append(result.Skipped, dto.ImportSkip{Line: row.Line, Reason: "failed to store row"})
			continue
		}
		result.Requirements++
		result.Documents += len(req.Documents)
		result.Versions += len(req.Documents)
	}
	sort.SliceStable(result.Skipped, func(i, j int) bool {
		return result.Skipped[i].Line < result.Skipped[j].Line
	})

	s.metrics.RecordImportRows(result.Requirements, len(result.Skipped))
	if result.Requirements > 0 {
		s.metrics.RecordMutation("requirement", "import")
		s.cache.InvalidateAll(ctx)
	}
	s.logger.Info("csv import finished",
		zap.Int("requirements", result.Requirements),
		zap.Int("documents", result.Documents),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// readRows parses and validates every data row. It fails on the first malformed
// CSV record and on an empty input.
func (s *ImportService) readRows(r io.Reader) ([]dto.ImportRow, []dto.ImportSkip, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		rows    []dto.ImportRow
		skipped []dto.ImportSkip
	)
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("malformed csv at line %d", line))
		}
		if line == 1 {
			continue
		}
		if len(record) < importColumns {
			skipped = append(skipped, dto.ImportSkip{Line: line, Reason: fmt.Sprintf("expected %d columns, got %d", importColumns, len(record))})
			continue
		}

		row := parseImportRow(line, record)
		if err := s.validator.Struct(row); err != nil {
			skipped = append(skipped, dto.ImportSkip{Line: line, Reason: validationError(err).Error()})
			continue
		}
		rows = append(rows, row)
	}
	if line == 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "csv is empty")
	}
	return rows, skipped, nil
}

func parseImportRow(line int, record []string) dto.ImportRow {
	row := dto.ImportRow{
		Line:        line,
		Name:        strings.TrimSpace(record[0]),
		Description: strings.TrimSpace(record[1]),
		Status:      models.Status(strings.ToLower(strings.TrimSpace(record[3]))),
	}
	for _, name := range strings.Split(record[2], ",") {
		if name = strings.TrimSpace(name); name != "" {
			row.Documents = append(row.Documents, name)
		}
	}
	return row
}

func (s *ImportService) buildRequirement(row dto.ImportRow) *models.Requirement {
	status := row.Status
	if status == "" {
		status = s.defaultStatus
	}
	req := &models.Requirement{
		Name:        row.Name,
		Description: row.Description,
		Status:      status,
		Documents:   make([]models.Document, 0, len(row.Documents)),
	}
	for _, name := range row.Documents {
		req.Documents = append(req.Documents, models.Document{
			Name:        name,
			Description: fmt.Sprintf("Document for %s", row.Name),
			Status:      s.defaultStatus,
			Versions:    []models.DocumentVersion{{Status: s.defaultStatus}},
		})
	}
	return req
}
