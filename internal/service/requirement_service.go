package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/csr-compliance-api/internal/dto"
	"github.com/noah-isme/csr-compliance-api/internal/models"
	"github.com/noah-isme/csr-compliance-api/pkg/cache"
	appErrors "github.com/noah-isme/csr-compliance-api/pkg/errors"
)

type requirementStore interface {
	List(ctx context.Context) ([]models.Requirement, error)
	UpdateStatus(ctx context.Context, id uint, status models.Status) error
}

type documentLister interface {
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
}

// RequirementService lists requirements with their documents and updates requirement status.
type RequirementService struct {
	requirements requirementStore
	documents    documentLister
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewRequirementService constructs the service. documents is usually the DocumentService,
// so nested documents carry their versions.
func NewRequirementService(requirements requirementStore, documents documentLister, cacheSvc *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RequirementService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequirementService{requirements: requirements, documents: documents, cache: cacheSvc, metrics: metrics, validator: validate, logger: logger}
}

// List returns all requirements ordered by ID, each with its non-archived documents.
func (s *RequirementService) List(ctx context.Context) ([]models.Requirement, error) {
	key := cache.Key("requirements")
	var cached []models.Requirement
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	reqs, err := s.requirements.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requirements")
	}
	docs, err := s.documents.List(ctx, models.DocumentFilter{})
	if err != nil {
		return nil, err
	}
	byReq := make(map[uint][]models.Document, len(reqs))
	for _, doc := range docs {
		byReq[doc.RequirementID] = append(byReq[doc.RequirementID], doc)
	}
	for i := range reqs {
		reqs[i].Documents = byReq[reqs[i].ID]
		if reqs[i].Documents == nil {
			reqs[i].Documents = []models.Document{}
		}
	}
	s.cache.Set(ctx, key, reqs)
	return reqs, nil
}

// UpdateStatus sets the requirement's own status. Documents are not touched.
func (s *RequirementService) UpdateStatus(ctx context.Context, id uint, req dto.UpdateRequirementRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err)
	}
	if err := s.requirements.UpdateStatus(ctx, id, *req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "requirement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update requirement")
	}
	s.metrics.RecordMutation("requirement", "status")
	s.cache.InvalidateAll(ctx)
	s.logger.Info("requirement status updated", zap.Uint("requirement_id", id), zap.String("status", string(*req.Status)))
	return nil
}
