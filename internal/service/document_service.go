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

type documentStore interface {
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
	GetByID(ctx context.Context, id uint) (*models.Document, error)
	Update(ctx context.Context, id uint, patch models.DocumentPatch) error
}

type versionLister interface {
	ListByDocuments(ctx context.Context, documentIDs []uint) ([]models.DocumentVersion, error)
}

// DocumentService serves document listings with nested versions and applies partial updates.
type DocumentService struct {
	documents documentStore
	versions  versionLister
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDocumentService constructs the service.
func NewDocumentService(documents documentStore, versions versionLister, cacheSvc *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{documents: documents, versions: versions, cache: cacheSvc, metrics: metrics, validator: validate, logger: logger}
}

// List returns documents matching filter, each with all of its versions (archived ones included).
func (s *DocumentService) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	key := documentsCacheKey(filter)
	var cached []models.Document
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	docs, err := s.documents.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	if err := s.attachVersions(ctx, docs); err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, docs)
	return docs, nil
}

// Update applies the non-nil fields of req. Changing RequirementID is rejected.
func (s *DocumentService) Update(ctx context.Context, id uint, req dto.UpdateDocumentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err)
	}
	current, err := s.documents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if req.RequirementID != nil && *req.RequirementID != current.RequirementID {
		return appErrors.Clone(appErrors.ErrImmutable, "RequirementID cannot be changed")
	}
	if current.Archived && req.Archived != nil && !*req.Archived {
		return appErrors.Clone(appErrors.ErrConflict, "archived documents cannot be restored")
	}

	patch := models.DocumentPatch{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Archived:    req.Archived,
	}
	if patch.Empty() {
		return appErrors.Clone(appErrors.ErrValidation, "no updatable fields supplied")
	}
	if err := s.documents.Update(ctx, id, patch); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document")
	}

	action := "update"
	if patch.Archived != nil && *patch.Archived {
		action = "archive"
	}
	s.metrics.RecordMutation("document", action)
	s.cache.InvalidateAll(ctx)
	s.logger.Info("document updated", zap.Uint("document_id", id), zap.String("action", action))
	return nil
}

func (s *DocumentService) attachVersions(ctx context.Context, docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]uint, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
	}
	versions, err := s.versions.ListByDocuments(ctx, ids)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list versions")
	}
	byDoc := make(map[uint][]models.DocumentVersion, len(docs))
	for _, v := range versions {
		byDoc[v.DocumentID] = append(byDoc[v.DocumentID], v)
	}
	for i := range docs {
		docs[i].Versions = byDoc[docs[i].ID]
		if docs[i].Versions == nil {
			docs[i].Versions = []models.DocumentVersion{}
		}
	}
	return nil
}

func documentsCacheKey(filter models.DocumentFilter) string {
	scope := "all"
	if filter.IncludeArchived {
		scope = "all-archived"
	}
	if filter.RequirementID != nil {
		return cache.Key("documents", scope, "req", *filter.RequirementID)
	}
	return cache.Key("documents", scope)
}
