package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/csr-compliance-api/internal/dto"
	"github.com/noah-isme/csr-compliance-api/internal/models"
	"github.com/noah-isme/csr-compliance-api/internal/repository"
	appErrors "github.com/noah-isme/csr-compliance-api/pkg/errors"
)

type versionStore interface {
	GetByID(ctx context.Context, id uint) (*models.DocumentVersion, error)
	Create(ctx context.Context, documentID uint, status models.Status) (*models.DocumentVersion, error)
	Update(ctx context.Context, id uint, patch models.VersionPatch) error
}

type documentGetter interface {
	GetByID(ctx context.Context, id uint) (*models.Document, error)
}

// VersionServiceConfig holds version defaults.
type VersionServiceConfig struct {
	DefaultStatus models.Status
}

// VersionService creates versions and applies partial version updates.
type VersionService struct {
	versions  versionStore
	documents documentGetter
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       VersionServiceConfig
}

// NewVersionService constructs the service. An invalid default status falls back to non-compliant.
func NewVersionService(versions versionStore, documents documentGetter, cacheSvc *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg VersionServiceConfig) *VersionService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.DefaultStatus.Valid() {
		cfg.DefaultStatus = models.StatusNonCompliant
	}
	return &VersionService{versions: versions, documents: documents, cache: cacheSvc, metrics: metrics, validator: validate, logger: logger, cfg: cfg}
}

// Create allocates the next version of documentID with an empty path and the default status.
func (s *VersionService) Create(ctx context.Context, documentID uint) (*models.DocumentVersion, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if doc.Archived {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}

	version, err := s.versions.Create(ctx, documentID, s.cfg.DefaultStatus)
	if err != nil {
		if errors.Is(err, repository.ErrLabelTaken) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "version was created concurrently, retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create version")
	}
	s.metrics.RecordMutation("version", "create")
	s.cache.InvalidateAll(ctx)
	s.logger.Info("version created",
		zap.Uint("document_id", documentID),
		zap.Uint("version_id", version.ID),
		zap.Stringer("version", version.Version),
	)
	return version, nil
}

// Update applies the non-nil fields of req. Archiving touches only this version
// and cannot be undone.
func (s *VersionService) Update(ctx context.Context, id uint, req dto.UpdateVersionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err)
	}
	patch := models.VersionPatch{Status: req.Status, Archived: req.Archived}
	if patch.Empty() {
		return appErrors.Clone(appErrors.ErrValidation, "no updatable fields supplied")
	}
	if patch.Archived != nil && !*patch.Archived {
		current, err := s.versions.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "version not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load version")
		}
		if current.Archived {
			return appErrors.Clone(appErrors.ErrConflict, "archived versions cannot be restored")
		}
	}
	if err := s.versions.Update(ctx, id, patch); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "version not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update version")
	}

	action := "update"
	if patch.Archived != nil && *patch.Archived {
		action = "archive"
	}
	s.metrics.RecordMutation("version", action)
	s.cache.InvalidateAll(ctx)
	s.logger.Info("version updated", zap.Uint("version_id", id), zap.String("action", action))
	return nil
}
