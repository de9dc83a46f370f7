package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/csr-compliance-api/internal/dto"
	"github.com/noah-isme/csr-compliance-api/internal/models"
	appErrors "github.com/noah-isme/csr-compliance-api/pkg/errors"
	"github.com/noah-isme/csr-compliance-api/pkg/jobs"
	"github.com/noah-isme/csr-compliance-api/pkg/storage"
)

// JobDeleteAttachment removes a replaced attachment blob. Payload is the object name.
const JobDeleteAttachment = "attachment.delete"

type attachmentVersionStore interface {
	GetByID(ctx context.Context, id uint) (*models.DocumentVersion, error)
	Update(ctx context.Context, id uint, patch models.VersionPatch) error
}

type attachmentStorage interface {
	SaveStream(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, name string) (*storage.Object, error)
	Delete(ctx context.Context, name string) error
}

type downloadSigner interface {
	Sign(versionID uint, path string) (string, time.Time, error)
	Verify(token string) (storage.DownloadClaims, error)
}

type cleanupQueue interface {
	Enqueue(job jobs.Job) error
}

// AttachmentUpload carries upload metadata and the file stream.
type AttachmentUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.ReadSeeker
}

// AttachmentDownload is an opened attachment ready for streaming. Callers close Reader.
type AttachmentDownload struct {
	Reader      io.ReadCloser
	Filename    string
	ContentType string
	Size        int64
}

// AttachmentServiceConfig holds upload limits and link settings.
type AttachmentServiceConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
	APIPrefix    string
}

// AttachmentService stores version files and issues signed download links.
type AttachmentService struct {
	versions attachmentVersionStore
	storage  attachmentStorage
	signer   downloadSigner
	cleanup  cleanupQueue
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      AttachmentServiceConfig
	mimeSet  map[string]struct{}
}

// NewAttachmentService constructs the service with defaults.
func NewAttachmentService(versions attachmentVersionStore, store attachmentStorage, signer downloadSigner, cleanup cleanupQueue, cacheSvc *CacheService, metrics *MetricsService, logger *zap.Logger, cfg AttachmentServiceConfig) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{
			"application/pdf",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"application/zip",
			"image/png",
			"image/jpeg",
			"text/plain",
			"text/csv",
		}
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(mt)] = struct{}{}
	}
	return &AttachmentService{
		versions: versions,
		storage:  store,
		signer:   signer,
		cleanup:  cleanup,
		cache:    cacheSvc,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		mimeSet:  mimeSet,
	}
}

// Attach stores upload and points the version's Path at it, replacing any previous file.
// The previous blob is removed in the background.
func (s *AttachmentService) Attach(ctx context.Context, versionID uint, upload AttachmentUpload) (*models.DocumentVersion, error) {
	version, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "version not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load version")
	}
	if upload.Content == nil || upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrTooLarge, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}
	mimeType, err := s.detectMime(upload)
	if err != nil {
		return nil, err
	}

	name := objectName(versionID, upload.Filename, mimeType)
	start := time.Now()
	_, err = s.storage.SaveStream(ctx, name, upload.Content, upload.Size, mimeType)
	s.metrics.ObserveStorage("put", err, time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store file")
	}

	if err := s.versions.Update(ctx, versionID, models.VersionPatch{Path: &name}); err != nil {
		s.discard(name)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "version not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record file path")
	}

	previous := version.Path
	if previous != "" && previous != name {
		s.discard(previous)
	}

	s.metrics.ObserveUpload(upload.Size)
	s.metrics.RecordMutation("version", "attach")
	s.cache.InvalidateAll(ctx)
	s.logger.Info("attachment stored",
		zap.Uint("version_id", versionID),
		zap.String("path", name),
		zap.String("mime", mimeType),
		zap.Int64("size", upload.Size),
	)

	version.Path = name
	version.UpdatedAt = time.Now().UTC()
	return version, nil
}

// DownloadURL returns a signed link to the version's current file.
func (s *AttachmentService) DownloadURL(ctx context.Context, versionID uint) (*dto.DownloadURLResponse, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	version, err := s.loadWithFile(ctx, versionID)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Sign(version.ID, version.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	link := fmt.Sprintf("%s/documents/versions/%d/file?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), version.ID, url.QueryEscape(token))
	return &dto.DownloadURLResponse{URL: link, ExpiresAt: expiresAt}, nil
}

// Download verifies token and opens the file it was issued for. A link issued before
// the file was replaced no longer resolves.
func (s *AttachmentService) Download(ctx context.Context, versionID uint, token string) (*AttachmentDownload, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	claims, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}
	if claims.VersionID != versionID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token does not match version")
	}
	version, err := s.loadWithFile(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if claims.Path != version.Path {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "file has been replaced")
	}

	start := time.Now()
	obj, err := s.storage.Open(ctx, version.Path)
	s.metrics.ObserveStorage("get", err, time.Since(start))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to open file")
	}
	return &AttachmentDownload{
		Reader:      obj.Reader,
		Filename:    filepath.Base(version.Path),
		ContentType: obj.ContentType,
		Size:        obj.Size,
	}, nil
}

// AttachmentCleanupHandler deletes replaced blobs queued under JobDeleteAttachment.
func AttachmentCleanupHandler(store attachmentStorage, metrics *MetricsService, logger *zap.Logger) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, job jobs.Job) error {
		name, ok := job.Payload.(string)
		if job.Type != JobDeleteAttachment || !ok || name == "" {
			logger.Warn("dropping malformed cleanup job", zap.String("job_id", job.ID), zap.String("type", job.Type))
			return nil
		}
		start := time.Now()
		err := store.Delete(ctx, name)
		metrics.ObserveStorage("delete", err, time.Since(start))
		if err != nil {
			return err
		}
		logger.Debug("replaced attachment removed", zap.String("path", name))
		return nil
	}
}

func (s *AttachmentService) loadWithFile(ctx context.Context, versionID uint) (*models.DocumentVersion, error) {
	version, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "version not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load version")
	}
	if !version.HasFile() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "version has no file")
	}
	return version, nil
}

// discard schedules name for deletion, falling back to an inline delete when the queue is unavailable.
func (s *AttachmentService) discard(name string) {
	job := jobs.Job{ID: uuid.NewString(), Type: JobDeleteAttachment, Payload: name}
	if s.cleanup != nil {
		err := s.cleanup.Enqueue(job)
		if err == nil {
			return
		}
		s.logger.Warn("cleanup queue unavailable, deleting inline", zap.String("path", name), zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.storage.Delete(ctx, name); err != nil {
		s.logger.Warn("failed to delete attachment", zap.String("path", name), zap.Error(err))
	}
}

// detectMime sniffs the first 512 bytes. A generic sniff result defers to the declared type.
func (s *AttachmentService) detectMime(upload AttachmentUpload) (string, error) {
	header := make([]byte, 512)
	n, err := upload.Content.Read(header)
	if err != nil && err != io.EOF {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect file")
	}
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	if n == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty file")
	}

	sniffed := baseMediaType(http.DetectContentType(header[:n]))
	if s.allowed(sniffed) {
		return sniffed, nil
	}
	declared := baseMediaType(upload.MimeType)
	if sniffed == "application/octet-stream" && s.allowed(declared) {
		return declared, nil
	}
	return "", appErrors.Clone(appErrors.ErrUnsupported, fmt.Sprintf("mime type %s not allowed", sniffed))
}

func (s *AttachmentService) allowed(mimeType string) bool {
	_, ok := s.mimeSet[mimeType]
	return ok
}

func baseMediaType(raw string) string {
	if raw == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return strings.ToLower(mediaType)
}

func objectName(versionID uint, original, mimeType string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("versions/%d/%s%s", versionID, uuid.NewString(), ext)
}
