package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/csr-compliance-api/internal/models"
)

// VersionRepository persists document versions.
type VersionRepository struct {
	db *sqlx.DB
}

// NewVersionRepository constructs the repository.
func NewVersionRepository(db *sqlx.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

const versionColumns = `id, document_id, version, path, status, archived, created_at, updated_at`

// ListByDocuments returns all versions, archived included, of the given documents.
func (r *VersionRepository) ListByDocuments(ctx context.Context, documentIDs []uint) ([]models.DocumentVersion, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+versionColumns+` FROM document_versions
WHERE document_id IN (?) ORDER BY document_id ASC, version ASC`, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("build version query: %w", err)
	}
	var rows []models.DocumentVersion
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return rows, nil
}

// GetByID returns one version or sql.ErrNoRows.
func (r *VersionRepository) GetByID(ctx context.Context, id uint) (*models.DocumentVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM document_versions WHERE id = $1`
	var v models.DocumentVersion
	if err := r.db.GetContext(ctx, &v, query, id); err != nil {
		return nil, err
	}
	return &v, nil
}

// ErrLabelTaken means concurrent creates kept claiming the same label.
var ErrLabelTaken = errors.New("version label already allocated")

const uniqueViolation = "23505"

// Create allocates the next version label for documentID in a single statement
// and returns the stored row. The label is one more than the highest existing label,
// archived versions included, so labels are never reused. A label lost to a
// concurrent insert is retried once.
func (r *VersionRepository) Create(ctx context.Context, documentID uint, status models.Status) (*models.DocumentVersion, error) {
	const query = `INSERT INTO document_versions (document_id, version, path, status, archived, created_at, updated_at)
SELECT $1, COALESCE(MAX(version), 0) + 1, '', $2, FALSE, $3, $3 FROM document_versions WHERE document_id = $1
RETURNING ` + versionColumns
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		var v models.DocumentVersion
		err = r.db.GetContext(ctx, &v, query, documentID, status, time.Now().UTC())
		if err == nil {
			return &v, nil
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("create version: %w", err)
		}
	}
	return nil, fmt.Errorf("create version of document %d: %w", documentID, ErrLabelTaken)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Update writes only the non-nil fields of patch. Returns sql.ErrNoRows when the version does not exist.
func (r *VersionRepository) Update(ctx context.Context, id uint, patch models.VersionPatch) error {
	sets := make([]string, 0, 4)
	args := []interface{}{id}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Archived != nil {
		add("archived", *patch.Archived)
	}
	if patch.Path != nil {
		add("path", *patch.Path)
	}
	add("updated_at", time.Now().UTC())

	query := fmt.Sprintf("UPDATE document_versions SET %s WHERE id = $1", strings.Join(sets, ", "))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update version: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check version update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
