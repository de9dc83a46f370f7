package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/csr-compliance-api/internal/models"
)

// RequirementRepository persists requirements.
type RequirementRepository struct {
	db *sqlx.DB
}

// NewRequirementRepository constructs the repository.
func NewRequirementRepository(db *sqlx.DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

const requirementColumns = `id, name, description, status, created_at, updated_at`

// List returns every requirement ordered by ID. Documents are not loaded.
func (r *RequirementRepository) List(ctx context.Context) ([]models.Requirement, error) {
	query := `SELECT ` + requirementColumns + ` FROM requirements ORDER BY id ASC`
	var rows []models.Requirement
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	return rows, nil
}

// GetByID returns one requirement or sql.ErrNoRows.
func (r *RequirementRepository) GetByID(ctx context.Context, id uint) (*models.Requirement, error) {
	query := `SELECT ` + requirementColumns + ` FROM requirements WHERE id = $1`
	var req models.Requirement
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateStatus overwrites the status. Returns sql.ErrNoRows when the requirement does not exist.
func (r *RequirementRepository) UpdateStatus(ctx context.Context, id uint, status models.Status) error {
	const query = `UPDATE requirements SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update requirement status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check requirement update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateWithDocuments inserts a requirement, its documents, and version 1 of each
// document in one transaction. IDs and timestamps are written back into req.
func (r *RequirementRepository) CreateWithDocuments(ctx context.Context, req *models.Requirement) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin requirement import: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback() //nolint:errcheck
		}
	}()

	now := time.Now().UTC()
	req.CreatedAt, req.UpdatedAt = now, now
	const insertRequirement = `INSERT INTO requirements (name, description, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4) RETURNING id`
	if err := tx.QueryRowxContext(ctx, insertRequirement, req.Name, req.Description, req.Status, now).Scan(&req.ID); err != nil {
		return fmt.Errorf("insert requirement: %w", err)
	}

	const insertDocument = `INSERT INTO documents (requirement_id, name, description, status, archived, created_at, updated_at)
VALUES ($1, $2, $3, $4, FALSE, $5, $5) RETURNING id`
	const insertVersion = `INSERT INTO document_versions (document_id, version, path, status, archived, created_at, updated_at)
VALUES ($1, 1, '', $2, FALSE, $3, $3) RETURNING id`
	for i := range req.Documents {
		doc := &req.Documents[i]
		doc.RequirementID = req.ID
		doc.CreatedAt, doc.UpdatedAt = now, now
		if err := tx.QueryRowxContext(ctx, insertDocument, doc.RequirementID, doc.Name, doc.Description, doc.Status, now).Scan(&doc.ID); err != nil {
			return fmt.Errorf("insert document %q: %w", doc.Name, err)
		}
		for j := range doc.Versions {
			v := &doc.Versions[j]
			v.DocumentID = doc.ID
			v.Version = models.LabelFromInt(1)
			v.CreatedAt, v.UpdatedAt = now, now
			if err := tx.QueryRowxContext(ctx, insertVersion, v.DocumentID, v.Status, now).Scan(&v.ID); err != nil {
				return fmt.Errorf("insert first version of %q: %w", doc.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit requirement import: %w", err)
	}
	committed = true
	return nil
}

// Summaries aggregates compliant and total non-archived documents per requirement.
func (r *RequirementRepository) Summaries(ctx context.Context) ([]models.ComplianceSummary, error) {
	const query = `SELECT r.id AS requirement_id, r.name, r.status,
       COUNT(d.id) FILTER (WHERE d.status = 'compliant') AS compliant,
       COUNT(d.id) AS total
FROM requirements r
LEFT JOIN documents d ON d.requirement_id = r.id AND d.archived = FALSE
GROUP BY r.id, r.name, r.status
ORDER BY r.id ASC`
	var rows []models.ComplianceSummary
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("summarise requirements: %w", err)
	}
	return rows, nil
}
