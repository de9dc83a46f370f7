package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/csr-compliance-api/internal/models"
)

// DocumentRepository persists documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, name, description, requirement_id, status, archived, created_at, updated_at`

// List returns documents ordered by requirement then ID. Archived documents are
// excluded unless filter.IncludeArchived is set.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + documentColumns + ` FROM documents`)
	args := make([]interface{}, 0, 1)
	conditions := make([]string, 0, 2)

	if !filter.IncludeArchived {
		conditions = append(conditions, "archived = FALSE")
	}
	if filter.RequirementID != nil {
		args = append(args, *filter.RequirementID)
		conditions = append(conditions, fmt.Sprintf("requirement_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY requirement_id ASC, id ASC")

	var rows []models.Document
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return rows, nil
}

// GetByID returns one document or sql.ErrNoRows.
func (r *DocumentRepository) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Update writes only the non-nil fields of patch. Returns sql.ErrNoRows when the document does not exist.
func (r *DocumentRepository) Update(ctx context.Context, id uint, patch models.DocumentPatch) error {
	sets := make([]string, 0, 5)
	args := []interface{}{id}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Archived != nil {
		add("archived", *patch.Archived)
	}
	add("updated_at", time.Now().UTC())

	query := fmt.Sprintf("UPDATE documents SET %s WHERE id = $1", strings.Join(sets, ", "))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check document update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
