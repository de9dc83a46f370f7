package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/csr-compliance-api/internal/models"
)

var documentRowColumns = []string{"id", "name", "description", "requirement_id", "status", "archived", "created_at", "updated_at"}

func TestDocumentRepositoryListFiltersByRequirement(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows(documentRowColumns).
		AddRow(10, "Policy", "", 1, "non-compliant", false, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM documents WHERE archived = FALSE AND requirement_id = $1 ORDER BY requirement_id ASC, id ASC")).
		WithArgs(uint(1)).
		WillReturnRows(rows)

	reqID := uint(1)
	docs, err := NewDocumentRepository(db).List(context.Background(), models.DocumentFilter{RequirementID: &reqID})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, uint(1), docs[0].RequirementID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryListAllIncludingArchived(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(`FROM documents ORDER BY requirement_id ASC, id ASC$`).
		WillReturnRows(sqlmock.NewRows(documentRowColumns))

	docs, err := NewDocumentRepository(db).List(context.Background(), models.DocumentFilter{IncludeArchived: true})
	require.NoError(t, err)
	require.Empty(t, docs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryUpdateWritesOnlyPatchedColumns(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	status := models.StatusCompliant
	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs(uint(10), status, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewDocumentRepository(db).Update(context.Background(), 10, models.DocumentPatch{Status: &status})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	archived := true
	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET archived = $2")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewDocumentRepository(db).Update(context.Background(), 404, models.DocumentPatch{Archived: &archived})
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDocumentRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM documents WHERE id = $1")).
		WithArgs(uint(7)).
		WillReturnError(sql.ErrNoRows)

	_, err := NewDocumentRepository(db).GetByID(context.Background(), 7)
	require.ErrorIs(t, err, sql.ErrNoRows)
}
