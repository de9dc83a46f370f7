package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/csr-compliance-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func TestRequirementRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "description", "status", "created_at", "updated_at"}).
		AddRow(1, "Carbon reporting", "Scope 1 and 2", "non-compliant", now, now).
		AddRow(2, "Supplier audit", "", "compliant", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, description, status, created_at, updated_at FROM requirements ORDER BY id ASC")).
		WillReturnRows(rows)

	repo := NewRequirementRepository(db)
	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, models.StatusNonCompliant, items[0].Status)
	require.Equal(t, uint(2), items[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequirementRepositoryUpdateStatusMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE requirements SET status = $2")).
		WithArgs(uint(9), models.StatusCompliant, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewRequirementRepository(db)
	err := repo.UpdateStatus(context.Background(), 9, models.StatusCompliant)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequirementRepositoryCreateWithDocuments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO requirements")).
		WithArgs("Carbon reporting", "Scope 1 and 2", models.StatusNonCompliant, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO documents")).
		WithArgs(uint(5), "GHG inventory", "Document for Carbon reporting", models.StatusNonCompliant, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(50))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO document_versions")).
		WithArgs(uint(50), models.StatusNonCompliant, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(500))
	mock.ExpectCommit()

	req := &models.Requirement{
		Name:        "Carbon reporting",
		Description: "Scope 1 and 2",
		Status:      models.StatusNonCompliant,
		Documents: []models.Document{{
			Name:        "GHG inventory",
			Description: "Document for Carbon reporting",
			Status:      models.StatusNonCompliant,
			Versions:    []models.DocumentVersion{{Status: models.StatusNonCompliant}},
		}},
	}
	repo := NewRequirementRepository(db)
	require.NoError(t, repo.CreateWithDocuments(context.Background(), req))
	require.Equal(t, uint(5), req.ID)
	require.Equal(t, uint(5), req.Documents[0].RequirementID)
	require.Equal(t, uint(500), req.Documents[0].Versions[0].ID)
	require.Equal(t, models.VersionLabel("1"), req.Documents[0].Versions[0].Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequirementRepositoryCreateWithDocumentsRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO requirements")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO documents")).
		WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	req := &models.Requirement{Name: "R", Documents: []models.Document{{Name: "D"}}}
	err := NewRequirementRepository(db).CreateWithDocuments(context.Background(), req)
	require.ErrorContains(t, err, "insert document")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequirementRepositorySummaries(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"requirement_id", "name", "status", "compliant", "total"}).
		AddRow(1, "Carbon reporting", "non-compliant", 1, 2)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN documents d ON d.requirement_id = r.id AND d.archived = FALSE")).
		WillReturnRows(rows)

	items, err := NewRequirementRepository(db).Summaries(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 2, items[0].Total)
	require.InDelta(t, 0.5, items[0].Ratio(), 1e-9)
	require.NoError(t, mock.ExpectationsWereMet())
}
