package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/csr-compliance-api/internal/models"
)

var versionRowColumns = []string{"id", "document_id", "version", "path", "status", "archived", "created_at", "updated_at"}

func TestVersionRepositoryListByDocuments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows(versionRowColumns).
		AddRow(100, 10, 1, "", "non-compliant", true, now, now).
		AddRow(101, 10, 2, "versions/101/a.pdf", "compliant", false, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE document_id IN ($1, $2) ORDER BY document_id ASC, version ASC")).
		WithArgs(uint(10), uint(11)).
		WillReturnRows(rows)

	versions, err := NewVersionRepository(db).ListByDocuments(context.Background(), []uint{10, 11})
	require.NoError(t, err)
	require.Len(t, versions, 2)
	require.True(t, versions[0].Archived)
	require.True(t, versions[1].HasFile())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVersionRepositoryListByDocumentsEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	versions, err := NewVersionRepository(db).ListByDocuments(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, versions)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVersionRepositoryCreateAllocatesNextLabel(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT $1, COALESCE(MAX(version), 0) + 1, '', $2, FALSE, $3, $3 FROM document_versions WHERE document_id = $1")).
		WithArgs(uint(10), models.StatusNonCompliant, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(versionRowColumns).AddRow(102, 10, 3, "", "non-compliant", false, now, now))

	v, err := NewVersionRepository(db).Create(context.Background(), 10, models.StatusNonCompliant)
	require.NoError(t, err)
	require.Equal(t, uint(102), v.ID)
	require.Equal(t, models.VersionLabel("3"), v.Version)
	require.False(t, v.HasFile())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVersionRepositoryCreateRetriesTakenLabel(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	insert := regexp.QuoteMeta("COALESCE(MAX(version), 0) + 1")
	mock.ExpectQuery(insert).WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery(insert).
		WillReturnRows(sqlmock.NewRows(versionRowColumns).AddRow(103, 10, 4, "", "non-compliant", false, now, now))

	v, err := NewVersionRepository(db).Create(context.Background(), 10, models.StatusNonCompliant)
	require.NoError(t, err)
	require.Equal(t, models.VersionLabel("4"), v.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVersionRepositoryCreateGivesUpAfterSecondCollision(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	insert := regexp.QuoteMeta("COALESCE(MAX(version), 0) + 1")
	mock.ExpectQuery(insert).WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery(insert).WillReturnError(&pq.Error{Code: "23505"})

	_, err := NewVersionRepository(db).Create(context.Background(), 10, models.StatusNonCompliant)
	require.ErrorIs(t, err, ErrLabelTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVersionRepositoryUpdatePath(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	path := "versions/100/b.pdf"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE document_versions SET path = $2, updated_at = $3 WHERE id = $1")).
		WithArgs(uint(100), path, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewVersionRepository(db).Update(context.Background(), 100, models.VersionPatch{Path: &path}))
	require.NoError(t, mock.ExpectationsWereMet())
}
