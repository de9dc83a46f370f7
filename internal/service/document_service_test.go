package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/csr-compliance-api/internal/dto"
	"github.com/noah-isme/csr-compliance-api/internal/models"
	appErrors "github.com/noah-isme/csr-compliance-api/pkg/errors"
)

func documentFixtures() (*documentRepoStub, *versionRepoStub) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	docs := newDocumentRepoStub(
		models.Document{ID: 10, RequirementID: 1, Name: "Policy", Status: models.StatusNonCompliant},
		models.Document{ID: 20, RequirementID: 2, Name: "Audit", Status: models.StatusCompliant},
		models.Document{ID: 30, RequirementID: 2, Name: "Old", Status: models.StatusCompliant, Archived: true},
	)
	versions := newVersionRepoStub(
		models.DocumentVersion{ID: 100, DocumentID: 10, Version: "1", Archived: true, CreatedAt: t0},
		models.DocumentVersion{ID: 101, DocumentID: 10, Version: "2", CreatedAt: t0.Add(time.Hour)},
	)
	return docs, versions
}

func TestDocumentServiceListNestsAllVersions(t *testing.T) {
	docs, versions := documentFixtures()
	svc := NewDocumentService(docs, versions, nil, nil, nil, nil)

	items, err := svc.List(context.Background(), models.DocumentFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Len(t, items[0].Versions, 2)
	require.True(t, items[0].Versions[0].Archived)
	require.NotNil(t, items[1].Versions)
	require.Empty(t, items[1].Versions)
}

func TestDocumentServiceListFiltersByRequirement(t *testing.T) {
	docs, versions := documentFixtures()
	svc := NewDocumentService(docs, versions, nil, nil, nil, nil)

	items, err := svc.List(context.Background(), models.DocumentFilter{RequirementID: uintPtr(2)})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, uint(20), items[0].ID)
}

func TestDocumentServiceListUsesCache(t *testing.T) {
	docs, versions := documentFixtures()
	cacheRepo := newCacheRepoStub()
	svc := NewDocumentService(docs, versions, NewCacheService(cacheRepo, NewMetricsService(), time.Minute, nil, true), nil, nil, nil)

	_, err := svc.List(context.Background(), models.DocumentFilter{})
	require.NoError(t, err)
	_, err = svc.List(context.Background(), models.DocumentFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, docs.listCalls)

	require.NoError(t, svc.Update(context.Background(), 10, dto.UpdateDocumentRequest{Status: statusPtr(models.StatusCompliant)}))
	require.Equal(t, []string{"csr:*"}, cacheRepo.invalidated)

	items, err := svc.List(context.Background(), models.DocumentFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, docs.listCalls)
	require.Equal(t, models.StatusCompliant, items[0].Status)
}

func TestDocumentServiceUpdateIsIdempotent(t *testing.T) {
	docs, versions := documentFixtures()
	svc := NewDocumentService(docs, versions, nil, nil, nil, nil)
	req := dto.UpdateDocumentRequest{Status: statusPtr(models.StatusCompliant)}

	require.NoError(t, svc.Update(context.Background(), 10, req))
	require.NoError(t, svc.Update(context.Background(), 10, req))
	require.Equal(t, models.StatusCompliant, docs.items[10].Status)
	require.Nil(t, docs.patches[0].Archived)
	require.Nil(t, docs.patches[0].Name)
}

func TestDocumentServiceUpdateRejections(t *testing.T) {
	docs, versions := documentFixtures()
	svc := NewDocumentService(docs, versions, nil, nil, nil, nil)
	ctx := context.Background()

	err := svc.Update(ctx, 10, dto.UpdateDocumentRequest{RequirementID: uintPtr(2), Status: statusPtr(models.StatusCompliant)})
	require.True(t, appErrors.Is(err, appErrors.ErrImmutable))

	err = svc.Update(ctx, 10, dto.UpdateDocumentRequest{Status: statusPtr(models.StatusPending)})
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
	require.Contains(t, err.Error(), "must be compliant or non-compliant")

	err = svc.Update(ctx, 10, dto.UpdateDocumentRequest{RequirementID: uintPtr(1)})
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))

	err = svc.Update(ctx, 99, dto.UpdateDocumentRequest{Archived: boolPtr(true)})
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	require.Empty(t, docs.patches)
}

func TestDocumentServiceArchive(t *testing.T) {
	docs, versions := documentFixtures()
	svc := NewDocumentService(docs, versions, nil, nil, nil, nil)

	require.NoError(t, svc.Update(context.Background(), 10, dto.UpdateDocumentRequest{RequirementID: uintPtr(1), Archived: boolPtr(true)}))
	items, err := svc.List(context.Background(), models.DocumentFilter{RequirementID: uintPtr(1)})
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestDocumentServiceArchiveIsTerminal(t *testing.T) {
	docs, versions := documentFixtures()
	svc := NewDocumentService(docs, versions, nil, nil, nil, nil)
	ctx := context.Background()

	err := svc.Update(ctx, 30, dto.UpdateDocumentRequest{Archived: boolPtr(false)})
	require.True(t, appErrors.Is(err, appErrors.ErrConflict))
	require.True(t, docs.items[30].Archived)
	require.Empty(t, docs.patches)

	require.NoError(t, svc.Update(ctx, 30, dto.UpdateDocumentRequest{Status: statusPtr(models.StatusCompliant)}))
}
