package handler

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/csr-compliance-api/internal/models"
)

// memoryStore backs the compliance services in router-level tests.
type memoryStore struct {
	mu           sync.Mutex
	requirements map[uint]*models.Requirement
	documents    map[uint]*models.Document
	versions     map[uint]*models.DocumentVersion
	nextVersion  uint
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		requirements: make(map[uint]*models.Requirement),
		documents:    make(map[uint]*models.Document),
		versions:     make(map[uint]*models.DocumentVersion),
		nextVersion:  1000,
	}
}

func (m *memoryStore) addRequirement(r models.Requirement) {
	m.requirements[r.ID] = &r
}

func (m *memoryStore) addDocument(d models.Document) {
	m.documents[d.ID] = &d
}

func (m *memoryStore) addVersion(v models.DocumentVersion) {
	m.versions[v.ID] = &v
}

type memoryRequirements struct{ *memoryStore }

func (r memoryRequirements) List(ctx context.Context) ([]models.Requirement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Requirement, 0, len(r.requirements))
	for _, item := range r.requirements {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryRequirements) UpdateStatus(ctx context.Context, id uint, status models.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.requirements[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.Status = status
	return nil
}

type memoryDocuments struct{ *memoryStore }

func (d memoryDocuments) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.Document, 0, len(d.documents))
	for _, item := range d.documents {
		if filter.RequirementID != nil && item.RequirementID != *filter.RequirementID {
			continue
		}
		if item.Archived && !filter.IncludeArchived {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequirementID != out[j].RequirementID {
			return out[i].RequirementID < out[j].RequirementID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (d memoryDocuments) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	item, ok := d.documents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *item
	return &cp, nil
}

func (d memoryDocuments) Update(ctx context.Context, id uint, patch models.DocumentPatch) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	item, ok := d.documents[id]
	if !ok {
		return sql.ErrNoRows
	}
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Status != nil {
		item.Status = *patch.Status
	}
	if patch.Archived != nil {
		item.Archived = *patch.Archived
	}
	item.UpdatedAt = time.Now().UTC()
	return nil
}

type memoryVersions struct{ *memoryStore }

func (v memoryVersions) ListByDocuments(ctx context.Context, documentIDs []uint) ([]models.DocumentVersion, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	wanted := make(map[uint]bool, len(documentIDs))
	for _, id := range documentIDs {
		wanted[id] = true
	}
	out := make([]models.DocumentVersion, 0)
	for _, item := range v.versions {
		if wanted[item.DocumentID] {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v memoryVersions) GetByID(ctx context.Context, id uint) (*models.DocumentVersion, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	item, ok := v.versions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *item
	return &cp, nil
}

func (v memoryVersions) Create(ctx context.Context, documentID uint, status models.Status) (*models.DocumentVersion, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	label := 0
	for _, item := range v.versions {
		if n, ok := item.Version.Int(); ok && item.DocumentID == documentID && n > label {
			label = n
		}
	}
	v.nextVersion++
	now := time.Now().UTC()
	created := &models.DocumentVersion{ID: v.nextVersion, DocumentID: documentID, Version: models.LabelFromInt(label + 1), Status: status, CreatedAt: now, UpdatedAt: now}
	v.versions[created.ID] = created
	cp := *created
	return &cp, nil
}

func (v memoryVersions) Update(ctx context.Context, id uint, patch models.VersionPatch) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	item, ok := v.versions[id]
	if !ok {
		return sql.ErrNoRows
	}
	if patch.Status != nil {
		item.Status = *patch.Status
	}
	if patch.Archived != nil {
		item.Archived = *patch.Archived
	}
	if patch.Path != nil {
		item.Path = *patch.Path
	}
	item.UpdatedAt = time.Now().UTC()
	return nil
}
