package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/csr-compliance-api/internal/models"
	appErrors "github.com/noah-isme/csr-compliance-api/pkg/errors"
	"github.com/noah-isme/csr-compliance-api/pkg/jobs"
)

type requirementRepoStub struct {
	items   map[uint]*models.Requirement
	created []*models.Requirement
	failOn  string
	listErr error
}

func newRequirementRepoStub(reqs ...models.Requirement) *requirementRepoStub {
	stub := &requirementRepoStub{items: make(map[uint]*models.Requirement)}
	for i := range reqs {
		r := reqs[i]
		stub.items[r.ID] = &r
	}
	return stub
}

func (s *requirementRepoStub) List(ctx context.Context) ([]models.Requirement, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.Requirement, 0, len(s.items))
	for _, r := range s.items {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *requirementRepoStub) UpdateStatus(ctx context.Context, id uint, status models.Status) error {
	r, ok := s.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.Status = status
	return nil
}

func (s *requirementRepoStub) CreateWithDocuments(ctx context.Context, req *models.Requirement) error {
	if s.failOn != "" && req.Name == s.failOn {
		return sql.ErrConnDone
	}
	req.ID = uint(len(s.created) + 1)
	s.created = append(s.created, req)
	return nil
}

type documentRepoStub struct {
	items      map[uint]*models.Document
	patches    []models.DocumentPatch
	listCalls  int
	lastFilter models.DocumentFilter
}

func newDocumentRepoStub(docs ...models.Document) *documentRepoStub {
	stub := &documentRepoStub{items: make(map[uint]*models.Document)}
	for i := range docs {
		d := docs[i]
		stub.items[d.ID] = &d
	}
	return stub
}

func (s *documentRepoStub) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	s.listCalls++
	s.lastFilter = filter
	out := make([]models.Document, 0, len(s.items))
	for _, d := range s.items {
		if filter.RequirementID != nil && d.RequirementID != *filter.RequirementID {
			continue
		}
		if d.Archived && !filter.IncludeArchived {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *documentRepoStub) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	d, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *d
	return &cp, nil
}

func (s *documentRepoStub) Update(ctx context.Context, id uint, patch models.DocumentPatch) error {
	d, ok := s.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.patches = append(s.patches, patch)
	if patch.Status != nil {
		d.Status = *patch.Status
	}
	if patch.Archived != nil {
		d.Archived = *patch.Archived
	}
	if patch.Name != nil {
		d.Name = *patch.Name
	}
	if patch.Description != nil {
		d.Description = *patch.Description
	}
	return nil
}

type versionRepoStub struct {
	items     map[uint]*models.DocumentVersion
	nextID    uint
	patches   []models.VersionPatch
	createErr error
}

func newVersionRepoStub(versions ...models.DocumentVersion) *versionRepoStub {
	stub := &versionRepoStub{items: make(map[uint]*models.DocumentVersion), nextID: 1000}
	for i := range versions {
		v := versions[i]
		stub.items[v.ID] = &v
	}
	return stub
}

func (s *versionRepoStub) ListByDocuments(ctx context.Context, ids []uint) ([]models.DocumentVersion, error) {
	wanted := make(map[uint]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := make([]models.DocumentVersion, 0)
	for _, v := range s.items {
		if wanted[v.DocumentID] {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *versionRepoStub) GetByID(ctx context.Context, id uint) (*models.DocumentVersion, error) {
	v, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *v
	return &cp, nil
}

func (s *versionRepoStub) Create(ctx context.Context, documentID uint, status models.Status) (*models.DocumentVersion, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	label := 0
	for _, v := range s.items {
		if n, ok := v.Version.Int(); ok && v.DocumentID == documentID && n > label {
			label = n
		}
	}
	s.nextID++
	now := time.Now().UTC()
	v := &models.DocumentVersion{ID: s.nextID, DocumentID: documentID, Version: models.LabelFromInt(label + 1), Status: status, CreatedAt: now, UpdatedAt: now}
	s.items[v.ID] = v
	cp := *v
	return &cp, nil
}

func (s *versionRepoStub) Update(ctx context.Context, id uint, patch models.VersionPatch) error {
	v, ok := s.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.patches = append(s.patches, patch)
	if patch.Status != nil {
		v.Status = *patch.Status
	}
	if patch.Archived != nil {
		v.Archived = *patch.Archived
	}
	if patch.Path != nil {
		v.Path = *patch.Path
	}
	return nil
}

type cacheRepoStub struct {
	mu          sync.Mutex
	values      map[string]interface{}
	invalidated []string
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{values: make(map[string]interface{})}
}

func (c *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	switch d := dest.(type) {
	case *[]models.Document:
		*d = v.([]models.Document)
	case *[]models.Requirement:
		*d = v.([]models.Requirement)
	}
	return nil
}

func (c *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *cacheRepoStub) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, pattern)
	c.values = make(map[string]interface{})
	return nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func statusPtr(s models.Status) *models.Status { return &s }

func boolPtr(b bool) *bool { return &b }

func uintPtr(u uint) *uint { return &u }
