package client

import (
	"context"
	"sync"

	"github.com/noah-isme/csr-compliance-api/internal/models"
	"github.com/noah-isme/csr-compliance-api/pkg/viewstate"
)

// Mutation is one write issued through a Session.
type Mutation func(ctx context.Context, c *Client) error

// Session holds the last fetched snapshot and its view state. Every action is
// mutate-then-reload: the snapshot is replaced only after the write succeeds and
// the follow-up read completes.
type Session struct {
	client *Client
	filter DocumentFilter

	mu           sync.Mutex
	requirements []models.Requirement
	documents    []models.Document
	state        viewstate.State
	loaded       bool
}

// NewSession binds a session to c. filter scopes the document listing.
func NewSession(c *Client, filter DocumentFilter) *Session {
	return &Session{client: c, filter: filter}
}

// Reload fetches requirements and documents. On failure the previous snapshot is kept.
func (s *Session) Reload(ctx context.Context) error {
	requirements, err := s.client.ListRequirements(ctx)
	if err != nil {
		return err
	}
	documents, err := s.client.ListDocuments(ctx, s.filter)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requirements = requirements
	s.documents = documents
	groups := viewstate.GroupByRequirement(documents)
	if s.loaded {
		s.state = s.state.Reconcile(groups)
	} else {
		s.state = viewstate.NewState(viewstate.RequirementIDs(groups))
		s.loaded = true
	}
	return nil
}

// Do runs m and reloads only when it succeeds. A failed mutation leaves the
// snapshot untouched and its error is returned as-is.
func (s *Session) Do(ctx context.Context, m Mutation) error {
	if err := m(ctx, s.client); err != nil {
		return err
	}
	return s.Reload(ctx)
}

// Requirements returns the last fetched requirements.
func (s *Session) Requirements() []models.Requirement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requirements
}

// Documents returns the last fetched documents, archived versions included.
func (s *Session) Documents() []models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documents
}

// Groups derives the requirement groups of the current snapshot.
func (s *Session) Groups() []viewstate.Group {
	return viewstate.GroupByRequirement(s.Documents())
}

// State returns the current view state.
func (s *Session) State() viewstate.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ToggleDocuments flips a requirement group locally.
func (s *Session) ToggleDocuments(requirementID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.ToggleDocuments(requirementID)
}

// ToggleAllVersions flips a document's show-all flag locally.
func (s *Session) ToggleAllVersions(documentID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.ToggleAllVersions(documentID)
}
