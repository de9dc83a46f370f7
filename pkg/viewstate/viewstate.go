// Package viewstate derives what a compliance screen shows from fetched documents.
// Everything here is pure: no I/O, and State values are owned by the caller.
package viewstate

import (
	"sort"

	"github.com/noah-isme/csr-compliance-api/internal/models"
)

// InitiallyExpanded is how many requirement groups start with their documents visible.
const InitiallyExpanded = 3

// Group is the documents of one requirement.
type Group struct {
	RequirementID uint
	Documents     []models.Document
}

// GroupByRequirement partitions docs by RequirementID in ascending order.
// Documents keep their input order within a group.
func GroupByRequirement(docs []models.Document) []Group {
	index := make(map[uint]int)
	groups := make([]Group, 0)
	for _, doc := range docs {
		i, ok := index[doc.RequirementID]
		if !ok {
			i = len(groups)
			index[doc.RequirementID] = i
			groups = append(groups, Group{RequirementID: doc.RequirementID})
		}
		groups[i].Documents = append(groups[i].Documents, doc)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].RequirementID < groups[b].RequirementID
	})
	return groups
}

// ActiveVersions returns the non-archived versions of doc, newest first.
// Versions created at the same instant are ordered by descending ID.
func ActiveVersions(doc models.Document) []models.DocumentVersion {
	out := make([]models.DocumentVersion, 0, len(doc.Versions))
	for _, v := range doc.Versions {
		if !v.Archived {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// LatestVersion is the newest non-archived version of doc.
func LatestVersion(doc models.Document) (models.DocumentVersion, bool) {
	active := ActiveVersions(doc)
	if len(active) == 0 {
		return models.DocumentVersion{}, false
	}
	return active[0], true
}

// State holds the two visibility maps. Missing keys read as false.
type State struct {
	DocumentsVisible   map[uint]bool
	AllVersionsVisible map[uint]bool
}

// NewState expands the first InitiallyExpanded requirement IDs in ascending order.
// Every document starts showing only its latest version.
func NewState(requirementIDs []uint) State {
	s := State{
		DocumentsVisible:   make(map[uint]bool, len(requirementIDs)),
		AllVersionsVisible: make(map[uint]bool),
	}
	ids := append([]uint(nil), requirementIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	position := 0
	for _, id := range ids {
		if _, seen := s.DocumentsVisible[id]; seen {
			continue
		}
		s.DocumentsVisible[id] = position < InitiallyExpanded
		position++
	}
	return s
}

// RequirementIDs lists the requirement of every group, in group order.
func RequirementIDs(groups []Group) []uint {
	ids := make([]uint, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.RequirementID)
	}
	return ids
}

// ToggleDocuments flips the document visibility of one requirement group.
func (s State) ToggleDocuments(requirementID uint) State {
	next := s.clone()
	next.DocumentsVisible[requirementID] = !s.DocumentsVisible[requirementID]
	return next
}

// ToggleAllVersions flips the show-all flag of one document.
func (s State) ToggleAllVersions(documentID uint) State {
	next := s.clone()
	next.AllVersionsVisible[documentID] = !s.AllVersionsVisible[documentID]
	return next
}

// DisplayedVersions is what a document row shows: every active version when
// show-all is set, otherwise at most the latest one.
func (s State) DisplayedVersions(doc models.Document) []models.DocumentVersion {
	active := ActiveVersions(doc)
	if s.AllVersionsVisible[doc.ID] || len(active) <= 1 {
		return active
	}
	return active[:1]
}

// Reconcile keeps existing toggles across a re-fetch. Groups seen for the first
// time get the initial rule applied to their position among all groups.
func (s State) Reconcile(groups []Group) State {
	next := s.clone()
	initial := NewState(RequirementIDs(groups))
	for id, visible := range initial.DocumentsVisible {
		if _, known := next.DocumentsVisible[id]; !known {
			next.DocumentsVisible[id] = visible
		}
	}
	return next
}

func (s State) clone() State {
	next := State{
		DocumentsVisible:   make(map[uint]bool, len(s.DocumentsVisible)),
		AllVersionsVisible: make(map[uint]bool, len(s.AllVersionsVisible)),
	}
	for k, v := range s.DocumentsVisible {
		next.DocumentsVisible[k] = v
	}
	for k, v := range s.AllVersionsVisible {
		next.AllVersionsVisible[k] = v
	}
	return next
}

// ComplianceRatio counts compliant documents. ratio is 0 when docs is empty.
func ComplianceRatio(docs []models.Document) (compliant, total int, ratio float64) {
	for _, doc := range docs {
		total++
		if doc.Status == models.StatusCompliant {
			compliant++
		}
	}
	if total == 0 {
		return 0, 0, 0
	}
	return compliant, total, float64(compliant) / float64(total)
}

// FileStatus is the attachment state of a version.
type FileStatus string

const (
	NoFile  FileStatus = "no-file"
	HasFile FileStatus = "has-file"
)

// FileState reports whether v has an attached file.
func FileState(v models.DocumentVersion) FileStatus {
	if v.HasFile() {
		return HasFile
	}
	return NoFile
}
