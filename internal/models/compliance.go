package models

import "time"

// Status is the compliance state of a requirement, document or version.
type Status string

const (
	StatusCompliant    Status = "compliant"
	StatusNonCompliant Status = "non-compliant"
	// StatusPending appears in historical rows. It is readable but never written.
	StatusPending Status = "pending"
)

// Valid reports whether s may be written by a mutation.
func (s Status) Valid() bool {
	return s == StatusCompliant || s == StatusNonCompliant
}

// Known reports whether s is any status the backend may return.
func (s Status) Known() bool {
	return s.Valid() || s == StatusPending
}

// Requirement is a compliance criterion grouping documents.
type Requirement struct {
	ID          uint       `db:"id" json:"ID"`
	Name        string     `db:"name" json:"Name"`
	Description string     `db:"description" json:"Description"`
	Status      Status     `db:"status" json:"Status"`
	Documents   []Document `db:"-" json:"Documents"`
	CreatedAt   time.Time  `db:"created_at" json:"CreatedAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"UpdatedAt"`
}

// Document is a tracked compliance artifact. RequirementID never changes after creation.
type Document struct {
	ID            uint              `db:"id" json:"ID"`
	Name          string            `db:"name" json:"Name"`
	Description   string            `db:"description" json:"Description"`
	RequirementID uint              `db:"requirement_id" json:"RequirementID"`
	Status        Status            `db:"status" json:"Status"`
	Archived      bool              `db:"archived" json:"Archived"`
	Versions      []DocumentVersion `db:"-" json:"Versions"`
	CreatedAt     time.Time         `db:"created_at" json:"CreatedAt"`
	UpdatedAt     time.Time         `db:"updated_at" json:"UpdatedAt"`
}

// DocumentVersion is one revision of a document. Version is a label assigned by
// the server and carried as a string on the wire.
type DocumentVersion struct {
	ID         uint         `db:"id" json:"ID"`
	DocumentID uint         `db:"document_id" json:"DocumentID"`
	Version    VersionLabel `db:"version" json:"Version"`
	Path       string       `db:"path" json:"Path"`
	Status     Status       `db:"status" json:"Status"`
	Archived   bool         `db:"archived" json:"Archived"`
	CreatedAt  time.Time    `db:"created_at" json:"CreatedAt"`
	UpdatedAt  time.Time    `db:"updated_at" json:"UpdatedAt"`
}

// HasFile reports whether a file has been attached.
func (v DocumentVersion) HasFile() bool {
	return v.Path != ""
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	RequirementID   *uint
	IncludeArchived bool
}

// DocumentPatch lists the document columns a partial update may touch. Nil fields are left alone.
type DocumentPatch struct {
	Name        *string
	Description *string
	Status      *Status
	Archived    *bool
}

// Empty reports whether the patch changes nothing.
func (p DocumentPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Status == nil && p.Archived == nil
}

// VersionPatch lists the version columns a partial update may touch.
type VersionPatch struct {
	Status   *Status
	Archived *bool
	Path     *string
}

// Empty reports whether the patch changes nothing.
func (p VersionPatch) Empty() bool {
	return p.Status == nil && p.Archived == nil && p.Path == nil
}

// ComplianceSummary is one report row per requirement.
type ComplianceSummary struct {
	RequirementID uint   `db:"requirement_id"`
	Name          string `db:"name"`
	Status        Status `db:"status"`
	Compliant     int    `db:"compliant"`
	Total         int    `db:"total"`
}

// Ratio is Compliant/Total, or 0 for a requirement without documents.
func (s ComplianceSummary) Ratio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Compliant) / float64(s.Total)
}
