package dto

import (
	"time"

	"github.com/noah-isme/csr-compliance-api/internal/models"
)

// UpdateRequirementRequest is the PATCH /requirements/{id} body.
type UpdateRequirementRequest struct {
	Status *models.Status `json:"Status" validate:"required,compliance_status"`
}

// UpdateDocumentRequest is a partial Document. Fields left out are not touched.
// RequirementID is accepted only when it equals the stored value.
type UpdateDocumentRequest struct {
	Name          *string        `json:"Name" validate:"omitempty,min=1,max=255"`
	Description   *string        `json:"Description" validate:"omitempty,max=2000"`
	Status        *models.Status `json:"Status" validate:"omitempty,compliance_status"`
	Archived      *bool          `json:"Archived"`
	RequirementID *uint          `json:"RequirementID"`
}

// UpdateVersionRequest is a partial DocumentVersion.
type UpdateVersionRequest struct {
	Status   *models.Status `json:"Status" validate:"omitempty,compliance_status"`
	Archived *bool          `json:"Archived"`
}

// RequirementsResponse is the GET /requirements body.
type RequirementsResponse struct {
	Requirements []models.Requirement `json:"requirements"`
}

// DocumentsResponse is the GET /documents body.
type DocumentsResponse struct {
	Documents []models.Document `json:"documents"`
}

// CreateVersionResponse is the POST /documents/{docId}/versions body.
type CreateVersionResponse struct {
	Message string                 `json:"message"`
	Version models.DocumentVersion `json:"version"`
}

// DownloadURLResponse carries a signed link for an attachment.
type DownloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ImportRow is one parsed line of a requirements CSV.
type ImportRow struct {
	Line        int           `validate:"-"`
	Name        string        `validate:"required,max=255"`
	Description string        `validate:"max=2000"`
	Documents   []string      `validate:"dive,required,max=255"`
	Status      models.Status `validate:"omitempty,compliance_status"`
}

// ImportSkip explains why a CSV line was not imported.
type ImportSkip struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportResult summarises a POST /upload-csv run.
type ImportResult struct {
	Requirements int          `json:"requirements"`
	Documents    int          `json:"documents"`
	Versions     int          `json:"versions"`
	Skipped      []ImportSkip `json:"skipped,omitempty"`
}
