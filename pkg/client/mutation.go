package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/noah-isme/csr-compliance-api/internal/models"
)

// UpdateRequirementStatus sets a requirement's status. It never touches its documents.
func (c *Client) UpdateRequirementStatus(ctx context.Context, id uint, status models.Status) error {
	const op = "update requirement status"
	if err := checkStatus(op, status); err != nil {
		return err
	}
	_, err := c.sendJSON(ctx, op, http.MethodPatch, fmt.Sprintf("/requirements/%d", id), statusBody{Status: status})
	return err
}

// UpdateDocumentStatus sets a document's status, sending only that field.
func (c *Client) UpdateDocumentStatus(ctx context.Context, id uint, status models.Status) error {
	const op = "update document status"
	if err := checkStatus(op, status); err != nil {
		return err
	}
	_, err := c.sendJSON(ctx, op, http.MethodPatch, fmt.Sprintf("/documents/%d", id), statusBody{Status: status})
	return err
}

// ArchiveDocument soft-deletes a document.
func (c *Client) ArchiveDocument(ctx context.Context, id uint) error {
	_, err := c.sendJSON(ctx, "archive document", http.MethodPatch, fmt.Sprintf("/documents/%d", id), archiveBody{Archived: true})
	return err
}

// UpdateVersionStatus sets a version's status.
func (c *Client) UpdateVersionStatus(ctx context.Context, versionID uint, status models.Status) error {
	const op = "update version status"
	if err := checkStatus(op, status); err != nil {
		return err
	}
	_, err := c.sendJSON(ctx, op, http.MethodPatch, fmt.Sprintf("/documents/versions/%d", versionID), statusBody{Status: status})
	return err
}

// ArchiveVersion marks one version archived. Siblings and the document are untouched.
func (c *Client) ArchiveVersion(ctx context.Context, versionID uint) error {
	_, err := c.sendJSON(ctx, "archive version", http.MethodPatch, fmt.Sprintf("/documents/versions/%d", versionID), archiveBody{Archived: true})
	return err
}

// CreateVersion allocates the next version of a document and returns its ID.
func (c *Client) CreateVersion(ctx context.Context, documentID uint) (uint, error) {
	const op = "create version"
	body, err := c.do(ctx, op, http.MethodPost, fmt.Sprintf("/documents/%d/versions", documentID), nil, "")
	if err != nil {
		return 0, err
	}
	var created struct {
		Version *models.DocumentVersion `json:"version"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return 0, formatError(op, "response is not a JSON object", err)
	}
	if created.Version == nil || created.Version.ID == 0 {
		return 0, formatError(op, "response has no version", nil)
	}
	return created.Version.ID, nil
}

// AttachFile uploads content as the version's file in a single multipart request,
// replacing any file already attached.
func (c *Client) AttachFile(ctx context.Context, versionID uint, filename string, content io.Reader) error {
	const op = "attach file"
	if content == nil {
		return &Error{Kind: KindValidation, Op: op, Message: "file content is required"}
	}
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return &Error{Kind: KindValidation, Op: op, Message: "build multipart body", Err: err}
	}
	if _, err := io.Copy(part, content); err != nil {
		return &Error{Kind: KindValidation, Op: op, Message: "read file content", Err: err}
	}
	if err := writer.Close(); err != nil {
		return &Error{Kind: KindValidation, Op: op, Message: "build multipart body", Err: err}
	}
	_, err = c.do(ctx, op, http.MethodPatch, fmt.Sprintf("/documents/versions/%d/upload-file", versionID), buf, writer.FormDataContentType())
	return err
}

type statusBody struct {
	Status models.Status `json:"Status"`
}

type archiveBody struct {
	Archived bool `json:"Archived"`
}

func checkStatus(op string, status models.Status) error {
	if status.Valid() {
		return nil
	}
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf("status must be %s or %s", models.StatusCompliant, models.StatusNonCompliant)}
}
