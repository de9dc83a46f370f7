package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/noah-isme/csr-compliance-api/internal/models"
)

// DocumentFilter narrows ListDocuments. A nil RequirementID lists every document.
type DocumentFilter struct {
	RequirementID *uint
}

// ListRequirements fetches every requirement with nested documents.
func (c *Client) ListRequirements(ctx context.Context) ([]models.Requirement, error) {
	const op = "list requirements"
	body, err := c.do(ctx, op, http.MethodGet, "/requirements", nil, "")
	if err != nil {
		return nil, err
	}
	var items []models.Requirement
	if err := decodeList(op, body, "requirements", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListDocuments fetches documents with their versions, archived versions included.
func (c *Client) ListDocuments(ctx context.Context, filter DocumentFilter) ([]models.Document, error) {
	const op = "list documents"
	path := "/documents"
	if filter.RequirementID != nil {
		q := url.Values{}
		q.Set("ReferenceId", strconv.FormatUint(uint64(*filter.RequirementID), 10))
		path += "?" + q.Encode()
	}
	body, err := c.do(ctx, op, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	var items []models.Document
	if err := decodeList(op, body, "documents", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// decodeList requires body to be an object whose key holds a JSON array of records.
func decodeList(op string, body []byte, key string, dest interface{}) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return formatError(op, "response is not a JSON object", err)
	}
	raw, ok := envelope[key]
	if !ok {
		return formatError(op, fmt.Sprintf("response has no %q field", key), nil)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return formatError(op, fmt.Sprintf("%q is not a list", key), nil)
	}
	if err := json.Unmarshal(trimmed, dest); err != nil {
		return formatError(op, fmt.Sprintf("%q holds malformed records", key), err)
	}
	return nil
}
