package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/noah-isme/csr-compliance-api/internal/dto"
)

// ImportCSV uploads a requirements CSV to the bulk import endpoint.
func (c *Client) ImportCSV(ctx context.Context, filename string, content io.Reader) (*dto.ImportResult, error) {
	const op = "import csv"
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, &Error{Kind: KindValidation, Op: op, Message: "build multipart body", Err: err}
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, &Error{Kind: KindValidation, Op: op, Message: "read csv", Err: err}
	}
	if err := writer.Close(); err != nil {
		return nil, &Error{Kind: KindValidation, Op: op, Message: "build multipart body", Err: err}
	}

	body, err := c.do(ctx, op, http.MethodPost, "/upload-csv", buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Data *dto.ImportResult `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, formatError(op, "response is not a JSON object", err)
	}
	if envelope.Data == nil {
		return nil, formatError(op, "response has no import result", nil)
	}
	return envelope.Data, nil
}
