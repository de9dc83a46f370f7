package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/csr-compliance-api/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithTimeout(2*time.Second))
}

func TestListRequirementsDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/requirements", r.URL.Path)
		io.WriteString(w, `{"requirements":[{"ID":1,"Name":"Carbon","Status":"non-compliant","Documents":[{"ID":10,"RequirementID":1,"Versions":[{"ID":100,"Version":"2"}]}]}]}`) //nolint:errcheck
	})

	items, err := c.ListRequirements(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.StatusNonCompliant, items[0].Status)
	assert.Equal(t, models.VersionLabel("2"), items[0].Documents[0].Versions[0].Version)
}

func TestListDocumentsAcceptsAnyVersionLabel(t *testing.T) {
	bodies := map[string]models.VersionLabel{
		`{"documents":[{"ID":10,"RequirementID":1,"Versions":[{"ID":100,"Version":"1.2.0"}]}]}`: "1.2.0",
		`{"documents":[{"ID":10,"RequirementID":1,"Versions":[{"ID":100,"Version":1}]}]}`:       "1",
	}
	for body, want := range bodies {
		body := body
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, body) //nolint:errcheck
		})

		docs, err := c.ListDocuments(context.Background(), DocumentFilter{})
		require.NoError(t, err, body)
		require.Len(t, docs, 1)
		assert.Equal(t, want, docs[0].Versions[0].Version)
	}
}

func TestListDocumentsSendsFilter(t *testing.T) {
	var query string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		io.WriteString(w, `{"documents":[]}`) //nolint:errcheck
	})

	id := uint(7)
	items, err := c.ListDocuments(context.Background(), DocumentFilter{RequirementID: &id})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, "ReferenceId=7", query)

	_, err = c.ListDocuments(context.Background(), DocumentFilter{})
	require.NoError(t, err)
	assert.Empty(t, query)
}

func TestListFormatErrors(t *testing.T) {
	cases := map[string]string{
		"not json":      `<html>oops</html>`,
		"missing key":   `{"items":[]}`,
		"null list":     `{"documents":null}`,
		"object":        `{"documents":{"ID":1}}`,
		"bad record":    `{"documents":[{"ID":"ten"}]}`,
		"bare array":    `[]`,
		"wrong version": `{"documents":[{"ID":1,"Versions":[{"Version":3}]}]}`,
	}
	for name, body := range cases {
		body := body
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body) //nolint:errcheck
			})
			_, err := c.ListDocuments(context.Background(), DocumentFilter{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFormat), err.Error())
			assert.Equal(t, KindFormat, KindOf(err))
		})
	}
}

func TestStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		kind   Kind
	}{
		{http.StatusBadRequest, KindValidation},
		{http.StatusNotFound, KindValidation},
		{http.StatusConflict, KindValidation},
		{http.StatusRequestEntityTooLarge, KindValidation},
		{http.StatusUnsupportedMediaType, KindValidation},
		{http.StatusUnauthorized, KindTransport},
		{http.StatusInternalServerError, KindTransport},
		{http.StatusBadGateway, KindTransport},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, `{"error":{"code":"X","message":"backend said no","status":0}}`) //nolint:errcheck
			})
			err := c.UpdateDocumentStatus(context.Background(), 1, models.StatusCompliant)
			var clientErr *Error
			require.ErrorAs(t, err, &clientErr)
			assert.Equal(t, tc.kind, clientErr.Kind)
			assert.Equal(t, tc.status, clientErr.StatusCode)
			assert.Equal(t, "backend said no", clientErr.Message)
			assert.Equal(t, "X", clientErr.Code)
		})
	}
}

func TestNetworkFailureIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).ListRequirements(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.False(t, errors.Is(err, ErrFormat))
}

func TestMutationsSendPartialBodies(t *testing.T) {
	type call struct {
		method, path string
		body         map[string]interface{}
	}
	var calls []call
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		calls = append(calls, call{r.Method, r.URL.Path, body})
		io.WriteString(w, `{"message":"ok"}`) //nolint:errcheck
	})
	ctx := context.Background()

	require.NoError(t, c.UpdateRequirementStatus(ctx, 1, models.StatusCompliant))
	require.NoError(t, c.UpdateDocumentStatus(ctx, 10, models.StatusNonCompliant))
	require.NoError(t, c.ArchiveDocument(ctx, 10))
	require.NoError(t, c.UpdateVersionStatus(ctx, 100, models.StatusCompliant))
	require.NoError(t, c.ArchiveVersion(ctx, 100))

	require.Len(t, calls, 5)
	assert.Equal(t, call{http.MethodPatch, "/requirements/1", map[string]interface{}{"Status": "compliant"}}, calls[0])
	assert.Equal(t, call{http.MethodPatch, "/documents/10", map[string]interface{}{"Status": "non-compliant"}}, calls[1])
	assert.Equal(t, call{http.MethodPatch, "/documents/10", map[string]interface{}{"Archived": true}}, calls[2])
	assert.Equal(t, call{http.MethodPatch, "/documents/versions/100", map[string]interface{}{"Status": "compliant"}}, calls[3])
	assert.Equal(t, call{http.MethodPatch, "/documents/versions/100", map[string]interface{}{"Archived": true}}, calls[4])
}

func TestMutationRejectsUnwritableStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	err := c.UpdateVersionStatus(context.Background(), 1, models.StatusPending)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCreateVersion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/documents/10/versions", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"message":"Version created","version":{"ID":102,"DocumentID":10,"Version":"3","Path":""}}`) //nolint:errcheck
	})
	id, err := c.CreateVersion(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, uint(102), id)

	bad := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message":"Version created"}`) //nolint:errcheck
	})
	_, err = bad.CreateVersion(context.Background(), 10)
	assert.True(t, errors.Is(err, ErrFormat))
}

func TestAttachFileSendsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/documents/versions/100/upload-file", r.URL.Path)
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "policy.pdf", header.Filename)
		assert.Equal(t, "evidence", string(content))
		io.WriteString(w, `{"message":"File uploaded"}`) //nolint:errcheck
	})
	require.NoError(t, c.AttachFile(context.Background(), 100, "/tmp/policy.pdf", strings.NewReader("evidence")))

	err := c.AttachFile(context.Background(), 100, "x", nil)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestImportCSV(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload-csv", r.URL.Path)
		file, _, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		file.Close()
		io.WriteString(w, `{"data":{"requirements":2,"documents":3,"versions":3,"skipped":[{"line":4,"reason":"expected 4 columns, got 2"}]}}`) //nolint:errcheck
	})

	result, err := c.ImportCSV(context.Background(), "seed.csv", strings.NewReader("Name,Description,Documents,Status\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Requirements)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 4, result.Skipped[0].Line)
}
