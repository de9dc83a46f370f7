package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusValidity(t *testing.T) {
	assert.True(t, StatusCompliant.Valid())
	assert.True(t, StatusNonCompliant.Valid())
	assert.False(t, StatusPending.Valid())
	assert.True(t, StatusPending.Known())
	assert.False(t, Status("waiting").Known())
}

func TestDocumentVersionWireFormat(t *testing.T) {
	raw := []byte(`{"ID":100,"DocumentID":10,"Version":"2","Path":"","Status":"non-compliant","Archived":false}`)

	var v DocumentVersion
	require.NoError(t, json.Unmarshal(raw, &v))
	assert.Equal(t, VersionLabel("2"), v.Version)
	n, ok := v.Version.Int()
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	assert.False(t, v.HasFile())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"Version":"2"`)
	assert.Contains(t, string(out), `"DocumentID":10`)
}

func TestVersionLabelAcceptsStringsAndNumbers(t *testing.T) {
	cases := map[string]VersionLabel{
		`{"Version":"1.2.0"}`: "1.2.0",
		`{"Version":1}`:       "1",
		`{"Version":"7"}`:     "7",
		`{"Version":null}`:    "",
	}
	for raw, want := range cases {
		var v DocumentVersion
		require.NoError(t, json.Unmarshal([]byte(raw), &v), raw)
		assert.Equal(t, want, v.Version, raw)
	}

	var v DocumentVersion
	require.Error(t, json.Unmarshal([]byte(`{"Version":true}`), &v))

	_, ok := VersionLabel("1.2.0").Int()
	assert.False(t, ok)
}

func TestVersionLabelScan(t *testing.T) {
	var l VersionLabel
	require.NoError(t, l.Scan(int64(4)))
	assert.Equal(t, VersionLabel("4"), l)
	require.NoError(t, l.Scan([]byte("5")))
	assert.Equal(t, VersionLabel("5"), l)
	require.Error(t, l.Scan(1.5))
}

func TestComplianceSummaryRatio(t *testing.T) {
	assert.Equal(t, 0.0, ComplianceSummary{}.Ratio())
	assert.InDelta(t, 0.5, ComplianceSummary{Compliant: 1, Total: 2}.Ratio(), 1e-9)
}
