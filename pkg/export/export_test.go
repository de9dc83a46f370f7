package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Dataset {
	return Dataset{
		Headers: []string{"Requirement", "Ratio"},
		Rows: []map[string]string{
			{"Requirement": "Carbon reporting", "Ratio": "50%"},
			{"Requirement": "Supplier, audit", "Ratio": "0%"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sample())
	require.NoError(t, err)
	assert.Equal(t, "Requirement,Ratio\nCarbon reporting,50%\n\"Supplier, audit\",0%\n", string(out))

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := sample()
	data.Widths = []float64{3, 1}
	out, err := NewPDFExporter().Render(data, "Compliance report")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestColumnWidths(t *testing.T) {
	data := sample()
	assert.Equal(t, []float64{95, 95}, columnWidths(data))

	data.Widths = []float64{3, 1}
	widths := columnWidths(data)
	assert.InDelta(t, 142.5, widths[0], 1e-9)
	assert.InDelta(t, 47.5, widths[1], 1e-9)
}
