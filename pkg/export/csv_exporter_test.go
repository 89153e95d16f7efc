package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	data, err := exporter.Render(Dataset{
		Headers: []string{"id", "donor_name", "amount_cents"},
		Rows: []map[string]string{
			{"id": "d1", "donor_name": "Ana", "amount_cents": "500"},
			{"id": "d2", "donor_name": "Ben, Jr.", "amount_cents": "1200"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,donor_name,amount_cents", lines[0])
	assert.Contains(t, lines[2], `"Ben, Jr."`)
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}
