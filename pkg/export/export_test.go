package export

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterDataset() Dataset {
	return Dataset{
		Title:   "Student Roster",
		Headers: []string{"id", "name", "class"},
		Rows: []map[string]string{
			{"id": "1", "name": "Jane Doe", "class": "5th"},
			{"id": "2", "name": "Ali, Omar", "class": "6th"},
			{"id": "3", "name": "Mei \"May\" Lin"},
		},
	}
}

func TestCSVExporterGolden(t *testing.T) {
	out, err := NewCSVExporter().Render(rosterDataset())
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "roster_csv", out)
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()
	out, err := exporter.Render(rosterDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, "application/pdf", exporter.ContentType())
	assert.Equal(t, "pdf", exporter.Extension())
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatCSV, "CSV": FormatCSV, " pdf ": FormatPDF}
	for raw, want := range cases {
		got, err := ParseFormat(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer(FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "csv", r.Extension())

	_, err = NewRenderer(Format("docx"))
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 40))
	long := truncate("a very long guardian email address@example.com", 20)
	assert.Len(t, []rune(long), 12)
	assert.Contains(t, long, "...")
}
