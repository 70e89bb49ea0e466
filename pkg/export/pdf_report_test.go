package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTreeEquivalent(t *testing.T) {
	require.Equal(t, 0, TreeEquivalent(0))
	require.Equal(t, 1, TreeEquivalent(21.9))
	require.Equal(t, 1, TreeEquivalent(22))
	require.Equal(t, 2, TreeEquivalent(22.01))
	require.Equal(t, 5, TreeEquivalent(100))
}

func TestTipsForCategory(t *testing.T) {
	for _, category := range []string{"electricity", "fuel", "water", "waste", "paper", "food"} {
		require.Len(t, TipsForCategory(category), 3, category)
	}
	// display-cased names resolve to the same entries
	require.Len(t, TipsForCategory("Electricity"), 3)
	require.Len(t, TipsForCategory("FOOD"), 3)
	require.Empty(t, TipsForCategory("unknown"))
}

func TestPDFReportRendererRender(t *testing.T) {
	renderer := NewPDFReportRenderer()
	change := -12.5
	input := ReportInput{
		UserName:    "Jane Citizen",
		UserEmail:   "jane@example.com",
		Department:  "Operations",
		RecordDate:  time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Period:      "monthly",
		GeneratedAt: time.Date(2025, 6, 16, 9, 30, 0, 0, time.UTC),
		Total:       123.45,
		Level:       "High",
		Categories: []CategoryLine{
			{Name: "Electricity", Quantity: 120, Unit: "kWh", Emissions: 102, Percent: 82.6},
			{Name: "Water", Quantity: 7000, Unit: "L", Emissions: 2.086, Percent: 1.7},
		},
		History: []HistoryLine{
			{Month: "May 2025", Total: 141.1},
			{Month: "June 2025", Total: 123.45, ChangePercent: &change},
		},
	}

	data, err := renderer.Render(input)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	require.Equal(t, "%PDF", string(data[:4]))
}

func TestPDFReportRendererRequiresUser(t *testing.T) {
	_, err := NewPDFReportRenderer().Render(ReportInput{})
	require.Error(t, err)
}

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	data, err := exporter.Render(Dataset{
		Headers: []string{"record_id", "total"},
		Rows: []map[string]string{
			{"record_id": "r1", "total": "42.50"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "record_id,total\nr1,42.50\n", string(data))

	_, err = exporter.Render(Dataset{})
	require.Error(t, err)
}
