package export

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// kgCO2AbsorbedPerTreeYear is the average annual absorption of a mature tree.
const kgCO2AbsorbedPerTreeYear = 22.0

// CategoryLine is one consumption line of the report detail table.
type CategoryLine struct {
	Name      string
	Quantity  float64
	Unit      string
	Emissions float64
	Percent   float64
}

// HistoryLine is one month of the six-month history table.
type HistoryLine struct {
	Month string
	Total float64
	// ChangePercent is nil for the first month or when the previous total is zero.
	ChangePercent *float64
}

// ReportInput carries everything the PDF renderer needs for one record.
type ReportInput struct {
	UserName    string
	UserEmail   string
	Department  string
	RecordDate  time.Time
	Period      string
	GeneratedAt time.Time
	Total       float64
	Level       string
	Categories  []CategoryLine
	History     []HistoryLine
}

// reportTips holds the canned guidance printed at the end of each report,
// keyed by the category contributing the most emissions.
var reportTips = map[string][]string{
	"electricity": {
		"Switch to LED lighting and turn off devices instead of leaving them on standby.",
		"Set air conditioning to 24-25 degrees C and service units regularly.",
		"Unplug chargers and appliances that are not in use.",
	},
	"fuel": {
		"Combine errands into a single trip and keep tyres properly inflated.",
		"Use public transport, carpooling or cycling for short commutes.",
		"Maintain the engine regularly; a well-tuned engine burns less fuel.",
	},
	"water": {
		"Fix dripping taps promptly; a single leak wastes thousands of litres a year.",
		"Take shorter showers and reuse greywater for plants where possible.",
		"Run washing machines and dishwashers only with full loads.",
	},
	"waste": {
		"Separate recyclables from general waste before disposal.",
		"Compost organic waste instead of sending it to landfill.",
		"Choose products with minimal or reusable packaging.",
	},
	"paper": {
		"Print double-sided and only when a hard copy is truly needed.",
		"Switch to digital documents, signatures and note taking.",
		"Reuse single-sided printouts as scrap paper.",
	},
	"food": {
		"Replace some meat-based meals with vegetarian or vegan options.",
		"Plan portions to reduce food waste.",
		"Prefer locally sourced and seasonal produce.",
	},
}

// TipsForCategory returns the canned recommendations for a category. Category
// names arrive display-cased from the detail join, so the lookup normalizes.
func TipsForCategory(category string) []string {
	return reportTips[strings.ToLower(category)]
}

// TreeEquivalent converts kilograms of CO2 into the number of trees needed
// to absorb it over a year, rounded up.
func TreeEquivalent(totalKg float64) int {
	if totalKg <= 0 {
		return 0
	}
	return int(math.Ceil(totalKg / kgCO2AbsorbedPerTreeYear))
}

// PDFReportRenderer renders carbon footprint reports as PDF documents.
type PDFReportRenderer struct{}

// NewPDFReportRenderer constructs a report renderer.
func NewPDFReportRenderer() *PDFReportRenderer {
	return &PDFReportRenderer{}
}

// Render produces the full PDF document for a single emission record.
func (r *PDFReportRenderer) Render(in ReportInput) ([]byte, error) {
	if in.UserName == "" {
		return nil, fmt.Errorf("report requires a user name")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 15, 12)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 8, "Emission factors are indicative averages; actual values vary by region and supplier.", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	r.renderHeader(pdf, in)
	r.renderUserInfo(pdf, in)
	r.renderSummary(pdf, in)
	r.renderDetailTable(pdf, in)
	r.renderHistory(pdf, in)
	r.renderRecommendations(pdf, in)

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render report pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFReportRenderer) renderHeader(pdf *gofpdf.Fpdf, in ReportInput) {
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(22, 101, 52)
	pdf.CellFormat(0, 10, "CARBON FOOTPRINT REPORT", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", in.GeneratedAt.Format("2 January 2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

func (r *PDFReportRenderer) renderUserInfo(pdf *gofpdf.Fpdf, in ReportInput) {
	pdf.SetTextColor(0, 0, 0)
	rows := [][2]string{
		{"Name", in.UserName},
		{"Email", in.UserEmail},
		{"Department", in.Department},
		{"Record date", in.RecordDate.Format("2 January 2006")},
		{"Period", in.Period},
	}
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(35, 6, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func (r *PDFReportRenderer) renderSummary(pdf *gofpdf.Fpdf, in ReportInput) {
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, "Executive Summary", "B", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(90, 7, fmt.Sprintf("Total emissions: %.2f kg CO2e", in.Total), "", 0, "L", false, 0, "")

	badgeR, badgeG, badgeB := levelColor(in.Level)
	pdf.SetFillColor(badgeR, badgeG, badgeB)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 7, in.Level, "", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 10)

	if highest := highestCategory(in.Categories); highest != "" {
		pdf.CellFormat(0, 7, fmt.Sprintf("Largest contributor: %s", highest), "", 1, "L", false, 0, "")
	}
	trees := TreeEquivalent(in.Total)
	pdf.CellFormat(0, 7, fmt.Sprintf("Offsetting this footprint would take about %d tree(s) absorbing CO2 for a year.", trees), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func (r *PDFReportRenderer) renderDetailTable(pdf *gofpdf.Fpdf, in ReportInput) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Consumption Detail", "B", 1, "L", false, 0, "")
	pdf.Ln(2)

	headers := []struct {
		label string
		width float64
		align string
	}{
		{"Category", 50, "L"},
		{"Quantity", 40, "R"},
		{"Emissions (kg CO2e)", 50, "R"},
		{"Share", 30, "R"},
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(229, 231, 235)
	for _, h := range headers {
		pdf.CellFormat(h.width, 7, h.label, "1", 0, h.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, line := range in.Categories {
		pdf.CellFormat(50, 7, line.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f %s", line.Quantity, line.Unit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 7, fmt.Sprintf("%.2f", line.Emissions), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.1f%%", line.Percent), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(90, 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, fmt.Sprintf("%.2f", in.Total), "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "100.0%", "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.Ln(6)
}

func (r *PDFReportRenderer) renderHistory(pdf *gofpdf.Fpdf, in ReportInput) {
	if len(in.History) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Six-Month History", "B", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(229, 231, 235)
	pdf.CellFormat(60, 7, "Month", "1", 0, "L", true, 0, "")
	pdf.CellFormat(60, 7, "Total (kg CO2e)", "1", 0, "R", true, 0, "")
	pdf.CellFormat(50, 7, "Change", "1", 0, "R", true, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, line := range in.History {
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(60, 7, line.Month, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, fmt.Sprintf("%.2f", line.Total), "1", 0, "R", false, 0, "")
		change := "-"
		if line.ChangePercent != nil {
			change = fmt.Sprintf("%+.1f%%", *line.ChangePercent)
			if *line.ChangePercent > 0 {
				pdf.SetTextColor(185, 28, 28)
			} else if *line.ChangePercent < 0 {
				pdf.SetTextColor(21, 128, 61)
			}
		}
		pdf.CellFormat(50, 7, change, "1", 0, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(-1)
	}
	pdf.Ln(6)
}

func (r *PDFReportRenderer) renderRecommendations(pdf *gofpdf.Fpdf, in ReportInput) {
	highest := highestCategory(in.Categories)
	tips := TipsForCategory(highest)
	if len(tips) == 0 {
		return
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Recommendations", "B", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	for i, tip := range tips {
		pdf.CellFormat(8, 6, fmt.Sprintf("%d.", i+1), "", 0, "L", false, 0, "")
		pdf.MultiCell(0, 6, tip, "", "L", false)
		if i < len(tips)-1 {
			pdf.Ln(1)
		}
	}
}

func highestCategory(lines []CategoryLine) string {
	highest := ""
	max := 0.0
	for _, line := range lines {
		if line.Emissions > max {
			max = line.Emissions
			highest = line.Name
		}
	}
	return highest
}

func levelColor(level string) (int, int, int) {
	switch level {
	case "High":
		return 185, 28, 28
	case "Medium":
		return 217, 119, 6
	default:
		return 21, 128, 61
	}
}
