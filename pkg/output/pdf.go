package output

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/iwvelando/carcost/internal/comparison"
	"github.com/iwvelando/carcost/pkg/format"
)

type pdfColumn struct {
	title string
	width float64
	align string
	value func(comparison.Row) string
}

var pdfColumns = []pdfColumn{
	{"Car", 38, "L", func(r comparison.Row) string { return r.CarLabel }},
	{"Scenario", 34, "L", func(r comparison.Row) string { return r.ScenarioLabel }},
	{"Frequency", 22, "L", func(r comparison.Row) string { return format.FrequencyLabel(string(r.Frequency)) }},
	{"Payment", 22, "R", func(r comparison.Row) string { return format.Currency(r.Result.PeriodicPayment) }},
	{"Interest", 24, "R", func(r comparison.Row) string { return format.Currency(r.Result.TotalInterest) }},
	{"Total Cost", 26, "R", func(r comparison.Row) string { return format.Currency(r.Result.TotalCost) }},
	{"Years", 14, "R", func(r comparison.Row) string { return fmt.Sprintf("%.1f", r.Lifetime.EffectiveYears) }},
	{"Lifetime", 28, "R", func(r comparison.Row) string { return format.Currency(r.Lifetime.LifetimeTotalCost) }},
	{"Per Year", 24, "R", func(r comparison.Row) string { return format.Currency(r.Lifetime.CostPerYear) }},
	{"Per Month", 22, "R", func(r comparison.Row) string { return format.Currency(r.Lifetime.CostPerMonth) }},
}

// PdfFormat writes a printable landscape report of the comparison.
func PdfFormat(w io.Writer, rows []comparison.Row) error {
	return writePDF(w, rows, time.Now())
}

func writePDF(w io.Writer, rows []comparison.Row, generated time.Time) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Car Cost Comparison", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "I", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", generated.Format("2 January 2006")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFillColor(245, 247, 250)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(0, 51, 102)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(50, 50, 50)
	for i, row := range rows {
		fill := i%2 == 1
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 6, tr(col.value(row)), "1", 0, col.align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if cheapest, ok := comparison.Cheapest(rows); ok {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Lowest cost per year: %s (%s) at %s",
			cheapest.CarLabel, cheapest.ScenarioLabel, format.Currency(cheapest.Lifetime.CostPerYear))), "", 1, "L", false, 0, "")
	}

	for _, row := range rows {
		for _, summary := range row.Optimizations {
			pdf.SetFont("Arial", "", 9)
			pdf.CellFormat(0, 5, tr(fmt.Sprintf("Optimizer %s for %s: down payment %s -> %s, saves %s",
				summary.Objective, summary.CarLabel, summary.OriginalDisplay, summary.ValueDisplay,
				format.Currency(summary.Savings()))), "", 1, "L", false, 0, "")
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
