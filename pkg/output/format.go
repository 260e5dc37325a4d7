// Package output provides utilities for formatting and displaying comparison results.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/carcost/internal/comparison"
	"github.com/iwvelando/carcost/pkg/constants"
	"github.com/iwvelando/carcost/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Columns are the headings shared by the tabular formats.
var Columns = []string{
	"Car", "Scenario", "Active", "Frequency", "Down Payment", "Amount Financed",
	"Payment", "Payments", "Total Interest", "Total Cost", "Investment Gain",
	"Years", "Limited By", "Fuel", "Insurance", "Lifetime Cost", "Per Year", "Per Month",
}

// Write renders rows in the given output format.
func Write(w io.Writer, outputFormat string, rows []comparison.Row) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, rows)
	case constants.OutputFormatCSV:
		return CsvFormat(w, rows)
	case constants.OutputFormatXLSX:
		return XlsxFormat(w, rows)
	case constants.OutputFormatPDF:
		return PdfFormat(w, rows)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable summary.
func PrettyFormat(w io.Writer, rows []comparison.Row) error {
	p := message.NewPrinter(language.English)
	cheapest, haveCheapest := comparison.Cheapest(rows)

	previousCar := ""
	for i, row := range rows {
		if row.CarID != previousCar {
			if i > 0 {
				fmt.Fprintf(w, "\n")
			}
			fmt.Fprintf(w, "--- Results for car %s ---\n", row.CarLabel)
			previousCar = row.CarID
		}

		marker := " "
		if row.Active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s (%s)\n", marker, row.ScenarioLabel, format.FrequencyLabel(string(row.Frequency)))

		result := row.Result
		if result.AmountFinanced > 0 {
			_, _ = p.Fprintf(w, "    Financed %s over %d payments of %s at %s\n",
				format.Currency(result.AmountFinanced), result.NumberOfPayments,
				format.Currency(result.PeriodicPayment), format.Percent(row.Terms.AnnualInterestRate))
			fmt.Fprintf(w, "    Total interest %s, total cost %s\n",
				format.Currency(result.TotalInterest), format.Currency(result.TotalCost))
		} else {
			fmt.Fprintf(w, "    Paid up front, total cost %s\n", format.Currency(result.TotalCost))
		}

		lifetime := row.Lifetime
		_, _ = p.Fprintf(w, "    Lifetime %.1f years (limited by %s): %s, %s/year, %s/month\n",
			lifetime.EffectiveYears, lifetime.LimitedBy, format.Currency(lifetime.LifetimeTotalCost),
			format.Currency(lifetime.CostPerYear), format.Currency(lifetime.CostPerMonth))
		if lifetime.InvestmentGain != 0 {
			fmt.Fprintf(w, "    Investment gain %s\n", format.Currency(lifetime.InvestmentGain))
		}
		if row.Range != nil {
			fmt.Fprintf(w, "    Usage range %s to %s per year\n",
				format.Currency(row.Range.Low.CostPerYear), format.Currency(row.Range.High.CostPerYear))
		}

		for _, summary := range row.Optimizations {
			fmt.Fprintf(w, "    Optimizer (%s): down payment %s -> %s, saves %s",
				summary.Objective, summary.OriginalDisplay, summary.ValueDisplay, format.Currency(summary.Savings()))
			if summary.Fallback {
				fmt.Fprintf(w, " [fallback]")
			}
			fmt.Fprintf(w, "\n")
			for _, note := range summary.Notes {
				fmt.Fprintf(w, "      note: %s\n", note)
			}
		}
	}

	if haveCheapest && len(rows) > 1 {
		fmt.Fprintf(w, "\nLowest cost per year: %s (%s) at %s\n",
			cheapest.CarLabel, cheapest.ScenarioLabel, format.Currency(cheapest.Lifetime.CostPerYear))
	}
	return nil
}

// CsvFormat outputs one line per car and scenario in comma-separated value format.
func CsvFormat(w io.Writer, rows []comparison.Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(record(row)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func record(row comparison.Row) []string {
	money := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	return []string{
		row.CarLabel,
		row.ScenarioLabel,
		strconv.FormatBool(row.Active),
		format.FrequencyLabel(string(row.Frequency)),
		money(row.Result.EffectiveDownPayment),
		money(row.Result.AmountFinanced),
		money(row.Result.PeriodicPayment),
		strconv.Itoa(row.Result.NumberOfPayments),
		money(row.Result.TotalInterest),
		money(row.Result.TotalCost),
		money(row.Lifetime.InvestmentGain),
		strconv.FormatFloat(row.Lifetime.EffectiveYears, 'f', 2, 64),
		string(row.Lifetime.LimitedBy),
		money(row.Lifetime.TotalFuelCost),
		money(row.Lifetime.TotalInsuranceCost),
		money(row.Lifetime.LifetimeTotalCost),
		money(row.Lifetime.CostPerYear),
		money(row.Lifetime.CostPerMonth),
	}
}
