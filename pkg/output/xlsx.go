package output

import (
	"fmt"
	"io"

	"github.com/iwvelando/carcost/internal/comparison"
	"github.com/iwvelando/carcost/pkg/format"
	"github.com/xuri/excelize/v2"
)

const (
	comparisonSheet   = "Comparison"
	optimizationSheet = "Optimizer"
)

// XlsxFormat writes a spreadsheet with one row per car and scenario, plus an
// optimizer sheet when any row carries optimizer results.
func XlsxFormat(w io.Writer, rows []comparison.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", comparisonSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeSheetRow(f, comparisonSheet, 1, toCells(Columns)); err != nil {
		return err
	}
	for i, row := range rows {
		values := []interface{}{
			row.CarLabel,
			row.ScenarioLabel,
			row.Active,
			format.FrequencyLabel(string(row.Frequency)),
			row.Result.EffectiveDownPayment,
			row.Result.AmountFinanced,
			row.Result.PeriodicPayment,
			row.Result.NumberOfPayments,
			row.Result.TotalInterest,
			row.Result.TotalCost,
			row.Lifetime.InvestmentGain,
			row.Lifetime.EffectiveYears,
			string(row.Lifetime.LimitedBy),
			row.Lifetime.TotalFuelCost,
			row.Lifetime.TotalInsuranceCost,
			row.Lifetime.LifetimeTotalCost,
			row.Lifetime.CostPerYear,
			row.Lifetime.CostPerMonth,
		}
		if err := writeSheetRow(f, comparisonSheet, i+2, values); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(comparisonSheet, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	if len(rows) > 0 {
		last, err := excelize.CoordinatesToCellName(len(Columns), len(rows)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(comparisonSheet, "E2", last, money); err != nil {
			return fmt.Errorf("failed to style values: %w", err)
		}
	}

	if err := writeOptimizations(f, rows, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}

func writeOptimizations(f *excelize.File, rows []comparison.Row, headerStyle int) error {
	header := []string{"Car", "Scenario", "Objective", "Original", "Optimized", "Original Cost", "Optimized Cost", "Savings", "Converged", "Fallback"}

	line := 1
	for _, row := range rows {
		for _, summary := range row.Optimizations {
			if line == 1 {
				if _, err := f.NewSheet(optimizationSheet); err != nil {
					return fmt.Errorf("failed to create sheet: %w", err)
				}
				if err := writeSheetRow(f, optimizationSheet, line, toCells(header)); err != nil {
					return err
				}
				if err := f.SetCellStyle(optimizationSheet, "A1", "J1", headerStyle); err != nil {
					return fmt.Errorf("failed to style header: %w", err)
				}
				line++
			}
			values := []interface{}{
				summary.CarLabel,
				summary.ScenarioLabel,
				summary.Objective,
				summary.Original,
				summary.Value,
				summary.OriginalLifetimeCost,
				summary.LifetimeCost,
				summary.Savings(),
				summary.Converged,
				summary.Fallback,
			}
			if err := writeSheetRow(f, optimizationSheet, line, values); err != nil {
				return err
			}
			line++
		}
	}
	return nil
}

func writeSheetRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
