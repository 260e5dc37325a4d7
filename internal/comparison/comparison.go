// Package comparison evaluates every car and financing scenario of a
// configuration into rows that can be compared side by side.
package comparison

import (
	"fmt"
	"time"

	"github.com/iwvelando/carcost/internal/calculator"
	"github.com/iwvelando/carcost/internal/config"
	"github.com/iwvelando/carcost/pkg/finance"
	"github.com/iwvelando/carcost/pkg/loans"
	"github.com/iwvelando/carcost/pkg/optimization"
	"go.uber.org/zap"
)

// Row is one car financed under one scenario.
type Row struct {
	CarID         string                        `json:"carId"`
	CarLabel      string                        `json:"carLabel"`
	Description   string                        `json:"description,omitempty"`
	ScenarioID    string                        `json:"scenarioId"`
	ScenarioLabel string                        `json:"scenarioLabel"`
	Active        bool                          `json:"active"`
	Province      string                        `json:"province"`
	Frequency     loans.PaymentFrequency        `json:"frequency"`
	Terms         loans.Terms                   `json:"terms"`
	Result        calculator.CalculationResult  `json:"result"`
	Lifetime      calculator.LifetimeCostResult `json:"lifetime"`
	Range         *calculator.UsageRange        `json:"range,omitempty"`
	Optimizations []optimization.Summary        `json:"optimizations,omitempty"`
}

// GetComparison evaluates the configuration as of its reference time.
func GetComparison(logger *zap.Logger, conf config.Configuration) ([]Row, error) {
	return GetComparisonWithFixedTime(logger, conf, conf.ReferenceTime())
}

// GetComparisonWithFixedTime evaluates every scenario of every car with the
// car ages measured at now.
func GetComparisonWithFixedTime(logger *zap.Logger, conf config.Configuration, now time.Time) ([]Row, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var rows []Row
	for _, car := range conf.Cars {
		effective := conf.Settings.Resolve(car.Overrides)
		taxRate, err := effective.TaxRate()
		if err != nil {
			return rows, fmt.Errorf("car %s: %w", car.ID, err)
		}

		if len(car.Scenarios) == 0 {
			logger.Debug(fmt.Sprintf("skipping car %s because it has no financing scenarios", car.ID),
				zap.String("op", "comparison.GetComparison"),
			)
			continue
		}

		for i, scenario := range car.Scenarios {
			terms := scenario.Terms()
			inputs := car.LifetimeInputs(effective, terms.Frequency)

			result := calculator.CalculateScenario(car.Price, effective.Fees, taxRate, car.OtherFees, terms)
			row := Row{
				CarID:         car.ID,
				CarLabel:      car.Label,
				Description:   car.Description,
				ScenarioID:    scenario.ID,
				ScenarioLabel: scenario.Label,
				Active:        i == car.ActiveScenarioIndex,
				Province:      string(effective.Province),
				Frequency:     terms.Frequency,
				Terms:         terms,
				Result:        result,
				Lifetime:      calculator.CalculateLifetimeCostWithFixedTime(result, inputs, now),
			}
			if usage, ok := calculator.CalculateLifetimeRange(result, inputs, now); ok {
				row.Range = &usage
			}

			logger.Debug(fmt.Sprintf("car %s scenario %s costs %.2f over %.2f years",
				car.ID, scenario.ID, row.Lifetime.LifetimeTotalCost, row.Lifetime.EffectiveYears),
				zap.String("op", "comparison.GetComparison"),
			)
			rows = append(rows, row)
		}
	}

	return rows, nil
}

// Cheapest returns the active row with the lowest cost per year. Cars with no
// remaining life are ignored.
func Cheapest(rows []Row) (Row, bool) {
	var best Row
	found := false
	for _, row := range rows {
		if !row.Active || row.Lifetime.EffectiveYears <= 0 {
			continue
		}
		if !found || row.Lifetime.CostPerYear < best.Lifetime.CostPerYear {
			best = row
			found = true
		}
	}
	return best, found
}

// Schedule builds the amortization schedule of one car's scenario.
func Schedule(logger *zap.Logger, conf config.Configuration, carID, scenarioID string) (loans.Financing, []loans.Payment, error) {
	index := conf.FindCar(carID)
	if index < 0 {
		return loans.Financing{}, nil, fmt.Errorf("car %s not found", carID)
	}
	car := conf.Cars[index]

	scenario, ok := car.ActiveScenario()
	if scenarioID != "" {
		scenario, ok = car.Scenario(scenarioID)
	}
	if !ok {
		return loans.Financing{}, nil, fmt.Errorf("car %s has no scenario %q", carID, scenarioID)
	}

	result, _, err := conf.Calculate(car, scenario)
	if err != nil {
		return loans.Financing{}, nil, err
	}

	financing := result.Financing(scenario.Terms())
	schedule, err := loans.NewAmortizationScheduleGenerator(logger).GenerateSchedule(financing)
	if err != nil {
		return financing, nil, fmt.Errorf("car %s scenario %s: %w", carID, scenario.ID, err)
	}
	return financing, schedule, nil
}

// Investment walks the cash kept invested alongside a car's loan through each
// payment period. It is empty when nothing is financed or no cash is invested.
func Investment(logger *zap.Logger, conf config.Configuration, carID string, financing loans.Financing) ([]finance.InvestmentPeriod, error) {
	index := conf.FindCar(carID)
	if index < 0 {
		return nil, fmt.Errorf("car %s not found", carID)
	}
	effective := conf.Settings.Resolve(conf.Cars[index].Overrides)

	return finance.NewInvestmentProcessor(logger).Simulate(
		financing.AmountFinanced,
		financing.PeriodicPayment,
		financing.NumberOfPayments,
		effective.InvestmentReturn,
		financing.Frequency,
		effective.CashOnHand,
	), nil
}
