package calculator

import (
	"math"
	"time"

	"github.com/iwvelando/carcost/pkg/constants"
	"github.com/iwvelando/carcost/pkg/finance"
	"github.com/iwvelando/carcost/pkg/loans"
)

// FuelInputs describes how much fuel a car burns and what it costs.
type FuelInputs struct {
	Consumption   float64 `json:"fuelConsumption" yaml:"fuelConsumption" mapstructure:"fuelConsumption"`
	PricePerLitre float64 `json:"fuelPricePerLitre" yaml:"fuelPricePerLitre" mapstructure:"fuelPricePerLitre"`
}

// LifetimeInputs are the fully resolved usage figures for a car.
type LifetimeInputs struct {
	Fuel                 FuelInputs
	AnnualKm             float64
	MaxCarAge            int
	MileageCap           float64
	VehicleYear          int
	InitialMileage       float64
	IncludeFuel          bool
	InvestmentReturn     float64
	Frequency            loans.PaymentFrequency
	CashOnHand           float64
	InsuranceCostPerYear float64
}

// Limit names the constraint that ends ownership.
type Limit string

// Ownership limits.
const (
	LimitYears   Limit = constants.LimitYears
	LimitMileage Limit = constants.LimitMileage
)

// LifetimeCostResult is the cost of owning a car until it reaches its age or
// mileage limit.
type LifetimeCostResult struct {
	EffectiveYears      float64 `json:"effectiveYears"`
	LimitedBy           Limit   `json:"limitedBy"`
	AnnualFuelCost      float64 `json:"annualFuelCost"`
	TotalFuelCost       float64 `json:"totalFuelCost"`
	AnnualInsuranceCost float64 `json:"annualInsuranceCost"`
	TotalInsuranceCost  float64 `json:"totalInsuranceCost"`
	TotalFinancingCost  float64 `json:"totalFinancingCost"`
	InvestmentGain      float64 `json:"investmentGain"`
	LifetimeTotalCost   float64 `json:"lifetimeTotalCost"`
	CostPerYear         float64 `json:"costPerYear"`
	CostPerMonth        float64 `json:"costPerMonth"`
}

// CalculateLifetimeCost projects result over the car's remaining life as of today.
func CalculateLifetimeCost(result CalculationResult, inputs LifetimeInputs) LifetimeCostResult {
	return CalculateLifetimeCostWithFixedTime(result, inputs, time.Now())
}

// CalculateLifetimeCostWithFixedTime projects result over the car's remaining
// life as of now. A car already past its maximum age has no remaining years
// and reports zero cost rates.
func CalculateLifetimeCostWithFixedTime(result CalculationResult, inputs LifetimeInputs, now time.Time) LifetimeCostResult {
	currentAge := now.Year() - inputs.VehicleYear
	remainingYears := math.Max(0, float64(inputs.MaxCarAge-currentAge))

	remainingKm := math.Max(0, inputs.MileageCap-inputs.InitialMileage)
	mileageYears := math.Inf(1)
	if inputs.AnnualKm > 0 {
		mileageYears = remainingKm / inputs.AnnualKm
	}

	effectiveYears := math.Min(remainingYears, mileageYears)
	limitedBy := LimitYears
	if mileageYears <= remainingYears {
		limitedBy = LimitMileage
	}

	annualFuelCost := 0.0
	if inputs.IncludeFuel {
		annualFuelCost = inputs.AnnualKm / constants.KilometresPerFuelUnit * inputs.Fuel.Consumption * inputs.Fuel.PricePerLitre
	}
	totalFuelCost := annualFuelCost * effectiveYears
	totalInsuranceCost := inputs.InsuranceCostPerYear * effectiveYears

	gain := finance.CalculateInvestmentGain(result.AmountFinanced, result.PeriodicPayment, result.NumberOfPayments,
		inputs.InvestmentReturn, inputs.Frequency, inputs.CashOnHand)

	lifetimeTotal := result.TotalCost + totalFuelCost + totalInsuranceCost - gain

	costPerYear := 0.0
	if effectiveYears > 0 {
		costPerYear = lifetimeTotal / effectiveYears
	}

	return LifetimeCostResult{
		EffectiveYears:      effectiveYears,
		LimitedBy:           limitedBy,
		AnnualFuelCost:      annualFuelCost,
		TotalFuelCost:       totalFuelCost,
		AnnualInsuranceCost: inputs.InsuranceCostPerYear,
		TotalInsuranceCost:  totalInsuranceCost,
		TotalFinancingCost:  result.TotalCost,
		InvestmentGain:      gain,
		LifetimeTotalCost:   lifetimeTotal,
		CostPerYear:         costPerYear,
		CostPerMonth:        costPerYear / constants.MonthsPerYear,
	}
}

// UsageRange brackets the expected lifetime cost with lighter and heavier driving.
type UsageRange struct {
	Low      LifetimeCostResult `json:"low"`
	Expected LifetimeCostResult `json:"expected"`
	High     LifetimeCostResult `json:"high"`
}

// CalculateLifetimeRange evaluates the projection at the low, expected and
// high annual distance. It reports false when no distance is driven.
func CalculateLifetimeRange(result CalculationResult, inputs LifetimeInputs, now time.Time) (UsageRange, bool) {
	if inputs.AnnualKm <= 0 {
		return UsageRange{}, false
	}

	low := inputs
	low.AnnualKm = inputs.AnnualKm * constants.LowUsageFactor
	high := inputs
	high.AnnualKm = inputs.AnnualKm * constants.HighUsageFactor

	return UsageRange{
		Low:      CalculateLifetimeCostWithFixedTime(result, low, now),
		Expected: CalculateLifetimeCostWithFixedTime(result, inputs, now),
		High:     CalculateLifetimeCostWithFixedTime(result, high, now),
	}, true
}
