package config

import (
	"github.com/iwvelando/carcost/internal/calculator"
	"github.com/iwvelando/carcost/pkg/loans"
	"github.com/iwvelando/carcost/pkg/pricing"
	"github.com/iwvelando/carcost/pkg/tax"
)

// EffectiveSettings are the settings that apply to one car once its
// overrides have been taken into account.
type EffectiveSettings struct {
	Province         tax.Province
	Fees             pricing.DealershipFees
	MaxCarAge        int
	MileageCap       float64
	AnnualKm         float64
	IncludeFuel      bool
	InvestmentReturn float64
	CashOnHand       float64
}

// Resolve applies a car's overrides to the shared settings. An override that
// is set wins even when it holds a zero value such as IncludeFuel=false.
func (s Settings) Resolve(o CarOverrides) EffectiveSettings {
	effective := EffectiveSettings{
		Province:         tax.Province(s.Province),
		Fees:             s.Fees,
		MaxCarAge:        s.MaxCarAge,
		MileageCap:       s.MileageCap,
		AnnualKm:         s.AnnualKm,
		IncludeFuel:      s.IncludeFuel,
		InvestmentReturn: s.InvestmentReturn,
		CashOnHand:       s.CashOnHand,
	}
	if o.AnnualKm != nil {
		effective.AnnualKm = *o.AnnualKm
	}
	if o.IncludeFuel != nil {
		effective.IncludeFuel = *o.IncludeFuel
	}
	if o.MaxCarAge != nil {
		effective.MaxCarAge = *o.MaxCarAge
	}
	if o.MileageCap != nil {
		effective.MileageCap = *o.MileageCap
	}
	return effective
}

// TaxRate returns the combined sales tax fraction for the province.
func (e EffectiveSettings) TaxRate() (float64, error) {
	return tax.CombinedRate(e.Province)
}

// HasOverrides reports whether any override is set.
func (o CarOverrides) HasOverrides() bool {
	return o.AnnualKm != nil || o.IncludeFuel != nil || o.MaxCarAge != nil || o.MileageCap != nil
}

// LifetimeInputs combines a car with its effective settings into the inputs
// of the lifetime projection.
func (c Car) LifetimeInputs(e EffectiveSettings, frequency loans.PaymentFrequency) calculator.LifetimeInputs {
	return calculator.LifetimeInputs{
		Fuel:                 c.FuelInputs,
		AnnualKm:             e.AnnualKm,
		MaxCarAge:            e.MaxCarAge,
		MileageCap:           e.MileageCap,
		VehicleYear:          c.VehicleYear,
		InitialMileage:       c.InitialMileage,
		IncludeFuel:          e.IncludeFuel,
		InvestmentReturn:     e.InvestmentReturn,
		Frequency:            frequency,
		CashOnHand:           e.CashOnHand,
		InsuranceCostPerYear: c.InsuranceCostPerYear,
	}
}

// Calculate prices and finances a car under one of its scenarios and projects
// the result over the car's remaining life as of the configuration's
// reference time.
func (c *Configuration) Calculate(car Car, scenario FinancingScenario) (calculator.CalculationResult, calculator.LifetimeCostResult, error) {
	effective := c.Settings.Resolve(car.Overrides)
	taxRate, err := effective.TaxRate()
	if err != nil {
		return calculator.CalculationResult{}, calculator.LifetimeCostResult{}, err
	}

	terms := scenario.Terms()
	result := calculator.CalculateScenario(car.Price, effective.Fees, taxRate, car.OtherFees, terms)
	lifetime := calculator.CalculateLifetimeCostWithFixedTime(result, car.LifetimeInputs(effective, terms.Frequency), c.ReferenceTime())
	return result, lifetime, nil
}
