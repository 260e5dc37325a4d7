package config

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/iwvelando/carcost/internal/calculator"
	"github.com/iwvelando/carcost/pkg/constants"
	"github.com/iwvelando/carcost/pkg/pricing"
)

var idCounter uint64

// GenerateID returns an identifier made of the current time in milliseconds
// and a process-wide counter.
func GenerateID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixMilli(), atomic.AddUint64(&idCounter, 1))
}

// DefaultFees returns typical Canadian dealership fees.
func DefaultFees() pricing.DealershipFees {
	return pricing.DealershipFees{
		FreightPDI:         constants.DefaultFreightPDI,
		AirConditioningTax: constants.DefaultAirConditioning,
		TireLevy:           constants.DefaultTireLevy,
		DealerFee:          constants.DefaultDealerFee,
	}
}

// DefaultFuelInputs returns a mid-size car's fuel use at a typical pump price.
func DefaultFuelInputs() calculator.FuelInputs {
	return calculator.FuelInputs{
		Consumption:   constants.DefaultFuelConsumption,
		PricePerLitre: constants.DefaultFuelPrice,
	}
}

// DefaultSettings returns the settings used for a fresh state.
func DefaultSettings() Settings {
	return Settings{
		Province:    constants.DefaultProvince,
		Fees:        DefaultFees(),
		MaxCarAge:   constants.DefaultMaxCarAge,
		MileageCap:  constants.DefaultMileageCap,
		AnnualKm:    constants.DefaultAnnualKm,
		IncludeFuel: constants.DefaultIncludeFuel,
	}
}

// DefaultScenario returns a new scenario. An empty label becomes "Scenario 1".
func DefaultScenario(label string) FinancingScenario {
	if label == "" {
		label = "Scenario 1"
	}
	return FinancingScenario{
		ID:               GenerateID(),
		Label:            label,
		InterestRate:     constants.DefaultInterestRate,
		LoanTermMonths:   constants.DefaultLoanTermMonths,
		PaymentFrequency: constants.DefaultPaymentFrequency,
	}
}

// DefaultCar returns a new car built in year with a single default scenario.
// An empty label becomes "New Car".
func DefaultCar(label string, year int) Car {
	if label == "" {
		label = "New Car"
	}
	return Car{
		ID:          GenerateID(),
		Label:       label,
		Price:       constants.DefaultCarPrice,
		VehicleYear: year,
		FuelInputs:  DefaultFuelInputs(),
		Scenarios:   []FinancingScenario{DefaultScenario("")},
	}
}

// DefaultConfiguration returns the initial state: default settings and one car.
func DefaultConfiguration() *Configuration {
	conf := &Configuration{Settings: DefaultSettings()}
	conf.Cars = []Car{DefaultCar("Car 1", conf.ReferenceTime().Year())}
	conf.Optimizer.Normalize()
	return conf
}
