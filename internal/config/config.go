// Package config defines the application state (settings, cars and their
// financing scenarios) and includes functions for loading it, filling in
// defaults and resolving per-car settings.
package config

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/carcost/internal/calculator"
	"github.com/iwvelando/carcost/pkg/constants"
	"github.com/iwvelando/carcost/pkg/loans"
	"github.com/iwvelando/carcost/pkg/pricing"
	"github.com/iwvelando/carcost/pkg/tax"
	"github.com/spf13/viper"
)

// Configuration holds the full application state plus the options that only
// apply to the command line tool.
type Configuration struct {
	Settings      Settings        `json:"settings" yaml:"settings" mapstructure:"settings"`
	Cars          []Car           `json:"cars" yaml:"cars" mapstructure:"cars"`
	ReferenceYear int             `json:"referenceYear,omitempty" yaml:"referenceYear,omitempty" mapstructure:"referenceYear"`
	Optimizer     OptimizerConfig `json:"-" yaml:"optimizer,omitempty" mapstructure:"optimizer"`
	Logging       LoggingConfig   `json:"-" yaml:"logging,omitempty" mapstructure:"logging"`
	Output        OutputConfig    `json:"-" yaml:"output,omitempty" mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, xlsx, pdf
	File   string `yaml:"file,omitempty" mapstructure:"file"`
}

// Settings are the values shared by every car unless a car overrides them.
type Settings struct {
	Province         string                 `json:"province" yaml:"province" mapstructure:"province"`
	Fees             pricing.DealershipFees `json:"fees" yaml:"fees" mapstructure:"fees"`
	MaxCarAge        int                    `json:"maxCarAge" yaml:"maxCarAge" mapstructure:"maxCarAge"`
	MileageCap       float64                `json:"mileageCap" yaml:"mileageCap" mapstructure:"mileageCap"`
	AnnualKm         float64                `json:"annualKm" yaml:"annualKm" mapstructure:"annualKm"`
	IncludeFuel      bool                   `json:"includeFuel" yaml:"includeFuel" mapstructure:"includeFuel"`
	InvestmentReturn float64                `json:"investmentReturn" yaml:"investmentReturn" mapstructure:"investmentReturn"`
	CashOnHand       float64                `json:"cashOnHand" yaml:"cashOnHand" mapstructure:"cashOnHand"`
}

// CarOverrides replaces individual settings for one car. A nil field falls
// back to the shared setting.
type CarOverrides struct {
	AnnualKm    *float64 `json:"annualKm,omitempty" yaml:"annualKm,omitempty" mapstructure:"annualKm"`
	IncludeFuel *bool    `json:"includeFuel,omitempty" yaml:"includeFuel,omitempty" mapstructure:"includeFuel"`
	MaxCarAge   *int     `json:"maxCarAge,omitempty" yaml:"maxCarAge,omitempty" mapstructure:"maxCarAge"`
	MileageCap  *float64 `json:"mileageCap,omitempty" yaml:"mileageCap,omitempty" mapstructure:"mileageCap"`
}

// FinancingScenario is one way of paying for a car.
type FinancingScenario struct {
	ID               string  `json:"id" yaml:"id" mapstructure:"id"`
	Label            string  `json:"label" yaml:"label" mapstructure:"label"`
	InterestRate     float64 `json:"interestRate" yaml:"interestRate" mapstructure:"interestRate"`
	LoanTermMonths   int     `json:"loanTermMonths" yaml:"loanTermMonths" mapstructure:"loanTermMonths"`
	DownPayment      float64 `json:"downPayment" yaml:"downPayment" mapstructure:"downPayment"`
	PayInFull        bool    `json:"payInFull" yaml:"payInFull" mapstructure:"payInFull"`
	PaymentFrequency string  `json:"paymentFrequency" yaml:"paymentFrequency" mapstructure:"paymentFrequency"`
}

// Terms converts the scenario into loan terms.
func (s FinancingScenario) Terms() loans.Terms {
	return loans.Terms{
		AnnualInterestRate: s.InterestRate,
		TermMonths:         s.LoanTermMonths,
		DownPayment:        s.DownPayment,
		PayInFull:          s.PayInFull,
		Frequency:          loans.PaymentFrequency(s.PaymentFrequency),
	}
}

// Car is a vehicle under consideration with its financing scenarios.
type Car struct {
	ID                   string                `json:"id" yaml:"id" mapstructure:"id"`
	Label                string                `json:"label" yaml:"label" mapstructure:"label"`
	Description          string                `json:"description" yaml:"description" mapstructure:"description"`
	Price                float64               `json:"price" yaml:"price" mapstructure:"price"`
	VehicleYear          int                   `json:"vehicleYear" yaml:"vehicleYear" mapstructure:"vehicleYear"`
	InitialMileage       float64               `json:"initialMileage" yaml:"initialMileage" mapstructure:"initialMileage"`
	OtherFees            float64               `json:"otherFees" yaml:"otherFees" mapstructure:"otherFees"`
	InsuranceCostPerYear float64               `json:"insuranceCostPerYear" yaml:"insuranceCostPerYear" mapstructure:"insuranceCostPerYear"`
	FuelInputs           calculator.FuelInputs `json:"fuelInputs" yaml:"fuelInputs" mapstructure:"fuelInputs"`
	Overrides            CarOverrides          `json:"overrides" yaml:"overrides" mapstructure:"overrides"`
	Scenarios            []FinancingScenario   `json:"scenarios" yaml:"scenarios" mapstructure:"scenarios"`
	ActiveScenarioIndex  int                   `json:"activeScenarioIndex" yaml:"activeScenarioIndex" mapstructure:"activeScenarioIndex"`
}

// ActiveScenario returns the selected scenario, or false when the car has none.
func (c Car) ActiveScenario() (FinancingScenario, bool) {
	if c.ActiveScenarioIndex < 0 || c.ActiveScenarioIndex >= len(c.Scenarios) {
		return FinancingScenario{}, false
	}
	return c.Scenarios[c.ActiveScenarioIndex], true
}

// Scenario looks a scenario up by ID.
func (c Car) Scenario(id string) (FinancingScenario, bool) {
	for _, s := range c.Scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return FinancingScenario{}, false
}

// FindCar returns the index of the car with the given ID or -1.
func (c *Configuration) FindCar(id string) int {
	for i := range c.Cars {
		if c.Cars[i].ID == id {
			return i
		}
	}
	return -1
}

// ReferenceTime is the moment vehicle ages are measured from: January 1st of
// ReferenceYear when set, otherwise the current time.
func (c *Configuration) ReferenceTime() time.Time {
	if c.ReferenceYear > 0 {
		return time.Date(c.ReferenceYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Now()
}

// LoadConfiguration takes a file path as input and loads the YAML- or
// JSON-formatted configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	if strings.HasSuffix(strings.ToLower(configPath), ".json") {
		v.SetConfigType("json")
	} else {
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML (or JSON) configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromBytes loads a configuration that is JSON when it
// starts with '{' and YAML otherwise.
func LoadConfigurationFromBytes(data []byte) (*Configuration, error) {
	v := newViper()
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		v.SetConfigType("json")
	} else {
		v.SetConfigType("yaml")
	}
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.Normalize()
	return &configuration, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("settings.province", constants.DefaultProvince)
	v.SetDefault("settings.fees.freightPdi", constants.DefaultFreightPDI)
	v.SetDefault("settings.fees.airConditioningTax", constants.DefaultAirConditioning)
	v.SetDefault("settings.fees.tireLevy", constants.DefaultTireLevy)
	v.SetDefault("settings.fees.dealerFee", constants.DefaultDealerFee)
	v.SetDefault("settings.maxCarAge", constants.DefaultMaxCarAge)
	v.SetDefault("settings.mileageCap", constants.DefaultMileageCap)
	v.SetDefault("settings.annualKm", constants.DefaultAnnualKm)
	v.SetDefault("settings.includeFuel", constants.DefaultIncludeFuel)
	v.SetDefault("settings.investmentReturn", 0)
	v.SetDefault("settings.cashOnHand", 0)
	v.SetDefault("optimizer.objective", OptimizerObjectiveMinimizeCost)
	v.SetDefault("optimizer.tolerance", constants.DefaultOptimizerTolerance)
	v.SetDefault("optimizer.maxIterations", constants.DefaultOptimizerMaxIterations)
	v.SetDefault("optimizer.samples", constants.DefaultOptimizerSamples)
	v.SetDefault("output.format", constants.OutputFormatPretty)
	return v
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if _, err := tax.CombinedRate(tax.Province(c.Settings.Province)); err != nil {
		warnings = append(warnings, fmt.Sprintf("Settings: %v", err))
	}
	if len(c.Cars) == 0 {
		warnings = append(warnings, "No cars configured")
	}

	now := c.ReferenceTime()
	seen := make(map[string]bool)
	for _, car := range c.Cars {
		name := car.Label
		if name == "" {
			name = car.ID
		}
		if seen[car.ID] {
			warnings = append(warnings, fmt.Sprintf("Car '%s' reuses ID %s", name, car.ID))
		}
		seen[car.ID] = true

		if car.Price <= 0 {
			warnings = append(warnings, fmt.Sprintf("Car '%s' has no price", name))
		}
		if car.VehicleYear > now.Year()+1 {
			warnings = append(warnings, fmt.Sprintf("Car '%s' model year %d is in the future", name, car.VehicleYear))
		}
		effective := c.Settings.Resolve(car.Overrides)
		if now.Year()-car.VehicleYear >= effective.MaxCarAge {
			warnings = append(warnings, fmt.Sprintf("Car '%s' is already at or past the maximum age of %d years", name, effective.MaxCarAge))
		}
		if car.InitialMileage >= effective.MileageCap {
			warnings = append(warnings, fmt.Sprintf("Car '%s' is already at or past the mileage cap", name))
		}
		if len(car.Scenarios) == 0 {
			warnings = append(warnings, fmt.Sprintf("Car '%s' has no financing scenarios", name))
		}

		for _, s := range car.Scenarios {
			if !loans.PaymentFrequency(s.PaymentFrequency).Valid() {
				warnings = append(warnings, fmt.Sprintf("Car '%s' scenario '%s' has unknown payment frequency %q", name, s.Label, s.PaymentFrequency))
			}
			if s.LoanTermMonths <= 0 && !s.PayInFull {
				warnings = append(warnings, fmt.Sprintf("Car '%s' scenario '%s' has no loan term", name, s.Label))
			}
			if s.InterestRate < 0 {
				warnings = append(warnings, fmt.Sprintf("Car '%s' scenario '%s' has a negative interest rate", name, s.Label))
			}
			if s.DownPayment < 0 {
				warnings = append(warnings, fmt.Sprintf("Car '%s' scenario '%s' has a negative down payment", name, s.Label))
			}
		}
	}

	return warnings
}
