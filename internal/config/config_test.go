package config

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Example config",
			configPath: "../../carcost.yaml.example",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration("../../carcost.yaml.example")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.ReferenceYear != 2026 {
		t.Errorf("ReferenceYear = %d, expected 2026", config.ReferenceYear)
	}
	if config.Settings.Province != "ON" || config.Settings.Fees.Total() != 2415 {
		t.Errorf("unexpected settings: %+v", config.Settings)
	}
	if len(config.Cars) != 2 {
		t.Fatalf("expected 2 cars, got %d", len(config.Cars))
	}

	suv := config.Cars[1]
	if suv.Overrides.AnnualKm == nil || *suv.Overrides.AnnualKm != 20000 {
		t.Errorf("expected annualKm override of 20000, got %v", suv.Overrides.AnnualKm)
	}
	if suv.Overrides.IncludeFuel != nil {
		t.Errorf("expected no includeFuel override, got %v", *suv.Overrides.IncludeFuel)
	}
	if suv.Scenarios[0].PaymentFrequency != "biweekly" {
		t.Errorf("expected bi-weekly to normalize to biweekly, got %q", suv.Scenarios[0].PaymentFrequency)
	}
	if suv.OtherFees != -1000 {
		t.Errorf("OtherFees = %v, expected -1000", suv.OtherFees)
	}
	if config.Logging.Format != "console" || config.Output.Format != "pretty" {
		t.Errorf("unexpected logging/output config: %+v %+v", config.Logging, config.Output)
	}
}

func TestLoadConfigurationFromReaderDefaults(t *testing.T) {
	input := `
cars:
  - label: Minimal
    price: 30000
`
	config, err := LoadConfigurationFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	if config.Settings.Province != "ON" {
		t.Errorf("Province = %q, expected ON", config.Settings.Province)
	}
	if config.Settings.Fees != DefaultFees() {
		t.Errorf("Fees = %+v, expected defaults", config.Settings.Fees)
	}
	if config.Settings.MaxCarAge != 15 || config.Settings.MileageCap != 300000 || config.Settings.AnnualKm != 15000 {
		t.Errorf("unexpected default limits: %+v", config.Settings)
	}
	if !config.Settings.IncludeFuel {
		t.Error("expected fuel to be included by default")
	}
	if config.Optimizer.Objective != OptimizerObjectiveMinimizeCost || config.Optimizer.Samples != 32 {
		t.Errorf("unexpected optimizer defaults: %+v", config.Optimizer)
	}

	car := config.Cars[0]
	if car.ID == "" {
		t.Error("expected generated car ID")
	}
	if car.VehicleYear != time.Now().Year() {
		t.Errorf("VehicleYear = %d, expected current year", car.VehicleYear)
	}
	if len(car.Scenarios) != 1 || car.Scenarios[0].Label != "Scenario 1" {
		t.Fatalf("expected one default scenario, got %+v", car.Scenarios)
	}
	if car.Scenarios[0].InterestRate != 6.99 || car.Scenarios[0].LoanTermMonths != 60 {
		t.Errorf("unexpected default scenario: %+v", car.Scenarios[0])
	}
}

func TestLoadConfigurationFromReaderAcceptsJSON(t *testing.T) {
	input := `{"settings":{"province":"qc","includeFuel":false},"cars":[{"id":"a","label":"A","price":20000,"scenarios":[{"id":"s","label":"S","interestRate":4,"loanTermMonths":48,"paymentFrequency":"Weekly"}]}]}`
	config, err := LoadConfigurationFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if config.Settings.Province != "QC" {
		t.Errorf("Province = %q, expected QC", config.Settings.Province)
	}
	if config.Settings.IncludeFuel {
		t.Error("expected includeFuel false to be kept")
	}
	if config.Cars[0].Scenarios[0].PaymentFrequency != "weekly" {
		t.Errorf("PaymentFrequency = %q, expected weekly", config.Cars[0].Scenarios[0].PaymentFrequency)
	}
}

func TestResolveOverrides(t *testing.T) {
	settings := DefaultSettings()
	disabled := false
	km := 22000.0
	age := 10

	tests := []struct {
		name      string
		overrides CarOverrides
		check     func(t *testing.T, e EffectiveSettings)
	}{
		{
			name:      "no overrides",
			overrides: CarOverrides{},
			check: func(t *testing.T, e EffectiveSettings) {
				if e.AnnualKm != 15000 || !e.IncludeFuel || e.MaxCarAge != 15 || e.MileageCap != 300000 {
					t.Errorf("expected shared settings, got %+v", e)
				}
			},
		},
		{
			name:      "explicit fuel off wins",
			overrides: CarOverrides{IncludeFuel: &disabled},
			check: func(t *testing.T, e EffectiveSettings) {
				if e.IncludeFuel {
					t.Error("expected IncludeFuel=false override to apply")
				}
			},
		},
		{
			name:      "numeric overrides",
			overrides: CarOverrides{AnnualKm: &km, MaxCarAge: &age},
			check: func(t *testing.T, e EffectiveSettings) {
				if e.AnnualKm != 22000 || e.MaxCarAge != 10 || e.MileageCap != 300000 {
					t.Errorf("unexpected effective settings %+v", e)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, settings.Resolve(tt.overrides))
		})
	}
}

func TestEffectiveTaxRate(t *testing.T) {
	settings := DefaultSettings()
	rate, err := settings.Resolve(CarOverrides{}).TaxRate()
	if err != nil || math.Abs(rate-0.13) > 1e-9 {
		t.Errorf("TaxRate() = %v, %v; expected 0.13", rate, err)
	}

	settings.Province = "ZZ"
	if _, err := settings.Resolve(CarOverrides{}).TaxRate(); err == nil {
		t.Error("expected error for unknown province")
	}
}

func TestCalculate(t *testing.T) {
	conf := &Configuration{Settings: DefaultSettings(), ReferenceYear: 2026}
	car := DefaultCar("Test", 2026)
	scenario := car.Scenarios[0]
	scenario.LoanTermMonths = 72

	result, lifetime, err := conf.Calculate(car, scenario)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if math.Abs(result.PeriodicPayment-720.61) > 0.005 {
		t.Errorf("PeriodicPayment = %.4f, expected 720.61", result.PeriodicPayment)
	}
	if lifetime.EffectiveYears != 15 {
		t.Errorf("EffectiveYears = %v, expected 15", lifetime.EffectiveYears)
	}
	if math.Abs(lifetime.CostPerYear-5562.68) > 0.01 {
		t.Errorf("CostPerYear = %.4f, expected 5562.68", lifetime.CostPerYear)
	}
}

func TestNormalizeMigratesOldState(t *testing.T) {
	blob := `{"settings":{"province":"","fees":{"freightPdi":1800,"airConditioningTax":100,"tireLevy":15,"dealerFee":500},"maxCarAge":15,"mileageCap":300000,"annualKm":15000,"includeFuel":true},
	"cars":[{"id":"1","label":"Old","price":30000,"vehicleYear":2024,"scenarios":[{"id":"s1","label":"A","interestRate":5,"loanTermMonths":60,"downPayment":0,"paymentFrequency":"monthly"}],"activeScenarioIndex":4}]}`

	var conf Configuration
	if err := json.Unmarshal([]byte(blob), &conf); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	conf.Normalize()

	if conf.Settings.Province != "ON" {
		t.Errorf("Province = %q, expected ON", conf.Settings.Province)
	}
	if conf.Settings.InvestmentReturn != 0 || conf.Settings.CashOnHand != 0 {
		t.Errorf("expected missing investment settings to be 0, got %+v", conf.Settings)
	}
	if conf.Cars[0].Overrides.HasOverrides() {
		t.Error("expected missing overrides to be empty")
	}
	if conf.Cars[0].ActiveScenarioIndex != 0 {
		t.Errorf("ActiveScenarioIndex = %d, expected clamp to 0", conf.Cars[0].ActiveScenarioIndex)
	}
}

func TestJSONOmitsCommandLineOptions(t *testing.T) {
	conf := DefaultConfiguration()
	conf.Logging.Level = "debug"

	data, err := json.Marshal(conf)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "debug") || strings.Contains(string(data), "optimizer") {
		t.Errorf("state JSON leaked command line options: %s", data)
	}
	if !strings.Contains(string(data), `"freightPdi":1800`) {
		t.Errorf("expected camelCase fee keys in %s", data)
	}
}

func TestGenerateIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateID()
		if seen[id] {
			t.Fatalf("duplicate ID %s", id)
		}
		seen[id] = true
	}
}

func TestReferenceTime(t *testing.T) {
	conf := Configuration{ReferenceYear: 2030}
	if conf.ReferenceTime().Year() != 2030 {
		t.Errorf("ReferenceTime().Year() = %d, expected 2030", conf.ReferenceTime().Year())
	}
	conf.ReferenceYear = 0
	if conf.ReferenceTime().Year() != time.Now().Year() {
		t.Error("expected current year when ReferenceYear is unset")
	}
}

func TestValidateConfiguration(t *testing.T) {
	conf := DefaultConfiguration()
	conf.ReferenceYear = 2026
	conf.Cars[0].VehicleYear = 2026
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("expected no warnings for default configuration, got %v", warnings)
	}

	conf.Settings.Province = "ZZ"
	conf.Cars[0].Price = 0
	conf.Cars[0].VehicleYear = 2005
	conf.Cars[0].Scenarios[0].PaymentFrequency = "daily"
	conf.Cars[0].Scenarios[0].LoanTermMonths = 0
	conf.Cars = append(conf.Cars, conf.Cars[0])

	warnings := conf.ValidateConfiguration()
	expected := []string{"unknown province", "has no price", "past the maximum age", "unknown payment frequency", "has no loan term", "reuses ID"}
	for _, fragment := range expected {
		found := false
		for _, w := range warnings {
			if strings.Contains(w, fragment) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected a warning containing %q in %v", fragment, warnings)
		}
	}

	empty := &Configuration{Settings: DefaultSettings()}
	if warnings := empty.ValidateConfiguration(); len(warnings) != 1 || warnings[0] != "No cars configured" {
		t.Errorf("unexpected warnings for empty configuration: %v", warnings)
	}
}

func TestLoadConfigurationFromBytes(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"tab indented json", "{\n\t\"settings\": {\"province\": \"bc\"},\n\t\"cars\": [{\"id\": \"a\", \"price\": 20000}]\n}"},
		{"yaml", "settings:\n  province: bc\ncars:\n  - id: a\n    price: 20000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfigurationFromBytes([]byte(tt.input))
			if err != nil {
				t.Fatalf("LoadConfigurationFromBytes() error = %v", err)
			}
			if config.Settings.Province != "BC" {
				t.Errorf("Province = %q, expected BC", config.Settings.Province)
			}
			if len(config.Cars) != 1 || config.Cars[0].Price != 20000 {
				t.Errorf("unexpected cars %+v", config.Cars)
			}
			if config.Settings.MaxCarAge != 15 {
				t.Errorf("MaxCarAge = %d, expected the default 15", config.Settings.MaxCarAge)
			}
		})
	}

	if _, err := LoadConfigurationFromBytes([]byte("{not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
