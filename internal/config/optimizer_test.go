package config

import "testing"

func TestCanonicalOptimizerObjective(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty defaults to minimize cost", input: "", expected: OptimizerObjectiveMinimizeCost},
		{name: "minimize casing", input: "Minimize", expected: OptimizerObjectiveMinimizeCost},
		{name: "break even variations", input: "BREAK-EVEN", expected: OptimizerObjectiveBreakEven},
		{name: "unknown lowered", input: "Custom", expected: "custom"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := CanonicalOptimizerObjective(tc.input)
			if actual != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, actual)
			}
		})
	}
}

func TestOptimizerConfigNormalizeDefaults(t *testing.T) {
	cfg := &OptimizerConfig{CarID: " car-1 "}
	cfg.Normalize()

	if cfg.Objective != OptimizerObjectiveMinimizeCost {
		t.Fatalf("expected objective %q, got %q", OptimizerObjectiveMinimizeCost, cfg.Objective)
	}
	if cfg.CarID != "car-1" {
		t.Fatalf("expected trimmed car ID, got %q", cfg.CarID)
	}
	if cfg.Tolerance != 1 || cfg.MaxIterations != 100 || cfg.Samples != 32 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestOptimizerConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     *OptimizerConfig
		wantErr bool
	}{
		{name: "nil", cfg: nil, wantErr: true},
		{name: "defaults", cfg: &OptimizerConfig{}},
		{name: "break even", cfg: &OptimizerConfig{Objective: "breakeven"}},
		{name: "unsupported objective", cfg: &OptimizerConfig{Objective: "maximize_fun"}, wantErr: true},
		{name: "single sample", cfg: &OptimizerConfig{Samples: 1}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
