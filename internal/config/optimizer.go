package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/carcost/pkg/constants"
)

const (
	OptimizerObjectiveMinimizeCost = "minimize_cost"
	OptimizerObjectiveBreakEven    = "break_even"

	OptimizerFieldDownPayment = "downPayment"
)

// OptimizerConfig controls the down payment search.
type OptimizerConfig struct {
	Objective     string  `json:"objective,omitempty" yaml:"objective,omitempty" mapstructure:"objective"`
	CarID         string  `json:"carId,omitempty" yaml:"carId,omitempty" mapstructure:"carId"`
	Tolerance     float64 `json:"tolerance,omitempty" yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int     `json:"maxIterations,omitempty" yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
	Samples       int     `json:"samples,omitempty" yaml:"samples,omitempty" mapstructure:"samples"`
}

// CanonicalOptimizerObjective returns the canonical identifier for an optimizer objective.
func CanonicalOptimizerObjective(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return OptimizerObjectiveMinimizeCost
	}
	switch strings.ToLower(trimmed) {
	case "minimize_cost", "minimizecost", "minimize-cost", "minimize", "min":
		return OptimizerObjectiveMinimizeCost
	case "break_even", "breakeven", "break-even":
		return OptimizerObjectiveBreakEven
	default:
		return strings.ToLower(trimmed)
	}
}

// Normalize ensures defaults and canonical values are applied before validation.
func (o *OptimizerConfig) Normalize() {
	if o == nil {
		return
	}
	o.Objective = CanonicalOptimizerObjective(o.Objective)
	o.CarID = strings.TrimSpace(o.CarID)
	if o.Tolerance <= 0 {
		o.Tolerance = constants.DefaultOptimizerTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = constants.DefaultOptimizerMaxIterations
	}
	if o.Samples <= 0 {
		o.Samples = constants.DefaultOptimizerSamples
	}
}

// Validate returns an error when the optimizer configuration is unsupported.
func (o *OptimizerConfig) Validate() error {
	if o == nil {
		return fmt.Errorf("optimizer configuration cannot be nil")
	}

	o.Normalize()

	switch o.Objective {
	case OptimizerObjectiveMinimizeCost, OptimizerObjectiveBreakEven:
		// supported objectives
	default:
		return fmt.Errorf("optimizer objective %q is not supported", o.Objective)
	}
	if o.Samples < 2 {
		return fmt.Errorf("optimizer needs at least 2 samples, got %d", o.Samples)
	}
	return nil
}
