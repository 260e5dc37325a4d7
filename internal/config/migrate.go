package config

import (
	"strings"

	"github.com/iwvelando/carcost/pkg/constants"
	"github.com/iwvelando/carcost/pkg/loans"
)

// Normalize fills in what older or hand-written states leave out: an empty
// province becomes ON, payment frequency aliases are canonicalized, missing
// IDs are generated, cars without scenarios get a default one and the active
// scenario index is clamped to the available scenarios. Unknown payment
// frequencies are kept so ValidateConfiguration can report them.
func (c *Configuration) Normalize() {
	c.Settings.Province = strings.ToUpper(strings.TrimSpace(c.Settings.Province))
	if c.Settings.Province == "" {
		c.Settings.Province = constants.DefaultProvince
	}

	year := c.ReferenceTime().Year()
	for i := range c.Cars {
		car := &c.Cars[i]
		if car.ID == "" {
			car.ID = GenerateID()
		}
		if car.VehicleYear == 0 {
			car.VehicleYear = year
		}
		if len(car.Scenarios) == 0 {
			car.Scenarios = []FinancingScenario{DefaultScenario("")}
		}
		for j := range car.Scenarios {
			scenario := &car.Scenarios[j]
			if scenario.ID == "" {
				scenario.ID = GenerateID()
			}
			if frequency, err := loans.ParseFrequency(scenario.PaymentFrequency); err == nil {
				scenario.PaymentFrequency = string(frequency)
			}
		}
		car.ActiveScenarioIndex = clampIndex(car.ActiveScenarioIndex, len(car.Scenarios))
	}

	c.Optimizer.Normalize()
}

func clampIndex(index, length int) int {
	if index >= length {
		index = length - 1
	}
	if index < 0 {
		index = 0
	}
	return index
}
