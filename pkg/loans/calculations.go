// Package loans provides the amortization math used to finance a vehicle.
package loans

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/carcost/pkg/constants"
	"github.com/iwvelando/carcost/pkg/mathutil"
	"go.uber.org/zap"
)

// PaymentFrequency is how often loan payments are made.
type PaymentFrequency string

// Supported payment frequencies.
const (
	Monthly     PaymentFrequency = constants.FrequencyMonthly
	Biweekly    PaymentFrequency = constants.FrequencyBiweekly
	Semimonthly PaymentFrequency = constants.FrequencySemimonthly
	Weekly      PaymentFrequency = constants.FrequencyWeekly
)

// Frequencies lists the supported frequencies in display order.
var Frequencies = []PaymentFrequency{Monthly, Biweekly, Semimonthly, Weekly}

// PeriodsPerYear returns the number of payments per year, or 0 for an
// unrecognised frequency.
func (f PaymentFrequency) PeriodsPerYear() int {
	switch f {
	case Monthly:
		return constants.PeriodsMonthly
	case Biweekly:
		return constants.PeriodsBiweekly
	case Semimonthly:
		return constants.PeriodsSemimonthly
	case Weekly:
		return constants.PeriodsWeekly
	default:
		return 0
	}
}

// Valid reports whether f is one of the supported frequencies.
func (f PaymentFrequency) Valid() bool {
	return f.PeriodsPerYear() > 0
}

// ParseFrequency accepts a frequency name in any case, including the
// hyphenated display forms. An empty string means monthly.
func ParseFrequency(s string) (PaymentFrequency, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, " ", "")
	if normalized == "" {
		return Monthly, nil
	}
	f := PaymentFrequency(normalized)
	if !f.Valid() {
		return "", fmt.Errorf("unknown payment frequency %q", s)
	}
	return f, nil
}

// Terms describes how a purchase is financed.
type Terms struct {
	AnnualInterestRate float64          `json:"annualInterestRate"`
	TermMonths         int              `json:"termMonths"`
	DownPayment        float64          `json:"downPayment"`
	PayInFull          bool             `json:"payInFull"`
	Frequency          PaymentFrequency `json:"frequency"`
}

// Financing is the solved loan for a given basis and set of terms.
type Financing struct {
	Basis                float64          `json:"basis"`
	EffectiveDownPayment float64          `json:"effectiveDownPayment"`
	AmountFinanced       float64          `json:"amountFinanced"`
	Frequency            PaymentFrequency `json:"paymentFrequency"`
	PeriodicRate         float64          `json:"periodicRate"`
	PeriodicPayment      float64          `json:"periodicPayment"`
	NumberOfPayments     int              `json:"numberOfPayments"`
	TotalOfPayments      float64          `json:"totalOfPayments"`
	TotalInterest        float64          `json:"totalInterest"`
	TotalCost            float64          `json:"totalCost"`
}

// NumberOfPayments converts a term in months into a payment count at the
// given frequency.
func NumberOfPayments(termMonths int, frequency PaymentFrequency) int {
	years := float64(termMonths) / constants.MonthsPerYear
	return int(math.Round(years * float64(frequency.PeriodsPerYear())))
}

// PeriodicRate converts an annual percentage into a per-payment rate.
func PeriodicRate(annualPercent float64, frequency PaymentFrequency) float64 {
	periods := frequency.PeriodsPerYear()
	if periods == 0 {
		return 0
	}
	return mathutil.PercentToDecimal(annualPercent) / float64(periods)
}

// CalculatePeriodicPayment calculates the payment for a loan using the
// standard amortization formula.
func CalculatePeriodicPayment(principal, periodicRate float64, numberOfPayments int) float64 {
	if principal <= 0 || numberOfPayments <= 0 {
		return 0
	}
	if periodicRate == 0 {
		return principal / float64(numberOfPayments)
	}
	power := math.Pow(1+periodicRate, float64(numberOfPayments))
	return principal * periodicRate * power / (power - 1)
}

// Solve finances basis (the post-tax total plus other fees) under terms.
// The financed amount never goes below zero; a down payment larger than the
// basis is kept as-is in TotalCost.
func Solve(basis float64, terms Terms) Financing {
	down := terms.DownPayment
	if terms.PayInFull {
		down = basis
	}

	financed := math.Max(0, basis-down)
	n := NumberOfPayments(terms.TermMonths, terms.Frequency)
	rate := PeriodicRate(terms.AnnualInterestRate, terms.Frequency)
	payment := CalculatePeriodicPayment(financed, rate, n)

	totalOfPayments := payment * float64(n)

	return Financing{
		Basis:                basis,
		EffectiveDownPayment: down,
		AmountFinanced:       financed,
		Frequency:            terms.Frequency,
		PeriodicRate:         rate,
		PeriodicPayment:      payment,
		NumberOfPayments:     n,
		TotalOfPayments:      totalOfPayments,
		TotalInterest:        totalOfPayments - financed,
		TotalCost:            down + totalOfPayments,
	}
}

// Payment holds the values for a given payment.
type Payment struct {
	Number             int     `json:"number"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule lists every payment of a solved loan. The final payment
// clears whatever principal is left so the schedule always ends at zero.
func (g *AmortizationScheduleGenerator) GenerateSchedule(f Financing) ([]Payment, error) {
	if f.AmountFinanced <= 0 || f.NumberOfPayments <= 0 {
		return nil, nil
	}
	if f.PeriodicPayment <= 0 {
		return nil, fmt.Errorf("financing of %.2f over %d payments has non-positive payment %.2f",
			f.AmountFinanced, f.NumberOfPayments, f.PeriodicPayment)
	}

	schedule := make([]Payment, 0, f.NumberOfPayments)
	remaining := f.AmountFinanced
	for number := 1; number <= f.NumberOfPayments; number++ {
		interest := remaining * f.PeriodicRate
		principal := f.PeriodicPayment - interest
		payment := f.PeriodicPayment

		if number == f.NumberOfPayments || mathutil.Round(remaining-principal) <= 0 {
			principal = remaining
			payment = principal + interest
			remaining = 0
		} else {
			remaining -= principal
		}

		schedule = append(schedule, Payment{
			Number:             number,
			Payment:            payment,
			Principal:          principal,
			Interest:           interest,
			RemainingPrincipal: remaining,
		})

		if remaining == 0 {
			break
		}
	}

	g.logger.Debug(fmt.Sprintf("generated %d payments of %.2f for %.2f financed",
		len(schedule), f.PeriodicPayment, f.AmountFinanced),
		zap.String("op", "loans.GenerateSchedule"),
	)

	return schedule, nil
}
