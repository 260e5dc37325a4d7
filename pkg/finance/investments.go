// Package finance models the return on cash kept invested instead of being
// put toward a vehicle purchase.
package finance

import (
	"fmt"
	"math"

	"github.com/iwvelando/carcost/pkg/loans"
	"github.com/iwvelando/carcost/pkg/mathutil"
	"go.uber.org/zap"
)

// CalculateInvestmentGain estimates the net value of investing cash on hand
// rather than using it to reduce the loan. The invested amount is capped at
// the financed amount and the loan payments attributable to it are withdrawn
// from the investment every period. The result may be negative when the
// return does not cover the withdrawals.
func CalculateInvestmentGain(amountFinanced, periodicPayment float64, numberOfPayments int,
	annualReturnPercent float64, frequency loans.PaymentFrequency, cashOnHand float64) float64 {
	if amountFinanced <= 0 || numberOfPayments <= 0 || annualReturnPercent <= 0 || cashOnHand <= 0 {
		return 0
	}

	periods := frequency.PeriodsPerYear()
	if periods == 0 {
		return 0
	}

	invested := math.Min(cashOnHand, amountFinanced)
	proportionalPayment := periodicPayment * invested / amountFinanced
	rate := mathutil.PercentToDecimal(annualReturnPercent) / float64(periods)
	compound := math.Pow(1+rate, float64(numberOfPayments))

	return invested*compound - proportionalPayment*(compound-1)/rate
}

// InvestmentPeriod is the state of the invested cash after one payment period.
type InvestmentPeriod struct {
	Number     int     `json:"number"`
	Growth     float64 `json:"growth"`
	Withdrawal float64 `json:"withdrawal"`
	Balance    float64 `json:"balance"`
}

// InvestmentProcessor walks the invested cash through each payment period.
type InvestmentProcessor struct {
	logger *zap.Logger
}

// NewInvestmentProcessor creates a processor for investment calculations.
func NewInvestmentProcessor(logger *zap.Logger) *InvestmentProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvestmentProcessor{logger: logger}
}

// Simulate grows the invested cash by one period's return and then withdraws
// the proportional loan payment, once per payment. The final balance matches
// CalculateInvestmentGain for the same inputs.
func (ip *InvestmentProcessor) Simulate(amountFinanced, periodicPayment float64, numberOfPayments int,
	annualReturnPercent float64, frequency loans.PaymentFrequency, cashOnHand float64) []InvestmentPeriod {
	if amountFinanced <= 0 || numberOfPayments <= 0 || annualReturnPercent <= 0 || cashOnHand <= 0 {
		return nil
	}
	periods := frequency.PeriodsPerYear()
	if periods == 0 {
		ip.logger.Warn(fmt.Sprintf("cannot simulate investment for payment frequency %q", frequency),
			zap.String("op", "finance.Simulate"),
		)
		return nil
	}

	invested := math.Min(cashOnHand, amountFinanced)
	withdrawal := periodicPayment * invested / amountFinanced
	rate := mathutil.PercentToDecimal(annualReturnPercent) / float64(periods)

	result := make([]InvestmentPeriod, 0, numberOfPayments)
	balance := invested
	for number := 1; number <= numberOfPayments; number++ {
		growth := balance * rate
		balance += growth - withdrawal
		result = append(result, InvestmentPeriod{
			Number:     number,
			Growth:     growth,
			Withdrawal: withdrawal,
			Balance:    balance,
		})
	}

	ip.logger.Debug(fmt.Sprintf("simulated %d periods of %.2f invested, final balance %.2f",
		numberOfPayments, invested, balance),
		zap.String("op", "finance.Simulate"),
	)

	return result
}
