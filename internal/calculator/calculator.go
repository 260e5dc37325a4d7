// Package calculator assembles the priced and financed result of a single
// financing scenario and projects it over the ownership horizon.
package calculator

import (
	"github.com/iwvelando/carcost/pkg/loans"
	"github.com/iwvelando/carcost/pkg/pricing"
)

// CalculationResult is the full breakdown of one car under one financing scenario.
type CalculationResult struct {
	TotalFees            float64 `json:"totalFees"`
	Subtotal             float64 `json:"subtotal"`
	TaxRate              float64 `json:"taxRate"`
	TaxAmount            float64 `json:"taxAmount"`
	TotalWithTax         float64 `json:"totalWithTax"`
	OtherFees            float64 `json:"otherFees"`
	EffectiveDownPayment float64 `json:"effectiveDownPayment"`
	AmountFinanced       float64 `json:"amountFinanced"`
	PeriodicPayment      float64 `json:"periodicPayment"`
	NumberOfPayments     int     `json:"numberOfPayments"`
	TotalOfPayments      float64 `json:"totalOfPayments"`
	TotalInterest        float64 `json:"totalInterest"`
	TotalCost            float64 `json:"totalCost"`
}

// CalculateScenario prices a car and finances the result under terms.
func CalculateScenario(price float64, fees pricing.DealershipFees, taxRate, otherFees float64, terms loans.Terms) CalculationResult {
	quote := pricing.Price(price, fees, taxRate, otherFees)
	financing := loans.Solve(quote.FinancingBasis(), terms)

	return CalculationResult{
		TotalFees:            quote.TotalFees,
		Subtotal:             quote.Subtotal,
		TaxRate:              quote.TaxRate,
		TaxAmount:            quote.TaxAmount,
		TotalWithTax:         quote.TotalWithTax,
		OtherFees:            quote.OtherFees,
		EffectiveDownPayment: financing.EffectiveDownPayment,
		AmountFinanced:       financing.AmountFinanced,
		PeriodicPayment:      financing.PeriodicPayment,
		NumberOfPayments:     financing.NumberOfPayments,
		TotalOfPayments:      financing.TotalOfPayments,
		TotalInterest:        financing.TotalInterest,
		TotalCost:            financing.TotalCost,
	}
}

// FinancingBasis is the amount split between the down payment and the loan.
func (r CalculationResult) FinancingBasis() float64 {
	return r.TotalWithTax + r.OtherFees
}

// Financing rebuilds the solved loan so a schedule can be generated from it.
func (r CalculationResult) Financing(terms loans.Terms) loans.Financing {
	return loans.Solve(r.FinancingBasis(), terms)
}
