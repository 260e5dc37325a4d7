// Package pricing turns a vehicle price, dealership fees and sales tax into the
// post-tax amount a buyer has to cover.
package pricing

// DealershipFees holds the fixed charges a dealer adds on top of the vehicle price.
type DealershipFees struct {
	FreightPDI         float64 `json:"freightPdi" yaml:"freightPdi" mapstructure:"freightPdi"`
	AirConditioningTax float64 `json:"airConditioningTax" yaml:"airConditioningTax" mapstructure:"airConditioningTax"`
	TireLevy           float64 `json:"tireLevy" yaml:"tireLevy" mapstructure:"tireLevy"`
	DealerFee          float64 `json:"dealerFee" yaml:"dealerFee" mapstructure:"dealerFee"`
}

// Total sums all fees.
func (f DealershipFees) Total() float64 {
	return f.FreightPDI + f.AirConditioningTax + f.TireLevy + f.DealerFee
}

// Quote is the priced purchase before any financing is applied.
type Quote struct {
	Price        float64
	TotalFees    float64
	Subtotal     float64
	TaxRate      float64
	TaxAmount    float64
	TotalWithTax float64
	OtherFees    float64
}

// Price computes the quote for a vehicle. taxRate is a fraction (0.13 for 13%)
// and otherFees is a signed post-tax adjustment such as a rebate or a
// warranty add-on. Inputs are used as given.
func Price(vehiclePrice float64, fees DealershipFees, taxRate, otherFees float64) Quote {
	totalFees := fees.Total()
	subtotal := vehiclePrice + totalFees
	taxAmount := subtotal * taxRate

	return Quote{
		Price:        vehiclePrice,
		TotalFees:    totalFees,
		Subtotal:     subtotal,
		TaxRate:      taxRate,
		TaxAmount:    taxAmount,
		TotalWithTax: subtotal + taxAmount,
		OtherFees:    otherFees,
	}
}

// FinancingBasis is the amount that has to be covered by the down payment and
// the loan together.
func (q Quote) FinancingBasis() float64 {
	return q.TotalWithTax + q.OtherFees
}
