package pricing

import (
	"math"
	"testing"
)

var defaultFees = DealershipFees{
	FreightPDI:         1800,
	AirConditioningTax: 100,
	TireLevy:           15,
	DealerFee:          500,
}

func TestDealershipFeesTotal(t *testing.T) {
	if got := defaultFees.Total(); got != 2415 {
		t.Errorf("Total() = %.2f, expected 2415", got)
	}
	if got := (DealershipFees{}).Total(); got != 0 {
		t.Errorf("Total() of zero fees = %.2f, expected 0", got)
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name              string
		price             float64
		fees              DealershipFees
		taxRate           float64
		otherFees         float64
		expectedSubtotal  float64
		expectedTax       float64
		expectedWithTax   float64
		expectedFinancing float64
	}{
		{
			name:              "Ontario default fees",
			price:             35000,
			fees:              defaultFees,
			taxRate:           0.13,
			expectedSubtotal:  37415,
			expectedTax:       4863.95,
			expectedWithTax:   42278.95,
			expectedFinancing: 42278.95,
		},
		{
			name:              "other fees added after tax",
			price:             35000,
			fees:              defaultFees,
			taxRate:           0.13,
			otherFees:         500,
			expectedSubtotal:  37415,
			expectedTax:       4863.95,
			expectedWithTax:   42278.95,
			expectedFinancing: 42778.95,
		},
		{
			name:              "rebate reduces basis",
			price:             35000,
			fees:              defaultFees,
			taxRate:           0.13,
			otherFees:         -2000,
			expectedSubtotal:  37415,
			expectedTax:       4863.95,
			expectedWithTax:   42278.95,
			expectedFinancing: 40278.95,
		},
		{
			name:              "no tax no fees",
			price:             30000,
			expectedSubtotal:  30000,
			expectedWithTax:   30000,
			expectedFinancing: 30000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Price(tt.price, tt.fees, tt.taxRate, tt.otherFees)
			if math.Abs(q.Subtotal-tt.expectedSubtotal) > 0.005 {
				t.Errorf("Subtotal = %.2f, expected %.2f", q.Subtotal, tt.expectedSubtotal)
			}
			if math.Abs(q.TaxAmount-tt.expectedTax) > 0.005 {
				t.Errorf("TaxAmount = %.2f, expected %.2f", q.TaxAmount, tt.expectedTax)
			}
			if math.Abs(q.TotalWithTax-tt.expectedWithTax) > 0.005 {
				t.Errorf("TotalWithTax = %.2f, expected %.2f", q.TotalWithTax, tt.expectedWithTax)
			}
			if math.Abs(q.FinancingBasis()-tt.expectedFinancing) > 0.005 {
				t.Errorf("FinancingBasis() = %.2f, expected %.2f", q.FinancingBasis(), tt.expectedFinancing)
			}
			if q.TaxRate != tt.taxRate || q.OtherFees != tt.otherFees {
				t.Errorf("quote did not carry inputs through: %+v", q)
			}
		})
	}
}
