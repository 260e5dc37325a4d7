package loans

import (
	"math"
	"testing"

	"go.uber.org/zap"
)

// standardBasis is a $35,000 car with 2,415 in fees at 13% tax.
const standardBasis = 42278.95

func TestPeriodsPerYear(t *testing.T) {
	tests := []struct {
		frequency PaymentFrequency
		expected  int
	}{
		{Monthly, 12},
		{Biweekly, 26},
		{Semimonthly, 24},
		{Weekly, 52},
		{PaymentFrequency("quarterly"), 0},
		{PaymentFrequency(""), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.frequency), func(t *testing.T) {
			if got := tt.frequency.PeriodsPerYear(); got != tt.expected {
				t.Errorf("PeriodsPerYear() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		input    string
		expected PaymentFrequency
		wantErr  bool
	}{
		{"monthly", Monthly, false},
		{"Bi-weekly", Biweekly, false},
		{"SEMI-MONTHLY", Semimonthly, false},
		{" weekly ", Weekly, false},
		{"", Monthly, false},
		{"daily", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFrequency(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFrequency(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseFrequency(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNumberOfPayments(t *testing.T) {
	tests := []struct {
		name      string
		term      int
		frequency PaymentFrequency
		expected  int
	}{
		{"72 months monthly", 72, Monthly, 72},
		{"72 months biweekly", 72, Biweekly, 156},
		{"72 months semimonthly", 72, Semimonthly, 144},
		{"72 months weekly", 72, Weekly, 312},
		{"odd term biweekly rounds", 61, Biweekly, 132},
		{"zero term", 0, Monthly, 0},
		{"unknown frequency", 60, PaymentFrequency("yearly"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NumberOfPayments(tt.term, tt.frequency); got != tt.expected {
				t.Errorf("NumberOfPayments(%d, %s) = %d, expected %d", tt.term, tt.frequency, got, tt.expected)
			}
		})
	}
}

func TestCalculatePeriodicPayment(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		n         int
		expected  float64
	}{
		{"bankrate five year", 30000, 0.0689 / 12, 60, 592.48},
		{"zero interest is straight line", 12000, 0, 60, 200},
		{"nothing financed", 0, 0.005, 60, 0},
		{"no payments", 10000, 0.005, 0, 0},
		{"negative principal", -500, 0.005, 12, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePeriodicPayment(tt.principal, tt.rate, tt.n)
			if math.Abs(got-tt.expected) > 0.005 {
				t.Errorf("CalculatePeriodicPayment() = %.4f, expected %.2f", got, tt.expected)
			}
		})
	}
}

func TestSolve(t *testing.T) {
	tests := []struct {
		name             string
		basis            float64
		terms            Terms
		expectedFinanced float64
		expectedN        int
		expectedPayment  float64
		expectedInterest float64
		expectedCost     float64
	}{
		{
			name:             "standard monthly",
			basis:            standardBasis,
			terms:            Terms{AnnualInterestRate: 6.99, TermMonths: 72, Frequency: Monthly},
			expectedFinanced: 42278.95,
			expectedN:        72,
			expectedPayment:  720.61,
			expectedInterest: 9605.05,
			expectedCost:     51884.00,
		},
		{
			name:             "standard biweekly",
			basis:            standardBasis,
			terms:            Terms{AnnualInterestRate: 6.99, TermMonths: 72, Frequency: Biweekly},
			expectedFinanced: 42278.95,
			expectedN:        156,
			expectedPayment:  332.17,
			expectedInterest: 9539.80,
			expectedCost:     51818.75,
		},
		{
			name:             "standard semimonthly",
			basis:            standardBasis,
			terms:            Terms{AnnualInterestRate: 6.99, TermMonths: 72, Frequency: Semimonthly},
			expectedFinanced: 42278.95,
			expectedN:        144,
			expectedPayment:  359.88,
			expectedInterest: 9544.46,
			expectedCost:     51823.41,
		},
		{
			name:             "standard weekly",
			basis:            standardBasis,
			terms:            Terms{AnnualInterestRate: 6.99, TermMonths: 72, Frequency: Weekly},
			expectedFinanced: 42278.95,
			expectedN:        312,
			expectedPayment:  166.00,
			expectedInterest: 9511.81,
			expectedCost:     51790.76,
		},
		{
			name:             "ten thousand down",
			basis:            standardBasis,
			terms:            Terms{AnnualInterestRate: 6.99, TermMonths: 72, DownPayment: 10000, Frequency: Monthly},
			expectedFinanced: 32278.95,
			expectedN:        72,
			expectedPayment:  550.17,
			expectedInterest: 7333.22,
			expectedCost:     49612.17,
		},
		{
			name:             "zero interest",
			basis:            standardBasis,
			terms:            Terms{AnnualInterestRate: 0, TermMonths: 72, Frequency: Monthly},
			expectedFinanced: 42278.95,
			expectedN:        72,
			expectedPayment:  587.21,
			expectedInterest: 0,
			expectedCost:     42278.95,
		},
		{
			name:             "pay in full ignores down payment",
			basis:            standardBasis,
			terms:            Terms{AnnualInterestRate: 6.99, TermMonths: 72, DownPayment: 5000, PayInFull: true, Frequency: Monthly},
			expectedFinanced: 0,
			expectedN:        72,
			expectedPayment:  0,
			expectedInterest: 0,
			expectedCost:     42278.95,
		},
		{
			name:             "overpayment kept verbatim",
			basis:            standardBasis,
			terms:            Terms{AnnualInterestRate: 6.99, TermMonths: 72, DownPayment: 50000, Frequency: Monthly},
			expectedFinanced: 0,
			expectedN:        72,
			expectedPayment:  0,
			expectedInterest: 0,
			expectedCost:     50000,
		},
		{
			name:             "unknown frequency gives no payments",
			basis:            standardBasis,
			terms:            Terms{AnnualInterestRate: 6.99, TermMonths: 72, Frequency: PaymentFrequency("yearly")},
			expectedFinanced: 42278.95,
			expectedN:        0,
			expectedPayment:  0,
			expectedInterest: -42278.95,
			expectedCost:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Solve(tt.basis, tt.terms)
			if math.Abs(got.AmountFinanced-tt.expectedFinanced) > 0.005 {
				t.Errorf("AmountFinanced = %.2f, expected %.2f", got.AmountFinanced, tt.expectedFinanced)
			}
			if got.NumberOfPayments != tt.expectedN {
				t.Errorf("NumberOfPayments = %d, expected %d", got.NumberOfPayments, tt.expectedN)
			}
			if math.Abs(got.PeriodicPayment-tt.expectedPayment) > 0.005 {
				t.Errorf("PeriodicPayment = %.4f, expected %.2f", got.PeriodicPayment, tt.expectedPayment)
			}
			if math.Abs(got.TotalInterest-tt.expectedInterest) > 0.01 {
				t.Errorf("TotalInterest = %.4f, expected %.2f", got.TotalInterest, tt.expectedInterest)
			}
			if math.Abs(got.TotalCost-tt.expectedCost) > 0.01 {
				t.Errorf("TotalCost = %.4f, expected %.2f", got.TotalCost, tt.expectedCost)
			}
			if got.AmountFinanced < 0 || got.NumberOfPayments < 0 {
				t.Errorf("negative financed amount or payment count: %+v", got)
			}
		})
	}
}

func TestSolveZeroInterestPaymentIsStraightLine(t *testing.T) {
	got := Solve(standardBasis, Terms{TermMonths: 72, Frequency: Monthly})
	if got.PeriodicPayment != got.AmountFinanced/float64(got.NumberOfPayments) {
		t.Errorf("PeriodicPayment = %v, expected %v", got.PeriodicPayment, got.AmountFinanced/72)
	}
	if math.Abs(got.TotalInterest) > 1e-6 {
		t.Errorf("TotalInterest = %v, expected 0", got.TotalInterest)
	}
}

func TestGenerateSchedule(t *testing.T) {
	generator := NewAmortizationScheduleGenerator(zap.NewNop())

	frequencies := []PaymentFrequency{Monthly, Biweekly, Semimonthly, Weekly}
	for _, frequency := range frequencies {
		t.Run(string(frequency), func(t *testing.T) {
			financing := Solve(standardBasis, Terms{AnnualInterestRate: 6.99, TermMonths: 72, DownPayment: 2500, Frequency: frequency})

			schedule, err := generator.GenerateSchedule(financing)
			if err != nil {
				t.Fatalf("GenerateSchedule() error = %v", err)
			}
			if len(schedule) != financing.NumberOfPayments {
				t.Fatalf("schedule has %d payments, expected %d", len(schedule), financing.NumberOfPayments)
			}

			var interest, principal float64
			for i, p := range schedule {
				if p.Number != i+1 {
					t.Errorf("payment %d numbered %d", i+1, p.Number)
				}
				if math.Abs(p.Principal+p.Interest-p.Payment) > 0.01 {
					t.Errorf("payment %d components %.2f + %.2f do not add to %.2f", p.Number, p.Principal, p.Interest, p.Payment)
				}
				interest += p.Interest
				principal += p.Principal
			}

			last := schedule[len(schedule)-1]
			if last.RemainingPrincipal != 0 {
				t.Errorf("final remaining principal = %v, expected 0", last.RemainingPrincipal)
			}
			if math.Abs(interest-financing.TotalInterest) > 0.01 {
				t.Errorf("schedule interest %.4f, expected %.4f", interest, financing.TotalInterest)
			}
			if math.Abs(principal-financing.AmountFinanced) > 0.01 {
				t.Errorf("schedule principal %.4f, expected %.4f", principal, financing.AmountFinanced)
			}
		})
	}
}

func TestGenerateScheduleNothingFinanced(t *testing.T) {
	generator := NewAmortizationScheduleGenerator(nil)
	financing := Solve(standardBasis, Terms{AnnualInterestRate: 6.99, TermMonths: 72, PayInFull: true, Frequency: Monthly})

	schedule, err := generator.GenerateSchedule(financing)
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}
	if len(schedule) != 0 {
		t.Errorf("expected empty schedule, got %d payments", len(schedule))
	}
}

func TestGenerateScheduleInconsistentFinancing(t *testing.T) {
	generator := NewAmortizationScheduleGenerator(zap.NewNop())
	_, err := generator.GenerateSchedule(Financing{AmountFinanced: 1000, NumberOfPayments: 12, PeriodicPayment: 0})
	if err == nil {
		t.Error("expected error for a financed loan with no payment")
	}
}
