// Package optimization provides shared data structures for optimization results.
package optimization

// Summary captures the result of optimizing one car's financing scenario.
type Summary struct {
	Objective            string   `json:"objective"`
	CarID                string   `json:"carId"`
	CarLabel             string   `json:"carLabel"`
	ScenarioID           string   `json:"scenarioId"`
	ScenarioLabel        string   `json:"scenarioLabel"`
	Field                string   `json:"field"`
	Original             float64  `json:"original"`
	Value                float64  `json:"value"`
	Lower                float64  `json:"lower"`
	Upper                float64  `json:"upper"`
	OriginalLifetimeCost float64  `json:"originalLifetimeCost"`
	LifetimeCost         float64  `json:"lifetimeCost"`
	InvestmentGain       float64  `json:"investmentGain"`
	TotalInterest        float64  `json:"totalInterest"`
	Iterations           int      `json:"iterations"`
	Evaluations          int      `json:"evaluations"`
	Converged            bool     `json:"converged"`
	Fallback             bool     `json:"fallback"`
	Notes                []string `json:"notes,omitempty"`
	OriginalDisplay      string   `json:"originalDisplay,omitempty"`
	ValueDisplay         string   `json:"valueDisplay,omitempty"`
}

// Savings is how much lifetime cost the optimized value saves over the original.
func (s Summary) Savings() float64 {
	return s.OriginalLifetimeCost - s.LifetimeCost
}
