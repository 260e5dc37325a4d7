package optimizer

import (
	"fmt"
	"math"
	"time"

	"github.com/iwvelando/carcost/internal/calculator"
	"github.com/iwvelando/carcost/internal/config"
	"github.com/iwvelando/carcost/pkg/constants"
	"github.com/iwvelando/carcost/pkg/loans"
	"github.com/iwvelando/carcost/pkg/mathutil"
	"github.com/iwvelando/carcost/pkg/pricing"
)

var invPhi = (math.Sqrt(5) - 1) / 2

// Options bound the down payment search.
type Options struct {
	Objective     string
	Tolerance     float64
	MaxIterations int
	Samples       int
}

func (o Options) withDefaults() Options {
	o.Objective = config.CanonicalOptimizerObjective(o.Objective)
	if o.Tolerance <= 0 {
		o.Tolerance = constants.DefaultOptimizerTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = constants.DefaultOptimizerMaxIterations
	}
	if o.Samples < 2 {
		o.Samples = constants.DefaultOptimizerSamples
	}
	return o
}

// OptionsFromConfig converts the configured optimizer settings.
func OptionsFromConfig(cfg config.OptimizerConfig) Options {
	return Options{
		Objective:     cfg.Objective,
		Tolerance:     cfg.Tolerance,
		MaxIterations: cfg.MaxIterations,
		Samples:       cfg.Samples,
	}
}

// Problem is everything needed to evaluate a car at a given down payment.
type Problem struct {
	Price     float64
	Fees      pricing.DealershipFees
	TaxRate   float64
	OtherFees float64
	Terms     loans.Terms
	Lifetime  calculator.LifetimeInputs
	Now       time.Time
}

// NewProblem resolves a car's settings into a search problem for one of its scenarios.
func NewProblem(conf *config.Configuration, car config.Car, scenario config.FinancingScenario) (Problem, error) {
	effective := conf.Settings.Resolve(car.Overrides)
	taxRate, err := effective.TaxRate()
	if err != nil {
		return Problem{}, fmt.Errorf("car %s: %w", car.ID, err)
	}
	terms := scenario.Terms()
	return Problem{
		Price:     car.Price,
		Fees:      effective.Fees,
		TaxRate:   taxRate,
		OtherFees: car.OtherFees,
		Terms:     terms,
		Lifetime:  car.LifetimeInputs(effective, terms.Frequency),
		Now:       conf.ReferenceTime(),
	}, nil
}

// Evaluation is the outcome of financing with one particular down payment.
type Evaluation struct {
	DownPayment float64                       `json:"downPayment"`
	Result      calculator.CalculationResult  `json:"result"`
	Lifetime    calculator.LifetimeCostResult `json:"lifetime"`
}

// Upper is the largest useful down payment: the whole post-tax amount.
func (p Problem) Upper() float64 {
	return math.Max(0, pricing.Price(p.Price, p.Fees, p.TaxRate, p.OtherFees).FinancingBasis())
}

// Evaluate computes the lifetime cost when downPayment is paid up front.
// The down payment is bounded to [0, Upper] and paying in full is ignored.
func (p Problem) Evaluate(downPayment float64) Evaluation {
	downPayment = mathutil.Clamp(downPayment, 0, p.Upper())
	terms := p.Terms
	terms.DownPayment = downPayment
	terms.PayInFull = false

	result := calculator.CalculateScenario(p.Price, p.Fees, p.TaxRate, p.OtherFees, terms)
	return Evaluation{
		DownPayment: downPayment,
		Result:      result,
		Lifetime:    calculator.CalculateLifetimeCostWithFixedTime(result, p.Lifetime, p.Now),
	}
}

// Outcome is the down payment chosen by the search.
type Outcome struct {
	Objective   string     `json:"objective"`
	DownPayment float64    `json:"downPayment"`
	Evaluation  Evaluation `json:"evaluation"`
	Lower       float64    `json:"lower"`
	Upper       float64    `json:"upper"`
	Iterations  int        `json:"iterations"`
	Evaluations int        `json:"evaluations"`
	Converged   bool       `json:"converged"`
	Fallback    bool       `json:"fallback"`
}

// OptimizeDownPayment searches [0, Upper()] for the down payment that meets
// the objective. When the search cannot converge the end of the domain with
// the lower lifetime cost is returned and Fallback is set. The answer is
// rounded to cents.
func OptimizeDownPayment(p Problem, opts Options) (Outcome, error) {
	opts = opts.withDefaults()

	s := &search{problem: p, opts: opts, upper: p.Upper()}
	var outcome Outcome
	switch opts.Objective {
	case config.OptimizerObjectiveMinimizeCost:
		outcome = s.minimizeCost()
	case config.OptimizerObjectiveBreakEven:
		outcome = s.breakEven()
	default:
		return Outcome{}, fmt.Errorf("optimizer objective %q is not supported", opts.Objective)
	}

	outcome.Objective = opts.Objective
	outcome.Upper = s.upper
	outcome.DownPayment = mathutil.Round(outcome.DownPayment)
	outcome.Evaluations = s.evaluations
	outcome.Evaluation = p.Evaluate(outcome.DownPayment)
	return outcome, nil
}

type search struct {
	problem     Problem
	opts        Options
	upper       float64
	evaluations int
}

func (s *search) evaluate(downPayment float64) Evaluation {
	s.evaluations++
	return s.problem.Evaluate(downPayment)
}

func (s *search) cost(downPayment float64) float64 {
	return s.evaluate(downPayment).Lifetime.LifetimeTotalCost
}

// cheaperEnd picks whichever end of the domain costs less over the car's life.
func (s *search) cheaperEnd() Outcome {
	return s.cheaperOf(s.cost(0), s.cost(s.upper))
}

func (s *search) cheaperOf(lowerCost, upperCost float64) Outcome {
	if upperCost < lowerCost {
		return Outcome{DownPayment: s.upper, Fallback: true}
	}
	return Outcome{DownPayment: 0, Fallback: true}
}

// minimizeCost samples a uniform grid, then narrows the bracket around the
// best sample with golden-section search.
func (s *search) minimizeCost() Outcome {
	if s.upper <= s.opts.Tolerance {
		outcome := s.cheaperEnd()
		outcome.Fallback = false
		outcome.Converged = true
		return outcome
	}

	samples := s.opts.Samples
	xs := make([]float64, samples+1)
	fs := make([]float64, samples+1)
	best := 0
	for i := range xs {
		xs[i] = s.upper * float64(i) / float64(samples)
		if i == samples {
			xs[i] = s.upper
		}
		fs[i] = s.cost(xs[i])
		if fs[i] < fs[best] {
			best = i
		}
	}

	lo := xs[max(best-1, 0)]
	hi := xs[min(best+1, samples)]
	c := hi - invPhi*(hi-lo)
	d := lo + invPhi*(hi-lo)
	fc, fd := s.cost(c), s.cost(d)

	iterations := 0
	for hi-lo > s.opts.Tolerance && iterations < s.opts.MaxIterations {
		if fc <= fd {
			hi, d, fd = d, c, fc
			c = hi - invPhi*(hi-lo)
			fc = s.cost(c)
		} else {
			lo, c, fc = c, d, fd
			d = lo + invPhi*(hi-lo)
			fd = s.cost(d)
		}
		iterations++
	}

	if hi-lo > s.opts.Tolerance {
		outcome := s.cheaperOf(fs[0], fs[samples])
		outcome.Iterations = iterations
		return outcome
	}

	mid := (lo + hi) / 2
	candidates := []struct{ x, f float64 }{
		{mid, s.cost(mid)},
		{xs[best], fs[best]},
		{0, fs[0]},
		{s.upper, fs[samples]},
	}
	chosen := candidates[0]
	for _, candidate := range candidates[1:] {
		if candidate.f < chosen.f {
			chosen = candidate
		}
	}

	return Outcome{DownPayment: chosen.x, Iterations: iterations, Converged: true}
}

// breakEven bisects for the down payment where the investment gain equals the
// loan interest. The fully paid end is excluded because both sides are zero
// there.
func (s *search) breakEven() Outcome {
	if s.upper <= s.opts.Tolerance {
		return s.cheaperEnd()
	}

	gap := func(downPayment float64) float64 {
		e := s.evaluate(downPayment)
		return e.Lifetime.InvestmentGain - e.Result.TotalInterest
	}

	lo, hi := 0.0, s.upper-s.opts.Tolerance
	gLo, gHi := gap(lo), gap(hi)
	if mathutil.IsZero(gLo) {
		return Outcome{DownPayment: lo, Converged: true}
	}
	if mathutil.IsZero(gHi) {
		return Outcome{DownPayment: hi, Converged: true}
	}
	if (gLo > 0) == (gHi > 0) {
		return s.cheaperEnd()
	}

	iterations := 0
	for hi-lo > s.opts.Tolerance && iterations < s.opts.MaxIterations {
		mid := (lo + hi) / 2
		gMid := gap(mid)
		if (gMid > 0) == (gLo > 0) {
			lo, gLo = mid, gMid
		} else {
			hi = mid
		}
		iterations++
	}

	if hi-lo > s.opts.Tolerance {
		outcome := s.cheaperEnd()
		outcome.Iterations = iterations
		return outcome
	}

	return Outcome{DownPayment: (lo + hi) / 2, Iterations: iterations, Converged: true}
}
