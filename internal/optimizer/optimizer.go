// Package optimizer searches for the down payment that best meets an
// objective and applies the result to a configuration.
package optimizer

import (
	"fmt"

	"github.com/iwvelando/carcost/internal/comparison"
	"github.com/iwvelando/carcost/internal/config"
	"github.com/iwvelando/carcost/pkg/constants"
	"github.com/iwvelando/carcost/pkg/format"
	"github.com/iwvelando/carcost/pkg/mathutil"
	"github.com/iwvelando/carcost/pkg/optimization"
	"go.uber.org/zap"
)

// Runner optimizes the active scenario of each car in a configuration.
type Runner struct {
	logger *zap.Logger
	conf   *config.Configuration
}

// Result summarizes optimizer adjustments keyed by car ID.
type Result struct {
	Summaries map[string][]optimization.Summary
}

// Empty indicates whether any optimizer adjustments were produced.
func (r Result) Empty() bool {
	return len(r.Summaries) == 0
}

// Apply attaches optimizer summaries to the matching comparison rows.
func (r Result) Apply(rows []comparison.Row) {
	if len(r.Summaries) == 0 {
		return
	}
	for i := range rows {
		for _, summary := range r.Summaries[rows[i].CarID] {
			if summary.ScenarioID == rows[i].ScenarioID {
				rows[i].Optimizations = append(rows[i].Optimizations, summary)
			}
		}
	}
}

// NewRunner constructs a Runner for the provided configuration.
func NewRunner(logger *zap.Logger, conf *config.Configuration) (*Runner, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := conf.Optimizer.Validate(); err != nil {
		return nil, err
	}
	return &Runner{logger: logger, conf: conf}, nil
}

// Run optimizes the down payment of every car's active scenario, or only of
// the car named in the optimizer configuration, and mutates the configuration
// in place.
func (r *Runner) Run() (*Result, error) {
	summaries := make(map[string][]optimization.Summary)

	targets := make([]int, 0, len(r.conf.Cars))
	if id := r.conf.Optimizer.CarID; id != "" {
		index := r.conf.FindCar(id)
		if index < 0 {
			return nil, fmt.Errorf("optimizer: car %s not found", id)
		}
		targets = append(targets, index)
	} else {
		for i := range r.conf.Cars {
			targets = append(targets, i)
		}
	}

	for _, index := range targets {
		summary, ok, err := r.optimizeCar(index)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		summaries[summary.CarID] = append(summaries[summary.CarID], summary)
	}

	return &Result{Summaries: summaries}, nil
}

func (r *Runner) optimizeCar(index int) (optimization.Summary, bool, error) {
	car := &r.conf.Cars[index]
	scenario, ok := car.ActiveScenario()
	if !ok {
		r.logger.Debug(fmt.Sprintf("skipping car %s because it has no active scenario", car.ID),
			zap.String("op", "optimizer.Run"),
		)
		return optimization.Summary{}, false, nil
	}

	problem, err := NewProblem(r.conf, *car, scenario)
	if err != nil {
		return optimization.Summary{}, false, fmt.Errorf("optimizer: %w", err)
	}

	original := problem.Terms.DownPayment
	if problem.Terms.PayInFull {
		original = problem.Upper()
	}
	baseline := problem.Evaluate(original)

	outcome, err := OptimizeDownPayment(problem, OptionsFromConfig(r.conf.Optimizer))
	if err != nil {
		return optimization.Summary{}, false, fmt.Errorf("optimizer: car %s: %w", car.ID, err)
	}

	applied := &car.Scenarios[car.ActiveScenarioIndex]
	applied.DownPayment = outcome.DownPayment
	applied.PayInFull = false

	summary := optimization.Summary{
		Objective:            outcome.Objective,
		CarID:                car.ID,
		CarLabel:             car.Label,
		ScenarioID:           scenario.ID,
		ScenarioLabel:        scenario.Label,
		Field:                config.OptimizerFieldDownPayment,
		Original:             original,
		Value:                outcome.DownPayment,
		Lower:                0,
		Upper:                outcome.Upper,
		OriginalLifetimeCost: baseline.Lifetime.LifetimeTotalCost,
		LifetimeCost:         outcome.Evaluation.Lifetime.LifetimeTotalCost,
		InvestmentGain:       outcome.Evaluation.Lifetime.InvestmentGain,
		TotalInterest:        outcome.Evaluation.Result.TotalInterest,
		Iterations:           outcome.Iterations,
		Evaluations:          outcome.Evaluations,
		Converged:            outcome.Converged,
		Fallback:             outcome.Fallback,
		OriginalDisplay:      format.Currency(original),
		ValueDisplay:         format.Currency(outcome.DownPayment),
	}
	if scenario.PayInFull {
		summary.Notes = append(summary.Notes, "pay in full was cleared so the down payment applies")
	}
	if mathutil.WithinTolerance(original, outcome.DownPayment, constants.CurrencyTolerance) {
		summary.Notes = append(summary.Notes, "down payment was already optimal")
	}
	if outcome.Fallback {
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"search did not converge; using the cheaper end of %s to %s",
			format.Currency(0), format.Currency(outcome.Upper),
		))
	}

	r.logger.Info("optimizer adjusted down payment",
		zap.String("op", "optimizer.Run"),
		zap.String("car", car.ID),
		zap.String("scenario", scenario.ID),
		zap.String("objective", outcome.Objective),
		zap.Float64("original", original),
		zap.Float64("optimized", outcome.DownPayment),
		zap.Float64("originalLifetimeCost", summary.OriginalLifetimeCost),
		zap.Float64("lifetimeCost", summary.LifetimeCost),
		zap.Int("iterations", outcome.Iterations),
		zap.Int("evaluations", outcome.Evaluations),
		zap.Bool("converged", outcome.Converged),
		zap.Bool("fallback", outcome.Fallback),
	)

	return summary, true, nil
}
