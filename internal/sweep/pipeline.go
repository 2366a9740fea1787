// Package sweep runs the benefit analysis pipeline: expand household
// parameters into scenarios, translate each scenario into one batched engine
// evaluation with the income axis embedded, fan the batch out concurrently,
// and merge the aligned results into analysis rows.
package sweep

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/benefits-data/marginal.report/internal/engine"
	"github.com/benefits-data/marginal.report/internal/household"
	"github.com/benefits-data/marginal.report/internal/monitoring"
	"github.com/benefits-data/marginal.report/internal/situation"
	"github.com/benefits-data/marginal.report/internal/timeutil"
)

// Mode selects which scenario set a run builds.
type Mode string

const (
	// ModeMarginalChild evaluates child counts 0..max_children and differences
	// adjacent counts.
	ModeMarginalChild Mode = "marginal_child"
	// ModeCliff sweeps income for one fixed household shape.
	ModeCliff Mode = "cliff"
	// ModePoint evaluates one household at one income.
	ModePoint Mode = "point"
)

// DefaultTimeout bounds a whole run, including every engine call in it.
const DefaultTimeout = 90 * time.Second

// Options configures a Pipeline.
type Options struct {
	// AgePolicy resolves adult ages and missing child ages; the zero value
	// means the default policy.
	AgePolicy household.AgePolicy
	// ChildCap rejects sweeps wider than this many children; zero or negative
	// disables the cap.
	ChildCap int
	// Timeout bounds each run; zero means DefaultTimeout.
	Timeout time.Duration
	// Year overrides the simulation year for requests that do not name one;
	// zero keeps the built-in default.
	Year int
	// Clock drives run timing; nil means the real clock.
	Clock timeutil.Clock
}

// Pipeline drives every analysis mode against one calculation engine. It
// holds no state across runs and is safe for concurrent use.
type Pipeline struct {
	engine    engine.Engine
	agePolicy household.AgePolicy
	childCap  int
	timeout   time.Duration
	year      int
	clock     timeutil.Clock
}

// New builds a Pipeline around the given engine.
func New(eng engine.Engine, opts Options) *Pipeline {
	policy := opts.AgePolicy
	if policy == (household.AgePolicy{}) {
		policy = household.DefaultAgePolicy()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	clock := opts.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Pipeline{
		engine:    eng,
		agePolicy: policy,
		childCap:  opts.ChildCap,
		timeout:   timeout,
		year:      opts.Year,
		clock:     clock,
	}
}

// RunInfo describes one pipeline run for logging and response headers.
type RunInfo struct {
	ID        string        `json:"id"`
	Mode      Mode          `json:"mode"`
	Scenarios int           `json:"scenarios"`
	Points    int           `json:"points"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

// RunMarginal computes the marginal benefit of each additional child across
// the income sweep. Child counts 0..max_children are evaluated concurrently,
// one engine call per count, then adjacent counts are differenced into rows
// for counts 1..max_children. max_children == 0 yields no rows.
func (p *Pipeline) RunMarginal(ctx context.Context, params *household.Params) ([]MarginalRow, RunInfo, error) {
	info := p.newRun(ModeMarginalChild)
	if err := household.ValidateSweep(params, p.childCap); err != nil {
		return nil, p.done(info, err), err
	}

	scenarios := household.ExpandScenarios(params, p.agePolicy)
	axis := situation.SweepAxis(params.GetIncomeMin(), params.GetIncomeMax(), params.GetIncomeStep())
	netVar := situation.NetIncomeVariable(params.IncludeHealthBenefits)

	results, err := p.runScenarios(ctx, &info, scenarios, &axis, []string{netVar})
	if err != nil {
		return nil, p.done(info, err), err
	}

	pairs := make([]ScenarioResult, len(results))
	for i, res := range results {
		pairs[i] = ScenarioResult{NumChildren: scenarios[i].NumChildren, Result: res}
	}
	rows, err := NormalizeMarginal(pairs, netVar)
	if err != nil {
		return nil, p.done(info, err), err
	}
	return rows, p.done(info, nil), nil
}

// RunCliff sweeps income for the fixed household shape in params and reports
// every program amount at each point, ordered by income.
func (p *Pipeline) RunCliff(ctx context.Context, params *household.Params) ([]CliffRow, RunInfo, error) {
	info := p.newRun(ModeCliff)
	if err := household.ValidateCliff(params, p.childCap); err != nil {
		return nil, p.done(info, err), err
	}

	scenario := household.FixedScenario(params, p.agePolicy)
	axis := situation.SweepAxis(params.GetIncomeMin(), params.GetIncomeMax(), params.GetIncomeStep())
	netVar := situation.NetIncomeVariable(params.IncludeHealthBenefits)
	variables := situation.CliffVariables()
	if params.IncludeHealthBenefits {
		variables = append(variables, netVar)
	}

	results, err := p.runScenarios(ctx, &info, []household.Scenario{scenario}, &axis, variables)
	if err != nil {
		return nil, p.done(info, err), err
	}
	rows, err := BuildCliffRows(results[0], netVar)
	if err != nil {
		return nil, p.done(info, err), err
	}
	return rows, p.done(info, nil), nil
}

// RunPoint evaluates the household at its single stated income and returns
// the program breakdown.
func (p *Pipeline) RunPoint(ctx context.Context, params *household.Params) (*Breakdown, RunInfo, error) {
	info := p.newRun(ModePoint)
	if err := household.ValidatePoint(params, p.childCap); err != nil {
		return nil, p.done(info, err), err
	}

	scenario := household.FixedScenario(params, p.agePolicy)
	netVar := situation.NetIncomeVariable(params.IncludeHealthBenefits)
	variables := situation.BreakdownVariables()
	if params.IncludeHealthBenefits {
		variables = append(variables, netVar)
	}

	results, err := p.runScenarios(ctx, &info, []household.Scenario{scenario}, nil, variables)
	if err != nil {
		return nil, p.done(info, err), err
	}
	breakdown, err := BuildBreakdown(results[0], netVar)
	if err != nil {
		return nil, p.done(info, err), err
	}
	return breakdown, p.done(info, nil), nil
}

// runScenarios translates every scenario and evaluates them concurrently.
// Translation runs up front so a bad scenario aborts the batch before any
// engine call. The fan-out shares one deadline; the first failure cancels the
// remaining calls and becomes the error for the whole batch.
func (p *Pipeline) runScenarios(ctx context.Context, info *RunInfo, scenarios []household.Scenario, axis *situation.Axis, variables []string) ([]*engine.Result, error) {
	opts := situation.Options{
		AdultAge:  p.agePolicy.AdultAge,
		Year:      p.runYear(scenarios),
		Sweep:     axis,
		Variables: variables,
	}
	sits := make([]*situation.Situation, len(scenarios))
	for i, scenario := range scenarios {
		sit, err := situation.Build(scenario, opts)
		if err != nil {
			return nil, err
		}
		sits[i] = sit
	}

	info.Scenarios = len(sits)
	if len(sits) > 0 {
		info.Points = sits[0].PointCount()
	}
	monitoring.Logf("[pipeline] Run %s starting: mode=%s scenarios=%d points=%d",
		info.ID, info.Mode, info.Scenarios, info.Points)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	results := make([]*engine.Result, len(sits))
	g, gctx := errgroup.WithContext(ctx)
	for i, sit := range sits {
		g.Go(func() error {
			res, err := p.engine.Evaluate(gctx, sit)
			if err != nil {
				return err
			}
			if err := checkResult(sit, res); err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runYear picks the simulation year override: the pipeline default applies
// only when the request itself names no year.
func (p *Pipeline) runYear(scenarios []household.Scenario) int {
	if p.year > 0 && len(scenarios) > 0 && scenarios[0].Params.Year == nil {
		return p.year
	}
	return 0
}

// checkResult rejects malformed engine output before it reaches the
// normalizer: the income grid must match the situation's and every requested
// variable must be present at full length.
func checkResult(sit *situation.Situation, res *engine.Result) error {
	if res == nil {
		return engine.Errorf("engine returned no result")
	}
	want := sit.IncomeGrid()
	if len(res.Incomes) != len(want) {
		return engine.Errorf("result has %d income points, axis has %d", len(res.Incomes), len(want))
	}
	for i := range want {
		if res.Incomes[i] != want[i] {
			return engine.Errorf("result income grid diverges at index %d: %v != %v", i, res.Incomes[i], want[i])
		}
	}
	for _, v := range sit.Requested() {
		if _, err := res.Vector(v); err != nil {
			return engine.Errorf("result: %v", err)
		}
	}
	return nil
}

func (p *Pipeline) newRun(mode Mode) RunInfo {
	return RunInfo{
		ID:        uuid.NewString(),
		Mode:      mode,
		StartedAt: p.clock.Now(),
	}
}

// done stamps the elapsed time and logs the outcome.
func (p *Pipeline) done(info RunInfo, err error) RunInfo {
	info.Elapsed = p.clock.Since(info.StartedAt)
	if err != nil {
		monitoring.Logf("[pipeline] Run %s failed after %s: %v", info.ID, info.Elapsed, err)
		return info
	}
	monitoring.Logf("[pipeline] Run %s complete: mode=%s scenarios=%d points=%d elapsed=%s",
		info.ID, info.Mode, info.Scenarios, info.Points, info.Elapsed)
	return info
}
