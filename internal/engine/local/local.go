// Package local is a self-contained calculation engine with simplified 2024
// benefit schedules. It serves development and offline use where the remote
// engine is unavailable; amounts are rough estimates, not policy-accurate.
package local

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/benefits-data/marginal.report/internal/engine"
	"github.com/benefits-data/marginal.report/internal/situation"
)

// Engine evaluates situations in process. It understands the entity graphs
// the translator builds: children are pinned to zero income, the second adult
// carries an explicit income, and the embedded axis (or the primary earner's
// pinned income) supplies the income grid.
type Engine struct{}

// New returns a local engine.
func New() *Engine {
	return &Engine{}
}

// Evaluate computes every requested variable at every income point.
func (e *Engine) Evaluate(ctx context.Context, sit *situation.Situation) (*engine.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shape, err := readShape(sit)
	if err != nil {
		return nil, engine.Errorf("local: %v", err)
	}

	grid := append([]float64(nil), sit.IncomeGrid()...)
	requested := sit.Requested()
	series := make(map[string][]float64, len(requested))
	for _, v := range requested {
		series[v] = make([]float64, len(grid))
	}

	for i, income := range grid {
		point := shape.evaluate(income)
		for _, v := range requested {
			value, ok := point[v]
			if !ok {
				return nil, engine.Errorf("local: unsupported variable %q", v)
			}
			series[v][i] = value
		}
	}

	return &engine.Result{Incomes: grid, Series: series}, nil
}

// shape is the household composition the schedules operate on.
type shape struct {
	size         int
	children     int
	married      bool
	spouseIncome decimal.Decimal
}

func readShape(sit *situation.Situation) (shape, error) {
	if len(sit.People) == 0 {
		return shape{}, fmt.Errorf("situation has no people")
	}
	s := shape{size: len(sit.People)}
	for name, person := range sit.People {
		if strings.HasPrefix(name, "child") {
			s.children++
			continue
		}
		if name == "parent2" {
			s.married = true
			if income, ok := person.Value(situation.VarEmploymentIncome, sit.Year()); ok {
				s.spouseIncome = decimal.NewFromFloat(income)
			}
		}
	}
	return s, nil
}

// evaluate computes the full variable set for one employment income point.
// The medicaid coverage value is already counted as cash, so the plain and
// health-inclusive net incomes coincide here.
func (s shape) evaluate(employment float64) map[string]float64 {
	total := decimal.NewFromFloat(employment).Add(s.spouseIncome)

	snap := snapBenefit(total, s.size)
	wic := wicBenefit(total, s.size, s.children)
	medicaid := medicaidValue(total, s.size, s.children)
	chip := decimal.Zero
	ptc := decimal.Zero
	if medicaid.IsZero() {
		ptc = premiumTaxCredit(total, s.size)
	}
	eitc := earnedIncomeCredit(total, s.children, s.married)
	ctc := childTaxCredit(s.children)
	cdcc := childcareCredit(s.children)
	housing := decimal.Zero

	benefits := snap.Add(wic).Add(medicaid).Add(chip).Add(ptc).
		Add(eitc).Add(ctc).Add(cdcc).Add(housing)
	net := total.Add(benefits)

	return map[string]float64{
		situation.VarSNAP:                snap.InexactFloat64(),
		situation.VarWIC:                 wic.InexactFloat64(),
		situation.VarMedicaid:            medicaid.InexactFloat64(),
		situation.VarCHIP:                chip.InexactFloat64(),
		situation.VarPremiumTaxCredit:    ptc.InexactFloat64(),
		situation.VarEITC:                eitc.InexactFloat64(),
		situation.VarCTC:                 ctc.InexactFloat64(),
		situation.VarCDCC:                cdcc.InexactFloat64(),
		situation.VarHousingSubsidy:      housing.InexactFloat64(),
		situation.VarNetIncome:           net.InexactFloat64(),
		situation.VarNetIncomeWithHealth: net.InexactFloat64(),
		situation.VarMarketIncome:        total.InexactFloat64(),
		situation.VarPovertyGuideline:    povertyGuideline(s.size).InexactFloat64(),
		situation.VarMarginalTaxRate:     marginalTaxRate(total),
	}
}
