package sweep

import (
	"fmt"

	"github.com/benefits-data/marginal.report/internal/engine"
	"github.com/benefits-data/marginal.report/internal/situation"
)

// MarginalRow is one point of the marginal-child analysis: the change in net
// income from adding the num_children-th child at a given earned income.
type MarginalRow struct {
	Income          float64 `json:"income"`
	NumChildren     int     `json:"num_children"`
	MarginalBenefit float64 `json:"marginal_benefit"`
	NetIncome       float64 `json:"net_income"`
}

// CliffRow is one point of the benefit-cliff analysis: every program amount
// at a given earned income for a fixed household shape.
type CliffRow struct {
	Income           float64 `json:"income"`
	SNAP             float64 `json:"snap"`
	WIC              float64 `json:"wic"`
	Medicaid         float64 `json:"medicaid"`
	CHIP             float64 `json:"chip"`
	PremiumTaxCredit float64 `json:"premium_tax_credit"`
	EITC             float64 `json:"eitc"`
	CTC              float64 `json:"ctc"`
	CDCC             float64 `json:"cdcc"`
	HousingSubsidy   float64 `json:"housing_subsidy"`
	MarginalTaxRate  float64 `json:"marginal_tax_rate"`
	TotalBenefits    float64 `json:"total_benefits"`
	NetIncome        float64 `json:"net_income"`
}

// Breakdown is the single-income program breakdown.
type Breakdown struct {
	FederalPovertyGuideline float64 `json:"federal_poverty_guideline"`
	SNAP                    float64 `json:"snap"`
	WIC                     float64 `json:"wic"`
	Medicaid                float64 `json:"medicaid"`
	CHIP                    float64 `json:"chip"`
	PremiumTaxCredit        float64 `json:"premium_tax_credit"`
	EITC                    float64 `json:"eitc"`
	CTC                     float64 `json:"ctc"`
	CDCC                    float64 `json:"cdcc"`
	HousingSubsidy          float64 `json:"housing_subsidy"`
	NetIncome               float64 `json:"net_income"`
	MarketIncome            float64 `json:"market_income"`
	MarginalTaxRate         float64 `json:"marginal_tax_rate"`
	TotalBenefits           float64 `json:"total_benefits"`
}

// AlignmentError reports an income-grid mismatch between paired scenario
// results. The translator derives every scenario's axis from the same bounds,
// so a mismatch is an internal bug, not a user error.
type AlignmentError struct {
	Reason string
}

func (e *AlignmentError) Error() string {
	return "result alignment: " + e.Reason
}

func alignf(format string, v ...interface{}) *AlignmentError {
	return &AlignmentError{Reason: fmt.Sprintf(format, v...)}
}

// ScenarioResult pairs a child count with its evaluated result.
type ScenarioResult struct {
	NumChildren int
	Result      *engine.Result
}

// NormalizeMarginal merges per-scenario results into the flat row sequence.
//
// pairs must be ordered by child count 0..max with no gaps; rows come out for
// child counts 1..max only, each pairing result k against k-1 at the same
// grid index. Rows are grouped by child count and ordered by income within a
// group; chart rendering depends on exactly this order.
func NormalizeMarginal(pairs []ScenarioResult, variable string) ([]MarginalRow, error) {
	if len(pairs) == 0 {
		return nil, alignf("no scenario results to merge")
	}

	grid := pairs[0].Result.Incomes
	for i, pair := range pairs {
		if pair.NumChildren != i {
			return nil, alignf("scenario results out of order: position %d holds child count %d", i, pair.NumChildren)
		}
		if len(pair.Result.Incomes) != len(grid) {
			return nil, alignf("child count %d has %d income points, baseline has %d",
				pair.NumChildren, len(pair.Result.Incomes), len(grid))
		}
		for j, income := range pair.Result.Incomes {
			if income != grid[j] {
				return nil, alignf("child count %d income grid diverges at index %d: %v != %v",
					pair.NumChildren, j, income, grid[j])
			}
		}
	}

	rows := make([]MarginalRow, 0, (len(pairs)-1)*len(grid))
	prev, err := pairs[0].Result.Vector(variable)
	if err != nil {
		return nil, alignf("baseline result: %v", err)
	}

	for _, pair := range pairs[1:] {
		current, err := pair.Result.Vector(variable)
		if err != nil {
			return nil, alignf("child count %d result: %v", pair.NumChildren, err)
		}
		for i, income := range grid {
			rows = append(rows, MarginalRow{
				Income:          income,
				NumChildren:     pair.NumChildren,
				MarginalBenefit: current[i] - prev[i],
				NetIncome:       current[i],
			})
		}
		prev = current
	}

	return rows, nil
}

// BuildCliffRows expands one sweep result into per-income cliff rows. netVar
// names the series backing the net income column.
func BuildCliffRows(res *engine.Result, netVar string) ([]CliffRow, error) {
	variables := append(situation.CliffVariables(), netVar)
	series := make(map[string][]float64, len(variables))
	for _, v := range variables {
		vec, err := res.Vector(v)
		if err != nil {
			return nil, err
		}
		series[v] = vec
	}

	rows := make([]CliffRow, len(res.Incomes))
	for i, income := range res.Incomes {
		row := CliffRow{
			Income:           income,
			SNAP:             series[situation.VarSNAP][i],
			WIC:              series[situation.VarWIC][i],
			Medicaid:         series[situation.VarMedicaid][i],
			CHIP:             series[situation.VarCHIP][i],
			PremiumTaxCredit: series[situation.VarPremiumTaxCredit][i],
			EITC:             series[situation.VarEITC][i],
			CTC:              series[situation.VarCTC][i],
			CDCC:             series[situation.VarCDCC][i],
			HousingSubsidy:   series[situation.VarHousingSubsidy][i],
			MarginalTaxRate:  series[situation.VarMarginalTaxRate][i],
			NetIncome:        series[netVar][i],
		}
		row.TotalBenefits = row.SNAP + row.WIC + row.Medicaid + row.CHIP +
			row.PremiumTaxCredit + row.EITC + row.CTC + row.CDCC + row.HousingSubsidy
		rows[i] = row
	}

	return rows, nil
}

// BuildBreakdown extracts the single-point program breakdown. netVar names the
// variable backing the net income field.
func BuildBreakdown(res *engine.Result, netVar string) (*Breakdown, error) {
	b := &Breakdown{}
	fields := []struct {
		variable string
		dst      *float64
	}{
		{situation.VarPovertyGuideline, &b.FederalPovertyGuideline},
		{situation.VarSNAP, &b.SNAP},
		{situation.VarWIC, &b.WIC},
		{situation.VarMedicaid, &b.Medicaid},
		{situation.VarCHIP, &b.CHIP},
		{situation.VarPremiumTaxCredit, &b.PremiumTaxCredit},
		{situation.VarEITC, &b.EITC},
		{situation.VarCTC, &b.CTC},
		{situation.VarCDCC, &b.CDCC},
		{situation.VarHousingSubsidy, &b.HousingSubsidy},
		{netVar, &b.NetIncome},
		{situation.VarMarketIncome, &b.MarketIncome},
		{situation.VarMarginalTaxRate, &b.MarginalTaxRate},
	}
	for _, f := range fields {
		v, err := res.Value(f.variable)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	b.TotalBenefits = b.SNAP + b.WIC + b.Medicaid + b.CHIP + b.PremiumTaxCredit +
		b.EITC + b.CTC + b.CDCC + b.HousingSubsidy
	return b, nil
}
