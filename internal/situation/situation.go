// Package situation builds the calculation engine's household entity graph.
//
// The engine consumes a JSON document of people grouped into family, marital,
// tax, SPM and household units, with values keyed by period (year). An income
// sweep is embedded as an axis inside the same document, so one evaluation
// returns a whole vector per requested variable. The schema is owned by the
// engine; this package only assembles it.
package situation

import "strconv"

// Entity group names used in the graph. The engine keys every unit collection
// by an arbitrary name; one of each is enough for a single household.
const (
	FamilyKey      = "family"
	MaritalUnitKey = "marital_unit"
	TaxUnitKey     = "tax_unit"
	SPMUnitKey     = "spm_unit"
	HouseholdKey   = "household"
)

// Output variables understood by the engine.
const (
	VarNetIncome           = "household_net_income"
	VarNetIncomeWithHealth = "household_net_income_including_health_benefits"
	VarMarketIncome        = "household_market_income"
	VarSNAP                = "snap"
	VarWIC                 = "wic"
	VarMedicaid            = "medicaid"
	VarCHIP                = "chip"
	VarPremiumTaxCredit    = "premium_tax_credit"
	VarEITC                = "eitc"
	VarCTC                 = "ctc"
	VarCDCC                = "cdcc"
	VarHousingSubsidy      = "housing_subsidy"
	VarPovertyGuideline    = "spm_unit_fpg"
	VarMarginalTaxRate     = "marginal_tax_rate"

	// Input variables.
	VarAge                 = "age"
	VarEmploymentIncome    = "employment_income"
	VarIsPregnant          = "is_pregnant"
	VarStateCode           = "state_code"
	VarMaritalUnitID       = "marital_unit_id"
	VarPreSubsidyRent      = "spm_unit_pre_subsidy_rent"
	VarPreSubsidyChildcare = "spm_unit_pre_subsidy_childcare_expenses"
)

// entityFor maps each requestable output variable to the entity group that
// carries it in the graph.
var entityFor = map[string]string{
	VarNetIncome:           "household",
	VarNetIncomeWithHealth: "household",
	VarMarketIncome:        "household",
	VarMedicaid:            "household",
	VarCHIP:                "household",
	VarSNAP:                "spm_unit",
	VarWIC:                 "spm_unit",
	VarHousingSubsidy:      "spm_unit",
	VarPovertyGuideline:    "spm_unit",
	VarEITC:                "tax_unit",
	VarCTC:                 "tax_unit",
	VarCDCC:                "tax_unit",
	VarPremiumTaxCredit:    "tax_unit",
	VarMarginalTaxRate:     "person",
}

// NetIncomeVariable selects the net income output: the plain variable, or the
// one that counts health coverage as income when the request asks for it.
func NetIncomeVariable(includeHealth bool) string {
	if includeHealth {
		return VarNetIncomeWithHealth
	}
	return VarNetIncome
}

// ProgramVariables returns the per-program output set plus net income, the
// columns of a benefit cliff sweep.
func ProgramVariables() []string {
	return []string{
		VarSNAP, VarWIC, VarMedicaid, VarCHIP, VarPremiumTaxCredit,
		VarEITC, VarCTC, VarCDCC, VarHousingSubsidy, VarNetIncome,
	}
}

// CliffVariables extends ProgramVariables with the marginal tax rate for the
// per-income cliff table.
func CliffVariables() []string {
	return append(ProgramVariables(), VarMarginalTaxRate)
}

// BreakdownVariables extends ProgramVariables with the poverty guideline,
// market income and marginal tax rate for the single-point breakdown.
func BreakdownVariables() []string {
	return append(ProgramVariables(),
		VarPovertyGuideline, VarMarketIncome, VarMarginalTaxRate)
}

// Entity is one node in the graph: a "members" list plus period-keyed
// variable values. Values are opaque to this package.
type Entity map[string]interface{}

// NewEntity returns an entity with the given members.
func NewEntity(members ...string) Entity {
	e := Entity{}
	if len(members) > 0 {
		e["members"] = members
	}
	return e
}

// Set records a variable value for the given period.
func (e Entity) Set(variable string, year int, value interface{}) {
	e[variable] = map[string]interface{}{Period(year): value}
}

// Request marks a variable as a requested output by setting a nil value; the
// engine fills it in.
func (e Entity) Request(variable string, year int) {
	e.Set(variable, year, nil)
}

// Members returns the entity's member list.
func (e Entity) Members() []string {
	m, _ := e["members"].([]string)
	return m
}

// Value reads a numeric variable back out of the entity for the given period.
func (e Entity) Value(variable string, year int) (float64, bool) {
	periods, ok := e[variable].(map[string]interface{})
	if !ok {
		return 0, false
	}
	switch v := periods[Period(year)].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// Period renders a year as the engine's period key.
func Period(year int) string {
	return strconv.Itoa(year)
}

// Axis describes an embedded parameter sweep. The engine expands it into
// Count evenly spaced values from Min to Max, applied to every person that
// has no explicit value for the named variable.
type Axis struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Grid returns the axis's income points in ascending order.
func (a Axis) Grid() []float64 {
	if a.Count <= 1 {
		return []float64{a.Min}
	}
	step := (a.Max - a.Min) / float64(a.Count-1)
	grid := make([]float64, a.Count)
	for i := range grid {
		grid[i] = a.Min + float64(i)*step
	}
	return grid
}

// SweepAxis builds the employment income axis for the bounds min..max with
// the given step. The axis max is snapped to the last grid point
// min + (count-1)*step so the engine's evenly-spaced expansion reproduces the
// arithmetic grid exactly; when min == max the sweep has a single point.
func SweepAxis(min, max, step float64) Axis {
	count := 1
	if step > 0 && max > min {
		count = int((max-min)/step) + 1
	}
	return Axis{
		Name:  VarEmploymentIncome,
		Count: count,
		Min:   min,
		Max:   min + float64(count-1)*step,
	}
}

// Situation is the complete engine input document.
type Situation struct {
	People       map[string]Entity `json:"people"`
	Families     map[string]Entity `json:"families"`
	MaritalUnits map[string]Entity `json:"marital_units"`
	TaxUnits     map[string]Entity `json:"tax_units"`
	SPMUnits     map[string]Entity `json:"spm_units"`
	Households   map[string]Entity `json:"households"`
	Axes         [][]Axis          `json:"axes,omitempty"`

	year      int
	requested []string
	grid      []float64
}

// Year returns the simulation period year.
func (s *Situation) Year() int { return s.year }

// IncomeGrid returns the employment income the engine will assign to the
// primary earner at each point: the axis grid when sweeping, or the single
// pinned income otherwise.
func (s *Situation) IncomeGrid() []float64 { return s.grid }

// Requested lists the output variables embedded in the document, in request
// order.
func (s *Situation) Requested() []string { return s.requested }

// SweepAxisSpec returns the embedded income axis, if any.
func (s *Situation) SweepAxisSpec() (Axis, bool) {
	if len(s.Axes) == 0 || len(s.Axes[0]) == 0 {
		return Axis{}, false
	}
	return s.Axes[0][0], true
}

// PointCount returns the number of values the engine will produce per
// requested variable: the axis count, or 1 without an axis.
func (s *Situation) PointCount() int {
	if axis, ok := s.SweepAxisSpec(); ok {
		return axis.Count
	}
	return 1
}
