package situation

import (
	"fmt"

	"github.com/benefits-data/marginal.report/internal/household"
	"github.com/benefits-data/marginal.report/internal/money"
)

// TranslationError reports a scenario that cannot be mapped to a valid entity
// graph. The pipeline treats it like bad input and aborts the whole batch
// before any engine call.
type TranslationError struct {
	Reason string
}

func (e *TranslationError) Error() string {
	return "cannot translate scenario: " + e.Reason
}

func translatef(format string, v ...interface{}) *TranslationError {
	return &TranslationError{Reason: fmt.Sprintf(format, v...)}
}

// Options carries the per-run knobs for graph construction.
type Options struct {
	// AdultAge is the age assigned to the adults; zero means the default.
	AdultAge int
	// Year is the simulation period; zero means the default.
	Year int
	// Sweep, when non-nil, embeds the income axis and leaves the primary
	// earner's employment income open for the engine to vary.
	Sweep *Axis
	// Variables are the outputs to request from the engine.
	Variables []string
}

// Build translates one scenario into the engine's entity graph.
//
// The axis applies only to people without an explicit value for the swept
// variable, so everyone except the primary earner is pinned: the spouse
// carries their own income explicitly and children carry an explicit zero.
// Without that, the engine would sweep every person's income at once.
func Build(s household.Scenario, opts Options) (*Situation, error) {
	if len(s.ChildAges) != s.NumChildren {
		return nil, translatef("have %d children but %d child ages", s.NumChildren, len(s.ChildAges))
	}
	if opts.Sweep != nil && opts.Sweep.Count < 1 {
		return nil, translatef("income axis has %d points", opts.Sweep.Count)
	}

	p := s.Params
	adultAge := opts.AdultAge
	if adultAge <= 0 {
		adultAge = household.DefaultAdultAge
	}
	year := opts.Year
	if year <= 0 {
		year = p.GetYear()
	}

	sit := &Situation{
		People:       map[string]Entity{},
		Families:     map[string]Entity{},
		MaritalUnits: map[string]Entity{},
		TaxUnits:     map[string]Entity{},
		SPMUnits:     map[string]Entity{},
		Households:   map[string]Entity{},
		year:         year,
	}

	parent1 := Entity{}
	parent1.Set(VarAge, year, adultAge)
	if opts.Sweep == nil {
		parent1.Set(VarEmploymentIncome, year, p.EmploymentIncome)
	}
	if p.PregnantWomen > 0 {
		parent1.Set(VarIsPregnant, year, true)
	}
	sit.People["parent1"] = parent1

	members := []string{"parent1"}
	adults := []string{"parent1"}

	if p.Married() {
		parent2 := Entity{}
		parent2.Set(VarAge, year, adultAge)
		parent2.Set(VarEmploymentIncome, year, p.SpouseIncome)
		sit.People["parent2"] = parent2
		members = append(members, "parent2")
		adults = append(adults, "parent2")
	}

	for i, age := range s.ChildAges {
		name := fmt.Sprintf("child%d", i+1)
		child := Entity{}
		child.Set(VarAge, year, age)
		child.Set(VarEmploymentIncome, year, 0.0)
		sit.People[name] = child
		members = append(members, name)

		unit := NewEntity(name)
		unit.Set(VarMaritalUnitID, year, i+2)
		sit.MaritalUnits[name+"_marital_unit"] = unit
	}

	sit.Families[FamilyKey] = NewEntity(members...)
	sit.MaritalUnits[MaritalUnitKey] = NewEntity(adults...)
	sit.TaxUnits[TaxUnitKey] = NewEntity(members...)

	spmUnit := NewEntity(members...)
	if p.HousingCost > 0 {
		spmUnit.Set(VarPreSubsidyRent, year, money.Annualize(p.HousingCost))
	}
	if p.ChildcareCost > 0 {
		spmUnit.Set(VarPreSubsidyChildcare, year, money.Annualize(p.ChildcareCost))
	}
	sit.SPMUnits[SPMUnitKey] = spmUnit

	hh := NewEntity(members...)
	hh.Set(VarStateCode, year, p.State)
	sit.Households[HouseholdKey] = hh

	for _, variable := range opts.Variables {
		if err := requestVariable(sit, variable, year); err != nil {
			return nil, err
		}
	}

	if opts.Sweep != nil {
		sit.Axes = [][]Axis{{*opts.Sweep}}
		sit.grid = opts.Sweep.Grid()
	} else {
		sit.grid = []float64{p.EmploymentIncome}
	}

	return sit, nil
}

// requestVariable embeds a null-valued output request at the entity group
// that owns the variable.
func requestVariable(sit *Situation, variable string, year int) error {
	switch entityFor[variable] {
	case "household":
		sit.Households[HouseholdKey].Request(variable, year)
	case "spm_unit":
		sit.SPMUnits[SPMUnitKey].Request(variable, year)
	case "tax_unit":
		sit.TaxUnits[TaxUnitKey].Request(variable, year)
	case "person":
		sit.People["parent1"].Request(variable, year)
	default:
		return translatef("unknown output variable %q", variable)
	}
	sit.requested = append(sit.requested, variable)
	return nil
}
