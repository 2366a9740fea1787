// Package household models the inbound household configuration and its
// expansion into per-child-count scenarios.
//
// A single Params describes one household shape plus an income sweep; the
// scenario builder turns it into the ordered list of child-count variants the
// calculation pipeline evaluates.
package household

import "fmt"

// Marital status values accepted on the wire.
const (
	MaritalSingle  = "single"
	MaritalMarried = "married"
)

// Default sweep and household values, matching the public dashboard's
// behaviour when a field is omitted.
const (
	DefaultIncomeMin   = 0.0
	DefaultIncomeMax   = 200000.0
	DefaultIncomeStep  = 2500.0
	DefaultMaxChildren = 4
	DefaultAdultAge    = 30
	DefaultChildAge    = 10
	DefaultYear        = 2024

	// MaxChildAge is the oldest age accepted for a dependent child.
	MaxChildAge = 18
)

// Params is the inbound household configuration. Optional numeric fields use
// pointers so an omitted field can fall back to a default while an explicit
// zero is honoured (max_children: 0 is a valid request meaning "baseline
// only").
type Params struct {
	MaritalStatus    string  `json:"marital_status"`
	State            string  `json:"state"`
	EmploymentIncome float64 `json:"employment_income"`
	SpouseIncome     float64 `json:"spouse_income"`

	NumChildren *int  `json:"num_children,omitempty"`
	ChildAges   []int `json:"child_ages,omitempty"`

	IncomeMin   *float64 `json:"income_min,omitempty"`
	IncomeMax   *float64 `json:"income_max,omitempty"`
	IncomeStep  *float64 `json:"income_step,omitempty"`
	MaxChildren *int     `json:"max_children,omitempty"`

	// Monthly amounts; the translator annualises them.
	HousingCost   float64 `json:"housing_cost,omitempty"`
	ChildcareCost float64 `json:"childcare_cost,omitempty"`

	PregnantWomen         int  `json:"pregnant_women,omitempty"`
	IncludeHealthBenefits bool `json:"include_health_benefits,omitempty"`

	Year *int `json:"year,omitempty"`
}

// GetIncomeMin returns the income_min value or the default.
func (p *Params) GetIncomeMin() float64 {
	if p.IncomeMin == nil {
		return DefaultIncomeMin
	}
	return *p.IncomeMin
}

// GetIncomeMax returns the income_max value or the default.
func (p *Params) GetIncomeMax() float64 {
	if p.IncomeMax == nil {
		return DefaultIncomeMax
	}
	return *p.IncomeMax
}

// GetIncomeStep returns the income_step value or the default.
func (p *Params) GetIncomeStep() float64 {
	if p.IncomeStep == nil {
		return DefaultIncomeStep
	}
	return *p.IncomeStep
}

// GetMaxChildren returns the max_children value or the default.
func (p *Params) GetMaxChildren() int {
	if p.MaxChildren == nil {
		return DefaultMaxChildren
	}
	return *p.MaxChildren
}

// GetNumChildren returns the num_children value or zero.
func (p *Params) GetNumChildren() int {
	if p.NumChildren == nil {
		return 0
	}
	return *p.NumChildren
}

// GetYear returns the simulation year or the default.
func (p *Params) GetYear() int {
	if p.Year == nil {
		return DefaultYear
	}
	return *p.Year
}

// Married reports whether the household has a second adult.
func (p *Params) Married() bool {
	return p.MaritalStatus == MaritalMarried
}

// AgePolicy controls how child ages are resolved when fewer ages are supplied
// than a scenario needs. With Strict unset, missing ages fall back to
// ChildAge; with Strict set there is no fallback and the translation layer
// rejects the shortfall.
type AgePolicy struct {
	AdultAge int
	ChildAge int
	Strict   bool
}

// DefaultAgePolicy returns the standard age policy: adults 30, missing child
// ages default to 10.
func DefaultAgePolicy() AgePolicy {
	return AgePolicy{AdultAge: DefaultAdultAge, ChildAge: DefaultChildAge}
}

func (ap AgePolicy) String() string {
	if ap.Strict {
		return fmt.Sprintf("adult=%d strict", ap.AdultAge)
	}
	return fmt.Sprintf("adult=%d child-default=%d", ap.AdultAge, ap.ChildAge)
}
