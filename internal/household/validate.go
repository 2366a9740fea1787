package household

import "fmt"

// ValidationError reports a rejected input field. The pipeline guarantees no
// engine call is made once validation has failed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidf(field, format string, v ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, v...)}
}

// validateCommon checks the fields shared by every analysis mode.
func validateCommon(p *Params) error {
	switch p.MaritalStatus {
	case MaritalSingle, MaritalMarried:
	default:
		return invalidf("marital_status", "must be %q or %q, got %q", MaritalSingle, MaritalMarried, p.MaritalStatus)
	}

	if !ValidStateCode(p.State) {
		return invalidf("state", "unknown state code %q", p.State)
	}

	if p.EmploymentIncome < 0 {
		return invalidf("employment_income", "cannot be negative: %v", p.EmploymentIncome)
	}

	if p.SpouseIncome < 0 {
		return invalidf("spouse_income", "cannot be negative: %v", p.SpouseIncome)
	}

	for i, age := range p.ChildAges {
		if age < 0 || age > MaxChildAge {
			return invalidf("child_ages", "age %d at index %d out of range 0-%d", age, i, MaxChildAge)
		}
	}

	if p.HousingCost < 0 {
		return invalidf("housing_cost", "cannot be negative: %v", p.HousingCost)
	}
	if p.ChildcareCost < 0 {
		return invalidf("childcare_cost", "cannot be negative: %v", p.ChildcareCost)
	}
	if p.PregnantWomen < 0 {
		return invalidf("pregnant_women", "cannot be negative: %d", p.PregnantWomen)
	}

	return nil
}

// validateBounds checks the income sweep bounds.
func validateBounds(p *Params) error {
	min := p.GetIncomeMin()
	max := p.GetIncomeMax()
	step := p.GetIncomeStep()

	if min < 0 {
		return invalidf("income_min", "cannot be negative: %v", min)
	}
	if max < 0 {
		return invalidf("income_max", "cannot be negative: %v", max)
	}
	if min > max {
		return invalidf("income_min", "must not exceed income_max (%v > %v)", min, max)
	}
	if step <= 0 {
		return invalidf("income_step", "must be positive: %v", step)
	}
	return nil
}

// ValidateSweep checks a marginal-child sweep request. childCap bounds
// max_children; pass a value <= 0 to disable the cap.
func ValidateSweep(p *Params, childCap int) error {
	if err := validateCommon(p); err != nil {
		return err
	}
	if err := validateBounds(p); err != nil {
		return err
	}

	mc := p.GetMaxChildren()
	if mc < 0 {
		return invalidf("max_children", "cannot be negative: %d", mc)
	}
	if childCap > 0 && mc > childCap {
		return invalidf("max_children", "cannot exceed %d: %d", childCap, mc)
	}
	return nil
}

// ValidateCliff checks a benefit-cliff sweep request for a fixed child count.
func ValidateCliff(p *Params, childCap int) error {
	if err := validateCommon(p); err != nil {
		return err
	}
	if err := validateBounds(p); err != nil {
		return err
	}
	return validateNumChildren(p, childCap)
}

// ValidatePoint checks a single-income breakdown request.
func ValidatePoint(p *Params, childCap int) error {
	if err := validateCommon(p); err != nil {
		return err
	}
	return validateNumChildren(p, childCap)
}

func validateNumChildren(p *Params, childCap int) error {
	nc := p.GetNumChildren()
	if nc < 0 {
		return invalidf("num_children", "cannot be negative: %d", nc)
	}
	if childCap > 0 && nc > childCap {
		return invalidf("num_children", "cannot exceed %d: %d", childCap, nc)
	}
	return nil
}
