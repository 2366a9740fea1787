package household

// Scenario is one child-count variant of a household configuration. The
// scenario builder produces one Scenario per child count 0..max_children, all
// sharing the same Params.
type Scenario struct {
	Params      *Params
	NumChildren int
	// ChildAges holds the resolved age for each child. Under the default age
	// policy its length always equals NumChildren; under a strict policy it
	// may be shorter, which the translation layer rejects.
	ChildAges []int
}

// ExpandScenarios produces the ordered scenario list for child counts
// 0..max_children inclusive. Expansion is pure: the same Params and policy
// always yield the same scenarios.
func ExpandScenarios(p *Params, policy AgePolicy) []Scenario {
	maxChildren := p.GetMaxChildren()
	scenarios := make([]Scenario, 0, maxChildren+1)
	for n := 0; n <= maxChildren; n++ {
		scenarios = append(scenarios, Scenario{
			Params:      p,
			NumChildren: n,
			ChildAges:   ResolveChildAges(p.ChildAges, n, policy),
		})
	}
	return scenarios
}

// FixedScenario returns the single scenario for the cliff and point modes,
// using num_children directly.
func FixedScenario(p *Params, policy AgePolicy) Scenario {
	n := p.GetNumChildren()
	return Scenario{
		Params:      p,
		NumChildren: n,
		ChildAges:   ResolveChildAges(p.ChildAges, n, policy),
	}
}

// ResolveChildAges maps the user-supplied age list onto n children. Supplied
// ages are used in order; extras are dropped. Missing ages fall back to the
// policy's default child age, unless the policy is strict, in which case the
// result stays short and the caller is expected to reject it.
func ResolveChildAges(supplied []int, n int, policy AgePolicy) []int {
	if n == 0 {
		return nil
	}
	ages := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i < len(supplied) {
			ages = append(ages, supplied[i])
			continue
		}
		if policy.Strict {
			break
		}
		ages = append(ages, policy.ChildAge)
	}
	return ages
}
