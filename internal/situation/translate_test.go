package situation

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/benefits-data/marginal.report/internal/household"
)

func intPtr(v int) *int { return &v }

func TestBuildSingleAdultSweep(t *testing.T) {
	axis := SweepAxis(0, 10000, 2500)
	scenario := household.Scenario{
		Params:      &household.Params{MaritalStatus: household.MaritalSingle, State: "TX"},
		NumChildren: 0,
	}

	sit, err := Build(scenario, Options{Sweep: &axis, Variables: []string{VarNetIncome}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(sit.People) != 1 {
		t.Fatalf("Expected 1 person, got %d", len(sit.People))
	}

	parent1 := sit.People["parent1"]
	if parent1 == nil {
		t.Fatal("Expected parent1 in people")
	}
	if !reflect.DeepEqual(parent1[VarAge], map[string]interface{}{"2024": household.DefaultAdultAge}) {
		t.Errorf("parent1 age = %v", parent1[VarAge])
	}

	// The swept variable must stay unset on the primary earner or the axis
	// would not apply to them.
	if _, ok := parent1[VarEmploymentIncome]; ok {
		t.Error("parent1 employment_income must not be set in sweep mode")
	}

	hh := sit.Households[HouseholdKey]
	if !reflect.DeepEqual(hh["members"], []string{"parent1"}) {
		t.Errorf("household members = %v", hh["members"])
	}
	if !reflect.DeepEqual(hh[VarStateCode], map[string]interface{}{"2024": "TX"}) {
		t.Errorf("state_code = %v", hh[VarStateCode])
	}
	if !reflect.DeepEqual(hh[VarNetIncome], map[string]interface{}{"2024": nil}) {
		t.Errorf("requested net income = %v", hh[VarNetIncome])
	}

	mu := sit.MaritalUnits[MaritalUnitKey]
	if !reflect.DeepEqual(mu["members"], []string{"parent1"}) {
		t.Errorf("marital unit members = %v", mu["members"])
	}

	if len(sit.Axes) != 1 || len(sit.Axes[0]) != 1 {
		t.Fatalf("Expected one embedded axis, got %v", sit.Axes)
	}
	if sit.Axes[0][0] != axis {
		t.Errorf("Embedded axis = %+v, want %+v", sit.Axes[0][0], axis)
	}
	if sit.PointCount() != 5 {
		t.Errorf("PointCount() = %d, want 5", sit.PointCount())
	}
	if !reflect.DeepEqual(sit.Requested(), []string{VarNetIncome}) {
		t.Errorf("Requested() = %v", sit.Requested())
	}
}

func TestBuildMarriedWithChildren(t *testing.T) {
	axis := SweepAxis(0, 200000, 2500)
	params := &household.Params{
		MaritalStatus: household.MaritalMarried,
		State:         "CA",
		SpouseIncome:  30000,
		HousingCost:   1000,
		ChildcareCost: 500,
		PregnantWomen: 1,
	}
	scenario := household.Scenario{Params: params, NumChildren: 2, ChildAges: []int{4, 7}}

	sit, err := Build(scenario, Options{Sweep: &axis, Variables: []string{VarNetIncome}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(sit.People) != 4 {
		t.Fatalf("Expected 4 people, got %d", len(sit.People))
	}

	// Spouse and children carry explicit incomes so the axis only varies
	// parent1.
	parent2 := sit.People["parent2"]
	if !reflect.DeepEqual(parent2[VarEmploymentIncome], map[string]interface{}{"2024": 30000.0}) {
		t.Errorf("parent2 income = %v", parent2[VarEmploymentIncome])
	}
	for _, name := range []string{"child1", "child2"} {
		child := sit.People[name]
		if child == nil {
			t.Fatalf("Expected %s in people", name)
		}
		if !reflect.DeepEqual(child[VarEmploymentIncome], map[string]interface{}{"2024": 0.0}) {
			t.Errorf("%s income = %v, want pinned zero", name, child[VarEmploymentIncome])
		}
	}

	if !reflect.DeepEqual(sit.People["child1"][VarAge], map[string]interface{}{"2024": 4}) {
		t.Errorf("child1 age = %v", sit.People["child1"][VarAge])
	}

	if !reflect.DeepEqual(sit.People["parent1"][VarIsPregnant], map[string]interface{}{"2024": true}) {
		t.Errorf("parent1 is_pregnant = %v", sit.People["parent1"][VarIsPregnant])
	}

	members := []string{"parent1", "parent2", "child1", "child2"}
	for groupName, group := range map[string]Entity{
		"family":    sit.Families[FamilyKey],
		"tax unit":  sit.TaxUnits[TaxUnitKey],
		"spm unit":  sit.SPMUnits[SPMUnitKey],
		"household": sit.Households[HouseholdKey],
	} {
		if !reflect.DeepEqual(group["members"], members) {
			t.Errorf("%s members = %v, want %v", groupName, group["members"], members)
		}
	}

	mu := sit.MaritalUnits[MaritalUnitKey]
	if !reflect.DeepEqual(mu["members"], []string{"parent1", "parent2"}) {
		t.Errorf("marital unit members = %v", mu["members"])
	}

	// Each child gets a single-member marital unit with a distinct id.
	cu1 := sit.MaritalUnits["child1_marital_unit"]
	if cu1 == nil {
		t.Fatal("Expected child1_marital_unit")
	}
	if !reflect.DeepEqual(cu1[VarMaritalUnitID], map[string]interface{}{"2024": 2}) {
		t.Errorf("child1 marital_unit_id = %v", cu1[VarMaritalUnitID])
	}
	cu2 := sit.MaritalUnits["child2_marital_unit"]
	if !reflect.DeepEqual(cu2[VarMaritalUnitID], map[string]interface{}{"2024": 3}) {
		t.Errorf("child2 marital_unit_id = %v", cu2[VarMaritalUnitID])
	}

	// Monthly costs are annualised.
	spm := sit.SPMUnits[SPMUnitKey]
	if !reflect.DeepEqual(spm[VarPreSubsidyRent], map[string]interface{}{"2024": 12000.0}) {
		t.Errorf("rent = %v", spm[VarPreSubsidyRent])
	}
	if !reflect.DeepEqual(spm[VarPreSubsidyChildcare], map[string]interface{}{"2024": 6000.0}) {
		t.Errorf("childcare = %v", spm[VarPreSubsidyChildcare])
	}
}

func TestBuildPointMode(t *testing.T) {
	params := &household.Params{
		MaritalStatus:    household.MaritalSingle,
		State:            "TX",
		EmploymentIncome: 35000,
	}
	scenario := household.Scenario{Params: params, NumChildren: 0}

	sit, err := Build(scenario, Options{Variables: BreakdownVariables()})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	parent1 := sit.People["parent1"]
	if !reflect.DeepEqual(parent1[VarEmploymentIncome], map[string]interface{}{"2024": 35000.0}) {
		t.Errorf("parent1 income = %v, want explicit 35000", parent1[VarEmploymentIncome])
	}
	if sit.Axes != nil {
		t.Errorf("Expected no axes, got %v", sit.Axes)
	}
	if sit.PointCount() != 1 {
		t.Errorf("PointCount() = %d, want 1", sit.PointCount())
	}

	// Program variables land on their owning entities.
	if _, ok := sit.SPMUnits[SPMUnitKey][VarSNAP]; !ok {
		t.Error("Expected snap requested on spm unit")
	}
	if _, ok := sit.TaxUnits[TaxUnitKey][VarEITC]; !ok {
		t.Error("Expected eitc requested on tax unit")
	}
	if _, ok := sit.Households[HouseholdKey][VarMedicaid]; !ok {
		t.Error("Expected medicaid requested on household")
	}
	if _, ok := parent1[VarMarginalTaxRate]; !ok {
		t.Error("Expected marginal_tax_rate requested on parent1")
	}

	if !reflect.DeepEqual(sit.Requested(), BreakdownVariables()) {
		t.Errorf("Requested() = %v", sit.Requested())
	}
}

func TestBuildChildAgeMismatch(t *testing.T) {
	scenario := household.Scenario{
		Params:      &household.Params{MaritalStatus: household.MaritalSingle, State: "TX"},
		NumChildren: 2,
		ChildAges:   []int{9},
	}

	_, err := Build(scenario, Options{Variables: []string{VarNetIncome}})
	if err == nil {
		t.Fatal("Expected translation error for short age list")
	}
	var terr *TranslationError
	if !errors.As(err, &terr) {
		t.Fatalf("Expected *TranslationError, got %T", err)
	}
}

func TestBuildUnknownVariable(t *testing.T) {
	scenario := household.Scenario{
		Params: &household.Params{MaritalStatus: household.MaritalSingle, State: "TX"},
	}

	_, err := Build(scenario, Options{Variables: []string{"household_warp_factor"}})
	var terr *TranslationError
	if !errors.As(err, &terr) {
		t.Fatalf("Expected *TranslationError, got %v", err)
	}
}

func TestBuildCustomYearAndAge(t *testing.T) {
	params := &household.Params{
		MaritalStatus: household.MaritalSingle,
		State:         "TX",
		Year:          intPtr(2025),
	}
	scenario := household.Scenario{Params: params, NumChildren: 1, ChildAges: []int{3}}

	sit, err := Build(scenario, Options{AdultAge: 40, Variables: []string{VarNetIncome}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if sit.Year() != 2025 {
		t.Errorf("Year() = %d, want 2025", sit.Year())
	}
	if !reflect.DeepEqual(sit.People["parent1"][VarAge], map[string]interface{}{"2025": 40}) {
		t.Errorf("parent1 age = %v", sit.People["parent1"][VarAge])
	}
}

func TestSituationJSONShape(t *testing.T) {
	axis := SweepAxis(0, 5000, 2500)
	scenario := household.Scenario{
		Params:      &household.Params{MaritalStatus: household.MaritalSingle, State: "TX"},
		NumChildren: 1,
		ChildAges:   []int{10},
	}

	sit, err := Build(scenario, Options{Sweep: &axis, Variables: []string{VarNetIncome}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	data, err := json.Marshal(sit)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"people", "families", "marital_units", "tax_units", "spm_units", "households", "axes"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("Expected top-level key %q in wire document", key)
		}
	}

	axes := doc["axes"].([]interface{})
	inner := axes[0].([]interface{})
	spec := inner[0].(map[string]interface{})
	if spec["name"] != "employment_income" {
		t.Errorf("axis name = %v", spec["name"])
	}
	if spec["count"] != 3.0 {
		t.Errorf("axis count = %v, want 3", spec["count"])
	}

	// Bookkeeping fields must not leak onto the wire.
	if _, ok := doc["requested"]; ok {
		t.Error("unexported request tracking leaked into JSON")
	}
}
