package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/benefits-data/marginal.report/internal/engine"
	"github.com/benefits-data/marginal.report/internal/household"
	"github.com/benefits-data/marginal.report/internal/httputil"
	"github.com/benefits-data/marginal.report/internal/situation"
	"github.com/benefits-data/marginal.report/internal/sweep"
	"github.com/benefits-data/marginal.report/internal/testutil"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// fakeEvaluate answers any situation with deterministic values: net income
// rises 2000 per child and every program pays 150 per child.
func fakeEvaluate(sit *situation.Situation) *engine.Result {
	children := 0
	for name := range sit.People {
		if strings.HasPrefix(name, "child") {
			children++
		}
	}

	grid := append([]float64(nil), sit.IncomeGrid()...)
	series := make(map[string][]float64, len(sit.Requested()))
	for _, v := range sit.Requested() {
		vec := make([]float64, len(grid))
		for i, income := range grid {
			switch v {
			case situation.VarNetIncome, situation.VarNetIncomeWithHealth:
				vec[i] = income + 8000 + float64(children)*2000
			case situation.VarMarketIncome:
				vec[i] = income
			case situation.VarPovertyGuideline:
				vec[i] = 15060 + float64(children)*5380
			case situation.VarMarginalTaxRate:
				vec[i] = 0.1
			default:
				vec[i] = float64(children) * 150
			}
		}
		series[v] = vec
	}
	return &engine.Result{Incomes: grid, Series: series}
}

func newTestServer() (*Server, *engine.MockEngine) {
	eng := engine.NewMockEngine()
	eng.EvaluateFunc = func(ctx context.Context, sit *situation.Situation) (*engine.Result, error) {
		return fakeEvaluate(sit), nil
	}
	return NewServer(sweep.New(eng, sweep.Options{}), "test"), eng
}

func postJSON(t *testing.T, path string, payload interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(payload)
	testutil.AssertNoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorEnvelope {
	t.Helper()
	var env httputil.ErrorEnvelope
	testutil.DecodeJSON(t, rec.Body, &env)
	return env
}

func sweepBody() *household.Params {
	return &household.Params{
		MaritalStatus: household.MaritalSingle,
		State:         "CA",
		IncomeMin:     floatPtr(0),
		IncomeMax:     floatPtr(10000),
		IncomeStep:    floatPtr(5000),
		MaxChildren:   intPtr(2),
	}
}

func TestCalculateMarginalChild(t *testing.T) {
	s, eng := newTestServer()

	rec := testutil.NewTestRecorder()
	s.calculateMarginalChild(rec, postJSON(t, "/marginal-child", sweepBody()))

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	if rec.Header().Get(runIDHeader) == "" {
		t.Error("expected a run ID header")
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}

	var rows []sweep.MarginalRow
	testutil.DecodeJSON(t, rec.Body, &rows)
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}

	// Grouped by child count, incomes ascending within each group.
	for i, row := range rows {
		wantChildren := 1 + i/3
		wantIncome := float64(i%3) * 5000
		if row.NumChildren != wantChildren {
			t.Errorf("row %d children = %d, want %d", i, row.NumChildren, wantChildren)
		}
		if row.Income != wantIncome {
			t.Errorf("row %d income = %v, want %v", i, row.Income, wantIncome)
		}
		if row.MarginalBenefit != 2000 {
			t.Errorf("row %d marginal benefit = %v, want 2000", i, row.MarginalBenefit)
		}
	}

	if eng.CallCount() != 3 {
		t.Errorf("engine calls = %d, want one per child count", eng.CallCount())
	}
}

func TestCalculateMarginalChildValidation(t *testing.T) {
	s, eng := newTestServer()

	body := sweepBody()
	body.State = "ZZ"
	rec := testutil.NewTestRecorder()
	s.calculateMarginalChild(rec, postJSON(t, "/marginal-child", body))

	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
	env := decodeEnvelope(t, rec)
	if env.Kind != httputil.KindInvalidInput {
		t.Errorf("kind = %q, want %q", env.Kind, httputil.KindInvalidInput)
	}
	if !strings.Contains(env.Error, "state") {
		t.Errorf("error %q should name the rejected field", env.Error)
	}
	if eng.CallCount() != 0 {
		t.Errorf("engine calls = %d, want 0 on validation failure", eng.CallCount())
	}
	if rec.Header().Get(runIDHeader) == "" {
		t.Error("expected a run ID header even on failure")
	}
}

func TestCalculateMarginalChildEngineFailure(t *testing.T) {
	eng := engine.NewMockEngine()
	eng.DefaultError = engine.Errorf("gateway unreachable")
	s := NewServer(sweep.New(eng, sweep.Options{}), "test")

	rec := testutil.NewTestRecorder()
	s.calculateMarginalChild(rec, postJSON(t, "/marginal-child", sweepBody()))

	testutil.AssertStatusCode(t, rec.Code, http.StatusBadGateway)
	env := decodeEnvelope(t, rec)
	if env.Kind != httputil.KindEngineFailure {
		t.Errorf("kind = %q, want %q", env.Kind, httputil.KindEngineFailure)
	}
	if !strings.Contains(env.Error, "calculation engine") {
		t.Errorf("error %q should carry the engine failure", env.Error)
	}
}

func TestCalculateMarginalChildTimeout(t *testing.T) {
	eng := engine.NewMockEngine()
	eng.DefaultError = engine.Errorf("post situation: %w", context.DeadlineExceeded)
	s := NewServer(sweep.New(eng, sweep.Options{}), "test")

	rec := testutil.NewTestRecorder()
	s.calculateMarginalChild(rec, postJSON(t, "/marginal-child", sweepBody()))

	testutil.AssertStatusCode(t, rec.Code, http.StatusGatewayTimeout)
	env := decodeEnvelope(t, rec)
	if env.Kind != httputil.KindTimeout {
		t.Errorf("kind = %q, want %q", env.Kind, httputil.KindTimeout)
	}
}

func TestCalculateMarginalChildMalformedJSON(t *testing.T) {
	s, eng := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/marginal-child", strings.NewReader("{not json"))
	rec := testutil.NewTestRecorder()
	s.calculateMarginalChild(rec, req)

	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
	env := decodeEnvelope(t, rec)
	if env.Kind != httputil.KindInvalidInput {
		t.Errorf("kind = %q, want %q", env.Kind, httputil.KindInvalidInput)
	}
	if eng.CallCount() != 0 {
		t.Errorf("engine calls = %d, want 0 on malformed input", eng.CallCount())
	}
}

func TestCalculateMarginalChildUnknownFieldsTolerated(t *testing.T) {
	s, _ := newTestServer()

	payload := `{"marital_status":"single","state":"CA","income_max":5000,"income_step":2500,"max_children":1,"ui_theme":"dark"}`
	req := httptest.NewRequest(http.MethodPost, "/marginal-child", strings.NewReader(payload))
	rec := testutil.NewTestRecorder()
	s.calculateMarginalChild(rec, req)

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
}

func TestCalculateMarginalChildBodyTooLarge(t *testing.T) {
	s, eng := newTestServer()

	huge := `{"marital_status":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/marginal-child", strings.NewReader(huge))
	rec := testutil.NewTestRecorder()
	s.calculateMarginalChild(rec, req)

	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
	if eng.CallCount() != 0 {
		t.Errorf("engine calls = %d, want 0 on oversized body", eng.CallCount())
	}
}

func TestCalculateCliff(t *testing.T) {
	s, eng := newTestServer()

	body := &household.Params{
		MaritalStatus: household.MaritalSingle,
		State:         "TX",
		NumChildren:   intPtr(2),
		IncomeMin:     floatPtr(0),
		IncomeMax:     floatPtr(5000),
		IncomeStep:    floatPtr(2500),
	}
	rec := testutil.NewTestRecorder()
	s.calculateCliff(rec, postJSON(t, "/cliff", body))

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var rows []sweep.CliffRow
	testutil.DecodeJSON(t, rec.Body, &rows)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1].Income != 2500 {
		t.Errorf("row 1 income = %v, want 2500", rows[1].Income)
	}
	if rows[1].SNAP != 300 {
		t.Errorf("row 1 snap = %v, want 300", rows[1].SNAP)
	}
	if eng.CallCount() != 1 {
		t.Errorf("engine calls = %d, want one batched evaluation", eng.CallCount())
	}
}

func TestCalculatePoint(t *testing.T) {
	s, eng := newTestServer()

	body := &household.Params{
		MaritalStatus:    household.MaritalMarried,
		State:            "NY",
		EmploymentIncome: 30000,
		NumChildren:      intPtr(1),
	}
	rec := testutil.NewTestRecorder()
	s.calculatePoint(rec, postJSON(t, "/calculate", body))

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var b sweep.Breakdown
	testutil.DecodeJSON(t, rec.Body, &b)
	if b.MarketIncome != 30000 {
		t.Errorf("market income = %v, want 30000", b.MarketIncome)
	}
	if b.SNAP != 150 {
		t.Errorf("snap = %v, want 150", b.SNAP)
	}
	if b.FederalPovertyGuideline != 15060+5380 {
		t.Errorf("fpg = %v, want %v", b.FederalPovertyGuideline, 15060+5380)
	}
	if eng.CallCount() != 1 {
		t.Errorf("engine calls = %d, want 1", eng.CallCount())
	}
}

func TestListStates(t *testing.T) {
	s, _ := newTestServer()

	rec := testutil.NewTestRecorder()
	s.listStates(rec, testutil.NewTestRequest(http.MethodGet, "/states"))

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var resp statesResponse
	testutil.DecodeJSON(t, rec.Body, &resp)
	if len(resp.States) != 51 {
		t.Fatalf("expected 51 states, got %d", len(resp.States))
	}
	if resp.States[0].Name != "Alabama" {
		t.Errorf("first state = %q, want Alabama", resp.States[0].Name)
	}
	if resp.States[50].Name != "Wyoming" {
		t.Errorf("last state = %q, want Wyoming", resp.States[50].Name)
	}
	sorted := sort.SliceIsSorted(resp.States, func(i, j int) bool {
		return resp.States[i].Name < resp.States[j].Name
	})
	if !sorted {
		t.Error("states should be ordered by name")
	}
}

func TestShowHealth(t *testing.T) {
	s, _ := newTestServer()

	rec := testutil.NewTestRecorder()
	s.showHealth(rec, testutil.NewTestRequest(http.MethodGet, "/health"))

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var resp healthResponse
	testutil.DecodeJSON(t, rec.Body, &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.Version != "test" {
		t.Errorf("version = %q, want test", resp.Version)
	}
}

func TestMethodGuards(t *testing.T) {
	s, _ := newTestServer()

	tests := []struct {
		name    string
		method  string
		handler http.HandlerFunc
	}{
		{"marginal child", http.MethodGet, s.calculateMarginalChild},
		{"cliff", http.MethodGet, s.calculateCliff},
		{"calculate", http.MethodDelete, s.calculatePoint},
		{"states", http.MethodPost, s.listStates},
		{"health", http.MethodPost, s.showHealth},
		{"marginal chart", http.MethodPost, s.showMarginalChildChart},
		{"cliff chart", http.MethodPut, s.showCliffChart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewTestRecorder()
			tt.handler(rec, testutil.NewTestRequest(tt.method, "/"))
			testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
			env := decodeEnvelope(t, rec)
			if env.Kind != httputil.KindInvalidInput {
				t.Errorf("kind = %q, want %q", env.Kind, httputil.KindInvalidInput)
			}
		})
	}
}
