package api

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/benefits-data/marginal.report/internal/chart"
	"github.com/benefits-data/marginal.report/internal/household"
	"github.com/benefits-data/marginal.report/internal/httputil"
)

// Chart endpoints default to the dashboard's stock household so a bare URL
// renders something useful in a browser.
const (
	defaultChartState         = "TX"
	defaultChartMaritalStatus = household.MaritalSingle
)

// queryFloat parses an optional float query value. Absent keys return nil.
func queryFloat(q url.Values, key string) (*float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return &v, nil
}

// queryInt parses an optional integer query value. Absent keys return nil.
func queryInt(q url.Values, key string) (*int, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return &v, nil
}

// paramsFromQuery builds household parameters from chart query strings. Keys
// match the JSON field names; unset keys stay nil so the usual defaults
// apply downstream.
func paramsFromQuery(q url.Values) (*household.Params, error) {
	params := &household.Params{
		MaritalStatus: q.Get("marital_status"),
		State:         q.Get("state"),
	}
	if params.MaritalStatus == "" {
		params.MaritalStatus = defaultChartMaritalStatus
	}
	if params.State == "" {
		params.State = defaultChartState
	}

	var err error
	if params.IncomeMin, err = queryFloat(q, "income_min"); err != nil {
		return nil, err
	}
	if params.IncomeMax, err = queryFloat(q, "income_max"); err != nil {
		return nil, err
	}
	if params.IncomeStep, err = queryFloat(q, "income_step"); err != nil {
		return nil, err
	}
	if params.MaxChildren, err = queryInt(q, "max_children"); err != nil {
		return nil, err
	}
	if params.NumChildren, err = queryInt(q, "num_children"); err != nil {
		return nil, err
	}
	if params.Year, err = queryInt(q, "year"); err != nil {
		return nil, err
	}

	scalars := []struct {
		key string
		dst *float64
	}{
		{"employment_income", &params.EmploymentIncome},
		{"spouse_income", &params.SpouseIncome},
		{"housing_cost", &params.HousingCost},
		{"childcare_cost", &params.ChildcareCost},
	}
	for _, sc := range scalars {
		v, err := queryFloat(q, sc.key)
		if err != nil {
			return nil, err
		}
		if v != nil {
			*sc.dst = *v
		}
	}

	if raw := q.Get("child_ages"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			age, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("invalid child_ages entry %q", part)
			}
			params.ChildAges = append(params.ChildAges, age)
		}
	}

	if raw := q.Get("include_health_benefits"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid include_health_benefits: %q", raw)
		}
		params.IncludeHealthBenefits = v
	}

	return params, nil
}

// chartSubtitle names the household a chart was drawn for.
func chartSubtitle(params *household.Params) string {
	return fmt.Sprintf("%s filer, %s", params.MaritalStatus, params.State)
}

// showMarginalChildChart runs the marginal-child analysis from query
// parameters and renders the result as an HTML line chart, one series per
// child count.
func (s *Server) showMarginalChildChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	params, err := paramsFromQuery(r.URL.Query())
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	rows, info, err := s.pipeline.RunMarginal(r.Context(), params)
	w.Header().Set(runIDHeader, info.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chart.MarginalHTML(w, chartSubtitle(params), rows); err != nil {
		log.Printf("[api] render marginal chart: %v", err)
	}
}

// showCliffChart sweeps income for a fixed household from query parameters
// and renders the stacked per-program chart.
func (s *Server) showCliffChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	params, err := paramsFromQuery(r.URL.Query())
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	rows, info, err := s.pipeline.RunCliff(r.Context(), params)
	w.Header().Set(runIDHeader, info.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chart.CliffHTML(w, chartSubtitle(params), rows); err != nil {
		log.Printf("[api] render cliff chart: %v", err)
	}
}
