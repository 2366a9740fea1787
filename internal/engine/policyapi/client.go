// Package policyapi evaluates situations against the hosted policy engine's
// household API.
package policyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/benefits-data/marginal.report/internal/engine"
	"github.com/benefits-data/marginal.report/internal/httputil"
	"github.com/benefits-data/marginal.report/internal/situation"
)

// DefaultTimeout bounds a single engine call when no custom client is given.
const DefaultTimeout = 60 * time.Second

// Client posts situations to the engine's /calculate endpoint and parses the
// period-keyed response. Every failure surfaces as an *engine.Error; bodies of
// failed responses are carried in the message but never interpreted.
type Client struct {
	HTTPClient httputil.HTTPClient
	BaseURL    string
}

// New creates a client for the engine at baseURL. A nil httpClient gets a
// standard client with DefaultTimeout.
func New(baseURL string, httpClient httputil.HTTPClient) *Client {
	if httpClient == nil {
		httpClient = httputil.NewStandardClient(&http.Client{Timeout: DefaultTimeout})
	}
	return &Client{
		HTTPClient: httpClient,
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// calculateURL is the engine's evaluation endpoint.
func (c *Client) calculateURL() string {
	return c.BaseURL + "/calculate"
}

// Evaluate implements engine.Engine over HTTP: one POST per situation, the
// axis riding inside the document, so a whole sweep costs a single request.
func (c *Client) Evaluate(ctx context.Context, sit *situation.Situation) (*engine.Result, error) {
	payload, err := json.Marshal(map[string]*situation.Situation{"household": sit})
	if err != nil {
		return nil, engine.Errorf("encode situation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.calculateURL(), bytes.NewReader(payload))
	if err != nil {
		return nil, engine.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, engine.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, engine.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, engine.Errorf("status %d: %s", resp.StatusCode, summarize(body))
	}

	var doc map[string]map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, engine.Errorf("decode response: %w", err)
	}
	return buildResult(sit, doc)
}

// buildResult aligns the decoded document with the situation's income grid and
// requested variable set.
func buildResult(sit *situation.Situation, doc map[string]map[string]interface{}) (*engine.Result, error) {
	grid := append([]float64(nil), sit.IncomeGrid()...)
	period := situation.Period(sit.Year())

	series := make(map[string][]float64, len(sit.Requested()))
	for _, name := range sit.Requested() {
		periods, ok := doc[name]
		if !ok {
			return nil, engine.Errorf("response missing variable %q", name)
		}
		vec, err := toFloat64Slice(periods[period], len(grid))
		if err != nil {
			return nil, engine.Errorf("variable %q: %w", name, err)
		}
		series[name] = vec
	}
	return &engine.Result{Incomes: grid, Series: series}, nil
}

// toFloat64Slice coerces a JSON-decoded value into a []float64 of exactly the
// wanted length. The engine returns a vector per variable when an axis is
// embedded and a bare scalar otherwise; anything else is a malformed response,
// never padded over.
func toFloat64Slice(v interface{}, length int) ([]float64, error) {
	switch vv := v.(type) {
	case []interface{}:
		if len(vv) != length {
			return nil, fmt.Errorf("have %d values, want %d", len(vv), length)
		}
		out := make([]float64, length)
		for i, item := range vv {
			f, ok := item.(float64)
			if !ok {
				return nil, fmt.Errorf("value %d is %T, want a number", i, item)
			}
			out[i] = f
		}
		return out, nil
	case float64:
		if length != 1 {
			return nil, fmt.Errorf("have a scalar, want %d values", length)
		}
		return []float64{vv}, nil
	case nil:
		return nil, fmt.Errorf("no value for the requested period")
	default:
		return nil, fmt.Errorf("unexpected value type %T", vv)
	}
}

// summarize trims an error body down to something loggable.
func summarize(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "(empty body)"
	}
	const max = 512
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}
