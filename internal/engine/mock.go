package engine

import (
	"context"
	"sync"

	"github.com/benefits-data/marginal.report/internal/situation"
)

// MockEngine provides a testable Engine implementation. Queued results are
// returned in order; every evaluated situation is recorded so tests can
// assert on call counts and request contents.
type MockEngine struct {
	mu           sync.Mutex
	EvaluateFunc func(ctx context.Context, sit *situation.Situation) (*Result, error)
	Situations   []*situation.Situation
	Outcomes     []*MockOutcome
	outcomeIdx   int
	DefaultError error
}

// MockOutcome defines one canned evaluation outcome.
type MockOutcome struct {
	Result *Result
	Error  error
}

// NewMockEngine creates a new mock engine.
func NewMockEngine() *MockEngine {
	return &MockEngine{
		Situations: []*situation.Situation{},
		Outcomes:   []*MockOutcome{},
	}
}

// AddResult queues a result to be returned by a subsequent evaluation.
func (m *MockEngine) AddResult(r *Result) *MockEngine {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes = append(m.Outcomes, &MockOutcome{Result: r})
	return m
}

// AddError queues an evaluation failure.
func (m *MockEngine) AddError(err error) *MockEngine {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes = append(m.Outcomes, &MockOutcome{Error: err})
	return m
}

// Evaluate records the situation and returns the next queued outcome.
func (m *MockEngine) Evaluate(ctx context.Context, sit *situation.Situation) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Situations = append(m.Situations, sit)

	// Use custom EvaluateFunc if provided
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(ctx, sit)
	}

	// Return default error if set
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}

	// Return next queued outcome
	if m.outcomeIdx < len(m.Outcomes) {
		out := m.Outcomes[m.outcomeIdx]
		m.outcomeIdx++

		if out.Error != nil {
			return nil, out.Error
		}
		return out.Result, nil
	}

	return nil, Errorf("mock engine has no queued outcome for call %d", len(m.Situations))
}

// CallCount returns the number of evaluations performed.
func (m *MockEngine) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Situations)
}

// SituationAt returns the nth evaluated situation.
func (m *MockEngine) SituationAt(n int) *situation.Situation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 0 || n >= len(m.Situations) {
		return nil
	}
	return m.Situations[n]
}

// Reset clears all recorded situations and queued outcomes.
func (m *MockEngine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Situations = []*situation.Situation{}
	m.Outcomes = []*MockOutcome{}
	m.outcomeIdx = 0
	m.DefaultError = nil
	m.EvaluateFunc = nil
}
