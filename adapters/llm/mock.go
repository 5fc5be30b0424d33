package llm

import (
	"context"
	"sync/atomic"

	"panelsim/domain/persona"
	"panelsim/domain/survey"
	"panelsim/ports"
)

// MockOracle is a deterministic oracle for tests. Set Answer for a fixed
// reply, Err to simulate failures, or Fn for per-pair behavior.
type MockOracle struct {
	Answer ports.RawAnswer
	Err    error
	Fn     func(p persona.Persona, q survey.Question) (ports.RawAnswer, error)

	calls atomic.Int64
}

func (m *MockOracle) Respond(ctx context.Context, p persona.Persona, q survey.Question) (ports.RawAnswer, error) {
	m.calls.Add(1)
	if m.Fn != nil {
		return m.Fn(p, q)
	}
	if m.Err != nil {
		return ports.RawAnswer{}, m.Err
	}
	return m.Answer, nil
}

// Calls reports how many times Respond ran
func (m *MockOracle) Calls() int { return int(m.calls.Load()) }

func (m *MockOracle) Model() string { return "mock" }
