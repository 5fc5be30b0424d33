package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"panelsim/adapters/llm"
	"panelsim/domain/core"
	"panelsim/domain/persona"
	"panelsim/domain/survey"
	"panelsim/ports"
)

func testPanel(n int) []persona.Persona {
	panel := make([]persona.Persona, n)
	for i := range panel {
		panel[i] = persona.Persona{
			ID:    core.PersonaID(fmt.Sprintf("persona_%03d", i)),
			Label: fmt.Sprintf("Respondent %03d", i+1),
			Age:   30,
		}
	}
	return panel
}

func npsQuestion(id, text string) survey.Question {
	return survey.Question{ID: core.QuestionID(id), Type: survey.TypeNPS, Text: text}
}

func likertQuestion(id, text string) survey.Question {
	return survey.Question{ID: core.QuestionID(id), Type: survey.TypeLikert, Text: text}
}

func TestSimulatePanel_ShapeAndOrder(t *testing.T) {
	oracle := &llm.MockOracle{
		Answer: ports.RawAnswer{RawValue: "4", ConfidenceRaw: 0.8, TextRaw: "seems fine"},
	}
	engine := NewEngine(oracle, 4)

	panel := testPanel(10)
	questions := []survey.Question{
		likertQuestion("q1", "How satisfied are you?"),
		likertQuestion("q2", "How likely are you to return?"),
		npsQuestion("q3", "Would you recommend us?"),
	}

	result, err := engine.SimulatePanel(context.Background(), "study1", panel, questions)
	if err != nil {
		t.Fatalf("SimulatePanel failed: %v", err)
	}

	if result.TotalRespondents != len(panel) {
		t.Errorf("TotalRespondents = %d, want %d", result.TotalRespondents, len(panel))
	}
	if len(result.Results) != len(panel) {
		t.Fatalf("Expected %d persona results, got %d", len(panel), len(result.Results))
	}
	for i, pr := range result.Results {
		if pr.Persona.ID != panel[i].ID {
			t.Errorf("Result %d persona out of order: %s", i, pr.Persona.ID)
		}
		if len(pr.Responses) != len(questions) {
			t.Fatalf("Persona %d has %d responses, want %d", i, len(pr.Responses), len(questions))
		}
		for j, resp := range pr.Responses {
			if resp.QuestionID != questions[j].ID {
				t.Errorf("Persona %d response %d answers question %s, want %s",
					i, j, resp.QuestionID, questions[j].ID)
			}
			if resp.Rating == nil || *resp.Rating != 4 {
				t.Errorf("Expected rating 4, got %v", resp.Rating)
			}
		}
	}
	if oracle.Calls() != len(panel)*len(questions) {
		t.Errorf("Oracle called %d times, want %d", oracle.Calls(), len(panel)*len(questions))
	}
}

func TestSimulatePanel_PartialOracleFailure(t *testing.T) {
	// 3 of 100 pairs fail; simulation still returns all results with the
	// affected pairs degraded
	failFor := map[core.PersonaID]bool{"persona_003": true, "persona_017": true, "persona_042": true}
	oracle := &llm.MockOracle{
		Fn: func(p persona.Persona, q survey.Question) (ports.RawAnswer, error) {
			if failFor[p.ID] {
				return ports.RawAnswer{}, errors.New("timeout")
			}
			return ports.RawAnswer{RawValue: "8", ConfidenceRaw: 0.9}, nil
		},
	}
	engine := NewEngine(oracle, 8)

	panel := testPanel(100)
	questions := []survey.Question{npsQuestion("q1", "Would you recommend us?")}

	result, err := engine.SimulatePanel(context.Background(), "study1", panel, questions)
	if err != nil {
		t.Fatalf("SimulatePanel failed: %v", err)
	}

	if len(result.Results) != 100 {
		t.Fatalf("Expected 100 results, got %d", len(result.Results))
	}
	if result.Metadata.FailedPairs != 3 {
		t.Errorf("FailedPairs = %d, want 3", result.Metadata.FailedPairs)
	}
	for _, pr := range result.Results {
		resp := pr.Responses[0]
		if failFor[pr.Persona.ID] {
			if resp.Rating != nil {
				t.Errorf("Degraded response for %s has rating %v", pr.Persona.ID, *resp.Rating)
			}
			if resp.Confidence != 0 {
				t.Errorf("Degraded response for %s has confidence %f", pr.Persona.ID, resp.Confidence)
			}
		} else if resp.Rating == nil || *resp.Rating != 8 {
			t.Errorf("Healthy response for %s missing rating", pr.Persona.ID)
		}
	}
}

func TestSimulatePanel_AllPairsFail(t *testing.T) {
	oracle := &llm.MockOracle{Err: errors.New("connection refused")}
	engine := NewEngine(oracle, 4)

	_, err := engine.SimulatePanel(context.Background(), "study1",
		testPanel(5), []survey.Question{likertQuestion("q1", "Rate us")})
	if !errors.Is(err, core.ErrOracleUnavailable) {
		t.Fatalf("Expected ErrOracleUnavailable, got %v", err)
	}
}

func TestSimulatePanel_ClampsOutOfRangeRatings(t *testing.T) {
	oracle := &llm.MockOracle{
		Answer: ports.RawAnswer{RawValue: "12", ConfidenceRaw: 1.5},
	}
	engine := NewEngine(oracle, 2)

	result, err := engine.SimulatePanel(context.Background(), "study1",
		testPanel(4), []survey.Question{likertQuestion("q1", "Rate us")})
	if err != nil {
		t.Fatal(err)
	}

	for _, pr := range result.Results {
		resp := pr.Responses[0]
		if resp.Rating == nil || *resp.Rating != 5 {
			t.Errorf("Expected rating clamped to 5, got %v", resp.Rating)
		}
		if resp.Confidence != 1 {
			t.Errorf("Expected confidence clamped to 1, got %f", resp.Confidence)
		}
	}
	if result.Metadata.ClampedRatings != 4 {
		t.Errorf("ClampedRatings = %d, want 4", result.Metadata.ClampedRatings)
	}
}

func TestSimulatePanel_OpenEndedHasNoRating(t *testing.T) {
	oracle := &llm.MockOracle{
		Answer: ports.RawAnswer{RawValue: "I liked the checkout flow", ConfidenceRaw: 0.7, TextRaw: "fast and simple"},
	}
	engine := NewEngine(oracle, 2)

	q := survey.Question{ID: "q1", Type: survey.TypeOpenEnded, Text: "What stood out?"}
	result, err := engine.SimulatePanel(context.Background(), "study1", testPanel(3), []survey.Question{q})
	if err != nil {
		t.Fatal(err)
	}
	for _, pr := range result.Results {
		resp := pr.Responses[0]
		if resp.Rating != nil {
			t.Errorf("Open-ended response has rating %v", *resp.Rating)
		}
		if resp.TextResponse == "" || resp.Explanation == "" {
			t.Errorf("Open-ended response missing text fields: %+v", resp)
		}
	}
}

func TestSimulatePanel_MalformedDistributionDropped(t *testing.T) {
	oracle := &llm.MockOracle{
		Answer: ports.RawAnswer{
			RawValue:      "7",
			ConfidenceRaw: 0.8,
			Distribution:  map[string]float64{"6": 0.5, "7": 0.9}, // sums to 1.4
		},
	}
	engine := NewEngine(oracle, 2)

	result, err := engine.SimulatePanel(context.Background(), "study1",
		testPanel(2), []survey.Question{npsQuestion("q1", "Recommend?")})
	if err != nil {
		t.Fatal(err)
	}
	for _, pr := range result.Results {
		if pr.Responses[0].Distribution != nil {
			t.Error("Malformed distribution should have been dropped")
		}
	}
	if result.Metadata.DroppedDists != 2 {
		t.Errorf("DroppedDists = %d, want 2", result.Metadata.DroppedDists)
	}
}

func TestSimulatePanel_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancelled before dispatch

	oracle := &llm.MockOracle{Answer: ports.RawAnswer{RawValue: "3"}}
	engine := NewEngine(oracle, 1)

	result, err := engine.SimulatePanel(ctx, "study1",
		testPanel(10), []survey.Question{likertQuestion("q1", "Rate us")})
	if !errors.Is(err, core.ErrSimulationAborted) {
		t.Fatalf("Expected ErrSimulationAborted, got %v", err)
	}
	if oracle.Calls() != 0 {
		t.Errorf("No pairs should dispatch after cancellation, got %d calls", oracle.Calls())
	}
	// Settled work survives an abort: the partial result comes back with
	// the error instead of being discarded
	if result == nil {
		t.Fatal("Aborted simulation should still return the partial result")
	}
	if len(result.Results) != 10 {
		t.Errorf("Partial result should keep all persona slots, got %d", len(result.Results))
	}
}

func TestSimulatePanel_MidRunCancellationKeepsSettledPairs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var done int32
	oracle := &llm.MockOracle{
		Fn: func(p persona.Persona, q survey.Question) (ports.RawAnswer, error) {
			// Cancel after the third settled pair; with concurrency 1 the
			// dispatch loop observes it before handing out more work
			if atomic.AddInt32(&done, 1) == 3 {
				cancel()
			}
			return ports.RawAnswer{RawValue: "4", ConfidenceRaw: 0.8}, nil
		},
	}
	engine := NewEngine(oracle, 1)

	result, err := engine.SimulatePanel(ctx, "study1",
		testPanel(10), []survey.Question{likertQuestion("q1", "Rate us")})
	if !errors.Is(err, core.ErrSimulationAborted) {
		t.Fatalf("Expected ErrSimulationAborted, got %v", err)
	}
	if result == nil {
		t.Fatal("Aborted simulation should still return the partial result")
	}

	settled := 0
	for _, pr := range result.Results {
		for _, resp := range pr.Responses {
			if resp.Rating != nil {
				settled++
			}
		}
	}
	if settled < 3 || settled >= 10 {
		t.Errorf("Expected a strict subset of settled pairs (>= 3), got %d", settled)
	}
}

func TestRetryFailedPairs(t *testing.T) {
	calls := 0
	oracle := &llm.MockOracle{
		Fn: func(p persona.Persona, q survey.Question) (ports.RawAnswer, error) {
			calls++
			if calls <= 2 {
				return ports.RawAnswer{}, errors.New("flaky")
			}
			return ports.RawAnswer{RawValue: "6", ConfidenceRaw: 0.6}, nil
		},
	}
	engine := NewEngine(oracle, 1)

	questions := []survey.Question{npsQuestion("q1", "Recommend?")}
	result, err := engine.SimulatePanel(context.Background(), "study1", testPanel(2), questions)
	if err != nil {
		t.Fatal(err)
	}
	if result.Metadata.FailedPairs != 2 {
		t.Fatalf("Expected 2 failed pairs, got %d", result.Metadata.FailedPairs)
	}

	retried, err := engine.RetryFailedPairs(context.Background(), "study1", result, questions)
	if err != nil {
		t.Fatal(err)
	}
	if retried != 2 {
		t.Errorf("Expected 2 retried pairs, got %d", retried)
	}
	if result.Metadata.FailedPairs != 0 {
		t.Errorf("FailedPairs should drop to 0, got %d", result.Metadata.FailedPairs)
	}
	for _, pr := range result.Results {
		if pr.Responses[0].Rating == nil {
			t.Error("Retried response still degraded")
		}
	}
}
