package simulation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"panelsim/domain/core"
	"panelsim/domain/persona"
	"panelsim/domain/results"
	"panelsim/domain/survey"
	"panelsim/internal"
	"panelsim/ports"
)

// DefaultConcurrency bounds in-flight oracle calls when none is configured
const DefaultConcurrency = 8

// Engine runs a full panel simulation: one oracle call per
// (persona, question) pair, bounded concurrency, stable output order.
type Engine struct {
	oracle      ports.ResponseOracle
	concurrency int64
	logger      *internal.Logger
}

// NewEngine creates a simulation engine around a response oracle
func NewEngine(oracle ports.ResponseOracle, concurrency int) *Engine {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Engine{
		oracle:      oracle,
		concurrency: int64(concurrency),
		logger:      internal.DefaultLogger,
	}
}

// SimulatePanel simulates every (persona, question) pair and reassembles
// responses in (persona index, question index) order regardless of
// completion order. A failed oracle call degrades that single pair; the
// run errors only when every pair fails. Cancellation via ctx stops
// dispatching new pairs; already settled results remain valid and come
// back with ErrSimulationAborted.
func (e *Engine) SimulatePanel(ctx context.Context, studyID core.StudyID, panel []persona.Persona, questions []survey.Question) (*results.PanelResult, error) {
	if len(panel) == 0 {
		return nil, core.NewValidationError("panel", "panel cannot be empty")
	}
	if len(questions) == 0 {
		return nil, core.NewValidationError("questions", "questions cannot be empty")
	}

	personaResults := make([]results.PersonaResult, len(panel))
	for i := range panel {
		personaResults[i] = results.PersonaResult{
			Persona:   panel[i],
			Responses: make([]results.Response, len(questions)),
		}
	}

	var (
		clamped      atomic.Int64
		droppedDists atomic.Int64
		failed       atomic.Int64
		dispatched   int
		wg           sync.WaitGroup
	)

	sem := semaphore.NewWeighted(e.concurrency)

dispatch:
	for pi := range panel {
		for qi := range questions {
			// Observe cancellation before handing out more work
			if err := sem.Acquire(ctx, 1); err != nil {
				e.logger.Warn("simulation cancelled after %d of %d pairs dispatched", dispatched, len(panel)*len(questions))
				break dispatch
			}
			dispatched++

			wg.Add(1)
			go func(pi, qi int) {
				defer wg.Done()
				defer sem.Release(1)

				p := panel[pi]
				q := questions[qi]

				raw, err := e.oracle.Respond(ctx, p, q)
				if err != nil {
					failed.Add(1)
					e.logger.Debug("oracle call failed for persona %s question %s: %v", p.ID, q.ID, err)
					personaResults[pi].Responses[qi] = degradedResponse(q, studyID, p.ID)
					return
				}

				resp, outcome := normalize(raw, q, studyID, p.ID)
				if outcome.clamped {
					clamped.Add(1)
				}
				if outcome.droppedDist {
					droppedDists.Add(1)
				}
				personaResults[pi].Responses[qi] = resp
			}(pi, qi)
		}
	}

	wg.Wait()

	totalPairs := len(panel) * len(questions)
	result := &results.PanelResult{
		TotalRespondents: len(panel),
		Results:          personaResults,
		Metadata: results.RunMetadata{
			CompletedAt:    core.Now(),
			ModelUsed:      e.oracle.Model(),
			ClampedRatings: int(clamped.Load()),
			DroppedDists:   int(droppedDists.Load()),
			FailedPairs:    int(failed.Load()),
		},
	}

	// On cancellation settled pairs remain valid; the partial result is
	// returned with the error so callers can keep or retry it. Undispatched
	// pairs hold zero-value responses.
	if dispatched < totalPairs {
		return result, fmt.Errorf("%w: %d of %d pairs dispatched", core.ErrSimulationAborted, dispatched, totalPairs)
	}
	if int(failed.Load()) == totalPairs {
		return nil, fmt.Errorf("%w: all %d oracle calls failed", core.ErrOracleUnavailable, totalPairs)
	}

	if n := clamped.Load(); n > 0 {
		e.logger.Info("simulation clamped %d out-of-range ratings", n)
	}
	return result, nil
}

// RetryFailedPairs re-runs the oracle for degraded responses in a prior
// result. Only pairs with zero confidence and a nil rating on a numeric
// question (or empty explanation on open-ended) are retried.
func (e *Engine) RetryFailedPairs(ctx context.Context, studyID core.StudyID, prior *results.PanelResult, questions []survey.Question) (retried int, err error) {
	questionByID := make(map[core.QuestionID]survey.Question, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}

	for pi := range prior.Results {
		pr := &prior.Results[pi]
		for qi := range pr.Responses {
			resp := &pr.Responses[qi]
			if !isDegraded(*resp, questionByID[resp.QuestionID]) {
				continue
			}
			if ctx.Err() != nil {
				return retried, ctx.Err()
			}

			q := questionByID[resp.QuestionID]
			raw, oerr := e.oracle.Respond(ctx, pr.Persona, q)
			if oerr != nil {
				continue
			}
			fresh, outcome := normalize(raw, q, studyID, pr.Persona.ID)
			if outcome.clamped {
				prior.Metadata.ClampedRatings++
			}
			*resp = fresh
			retried++
			if prior.Metadata.FailedPairs > 0 {
				prior.Metadata.FailedPairs--
			}
		}
	}
	return retried, nil
}

func isDegraded(r results.Response, q survey.Question) bool {
	if r.Confidence != 0 {
		return false
	}
	if q.IsNumeric() {
		return r.Rating == nil
	}
	return r.Explanation == "" && r.TextResponse == ""
}
