package ports

import (
	"context"

	"panelsim/domain/persona"
	"panelsim/domain/survey"
)

// RawAnswer is the unnormalized output of one oracle call
type RawAnswer struct {
	// RawValue is the answer payload; for scale questions it carries a
	// number, possibly embedded in prose
	RawValue string `json:"raw_value"`

	// ConfidenceRaw is the oracle's self-reported confidence; the engine
	// clamps it into [0,1]
	ConfidenceRaw float64 `json:"confidence_raw"`

	// TextRaw is the natural-language explanation of the answer
	TextRaw string `json:"text_raw"`

	// Distribution optionally spreads probability mass over scale points
	// keyed by the point value ("7" -> 0.4). Must sum to ~1.0 when present.
	Distribution map[string]float64 `json:"distribution,omitempty"`
}

// ResponseOracle produces a raw answer for one persona/question pair.
// Calls may fail (network, timeout); the simulation engine degrades the
// single pair and continues.
type ResponseOracle interface {
	Respond(ctx context.Context, p persona.Persona, q survey.Question) (RawAnswer, error)

	// Model identifies the underlying answer source for run metadata
	Model() string
}
