package survey

import (
	"strings"

	"panelsim/domain/core"
)

// QuestionType classifies how a question is asked and answered
type QuestionType string

const (
	TypeLikert         QuestionType = "likert"
	TypeNPS            QuestionType = "nps"
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeRanking        QuestionType = "ranking"
	TypeOpenEnded      QuestionType = "open_ended"
)

// Default scale bounds per question type
const (
	LikertScaleMin = 1
	LikertScaleMax = 5
	NPSScaleMin    = 0
	NPSScaleMax    = 10
)

// ScaleAnchors names the endpoints of a rating scale
type ScaleAnchors struct {
	Min string `json:"min,omitempty"`
	Max string `json:"max,omitempty"`
}

// Question is a single survey question. Immutable once a study starts.
type Question struct {
	ID       core.QuestionID `json:"id"`
	Type     QuestionType    `json:"type"`
	Text     string          `json:"text"`
	Options  []string        `json:"options,omitempty"`
	ScaleMin *int            `json:"scale_min,omitempty"`
	ScaleMax *int            `json:"scale_max,omitempty"`
	Anchors  *ScaleAnchors   `json:"anchors,omitempty"`
}

// Scale resolves the effective rating bounds for the question,
// applying type defaults when explicit bounds are absent.
func (q Question) Scale() (min, max int) {
	switch q.Type {
	case TypeNPS:
		min, max = NPSScaleMin, NPSScaleMax
	case TypeMultipleChoice, TypeRanking:
		min, max = 1, LikertScaleMax
		if len(q.Options) > 0 {
			max = len(q.Options)
		}
	default:
		min, max = LikertScaleMin, LikertScaleMax
	}
	if q.ScaleMin != nil {
		min = *q.ScaleMin
	}
	if q.ScaleMax != nil {
		max = *q.ScaleMax
	}
	return min, max
}

// IsNumeric reports whether the question produces a numeric rating
func (q Question) IsNumeric() bool {
	switch q.Type {
	case TypeLikert, TypeNPS, TypeMultipleChoice, TypeRanking:
		return true
	}
	return false
}

// Validate checks structural integrity of the question definition
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return core.NewValidationError("text", "question text cannot be empty")
	}
	switch q.Type {
	case TypeLikert, TypeNPS, TypeMultipleChoice, TypeRanking, TypeOpenEnded:
	default:
		return core.NewValidationError("type", "unknown question type: "+string(q.Type))
	}
	min, max := q.Scale()
	if q.IsNumeric() && min >= max {
		return core.NewValidationError("scale", "scale min must be below scale max")
	}
	if (q.Type == TypeMultipleChoice || q.Type == TypeRanking) && len(q.Options) == 0 {
		return core.NewValidationError("options", "choice and ranking questions require options")
	}
	return nil
}

// NormalizeText canonicalizes question text for cross-study matching.
// Matching is purely textual: lowercase plus whitespace trim.
func NormalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
