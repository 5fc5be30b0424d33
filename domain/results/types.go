package results

import (
	"panelsim/domain/core"
	"panelsim/domain/persona"
	"panelsim/domain/survey"
)

// Response links one persona to one question within a study.
// Created in batch when a simulation run completes; never mutated afterward.
type Response struct {
	ID         core.ResponseID `json:"id"`
	StudyID    core.StudyID    `json:"study_id"`
	PersonaID  core.PersonaID  `json:"persona_id"`
	QuestionID core.QuestionID `json:"question_id"`

	// Rating is nil for open-ended questions and for degraded responses
	Rating       *int               `json:"rating,omitempty"`
	TextResponse string             `json:"text_response,omitempty"`
	Explanation  string             `json:"explanation,omitempty"`
	Confidence   float64            `json:"confidence"`
	Distribution map[string]float64 `json:"distribution,omitempty"`
}

// PersonaResult bundles one persona's ordered responses, one per question
type PersonaResult struct {
	Persona   persona.Persona `json:"persona"`
	Responses []Response      `json:"responses"`
}

// RunMetadata describes how a simulation run went
type RunMetadata struct {
	CompletedAt    core.Timestamp `json:"completed_at"`
	PanelPreset    string         `json:"panel_preset"`
	ModelUsed      string         `json:"model_used"`
	ClampedRatings int            `json:"clamped_ratings"`
	DroppedDists   int            `json:"dropped_distributions"`
	FailedPairs    int            `json:"failed_pairs"`
}

// PanelResult is the output of one simulation run over a full panel
type PanelResult struct {
	TotalRespondents int             `json:"total_respondents"`
	Results          []PersonaResult `json:"results"`
	Metadata         RunMetadata     `json:"metadata"`
}

// NPSBreakdown decomposes NPS ratings into segments, each as a whole
// percentage of total valid ratings
type NPSBreakdown struct {
	Score      int `json:"nps_score"`
	Promoters  int `json:"promoters"`
	Passives   int `json:"passives"`
	Detractors int `json:"detractors"`
}

// OpenEndedSample is one sampled free-text response
type OpenEndedSample struct {
	Explanation string  `json:"explanation"`
	Confidence  float64 `json:"confidence"`
}

// QuestionStats holds derived statistics for one question. Always
// recomputable from the underlying Response rows; never an independent
// source of truth.
type QuestionStats struct {
	QuestionID   core.QuestionID     `json:"question_id"`
	QuestionText string              `json:"question_text"`
	Type         survey.QuestionType `json:"type"`

	// TotalResponses counts every attempt; ValidRatings excludes nil
	// ratings and ratings below the question's scale floor (0 is valid
	// on the NPS scale)
	TotalResponses int `json:"total_responses"`
	ValidRatings   int `json:"valid_ratings"`

	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`

	// Distribution is a per-scale-point histogram in whole percents:
	// 5 buckets for likert-style scales, 11 for NPS
	Distribution []int `json:"distribution,omitempty"`

	NPS *NPSBreakdown `json:"nps,omitempty"`

	// Samples carries a bounded set of open-ended responses
	Samples []OpenEndedSample `json:"samples,omitempty"`

	// AvgConfidence is the mean confidence across all responses for the
	// question, as a rounded whole percent
	AvgConfidence int `json:"avg_confidence"`
}

// SimulationResult is the HTTP-facing contract shape for a completed run
type SimulationResult struct {
	TotalRespondents int             `json:"totalRespondents"`
	Questions        []QuestionStats `json:"questions"`
	RawResults       []PersonaResult `json:"rawResults"`
	Metadata         RunMetadata     `json:"metadata"`
}

// StudySnapshot is the comparison engine's view of one completed study
type StudySnapshot struct {
	ID          core.StudyID      `json:"id"`
	Name        string            `json:"name"`
	CompletedAt *core.Timestamp   `json:"completed_at,omitempty"`
	Questions   []survey.Question `json:"questions"`
	Responses   []Response        `json:"responses"`
}

// TrendDirection labels how a metric moved across studies
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// TrendPoint is one study's contribution to a question's trend series
type TrendPoint struct {
	StudyID   core.StudyID    `json:"study_id"`
	StudyName string          `json:"study_name"`
	Value     float64         `json:"value"`
	CompletedAt *core.Timestamp `json:"completed_at,omitempty"`
}

// QuestionTrend is the cross-study trend for one common question
type QuestionTrend struct {
	QuestionText  string         `json:"question_text"`
	Type          survey.QuestionType `json:"type"`
	Points        []TrendPoint   `json:"points"`
	ChangePercent int            `json:"change_percent"`
	Direction     TrendDirection `json:"direction"`
}

// Comparison is the cross-study comparison output
type Comparison struct {
	CommonQuestions []string        `json:"common_questions"`
	Trends          []QuestionTrend `json:"trends"`
}
