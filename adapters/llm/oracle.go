package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"panelsim/domain/persona"
	"panelsim/domain/survey"
	"panelsim/ports"
)

const oracleSystemPrompt = "You are role-playing a survey respondent. Answer strictly as the " +
	"described person would, not as an assistant. Reply with a single JSON object and nothing else."

// Oracle answers persona/question pairs through a chat completion client.
// It is the production ports.ResponseOracle.
type Oracle struct {
	client ChatClient
	model  string
}

// NewOracle wraps a chat client as a response oracle
func NewOracle(client ChatClient, model string) *Oracle {
	return &Oracle{client: client, model: model}
}

// Model identifies the answer source for run metadata
func (o *Oracle) Model() string { return o.model }

// Respond builds a persona-aware prompt, invokes the model, and parses its
// JSON reply into a RawAnswer. Parsing is lenient about surrounding prose;
// a reply with no recoverable JSON falls back to treating the whole text as
// the raw value with zero reported confidence.
func (o *Oracle) Respond(ctx context.Context, p persona.Persona, q survey.Question) (ports.RawAnswer, error) {
	reply, err := o.client.ChatCompletion(ctx, oracleSystemPrompt, buildPrompt(p, q))
	if err != nil {
		return ports.RawAnswer{}, err
	}
	return parseReply(reply), nil
}

// buildPrompt renders the persona profile and question into a respondent
// instruction. Scale questions name their bounds and anchors so the model
// answers on the declared scale.
func buildPrompt(p persona.Persona, q survey.Question) string {
	var b strings.Builder

	b.WriteString("You are this person:\n")
	fmt.Fprintf(&b, "- Age %d, %s, living in a %s area\n", p.Age, p.Gender, p.Location)
	fmt.Fprintf(&b, "- Income level: %s; education: %s\n", p.IncomeLevel, p.Education)
	if p.IndustryExperience != "" {
		fmt.Fprintf(&b, "- Works in: %s\n", p.IndustryExperience)
	}
	if len(p.ProductExperience) > 0 {
		fmt.Fprintf(&b, "- Has used: %s\n", strings.Join(p.ProductExperience, ", "))
	}
	if len(p.BrandAffinities) > 0 {
		fmt.Fprintf(&b, "- Favors brands: %s\n", strings.Join(p.BrandAffinities, ", "))
	}

	b.WriteString("\nSurvey question: ")
	b.WriteString(q.Text)
	b.WriteString("\n")

	switch q.Type {
	case survey.TypeOpenEnded:
		b.WriteString("Answer in one or two sentences in this person's voice.\n")
	case survey.TypeMultipleChoice, survey.TypeRanking:
		fmt.Fprintf(&b, "Pick exactly one of: %s\n", strings.Join(q.Options, " | "))
	default:
		min, max := q.Scale()
		fmt.Fprintf(&b, "Answer with a number from %d to %d", min, max)
		if q.Anchors != nil {
			fmt.Fprintf(&b, " (%d = %s, %d = %s)", min, q.Anchors.Min, max, q.Anchors.Max)
		}
		b.WriteString(".\n")
	}

	b.WriteString("\nReply as JSON: {\"value\": <answer>, \"confidence\": <0..1>, \"explanation\": \"<why, in this person's voice>\"}")
	return b.String()
}

// replyShape is what the model is asked to produce
type replyShape struct {
	Value        json.RawMessage    `json:"value"`
	Confidence   float64            `json:"confidence"`
	Explanation  string             `json:"explanation"`
	Distribution map[string]float64 `json:"distribution"`
}

func parseReply(reply string) ports.RawAnswer {
	payload := extractJSONObject(reply)
	if payload == "" {
		return ports.RawAnswer{RawValue: strings.TrimSpace(reply)}
	}

	var parsed replyShape
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return ports.RawAnswer{RawValue: strings.TrimSpace(reply)}
	}

	rawValue := strings.Trim(string(parsed.Value), `"`)
	return ports.RawAnswer{
		RawValue:      strings.TrimSpace(rawValue),
		ConfidenceRaw: parsed.Confidence,
		TextRaw:       strings.TrimSpace(parsed.Explanation),
		Distribution:  parsed.Distribution,
	}
}

// extractJSONObject pulls the outermost {...} span out of a reply that may
// wrap the JSON in prose or code fences
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
