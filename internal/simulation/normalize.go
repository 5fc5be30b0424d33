package simulation

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"panelsim/domain/core"
	"panelsim/domain/results"
	"panelsim/domain/survey"
	"panelsim/ports"
)

// distributionTolerance bounds how far a probability breakdown may drift
// from summing to 1.0 before it is discarded as an anomaly
const distributionTolerance = 0.05

var numberPattern = regexp.MustCompile(`-?\d+(\.\d+)?`)

// normalizeOutcome reports data-quality events observed while normalizing
// a single raw answer
type normalizeOutcome struct {
	clamped     bool
	droppedDist bool
}

// normalize converts a raw oracle answer into a typed Response for the
// given question. Out-of-bounds ratings are clamped to the nearest bound
// and reported, not dropped: clamping is a data-quality signal, not a
// failure.
func normalize(raw ports.RawAnswer, q survey.Question, studyID core.StudyID, personaID core.PersonaID) (results.Response, normalizeOutcome) {
	resp := results.Response{
		ID:           core.ResponseID(core.NewID()),
		StudyID:      studyID,
		PersonaID:    personaID,
		QuestionID:   q.ID,
		TextResponse: strings.TrimSpace(raw.RawValue),
		Explanation:  strings.TrimSpace(raw.TextRaw),
		Confidence:   clamp01(raw.ConfidenceRaw),
	}

	var outcome normalizeOutcome

	if q.IsNumeric() {
		rating, ok, clamped := extractRating(raw.RawValue, q)
		if ok {
			resp.Rating = &rating
			outcome.clamped = clamped
		}
	}

	if len(raw.Distribution) > 0 {
		if distributionSumsToOne(raw.Distribution) {
			resp.Distribution = raw.Distribution
		} else {
			outcome.droppedDist = true
		}
	}

	return resp, outcome
}

// extractRating maps the raw value onto the question's declared scale.
// For choice questions an exact option match wins over embedded numbers.
func extractRating(rawValue string, q survey.Question) (rating int, ok bool, clamped bool) {
	min, max := q.Scale()

	if q.Type == survey.TypeMultipleChoice || q.Type == survey.TypeRanking {
		needle := strings.ToLower(strings.TrimSpace(rawValue))
		for i, opt := range q.Options {
			if strings.ToLower(strings.TrimSpace(opt)) == needle {
				return i + 1, true, false
			}
		}
	}

	match := numberPattern.FindString(rawValue)
	if match == "" {
		return 0, false, false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false, false
	}

	rating = int(math.Round(value))
	if rating < min {
		return min, true, true
	}
	if rating > max {
		return max, true, true
	}
	return rating, true, false
}

func distributionSumsToOne(dist map[string]float64) bool {
	sum := 0.0
	for _, w := range dist {
		sum += w
	}
	return math.Abs(sum-1.0) <= distributionTolerance
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// degradedResponse records a failed oracle call for one pair: nil rating,
// empty explanation, zero confidence. Partial results stay usable.
func degradedResponse(q survey.Question, studyID core.StudyID, personaID core.PersonaID) results.Response {
	return results.Response{
		ID:         core.ResponseID(core.NewID()),
		StudyID:    studyID,
		PersonaID:  personaID,
		QuestionID: q.ID,
		Confidence: 0,
	}
}
