package compare

import (
	"math"
	"sort"

	"panelsim/domain/core"
	"panelsim/domain/results"
	"panelsim/domain/survey"
	"panelsim/internal/aggregate"
)

// DefaultStableBand is the +/- percent band labeled a stable trend
const DefaultStableBand = 5

// Comparator matches questions across completed studies by normalized text
// and computes trend direction and magnitude for each common question.
type Comparator struct {
	stableBand int
	aggregator *aggregate.Aggregator
}

// NewComparator creates a comparator. stableBand widens or narrows the
// "stable" label band; sampleCap flows through to per-study aggregation.
func NewComparator(stableBand, sampleCap int) *Comparator {
	if stableBand < 0 {
		stableBand = DefaultStableBand
	}
	return &Comparator{
		stableBand: stableBand,
		aggregator: aggregate.NewAggregator(sampleCap),
	}
}

// CompareStudies builds cross-study trends for every question appearing in
// at least two of the supplied studies. The caller layer enforces the exact
// study-count bounds; the engine still rejects fewer than two defensively.
// Studies are ordered ascending by completion date, undated studies last.
func (c *Comparator) CompareStudies(studies []results.StudySnapshot) (*results.Comparison, error) {
	if len(studies) < 2 {
		return nil, core.ErrTooFewStudies
	}

	ordered := make([]results.StudySnapshot, len(studies))
	copy(ordered, studies)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].CompletedAt, ordered[j].CompletedAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})

	// Group questions by normalized text, preserving first-seen order
	type occurrence struct {
		studyIdx int
		question survey.Question
	}
	occurrences := make(map[string][]occurrence)
	var keyOrder []string
	for si, study := range ordered {
		for _, q := range study.Questions {
			key := survey.NormalizeText(q.Text)
			if key == "" {
				continue
			}
			if _, seen := occurrences[key]; !seen {
				keyOrder = append(keyOrder, key)
			}
			occurrences[key] = append(occurrences[key], occurrence{studyIdx: si, question: q})
		}
	}

	comparison := &results.Comparison{}
	for _, key := range keyOrder {
		occs := occurrences[key]

		// Common means present in at least two distinct studies
		multi := false
		for _, o := range occs[1:] {
			if o.studyIdx != occs[0].studyIdx {
				multi = true
				break
			}
		}
		if !multi {
			continue
		}

		trend := c.questionTrend(ordered, occs[0].question, key)
		if len(trend.Points) < 2 {
			continue
		}
		comparison.CommonQuestions = append(comparison.CommonQuestions, occs[0].question.Text)
		comparison.Trends = append(comparison.Trends, trend)
	}
	return comparison, nil
}

// questionTrend builds the ordered data-point series for one common
// question and labels its movement. For NPS questions the tracked value is
// the NPS score; otherwise the mean rating. Studies lacking the question,
// or with no valid ratings for it, are omitted from the series.
func (c *Comparator) questionTrend(ordered []results.StudySnapshot, sample survey.Question, key string) results.QuestionTrend {
	trend := results.QuestionTrend{
		QuestionText: sample.Text,
		Type:         sample.Type,
	}

	for _, study := range ordered {
		q, ok := findQuestion(study.Questions, key)
		if !ok {
			continue
		}
		qstats := c.aggregator.Aggregate(study.Responses, []survey.Question{q})
		if len(qstats) == 0 || qstats[0].ValidRatings == 0 {
			continue
		}

		value := qstats[0].Mean
		if q.Type == survey.TypeNPS && qstats[0].NPS != nil {
			value = float64(qstats[0].NPS.Score)
		}
		trend.Points = append(trend.Points, results.TrendPoint{
			StudyID:     study.ID,
			StudyName:   study.Name,
			Value:       value,
			CompletedAt: study.CompletedAt,
		})
	}

	if len(trend.Points) >= 2 {
		first := trend.Points[0].Value
		last := trend.Points[len(trend.Points)-1].Value
		trend.ChangePercent = changePercent(first, last)
		trend.Direction = c.direction(trend.ChangePercent)
	}
	return trend
}

// changePercent compares first and last data points. A zero baseline maps
// to +/-100 by sign of the endpoint rather than dividing by zero.
func changePercent(first, last float64) int {
	if first == 0 {
		switch {
		case last > 0:
			return 100
		case last < 0:
			return -100
		default:
			return 0
		}
	}
	return int(math.Round((last - first) / math.Abs(first) * 100))
}

func (c *Comparator) direction(change int) results.TrendDirection {
	switch {
	case change > c.stableBand:
		return results.TrendImproving
	case change < -c.stableBand:
		return results.TrendDeclining
	default:
		return results.TrendStable
	}
}

func findQuestion(questions []survey.Question, key string) (survey.Question, bool) {
	for _, q := range questions {
		if survey.NormalizeText(q.Text) == key {
			return q, true
		}
	}
	return survey.Question{}, false
}
