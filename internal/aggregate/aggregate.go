package aggregate

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"panelsim/domain/results"
	"panelsim/domain/survey"
)

// DefaultSampleCap bounds open-ended samples per question
const DefaultSampleCap = 10

// Scale point counts for distribution histograms: NPS ratings run 0..10,
// everything else is bucketed onto five points
const (
	npsBuckets    = 11
	likertBuckets = 5
)

// NPS segment boundaries: promoters rate >= 9, detractors <= 6
const (
	promoterFloor    = 9
	detractorCeiling = 6
)

// Aggregator computes per-question statistics from raw responses.
// Pure and synchronous; identical input yields byte-identical output.
type Aggregator struct {
	sampleCap int
}

// NewAggregator creates an aggregator with the given open-ended sample cap
func NewAggregator(sampleCap int) *Aggregator {
	if sampleCap < 1 {
		sampleCap = DefaultSampleCap
	}
	return &Aggregator{sampleCap: sampleCap}
}

// Aggregate computes one QuestionStats per question, in question order.
// Ratings that are nil or below the question's scale floor count as
// attempts but are excluded from numeric statistics; on the 0..10 NPS
// scale a zero rating is a real detractor answer, not a missing one. A
// question with no responses at all yields a stats record with
// TotalResponses zero rather than an error.
func (a *Aggregator) Aggregate(responses []results.Response, questions []survey.Question) []results.QuestionStats {
	out := make([]results.QuestionStats, 0, len(questions))
	for _, q := range questions {
		out = append(out, a.aggregateQuestion(responses, q))
	}
	return out
}

func (a *Aggregator) aggregateQuestion(responses []results.Response, q survey.Question) results.QuestionStats {
	qs := results.QuestionStats{
		QuestionID:   q.ID,
		QuestionText: q.Text,
		Type:         q.Type,
	}

	minValid := 1
	if q.Type == survey.TypeNPS {
		minValid = 0
	}

	var (
		ratings     []float64
		confidences []float64
	)
	for _, r := range responses {
		if r.QuestionID != q.ID {
			continue
		}
		qs.TotalResponses++
		confidences = append(confidences, r.Confidence)

		if q.Type == survey.TypeOpenEnded {
			if len(qs.Samples) < a.sampleCap && (r.Explanation != "" || r.TextResponse != "") {
				explanation := r.Explanation
				if explanation == "" {
					explanation = r.TextResponse
				}
				qs.Samples = append(qs.Samples, results.OpenEndedSample{
					Explanation: explanation,
					Confidence:  r.Confidence,
				})
			}
			continue
		}

		if r.Rating != nil && *r.Rating >= minValid {
			ratings = append(ratings, float64(*r.Rating))
		}
	}

	qs.ValidRatings = len(ratings)
	qs.AvgConfidence = wholePercentMean(confidences)

	if len(ratings) == 0 {
		return qs
	}

	mean, _ := stats.Mean(ratings)
	stdDev, _ := stats.StandardDeviation(ratings) // population form
	qs.Mean = round2(mean)
	qs.StdDev = round2(stdDev)
	qs.Median = lowerMedian(ratings)
	qs.Distribution = distributionPercents(ratings, q.Type)

	if q.Type == survey.TypeNPS {
		qs.NPS = npsBreakdown(ratings)
	}
	return qs
}

// lowerMedian picks the element at index floor(n/2) of the sorted ratings,
// i.e. the lower middle when the count is even.
func lowerMedian(ratings []float64) float64 {
	sorted := make([]float64, len(ratings))
	copy(sorted, ratings)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

// distributionPercents builds a count-per-scale-point histogram normalized
// to whole percents. NPS buckets index ratings 0..10 directly; likert-style
// buckets index rating-1 onto 0..4.
func distributionPercents(ratings []float64, t survey.QuestionType) []int {
	buckets := likertBuckets
	offset := 1
	if t == survey.TypeNPS {
		buckets = npsBuckets
		offset = 0
	}

	counts := make([]int, buckets)
	for _, r := range ratings {
		idx := int(r) - offset
		if idx < 0 {
			idx = 0
		}
		if idx >= buckets {
			idx = buckets - 1
		}
		counts[idx]++
	}

	total := float64(len(ratings))
	percents := make([]int, buckets)
	for i, c := range counts {
		percents[i] = int(math.Round(float64(c) / total * 100))
	}
	return percents
}

func npsBreakdown(ratings []float64) *results.NPSBreakdown {
	var promoters, detractors int
	for _, r := range ratings {
		switch {
		case r >= promoterFloor:
			promoters++
		case r <= detractorCeiling:
			detractors++
		}
	}
	total := len(ratings)
	passives := total - promoters - detractors

	pct := func(n int) int {
		return int(math.Round(float64(n) / float64(total) * 100))
	}
	return &results.NPSBreakdown{
		Score:      int(math.Round(float64(promoters-detractors) / float64(total) * 100)),
		Promoters:  pct(promoters),
		Passives:   pct(passives),
		Detractors: pct(detractors),
	}
}

func wholePercentMean(values []float64) int {
	if len(values) == 0 {
		return 0
	}
	mean, _ := stats.Mean(values)
	return int(math.Round(mean * 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
