package report

import (
	"strings"
	"testing"

	"panelsim/domain/results"
	"panelsim/domain/survey"
)

func sampleStats() []results.QuestionStats {
	return []results.QuestionStats{
		{
			QuestionID:     "q1",
			QuestionText:   "How satisfied are you?",
			Type:           survey.TypeLikert,
			TotalResponses: 20,
			ValidRatings:   18,
			Mean:           4.11,
			Median:         4,
			StdDev:         0.74,
			Distribution:   []int{0, 6, 11, 50, 33},
			AvgConfidence:  82,
		},
		{
			QuestionID:     "q2",
			QuestionText:   "Would you recommend us?",
			Type:           survey.TypeNPS,
			TotalResponses: 20,
			ValidRatings:   20,
			Mean:           8.2,
			Median:         8,
			NPS:            &results.NPSBreakdown{Score: 35, Promoters: 50, Passives: 35, Detractors: 15},
			AvgConfidence:  77,
		},
		{
			QuestionID:     "q3",
			QuestionText:   "Why that rating?",
			Type:           survey.TypeOpenEnded,
			TotalResponses: 20,
			Samples: []results.OpenEndedSample{
				{Explanation: "It saves me time every week.", Confidence: 0.8},
			},
			AvgConfidence: 71,
		},
	}
}

func TestMarkdown(t *testing.T) {
	md := NewGenerator().Markdown("Pricing study", sampleStats())

	for _, want := range []string{
		"# Study Report: Pricing study",
		"## How satisfied are you?",
		"Responses: 20 (18 with valid ratings)",
		"Mean 4.11, median 4.00, std dev 0.74",
		"0% / 6% / 11% / 50% / 33%",
		"NPS 35 (promoters 50%, passives 35%, detractors 15%)",
		"> It saves me time every week.",
		"Average confidence: 82%",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Report missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdown_OpenEndedSkipsNumericLines(t *testing.T) {
	md := NewGenerator().Markdown("Study", sampleStats()[2:])
	if strings.Contains(md, "Mean") || strings.Contains(md, "Distribution") {
		t.Errorf("Open-ended section should carry no numeric stats:\n%s", md)
	}
}

func TestComparisonMarkdown(t *testing.T) {
	cmp := &results.Comparison{
		CommonQuestions: []string{"How satisfied are you?"},
		Trends: []results.QuestionTrend{
			{
				QuestionText:  "How satisfied are you?",
				Type:          survey.TypeLikert,
				ChangePercent: 12,
				Direction:     results.TrendImproving,
			},
		},
	}

	md := NewGenerator().ComparisonMarkdown(cmp)
	if !strings.Contains(md, "| How satisfied are you? | +12% | improving |") {
		t.Errorf("Trend row missing:\n%s", md)
	}
}

func TestComparisonMarkdown_NoCommonQuestions(t *testing.T) {
	md := NewGenerator().ComparisonMarkdown(&results.Comparison{})
	if !strings.Contains(md, "No common questions") {
		t.Errorf("Empty comparison should say so:\n%s", md)
	}
}

func TestRenderHTML(t *testing.T) {
	html := string(NewGenerator().RenderHTML("# Title\n\nSome *emphasis* here."))
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<em>emphasis</em>") {
		t.Errorf("Unexpected HTML output:\n%s", html)
	}
}
