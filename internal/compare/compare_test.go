package compare

import (
	"testing"
	"time"

	"panelsim/domain/core"
	"panelsim/domain/results"
	"panelsim/domain/survey"
)

func ts(daysAgo int) *core.Timestamp {
	t := core.NewTimestamp(time.Date(2026, 1, 30, 12, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo))
	return &t
}

func snapshot(name string, completedAt *core.Timestamp, questionText string, qt survey.QuestionType, ratings []int) results.StudySnapshot {
	q := survey.Question{ID: core.QuestionID(core.NewID()), Type: qt, Text: questionText}
	snap := results.StudySnapshot{
		ID:          core.StudyID(core.NewID()),
		Name:        name,
		CompletedAt: completedAt,
		Questions:   []survey.Question{q},
	}
	for _, r := range ratings {
		rating := r
		snap.Responses = append(snap.Responses, results.Response{
			ID:         core.ResponseID(core.NewID()),
			QuestionID: q.ID,
			Rating:     &rating,
			Confidence: 0.8,
		})
	}
	return snap
}

func TestCompareStudies_ImprovingTrend(t *testing.T) {
	older := snapshot("Q1 wave", ts(60), "How satisfied are you?", survey.TypeLikert, []int{3, 3, 3})
	newer := snapshot("Q2 wave", ts(10), "How satisfied are you?", survey.TypeLikert, []int{4, 5, 4, 5})

	cmp, err := NewComparator(DefaultStableBand, 10).CompareStudies([]results.StudySnapshot{newer, older})
	if err != nil {
		t.Fatal(err)
	}
	if len(cmp.Trends) != 1 {
		t.Fatalf("Expected 1 trend, got %d", len(cmp.Trends))
	}

	trend := cmp.Trends[0]
	if len(trend.Points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(trend.Points))
	}
	if trend.Points[0].StudyName != "Q1 wave" {
		t.Errorf("Points should be ordered oldest first, got %q", trend.Points[0].StudyName)
	}
	// 3.0 -> 4.5 is +50%
	if trend.ChangePercent != 50 {
		t.Errorf("ChangePercent = %d, want 50", trend.ChangePercent)
	}
	if trend.Direction != results.TrendImproving {
		t.Errorf("Direction = %s, want improving", trend.Direction)
	}
}

func TestCompareStudies_MatchesNormalizedText(t *testing.T) {
	older := snapshot("A", ts(30), "  How SATISFIED are you?  ", survey.TypeLikert, []int{3, 3})
	newer := snapshot("B", ts(5), "how satisfied are you?", survey.TypeLikert, []int{3, 3})

	cmp, err := NewComparator(DefaultStableBand, 10).CompareStudies([]results.StudySnapshot{older, newer})
	if err != nil {
		t.Fatal(err)
	}
	if len(cmp.CommonQuestions) != 1 {
		t.Fatalf("Case and whitespace variants should match, got %d common questions", len(cmp.CommonQuestions))
	}
	if cmp.Trends[0].Direction != results.TrendStable {
		t.Errorf("Identical means should be stable, got %s", cmp.Trends[0].Direction)
	}
}

func TestCompareStudies_QuestionInOneStudyOnly(t *testing.T) {
	older := snapshot("A", ts(30), "How satisfied are you?", survey.TypeLikert, []int{3})
	newer := snapshot("B", ts(5), "Would you recommend us?", survey.TypeNPS, []int{9})

	cmp, err := NewComparator(DefaultStableBand, 10).CompareStudies([]results.StudySnapshot{older, newer})
	if err != nil {
		t.Fatal(err)
	}
	if len(cmp.CommonQuestions) != 0 || len(cmp.Trends) != 0 {
		t.Errorf("Questions without a cross-study match should produce no trends: %+v", cmp)
	}
}

func TestCompareStudies_TooFewStudies(t *testing.T) {
	only := snapshot("A", ts(1), "How satisfied are you?", survey.TypeLikert, []int{3})

	_, err := NewComparator(DefaultStableBand, 10).CompareStudies([]results.StudySnapshot{only})
	if err != core.ErrTooFewStudies {
		t.Errorf("Expected ErrTooFewStudies, got %v", err)
	}
}

func TestCompareStudies_NPSUsesScore(t *testing.T) {
	older := snapshot("A", ts(30), "Would you recommend us?", survey.TypeNPS, []int{9, 9, 1, 1}) // score 0
	newer := snapshot("B", ts(5), "Would you recommend us?", survey.TypeNPS, []int{9, 9, 9, 1})  // score 50

	cmp, err := NewComparator(DefaultStableBand, 10).CompareStudies([]results.StudySnapshot{older, newer})
	if err != nil {
		t.Fatal(err)
	}
	trend := cmp.Trends[0]
	if trend.Points[0].Value != 0 || trend.Points[1].Value != 50 {
		t.Errorf("NPS trend should track the score, got %+v", trend.Points)
	}
	// Zero baseline with a positive endpoint maps to +100
	if trend.ChangePercent != 100 {
		t.Errorf("ChangePercent = %d, want 100", trend.ChangePercent)
	}
	if trend.Direction != results.TrendImproving {
		t.Errorf("Direction = %s, want improving", trend.Direction)
	}
}

func TestCompareStudies_OmitsStudiesWithoutValidRatings(t *testing.T) {
	older := snapshot("A", ts(60), "How satisfied are you?", survey.TypeLikert, []int{4, 4})
	middle := snapshot("B", ts(30), "How satisfied are you?", survey.TypeLikert, nil) // every pair degraded
	newer := snapshot("C", ts(5), "How satisfied are you?", survey.TypeLikert, []int{5, 5})

	cmp, err := NewComparator(DefaultStableBand, 10).CompareStudies([]results.StudySnapshot{older, middle, newer})
	if err != nil {
		t.Fatal(err)
	}
	trend := cmp.Trends[0]
	if len(trend.Points) != 2 {
		t.Fatalf("Study with no valid ratings should be omitted, got %d points", len(trend.Points))
	}
	if trend.Points[0].StudyName != "A" || trend.Points[1].StudyName != "C" {
		t.Errorf("Unexpected point order: %+v", trend.Points)
	}
}

func TestCompareStudies_UndatedStudiesSortLast(t *testing.T) {
	dated := snapshot("dated", ts(10), "How satisfied are you?", survey.TypeLikert, []int{3, 3})
	undated := snapshot("undated", nil, "How satisfied are you?", survey.TypeLikert, []int{5, 5})

	cmp, err := NewComparator(DefaultStableBand, 10).CompareStudies([]results.StudySnapshot{undated, dated})
	if err != nil {
		t.Fatal(err)
	}
	trend := cmp.Trends[0]
	if trend.Points[0].StudyName != "dated" || trend.Points[1].StudyName != "undated" {
		t.Errorf("Undated study should sort last: %+v", trend.Points)
	}
}

func TestCompareStudies_StableBandConfigurable(t *testing.T) {
	older := snapshot("A", ts(30), "How satisfied are you?", survey.TypeLikert, []int{4, 4})
	newer := snapshot("B", ts(5), "How satisfied are you?", survey.TypeLikert, []int{4, 5, 4, 5}) // 4.0 -> 4.5, +13%

	wide, err := NewComparator(20, 10).CompareStudies([]results.StudySnapshot{older, newer})
	if err != nil {
		t.Fatal(err)
	}
	if wide.Trends[0].Direction != results.TrendStable {
		t.Errorf("Within a 20-point band +13%% should be stable, got %s", wide.Trends[0].Direction)
	}

	narrow, err := NewComparator(DefaultStableBand, 10).CompareStudies([]results.StudySnapshot{older, newer})
	if err != nil {
		t.Fatal(err)
	}
	if narrow.Trends[0].Direction != results.TrendImproving {
		t.Errorf("With the default band +13%% should be improving, got %s", narrow.Trends[0].Direction)
	}
}
