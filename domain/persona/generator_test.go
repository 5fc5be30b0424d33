package persona

import (
	"math"
	"testing"
)

func TestGeneratePanel_Count(t *testing.T) {
	for _, count := range []int{1, 5, 100, 1000} {
		g := NewGenerator(42)
		panel, err := g.GeneratePanel(PanelConfig{Count: count})
		if err != nil {
			t.Fatalf("GeneratePanel(%d) returned error: %v", count, err)
		}
		if len(panel) != count {
			t.Errorf("Expected %d personas, got %d", count, len(panel))
		}
	}
}

func TestGeneratePanel_Deterministic(t *testing.T) {
	cfg := PanelConfig{Count: 50, Preset: "millennials"}

	a, err := NewGenerator(7).GeneratePanel(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewGenerator(7).GeneratePanel(cfg)
	if err != nil {
		t.Fatal(err)
	}

	for i := range a {
		if a[i].Age != b[i].Age || a[i].Gender != b[i].Gender ||
			a[i].IncomeLevel != b[i].IncomeLevel || a[i].Education != b[i].Education {
			t.Fatalf("Panels diverge at persona %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGeneratePanel_GenderDistribution(t *testing.T) {
	cfg := PanelConfig{
		Count:      1000,
		GenderDist: Distribution{"male": 0.5, "female": 0.45, "non_binary": 0.05},
	}
	panel, err := NewGenerator(99).GeneratePanel(cfg)
	if err != nil {
		t.Fatal(err)
	}

	counts := map[string]int{}
	for _, p := range panel {
		counts[p.Gender]++
	}

	// Proportions should match within sampling noise over large N
	expected := map[string]float64{"male": 0.5, "female": 0.45, "non_binary": 0.05}
	for gender, want := range expected {
		got := float64(counts[gender]) / float64(len(panel))
		if math.Abs(got-want) > 0.05 {
			t.Errorf("Gender %s proportion %.3f too far from %.3f", gender, got, want)
		}
	}
}

func TestGeneratePanel_AgeRespectsRange(t *testing.T) {
	cfg := PanelConfig{
		Count:    500,
		AgeRange: &AgeRange{Min: 25, Max: 40},
	}
	panel, err := NewGenerator(3).GeneratePanel(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range panel {
		if p.Age < 25 || p.Age > 40 {
			t.Fatalf("Age %d outside configured range [25,40]", p.Age)
		}
	}
}

func TestGeneratePanel_OverrideWinsOverPreset(t *testing.T) {
	cfg := PanelConfig{
		Count:    100,
		Preset:   "gen_z", // preset range 18-27
		AgeRange: &AgeRange{Min: 50, Max: 60},
	}
	panel, err := NewGenerator(11).GeneratePanel(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range panel {
		if p.Age < 50 || p.Age > 60 {
			t.Fatalf("Override age range lost to preset: got age %d", p.Age)
		}
	}
}

func TestGeneratePanel_UnknownPreset(t *testing.T) {
	_, err := NewGenerator(1).GeneratePanel(PanelConfig{Count: 10, Preset: "boomers"})
	if err == nil {
		t.Fatal("Expected error for unknown preset")
	}
}

func TestGeneratePanel_UnderweightDistributionRepaired(t *testing.T) {
	// Weights sum to 0.6; the 0.4 remainder spreads uniformly
	cfg := PanelConfig{
		Count:      1000,
		GenderDist: Distribution{"male": 0.3, "female": 0.3},
	}
	panel, err := NewGenerator(5).GeneratePanel(cfg)
	if err != nil {
		t.Fatal(err)
	}

	counts := map[string]int{}
	for _, p := range panel {
		counts[p.Gender]++
	}
	if counts["male"]+counts["female"] != len(panel) {
		t.Errorf("Sampled category outside declared distribution: %v", counts)
	}
	// Both end up at 0.5 after repair
	got := float64(counts["male"]) / float64(len(panel))
	if math.Abs(got-0.5) > 0.05 {
		t.Errorf("Repaired proportion %.3f too far from 0.5", got)
	}
}

func TestValidateCount_Bounds(t *testing.T) {
	for _, bad := range []int{0, -1, 1001} {
		if err := ValidateCount(bad); err == nil {
			t.Errorf("Expected error for count %d", bad)
		}
	}
	for _, ok := range []int{1, 500, 1000} {
		if err := ValidateCount(ok); err != nil {
			t.Errorf("Unexpected error for count %d: %v", ok, err)
		}
	}
}
