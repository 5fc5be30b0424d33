package persona

import (
	"fmt"
	"math/rand"
	"sort"

	"panelsim/domain/core"

	"gonum.org/v1/gonum/stat/distuv"
)

// Generator produces synthetic respondent panels from a PanelConfig.
// Generation is pure computation over a seeded RNG, so identical seeds
// reproduce identical panels.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator with the given seed
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// resolved holds the effective panel attributes after merging config
// overrides, preset defaults, and built-in defaults.
type resolved struct {
	ageRange          AgeRange
	genderDist        Distribution
	locations         []string
	incomeDist        Distribution
	educationDist     Distribution
	industry          string
	productExperience []string
	brandAffinities   []string
}

// GeneratePanel produces cfg.Count personas. The caller validates count
// bounds and preset names before invoking; malformed distribution weights
// are repaired here (normalize or spread remainder) rather than rejected.
func (g *Generator) GeneratePanel(cfg PanelConfig) ([]Persona, error) {
	r, err := resolveConfig(cfg)
	if err != nil {
		return nil, err
	}

	panel := make([]Persona, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		panel[i] = Persona{
			ID:                 core.PersonaID(core.NewID()),
			Label:              fmt.Sprintf("Respondent %03d", i+1),
			Age:                g.sampleAge(r.ageRange),
			Gender:             g.sampleCategory(r.genderDist),
			Location:           g.pickOne(r.locations),
			IncomeLevel:        g.sampleCategory(r.incomeDist),
			Education:          g.sampleCategory(r.educationDist),
			IndustryExperience: r.industry,
			BrandAffinities:    g.pickSubset(r.brandAffinities),
			ProductExperience:  g.pickSubset(r.productExperience),
		}
	}
	return panel, nil
}

// resolveConfig merges overrides over preset defaults over the
// general_population baseline.
func resolveConfig(cfg PanelConfig) (resolved, error) {
	base := presets[DefaultPreset]

	name := cfg.Preset
	if name == "" {
		name = DefaultPreset
	}
	p, ok := presets[name]
	if !ok {
		return resolved{}, fmt.Errorf("%w: %s", core.ErrUnknownPreset, name)
	}

	r := resolved{
		ageRange:      p.AgeRange,
		genderDist:    p.GenderDist,
		locations:     p.Locations,
		incomeDist:    p.IncomeDist,
		educationDist: p.EducationDist,
		industry:      p.Industry,
	}

	// Fill holes in preset coverage from the baseline
	if len(r.genderDist) == 0 {
		r.genderDist = base.GenderDist
	}
	if len(r.incomeDist) == 0 {
		r.incomeDist = base.IncomeDist
	}
	if len(r.educationDist) == 0 {
		r.educationDist = base.EducationDist
	}
	if len(r.locations) == 0 {
		r.locations = base.Locations
	}

	// Explicit overrides win
	if cfg.AgeRange != nil {
		r.ageRange = *cfg.AgeRange
	}
	if len(cfg.GenderDist) > 0 {
		r.genderDist = cfg.GenderDist
	}
	if len(cfg.Locations) > 0 {
		r.locations = cfg.Locations
	}
	if len(cfg.IncomeDist) > 0 {
		r.incomeDist = cfg.IncomeDist
	}
	if len(cfg.EducationDist) > 0 {
		r.educationDist = cfg.EducationDist
	}
	if cfg.Industry != "" {
		r.industry = cfg.Industry
	}
	r.productExperience = cfg.ProductExperience
	r.brandAffinities = cfg.BrandAffinities

	if r.ageRange.Min <= 0 || r.ageRange.Max < r.ageRange.Min {
		return resolved{}, core.NewValidationError("age_range", "age range must be positive and ordered")
	}
	return r, nil
}

// sampleAge draws from a normal centered mid-range (sigma = quarter range)
// via inverse CDF, clamped to the configured bounds. Inverse-CDF sampling
// keeps the draw a single rng.Float64 call, which keeps panels reproducible
// under a fixed seed regardless of rejection behavior.
func (g *Generator) sampleAge(ar AgeRange) int {
	if ar.Min == ar.Max {
		return ar.Min
	}
	mu := float64(ar.Min+ar.Max) / 2
	sigma := float64(ar.Max-ar.Min) / 4
	dist := distuv.Normal{Mu: mu, Sigma: sigma}
	age := int(dist.Quantile(g.rng.Float64()) + 0.5)
	if age < ar.Min {
		age = ar.Min
	}
	if age > ar.Max {
		age = ar.Max
	}
	return age
}

// sampleCategory draws one category from a weighted distribution.
// Keys are iterated in sorted order so draws are deterministic for a seed.
func (g *Generator) sampleCategory(dist Distribution) string {
	if len(dist) == 0 {
		return ""
	}

	keys := make([]string, 0, len(dist))
	total := 0.0
	for k, w := range dist {
		if w < 0 {
			w = 0
		}
		keys = append(keys, k)
		total += w
	}
	sort.Strings(keys)

	// Repair malformed weights: spread any shortfall uniformly, scale down
	// any excess.
	adjust := 0.0
	scale := 1.0
	switch {
	case total < 1.0:
		adjust = (1.0 - total) / float64(len(keys))
	case total > 1.0:
		scale = 1.0 / total
	}

	roll := g.rng.Float64()
	acc := 0.0
	for _, k := range keys {
		w := dist[k]
		if w < 0 {
			w = 0
		}
		acc += w*scale + adjust
		if roll < acc {
			return k
		}
	}
	return keys[len(keys)-1]
}

func (g *Generator) pickOne(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[g.rng.Intn(len(items))]
}

// pickSubset returns a stable-order subset, keeping each item with p=0.5
func (g *Generator) pickSubset(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	var out []string
	for _, item := range items {
		if g.rng.Float64() < 0.5 {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		out = append(out, items[g.rng.Intn(len(items))])
	}
	return out
}
