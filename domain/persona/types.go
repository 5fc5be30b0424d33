package persona

import (
	"panelsim/domain/core"
)

// Persona is a synthetic respondent profile. Generated once per study run
// and immutable afterward; always scoped to a single study's panel.
type Persona struct {
	ID    core.PersonaID `json:"id"`
	Label string         `json:"label"`

	// Demographic attributes
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	Location    string `json:"location"`
	IncomeLevel string `json:"income_level"`
	Education   string `json:"education"`

	// Contextual attributes
	IndustryExperience string   `json:"industry_experience,omitempty"`
	BrandAffinities    []string `json:"brand_affinities,omitempty"`
	ProductExperience  []string `json:"product_experience,omitempty"`
}

// Distribution maps category names to sampling weights.
// Weights summing below 1.0 have the remainder spread uniformly across the
// declared categories; weights summing above 1.0 are normalized.
type Distribution map[string]float64

// AgeRange bounds sampled ages inclusively
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// PanelConfig specifies how a respondent panel is generated
type PanelConfig struct {
	Count  int    `json:"count"`
	Preset string `json:"preset,omitempty"`

	// Demographic overrides (explicit values win over preset defaults)
	AgeRange     *AgeRange    `json:"age_range,omitempty"`
	GenderDist   Distribution `json:"gender_distribution,omitempty"`
	Locations    []string     `json:"locations,omitempty"`
	IncomeDist   Distribution `json:"income_distribution,omitempty"`
	EducationDist Distribution `json:"education_distribution,omitempty"`

	// Contextual overrides
	Industry          string   `json:"industry,omitempty"`
	ProductExperience []string `json:"product_experience,omitempty"`
	BrandAffinities   []string `json:"brand_affinities,omitempty"`
}

// PanelCountMin and PanelCountMax bound the allowed panel size
const (
	PanelCountMin = 1
	PanelCountMax = 1000
)

// ValidateCount checks the panel size bounds. Enforced at the service
// boundary before any generation work happens.
func ValidateCount(count int) error {
	if count < PanelCountMin || count > PanelCountMax {
		return core.NewValidationError("count", "panel count must be between 1 and 1000")
	}
	return nil
}
