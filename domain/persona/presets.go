package persona

import "sort"

// preset bundles default panel attributes for a named population
type preset struct {
	AgeRange      AgeRange
	GenderDist    Distribution
	Locations     []string
	IncomeDist    Distribution
	EducationDist Distribution
	Industry      string
}

// Built-in presets. An explicit config override always wins over a preset
// default for the same field; unspecified fields fall back to
// general_population.
var presets = map[string]preset{
	"general_population": {
		AgeRange:   AgeRange{Min: 18, Max: 75},
		GenderDist: Distribution{"male": 0.49, "female": 0.49, "non_binary": 0.02},
		Locations:  []string{"urban", "suburban", "rural"},
		IncomeDist: Distribution{
			"low": 0.3, "middle": 0.5, "high": 0.2,
		},
		EducationDist: Distribution{
			"high_school": 0.35, "bachelors": 0.4, "masters": 0.2, "doctorate": 0.05,
		},
	},
	"millennials": {
		AgeRange:   AgeRange{Min: 28, Max: 43},
		GenderDist: Distribution{"male": 0.48, "female": 0.48, "non_binary": 0.04},
		Locations:  []string{"urban", "suburban"},
		IncomeDist: Distribution{
			"low": 0.25, "middle": 0.55, "high": 0.2,
		},
		EducationDist: Distribution{
			"high_school": 0.2, "bachelors": 0.5, "masters": 0.25, "doctorate": 0.05,
		},
	},
	"gen_z": {
		AgeRange:   AgeRange{Min: 18, Max: 27},
		GenderDist: Distribution{"male": 0.47, "female": 0.47, "non_binary": 0.06},
		Locations:  []string{"urban", "suburban"},
		IncomeDist: Distribution{
			"low": 0.5, "middle": 0.4, "high": 0.1,
		},
		EducationDist: Distribution{
			"high_school": 0.45, "bachelors": 0.45, "masters": 0.1,
		},
	},
	"b2b_professionals": {
		AgeRange:   AgeRange{Min: 25, Max: 60},
		GenderDist: Distribution{"male": 0.52, "female": 0.45, "non_binary": 0.03},
		Locations:  []string{"urban", "suburban"},
		IncomeDist: Distribution{
			"middle": 0.45, "high": 0.55,
		},
		EducationDist: Distribution{
			"bachelors": 0.45, "masters": 0.4, "doctorate": 0.15,
		},
		Industry: "technology",
	},
}

// DefaultPreset is used when a config names no preset
const DefaultPreset = "general_population"

// KnownPreset reports whether name is a built-in preset
func KnownPreset(name string) bool {
	_, ok := presets[name]
	return ok
}

// PresetNames lists the built-in preset names
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
