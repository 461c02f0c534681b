package knowledge

import (
	_ "embed"
	"encoding/json"

	"github.com/benwu408/ai-journal/internal/model"
)

//go:embed fallback_recommendations.json
var fallbackRecommendationsRawJSON []byte

type fallbackCatalog struct {
	LowMood []model.Recommendation `json:"low_mood"`
	Stable  []model.Recommendation `json:"stable"`
	Pad     model.Recommendation   `json:"pad"`
}

func loadFallbackCatalog() fallbackCatalog {
	var catalog fallbackCatalog
	if err := json.Unmarshal(fallbackRecommendationsRawJSON, &catalog); err != nil {
		// The catalog is compiled in; a parse failure is a build defect, but
		// the surface still has to produce something.
		return fallbackCatalog{Pad: model.Recommendation{
			Icon:        "✨",
			Title:       "Take a mindful moment",
			Description: "Pause for three slow breaths and notice how you feel right now.",
			ActionText:  "Breathe for one minute",
			Category:    model.CategoryMindfulness,
			Priority:    model.PriorityLow,
		}}
	}
	return catalog
}

var catalog = loadFallbackCatalog()

// FallbackRecommendations returns the hardcoded 3-record set for the given
// 7-day average mood band.
func FallbackRecommendations(averageMood float64) []model.Recommendation {
	var set []model.Recommendation
	if averageMood < 2.0 {
		set = catalog.LowMood
	} else {
		set = catalog.Stable
	}
	result := make([]model.Recommendation, 0, 3)
	result = append(result, set...)
	for len(result) < 3 {
		result = append(result, catalog.Pad)
	}
	return result[:3]
}

// PadRecommendation is appended to AI recommendation lists shorter than 3.
func PadRecommendation() model.Recommendation {
	return catalog.Pad
}
