package knowledge

import "testing"

func TestFallbackRecommendationsAlwaysThree(t *testing.T) {
	low := FallbackRecommendations(1.2)
	if len(low) != 3 {
		t.Fatalf("expected 3 low-mood recommendations, got %d", len(low))
	}
	stable := FallbackRecommendations(2.8)
	if len(stable) != 3 {
		t.Fatalf("expected 3 stable recommendations, got %d", len(stable))
	}
	if low[0].Title == stable[0].Title {
		t.Fatalf("expected low-mood and stable sets to differ, both start with %q", low[0].Title)
	}
	for _, rec := range append(low, stable...) {
		if rec.Title == "" || rec.Icon == "" || rec.Category == "" || rec.Priority == "" {
			t.Fatalf("expected fully populated recommendation, got %+v", rec)
		}
	}
}

func TestPadRecommendationPopulated(t *testing.T) {
	pad := PadRecommendation()
	if pad.Title == "" || pad.Description == "" || pad.ActionText == "" {
		t.Fatalf("expected populated pad record, got %+v", pad)
	}
}
