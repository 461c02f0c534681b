package service_test

import (
	"math"
	"testing"
	"time"

	"github.com/benwu408/ai-journal/internal/model"
	"github.com/benwu408/ai-journal/internal/service"
)

// moodBase pins the mood tests to a fixed day so windows never shift
// mid-test.
var moodBase = time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)

func moodEntry(daysAgo int, mood float64) model.Entry {
	return model.Entry{Date: moodBase.AddDate(0, 0, -daysAgo), MoodValue: mood}
}

func TestAverageMoodSkipsUnsetMoods(t *testing.T) {
	t.Parallel()

	entries := []model.Entry{
		moodEntry(0, 2),
		moodEntry(1, 4),
		moodEntry(2, 0), // never recorded a mood
	}
	if got := service.AverageMood(entries); got != 3 {
		t.Fatalf("AverageMood() = %v, want 3", got)
	}
}

func TestAverageMoodEmptyIsNeutral(t *testing.T) {
	t.Parallel()

	if got := service.AverageMood(nil); got != model.NeutralMood {
		t.Fatalf("AverageMood(nil) = %v, want %v", got, model.NeutralMood)
	}
	if got := service.AverageMood([]model.Entry{moodEntry(0, math.NaN())}); got != model.NeutralMood {
		t.Fatalf("AverageMood(NaN only) = %v, want %v", got, model.NeutralMood)
	}
}

func TestMoodVariabilityIdenticalValuesIsZero(t *testing.T) {
	t.Parallel()

	now := moodBase
	entries := []model.Entry{moodEntry(0, 3), moodEntry(1, 3), moodEntry(2, 3)}
	if got := service.MoodVariability(entries, 7, now); got != 0 {
		t.Fatalf("MoodVariability() = %v, want 0", got)
	}
}

func TestMoodVariabilityNeedsTwoValues(t *testing.T) {
	t.Parallel()

	now := moodBase
	if got := service.MoodVariability([]model.Entry{moodEntry(0, 4)}, 7, now); got != 0 {
		t.Fatalf("MoodVariability(single) = %v, want 0", got)
	}
	// The second value sits outside the window, so it does not count.
	entries := []model.Entry{moodEntry(0, 4), moodEntry(10, 1)}
	if got := service.MoodVariability(entries, 7, now); got != 0 {
		t.Fatalf("MoodVariability(out of window) = %v, want 0", got)
	}
}

func TestClassifyTrendDirections(t *testing.T) {
	t.Parallel()

	now := moodBase
	flat := func(mood float64) []model.Entry {
		return []model.Entry{moodEntry(0, mood), moodEntry(1, mood), moodEntry(2, mood)}
	}

	if got := service.ClassifyTrend(flat(2.5), flat(2.0), now); got != model.TrendPositive {
		t.Fatalf("expected positive trend at +0.5, got %v", got)
	}
	if got := service.ClassifyTrend(flat(1.5), flat(3.0), now); got != model.TrendChallenging {
		t.Fatalf("expected challenging trend at -1.5, got %v", got)
	}
	if got := service.ClassifyTrend(flat(2.2), flat(2.0), now); got != model.TrendNeutral {
		t.Fatalf("expected neutral trend at +0.2, got %v", got)
	}
}

func TestClassifyTrendVolatileWeekIsMixedEvenWhenImproving(t *testing.T) {
	t.Parallel()

	now := moodBase
	past7 := []model.Entry{
		moodEntry(0, 4.0),
		moodEntry(1, 0.5),
		moodEntry(2, 4.0),
		moodEntry(3, 0.5),
	}
	prev7 := []model.Entry{moodEntry(8, 1.0), moodEntry(9, 1.0)}

	// Average jumped by more than 0.5, but the swings dominate.
	if got := service.ClassifyTrend(past7, prev7, now); got != model.TrendMixed {
		t.Fatalf("expected mixed trend for a volatile week, got %v", got)
	}
}
