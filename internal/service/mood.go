package service

import (
	"math"
	"time"

	"github.com/benwu408/ai-journal/internal/model"
)

// AverageMood is the arithmetic mean over entries with a recorded, finite,
// positive mood. Empty or degenerate input yields the neutral default; a
// non-finite value never escapes.
func AverageMood(entries []model.Entry) float64 {
	var sum float64
	count := 0
	for _, entry := range entries {
		if !entry.HasValidMood() {
			continue
		}
		sum += entry.MoodValue
		count++
	}
	if count == 0 {
		return model.NeutralMood
	}
	avg := sum / float64(count)
	if math.IsNaN(avg) || math.IsInf(avg, 0) {
		return model.NeutralMood
	}
	return avg
}

// MoodVariability is the population standard deviation of valid mood values
// recorded within [now-days, now]. Fewer than 2 values yields 0.
func MoodVariability(entries []model.Entry, days int, now time.Time) float64 {
	start := now.AddDate(0, 0, -days)
	var values []float64
	for _, entry := range entries {
		if entry.Date.Before(start) || entry.Date.After(now) {
			continue
		}
		if !entry.HasValidMood() {
			continue
		}
		values = append(values, entry.MoodValue)
	}
	if len(values) < 2 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var squared float64
	for _, v := range values {
		d := v - mean
		squared += d * d
	}
	variability := math.Sqrt(squared / float64(len(values)))
	if math.IsNaN(variability) || math.IsInf(variability, 0) {
		return 0
	}
	return variability
}

// ClassifyTrend compares the rolling 7-day mood window against the 7 days
// before it. Variability is checked before the directional diff on purpose:
// a volatile-but-flat week reads as mixed, not neutral.
func ClassifyTrend(past7, prev7 []model.Entry, now time.Time) model.MoodTrend {
	diff := AverageMood(past7) - AverageMood(prev7)
	variability := MoodVariability(past7, 7, now)

	switch {
	case variability > 1.5:
		return model.TrendMixed
	case diff >= 0.5:
		return model.TrendPositive
	case diff <= -0.5:
		return model.TrendChallenging
	default:
		return model.TrendNeutral
	}
}

// MoodTrend classifies the current trend from the store.
func (s *Service) MoodTrend() (model.MoodTrend, error) {
	now := s.now()
	today := dayStart(now)

	past7, err := s.store.ListEntriesBetween(today.AddDate(0, 0, -7), today.AddDate(0, 0, 1))
	if err != nil {
		return model.TrendNeutral, err
	}
	prev7, err := s.store.ListEntriesBetween(today.AddDate(0, 0, -14), today.AddDate(0, 0, -7))
	if err != nil {
		return model.TrendNeutral, err
	}
	return ClassifyTrend(past7, prev7, now), nil
}
