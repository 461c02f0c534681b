package service

import (
	"sort"
	"time"

	"github.com/benwu408/ai-journal/internal/model"
)

// CurrentStreak walks backward from today counting consecutive completed
// days. An incomplete today does not break the streak; the walk moves on to
// yesterday without counting it. Any earlier incomplete day ends the walk.
func (s *Service) CurrentStreak() (int, error) {
	today := dayStart(s.now())
	day := today
	streak := 0
	for {
		entries, err := s.store.ListEntriesBetween(day, day.AddDate(0, 0, 1))
		if err != nil {
			return 0, err
		}
		switch {
		case anyCompleted(entries):
			streak++
		case day.Equal(today):
			// Today is still in progress; grace of exactly one day.
		default:
			return streak, nil
		}
		day = day.AddDate(0, 0, -1)
	}
}

// LongestStreak scans all completed days for the longest run of consecutive
// calendar dates.
func (s *Service) LongestStreak() (int, error) {
	entries, err := s.store.ListEntries()
	if err != nil {
		return 0, err
	}

	completedDays := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsCompleted() {
			completedDays[entry.DayKey()] = true
		}
	}
	if len(completedDays) == 0 {
		return 0, nil
	}

	days := make([]time.Time, 0, len(completedDays))
	for key := range completedDays {
		day, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest := 0
	run := 0
	var prev time.Time
	for i, day := range days {
		if i > 0 && prev.AddDate(0, 0, 1).Equal(day) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = day
	}
	return longest, nil
}

// JournalingDaysThisMonth counts distinct completed calendar days within
// the current month.
func (s *Service) JournalingDaysThisMonth() (int, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	entries, err := s.store.ListEntriesBetween(monthStart, monthEnd)
	if err != nil {
		return 0, err
	}

	days := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsCompleted() {
			days[entry.DayKey()] = true
		}
	}
	return len(days), nil
}

func anyCompleted(entries []model.Entry) bool {
	for _, entry := range entries {
		if entry.IsCompleted() {
			return true
		}
	}
	return false
}
