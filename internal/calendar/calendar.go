// Package calendar reconstructs activity calendars from per-day samples,
// independent of how the samples were obtained.
package calendar

import (
	"sort"
	"time"

	"github.com/unigit/unigit/app"
)

// WeekStart returns the Monday-anchored start of t's week at UTC midnight.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Weeks sorts days ascending by date and partitions them into contiguous
// runs sharing the same Monday-anchored week. Runs and days within a run
// keep chronological order; every input day lands in exactly one bucket.
func Weeks(days []app.ContributionData) [][]app.ContributionData {
	sorted := make([]app.ContributionData, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var weeks [][]app.ContributionData
	var current time.Time
	for _, d := range sorted {
		start := WeekStart(d.Date)
		if len(weeks) == 0 || !start.Equal(current) {
			weeks = append(weeks, []app.ContributionData{d})
			current = start
			continue
		}
		weeks[len(weeks)-1] = append(weeks[len(weeks)-1], d)
	}

	return weeks
}

// Total sums the daily counts.
func Total(days []app.ContributionData) uint32 {
	var total uint32
	for _, d := range days {
		total += d.Count
	}
	return total
}
