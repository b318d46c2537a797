// Package stats derives reading statistics from raw history items:
// streaks, per-day and per-month aggregates, and the calendar heatmap.
// Everything here is a pure function over its inputs; "today" is always
// passed in so derivations are reproducible.
package stats

import (
	"math"
	"sort"
	"time"

	"comicshelf/internal/logger"
	"comicshelf/internal/models"
)

// dayKey is the canonical calendar-date format for bucketing
const dayKey = "2006-01-02"

// timestamp layouts accepted in ReadDate, most specific first
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dayKey,
}

// ParseDay extracts the calendar date from a history timestamp
func ParseDay(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// GroupByDay buckets history items by calendar date. Items whose
// timestamp cannot be parsed are excluded from the buckets and counted
// in skipped; every other derivation builds on this map.
func GroupByDay(items []models.ReadingHistoryItem) (byDay map[string]int, skipped int) {
	byDay = make(map[string]int)
	for _, item := range items {
		ts, ok := ParseDay(item.ReadDate)
		if !ok {
			skipped++
			continue
		}
		byDay[ts.Format(dayKey)]++
	}
	if skipped > 0 {
		logger.Get().Warn("history items with unparsable dates excluded from daily stats", map[string]interface{}{
			"skipped": skipped,
		})
	}
	return byDay, skipped
}

// HasReadToday reports whether today's date has any activity
func HasReadToday(byDay map[string]int, today time.Time) bool {
	return byDay[today.Format(dayKey)] > 0
}

// Streaks computes the current and longest run of consecutive active
// days. The current streak anchors on today when today has activity,
// otherwise on the most recent active day, and counts backward until
// the first gap. A single isolated active day yields 1 for both.
func Streaks(byDay map[string]int, today time.Time) (current, longest int) {
	if len(byDay) == 0 {
		return 0, 0
	}

	days := make([]time.Time, 0, len(byDay))
	for key := range byDay {
		ts, _ := time.Parse(dayKey, key)
		days = append(days, ts)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	anchor := days[len(days)-1]
	if HasReadToday(byDay, today) {
		anchor = truncateDay(today)
	}
	for cursor := anchor; byDay[cursor.Format(dayKey)] > 0; cursor = cursor.AddDate(0, 0, -1) {
		current++
	}

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return current, longest
}

func truncateDay(t time.Time) time.Time {
	ts, _ := time.Parse(dayKey, t.Format(dayKey))
	return ts
}

// AverageChaptersPerDay is total items over distinct active days,
// rounded to one decimal. Items without a parsable date still count
// toward the total.
func AverageChaptersPerDay(totalItems int, byDay map[string]int) float64 {
	if len(byDay) == 0 {
		return 0
	}
	return math.Round(float64(totalItems)/float64(len(byDay))*10) / 10
}

// MostActiveDay returns the date key with the highest count. Ties
// resolve to the earliest date so the result is deterministic.
func MostActiveDay(byDay map[string]int) (string, int) {
	var bestDay string
	var bestCount int
	for day, count := range byDay {
		if count > bestCount || (count == bestCount && (bestDay == "" || day < bestDay)) {
			bestDay = day
			bestCount = count
		}
	}
	return bestDay, bestCount
}

// WeekdayHistogram sums item counts into seven buckets indexed
// 0=Sunday through 6=Saturday.
func WeekdayHistogram(byDay map[string]int) [7]int {
	var buckets [7]int
	for key, count := range byDay {
		ts, _ := time.Parse(dayKey, key)
		buckets[int(ts.Weekday())] += count
	}
	return buckets
}

// DayCount is one day's activity in a time series
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// LastNDays returns per-day counts for the n days ending today,
// oldest first, with zero entries for inactive days.
func LastNDays(byDay map[string]int, n int, today time.Time) []DayCount {
	series := make([]DayCount, 0, n)
	start := truncateDay(today).AddDate(0, 0, -(n - 1))
	for i := 0; i < n; i++ {
		day := start.AddDate(0, 0, i).Format(dayKey)
		series = append(series, DayCount{Day: day, Count: byDay[day]})
	}
	return series
}

// MonthCount is one calendar month's activity
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// MonthlyTotals sums activity per calendar month for the months
// leading up to and including today's month, oldest first.
func MonthlyTotals(byDay map[string]int, months int, today time.Time) []MonthCount {
	const monthKey = "2006-01"

	totals := make(map[string]int)
	for key, count := range byDay {
		totals[key[:len(monthKey)]] += count
	}

	series := make([]MonthCount, 0, months)
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	for i := 0; i < months; i++ {
		month := first.AddDate(0, i, 0).Format(monthKey)
		series = append(series, MonthCount{Month: month, Count: totals[month]})
	}
	return series
}

// HeatmapDays is the rolling window rendered by the calendar heatmap
const HeatmapDays = 84

// HeatmapCell is one day of the heatmap with its intensity tier
type HeatmapCell struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
	Tier  int    `json:"tier"`
}

// Tier maps a daily count onto a stable intensity bucket
func Tier(count int) int {
	switch {
	case count <= 0:
		return 0
	case count <= 2:
		return 1
	case count <= 4:
		return 2
	case count <= 9:
		return 3
	default:
		return 4
	}
}

// Heatmap builds the 84-day window ending today, oldest first
func Heatmap(byDay map[string]int, today time.Time) []HeatmapCell {
	cells := make([]HeatmapCell, 0, HeatmapDays)
	for _, dc := range LastNDays(byDay, HeatmapDays, today) {
		cells = append(cells, HeatmapCell{Day: dc.Day, Count: dc.Count, Tier: Tier(dc.Count)})
	}
	return cells
}

// UniqueComics counts the distinct series appearing in the history
func UniqueComics(items []models.ReadingHistoryItem) int {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ComicID == "" {
			continue
		}
		seen[item.ComicID] = struct{}{}
	}
	return len(seen)
}

// Summary bundles every derivation for the statistics view
type Summary struct {
	TotalChapters    int           `json:"totalChapters"`
	UniqueComics     int           `json:"uniqueComics"`
	ActiveDays       int           `json:"activeDays"`
	InvalidDates     int           `json:"invalidDates"`
	HasReadToday     bool          `json:"hasReadToday"`
	CurrentStreak    int           `json:"currentStreak"`
	LongestStreak    int           `json:"longestStreak"`
	AveragePerDay    float64       `json:"averagePerDay"`
	MostActiveDay    string        `json:"mostActiveDay"`
	MostActiveCount  int           `json:"mostActiveCount"`
	WeekdayHistogram [7]int        `json:"weekdayHistogram"`
	LastWeek         []DayCount    `json:"lastWeek"`
	Monthly          []MonthCount  `json:"monthly"`
	Heatmap          []HeatmapCell `json:"heatmap"`
}

// Summarize runs every derivation over the raw history
func Summarize(items []models.ReadingHistoryItem, today time.Time) Summary {
	byDay, skipped := GroupByDay(items)
	current, longest := Streaks(byDay, today)
	mostDay, mostCount := MostActiveDay(byDay)

	return Summary{
		TotalChapters:    len(items),
		UniqueComics:     UniqueComics(items),
		ActiveDays:       len(byDay),
		InvalidDates:     skipped,
		HasReadToday:     HasReadToday(byDay, today),
		CurrentStreak:    current,
		LongestStreak:    longest,
		AveragePerDay:    AverageChaptersPerDay(len(items), byDay),
		MostActiveDay:    mostDay,
		MostActiveCount:  mostCount,
		WeekdayHistogram: WeekdayHistogram(byDay),
		LastWeek:         LastNDays(byDay, 7, today),
		Monthly:          MonthlyTotals(byDay, 6, today),
		Heatmap:          Heatmap(byDay, today),
	}
}
