package dashboard

import (
	"math"
	"time"

	implementations "clientdesk/internal/implementations/domain"
)

const (
	completionDays = 7
	trendMonths    = 6
)

// RawCounts carries the scalar counts fetched ahead of aggregation.
// Every count is already scoped to the requesting user.
type RawCounts struct {
	TasksDueToday          int
	TasksCompletedToday    int
	TasksCompletedThisWeek int
	NewProspectsThisMonth  int
	ConvertedProspects     int
}

// Stats is the card row of the dashboard.
type Stats struct {
	TasksDueToday          int
	TasksCompletedToday    int
	TasksCompletedThisWeek int
	NewProspectsThisMonth  int
	ConvertedProspects     int
	ConversionRatePct      int
	MonthlyRecurringTotal  float64
	DeliveriesPending      int
}

// CompletionPoint is one day of the 7-day task completion chart.
type CompletionPoint struct {
	Label string
	Date  time.Time
	Count int
}

// RevenuePoint is one month of the 6-month recurrence trend.
type RevenuePoint struct {
	Label string
	Month time.Time
	Total float64
}

// Snapshot is a fully derived dashboard state. It is rebuilt from
// scratch on every request and never persisted.
type Snapshot struct {
	Stats                Stats
	TaskCompletionSeries []CompletionPoint
	RevenueTrendSeries   []RevenuePoint
	GeneratedAt          time.Time
}

// ComputeSnapshot aggregates already-fetched rows into a snapshot. It
// is a pure function of its inputs: no store access, no mutation of the
// implementation rows. now supplies the reference date; its calendar
// day anchors the 7-day window and its month anchors the 6-month trend.
func ComputeSnapshot(impls []implementations.Implementation, completedTaskDates []time.Time, counts RawCounts, now time.Time) Snapshot {
	today := implementations.StartOfDay(now)

	stats := Stats{
		TasksDueToday:          counts.TasksDueToday,
		TasksCompletedToday:    counts.TasksCompletedToday,
		TasksCompletedThisWeek: counts.TasksCompletedThisWeek,
		NewProspectsThisMonth:  counts.NewProspectsThisMonth,
		ConvertedProspects:     counts.ConvertedProspects,
		ConversionRatePct:      conversionRate(counts.ConvertedProspects, counts.NewProspectsThisMonth),
		MonthlyRecurringTotal:  implementations.MonthlyRecurringTotal(impls, today),
		DeliveriesPending:      implementations.CountPendingDelivery(impls),
	}

	return Snapshot{
		Stats:                stats,
		TaskCompletionSeries: completionSeries(completedTaskDates, today),
		RevenueTrendSeries:   revenueTrend(impls, today),
		GeneratedAt:          now.UTC(),
	}
}

// completionSeries builds the 7 calendar days ending at today, oldest
// first, zero-filled for days without completions.
func completionSeries(dates []time.Time, today time.Time) []CompletionPoint {
	perDay := make(map[time.Time]int, len(dates))
	for _, date := range dates {
		perDay[implementations.StartOfDay(date)]++
	}

	series := make([]CompletionPoint, 0, completionDays)
	for offset := completionDays - 1; offset >= 0; offset-- {
		day := today.AddDate(0, 0, -offset)
		series = append(series, CompletionPoint{
			Label: day.Format("Mon"),
			Date:  day,
			Count: perDay[day],
		})
	}
	return series
}

// revenueTrend re-runs the month eligibility test against every
// implementation for each of the 6 months ending at today's month.
// Linear re-scan per month is fine at the expected tens-to-hundreds of
// rows.
func revenueTrend(impls []implementations.Implementation, today time.Time) []RevenuePoint {
	series := make([]RevenuePoint, 0, trendMonths)
	anchor := implementations.MonthStart(today)
	for offset := trendMonths - 1; offset >= 0; offset-- {
		month := anchor.AddDate(0, -offset, 0)
		series = append(series, RevenuePoint{
			Label: month.Format("Jan"),
			Month: month,
			Total: implementations.MonthlyRecurringTotal(impls, month),
		})
	}
	return series
}

// conversionRate is converted over total as a rounded percentage. A
// zero total yields 0 rather than a division error.
func conversionRate(converted, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(converted) / float64(total) * 100))
}

// WeekStart returns the Monday beginning the week that contains day.
func WeekStart(day time.Time) time.Time {
	day = implementations.StartOfDay(day)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, 1-weekday)
}
