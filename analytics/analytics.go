// Package analytics aggregates a user's task records into the dashboard
// stats, the weekly productivity heat-map, and the completion trend. All
// functions are single-pass over in-memory slices and never touch storage.
package analytics

import (
	"math"
	"time"

	"github.com/taskmanager-ai/backend/models"
)

// Heat-map dimensions: four time slots (06-09, 09-12, 12-15, 15-18 local
// hour) across seven weekdays, Monday first.
const (
	HeatmapSlots    = 4
	HeatmapWeekdays = 7
)

// Stats is the dashboard overview block.
type Stats struct {
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	InProgress     int     `json:"inProgress"`
	Productivity   float64 `json:"productivity"`
}

// Summary is the full analytics aggregation for one user's tasks.
type Summary struct {
	TotalTasks         int                              `json:"totalTasks"`
	CompletedTasks     int                              `json:"completedTasks"`
	CompletionRate     float64                          `json:"completionRate"`
	PriorityCounts     map[string]int                   `json:"priorityCounts"`
	CategoryCounts     map[string]int                   `json:"categoryCounts"`
	WeeklyProductivity [HeatmapSlots][HeatmapWeekdays]int `json:"weeklyProductivity"`
	AvgDuration        float64                          `json:"avgDuration"`
	Trend              [7]int                           `json:"trend"`
}

// ParseDeadline parses a task deadline or event boundary string. Records
// written by the current API carry minute precision; imported and legacy
// records may carry seconds or a bare date, so all three layouts are tried.
func ParseDeadline(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range []string{
		models.DeadlineLayoutSeconds,
		models.DeadlineLayout,
		models.DateLayout,
	} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// CompletionRate returns the completion percentage rounded to 2 decimals.
// A zero total yields 0, never an error.
func CompletionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(completed) / float64(total) * 100)
}

// Overview computes the dashboard stat block from a user's tasks.
func Overview(tasks []models.Task) Stats {
	stats := Stats{TotalTasks: len(tasks)}
	for _, task := range tasks {
		switch task.Status {
		case models.StatusCompleted:
			stats.CompletedTasks++
		case models.StatusInProgress:
			stats.InProgress++
		}
	}
	stats.Productivity = CompletionRate(stats.CompletedTasks, stats.TotalTasks)
	return stats
}

// SplitByDay partitions tasks into those due on the given day and those due
// strictly after it. Tasks with an unparseable deadline are skipped rather
// than failing the whole listing.
func SplitByDay(tasks []models.Task, today time.Time) (todayTasks, upcoming []models.Task) {
	todayTasks = []models.Task{}
	upcoming = []models.Task{}
	y, m, d := today.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, today.Location())

	for _, task := range tasks {
		due, err := ParseDeadline(task.Deadline)
		if err != nil {
			continue
		}
		dy, dm, dd := due.Date()
		dueDay := time.Date(dy, dm, dd, 0, 0, 0, 0, today.Location())

		switch {
		case dueDay.Equal(dayStart):
			todayTasks = append(todayTasks, task)
		case dueDay.After(dayStart):
			upcoming = append(upcoming, task)
		}
	}
	return todayTasks, upcoming
}

// HeatmapSlot maps an hour of day to its heat-map slot index, or -1 when
// the hour falls outside all slots.
func HeatmapSlot(hour int) int {
	switch {
	case hour >= 6 && hour < 9:
		return 0
	case hour >= 9 && hour < 12:
		return 1
	case hour >= 12 && hour < 15:
		return 2
	case hour >= 15 && hour < 18:
		return 3
	default:
		return -1
	}
}

// WeekdayIndex maps a time to its heat-map weekday index, Monday = 0
// through Sunday = 6.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeeklyProductivity buckets tasks into the 4x7 heat-map by the time slot
// and weekday of their deadline. Unparseable deadlines skip the record.
func WeeklyProductivity(tasks []models.Task) [HeatmapSlots][HeatmapWeekdays]int {
	var heatmap [HeatmapSlots][HeatmapWeekdays]int
	for _, task := range tasks {
		due, err := ParseDeadline(task.Deadline)
		if err != nil {
			continue
		}
		slot := HeatmapSlot(due.Hour())
		if slot < 0 {
			continue
		}
		heatmap[slot][WeekdayIndex(due)]++
	}
	return heatmap
}

// AvgCompletionDays returns the mean number of whole days between creation
// and completion across completed tasks, rounded to 1 decimal. An empty
// completed set yields 0.
func AvgCompletionDays(tasks []models.Task) float64 {
	var totalDays, count int
	for _, task := range tasks {
		if task.Status != models.StatusCompleted || task.CompletedAt == nil {
			continue
		}
		totalDays += int(task.CompletedAt.Sub(task.CreatedAt).Hours() / 24)
		count++
	}
	if count == 0 {
		return 0
	}
	return round1(float64(totalDays) / float64(count))
}

// CompletionTrend buckets completed tasks by how many days ago they were
// completed, over the last seven days. Index 6 is today, index 0 six days
// ago.
func CompletionTrend(tasks []models.Task, now time.Time) [7]int {
	var trend [7]int
	for _, task := range tasks {
		if task.Status != models.StatusCompleted || task.CompletedAt == nil {
			continue
		}
		daysAgo := int(now.Sub(*task.CompletedAt).Hours() / 24)
		if daysAgo >= 0 && daysAgo < 7 {
			trend[6-daysAgo]++
		}
	}
	return trend
}

// Summarize computes the full analytics payload for a user's tasks.
func Summarize(tasks []models.Task, now time.Time) Summary {
	summary := Summary{
		TotalTasks: len(tasks),
		PriorityCounts: map[string]int{
			"Low":    0,
			"Medium": 0,
			"High":   0,
		},
		CategoryCounts: map[string]int{
			"Daily":   0,
			"Weekly":  0,
			"Monthly": 0,
			"Yearly":  0,
		},
	}

	for _, task := range tasks {
		if task.Status == models.StatusCompleted {
			summary.CompletedTasks++
		}
		if _, ok := summary.PriorityCounts[task.Priority]; ok {
			summary.PriorityCounts[task.Priority]++
		}
		if _, ok := summary.CategoryCounts[task.Category]; ok {
			summary.CategoryCounts[task.Category]++
		}
	}

	summary.CompletionRate = CompletionRate(summary.CompletedTasks, summary.TotalTasks)
	summary.WeeklyProductivity = WeeklyProductivity(tasks)
	summary.AvgDuration = AvgCompletionDays(tasks)
	summary.Trend = CompletionTrend(tasks, now)
	return summary
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
