// Package protocol holds the static content of the 28-day protocol: the
// phase schedule, the per-day task templates, and the supplement
// reference table. Everything here is pure data derivation with no I/O.
package protocol

import (
	"fmt"

	"github.com/hyperengineering/regimen/internal/types"
)

// Phase labels, derived purely from the day number range.
const (
	PhasePriming = "Priming"
	PhaseKillOne = "Kill - Phase 1"
	PhaseKillTwo = "Kill - Phase 2"
	PhaseRebuild = "Rebuild"
)

// Phase returns the phase label for a protocol day.
func Phase(day int) string {
	switch {
	case day <= 7:
		return PhasePriming
	case day <= 14:
		return PhaseKillOne
	case day <= 21:
		return PhaseKillTwo
	default:
		return PhaseRebuild
	}
}

// Week returns the 1-based week number for a protocol day.
func Week(day int) int {
	return (day + 6) / 7
}

// Title returns the display title for a protocol day.
func Title(day int) string {
	return fmt.Sprintf("Day %d — Week %d: %s", day, Week(day), Phase(day))
}

// TasksForDay returns the task template for a protocol day. Days 8+ add
// the binder dose; the rebuild week (22+) adds probiotic and glutamine.
func TasksForDay(day int) []types.Task {
	tasks := []types.Task{
		{ID: fmt.Sprintf("%d-morning", day), Time: "Morning", Description: "1–20 drops Black Walnut (empty stomach)"},
		{ID: fmt.Sprintf("%d-midday", day), Time: "Midday", Description: "500–1000 mg Wormwood (pre‑lunch)"},
		{ID: fmt.Sprintf("%d-evening", day), Time: "Evening", Description: "500 mg Clove (after dinner)"},
		{ID: fmt.Sprintf("%d-fasted", day), Time: "AM (fasted)", Description: "120,000 SU Serrapeptase"},
		{ID: fmt.Sprintf("%d-dinner", day), Time: "Dinner", Description: "25 mg Zinc"},
		{ID: fmt.Sprintf("%d-daily", day), Time: "Daily", Description: "1g Vitamin C (twice daily)"},
	}

	if day >= 8 {
		tasks = append(tasks, types.Task{
			ID:          fmt.Sprintf("%d-bedtime", day),
			Time:        "Bedtime",
			Description: "1 tbsp Diatomaceous Earth OR Bentonite Clay",
		})
	}

	if day >= 22 {
		tasks = append(tasks,
			types.Task{
				ID:          fmt.Sprintf("%d-rebuild-am", day),
				Time:        "AM",
				Description: "50B CFU Probiotic",
			},
			types.Task{
				ID:          fmt.Sprintf("%d-rebuild-pm", day),
				Time:        "PM",
				Description: "5g L-Glutamine",
			},
		)
	}

	return tasks
}

// NewDayEntry returns the template entry for a protocol day with no
// tasks completed.
func NewDayEntry(day int) types.DayEntry {
	return types.DayEntry{
		Day:   day,
		Week:  Week(day),
		Title: Title(day),
		Phase: Phase(day),
		Tasks: TasksForDay(day),
	}
}

// Calendar returns the full 28-day template calendar.
func Calendar() []types.DayEntry {
	entries := make([]types.DayEntry, 0, types.ProtocolDays)
	for day := 1; day <= types.ProtocolDays; day++ {
		entries = append(entries, NewDayEntry(day))
	}
	return entries
}

// DayCompleted reports whether every task of a day is completed. A day
// with no tasks is never considered complete.
func DayCompleted(tasks []types.Task) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, t := range tasks {
		if !t.Completed {
			return false
		}
	}
	return true
}
