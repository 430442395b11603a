// Package report builds an xlsx progress report from a user's aggregate.
package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/hyperengineering/regimen/internal/protocol"
	"github.com/hyperengineering/regimen/internal/types"
)

const (
	sheetOverview    = "Overview"
	sheetCalendar    = "Calendar"
	sheetBiofeedback = "Biofeedback"
	sheetJournal     = "Journal"
	sheetSupplements = "Supplements"
)

// BuildWorkbook renders the aggregate into a workbook with one sheet per
// record set plus the static supplement reference.
func BuildWorkbook(userID string, progress types.UserProgress) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheetOverview); err != nil {
		return nil, fmt.Errorf("rename overview sheet: %w", err)
	}
	if err := writeOverview(f, userID, progress); err != nil {
		return nil, err
	}
	if err := writeCalendar(f, progress); err != nil {
		return nil, err
	}
	if err := writeBiofeedback(f, progress); err != nil {
		return nil, err
	}
	if err := writeJournal(f, progress); err != nil {
		return nil, err
	}
	if err := writeSupplements(f); err != nil {
		return nil, err
	}

	return f, nil
}

// WriteReport builds the workbook and saves it to path.
func WriteReport(path, userID string, progress types.UserProgress) error {
	f, err := BuildWorkbook(userID, progress)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func writeOverview(f *excelize.File, userID string, progress types.UserProgress) error {
	rows := [][2]any{
		{"User", userID},
		{"Start date", progress.StartDate},
		{"Current day", progress.CurrentDay},
		{"Current phase", protocol.Phase(progress.CurrentDay)},
		{"Days completed", len(progress.CompletedDays)},
		{"Journal entries", len(progress.JournalEntries)},
		{"Biofeedback entries", len(progress.BiofeedbackEntries)},
	}

	for i, row := range rows {
		if err := setRow(f, sheetOverview, i+1, row[0], row[1]); err != nil {
			return err
		}
	}
	return nil
}

func writeCalendar(f *excelize.File, progress types.UserProgress) error {
	if _, err := f.NewSheet(sheetCalendar); err != nil {
		return fmt.Errorf("create calendar sheet: %w", err)
	}
	if err := setRow(f, sheetCalendar, 1, "Day", "Week", "Phase", "Tasks done", "Completed", "Die-off"); err != nil {
		return err
	}

	row := 2
	for _, day := range sortedDayKeys(progress.DayEntries) {
		entry := progress.DayEntries[day]
		done := 0
		for _, task := range entry.Tasks {
			if task.Completed {
				done++
			}
		}
		score := any("")
		if entry.DieOffScore != nil {
			score = *entry.DieOffScore
		}
		if err := setRow(f, sheetCalendar, row,
			entry.Day, entry.Week, entry.Phase,
			fmt.Sprintf("%d/%d", done, len(entry.Tasks)), entry.Completed, score); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeBiofeedback(f *excelize.File, progress types.UserProgress) error {
	if _, err := f.NewSheet(sheetBiofeedback); err != nil {
		return fmt.Errorf("create biofeedback sheet: %w", err)
	}
	if err := setRow(f, sheetBiofeedback, 1,
		"Date", "HRV", "Resting HR", "Temp Δ", "VO2 max", "Active cals",
		"Deep sleep", "REM sleep", "Brain fog", "Mood", "Libido", "Energy", "Notes"); err != nil {
		return err
	}

	row := 2
	for _, date := range sortedStringKeys(progress.BiofeedbackEntries) {
		e := progress.BiofeedbackEntries[date]
		if err := setRow(f, sheetBiofeedback, row,
			e.Date, optFloat(e.HRV), optInt(e.RestingHR), optFloat(e.TempDelta),
			optFloat(e.VO2Max), optInt(e.ActiveCals), optFloat(e.DeepSleep),
			optFloat(e.RemSleep), optInt(e.BrainFog), optInt(e.Mood),
			optInt(e.Libido), optInt(e.Energy), e.Notes); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeJournal(f *excelize.File, progress types.UserProgress) error {
	if _, err := f.NewSheet(sheetJournal); err != nil {
		return fmt.Errorf("create journal sheet: %w", err)
	}
	if err := setRow(f, sheetJournal, 1,
		"Date", "Physical", "Emotional", "Cognitive", "Spiritual",
		"Die-off symptoms", "Intensity", "Mitigation", "Meals"); err != nil {
		return err
	}

	row := 2
	for _, date := range sortedStringKeys(progress.JournalEntries) {
		e := progress.JournalEntries[date]
		meals := ""
		for i, m := range e.Meals {
			if i > 0 {
				meals += "; "
			}
			meals += fmt.Sprintf("%s: %s", m.Meal, m.Foods)
		}
		if err := setRow(f, sheetJournal, row,
			e.Date, e.Physical, e.Emotional, e.Cognitive, e.Spiritual,
			e.DieOffSymptoms, optInt(e.DieOffIntensity), e.DieOffMitigation, meals); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeSupplements(f *excelize.File) error {
	if _, err := f.NewSheet(sheetSupplements); err != nil {
		return fmt.Errorf("create supplements sheet: %w", err)
	}
	if err := setRow(f, sheetSupplements, 1, "Name", "Purpose", "Dosage", "Timing", "Phase", "Brand"); err != nil {
		return err
	}

	for i, s := range protocol.Supplements() {
		if err := setRow(f, sheetSupplements, i+2, s.Name, s.Purpose, s.Dosage, s.Timing, s.Phase, s.Brand); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func optInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func optFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func sortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedDayKeys[T any](m map[int]T) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
