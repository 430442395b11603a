package report

import (
	"testing"
	"time"

	"github.com/hyperengineering/regimen/internal/protocol"
	"github.com/hyperengineering/regimen/internal/types"
)

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func sampleProgress() types.UserProgress {
	p := types.NewUserProgress(time.Now())
	p.CurrentDay = 9
	p.StartDate = "2024-01-01"
	p.CompletedDays = []int{1, 2, 3}
	p.BiofeedbackEntries["2024-01-02"] = types.BiofeedbackEntry{
		Date: "2024-01-02",
		HRV:  floatp(61.5),
		Mood: intp(7),
	}
	p.JournalEntries["2024-01-02"] = types.JournalEntry{
		Date:     "2024-01-02",
		Physical: "steady",
		Meals:    []types.MealEntry{{Meal: "lunch", Foods: "salad"}},
	}
	day := protocol.NewDayEntry(2)
	day.Tasks[0].Completed = true
	p.DayEntries[2] = day
	return p
}

func TestBuildWorkbook_Sheets(t *testing.T) {
	f, err := BuildWorkbook("u1", sampleProgress())
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	for _, sheet := range []string{sheetOverview, sheetCalendar, sheetBiofeedback, sheetJournal, sheetSupplements} {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			t.Errorf("sheet %q missing", sheet)
		}
	}
}

func TestBuildWorkbook_OverviewValues(t *testing.T) {
	f, err := BuildWorkbook("u1", sampleProgress())
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	got, err := f.GetCellValue(sheetOverview, "B2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2024-01-01" {
		t.Errorf("start date cell = %q", got)
	}

	got, err = f.GetCellValue(sheetOverview, "B4")
	if err != nil {
		t.Fatal(err)
	}
	if got != protocol.PhaseKillOne {
		t.Errorf("phase cell = %q, want %q", got, protocol.PhaseKillOne)
	}
}

func TestBuildWorkbook_BiofeedbackRow(t *testing.T) {
	f, err := BuildWorkbook("u1", sampleProgress())
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	date, err := f.GetCellValue(sheetBiofeedback, "A2")
	if err != nil {
		t.Fatal(err)
	}
	if date != "2024-01-02" {
		t.Errorf("date cell = %q", date)
	}

	hrv, err := f.GetCellValue(sheetBiofeedback, "B2")
	if err != nil {
		t.Fatal(err)
	}
	if hrv != "61.5" {
		t.Errorf("hrv cell = %q", hrv)
	}

	// Absent metric renders as empty, not zero
	restingHR, err := f.GetCellValue(sheetBiofeedback, "C2")
	if err != nil {
		t.Fatal(err)
	}
	if restingHR != "" {
		t.Errorf("restingHR cell = %q, want empty", restingHR)
	}
}

func TestWriteReport(t *testing.T) {
	path := t.TempDir() + "/report.xlsx"
	if err := WriteReport(path, "u1", sampleProgress()); err != nil {
		t.Fatal(err)
	}
}
