package calendar

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/thirty/internal/constants"
	"github.com/julianstephens/thirty/internal/models"
	"github.com/julianstephens/thirty/internal/streak"
)

func cells(t *testing.T, today string) []streak.Cell {
	t.Helper()
	habits := []models.TrackedHabit{
		{Habit: models.Habit{ID: "a"}, CompletedDays: models.NewDaySet("2025-01-01", "2025-01-02")},
		{Habit: models.Habit{ID: "b"}, CompletedDays: models.NewDaySet("2025-01-01")},
	}
	c, err := streak.CalendarCells(habits, "2025-01-01", today)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSymbol(t *testing.T) {
	tests := []struct {
		cell streak.Cell
		want string
	}{
		{streak.Cell{Status: constants.DayFull}, "■"},
		{streak.Cell{Status: constants.DayPartial}, "▣"},
		{streak.Cell{Status: constants.DayEmpty}, "□"},
		{streak.Cell{Status: constants.DayFull, IsFuture: true}, "·"},
	}
	for _, tt := range tests {
		if got := Symbol(tt.cell); got != tt.want {
			t.Errorf("Symbol(%+v) = %q, want %q", tt.cell, got, tt.want)
		}
	}
}

func TestRenderPlain(t *testing.T) {
	out := RenderPlain(cells(t, "2025-01-03"))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if len(lines) != 5 {
		t.Fatalf("expected 5 rows for 30 days, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], " 1 ■  ") {
		t.Errorf("day 1 should be full, got %q", lines[0])
	}
	if !strings.Contains(lines[0], " 2 ▣ ") {
		t.Errorf("day 2 should be partial, got %q", lines[0])
	}
	if !strings.Contains(lines[0], " 3[□]") {
		t.Errorf("today should be bracketed, got %q", lines[0])
	}
	if !strings.Contains(lines[4], "30 · ") {
		t.Errorf("day 30 should be future, got %q", lines[4])
	}
}

func TestModelCursor(t *testing.T) {
	m := New(cells(t, "2025-01-10"))

	date, ok := m.Selected()
	if !ok || date != "2025-01-10" {
		t.Fatalf("initial selection = %q, %v; want today", date, ok)
	}

	press := func(m Model, k string) (Model, tea.Cmd) {
		return m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}

	m, cmd := press(m, "h")
	if date, _ := m.Selected(); date != "2025-01-09" {
		t.Errorf("after h, selected %q", date)
	}
	if cmd == nil {
		t.Fatal("moving the cursor should emit SelectDateMsg")
	}
	if msg, ok := cmd().(SelectDateMsg); !ok || msg.Date != "2025-01-09" {
		t.Errorf("unexpected message %#v", cmd())
	}

	m, _ = press(m, "k")
	if date, _ := m.Selected(); date != "2025-01-02" {
		t.Errorf("after k, selected %q", date)
	}

	// next week would land in the future and next day after today too
	m, _ = press(m, "t")
	m, cmd = press(m, "l")
	if date, _ := m.Selected(); date != "2025-01-10" || cmd != nil {
		t.Errorf("cursor moved into the future: %q", date)
	}
	m, _ = press(m, "j")
	if date, _ := m.Selected(); date != "2025-01-10" {
		t.Errorf("cursor moved into the future: %q", date)
	}
}

func TestModelBeforeStart(t *testing.T) {
	m := New(cells(t, "2024-12-25"))
	if _, ok := m.Selected(); ok {
		t.Error("no day should be selectable before the challenge starts")
	}
	if !strings.Contains(m.View(), "30") {
		t.Error("view should still render the window")
	}
}

func TestModelFirstCellsSelectToday(t *testing.T) {
	m := New(nil)
	if _, ok := m.Selected(); ok {
		t.Fatal("empty calendar should have no selection")
	}

	m.SetCells(cells(t, "2025-01-10"))
	if date, ok := m.Selected(); !ok || date != "2025-01-10" {
		t.Errorf("selection after first cells = %q, %v; want today", date, ok)
	}
	if date, ok := m.Today(); !ok || date != "2025-01-10" {
		t.Errorf("Today() = %q, %v", date, ok)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	m.SetCells(cells(t, "2025-01-10"))
	if date, _ := m.Selected(); date != "2025-01-09" {
		t.Errorf("refreshing cells moved the cursor to %q", date)
	}
}
