package habits

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/thirty/internal/models"
	"github.com/julianstephens/thirty/internal/streak"
)

// ToggleHabitMsg asks the parent to flip a habit on the shown date
type ToggleHabitMsg struct {
	ID   string
	Date string
}

type Item struct {
	Habit     models.TrackedHabit
	Date      string
	Completed bool
}

func (i Item) Title() string {
	mark := "○"
	if i.Completed {
		mark = "✓"
	}
	return fmt.Sprintf("%s %s %s", mark, i.Habit.Emoji, i.Habit.Name)
}

func (i Item) Description() string {
	return fmt.Sprintf("%s · %d/30 days", i.Habit.Category, streak.CompletedDays(i.Habit))
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Toggle key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x", "enter"),
			key.WithHelp("space/x", "toggle"),
		),
	}
}

// Model lists the plan habits with their completion on one date
type Model struct {
	list list.Model
	keys KeyMap
	date string
}

func New(habits []models.TrackedHabit, date string, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle}
	}

	m := Model{list: l, keys: keys}
	m.SetHabits(habits, date)
	return m
}

// SetHabits refreshes the items, keeping the selection position
func (m *Model) SetHabits(habits []models.TrackedHabit, date string) {
	m.date = date
	items := make([]list.Item, len(habits))
	for i, h := range habits {
		items[i] = Item{Habit: h, Date: date, Completed: h.CompletedOn(date)}
	}
	m.list.SetItems(items)
}

func (m Model) Date() string {
	return m.date
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Toggle) {
		if i, ok := m.list.SelectedItem().(Item); ok && m.date != "" {
			return m, func() tea.Msg { return ToggleHabitMsg{ID: i.Habit.ID, Date: i.Date} }
		}
		return m, nil
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No habits in this plan."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
