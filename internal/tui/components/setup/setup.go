package setup

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/thirty/internal/models"
)

type AddHabitMsg struct{}

type DeleteHabitMsg struct {
	ID string
}

type RenameHabitMsg struct {
	Habit models.Habit
}

type ResetHabitsMsg struct{}

type CommitPlanMsg struct{}

type Item struct {
	Habit models.Habit
}

func (i Item) Title() string       { return i.Habit.Emoji + " " + i.Habit.Name }
func (i Item) Description() string { return string(i.Habit.Category) }
func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add    key.Binding
	Delete key.Binding
	Rename key.Binding
	Reset  key.Binding
	Commit key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Rename: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "rename"),
		),
		Reset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset defaults"),
		),
		Commit: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "start challenge"),
		),
	}
}

// Model edits the habit list before a plan is committed
type Model struct {
	list list.Model
	keys KeyMap
}

func New(habits []models.Habit, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Choose your habits"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Delete, keys.Rename, keys.Reset, keys.Commit}
	}

	m := Model{list: l, keys: keys}
	m.SetHabits(habits)
	return m
}

func (m *Model) SetHabits(habits []models.Habit) {
	items := make([]list.Item, len(habits))
	for i, h := range habits {
		items[i] = Item{Habit: h}
	}
	m.list.SetItems(items)
}

// Habits returns the list in display order
func (m Model) Habits() []models.Habit {
	items := m.list.Items()
	habits := make([]models.Habit, 0, len(items))
	for _, it := range items {
		if i, ok := it.(Item); ok {
			habits = append(habits, i.Habit)
		}
	}
	return habits
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Reset):
			return m, func() tea.Msg { return ResetHabitsMsg{} }
		case key.Matches(msg, m.keys.Commit):
			return m, func() tea.Msg { return CommitPlanMsg{} }
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteHabitMsg{ID: i.Habit.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Rename):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return RenameHabitMsg(i) }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No habits selected.\n  Press 'a' to add one or 'R' to restore the defaults."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
