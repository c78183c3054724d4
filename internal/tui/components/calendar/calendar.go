package calendar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/thirty/internal/constants"
	"github.com/julianstephens/thirty/internal/streak"
)

// Columns is the number of days per calendar row
const Columns = 7

var (
	cellStyle = lipgloss.NewStyle().Width(5).Align(lipgloss.Center)

	fullStyle    = cellStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42"))
	partialStyle = cellStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214"))
	emptyStyle   = cellStyle.Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236"))
	futureStyle  = cellStyle.Foreground(lipgloss.Color("240"))

	todayStyle  = lipgloss.NewStyle().Underline(true).Bold(true)
	cursorStyle = lipgloss.NewStyle().Reverse(true)

	legendStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Symbol is the plain-text marker for a day status
func Symbol(c streak.Cell) string {
	if c.IsFuture {
		return "·"
	}
	switch c.Status {
	case constants.DayFull:
		return "■"
	case constants.DayPartial:
		return "▣"
	default:
		return "□"
	}
}

func styleFor(c streak.Cell) lipgloss.Style {
	if c.IsFuture {
		return futureStyle
	}
	switch c.Status {
	case constants.DayFull:
		return fullStyle
	case constants.DayPartial:
		return partialStyle
	default:
		return emptyStyle
	}
}

// Render draws the challenge window as a grid of day numbers. cursor is the
// index of the highlighted cell; pass -1 for none.
func Render(cells []streak.Cell, cursor int) string {
	var rows []string
	for start := 0; start < len(cells); start += Columns {
		end := min(start+Columns, len(cells))
		var row []string
		for i := start; i < end; i++ {
			c := cells[i]
			label := fmt.Sprintf("%d", c.Day)
			if c.IsToday {
				label = todayStyle.Render(label)
			}
			cell := styleFor(c).Render(label)
			if i == cursor {
				cell = cursorStyle.Render(cell)
			}
			row = append(row, cell)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	legend := legendStyle.Render(strings.Join([]string{
		fullStyle.Width(0).Render(" ") + " all done",
		partialStyle.Width(0).Render(" ") + " some",
		emptyStyle.Width(0).Render(" ") + " none",
	}, "   "))

	return lipgloss.JoinVertical(lipgloss.Left, append(rows, "", legend)...)
}

// RenderPlain draws the grid without colors, for pipes and logs
func RenderPlain(cells []streak.Cell) string {
	var b strings.Builder
	for i, c := range cells {
		marker := Symbol(c)
		if c.IsToday {
			marker = "[" + marker + "]"
		} else {
			marker = " " + marker + " "
		}
		fmt.Fprintf(&b, "%2d%s", c.Day, marker)
		if (i+1)%Columns == 0 || i == len(cells)-1 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}

// SelectDateMsg is sent when the cursor moves to a different day
type SelectDateMsg struct {
	Date string
}

type KeyMap struct {
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding
	Today key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev day"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev week"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next week"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "jump to today"),
		),
	}
}

// Model is a calendar with a day cursor. Future days cannot be selected.
type Model struct {
	cells  []streak.Cell
	cursor int
	keys   KeyMap
}

func New(cells []streak.Cell) Model {
	m := Model{keys: DefaultKeyMap()}
	m.SetCells(cells)
	return m
}

// SetCells replaces the cells and keeps the cursor in range. The first
// non-empty set of cells puts the cursor on today.
func (m *Model) SetCells(cells []streak.Cell) {
	first := len(m.cells) == 0
	m.cells = cells
	if first {
		m.cursor = m.todayIndex()
	}
	if m.cursor >= len(cells) {
		m.cursor = len(cells) - 1
	}
	if m.cursor > m.lastSelectable() {
		m.cursor = m.lastSelectable()
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) Keys() KeyMap {
	return m.keys
}

// todayIndex falls back to the last selectable day when today is outside the window
func (m Model) todayIndex() int {
	for i, c := range m.cells {
		if c.IsToday {
			return i
		}
	}
	return max(m.lastSelectable(), 0)
}

func (m Model) lastSelectable() int {
	last := -1
	for i, c := range m.cells {
		if !c.IsFuture {
			last = i
		}
	}
	return last
}

// Today returns today's date when it falls inside the window
func (m Model) Today() (string, bool) {
	for _, c := range m.cells {
		if c.IsToday {
			return c.Date, true
		}
	}
	return "", false
}

// Selected returns the date under the cursor; false before the challenge starts
func (m Model) Selected() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.cells) || m.cells[m.cursor].IsFuture {
		return "", false
	}
	return m.cells[m.cursor].Date, true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.cells) == 0 {
		return m, nil
	}

	next := m.cursor
	switch {
	case key.Matches(keyMsg, m.keys.Left):
		next--
	case key.Matches(keyMsg, m.keys.Right):
		next++
	case key.Matches(keyMsg, m.keys.Up):
		next -= Columns
	case key.Matches(keyMsg, m.keys.Down):
		next += Columns
	case key.Matches(keyMsg, m.keys.Today):
		next = m.todayIndex()
	default:
		return m, nil
	}

	if next < 0 || next >= len(m.cells) || m.cells[next].IsFuture || next == m.cursor {
		return m, nil
	}
	m.cursor = next
	date := m.cells[next].Date
	return m, func() tea.Msg { return SelectDateMsg{Date: date} }
}

func (m Model) View() string {
	if len(m.cells) == 0 {
		return "No calendar yet."
	}
	return Render(m.cells, m.cursor)
}
