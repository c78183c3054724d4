package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/thirty/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch {
	case m.form != nil:
		content = docStyle.Render(m.form.View())
	case m.screen == ScreenAuth:
		content = m.viewAuth()
	case m.screen == ScreenSetup:
		content = docStyle.Render(m.setup.View())
	case m.screen == ScreenToday:
		content = m.viewToday()
	case m.screen == ScreenCalendar:
		content = m.viewCalendar()
	}

	parts := []string{m.viewHeader(), content}
	if line := m.viewStatus(); line != "" {
		parts = append(parts, line)
	}
	parts = append(parts, m.help.View(m))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewHeader() string {
	title := titleStyle.Render("thirty")
	if m.snap.User != nil {
		title += mutedStyle.Render("  " + m.snap.User.Name)
	}
	if m.screen != ScreenToday && m.screen != ScreenCalendar {
		return title
	}

	var tabs []string
	for _, t := range []struct {
		screen Screen
		title  string
	}{{ScreenToday, "Today"}, {ScreenCalendar, "Calendar"}} {
		if m.screen == t.screen {
			tabs = append(tabs, activeTabStyle.Render(t.title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(t.title))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m Model) viewStatus() string {
	switch {
	case m.errMsg != "":
		return dangerStyle.Render("  " + m.errMsg)
	case m.status != "":
		return celebrateStyle.Render("  " + m.status)
	}
	return ""
}

func (m Model) viewAuth() string {
	return lipgloss.Place(max(m.width, 40), max(m.height-6, 8),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			titleStyle.Render("30 days. Your habits. Every day."),
			"",
			"[l] Log in",
			"[s] Sign up",
			"",
			"[q] Quit",
		),
	)
}

func (m Model) viewStats() string {
	s := m.summary
	day := "not started"
	switch {
	case s.Finished:
		day = "complete"
	case s.Started:
		day = fmt.Sprintf("day %d/%d", s.ChallengeDay(), constants.ChallengeDays)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		statStyle.Render(fmt.Sprintf("🔥 %d day streak", s.Streak)),
		statStyle.Render("📅 "+day),
		statStyle.Render(fmt.Sprintf("⏳ %d days left", s.DaysRemaining)),
	)
}

func (m Model) viewToday() string {
	date := m.habits.Date()
	heading := "Challenge starts " + m.summary.StartDate
	if date != "" {
		heading = "Habits for " + date
		if date == m.summary.Today {
			heading = "Today"
		}
	}

	progressLine := fmt.Sprintf("%s  %d/%d today",
		m.progress.ViewAs(m.summary.Progress.Ratio()),
		m.summary.Progress.Completed, m.summary.Progress.Total)

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.viewStats(),
		"",
		progressLine,
		"",
		titleStyle.Render(heading),
		m.habits.View(),
	))
}

func (m Model) viewCalendar() string {
	selected := mutedStyle.Render("Select a day to see its habits on the Today tab")
	if date, ok := m.calendar.Selected(); ok {
		selected = mutedStyle.Render("Selected: " + date)
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.viewStats(),
		"",
		m.calendar.View(),
		"",
		selected,
	))
}
