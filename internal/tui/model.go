package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/thirty/internal/account"
	"github.com/julianstephens/thirty/internal/clock"
	"github.com/julianstephens/thirty/internal/constants"
	"github.com/julianstephens/thirty/internal/logger"
	"github.com/julianstephens/thirty/internal/models"
	"github.com/julianstephens/thirty/internal/plan"
	"github.com/julianstephens/thirty/internal/session"
	"github.com/julianstephens/thirty/internal/streak"
	"github.com/julianstephens/thirty/internal/tracker"
	"github.com/julianstephens/thirty/internal/tui/components/calendar"
	"github.com/julianstephens/thirty/internal/tui/components/habits"
	"github.com/julianstephens/thirty/internal/tui/components/setup"
	"github.com/julianstephens/thirty/internal/tui/forms"
	"github.com/julianstephens/thirty/internal/utils"
)

// Screen is what the TUI is showing
type Screen int

const (
	ScreenAuth Screen = iota
	ScreenSetup
	ScreenToday
	ScreenCalendar
)

type formKind int

const (
	formNone formKind = iota
	formLogin
	formSignUp
	formAddHabit
	formRename
	formPlan
)

// Services are the stores the TUI reads and writes
type Services struct {
	Accounts *account.Service
	Plans    *plan.Service
	Tracker  *tracker.Tracker
	Clock    clock.Clock
}

type Model struct {
	svc      Services
	screen   Screen
	snap     session.Snapshot
	keys     KeyMap
	help     help.Model
	progress progress.Model

	setup    setup.Model
	habits   habits.Model
	calendar calendar.Model
	tracked  []models.TrackedHabit
	summary  streak.Summary

	form        *huh.Form
	formKind    formKind
	signUp      *account.SignUpForm
	login       *forms.LoginFields
	habitFields *forms.HabitFields
	renameID    string
	renameName  *string
	planFields  *forms.PlanFields

	status   string
	errMsg   string
	width    int
	height   int
	quitting bool
}

func NewModel(svc Services) Model {
	m := Model{
		svc:      svc,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient()),
		setup:    setup.New(nil, 0, 0),
		habits:   habits.New(nil, "", 0, 0),
		calendar: calendar.New(nil),
	}
	m.route()
	return m
}

func (m Model) today() string {
	return utils.FormatDate(m.svc.Clock.Now())
}

func (m Model) Screen() Screen {
	return m.screen
}

// route resolves the session and loads the data its screen needs
func (m *Model) route() {
	snap, err := session.Resolve(m.svc.Accounts, m.svc.Plans)
	if err != nil {
		m.fail(err)
		snap = session.Snapshot{State: constants.StateUnauthenticated}
	}
	m.snap = snap

	switch snap.State {
	case constants.StateUnauthenticated:
		m.screen = ScreenAuth
	case constants.StateNeedsPlan:
		m.screen = ScreenSetup
		habits, err := m.svc.Plans.SetupHabits(snap.User.ID)
		if err != nil {
			m.fail(err)
			return
		}
		m.setup.SetHabits(habits)
	case constants.StateActive:
		if m.screen != ScreenCalendar {
			m.screen = ScreenToday
		}
		m.refreshTracking()
	}
}

// refreshTracking reloads tracking and recomputes everything derived from it
func (m *Model) refreshTracking() {
	if m.snap.User == nil || m.snap.Plan == nil {
		return
	}
	tracked, err := m.svc.Tracker.Load(m.snap.User.ID)
	if err != nil {
		m.fail(err)
		return
	}
	m.tracked = tracked

	today := m.today()
	summary, err := streak.Summarize(tracked, m.snap.Plan.StartDate, today)
	if err != nil {
		m.fail(err)
		return
	}
	m.summary = summary
	m.calendar.SetCells(summary.Calendar)

	date := m.habits.Date()
	if date == "" {
		var ok bool
		if date, ok = m.calendar.Today(); !ok {
			date, _ = m.calendar.Selected()
		}
	}
	m.habits.SetHabits(tracked, date)
}

func (m *Model) fail(err error) {
	logger.Warn("TUI action failed", "error", err)
	m.errMsg = err.Error()
	m.status = ""
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.errMsg = ""
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Quit, m.keys.Help}
	if m.form != nil {
		return []key.Binding{m.keys.Cancel}
	}
	switch m.screen {
	case ScreenAuth:
		keys = append(keys, m.keys.Login, m.keys.SignUp)
	case ScreenSetup:
		k := m.setup.Keys()
		keys = append(keys, k.Add, k.Delete, k.Rename, k.Reset, k.Commit, m.keys.Logout)
	case ScreenToday:
		keys = append(keys, m.keys.Tab, m.habits.Keys().Toggle, m.keys.Logout)
	case ScreenCalendar:
		k := m.calendar.Keys()
		keys = append(keys, m.keys.Tab, k.Left, k.Right, k.Today)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Logout}

	var actions []key.Binding
	switch m.screen {
	case ScreenAuth:
		actions = []key.Binding{m.keys.Login, m.keys.SignUp}
	case ScreenSetup:
		k := m.setup.Keys()
		actions = []key.Binding{k.Add, k.Delete, k.Rename, k.Reset, k.Commit}
	case ScreenToday:
		actions = []key.Binding{m.habits.Keys().Toggle}
	case ScreenCalendar:
		k := m.calendar.Keys()
		actions = []key.Binding{k.Left, k.Right, k.Up, k.Down, k.Today}
	}

	return [][]key.Binding{global, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}
