package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/thirty/internal/account"
	"github.com/julianstephens/thirty/internal/tui/components/calendar"
	"github.com/julianstephens/thirty/internal/tui/components/habits"
	"github.com/julianstephens/thirty/internal/tui/components/setup"
	"github.com/julianstephens/thirty/internal/tui/forms"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = min(msg.Width-8, 60)
		listHeight := max(msg.Height-12, 5)
		m.setup.SetSize(msg.Width-4, listHeight)
		m.habits.SetSize(msg.Width-4, listHeight)
		return m, nil

	case setup.AddHabitMsg:
		m.habitFields = forms.NewHabitFields()
		return m.openForm(formAddHabit, forms.NewHabitForm(m.habitFields))

	case setup.RenameHabitMsg:
		name := msg.Habit.Name
		m.renameID = msg.Habit.ID
		m.renameName = &name
		return m.openForm(formRename, forms.NewRenameForm(m.renameName))

	case setup.DeleteHabitMsg:
		habits, err := m.svc.Plans.DeleteHabit(m.snap.User.ID, msg.ID)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.setup.SetHabits(habits)
		m.setStatus("Habit removed")
		return m, nil

	case setup.ResetHabitsMsg:
		habits, err := m.svc.Plans.ResetSetupHabits(m.snap.User.ID)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.setup.SetHabits(habits)
		m.setStatus("Restored the default habits")
		return m, nil

	case setup.CommitPlanMsg:
		m.planFields = &forms.PlanFields{StartDate: m.today()}
		return m.openForm(formPlan, forms.NewPlanForm(m.planFields, len(m.setup.Habits()), m.today()))

	case habits.ToggleHabitMsg:
		return m.toggle(msg), nil

	case calendar.SelectDateMsg:
		m.habits.SetHabits(m.tracked, msg.Date)
		return m, nil

	case tea.KeyMsg:
		if m.form != nil {
			if key.Matches(msg, m.keys.Cancel) {
				m.closeForm()
				return m, nil
			}
			break
		}
		if model, cmd, handled := m.handleKey(msg); handled {
			return model, cmd
		}
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m.updateScreen(msg)
}

// handleKey processes global keys; handled is false when the active screen should see the key
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit, true
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil, true
	}

	switch m.screen {
	case ScreenAuth:
		switch {
		case key.Matches(msg, m.keys.Login):
			m.login = &forms.LoginFields{}
			model, cmd := m.openForm(formLogin, forms.NewLoginForm(m.login))
			return model, cmd, true
		case key.Matches(msg, m.keys.SignUp):
			m.signUp = &account.SignUpForm{}
			model, cmd := m.openForm(formSignUp, forms.NewSignUpForm(m.signUp))
			return model, cmd, true
		}

	case ScreenSetup, ScreenToday, ScreenCalendar:
		switch {
		case key.Matches(msg, m.keys.Logout):
			if err := m.svc.Accounts.Logout(); err != nil {
				m.fail(err)
			} else {
				m.setStatus("Logged out")
			}
			m.route()
			return m, nil, true
		case m.screen != ScreenSetup && (key.Matches(msg, m.keys.Tab) || key.Matches(msg, m.keys.ShiftTab)):
			if m.screen == ScreenToday {
				m.screen = ScreenCalendar
			} else {
				m.screen = ScreenToday
			}
			return m, nil, true
		}
	}

	return m, nil, false
}

func (m Model) updateScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case ScreenSetup:
		m.setup, cmd = m.setup.Update(msg)
	case ScreenToday:
		m.habits, cmd = m.habits.Update(msg)
	case ScreenCalendar:
		m.calendar, cmd = m.calendar.Update(msg)
	}
	return m, cmd
}

func (m Model) openForm(kind formKind, form *huh.Form) (tea.Model, tea.Cmd) {
	m.form = form
	m.formKind = kind
	m.errMsg = ""
	return m, m.form.Init()
}

func (m *Model) closeForm() {
	m.form = nil
	m.formKind = formNone
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	case huh.StateCompleted:
		kind := m.formKind
		m.closeForm()
		m.submit(kind)
		return m, nil
	}
	return m, cmd
}

// submit applies a completed form
func (m *Model) submit(kind formKind) {
	switch kind {
	case formLogin:
		u, err := m.svc.Accounts.Login(m.login.Email, m.login.Password)
		if err != nil {
			m.fail(err)
			return
		}
		m.setStatus(fmt.Sprintf("Welcome back, %s!", u.Name))
		m.route()

	case formSignUp:
		if err := account.ValidateSignUp(*m.signUp); err != nil {
			m.fail(err)
			return
		}
		u, err := m.svc.Accounts.SignUp(m.signUp.Email, m.signUp.Password, m.signUp.Name)
		if err != nil {
			m.fail(err)
			return
		}
		m.setStatus(fmt.Sprintf("Welcome, %s! Pick the habits for your challenge.", u.Name))
		m.route()

	case formAddHabit:
		f := m.habitFields
		habits, err := m.svc.Plans.AddHabit(m.snap.User.ID, f.Name, f.Emoji, f.Category)
		if err != nil {
			m.fail(err)
			return
		}
		m.setup.SetHabits(habits)
		m.setStatus("Added " + f.Name)

	case formRename:
		habits, err := m.svc.Plans.RenameHabit(m.snap.User.ID, m.renameID, *m.renameName)
		if err != nil {
			m.fail(err)
			return
		}
		m.setup.SetHabits(habits)
		m.setStatus("Habit renamed")

	case formPlan:
		if !m.planFields.Confirmed {
			m.setStatus("Plan not created")
			return
		}
		p, err := m.svc.Plans.CreatePlan(m.snap.User.ID, m.setup.Habits(), m.planFields.StartDate)
		if err != nil {
			m.fail(err)
			return
		}
		m.setStatus(fmt.Sprintf("Challenge committed: %d habits from %s", len(p.Habits), p.StartDate))
		m.route()
	}
}

func (m Model) toggle(msg habits.ToggleHabitMsg) Model {
	_, result, err := m.svc.Tracker.Toggle(m.snap.User.ID, msg.ID, msg.Date)
	if err != nil {
		m.fail(err)
		return m
	}
	m.refreshTracking()

	switch {
	case !result.Found:
		m.setStatus("Habit is not part of this plan")
	case result.Celebrate && m.summary.Progress.Completed == m.summary.Progress.Total:
		m.setStatus("🎉 Every habit done today! Keep the streak going.")
	case result.Celebrate:
		m.setStatus("✓ Nice work!")
	default:
		m.setStatus("")
	}
	return m
}
