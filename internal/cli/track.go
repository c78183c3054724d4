package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/mattn/go-isatty"

	"github.com/julianstephens/thirty/internal/constants"
	apperrors "github.com/julianstephens/thirty/internal/errors"
	"github.com/julianstephens/thirty/internal/models"
	"github.com/julianstephens/thirty/internal/session"
	"github.com/julianstephens/thirty/internal/streak"
	"github.com/julianstephens/thirty/internal/tracker"
	"github.com/julianstephens/thirty/internal/tui/components/calendar"
	"github.com/julianstephens/thirty/internal/utils"
)

var ErrFutureDate = errors.New("cannot track a day that has not happened yet")

func planHabits(snap session.Snapshot) []models.Habit {
	if snap.Plan == nil {
		return nil
	}
	return snap.Plan.Habits
}

type ToggleCmd struct {
	Habit  string `arg:"" help:"Habit id or name."`
	Date   string `help:"Day to update (YYYY-MM-DD). Defaults to today."`
	Done   bool   `help:"Mark complete instead of toggling." xor:"mode"`
	Undone bool   `help:"Mark incomplete instead of toggling." xor:"mode"`
}

func (c *ToggleCmd) Run(ctx *Context) error {
	snap, err := ctx.RequireActive()
	if err != nil {
		return err
	}

	date := strings.TrimSpace(c.Date)
	if date == "" {
		date = ctx.Today()
	}
	if !utils.ValidateDate(date) {
		return apperrors.Invalidf("date", apperrors.ErrInvalidDate, "invalid date %q (expected YYYY-MM-DD)", date)
	}
	if date > ctx.Today() {
		return ErrFutureDate
	}

	h, err := resolveHabit(planHabits(snap), c.Habit)
	if err != nil {
		return err
	}

	release, err := ctx.BeginWrite()
	if err != nil {
		return err
	}
	defer release()

	var (
		tracked []models.TrackedHabit
		result  tracker.Toggle
	)
	switch {
	case c.Done:
		tracked, result, err = ctx.Tracker.Mark(snap.User.ID, h.ID, date)
	case c.Undone:
		tracked, result, err = ctx.Tracker.Unmark(snap.User.ID, h.ID, date)
	default:
		tracked, result, err = ctx.Tracker.Toggle(snap.User.ID, h.ID, date)
	}
	if err != nil {
		return err
	}
	if !result.Found {
		return fmt.Errorf("habit %q is not tracked in this plan", h.Name)
	}

	if result.Completed {
		fmt.Printf("✓ %s %s done on %s\n", h.Emoji, h.Name, date)
	} else {
		fmt.Printf("○ %s %s not done on %s\n", h.Emoji, h.Name, date)
	}

	p := streak.ProgressOn(tracked, date)
	if result.Celebrate && p.Completed == p.Total {
		fmt.Println("🎉 Every habit done today! Keep the streak going.")
	}
	return nil
}

// loadSummary resolves an active session and summarizes its tracking
func loadSummary(ctx *Context) (session.Snapshot, []models.TrackedHabit, streak.Summary, error) {
	snap, err := ctx.RequireActive()
	if err != nil {
		return snap, nil, streak.Summary{}, err
	}
	tracked, err := ctx.Tracker.Load(snap.User.ID)
	if err != nil {
		return snap, nil, streak.Summary{}, err
	}
	summary, err := streak.Summarize(tracked, snap.Plan.StartDate, ctx.Today())
	return snap, tracked, summary, err
}

func challengeDayLabel(s streak.Summary) string {
	switch {
	case s.Finished:
		return "challenge complete"
	case s.Started:
		return fmt.Sprintf("day %d of %d", s.ChallengeDay(), constants.ChallengeDays)
	default:
		return "starts " + s.StartDate
	}
}

func progressBar(p streak.Progress) string {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(30))
	return bar.ViewAs(p.Ratio())
}

type TodayCmd struct {
	Date string `help:"Show another day (YYYY-MM-DD)."`
}

func (c *TodayCmd) Run(ctx *Context) error {
	_, tracked, summary, err := loadSummary(ctx)
	if err != nil {
		return err
	}

	date := ctx.Today()
	if c.Date != "" {
		if !utils.ValidateDate(c.Date) {
			return apperrors.Invalid("date", apperrors.ErrInvalidDate)
		}
		date = c.Date
	}

	p := streak.ProgressOn(tracked, date)
	fmt.Printf("%s (%s)\n", date, challengeDayLabel(summary))
	fmt.Printf("%s  %d/%d\n\n", progressBar(p), p.Completed, p.Total)
	for _, h := range tracked {
		mark := "○"
		if h.CompletedOn(date) {
			mark = "✓"
		}
		fmt.Printf("  %s %s %s\n", mark, h.Emoji, h.Name)
	}
	return nil
}

type StreakCmd struct{}

func (c *StreakCmd) Run(ctx *Context) error {
	_, _, summary, err := loadSummary(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("🔥 Current streak: %d day", summary.Streak)
	if summary.Streak != 1 {
		fmt.Print("s")
	}
	fmt.Println()
	fmt.Printf("📅 %s, %d days remaining\n", challengeDayLabel(summary), summary.DaysRemaining)
	return nil
}

type CalendarCmd struct {
	Plain bool `help:"Print without colors."`
}

func (c *CalendarCmd) Run(ctx *Context) error {
	_, _, summary, err := loadSummary(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s to %s (%s)\n\n", summary.Calendar[0].Date, summary.Calendar[len(summary.Calendar)-1].Date,
		challengeDayLabel(summary))
	if c.Plain || !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Print(calendar.RenderPlain(summary.Calendar))
		fmt.Println("\n■ all done  ▣ some  □ none  · upcoming  [ ] today")
		return nil
	}
	fmt.Println(calendar.Render(summary.Calendar, -1))
	return nil
}

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *Context) error {
	snap, err := ctx.Session()
	if err != nil {
		return err
	}

	fmt.Printf("Data:    %s\n", ctx.Backend.GetConfigPath())
	fmt.Printf("Session: %s\n", snap.State)

	switch snap.State {
	case constants.StateUnauthenticated:
		fmt.Println("Next:    run 'thirty login' or 'thirty signup'")
		return nil
	case constants.StateNeedsPlan:
		fmt.Printf("User:    %s <%s>\n", snap.User.Name, snap.User.Email)
		fmt.Println("Next:    run 'thirty plan create'")
		return nil
	}

	_, _, summary, err := loadSummary(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("User:    %s <%s>\n", snap.User.Name, snap.User.Email)
	fmt.Printf("Plan:    %d habits, %s\n", len(snap.Plan.Habits), challengeDayLabel(summary))
	fmt.Printf("Today:   %d/%d (%.0f%%)\n", summary.Progress.Completed, summary.Progress.Total, summary.Progress.Percent())
	fmt.Printf("Streak:  %d\n", summary.Streak)
	fmt.Printf("Left:    %d days\n", summary.DaysRemaining)
	return nil
}
