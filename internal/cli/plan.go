package cli

import (
	"fmt"
	"strings"

	"github.com/julianstephens/thirty/internal/constants"
	"github.com/julianstephens/thirty/internal/models"
	"github.com/julianstephens/thirty/internal/streak"
	"github.com/julianstephens/thirty/internal/tui/forms"
)

type PlanCmd struct {
	Create PlanCreateCmd `cmd:"" help:"Commit to the setup habits for 30 days."`
	Show   PlanShowCmd   `cmd:"" help:"Show the committed plan." default:"1"`
}

type PlanCreateCmd struct {
	Start  string   `help:"Start date (YYYY-MM-DD). Defaults to today."`
	Habits []string `help:"Only commit these habits (ids or names). Defaults to the whole setup list."`
	Yes    bool     `short:"y" help:"Skip the confirmation prompt."`
}

func (c *PlanCreateCmd) Run(ctx *Context) error {
	snap, err := ctx.RequireSetup()
	if err != nil {
		return err
	}

	release, err := ctx.BeginWrite()
	if err != nil {
		return err
	}
	defer release()

	setupHabits, err := ctx.Plans.SetupHabits(snap.User.ID)
	if err != nil {
		return err
	}

	chosen := setupHabits
	if len(c.Habits) > 0 {
		chosen = make([]models.Habit, 0, len(c.Habits))
		for _, ref := range c.Habits {
			h, err := resolveHabit(setupHabits, ref)
			if err != nil {
				return err
			}
			chosen = append(chosen, h)
		}
	}

	start := strings.TrimSpace(c.Start)
	if !c.Yes {
		fmt.Println("Habits:")
		printHabits(chosen)
		fields := forms.PlanFields{StartDate: start}
		if fields.StartDate == "" {
			fields.StartDate = ctx.Today()
		}
		if err := forms.NewPlanForm(&fields, len(chosen), ctx.Today()).Run(); err != nil {
			return err
		}
		if !fields.Confirmed {
			fmt.Println("Plan not created.")
			return nil
		}
		start = fields.StartDate
	} else if start == "" {
		start = ctx.Today()
	}

	p, err := ctx.Plans.CreatePlan(snap.User.ID, chosen, start)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Challenge committed: %d habits from %s\n", len(p.Habits), p.StartDate)
	fmt.Println("Mark habits done with 'thirty toggle <habit>' or open 'thirty tui'.")
	return nil
}

type PlanShowCmd struct{}

func (c *PlanShowCmd) Run(ctx *Context) error {
	snap, err := ctx.RequireActive()
	if err != nil {
		return err
	}

	tracked, err := ctx.Tracker.Load(snap.User.ID)
	if err != nil {
		return err
	}
	completed := make(map[string]int, len(tracked))
	for _, h := range tracked {
		completed[h.ID] = streak.CompletedDays(h)
	}

	end, err := streak.CalendarWindow(snap.Plan.StartDate)
	if err != nil {
		return err
	}

	fmt.Printf("Plan: %s to %s (created %s)\n", snap.Plan.StartDate, end[len(end)-1],
		snap.Plan.CreatedAt.Local().Format("2006-01-02 15:04"))
	for _, h := range snap.Plan.Habits {
		fmt.Printf("  %s %-28s %2d/%d days  [%s]\n", h.Emoji, h.Name, completed[h.ID], constants.ChallengeDays, h.Category)
	}
	return nil
}
