package cli

import (
	"fmt"
	"strings"

	"github.com/julianstephens/thirty/internal/constants"
	"github.com/julianstephens/thirty/internal/models"
	"github.com/julianstephens/thirty/internal/tui/forms"
)

type HabitsCmd struct {
	List   HabitsListCmd   `cmd:"" help:"List habits." default:"1"`
	Add    HabitsAddCmd    `cmd:"" help:"Add a habit to the setup list."`
	Rm     HabitsRmCmd     `cmd:"" help:"Remove a habit from the setup list."`
	Rename HabitsRenameCmd `cmd:"" help:"Rename a habit in the setup list."`
	Reset  HabitsResetCmd  `cmd:"" help:"Restore the default setup list."`
}

func printHabits(habits []models.Habit) {
	if len(habits) == 0 {
		fmt.Println("No habits. Add one with 'thirty habits add'.")
		return
	}
	for i, h := range habits {
		fmt.Printf("  %2d. %s %s  [%s]  (id: %s)\n", i+1, h.Emoji, h.Name, h.Category, h.ID)
	}
}

// resolveHabit finds a habit by id or name
func resolveHabit(habits []models.Habit, ref string) (models.Habit, error) {
	if h, ok := models.FindHabit(habits, strings.TrimSpace(ref)); ok {
		return h, nil
	}
	return models.Habit{}, fmt.Errorf("habit %q not found", ref)
}

type HabitsListCmd struct{}

func (c *HabitsListCmd) Run(ctx *Context) error {
	snap, err := ctx.RequireUser()
	if err != nil {
		return err
	}

	if snap.State == constants.StateActive {
		fmt.Printf("Plan habits (since %s):\n", snap.Plan.StartDate)
		printHabits(snap.Plan.Habits)
		return nil
	}

	release, err := ctx.BeginWrite()
	if err != nil {
		return err
	}
	defer release()

	habits, err := ctx.Plans.SetupHabits(snap.User.ID)
	if err != nil {
		return err
	}
	fmt.Println("Setup habits (not committed yet):")
	printHabits(habits)
	return nil
}

type HabitsAddCmd struct {
	Name     string `arg:"" optional:"" help:"Habit name (prompted when omitted)."`
	Emoji    string `help:"Emoji shown next to the habit." default:"✨"`
	Category string `help:"One of fitness, nutrition, wellness, growth, productivity, custom." default:"custom"`
}

func (c *HabitsAddCmd) Run(ctx *Context) error {
	snap, err := ctx.RequireSetup()
	if err != nil {
		return err
	}

	fields := forms.HabitFields{Name: c.Name, Emoji: c.Emoji, Category: models.ParseCategory(c.Category)}
	if strings.TrimSpace(fields.Name) == "" {
		if err := forms.NewHabitForm(&fields).Run(); err != nil {
			return err
		}
	}

	release, err := ctx.BeginWrite()
	if err != nil {
		return err
	}
	defer release()

	habits, err := ctx.Plans.AddHabit(snap.User.ID, fields.Name, fields.Emoji, fields.Category)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Added habit: %s %s\n", fields.Emoji, strings.TrimSpace(fields.Name))
	printHabits(habits)
	return nil
}

type HabitsRmCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *HabitsRmCmd) Run(ctx *Context) error {
	snap, err := ctx.RequireSetup()
	if err != nil {
		return err
	}

	release, err := ctx.BeginWrite()
	if err != nil {
		return err
	}
	defer release()

	habits, err := ctx.Plans.SetupHabits(snap.User.ID)
	if err != nil {
		return err
	}
	h, err := resolveHabit(habits, c.Habit)
	if err != nil {
		return err
	}

	habits, err = ctx.Plans.DeleteHabit(snap.User.ID, h.ID)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Removed habit: %s\n", h.Name)
	printHabits(habits)
	return nil
}

type HabitsRenameCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Name  string `arg:"" optional:"" help:"New name (prompted when omitted)."`
}

func (c *HabitsRenameCmd) Run(ctx *Context) error {
	snap, err := ctx.RequireSetup()
	if err != nil {
		return err
	}

	release, err := ctx.BeginWrite()
	if err != nil {
		return err
	}
	defer release()

	habits, err := ctx.Plans.SetupHabits(snap.User.ID)
	if err != nil {
		return err
	}
	h, err := resolveHabit(habits, c.Habit)
	if err != nil {
		return err
	}

	name := c.Name
	if strings.TrimSpace(name) == "" {
		name = h.Name
		if err := forms.NewRenameForm(&name).Run(); err != nil {
			return err
		}
	}

	habits, err = ctx.Plans.RenameHabit(snap.User.ID, h.ID, name)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Renamed %q to %q\n", h.Name, strings.TrimSpace(name))
	printHabits(habits)
	return nil
}

type HabitsResetCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitsResetCmd) Run(ctx *Context) error {
	snap, err := ctx.RequireSetup()
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		if err := forms.NewConfirmForm("Replace your setup list with the default habits?", &confirmed).Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	release, err := ctx.BeginWrite()
	if err != nil {
		return err
	}
	defer release()

	habits, err := ctx.Plans.ResetSetupHabits(snap.User.ID)
	if err != nil {
		return err
	}
	fmt.Println("✓ Restored the default habits")
	printHabits(habits)
	return nil
}
