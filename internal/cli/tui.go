package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/thirty/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	// held for the whole session
	release, err := ctx.BeginWrite()
	if err != nil {
		return err
	}
	defer release()

	p := tea.NewProgram(tui.NewModel(tui.Services{
		Accounts: ctx.Accounts,
		Plans:    ctx.Plans,
		Tracker:  ctx.Tracker,
		Clock:    ctx.Clock,
	}), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("alas, there's been an error: %w", err)
	}
	return nil
}
