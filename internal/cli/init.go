package cli

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
)

type InitCmd struct {
	Force bool `help:"Delete an existing data file before initializing."`
	Quiet bool `help:"Skip the banner."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if c.Force && ctx.IsFileBackend() {
		path := ctx.Backend.GetConfigPath()
		if _, err := os.Stat(path); err == nil {
			if err := ctx.Backend.Close(); err != nil {
				return fmt.Errorf("failed to close existing data file: %w", err)
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to delete existing data file: %w", err)
			}
			fmt.Printf("Deleted existing data file at: %s\n", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing data file: %w", err)
		}
	}

	if err := ctx.Backend.Init(); err != nil {
		return err
	}

	if !c.Quiet {
		figure.NewFigure("thirty", "", true).Print()
		fmt.Println()
	}
	fmt.Printf("Initialized thirty storage at: %s\n", ctx.Backend.GetConfigPath())
	fmt.Println("Next: run 'thirty signup' to create an account.")
	return nil
}
