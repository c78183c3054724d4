package main

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/thirty/internal/cli"
	"github.com/julianstephens/thirty/internal/clock"
	"github.com/julianstephens/thirty/internal/config"
	"github.com/julianstephens/thirty/internal/constants"
	apperrors "github.com/julianstephens/thirty/internal/errors"
	"github.com/julianstephens/thirty/internal/logger"
	"github.com/julianstephens/thirty/internal/storage"
	"github.com/julianstephens/thirty/internal/utils"
)

var CLI struct {
	Version   kong.VersionFlag
	Config    string `help:"Data file path, 'postgres', or a PostgreSQL connection string. Connection strings must NOT embed a password; use THIRTY_DB_CONNECTION or the OS keyring instead." type:"string"`
	ConfigDir string `help:"Directory holding config.yaml, .env, logs and the default data file." type:"path" default:"${config_dir}"`
	Timezone  string `help:"Override the configured timezone for this run."`
	Debug     bool   `help:"Enable debug logging to stderr."`

	Init     cli.InitCmd     `cmd:"" help:"Initialize thirty storage."`
	Signup   cli.SignupCmd   `cmd:"" help:"Create an account and log in."`
	Login    cli.LoginCmd    `cmd:"" help:"Log in to an existing account."`
	Logout   cli.LogoutCmd   `cmd:"" help:"Log out."`
	Whoami   cli.WhoamiCmd   `cmd:"" help:"Show the current user and challenge state."`
	Habits   cli.HabitsCmd   `cmd:"" help:"Choose the habits for your challenge."`
	Plan     cli.PlanCmd     `cmd:"" help:"Create or show your 30-day plan."`
	Toggle   cli.ToggleCmd   `cmd:"" help:"Toggle a habit for a day."`
	Today    cli.TodayCmd    `cmd:"" help:"Show today's habits."`
	Streak   cli.StreakCmd   `cmd:"" help:"Show the current streak."`
	Calendar cli.CalendarCmd `cmd:"" help:"Show the challenge calendar."`
	Status   cli.StatusCmd   `cmd:"" help:"Show challenge statistics."`
	Backup   cli.BackupCmd   `cmd:"" help:"Manage data backups."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Settings cli.ConfigCmd   `cmd:"" name:"config" help:"Manage settings and the PostgreSQL connection."`
	Tui      cli.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("A 30-day habit challenge tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":    constants.Version,
			"config_dir": constants.DefaultConfigDir,
		},
	)

	apperrors.Fatal(run(ctx))
}

func run(ctx *kong.Context) error {
	configDir, err := config.ExpandPath(CLI.ConfigDir)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := config.LoadEnv(configDir); err != nil {
		return err
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	if CLI.Timezone != "" {
		if !utils.ValidateTimezone(CLI.Timezone) {
			return fmt.Errorf("invalid timezone: %s", CLI.Timezone)
		}
		cfg.Timezone = CLI.Timezone
	}

	loc, err := utils.LoadLocation(cfg.Timezone)
	if err != nil {
		return err
	}
	clk := clock.SystemClock{Location: loc}

	dataPath, err := config.ResolveDataPath(CLI.Config, cfg, configDir)
	if err != nil {
		return err
	}

	command := ctx.Command()
	configOnly := strings.HasPrefix(command, "config")

	var backend storage.Backend
	backend, err = cli.OpenBackend(dataPath)
	if err != nil && !configOnly {
		return err
	}
	if backend != nil {
		defer func() {
			if err := backend.Close(); err != nil {
				logger.Warn("Failed to close data store", "error", err)
			}
		}()
	}

	// init creates the store itself; config commands never touch it
	if backend != nil && command != "init" && !configOnly {
		if err := backend.Load(); err != nil {
			return err
		}
	}

	logger.Debug("Starting command", "command", command, "data", dataPath, "timezone", cfg.Timezone)

	appCtx := cli.NewContext(backend, cfg, configDir, dataPath, clk)
	return ctx.Run(appCtx)
}
