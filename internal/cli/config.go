package cli

import (
	"errors"
	"fmt"

	"github.com/julianstephens/thirty/internal/config"
	"github.com/julianstephens/thirty/internal/constants"
	"github.com/julianstephens/thirty/internal/keyring"
	"github.com/julianstephens/thirty/internal/storage/postgres"
)

type ConfigCmd struct {
	Show            ConfigShowCmd            `cmd:"" help:"Show current settings." default:"1"`
	Set             ConfigSetCmd             `cmd:"" help:"Change a setting."`
	SetConnection   ConfigSetConnectionCmd   `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
	ClearConnection ConfigClearConnectionCmd `cmd:"" help:"Remove the stored PostgreSQL connection string."`
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(ctx *Context) error {
	cfg, err := config.Load(ctx.ConfigDir)
	if err != nil {
		return err
	}

	fmt.Println("Current Settings:")
	for _, key := range config.Keys() {
		value, _ := cfg.Get(key)
		if value == "" {
			value = "(default)"
		}
		fmt.Printf("  %-16s %s\n", key+":", value)
	}
	fmt.Printf("\n  Config file:     %s\n", config.FilePath(ctx.ConfigDir))
	fmt.Printf("  Data path:       %s\n", ctx.DataPath)

	_, source, err := keyring.ResolveConnectionString()
	switch {
	case err != nil:
		fmt.Printf("  Connection:      unavailable (%v)\n", err)
	case source == keyring.SourceNone:
		fmt.Printf("  Connection:      not configured\n")
	default:
		fmt.Printf("  Connection:      configured (%s)\n", source)
	}
	return nil
}

type ConfigSetCmd struct {
	Key   string `arg:"" help:"Setting name (timezone, backup_on_write, data_path)."`
	Value string `arg:"" help:"New value."`
}

func (c *ConfigSetCmd) Run(ctx *Context) error {
	cfg, err := config.Load(ctx.ConfigDir)
	if err != nil {
		return err
	}
	if err := cfg.Set(c.Key, c.Value); err != nil {
		if errors.Is(err, config.ErrUnknownSetting) {
			return fmt.Errorf("%w (valid settings: %v)", err, config.Keys())
		}
		return err
	}
	if err := config.Save(ctx.ConfigDir, cfg); err != nil {
		return err
	}

	fmt.Printf("Set %s = %s\n", c.Key, c.Value)
	return nil
}

type ConfigSetConnectionCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string."`
}

func (c *ConfigSetConnectionCmd) Run(ctx *Context) error {
	if err := postgres.ValidateConnString(c.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return err
		}
		fmt.Println("⚠ Connection string contains a password; it will only be stored in the OS keyring.")
	}

	if err := keyring.SetConnectionString(c.ConnectionString); err != nil {
		return fmt.Errorf("%w (set %s instead)", err, constants.ConnectionEnvVar)
	}

	fmt.Println("✓ Connection string stored in OS keyring.")
	fmt.Printf("  Use it with: thirty --config %s\n", constants.PostgresDataPath)
	return nil
}

type ConfigClearConnectionCmd struct{}

func (c *ConfigClearConnectionCmd) Run(ctx *Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Println("No connection string stored.")
			return nil
		}
		return err
	}
	fmt.Println("✓ Connection string removed from OS keyring.")
	return nil
}
