package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/thirty/internal/constants"
	"github.com/julianstephens/thirty/internal/keyring"
	"github.com/julianstephens/thirty/internal/storage/postgres"
	"github.com/julianstephens/thirty/internal/utils"
	"github.com/julianstephens/thirty/internal/validation"
	"github.com/julianstephens/thirty/internal/writerlock"
)

type schemaReporter interface {
	SchemaStatus() (current, latest int, err error)
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	reachable := false

	if err := checkStoreReachable(ctx); err != nil {
		fmt.Printf("❌ Data store reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Data store reachable: OK (%s)\n", ctx.Backend.GetConfigPath())
		reachable = true
	}

	if msg, err := checkSchemaVersion(ctx); err != nil {
		fmt.Printf("❌ Schema version: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Schema version: %s\n", msg)
	}

	if reachable {
		result, err := checkValidation(ctx)
		switch {
		case err != nil:
			fmt.Printf("❌ Data validation: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		case result.HasErrors():
			fmt.Printf("❌ Data validation: FAIL\n")
			hasError = true
		case result.HasConflicts():
			fmt.Printf("⚠ Data validation: WARNING\n")
		default:
			fmt.Printf("✓ Data validation: OK\n")
		}
		if result.HasConflicts() {
			for _, c := range result.Conflicts {
				fmt.Printf("   - [%s] %s\n", c.Severity(), c.Description)
			}
		}
	} else {
		fmt.Printf("⊘ Data validation: SKIPPED (data store not reachable)\n")
	}

	if msg, err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: %s\n", msg)
	}

	if msg, err := checkWriterLock(ctx); err != nil {
		fmt.Printf("⚠ Writer lock: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Writer lock: %s\n", msg)
	}

	if !ctx.IsFileBackend() {
		if keyring.IsAvailable() {
			fmt.Printf("✓ OS keyring: OK\n")
		} else {
			fmt.Printf("⚠ OS keyring: not available, use %s\n", constants.ConnectionEnvVar)
		}
	}

	if err := checkClockTimezone(ctx); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK (today is %s in %s)\n", ctx.Today(), ctx.Config.Timezone)
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *Context) error {
	if _, err := ctx.Backend.Keys(""); err != nil {
		return fmt.Errorf("failed to read records: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *Context) (string, error) {
	reporter, ok := ctx.Backend.(schemaReporter)
	if !ok {
		return "not applicable", nil
	}

	current, latest, err := reporter.SchemaStatus()
	if err != nil {
		return "", err
	}
	if current != latest {
		return "", fmt.Errorf("schema version %d does not match expected version %d", current, latest)
	}
	return fmt.Sprintf("OK (v%d)", current), nil
}

func checkValidation(ctx *Context) (validation.ValidationResult, error) {
	ds, err := validation.LoadDataset(ctx.Records)
	if err != nil {
		return validation.ValidationResult{}, err
	}
	return validation.New().Validate(ds), nil
}

func checkBackupsPresent(ctx *Context) (string, error) {
	if !ctx.IsFileBackend() {
		if _, ok := ctx.Backend.(*postgres.Store); ok {
			return "not applicable (use pg_dump for PostgreSQL)", nil
		}
		return "not applicable", nil
	}

	backups, err := ctx.Backups().ListBackups()
	if err != nil {
		return "", fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return "", fmt.Errorf("no backups found, run 'thirty backup create'")
	}

	latest := backups[0]
	if age := ctx.Clock.Now().Sub(latest.Timestamp); age > 7*24*time.Hour {
		return "", fmt.Errorf("latest backup is %s old", humanize.Time(latest.Timestamp))
	}
	return fmt.Sprintf("OK (%d, latest %s)", len(backups), humanize.Time(latest.Timestamp)), nil
}

func checkWriterLock(ctx *Context) (string, error) {
	holder, err := writerlock.ReadHolder(writerlock.PathFor(ctx.lockPath()))
	if err != nil {
		return "free", nil
	}
	return "", fmt.Errorf("held by %s (pid %d); remove %s if that process is gone",
		holder.Executable, holder.PID, writerlock.PathFor(ctx.lockPath()))
}

func checkClockTimezone(ctx *Context) error {
	now := ctx.Clock.Now()
	if now.Year() < 2000 || now.Year() > 2100 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if !utils.ValidateTimezone(ctx.Config.Timezone) {
		return fmt.Errorf("invalid timezone %q in configuration", ctx.Config.Timezone)
	}
	return nil
}
