package cli

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/thirty/internal/clock"
	"github.com/julianstephens/thirty/internal/config"
	"github.com/julianstephens/thirty/internal/constants"
	"github.com/julianstephens/thirty/internal/storage"
	"github.com/julianstephens/thirty/internal/storage/postgres"
	"github.com/julianstephens/thirty/internal/storage/sqlite"
)

var testNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func setupTestContext(t *testing.T) *Context {
	t.Helper()
	t.Setenv("THIRTY_PASSWORD", "")

	dir := t.TempDir()
	dataPath := filepath.Join(dir, constants.DefaultDataFile)

	store := sqlite.NewStore(dataPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	cfg := config.Config{Timezone: "UTC", BackupOnWrite: true}
	return NewContext(store, cfg, dir, dataPath, clock.Fixed(testNow))
}

func signUp(t *testing.T, ctx *Context) {
	t.Helper()
	cmd := &SignupCmd{Name: "Ada", Email: "ada@example.com", Password: "secret-pass"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
}

func createPlan(t *testing.T, ctx *Context) {
	t.Helper()
	signUp(t, ctx)
	if err := (&PlanCreateCmd{Yes: true}).Run(ctx); err != nil {
		t.Fatalf("plan create failed: %v", err)
	}
}

func TestOpenBackend(t *testing.T) {
	gokeyring.MockInit()

	tests := []struct {
		name    string
		path    string
		env     string
		want    any
		wantErr error
	}{
		{name: "sqlite file", path: "/tmp/thirty.db", want: &sqlite.Store{}},
		{name: "no extension", path: "/tmp/thirty", want: &sqlite.Store{}},
		{name: "json file", path: "/tmp/thirty.json", want: &storage.JSONStore{}},
		{name: "upper case json", path: "/tmp/THIRTY.JSON", want: &storage.JSONStore{}},
		{name: "connection string", path: "postgres://ada@localhost:5432/thirty", want: &postgres.Store{}},
		{name: "embedded password", path: "postgres://ada:pw@localhost:5432/thirty", wantErr: postgres.ErrEmbeddedCredentials},
		{name: "keyword without connection", path: constants.PostgresDataPath, wantErr: ErrNoConnectionString},
		{name: "keyword with env", path: constants.PostgresDataPath, env: "postgres://ada@localhost/thirty", want: &postgres.Store{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(constants.ConnectionEnvVar, tt.env)

			backend, err := OpenBackend(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			switch tt.want.(type) {
			case *sqlite.Store:
				if _, ok := backend.(*sqlite.Store); !ok {
					t.Errorf("expected sqlite store, got %T", backend)
				}
			case *storage.JSONStore:
				if _, ok := backend.(*storage.JSONStore); !ok {
					t.Errorf("expected JSON store, got %T", backend)
				}
			case *postgres.Store:
				if _, ok := backend.(*postgres.Store); !ok {
					t.Errorf("expected postgres store, got %T", backend)
				}
			}
		})
	}
}

func TestSignupCmd(t *testing.T) {
	ctx := setupTestContext(t)
	signUp(t, ctx)

	if !ctx.Accounts.IsAuthenticated() {
		t.Fatal("expected to be logged in after signup")
	}

	backups, err := ctx.Backups().ListBackups()
	if err != nil {
		t.Fatalf("failed to list backups: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected the first write to create a daily backup, got %d", len(backups))
	}

	if err := (&WhoamiCmd{}).Run(ctx); err != nil {
		t.Errorf("whoami failed: %v", err)
	}
}

func TestSignupCmd_InvalidEmail(t *testing.T) {
	ctx := setupTestContext(t)

	cmd := &SignupCmd{Name: "Ada", Email: "not-an-email", Password: "secret-pass"}
	if err := cmd.Run(ctx); err == nil {
		t.Fatal("expected an invalid email to be rejected")
	}
	if ctx.Accounts.IsAuthenticated() {
		t.Error("expected no session after a rejected signup")
	}
}

func TestLogoutCmd(t *testing.T) {
	ctx := setupTestContext(t)
	signUp(t, ctx)

	if err := (&LogoutCmd{}).Run(ctx); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if ctx.Accounts.IsAuthenticated() {
		t.Error("expected to be logged out")
	}

	login := &LoginCmd{Email: "ada@example.com", Password: "secret-pass"}
	if err := login.Run(ctx); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !ctx.Accounts.IsAuthenticated() {
		t.Error("expected to be logged in again")
	}
}

func TestHabitsCmd_AddAndRemove(t *testing.T) {
	ctx := setupTestContext(t)
	signUp(t, ctx)

	snap, err := ctx.RequireSetup()
	if err != nil {
		t.Fatalf("expected setup state: %v", err)
	}
	before, err := ctx.Plans.SetupHabits(snap.User.ID)
	if err != nil {
		t.Fatalf("failed to read setup habits: %v", err)
	}

	add := &HabitsAddCmd{Name: "Journal", Emoji: "📓", Category: "growth"}
	if err := add.Run(ctx); err != nil {
		t.Fatalf("habits add failed: %v", err)
	}
	habits, _ := ctx.Plans.SetupHabits(snap.User.ID)
	if len(habits) != len(before)+1 {
		t.Fatalf("expected %d habits, got %d", len(before)+1, len(habits))
	}

	if err := (&HabitsRmCmd{Habit: "journal"}).Run(ctx); err != nil {
		t.Fatalf("habits rm failed: %v", err)
	}
	habits, _ = ctx.Plans.SetupHabits(snap.User.ID)
	if len(habits) != len(before) {
		t.Errorf("expected %d habits after removal, got %d", len(before), len(habits))
	}

	if err := (&HabitsRmCmd{Habit: "does-not-exist"}).Run(ctx); err == nil {
		t.Error("expected an unknown habit to be rejected")
	}
}

func TestHabitsCmd_RequiresLogin(t *testing.T) {
	ctx := setupTestContext(t)

	if err := (&HabitsListCmd{}).Run(ctx); err == nil {
		t.Error("expected habits list to require a session")
	}
}

func TestPlanCreateCmd(t *testing.T) {
	ctx := setupTestContext(t)
	createPlan(t, ctx)

	snap, err := ctx.RequireActive()
	if err != nil {
		t.Fatalf("expected an active plan: %v", err)
	}
	if snap.Plan.StartDate != "2025-01-10" {
		t.Errorf("expected plan to start today, got %s", snap.Plan.StartDate)
	}

	if err := (&PlanCreateCmd{Yes: true}).Run(ctx); err == nil {
		t.Error("expected a second plan to be rejected")
	}
	if err := (&PlanShowCmd{}).Run(ctx); err != nil {
		t.Errorf("plan show failed: %v", err)
	}
}

func TestPlanCreateCmd_SelectedHabits(t *testing.T) {
	ctx := setupTestContext(t)
	signUp(t, ctx)

	cmd := &PlanCreateCmd{Yes: true, Habits: []string{"1", "2"}, Start: "2025-01-12"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("plan create failed: %v", err)
	}

	snap, err := ctx.RequireActive()
	if err != nil {
		t.Fatalf("expected an active plan: %v", err)
	}
	if len(snap.Plan.Habits) != 2 {
		t.Errorf("expected 2 habits, got %d", len(snap.Plan.Habits))
	}
	if snap.Plan.StartDate != "2025-01-12" {
		t.Errorf("expected start 2025-01-12, got %s", snap.Plan.StartDate)
	}
}

func TestPlanCreateCmd_PastStart(t *testing.T) {
	ctx := setupTestContext(t)
	signUp(t, ctx)

	if err := (&PlanCreateCmd{Yes: true, Start: "2025-01-01"}).Run(ctx); err == nil {
		t.Error("expected a past start date to be rejected")
	}
}

func TestToggleCmd(t *testing.T) {
	ctx := setupTestContext(t)
	createPlan(t, ctx)
	snap, _ := ctx.RequireActive()
	habitID := snap.Plan.Habits[0].ID

	isDone := func() bool {
		tracked, err := ctx.Tracker.Load(snap.User.ID)
		if err != nil {
			t.Fatalf("failed to load tracking: %v", err)
		}
		for _, th := range tracked {
			if th.ID == habitID {
				return th.CompletedDays.Has("2025-01-10")
			}
		}
		t.Fatalf("habit %s not tracked", habitID)
		return false
	}

	if err := (&ToggleCmd{Habit: habitID}).Run(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !isDone() {
		t.Error("expected habit to be done after toggle")
	}

	if err := (&ToggleCmd{Habit: habitID, Done: true}).Run(ctx); err != nil {
		t.Fatalf("toggle --done failed: %v", err)
	}
	if !isDone() {
		t.Error("expected --done to keep the habit done")
	}

	if err := (&ToggleCmd{Habit: habitID}).Run(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if isDone() {
		t.Error("expected the second toggle to clear the habit")
	}
}

func TestToggleCmd_Rejects(t *testing.T) {
	ctx := setupTestContext(t)
	createPlan(t, ctx)

	tests := []struct {
		name string
		cmd  ToggleCmd
	}{
		{name: "future date", cmd: ToggleCmd{Habit: "1", Date: "2025-01-11"}},
		{name: "bad date", cmd: ToggleCmd{Habit: "1", Date: "01/10/2025"}},
		{name: "unknown habit", cmd: ToggleCmd{Habit: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Run(ctx); err == nil {
				t.Error("expected an error")
			}
		})
	}

	err := (&ToggleCmd{Habit: "1", Date: "2025-01-11"}).Run(ctx)
	if !errors.Is(err, ErrFutureDate) {
		t.Errorf("expected ErrFutureDate, got %v", err)
	}
}

func TestToggleCmd_RequiresPlan(t *testing.T) {
	ctx := setupTestContext(t)
	signUp(t, ctx)

	if err := (&ToggleCmd{Habit: "1"}).Run(ctx); err == nil {
		t.Error("expected toggle to require a plan")
	}
}

func TestReportCmds(t *testing.T) {
	ctx := setupTestContext(t)
	createPlan(t, ctx)
	if err := (&ToggleCmd{Habit: "1"}).Run(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	cmds := map[string]interface{ Run(*Context) error }{
		"today":    &TodayCmd{},
		"streak":   &StreakCmd{},
		"calendar": &CalendarCmd{Plain: true},
		"status":   &StatusCmd{},
		"habits":   &HabitsListCmd{},
	}
	for name, cmd := range cmds {
		t.Run(name, func(t *testing.T) {
			if err := cmd.Run(ctx); err != nil {
				t.Errorf("%s failed: %v", name, err)
			}
		})
	}
}

func TestBackupCmds(t *testing.T) {
	ctx := setupTestContext(t)

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup list failed: %v", err)
	}

	backups, err := ctx.Backups().ListBackups()
	if err != nil {
		t.Fatalf("failed to list backups: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected 1 backup, got %d", len(backups))
	}
}

func TestBackupCmds_Unsupported(t *testing.T) {
	ctx := NewContext(storage.NewMemoryStore(), config.Default(), t.TempDir(), ":memory:", clock.Fixed(testNow))

	if err := (&BackupCreateCmd{}).Run(ctx); !errors.Is(err, ErrBackupUnsupported) {
		t.Errorf("expected ErrBackupUnsupported, got %v", err)
	}
	if err := (&BackupListCmd{}).Run(ctx); !errors.Is(err, ErrBackupUnsupported) {
		t.Errorf("expected ErrBackupUnsupported, got %v", err)
	}
}

func TestDoctorCmd(t *testing.T) {
	ctx := setupTestContext(t)
	createPlan(t, ctx)

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor failed on healthy data: %v", err)
	}
}

func TestDoctorCmd_BadTimezone(t *testing.T) {
	ctx := setupTestContext(t)
	ctx.Config.Timezone = "Mars/Olympus_Mons"

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("expected doctor to flag an invalid timezone")
	}
}

func TestBeginWrite_Exclusive(t *testing.T) {
	ctx := setupTestContext(t)
	ctx.Config.BackupOnWrite = false

	release, err := ctx.BeginWrite()
	if err != nil {
		t.Fatalf("failed to take writer lock: %v", err)
	}

	if _, err := ctx.BeginWrite(); err == nil {
		t.Error("expected a second writer to be refused")
	}

	release()
	again, err := ctx.BeginWrite()
	if err != nil {
		t.Fatalf("expected the lock to be free after release: %v", err)
	}
	again()
}

func TestBeginWrite_ReloadsJSONStore(t *testing.T) {
	t.Setenv("THIRTY_PASSWORD", "")
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "thirty.json")
	cfg := config.Config{Timezone: "UTC"}

	if err := storage.NewJSONStore(dataPath).Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	open := func() *Context {
		store := storage.NewJSONStore(dataPath)
		if err := store.Load(); err != nil {
			t.Fatalf("failed to load store: %v", err)
		}
		return NewContext(store, cfg, dir, dataPath, clock.Fixed(testNow))
	}
	first, second := open(), open()

	if err := (&SignupCmd{Name: "Ada", Email: "ada@example.com", Password: "secret-pass"}).Run(second); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if err := (&SignupCmd{Name: "Bea", Email: "bea@example.com", Password: "secret-pass"}).Run(first); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	users, err := open().Records.Users()
	if err != nil {
		t.Fatalf("failed to read users: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected both sign-ups to survive, got %d users", len(users))
	}
}

func TestConfigSetCmd(t *testing.T) {
	ctx := setupTestContext(t)

	set := &ConfigSetCmd{Key: constants.SettingTimezone, Value: "America/New_York"}
	if err := set.Run(ctx); err != nil {
		t.Fatalf("config set failed: %v", err)
	}

	cfg, err := config.Load(ctx.ConfigDir)
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if cfg.Timezone != "America/New_York" {
		t.Errorf("expected timezone to persist, got %q", cfg.Timezone)
	}

	if err := (&ConfigSetCmd{Key: "color", Value: "blue"}).Run(ctx); !errors.Is(err, config.ErrUnknownSetting) {
		t.Errorf("expected ErrUnknownSetting, got %v", err)
	}
	if err := (&ConfigSetCmd{Key: constants.SettingTimezone, Value: "Nowhere/Town"}).Run(ctx); err == nil {
		t.Error("expected an invalid timezone to be rejected")
	}
	if err := (&ConfigShowCmd{}).Run(ctx); err != nil {
		t.Errorf("config show failed: %v", err)
	}
}

func TestConfigConnectionCmds(t *testing.T) {
	gokeyring.MockInit()
	t.Setenv(constants.ConnectionEnvVar, "")
	ctx := setupTestContext(t)

	if err := (&ConfigSetConnectionCmd{ConnectionString: "not a url ==="}).Run(ctx); err == nil {
		t.Error("expected an invalid connection string to be rejected")
	}

	conn := "postgres://ada@localhost:5432/thirty"
	if err := (&ConfigSetConnectionCmd{ConnectionString: conn}).Run(ctx); err != nil {
		t.Fatalf("set-connection failed: %v", err)
	}

	backend, err := OpenBackend(constants.PostgresDataPath)
	if err != nil {
		t.Fatalf("expected keyring connection to be used: %v", err)
	}
	if _, ok := backend.(*postgres.Store); !ok {
		t.Errorf("expected postgres store, got %T", backend)
	}

	if err := (&ConfigClearConnectionCmd{}).Run(ctx); err != nil {
		t.Fatalf("clear-connection failed: %v", err)
	}
	if _, err := OpenBackend(constants.PostgresDataPath); !errors.Is(err, ErrNoConnectionString) {
		t.Errorf("expected ErrNoConnectionString after clearing, got %v", err)
	}
	if err := (&ConfigClearConnectionCmd{}).Run(ctx); err != nil {
		t.Errorf("clearing twice should not fail: %v", err)
	}
}
