package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/julianstephens/thirty/internal/account"
	"github.com/julianstephens/thirty/internal/auth"
	"github.com/julianstephens/thirty/internal/backup"
	"github.com/julianstephens/thirty/internal/clock"
	"github.com/julianstephens/thirty/internal/config"
	"github.com/julianstephens/thirty/internal/constants"
	"github.com/julianstephens/thirty/internal/keyring"
	"github.com/julianstephens/thirty/internal/logger"
	"github.com/julianstephens/thirty/internal/plan"
	"github.com/julianstephens/thirty/internal/session"
	"github.com/julianstephens/thirty/internal/storage"
	"github.com/julianstephens/thirty/internal/storage/postgres"
	"github.com/julianstephens/thirty/internal/storage/sqlite"
	"github.com/julianstephens/thirty/internal/tracker"
	"github.com/julianstephens/thirty/internal/utils"
	"github.com/julianstephens/thirty/internal/writerlock"
)

var ErrNoConnectionString = errors.New("no PostgreSQL connection string configured, set " +
	constants.ConnectionEnvVar + " or run 'thirty config set-connection'")

type Context struct {
	Backend   storage.Backend
	Records   *storage.Records
	Clock     clock.Clock
	Config    config.Config
	ConfigDir string
	DataPath  string

	Accounts *account.Service
	Plans    *plan.Service
	Tracker  *tracker.Tracker
}

// NewContext wires the services over an opened backend
func NewContext(backend storage.Backend, cfg config.Config, configDir, dataPath string, clk clock.Clock) *Context {
	records := storage.NewRecords(backend)
	return &Context{
		Backend:   backend,
		Records:   records,
		Clock:     clk,
		Config:    cfg,
		ConfigDir: configDir,
		DataPath:  dataPath,
		Accounts:  account.NewService(records, auth.NewPasswordService(), clk),
		Plans:     plan.NewService(records, clk),
		Tracker:   tracker.New(records, clk),
	}
}

// OpenBackend picks a backend for dataPath: a PostgreSQL connection string,
// the "postgres" keyword (connection string from the environment or keyring),
// a .json file, or SQLite for anything else.
func OpenBackend(dataPath string) (storage.Backend, error) {
	switch {
	case postgres.IsConnString(dataPath):
		if err := postgres.ValidateConnString(dataPath); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w: store it with 'thirty config set-connection' or %s instead",
					err, constants.ConnectionEnvVar)
			}
			return nil, err
		}
		return postgres.New(dataPath), nil

	case dataPath == constants.PostgresDataPath:
		connStr, source, err := keyring.ResolveConnectionString()
		if err != nil {
			return nil, err
		}
		if source == keyring.SourceNone {
			return nil, ErrNoConnectionString
		}
		logger.Debug("Using PostgreSQL connection string", "source", source)
		return postgres.New(connStr), nil

	case strings.EqualFold(filepath.Ext(dataPath), ".json"):
		return storage.NewJSONStore(dataPath), nil

	default:
		return sqlite.NewStore(dataPath), nil
	}
}

// IsFileBackend reports whether the data lives in a local file that can be backed up
func (c *Context) IsFileBackend() bool {
	switch c.Backend.(type) {
	case *sqlite.Store, *storage.JSONStore:
		return true
	}
	return false
}

func (c *Context) Today() string {
	return utils.FormatDate(c.Clock.Now())
}

func (c *Context) Backups() *backup.Manager {
	return backup.NewManager(c.DataPath, c.Clock)
}

func (c *Context) lockPath() string {
	if c.IsFileBackend() {
		return c.DataPath
	}
	return filepath.Join(c.ConfigDir, constants.PostgresDataPath)
}

// BeginWrite takes the writer lock, reloads backends that cache records in
// memory and, when backup_on_write is set, makes sure today's backup exists.
// The returned func releases the lock.
func (c *Context) BeginWrite() (func(), error) {
	lock, err := writerlock.Acquire(c.lockPath())
	if err != nil {
		return nil, err
	}

	if r, ok := c.Backend.(storage.Reloader); ok {
		if err := r.Reload(); err != nil {
			if relErr := lock.Release(); relErr != nil {
				logger.Warn("Failed to release writer lock", "error", relErr)
			}
			return nil, fmt.Errorf("failed to reload data: %w", err)
		}
	}

	if c.Config.BackupOnWrite && c.IsFileBackend() {
		if path, created, err := c.Backups().EnsureDailyBackup(); err != nil {
			logger.Warn("Automatic backup failed", "error", err)
		} else if created {
			logger.Info("Created daily backup", "path", path)
		}
	}

	return func() {
		if err := lock.Release(); err != nil {
			logger.Warn("Failed to release writer lock", "error", err)
		}
	}, nil
}

func (c *Context) Session() (session.Snapshot, error) {
	return session.Resolve(c.Accounts, c.Plans)
}

// RequireActive demands a logged-in user with a plan
func (c *Context) RequireActive() (session.Snapshot, error) {
	return session.RequireState(c.Accounts, c.Plans, constants.StateActive)
}

// RequireSetup demands a logged-in user still choosing habits
func (c *Context) RequireSetup() (session.Snapshot, error) {
	return session.RequireState(c.Accounts, c.Plans, constants.StateNeedsPlan)
}

func (c *Context) RequireUser() (session.Snapshot, error) {
	return session.RequireUser(c.Accounts, c.Plans)
}
