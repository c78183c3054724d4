// Package writerlock keeps two thirty processes from writing the same data file at once.
package writerlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/thirty/internal/constants"
	"github.com/julianstephens/thirty/internal/logger"
)

var (
	ErrLocked    = errors.New("another thirty process is writing to this data file")
	ErrMalformed = errors.New("lockfile is malformed")
	ErrNotHeld   = errors.New("lock is no longer held by this process")
)

// malformedGrace is how long an unreadable lockfile is still treated as held
const malformedGrace = 10 * time.Second

var (
	findProcessFunc = ps.FindProcess
	executableFunc  = os.Executable
)

// Lock is a held writer lock
type Lock struct {
	path  string
	token string
}

// Holder describes the process recorded in a lockfile
type Holder struct {
	PID        int
	Executable string
	Token      string
}

// PathFor returns the lockfile path guarding dataPath
func PathFor(dataPath string) string {
	return dataPath + constants.LockfileSuffix
}

// Acquire takes the writer lock for dataPath. A lockfile left by a dead
// process is replaced; a live holder yields ErrLocked.
func Acquire(dataPath string) (*Lock, error) {
	path := PathFor(dataPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	exe, err := executableFunc()
	if err != nil {
		exe = constants.AppName
	}
	l := &Lock{path: path, token: uuid.New().String()}
	line := formatHolder(Holder{PID: os.Getpid(), Executable: filepath.Base(exe), Token: l.token})

	for attempt := 0; attempt < 2; attempt++ {
		err := writeExclusive(path, line)
		if err == nil {
			logger.Debug("Acquired writer lock", "path", path)
			return l, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create lockfile: %w", err)
		}

		content, info, err := readLockfile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read lockfile: %w", err)
		}

		holder, err := parseHolder(content)
		if err == nil && isAlive(holder) {
			return nil, fmt.Errorf("%w (pid %d)", ErrLocked, holder.PID)
		}
		if err != nil && time.Since(info.ModTime()) < malformedGrace {
			return nil, fmt.Errorf("%w (lockfile is being written)", ErrLocked)
		}

		logger.Warn("Removing stale writer lock", "path", path, "error", err)
		if err := removeIfUnchanged(path, content); err != nil {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}

	return nil, ErrLocked
}

// Release removes the lockfile if it still carries this lock's token
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	holder, err := ReadHolder(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotHeld
		}
		return err
	}
	if holder.Token != l.token {
		return ErrNotHeld
	}
	if err := os.Remove(l.path); err != nil {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	logger.Debug("Released writer lock", "path", l.path)
	return nil
}

func (l *Lock) Path() string {
	return l.path
}

// ReadHolder parses the pid|executable|token line of a lockfile
func ReadHolder(path string) (Holder, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Holder{}, err
	}
	return parseHolder(content)
}

func parseHolder(content []byte) (Holder, error) {
	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return Holder{}, ErrMalformed
	}

	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return Holder{}, fmt.Errorf("%w: invalid process ID", ErrMalformed)
	}
	if strings.TrimSpace(parts[2]) == "" {
		return Holder{}, fmt.Errorf("%w: token is empty", ErrMalformed)
	}

	return Holder{PID: pid, Executable: parts[1], Token: parts[2]}, nil
}

func readLockfile(path string) ([]byte, os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return content, info, nil
}

// removeIfUnchanged deletes path only while it still holds content, so a lock
// published by another process in the meantime survives
func removeIfUnchanged(path string, content []byte) error {
	current, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if string(current) != string(content) {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func formatHolder(h Holder) string {
	return fmt.Sprintf("%d|%s|%s\n", h.PID, h.Executable, h.Token)
}

// writeExclusive publishes content at path only if path does not exist yet.
// The line is written to a temp file first and hard-linked into place, so
// readers never see a partial lockfile.
func writeExclusive(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		return err
	}
	return os.Link(tmpPath, path)
}

// isAlive reports whether the recorded process still runs the same program.
// Process names may be truncated by the OS, so either side may be a prefix.
func isAlive(h Holder) bool {
	process, err := findProcessFunc(h.PID)
	if err != nil || process == nil {
		return false
	}
	name := process.Executable()
	if name == "" || h.Executable == "" {
		return true
	}
	return strings.HasPrefix(h.Executable, name) || strings.HasPrefix(name, h.Executable)
}
