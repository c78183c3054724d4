package storage

import "errors"

// ErrNotFound is returned by Backend.Get for an absent key
var ErrNotFound = errors.New("record not found")

// Op is one write in an atomic batch. Delete ignores Value.
type Op struct {
	Key    string
	Value  []byte
	Delete bool
}

// Backend is a key-value store of JSON records
type Backend interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Records
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)

	// Apply performs every op or none of them
	Apply(ops []Op) error

	// Utils
	GetConfigPath() string
}

// Reloader is a Backend that caches records in memory and can re-read them
// from disk. Writers reload after taking the writer lock.
type Reloader interface {
	Reload() error
}
