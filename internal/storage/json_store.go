package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/julianstephens/thirty/internal/constants"
)

// Document is the on-disk shape of a JSON data file
type Document struct {
	Version int                        `json:"version"`
	Records map[string]json.RawMessage `json:"records"`
}

// JSONStore keeps every record in a single indented JSON document
type JSONStore struct {
	path string

	mu  sync.Mutex
	doc *Document
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.doc = &Document{
		Version: constants.RecordDocumentVersion,
		Records: make(map[string]json.RawMessage),
	}
	return s.save(s.doc)
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Version > constants.RecordDocumentVersion {
		return fmt.Errorf("storage version (%d) is newer than supported version (%d) - please upgrade the application", doc.Version, constants.RecordDocumentVersion)
	}
	if doc.Records == nil {
		doc.Records = make(map[string]json.RawMessage)
	}

	s.doc = doc
	return nil
}

// Reload re-reads the document so writes made by other processes are not lost
func (s *JSONStore) Reload() error {
	return s.Load()
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

// save writes doc to a sibling temp file and renames it over the data file
func (s *JSONStore) save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write storage: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	raw, ok := s.doc.Records[key]
	if !ok {
		return nil, ErrNotFound
	}

	// the document is indented on disk; hand back the compact form that was stored
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

func (s *JSONStore) Put(key string, value []byte) error {
	return s.Apply([]Op{{Key: key, Value: value}})
}

func (s *JSONStore) Delete(key string) error {
	return s.Apply([]Op{{Key: key, Delete: true}})
}

func (s *JSONStore) Keys(prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	var keys []string
	for k := range s.doc.Records {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Apply builds the next document in memory and only swaps it in once it is on disk
func (s *JSONStore) Apply(ops []Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}

	next := &Document{
		Version: s.doc.Version,
		Records: make(map[string]json.RawMessage, len(s.doc.Records)+len(ops)),
	}
	for k, v := range s.doc.Records {
		next.Records[k] = v
	}

	for _, op := range ops {
		if op.Delete {
			delete(next.Records, op.Key)
			continue
		}
		if !json.Valid(op.Value) {
			return fmt.Errorf("record %s is not valid JSON", op.Key)
		}
		next.Records[op.Key] = json.RawMessage(append([]byte(nil), op.Value...))
	}

	if err := s.save(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}
