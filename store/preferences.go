package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"activitylog/models"

	log "github.com/sirupsen/logrus"
)

// PreferenceStore persists the filter preferences. LoadPreferences returns
// nil, nil when nothing has been saved yet.
type PreferenceStore interface {
	LoadPreferences(ctx context.Context) (*models.Preferences, error)
	SavePreferences(ctx context.Context, p models.Preferences) error
}

// NopPreferences never stores anything.
type NopPreferences struct{}

func (NopPreferences) LoadPreferences(context.Context) (*models.Preferences, error) {
	return nil, nil
}

func (NopPreferences) SavePreferences(context.Context, models.Preferences) error {
	return nil
}

// MemoryPreferences keeps the encoded preferences in memory. Raw is exposed
// so callers can seed malformed data.
type MemoryPreferences struct {
	mu    sync.Mutex
	Raw   []byte
	Saves int
	Err   error
}

func (m *MemoryPreferences) LoadPreferences(context.Context) (*models.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Raw == nil {
		return nil, nil
	}
	return decodePreferences(m.Raw)
}

func (m *MemoryPreferences) SavePreferences(_ context.Context, p models.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	m.Raw = b
	m.Saves++
	return nil
}

func (m *MemoryPreferences) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Saves
}

// FilePreferences stores the preferences as a JSON document on disk.
type FilePreferences struct {
	Path string
}

// DefaultPreferencesPath is <user config dir>/activitylog/<PreferencesKey>.json.
func DefaultPreferencesPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return filepath.Join(dir, "activitylog", models.PreferencesKey+".json"), nil
}

func (p FilePreferences) LoadPreferences(context.Context) (*models.Preferences, error) {
	b, err := os.ReadFile(p.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	return decodePreferences(b)
}

// SavePreferences writes through a temp file so a crash never leaves a
// truncated document behind.
func (p FilePreferences) SavePreferences(_ context.Context, prefs models.Preferences) error {
	b, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences dir: %w", err)
	}
	tmp := p.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp, p.Path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	return nil
}

func decodePreferences(b []byte) (*models.Preferences, error) {
	var p models.Preferences
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("malformed preferences: %w", err)
	}
	return &p, nil
}

const saveTimeout = 5 * time.Second

// saver coalesces preference writes: each schedule supersedes the pending
// one and restarts the delay.
type saver struct {
	store PreferenceStore
	delay time.Duration
	log   *log.Entry

	mu      sync.Mutex
	pending *models.Preferences
	timer   *time.Timer

	writeMu sync.Mutex
}

func newSaver(store PreferenceStore, delay time.Duration, l *log.Entry) *saver {
	return &saver{store: store, delay: delay, log: l}
}

func (s *saver) schedule(p models.Preferences) {
	if s.delay <= 0 {
		s.write(p)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &p
	if s.timer == nil {
		s.timer = time.AfterFunc(s.delay, s.flush)
		return
	}
	s.timer.Reset(s.delay)
}

func (s *saver) flush() {
	s.mu.Lock()
	p := s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	if p != nil {
		s.write(*p)
	}
}

func (s *saver) close() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	s.flush()
}

// write never fails the caller; in-memory state stays authoritative.
func (s *saver) write(p models.Preferences) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	start := time.Now()
	if err := s.store.SavePreferences(ctx, p); err != nil {
		s.log.WithError(err).Warn("failed to save preferences")
		return
	}
	s.log.WithField("duration", time.Since(start)).Debug("SavePreferences")
}
