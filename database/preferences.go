package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"activitylog/models"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

const (
	tablePreferences = "preferences"
	columnKey        = "key"
	columnValue      = "value"
	columnUpdatedAt  = "updated_at"
)

// PreferenceStore keeps the filter preferences as one JSONB row per key.
type PreferenceStore struct {
	db  *DB
	key string
}

// NewPreferenceStore stores under key, or models.PreferencesKey when key is
// empty.
func NewPreferenceStore(db *DB, key string) *PreferenceStore {
	if key == "" {
		key = models.PreferencesKey
	}
	return &PreferenceStore{db: db, key: key}
}

// LoadPreferences returns nil, nil when no row exists.
func (s *PreferenceStore) LoadPreferences(ctx context.Context) (*models.Preferences, error) {
	start := time.Now()
	defer func() {
		log.Debugf("LoadPreferences: duration=%v key=%s", time.Since(start), s.key)
	}()

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, columnValue, tablePreferences, columnKey)

	var raw []byte
	err := s.db.Pool.QueryRow(ctx, query, s.key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	var p models.Preferences
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("malformed preferences: %w", err)
	}
	return &p, nil
}

func (s *PreferenceStore) SavePreferences(ctx context.Context, p models.Preferences) error {
	start := time.Now()
	defer func() {
		log.Debugf("SavePreferences: duration=%v key=%s", time.Since(start), s.key)
	}()

	value, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, NOW())
		ON CONFLICT (%s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = NOW()
	`, tablePreferences, columnKey, columnValue, columnUpdatedAt,
		columnKey,
		columnValue, columnValue, columnUpdatedAt)

	if _, err := s.db.Pool.Exec(ctx, query, s.key, value); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// DeletePreferences removes the stored row. Missing rows are not an error.
func (s *PreferenceStore) DeletePreferences(ctx context.Context) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, tablePreferences, columnKey)
	if _, err := s.db.Pool.Exec(ctx, query, s.key); err != nil {
		return fmt.Errorf("failed to delete preferences: %w", err)
	}
	return nil
}
