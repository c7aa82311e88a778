package database

import (
	"context"
	"testing"
	"time"

	"activitylog/models"
	"activitylog/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ store.PreferenceStore = (*PreferenceStore)(nil)

func TestPreferenceStore_Integration(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)
	ctx := context.Background()

	prefs := NewPreferenceStore(db, "")

	t.Run("missing row loads as nil", func(t *testing.T) {
		p, err := prefs.LoadPreferences(ctx)
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("save then load", func(t *testing.T) {
		off := false
		want := models.Preferences{
			Filters: models.PersistedFilters{
				Categories: []string{"tts", "export"},
				Severities: []string{"error"},
				TimeRange:  "1hour",
			},
			AutoScroll: &off,
		}
		require.NoError(t, prefs.SavePreferences(ctx, want))

		got, err := prefs.LoadPreferences(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want, *got)
	})

	t.Run("save overwrites", func(t *testing.T) {
		next := models.PreferencesFrom(models.DefaultFilterState())
		require.NoError(t, prefs.SavePreferences(ctx, next))

		got, err := prefs.LoadPreferences(ctx)
		require.NoError(t, err)
		assert.Equal(t, next, *got)

		var rows int
		require.NoError(t, db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM preferences").Scan(&rows))
		assert.Equal(t, 1, rows)
	})

	t.Run("keys are isolated", func(t *testing.T) {
		other := NewPreferenceStore(db, "other-profile")
		p, err := other.LoadPreferences(ctx)
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, prefs.DeletePreferences(ctx))
		require.NoError(t, prefs.DeletePreferences(ctx))

		p, err := prefs.LoadPreferences(ctx)
		require.NoError(t, err)
		assert.Nil(t, p)
	})
}

func TestPreferenceStore_MalformedRow_Integration(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)
	ctx := context.Background()

	_, err := db.Pool.Exec(ctx,
		"INSERT INTO preferences (key, value) VALUES ($1, $2::jsonb)",
		models.PreferencesKey, `{"filters": "not an object"}`)
	require.NoError(t, err)

	_, err = NewPreferenceStore(db, "").LoadPreferences(ctx)
	assert.ErrorContains(t, err, "malformed preferences")
}

// Store.Load over a Postgres backend restores everything but the search query.
func TestStoreRoundTrip_Integration(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)
	ctx := context.Background()

	prefs := NewPreferenceStore(db, "")

	s := store.New(store.WithPreferences(prefs), store.WithDebounce(0))
	s.SetCategories(models.NewCategorySet(models.CategoryExport))
	require.NoError(t, s.SetTimeRange(models.TimeRangeToday))
	s.SetSearchQuery("failed")
	s.Close()

	reloaded := store.New(store.WithPreferences(prefs), store.WithDebounce(10*time.Millisecond))
	defer reloaded.Close()
	reloaded.Load(ctx)

	f := reloaded.Filters()
	assert.Equal(t, []models.Category{models.CategoryExport}, f.Categories.List())
	assert.Equal(t, models.TimeRangeToday, f.TimeRange)
	assert.Empty(t, f.SearchQuery)
}
