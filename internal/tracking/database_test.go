package tracking

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabaseInMemory(t *testing.T) {
	db, err := NewDatabase(":memory:")
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"play_events", "path_lookups"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
	}
}

func TestNewDatabaseCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "cache", "sounds.db")

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		INSERT INTO play_events (timestamp, session_id, event_kind, selected_path, fallback_level, muted)
		VALUES (1700000000, 'sess', 'click', 'click.wav', 1, 0)`)
	assert.NoError(t, err)
}

func TestSchemaConstraints(t *testing.T) {
	db, err := NewDatabase(":memory:")
	require.NoError(t, err)
	defer db.Close()

	t.Run("fallback level must be positive", func(t *testing.T) {
		_, err := db.Exec(`
			INSERT INTO play_events (timestamp, session_id, event_kind, selected_path, fallback_level, muted)
			VALUES (1700000000, 'sess', 'click', 'click.wav', 0, 0)`)
		assert.Error(t, err)
	})

	t.Run("muted must be boolean", func(t *testing.T) {
		_, err := db.Exec(`
			INSERT INTO play_events (timestamp, session_id, event_kind, selected_path, fallback_level, muted)
			VALUES (1700000000, 'sess', 'click', 'click.wav', 1, 2)`)
		assert.Error(t, err)
	})

	t.Run("duplicate sequence per event rejected", func(t *testing.T) {
		result, err := db.Exec(`
			INSERT INTO play_events (timestamp, session_id, event_kind, selected_path, fallback_level, muted)
			VALUES (1700000000, 'sess', 'click', 'click.wav', 1, 0)`)
		require.NoError(t, err)
		eventID, err := result.LastInsertId()
		require.NoError(t, err)

		_, err = db.Exec(
			`INSERT INTO path_lookups (event_id, path, sequence, found) VALUES (?, 'a.wav', 1, 1)`, eventID)
		require.NoError(t, err)
		_, err = db.Exec(
			`INSERT INTO path_lookups (event_id, path, sequence, found) VALUES (?, 'b.wav', 1, 0)`, eventID)
		assert.Error(t, err)
	})

	t.Run("deleting an event cascades to its lookups", func(t *testing.T) {
		result, err := db.Exec(`
			INSERT INTO play_events (timestamp, session_id, event_kind, selected_path, fallback_level, muted)
			VALUES (1700000000, 'sess', 'hover', 'hover.wav', 1, 0)`)
		require.NoError(t, err)
		eventID, err := result.LastInsertId()
		require.NoError(t, err)

		_, err = db.Exec(
			`INSERT INTO path_lookups (event_id, path, sequence, found) VALUES (?, 'hover.wav', 1, 1)`, eventID)
		require.NoError(t, err)

		_, err = db.Exec(`DELETE FROM play_events WHERE id = ?`, eventID)
		require.NoError(t, err)

		var count int
		err = db.QueryRow(`SELECT COUNT(*) FROM path_lookups WHERE event_id = ?`, eventID).Scan(&count)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestGetDatabasePath(t *testing.T) {
	path, err := GetDatabasePath()
	require.NoError(t, err)
	assert.Contains(t, path, "chime")
	assert.Equal(t, "sounds.db", filepath.Base(path))
}
