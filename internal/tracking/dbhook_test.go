package tracking

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chime.click/internal/events"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
	return count
}

func TestDBHookGroupsChecksIntoOneEvent(t *testing.T) {
	db := newTestDB(t)
	hook := NewDBHook(db, "sess-1", "mechanical", "malgo")
	event := &events.InteractionEvent{Event: "click", Element: "save"}

	hook.LogPathCheck("click/save.wav", false, 1, event)
	hook.LogPathCheck("click.wav", true, 2, event)
	hook.LogPathCheck("default.wav", false, 3, event)

	assert.Equal(t, 1, countRows(t, db, "play_events"))
	assert.Equal(t, 3, countRows(t, db, "path_lookups"))

	var selectedPath string
	var fallbackLevel int
	var sessionID, theme, backend string
	require.NoError(t, db.QueryRow(`
		SELECT selected_path, fallback_level, session_id, theme, backend
		FROM play_events`).Scan(&selectedPath, &fallbackLevel, &sessionID, &theme, &backend))

	// Selection upgrades from the provisional first path to the first
	// path that exists
	assert.Equal(t, "click.wav", selectedPath)
	assert.Equal(t, 2, fallbackLevel)
	assert.Equal(t, "sess-1", sessionID)
	assert.Equal(t, "mechanical", theme)
	assert.Equal(t, "malgo", backend)
}

func TestDBHookSelectionSticksToFirstHit(t *testing.T) {
	db := newTestDB(t)
	hook := NewDBHook(db, "sess-1", "default", "auto")
	event := &events.InteractionEvent{Event: "click"}

	hook.LogPathCheck("click.wav", true, 1, event)
	hook.LogPathCheck("default.wav", true, 2, event)

	var selectedPath string
	var fallbackLevel int
	require.NoError(t, db.QueryRow(
		`SELECT selected_path, fallback_level FROM play_events`).Scan(&selectedPath, &fallbackLevel))
	assert.Equal(t, "click.wav", selectedPath)
	assert.Equal(t, 1, fallbackLevel)
}

func TestDBHookNewEventStartsNewRow(t *testing.T) {
	db := newTestDB(t)
	hook := NewDBHook(db, "sess-1", "default", "auto")

	click := &events.InteractionEvent{Event: "click", Element: "save"}
	hover := &events.InteractionEvent{Event: "hover", Element: "save"}

	hook.LogPathCheck("click.wav", true, 1, click)
	hook.LogPathCheck("pointerenter.wav", true, 1, hover)

	assert.Equal(t, 2, countRows(t, db, "play_events"))

	var kinds []string
	rows, err := db.Query(`SELECT event_kind FROM play_events ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var kind string
		require.NoError(t, rows.Scan(&kind))
		kinds = append(kinds, kind)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"click", "pointerenter"}, kinds)
}

func TestDBHookSameEventDifferentHintSplits(t *testing.T) {
	db := newTestDB(t)
	hook := NewDBHook(db, "sess-1", "default", "auto")

	hook.LogPathCheck("click.wav", true, 1, &events.InteractionEvent{Event: "click", Hint: "soft"})
	hook.LogPathCheck("click.wav", true, 1, &events.InteractionEvent{Event: "click", Hint: "loud"})

	assert.Equal(t, 2, countRows(t, db, "play_events"))
}

func TestDBHookRecordsMuteState(t *testing.T) {
	db := newTestDB(t)
	hook := NewDBHook(db, "sess-1", "default", "auto")
	hook.SetMuted(true)

	hook.LogPathCheck("click.wav", true, 1, &events.InteractionEvent{Event: "click"})

	var muted int
	require.NoError(t, db.QueryRow(`SELECT muted FROM play_events`).Scan(&muted))
	assert.Equal(t, 1, muted)
}

func TestDBHookDisablesItselfAfterError(t *testing.T) {
	db := newTestDB(t)
	hook := NewDBHook(db, "sess-1", "default", "auto")

	// Closing the database makes every write fail
	require.NoError(t, db.Close())

	event := &events.InteractionEvent{Event: "click"}
	assert.NotPanics(t, func() {
		hook.LogPathCheck("click.wav", true, 1, event)
		hook.LogPathCheck("default.wav", false, 2, event)
	})
}

func TestDBHookGetHook(t *testing.T) {
	db := newTestDB(t)
	hook := NewDBHook(db, "sess-1", "default", "auto")

	checker := NewSoundChecker(
		&fakeResolver{resources: map[string]string{"click.wav": "/theme/click.wav"}},
		WithHook(hook.GetHook()))

	selected, found := checker.Resolve(
		&events.InteractionEvent{Event: "click"},
		[]string{"click/save.wav", "click.wav", "default.wav"})

	assert.True(t, found)
	assert.Equal(t, "/theme/click.wav", selected)
	assert.Equal(t, 1, countRows(t, db, "play_events"))
	assert.Equal(t, 3, countRows(t, db, "path_lookups"))
}
