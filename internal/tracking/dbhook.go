package tracking

import (
	"database/sql"
	"log/slog"
	"time"

	"chime.click/internal/events"
)

// DBHook implements database logging for sound path checks. Path checks
// that share an interaction event are grouped under one play_events row.
type DBHook struct {
	db            *sql.DB
	sessionID     string
	theme         string
	backend       string
	muted         bool
	disabled      bool
	eventID       int64
	event         *events.InteractionEvent
	pathChecks    []pathCheckEntry
	selectedPath  string
	fallbackLevel int
}

// pathCheckEntry represents a single path check
type pathCheckEntry struct {
	path     string
	exists   bool
	sequence int
}

// NewDBHook creates a new database hook for the specified session
func NewDBHook(db *sql.DB, sessionID, theme, backend string) *DBHook {
	return &DBHook{
		db:         db,
		sessionID:  sessionID,
		theme:      theme,
		backend:    backend,
		pathChecks: make([]pathCheckEntry, 0),
	}
}

// SetMuted records the mute state stored with subsequent play events
func (d *DBHook) SetMuted(muted bool) {
	d.muted = muted
}

// LogPathCheck logs a path check to the database
func (d *DBHook) LogPathCheck(path string, exists bool, sequence int, event *events.InteractionEvent) {
	// Skip if disabled due to previous errors
	if d.disabled {
		return
	}

	if d.needsNewEvent(event) {
		d.startNewEvent(event)
		// First path of a new event is provisionally selected; a later
		// existing path replaces it
		d.selectedPath = path
		d.fallbackLevel = sequence

		if err := d.insertEvent(event, d.selectedPath, d.fallbackLevel); err != nil {
			slog.Warn("sound tracking failed to create event", "error", err, "path", path)
			d.disabled = true
			return
		}
	}

	if exists && !d.hasExistingPath() {
		d.selectedPath = path
		d.fallbackLevel = sequence
		if err := d.updateEventSelection(path, sequence); err != nil {
			slog.Warn("sound tracking failed to update event selection", "error", err, "path", path)
			d.disabled = true
			return
		}
	}

	if err := d.insertPathCheck(path, exists, sequence); err != nil {
		slog.Warn("sound tracking failed to log path check", "error", err, "path", path)
		d.disabled = true
		return
	}

	d.pathChecks = append(d.pathChecks, pathCheckEntry{path: path, exists: exists, sequence: sequence})

	slog.Debug("sound tracking logged path check",
		"session_id", d.sessionID,
		"event_id", d.eventID,
		"path", path,
		"exists", exists,
		"sequence", sequence)
}

// needsNewEvent determines if a new event row should be created
func (d *DBHook) needsNewEvent(event *events.InteractionEvent) bool {
	if d.event == nil {
		return true
	}

	return d.event.Event != event.Event ||
		d.event.Element != event.Element ||
		d.event.Hint != event.Hint
}

// startNewEvent resets the grouping state for a fresh interaction
func (d *DBHook) startNewEvent(event *events.InteractionEvent) {
	d.event = event
	d.pathChecks = make([]pathCheckEntry, 0)
	d.selectedPath = ""
	d.fallbackLevel = 0
	d.eventID = 0
}

// hasExistingPath checks if the currently selected path exists
func (d *DBHook) hasExistingPath() bool {
	for _, check := range d.pathChecks {
		if check.path == d.selectedPath && check.exists {
			return true
		}
	}
	return false
}

func (d *DBHook) updateEventSelection(selectedPath string, fallbackLevel int) error {
	_, err := d.db.Exec(`
		UPDATE play_events
		SET selected_path = ?, fallback_level = ?
		WHERE id = ?`,
		selectedPath,
		fallbackLevel,
		d.eventID)
	return err
}

func (d *DBHook) insertEvent(event *events.InteractionEvent, selectedPath string, fallbackLevel int) error {
	muted := 0
	if d.muted {
		muted = 1
	}

	result, err := d.db.Exec(`
		INSERT INTO play_events (timestamp, session_id, event_kind, element, theme, selected_path, fallback_level, muted, backend)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(),
		d.sessionID,
		event.Kind().String(),
		event.Element,
		d.theme,
		selectedPath,
		fallbackLevel,
		muted,
		d.backend)
	if err != nil {
		return err
	}

	eventID, err := result.LastInsertId()
	if err != nil {
		return err
	}

	d.eventID = eventID
	return nil
}

func (d *DBHook) insertPathCheck(path string, exists bool, sequence int) error {
	found := 0
	if exists {
		found = 1
	}

	_, err := d.db.Exec(`
		INSERT INTO path_lookups (event_id, path, sequence, found)
		VALUES (?, ?, ?, ?)`,
		d.eventID,
		path,
		sequence,
		found)
	return err
}

// GetHook returns the PathCheckedHook function for use with SoundChecker
func (d *DBHook) GetHook() PathCheckedHook {
	return d.LogPathCheck
}
