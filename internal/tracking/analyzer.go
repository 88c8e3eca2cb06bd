package tracking

import (
	"database/sql"
	"fmt"
	"strings"
)

// MissingSound represents a sound that was requested but not found
type MissingSound struct {
	Path         string   `json:"path"`
	RequestCount int      `json:"request_count"`
	EventKinds   []string `json:"event_kinds,omitempty"` // Which interactions requested this sound
}

// SoundUsage represents actual sound playback statistics
type SoundUsage struct {
	Path          string  `json:"path"`
	PlayCount     int     `json:"play_count"`
	FallbackLevel int     `json:"fallback_level"`
	EventKind     string  `json:"event_kind,omitempty"`
	LastPlayed    int64   `json:"last_played"`  // Unix timestamp
	AvgFallback   float64 `json:"avg_fallback"` // Average fallback level
}

// UsageSummary provides overall usage statistics
type UsageSummary struct {
	TotalEvents          int         `json:"total_events"`
	UniqueSounds         int         `json:"unique_sounds"`
	MutedEvents          int         `json:"muted_events"`
	AvgFallbackLevel     float64     `json:"avg_fallback_level"`
	FallbackDistribution map[int]int `json:"fallback_distribution"` // Level -> count
	TimeRange            string      `json:"time_range,omitempty"`  // Human readable
}

// KindDistribution represents per-interaction usage statistics
type KindDistribution struct {
	EventKind  string  `json:"event_kind"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// GetMissingSounds queries the database for sounds that were requested but
// not found
func GetMissingSounds(db *sql.DB, filter QueryFilter) ([]MissingSound, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	baseQuery := `
		SELECT
			pl.path,
			COUNT(*) as request_count,
			GROUP_CONCAT(DISTINCT pe.event_kind) as event_kinds
		FROM path_lookups pl
		JOIN play_events pe ON pl.event_id = pe.id
		WHERE pl.found = 0`

	whereClause, args := filter.BuildWhereClause()
	if whereClause != "" {
		baseQuery += " AND " + whereClause
	}

	baseQuery += `
		GROUP BY pl.path
		ORDER BY request_count DESC`

	if filter.Limit > 0 {
		baseQuery += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := db.Query(baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query missing sounds: %w", err)
	}
	defer rows.Close()

	var results []MissingSound
	for rows.Next() {
		var sound MissingSound
		var kindsStr sql.NullString

		err := rows.Scan(&sound.Path, &sound.RequestCount, &kindsStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan missing sound row: %w", err)
		}

		if kindsStr.Valid && kindsStr.String != "" {
			seen := make(map[string]bool)
			for _, kind := range strings.Split(kindsStr.String, ",") {
				kind = strings.TrimSpace(kind)
				if kind != "" && !seen[kind] {
					seen[kind] = true
					sound.EventKinds = append(sound.EventKinds, kind)
				}
			}
		}

		results = append(results, sound)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating missing sound rows: %w", err)
	}

	return results, nil
}

// GetSoundUsage returns statistics about actual sound playback
func GetSoundUsage(db *sql.DB, filter QueryFilter) ([]SoundUsage, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	baseQuery := `
		SELECT
			pe.selected_path,
			COUNT(*) as play_count,
			AVG(pe.fallback_level) as avg_fallback,
			MIN(pe.fallback_level) as min_fallback,
			MAX(pe.timestamp) as last_played,
			MAX(pe.event_kind) as event_kind
		FROM play_events pe
		WHERE pe.selected_path != ''`

	whereClause, args := filter.BuildWhereClause()
	if whereClause != "" {
		baseQuery += " AND " + whereClause
	}

	baseQuery += `
		GROUP BY pe.selected_path
		ORDER BY play_count DESC`

	if filter.Limit > 0 {
		baseQuery += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := db.Query(baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sound usage: %w", err)
	}
	defer rows.Close()

	var results []SoundUsage
	for rows.Next() {
		var usage SoundUsage
		var kind sql.NullString

		err := rows.Scan(&usage.Path, &usage.PlayCount, &usage.AvgFallback, &usage.FallbackLevel, &usage.LastPlayed, &kind)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sound usage row: %w", err)
		}

		if kind.Valid {
			usage.EventKind = kind.String
		}

		results = append(results, usage)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sound usage rows: %w", err)
	}

	return results, nil
}

// GetUsageSummary returns overall usage statistics
func GetUsageSummary(db *sql.DB, filter QueryFilter) (*UsageSummary, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	summaryQuery := `
		SELECT
			COUNT(*) as total_events,
			COUNT(DISTINCT pe.selected_path) as unique_sounds,
			COALESCE(SUM(pe.muted), 0) as muted_events,
			COALESCE(AVG(pe.fallback_level), 0) as avg_fallback_level
		FROM play_events pe
		WHERE pe.selected_path != ''`

	whereClause, args := filter.BuildWhereClause()
	if whereClause != "" {
		summaryQuery += " AND " + whereClause
	}

	var summary UsageSummary
	err := db.QueryRow(summaryQuery, args...).Scan(
		&summary.TotalEvents,
		&summary.UniqueSounds,
		&summary.MutedEvents,
		&summary.AvgFallbackLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage summary: %w", err)
	}

	distributionQuery := `
		SELECT
			pe.fallback_level,
			COUNT(*) as count
		FROM play_events pe
		WHERE pe.selected_path != ''`

	if whereClause != "" {
		distributionQuery += " AND " + whereClause
	}

	distributionQuery += `
		GROUP BY pe.fallback_level
		ORDER BY pe.fallback_level`

	rows, err := db.Query(distributionQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fallback distribution: %w", err)
	}
	defer rows.Close()

	summary.FallbackDistribution = make(map[int]int)
	for rows.Next() {
		var level, count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("failed to scan fallback distribution row: %w", err)
		}
		summary.FallbackDistribution[level] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fallback distribution rows: %w", err)
	}

	if filter.DatePreset != "" {
		summary.TimeRange = filter.DatePreset
	} else if filter.Days > 0 {
		summary.TimeRange = fmt.Sprintf("last %d days", filter.Days)
	}

	return &summary, nil
}

// GetKindDistribution returns per-interaction usage counts
func GetKindDistribution(db *sql.DB, filter QueryFilter) ([]KindDistribution, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	baseQuery := `
		SELECT
			pe.event_kind,
			COUNT(*) as count
		FROM play_events pe
		WHERE 1=1`

	whereClause, args := filter.BuildWhereClause()
	if whereClause != "" {
		baseQuery += " AND " + whereClause
	}

	baseQuery += `
		GROUP BY pe.event_kind
		ORDER BY count DESC`

	rows, err := db.Query(baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query kind distribution: %w", err)
	}
	defer rows.Close()

	var results []KindDistribution
	total := 0
	for rows.Next() {
		var dist KindDistribution
		if err := rows.Scan(&dist.EventKind, &dist.Count); err != nil {
			return nil, fmt.Errorf("failed to scan kind distribution row: %w", err)
		}
		total += dist.Count
		results = append(results, dist)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating kind distribution rows: %w", err)
	}

	for i := range results {
		if total > 0 {
			results[i].Percentage = float64(results[i].Count) * 100.0 / float64(total)
		}
	}

	return results, nil
}
