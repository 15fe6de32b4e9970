package repository

import (
	"database/sql"
	"fmt"
	"time"

	"clozereader/internal/database"
	"clozereader/internal/models"
)

// entryDateFormat is how entry dates are stored, portable across dialects.
const entryDateFormat = "2006-01-02"

// LeaderboardRepository handles database operations for leaderboard entries.
type LeaderboardRepository struct {
	db database.DBTX
}

// NewLeaderboardRepository creates a new leaderboard repository.
func NewLeaderboardRepository(db database.DBTX) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// Insert stores a new entry and returns it with its assigned ID.
func (r *LeaderboardRepository) Insert(entry models.LeaderboardEntry) (models.LeaderboardEntry, error) {
	if entry.Date.IsZero() {
		entry.Date = time.Now()
	}

	query := "INSERT INTO leaderboard_entries (initials, level, round, passages_passed, entry_date) VALUES (?, ?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query,
		entry.Initials,
		entry.Level,
		entry.Round,
		entry.PassagesPassed,
		entry.Date.Format(entryDateFormat),
	)
	if err != nil {
		return models.LeaderboardEntry{}, fmt.Errorf("failed to insert leaderboard entry: %w", err)
	}

	entry.ID = id
	return entry, nil
}

// TopEntries returns the best entries: higher level first, then higher
// round, then more passages passed, with earlier dates breaking ties.
func (r *LeaderboardRepository) TopEntries(limit int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT id, initials, level, round, passages_passed, entry_date
		FROM leaderboard_entries
		ORDER BY level DESC, round DESC, passages_passed DESC, entry_date ASC
		LIMIT ?
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var entry models.LeaderboardEntry
		var date string
		if err := rows.Scan(
			&entry.ID,
			&entry.Initials,
			&entry.Level,
			&entry.Round,
			&entry.PassagesPassed,
			&date,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entry.Date = parseEntryDate(date)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// TrimBeyondTop deletes every entry outside the top n, keeping the table
// bounded. The derived-table wrapper keeps MySQL happy with a LIMIT inside
// a DELETE subquery.
func (r *LeaderboardRepository) TrimBeyondTop(n int) error {
	query := `
		DELETE FROM leaderboard_entries
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id FROM leaderboard_entries
				ORDER BY level DESC, round DESC, passages_passed DESC, entry_date ASC
				LIMIT ?
			) ranked
		)
	`
	if _, err := r.db.Exec(query, n); err != nil {
		return fmt.Errorf("failed to trim leaderboard: %w", err)
	}
	return nil
}

// Count returns the number of stored entries.
func (r *LeaderboardRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM leaderboard_entries").Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to count leaderboard entries: %w", err)
	}
	return count, nil
}

// Clear removes every entry. Used by tests and the admin reset.
func (r *LeaderboardRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM leaderboard_entries"); err != nil {
		return fmt.Errorf("failed to clear leaderboard: %w", err)
	}
	return nil
}

// parseEntryDate accepts the portable date format plus the timestamp forms
// some drivers hand back.
func parseEntryDate(s string) time.Time {
	for _, layout := range []string{entryDateFormat, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
