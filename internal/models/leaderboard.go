package models

import "time"

// LeaderboardEntry is one row on the public leaderboard.
type LeaderboardEntry struct {
	ID             int64     `json:"id"`
	Initials       string    `json:"initials"`
	Level          int       `json:"level"`
	Round          int       `json:"round"`
	PassagesPassed int       `json:"passagesPassed"`
	Date           time.Time `json:"date"`
}
