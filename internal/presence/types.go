// Package presence maintains ephemeral per-board cursor state for live
// collaboration rosters.
package presence

import "time"

// CursorPosition is a cursor location on a board, in board coordinates.
type CursorPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Record is one (user, board) presence row. At most one exists per pair;
// updates are upserts. Rows older than the freshness window are treated
// as absent by reads and eventually deleted by the reaper.
type Record struct {
	UserID         string
	BoardID        string
	CursorPosition CursorPosition
	LastUpdated    time.Time
}

// ActiveUser is one entry in a board's live roster.
type ActiveUser struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	ProfileImageURL string         `json:"profileImageUrl,omitempty"`
	CursorPosition  CursorPosition `json:"cursorPosition"`
}
