// Package notes manages positioned sticky notes on boards.
package notes

import "time"

// Position is a note location on the board.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a note's rendered dimensions.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Note is a persisted sticky note.
type Note struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"boardId"`
	Content   string    `json:"content"`
	Color     string    `json:"color"`
	Position  Position  `json:"position"`
	Size      Size      `json:"size"`
	ZIndex    int       `json:"zIndex"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateRequest is the payload for creating a note.
type CreateRequest struct {
	BoardID  string   `json:"boardId"`
	Content  string   `json:"content"`
	Color    string   `json:"color"`
	Position Position `json:"position"`
	Size     Size     `json:"size"`
	ZIndex   int      `json:"zIndex"`
}

// UpdateRequest carries optional note changes; nil fields are left
// untouched.
type UpdateRequest struct {
	Content  *string   `json:"content,omitempty"`
	Color    *string   `json:"color,omitempty"`
	Position *Position `json:"position,omitempty"`
	Size     *Size     `json:"size,omitempty"`
	ZIndex   *int      `json:"zIndex,omitempty"`
}
