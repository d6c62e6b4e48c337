// Package boards manages sticky-note boards and their access rule.
package boards

import "time"

// Board is a persisted board. A caller may act on a board iff they own
// it, or the board is shared and not trashed.
type Board struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Name         string    `json:"name"`
	IsShared     bool      `json:"isShared"`
	InTrash      bool      `json:"inTrash"`
	NotesCount   int       `json:"notesCount"`
	LastModified time.Time `json:"lastModified"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UpdateRequest carries optional board metadata changes; nil fields are
// left untouched.
type UpdateRequest struct {
	Name     *string `json:"name,omitempty"`
	IsShared *bool   `json:"isShared,omitempty"`
}
