package store

import (
	"encoding/json"
	"time"
)

// Note is the persisted row of the notes table. Content is the raw editor
// document and is nil when the column is NULL.
type Note struct {
	ID        string
	OwnerID   string
	Title     string
	Content   json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}
