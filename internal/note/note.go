package note

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	NoteType   string    `json:"note_type" db:"note_type"`
	IsPinned   bool      `json:"is_pinned" db:"is_pinned"`
	IsArchived bool      `json:"is_archived" db:"is_archived"`
	Tags       []string  `json:"tags" db:"tags"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// WordCount is used for the note stats endpoint.
func (n *Note) WordCount() int {
	if n.Content == "" {
		return 0
	}
	return len(strings.Fields(n.Content))
}

type CreateNoteRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	NoteType string   `json:"note_type,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type UpdateNoteRequest struct {
	Title      *string  `json:"title,omitempty"`
	Content    *string  `json:"content,omitempty"`
	NoteType   *string  `json:"note_type,omitempty"`
	IsArchived *bool    `json:"is_archived,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

type AddLinkRequest struct {
	TargetID uuid.UUID `json:"target_id"`
}

// NoteWithLinks is the detail view: the note plus its outgoing links and
// backlinks.
type NoteWithLinks struct {
	Note      *Note   `json:"note"`
	LinksTo   []*Note `json:"links_to"`
	LinkedBy  []*Note `json:"linked_by"`
	WordCount int     `json:"word_count"`
}
