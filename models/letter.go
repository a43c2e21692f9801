package models

import "time"

// Letter is a user-authored message. A letter with IsDraft set has been
// saved for later; ScheduledFor, when non-zero, marks it as queued for a
// future moment (persisting the timestamp is as far as delivery goes).
type Letter struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"author_id"`
	Recipient    string    `json:"recipient"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	IsDraft      bool      `json:"is_draft"`
	ScheduledFor time.Time `json:"scheduled_for,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Scheduled reports whether the letter carries a delivery timestamp.
func (l *Letter) Scheduled() bool {
	return !l.ScheduledFor.IsZero()
}

// LetterPatch carries the updatable fields of a letter. Nil fields are
// left untouched; ID and AuthorID are never updatable.
type LetterPatch struct {
	Recipient    *string    `json:"recipient"`
	Title        *string    `json:"title"`
	Content      *string    `json:"content"`
	IsDraft      *bool      `json:"is_draft"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

// LetterTemplate is a read-only starting point for the composer. Selecting
// one replaces the draft content wholesale.
type LetterTemplate struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
}

// InboxLetter is a received letter as shown in the inbox. Read state lives
// with the viewer's session, not in the store.
type InboxLetter struct {
	ID      string    `json:"id"`
	Sender  string    `json:"sender"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Preview string    `json:"preview"`
	Date    time.Time `json:"date"`
	Read    bool      `json:"read"`
}
