package letters

import (
	"errors"
	"strings"
	"sync"
	"time"

	"everlove/models"
)

// State is the composer's lifecycle position. Submitting exists so that a
// second submit while one is in flight is rejected instead of queued.
type State int

const (
	StateClosed State = iota
	StateEditing
	StateSubmitting
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

var (
	// ErrNotEditing is returned when an action needs an open composer.
	ErrNotEditing = errors.New("composer is not open")
	// ErrSubmitInFlight is returned when a submit is already pending.
	ErrSubmitInFlight = errors.New("a submission is already in flight")
	// ErrEmptyRecipient is returned when sending without a recipient.
	ErrEmptyRecipient = errors.New("letter has no recipient")
	// ErrScheduleInPast is returned for a past-dated schedule attempt.
	ErrScheduleInPast = errors.New("scheduled time is in the past")
)

// Draft holds the not-yet-persisted letter being authored.
type Draft struct {
	Recipient    string
	Title        string
	Content      string
	ScheduledFor time.Time
}

// Composer owns the letter being authored plus its transient lifecycle
// state. One composer allows at most one in-flight submission.
type Composer struct {
	repo   *Repository
	notify Notifier
	now    func() time.Time

	mu    sync.Mutex
	state State
	draft Draft
}

// NewComposer creates a composer over the given repository. Local
// validation failures are reported through the notifier; persistence
// outcomes are reported by the repository itself.
func NewComposer(repo *Repository, notifier Notifier) *Composer {
	if notifier == nil {
		notifier = NopNotifier
	}
	return &Composer{
		repo:   repo,
		notify: notifier,
		now:    time.Now,
		state:  StateClosed,
	}
}

// State returns the current composer state.
func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Draft returns a copy of the current draft fields.
func (c *Composer) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Open starts editing. Fields are empty except the recipient, which is
// pre-filled when the caller supplies one.
func (c *Composer) Open(recipient string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateClosed {
		return
	}
	c.draft = Draft{Recipient: recipient}
	c.state = StateEditing
}

// Close abandons the current draft.
func (c *Composer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateSubmitting {
		return
	}
	c.draft = Draft{}
	c.state = StateClosed
}

// SetRecipient updates the draft recipient.
func (c *Composer) SetRecipient(recipient string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateEditing {
		c.draft.Recipient = recipient
	}
}

// SetTitle updates the draft title.
func (c *Composer) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateEditing {
		c.draft.Title = title
	}
}

// SetContent updates the draft content.
func (c *Composer) SetContent(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateEditing {
		c.draft.Content = content
	}
}

// ApplyTemplate replaces the draft content with the template's content.
// This is a destructive, user-initiated replace with no undo.
func (c *Composer) ApplyTemplate(t models.LetterTemplate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateEditing {
		c.draft.Content = t.Content
	}
}

// Schedule sets the delivery timestamp. A moment earlier than now is
// refused at selection time.
func (c *Composer) Schedule(at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateEditing {
		return ErrNotEditing
	}
	if at.Before(c.now()) {
		return ErrScheduleInPast
	}
	c.draft.ScheduledFor = at
	return nil
}

// ClearSchedule removes the delivery timestamp.
func (c *Composer) ClearSchedule() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateEditing {
		c.draft.ScheduledFor = time.Time{}
	}
}

// Send submits the draft as a sent letter. Requires non-empty content and
// recipient; both are checked before any gateway call. Success closes and
// resets the composer; failure returns to editing with fields intact.
func (c *Composer) Send() (*models.Letter, error) {
	draft, err := c.beginSubmit(true)
	if err != nil {
		return nil, err
	}

	letter, err := c.repo.Create(models.Letter{
		Recipient:    strings.TrimSpace(draft.Recipient),
		Title:        strings.TrimSpace(draft.Title),
		Content:      draft.Content,
		IsDraft:      false,
		ScheduledFor: draft.ScheduledFor,
	})

	c.endSubmit(err == nil)
	return letter, err
}

// SaveDraft submits the draft as a saved-for-later letter. Only content is
// required; a recipient can be added later.
func (c *Composer) SaveDraft() (*models.Letter, error) {
	draft, err := c.beginSubmit(false)
	if err != nil {
		return nil, err
	}

	letter, err := c.repo.Create(models.Letter{
		Recipient:    strings.TrimSpace(draft.Recipient),
		Title:        strings.TrimSpace(draft.Title),
		Content:      draft.Content,
		IsDraft:      true,
		ScheduledFor: draft.ScheduledFor,
	})

	c.endSubmit(err == nil)
	return letter, err
}

// beginSubmit validates the draft and moves the composer into Submitting.
// Validation failures are reported here and never reach the gateway.
func (c *Composer) beginSubmit(requireRecipient bool) (Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateClosed:
		return Draft{}, ErrNotEditing
	case StateSubmitting:
		return Draft{}, ErrSubmitInFlight
	}

	if strings.TrimSpace(c.draft.Content) == "" {
		c.notify.Notify(errorNote("empty_content", "Your letter needs some words first"))
		return Draft{}, ErrEmptyContent
	}
	if requireRecipient && strings.TrimSpace(c.draft.Recipient) == "" {
		c.notify.Notify(errorNote("empty_recipient", "Who is this letter for?"))
		return Draft{}, ErrEmptyRecipient
	}

	c.state = StateSubmitting
	return c.draft, nil
}

// endSubmit resolves the Submitting state: success closes and resets the
// composer, failure returns to editing so nothing typed is lost.
func (c *Composer) endSubmit(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ok {
		c.draft = Draft{}
		c.state = StateClosed
	} else {
		c.state = StateEditing
	}
}
