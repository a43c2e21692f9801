package letters

import (
	"errors"
	"strings"
	"sync"

	"everlove/models"
	"everlove/utils"
)

var (
	// ErrNotAuthenticated is returned when an operation requires a user
	// and none was bound to the repository.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrEmptyContent is returned when a letter body is missing.
	ErrEmptyContent = errors.New("letter content is empty")
)

// Gateway is the persistence boundary the repository talks to. The bbolt
// LetterStore satisfies it in production.
type Gateway interface {
	Create(letter *models.Letter) (*models.Letter, error)
	ListByAuthor(authorID string) ([]models.Letter, error)
	Update(authorID, id string, patch models.LetterPatch) (*models.Letter, error)
	Delete(authorID, id string) error
}

// Repository is the single source of truth for one user's letters within
// a session. The cache holds only records the gateway has confirmed: no
// optimistic writes, so a failed call never leaves a phantom entry.
type Repository struct {
	gateway Gateway
	notify  Notifier
	userID  string

	mu     sync.RWMutex
	cache  []models.Letter
	loaded bool
}

// NewRepository binds a repository to one user. The user id comes from the
// session; an empty id yields a repository whose operations all refuse to
// touch the gateway.
func NewRepository(gateway Gateway, notifier Notifier, userID string) *Repository {
	if notifier == nil {
		notifier = NopNotifier
	}
	return &Repository{
		gateway: gateway,
		notify:  notifier,
		userID:  userID,
	}
}

// List fetches all letters for the user, newest first, and replaces the
// cache. On failure the previous cache is kept and an error is reported.
func (r *Repository) List() ([]models.Letter, error) {
	if r.userID == "" {
		return nil, ErrNotAuthenticated
	}

	fetched, err := r.gateway.ListByAuthor(r.userID)
	if err != nil {
		utils.Log.Error("Failed to list letters for user %s: %v", r.userID, err)
		r.notify.Notify(errorNote("letters_load_failed", "Could not load your letters"))
		return nil, err
	}

	r.mu.Lock()
	r.cache = fetched
	r.loaded = true
	r.mu.Unlock()

	return r.Letters(), nil
}

// Letters returns a copy of the cached letters.
func (r *Repository) Letters() []models.Letter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Letter, len(r.cache))
	copy(out, r.cache)
	return out
}

// Create validates and persists a new letter bound to the repository's
// user. On success the confirmed record is prepended to the cache and the
// outcome reported; the success message depends on whether the letter is a
// draft, scheduled, or sent immediately.
func (r *Repository) Create(draft models.Letter) (*models.Letter, error) {
	if r.userID == "" {
		r.notify.Notify(errorNote("not_authenticated", "Please sign in first"))
		return nil, ErrNotAuthenticated
	}
	if strings.TrimSpace(draft.Content) == "" {
		r.notify.Notify(errorNote("empty_content", "Your letter needs some words first"))
		return nil, ErrEmptyContent
	}

	draft.AuthorID = r.userID

	created, err := r.gateway.Create(&draft)
	if err != nil {
		utils.Log.Error("Failed to create letter for user %s: %v", r.userID, err)
		r.notify.Notify(errorNote("letter_save_failed", "Could not save your letter. Please try again."))
		return nil, err
	}

	r.mu.Lock()
	r.cache = append([]models.Letter{*created}, r.cache...)
	r.mu.Unlock()

	r.notify.Notify(createdNote(created))

	return created, nil
}

// Update applies a partial change to one letter. On success only the
// matching cache entry is replaced; on failure the cache is untouched.
func (r *Repository) Update(id string, patch models.LetterPatch) (*models.Letter, error) {
	if r.userID == "" {
		r.notify.Notify(errorNote("not_authenticated", "Please sign in first"))
		return nil, ErrNotAuthenticated
	}

	updated, err := r.gateway.Update(r.userID, id, patch)
	if err != nil {
		utils.Log.Error("Failed to update letter %s for user %s: %v", id, r.userID, err)
		r.notify.Notify(errorNote("letter_update_failed", "Could not update your letter. Please try again."))
		return nil, err
	}

	r.mu.Lock()
	for i := range r.cache {
		if r.cache[i].ID == id {
			r.cache[i] = *updated
			break
		}
	}
	r.mu.Unlock()

	r.notify.Notify(successNote("letter_updated", "Your letter has been updated", nil))

	return updated, nil
}

// Delete removes one letter. On success the cache entry is removed; on
// failure the cache is untouched.
func (r *Repository) Delete(id string) error {
	if r.userID == "" {
		r.notify.Notify(errorNote("not_authenticated", "Please sign in first"))
		return ErrNotAuthenticated
	}

	if err := r.gateway.Delete(r.userID, id); err != nil {
		utils.Log.Error("Failed to delete letter %s for user %s: %v", id, r.userID, err)
		r.notify.Notify(errorNote("letter_delete_failed", "Could not delete your letter. Please try again."))
		return err
	}

	r.mu.Lock()
	for i := range r.cache {
		if r.cache[i].ID == id {
			r.cache = append(r.cache[:i], r.cache[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.notify.Notify(successNote("letter_deleted", "Your letter has been deleted", nil))

	return nil
}

// scheduleDateFormat matches the date shown in the composer's picker.
const scheduleDateFormat = "Jan 2, 2006"

func createdNote(letter *models.Letter) Notification {
	switch {
	case letter.IsDraft:
		return successNote("draft_saved", "Draft saved", nil)
	case letter.Scheduled():
		date := letter.ScheduledFor.Format(scheduleDateFormat)
		return successNote("letter_scheduled",
			"Your letter to "+letter.Recipient+" is scheduled for "+date,
			map[string]interface{}{"date": date, "recipient": letter.Recipient})
	default:
		return successNote("letter_sent",
			"Your letter to "+letter.Recipient+" has been sent",
			map[string]interface{}{"recipient": letter.Recipient})
	}
}
