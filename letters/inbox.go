package letters

import (
	"sort"
	"strings"
	"sync"

	"everlove/models"
	"everlove/utils"
)

// FetchFunc supplies the received letters for an inbox refresh.
type FetchFunc func() ([]models.InboxLetter, error)

// Inbox presents received letters with search and read tracking. Read
// flags are session-local: they are never written back to the store.
type Inbox struct {
	fetch  FetchFunc
	notify Notifier

	mu      sync.RWMutex
	letters []models.InboxLetter
	read    map[string]bool
	loading bool
}

// NewInbox creates an inbox over the given fetch function.
func NewInbox(fetch FetchFunc, notifier Notifier) *Inbox {
	if notifier == nil {
		notifier = NopNotifier
	}
	return &Inbox{
		fetch:  fetch,
		notify: notifier,
		read:   make(map[string]bool),
	}
}

// Loading reports whether a refresh is in progress.
func (in *Inbox) Loading() bool {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.loading
}

// Refresh re-fetches the listing. On success the letters are replaced
// (newest first) and a completion notification is sent; on failure the
// previous listing is kept. Read flags survive a refresh.
func (in *Inbox) Refresh() error {
	in.mu.Lock()
	in.loading = true
	in.mu.Unlock()

	fetched, err := in.fetch()

	in.mu.Lock()
	in.loading = false
	if err == nil {
		sort.SliceStable(fetched, func(i, j int) bool {
			return fetched[i].Date.After(fetched[j].Date)
		})
		in.letters = fetched
	}
	in.mu.Unlock()

	if err != nil {
		utils.Log.Error("Inbox refresh failed: %v", err)
		in.notify.Notify(errorNote("inbox_refresh_failed", "Could not refresh your inbox"))
		return err
	}

	in.notify.Notify(successNote("inbox_refreshed", "Inbox refreshed", nil))
	return nil
}

// Letters returns the current listing with read flags applied, in stable
// newest-first order.
func (in *Inbox) Letters() []models.InboxLetter {
	in.mu.RLock()
	defer in.mu.RUnlock()

	out := make([]models.InboxLetter, len(in.letters))
	copy(out, in.letters)
	for i := range out {
		out[i].Read = in.read[out[i].ID]
	}
	return out
}

// Filter returns letters whose content or sender contains the query,
// case-insensitively. An empty query returns the full list in its
// original order. Pure and synchronous: no backend round-trip.
func (in *Inbox) Filter(query string) []models.InboxLetter {
	all := in.Letters()

	query = utils.NormalizeQuery(query)
	if query == "" {
		return all
	}

	filtered := []models.InboxLetter{}
	for _, letter := range all {
		if strings.Contains(strings.ToLower(letter.Content), query) ||
			strings.Contains(strings.ToLower(letter.Sender), query) {
			filtered = append(filtered, letter)
		}
	}
	return filtered
}

// MarkRead flips a letter's read flag to true. Idempotent: opening an
// already-read letter changes nothing, and the list order never moves on
// a read-state change.
func (in *Inbox) MarkRead(id string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.read[id] = true
}

// UnreadCount returns how many listed letters are unread.
func (in *Inbox) UnreadCount() int {
	in.mu.RLock()
	defer in.mu.RUnlock()

	count := 0
	for _, letter := range in.letters {
		if !in.read[letter.ID] {
			count++
		}
	}
	return count
}
