package letters

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"everlove/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway is an in-memory Gateway with failure injection and call
// counting, so tests can assert that invalid input never reaches it.
type fakeGateway struct {
	mu      sync.Mutex
	letters map[string]models.Letter
	nextID  int
	calls   int
	fail    error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{letters: make(map[string]models.Letter)}
}

func (g *fakeGateway) Create(letter *models.Letter) (*models.Letter, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	if g.fail != nil {
		return nil, g.fail
	}

	g.nextID++
	stored := *letter
	stored.ID = fmt.Sprintf("letter-%d", g.nextID)
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	g.letters[stored.ID] = stored
	return &stored, nil
}

func (g *fakeGateway) ListByAuthor(authorID string) ([]models.Letter, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	if g.fail != nil {
		return nil, g.fail
	}

	var out []models.Letter
	for _, letter := range g.letters {
		if letter.AuthorID == authorID {
			out = append(out, letter)
		}
	}
	return out, nil
}

func (g *fakeGateway) Update(authorID, id string, patch models.LetterPatch) (*models.Letter, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	if g.fail != nil {
		return nil, g.fail
	}

	letter, ok := g.letters[id]
	if !ok || letter.AuthorID != authorID {
		return nil, errors.New("letter not found")
	}
	if patch.Title != nil {
		letter.Title = *patch.Title
	}
	if patch.Content != nil {
		letter.Content = *patch.Content
	}
	if patch.Recipient != nil {
		letter.Recipient = *patch.Recipient
	}
	if patch.IsDraft != nil {
		letter.IsDraft = *patch.IsDraft
	}
	letter.UpdatedAt = time.Now()
	g.letters[id] = letter
	return &letter, nil
}

func (g *fakeGateway) Delete(authorID, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	if g.fail != nil {
		return g.fail
	}

	letter, ok := g.letters[id]
	if !ok || letter.AuthorID != authorID {
		return errors.New("letter not found")
	}
	delete(g.letters, id)
	return nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// recorder captures notifications for assertions.
type recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notes))
	copy(out, r.notes)
	return out
}

func (r *recorder) last() Notification {
	notes := r.all()
	if len(notes) == 0 {
		return Notification{}
	}
	return notes[len(notes)-1]
}

func TestCreateEmptyContentNeverCallsGateway(t *testing.T) {
	gw := newFakeGateway()
	rec := &recorder{}
	repo := NewRepository(gw, rec, "user-1")

	_, err := repo.Create(models.Letter{Recipient: "Sarah", Content: "   "})
	require.ErrorIs(t, err, ErrEmptyContent)

	assert.Equal(t, 0, gw.callCount())
	require.Len(t, rec.all(), 1)
	assert.False(t, rec.last().Success)
}

func TestCreatePrependsConfirmedRecord(t *testing.T) {
	gw := newFakeGateway()
	rec := &recorder{}
	repo := NewRepository(gw, rec, "user-1")

	first, err := repo.Create(models.Letter{Recipient: "Sarah", Content: "Hello"})
	require.NoError(t, err)
	second, err := repo.Create(models.Letter{Recipient: "Daniel", Content: "Hi there"})
	require.NoError(t, err)

	cached := repo.Letters()
	require.Len(t, cached, 2)
	assert.Equal(t, second.ID, cached[0].ID, "newest letter must be first")
	assert.Equal(t, first.ID, cached[1].ID)
	assert.Equal(t, "user-1", cached[0].AuthorID)
}

func TestFailedCreateLeavesCacheUnchanged(t *testing.T) {
	gw := newFakeGateway()
	rec := &recorder{}
	repo := NewRepository(gw, rec, "user-1")

	_, err := repo.Create(models.Letter{Recipient: "Sarah", Content: "Hello"})
	require.NoError(t, err)
	before := repo.Letters()

	gw.fail = errors.New("store unavailable")
	_, err = repo.Create(models.Letter{Recipient: "Daniel", Content: "Hi"})
	require.Error(t, err)

	after := repo.Letters()
	assert.Equal(t, before, after, "cache must be unchanged after a failed create")
	assert.False(t, rec.last().Success)
}

func TestCreateWithoutSessionRejectedBeforeGateway(t *testing.T) {
	gw := newFakeGateway()
	repo := NewRepository(gw, nil, "")

	_, err := repo.Create(models.Letter{Recipient: "Sarah", Content: "Hello"})
	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, 0, gw.callCount())
}

func TestUpdateMutatesOnlyMatchingEntry(t *testing.T) {
	gw := newFakeGateway()
	repo := NewRepository(gw, nil, "user-1")

	a, err := repo.Create(models.Letter{Recipient: "Sarah", Content: "one"})
	require.NoError(t, err)
	b, err := repo.Create(models.Letter{Recipient: "Daniel", Content: "two"})
	require.NoError(t, err)
	c, err := repo.Create(models.Letter{Recipient: "Elena", Content: "three"})
	require.NoError(t, err)

	newContent := "two, revised"
	_, err = repo.Update(b.ID, models.LetterPatch{Content: &newContent})
	require.NoError(t, err)

	cached := repo.Letters()
	require.Len(t, cached, 3)
	// Order is unchanged: c, b, a
	assert.Equal(t, c.ID, cached[0].ID)
	assert.Equal(t, b.ID, cached[1].ID)
	assert.Equal(t, a.ID, cached[2].ID)

	assert.Equal(t, "two, revised", cached[1].Content)
	assert.Equal(t, "three", cached[0].Content)
	assert.Equal(t, "one", cached[2].Content)
}

func TestFailedUpdateLeavesCacheUnchanged(t *testing.T) {
	gw := newFakeGateway()
	rec := &recorder{}
	repo := NewRepository(gw, rec, "user-1")

	created, err := repo.Create(models.Letter{Recipient: "Sarah", Content: "hello"})
	require.NoError(t, err)
	before := repo.Letters()

	gw.fail = errors.New("write rejected")
	newContent := "changed"
	_, err = repo.Update(created.ID, models.LetterPatch{Content: &newContent})
	require.Error(t, err)

	assert.Equal(t, before, repo.Letters())
	assert.False(t, rec.last().Success)
}

func TestDeleteRemovesFromCache(t *testing.T) {
	gw := newFakeGateway()
	rec := &recorder{}
	repo := NewRepository(gw, rec, "user-1")

	a, err := repo.Create(models.Letter{Recipient: "Sarah", Content: "one"})
	require.NoError(t, err)
	_, err = repo.Create(models.Letter{Recipient: "Daniel", Content: "two"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(a.ID))

	cached := repo.Letters()
	require.Len(t, cached, 1)
	assert.NotEqual(t, a.ID, cached[0].ID)
	assert.True(t, rec.last().Success)
	assert.Equal(t, "letter_deleted", rec.last().Code)
}

func TestListFailureKeepsPreviousCache(t *testing.T) {
	gw := newFakeGateway()
	rec := &recorder{}
	repo := NewRepository(gw, rec, "user-1")

	_, err := repo.Create(models.Letter{Recipient: "Sarah", Content: "hello"})
	require.NoError(t, err)
	before := repo.Letters()

	gw.fail = errors.New("network down")
	_, err = repo.List()
	require.Error(t, err)

	assert.Equal(t, before, repo.Letters())
	assert.Equal(t, "letters_load_failed", rec.last().Code)
}

func TestEveryMutatingOperationNotifiesExactlyOnce(t *testing.T) {
	gw := newFakeGateway()
	rec := &recorder{}
	repo := NewRepository(gw, rec, "user-1")

	created, err := repo.Create(models.Letter{Recipient: "Sarah", Content: "hello"})
	require.NoError(t, err)
	require.Len(t, rec.all(), 1)

	title := "a title"
	_, err = repo.Update(created.ID, models.LetterPatch{Title: &title})
	require.NoError(t, err)
	require.Len(t, rec.all(), 2)

	require.NoError(t, repo.Delete(created.ID))
	require.Len(t, rec.all(), 3)

	for _, n := range rec.all() {
		assert.True(t, n.Success)
	}
}
