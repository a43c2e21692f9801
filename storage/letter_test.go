package storage

import (
	"testing"
	"time"

	"everlove/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LetterStore {
	t.Helper()

	db, err := InitDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewLetterStore(db)
}

func TestLetterStoreCreateAssignsIdentity(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(&models.Letter{
		AuthorID:  "user-1",
		Recipient: "My dear",
		Content:   "<p>Hello</p>",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "user-1", created.AuthorID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	fetched, err := store.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Recipient, fetched.Recipient)
}

func TestLetterStoreCreateRequiresAuthor(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create(&models.Letter{Content: "orphan"})
	assert.Error(t, err)
}

func TestLetterStoreListByAuthorScopedAndOrdered(t *testing.T) {
	store := newTestStore(t)

	for _, c := range []string{"first", "second", "third"} {
		_, err := store.Create(&models.Letter{AuthorID: "user-1", Content: c})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
	_, err := store.Create(&models.Letter{AuthorID: "user-2", Content: "other"})
	require.NoError(t, err)

	letters, err := store.ListByAuthor("user-1")
	require.NoError(t, err)
	require.Len(t, letters, 3)

	assert.Equal(t, "third", letters[0].Content)
	assert.Equal(t, "first", letters[2].Content)
	for _, l := range letters {
		assert.Equal(t, "user-1", l.AuthorID)
	}
}

func TestLetterStoreUpdatePatchesFields(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(&models.Letter{
		AuthorID: "user-1",
		Title:    "Before",
		Content:  "Body",
		IsDraft:  true,
	})
	require.NoError(t, err)

	title := "After"
	isDraft := false
	updated, err := store.Update("user-1", created.ID, models.LetterPatch{
		Title:   &title,
		IsDraft: &isDraft,
	})
	require.NoError(t, err)

	assert.Equal(t, "After", updated.Title)
	assert.False(t, updated.IsDraft)
	assert.Equal(t, "Body", updated.Content, "unpatched fields stay put")
	assert.Equal(t, created.ID, updated.ID)
}

func TestLetterStoreUpdateEnforcesOwnership(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(&models.Letter{AuthorID: "user-1", Content: "Mine"})
	require.NoError(t, err)

	title := "Hijacked"
	_, err = store.Update("user-2", created.ID, models.LetterPatch{Title: &title})
	assert.ErrorIs(t, err, ErrLetterNotFound)

	fetched, err := store.GetByID(created.ID)
	require.NoError(t, err)
	assert.Empty(t, fetched.Title)
}

func TestLetterStoreDelete(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(&models.Letter{AuthorID: "user-1", Content: "Gone soon"})
	require.NoError(t, err)

	err = store.Delete("user-2", created.ID)
	assert.ErrorIs(t, err, ErrLetterNotFound)

	err = store.Delete("user-1", created.ID)
	require.NoError(t, err)

	_, err = store.GetByID(created.ID)
	assert.ErrorIs(t, err, ErrLetterNotFound)

	letters, err := store.ListByAuthor("user-1")
	require.NoError(t, err)
	assert.Empty(t, letters)
}
