package letters

import (
	"errors"
	"testing"
	"time"

	"everlove/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLetters() []models.InboxLetter {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []models.InboxLetter{
		{ID: "1", Sender: "Sarah", Content: "I passed the little bookshop today", Date: base.Add(2 * time.Hour)},
		{ID: "2", Sender: "Daniel", Content: "Six months already", Date: base.Add(time.Hour)},
		{ID: "3", Sender: "Sarah", Content: "Good morning, have a wonderful day", Date: base},
	}
}

func newTestInbox(t *testing.T) (*Inbox, *recorder) {
	t.Helper()
	rec := &recorder{}
	in := NewInbox(func() ([]models.InboxLetter, error) {
		return sampleLetters(), nil
	}, rec)
	require.NoError(t, in.Refresh())
	return in, rec
}

func TestRefreshOrdersNewestFirst(t *testing.T) {
	in, rec := newTestInbox(t)

	letters := in.Letters()
	require.Len(t, letters, 3)
	assert.Equal(t, "1", letters[0].ID)
	assert.Equal(t, "2", letters[1].ID)
	assert.Equal(t, "3", letters[2].ID)

	assert.Equal(t, "inbox_refreshed", rec.last().Code)
	assert.True(t, rec.last().Success)
}

func TestRefreshFailureKeepsPreviousListing(t *testing.T) {
	rec := &recorder{}
	calls := 0
	in := NewInbox(func() ([]models.InboxLetter, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("network down")
		}
		return sampleLetters(), nil
	}, rec)

	require.NoError(t, in.Refresh())
	before := in.Letters()

	require.Error(t, in.Refresh())
	assert.Equal(t, before, in.Letters())
	assert.False(t, rec.last().Success)
	assert.False(t, in.Loading())
}

func TestFilterEmptyQueryReturnsAllInOrder(t *testing.T) {
	in, _ := newTestInbox(t)

	all := in.Filter("")
	assert.Equal(t, in.Letters(), all)

	// Whitespace-only behaves like empty
	assert.Equal(t, all, in.Filter("   "))
}

func TestFilterMatchesContentAndSenderCaseInsensitively(t *testing.T) {
	in, _ := newTestInbox(t)

	bySender := in.Filter("sArAh")
	require.Len(t, bySender, 2)
	assert.Equal(t, "1", bySender[0].ID)
	assert.Equal(t, "3", bySender[1].ID)

	byContent := in.Filter("BOOKSHOP")
	require.Len(t, byContent, 1)
	assert.Equal(t, "1", byContent[0].ID)

	assert.Empty(t, in.Filter("nothing matches this"))
}

func TestMarkReadIsIdempotentAndLocal(t *testing.T) {
	in, _ := newTestInbox(t)

	in.MarkRead("2")
	in.MarkRead("2") // opening an already-read letter is a no-op

	letters := in.Letters()
	require.Len(t, letters, 3)
	assert.False(t, letters[0].Read)
	assert.True(t, letters[1].Read)
	assert.False(t, letters[2].Read)

	// Order is unchanged by read-state changes
	assert.Equal(t, "1", letters[0].ID)
	assert.Equal(t, "2", letters[1].ID)
	assert.Equal(t, "3", letters[2].ID)

	assert.Equal(t, 2, in.UnreadCount())
}

func TestReadFlagsSurviveRefresh(t *testing.T) {
	in, _ := newTestInbox(t)

	in.MarkRead("1")
	require.NoError(t, in.Refresh())

	letters := in.Letters()
	assert.True(t, letters[0].Read)
	assert.False(t, letters[1].Read)
}
