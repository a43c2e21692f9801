package letters

import (
	"errors"
	"testing"
	"time"

	"everlove/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestComposer(t *testing.T) (*Composer, *fakeGateway, *recorder) {
	t.Helper()
	gw := newFakeGateway()
	rec := &recorder{}
	repo := NewRepository(gw, rec, "user-1")
	return NewComposer(repo, rec), gw, rec
}

func TestSendRequiresRecipient(t *testing.T) {
	c, gw, rec := newTestComposer(t)

	c.Open("")
	c.SetContent("Hello")

	_, err := c.Send()
	require.ErrorIs(t, err, ErrEmptyRecipient)

	assert.Equal(t, 0, gw.callCount(), "rejected send must never reach the gateway")
	require.Len(t, rec.all(), 1)
	assert.Equal(t, "empty_recipient", rec.last().Code)
	assert.Equal(t, StateEditing, c.State(), "typed content must not be lost")
	assert.Equal(t, "Hello", c.Draft().Content)
}

func TestSendRequiresContent(t *testing.T) {
	c, gw, _ := newTestComposer(t)

	c.Open("Sarah")

	_, err := c.Send()
	require.ErrorIs(t, err, ErrEmptyContent)
	assert.Equal(t, 0, gw.callCount())
}

func TestSaveDraftRequiresOnlyContent(t *testing.T) {
	c, _, rec := newTestComposer(t)

	c.Open("")
	c.SetContent("Not finished yet")

	letter, err := c.SaveDraft()
	require.NoError(t, err)
	assert.True(t, letter.IsDraft)
	assert.Empty(t, letter.Recipient)
	assert.Equal(t, "draft_saved", rec.last().Code)
	assert.Equal(t, StateClosed, c.State())
}

func TestSendSuccessClosesAndResets(t *testing.T) {
	c, _, rec := newTestComposer(t)

	c.Open("Sarah")
	c.SetContent("Hello")

	letter, err := c.Send()
	require.NoError(t, err)
	assert.False(t, letter.IsDraft)
	assert.Equal(t, "Sarah", letter.Recipient)

	// One success notification with the plain "sent" phrasing
	require.Len(t, rec.all(), 1)
	note := rec.last()
	assert.True(t, note.Success)
	assert.Equal(t, "letter_sent", note.Code)
	assert.Contains(t, note.Text, "has been sent")
	assert.NotContains(t, note.Text, "scheduled")

	assert.Equal(t, StateClosed, c.State())
	assert.Equal(t, Draft{}, c.Draft(), "fields must be cleared")
}

func TestScheduledSendMentionsDate(t *testing.T) {
	c, _, rec := newTestComposer(t)

	nextWeek := time.Now().Add(7 * 24 * time.Hour)

	c.Open("Sarah")
	c.SetContent("Hello")
	require.NoError(t, c.Schedule(nextWeek))

	letter, err := c.Send()
	require.NoError(t, err)
	assert.True(t, letter.Scheduled())

	note := rec.last()
	assert.True(t, note.Success)
	assert.Equal(t, "letter_scheduled", note.Code)
	assert.Contains(t, note.Text, nextWeek.Format("Jan 2, 2006"))
	assert.NotContains(t, note.Text, "has been sent")
}

func TestScheduleRejectsPastDate(t *testing.T) {
	c, _, _ := newTestComposer(t)

	c.Open("Sarah")
	c.SetContent("Hello")

	err := c.Schedule(time.Now().Add(-time.Hour))
	require.ErrorIs(t, err, ErrScheduleInPast)
	assert.True(t, c.Draft().ScheduledFor.IsZero())
}

func TestSubmitWhileSubmittingIsRejected(t *testing.T) {
	gw := newFakeGateway()
	rec := &recorder{}
	repo := NewRepository(gw, rec, "user-1")
	c := NewComposer(repo, rec)

	c.Open("Sarah")
	c.SetContent("Hello")

	// Simulate an in-flight submission
	_, err := c.beginSubmit(true)
	require.NoError(t, err)
	require.Equal(t, StateSubmitting, c.State())

	_, err = c.Send()
	require.ErrorIs(t, err, ErrSubmitInFlight)

	c.endSubmit(false)
	assert.Equal(t, StateEditing, c.State())
}

func TestFailedSendReturnsToEditingWithFieldsIntact(t *testing.T) {
	gw := newFakeGateway()
	rec := &recorder{}
	repo := NewRepository(gw, rec, "user-1")
	c := NewComposer(repo, rec)

	c.Open("Sarah")
	c.SetTitle("A thought")
	c.SetContent("Hello")

	gw.fail = errors.New("store unavailable")
	_, err := c.Send()
	require.Error(t, err)

	assert.Equal(t, StateEditing, c.State())
	draft := c.Draft()
	assert.Equal(t, "Sarah", draft.Recipient)
	assert.Equal(t, "A thought", draft.Title)
	assert.Equal(t, "Hello", draft.Content)

	// Exactly one notification, the failure
	require.Len(t, rec.all(), 1)
	assert.False(t, rec.last().Success)
}

func TestApplyTemplateReplacesContent(t *testing.T) {
	c, _, _ := newTestComposer(t)

	c.Open("Sarah")
	c.SetContent("My own words")

	c.ApplyTemplate(models.LetterTemplate{Title: "Anniversary", Content: "Template words"})

	assert.Equal(t, "Template words", c.Draft().Content, "template application replaces, never appends")
}

func TestOpenPrefillsRecipientOnly(t *testing.T) {
	c, _, _ := newTestComposer(t)

	c.Open("Sarah")

	draft := c.Draft()
	assert.Equal(t, "Sarah", draft.Recipient)
	assert.Empty(t, draft.Title)
	assert.Empty(t, draft.Content)
	assert.True(t, draft.ScheduledFor.IsZero())
	assert.Equal(t, StateEditing, c.State())
}
