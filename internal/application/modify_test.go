package application

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calbot/internal/domain/entities"
)

func publishedEvent() *entities.Event {
	ev := draftAt(entities.StatusNone)
	ev.Title = "Launch Party"
	ev.MessageID = "msg-7"
	ev.SetDefaultOptions()
	ev.SetDefaultDecline()
	return ev
}

func TestModifyByAnotherAuthorExitsUntouched(t *testing.T) {
	e := newEngine(t, time.Minute)
	e.events.put(publishedEvent())

	e.dm("u2", "!modify abc123 title")

	assert.Equal(t, "modify.exiting", e.messenger.lastDirect("u2"))
	assert.False(t, e.sessions.HasActive("u2"))
	assert.Empty(t, e.events.updates)
	assert.Equal(t, "Launch Party", e.events.get("abc123").Title)
}

func TestModifyTitle(t *testing.T) {
	e := newEngine(t, time.Minute)
	e.events.put(publishedEvent())

	e.dm("u1", "!modify ABC123 title")
	assert.Equal(t, "modify.title", e.messenger.lastDirect("u1"))
	draft := e.sessions.Get("u1")
	require.NotNil(t, draft)
	assert.Equal(t, entities.StatusWaitingForTitle, draft.Status)

	e.dm("u1", "Launch Party v2")
	assert.Equal(t, "modify.updated", e.messenger.lastDirect("u1"))
	assert.False(t, e.sessions.HasActive("u1"))
	assert.Equal(t, "Launch Party v2", e.events.get("abc123").Title)
	require.Len(t, e.messenger.edited, 1)
	assert.Equal(t, "Launch Party v2", e.messenger.edited[0].Title)
}

func TestModifyTimeResetsReminder(t *testing.T) {
	e := newEngine(t, time.Minute)
	ev := publishedEvent()
	minutes := 30
	ev.Reminder = &minutes
	ev.ReminderSent = true
	e.events.put(ev)

	e.dm("u1", "!modify abc123 time", "31-12-2001 10:00")
	assert.Equal(t, "creation.dateExceeded", e.messenger.lastDirect("u1"))
	assert.True(t, e.sessions.HasActive("u1"))

	e.dm("u1", "31-12-2031 10:00")
	stored := e.events.get("abc123")
	assert.True(t, time.Date(2031, 12, 31, 10, 0, 0, 0, time.UTC).Equal(stored.EventDate))
	assert.False(t, stored.ReminderSent)
	assert.False(t, e.sessions.HasActive("u1"))
}

func TestModifyDelete(t *testing.T) {
	e := newEngine(t, time.Minute)
	e.events.put(publishedEvent())

	e.dm("u1", "!modify abc123 delete", "maybe")
	assert.Equal(t, "modify.deleteConfirm", e.messenger.lastDirect("u1"))
	assert.True(t, e.events.get("abc123").Active)

	e.dm("u1", "yes")
	assert.False(t, e.events.get("abc123").Active)
	assert.Contains(t, e.messenger.deleted, "msg-7")
	assert.False(t, e.sessions.HasActive("u1"))
}

func TestModifyReminder(t *testing.T) {
	e := newEngine(t, time.Minute)
	e.events.put(publishedEvent())

	e.dm("u1", "!modify abc123 reminder", "-5")
	assert.Equal(t, "modify.reminderTime", e.messenger.lastDirect("u1"))

	e.dm("u1", "15")
	stored := e.events.get("abc123")
	require.NotNil(t, stored.Reminder)
	assert.Equal(t, 15, *stored.Reminder)
	assert.False(t, e.sessions.HasActive("u1"))
}

func TestModifyUnknownField(t *testing.T) {
	e := newEngine(t, time.Minute)
	e.events.put(publishedEvent())

	e.dm("u1", "!modify abc123 colour")
	assert.Equal(t, "modify.unknown", e.messenger.lastDirect("u1"))
	assert.False(t, e.sessions.HasActive("u1"))
	assert.Empty(t, e.events.updates)
}

func TestModifyWithoutIDListsEvents(t *testing.T) {
	e := newEngine(t, time.Minute)
	e.events.put(publishedEvent())

	e.dm("u1", "!modify")
	assert.Equal(t, "modify.summary", e.messenger.lastDirect("u1"))
	assert.False(t, e.sessions.HasActive("u1"))

	e.dm("u9", "!modify")
	assert.Equal(t, "modify.noEvents", e.messenger.lastDirect("u9"))
}

func TestModifyWriteFailureKeepsState(t *testing.T) {
	e := newEngine(t, time.Minute)
	e.events.put(publishedEvent())

	e.dm("u1", "!modify abc123 description")
	e.events.updateErr = errors.New("connection reset")
	e.dm("u1", "New description")

	assert.Equal(t, "errors.generic", e.messenger.lastDirect("u1"))
	draft := e.sessions.Get("u1")
	require.NotNil(t, draft)
	assert.Equal(t, entities.StatusWaitingForDescription, draft.Status)
}

func TestSummaryLine(t *testing.T) {
	ev := publishedEvent()
	ev.EventTimeZone = "Europe/Paris"
	assert.Equal(t, "ID [ **abc123** ] : Launch Party - (01-01-2030 20:00)", summaryLine(*ev))
}
