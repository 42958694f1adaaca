package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calbot/internal/domain/entities"
)

func reminderEvent(id string, start time.Time, minutes int) *entities.Event {
	ev := draftAt(entities.StatusNone)
	ev.ShortID = id
	ev.MessageID = "msg-" + id
	ev.Title = "Raid night"
	ev.EventDate = start
	ev.Reminder = &minutes
	ev.SetDefaultOptions()
	ev.SetDefaultDecline()
	ev.Register("u2", "✅")
	ev.Register("u3", entities.DefaultDecline)
	ev.Register("u4", "❔")
	return ev
}

func newReminderService(events *memEvents, messenger *recordingMessenger, now time.Time, captured *map[string]any) *ReminderService {
	translator := translatorFunc(func(_, key string, data map[string]any) string {
		if captured != nil {
			*captured = data
		}
		return key
	})
	s := NewReminderService(events, messenger, translator, "en")
	s.now = func() time.Time { return now }
	return s
}

func TestReminderFiresOnce(t *testing.T) {
	now := time.Date(2030, 1, 1, 18, 0, 0, 0, time.UTC)
	events := newMemEvents()
	messenger := newRecordingMessenger()
	events.put(reminderEvent("due001", now.Add(10*time.Minute), 15))

	var data map[string]any
	s := newReminderService(events, messenger, now, &data)
	require.NoError(t, s.Tick(context.Background()))
	require.NoError(t, s.Tick(context.Background()))

	require.Len(t, messenger.channel, 1)
	assert.Equal(t, "events", messenger.channel[0].to)
	assert.Equal(t, "reminder.channelReminder", messenger.channel[0].text)
	assert.Equal(t, "<@u2> <@u4>", data["UserIDs"])
	assert.Equal(t, 15, data["Minutes"])
	assert.Equal(t, "Tuesday, January 1 2030, 18:10 GMT", data["Date"])
	assert.True(t, events.get("due001").ReminderSent)
}

func TestReminderWaitsForLeadTime(t *testing.T) {
	now := time.Date(2030, 1, 1, 18, 0, 0, 0, time.UTC)
	events := newMemEvents()
	messenger := newRecordingMessenger()
	events.put(reminderEvent("later1", now.Add(2*time.Hour), 30))

	s := newReminderService(events, messenger, now, nil)
	require.NoError(t, s.Tick(context.Background()))

	assert.Empty(t, messenger.channel)
	assert.False(t, events.get("later1").ReminderSent)
}

func TestReminderRetriesFailedSend(t *testing.T) {
	now := time.Date(2030, 1, 1, 18, 0, 0, 0, time.UTC)
	events := newMemEvents()
	messenger := newRecordingMessenger()
	messenger.sendErr = errors.New("gateway timeout")
	events.put(reminderEvent("retry1", now.Add(5*time.Minute), 10))

	s := newReminderService(events, messenger, now, nil)
	require.NoError(t, s.Tick(context.Background()))
	assert.False(t, events.get("retry1").ReminderSent)

	messenger.sendErr = nil
	require.NoError(t, s.Tick(context.Background()))
	assert.Len(t, messenger.channel, 1)
	assert.True(t, events.get("retry1").ReminderSent)
}

func TestReminderWithoutAttendeesIsMarkedSent(t *testing.T) {
	now := time.Date(2030, 1, 1, 18, 0, 0, 0, time.UTC)
	events := newMemEvents()
	messenger := newRecordingMessenger()
	ev := reminderEvent("empty1", now.Add(5*time.Minute), 10)
	ev.Registrations = nil
	events.put(ev)

	s := newReminderService(events, messenger, now, nil)
	require.NoError(t, s.Tick(context.Background()))

	assert.Empty(t, messenger.channel)
	assert.True(t, events.get("empty1").ReminderSent)
}

func TestReminderWithLongLeadIsNotStarvedByNearerEvents(t *testing.T) {
	now := time.Date(2030, 1, 1, 18, 0, 0, 0, time.UTC)
	events := newMemEvents()
	messenger := newRecordingMessenger()
	for i := 0; i < reminderBatch; i++ {
		events.put(reminderEvent(fmt.Sprintf("near%02d", i), now.Add(time.Duration(i+2)*time.Hour), 5))
	}
	events.put(reminderEvent("far001", now.Add(20*time.Hour), 24*60))

	s := newReminderService(events, messenger, now, nil)
	require.NoError(t, s.Tick(context.Background()))

	require.Len(t, messenger.channel, 1)
	assert.True(t, events.get("far001").ReminderSent)
	assert.False(t, events.get("near00").ReminderSent)
}
