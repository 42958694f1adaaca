package application

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/mock"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"calbot/internal/domain"
	"calbot/internal/domain/entities"
	"calbot/internal/ports/output"
)

// captureLog sends the global logger to a buffer for the duration of t.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

// keyTranslator renders every message as its key so tests can match on it.
type keyTranslator struct{}

func (keyTranslator) T(_, key string, _ map[string]any) string { return key }

type vocabulary map[string]string

func (v vocabulary) CustomEmoji(name string) (string, bool) {
	s, ok := v[name]
	return s, ok
}

func copyMap(m *orderedmap.OrderedMap[string, string]) *orderedmap.OrderedMap[string, string] {
	out := orderedmap.New[string, string]()
	if m == nil {
		return out
	}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
	}
	return out
}

func copyEvent(ev *entities.Event) *entities.Event {
	c := *ev
	c.Options = copyMap(ev.Options)
	c.Registrations = copyMap(ev.Registrations)
	return &c
}

// memEvents is an in-memory EventRepository.
type memEvents struct {
	mu        sync.Mutex
	events    map[string]*entities.Event
	createErr error
	updateErr error
	updates   []output.EventUpdate
}

func newMemEvents() *memEvents {
	return &memEvents{events: make(map[string]*entities.Event)}
}

func (r *memEvents) Create(_ context.Context, ev *entities.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.events[ev.ShortID] = copyEvent(ev)
	return nil
}

func (r *memEvents) FindByShortID(_ context.Context, shortID, authorID string) (*entities.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[shortID]
	if !ok || !ev.Active {
		return nil, domain.ErrEventNotFound
	}
	if ev.AuthorID != authorID {
		return nil, domain.ErrOwnershipMismatch
	}
	return copyEvent(ev), nil
}

func (r *memEvents) FindByMessageID(_ context.Context, messageID string) (*entities.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.MessageID == messageID {
			return copyEvent(ev), nil
		}
	}
	return nil, domain.ErrEventNotFound
}

func (r *memEvents) FindUserEvents(_ context.Context, authorID string, limit int, futureOnly bool, now time.Time) ([]entities.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.Event
	for _, ev := range r.events {
		if ev.AuthorID != authorID || !ev.Active || (futureOnly && ev.EventDate.Before(now)) {
			continue
		}
		out = append(out, *copyEvent(ev))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.After(out[j].EventDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memEvents) FindDueReminders(_ context.Context, limit int, now time.Time) ([]entities.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.Event
	for _, ev := range r.events {
		if !ev.Active || ev.Reminder == nil || ev.ReminderSent || ev.EventDate.Before(now) {
			continue
		}
		if ev.EventDate.After(now.Add(time.Duration(*ev.Reminder) * time.Minute)) {
			continue
		}
		out = append(out, *copyEvent(ev))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.Before(out[j].EventDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memEvents) UpdateFields(_ context.Context, shortID string, u output.EventUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	ev, ok := r.events[shortID]
	if !ok {
		return domain.ErrEventNotFound
	}
	r.updates = append(r.updates, u)
	if u.Title != nil {
		ev.Title = *u.Title
	}
	if u.Description != nil {
		ev.Description = *u.Description
	}
	if u.EventDate != nil {
		ev.EventDate = *u.EventDate
	}
	if u.Active != nil {
		ev.Active = *u.Active
	}
	if u.Reminder != nil {
		minutes := *u.Reminder
		ev.Reminder = &minutes
	}
	if u.ReminderSent != nil {
		ev.ReminderSent = *u.ReminderSent
	}
	if u.Registrations != nil {
		ev.Registrations = copyMap(u.Registrations)
	}
	return nil
}

func (r *memEvents) MarkReminderSent(_ context.Context, shortID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[shortID]
	if !ok || ev.ReminderSent {
		return false, nil
	}
	ev.ReminderSent = true
	return true, nil
}

func (r *memEvents) get(shortID string) *entities.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev, ok := r.events[shortID]; ok {
		return copyEvent(ev)
	}
	return nil
}

func (r *memEvents) put(ev *entities.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[ev.ShortID] = copyEvent(ev)
}

func (r *memEvents) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// mockUsers is a testify mock of the preference store.
type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) FindPreference(ctx context.Context, userID, guildID string) (*entities.UserPreference, error) {
	args := m.Called(ctx, userID, guildID)
	pref, _ := args.Get(0).(*entities.UserPreference)
	return pref, args.Error(1)
}

func (m *mockUsers) UpsertPreference(ctx context.Context, pref *entities.UserPreference) error {
	return m.Called(ctx, pref).Error(0)
}

// noPreferences returns a user store where nobody configured time zones yet.
func noPreferences() *mockUsers {
	users := &mockUsers{}
	users.On("FindPreference", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrPreferenceNotFound)
	users.On("UpsertPreference", mock.Anything, mock.Anything).Return(nil)
	return users
}

type sent struct {
	to   string
	text string
}

type reaction struct {
	messageID string
	emoji     string
	userID    string
}

// recordingMessenger records every outbound call.
type recordingMessenger struct {
	mu        sync.Mutex
	direct    []sent
	channel   []sent
	posted    []entities.EventCard
	edited    []entities.EventCard
	deleted   []string
	added     []reaction
	removed   []reaction
	snapshots map[string]*entities.MessageSnapshot
	names     map[string]string
	nextID    int

	deleteErr error
	removeErr error
	sendErr   error
}

func newRecordingMessenger() *recordingMessenger {
	return &recordingMessenger{
		snapshots: make(map[string]*entities.MessageSnapshot),
		names:     make(map[string]string),
	}
}

func (m *recordingMessenger) SendDirect(_ context.Context, userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.direct = append(m.direct, sent{to: userID, text: text})
	return nil
}

func (m *recordingMessenger) SendChannel(_ context.Context, channelID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.channel = append(m.channel, sent{to: channelID, text: text})
	return nil
}

func (m *recordingMessenger) PostEvent(_ context.Context, _ string, card entities.EventCard) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.posted = append(m.posted, card)
	return fmt.Sprintf("msg-%d", m.nextID), nil
}

func (m *recordingMessenger) EditEvent(_ context.Context, _, _ string, card entities.EventCard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edited = append(m.edited, card)
	return nil
}

func (m *recordingMessenger) DeleteMessage(_ context.Context, _, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *recordingMessenger) AddReaction(_ context.Context, _, messageID, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added = append(m.added, reaction{messageID: messageID, emoji: emoji})
	return nil
}

func (m *recordingMessenger) RemoveReaction(_ context.Context, _, messageID, emoji, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeErr != nil {
		return m.removeErr
	}
	m.removed = append(m.removed, reaction{messageID: messageID, emoji: emoji, userID: userID})
	return nil
}

func (m *recordingMessenger) FetchSnapshot(_ context.Context, _, messageID string) (*entities.MessageSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshots[messageID], nil
}

func (m *recordingMessenger) DisplayName(_ context.Context, _, userID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name, ok := m.names[userID]; ok {
		return name
	}
	return userID
}

func (m *recordingMessenger) ChannelName(context.Context, string) string { return "events" }

func (m *recordingMessenger) GuildName(context.Context, string) string { return "guild" }

func (m *recordingMessenger) directTexts(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.direct {
		if s.to == userID {
			out = append(out, s.text)
		}
	}
	return out
}

func (m *recordingMessenger) lastDirect(userID string) string {
	texts := m.directTexts(userID)
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

type translatorFunc func(locale, key string, data map[string]any) string

func (f translatorFunc) T(locale, key string, data map[string]any) string { return f(locale, key, data) }
