package application

import (
	"context"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"calbot/internal/domain"
	"calbot/internal/domain/entities"
)

const (
	shortIDAlphabet = "1234567890abcdefghijklmnopqrstuvwxyz"
	shortIDLength   = 6
)

func newShortID() string {
	return gonanoid.MustGenerate(shortIDAlphabet, shortIDLength)
}

// SessionMeta describes the context a draft is opened in.
type SessionMeta struct {
	AuthorName      string
	ChannelID       string
	GuildID         string
	SessionType     entities.SessionType
	Preference      *entities.UserPreference // nil when the author never set up time zones
	DefaultTimeZone string
}

// SessionStore holds at most one in-progress draft per author. It never
// persists anything: persistence is supplied by the workflow on Finish.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*entities.Event
	newID    func() string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*entities.Event),
		newID:    newShortID,
	}
}

// Create opens a draft for authorID and returns nil when one already exists.
func (s *SessionStore) Create(authorID string, meta SessionMeta) *entities.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[authorID]; ok {
		return nil
	}

	ev := entities.NewEvent()
	ev.ShortID = s.newID()
	ev.SessionType = meta.SessionType
	ev.AuthorID = authorID
	ev.AuthorName = meta.AuthorName
	ev.ChannelID = meta.ChannelID
	ev.GuildID = meta.GuildID
	ev.Active = true
	ev.UserTimeZone = meta.DefaultTimeZone
	ev.EventTimeZone = meta.DefaultTimeZone
	if meta.Preference != nil {
		ev.UserTimeZone = meta.Preference.UserTimeZone
		ev.EventTimeZone = meta.Preference.EventTimeZone
	}
	switch {
	case meta.SessionType == entities.SessionModify:
		ev.Status = entities.StatusNone
	case meta.Preference == nil:
		ev.Status = entities.StatusWaitingForFirstTimeUser
	default:
		ev.Status = entities.StatusWaitingForTitle
	}

	s.sessions[authorID] = ev
	return ev
}

func (s *SessionStore) Get(authorID string) *entities.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[authorID]
}

// Set replaces the draft of authorID.
func (s *SessionStore) Set(authorID string, ev *entities.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[authorID] = ev
}

func (s *SessionStore) HasActive(authorID string) bool {
	return s.Get(authorID) != nil
}

// Discard evicts the draft without persisting it and returns it.
func (s *SessionStore) Discard(authorID string) *entities.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.sessions[authorID]
	delete(s.sessions, authorID)
	return ev
}

// Finish hands the draft to persist, then evicts it. The draft is evicted
// even when persist fails; its error is returned.
func (s *SessionStore) Finish(ctx context.Context, authorID string, persist func(context.Context, *entities.Event) error) error {
	ev := s.Get(authorID)
	if ev == nil {
		return domain.ErrSessionNotFound
	}

	var err error
	if persist != nil {
		err = persist(ctx, ev)
	}

	s.mu.Lock()
	if s.sessions[authorID] == ev {
		delete(s.sessions, authorID)
	}
	s.mu.Unlock()
	return err
}
