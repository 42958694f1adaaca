package application

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"calbot/internal/domain"
	"calbot/internal/domain/entities"
	"calbot/internal/ports/input"
	"calbot/internal/ports/output"
)

var (
	_ input.MessageHandler  = (*Dispatcher)(nil)
	_ input.ReactionHandler = (*Dispatcher)(nil)
)

type route struct {
	command string
	kind    entities.ChannelKind
}

// Dispatcher routes inbound messages to the workflow owning the author's
// session, opening one when a command is recognised.
type Dispatcher struct {
	sessions  *SessionStore
	timers    *SessionTimers
	users     output.UserRepository
	messenger output.Messenger
	tracker   *RegistrationTracker
	texts     texts
	settings  Settings
	authors   *keyedMutex

	byCommand map[route]Workflow
	byType    map[entities.SessionType]Workflow
}

func NewDispatcher(
	sessions *SessionStore,
	timers *SessionTimers,
	users output.UserRepository,
	messenger output.Messenger,
	tracker *RegistrationTracker,
	translator output.T,
	settings Settings,
	workflows ...Workflow,
) *Dispatcher {
	d := &Dispatcher{
		sessions:  sessions,
		timers:    timers,
		users:     users,
		messenger: messenger,
		tracker:   tracker,
		texts:     texts{t: translator, lang: settings.Language},
		settings:  settings,
		authors:   newKeyedMutex(),
		byCommand: make(map[route]Workflow, len(workflows)),
		byType:    make(map[entities.SessionType]Workflow, len(workflows)),
	}
	for _, wf := range workflows {
		d.byCommand[route{command: wf.Command(), kind: wf.ChannelKind()}] = wf
		d.byType[wf.SessionType()] = wf
	}
	return d
}

// HandleMessage advances the author's session by one message.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg entities.InboundMessage) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	unlock := d.authors.Lock(msg.AuthorID)
	defer unlock()

	content := strings.TrimSpace(msg.Content)
	if content == helpCommand && msg.ChannelKind == entities.ChannelDM {
		d.reply(ctx, msg.AuthorID, d.texts.get("general.help", nil))
		return
	}

	var wf Workflow
	draft := d.sessions.Get(msg.AuthorID)
	if draft != nil {
		wf = d.byType[draft.SessionType]
	} else {
		command := content
		if fields := strings.Fields(content); len(fields) > 0 {
			command = fields[0]
		}
		wf = d.byCommand[route{command: command, kind: msg.ChannelKind}]
		if wf == nil {
			return
		}
		draft = d.sessions.Create(msg.AuthorID, SessionMeta{
			AuthorName:      msg.AuthorName,
			ChannelID:       msg.ChannelID,
			GuildID:         msg.GuildID,
			SessionType:     wf.SessionType(),
			Preference:      d.preference(ctx, msg.AuthorID, msg.GuildID),
			DefaultTimeZone: d.settings.DefaultTimeZone,
		})
		if draft == nil {
			return
		}
		log.Debug().Str("author", msg.AuthorID).Str("type", string(wf.SessionType())).Msg("session opened")
	}
	if wf == nil {
		d.sessions.Discard(msg.AuthorID)
		return
	}

	res := wf.Handle(ctx, msg, draft)
	if res.Draft != nil {
		d.sessions.Set(msg.AuthorID, res.Draft)
	}

	if res.Status.IsTerminal() {
		d.timers.Cancel(msg.AuthorID)
		if err := d.sessions.Finish(ctx, msg.AuthorID, wf.Finalize); err != nil {
			log.Error().Err(err).Str("author", msg.AuthorID).Msg("finish session")
			res.Reply = d.texts.get("errors.generic", nil)
		}
		log.Debug().Str("author", msg.AuthorID).Int("status", int(res.Status)).Msg("session closed")
	} else {
		author := msg.AuthorID
		d.timers.Reset(author, d.settings.SessionTimeout, func() { d.expire(author) })
	}
	d.reply(ctx, msg.AuthorID, res.Reply)
}

// HandleReaction keeps the reactor's session alive and records the reaction.
func (d *Dispatcher) HandleReaction(ctx context.Context, r entities.Reaction) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	if d.timers.Pending(r.UserID) && d.sessions.HasActive(r.UserID) {
		author := r.UserID
		d.timers.Reset(author, d.settings.SessionTimeout, func() { d.expire(author) })
	}
	if err := d.tracker.Track(ctx, r); err != nil {
		log.Error().Err(err).Str("message_id", r.MessageID).Str("user", r.UserID).Msg("track reaction")
	}
}

// expire drops an idle session without persisting it.
func (d *Dispatcher) expire(authorID string) {
	ctx, cancel := d.withTimeout(context.Background())
	defer cancel()

	unlock := d.authors.Lock(authorID)
	defer unlock()

	// A message handled while waiting for the lock re-armed the timer.
	if d.timers.Pending(authorID) {
		return
	}
	if d.sessions.Discard(authorID) == nil {
		return
	}
	log.Info().Str("author", authorID).Msg("session expired")
	d.reply(ctx, authorID, d.texts.get("general.sessionEnd", nil))
}

func (d *Dispatcher) preference(ctx context.Context, userID, guildID string) *entities.UserPreference {
	if guildID == "" {
		return nil
	}
	pref, err := d.users.FindPreference(ctx, userID, guildID)
	if err != nil {
		if !errors.Is(err, domain.ErrPreferenceNotFound) {
			log.Error().Err(err).Str("author", userID).Msg("find user preference")
		}
		return nil
	}
	return pref
}

func (d *Dispatcher) reply(ctx context.Context, userID, text string) {
	if text == "" {
		return
	}
	if err := d.messenger.SendDirect(ctx, userID, text); err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("send direct message")
	}
}

func (d *Dispatcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.settings.IOTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.settings.IOTimeout)
}
