package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"calbot/internal/domain"
	"calbot/internal/domain/entities"
	"calbot/internal/ports/output"
	"calbot/pkg/validate"
)

// RegistrationTracker turns reactions on published cards into registrations.
type RegistrationTracker struct {
	events          output.EventRepository
	messenger       output.Messenger
	vocab           output.Vocabulary
	renderer        *Renderer
	texts           texts
	defaultTimeZone string
	locks           *keyedMutex
	newID           func() string
}

func NewRegistrationTracker(
	events output.EventRepository,
	messenger output.Messenger,
	vocab output.Vocabulary,
	renderer *Renderer,
	translator output.T,
	settings Settings,
) *RegistrationTracker {
	return &RegistrationTracker{
		events:          events,
		messenger:       messenger,
		vocab:           vocab,
		renderer:        renderer,
		texts:           texts{t: translator, lang: settings.Language},
		defaultTimeZone: settings.DefaultTimeZone,
		locks:           newKeyedMutex(),
		newID:           newShortID,
	}
}

// Track records the pick of r.UserID on the event behind r.MessageID.
func (t *RegistrationTracker) Track(ctx context.Context, r entities.Reaction) error {
	unlock := t.locks.Lock(r.MessageID)
	defer unlock()

	ev, err := t.events.FindByMessageID(ctx, r.MessageID)
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		ev, err = t.reconstruct(ctx, r)
		if err != nil || ev == nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("find event by message: %w", err)
	}

	if !ev.Active || !ev.HasOptions() {
		return nil
	}

	if err := t.messenger.RemoveReaction(ctx, r.ChannelID, r.MessageID, r.Emoji, r.UserID); err != nil {
		if errors.Is(err, domain.ErrTransportPermissionDenied) {
			t.warnAuthor(ctx, ev)
		} else {
			log.Warn().Err(err).Str("event", ev.ShortID).Str("user", r.UserID).Msg("retract reaction")
		}
	}

	if !ev.Register(r.UserID, r.Emoji) {
		return nil
	}
	if err := t.events.UpdateFields(ctx, ev.ShortID, output.EventUpdate{Registrations: ev.Registrations}); err != nil {
		return fmt.Errorf("save registration on %s: %w", ev.ShortID, err)
	}
	log.Debug().Str("event", ev.ShortID).Str("user", r.UserID).Str("emoji", r.Emoji).Msg("registration recorded")

	if err := t.messenger.EditEvent(ctx, ev.ChannelID, ev.MessageID, t.renderer.Card(ctx, ev)); err != nil {
		log.Warn().Err(err).Str("event", ev.ShortID).Msg("re-render event card")
	}
	return nil
}

func (t *RegistrationTracker) warnAuthor(ctx context.Context, ev *entities.Event) {
	text := t.texts.get("creation.reactionPermissions", map[string]any{
		"Event":   ev.Title,
		"Channel": t.messenger.ChannelName(ctx, ev.ChannelID),
	})
	if err := t.messenger.SendDirect(ctx, ev.AuthorID, text); err != nil {
		log.Warn().Err(err).Str("author", ev.AuthorID).Msg("notify author of missing permissions")
	}
}

// reconstruct rebuilds the record of a card the bot posted but that has no
// stored event. It returns nil when the message is not one of our cards.
func (t *RegistrationTracker) reconstruct(ctx context.Context, r entities.Reaction) (*entities.Event, error) {
	snap, err := t.messenger.FetchSnapshot(ctx, r.ChannelID, r.MessageID)
	if err != nil {
		return nil, fmt.Errorf("fetch message %s: %w", r.MessageID, err)
	}
	if snap == nil || !snap.FromSelf || !snap.IsCard {
		return nil, nil
	}

	ev := entities.NewEvent()
	ev.ShortID = t.newID()
	ev.Status = entities.StatusNone
	ev.AuthorID = snap.AuthorID
	ev.ChannelID = r.ChannelID
	ev.GuildID = r.GuildID
	ev.MessageID = r.MessageID
	ev.Title = snap.Title
	ev.Description = snap.Description
	ev.EventDate = snap.EventDate
	ev.EventTimeZone = t.defaultTimeZone
	ev.UserTimeZone = t.defaultTimeZone
	ev.Active = true

	for _, reaction := range snap.Reactions {
		symbol, ok := validate.Emoji(reaction.Emoji, t.vocab)
		if !ok || ev.HasOption(symbol) {
			continue
		}
		ev.SetOption(symbol, "")
	}
	if ev.HasOptions() {
		ev.OptionsType = entities.OptionsCustom
	} else {
		ev.OptionsType = entities.OptionsNone
	}
	for _, reaction := range snap.Reactions {
		symbol, ok := validate.Emoji(reaction.Emoji, t.vocab)
		if !ok {
			continue
		}
		for _, userID := range reaction.UserIDs {
			ev.Register(userID, symbol)
		}
	}

	if err := t.events.Create(ctx, ev); err != nil {
		return nil, fmt.Errorf("store reconstructed event: %w", err)
	}
	log.Error().
		Str("event", ev.ShortID).
		Str("message_id", r.MessageID).
		Int("options", ev.Options.Len()).
		Int("registrations", ev.Registrations.Len()).
		Msg("event card without record, reconstructed from message")
	return ev, nil
}
