package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"calbot/internal/domain"
	"calbot/internal/domain/entities"
	"calbot/internal/ports/output"
	"calbot/pkg/tz"
	"calbot/pkg/validate"
)

var _ Workflow = (*CreationWorkflow)(nil)

// CreationWorkflow walks an author through a new event, one message at a
// time. Nothing is written until the draft reaches Done.
type CreationWorkflow struct {
	events    output.EventRepository
	users     output.UserRepository
	messenger output.Messenger
	vocab     output.Vocabulary
	renderer  *Renderer
	texts     texts
	now       func() time.Time
}

func NewCreationWorkflow(
	events output.EventRepository,
	users output.UserRepository,
	messenger output.Messenger,
	vocab output.Vocabulary,
	renderer *Renderer,
	translator output.T,
	language string,
) *CreationWorkflow {
	return &CreationWorkflow{
		events:    events,
		users:     users,
		messenger: messenger,
		vocab:     vocab,
		renderer:  renderer,
		texts:     texts{t: translator, lang: language},
		now:       time.Now,
	}
}

func (w *CreationWorkflow) Command() string                   { return createCommand }
func (w *CreationWorkflow) ChannelKind() entities.ChannelKind { return entities.ChannelText }
func (w *CreationWorkflow) SessionType() entities.SessionType { return entities.SessionCreate }

func (w *CreationWorkflow) Handle(ctx context.Context, msg entities.InboundMessage, ev *entities.Event) Result {
	input := strings.TrimSpace(msg.Content)

	// The command is only valid in a guild text channel, answers only by DM.
	if input == createCommand {
		if msg.ChannelKind != entities.ChannelText {
			return Result{Status: ev.Status}
		}
		if err := w.messenger.DeleteMessage(ctx, msg.ChannelID, msg.ID); err != nil {
			if errors.Is(err, domain.ErrTransportPermissionDenied) {
				log.Warn().Err(err).Str("channel", msg.ChannelID).Msg("cannot manage messages in event channel")
				return Result{
					Status: ev.Status,
					Reply: w.texts.get("creation.noPermissions", map[string]any{
						"Channel": w.messenger.ChannelName(ctx, msg.ChannelID),
					}),
				}
			}
			log.Warn().Err(err).Str("channel", msg.ChannelID).Msg("delete command message")
		}
	} else if msg.ChannelKind != entities.ChannelDM {
		return Result{Status: ev.Status}
	}

	var reply string
	switch input {
	case exitCommand:
		ev.Status = entities.StatusExit
	case createCommand:
		// Re-issuing the command only repeats the current prompt.
	default:
		reply = w.step(ctx, ev, input)
	}
	if reply == "" {
		reply = w.prompt(ctx, ev)
	}
	return Result{Status: ev.Status, Reply: reply}
}

// step applies input to the current state and returns an explicit reply, or
// "" to let the prompt of the (possibly new) state be shown.
func (w *CreationWorkflow) step(ctx context.Context, ev *entities.Event, input string) string {
	lower := strings.ToLower(input)
	now := w.now()

	switch ev.Status {
	case entities.StatusWaitingForFirstTimeUser:
		if lower == "ok" {
			ev.Status = entities.StatusWaitingForTitle
		}

	case entities.StatusWaitingForTitle:
		if err := checkLength(input, maxTitleLength); err != nil {
			return w.texts.failure(err, nil)
		}
		ev.Title = input
		ev.Status = entities.StatusWaitingForDescription

	case entities.StatusWaitingForDescription:
		ev.Description = input
		if w.hasPreference(ctx, ev) {
			ev.Status = entities.StatusWaitingForTimeZoneConfirmation
		} else {
			ev.Status = entities.StatusWaitingForUserTimeZone
		}

	case entities.StatusWaitingForUserTimeZone:
		if utf8.RuneCountInString(input) == 2 && lower != "ok" {
			zones := tz.ZonesForCountry(input)
			if len(zones) == 0 {
				return w.texts.get("creation.invalidTimeZone", nil)
			}
			return w.texts.get("creation.pickOne", nil) + "\n```" + strings.Join(zones, "\n") + "```"
		}
		zone := input
		if lower == "ok" {
			zone = ev.EventTimeZone
		}
		if !validate.TimeZone(zone) {
			return w.texts.get("creation.invalidTimeZone", nil)
		}
		ev.UserTimeZone = zone
		ev.Status = entities.StatusWaitingForUserTimeZoneConfirmation

	case entities.StatusWaitingForUserTimeZoneConfirmation:
		switch lower {
		case "ok":
			w.savePreference(ctx, ev)
			ev.Status = entities.StatusWaitingForDate
		case "edit":
			ev.Status = entities.StatusWaitingForUserTimeZone
		}

	case entities.StatusWaitingForTimeZoneConfirmation:
		switch lower {
		case "ok":
			ev.Status = entities.StatusWaitingForDate
		case "edit":
			ev.Status = entities.StatusWaitingForUserTimeZone
		}

	case entities.StatusWaitingForDate:
		date, err := validate.DateTime(input+" 23:59", ev.UserTimeZone, now)
		if err != nil {
			return w.texts.validation(err, ev.UserTimeZone, now)
		}
		ev.EventDate = date
		ev.Status = entities.StatusWaitingForTime

	case entities.StatusWaitingForTime:
		day := tz.In(ev.EventDate, ev.UserTimeZone).Format(validate.DateLayout)
		date, err := validate.DateTime(day+" "+input, ev.UserTimeZone, now)
		if err != nil {
			return w.texts.validation(err, ev.UserTimeZone, now)
		}
		ev.EventDate = date
		ev.Status = entities.StatusWaitingForOptions

	case entities.StatusWaitingForOptions:
		return w.option(ctx, ev, input)

	case entities.StatusWaitingForDeclineOption:
		return w.declineOption(ctx, ev, input)

	default:
		ev.Status = entities.StatusExit
	}
	return ""
}

func (w *CreationWorkflow) option(ctx context.Context, ev *entities.Event, input string) string {
	params := strings.Fields(input)
	if len(params) == 0 {
		return w.texts.get("creation.invalidOption", nil)
	}

	switch strings.ToLower(params[0]) {
	case "default":
		ev.SetDefaultOptions()
		ev.SetDefaultDecline()
		ev.OptionsType = entities.OptionsDefault
		return w.done(ctx, ev)
	case "clear":
		ev.ClearOptions()
		return w.texts.get("creation.optionsCleared", nil)
	case "done":
		if ev.HasOptions() {
			ev.OptionsType = entities.OptionsCustom
			ev.Status = entities.StatusWaitingForDeclineOption
			return ""
		}
		ev.OptionsType = entities.OptionsNone
		return w.done(ctx, ev)
	}

	if len(params) < 2 {
		return w.texts.get("creation.invalidOption", nil)
	}
	symbol, err := w.optionSymbol(ev, params[0])
	if err != nil {
		return w.texts.failure(err, nil)
	}
	label := strings.TrimSpace(strings.TrimPrefix(input, params[0]))
	if err := checkLength(label, maxLabelLength); err != nil {
		return w.texts.failure(err, nil)
	}
	ev.SetOption(symbol, label)

	var options strings.Builder
	for pair := ev.Options.Oldest(); pair != nil; pair = pair.Next() {
		options.WriteString(pair.Key + " " + pair.Value + "\n")
	}
	return w.texts.get("creation.moreOptions", map[string]any{"Options": options.String()})
}

func (w *CreationWorkflow) declineOption(ctx context.Context, ev *entities.Event, input string) string {
	switch strings.ToLower(input) {
	case "ok":
		return w.done(ctx, ev)
	case "default":
		if ev.HasOption(entities.DefaultDecline) {
			return w.texts.failure(domain.ErrEmojiAlreadyUsed, nil)
		}
		ev.SetDefaultDecline()
		return w.done(ctx, ev)
	}

	symbol, err := w.optionSymbol(ev, input)
	if err != nil {
		return w.texts.failure(err, nil)
	}
	ev.SetOption(symbol, w.texts.get("creation.decline", nil))
	ev.DeclineOption = symbol
	return w.done(ctx, ev)
}

// optionSymbol resolves text to an emoji no option of ev uses yet.
func (w *CreationWorkflow) optionSymbol(ev *entities.Event, text string) (string, error) {
	symbol, ok := validate.Emoji(text, w.vocab)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidEmoji, text)
	}
	if ev.HasOption(symbol) {
		return "", fmt.Errorf("%w: %s", domain.ErrEmojiAlreadyUsed, symbol)
	}
	return symbol, nil
}

// done posts the event card without reactions; they are added by Finalize
// once the record exists.
func (w *CreationWorkflow) done(ctx context.Context, ev *entities.Event) string {
	ev.Status = entities.StatusDone
	messageID, err := w.messenger.PostEvent(ctx, ev.ChannelID, w.renderer.Card(ctx, ev))
	if err != nil {
		log.Error().Err(err).Str("event", ev.ShortID).Str("channel", ev.ChannelID).Msg("post event card")
		failure := "errors.generic"
		if errors.Is(err, domain.ErrTransportPermissionDenied) {
			failure = "creation.noPermissions"
		}
		return w.prompt(ctx, ev) + "\n\n" + w.texts.get(failure, map[string]any{
			"Channel": w.messenger.ChannelName(ctx, ev.ChannelID),
		})
	}
	ev.MessageID = messageID
	return ""
}

// Finalize stores a finished draft and attaches one reaction per option, in
// option order. Exited drafts are dropped.
func (w *CreationWorkflow) Finalize(ctx context.Context, ev *entities.Event) error {
	if ev.Status != entities.StatusDone {
		return nil
	}
	if err := w.events.Create(ctx, ev); err != nil {
		if ev.MessageID != "" {
			if derr := w.messenger.DeleteMessage(ctx, ev.ChannelID, ev.MessageID); derr != nil {
				log.Warn().Err(derr).Str("message_id", ev.MessageID).Msg("delete orphan event card")
			}
		}
		return fmt.Errorf("create event %s: %w", ev.ShortID, err)
	}
	log.Info().Str("event", ev.ShortID).Str("author", ev.AuthorID).Msg("event created")

	if ev.MessageID == "" {
		return nil
	}
	for _, symbol := range ev.OptionKeys() {
		if err := w.messenger.AddReaction(ctx, ev.ChannelID, ev.MessageID, symbol); err != nil {
			log.Warn().Err(err).Str("event", ev.ShortID).Str("emoji", symbol).Msg("add option reaction")
		}
	}
	return nil
}

func (w *CreationWorkflow) hasPreference(ctx context.Context, ev *entities.Event) bool {
	_, err := w.users.FindPreference(ctx, ev.AuthorID, ev.GuildID)
	if err != nil && !errors.Is(err, domain.ErrPreferenceNotFound) {
		log.Error().Err(err).Str("author", ev.AuthorID).Msg("find user preference")
	}
	return err == nil
}

func (w *CreationWorkflow) savePreference(ctx context.Context, ev *entities.Event) {
	pref := &entities.UserPreference{
		UserID:        ev.AuthorID,
		GuildID:       ev.GuildID,
		UserTimeZone:  ev.UserTimeZone,
		EventTimeZone: ev.EventTimeZone,
		Active:        true,
	}
	if err := w.users.UpsertPreference(ctx, pref); err != nil {
		log.Error().Err(err).Str("author", ev.AuthorID).Msg("save user preference")
	}
}

func (w *CreationWorkflow) prompt(ctx context.Context, ev *entities.Event) string {
	now := w.now()
	switch ev.Status {
	case entities.StatusExit:
		return w.texts.get("creation.exit", nil)
	case entities.StatusDone:
		return w.texts.get("creation.done", map[string]any{"ID": ev.ShortID})
	case entities.StatusWaitingForFirstTimeUser:
		return w.texts.get("creation.firstTimeUser", map[string]any{
			"Username":  ev.AuthorName,
			"GuildName": w.messenger.GuildName(ctx, ev.GuildID),
		})
	case entities.StatusWaitingForTitle:
		return w.texts.get("creation.eventTitle", nil)
	case entities.StatusWaitingForDescription:
		return w.texts.get("creation.eventBody", nil)
	case entities.StatusWaitingForServerTimeZone:
		return w.texts.get("creation.eventTimeZone", map[string]any{"TimeZone": ev.EventTimeZone})
	case entities.StatusWaitingForServerTimeZoneConfirmation:
		return w.texts.get("creation.confirmTimeZone", map[string]any{
			"TimeZone": ev.EventTimeZone,
			"DateTime": tz.In(now, ev.EventTimeZone).Format(validate.DateTimeLayout),
		})
	case entities.StatusWaitingForUserTimeZone:
		return w.texts.get("creation.userTimeZone", map[string]any{"TimeZone": ev.UserTimeZone})
	case entities.StatusWaitingForUserTimeZoneConfirmation:
		return w.texts.get("creation.confirmTimeZone", map[string]any{
			"TimeZone": ev.UserTimeZone,
			"DateTime": tz.In(now, ev.UserTimeZone).Format(validate.DateTimeLayout),
		})
	case entities.StatusWaitingForTimeZoneConfirmation:
		return w.texts.get("creation.showChosenTimeZones", map[string]any{
			"EventTimeZone": ev.EventTimeZone,
			"UserTimeZone":  ev.UserTimeZone,
		})
	case entities.StatusWaitingForDate:
		return w.texts.get("creation.eventDate", nil)
	case entities.StatusWaitingForTime:
		return w.texts.get("creation.eventTime", nil)
	case entities.StatusWaitingForOptions:
		return w.texts.get("creation.options", nil)
	case entities.StatusWaitingForDeclineOption:
		return w.texts.get("creation.declineOption", nil)
	}
	return ""
}
