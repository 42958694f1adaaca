package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"calbot/internal/domain"
	"calbot/internal/domain/entities"
	"calbot/internal/ports/output"
	"calbot/pkg/tz"
	"calbot/pkg/validate"
)

const summaryLimit = 5

var _ Workflow = (*ModificationWorkflow)(nil)

// modifyFields maps the field named after "!modify <id>" to its waiting state.
var modifyFields = map[string]entities.Status{
	"time":        entities.StatusWaitingForTime,
	"title":       entities.StatusWaitingForTitle,
	"description": entities.StatusWaitingForDescription,
	"delete":      entities.StatusWaitingForDelete,
	"reminder":    entities.StatusWaitingForReminder,
}

// ModificationWorkflow edits one field of a published event. Every accepted
// answer is written through immediately.
type ModificationWorkflow struct {
	events    output.EventRepository
	messenger output.Messenger
	renderer  *Renderer
	texts     texts
	now       func() time.Time
}

func NewModificationWorkflow(
	events output.EventRepository,
	messenger output.Messenger,
	renderer *Renderer,
	translator output.T,
	language string,
) *ModificationWorkflow {
	return &ModificationWorkflow{
		events:    events,
		messenger: messenger,
		renderer:  renderer,
		texts:     texts{t: translator, lang: language},
		now:       time.Now,
	}
}

func (w *ModificationWorkflow) Command() string                   { return modifyCommand }
func (w *ModificationWorkflow) ChannelKind() entities.ChannelKind { return entities.ChannelDM }
func (w *ModificationWorkflow) SessionType() entities.SessionType { return entities.SessionModify }

func (w *ModificationWorkflow) Handle(ctx context.Context, msg entities.InboundMessage, ev *entities.Event) Result {
	if msg.ChannelKind != entities.ChannelDM {
		return Result{Status: ev.Status}
	}
	input := strings.TrimSpace(msg.Content)
	params := strings.Fields(input)

	if input == exitCommand {
		ev.Status = entities.StatusExit
		return Result{Status: ev.Status, Reply: w.texts.get("modify.exiting", nil)}
	}
	if len(params) > 0 && params[0] == modifyCommand {
		return w.load(ctx, msg.AuthorID, params, ev)
	}

	switch ev.Status {
	case entities.StatusWaitingForTime:
		return w.changeTime(ctx, ev, input)
	case entities.StatusWaitingForTitle:
		return w.changeTitle(ctx, ev, input)
	case entities.StatusWaitingForDescription:
		return w.changeDescription(ctx, ev, input)
	case entities.StatusWaitingForDelete:
		return w.deleteEvent(ctx, ev, input)
	case entities.StatusWaitingForReminder:
		return w.changeReminder(ctx, ev, input)
	}
	return w.summary(ctx, msg.AuthorID, ev)
}

// load resolves "!modify <id> <field>" into a draft owned by authorID.
func (w *ModificationWorkflow) load(ctx context.Context, authorID string, params []string, ev *entities.Event) Result {
	if len(params) < 3 {
		return w.summary(ctx, authorID, ev)
	}

	found, err := w.events.FindByShortID(ctx, strings.ToLower(params[1]), authorID)
	if err != nil {
		if !errors.Is(err, domain.ErrEventNotFound) && !errors.Is(err, domain.ErrOwnershipMismatch) {
			log.Error().Err(err).Str("author", authorID).Str("event", params[1]).Msg("load event to modify")
		}
		ev.Status = entities.StatusExit
		return Result{Status: ev.Status, Reply: w.texts.get("modify.exiting", nil)}
	}
	found.SessionType = entities.SessionModify
	if !validate.TimeZone(found.UserTimeZone) {
		found.UserTimeZone = ev.UserTimeZone
	}

	field := strings.ToLower(params[2])
	status, ok := modifyFields[field]
	if !ok {
		found.Status = entities.StatusDone
		return Result{
			Status: found.Status,
			Reply:  w.texts.failure(fmt.Errorf("%w: %s", domain.ErrUnknownField, field), map[string]any{"Option": field}),
			Draft:  found,
		}
	}
	found.Status = status
	return Result{Status: found.Status, Reply: w.prompt(found), Draft: found}
}

func (w *ModificationWorkflow) changeTime(ctx context.Context, ev *entities.Event, input string) Result {
	now := w.now()
	date, err := validate.DateTime(input, ev.UserTimeZone, now)
	if err != nil {
		return Result{Status: ev.Status, Reply: w.texts.validation(err, ev.UserTimeZone, now)}
	}
	sent := false
	if err := w.events.UpdateFields(ctx, ev.ShortID, output.EventUpdate{EventDate: &date, ReminderSent: &sent}); err != nil {
		return w.writeFailed(ev, "event_date", err)
	}
	ev.EventDate = date
	ev.ReminderSent = false
	return w.updated(ctx, ev)
}

func (w *ModificationWorkflow) changeTitle(ctx context.Context, ev *entities.Event, input string) Result {
	if err := checkLength(input, maxTitleLength); err != nil {
		return Result{Status: ev.Status, Reply: w.texts.failure(err, nil)}
	}
	if err := w.events.UpdateFields(ctx, ev.ShortID, output.EventUpdate{Title: &input}); err != nil {
		return w.writeFailed(ev, "title", err)
	}
	ev.Title = input
	return w.updated(ctx, ev)
}

func (w *ModificationWorkflow) changeDescription(ctx context.Context, ev *entities.Event, input string) Result {
	if err := w.events.UpdateFields(ctx, ev.ShortID, output.EventUpdate{Description: &input}); err != nil {
		return w.writeFailed(ev, "description", err)
	}
	ev.Description = input
	return w.updated(ctx, ev)
}

func (w *ModificationWorkflow) deleteEvent(ctx context.Context, ev *entities.Event, input string) Result {
	if strings.ToLower(input) != "yes" {
		return Result{Status: ev.Status, Reply: w.prompt(ev)}
	}
	inactive := false
	if err := w.events.UpdateFields(ctx, ev.ShortID, output.EventUpdate{Active: &inactive}); err != nil {
		return w.writeFailed(ev, "active", err)
	}
	ev.Active = false
	if ev.MessageID != "" {
		if err := w.messenger.DeleteMessage(ctx, ev.ChannelID, ev.MessageID); err != nil {
			log.Warn().Err(err).Str("event", ev.ShortID).Msg("delete event card")
		}
	}
	log.Info().Str("event", ev.ShortID).Str("author", ev.AuthorID).Msg("event deleted")
	ev.Status = entities.StatusDone
	return Result{Status: ev.Status, Reply: w.texts.get("modify.updated", nil)}
}

func (w *ModificationWorkflow) changeReminder(ctx context.Context, ev *entities.Event, input string) Result {
	minutes, err := strconv.Atoi(input)
	if err != nil || minutes < 0 {
		return Result{Status: ev.Status, Reply: w.prompt(ev)}
	}
	sent := false
	if err := w.events.UpdateFields(ctx, ev.ShortID, output.EventUpdate{Reminder: &minutes, ReminderSent: &sent}); err != nil {
		return w.writeFailed(ev, "reminder", err)
	}
	ev.Reminder = &minutes
	ev.ReminderSent = false
	ev.Status = entities.StatusDone
	return Result{Status: ev.Status, Reply: w.texts.get("modify.updated", nil)}
}

// updated re-renders the published card and finishes the session.
func (w *ModificationWorkflow) updated(ctx context.Context, ev *entities.Event) Result {
	if ev.MessageID != "" {
		if err := w.messenger.EditEvent(ctx, ev.ChannelID, ev.MessageID, w.renderer.Card(ctx, ev)); err != nil {
			log.Warn().Err(err).Str("event", ev.ShortID).Msg("re-render event card")
		}
	}
	ev.Status = entities.StatusDone
	return Result{Status: ev.Status, Reply: w.texts.get("modify.updated", nil)}
}

func (w *ModificationWorkflow) writeFailed(ev *entities.Event, field string, err error) Result {
	log.Error().Err(err).Str("event", ev.ShortID).Str("field", field).Msg("modify event")
	return Result{Status: ev.Status, Reply: w.texts.get("errors.generic", nil)}
}

// summary lists the latest upcoming events of authorID and ends the session.
func (w *ModificationWorkflow) summary(ctx context.Context, authorID string, ev *entities.Event) Result {
	ev.Status = entities.StatusExit

	events, err := w.events.FindUserEvents(ctx, authorID, summaryLimit, true, w.now())
	if err != nil {
		log.Error().Err(err).Str("author", authorID).Msg("list user events")
		return Result{Status: ev.Status, Reply: w.texts.get("errors.generic", nil)}
	}
	if len(events) == 0 {
		return Result{Status: ev.Status, Reply: w.texts.get("modify.noEvents", nil)}
	}
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, summaryLine(e))
	}
	return Result{Status: ev.Status, Reply: w.texts.get("modify.summary", map[string]any{
		"Amount": len(events),
		"Events": strings.Join(lines, "\n"),
	})}
}

func summaryLine(e entities.Event) string {
	return fmt.Sprintf("ID [ **%s** ] : %s - (%s)",
		e.ShortID, e.Title, tz.In(e.EventDate, e.EventTimeZone).Format(validate.DateTimeLayout))
}

func (w *ModificationWorkflow) prompt(ev *entities.Event) string {
	switch ev.Status {
	case entities.StatusWaitingForTime:
		return w.texts.get("modify.changeTime", map[string]any{
			"TimeZone":    ev.UserTimeZone,
			"CurrentDate": tz.In(w.now(), ev.UserTimeZone).Format(validate.DateTimeLayout),
		})
	case entities.StatusWaitingForTitle:
		return w.texts.get("modify.title", nil)
	case entities.StatusWaitingForDescription:
		return w.texts.get("modify.description", nil)
	case entities.StatusWaitingForDelete:
		return w.texts.get("modify.deleteConfirm", map[string]any{"Title": ev.Title})
	case entities.StatusWaitingForReminder:
		return w.texts.get("modify.reminderTime", nil)
	case entities.StatusDone:
		return w.texts.get("modify.updated", nil)
	}
	return w.texts.get("modify.exiting", nil)
}

// Finalize is a no-op: every step already wrote through.
func (w *ModificationWorkflow) Finalize(context.Context, *entities.Event) error {
	return nil
}
