package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"calbot/internal/domain/entities"
	"calbot/internal/ports/input"
	"calbot/internal/ports/output"
	"calbot/pkg/tz"
)

const (
	reminderBatch      = 10
	reminderDateLayout = "Monday, January 2 2006, 15:04 MST"
)

var _ input.ReminderRunner = (*ReminderService)(nil)

// ReminderService mentions the attendees of events whose reminder is due.
type ReminderService struct {
	events    output.EventRepository
	messenger output.Messenger
	texts     texts
	now       func() time.Time
}

func NewReminderService(events output.EventRepository, messenger output.Messenger, translator output.T, language string) *ReminderService {
	return &ReminderService{
		events:    events,
		messenger: messenger,
		texts:     texts{t: translator, lang: language},
		now:       time.Now,
	}
}

// Tick sends the next batch of due reminders. A reminder is marked sent only
// once its notice went out.
func (s *ReminderService) Tick(ctx context.Context) error {
	now := s.now()
	events, err := s.events.FindDueReminders(ctx, reminderBatch, now)
	if err != nil {
		return fmt.Errorf("find due reminders: %w", err)
	}

	for i := range events {
		ev := &events[i]
		if ev.Reminder == nil {
			continue
		}
		if err := s.remind(ctx, ev); err != nil {
			log.Error().Err(err).Str("event", ev.ShortID).Msg("send reminder")
			continue
		}
		marked, err := s.events.MarkReminderSent(ctx, ev.ShortID)
		if err != nil {
			log.Error().Err(err).Str("event", ev.ShortID).Msg("mark reminder sent")
			continue
		}
		if marked {
			log.Info().Str("event", ev.ShortID).Msg("reminder sent")
		}
	}
	return nil
}

func (s *ReminderService) remind(ctx context.Context, ev *entities.Event) error {
	attendees := ev.Attendees()
	if len(attendees) == 0 {
		return nil
	}
	mentions := make([]string, len(attendees))
	for i, id := range attendees {
		mentions[i] = "<@" + id + ">"
	}
	text := s.texts.get("reminder.channelReminder", map[string]any{
		"UserIDs": strings.Join(mentions, " "),
		"Title":   ev.Title,
		"Minutes": *ev.Reminder,
		"Date":    tz.In(ev.EventDate, ev.EventTimeZone).Format(reminderDateLayout),
	})
	return s.messenger.SendChannel(ctx, ev.ChannelID, text)
}
