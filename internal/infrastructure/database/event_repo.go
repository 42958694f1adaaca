package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"calbot/internal/domain"
	"calbot/internal/domain/entities"
	"calbot/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

// EventRepository implements output.EventRepository on PostgreSQL.
type EventRepository struct {
	db DB
}

func NewEventRepository(db DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	options, err := encodeOrdered(event.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	registrations, err := encodeOrdered(event.Registrations)
	if err != nil {
		return fmt.Errorf("encode registrations: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO events (short_id, title, description, active, author_id, author_name,
			channel_id, guild_id, message_id, event_date, event_time_zone, user_time_zone,
			status, options_type, decline_option, options, registrations, reminder, reminder_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at`,
		event.ShortID, event.Title, event.Description, event.Active, event.AuthorID, event.AuthorName,
		event.ChannelID, event.GuildID, event.MessageID, timeToPgtypeTimestamptz(event.EventDate),
		event.EventTimeZone, event.UserTimeZone, int32(event.Status), string(event.OptionsType),
		event.DeclineOption, options, registrations, reminderToPgtype(event.Reminder), event.ReminderSent,
	)
	if err := row.Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt); err != nil {
		return fmt.Errorf("create event: %w: %w", domain.ErrPersistenceFailure, err)
	}
	return nil
}

// FindByShortID tells a foreign event apart from a missing one.
func (r *EventRepository) FindByShortID(ctx context.Context, shortID, authorID string) (*entities.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE short_id = $1 AND active`, shortID))
	if err != nil {
		return nil, notFound("get event by short id", err)
	}
	if e.AuthorID != authorID {
		return nil, domain.ErrOwnershipMismatch
	}
	return e, nil
}

func (r *EventRepository) FindByMessageID(ctx context.Context, messageID string) (*entities.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE message_id = $1 ORDER BY id DESC LIMIT 1`, messageID))
	if err != nil {
		return nil, notFound("get event by message id", err)
	}
	return e, nil
}

func (r *EventRepository) FindUserEvents(ctx context.Context, authorID string, limit int, futureOnly bool, now time.Time) ([]entities.Event, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE author_id = $1 AND active AND (NOT $2 OR event_date >= $3)
		ORDER BY event_date DESC NULLS LAST
		LIMIT $4`,
		authorID, futureOnly, now, limit)
	if err != nil {
		return nil, fmt.Errorf("get events by author: %w: %w", domain.ErrPersistenceFailure, err)
	}
	events, err := collectEvents(rows)
	if err != nil {
		return nil, fmt.Errorf("scan events by author: %w: %w", domain.ErrPersistenceFailure, err)
	}
	return events, nil
}

// FindDueReminders returns unsent reminders whose lead time has been reached,
// soonest event first.
func (r *EventRepository) FindDueReminders(ctx context.Context, limit int, now time.Time) ([]entities.Event, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE active AND reminder IS NOT NULL AND NOT reminder_sent
			AND event_date >= $1
			AND event_date <= $1::timestamptz + reminder * interval '1 minute'
		ORDER BY event_date ASC
		LIMIT $2`,
		now, limit)
	if err != nil {
		return nil, fmt.Errorf("find due reminders: %w: %w", domain.ErrPersistenceFailure, err)
	}
	events, err := collectEvents(rows)
	if err != nil {
		return nil, fmt.Errorf("scan due reminders: %w: %w", domain.ErrPersistenceFailure, err)
	}
	return events, nil
}

func (r *EventRepository) UpdateFields(ctx context.Context, shortID string, u output.EventUpdate) error {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Title != nil {
		set("title", *u.Title)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.EventDate != nil {
		set("event_date", timeToPgtypeTimestamptz(*u.EventDate))
	}
	if u.Active != nil {
		set("active", *u.Active)
	}
	if u.Reminder != nil {
		set("reminder", reminderToPgtype(u.Reminder))
	}
	if u.ReminderSent != nil {
		set("reminder_sent", *u.ReminderSent)
	}
	if u.Registrations != nil {
		raw, err := encodeOrdered(u.Registrations)
		if err != nil {
			return fmt.Errorf("encode registrations: %w", err)
		}
		set("registrations", raw)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, shortID)
	query := fmt.Sprintf("UPDATE events SET %s, updated_at = NOW() WHERE short_id = $%d",
		strings.Join(sets, ", "), len(args))
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update event %s: %w: %w", shortID, domain.ErrPersistenceFailure, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update event %s: %w", shortID, domain.ErrEventNotFound)
	}
	return nil
}

func (r *EventRepository) MarkReminderSent(ctx context.Context, shortID string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE events SET reminder_sent = TRUE, updated_at = NOW() WHERE short_id = $1 AND reminder_sent = FALSE`,
		shortID)
	if err != nil {
		return false, fmt.Errorf("mark reminder sent: %w: %w", domain.ErrPersistenceFailure, err)
	}
	return tag.RowsAffected() == 1, nil
}

func notFound(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrEventNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistenceFailure, err)
}
