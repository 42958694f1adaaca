package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"calbot/internal/domain/entities"
)

const eventColumns = `id, short_id, title, description, active, author_id, author_name,
	channel_id, guild_id, message_id, event_date, event_time_zone, user_time_zone,
	status, options_type, decline_option, options, registrations, reminder,
	reminder_sent, created_at, updated_at`

// pgtypeTimestamptzToTime returns t.Time when Valid, else zero time.
func pgtypeTimestamptzToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

func timeToPgtypeTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func reminderToPgtype(minutes *int) pgtype.Int4 {
	if minutes == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*minutes), Valid: true}
}

func pgtypeToReminder(v pgtype.Int4) *int {
	if !v.Valid {
		return nil
	}
	minutes := int(v.Int32)
	return &minutes
}

// encodeOrdered serializes m as a JSON object in insertion order.
func encodeOrdered(m *orderedmap.OrderedMap[string, string]) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func decodeOrdered(raw []byte) (*orderedmap.OrderedMap[string, string], error) {
	m := orderedmap.New[string, string]()
	if len(raw) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(raw, m); err != nil {
		return nil, err
	}
	return m, nil
}

func scanEvent(row pgx.Row) (*entities.Event, error) {
	var (
		e                      entities.Event
		status                 int32
		optionsType            string
		eventDate              pgtype.Timestamptz
		createdAt, updatedAt   pgtype.Timestamptz
		reminder               pgtype.Int4
		options, registrations []byte
	)
	err := row.Scan(
		&e.ID, &e.ShortID, &e.Title, &e.Description, &e.Active, &e.AuthorID, &e.AuthorName,
		&e.ChannelID, &e.GuildID, &e.MessageID, &eventDate, &e.EventTimeZone, &e.UserTimeZone,
		&status, &optionsType, &e.DeclineOption, &options, &registrations, &reminder,
		&e.ReminderSent, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Status = entities.Status(status)
	e.OptionsType = entities.OptionsType(optionsType)
	e.EventDate = pgtypeTimestamptzToTime(eventDate)
	e.Reminder = pgtypeToReminder(reminder)
	e.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	e.UpdatedAt = pgtypeTimestamptzToTime(updatedAt)
	if e.Options, err = decodeOrdered(options); err != nil {
		return nil, fmt.Errorf("decode options of %s: %w", e.ShortID, err)
	}
	if e.Registrations, err = decodeOrdered(registrations); err != nil {
		return nil, fmt.Errorf("decode registrations of %s: %w", e.ShortID, err)
	}
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]entities.Event, error) {
	defer rows.Close()
	var out []entities.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func scanPreference(row pgx.Row) (*entities.UserPreference, error) {
	var (
		p                    entities.UserPreference
		createdAt, updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.GuildID, &p.UserTimeZone, &p.EventTimeZone, &p.Active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	p.UpdatedAt = pgtypeTimestamptzToTime(updatedAt)
	return &p, nil
}
