package output

import (
	"context"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"calbot/internal/domain/entities"
)

// EventUpdate lists the fields to write; nil fields are left untouched.
type EventUpdate struct {
	Title         *string
	Description   *string
	EventDate     *time.Time
	Active        *bool
	Reminder      *int
	ReminderSent  *bool
	Registrations *orderedmap.OrderedMap[string, string]
}

type EventRepository interface {
	Create(ctx context.Context, event *entities.Event) error
	// FindByShortID only returns active events owned by authorID.
	FindByShortID(ctx context.Context, shortID, authorID string) (*entities.Event, error)
	FindByMessageID(ctx context.Context, messageID string) (*entities.Event, error)
	FindUserEvents(ctx context.Context, authorID string, limit int, futureOnly bool, now time.Time) ([]entities.Event, error)
	FindDueReminders(ctx context.Context, limit int, now time.Time) ([]entities.Event, error)
	UpdateFields(ctx context.Context, shortID string, update EventUpdate) error
	// MarkReminderSent flips reminder_sent only if it was still false and
	// reports whether this call did it.
	MarkReminderSent(ctx context.Context, shortID string) (bool, error)
}
