package entities

import "time"

// UserPreference caches the time zones a user picked in a guild so later
// event creations can skip the time zone setup.
type UserPreference struct {
	ID            int64
	UserID        string
	GuildID       string
	UserTimeZone  string
	EventTimeZone string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
