// Package validate checks raw user input typed during a conversation.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"calbot/internal/domain"
	"calbot/pkg/tz"
)

// DateLayout is the date format users type, e.g. 31-07-2030.
const DateLayout = "02-01-2006"

// DateTimeLayout is the display format of a date and time.
const DateTimeLayout = "02-01-2006 15:04"

// parseLayout accepts one or two digit days, months and hours.
const parseLayout = "2-1-2006 15:04"

var timeRe = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// DateTime parses "DD-MM-YYYY HH:MM" in zone and requires the result to be
// strictly after now.
func DateTime(text, zone string, now time.Time) (time.Time, error) {
	parts := strings.Fields(text)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, text)
	}
	if !IsValidTime(parts[1]) {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidTime, parts[1])
	}
	if !tz.Valid(zone) {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidTimeZone, zone)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidTimeZone, zone)
	}
	t, err := time.ParseInLocation(parseLayout, parts[0]+" "+parts[1], loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", domain.ErrInvalidDate, err)
	}
	if !t.After(now) {
		return time.Time{}, fmt.Errorf("%w: %s", domain.ErrDateExceedsLimit, t.Format(DateTimeLayout))
	}
	return t, nil
}

// IsValidTime accepts H:MM and HH:MM in 24-hour form.
func IsValidTime(s string) bool {
	return timeRe.MatchString(s)
}

// TimeZone reports whether s names a known time zone.
func TimeZone(s string) bool {
	return tz.Valid(s)
}
