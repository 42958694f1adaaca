package domain

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	ErrInvalidDate               = errors.New("invalid date")
	ErrInvalidTime               = errors.New("invalid time")
	ErrDateExceedsLimit          = errors.New("date must be in the future")
	ErrInvalidTimeZone           = errors.New("invalid time zone")
	ErrInvalidEmoji              = errors.New("invalid emoji")
	ErrEmojiAlreadyUsed          = errors.New("emoji already used by another option")
	ErrTextTooLong               = errors.New("text too long")
	ErrUnknownField              = errors.New("unknown field")
	ErrSessionNotFound           = errors.New("session not found")
	ErrOwnershipMismatch         = errors.New("event belongs to another author")
	ErrTransportPermissionDenied = errors.New("missing permissions")
	ErrPersistenceFailure        = errors.New("persistence failure")
	ErrEventNotFound             = errors.New("event not found")
	ErrPreferenceNotFound        = errors.New("user preference not found")
)

// LengthError is an ErrTextTooLong carrying the measured and allowed lengths
// in runes.
type LengthError struct {
	Length  int
	Allowed int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%s: %d runes, below %d allowed", ErrTextTooLong, e.Length, e.Allowed)
}

func (e *LengthError) Unwrap() error { return ErrTextTooLong }

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidDate, "creation.invalidDate"},
	{ErrInvalidTime, "creation.invalidTime"},
	{ErrDateExceedsLimit, "creation.dateExceeded"},
	{ErrInvalidTimeZone, "creation.invalidTimeZone"},
	{ErrInvalidEmoji, "creation.invalidEmoji"},
	{ErrEmojiAlreadyUsed, "creation.emojiInOptions"},
	{ErrTextTooLong, "creation.stringTooLong"},
	{ErrUnknownField, "modify.unknown"},
	{ErrSessionNotFound, "general.noEvent"},
	{ErrOwnershipMismatch, "modify.exiting"},
	{ErrTransportPermissionDenied, "creation.noPermissions"},
	{ErrPersistenceFailure, "errors.generic"},
	{ErrEventNotFound, "modify.exiting"},
}

// Code returns the translation key describing err, or "" when err is not a
// domain error.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}
