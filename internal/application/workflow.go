package application

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"calbot/internal/domain"
	"calbot/internal/domain/entities"
	"calbot/internal/ports/output"
	"calbot/pkg/tz"
	"calbot/pkg/validate"
)

const (
	createCommand = "!event"
	modifyCommand = "!modify"
	exitCommand   = "!exit"
	helpCommand   = "!help"

	maxTitleLength = 200
	maxLabelLength = 100
)

// Settings are the runtime knobs of the conversation engine.
type Settings struct {
	DefaultTimeZone string
	Language        string
	SessionTimeout  time.Duration
	// IOTimeout bounds the handling of one message, reaction or expiry.
	IOTimeout time.Duration
}

// Result is the outcome of feeding one message to a workflow.
type Result struct {
	Status entities.Status
	// Reply is sent to the author by direct message when not empty.
	Reply string
	// Draft, when set, replaces the session draft.
	Draft *entities.Event
}

// Workflow is a conversation state machine bound to one command.
type Workflow interface {
	// Command is the keyword opening a session, accepted in ChannelKind only.
	Command() string
	ChannelKind() entities.ChannelKind
	SessionType() entities.SessionType
	// Handle applies msg to draft and returns the new state.
	Handle(ctx context.Context, msg entities.InboundMessage, draft *entities.Event) Result
	// Finalize runs once the workflow reached a terminal state, before the
	// draft is evicted.
	Finalize(ctx context.Context, draft *entities.Event) error
}

// texts renders translated messages in one language.
type texts struct {
	t    output.T
	lang string
}

func (x texts) get(key string, data map[string]any) string {
	return x.t.T(x.lang, key, data)
}

// failure renders a domain error, with the lengths of a LengthError added
// to data.
func (x texts) failure(err error, data map[string]any) string {
	code := domain.Code(err)
	if code == "" {
		code = "errors.generic"
	}
	var length *domain.LengthError
	if errors.As(err, &length) {
		if data == nil {
			data = map[string]any{}
		}
		data["Length"] = length.Length
		data["Allowed"] = length.Allowed
	}
	return x.get(code, data)
}

// validation renders a validator error for a user in zone.
func (x texts) validation(err error, zone string, now time.Time) string {
	return x.failure(err, map[string]any{
		"CurrentDate": tz.In(now, zone).Format(validate.DateTimeLayout),
		"TimeZone":    zone,
	})
}

// checkLength rejects text of allowed runes or more.
func checkLength(text string, allowed int) error {
	if n := utf8.RuneCountInString(text); n >= allowed {
		return &domain.LengthError{Length: n, Allowed: allowed}
	}
	return nil
}
