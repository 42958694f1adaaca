package entities

import (
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Status is the position of an event in its creation or modification
// workflow. Values are persisted, gaps are reserved for future steps.
type Status int

const (
	StatusNone                                 Status = 0
	StatusWaitingForFirstTimeUser              Status = 1
	StatusWaitingForTitle                      Status = 5
	StatusWaitingForDescription                Status = 10
	StatusWaitingForServerTimeZone             Status = 20
	StatusWaitingForServerTimeZoneConfirmation Status = 22
	StatusWaitingForUserTimeZone               Status = 24
	StatusWaitingForUserTimeZoneConfirmation   Status = 26
	StatusWaitingForTimeZoneConfirmation       Status = 28
	StatusWaitingForDate                       Status = 30
	StatusWaitingForTime                       Status = 31
	StatusWaitingForOptions                    Status = 40
	StatusWaitingForDeclineOption              Status = 45
	StatusWaitingForDelete                     Status = 50
	StatusWaitingForReminder                   Status = 55
	StatusDone                                 Status = 100
	StatusExit                                 Status = 101
)

// IsTerminal reports whether the workflow has finished.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusExit
}

type SessionType string

const (
	SessionCreate SessionType = "create"
	SessionModify SessionType = "modify"
)

type OptionsType string

const (
	OptionsDefault OptionsType = "default"
	OptionsCustom  OptionsType = "custom"
	OptionsNone    OptionsType = "none"
)

// DefaultDecline is the symbol used when the author picks the default decline option.
const DefaultDecline = "❎"

// Event is either a draft held in a session or a published, persisted event.
type Event struct {
	ID            int64
	ShortID       string
	Title         string
	Description   string
	Active        bool
	AuthorID      string
	AuthorName    string
	ChannelID     string
	GuildID       string
	MessageID     string
	EventDate     time.Time // zero = not set yet
	EventTimeZone string
	UserTimeZone  string
	Status        Status
	SessionType   SessionType
	Reminder      *int // minutes before the event, nil = no reminder
	ReminderSent  bool
	OptionsType   OptionsType
	DeclineOption string
	// Options maps a reaction symbol to its label, in definition order.
	Options *orderedmap.OrderedMap[string, string]
	// Registrations maps a user to the symbol they picked, in registration order.
	Registrations *orderedmap.OrderedMap[string, string]
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewEvent returns an event with empty option and registration maps.
func NewEvent() *Event {
	return &Event{
		Options:       orderedmap.New[string, string](),
		Registrations: orderedmap.New[string, string](),
	}
}

func (e *Event) ensureMaps() {
	if e.Options == nil {
		e.Options = orderedmap.New[string, string]()
	}
	if e.Registrations == nil {
		e.Registrations = orderedmap.New[string, string]()
	}
}

// SetOption adds or relabels an option. A relabelled option keeps its position.
func (e *Event) SetOption(symbol, label string) {
	e.ensureMaps()
	e.Options.Set(symbol, label)
}

func (e *Event) HasOption(symbol string) bool {
	if e.Options == nil {
		return false
	}
	_, ok := e.Options.Get(symbol)
	return ok
}

func (e *Event) HasOptions() bool {
	return e.Options != nil && e.Options.Len() > 0
}

// OptionKeys returns the option symbols in definition order.
func (e *Event) OptionKeys() []string {
	if e.Options == nil {
		return nil
	}
	keys := make([]string, 0, e.Options.Len())
	for pair := e.Options.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// ClearOptions drops every option together with the decline marker.
func (e *Event) ClearOptions() {
	e.Options = orderedmap.New[string, string]()
	e.DeclineOption = ""
}

// SetDefaultOptions replaces the options with Yes / No / Maybe.
func (e *Event) SetDefaultOptions() {
	e.ClearOptions()
	e.SetOption("✅", "Yes")
	e.SetOption("❎", "No")
	e.SetOption("❔", "Maybe")
}

// SetDefaultDecline marks DefaultDecline as the decline option.
func (e *Event) SetDefaultDecline() {
	e.DeclineOption = DefaultDecline
	e.SetOption(DefaultDecline, "N/A")
}

// Register records the user's pick, replacing any previous one. It refuses
// symbols that are not options and inactive events.
func (e *Event) Register(userID, symbol string) bool {
	if !e.Active || !e.HasOption(symbol) {
		return false
	}
	e.ensureMaps()
	e.Registrations.Set(userID, symbol)
	return true
}

// Registration returns the symbol picked by userID.
func (e *Event) Registration(userID string) (string, bool) {
	if e.Registrations == nil {
		return "", false
	}
	return e.Registrations.Get(userID)
}

// Attendees returns every registered user whose pick is not the decline
// option, in registration order.
func (e *Event) Attendees() []string {
	if e.Registrations == nil {
		return nil
	}
	var out []string
	for pair := e.Registrations.Oldest(); pair != nil; pair = pair.Next() {
		if e.DeclineOption != "" && pair.Value == e.DeclineOption {
			continue
		}
		out = append(out, pair.Key)
	}
	return out
}
