package entities

import "time"

// ChannelKind tells where an inbound message was written.
type ChannelKind int

const (
	ChannelOther ChannelKind = iota
	ChannelDM
	ChannelText
)

func (k ChannelKind) String() string {
	switch k {
	case ChannelDM:
		return "dm"
	case ChannelText:
		return "text"
	default:
		return "other"
	}
}

// InboundMessage is a text message received from the chat transport.
type InboundMessage struct {
	ID          string
	AuthorID    string
	AuthorName  string
	Content     string
	ChannelID   string
	ChannelKind ChannelKind
	GuildID     string
}

// Reaction is a reaction added by a user to a message.
type Reaction struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
	// Emoji is the unicode symbol, or <:name:id> for custom emojis.
	Emoji string
}

// ReactionSnapshot lists the non-bot users currently reacting with Emoji.
type ReactionSnapshot struct {
	Emoji   string
	UserIDs []string
}

// MessageSnapshot is what the transport still shows of a published event card.
type MessageSnapshot struct {
	MessageID   string
	AuthorID    string
	FromSelf    bool
	// IsCard is set when the message still shows an event card.
	IsCard      bool
	Title       string
	Description string
	EventDate   time.Time
	Reactions   []ReactionSnapshot
}

// CardColumn is one participant column of an event card.
type CardColumn struct {
	Header  string
	Members []string
}

// EventCard is the transport-neutral rendering of a published event.
type EventCard struct {
	Title       string
	Description string
	EventDate   time.Time
	Footer      string
	Columns     []CardColumn
}
