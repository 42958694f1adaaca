package output

import (
	"context"

	"calbot/internal/domain/entities"
)

// Messenger is everything the conversation engine needs from the chat
// transport. Permission failures are reported as
// domain.ErrTransportPermissionDenied.
type Messenger interface {
	SendDirect(ctx context.Context, userID, text string) error
	SendChannel(ctx context.Context, channelID, text string) error
	PostEvent(ctx context.Context, channelID string, card entities.EventCard) (messageID string, err error)
	EditEvent(ctx context.Context, channelID, messageID string, card entities.EventCard) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
	RemoveReaction(ctx context.Context, channelID, messageID, emoji, userID string) error
	FetchSnapshot(ctx context.Context, channelID, messageID string) (*entities.MessageSnapshot, error)
	DisplayName(ctx context.Context, guildID, userID string) string
	ChannelName(ctx context.Context, channelID string) string
	GuildName(ctx context.Context, guildID string) string
}

// Vocabulary resolves custom emojis known to the bot.
type Vocabulary interface {
	// CustomEmoji returns the <:name:id> form of the named custom emoji.
	CustomEmoji(name string) (string, bool)
}
