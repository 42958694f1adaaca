package discord

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"calbot/internal/ports/output"
)

var (
	_ output.Messenger  = (*Messenger)(nil)
	_ output.Vocabulary = (*Messenger)(nil)
)

// Messenger implements the outbound chat port over a discordgo session.
type Messenger struct {
	session *discordgo.Session
}

func NewMessenger(s *discordgo.Session) *Messenger {
	return &Messenger{session: s}
}

func (m *Messenger) SendDirect(ctx context.Context, userID, text string) error {
	ch, err := m.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return wrapRESTError("open direct channel", err)
	}
	_, err = m.session.ChannelMessageSend(ch.ID, text, discordgo.WithContext(ctx))
	return wrapRESTError("send direct message", err)
}

func (m *Messenger) SendChannel(ctx context.Context, channelID, text string) error {
	_, err := m.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	return wrapRESTError("send channel message", err)
}

func (m *Messenger) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return wrapRESTError("delete message", m.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)))
}

func (m *Messenger) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	err := m.session.MessageReactionAdd(channelID, messageID, reactionAPIName(emoji), discordgo.WithContext(ctx))
	return wrapRESTError("add reaction", err)
}

func (m *Messenger) RemoveReaction(ctx context.Context, channelID, messageID, emoji, userID string) error {
	err := m.session.MessageReactionRemove(channelID, messageID, reactionAPIName(emoji), userID, discordgo.WithContext(ctx))
	return wrapRESTError("remove reaction", err)
}

// DisplayName falls back to the user id when the member cannot be resolved.
func (m *Messenger) DisplayName(ctx context.Context, guildID, userID string) string {
	if member, err := m.session.State.Member(guildID, userID); err == nil {
		if name := resolveDisplayName(member); name != "" {
			return name
		}
	}
	member, err := m.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		log.Debug().Err(err).Str("guild", guildID).Str("user", userID).Msg("resolve member")
		return userID
	}
	if name := resolveDisplayName(member); name != "" {
		return name
	}
	return userID
}

func (m *Messenger) ChannelName(ctx context.Context, channelID string) string {
	ch, err := m.session.State.Channel(channelID)
	if err != nil {
		ch, err = m.session.Channel(channelID, discordgo.WithContext(ctx))
	}
	if err != nil || ch == nil {
		return channelID
	}
	return ch.Name
}

func (m *Messenger) GuildName(ctx context.Context, guildID string) string {
	g, err := m.session.State.Guild(guildID)
	if err != nil {
		g, err = m.session.Guild(guildID, discordgo.WithContext(ctx))
	}
	if err != nil || g == nil {
		return guildID
	}
	return g.Name
}

// CustomEmoji looks name up among the emojis of every guild the bot is in.
func (m *Messenger) CustomEmoji(name string) (string, bool) {
	state := m.session.State
	state.RLock()
	defer state.RUnlock()
	for _, g := range state.Guilds {
		for _, e := range g.Emojis {
			if e != nil && strings.EqualFold(e.Name, name) {
				return e.MessageFormat(), true
			}
		}
	}
	return "", false
}
