package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"calbot/internal/domain/entities"
	"calbot/internal/ports/input"
)

// Handler translates gateway events into calls on the inbound ports.
type Handler struct {
	ctx       context.Context
	messages  input.MessageHandler
	reactions input.ReactionHandler
}

func NewHandler(ctx context.Context, messages input.MessageHandler, reactions input.ReactionHandler) *Handler {
	return &Handler{ctx: ctx, messages: messages, reactions: reactions}
}

func (h *Handler) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	name := resolveUserName(m.Author)
	if m.Member != nil && m.Member.Nick != "" {
		name = m.Member.Nick
	}
	h.messages.HandleMessage(h.ctx, entities.InboundMessage{
		ID:          m.ID,
		AuthorID:    m.Author.ID,
		AuthorName:  name,
		Content:     m.Content,
		ChannelID:   m.ChannelID,
		ChannelKind: channelKind(s, m.GuildID, m.ChannelID),
		GuildID:     m.GuildID,
	})
}

func (h *Handler) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if s.State.User != nil && r.UserID == s.State.User.ID {
		return
	}
	if r.Member != nil && r.Member.User != nil && r.Member.User.Bot {
		return
	}
	h.reactions.HandleReaction(h.ctx, entities.Reaction{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Emoji:     r.Emoji.MessageFormat(),
	})
}

// channelKind treats guild channels missing from the state cache as text
// channels; the REST call that follows fails cleanly if they are not.
func channelKind(s *discordgo.Session, guildID, channelID string) entities.ChannelKind {
	if guildID == "" {
		return entities.ChannelDM
	}
	ch, err := s.State.Channel(channelID)
	if err != nil {
		return entities.ChannelText
	}
	switch ch.Type {
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
		return entities.ChannelText
	case discordgo.ChannelTypeDM:
		return entities.ChannelDM
	}
	return entities.ChannelOther
}
