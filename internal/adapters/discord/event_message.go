package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"calbot/internal/domain/entities"
	pkgdiscord "calbot/pkg/discord"
)

// reactionPageSize is the largest page the reactions endpoint serves.
const reactionPageSize = 100

func (m *Messenger) PostEvent(ctx context.Context, channelID string, card entities.EventCard) (string, error) {
	msg, err := m.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{pkgdiscord.BuildEventEmbed(card, time.Now())},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", wrapRESTError("post event card", err)
	}
	return msg.ID, nil
}

func (m *Messenger) EditEvent(ctx context.Context, channelID, messageID string, card entities.EventCard) error {
	embeds := []*discordgo.MessageEmbed{pkgdiscord.BuildEventEmbed(card, time.Now())}
	_, err := m.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:      messageID,
		Channel: channelID,
		Embeds:  &embeds,
	}, discordgo.WithContext(ctx))
	return wrapRESTError("edit event card", err)
}

// FetchSnapshot reads back a published card together with the non-bot users
// behind each of its reactions.
func (m *Messenger) FetchSnapshot(ctx context.Context, channelID, messageID string) (*entities.MessageSnapshot, error) {
	msg, err := m.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapRESTError("fetch message", err)
	}

	snap := &entities.MessageSnapshot{MessageID: msg.ID}
	if msg.Author != nil {
		snap.AuthorID = msg.Author.ID
		snap.FromSelf = m.session.State.User != nil && msg.Author.ID == m.session.State.User.ID
	}
	if len(msg.Embeds) > 0 && pkgdiscord.IsEventEmbed(msg.Embeds[0]) {
		snap.IsCard = true
		snap.Title, snap.Description, snap.EventDate = pkgdiscord.ParseEventEmbed(msg.Embeds[0])
	}
	if !snap.FromSelf || !snap.IsCard {
		return snap, nil
	}

	for _, r := range msg.Reactions {
		if r == nil || r.Emoji == nil {
			continue
		}
		users, err := m.reactors(ctx, channelID, messageID, r.Emoji.APIName())
		if err != nil {
			return nil, err
		}
		snap.Reactions = append(snap.Reactions, entities.ReactionSnapshot{
			Emoji:   r.Emoji.MessageFormat(),
			UserIDs: users,
		})
	}
	return snap, nil
}

func (m *Messenger) reactors(ctx context.Context, channelID, messageID, emoji string) ([]string, error) {
	var ids []string
	after := ""
	for {
		users, err := m.session.MessageReactions(channelID, messageID, emoji, reactionPageSize, "", after, discordgo.WithContext(ctx))
		if err != nil {
			return nil, wrapRESTError(fmt.Sprintf("list %s reactions", emoji), err)
		}
		for _, u := range users {
			if !u.Bot {
				ids = append(ids, u.ID)
			}
		}
		if len(users) < reactionPageSize {
			return ids, nil
		}
		after = users[len(users)-1].ID
	}
}
