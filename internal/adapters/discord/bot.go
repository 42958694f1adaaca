package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const intents = discordgo.IntentGuilds |
	discordgo.IntentGuildMessages |
	discordgo.IntentGuildMessageReactions |
	discordgo.IntentDirectMessages |
	discordgo.IntentMessageContent

// Bot is the Discord adapter.
type Bot struct {
	session *discordgo.Session
}

// NewBot creates the gateway session. Nothing is opened before Run.
func NewBot(token string) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = intents
	return &Bot{session: s}, nil
}

// Session exposes the underlying session to build the outbound adapters.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Run connects, dispatches gateway events to h and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context, h *Handler) error {
	b.session.AddHandler(h.onMessageCreate)
	b.session.AddHandler(h.onReactionAdd)
	b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("bot connected")
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	<-ctx.Done()
	log.Info().Msg("closing discord session")
	return b.session.Close()
}
