package input

import (
	"context"

	"calbot/internal/domain/entities"
)

// MessageHandler consumes inbound text messages.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg entities.InboundMessage)
}

// ReactionHandler consumes reactions added to published events.
type ReactionHandler interface {
	HandleReaction(ctx context.Context, r entities.Reaction)
}

// ReminderRunner performs one reminder poll.
type ReminderRunner interface {
	Tick(ctx context.Context) error
}
