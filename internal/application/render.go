package application

import (
	"context"
	"fmt"

	"calbot/internal/domain/entities"
	"calbot/internal/ports/output"
)

// Renderer turns an event into the card shown in its channel.
type Renderer struct {
	messenger output.Messenger
	texts     texts
}

func NewRenderer(messenger output.Messenger, translator output.T, language string) *Renderer {
	return &Renderer{messenger: messenger, texts: texts{t: translator, lang: language}}
}

// Card lists, for each option in definition order, the display names of the
// users who picked it, in registration order.
func (r *Renderer) Card(ctx context.Context, ev *entities.Event) entities.EventCard {
	card := entities.EventCard{
		Title:       ev.Title,
		Description: ev.Description,
		EventDate:   ev.EventDate,
		Footer: r.texts.get("card.footer", map[string]any{
			"Author": ev.AuthorName,
			"ID":     ev.ShortID,
		}),
	}
	if !ev.HasOptions() {
		return card
	}

	members := make(map[string][]string, ev.Options.Len())
	if ev.Registrations != nil {
		for pair := ev.Registrations.Oldest(); pair != nil; pair = pair.Next() {
			if !ev.HasOption(pair.Value) {
				continue
			}
			name := r.messenger.DisplayName(ctx, ev.GuildID, pair.Key)
			members[pair.Value] = append(members[pair.Value], name)
		}
	}
	for pair := ev.Options.Oldest(); pair != nil; pair = pair.Next() {
		card.Columns = append(card.Columns, entities.CardColumn{
			Header:  fmt.Sprintf("%s (%s)", pair.Value, pair.Key),
			Members: members[pair.Key],
		})
	}
	return card
}
