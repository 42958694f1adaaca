// Package discord renders event cards as Discord embeds and reads them back.
package discord

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"calbot/internal/domain/entities"
)

const (
	embedColor = 0xf8d040

	timeBlock = "\n\n**Time**\n"

	// Discord rejects field names and values above these lengths.
	maxFieldName  = 256
	maxFieldValue = 1024
)

var timeTagRe = regexp.MustCompile(`<t:(\d+):F>`)

// BuildEventEmbed renders card with one inline field per participant column.
func BuildEventEmbed(card entities.EventCard, now time.Time) *discordgo.MessageEmbed {
	description := card.Description
	if !card.EventDate.IsZero() {
		unix := card.EventDate.Unix()
		description += fmt.Sprintf("%s<t:%d:F> (<t:%d:R>)", timeBlock, unix, unix)
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(card.Columns))
	for _, col := range card.Columns {
		value := "-"
		if len(col.Members) > 0 {
			value = truncate(">>> "+strings.Join(col.Members, "\n"), maxFieldValue)
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   truncate(col.Header, maxFieldName),
			Value:  value,
			Inline: true,
		})
	}

	return &discordgo.MessageEmbed{
		Title:       card.Title,
		Description: description,
		Color:       embedColor,
		Timestamp:   now.Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: card.Footer},
		Fields:      fields,
	}
}

// IsEventEmbed reports whether embed carries the time block of an event card.
func IsEventEmbed(embed *discordgo.MessageEmbed) bool {
	if embed == nil {
		return false
	}
	idx := strings.LastIndex(embed.Description, timeBlock)
	return idx >= 0 && timeTagRe.MatchString(embed.Description[idx:])
}

// ParseEventEmbed recovers title, description and event date from an embed
// built by BuildEventEmbed. The date is zero when the time block is missing.
func ParseEventEmbed(embed *discordgo.MessageEmbed) (title, description string, eventDate time.Time) {
	if embed == nil {
		return "", "", time.Time{}
	}
	title = embed.Title
	description = embed.Description
	idx := strings.LastIndex(description, timeBlock)
	if idx < 0 {
		return title, description, time.Time{}
	}
	if m := timeTagRe.FindStringSubmatch(description[idx:]); m != nil {
		if unix, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			eventDate = time.Unix(unix, 0).UTC()
		}
	}
	return title, description[:idx], eventDate
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
