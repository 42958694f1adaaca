package discord

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/bwmarrin/discordgo"

	"calbot/internal/domain"
)

var customEmojiRe = regexp.MustCompile(`^<a?:(\w+:\d+)>$`)

// Nick > GlobalName > Username
func resolveDisplayName(member *discordgo.Member) string {
	if member == nil || member.User == nil {
		return ""
	}
	if member.Nick != "" {
		return member.Nick
	}
	return resolveUserName(member.User)
}

func resolveUserName(user *discordgo.User) string {
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

// reactionAPIName converts <:name:id> to the name:id form the reaction
// endpoints expect. Unicode emojis are returned as is.
func reactionAPIName(emoji string) string {
	if m := customEmojiRe.FindStringSubmatch(emoji); m != nil {
		return m[1]
	}
	return emoji
}

// wrapRESTError maps Discord permission failures to
// domain.ErrTransportPermissionDenied.
func wrapRESTError(op string, err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) {
		if rest.Message != nil && rest.Message.Code == discordgo.ErrCodeMissingPermissions {
			return fmt.Errorf("%s: %w: %v", op, domain.ErrTransportPermissionDenied, err)
		}
		if rest.Response != nil && rest.Response.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%s: %w: %v", op, domain.ErrTransportPermissionDenied, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
