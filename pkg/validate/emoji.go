package validate

import (
	"regexp"
	"strings"
	"sync"

	"github.com/kyokomi/emoji/v2"
)

// Vocabulary resolves the custom emojis of the calling context.
type Vocabulary interface {
	CustomEmoji(name string) (string, bool)
}

const variationSelector = "\ufe0f"

var customEmojiRe = regexp.MustCompile(`^<a?:(\w+):(\d+)>$`)

var (
	standardOnce sync.Once
	byName       map[string]string
	bySymbol     map[string]struct{}
)

func loadStandard() {
	codes := emoji.CodeMap()
	byName = make(map[string]string, len(codes))
	bySymbol = make(map[string]struct{}, len(codes))
	for name, symbol := range codes {
		symbol = strings.TrimSpace(symbol)
		byName[strings.Trim(name, ":")] = symbol
		bySymbol[symbol] = struct{}{}
		bySymbol[strings.TrimSuffix(symbol, variationSelector)] = struct{}{}
	}
}

// Emoji resolves text to the symbol used for reactions: <:name:id> for a
// custom emoji known to vocab, the unicode character for a standard emoji
// given either as a character or by short name. The boolean is false when
// text is not an emoji.
func Emoji(text string, vocab Vocabulary) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if m := customEmojiRe.FindStringSubmatch(text); m != nil {
		if vocab == nil {
			return "", false
		}
		return vocab.CustomEmoji(m[1])
	}

	cleaned := strings.ReplaceAll(text, ":", "")
	if cleaned == "" {
		return "", false
	}
	if vocab != nil {
		if symbol, ok := vocab.CustomEmoji(cleaned); ok {
			return symbol, true
		}
	}

	standardOnce.Do(loadStandard)
	if symbol, ok := byName[cleaned]; ok {
		return symbol, true
	}
	if _, ok := bySymbol[cleaned]; ok {
		return cleaned, true
	}
	if _, ok := bySymbol[strings.TrimSuffix(cleaned, variationSelector)]; ok {
		return cleaned, true
	}
	return "", false
}
