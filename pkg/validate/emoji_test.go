package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type vocabulary map[string]string

func (v vocabulary) CustomEmoji(name string) (string, bool) {
	s, ok := v[name]
	return s, ok
}

func TestEmoji(t *testing.T) {
	vocab := vocabulary{"partyparrot": "<:partyparrot:1234>"}

	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"✅", "✅", true},
		{"❎", "❎", true},
		{":white_check_mark:", "✅", true},
		{"white_check_mark", "✅", true},
		{"partyparrot", "<:partyparrot:1234>", true},
		{":partyparrot:", "<:partyparrot:1234>", true},
		{"<:partyparrot:1234>", "<:partyparrot:1234>", true},
		{"<:unknownparrot:99>", "", false},
		{"notanemoji", "", false},
		{"", "", false},
		{":", "", false},
	}
	for _, tt := range tests {
		got, ok := Emoji(tt.input, vocab)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestEmojiWithoutVocabulary(t *testing.T) {
	got, ok := Emoji("❔", nil)
	assert.True(t, ok)
	assert.Equal(t, "❔", got)

	_, ok = Emoji("<:partyparrot:1234>", nil)
	assert.False(t, ok)
}
