package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"length", &LengthError{Length: 250, Allowed: 200}, "creation.stringTooLong"},
		{"wrapped emoji", fmt.Errorf("%w: %q", ErrEmojiAlreadyUsed, "✅"), "creation.emojiInOptions"},
		{"unknown field", fmt.Errorf("%w: colour", ErrUnknownField), "modify.unknown"},
		{"foreign", errors.New("boom"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

func TestLengthErrorIsTextTooLong(t *testing.T) {
	err := fmt.Errorf("title: %w", &LengthError{Length: 250, Allowed: 200})

	var length *LengthError
	assert.ErrorIs(t, err, ErrTextTooLong)
	assert.ErrorAs(t, err, &length)
	assert.Equal(t, 200, length.Allowed)
}
