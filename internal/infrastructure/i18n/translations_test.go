package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslatorRendersTemplateData(t *testing.T) {
	tr := NewTranslator("en")

	got := tr.T("en", "card.footer", map[string]any{"Author": "ana", "ID": "abc123"})
	assert.Equal(t, "created by ana, your event id is [ abc123 ]", got)

	got = tr.T("fr", "creation.stringTooLong", map[string]any{"Length": 200, "Allowed": 200})
	assert.Equal(t, "Le texte est trop long, 200 caractères. Maximum 200 caractères", got)
}

func TestTranslatorFallsBackToEnglish(t *testing.T) {
	tr := NewTranslator("en")
	assert.Equal(t, "Ok, see you later!", tr.T("de", "creation.exit", nil))
}

func TestTranslatorMissingKey(t *testing.T) {
	tr := NewTranslator("en")
	assert.Equal(t, "Translation missing for nope.nothing", tr.T("en", "nope.nothing", nil))
	assert.Empty(t, tr.T("en", "", nil))
}
