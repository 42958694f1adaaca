package output

// T is the translation contract for every user-facing text.
type T interface {
	// T renders the message identified by key for the given locale, with
	// data filling the template placeholders (may be nil). Unknown keys
	// render as a visible "Translation missing" marker instead of failing.
	T(locale, key string, data map[string]any) string
}
