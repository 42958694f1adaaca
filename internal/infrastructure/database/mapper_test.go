package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func TestOrderedMapSurvivesEncoding(t *testing.T) {
	options := orderedmap.New[string, string]()
	options.Set("❔", "Maybe")
	options.Set("✅", "Yes")
	options.Set("<:partyparrot:1234>", "Party")

	raw, err := encodeOrdered(options)
	require.NoError(t, err)
	assert.JSONEq(t, `{"❔":"Maybe","✅":"Yes","<:partyparrot:1234>":"Party"}`, string(raw))

	decoded, err := decodeOrdered(raw)
	require.NoError(t, err)
	var keys []string
	for pair := decoded.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"❔", "✅", "<:partyparrot:1234>"}, keys)
}

func TestDecodeOrderedEmpty(t *testing.T) {
	m, err := decodeOrdered(nil)
	require.NoError(t, err)
	assert.Zero(t, m.Len())

	raw, err := encodeOrdered(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(raw))

	_, err = decodeOrdered([]byte("not json"))
	assert.Error(t, err)
}

func TestNullableConversions(t *testing.T) {
	assert.False(t, timeToPgtypeTimestamptz(time.Time{}).Valid)
	now := time.Date(2030, 1, 1, 19, 0, 0, 0, time.UTC)
	assert.Equal(t, now, pgtypeTimestamptzToTime(timeToPgtypeTimestamptz(now)))

	assert.False(t, reminderToPgtype(nil).Valid)
	assert.Nil(t, pgtypeToReminder(reminderToPgtype(nil)))
	minutes := 30
	got := pgtypeToReminder(reminderToPgtype(&minutes))
	require.NotNil(t, got)
	assert.Equal(t, 30, *got)
}
