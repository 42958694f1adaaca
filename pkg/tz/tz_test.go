package tz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestZonesForCountry(t *testing.T) {
	assert.Equal(t, []string{"Europe/Brussels"}, ZonesForCountry("be"))
	assert.Contains(t, ZonesForCountry("US"), "America/New_York")
	assert.Empty(t, ZonesForCountry("zz"))
}

func TestIn(t *testing.T) {
	instant := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 13, In(instant, "Europe/Brussels").Hour())
	assert.Equal(t, 12, In(instant, "Not/AZone").Hour())
	assert.Equal(t, time.UTC, In(instant, "").Location())
}
