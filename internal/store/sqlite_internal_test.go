package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, ":memory:?_foreign_keys=1", withForeignKeys(":memory:"))
	assert.Equal(t, "file:a.db?mode=rwc&_foreign_keys=1", withForeignKeys("file:a.db?mode=rwc"))
	assert.Equal(t, "file:a.db?_fk=0", withForeignKeys("file:a.db?_fk=0"))
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 1, 9, 0, 0, 123456000, time.FixedZone("CET", 3600))

	formatted := formatTime(ts)
	assert.Equal(t, "2025-03-01T08:00:00.123456Z", formatted)

	parsed, err := parseTime(formatted)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts))
}

func TestParseLegacyTimestamp(t *testing.T) {
	parsed, err := parseTime("2024-11-02T18:30:05.250000")
	require.NoError(t, err)
	assert.Equal(t, 2024, parsed.Year())
	assert.Equal(t, 250*time.Millisecond, time.Duration(parsed.Nanosecond()))

	parsed, err = parseTime("2024-11-02T18:30:05")
	require.NoError(t, err)
	assert.Equal(t, 5, parsed.Second())

	_, err = parseTime("yesterday")
	assert.Error(t, err)
}
