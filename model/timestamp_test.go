package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampRoundTrip(t *testing.T) {
	cases := []string{
		"2024",
		"2024-03",
		"2024-03-15",
		"2024-03-15T10:30",
		"2024-03-15T10:30:45",
		"2024-03-15T10:30:45.123",
		"2024-03-15T10:30:45Z",
		"2024-03-15T10:30:45+02:00",
	}
	for _, s := range cases {
		t.Run(s, func(t *testing.T) {
			ts, err := ParseTimestamp(s)
			require.NoError(t, err)
			assert.Equal(t, s, ts.String())
		})
	}
}

func TestTimeRoundTrip(t *testing.T) {
	cases := []string{"14:30:00", "14:30:00.500"}
	for _, s := range cases {
		ts, err := ParseTime(s)
		require.NoError(t, err)
		assert.Equal(t, s, ts.String())
	}
}

func TestTimestampCmpCoarserPrecision(t *testing.T) {
	date, err := ParseTimestamp("2024-03-15")
	require.NoError(t, err)
	dt, err := ParseTimestamp("2024-03-15T23:59:59")
	require.NoError(t, err)
	assert.Equal(t, 0, date.Cmp(dt), "a Date compares equal to a same-day DateTime at Date precision")
}

func TestTimestampEqualRequiresSamePrecision(t *testing.T) {
	date, err := ParseTimestamp("2024-03-15")
	require.NoError(t, err)
	dt, err := ParseTimestamp("2024-03-15T00:00")
	require.NoError(t, err)
	assert.False(t, date.Equal(dt), "Date and DateTime of differing precision are never FHIRPath-equal even at the same instant")
}
