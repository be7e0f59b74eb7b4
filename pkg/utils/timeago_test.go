package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimeAgo(t *testing.T) {
	const day = 24 * time.Hour

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{time.Hour, "1 hour ago"},
		{3 * time.Hour, "3 hours ago"},
		{day, "1 day ago"},
		{3 * day, "3 days ago"},
		{7 * day, "1 week ago"},
		{15 * day, "2 weeks ago"},
		{-time.Hour, "in the future"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimeAgo(time.Now().Add(-tt.ago)))
		})
	}
}

func TestFormatTimeAgo_Never(t *testing.T) {
	assert.Equal(t, "never", FormatTimeAgo(time.Time{}))
}

func TestFormatTimeAgo_OldDate(t *testing.T) {
	assert.Equal(t, "Jan 15, 2020", FormatTimeAgo(time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)))
}

func TestFormatTimeAgo_MarkerTimestamp(t *testing.T) {
	// Markers hold RFC 3339 UTC timestamps with second precision.
	ts, err := time.Parse(time.RFC3339, time.Now().UTC().Add(-2*time.Hour).Format(time.RFC3339))
	require.NoError(t, err)
	assert.Equal(t, "2 hours ago", FormatTimeAgo(ts))
}
