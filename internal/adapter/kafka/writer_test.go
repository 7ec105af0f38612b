package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/lindas-hydro-scraper/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	discharge := 12.5
	collected := time.Date(2024, time.January, 1, 6, 30, 0, 0, time.UTC)
	r := domain.Reading{
		StationID:   "2044",
		Timestamp:   "2024-01-01T00:00:00",
		Discharge:   &discharge,
		CollectedAt: collected,
	}

	msg, err := serializeToMessage(r)
	require.NoError(t, err)

	assert.Equal(t, []byte("2024-01-01T00:00:00_2044"), msg.Key)
	assert.Contains(t, string(msg.Value), `"station_id":"2044"`)
	assert.Contains(t, string(msg.Value), `"discharge":12.5`)
	assert.NotContains(t, string(msg.Value), "water_level", "nil fields are omitted")

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "station_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("2044"), msg.Headers[0].Value)
	assert.Equal(t, "collected_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(collected.Format(time.RFC3339)), msg.Headers[1].Value)
}
