package csvfile_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/lindas-hydro-scraper/internal/adapter/csvfile"
	"github.com/couchcryptid/lindas-hydro-scraper/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, legacy bool) *csvfile.Store {
	t.Helper()
	return csvfile.New(filepath.Join(t.TempDir(), "lindas_hydro_data.csv"), legacy, discardLogger())
}

func readFile(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func floatPtr(v float64) *float64 { return &v }

func sampleReading() domain.Reading {
	return domain.Reading{
		StationID:   "2044",
		Timestamp:   "2024-01-01T00:00:00",
		Discharge:   floatPtr(12.5),
		CollectedAt: time.Date(2024, time.January, 1, 6, 30, 0, 0, time.UTC),
	}
}

func TestAppend_CreatesFileWithHeader(t *testing.T) {
	store := newTestStore(t, false)

	require.NoError(t, store.Append([]domain.Reading{sampleReading()}))

	lines := readFile(t, store.Path())
	require.Len(t, lines, 2)
	assert.Equal(t, "timestamp,station_id,discharge,water_level,danger_level,water_temperature,is_liter", lines[0])
	assert.Equal(t, "2024-01-01T00:00:00,2044,12.5,,,,", lines[1])
}

func TestAppend_LegacyHeader(t *testing.T) {
	store := newTestStore(t, true)

	require.NoError(t, store.Append([]domain.Reading{sampleReading()}))

	lines := readFile(t, store.Path())
	require.Len(t, lines, 2)
	assert.Equal(t, "timestamp,station_id,discharge,water_level,danger_level,water_temperature,collection_time", lines[0])
	assert.Equal(t, "2024-01-01T00:00:00,2044,12.5,,,,2024-01-01T06:30:00", lines[1])
}

func TestAppend_DoesNotRepeatHeader(t *testing.T) {
	store := newTestStore(t, false)

	require.NoError(t, store.Append([]domain.Reading{sampleReading()}))

	second := sampleReading()
	second.Timestamp = "2024-01-01T00:10:00"
	require.NoError(t, store.Append([]domain.Reading{second}))

	lines := readFile(t, store.Path())
	require.Len(t, lines, 3)
	assert.Equal(t, 1, strings.Count(strings.Join(lines, "\n"), "timestamp,station_id"))
}

func TestAppend_AllFields(t *testing.T) {
	store := newTestStore(t, false)

	isLiter := true
	r := domain.Reading{
		StationID:        "2243",
		Timestamp:        "2024-03-10T14:10:00",
		Discharge:        floatPtr(4.2),
		WaterLevel:       floatPtr(430.01),
		DangerLevel:      floatPtr(1),
		WaterTemperature: floatPtr(7.9),
		IsLiter:          &isLiter,
	}
	require.NoError(t, store.Append([]domain.Reading{r}))

	lines := readFile(t, store.Path())
	assert.Equal(t, "2024-03-10T14:10:00,2243,4.2,430.01,1,7.9,true", lines[1])
}

func TestAppend_FiltersMissingTimestamp(t *testing.T) {
	store := newTestStore(t, false)

	bad := sampleReading()
	bad.Timestamp = ""
	require.NoError(t, store.Append([]domain.Reading{bad, sampleReading()}))

	lines := readFile(t, store.Path())
	require.Len(t, lines, 2, "only the timestamped reading survives")
}

func TestAppend_EmptyBatchTouchesNothing(t *testing.T) {
	store := newTestStore(t, false)

	require.NoError(t, store.Append(nil))
	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestSeedKeys(t *testing.T) {
	store := newTestStore(t, false)

	second := sampleReading()
	second.StationID = "2112"
	require.NoError(t, store.Append([]domain.Reading{sampleReading(), second}))

	set, err := store.SeedKeys()
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Seen("2024-01-01T00:00:00_2044"))
	assert.True(t, set.Seen("2024-01-01T00:00:00_2112"))
	assert.False(t, set.Seen("2024-01-01T00:00:00_2491"))
}

func TestSeedKeys_MissingFile(t *testing.T) {
	store := newTestStore(t, false)

	set, err := store.SeedKeys()
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestCompact_RemovesExactDuplicates(t *testing.T) {
	store := newTestStore(t, false)

	r := sampleReading()
	other := sampleReading()
	other.StationID = "2112"
	// three copies of r, two of other: 5 rows, 2 distinct
	require.NoError(t, store.Append([]domain.Reading{r, other, r, r, other}))

	dropped, err := store.Compact()
	require.NoError(t, err)
	assert.Equal(t, 3, dropped)

	lines := readFile(t, store.Path())
	require.Len(t, lines, 3)
	assert.Equal(t, "2024-01-01T00:00:00,2044,12.5,,,,", lines[1])
	assert.Equal(t, "2024-01-01T00:00:00,2112,12.5,,,,", lines[2])
}

func TestCompact_Idempotent(t *testing.T) {
	store := newTestStore(t, false)

	r := sampleReading()
	require.NoError(t, store.Append([]domain.Reading{r, r}))

	dropped, err := store.Compact()
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)

	before := readFile(t, store.Path())
	dropped, err = store.Compact()
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Equal(t, before, readFile(t, store.Path()))
}

func TestCompact_KeepsNearDuplicates(t *testing.T) {
	store := newTestStore(t, false)

	r := sampleReading()
	near := sampleReading()
	near.Discharge = floatPtr(12.6) // one field differs
	require.NoError(t, store.Append([]domain.Reading{r, near}))

	dropped, err := store.Compact()
	require.NoError(t, err)
	assert.Zero(t, dropped, "rows differing in any field are not duplicates")
}

func TestCompact_MissingFile(t *testing.T) {
	store := newTestStore(t, false)

	dropped, err := store.Compact()
	require.NoError(t, err)
	assert.Zero(t, dropped)
}

func TestCompact_ThenSeedKeysMatchesCleanFile(t *testing.T) {
	store := newTestStore(t, false)

	r := sampleReading()
	require.NoError(t, store.Append([]domain.Reading{r, r, r}))

	_, err := store.Compact()
	require.NoError(t, err)

	set, err := store.SeedKeys()
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
	assert.True(t, set.Seen(r.DedupKey()))
}
