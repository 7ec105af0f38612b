package domain_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/lindas-hydro-scraper/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://environment.ld.admin.ch/foen/hydro"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dim(name string) string {
	return testBaseURL + "/dimension/" + name
}

func TestMapBindings_TimeAndDischarge(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.January, 1, 6, 0, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() { domain.SetClock(nil) })

	bindings := []domain.Binding{
		{Predicate: dim("measurementTime"), Object: "2024-01-01T00:00:00"},
		{Predicate: dim("discharge"), Object: "12.5"},
	}

	r, ok := domain.MapBindings(testBaseURL, "2044", bindings, discardLogger())
	require.True(t, ok)

	discharge := 12.5
	want := domain.Reading{
		StationID:   "2044",
		Timestamp:   "2024-01-01T00:00:00",
		Discharge:   &discharge,
		CollectedAt: fakeClock.Now(),
	}
	assert.Empty(t, cmp.Diff(want, r))
	assert.True(t, r.Valid())
}

func TestMapBindings_MissingMeasurementTime(t *testing.T) {
	bindings := []domain.Binding{
		{Predicate: dim("discharge"), Object: "12.5"},
		{Predicate: dim("waterLevel"), Object: "430.01"},
		{Predicate: dim("waterTemperature"), Object: "7.2"},
	}

	_, ok := domain.MapBindings(testBaseURL, "2044", bindings, discardLogger())
	assert.False(t, ok, "a reading without a measurement time must be dropped")
}

func TestMapBindings_OnlyDangerLevelIsNotAMeasurement(t *testing.T) {
	bindings := []domain.Binding{
		{Predicate: dim("measurementTime"), Object: "2024-01-01T00:00:00"},
		{Predicate: dim("dangerLevel"), Object: "2"},
	}

	_, ok := domain.MapBindings(testBaseURL, "2044", bindings, discardLogger())
	assert.False(t, ok)
}

func TestMapBindings_AllDimensions(t *testing.T) {
	bindings := []domain.Binding{
		{Predicate: dim("station"), Object: testBaseURL + "/station/2243"},
		{Predicate: dim("measurementTime"), Object: "2024-03-10T14:10:00"},
		{Predicate: dim("discharge"), Object: "4.2"},
		{Predicate: dim("waterLevel"), Object: "430.01"},
		{Predicate: dim("dangerLevel"), Object: "1"},
		{Predicate: dim("waterTemperature"), Object: "7.9"},
		{Predicate: "http://example.com/isLiter", Object: "true"},
	}

	r, ok := domain.MapBindings(testBaseURL, "2243", bindings, discardLogger())
	require.True(t, ok)

	assert.Equal(t, "2243", r.StationID)
	assert.Equal(t, "2024-03-10T14:10:00", r.Timestamp)
	require.NotNil(t, r.Discharge)
	assert.Equal(t, 4.2, *r.Discharge)
	require.NotNil(t, r.WaterLevel)
	assert.Equal(t, 430.01, *r.WaterLevel)
	require.NotNil(t, r.DangerLevel)
	assert.Equal(t, 1.0, *r.DangerLevel)
	require.NotNil(t, r.WaterTemperature)
	assert.Equal(t, 7.9, *r.WaterTemperature)
	require.NotNil(t, r.IsLiter)
	assert.True(t, *r.IsLiter)
}

func TestMapBindings_StationURIOverridesQueriedCode(t *testing.T) {
	bindings := []domain.Binding{
		{Predicate: dim("station"), Object: testBaseURL + "/station/2112"},
		{Predicate: dim("measurementTime"), Object: "2024-01-01T00:00:00"},
		{Predicate: dim("discharge"), Object: "1"},
	}

	r, ok := domain.MapBindings(testBaseURL, "9999", bindings, discardLogger())
	require.True(t, ok)
	assert.Equal(t, "2112", r.StationID)
}

func TestMapBindings_UnparseableNumberLeavesFieldNil(t *testing.T) {
	bindings := []domain.Binding{
		{Predicate: dim("measurementTime"), Object: "2024-01-01T00:00:00"},
		{Predicate: dim("discharge"), Object: "12.5"},
		{Predicate: dim("waterTemperature"), Object: "n/a"},
	}

	r, ok := domain.MapBindings(testBaseURL, "2044", bindings, discardLogger())
	require.True(t, ok)
	assert.Nil(t, r.WaterTemperature)
	require.NotNil(t, r.Discharge)
	assert.Equal(t, 12.5, *r.Discharge)
}

func TestMapBindings_UnrecognizedPredicateIgnored(t *testing.T) {
	bindings := []domain.Binding{
		{Predicate: dim("measurementTime"), Object: "2024-01-01T00:00:00"},
		{Predicate: dim("waterLevel"), Object: "371.2"},
		{Predicate: "http://www.w3.org/1999/02/22-rdf-syntax-ns#type", Object: "something"},
	}

	r, ok := domain.MapBindings(testBaseURL, "2044", bindings, discardLogger())
	require.True(t, ok)
	require.NotNil(t, r.WaterLevel)
	assert.Equal(t, 371.2, *r.WaterLevel)
}

func TestMapBindings_NoBindings(t *testing.T) {
	_, ok := domain.MapBindings(testBaseURL, "2044", nil, discardLogger())
	assert.False(t, ok)
}

func TestReading_DedupKey(t *testing.T) {
	r := domain.Reading{StationID: "2044", Timestamp: "2024-01-01T00:00:00"}
	assert.Equal(t, "2024-01-01T00:00:00_2044", r.DedupKey())
}
