package domain

import (
	"log/slog"
	"strconv"
	"strings"
)

// examplePrefix carries the isLiter flag, which FOEN publishes outside the
// hydro dimension namespace.
const examplePrefix = "http://example.com/"

// MapBindings folds the predicate/object bindings for one station into a
// Reading. It returns ok=false when the bindings do not yield a valid reading
// (no measurement time, or nothing measured); callers treat that as "no data
// for this station", not as an error.
//
// Unrecognized predicates are ignored. Numeric object values that fail to
// parse are logged and left nil rather than discarding the whole reading.
func MapBindings(baseURL, stationCode string, bindings []Binding, logger *slog.Logger) (Reading, bool) {
	dimensionPrefix := baseURL + "/dimension/"
	stationPrefix := baseURL + "/station/"

	r := Reading{
		StationID:   stationCode,
		CollectedAt: clock.Now(),
	}

	for _, b := range bindings {
		name := strings.TrimPrefix(b.Predicate, dimensionPrefix)
		name = strings.TrimPrefix(name, examplePrefix)

		switch name {
		case "station":
			// The object is the station URI; keep the bare code.
			r.StationID = strings.TrimPrefix(b.Object, stationPrefix)
		case "measurementTime":
			r.Timestamp = b.Object
		case "discharge":
			r.Discharge = parseFloatField(logger, stationCode, name, b.Object)
		case "waterLevel":
			r.WaterLevel = parseFloatField(logger, stationCode, name, b.Object)
		case "dangerLevel":
			r.DangerLevel = parseFloatField(logger, stationCode, name, b.Object)
		case "waterTemperature":
			r.WaterTemperature = parseFloatField(logger, stationCode, name, b.Object)
		case "isLiter":
			r.IsLiter = parseBoolField(logger, stationCode, name, b.Object)
		}
	}

	if !r.Valid() {
		return Reading{}, false
	}
	return r, true
}

// parseFloatField parses a numeric object value, returning nil on failure so
// a single malformed dimension does not sink the reading.
func parseFloatField(logger *slog.Logger, station, field, raw string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		logger.Warn("unparseable numeric value, leaving field empty",
			"station", station, "field", field, "value", raw)
		return nil
	}
	return &v
}

func parseBoolField(logger *slog.Logger, station, field, raw string) *bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		logger.Warn("unparseable boolean value, leaving field empty",
			"station", station, "field", field, "value", raw)
		return nil
	}
	return &v
}
