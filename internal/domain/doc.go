// Package domain models FOEN hydrological station readings from the LINDAS
// linked-data platform.
//
// # Data Source
//
// The Swiss Federal Office for the Environment (FOEN) publishes near-real-time
// hydrological observations (river discharge, water level, water temperature,
// flood danger level) on the LINDAS SPARQL endpoint. One observation subject
// exists per station, at {base}/river/observation/{code}, and carries one
// dimension predicate per measured attribute. Querying a station yields a flat
// list of predicate/object bindings describing the most recent measurement.
//
// # Conventions
//
// Station codes are short numeric identifiers in the range 1-9999, e.g. 2044
// (Broye-Payerne). Measurement times arrive as ISO-8601 strings and are kept
// verbatim: the pair (measurement time, station code) identifies one
// measurement occurrence and is the deduplication key for the CSV ledger.
// Discharge is normally m3/s; small catchments report l/s and flag it with the
// isLiter dimension.
//
// A reading is worth persisting only when it has a measurement time and at
// least one of discharge, water level, or water temperature. Danger level
// alone is not a measurement.
package domain
