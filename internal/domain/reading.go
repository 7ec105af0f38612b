package domain

import "time"

// Binding is one predicate/object row returned by the SPARQL endpoint.
// Both values arrive as full URIs or literals; prefix stripping happens
// during mapping.
type Binding struct {
	Predicate string
	Object    string
}

// Reading is one station measurement occurrence. Pointer fields are nil when
// the endpoint did not return the corresponding dimension.
type Reading struct {
	StationID        string   `json:"station_id"`
	Timestamp        string   `json:"timestamp"` // ISO-8601, verbatim from the endpoint
	Discharge        *float64 `json:"discharge,omitempty"`
	WaterLevel       *float64 `json:"water_level,omitempty"`
	DangerLevel      *float64 `json:"danger_level,omitempty"`
	WaterTemperature *float64 `json:"water_temperature,omitempty"`
	IsLiter          *bool    `json:"is_liter,omitempty"`

	// CollectedAt is when this process observed the reading, not when the
	// station measured it. Persisted only in the legacy CSV layout.
	CollectedAt time.Time `json:"collected_at"`
}

// Valid reports whether the reading is worth persisting: it must carry a
// measurement time and at least one actual measurement. DangerLevel and
// IsLiter alone do not qualify.
func (r Reading) Valid() bool {
	if r.Timestamp == "" {
		return false
	}
	return r.Discharge != nil || r.WaterLevel != nil || r.WaterTemperature != nil
}

// DedupKey identifies one measurement occurrence. The underscore-joined
// format matches the keys historically derived from the CSV file, so a store
// seeded from disk and keys computed from fresh readings compare equal.
func (r Reading) DedupKey() string {
	return r.Timestamp + "_" + r.StationID
}
