package domain

// Version constants for persisted records.
const (
	// SchemaVersion is the review entry record version.
	SchemaVersion = "1"

	// EngineVersion is the bookkeeper engine version.
	EngineVersion = "0.1.0"
)
