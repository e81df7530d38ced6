package ir

// Version constants for the query format and engine.
const (
	// QueryVersion is the query hashing format version.
	QueryVersion = "1"

	// EngineVersion is the traitkit engine version.
	EngineVersion = "0.1.0"
)
