package ir

// NOTE: These are store-layer records, not part of the descriptor model.
// Seq is an auto-increment logical clock; no wall-clock timestamps.

// Evaluation is a persisted query result.
type Evaluation struct {
	Seq         int64   `json:"seq" yaml:"seq"`
	ID          string  `json:"id" yaml:"id"` // EvaluationID
	CatalogHash string  `json:"catalog_hash" yaml:"catalog_hash"`
	SessionID   string  `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Query       string  `json:"query" yaml:"query"` // script form
	Outcome     Outcome `json:"outcome" yaml:"outcome"`
}

// Session groups the evaluations of one CLI run or script.
type Session struct {
	ID          string `json:"id" yaml:"id"` // UUIDv7
	CatalogHash string `json:"catalog_hash" yaml:"catalog_hash"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
}
