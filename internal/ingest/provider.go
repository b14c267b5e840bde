// Package ingest holds what importers report back.
package ingest

// Result holds the outcome of an import.
type Result struct {
	SessionsReceived int `json:"sessions_received"`
	RecordsInserted  int `json:"records_inserted"`
	RecordsSkipped   int `json:"records_skipped"`
	SessionsMerged   int `json:"sessions_merged"`

	SetsReceived      int `json:"sets_received"`
	ExercisesImported int `json:"exercises_imported"`
	ExercisesSkipped  int `json:"exercises_skipped"`
	ValuesClamped     int `json:"values_clamped"`

	Message string `json:"message,omitempty"`
}
