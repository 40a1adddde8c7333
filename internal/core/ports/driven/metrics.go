package driven

import "time"

// IngestMetrics records ingestion outcomes. Implementations must be safe
// for concurrent use.
type IngestMetrics interface {
	// EventRecorded counts a browse event; ignored events are counted apart.
	EventRecorded(ignored bool)

	// PageSkipped counts a page that already had content.
	PageSkipped()

	// Assigned counts one assignment decision in a run.
	// outcome is "joined" or "founded".
	Assigned(runID, outcome string, similarity float64)

	// PipelineFailed counts a failed pipeline run at the given step.
	PipelineFailed(runID, step string)

	// PipelineDuration observes the wall time of one pipeline run.
	PipelineDuration(runID string, d time.Duration)
}
