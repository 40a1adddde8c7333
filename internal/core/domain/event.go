package domain

import "time"

// BrowseEvent is one observation reported by the browser extension.
type BrowseEvent struct {
	// ID is assigned when the event is recorded.
	ID string `json:"id"`

	// TabID is the browser tab the event came from.
	TabID int `json:"tab_id"`

	// Timestamp is when the browser observed the page.
	Timestamp time.Time `json:"timestamp"`

	// URL is the page URL and the document key for clustering.
	URL string `json:"page_url"`

	// Title is the page title.
	Title string `json:"page_title"`

	// Content is the rendered page markup, when captured.
	Content *string `json:"page_content,omitempty"`

	// EventType is the browser event kind (e.g. "tab_updated", "tab_activated").
	EventType string `json:"event_type"`
}

// EventWithClusters pairs a recorded event with the cluster its page
// belongs to in each embedding run.
type EventWithClusters struct {
	Event BrowseEvent `json:"event"`

	// Clusters maps run id to cluster id.
	Clusters map[string]string `json:"clusters,omitempty"`
}

// EventBucket counts events per time bucket and cluster.
type EventBucket struct {
	Start       time.Time `json:"timestamp_bucket"`
	ClusterID   string    `json:"cluster_id"`
	ClusterName string    `json:"cluster_name"`
	RunID       string    `json:"clustering_run"`
	Count       int       `json:"event_count"`
}

// BucketQuery selects the events to bucket.
type BucketQuery struct {
	RunID    string
	From     time.Time
	To       time.Time
	Interval time.Duration
}
