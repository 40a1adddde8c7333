// Package connectors provides page sources that feed the ingest service
// from outside the HTTP API.
//
// The filesystem connector reads saved HTML pages from disk and watches a
// directory for new ones.
package connectors
