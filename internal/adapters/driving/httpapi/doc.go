// Package httpapi serves the browser extension API.
//
// Routes:
//
//	POST /log_event           record a browse event and cluster its page
//	GET  /return_all_events   every event with its clusters
//	GET  /get_event_buckets   event counts per time bucket and cluster
//	GET  /clusters            clusters, optionally ?run=
//	GET  /pages               pages of ?cluster_id= in ?run=
//	GET  /runs                embedding runs
//	GET  /metrics             Prometheus metrics, when configured
//	     /mcp                 MCP streamable HTTP, when configured
//
// Cross-origin requests are allowed only from the configured origins, and
// only for GET and POST.
package httpapi
