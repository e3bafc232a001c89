// Package server implements the operator HTTP API using the Echo framework.
//
// Routes: loop control (start/stop/delay/switch/status), catalog reads and
// refresh, the websocket status stream, health probes and metrics. Handlers
// split by concern: handlers_loops.go, handlers_catalog.go, handlers_health.go,
// handlers_status_stream.go.
package server
