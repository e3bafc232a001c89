// Package app provides the application service layer.
//
// Orchestrates use cases: starting and stopping rotation loops, manual
// switches, catalog refresh, status reporting. Sits between HTTP handlers and
// the rotation core. Depends on domain interfaces, not concrete gateways.
package app
