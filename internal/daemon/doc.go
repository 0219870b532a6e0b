// Package daemon runs the gateway as a long-lived background service. It
// enforces single-instance execution with a file lock and owns the gateway
// server's lifecycle.
package daemon
