// Package gateway exposes the HTTP surface of surfacegate. It proxies job
// submission and status to the configured rendering engines, enforcing the
// status envelope contract on everything that passes through, serves derived
// asset listings, and hosts the catalog promotion endpoints.
//
// Upstream engines are never trusted: every proxied response is schema
// validated before it reaches a client, and validation failures are reported
// as well-formed failure envelopes instead of raw upstream bytes. Upstream
// hostnames never appear in client-facing error text.
package gateway
