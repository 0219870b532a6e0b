// Package manifest retrieves job manifests published by rendering engines.
//
// Engines publish manifests asynchronously. The network path (CDN or
// same-host reverse proxy) is the fast, cache-aware route; the filesystem
// fallback covers shared-volume deployments and masks propagation delay
// between an engine finishing and its output becoming fetchable. The loader
// makes at most one bounded network attempt and one filesystem read per
// call, and reports the ordered failure reasons when both miss.
package manifest
