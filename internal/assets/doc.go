// Package assets derives canonical URLs for the artifacts a job manifest
// references. Manifests arrive with a mix of absolute URLs, rooted paths,
// and bare relative paths; the resolver applies a fixed fallback cascade so
// every consumer sees the same canonical location for the same input.
//
// Artifact discovery over a manifest's outputs list uses an ordered set of
// typed predicates with a first-match-wins tie-break in declaration order.
// That is deliberate: resolution must be reproducible, so the first
// qualifying output wins even when a later one looks like a better fit.
package assets
