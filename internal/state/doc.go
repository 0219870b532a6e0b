// Package state normalizes the status vocabularies reported by rendering
// engines into a single canonical taxonomy. Engines disagree about naming
// ("pending" vs "waiting", "done" vs "completed"); everything downstream of
// the gateway speaks only the canonical values defined here.
package state
