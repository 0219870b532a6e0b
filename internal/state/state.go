package state

import "strings"

// Canonical is a normalized job status. Unrecognized upstream values pass
// through lower-cased so that future engine states remain visible instead of
// being silently collapsed.
type Canonical string

const (
	Queued   Canonical = "queued"
	Running  Canonical = "running"
	Writing  Canonical = "writing"
	Complete Canonical = "complete"
	Failed   Canonical = "failed"
	Unknown  Canonical = "unknown"
)

var synonyms = map[string]Canonical{
	"queued":     Queued,
	"pending":    Queued,
	"waiting":    Queued,
	"running":    Running,
	"processing": Running,
	"executing":  Running,
	"writing":    Writing,
	"finalizing": Writing,
	"complete":   Complete,
	"completed":  Complete,
	"done":       Complete,
	"failed":     Failed,
	"error":      Failed,
}

// Normalize maps a raw upstream status string to its canonical value.
// Matching is case-insensitive. Empty or whitespace-only input maps to
// Unknown; any other unrecognized value is returned lower-cased.
func Normalize(raw string) Canonical {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return Unknown
	}
	if canonical, ok := synonyms[trimmed]; ok {
		return canonical
	}
	return Canonical(trimmed)
}

// IsTerminal reports whether the state ends a job's lifecycle.
func IsTerminal(c Canonical) bool {
	return c == Complete || c == Failed
}

var placeholderProgress = map[Canonical]int{
	Queued:   10,
	Running:  60,
	Writing:  85,
	Complete: 100,
	Failed:   0,
}

// Progress returns the placeholder display progress for a canonical state.
// Upstream-reported numeric progress always takes precedence; this table is
// a UX affordance for engines that omit the field, never authoritative.
func Progress(c Canonical) int {
	if p, ok := placeholderProgress[c]; ok {
		return p
	}
	return 0
}
