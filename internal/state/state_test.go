package state_test

import (
	"testing"

	"surfacegate/internal/state"
)

func TestNormalizeSynonyms(t *testing.T) {
	cases := []struct {
		raw      string
		expected state.Canonical
	}{
		{"queued", state.Queued},
		{"pending", state.Queued},
		{"waiting", state.Queued},
		{"running", state.Running},
		{"processing", state.Running},
		{"executing", state.Running},
		{"writing", state.Writing},
		{"finalizing", state.Writing},
		{"complete", state.Complete},
		{"completed", state.Complete},
		{"done", state.Complete},
		{"failed", state.Failed},
		{"error", state.Failed},
	}
	for _, tc := range cases {
		if got := state.Normalize(tc.raw); got != tc.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tc.raw, got, tc.expected)
		}
	}
}

func TestNormalizeIsCaseInsensitive(t *testing.T) {
	if got := state.Normalize("COMPLETED"); got != state.Complete {
		t.Fatalf("Normalize(COMPLETED) = %q", got)
	}
	if got := state.Normalize(" Pending "); got != state.Queued {
		t.Fatalf("Normalize( Pending ) = %q", got)
	}
}

func TestNormalizePassesThroughUnrecognized(t *testing.T) {
	if got := state.Normalize("Paused"); got != state.Canonical("paused") {
		t.Fatalf("Normalize(Paused) = %q, want paused", got)
	}
}

func TestNormalizeEmptyIsUnknown(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t"} {
		if got := state.Normalize(raw); got != state.Unknown {
			t.Fatalf("Normalize(%q) = %q, want unknown", raw, got)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, raw := range []string{"pending", "done", "paused", "", "FAILED"} {
		once := state.Normalize(raw)
		twice := state.Normalize(string(once))
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !state.IsTerminal(state.Complete) || !state.IsTerminal(state.Failed) {
		t.Fatal("complete and failed must be terminal")
	}
	for _, c := range []state.Canonical{state.Queued, state.Running, state.Writing, state.Unknown} {
		if state.IsTerminal(c) {
			t.Errorf("%q should not be terminal", c)
		}
	}
}

func TestProgressPlaceholders(t *testing.T) {
	cases := map[state.Canonical]int{
		state.Queued:   10,
		state.Running:  60,
		state.Writing:  85,
		state.Complete: 100,
		state.Failed:   0,
		state.Unknown:  0,
	}
	for c, want := range cases {
		if got := state.Progress(c); got != want {
			t.Errorf("Progress(%q) = %d, want %d", c, got, want)
		}
	}
}
