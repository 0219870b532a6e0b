package assets

import (
	"testing"

	"surfacegate/internal/contract"
)

func newTestResolver() *Resolver {
	return NewResolver("/assets/surface")
}

func TestResolveURLAbsolutePassthrough(t *testing.T) {
	r := newTestResolver()

	for _, raw := range []string{
		"https://cdn.example/assets/surface/job-1/previews/hero.png",
		"http://engine.internal:8092/files/hero.png",
	} {
		if got := r.ResolveURL(raw, "https://cdn.example/other", "/assets/surface/job-1"); got != raw {
			t.Fatalf("absolute URL rewritten: got %q, want %q", got, raw)
		}
	}
}

func TestResolveURLCanonicalRootPassthrough(t *testing.T) {
	r := newTestResolver()

	raw := "/assets/surface/batch/job-1/previews/hero.png"
	if got := r.ResolveURL(raw, "https://cdn.example/root", "/assets/surface/job-1"); got != raw {
		t.Fatalf("canonical-rooted URL rewritten: got %q, want %q", got, raw)
	}
}

func TestResolveURLRelativeWithPublicRoot(t *testing.T) {
	r := newTestResolver()

	got := r.ResolveURL("previews/hero.png", "https://cdn.example/assets/surface/job-1", "/assets/surface/job-1")
	want := "https://cdn.example/assets/surface/job-1/previews/hero.png"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	// Leading slash and trailing root slash must not double up.
	got = r.ResolveURL("/previews/hero.png", "https://cdn.example/assets/surface/job-1/", "/assets/surface/job-1")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolveURLRelativeWithoutPublicRoot(t *testing.T) {
	r := newTestResolver()

	got := r.ResolveURL("previews/hero.png", "", "/assets/surface/batch-7/job-1")
	want := "/assets/surface/batch-7/job-1/previews/hero.png"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolveURLAssetRootSegment(t *testing.T) {
	r := newTestResolver()

	got := r.ResolveURL("assets/surface/job-1/enclosure/enclosure.stl", "", "/assets/surface/job-1")
	want := "/assets/surface/job-1/enclosure/enclosure.stl"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolveURLEmpty(t *testing.T) {
	r := newTestResolver()
	if got := r.ResolveURL("   ", "https://cdn.example", "/assets/surface/job-1"); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestDeriveExplicitPublicFields(t *testing.T) {
	r := newTestResolver()
	man := &contract.JobManifest{
		JobID:      "job-42",
		PublicRoot: "https://cdn.example/assets/surface/smoke/job-42",
		Public: &contract.ManifestPublic{
			Previews:  &contract.Previews{Hero: "previews/hero.png"},
			Enclosure: &contract.Enclosure{STL: "enclosure/enclosure.stl"},
		},
	}

	derived, err := r.Derive(man, "job-42", "smoke")
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	wantHero := "https://cdn.example/assets/surface/smoke/job-42/previews/hero.png"
	if got := derived.URLFor(KindHero); got != wantHero {
		t.Fatalf("hero: got %q, want %q", got, wantHero)
	}
	wantSTL := "https://cdn.example/assets/surface/smoke/job-42/enclosure/enclosure.stl"
	if got := derived.URLFor(KindSTL); got != wantSTL {
		t.Fatalf("stl: got %q, want %q", got, wantSTL)
	}
	wantManifest := "https://cdn.example/assets/surface/smoke/job-42/job_manifest.json"
	if got := derived.URLFor(KindManifest); got != wantManifest {
		t.Fatalf("manifest: got %q, want %q", got, wantManifest)
	}
}

func TestDeriveFirstMatchWins(t *testing.T) {
	r := newTestResolver()
	man := &contract.JobManifest{
		JobID: "job-42",
		Outputs: []contract.Output{
			{Type: "preview", Name: "hero-draft", URL: "previews/draft.png"},
			{Type: "preview", Name: "hero-final", URL: "previews/final.png"},
			{Type: "mesh", Name: "case", Path: "enclosure/case.stl", Checksum: "abc123", Size: 2048},
			{Type: "mesh", Name: "case-hq", Path: "enclosure/case-hq.stl"},
		},
	}

	derived, err := r.Derive(man, "job-42", "")
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	// Manifest array order decides, not any quality heuristic.
	wantHero := "/assets/surface/job-42/previews/draft.png"
	if got := derived.URLFor(KindHero); got != wantHero {
		t.Fatalf("hero: got %q, want %q", got, wantHero)
	}

	stl, ok := derived.Get(KindSTL)
	if !ok {
		t.Fatal("stl artifact missing")
	}
	if want := "/assets/surface/job-42/enclosure/case.stl"; stl.URL != want {
		t.Fatalf("stl: got %q, want %q", stl.URL, want)
	}
	if stl.Checksum != "abc123" || stl.Size != 2048 {
		t.Fatalf("stl metadata not carried: %+v", stl)
	}
}

func TestDeriveDefaultsRequirePublicRoot(t *testing.T) {
	r := newTestResolver()

	// Without a declared public_root, hero and stl are not invented.
	man := &contract.JobManifest{JobID: "job-42"}
	derived, err := r.Derive(man, "job-42", "")
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if _, ok := derived.Get(KindHero); ok {
		t.Fatal("hero defaulted without public_root")
	}
	if _, ok := derived.Get(KindSTL); ok {
		t.Fatal("stl defaulted without public_root")
	}
	// The manifest itself always has a well-known location.
	if want := "/assets/surface/job-42/job_manifest.json"; derived.URLFor(KindManifest) != want {
		t.Fatalf("manifest: got %q, want %q", derived.URLFor(KindManifest), want)
	}

	// With public_root, the engine's standard layout is assumed.
	man.PublicRoot = "https://cdn.example/assets/surface/job-42"
	derived, err = r.Derive(man, "job-42", "")
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if want := "https://cdn.example/assets/surface/job-42/previews/hero.png"; derived.URLFor(KindHero) != want {
		t.Fatalf("hero: got %q, want %q", derived.URLFor(KindHero), want)
	}
}

func TestDeriveOptionalKindsNeverDefaulted(t *testing.T) {
	r := newTestResolver()
	man := &contract.JobManifest{
		JobID:      "job-42",
		PublicRoot: "https://cdn.example/assets/surface/job-42",
	}

	derived, err := r.Derive(man, "job-42", "")
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if _, ok := derived.Get(KindTexture); ok {
		t.Fatal("texture defaulted")
	}
	if _, ok := derived.Get(KindHeightmap); ok {
		t.Fatal("heightmap defaulted")
	}
}

func TestDeriveSubfolderOverride(t *testing.T) {
	r := newTestResolver()
	man := &contract.JobManifest{
		JobID:     "job-42",
		Subfolder: "manifest-batch",
		Outputs: []contract.Output{
			{Type: "preview", URL: "previews/hero.png"},
		},
	}

	derived, err := r.Derive(man, "job-42", "caller-batch")
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if want := "/assets/surface/caller-batch/job-42"; derived.BasePath != want {
		t.Fatalf("base path: got %q, want %q", derived.BasePath, want)
	}
	if want := "/assets/surface/caller-batch/job-42/previews/hero.png"; derived.URLFor(KindHero) != want {
		t.Fatalf("hero: got %q, want %q", derived.URLFor(KindHero), want)
	}
}

func TestDeriveHeightmapLegacyField(t *testing.T) {
	r := newTestResolver()
	man := &contract.JobManifest{
		JobID: "job-42",
		Public: &contract.ManifestPublic{
			HeightmapURL: "textures/heightmap.png",
		},
	}

	derived, err := r.Derive(man, "job-42", "")
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if want := "/assets/surface/job-42/textures/heightmap.png"; derived.URLFor(KindHeightmap) != want {
		t.Fatalf("heightmap: got %q, want %q", derived.URLFor(KindHeightmap), want)
	}
}
