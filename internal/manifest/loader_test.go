package manifest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"surfacegate/internal/config"
	"surfacegate/internal/logging"
	"surfacegate/internal/manifest"
)

const validManifest = `{
	"job_id": "job-1",
	"status": "complete",
	"public_root": "https://cdn.example/assets/surface/job-1",
	"public": {"previews": {"hero": "previews/hero.png"}}
}`

func testConfig(t *testing.T, fetchBase string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Manifest.FetchBaseURL = fetchBase
	return &cfg
}

func surfaceEngine() config.Engine {
	return config.Engine{Name: "surface", Service: "surface-engine", PublicPrefix: "/assets/surface"}
}

func writeJobFile(t *testing.T, outputDir, subfolder, jobID, name, content string) {
	t.Helper()
	dir := filepath.Join(outputDir, subfolder, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadFromNetwork(t *testing.T) {
	var requested string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(validManifest))
	}))
	defer server.Close()

	cfg := testConfig(t, server.URL)
	loader := manifest.NewLoader(cfg, surfaceEngine(), nil, logging.NewNop())

	result, err := loader.Load(context.Background(), "job-1", "smoke-test")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if result.Source != manifest.SourceNetwork {
		t.Errorf("source = %q, want network", result.Source)
	}
	if want := "/assets/surface/smoke-test/job-1/job_manifest.json"; result.ManifestURL != want {
		t.Errorf("manifest url = %q, want %q", result.ManifestURL, want)
	}
	if requested != result.ManifestURL {
		t.Errorf("fetched path = %q, want %q", requested, result.ManifestURL)
	}
	if result.Manifest.JobID != "job-1" {
		t.Errorf("manifest job id = %q", result.Manifest.JobID)
	}
}

func TestLoadFallsBackToFilesystem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	cfg := testConfig(t, server.URL)
	writeJobFile(t, cfg.Paths.OutputDir, "smoke-test", "job-1", "job_manifest.json", validManifest)
	loader := manifest.NewLoader(cfg, surfaceEngine(), nil, logging.NewNop())

	result, err := loader.Load(context.Background(), "job-1", "smoke-test")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if result.Source != manifest.SourceFilesystem {
		t.Errorf("source = %q, want filesystem", result.Source)
	}
}

func TestLoadTriesLegacyManifestNames(t *testing.T) {
	cfg := testConfig(t, "")
	writeJobFile(t, cfg.Paths.OutputDir, "", "job-2", "job.json",
		`{"job_id": "job-2", "status": "complete"}`)
	loader := manifest.NewLoader(cfg, surfaceEngine(), nil, logging.NewNop())

	result, err := loader.Load(context.Background(), "job-2", "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if result.Manifest.JobID != "job-2" {
		t.Errorf("manifest job id = %q", result.Manifest.JobID)
	}
}

func TestLoadReportsOrderedFailureReasons(t *testing.T) {
	cfg := testConfig(t, "")
	loader := manifest.NewLoader(cfg, surfaceEngine(), nil, logging.NewNop())

	_, err := loader.Load(context.Background(), "job-3", "")
	var unavailable *manifest.UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
	if len(unavailable.Reasons) != 2 {
		t.Fatalf("expected 2 reasons, got %v", unavailable.Reasons)
	}
	if !strings.HasPrefix(unavailable.Reasons[0], "network:") {
		t.Errorf("first reason should be network: %q", unavailable.Reasons[0])
	}
	if !strings.HasPrefix(unavailable.Reasons[1], "filesystem:") {
		t.Errorf("second reason should be filesystem: %q", unavailable.Reasons[1])
	}
}

func TestLoadReasonsOmitUpstreamHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	host := server.URL
	server.Close() // guarantee a transport failure

	cfg := testConfig(t, host)
	loader := manifest.NewLoader(cfg, surfaceEngine(), nil, logging.NewNop())

	_, err := loader.Load(context.Background(), "job-4", "")
	var unavailable *manifest.UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
	for _, reason := range unavailable.Reasons {
		if strings.Contains(reason, strings.TrimPrefix(host, "http://")) {
			t.Errorf("reason leaks upstream host: %q", reason)
		}
	}
}

func TestLoadRejectsTraversalSubfolder(t *testing.T) {
	cfg := testConfig(t, "")
	loader := manifest.NewLoader(cfg, surfaceEngine(), nil, logging.NewNop())

	if _, err := loader.Load(context.Background(), "job-5", "../escape"); err == nil {
		t.Fatal("expected error for traversal subfolder")
	}
}

func TestLoadRequiresJobID(t *testing.T) {
	cfg := testConfig(t, "")
	loader := manifest.NewLoader(cfg, surfaceEngine(), nil, logging.NewNop())

	if _, err := loader.Load(context.Background(), "  ", ""); err == nil {
		t.Fatal("expected error for empty job id")
	}
}
