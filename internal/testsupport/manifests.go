package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"surfacegate/internal/config"
)

// WriteManifest marshals the given document into the output directory at the
// loader's expected location for jobID (and optional subfolder), creating
// parent directories, and returns the file path.
func WriteManifest(t testing.TB, cfg *config.Config, jobID, subfolder, filename string, doc any) string {
	t.Helper()

	if filename == "" {
		filename = "job_manifest.json"
	}
	dir := cfg.Paths.OutputDir
	if subfolder != "" {
		dir = filepath.Join(dir, subfolder)
	}
	dir = filepath.Join(dir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir manifest dir: %v", err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

// WriteArtifact fills the target path under the output directory with the
// requested number of bytes. A size <= 0 writes a single byte.
func WriteArtifact(t testing.TB, cfg *config.Config, rel string, size int64) string {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	path := filepath.Join(cfg.Paths.OutputDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
