package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"surfacegate/internal/config"
	"surfacegate/internal/contract"
	"surfacegate/internal/logging"
)

// Filename is the canonical manifest name engines publish.
const Filename = "job_manifest.json"

// fileCandidates are the manifest names probed on the filesystem fallback,
// in preference order. Older engines wrote job.json or manifest.json.
var fileCandidates = []string{Filename, "job.json", "manifest.json"}

// FileCandidates returns the manifest names probed on disk, in preference
// order.
func FileCandidates() []string {
	out := make([]string, len(fileCandidates))
	copy(out, fileCandidates)
	return out
}

const maxManifestBytes = 4 << 20

// HTTPDoer describes the HTTP client used for network manifest fetches.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Source identifies which retrieval path produced a manifest.
type Source string

const (
	SourceNetwork    Source = "network"
	SourceFilesystem Source = "filesystem"
)

// Result is a successfully loaded, schema-validated manifest.
type Result struct {
	Manifest    *contract.JobManifest
	Source      Source
	ManifestURL string
}

// UnavailableError reports that every retrieval source failed, with the
// per-source reasons in attempt order.
type UnavailableError struct {
	JobID   string
	Reasons []string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("manifest unavailable for job %s: %s", e.JobID, strings.Join(e.Reasons, "; "))
}

// Loader retrieves and validates job manifests for one engine.
type Loader struct {
	fetchBaseURL string
	publicPrefix string
	outputDir    string
	timeout      time.Duration
	client       HTTPDoer
	logger       *slog.Logger
}

// NewLoader builds a loader for the given engine. A nil client falls back to
// a plain http.Client; the timeout is enforced per request via context.
func NewLoader(cfg *config.Config, engine config.Engine, client HTTPDoer, logger *slog.Logger) *Loader {
	if client == nil {
		client = &http.Client{}
	}
	timeout := time.Duration(cfg.Manifest.FetchTimeout) * time.Second
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Loader{
		fetchBaseURL: cfg.Manifest.FetchBaseURL,
		publicPrefix: engine.PublicPrefix,
		outputDir:    cfg.Paths.OutputDir,
		timeout:      timeout,
		client:       client,
		logger:       logging.NewComponentLogger(logger, "manifest-loader"),
	}
}

// Load retrieves the manifest for a job, preferring the network source and
// falling back to the filesystem. The returned ManifestURL is the public
// asset path regardless of which source served the document.
func (l *Loader) Load(ctx context.Context, jobID, subfolder string) (*Result, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, errors.New("manifest: job id is required")
	}
	subfolder, err := cleanSubfolder(subfolder)
	if err != nil {
		return nil, err
	}

	manifestURL := joinURLPath(l.publicPrefix, subfolder, jobID, Filename)
	log := logging.WithContext(ctx, l.logger).With(logging.String(logging.FieldJobID, jobID))

	var reasons []string

	if man, reason := l.loadNetwork(ctx, manifestURL); man != nil {
		return &Result{Manifest: man, Source: SourceNetwork, ManifestURL: manifestURL}, nil
	} else {
		reasons = append(reasons, "network: "+reason)
		log.Debug("network manifest fetch missed", logging.String("reason", reason))
	}

	if man, reason := l.loadFilesystem(jobID, subfolder, log); man != nil {
		return &Result{Manifest: man, Source: SourceFilesystem, ManifestURL: manifestURL}, nil
	} else {
		reasons = append(reasons, "filesystem: "+reason)
	}

	return nil, &UnavailableError{JobID: jobID, Reasons: reasons}
}

func (l *Loader) loadNetwork(ctx context.Context, manifestURL string) (*contract.JobManifest, string) {
	if l.fetchBaseURL == "" {
		return nil, "no fetch base configured"
	}

	reqCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, l.fetchBaseURL+manifestURL, nil)
	if err != nil {
		return nil, "build request: " + err.Error()
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "fetch " + manifestURL + ": " + transportReason(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Sprintf("fetch %s: status %d", manifestURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		return nil, "read body: " + transportReason(err)
	}

	man, err := contract.AssertJobManifest(body)
	if err != nil {
		return nil, "validate: " + err.Error()
	}
	return man, ""
}

func (l *Loader) loadFilesystem(jobID, subfolder string, log *slog.Logger) (*contract.JobManifest, string) {
	if l.outputDir == "" {
		return nil, "no output directory configured"
	}

	jobDir := filepath.Join(l.outputDir, filepath.FromSlash(subfolder), jobID)
	for _, name := range fileCandidates {
		full := filepath.Join(jobDir, name)
		body, err := os.ReadFile(full)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// Absence is the normal case before an engine publishes.
				continue
			}
			log.Warn("manifest read failed", logging.String("path", full), logging.Error(err))
			return nil, "read " + name + ": " + err.Error()
		}

		man, err := contract.AssertJobManifest(body)
		if err != nil {
			return nil, "validate " + name + ": " + err.Error()
		}
		return man, ""
	}
	return nil, "no manifest in job directory"
}

// transportReason strips the request URL from a transport error so failure
// reasons can travel in client-facing envelopes without naming hosts.
func transportReason(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err.Error()
	}
	return err.Error()
}

func cleanSubfolder(subfolder string) (string, error) {
	trimmed := strings.Trim(strings.TrimSpace(subfolder), "/")
	if trimmed == "" {
		return "", nil
	}
	for _, segment := range strings.Split(trimmed, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", fmt.Errorf("manifest: invalid subfolder %q", subfolder)
		}
	}
	return trimmed, nil
}

func joinURLPath(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(part, "/")
		if part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return "/" + path.Join(cleaned...)
}
