package gateway

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"surfacegate/internal/contract"
	"surfacegate/internal/logging"
	"surfacegate/internal/manifest"
	"surfacegate/internal/state"
)

// LatestCandidate identifies the most recently published job manifest.
type LatestCandidate struct {
	JobID     string
	Subfolder string
	Path      string
	ModTime   time.Time
}

// handleLatest reports the most recently published jobs for an engine by
// scanning the shared output directory for manifest files. Without a limit
// parameter the single newest job is returned; limit > 1 returns a list.
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request, runtime *engineRuntime) {
	limit := 1
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	candidates := FindRecentManifests(s.outputDir, limit)
	if len(candidates) == 0 {
		s.writeError(w, http.StatusNotFound, "no published jobs found")
		return
	}

	views := make([]LatestJobResponse, 0, len(candidates))
	for _, candidate := range candidates {
		view, err := s.latestJobView(runtime, candidate)
		if err != nil {
			s.writeContractError(w, err, candidate.JobID, runtime)
			return
		}
		views = append(views, view)
	}

	s.logger.Debug("latest jobs resolved",
		logging.String(logging.FieldEngine, runtime.cfg.Name),
		logging.Int("count", len(views)),
	)
	if limit == 1 {
		s.writeJSON(w, http.StatusOK, views[0])
		return
	}
	s.writeJSON(w, http.StatusOK, LatestJobsResponse{Jobs: views})
}

func (s *Server) latestJobView(runtime *engineRuntime, candidate LatestCandidate) (LatestJobResponse, error) {
	body, err := os.ReadFile(candidate.Path)
	if err != nil {
		return LatestJobResponse{}, contract.NewError(contract.CodeUpstreamError, "read manifest: "+err.Error())
	}
	man, err := contract.AssertJobManifest(body)
	if err != nil {
		return LatestJobResponse{}, err
	}
	derived, err := runtime.resolver.Derive(man, candidate.JobID, candidate.Subfolder)
	if err != nil {
		return LatestJobResponse{}, err
	}
	return LatestJobResponse{
		JobID:       candidate.JobID,
		Subfolder:   candidate.Subfolder,
		Status:      string(state.Normalize(man.Status)),
		UpdatedAt:   man.UpdatedAt,
		ManifestURL: derived.BasePath + "/" + manifest.Filename,
	}, nil
}

// FindLatestManifest finds the manifest with the latest modification time.
func FindLatestManifest(outputDir string) (LatestCandidate, bool) {
	recent := FindRecentManifests(outputDir, 1)
	if len(recent) == 0 {
		return LatestCandidate{}, false
	}
	return recent[0], true
}

// FindRecentManifests lists up to limit job manifests ordered newest first.
// Jobs publish either directly under the output directory or one subfolder
// deep; deeper nesting is not scanned.
func FindRecentManifests(outputDir string, limit int) []LatestCandidate {
	if outputDir == "" || limit < 1 {
		return nil
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil
	}
	var found []LatestCandidate
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(outputDir, entry.Name())
		if candidate, ok := manifestIn(dir, entry.Name(), ""); ok {
			found = append(found, candidate)
			continue
		}
		// Not a job directory itself; treat it as a subfolder of jobs.
		subEntries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, sub := range subEntries {
			if !sub.IsDir() {
				continue
			}
			if candidate, ok := manifestIn(filepath.Join(dir, sub.Name()), sub.Name(), entry.Name()); ok {
				found = append(found, candidate)
			}
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ModTime.After(found[j].ModTime) })
	if len(found) > limit {
		found = found[:limit]
	}
	return found
}

func manifestIn(dir, jobID, subfolder string) (LatestCandidate, bool) {
	for _, name := range manifest.FileCandidates() {
		full := filepath.Join(dir, name)
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			continue
		}
		return LatestCandidate{
			JobID:     jobID,
			Subfolder: subfolder,
			Path:      full,
			ModTime:   info.ModTime(),
		}, true
	}
	return LatestCandidate{}, false
}
