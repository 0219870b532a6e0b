package gateway

import (
	"errors"
	"io"
	"net/http"

	"surfacegate/internal/contract"
	"surfacegate/internal/logging"
	"surfacegate/internal/manifest"
	"surfacegate/internal/state"
)

const maxSubmitBytes = 1 << 20

// handleSubmitJob forwards a submission body to the engine. The upstream
// response is validated and normalized like any other envelope; only the
// typed fields survive the relay, with the upstream status code preserved.
func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request, runtime *engineRuntime) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxSubmitBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return
	}

	status, env, err := runtime.client.SubmitJob(r.Context(), payload)
	if err != nil {
		s.writeContractError(w, err, "", runtime)
		return
	}

	normalizeEnvelope(env)
	s.writeJSON(w, status, env)
}

// handleJobStatus proxies a status poll. The upstream envelope is validated,
// its state normalized to the canonical vocabulary, and missing progress
// filled with the per-state placeholder before the client sees it.
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request, runtime *engineRuntime, jobID string) {
	ctx := logging.WithJobID(logging.WithEngine(r.Context(), runtime.cfg.Name), jobID)

	env, err := runtime.client.FetchJobStatus(ctx, jobID)
	if err != nil {
		s.writeContractError(w, err, jobID, runtime)
		return
	}

	normalizeEnvelope(env)
	s.writeJSON(w, http.StatusOK, env)
}

// normalizeEnvelope rewrites the upstream state into the canonical
// vocabulary and fills a missing progress with the per-state placeholder.
func normalizeEnvelope(env *contract.JobStatusEnvelope) {
	canonical := state.Normalize(env.Status)
	env.Status = string(canonical)
	if env.Progress == nil {
		placeholder := float64(state.Progress(canonical))
		env.Progress = &placeholder
	}
}

// handleJobAssets retrieves the job's manifest and responds with every
// resolved artifact URL.
func (s *Server) handleJobAssets(w http.ResponseWriter, r *http.Request, runtime *engineRuntime, jobID string) {
	ctx := logging.WithJobID(logging.WithEngine(r.Context(), runtime.cfg.Name), jobID)
	subfolder := r.URL.Query().Get("subfolder")

	loaded, err := runtime.loader.Load(ctx, jobID, subfolder)
	if err != nil {
		var unavailable *manifest.UnavailableError
		if errors.As(err, &unavailable) {
			s.writeError(w, http.StatusNotFound, unavailable.Error())
			return
		}
		s.writeContractError(w, err, jobID, runtime)
		return
	}

	derived, err := runtime.resolver.Derive(loaded.Manifest, jobID, subfolder)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, JobAssetsResponse{
		JobID:          derived.JobID,
		Subfolder:      derived.Subfolder,
		BasePath:       derived.BasePath,
		PublicRoot:     derived.PublicRoot,
		ManifestSource: string(loaded.Source),
		Assets:         assetViews(derived),
	})
}

// writeContractError maps a contract violation to a 502 failure envelope,
// and anything else to a 500.
func (s *Server) writeContractError(w http.ResponseWriter, err error, jobID string, runtime *engineRuntime) {
	if ce, ok := contract.AsError(err); ok {
		if ce.JobID != "" {
			jobID = ce.JobID
		}
		s.logger.Warn("upstream contract violation",
			logging.String(logging.FieldEngine, runtime.cfg.Name),
			logging.String(logging.FieldJobID, jobID),
			logging.String("code", ce.Code),
		)
		s.writeJSON(w, http.StatusBadGateway, contract.BuildErrorEnvelope(jobID, runtime.cfg.Service, ce.Code, ce.Detail))
		return
	}
	s.writeError(w, http.StatusInternalServerError, err.Error())
}
