package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"surfacegate/internal/assets"
	"surfacegate/internal/config"
	"surfacegate/internal/contract"
	"surfacegate/internal/logging"
	"surfacegate/internal/manifest"
	"surfacegate/internal/state"
)

// StatusFetcher retrieves one validated status envelope for a job.
type StatusFetcher interface {
	FetchJobStatus(ctx context.Context, jobID string) (*contract.JobStatusEnvelope, error)
}

// ManifestLoader retrieves the manifest of a finished job.
type ManifestLoader interface {
	Load(ctx context.Context, jobID, subfolder string) (*manifest.Result, error)
}

// HTTPDoer abstracts the HTTP client used for artifact probes.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Snapshot is one observed poll, delivered to the OnPoll callback.
type Snapshot struct {
	JobID    string
	Poll     int
	State    state.Canonical
	Progress float64
	Message  string
}

// Outcome is the final result of a polling run.
type Outcome struct {
	JobID         string
	State         state.Canonical
	Progress      float64
	Polls         int
	Elapsed       time.Duration
	TimedOut      bool
	FailureDetail string
	Envelope      *contract.JobStatusEnvelope
	Assets        *assets.Derived
}

// Succeeded reports whether the job completed and every artifact verified.
func (o *Outcome) Succeeded() bool {
	return !o.TimedOut && o.State == state.Complete
}

// Options configures a Poller.
type Options struct {
	// Interval between polls. Defaults to 2 seconds.
	Interval time.Duration
	// Budget is the total time allowed before giving up. Defaults to 5
	// minutes.
	Budget time.Duration
	// AssetBaseURL is prepended to relative artifact URLs for verification.
	AssetBaseURL string
	// OnPoll, when set, receives a snapshot after every poll.
	OnPoll func(Snapshot)
}

// Poller drives the submit-poll-verify loop for one engine.
type Poller struct {
	fetcher  StatusFetcher
	loader   ManifestLoader
	resolver *assets.Resolver
	client   HTTPDoer
	opts     Options
	logger   *slog.Logger
}

// New builds a poller. A nil client falls back to a plain http.Client.
func New(fetcher StatusFetcher, loader ManifestLoader, resolver *assets.Resolver, client HTTPDoer, opts Options, logger *slog.Logger) *Poller {
	if client == nil {
		client = &http.Client{}
	}
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.Budget <= 0 {
		opts.Budget = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Poller{
		fetcher:  fetcher,
		loader:   loader,
		resolver: resolver,
		client:   client,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "poller"),
	}
}

// OptionsFromConfig derives poller options from configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Interval:     time.Duration(cfg.Poller.Interval) * time.Second,
		Budget:       time.Duration(cfg.Poller.Budget) * time.Second,
		AssetBaseURL: cfg.Poller.AssetBaseURL,
	}
}

// Run polls jobID until it reaches a terminal state or the budget runs out.
// The first poll happens immediately. Run only returns an error for caller
// mistakes or context cancellation; job failures and timeouts are reported
// through the Outcome.
func (p *Poller) Run(ctx context.Context, jobID, subfolder string) (*Outcome, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, errors.New("poller: job id is required")
	}
	ctx = logging.WithJobID(ctx, jobID)

	start := time.Now()
	deadline := start.Add(p.opts.Budget)
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	outcome := &Outcome{JobID: jobID, State: state.Unknown}

	for {
		outcome.Polls++
		env, err := p.fetcher.FetchJobStatus(ctx, jobID)
		switch {
		case err == nil:
			canonical := state.Normalize(env.Status)
			outcome.Envelope = env
			outcome.State = canonical
			outcome.Progress = effectiveProgress(env, canonical)

			if p.opts.OnPoll != nil {
				p.opts.OnPoll(Snapshot{
					JobID:    jobID,
					Poll:     outcome.Polls,
					State:    canonical,
					Progress: outcome.Progress,
					Message:  env.Message,
				})
			}

			if canonical == state.Failed {
				outcome.Elapsed = time.Since(start)
				outcome.FailureDetail = failureDetail(env)
				return outcome, nil
			}
			if canonical == state.Complete {
				outcome.Elapsed = time.Since(start)
				p.verifyCompletion(ctx, outcome, subfolder)
				return outcome, nil
			}
		case isTransient(err):
			// The engine being briefly unreachable is not a job failure;
			// keep polling until the budget decides.
			p.logger.Debug("transient poll failure", logging.Error(err))
		default:
			outcome.Elapsed = time.Since(start)
			outcome.State = state.Failed
			outcome.FailureDetail = err.Error()
			return outcome, nil
		}

		if time.Now().After(deadline) {
			outcome.Elapsed = time.Since(start)
			outcome.TimedOut = true
			return outcome, nil
		}
		select {
		case <-ctx.Done():
			outcome.Elapsed = time.Since(start)
			return outcome, ctx.Err()
		case <-ticker.C:
		}
		if time.Now().After(deadline) {
			outcome.Elapsed = time.Since(start)
			outcome.TimedOut = true
			return outcome, nil
		}
	}
}

// verifyCompletion loads the manifest and probes every resolved artifact.
// Failures downgrade the outcome to failed, naming the artifact.
func (p *Poller) verifyCompletion(ctx context.Context, outcome *Outcome, subfolder string) {
	loaded, err := p.loader.Load(ctx, outcome.JobID, subfolder)
	if err != nil {
		outcome.State = state.Failed
		outcome.FailureDetail = "manifest unavailable after completion: " + err.Error()
		return
	}

	derived, err := p.resolver.Derive(loaded.Manifest, outcome.JobID, subfolder)
	if err != nil {
		outcome.State = state.Failed
		outcome.FailureDetail = err.Error()
		return
	}
	outcome.Assets = derived

	if _, ok := derived.Get(assets.KindHero); !ok {
		outcome.State = state.Failed
		outcome.FailureDetail = "required artifact hero_image missing from manifest"
		return
	}

	if failed := p.probeArtifacts(ctx, derived); failed != "" {
		p.logger.Warn("artifact verification failed",
			logging.String(logging.FieldJobID, outcome.JobID),
			logging.String("artifact", failed),
		)
		outcome.State = state.Failed
		outcome.FailureDetail = fmt.Sprintf("artifact %s is not reachable", failed)
	}
}

func effectiveProgress(env *contract.JobStatusEnvelope, canonical state.Canonical) float64 {
	if env.Progress != nil {
		value := *env.Progress
		if !math.IsNaN(value) && !math.IsInf(value, 0) {
			return value
		}
	}
	return float64(state.Progress(canonical))
}

func failureDetail(env *contract.JobStatusEnvelope) string {
	if env.Error != nil && env.Error.Detail != "" {
		return env.Error.Detail
	}
	if env.Message != "" {
		return env.Message
	}
	return "job reported failure"
}

// isTransient reports whether a poll error is worth retrying. Upstream
// transport failures are; contract violations in a response the engine did
// produce are not.
func isTransient(err error) bool {
	if ce, ok := contract.AsError(err); ok {
		return ce.Code == contract.CodeUpstreamError
	}
	return false
}
