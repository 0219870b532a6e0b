package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"surfacegate/internal/config"
	"surfacegate/internal/contract"
)

// maxUpstreamBytes bounds how much of an engine response is read.
const maxUpstreamBytes = 4 << 20

// HTTPDoer abstracts the HTTP client for tests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to one upstream rendering engine.
type Client struct {
	engine  config.Engine
	timeout time.Duration
	client  HTTPDoer
}

// NewClient builds an upstream client for an engine. A nil doer falls back
// to a plain http.Client; the per-request timeout comes from the engine
// configuration.
func NewClient(engine config.Engine, doer HTTPDoer) *Client {
	if doer == nil {
		doer = &http.Client{}
	}
	timeout := time.Duration(engine.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{engine: engine, timeout: timeout, client: doer}
}

// FetchJobStatus retrieves and validates a job's status envelope. Any
// contract violation in the upstream response surfaces as a *contract.Error.
func (c *Client) FetchJobStatus(ctx context.Context, jobID string) (*contract.JobStatusEnvelope, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, annotate(err, jobID)
	}
	if status < 200 || status >= 300 {
		return nil, contract.NewJobError(contract.CodeUpstreamError,
			fmt.Sprintf("engine returned status %d", status), jobID)
	}
	if !json.Valid(body) {
		return nil, contract.NewJobError(contract.CodeUpstreamNonJSON,
			"engine response is not valid JSON", jobID)
	}
	return contract.AssertJobStatusEnvelope(body, contract.EnvelopeOptions{RequirePublicOnComplete: true})
}

// SubmitJob forwards a job submission body to the engine. The upstream
// response must satisfy the status-envelope contract before anyone sees it;
// the upstream status code is preserved for the relay.
func (c *Client) SubmitJob(ctx context.Context, payload []byte) (int, *contract.JobStatusEnvelope, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/jobs", payload)
	if err != nil {
		return 0, nil, err
	}
	if status < 200 || status >= 300 {
		return 0, nil, contract.NewError(contract.CodeUpstreamError,
			fmt.Sprintf("engine returned status %d", status))
	}
	if !json.Valid(body) {
		return 0, nil, contract.NewError(contract.CodeUpstreamNonJSON, "engine response is not valid JSON")
	}
	env, err := contract.AssertJobStatusEnvelope(body, contract.EnvelopeOptions{RequirePublicOnComplete: true})
	if err != nil {
		return 0, nil, err
	}
	return status, env, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, strings.TrimRight(c.engine.BaseURL, "/")+path, body)
	if err != nil {
		return 0, nil, contract.NewError(contract.CodeUpstreamError, "build request: "+err.Error())
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.applyAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, contract.NewError(contract.CodeUpstreamError, transportReason(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBytes))
	if err != nil {
		return 0, nil, contract.NewError(contract.CodeUpstreamError, "read response: "+err.Error())
	}
	return resp.StatusCode, data, nil
}

// applyAuth attaches the engine's credential passthrough, if configured.
// basic_auth is a "user:password" pair; api_key becomes an X-API-Key header.
func (c *Client) applyAuth(req *http.Request) {
	if c.engine.BasicAuth != "" {
		user, pass, _ := strings.Cut(c.engine.BasicAuth, ":")
		req.SetBasicAuth(user, pass)
	}
	if c.engine.APIKey != "" {
		req.Header.Set("X-API-Key", c.engine.APIKey)
	}
}

// transportReason reduces a transport failure to text safe for clients.
// url.Error values embed the full upstream URL, which must not leak.
func transportReason(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "engine request timed out"
		}
		return "engine unreachable"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "engine request timed out"
	}
	return "engine unreachable"
}

func annotate(err error, jobID string) error {
	if ce, ok := contract.AsError(err); ok && ce.JobID == "" {
		return contract.NewJobError(ce.Code, ce.Detail, jobID)
	}
	return err
}
