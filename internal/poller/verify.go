package poller

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"surfacegate/internal/assets"
)

const probeTimeout = 10 * time.Second

// probeArtifacts checks every derived artifact concurrently and returns the
// kind of the first one that failed, or "".
func (p *Poller) probeArtifacts(ctx context.Context, derived *assets.Derived) string {
	group, groupCtx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	failed := ""

	for _, artifact := range derived.Artifacts {
		artifact := artifact
		group.Go(func() error {
			if p.probe(groupCtx, artifact.URL) {
				return nil
			}
			mu.Lock()
			if failed == "" {
				failed = string(artifact.Kind)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	return failed
}

// probe verifies an artifact URL serves non-empty content. HEAD is tried
// first; servers that reject HEAD or omit Content-Length get a one-byte
// ranged GET instead.
func (p *Poller) probe(ctx context.Context, rawURL string) bool {
	target := p.absoluteURL(rawURL)
	if target == "" {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err == nil {
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode >= 200 && resp.StatusCode < 300 && resp.ContentLength > 0 {
			return true
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 && resp.ContentLength < 0 {
			// 2xx but length unknown; fall through to the ranged GET.
		} else if resp.StatusCode != http.StatusMethodNotAllowed {
			return false
		}
	}

	return p.probeRanged(probeCtx, target)
}

func (p *Poller) probeRanged(ctx context.Context, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Range", "bytes=0-0")

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return false
	}
	buf := make([]byte, 1)
	n, _ := io.ReadFull(resp.Body, buf)
	_, _ = io.Copy(io.Discard, resp.Body)
	return n > 0
}

// absoluteURL makes a relative artifact path probeable by joining it to the
// configured asset base URL. Relative paths without a base cannot be probed.
func (p *Poller) absoluteURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	lower := strings.ToLower(rawURL)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return rawURL
	}
	base := strings.TrimRight(p.opts.AssetBaseURL, "/")
	if base == "" {
		return ""
	}
	return base + "/" + strings.TrimLeft(rawURL, "/")
}
