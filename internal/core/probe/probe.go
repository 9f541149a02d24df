// Package probe performs lightweight liveness checks against target sites.
package probe

import (
	"context"
	"net/http"
	"time"
)

const defaultTimeout = 5 * time.Second

// Result describes how a site responded to a HEAD request.
type Result struct {
	Reachable  bool
	StatusCode int
	// Err is set when the request never produced a response.
	Err error
}

// Prober checks whether a URL answers HTTP requests.
type Prober struct {
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Head issues a HEAD request and reports reachability. A site is reachable
// when it answers with any status below 400. Transport failures and
// timeouts are reported through Result.Err, not as a hard error, so the
// caller can degrade instead of aborting.
func (p *Prober) Head(ctx context.Context, rawURL string) Result {
	timeout := defaultTimeout
	if p != nil && p.Timeout > 0 {
		timeout = p.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return Result{Err: err}
	}

	client := http.DefaultClient
	if p != nil && p.HTTPClient != nil {
		client = p.HTTPClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{Err: err}
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP body

	return Result{
		Reachable:  resp.StatusCode < 400,
		StatusCode: resp.StatusCode,
	}
}
