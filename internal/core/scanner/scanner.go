// Package scanner submits URLs to the Cloudflare URL Scanner and polls for
// a reputation verdict.
package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prolifel/ceker/internal/core"
)

// ErrNotConfigured is returned when account credentials are missing.
var ErrNotConfigured = errors.New("url scanner credentials not configured")

// ErrScanTimeout is returned when a scan does not reach a terminal status
// within the allowed wait. Callers must treat it as scanner-unavailable,
// never as a threat verdict.
var ErrScanTimeout = errors.New("url scanner scan timed out")

const (
	defaultBaseURL      = "https://api.cloudflare.com/client/v4"
	defaultPollInterval = 2 * time.Second
	defaultMaxWait      = 60 * time.Second
)

// Client talks to the URL Scanner v2 API.
type Client struct {
	AccountID    string
	APIToken     string
	BaseURL      string
	HTTPClient   *http.Client
	PollInterval time.Duration
}

// ScanResult is the subset of the scan report the pipeline consumes.
type ScanResult struct {
	Verdict core.ScanVerdict
	// RadarRank is the domain popularity rank when the scan is clean.
	RadarRank *int
	Details   string
}

type submitResponse struct {
	UUID    string `json:"uuid"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

// ScanReport is the raw scan result document returned by the API.
type ScanReport struct {
	Task struct {
		UUID    string `json:"uuid"`
		Success bool   `json:"success"`
		Status  string `json:"status"`
	} `json:"task"`
	Verdicts struct {
		Overall struct {
			Malicious bool `json:"malicious"`
		} `json:"overall"`
	} `json:"verdicts"`
	Meta struct {
		Processors struct {
			Phishing struct {
				Detected bool `json:"detected"`
			} `json:"phishing"`
			RadarRank *int `json:"radarRank"`
		} `json:"processors"`
	} `json:"meta"`
}

// Submit enqueues an unlisted scan for the URL and returns the scan id.
func (c *Client) Submit(ctx context.Context, rawURL string) (string, error) {
	if c == nil || strings.TrimSpace(c.AccountID) == "" || strings.TrimSpace(c.APIToken) == "" {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(map[string]string{
		"url":        rawURL,
		"visibility": "Unlisted",
	})
	if err != nil {
		return "", fmt.Errorf("encode scan submission: %w", err)
	}

	endpoint := fmt.Sprintf("%s/accounts/%s/urlscanner/v2/scan", c.baseURL(), c.AccountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build scan submission: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("submit scan: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("scan submission failed: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var submitted submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		return "", fmt.Errorf("decode scan submission: %w", err)
	}
	if strings.TrimSpace(submitted.UUID) == "" {
		return "", errors.New("scan submission returned no id")
	}

	return submitted.UUID, nil
}

// Result fetches the scan report for a scan id. It returns (nil, nil) while
// the scan is still pending or unknown to the API.
func (c *Client) Result(ctx context.Context, scanID string) (*ScanReport, error) {
	endpoint := fmt.Sprintf("%s/accounts/%s/urlscanner/v2/result/%s", c.baseURL(), c.AccountID, scanID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build scan result request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIToken)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch scan result: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP body

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("scan result failed: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result ScanReport
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode scan result: %w", err)
	}

	return &result, nil
}

// ScanAndWait submits a scan and polls until it finishes or maxWait
// elapses. Exceeding maxWait surfaces as ErrScanTimeout.
func (c *Client) ScanAndWait(ctx context.Context, rawURL string, maxWait time.Duration) (*ScanResult, error) {
	if maxWait <= 0 {
		maxWait = defaultMaxWait
	}

	scanID, err := c.Submit(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	interval := c.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	pollCtx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report, err := c.Result(pollCtx, scanID)
		if err != nil {
			// The poll deadline expiring mid-request is a timeout, not a
			// transport failure.
			if pollCtx.Err() != nil && ctx.Err() == nil {
				return nil, ErrScanTimeout
			}
			return nil, err
		}
		if report != nil && report.Task.Status == "finished" {
			return interpret(report), nil
		}

		select {
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, ErrScanTimeout
		case <-ticker.C:
		}
	}
}

func interpret(result *ScanReport) *ScanResult {
	if result.Verdicts.Overall.Malicious {
		return &ScanResult{
			Verdict: core.VerdictMalicious,
			Details: "Detected as malicious by URL Scanner",
		}
	}
	if result.Meta.Processors.Phishing.Detected {
		return &ScanResult{
			Verdict: core.VerdictPhishing,
			Details: "Phishing detected by URL Scanner",
		}
	}

	rank := result.Meta.Processors.RadarRank
	details := "No threats detected"
	if rank != nil {
		details = fmt.Sprintf("No threats detected. Rank: %d", *rank)
	}
	return &ScanResult{Verdict: core.VerdictSafe, RadarRank: rank, Details: details}
}

func (c *Client) baseURL() string {
	if c != nil && strings.TrimSpace(c.BaseURL) != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return defaultBaseURL
}

func (c *Client) httpClient() *http.Client {
	if c != nil && c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
