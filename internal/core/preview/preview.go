// Package preview captures site screenshots with headless Chrome and stores
// them for later serving.
package preview

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultTimeout = 15 * time.Second

// Capturer takes full-viewport screenshots of URLs.
type Capturer struct {
	// ChromePath overrides the Chrome binary location when set.
	ChromePath string
	Timeout    time.Duration
}

// Capture navigates to the URL in headless Chrome and returns PNG bytes.
func (c *Capturer) Capture(ctx context.Context, rawURL string) ([]byte, error) {
	timeout := defaultTimeout
	if c != nil && c.Timeout > 0 {
		timeout = c.Timeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.WindowSize(1280, 800),
	)
	if c != nil && strings.TrimSpace(c.ChromePath) != "" {
		opts = append(opts, chromedp.ExecPath(c.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	runCtx, runCancel := context.WithTimeout(browserCtx, timeout)
	defer runCancel()

	var buf []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return nil, err
	}

	return buf, nil
}
