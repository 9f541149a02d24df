// Package notify delivers fire-and-forget check notifications to a Teams
// webhook. Delivery failures are logged and never propagated.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/prolifel/ceker/internal/core"
)

// TeamsNotifier posts adaptive cards to an incoming webhook.
type TeamsNotifier struct {
	WebhookURL string
	// BaseURL prefixes preview paths so the card image resolves publicly.
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Send posts a card summarizing the outcome. A missing webhook URL or a
// failed delivery is a no-op beyond a log line.
func (n *TeamsNotifier) Send(ctx context.Context, outcome *core.CheckOutcome, url string) {
	if n == nil || strings.TrimSpace(n.WebhookURL) == "" || outcome == nil {
		return
	}
	log := n.logger()

	payload, err := json.Marshal(n.card(outcome, url))
	if err != nil {
		log.Error("encode teams card failed", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		log.Error("build teams request failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	client := n.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Error("teams notification failed", zap.Error(err))
		return
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("teams webhook returned error", zap.Int("status", resp.StatusCode))
	}
}

func (n *TeamsNotifier) card(outcome *core.CheckOutcome, url string) map[string]any {
	statusColor := "Warning"
	switch outcome.Risk {
	case core.RiskLegitimate:
		statusColor = "Good"
	case core.RiskWarning:
		statusColor = "Attention"
	}

	body := []map[string]any{
		{"type": "TextBlock", "text": "Website Check Complete", "weight": "Bolder", "size": "Large"},
		{"type": "TextBlock", "text": "URL: " + url, "wrap": true},
		{"type": "TextBlock", "text": "Status: " + string(outcome.Risk), "color": statusColor, "weight": "Bolder", "size": "Medium"},
		{"type": "TextBlock", "text": "Verdict: " + outcome.Message, "wrap": true},
	}
	if outcome.PreviewPath != "" {
		body = append(body, map[string]any{
			"type": "Image",
			"url":  strings.TrimSuffix(n.BaseURL, "/") + outcome.PreviewPath,
			"size": "Large",
		})
	}
	body = append(body,
		map[string]any{"type": "TextBlock", "text": "Details:", "weight": "Bolder", "size": "Medium"},
		map[string]any{"type": "TextBlock", "text": strings.Join(outcome.Details, "\n\n"), "wrap": true},
	)

	return map[string]any{
		"type": "message",
		"attachments": []map[string]any{
			{
				"contentType": "application/vnd.microsoft.card.adaptive",
				"contentUrl":  nil,
				"content": map[string]any{
					"$schema": "http://adaptivecards.io/schemas/adaptive-card.json",
					"type":    "AdaptiveCard",
					"version": "1.4",
					"body":    body,
				},
			},
		},
	}
}

func (n *TeamsNotifier) logger() *zap.Logger {
	if n != nil && n.Logger != nil {
		return n.Logger
	}
	return zap.NewNop()
}
