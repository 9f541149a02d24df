package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/prolifel/ceker/internal/core"
	"github.com/prolifel/ceker/internal/core/store"
	"github.com/prolifel/ceker/internal/server/middleware"
)

type checkRequest struct {
	URL               string `json:"url"`
	BypassDomainCheck bool   `json:"bypassDomainCheck"`
}

// CheckWebsite streams a classification run as server-sent events:
// progress frames, an optional confirmation prompt, then the final result.
func (a *API) CheckWebsite(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		respondError(w, http.StatusBadRequest, "URL is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeEvent := func(payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	outcome, err := a.Engine.Classify(r.Context(), req.URL, req.BypassDomainCheck, func(percent int, message string) {
		writeEvent(map[string]any{"percent": percent, "message": message})
	})
	if err != nil {
		a.logger().Error("classification failed",
			zap.String("url", req.URL),
			zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(r.Context())))
		writeEvent(map[string]any{"error": "Scan failed", "message": err.Error()})
		a.audit(r, req, nil, err)
		return
	}

	if outcome.Status == core.OutcomeNotInDatabase {
		writeEvent(map[string]any{
			"percent": 15,
			"prompt": map[string]string{
				"message":  "Domain not found in our database.",
				"detail":   "This domain is not in our legitimate list. We will perform additional checks, but results may not be accurate. Continue?",
				"hostname": outcome.Hostname,
			},
		})
		a.audit(r, req, outcome, nil)
		return
	}

	writeEvent(map[string]any{"percent": 100, "result": outcome})

	a.finalize(r, req, outcome)
}

// CheckWebsiteSync runs the pipeline without streaming, authenticated by
// the bot API key. The confirmation gate is skipped: a bot cannot answer
// a prompt.
func (a *API) CheckWebsiteSync(w http.ResponseWriter, r *http.Request) {
	if a.BotAPIKey == "" || r.Header.Get("X-API-Key") != a.BotAPIKey {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		respondError(w, http.StatusBadRequest, "URL is required")
		return
	}
	req.BypassDomainCheck = true

	outcome, err := a.Engine.Classify(r.Context(), req.URL, true, nil)
	if err != nil {
		a.logger().Error("classification failed", zap.String("url", req.URL), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Scan failed")
		a.audit(r, req, nil, err)
		return
	}

	respondJSON(w, http.StatusOK, outcome)
	a.finalize(r, req, outcome)
}

// finalize fans out the audit record and the chat notification after the
// response is on the wire.
func (a *API) finalize(r *http.Request, req checkRequest, outcome *core.CheckOutcome) {
	a.audit(r, req, outcome, nil)

	if a.Notifier != nil && outcome.Status == core.OutcomeClassified {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			a.Notifier.Send(ctx, outcome, req.URL)
		}()
	}
}

func (a *API) audit(r *http.Request, req checkRequest, outcome *core.CheckOutcome, runErr error) {
	if a.Store == nil {
		return
	}

	entry := store.RequestLog{
		URL:         req.URL,
		IPAddress:   r.RemoteAddr,
		UserAgent:   r.UserAgent(),
		BypassCheck: req.BypassDomainCheck,
	}

	switch {
	case runErr != nil:
		entry.ScanStatus = store.ScanStatusError
		entry.Message = runErr.Error()
	case outcome.Status == core.OutcomeNotInDatabase:
		entry.ScanStatus = store.ScanStatusNotInDB
		entry.Hostname = outcome.Hostname
	case outcome.Status == core.OutcomeRejected:
		entry.ScanStatus = store.ScanStatusError
		entry.Message = outcome.Reason
	default:
		entry.ScanStatus = store.ScanStatusSuccess
		entry.Hostname = outcome.Hostname
		entry.RiskLevel = outcome.Risk
		entry.Message = outcome.Message
		entry.Details = outcome.Details
		entry.ScreenshotPath = outcome.PreviewPath
		entry.ScannerVerdict = outcome.Signals.ScannerVerdict
		entry.DomainAgeDays = outcome.Signals.DomainAgeDays
		entry.DomainExpires = outcome.Signals.DomainExpires
		entry.Registrar = outcome.Signals.Registrar

		middleware.ObserveCheck(string(outcome.Risk))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := a.Store.CreateRequestLog(ctx, entry); err != nil {
		a.logger().Warn("request log write failed", zap.Error(err))
	}
}
