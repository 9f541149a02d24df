// Package handlers implements the HTTP API for website checks and the
// curated list administration endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/prolifel/ceker/internal/core"
	"github.com/prolifel/ceker/internal/core/preview"
	"github.com/prolifel/ceker/internal/core/store"
	"github.com/prolifel/ceker/internal/notify"
)

// Classifier runs the website-risk pipeline for one URL.
type Classifier interface {
	Classify(ctx context.Context, rawURL string, bypass bool, progress core.ProgressFunc) (*core.CheckOutcome, error)
}

// ListStore covers the curated-list and audit-log persistence the API
// exposes.
type ListStore interface {
	GetDomain(ctx context.Context, domain string) (*store.DomainRecord, error)
	ListDomains(ctx context.Context) ([]store.DomainRecord, error)
	CreateDomain(ctx context.Context, domain string) (*store.DomainRecord, error)
	ListBlacklists(ctx context.Context) ([]store.DomainRecord, error)
	BulkInsertBlacklists(ctx context.Context, domains []string) (store.BulkInsertResult, error)
	GetTLD(ctx context.Context, tld string) (*store.TLDRecord, error)
	ListTLDs(ctx context.Context) ([]store.TLDRecord, error)
	BulkInsertTLDs(ctx context.Context, tlds []string) (store.BulkInsertResult, error)
	CreateRequestLog(ctx context.Context, entry store.RequestLog) (int64, error)
}

// API wires the pipeline and its collaborators into HTTP handlers.
type API struct {
	Engine    Classifier
	Store     ListStore
	Notifier  *notify.TeamsNotifier
	Previews  *preview.Storage
	Logger    *zap.Logger
	BotAPIKey string
	Version   string
}

func (a *API) logger() *zap.Logger {
	if a != nil && a.Logger != nil {
		return a.Logger
	}
	return zap.NewNop()
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
