package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prolifel/ceker/internal/core/store"
)

// ListDomains returns the allow-list, or a single entry when ?q= is set.
func (a *API) ListDomains(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query().Get("q"); q != "" {
		record, err := a.Store.GetDomain(r.Context(), q)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if record == nil {
			respondJSON(w, http.StatusOK, []store.DomainRecord{})
			return
		}
		respondJSON(w, http.StatusOK, []store.DomainRecord{*record})
		return
	}

	records, err := a.Store.ListDomains(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// CreateDomain adds one allow-list entry.
func (a *API) CreateDomain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Domain string `json:"domain"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Domain == "" {
		respondError(w, http.StatusBadRequest, "domain is required")
		return
	}

	record, err := a.Store.CreateDomain(r.Context(), req.Domain)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEntry) {
			respondJSON(w, http.StatusConflict, map[string]string{"message": "Domain already exist!"})
			return
		}
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, record)
}

// ListBlacklists returns the deny-list.
func (a *API) ListBlacklists(w http.ResponseWriter, r *http.Request) {
	records, err := a.Store.ListBlacklists(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// CreateBlacklists bulk-imports deny-list domains, reporting inserted and
// duplicate counts.
func (a *API) CreateBlacklists(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Domains []string `json:"domains"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Domains == nil {
		respondError(w, http.StatusBadRequest, "domains array is required")
		return
	}

	result, err := a.Store.BulkInsertBlacklists(r.Context(), req.Domains)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ListTLDs returns the TLD registry, or a single entry when ?q= is set.
func (a *API) ListTLDs(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query().Get("q"); q != "" {
		record, err := a.Store.GetTLD(r.Context(), q)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if record == nil {
			respondJSON(w, http.StatusNotFound, map[string]any{"message": "tld not found", "data": nil})
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"message": "success", "data": record})
		return
	}

	records, err := a.Store.ListTLDs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "success", "data": records})
}

// CreateTLDs bulk-imports TLD registry entries.
func (a *API) CreateTLDs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TLDs []string `json:"tlds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.TLDs) == 0 {
		respondError(w, http.StatusBadRequest, "tlds array is required")
		return
	}

	result, err := a.Store.BulkInsertTLDs(r.Context(), req.TLDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	status := http.StatusCreated
	if result.Duplicates > 0 {
		// Multi-Status: some rows were already present.
		status = http.StatusMultiStatus
	}
	respondJSON(w, status, map[string]any{"message": "success", "data": result})
}
