package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prolifel/ceker/internal/core"
	"github.com/prolifel/ceker/internal/core/store"
)

type stubClassifier struct {
	outcome  *core.CheckOutcome
	err      error
	lastURL  string
	bypassed bool
}

func (s *stubClassifier) Classify(_ context.Context, rawURL string, bypass bool, progress core.ProgressFunc) (*core.CheckOutcome, error) {
	s.lastURL = rawURL
	s.bypassed = bypass
	if progress != nil {
		progress(5, "URL validated")
		progress(100, "Complete")
	}
	return s.outcome, s.err
}

type stubStore struct {
	domains   []store.DomainRecord
	tlds      []store.TLDRecord
	logs      []store.RequestLog
	createErr error
}

func (s *stubStore) GetDomain(_ context.Context, domain string) (*store.DomainRecord, error) {
	for _, record := range s.domains {
		if record.Domain == domain {
			return &record, nil
		}
	}
	return nil, nil
}

func (s *stubStore) ListDomains(_ context.Context) ([]store.DomainRecord, error) {
	return s.domains, nil
}

func (s *stubStore) CreateDomain(_ context.Context, domain string) (*store.DomainRecord, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	record := store.DomainRecord{ID: int64(len(s.domains) + 1), Domain: domain}
	s.domains = append(s.domains, record)
	return &record, nil
}

func (s *stubStore) ListBlacklists(_ context.Context) ([]store.DomainRecord, error) {
	return nil, nil
}

func (s *stubStore) BulkInsertBlacklists(_ context.Context, domains []string) (store.BulkInsertResult, error) {
	return store.BulkInsertResult{Inserted: len(domains)}, nil
}

func (s *stubStore) GetTLD(_ context.Context, tld string) (*store.TLDRecord, error) {
	for _, record := range s.tlds {
		if record.TLD == tld {
			return &record, nil
		}
	}
	return nil, nil
}

func (s *stubStore) ListTLDs(_ context.Context) ([]store.TLDRecord, error) {
	return s.tlds, nil
}

func (s *stubStore) BulkInsertTLDs(_ context.Context, tlds []string) (store.BulkInsertResult, error) {
	return store.BulkInsertResult{Inserted: len(tlds) - 1, Duplicates: 1}, nil
}

func (s *stubStore) CreateRequestLog(_ context.Context, entry store.RequestLog) (int64, error) {
	s.logs = append(s.logs, entry)
	return int64(len(s.logs)), nil
}

func classifiedOutcome() *core.CheckOutcome {
	return &core.CheckOutcome{
		Status:   core.OutcomeClassified,
		Hostname: "example.com",
		Risk:     core.RiskLegitimate,
		Message:  "✓ Appears to be a Legitimate Website",
		Details:  []string{"✓ Passed URL Scanner check"},
	}
}

func TestCheckWebsiteStreamsProgressAndResult(t *testing.T) {
	classifier := &stubClassifier{outcome: classifiedOutcome()}
	st := &stubStore{}
	api := &API{Engine: classifier, Store: st}

	body := bytes.NewBufferString(`{"url":"https://example.com","bypassDomainCheck":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/check-website", body)
	rec := httptest.NewRecorder()

	api.CheckWebsite(rec, req)

	resp := rec.Result()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := rec.Body.String()
	assert.Contains(t, events, `"percent":5`)
	assert.Contains(t, events, `"percent":100`)
	assert.Contains(t, events, `"result"`)
	assert.True(t, classifier.bypassed)

	require.Len(t, st.logs, 1)
	assert.Equal(t, store.ScanStatusSuccess, st.logs[0].ScanStatus)
	assert.Equal(t, core.RiskLegitimate, st.logs[0].RiskLevel)
}

func TestCheckWebsitePromptsForUnknownDomain(t *testing.T) {
	classifier := &stubClassifier{outcome: &core.CheckOutcome{
		Status:   core.OutcomeNotInDatabase,
		Hostname: "unknown.example.com",
	}}
	st := &stubStore{}
	api := &API{Engine: classifier, Store: st}

	body := bytes.NewBufferString(`{"url":"https://unknown.example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/check-website", body)
	rec := httptest.NewRecorder()

	api.CheckWebsite(rec, req)

	events := rec.Body.String()
	assert.Contains(t, events, `"prompt"`)
	assert.Contains(t, events, "unknown.example.com")
	assert.NotContains(t, events, `"result"`)

	require.Len(t, st.logs, 1)
	assert.Equal(t, store.ScanStatusNotInDB, st.logs[0].ScanStatus)
}

func TestCheckWebsiteRequiresURL(t *testing.T) {
	api := &API{Engine: &stubClassifier{}, Store: &stubStore{}}
	req := httptest.NewRequest(http.MethodPost, "/api/check-website", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	api.CheckWebsite(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckWebsiteSyncAuth(t *testing.T) {
	classifier := &stubClassifier{outcome: classifiedOutcome()}
	api := &API{Engine: classifier, Store: &stubStore{}, BotAPIKey: "secret"}

	req := httptest.NewRequest(http.MethodPost, "/api/check-website-sync", strings.NewReader(`{"url":"https://example.com"}`))
	rec := httptest.NewRecorder()
	api.CheckWebsiteSync(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/check-website-sync", strings.NewReader(`{"url":"https://example.com"}`))
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	api.CheckWebsiteSync(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, classifier.bypassed, "bot checks always bypass the confirmation gate")

	var outcome core.CheckOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.Equal(t, core.RiskLegitimate, outcome.Risk)
}

func TestCheckWebsiteSyncDisabledWithoutKey(t *testing.T) {
	api := &API{Engine: &stubClassifier{outcome: classifiedOutcome()}, Store: &stubStore{}}
	req := httptest.NewRequest(http.MethodPost, "/api/check-website-sync", strings.NewReader(`{"url":"https://example.com"}`))
	req.Header.Set("X-API-Key", "")
	rec := httptest.NewRecorder()
	api.CheckWebsiteSync(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDomainCRUD(t *testing.T) {
	st := &stubStore{}
	api := &API{Store: st}

	req := httptest.NewRequest(http.MethodPost, "/api/domains", strings.NewReader(`{"domain":"example.com"}`))
	rec := httptest.NewRecorder()
	api.CreateDomain(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/domains?q=example.com", nil)
	rec = httptest.NewRecorder()
	api.ListDomains(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "example.com")
}

func TestCreateDomainDuplicate(t *testing.T) {
	st := &stubStore{createErr: store.ErrDuplicateEntry}
	api := &API{Store: st}

	req := httptest.NewRequest(http.MethodPost, "/api/domains", strings.NewReader(`{"domain":"example.com"}`))
	rec := httptest.NewRecorder()
	api.CreateDomain(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateTLDsPartialSuccess(t *testing.T) {
	api := &API{Store: &stubStore{}}

	req := httptest.NewRequest(http.MethodPost, "/api/tlds", strings.NewReader(`{"tlds":[".com",".id"]}`))
	rec := httptest.NewRecorder()
	api.CreateTLDs(rec, req)
	assert.Equal(t, http.StatusMultiStatus, rec.Code)
}

func TestListTLDsNotFound(t *testing.T) {
	api := &API{Store: &stubStore{}}

	req := httptest.NewRequest(http.MethodGet, "/api/tlds?q=.zzz", nil)
	rec := httptest.NewRecorder()
	api.ListTLDs(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScreenshotRejectsBadFilename(t *testing.T) {
	api := &API{Previews: nil}

	r := chi.NewRouter()
	r.Get("/api/screenshots/{filename}", api.Screenshot)

	req := httptest.NewRequest(http.MethodGet, "/api/screenshots/whatever.png", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthReportsCheckerFailure(t *testing.T) {
	api := &API{Version: "test"}

	healthy := HealthCheckers{"store": healthFunc(func(context.Context) error { return nil })}
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	api.Health(healthy)(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	broken := HealthCheckers{"store": healthFunc(func(context.Context) error { return context.DeadlineExceeded })}
	rec = httptest.NewRecorder()
	api.Health(broken)(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unhealthy")
}

type healthFunc func(ctx context.Context) error

func (f healthFunc) CheckHealth(ctx context.Context) error { return f(ctx) }
