package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prolifel/ceker/internal/core"
	"github.com/prolifel/ceker/internal/core/probe"
	"github.com/prolifel/ceker/internal/core/scanner"
	"github.com/prolifel/ceker/internal/core/store"
)

type stubLists struct {
	allow map[string]bool
	deny  map[string]bool
}

func (s *stubLists) GetDomain(_ context.Context, domain string) (*store.DomainRecord, error) {
	if s.allow[domain] {
		return &store.DomainRecord{ID: 1, Domain: domain}, nil
	}
	return nil, nil
}

func (s *stubLists) GetBlacklist(_ context.Context, domain string) (*store.DomainRecord, error) {
	if s.deny[domain] {
		return &store.DomainRecord{ID: 2, Domain: domain}, nil
	}
	return nil, nil
}

type stubTLDs struct {
	known map[string]bool
	err   error
}

func (s *stubTLDs) GetTLD(_ context.Context, tld string) (*store.TLDRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.known[tld] {
		return &store.TLDRecord{ID: 1, TLD: tld}, nil
	}
	return nil, nil
}

type stubCache struct {
	mu       sync.Mutex
	entry    *core.CacheEntry
	getCalls int
	verdicts []core.ScanVerdict
	regs     []core.RegistrationSnapshot
	previews []string
}

func (s *stubCache) GetEntry(_ context.Context, _ string) (*core.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	return s.entry, nil
}

func (s *stubCache) UpsertVerdict(_ context.Context, _ string, verdict core.ScanVerdict, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verdicts = append(s.verdicts, verdict)
	return nil
}

func (s *stubCache) UpdateRegistration(_ context.Context, _ string, snapshot core.RegistrationSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs = append(s.regs, snapshot)
	return nil
}

func (s *stubCache) UpdatePreview(_ context.Context, _ string, previewPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previews = append(s.previews, previewPath)
	return nil
}

type stubScanner struct {
	mu     sync.Mutex
	result *scanner.ScanResult
	err    error
	calls  int
}

func (s *stubScanner) ScanAndWait(_ context.Context, _ string, _ time.Duration) (*scanner.ScanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.result, s.err
}

type stubRegistration struct {
	mu       sync.Mutex
	snapshot *core.RegistrationSnapshot
	err      error
	calls    int
}

func (s *stubRegistration) Lookup(_ context.Context, _ string) (*core.RegistrationSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.snapshot, s.err
}

type stubProber struct {
	result probe.Result
}

func (s *stubProber) Head(_ context.Context, _ string) probe.Result {
	return s.result
}

func intPtr(v int) *int { return &v }

func registered(ageDays int) *core.RegistrationSnapshot {
	created := time.Now().UTC().AddDate(0, 0, -ageDays)
	return &core.RegistrationSnapshot{
		Created:   &created,
		Registrar: "Example Registrar",
		AgeDays:   intPtr(ageDays),
	}
}

type fixture struct {
	engine       *Engine
	lists        *stubLists
	cache        *stubCache
	scanner      *stubScanner
	registration *stubRegistration
}

func newFixture() *fixture {
	lists := &stubLists{allow: map[string]bool{}, deny: map[string]bool{}}
	cache := &stubCache{}
	scan := &stubScanner{result: &scanner.ScanResult{Verdict: core.VerdictSafe, Details: "No threats detected"}}
	reg := &stubRegistration{snapshot: registered(400)}

	return &fixture{
		engine: &Engine{
			Lists:        lists,
			TLDs:         &stubTLDs{known: map[string]bool{".com": true, ".id": true, ".tk": true, ".co.id": true}},
			Cache:        cache,
			Scanner:      scan,
			Registration: reg,
			Prober:       &stubProber{result: probe.Result{Reachable: true, StatusCode: 200}},
		},
		lists:        lists,
		cache:        cache,
		scanner:      scan,
		registration: reg,
	}
}

func TestClassifyInvalidURL(t *testing.T) {
	f := newFixture()
	outcome, err := f.engine.Classify(context.Background(), "://", true, nil)
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeRejected, outcome.Status)
	assert.Equal(t, "Invalid URL Format", outcome.Reason)
}

func TestClassifyUnknownTLD(t *testing.T) {
	f := newFixture()
	outcome, err := f.engine.Classify(context.Background(), "https://example.zzz", true, nil)
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeRejected, outcome.Status)
	assert.Contains(t, outcome.Reason, ".zzz")
	assert.Zero(t, f.cache.getCalls)
	assert.Zero(t, f.scanner.calls)
}

func TestAllowListShortCircuits(t *testing.T) {
	f := newFixture()
	f.lists.allow["brand-new.tk"] = true
	// Even a domain every other signal would condemn stays legitimate.
	f.registration.snapshot = registered(3)

	outcome, err := f.engine.Classify(context.Background(), "http://brand-new.tk", true, nil)
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeClassified, outcome.Status)
	assert.Equal(t, core.RiskLegitimate, outcome.Risk)
	assert.Zero(t, f.scanner.calls)
	assert.Zero(t, f.registration.calls)
	assert.Zero(t, f.cache.getCalls)
}

func TestDenyListShortCircuits(t *testing.T) {
	f := newFixture()
	f.lists.deny["phish.example.com"] = true

	outcome, err := f.engine.Classify(context.Background(), "https://phish.example.com", true, nil)
	require.NoError(t, err)
	assert.Equal(t, core.RiskWarning, outcome.Risk)
	assert.Contains(t, outcome.Message, "Known Phishing")
	assert.Zero(t, f.scanner.calls)
	assert.Zero(t, f.registration.calls)
	assert.Zero(t, f.cache.getCalls)
}

func TestConfirmationGateBeforeAnyExpensiveWork(t *testing.T) {
	f := newFixture()
	outcome, err := f.engine.Classify(context.Background(), "https://unknown.example.com", false, nil)
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeNotInDatabase, outcome.Status)
	assert.Equal(t, "unknown.example.com", outcome.Hostname)
	assert.Zero(t, f.cache.getCalls)
	assert.Zero(t, f.scanner.calls)
	assert.Zero(t, f.registration.calls)
}

func TestCascadeVeryNewDomainOverridesEverything(t *testing.T) {
	f := newFixture()
	f.registration.snapshot = registered(10)

	outcome, err := f.engine.Classify(context.Background(), "https://example.com", true, nil)
	require.NoError(t, err)
	assert.Equal(t, core.RiskWarning, outcome.Risk)
	assert.Contains(t, outcome.Message, "Very New Domain")
}

func TestCascadeUnusualTLDBeatsEstablishedAge(t *testing.T) {
	f := newFixture()
	f.registration.snapshot = registered(200)

	outcome, err := f.engine.Classify(context.Background(), "https://example.tk", true, nil)
	require.NoError(t, err)
	assert.Equal(t, core.RiskWarning, outcome.Risk)
	assert.Contains(t, outcome.Message, "Unusual Domain Extension")
}

func TestCascadeInsecureTransport(t *testing.T) {
	f := newFixture()
	outcome, err := f.engine.Classify(context.Background(), "http://example.com", true, nil)
	require.NoError(t, err)
	assert.Equal(t, core.RiskWarning, outcome.Risk)
	assert.Contains(t, outcome.Message, "Not Using Secure Connection")
}

func TestCascadeRecentlyRegistered(t *testing.T) {
	f := newFixture()
	f.registration.snapshot = registered(50)

	outcome, err := f.engine.Classify(context.Background(), "https://example.com", true, nil)
	require.NoError(t, err)
	assert.Equal(t, core.RiskSuspicious, outcome.Risk)
	assert.Contains(t, outcome.Message, "Recently Registered")
}

func TestCascadeSubdomainHeavy(t *testing.T) {
	f := newFixture()
	outcome, err := f.engine.Classify(context.Background(), "https://a.b.c.example.com", true, nil)
	require.NoError(t, err)
	assert.Equal(t, core.RiskSuspicious, outcome.Risk)
	assert.Contains(t, outcome.Message, "Unusual Domain Structure")
}

func TestCascadeLegitimateDefault(t *testing.T) {
	f := newFixture()
	outcome, err := f.engine.Classify(context.Background(), "https://example.com", true, nil)
	require.NoError(t, err)
	assert.Equal(t, core.RiskLegitimate, outcome.Risk)
	assert.Contains(t, outcome.Details, "✓ Passed URL Scanner check")
	assert.Contains(t, outcome.Details, "✓ Uses secure connection")
}

func TestScannerThreatVerdictIsEvidenceOnly(t *testing.T) {
	f := newFixture()
	f.scanner.result = &scanner.ScanResult{Verdict: core.VerdictMalicious, Details: "Detected as malicious by URL Scanner"}

	outcome, err := f.engine.Classify(context.Background(), "https://example.com", true, nil)
	require.NoError(t, err)
	// An established HTTPS domain with a standard TLD classifies as
	// legitimate even when the scanner flags it. The flag survives only
	// in the evidence list.
	assert.Equal(t, core.RiskLegitimate, outcome.Risk)
	assert.Equal(t, core.VerdictMalicious, outcome.Signals.ScannerVerdict)
	assert.Contains(t, outcome.Details[0], "URL Scanner detected threats: MALICIOUS")
}

func TestFreshCacheSkipsScanner(t *testing.T) {
	f := newFixture()
	expires := time.Now().Add(time.Hour)
	f.cache.entry = &core.CacheEntry{
		Fingerprint:    "x",
		Verdict:        core.VerdictSafe,
		VerdictExpires: &expires,
	}

	outcome, err := f.engine.Classify(context.Background(), "https://example.com", true, nil)
	require.NoError(t, err)
	assert.Zero(t, f.scanner.calls)
	assert.Empty(t, f.cache.verdicts, "cached verdict must not be rewritten")
	assert.Contains(t, outcome.Details, "✓ Passed URL Scanner check")
}

func TestExpiredCacheRescans(t *testing.T) {
	f := newFixture()
	expires := time.Now().Add(-time.Hour)
	f.cache.entry = &core.CacheEntry{
		Fingerprint:    "x",
		Verdict:        core.VerdictSafe,
		VerdictExpires: &expires,
	}

	_, err := f.engine.Classify(context.Background(), "https://example.com", true, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.scanner.calls)
	require.Len(t, f.cache.verdicts, 1)
	assert.Equal(t, core.VerdictSafe, f.cache.verdicts[0])
}

func TestScannerTimeoutPersistsUnknown(t *testing.T) {
	f := newFixture()
	f.scanner.result = nil
	f.scanner.err = scanner.ErrScanTimeout

	outcome, err := f.engine.Classify(context.Background(), "https://example.com", true, nil)
	require.NoError(t, err)
	assert.Contains(t, outcome.Details, "ℹ️ URL Scanner check unavailable")
	for _, detail := range outcome.Details {
		assert.NotContains(t, detail, "detected threats")
	}
	require.Len(t, f.cache.verdicts, 1)
	assert.Equal(t, core.VerdictUnknown, f.cache.verdicts[0])
	assert.Equal(t, core.RiskLegitimate, outcome.Risk)
}

func TestCachedRegistrationSkipsLookup(t *testing.T) {
	f := newFixture()
	f.cache.entry = &core.CacheEntry{
		Fingerprint: "x",
		Verdict:     core.VerdictUnknown,
		Registration: core.RegistrationSnapshot{
			AgeDays:   intPtr(500),
			Registrar: "Cached Registrar",
		},
	}

	outcome, err := f.engine.Classify(context.Background(), "https://example.com", true, nil)
	require.NoError(t, err)
	assert.Zero(t, f.registration.calls)
	assert.Empty(t, f.cache.regs)
	assert.Equal(t, "Cached Registrar", outcome.Signals.Registrar)
}

func TestRegistrationLookupUsesRootDomain(t *testing.T) {
	f := newFixture()
	outcome, err := f.engine.Classify(context.Background(), "https://web.example.com", true, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.registration.calls)
	require.Len(t, f.cache.regs, 1)
	assert.Contains(t, outcome.Details, "✓ Domain is established (400 days old) (example.com)")
}

func TestRegistrationUnavailable(t *testing.T) {
	f := newFixture()
	f.registration.snapshot = nil
	f.registration.err = context.DeadlineExceeded

	outcome, err := f.engine.Classify(context.Background(), "https://example.com", true, nil)
	require.NoError(t, err)
	assert.Contains(t, outcome.Details, "ℹ️ Domain age information unavailable")
	assert.Nil(t, outcome.Signals.DomainAgeDays)
	assert.Equal(t, core.RiskLegitimate, outcome.Risk)
}

func TestEndToEndTinyTK(t *testing.T) {
	f := newFixture()
	f.registration.snapshot = registered(5)

	outcome, err := f.engine.Classify(context.Background(), "tiny.tk", true, nil)
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeClassified, outcome.Status)
	assert.Equal(t, core.RiskWarning, outcome.Risk)
	assert.Contains(t, outcome.Message, "Very New Domain")
	assert.Contains(t, outcome.Details, "⚠️ Uses a free/suspicious top-level domain")
	assert.Contains(t, outcome.Details, "⚠️ Domain is very new (5 days old)")
}

func TestProgressCheckpointsInOrder(t *testing.T) {
	f := newFixture()

	var percents []int
	outcome, err := f.engine.Classify(context.Background(), "https://example.com", true, func(percent int, message string) {
		percents = append(percents, percent)
		assert.NotEmpty(t, message)
	})
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeClassified, outcome.Status)
	assert.Equal(t, []int{5, 10, 15, 20, 50, 75, 80, 100}, percents)
}

func TestPhishingKeywordDetection(t *testing.T) {
	f := newFixture()
	outcome, err := f.engine.Classify(context.Background(), "https://secure-login.example.com", true, nil)
	require.NoError(t, err)
	assert.Contains(t, outcome.Details, "⚠️ Domain contains common phishing keywords")

	outcome, err = f.engine.Classify(context.Background(), "https://verify.com", true, nil)
	require.NoError(t, err)
	assert.NotContains(t, outcome.Details, "⚠️ Domain contains common phishing keywords")
}
