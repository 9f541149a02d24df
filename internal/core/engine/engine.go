// Package engine sequences the website-risk classification pipeline: list
// lookups, reputation scan, structural heuristics, registration metadata,
// and the final tiered verdict.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prolifel/ceker/internal/core"
	"github.com/prolifel/ceker/internal/core/probe"
	"github.com/prolifel/ceker/internal/core/scanner"
	"github.com/prolifel/ceker/internal/core/store"
	"github.com/prolifel/ceker/internal/core/urlx"
)

// ListRepository looks up curated allow-list and deny-list domains. A nil
// record means the domain is not listed.
type ListRepository interface {
	GetDomain(ctx context.Context, domain string) (*store.DomainRecord, error)
	GetBlacklist(ctx context.Context, domain string) (*store.DomainRecord, error)
}

// ReputationCache is the fingerprint-keyed verdict cache with per-field
// partial updates.
type ReputationCache interface {
	GetEntry(ctx context.Context, fingerprint string) (*core.CacheEntry, error)
	UpsertVerdict(ctx context.Context, fingerprint string, verdict core.ScanVerdict, ttl time.Duration) error
	UpdateRegistration(ctx context.Context, fingerprint string, snapshot core.RegistrationSnapshot) error
	UpdatePreview(ctx context.Context, fingerprint string, previewPath string) error
}

// ReputationScanner submits a URL for external scanning and waits for a
// terminal verdict.
type ReputationScanner interface {
	ScanAndWait(ctx context.Context, rawURL string, maxWait time.Duration) (*scanner.ScanResult, error)
}

// RegistrationLookup resolves registration metadata for a registrable
// domain.
type RegistrationLookup interface {
	Lookup(ctx context.Context, domain string) (*core.RegistrationSnapshot, error)
}

// ReachabilityProber checks whether a URL answers HTTP requests.
type ReachabilityProber interface {
	Head(ctx context.Context, rawURL string) probe.Result
}

// PreviewCapturer renders a URL to an image.
type PreviewCapturer interface {
	Capture(ctx context.Context, rawURL string) ([]byte, error)
}

// PreviewStore persists captured images and returns a serving path.
type PreviewStore interface {
	Save(data []byte, fingerprint string) (string, error)
}

// suspiciousTLDs are free or throwaway extensions heavily abused for
// phishing.
var suspiciousTLDs = []string{".tk", ".ml", ".ga", ".cf"}

var phishingKeywords = []string{
	"verify", "confirm", "update", "secure", "account", "login", "urgent",
}

// keywordExceptions are hostnames that legitimately contain a phishing
// keyword.
var keywordExceptions = map[string]struct{}{
	"verify.com": {},
	"confirm.io": {},
}

// Engine orchestrates one classification run. All collaborators are
// injected; external ones may be nil and degrade to unavailable evidence.
type Engine struct {
	Lists        ListRepository
	TLDs         TLDRegistry
	Cache        ReputationCache
	Scanner      ReputationScanner
	Registration RegistrationLookup
	Prober       ReachabilityProber
	Preview      PreviewCapturer
	Previews     PreviewStore
	Logger       *zap.Logger
	Clock        func() time.Time

	ScanMaxWait time.Duration
	VerdictTTL  time.Duration
}

// Classify runs the full pipeline for a raw URL. Bypass skips the
// confirmation gate for hostnames unknown to both lists. The returned
// outcome is always structured; external failures degrade to evidence
// entries instead of errors.
func (e *Engine) Classify(ctx context.Context, rawURL string, bypass bool, progress core.ProgressFunc) (*core.CheckOutcome, error) {
	emit := func(percent int, message string) {
		if progress != nil {
			progress(percent, message)
		}
	}

	normalized, err := urlx.Normalize(rawURL)
	if err != nil {
		return &core.CheckOutcome{
			Status: core.OutcomeRejected,
			Reason: "Invalid URL Format",
		}, nil
	}
	emit(5, "URL validated")

	hostname := normalized.Hostname
	log := e.logger().With(zap.String("url", normalized.String()), zap.String("hostname", hostname))

	emit(10, "Validating domain extension...")
	validation, err := ValidateTLD(ctx, e.TLDs, hostname)
	if err != nil {
		return nil, fmt.Errorf("validate tld: %w", err)
	}
	if !validation.Valid {
		return &core.CheckOutcome{
			Status: core.OutcomeRejected,
			Reason: validation.Reason,
		}, nil
	}

	emit(15, "Checking legitimate domain list...")
	if listed, err := e.Lists.GetDomain(ctx, hostname); err == nil && listed != nil {
		emit(100, "Complete")
		return &core.CheckOutcome{
			Status:   core.OutcomeClassified,
			Hostname: hostname,
			Risk:     core.RiskLegitimate,
			Message:  "✓ Appears to be a Legitimate Website",
			Details:  []string{"✓ Website is available in our legitimate website list"},
		}, nil
	}

	if listed, err := e.Lists.GetBlacklist(ctx, hostname); err == nil && listed != nil {
		emit(100, "Complete")
		return &core.CheckOutcome{
			Status:   core.OutcomeClassified,
			Hostname: hostname,
			Risk:     core.RiskWarning,
			Message:  "⚠️ WARNING - Known Phishing Website",
			Details:  []string{"⚠️ This website is in our blacklist of known phishing sites"},
		}, nil
	}

	if !bypass {
		return &core.CheckOutcome{
			Status:   core.OutcomeNotInDatabase,
			Hostname: hostname,
		}, nil
	}

	fingerprint := urlx.Fingerprint(normalized)
	entry, err := e.Cache.GetEntry(ctx, fingerprint)
	if err != nil {
		// Storage trouble degrades to a cache miss.
		log.Warn("cache read failed", zap.Error(err))
		entry = nil
	}
	cacheValid := entry.VerdictFresh(e.now())

	emit(20, "Scanning with URL Scanner...")

	var (
		scanDetail  string
		scanVerdict core.ScanVerdict
		reg         *core.RegistrationSnapshot
		regCached   bool
	)

	rootDomain := urlx.RootDomain(hostname)

	// The scan and the registration lookup have independent inputs, so
	// they run concurrently. Failures are absorbed into evidence.
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		scanVerdict, scanDetail = e.resolveVerdict(groupCtx, normalized, fingerprint, entry, cacheValid, log)
		return nil
	})
	group.Go(func() error {
		reg, regCached = e.resolveRegistration(groupCtx, rootDomain, fingerprint, entry, log)
		return nil
	})
	_ = group.Wait()
	emit(50, "URL Scanner scan complete")

	details := []string{scanDetail}
	signals := core.Signals{ScannerVerdict: scanVerdict, Secure: normalized.Secure()}

	// TLD class heuristic. A free TLD or an extension absent from the
	// registry marks the domain unusual.
	if hasSuspiciousTLD(hostname) {
		signals.UnusualTLD = true
		details = append(details, "⚠️ Uses a free/suspicious top-level domain")
	} else if known, err := e.TLDs.GetTLD(ctx, validation.TLD); err == nil && known == nil {
		signals.UnusualTLD = true
		details = append(details, "⚠️ The domain extension is unknown")
	} else {
		details = append(details, "✓ Uses a standard domain extension")
	}

	if hasPhishingKeyword(hostname) {
		details = append(details, "⚠️ Domain contains common phishing keywords")
	}

	if signals.Secure {
		details = append(details, "✓ Uses secure connection")
	} else {
		details = append(details, "⚠️ Does not use encryption")
	}

	probeResult := e.probe(ctx, normalized.String())
	signals.Reachable = probeResult.Reachable
	switch {
	case probeResult.Reachable && signals.Secure:
		details = append(details, "✓ Website is reachable, responding, and using secure connection")
	case probeResult.Reachable:
		details = append(details, "⚠️ Website is reachable, but not using secure connection")
	case signals.Secure:
		details = append(details, "⚠️ Website cannot be reached")
	default:
		details = append(details, "⚠️ Website could not be reached")
	}

	if strings.Count(hostname, ".") >= 3 {
		signals.SubdomainHeavy = true
		details = append(details, "⚠️ Domain structure seems unusual (subdomain heavy)")
	}

	if urlx.IsIPv4Host(hostname) {
		details = append(details, "⚠️ Uses IP address instead of domain name")
	} else {
		details = append(details, "✓ Uses proper domain name")
	}

	emit(75, "Checking domain registration information...")

	domainSuffix := ""
	if rootDomain != hostname {
		domainSuffix = fmt.Sprintf(" (%s)", rootDomain)
	}
	if regCached {
		log.Debug("registration served from cache", zap.String("root_domain", rootDomain))
	}
	if reg != nil && reg.AgeDays != nil {
		signals.DomainAgeDays = reg.AgeDays
		signals.DomainExpires = reg.Expires
		signals.Registrar = reg.Registrar
		signals.AbuseContact = reg.AbuseContact

		if *reg.AgeDays < 30 {
			details = append(details, fmt.Sprintf("⚠️ Domain is very new (%d days old)%s", *reg.AgeDays, domainSuffix))
		} else {
			details = append(details, fmt.Sprintf("✓ Domain is established (%d days old)%s", *reg.AgeDays, domainSuffix))
		}
	} else {
		details = append(details, fmt.Sprintf("ℹ️ Domain age information unavailable%s", domainSuffix))
	}

	if signals.DomainExpires != nil {
		daysUntilExpiry := int(time.Until(*signals.DomainExpires).Hours() / 24)
		if daysUntilExpiry < 30 {
			details = append(details, fmt.Sprintf("⚠️ Domain expires soon (%d days)", daysUntilExpiry))
		}
	}
	if signals.AbuseContact != "" {
		details = append(details, fmt.Sprintf("ℹ️ Abuse contact: %s", signals.AbuseContact))
	}

	risk, message := classify(signals)

	emit(80, "Capturing screenshot...")
	previewPath := e.resolvePreview(ctx, normalized, fingerprint, entry, log)

	emit(100, "Complete")

	return &core.CheckOutcome{
		Status:      core.OutcomeClassified,
		Hostname:    hostname,
		Risk:        risk,
		Message:     message,
		Details:     details,
		PreviewPath: previewPath,
		Signals:     signals,
	}, nil
}

// classify resolves the final tier from the collected signals. The rules
// are ordered by priority and the first match wins: a freshly registered
// domain is the strongest signal and overrides everything below it. The
// scanner verdict feeds evidence text only and never escalates the tier
// on its own.
func classify(signals core.Signals) (core.RiskLevel, string) {
	switch {
	case signals.DomainAgeDays != nil && *signals.DomainAgeDays < 20:
		return core.RiskWarning, "⚠️ High Risk - Very New Domain"
	case signals.UnusualTLD && signals.SubdomainHeavy:
		return core.RiskWarning, "⚠️ High Risk - Suspicious Domain Structure"
	case signals.UnusualTLD:
		return core.RiskWarning, "⚠️ High Risk - Unusual Domain Extension"
	case !signals.Secure:
		return core.RiskWarning, "⚠️ High Risk - Not Using Secure Connection"
	case signals.DomainAgeDays != nil && *signals.DomainAgeDays < 90:
		return core.RiskSuspicious, "⚠️ Suspicious - Recently Registered Domain"
	case signals.SubdomainHeavy:
		return core.RiskSuspicious, "⚠️ Suspicious - Unusual Domain Structure"
	default:
		return core.RiskLegitimate, "✓ Appears to be a Legitimate Website"
	}
}

// resolveVerdict reuses a fresh cached verdict or performs a live scan.
// A live scan persists its verdict; a failed scan persists UNKNOWN so the
// row exists for the sibling field updates.
func (e *Engine) resolveVerdict(ctx context.Context, normalized urlx.NormalizedURL, fingerprint string, entry *core.CacheEntry, cacheValid bool, log *zap.Logger) (core.ScanVerdict, string) {
	if cacheValid {
		log.Debug("scanner verdict served from cache", zap.String("verdict", string(entry.Verdict)))
		switch {
		case entry.Verdict.Threat():
			return entry.Verdict, fmt.Sprintf("⚠️ URL Scanner detected threats: %s.", entry.Verdict)
		case entry.Verdict == core.VerdictSafe:
			return entry.Verdict, "✓ Passed URL Scanner check"
		default:
			return entry.Verdict, "⚠️ URL Scanner not available"
		}
	}

	if e.Scanner == nil {
		e.persistVerdict(ctx, fingerprint, core.VerdictUnknown, log)
		return core.VerdictUnknown, "ℹ️ URL Scanner check unavailable"
	}

	result, err := e.Scanner.ScanAndWait(ctx, normalized.String(), e.ScanMaxWait)
	if err != nil {
		// Timeouts and transport failures are not threats.
		log.Warn("url scan failed", zap.Error(err))
		e.persistVerdict(ctx, fingerprint, core.VerdictUnknown, log)
		return core.VerdictUnknown, "ℹ️ URL Scanner check unavailable"
	}

	e.persistVerdict(ctx, fingerprint, result.Verdict, log)

	if result.Verdict.Threat() {
		return result.Verdict, fmt.Sprintf("⚠️ URL Scanner detected threats: %s. %s", result.Verdict, result.Details)
	}
	return result.Verdict, "✓ Passed URL Scanner check"
}

func (e *Engine) persistVerdict(ctx context.Context, fingerprint string, verdict core.ScanVerdict, log *zap.Logger) {
	ttl := e.VerdictTTL
	if ttl <= 0 {
		ttl = store.DefaultVerdictTTL
	}
	if err := e.Cache.UpsertVerdict(ctx, fingerprint, verdict, ttl); err != nil {
		log.Warn("verdict cache write failed", zap.Error(err))
	}
}

// resolveRegistration reuses cached registration data when present, else
// queries the registrable root domain and persists the snapshot.
func (e *Engine) resolveRegistration(ctx context.Context, rootDomain, fingerprint string, entry *core.CacheEntry, log *zap.Logger) (*core.RegistrationSnapshot, bool) {
	if entry.HasRegistration() {
		snapshot := entry.Registration
		return &snapshot, true
	}

	if e.Registration == nil {
		return nil, false
	}

	snapshot, err := e.Registration.Lookup(ctx, rootDomain)
	if err != nil || snapshot == nil {
		log.Warn("registration lookup failed", zap.String("root_domain", rootDomain), zap.Error(err))
		return nil, false
	}

	if err := e.Cache.UpdateRegistration(ctx, fingerprint, *snapshot); err != nil {
		log.Warn("registration cache write failed", zap.Error(err))
	}

	return snapshot, false
}

// resolvePreview reuses a cached preview reference or captures a new one.
// Every failure path returns an empty reference.
func (e *Engine) resolvePreview(ctx context.Context, normalized urlx.NormalizedURL, fingerprint string, entry *core.CacheEntry, log *zap.Logger) string {
	if entry != nil && entry.PreviewPath != "" {
		return entry.PreviewPath
	}
	if e.Preview == nil || e.Previews == nil {
		return ""
	}

	image, err := e.Preview.Capture(ctx, normalized.String())
	if err != nil || len(image) == 0 {
		log.Warn("preview capture failed", zap.Error(err))
		return ""
	}

	previewPath, err := e.Previews.Save(image, fingerprint)
	if err != nil {
		log.Warn("preview save failed", zap.Error(err))
		return ""
	}

	if err := e.Cache.UpdatePreview(ctx, fingerprint, previewPath); err != nil {
		log.Warn("preview cache write failed", zap.Error(err))
	}

	return previewPath
}

func (e *Engine) probe(ctx context.Context, rawURL string) probe.Result {
	if e.Prober == nil {
		return probe.Result{}
	}
	return e.Prober.Head(ctx, rawURL)
}

func hasSuspiciousTLD(hostname string) bool {
	for _, tld := range suspiciousTLDs {
		if strings.HasSuffix(hostname, tld) {
			return true
		}
	}
	return false
}

func hasPhishingKeyword(hostname string) bool {
	if _, ok := keywordExceptions[hostname]; ok {
		return false
	}
	for _, keyword := range phishingKeywords {
		if strings.Contains(hostname, keyword) {
			return true
		}
	}
	return false
}

func (e *Engine) now() time.Time {
	if e != nil && e.Clock != nil {
		return e.Clock()
	}
	return time.Now().UTC()
}

func (e *Engine) logger() *zap.Logger {
	if e != nil && e.Logger != nil {
		return e.Logger
	}
	return zap.NewNop()
}
