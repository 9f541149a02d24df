package core

import "time"

// RiskLevel is the final severity tier for a classified website.
type RiskLevel string

const (
	RiskLegitimate RiskLevel = "LEGITIMATE"
	RiskSuspicious RiskLevel = "SUSPICIOUS"
	RiskWarning    RiskLevel = "WARNING"
)

// ScanVerdict is the third-party reputation scanner result.
type ScanVerdict string

const (
	VerdictSafe      ScanVerdict = "SAFE"
	VerdictMalicious ScanVerdict = "MALICIOUS"
	VerdictPhishing  ScanVerdict = "PHISHING"
	VerdictUnknown   ScanVerdict = "UNKNOWN"
)

// Threat reports true when the verdict indicates a detected threat.
func (v ScanVerdict) Threat() bool {
	return v == VerdictMalicious || v == VerdictPhishing
}

// OutcomeStatus tags the CheckOutcome variant.
type OutcomeStatus string

const (
	// OutcomeClassified carries a full risk classification.
	OutcomeClassified OutcomeStatus = "classified"
	// OutcomeNotInDatabase means the hostname is in neither the allow-list
	// nor the deny-list and the caller has not opted into a full scan.
	OutcomeNotInDatabase OutcomeStatus = "not_in_database"
	// OutcomeRejected means the input failed validation before any analysis.
	OutcomeRejected OutcomeStatus = "rejected"
)

// Signals holds the raw values the classification was derived from.
type Signals struct {
	ScannerVerdict ScanVerdict `json:"scanner_verdict,omitempty"`
	DomainAgeDays  *int        `json:"domain_age_days,omitempty"`
	DomainExpires  *time.Time  `json:"domain_expires,omitempty"`
	Registrar      string      `json:"registrar,omitempty"`
	AbuseContact   string      `json:"abuse_contact,omitempty"`
	UnusualTLD     bool        `json:"unusual_tld"`
	SubdomainHeavy bool        `json:"subdomain_heavy"`
	Secure         bool        `json:"secure"`
	Reachable      bool        `json:"reachable"`
}

// CheckOutcome is the result of one classification pipeline run. Status
// selects the variant: Hostname is set for not_in_database, Reason for
// rejected, and the remaining fields for classified.
type CheckOutcome struct {
	Status OutcomeStatus `json:"status"`

	Hostname string `json:"hostname,omitempty"`
	Reason   string `json:"reason,omitempty"`

	Risk        RiskLevel `json:"risk_level,omitempty"`
	Message     string    `json:"message,omitempty"`
	Details     []string  `json:"details,omitempty"`
	PreviewPath string    `json:"screenshot_path,omitempty"`
	Signals     Signals   `json:"signals,omitempty"`
}

// RegistrationSnapshot is one coherent registration-metadata lookup result.
type RegistrationSnapshot struct {
	Created      *time.Time
	Expires      *time.Time
	Registrar    string
	AbuseContact string
	AgeDays      *int
}

// CacheEntry is a reputation-cache row. Verdict freshness and registration
// data age independently: the verdict is reusable only until VerdictExpires,
// while registration fields and the preview reference are reused whenever
// present.
type CacheEntry struct {
	Fingerprint    string
	Verdict        ScanVerdict
	VerdictExpires *time.Time
	Registration   RegistrationSnapshot
	PreviewPath    string
	CreatedAt      time.Time
}

// VerdictFresh reports whether the stored verdict may be reused at now.
func (e *CacheEntry) VerdictFresh(now time.Time) bool {
	if e == nil || e.Verdict == "" || e.Verdict == VerdictUnknown {
		return false
	}
	return e.VerdictExpires != nil && now.Before(*e.VerdictExpires)
}

// HasRegistration reports whether the entry carries a registration snapshot.
func (e *CacheEntry) HasRegistration() bool {
	return e != nil && e.Registration.AgeDays != nil
}

// ProgressFunc receives best-effort progress events during a pipeline run.
type ProgressFunc func(percent int, message string)
