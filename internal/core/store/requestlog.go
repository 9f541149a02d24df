package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prolifel/ceker/internal/core"
)

// ScanStatus records how a pipeline run terminated in the audit log.
type ScanStatus string

const (
	ScanStatusSuccess ScanStatus = "success"
	ScanStatusNotInDB ScanStatus = "not_in_db"
	ScanStatusError   ScanStatus = "error"
)

// RequestLog is one completed-pipeline audit record.
type RequestLog struct {
	URL            string
	Hostname       string
	RiskLevel      core.RiskLevel
	Message        string
	Details        []string
	ScreenshotPath string
	IPAddress      string
	UserAgent      string
	ScanStatus     ScanStatus
	BypassCheck    bool
	ScannerVerdict core.ScanVerdict
	DomainAgeDays  *int
	DomainExpires  *time.Time
	Registrar      string
}

// CreateRequestLog appends one audit record. Write-only, best-effort at the
// caller: storage failures are logged there, never propagated to pipeline
// callers.
func (s *Store) CreateRequestLog(ctx context.Context, entry RequestLog) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var detailsJSON sql.NullString
	if len(entry.Details) > 0 {
		encoded, err := json.Marshal(entry.Details)
		if err != nil {
			return 0, fmt.Errorf("encode request log details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(encoded), Valid: true}
	}

	var (
		ageDays sql.NullInt64
		expires sql.NullInt64
	)
	if entry.DomainAgeDays != nil {
		ageDays = sql.NullInt64{Int64: int64(*entry.DomainAgeDays), Valid: true}
	}
	if entry.DomainExpires != nil {
		expires = sql.NullInt64{Int64: entry.DomainExpires.Unix(), Valid: true}
	}

	bypass := 0
	if entry.BypassCheck {
		bypass = 1
	}

	result, err := s.DB.ExecContext(ctx, `
		INSERT INTO request_logs
			(url, hostname, risk_level, message, details, screenshot_path, ip_address,
			 user_agent, scan_status, bypass_domain_check, scanner_verdict,
			 domain_age_days, domain_expires, domain_registrar, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.URL, entry.Hostname, nullString(string(entry.RiskLevel)), nullString(entry.Message),
		detailsJSON, nullString(entry.ScreenshotPath), nullString(entry.IPAddress),
		nullString(entry.UserAgent), string(entry.ScanStatus), bypass,
		nullString(string(entry.ScannerVerdict)), ageDays, expires, nullString(entry.Registrar),
		time.Now().UTC().Unix())
	if err != nil {
		return 0, fmt.Errorf("insert request log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert request log: %w", err)
	}

	return id, nil
}
