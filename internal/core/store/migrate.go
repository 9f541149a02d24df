package store

import (
	"context"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS reputation_cache (
		fingerprint TEXT PRIMARY KEY,
		verdict TEXT NOT NULL DEFAULT 'UNKNOWN',
		verdict_expires_at INTEGER,
		registration_created INTEGER,
		registration_expires INTEGER,
		registrar TEXT,
		abuse_contact TEXT,
		registration_age_days INTEGER,
		preview_path TEXT,
		created_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_reputation_cache_expires ON reputation_cache(verdict_expires_at);`,
	`CREATE TABLE IF NOT EXISTS domains (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS blacklists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS tlds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tld TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS request_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		hostname TEXT NOT NULL,
		risk_level TEXT,
		message TEXT,
		details TEXT,
		screenshot_path TEXT,
		ip_address TEXT,
		user_agent TEXT,
		scan_status TEXT NOT NULL,
		bypass_domain_check INTEGER NOT NULL DEFAULT 0,
		scanner_verdict TEXT,
		domain_age_days INTEGER,
		domain_expires INTEGER,
		domain_registrar TEXT,
		created_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_request_logs_hostname ON request_logs(hostname);`,
}

// Migrate ensures the required database tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}

	return nil
}
