package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// domainSyntax filters junk out of bulk imports before they reach the
// deny-list table.
var domainSyntax = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9.-]*[a-zA-Z0-9])?(\.[a-zA-Z]{2,})+$`)

// BulkInsertResult reports the outcome of a bulk list import.
type BulkInsertResult struct {
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
}

// GetBlacklist looks up a hostname in the known-phishing deny-list.
// Returns nil when absent.
func (s *Store) GetBlacklist(ctx context.Context, domain string) (*DomainRecord, error) {
	return s.getListEntry(ctx, "blacklists", domain)
}

// ListBlacklists returns every deny-list entry.
func (s *Store) ListBlacklists(ctx context.Context) ([]DomainRecord, error) {
	return s.listEntries(ctx, "blacklists")
}

// CreateBlacklist inserts one deny-list entry.
func (s *Store) CreateBlacklist(ctx context.Context, domain string) (*DomainRecord, error) {
	return s.createListEntry(ctx, "blacklists", domain)
}

// BulkInsertBlacklists filters, dedupes, and inserts deny-list domains,
// counting entries already present as duplicates.
func (s *Store) BulkInsertBlacklists(ctx context.Context, domains []string) (BulkInsertResult, error) {
	if s == nil || s.DB == nil {
		return BulkInsertResult{}, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	seen := make(map[string]struct{})
	valid := make([]string, 0, len(domains))
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "" || !domainSyntax.MatchString(domain) {
			continue
		}
		if _, ok := seen[domain]; ok {
			continue
		}
		seen[domain] = struct{}{}
		valid = append(valid, domain)
	}

	if len(valid) == 0 {
		return BulkInsertResult{}, nil
	}

	now := time.Now().UTC().Unix()
	result := BulkInsertResult{}
	for _, domain := range valid {
		res, err := s.DB.ExecContext(ctx, `
			INSERT INTO blacklists (domain, created_at) VALUES (?, ?)
			ON CONFLICT(domain) DO NOTHING
		`, domain, now)
		if err != nil {
			return result, fmt.Errorf("bulk insert blacklist entry: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return result, fmt.Errorf("bulk insert blacklist entry: %w", err)
		}
		if affected > 0 {
			result.Inserted++
		} else {
			result.Duplicates++
		}
	}

	return result, nil
}
