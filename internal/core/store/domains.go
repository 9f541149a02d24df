package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DomainRecord is one curated allow-list entry.
type DomainRecord struct {
	ID        int64     `json:"id"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
}

// GetDomain looks up a hostname in the legitimate-domain allow-list.
// Returns nil when absent.
func (s *Store) GetDomain(ctx context.Context, domain string) (*DomainRecord, error) {
	return s.getListEntry(ctx, "domains", domain)
}

// ListDomains returns every allow-list entry.
func (s *Store) ListDomains(ctx context.Context) ([]DomainRecord, error) {
	return s.listEntries(ctx, "domains")
}

// CreateDomain inserts one allow-list entry. ErrDuplicateEntry is returned
// when the domain already exists.
func (s *Store) CreateDomain(ctx context.Context, domain string) (*DomainRecord, error) {
	return s.createListEntry(ctx, "domains", domain)
}

// ErrDuplicateEntry indicates a unique-constraint violation on insert.
var ErrDuplicateEntry = errors.New("duplicate entry")

func (s *Store) getListEntry(ctx context.Context, table, domain string) (*DomainRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, errors.New("domain is required")
	}

	var (
		id        int64
		value     string
		createdAt int64
	)
	// table is one of the fixed internal names, never caller input
	row := s.DB.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, domain, created_at FROM %s WHERE domain = ?`, table), domain)
	if err := row.Scan(&id, &value, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup %s entry: %w", table, err)
	}

	return &DomainRecord{ID: id, Domain: value, CreatedAt: time.Unix(createdAt, 0).UTC()}, nil
}

func (s *Store) listEntries(ctx context.Context, table string) ([]DomainRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, domain, created_at FROM %s ORDER BY domain`, table))
	if err != nil {
		return nil, fmt.Errorf("list %s entries: %w", table, err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var records []DomainRecord
	for rows.Next() {
		var (
			id        int64
			value     string
			createdAt int64
		)
		if err := rows.Scan(&id, &value, &createdAt); err != nil {
			return nil, fmt.Errorf("scan %s entry: %w", table, err)
		}
		records = append(records, DomainRecord{ID: id, Domain: value, CreatedAt: time.Unix(createdAt, 0).UTC()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s entries: %w", table, err)
	}

	return records, nil
}

func (s *Store) createListEntry(ctx context.Context, table, domain string) (*DomainRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, errors.New("domain is required")
	}

	now := time.Now().UTC()
	result, err := s.DB.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (domain, created_at) VALUES (?, ?)`, table), domain, now.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEntry
		}
		return nil, fmt.Errorf("insert %s entry: %w", table, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert %s entry: %w", table, err)
	}

	return &DomainRecord{ID: id, Domain: domain, CreatedAt: now}, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}
