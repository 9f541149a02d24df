package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TLDRecord is one TLD registry entry. TLDs are stored with their leading
// dot (".com", ".id").
type TLDRecord struct {
	ID        int64     `json:"id"`
	TLD       string    `json:"tld"`
	CreatedAt time.Time `json:"created_at"`
}

// GetTLD looks up a TLD in the registry. Returns nil when absent.
func (s *Store) GetTLD(ctx context.Context, tld string) (*TLDRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	tld = normalizeTLD(tld)
	if tld == "" {
		return nil, errors.New("tld is required")
	}

	var (
		id        int64
		value     string
		createdAt int64
	)
	row := s.DB.QueryRowContext(ctx, `SELECT id, tld, created_at FROM tlds WHERE tld = ?`, tld)
	if err := row.Scan(&id, &value, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup tld: %w", err)
	}

	return &TLDRecord{ID: id, TLD: value, CreatedAt: time.Unix(createdAt, 0).UTC()}, nil
}

// ListTLDs returns every registry entry.
func (s *Store) ListTLDs(ctx context.Context) ([]TLDRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT id, tld, created_at FROM tlds ORDER BY tld`)
	if err != nil {
		return nil, fmt.Errorf("list tlds: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var records []TLDRecord
	for rows.Next() {
		var (
			id        int64
			value     string
			createdAt int64
		)
		if err := rows.Scan(&id, &value, &createdAt); err != nil {
			return nil, fmt.Errorf("scan tld: %w", err)
		}
		records = append(records, TLDRecord{ID: id, TLD: value, CreatedAt: time.Unix(createdAt, 0).UTC()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tlds: %w", err)
	}

	return records, nil
}

// BulkInsertTLDs filters, dedupes, and inserts registry entries.
func (s *Store) BulkInsertTLDs(ctx context.Context, tlds []string) (BulkInsertResult, error) {
	if s == nil || s.DB == nil {
		return BulkInsertResult{}, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	seen := make(map[string]struct{})
	valid := make([]string, 0, len(tlds))
	for _, tld := range tlds {
		tld = normalizeTLD(tld)
		if tld == "" {
			continue
		}
		if _, ok := seen[tld]; ok {
			continue
		}
		seen[tld] = struct{}{}
		valid = append(valid, tld)
	}

	if len(valid) == 0 {
		return BulkInsertResult{}, nil
	}

	now := time.Now().UTC().Unix()
	result := BulkInsertResult{}
	for _, tld := range valid {
		res, err := s.DB.ExecContext(ctx, `
			INSERT INTO tlds (tld, created_at) VALUES (?, ?)
			ON CONFLICT(tld) DO NOTHING
		`, tld, now)
		if err != nil {
			return result, fmt.Errorf("bulk insert tld: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return result, fmt.Errorf("bulk insert tld: %w", err)
		}
		if affected > 0 {
			result.Inserted++
		} else {
			result.Duplicates++
		}
	}

	return result, nil
}

func normalizeTLD(tld string) string {
	tld = strings.ToLower(strings.TrimSpace(tld))
	if tld == "" {
		return ""
	}
	if !strings.HasPrefix(tld, ".") {
		tld = "." + tld
	}
	if tld == "." {
		return ""
	}
	return tld
}
