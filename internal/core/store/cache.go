package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prolifel/ceker/internal/core"
)

// DefaultVerdictTTL is how long a scanner verdict stays reusable after the
// cache row is first inserted. The expiry clock starts once, at insert;
// later verdict updates do not extend it.
const DefaultVerdictTTL = 72 * time.Hour

// GetEntry returns the cache row for a fingerprint, or nil when absent.
func (s *Store) GetEntry(ctx context.Context, fingerprint string) (*core.CacheEntry, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return nil, errors.New("cache fingerprint is required")
	}

	var (
		verdict        string
		verdictExpires sql.NullInt64
		regCreated     sql.NullInt64
		regExpires     sql.NullInt64
		registrar      sql.NullString
		abuseContact   sql.NullString
		ageDays        sql.NullInt64
		previewPath    sql.NullString
		createdAt      int64
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT verdict, verdict_expires_at, registration_created, registration_expires,
		       registrar, abuse_contact, registration_age_days, preview_path, created_at
		FROM reputation_cache
		WHERE fingerprint = ?
	`, fingerprint)

	if err := row.Scan(&verdict, &verdictExpires, &regCreated, &regExpires,
		&registrar, &abuseContact, &ageDays, &previewPath, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch cache entry: %w", err)
	}

	entry := &core.CacheEntry{
		Fingerprint: fingerprint,
		Verdict:     core.ScanVerdict(verdict),
		PreviewPath: previewPath.String,
		CreatedAt:   time.Unix(createdAt, 0).UTC(),
	}
	if verdictExpires.Valid {
		expires := time.Unix(verdictExpires.Int64, 0).UTC()
		entry.VerdictExpires = &expires
	}
	if regCreated.Valid {
		created := time.Unix(regCreated.Int64, 0).UTC()
		entry.Registration.Created = &created
	}
	if regExpires.Valid {
		expires := time.Unix(regExpires.Int64, 0).UTC()
		entry.Registration.Expires = &expires
	}
	if ageDays.Valid {
		age := int(ageDays.Int64)
		entry.Registration.AgeDays = &age
	}
	entry.Registration.Registrar = registrar.String
	entry.Registration.AbuseContact = abuseContact.String

	return entry, nil
}

// UpsertVerdict inserts a cache row with a fresh verdict expiry, or updates
// the verdict field only when the row already exists. The conflict branch
// deliberately leaves verdict_expires_at untouched: re-validation does not
// restart the expiry clock.
func (s *Store) UpsertVerdict(ctx context.Context, fingerprint string, verdict core.ScanVerdict, ttl time.Duration) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return errors.New("cache fingerprint is required")
	}

	if ttl <= 0 {
		ttl = DefaultVerdictTTL
	}

	now := time.Now().UTC()
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO reputation_cache (fingerprint, verdict, verdict_expires_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			verdict = excluded.verdict
	`, fingerprint, string(verdict), now.Add(ttl).Unix(), now.Unix())
	if err != nil {
		return fmt.Errorf("upsert verdict: %w", err)
	}

	return nil
}

// UpdateRegistration writes one registration snapshot onto the cache row,
// inserting the row if a concurrent writer has not created it yet. Only the
// registration column set is touched on conflict.
func (s *Store) UpdateRegistration(ctx context.Context, fingerprint string, snapshot core.RegistrationSnapshot) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return errors.New("cache fingerprint is required")
	}

	var (
		created sql.NullInt64
		expires sql.NullInt64
		ageDays sql.NullInt64
	)
	if snapshot.Created != nil {
		created = sql.NullInt64{Int64: snapshot.Created.Unix(), Valid: true}
	}
	if snapshot.Expires != nil {
		expires = sql.NullInt64{Int64: snapshot.Expires.Unix(), Valid: true}
	}
	if snapshot.AgeDays != nil {
		ageDays = sql.NullInt64{Int64: int64(*snapshot.AgeDays), Valid: true}
	}

	now := time.Now().UTC()
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO reputation_cache (fingerprint, verdict, registration_created, registration_expires,
			registrar, abuse_contact, registration_age_days, created_at)
		VALUES (?, 'UNKNOWN', ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			registration_created = excluded.registration_created,
			registration_expires = excluded.registration_expires,
			registrar = excluded.registrar,
			abuse_contact = excluded.abuse_contact,
			registration_age_days = excluded.registration_age_days
	`, fingerprint, created, expires,
		nullString(snapshot.Registrar), nullString(snapshot.AbuseContact), ageDays, now.Unix())
	if err != nil {
		return fmt.Errorf("update registration data: %w", err)
	}

	return nil
}

// UpdatePreview stores a rendered-preview reference on the cache row,
// inserting the row when absent. Only preview_path is touched on conflict.
func (s *Store) UpdatePreview(ctx context.Context, fingerprint string, previewPath string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return errors.New("cache fingerprint is required")
	}

	now := time.Now().UTC()
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO reputation_cache (fingerprint, verdict, preview_path, created_at)
		VALUES (?, 'UNKNOWN', ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			preview_path = excluded.preview_path
	`, fingerprint, previewPath, now.Unix())
	if err != nil {
		return fmt.Errorf("update preview path: %w", err)
	}

	return nil
}

func nullString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
