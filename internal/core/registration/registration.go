// Package registration resolves domain registration facts (creation date,
// expiry, registrar, abuse contact) via RDAP with a WHOIS fallback.
package registration

import (
	"context"
	"errors"
	"strings"
	"time"

	whois "github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/openrdap/rdap"

	"github.com/prolifel/ceker/internal/core"
)

// ErrNoRegistrationData is returned when neither RDAP nor WHOIS produced a
// usable creation date for the domain.
var ErrNoRegistrationData = errors.New("no registration data for domain")

const defaultTimeout = 5 * time.Second

// Lookuper resolves registration facts for a registrable domain.
type Lookuper interface {
	Lookup(ctx context.Context, domain string) (*core.RegistrationSnapshot, error)
}

// Resolver queries RDAP first and falls back to WHOIS when RDAP has no
// answer for the TLD or the request fails.
type Resolver struct {
	Client  *rdap.Client
	Timeout time.Duration
	Clock   func() time.Time

	// whoisQuery is swappable in tests.
	whoisQuery func(domain string) (string, error)
}

// NewResolver returns a Resolver with the default RDAP client and WHOIS
// transport.
func NewResolver(timeout time.Duration) *Resolver {
	return &Resolver{
		Client:     &rdap.Client{},
		Timeout: timeout,
		whoisQuery: func(domain string) (string, error) {
			return whois.Whois(domain)
		},
	}
}

// Lookup resolves registration facts for the given registrable domain.
func (r *Resolver) Lookup(ctx context.Context, domain string) (*core.RegistrationSnapshot, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, errors.New("domain is required")
	}

	if snapshot, err := r.lookupRDAP(ctx, domain); err == nil && snapshot != nil {
		return snapshot, nil
	}

	snapshot, err := r.lookupWhois(domain)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *Resolver) lookupRDAP(ctx context.Context, domain string) (*core.RegistrationSnapshot, error) {
	client := r.Client
	if client == nil {
		client = &rdap.Client{}
	}

	req := rdap.NewDomainRequest(domain)
	if timeout := r.timeout(); timeout > 0 {
		req.Timeout = timeout
	}
	req = req.WithContext(ctx)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	rdapDomain, ok := resp.Object.(*rdap.Domain)
	if !ok {
		return nil, errors.New("unexpected rdap response object")
	}

	snapshot := &core.RegistrationSnapshot{
		Registrar:    registrarName(rdapDomain),
		AbuseContact: abuseContact(rdapDomain),
	}
	if created := parseEventDate(rdapDomain.Events, "registration"); created != nil {
		snapshot.Created = created
	}
	if expires := parseEventDate(rdapDomain.Events, "expiration"); expires != nil {
		snapshot.Expires = expires
	}

	if snapshot.Created == nil {
		return nil, ErrNoRegistrationData
	}

	r.fillAge(snapshot)
	return snapshot, nil
}

func (r *Resolver) lookupWhois(domain string) (*core.RegistrationSnapshot, error) {
	query := r.whoisQuery
	if query == nil {
		query = func(domain string) (string, error) {
			return whois.Whois(domain)
		}
	}

	raw, err := query(domain)
	if err != nil {
		return nil, err
	}

	parsed, err := whoisparser.Parse(raw)
	if err != nil || parsed.Domain == nil {
		return nil, ErrNoRegistrationData
	}

	snapshot := &core.RegistrationSnapshot{
		Created: parseWhoisDate(parsed.Domain.CreatedDate),
		Expires: parseWhoisDate(parsed.Domain.ExpirationDate),
	}
	if parsed.Registrar != nil {
		snapshot.Registrar = strings.TrimSpace(parsed.Registrar.Name)
		if snapshot.AbuseContact == "" {
			snapshot.AbuseContact = strings.TrimSpace(parsed.Registrar.Email)
		}
	}

	if snapshot.Created == nil {
		return nil, ErrNoRegistrationData
	}

	r.fillAge(snapshot)
	return snapshot, nil
}

func (r *Resolver) fillAge(snapshot *core.RegistrationSnapshot) {
	if snapshot == nil || snapshot.Created == nil {
		return
	}
	age := int(r.now().Sub(*snapshot.Created).Hours() / 24)
	snapshot.AgeDays = &age
}

func (r *Resolver) now() time.Time {
	if r != nil && r.Clock != nil {
		return r.Clock()
	}
	return time.Now().UTC()
}

func (r *Resolver) timeout() time.Duration {
	if r != nil && r.Timeout > 0 {
		return r.Timeout
	}
	return defaultTimeout
}

func registrarName(domain *rdap.Domain) string {
	if domain == nil {
		return ""
	}
	for _, entity := range domain.Entities {
		for _, role := range entity.Roles {
			if role == "registrar" && entity.VCard != nil {
				return entity.VCard.Name()
			}
		}
	}
	return ""
}

// abuseContact walks entities, including the registrar's nested contacts,
// for an abuse role with an email.
func abuseContact(domain *rdap.Domain) string {
	if domain == nil {
		return ""
	}
	var walk func(entities []rdap.Entity) string
	walk = func(entities []rdap.Entity) string {
		for _, entity := range entities {
			for _, role := range entity.Roles {
				if role != "abuse" || entity.VCard == nil {
					continue
				}
				if email := strings.TrimSpace(entity.VCard.Email()); email != "" {
					return email
				}
			}
			if nested := walk(entity.Entities); nested != "" {
				return nested
			}
		}
		return ""
	}
	return walk(domain.Entities)
}

func parseEventDate(events []rdap.Event, action string) *time.Time {
	for _, event := range events {
		if event.Action != action {
			continue
		}
		if parsed, err := time.Parse(time.RFC3339, event.Date); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}

// whoisDateLayouts covers the formats registries actually emit.
var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

func parseWhoisDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range whoisDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}
