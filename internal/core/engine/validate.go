package engine

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/prolifel/ceker/internal/core/store"
)

// TLDRegistry looks up recognized top-level domains. A nil record means
// the TLD is not registered.
type TLDRegistry interface {
	GetTLD(ctx context.Context, tld string) (*store.TLDRecord, error)
}

// commonSecondLevels are second-level labels that combine with a country
// TLD into an effective two-part TLD (co.id, go.id, ac.uk, ...).
var commonSecondLevels = map[string]struct{}{
	"ac": {}, "biz": {}, "co": {}, "desa": {}, "go": {}, "my": {},
	"net": {}, "or": {}, "sch": {}, "web": {},
	"com": {}, "org": {}, "gov": {}, "edu": {}, "mil": {},
	"ltd": {}, "me": {}, "nhs": {}, "plc": {}, "police": {},
}

var lettersOnly = regexp.MustCompile(`^[a-z]+$`)

// TLDValidation is the outcome of validating a hostname's extension.
type TLDValidation struct {
	Valid  bool
	Reason string
	// TLD is the effective extension with a leading dot, two-part when a
	// known second-level label is present.
	TLD string
}

// ValidateTLD checks that the hostname carries a recognized extension.
// The base TLD must exist in the registry; the effective TLD, with dots
// stripped, must contain letters only.
func ValidateTLD(ctx context.Context, registry TLDRegistry, hostname string) (TLDValidation, error) {
	parts := strings.Split(strings.ToLower(hostname), ".")
	if len(parts) < 2 {
		return TLDValidation{Reason: "could not extract TLD from hostname"}, nil
	}

	baseTLD := "." + parts[len(parts)-1]

	record, err := registry.GetTLD(ctx, baseTLD)
	if err != nil {
		return TLDValidation{}, fmt.Errorf("lookup tld %q: %w", baseTLD, err)
	}
	if record == nil {
		return TLDValidation{
			Reason: fmt.Sprintf("TLD '%s' is not recognized", baseTLD),
			TLD:    baseTLD,
		}, nil
	}

	tld := baseTLD
	if len(parts) >= 3 {
		if _, ok := commonSecondLevels[parts[len(parts)-2]]; ok {
			tld = "." + parts[len(parts)-2] + baseTLD
		}
	}

	if !lettersOnly.MatchString(strings.ReplaceAll(tld, ".", "")) {
		return TLDValidation{
			Reason: "TLD contains invalid characters (only letters allowed)",
			TLD:    tld,
		}, nil
	}

	return TLDValidation{Valid: true, TLD: tld}, nil
}
