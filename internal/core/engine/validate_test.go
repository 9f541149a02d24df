package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTLD(t *testing.T) {
	registry := &stubTLDs{known: map[string]bool{".com": true, ".id": true, ".uk": true, ".tk": true}}

	tests := []struct {
		name       string
		hostname   string
		wantValid  bool
		wantTLD    string
		wantReason string
	}{
		{
			name:      "plain recognized tld",
			hostname:  "example.com",
			wantValid: true,
			wantTLD:   ".com",
		},
		{
			name:      "effective two-part tld",
			hostname:  "bank.co.id",
			wantValid: true,
			wantTLD:   ".co.id",
		},
		{
			name:      "second level not in the common set stays single",
			hostname:  "mail.example.id",
			wantValid: true,
			wantTLD:   ".id",
		},
		{
			name:      "uppercase hostname is normalized",
			hostname:  "EXAMPLE.COM",
			wantValid: true,
			wantTLD:   ".com",
		},
		{
			name:       "unrecognized tld",
			hostname:   "example.zz",
			wantTLD:    ".zz",
			wantReason: "TLD '.zz' is not recognized",
		},
		{
			name:       "no dot in hostname",
			hostname:   "localhost",
			wantReason: "could not extract TLD from hostname",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateTLD(context.Background(), registry, tt.hostname)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			assert.Equal(t, tt.wantTLD, result.TLD)
			assert.Equal(t, tt.wantReason, result.Reason)
		})
	}
}

func TestValidateTLDRegistryFailurePropagates(t *testing.T) {
	registry := &stubTLDs{err: errors.New("db locked")}

	_, err := ValidateTLD(context.Background(), registry, "example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db locked")
}
