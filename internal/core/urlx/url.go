// Package urlx provides URL normalization, fingerprinting, and registrable
// root-domain extraction for the classification pipeline.
package urlx

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidFormat is returned when an input cannot be parsed into a URL
// with a hostname.
var ErrInvalidFormat = errors.New("invalid url format")

const defaultScheme = "https"

var ipv4Pattern = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

// NormalizedURL is a parsed, validated input URL. Hostname is lowercased;
// the scheme defaults to https when the raw input carried none.
type NormalizedURL struct {
	Scheme   string
	Hostname string
	Path     string
	Raw      string
}

// Secure reports whether the URL uses an encrypted-transport scheme.
func (u NormalizedURL) Secure() bool {
	return u.Scheme == "https"
}

// String reassembles the normalized URL for display, fingerprinting, and
// outbound requests.
func (u NormalizedURL) String() string {
	return u.Scheme + "://" + u.Hostname + u.Path
}

// Normalize trims the input, prepends the default scheme when no scheme
// delimiter is present, and parses the result. It fails with
// ErrInvalidFormat when no hostname can be extracted.
func Normalize(input string) (NormalizedURL, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return NormalizedURL{}, ErrInvalidFormat
	}

	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = defaultScheme + "://" + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return NormalizedURL{}, ErrInvalidFormat
	}

	hostname := strings.ToLower(parsed.Hostname())
	if hostname == "" {
		return NormalizedURL{}, ErrInvalidFormat
	}

	return NormalizedURL{
		Scheme:   strings.ToLower(parsed.Scheme),
		Hostname: hostname,
		Path:     parsed.Path,
		Raw:      raw,
	}, nil
}

// Fingerprint returns the hex sha256 digest of the normalized URL string.
// It is deterministic and used only as a cache key.
func Fingerprint(u NormalizedURL) string {
	sum := sha256.Sum256([]byte(u.String()))
	return hex.EncodeToString(sum[:])
}

// IsIPv4Host reports whether the hostname is a dotted-quad IP literal.
func IsIPv4Host(hostname string) bool {
	return ipv4Pattern.MatchString(hostname)
}
