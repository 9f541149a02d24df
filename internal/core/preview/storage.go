package preview

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrInvalidName is returned for screenshot names that are not hex
// fingerprints. It blocks path traversal through the serving route.
var ErrInvalidName = errors.New("invalid screenshot name")

var fingerprintRe = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Storage persists screenshots on the local filesystem. The public path it
// returns is the API route a client fetches the image from.
type Storage struct {
	Dir string
}

// Save writes PNG bytes under the fingerprint and returns the public path.
func (s *Storage) Save(data []byte, fingerprint string) (string, error) {
	if !fingerprintRe.MatchString(fingerprint) {
		return "", ErrInvalidName
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}

	filename := fingerprint + ".png"
	if err := os.WriteFile(filepath.Join(s.Dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}

	return "/api/screenshots/" + filename, nil
}

// Resolve maps a requested filename back to a local path, rejecting
// anything that is not a stored screenshot name.
func (s *Storage) Resolve(name string) (string, error) {
	base := strings.TrimSuffix(name, ".png")
	if !strings.HasSuffix(name, ".png") || !fingerprintRe.MatchString(base) {
		return "", ErrInvalidName
	}

	path := filepath.Join(s.Dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}
