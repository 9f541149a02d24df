package preview

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFingerprint = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func TestSaveAndResolve(t *testing.T) {
	s := &Storage{Dir: t.TempDir()}

	publicPath, err := s.Save([]byte("png-bytes"), testFingerprint)
	require.NoError(t, err)
	assert.Equal(t, "/api/screenshots/"+testFingerprint+".png", publicPath)

	local, err := s.Resolve(testFingerprint + ".png")
	require.NoError(t, err)
	data, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestSaveRejectsNonFingerprint(t *testing.T) {
	s := &Storage{Dir: t.TempDir()}
	_, err := s.Save([]byte("x"), "../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestResolveRejectsTraversal(t *testing.T) {
	s := &Storage{Dir: t.TempDir()}

	for _, name := range []string{
		"../secret.png",
		testFingerprint,
		strings.ToUpper(testFingerprint) + ".png",
		"short.png",
	} {
		_, err := s.Resolve(name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestResolveMissingFile(t *testing.T) {
	s := &Storage{Dir: t.TempDir()}
	_, err := s.Resolve(testFingerprint + ".png")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidName)
}
