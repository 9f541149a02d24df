package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prolifel/ceker/internal/config"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StoreConfig
		want    string
		wantErr bool
	}{
		{
			name: "url wins over path",
			cfg:  config.StoreConfig{URL: "libsql://ceker.turso.io?authToken=x", Path: "ignored.db"},
			want: "libsql://ceker.turso.io?authToken=x",
		},
		{
			name: "auth token appended to remote url",
			cfg:  config.StoreConfig{URL: "libsql://ceker.turso.io", AuthToken: "token123"},
			want: "libsql://ceker.turso.io?authToken=token123",
		},
		{
			name: "auth token never overrides one already in the url",
			cfg:  config.StoreConfig{URL: "libsql://ceker.turso.io?authToken=existing", AuthToken: "token123"},
			want: "libsql://ceker.turso.io?authToken=existing",
		},
		{
			name: "auth token ignored for local path",
			cfg:  config.StoreConfig{Path: "ceker.db", AuthToken: "token123"},
			want: "file:ceker.db",
		},
		{
			name: "memory passthrough",
			cfg:  config.StoreConfig{Path: ":memory:"},
			want: ":memory:",
		},
		{
			name: "file prefix passthrough",
			cfg:  config.StoreConfig{Path: "file:ceker.db"},
			want: "file:ceker.db",
		},
		{
			name: "bare path gets file prefix",
			cfg:  config.StoreConfig{Path: "ceker.db"},
			want: "file:ceker.db",
		},
		{
			name:    "missing path and url",
			cfg:     config.StoreConfig{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn, err := buildDSN(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, dsn)
		})
	}
}

func TestBuildDSNUnsupportedDriverRejected(t *testing.T) {
	_, err := Open(nil, config.StoreConfig{Driver: "postgres", Path: ":memory:"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestNormalizeTLD(t *testing.T) {
	assert.Equal(t, ".com", normalizeTLD("com"))
	assert.Equal(t, ".com", normalizeTLD(".COM "))
	assert.Equal(t, ".co.id", normalizeTLD("co.id"))
	assert.Equal(t, "", normalizeTLD("."))
	assert.Equal(t, "", normalizeTLD("  "))
}
