package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHeadReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := &Prober{HTTPClient: srv.Client()}
	result := p.Head(context.Background(), srv.URL)
	assert.True(t, result.Reachable)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.NoError(t, result.Err)
}

func TestHeadErrorStatusIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := &Prober{HTTPClient: srv.Client()}
	result := p.Head(context.Background(), srv.URL)
	assert.False(t, result.Reachable)
	assert.Equal(t, http.StatusServiceUnavailable, result.StatusCode)
	assert.NoError(t, result.Err)
}

func TestHeadTimeoutDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	p := &Prober{HTTPClient: srv.Client(), Timeout: 20 * time.Millisecond}
	result := p.Head(context.Background(), srv.URL)
	assert.False(t, result.Reachable)
	assert.Error(t, result.Err)
}

func TestHeadInvalidURL(t *testing.T) {
	p := &Prober{}
	result := p.Head(context.Background(), "http://\x7f")
	assert.False(t, result.Reachable)
	assert.Error(t, result.Err)
}
