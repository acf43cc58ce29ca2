package urlnorm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReachable(t *testing.T) {
	var gotMethod, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAgent = r.UserAgent()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewProberWithClient(srv.Client())
	assert.True(t, p.Reachable(context.Background(), srv.URL))
	assert.Equal(t, http.MethodHead, gotMethod)
	assert.Equal(t, browserUserAgent, gotAgent)
}

func TestReachableNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewProberWithClient(srv.Client())
	assert.False(t, p.Reachable(context.Background(), srv.URL))
}

func TestReachableNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewProber(0)
	assert.False(t, p.Reachable(context.Background(), url))
}

func TestReachableBadURL(t *testing.T) {
	p := NewProber(0)
	assert.False(t, p.Reachable(context.Background(), "://not-a-url"))
}
