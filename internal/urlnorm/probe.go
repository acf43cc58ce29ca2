package urlnorm

import (
	"context"
	"net/http"
	"time"

	"stockflow-importer/internal/util"

	"go.uber.org/zap"
)

// Retailers block requests without a browser-looking agent.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

// DefaultProbeTimeout bounds a reachability probe.
const DefaultProbeTimeout = 10 * time.Second

// Prober checks whether a provider URL answers HTTP HEAD requests.
type Prober struct {
	client *http.Client
}

// NewProber creates a prober with the given timeout; zero means the
// default 10 seconds.
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Prober{client: &http.Client{Timeout: timeout}}
}

// NewProberWithClient is used by tests to inject a client.
func NewProberWithClient(client *http.Client) *Prober {
	return &Prober{client: client}
}

// Reachable issues a HEAD request and reports whether the URL answered
// 200. Any network failure yields false, never an error; an offline
// provider is recorded inactive, not fatal.
func (p *Prober) Reachable(ctx context.Context, rawURL string) bool {
	start := time.Now()
	defer func() {
		util.ProbeLatency.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		util.ProbeFailuresTotal.Inc()
		return false
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		util.GetLogger().Debug("reachability probe failed",
			zap.String("url", rawURL),
			zap.Error(err))
		util.ProbeFailuresTotal.Inc()
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		util.ProbeFailuresTotal.Inc()
		return false
	}
	return true
}
