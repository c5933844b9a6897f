// Package health probes the monitored service endpoints.
package health

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/vaporshelf/edge/internal/utils"
)

// Target is one monitored endpoint from the site data file.
type Target struct {
	Name string
	URL  string
}

// Reachability states.
const (
	StatusOnline  = "online"
	StatusSlow    = "slow"
	StatusOffline = "offline"
)

// Record is the outcome of probing one target.
type Record struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Latency   int64  `json:"latency"` // milliseconds
	LastCheck string `json:"lastCheck"`
}

// Prober runs bounded HTTP probes against targets. Each probe carries its own
// timeout; exceeding it marks the target offline. Probe never returns an
// error, failures classify into the record status.
type Prober struct {
	client        *http.Client
	timeout       time.Duration
	slowThreshold time.Duration
	now           func() time.Time
}

// NewProber builds a prober with a dedicated short-lived HTTP client.
// A nil clock defaults to time.Now.
func NewProber(timeout, slowThreshold time.Duration, now func() time.Time) *Prober {
	if now == nil {
		now = time.Now
	}
	return &Prober{
		client:        newProbeClient(timeout),
		timeout:       timeout,
		slowThreshold: slowThreshold,
		now:           now,
	}
}

// newProbeClient builds an HTTP client suited for one-shot probes: bounded
// dial and handshake, no connection reuse, no redirect following.
func newProbeClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 0,
				}).DialContext(ctx, network, addr)
			},
			TLSHandshakeTimeout: timeout,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			DisableKeepAlives: true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Probe checks a single target synchronously and classifies the result.
func (p *Prober) Probe(ctx context.Context, target Target) Record {
	rec := Record{
		Name:      target.Name,
		LastCheck: p.now().UTC().Format(time.RFC3339),
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := p.now()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, target.URL, http.NoBody)
	if err != nil {
		rec.Status = StatusOffline
		return rec
	}

	resp, err := p.client.Do(req)
	elapsed := p.now().Sub(start)
	if elapsed > p.timeout || probeCtx.Err() != nil {
		// A timed-out probe reports the full timeout bound as its latency.
		elapsed = p.timeout
	}
	rec.Latency = elapsed.Milliseconds()
	if err != nil {
		// Timeouts and transport errors are the same outcome: unreachable.
		rec.Status = StatusOffline
		return rec
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		rec.Status = StatusOffline
		return rec
	}

	if time.Duration(rec.Latency)*time.Millisecond > p.slowThreshold {
		rec.Status = StatusSlow
		return rec
	}

	rec.Status = StatusOnline
	return rec
}
