// Package keepalive pings the bot's public URL so free-tier hosts do not
// idle the process.
package keepalive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const requestTimeout = 10 * time.Second

// Pinger issues a GET against URL every Interval.
type Pinger struct {
	URL      string
	Interval time.Duration
	Client   *http.Client
}

// New creates a pinger. An empty url yields a pinger that does nothing.
func New(url string, interval time.Duration) *Pinger {
	return &Pinger{
		URL:      url,
		Interval: interval,
		Client:   &http.Client{Timeout: requestTimeout},
	}
}

// Enabled reports whether a target URL is configured.
func (p *Pinger) Enabled() bool { return p.URL != "" && p.Interval > 0 }

// Run pings until ctx is done. It always returns nil so it can sit in an
// errgroup next to the real servers.
func (p *Pinger) Run(ctx context.Context) error {
	if !p.Enabled() {
		slog.Info("Keepalive disabled (KOYEP_URL not set)")
		return nil
	}

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	slog.Info("Keepalive started", "url", p.URL, "interval", p.Interval)

	for {
		select {
		case <-ticker.C:
			if err := p.Ping(ctx); err != nil {
				slog.Debug("Keepalive ping failed", "error", err)
			}
		case <-ctx.Done():
			slog.Info("Keepalive shutting down", "reason", ctx.Err())
			return nil
		}
	}
}

// Ping performs a single request.
func (p *Pinger) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", p.URL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("get %s: status %d", p.URL, resp.StatusCode)
	}
	return nil
}
