// Package statsclient polls a timerd server for its session statistics.
package statsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/habitcanvas/timerd/internal/model"
)

// DefaultInterval is how often Run refreshes the stats.
const DefaultInterval = 30 * time.Second

const requestTimeout = 10 * time.Second

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the polling cadence. Non-positive values keep the default.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Poller) {
		if c != nil {
			p.client = c
		}
	}
}

// WithOnUpdate registers a callback invoked with every successfully fetched
// summary, on the goroutine running Run.
func WithOnUpdate(fn func(*model.SessionStats)) Option {
	return func(p *Poller) {
		p.onUpdate = fn
	}
}

// Poller fetches GET /v1/stats on a fixed cadence and keeps the latest
// summary. A failed fetch is logged and the previous summary retained.
type Poller struct {
	url      string
	client   *http.Client
	interval time.Duration
	logger   *slog.Logger
	onUpdate func(*model.SessionStats)

	mu     sync.RWMutex
	latest *model.SessionStats
}

// New creates a poller for the server at baseURL.
func New(baseURL string, logger *slog.Logger, opts ...Option) *Poller {
	p := &Poller{
		url:      strings.TrimRight(baseURL, "/") + "/v1/stats",
		client:   &http.Client{Timeout: requestTimeout},
		interval: DefaultInterval,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fetch retrieves the current summary once.
func (p *Poller) Fetch(ctx context.Context) (*model.SessionStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("get stats: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var stats model.SessionStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return &stats, nil
}

// Run fetches immediately and then on every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.refresh(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Latest returns the most recent summary, or nil before the first
// successful fetch.
func (p *Poller) Latest() *model.SessionStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

func (p *Poller) refresh(ctx context.Context) {
	stats, err := p.Fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("stats poll failed", "url", p.url, "error", err)
		}
		return
	}

	p.mu.Lock()
	p.latest = stats
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(stats)
	}
}
