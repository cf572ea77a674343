package clock

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"PaperTracker/internal/ports"
)

const (
	defaultProbeURL = "https://arxiv.org"
	maxSkew         = 48 * time.Hour
)

// SkewClock reports the current time, corrected against the upstream server
// when the local clock has drifted badly. Hosts with years-stale clocks
// would otherwise fetch the wrong day forever.
type SkewClock struct {
	client   *http.Client
	probeURL string
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.Clock = (*SkewClock)(nil)

func NewSkewClock(client *http.Client, logger *slog.Logger) *SkewClock {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SkewClock{
		client:   client,
		probeURL: defaultProbeURL,
		logger:   logger,
		now:      time.Now,
	}
}

// Now returns the local time unless it runs ahead of the upstream Date
// header by more than the skew threshold, in which case the server time
// wins. A clock running behind is left alone: fetching an older day is
// harmless, fetching a future day returns nothing forever. Probe failures
// fall back to local time.
func (c *SkewClock) Now(ctx context.Context) time.Time {
	local := c.now().UTC()

	server, ok := c.serverTime(ctx)
	if !ok {
		return local
	}

	drift := local.Sub(server)
	if drift > maxSkew {
		if c.logger != nil {
			c.logger.Warn("local clock skewed, using server time",
				"local", local, "server", server, "drift", drift)
		}
		return server
	}
	return local
}

// Today returns the skew-corrected current date at UTC midnight.
func (c *SkewClock) Today(ctx context.Context) time.Time {
	now := c.Now(ctx)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (c *SkewClock) serverTime(ctx context.Context) (time.Time, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.probeURL, nil)
	if err != nil {
		return time.Time{}, false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return time.Time{}, false
	}
	defer resp.Body.Close()

	header := resp.Header.Get("Date")
	if header == "" {
		return time.Time{}, false
	}

	server, err := http.ParseTime(header)
	if err != nil {
		return time.Time{}, false
	}
	return server.UTC(), true
}
