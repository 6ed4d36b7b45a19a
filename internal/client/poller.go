package client

import (
	"context"
	"strconv"
	"time"

	"github.com/starford/docdesk/internal/models"
)

// DefaultInterval is the notification refresh period.
const DefaultInterval = time.Minute

// Snapshot is the result of one poll.
type Snapshot struct {
	Count  int
	Recent []models.Notification
	Err    error
}

// BadgeVisible reports whether the badge should be shown.
func (s Snapshot) BadgeVisible() bool { return s.Err == nil && s.Count > 0 }

// BadgeText is the badge label; counts above 99 collapse to "99+".
func (s Snapshot) BadgeText() string {
	switch {
	case !s.BadgeVisible():
		return ""
	case s.Count > 99:
		return "99+"
	default:
		return strconv.Itoa(s.Count)
	}
}

// Poller refreshes the notification badge periodically.
type Poller struct {
	c        *Client
	interval time.Duration
	fn       func(Snapshot)
}

// NewPoller creates a poller that hands every snapshot to fn.
func NewPoller(c *Client, interval time.Duration, fn func(Snapshot)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{c: c, interval: interval, fn: fn}
}

// Poll fetches the count and, when it is positive, the recent list.
// Failures end the poll and are reported in the snapshot.
func (p *Poller) Poll(ctx context.Context) Snapshot {
	n, err := p.c.UnreadCount(ctx)
	if err != nil {
		return Snapshot{Err: err}
	}
	snap := Snapshot{Count: n}
	if n > 0 {
		snap.Recent, snap.Err = p.c.Recent(ctx)
	}
	return snap
}

// Run polls immediately and then every interval until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		snap := p.Poll(ctx)
		if ctx.Err() != nil {
			return nil
		}
		p.fn(snap)
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}
