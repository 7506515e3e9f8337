package client

import (
	"context"
	"time"
)

// DefaultPollInterval matches the tracker's refresh rate.
const DefaultPollInterval = 60 * time.Second

// Update is delivered to the poller's callback on every successful tick: the
// fresh server snapshot plus the recomputed delivery countdown.
type Update struct {
	Snapshot  Snapshot
	Remaining *time.Duration
}

// Poller keeps a displayed order in sync with server truth. It fetches once
// immediately, then on a fixed interval, replacing the snapshot wholesale
// each time. Fetches run sequentially inside the loop, so a slow request can
// never overlap the next tick's; missed ticks are simply dropped.
type Poller struct {
	client   *Client
	orderId  uint
	interval time.Duration
	now      func() time.Time

	OnUpdate func(Update)
	OnError  func(error)
}

func NewPoller(c *Client, orderId uint, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		client:   c,
		orderId:  orderId,
		interval: interval,
		now:      time.Now,
	}
}

// WithClock injects the time source used for countdown computation.
func (p *Poller) WithClock(now func() time.Time) *Poller {
	p.now = now
	return p
}

// Run polls until ctx is cancelled. Cancelling the context is the only way
// to stop the poller, and it stops deterministically: no fetch is started
// after ctx is done.
func (p *Poller) Run(ctx context.Context) {
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	snapshot, err := p.client.GetOrder(ctx, p.orderId)
	if err != nil {
		if p.OnError != nil {
			p.OnError(err)
		}
		return
	}
	if p.OnUpdate != nil {
		p.OnUpdate(Update{
			Snapshot:  snapshot,
			Remaining: Remaining(p.now(), snapshot.Order.DeliverySlot),
		})
	}
}
