package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/wrtmon/wrtmon/internal/model"
)

// Source produces one snapshot per poll cycle.
type Source interface {
	Poll(ctx context.Context) model.Snapshot
}

// Sink receives every snapshot the poller produces.
type Sink interface {
	Publish(snapshot model.Snapshot)
}

// Poller drives the monitor on a fixed cadence and forwards each snapshot
// to the sink. TriggerRefresh forces an immediate cycle.
type Poller struct {
	source    Source
	sink      Sink
	interval  time.Duration
	refreshCh chan struct{}
	logger    *slog.Logger
}

func New(source Source, sink Sink, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		source:    source,
		sink:      sink,
		interval:  interval,
		refreshCh: make(chan struct{}, 1),
		logger:    logger,
	}
}

func (p *Poller) TriggerRefresh() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-p.refreshCh:
			timer.Stop()
		case <-timer.C:
		}
		snapshot := p.source.Poll(ctx)
		if !snapshot.Available {
			p.logger.Warn("poll degraded; gateway unavailable", "poll_id", snapshot.PollID)
		}
		p.sink.Publish(snapshot)
	}
}
