package directory

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"support-desk/domain"

	deskerrors "support-desk/errors"
)

// Lister is the slice of the directory REST client the poller needs.
type Lister interface {
	Rooms(ctx context.Context) ([]domain.RoomSummary, error)
	OnlineAgents(ctx context.Context) ([]domain.AgentPresence, error)
}

// Poller refreshes the cache on two fixed cadences: the room listing
// and the agent presence list. Fetches run on the poller goroutine; the
// results are applied through the session event loop so refreshes
// serialize with live patches. A refresh failure is non-fatal and
// leaves the last-known cache in place.
type Poller struct {
	log         *slog.Logger
	lister      Lister
	cache       *Cache
	apply       func(func())
	roomsEvery  time.Duration
	agentsEvery time.Duration

	onUnauthorized func()
	onChange       func()
}

func NewPoller(log *slog.Logger, lister Lister, cache *Cache, apply func(func()),
	roomsEvery, agentsEvery time.Duration, onUnauthorized, onChange func()) *Poller {
	return &Poller{
		log:            log,
		lister:         lister,
		cache:          cache,
		apply:          apply,
		roomsEvery:     roomsEvery,
		agentsEvery:    agentsEvery,
		onUnauthorized: onUnauthorized,
		onChange:       onChange,
	}
}

// Run implements runtime.Worker. Returns nil on context cancel and on
// session invalidation: an invalidated credential must not be retried,
// so the worker finishes instead of being restarted.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.pollRooms(ctx); err != nil {
		return p.fail(err)
	}
	if err := p.pollAgents(ctx); err != nil {
		return p.fail(err)
	}

	rooms := time.NewTicker(p.roomsEvery)
	defer rooms.Stop()
	agents := time.NewTicker(p.agentsEvery)
	defer agents.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-rooms.C:
			if err := p.pollRooms(ctx); err != nil {
				return p.fail(err)
			}
		case <-agents.C:
			if err := p.pollAgents(ctx); err != nil {
				return p.fail(err)
			}
		}
	}
}

// fail ends the polling loop. Only credential invalidation reaches
// here: the poll helpers swallow transient errors themselves and keep
// the loop running.
func (p *Poller) fail(err error) error {
	p.log.Warn("Directory credential invalidated, stopping poller", "error", err)
	if p.onUnauthorized != nil {
		p.onUnauthorized()
	}
	return nil
}

func (p *Poller) pollRooms(ctx context.Context) error {
	rooms, err := p.lister.Rooms(ctx)
	if err != nil {
		if errors.Is(err, deskerrors.ErrUnauthorized) {
			return err
		}
		p.log.Warn("Room listing failed, keeping cached directory", "error", err)
		return nil
	}
	p.apply(func() {
		p.cache.Refresh(rooms)
		if p.onChange != nil {
			p.onChange()
		}
	})
	return nil
}

func (p *Poller) pollAgents(ctx context.Context) error {
	agents, err := p.lister.OnlineAgents(ctx)
	if err != nil {
		if errors.Is(err, deskerrors.ErrUnauthorized) {
			return err
		}
		p.log.Warn("Agent listing failed, keeping cached presence", "error", err)
		return nil
	}
	p.apply(func() {
		p.cache.RefreshAgents(agents)
		if p.onChange != nil {
			p.onChange()
		}
	})
	return nil
}
