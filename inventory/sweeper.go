package inventory

import (
	"context"
	"time"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/log"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/metrics"
)

const DefaultSweepInterval = 30 * time.Second

// TicketExpirer closes the admission window for tickets of ended events.
type TicketExpirer interface {
	ExpireForEndedEvents(ctx context.Context, now time.Time) ([]string, error)
}

// Sweeper periodically reclaims stock held by expired reservations, so
// abandoned checkouts return their units without any user action. With a
// ticket expirer attached it also expires active tickets of ended events.
type Sweeper struct {
	repo     Repository
	tickets  TicketExpirer
	interval time.Duration
	now      func() time.Time
}

type SweeperOption func(*Sweeper)

func WithTicketExpirer(tickets TicketExpirer) SweeperOption {
	return func(s *Sweeper) {
		s.tickets = tickets
	}
}

func NewSweeper(repo Repository, interval time.Duration, opts ...SweeperOption) *Sweeper {
	if repo == nil {
		panic("missing repo")
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	sweeper := &Sweeper{
		repo:     repo,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(sweeper)
	}

	return sweeper
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			swept, err := s.repo.SweepExpired(ctx, s.now())
			if err != nil {
				log.FromContext(ctx).WithError(err).Error("failed to sweep expired reservations")
				continue
			}
			if len(swept) > 0 {
				metrics.ReservationsExpired.Add(float64(len(swept)))
				log.FromContext(ctx).WithField("count", len(swept)).Info("reclaimed expired reservations")
			}

			if s.tickets == nil {
				continue
			}
			expired, err := s.tickets.ExpireForEndedEvents(ctx, s.now())
			if err != nil {
				log.FromContext(ctx).WithError(err).Error("failed to expire tickets of ended events")
				continue
			}
			if len(expired) > 0 {
				log.FromContext(ctx).WithField("count", len(expired)).Info("expired tickets of ended events")
			}
		}
	}
}
