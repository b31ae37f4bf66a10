package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/jdw0903/EasyLFG/internal/core/ports"
)

const DefaultSweepInterval = 5 * time.Minute

// Sweeper purge périodiquement les posts expirés, même sans lecture.
// Le balayage à la lecture est fait par PostRepository.ListActive.
type Sweeper struct {
	repo     ports.PostRepository
	interval time.Duration
	now      ports.Clock
}

func NewSweeper(repo ports.PostRepository, interval time.Duration, clock ports.Clock) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if clock == nil {
		clock = time.Now
	}
	return &Sweeper{repo: repo, interval: interval, now: clock}
}

// SweepOnce est idempotent.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	removed := s.repo.Sweep(ctx, s.now())
	if removed > 0 {
		slog.Debug("🧹 Expired posts swept", "count", removed)
	}
	return removed
}

// Run bloque jusqu'à l'annulation de ctx.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("🧹 Sweeper started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("🧹 Sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}
