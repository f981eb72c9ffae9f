package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// Run calls Tick every interval until ctx is cancelled. A non-positive
// interval returns immediately.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.log.InfoContext(ctx, "scheduler runner started", slog.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.InfoContext(ctx, "scheduler runner stopped")
			return
		case <-ticker.C:
			s.tickOnce(ctx)
		}
	}
}

func (s *Service) tickOnce(ctx context.Context) {
	result, ran, err := s.Tick(ctx)
	switch {
	case errors.Is(err, domain.ErrConflict):
		s.log.InfoContext(ctx, "scheduled tick skipped, run in progress")
	case err != nil:
		s.log.ErrorContext(ctx, "scheduled tick failed", slog.String("error", err.Error()))
	case ran && result != nil:
		s.log.InfoContext(ctx, "scheduled tick ran backup", slog.Int("cleaned_up", result.CleanedUpCount))
	}
}
