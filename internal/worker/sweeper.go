package worker

import (
	"context"
	"time"

	"bstn/internal/models"

	"github.com/rs/zerolog"
)

// Completer completes confirmed bookings whose stay is over.
type Completer interface {
	AutoComplete(ctx context.Context) (int64, error)
}

// Sweeper triggers auto-completion on a fixed interval, in addition to the
// runs done ahead of booking list reads.
type Sweeper struct {
	completer Completer
	interval  time.Duration
	logger    *zerolog.Logger
}

func NewSweeper(completer Completer, interval time.Duration, logger *zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = models.DefaultSweepInterval * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Sweeper{completer: completer, interval: interval, logger: logger}
}

// Start sweeps once right away, then every interval until ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("sweeper started")
	defer s.logger.Info().Msg("sweeper stopped")

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep and returns the number of completed bookings.
func (s *Sweeper) RunOnce(ctx context.Context) int64 {
	n, err := s.completer.AutoComplete(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("sweep failed")
		return 0
	}
	if n > 0 {
		s.logger.Debug().Int64("completed", n).Msg("sweep done")
	}
	return n
}
