package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"carbusiness-backend/internal/usecase"
)

// ExpiryWorker periodically marks stale pending codes as expired via the use
// case. Redemption stays correct without it (expiry is checked at redeem
// time); the sweep keeps the audit table honest.
type ExpiryWorker struct {
	interval time.Duration
	actUC    usecase.ActivationUseCase
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, actUC usecase.ActivationUseCase, logger *zerolog.Logger) *ExpiryWorker {
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		actUC:    actUC,
		log:      &exprLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.actUC.ExpireStale(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("expiry worker error")
			}
			if n > 0 {
				w.log.Info().Int64("count", n).Msg("stale activation codes expired")
			}
		}
	}
}
