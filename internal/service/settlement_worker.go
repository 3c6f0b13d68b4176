package service

import (
	"context"
	"time"

	"paynest/internal/core/ports"

	"github.com/rs/zerolog"
)

// SettlementWorker periodically sweeps for transfers that outlived the
// proof timeout and fails them, releasing their reserved funds.
type SettlementWorker struct {
	settlementSvc ports.SettlementService
	interval      time.Duration
	log           zerolog.Logger
}

// NewSettlementWorker creates a new SettlementWorker.
func NewSettlementWorker(settlementSvc ports.SettlementService, interval time.Duration, log zerolog.Logger) *SettlementWorker {
	return &SettlementWorker{
		settlementSvc: settlementSvc,
		interval:      interval,
		log:           log,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
// Each overdue transfer is released in its own unit of work; a failed
// release is logged here and retried on the next tick, and the
// conditional status updates make any re-run safe.
func (w *SettlementWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info().Dur("interval", w.interval).Msg("settlement expiry worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("settlement expiry worker stopped")
			return
		case <-ticker.C:
			expired, err := w.settlementSvc.ExpireOverdue(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("expiry sweep failed")
				continue
			}
			if expired > 0 {
				w.log.Info().Int("expired", expired).Msg("expiry sweep released overdue transfers")
			}
		}
	}
}
