// Package worker maintains the stat_snapshots table from the ledger event
// stream. Snapshots are a read-side cache: losing an event only delays a
// refresh, it never corrupts the ledger.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"iuran/internal/amqp"
	"iuran/internal/core"
	"iuran/internal/ledger"
)

// SnapshotWorker recomputes period snapshots when ledger events arrive and
// on a fallback interval, so snapshots converge even when AMQP messages
// are lost.
type SnapshotWorker struct {
	stats     *ledger.StatsService
	snapshots ledger.SnapshotStore

	mu      sync.Mutex
	touched map[core.Period]time.Time
}

func NewSnapshotWorker(stats *ledger.StatsService, snapshots ledger.SnapshotStore) *SnapshotWorker {
	return &SnapshotWorker{
		stats:     stats,
		snapshots: snapshots,
		touched:   make(map[core.Period]time.Time),
	}
}

// HandleLedgerEvent recomputes the snapshot for the event's period. Called
// by the AMQP consumer for every expense and payment event.
func (w *SnapshotWorker) HandleLedgerEvent(ctx context.Context, evt *amqp.LedgerEvent) error {
	p := core.Period{Month: evt.Month, Year: evt.Year}
	if err := p.Validate(); err != nil {
		// A malformed event is dropped, not retried: redelivery cannot fix it.
		slog.WarnContext(ctx, "Dropping ledger event with invalid period",
			"kind", string(evt.Kind),
			"entity_id", evt.EntityID,
			"month", evt.Month,
			"year", evt.Year)
		return nil
	}

	slog.InfoContext(ctx, "Processing ledger event",
		"kind", string(evt.Kind),
		"entity_id", evt.EntityID,
		"month", p.Month,
		"year", p.Year)

	return w.refresh(ctx, p)
}

// RefreshCurrentPeriod recomputes the snapshot for the period containing
// now. Called on the fallback ticker and at startup.
func (w *SnapshotWorker) RefreshCurrentPeriod(ctx context.Context) error {
	return w.refresh(ctx, core.NewPeriod(time.Now()))
}

// RefreshTouchedPeriods re-runs every period seen since startup. Covers
// late edits to past months that the ticker's current-period refresh would
// miss.
func (w *SnapshotWorker) RefreshTouchedPeriods(ctx context.Context) error {
	w.mu.Lock()
	periods := make([]core.Period, 0, len(w.touched))
	for p := range w.touched {
		periods = append(periods, p)
	}
	w.mu.Unlock()

	for _, p := range periods {
		if err := w.refresh(ctx, p); err != nil {
			slog.ErrorContext(ctx, "Failed to refresh snapshot",
				"month", p.Month,
				"year", p.Year,
				"error", err)
		}
	}
	return nil
}

func (w *SnapshotWorker) refresh(ctx context.Context, p core.Period) error {
	snap, err := w.stats.Snapshot(ctx, p)
	if err != nil {
		return fmt.Errorf("compute snapshot: %w", err)
	}
	snap.ComputedAt = time.Now().UTC()

	if err := w.snapshots.UpsertSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	w.mu.Lock()
	w.touched[p] = snap.ComputedAt
	w.mu.Unlock()

	slog.InfoContext(ctx, "Snapshot refreshed",
		"month", p.Month,
		"year", p.Year,
		"income_cents", snap.TotalIncome.Cents,
		"outflow_cents", snap.TotalOutflow.Cents,
		"paid_count", snap.PaidCount)

	return nil
}

// Run consumes ledger events until ctx is cancelled, refreshing on the
// interval as a safety net. Blocks.
func (w *SnapshotWorker) Run(ctx context.Context, client *amqp.Client, interval time.Duration) error {
	if err := w.RefreshCurrentPeriod(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup snapshot refresh failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	consumeErr := make(chan error, 1)
	if client != nil {
		go func() {
			consumeErr <- client.ConsumeLedgerEvents(ctx, func(evt *amqp.LedgerEvent) error {
				return w.HandleLedgerEvent(ctx, evt)
			})
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-consumeErr:
			return fmt.Errorf("consume ledger events: %w", err)
		case <-ticker.C:
			if err := w.RefreshTouchedPeriods(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic snapshot refresh failed", "error", err)
			}
			if err := w.RefreshCurrentPeriod(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic snapshot refresh failed", "error", err)
			}
		}
	}
}
