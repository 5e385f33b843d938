// Package worker implements the backup worker: it listens for movement
// events and writes a JSON snapshot of the full collection to local disk, so
// a corrupted database never costs more than the interval between changes.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"talos/internal/core"
	"talos/internal/events"
	"talos/internal/export"
)

// MovementLister is the slice of the store the worker needs.
type MovementLister interface {
	All(ctx context.Context) ([]core.Movement, error)
}

type BackupWorker struct {
	store MovementLister
	dir   string
}

func NewBackupWorker(store MovementLister, dir string) *BackupWorker {
	return &BackupWorker{store: store, dir: dir}
}

// HandleEvent processes a single movement event by refreshing the snapshot.
// Every event kind triggers the same full snapshot.
func (w *BackupWorker) HandleEvent(ctx context.Context, ev *events.MovementEvent) error {
	slog.InfoContext(ctx, "Processing movement event",
		"kind", ev.Kind,
		"id", ev.ID,
		"period_key", ev.PeriodKey)
	return w.Snapshot(ctx)
}

// Snapshot writes the current movement collection to the backup directory.
// The write is atomic: data lands in a temp file first and is renamed over
// the previous snapshot.
func (w *BackupWorker) Snapshot(ctx context.Context) error {
	movements, err := w.store.All(ctx)
	if err != nil {
		return fmt.Errorf("load movements: %w", err)
	}

	data, err := export.Dump(movements)
	if err != nil {
		return fmt.Errorf("serialize snapshot: %w", err)
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	target := filepath.Join(w.dir, export.Filename(time.Now()))
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("finalize snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot written",
		"path", target,
		"movements", len(movements),
		"bytes", len(data))
	return nil
}

// RunPeriodic writes a snapshot every interval regardless of events, as a
// fallback for missed deliveries. It blocks until the context is cancelled.
func (w *BackupWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Snapshot(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic snapshot failed", "error", err)
			}
		}
	}
}
