package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"talos/internal/core"
	"talos/internal/events"
)

type fakeLister struct {
	movements []core.Movement
	err       error
}

func (f *fakeLister) All(ctx context.Context) ([]core.Movement, error) {
	return f.movements, f.err
}

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	created := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	lister := &fakeLister{movements: []core.Movement{{
		ID:          1,
		CreatedAt:   created,
		PeriodKey:   "2025-06",
		Amount:      core.Money{Cents: 1500},
		Description: "coffee",
		Provenance:  core.ManualEntry(),
	}}}

	w := NewBackupWorker(lister, filepath.Join(dir, "backups"))
	if err := w.Snapshot(context.Background()); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "backups"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d files", len(entries))
	}

	data, err := os.ReadFile(filepath.Join(dir, "backups", entries[0].Name()))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("snapshot not valid JSON: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records", len(records))
	}

	// No temp file left behind.
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSnapshotPropagatesStoreError(t *testing.T) {
	lister := &fakeLister{err: errors.New("db gone")}
	w := NewBackupWorker(lister, t.TempDir())

	if err := w.Snapshot(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestHandleEventSnapshots(t *testing.T) {
	dir := t.TempDir()
	w := NewBackupWorker(&fakeLister{}, dir)

	ev := events.NewMovementEvent(events.KindCreated, 1, "2025-06")
	if err := w.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d files", len(entries))
	}
}
