package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"talos/internal/capture"
	"talos/internal/core"
	"talos/internal/events"
)

type fakeStore struct {
	settings  core.Settings
	movements []core.Movement
	nextID    int64
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{settings: core.DefaultSettings(), nextID: 1}
}

func (f *fakeStore) Settings(ctx context.Context) (core.Settings, error) {
	return f.settings, nil
}

func (f *fakeStore) SaveSettings(ctx context.Context, cfg core.Settings) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	f.settings = cfg
	return nil
}

func (f *fakeStore) Insert(ctx context.Context, in core.MovementInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	m := core.Movement{
		ID:          f.nextID,
		CreatedAt:   now,
		PeriodKey:   core.PeriodKeyFor(now),
		Amount:      in.Amount,
		Description: in.Description,
		Provenance:  in.Provenance,
	}
	f.nextID++
	f.movements = append(f.movements, m)
	return m.ID, nil
}

func (f *fakeStore) ByPeriod(ctx context.Context, periodKey string) ([]core.Movement, error) {
	var out []core.Movement
	for _, m := range f.movements {
		if m.PeriodKey == periodKey {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) All(ctx context.Context) ([]core.Movement, error) {
	return append([]core.Movement(nil), f.movements...), nil
}

func (f *fakeStore) Update(ctx context.Context, m core.Movement) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.movements {
		if f.movements[i].ID == m.ID {
			f.movements[i].Amount = m.Amount
			f.movements[i].Description = m.Description
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeStore) Delete(ctx context.Context, id int64) error {
	for i := range f.movements {
		if f.movements[i].ID == id {
			f.movements = append(f.movements[:i], f.movements[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeStore) Latest(ctx context.Context) (core.Movement, bool, error) {
	if len(f.movements) == 0 {
		return core.Movement{}, false, nil
	}
	return f.movements[len(f.movements)-1], true, nil
}

type fakePublisher struct {
	published []*events.MovementEvent
	err       error
}

func (f *fakePublisher) PublishMovementEvent(ctx context.Context, ev *events.MovementEvent) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, ev)
	return nil
}

type fakeScanner struct {
	result capture.Result
	err    error
}

func (f *fakeScanner) Scan(ctx context.Context, image []byte) (capture.Result, error) {
	return f.result, f.err
}

func TestAddManualPublishesEvent(t *testing.T) {
	st := newFakeStore()
	pub := &fakePublisher{}
	svc := NewMovementService(st, &fakeScanner{}, pub)

	id, err := svc.AddManual(context.Background(), core.Money{Cents: 1500}, "  coffee  ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if id != 1 {
		t.Fatalf("id: got %d", id)
	}
	if st.movements[0].Description != "coffee" {
		t.Fatalf("description not normalized: %q", st.movements[0].Description)
	}
	if st.movements[0].Provenance.Origin() != core.OriginManual {
		t.Fatalf("origin: got %q", st.movements[0].Provenance.Origin())
	}

	if len(pub.published) != 1 || pub.published[0].Kind != events.KindCreated {
		t.Fatalf("published: got %+v", pub.published)
	}
}

func TestAddSurvivesPublishFailure(t *testing.T) {
	st := newFakeStore()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewMovementService(st, &fakeScanner{}, pub)

	if _, err := svc.AddManual(context.Background(), core.Money{Cents: 100}, "x"); err != nil {
		t.Fatalf("publish failure must not fail the write, got %v", err)
	}
	if len(st.movements) != 1 {
		t.Fatalf("movement not stored")
	}
}

func TestAddWithoutPublisher(t *testing.T) {
	st := newFakeStore()
	svc := NewMovementService(st, &fakeScanner{}, nil)

	if _, err := svc.AddManual(context.Background(), core.Money{Cents: 100}, "x"); err != nil {
		t.Fatalf("nil publisher must be tolerated, got %v", err)
	}
}

func TestAddCaptured(t *testing.T) {
	st := newFakeStore()
	svc := NewMovementService(st, &fakeScanner{}, nil)

	if _, err := svc.AddCaptured(context.Background(), core.Money{Cents: 4230}, "supermarket", 85); err != nil {
		t.Fatalf("add: %v", err)
	}
	if conf, ok := st.movements[0].Provenance.Confidence(); !ok || conf != 85 {
		t.Fatalf("confidence: got %d, %v", conf, ok)
	}
}

func TestMonthOverview(t *testing.T) {
	st := newFakeStore()
	svc := NewMovementService(st, &fakeScanner{}, nil)
	ctx := context.Background()

	if _, err := svc.AddManual(ctx, core.Money{Cents: 12050}, "groceries"); err != nil {
		t.Fatal(err)
	}

	periodKey := core.PeriodKeyFor(time.Now())
	summary, movements, err := svc.MonthOverview(ctx, periodKey)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if summary.Spent.Cents != 12050 {
		t.Fatalf("spent: got %d", summary.Spent.Cents)
	}
	if summary.Remaining.Cents != 30000-12050 {
		t.Fatalf("remaining: got %d", summary.Remaining.Cents)
	}
	if len(movements) != 1 {
		t.Fatalf("got %d movements", len(movements))
	}
}

func TestCaptureReceiptThreshold(t *testing.T) {
	st := newFakeStore()
	ctx := context.Background()

	// 55% confidence against the default 70% threshold: suggested, not applied.
	scanner := &fakeScanner{result: capture.Result{Amount: core.Money{Cents: 4230}, Confidence: 55}}
	svc := NewMovementService(st, scanner, nil)

	outcome, err := svc.CaptureReceipt(ctx, []byte("image"))
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if outcome.Applied {
		t.Fatal("low confidence must not be applied")
	}
	if outcome.Result.Amount.Cents != 4230 {
		t.Fatalf("amount: got %d", outcome.Result.Amount.Cents)
	}

	scanner.result.Confidence = 70
	outcome, err = svc.CaptureReceipt(ctx, []byte("image"))
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !outcome.Applied {
		t.Fatal("confidence at the threshold must be applied")
	}
}

func TestCaptureReceiptUnreadable(t *testing.T) {
	st := newFakeStore()
	svc := NewMovementService(st, &fakeScanner{err: capture.ErrUnreadable}, nil)

	_, err := svc.CaptureReceipt(context.Background(), []byte("image"))
	if !errors.Is(err, capture.ErrUnreadable) {
		t.Fatalf("expected ErrUnreadable, got %v", err)
	}
}

func TestExport(t *testing.T) {
	st := newFakeStore()
	svc := NewMovementService(st, &fakeScanner{}, nil)
	ctx := context.Background()

	if _, err := svc.AddManual(ctx, core.Money{Cents: 1500}, "coffee"); err != nil {
		t.Fatal(err)
	}

	filename, data, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filename == "" || len(data) == 0 {
		t.Fatalf("got filename %q, %d bytes", filename, len(data))
	}
}

func TestDeletePublishesEvent(t *testing.T) {
	st := newFakeStore()
	pub := &fakePublisher{}
	svc := NewMovementService(st, &fakeScanner{}, pub)
	ctx := context.Background()

	id, err := svc.AddManual(ctx, core.Money{Cents: 100}, "x")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteMovement(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(pub.published) != 2 || pub.published[1].Kind != events.KindDeleted {
		t.Fatalf("published: got %+v", pub.published)
	}
}
