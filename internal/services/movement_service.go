// Package services wires the store, the scanner and the event publisher into
// the operations the handlers call. Handlers never touch the store directly.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"talos/internal/capture"
	"talos/internal/core"
	"talos/internal/events"
	"talos/internal/export"
	"talos/internal/report"
)

// MovementStore is the persistence surface the service needs.
type MovementStore interface {
	Settings(ctx context.Context) (core.Settings, error)
	SaveSettings(ctx context.Context, cfg core.Settings) error
	Insert(ctx context.Context, in core.MovementInput) (int64, error)
	ByPeriod(ctx context.Context, periodKey string) ([]core.Movement, error)
	All(ctx context.Context) ([]core.Movement, error)
	Update(ctx context.Context, m core.Movement) error
	Delete(ctx context.Context, id int64) error
	Latest(ctx context.Context) (core.Movement, bool, error)
}

// EventPublisher notifies interested consumers that a movement changed.
type EventPublisher interface {
	PublishMovementEvent(ctx context.Context, ev *events.MovementEvent) error
}

// CaptureOutcome is the result of scanning a receipt against the configured
// confidence threshold.
type CaptureOutcome struct {
	Result  capture.Result
	Applied bool // false when confidence is below the threshold
}

type MovementService struct {
	store     MovementStore
	scanner   capture.Scanner
	publisher EventPublisher // nil when no broker is configured
	now       func() time.Time
}

func NewMovementService(store MovementStore, scanner capture.Scanner, publisher EventPublisher) *MovementService {
	return &MovementService{
		store:     store,
		scanner:   scanner,
		publisher: publisher,
		now:       time.Now,
	}
}

// AddManual records a user-typed movement.
func (s *MovementService) AddManual(ctx context.Context, amount core.Money, description string) (int64, error) {
	return s.add(ctx, core.MovementInput{
		Amount:      amount,
		Description: core.NormalizeDescription(description),
		Provenance:  core.ManualEntry(),
	})
}

// AddCaptured records a movement whose amount came from the scanner.
func (s *MovementService) AddCaptured(ctx context.Context, amount core.Money, description string, confidence int) (int64, error) {
	return s.add(ctx, core.MovementInput{
		Amount:      amount,
		Description: core.NormalizeDescription(description),
		Provenance:  core.CapturedEntry(confidence),
	})
}

func (s *MovementService) add(ctx context.Context, in core.MovementInput) (int64, error) {
	id, err := s.store.Insert(ctx, in)
	if err != nil {
		return 0, fmt.Errorf("add movement: %w", err)
	}
	s.publish(ctx, events.KindCreated, id, core.PeriodKeyFor(s.now()))
	return id, nil
}

// UpdateMovement replaces the amount and description of an existing movement.
func (s *MovementService) UpdateMovement(ctx context.Context, m core.Movement) error {
	m.Description = core.NormalizeDescription(m.Description)
	if err := s.store.Update(ctx, m); err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	s.publish(ctx, events.KindUpdated, m.ID, m.PeriodKey)
	return nil
}

// DeleteMovement removes a movement. Unknown ids are silently accepted.
func (s *MovementService) DeleteMovement(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	s.publish(ctx, events.KindDeleted, id, "")
	return nil
}

// MonthOverview assembles the budget summary and movement list for one
// period, most recent movement first.
func (s *MovementService) MonthOverview(ctx context.Context, periodKey string) (report.Summary, []core.Movement, error) {
	cfg, err := s.store.Settings(ctx)
	if err != nil {
		return report.Summary{}, nil, fmt.Errorf("load settings: %w", err)
	}

	movements, err := s.store.ByPeriod(ctx, periodKey)
	if err != nil {
		return report.Summary{}, nil, fmt.Errorf("load period movements: %w", err)
	}

	grouped := report.GroupByPeriod(movements)
	return report.MonthlySummary(movements, cfg.MonthlyBudget), grouped[periodKey], nil
}

// History returns every movement bucketed by period, with period keys in
// descending order.
func (s *MovementService) History(ctx context.Context) ([]string, map[string][]core.Movement, error) {
	movements, err := s.store.All(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load movements: %w", err)
	}
	groups := report.GroupByPeriod(movements)
	return report.SortedPeriods(groups), groups, nil
}

// Trend returns the trailing per-month totals for the spending graph.
func (s *MovementService) Trend(ctx context.Context, months int) ([]report.PeriodTotal, error) {
	movements, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load movements: %w", err)
	}
	return report.LastN(report.PeriodTotals(movements), months), nil
}

// Settings returns the current configuration, falling back to defaults.
func (s *MovementService) Settings(ctx context.Context) (core.Settings, error) {
	return s.store.Settings(ctx)
}

// SaveSettings overwrites the configuration record.
func (s *MovementService) SaveSettings(ctx context.Context, cfg core.Settings) error {
	return s.store.SaveSettings(ctx, cfg)
}

// CaptureReceipt runs the scanner over a receipt image and gates the result
// on the configured confidence threshold. A result below the threshold is
// returned but marked not applied; the caller shows it as a suggestion only.
func (s *MovementService) CaptureReceipt(ctx context.Context, image []byte) (CaptureOutcome, error) {
	cfg, err := s.store.Settings(ctx)
	if err != nil {
		return CaptureOutcome{}, fmt.Errorf("load settings: %w", err)
	}

	res, err := s.scanner.Scan(ctx, image)
	if err != nil {
		return CaptureOutcome{}, fmt.Errorf("scan receipt: %w", err)
	}

	return CaptureOutcome{
		Result:  res,
		Applied: res.MeetsThreshold(cfg.CaptureThreshold),
	}, nil
}

// Export serializes the full movement collection. It returns the file name
// and the JSON payload.
func (s *MovementService) Export(ctx context.Context) (string, []byte, error) {
	movements, err := s.store.All(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("load movements: %w", err)
	}

	data, err := export.Dump(movements)
	if err != nil {
		return "", nil, err
	}
	return export.Filename(s.now()), data, nil
}

// publish is best-effort: a broker outage never fails the user's write.
func (s *MovementService) publish(ctx context.Context, kind string, id int64, periodKey string) {
	if s.publisher == nil {
		return
	}
	ev := events.NewMovementEvent(kind, id, periodKey)
	if err := s.publisher.PublishMovementEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish movement event",
			"error", err,
			"kind", kind,
			"id", id)
	}
}
