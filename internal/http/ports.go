package http

import (
	"context"

	"talos/internal/core"
	"talos/internal/report"
	"talos/internal/services"
)

// BudgetService is the application surface the handlers drive. It is
// satisfied by services.MovementService; tests plug in fakes.
type BudgetService interface {
	AddManual(ctx context.Context, amount core.Money, description string) (int64, error)
	AddCaptured(ctx context.Context, amount core.Money, description string, confidence int) (int64, error)
	UpdateMovement(ctx context.Context, m core.Movement) error
	DeleteMovement(ctx context.Context, id int64) error

	MonthOverview(ctx context.Context, periodKey string) (report.Summary, []core.Movement, error)
	History(ctx context.Context) ([]string, map[string][]core.Movement, error)
	Trend(ctx context.Context, months int) ([]report.PeriodTotal, error)

	Settings(ctx context.Context) (core.Settings, error)
	SaveSettings(ctx context.Context, cfg core.Settings) error

	CaptureReceipt(ctx context.Context, image []byte) (services.CaptureOutcome, error)
	Export(ctx context.Context) (string, []byte, error)
}
