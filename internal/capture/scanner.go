// Package capture defines the receipt-scanning collaborator: an opaque
// image-to-amount service that proposes an amount with a confidence score.
package capture

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"talos/internal/core"
)

// ErrUnreadable reports that no usable amount could be read from the image.
var ErrUnreadable = errors.New("receipt text unreadable")

// Result is a proposed amount. It is merely a suggestion: the user still
// submits it through the normal insert path.
type Result struct {
	Amount     core.Money
	Confidence int // 0-100
}

// MeetsThreshold reports whether the result is confident enough to be
// applied to the pending form without manual confirmation.
func (r Result) MeetsThreshold(threshold int) bool {
	return r.Confidence >= threshold
}

// Scanner extracts a proposed amount from a receipt image.
type Scanner interface {
	Scan(ctx context.Context, image []byte) (Result, error)
}

// MockScanner stands in for a real OCR engine. It simulates processing
// latency and produces randomized results with the same envelope as the
// engine it mocks: 80% success with amounts between 5.00 and 55.00 and
// confidence 70-100, 20% unreadable.
type MockScanner struct {
	mu      sync.Mutex
	rng     *rand.Rand
	latency func() time.Duration
}

func NewMockScanner() *MockScanner {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &MockScanner{
		rng: rng,
		latency: func() time.Duration {
			return 1500*time.Millisecond + time.Duration(rng.Int63n(int64(time.Second)))
		},
	}
}

// Scan implements Scanner. It honors context cancellation while waiting out
// the simulated processing time.
func (s *MockScanner) Scan(ctx context.Context, image []byte) (Result, error) {
	attemptID := uuid.NewString()
	slog.InfoContext(ctx, "Processing receipt image",
		"attempt_id", attemptID,
		"image_bytes", len(image))

	if err := s.wait(ctx); err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	roll := s.rng.Float64()
	lowConfidence := s.rng.Intn(50)
	cents := 500 + s.rng.Int63n(5001) // 5.00 - 55.00
	confidence := 70 + s.rng.Intn(31) // 70 - 100
	s.mu.Unlock()

	if roll < 0.2 {
		slog.WarnContext(ctx, "Receipt unreadable",
			"attempt_id", attemptID,
			"confidence", lowConfidence)
		return Result{}, ErrUnreadable
	}

	res := Result{Amount: core.Money{Cents: cents}, Confidence: confidence}
	slog.InfoContext(ctx, "Receipt amount proposed",
		"attempt_id", attemptID,
		"amount_cents", res.Amount.Cents,
		"confidence", res.Confidence)
	return res, nil
}

func (s *MockScanner) wait(ctx context.Context) error {
	s.mu.Lock()
	d := s.latency()
	s.mu.Unlock()
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
