package core

import (
	"errors"
	"testing"
	"time"
)

func TestPeriodKeyFor(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC), "2025-06"},
		{time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC), "2025-12"},
		// The key is derived in UTC regardless of the input zone.
		{time.Date(2025, 7, 1, 0, 30, 0, 0, time.FixedZone("CEST", 2*3600)), "2025-06"},
	}
	for i, tc := range cases {
		if got := PeriodKeyFor(tc.in); got != tc.want {
			t.Fatalf("case %d: got %q, want %q", i, got, tc.want)
		}
	}
}

func TestParsePeriodKey(t *testing.T) {
	got, err := ParsePeriodKey("2025-06")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if got.Year() != 2025 || got.Month() != time.June {
		t.Fatalf("got %v", got)
	}

	for _, bad := range []string{"", "2025", "2025-13", "giugno", "2025-06-15"} {
		if _, err := ParsePeriodKey(bad); !errors.Is(err, ErrInvalidPeriodKey) {
			t.Fatalf("%q: expected ErrInvalidPeriodKey, got %v", bad, err)
		}
	}
}

func TestProvenance(t *testing.T) {
	m := ManualEntry()
	if m.Origin() != OriginManual {
		t.Fatalf("got origin %q", m.Origin())
	}
	if _, ok := m.Confidence(); ok {
		t.Fatal("manual entry must not carry a confidence")
	}

	c := CapturedEntry(85)
	if c.Origin() != OriginCapture {
		t.Fatalf("got origin %q", c.Origin())
	}
	conf, ok := c.Confidence()
	if !ok || conf != 85 {
		t.Fatalf("got confidence %d, %v", conf, ok)
	}

	// A zero Provenance behaves like a manual entry.
	var zero Provenance
	if zero.Origin() != OriginManual {
		t.Fatalf("zero value origin: got %q", zero.Origin())
	}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero value should validate, got %v", err)
	}
}

func TestNewProvenance(t *testing.T) {
	if _, err := NewProvenance("sheets", 0); !errors.Is(err, ErrInvalidOrigin) {
		t.Fatalf("expected ErrInvalidOrigin, got %v", err)
	}
	if _, err := NewProvenance(OriginCapture, 101); !errors.Is(err, ErrInvalidConfidence) {
		t.Fatalf("expected ErrInvalidConfidence, got %v", err)
	}
	p, err := NewProvenance(OriginCapture, 70)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if conf, ok := p.Confidence(); !ok || conf != 70 {
		t.Fatalf("got confidence %d, %v", conf, ok)
	}
}

func TestMovementInputValidate(t *testing.T) {
	good := MovementInput{Amount: Money{Cents: 1250}, Description: "coffee", Provenance: ManualEntry()}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	if err := (MovementInput{Amount: Money{Cents: 0}, Provenance: ManualEntry()}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}
	if err := (MovementInput{Amount: Money{Cents: 1}, Description: string(long), Provenance: ManualEntry()}).Validate(); err == nil {
		t.Fatal("expected error for overlong description")
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("defaults must validate, got %v", err)
	}

	cases := []struct {
		cfg  Settings
		want error
	}{
		{Settings{MonthlyBudget: Money{Cents: 0}, CaptureThreshold: 70}, ErrInvalidBudget},
		{Settings{MonthlyBudget: Money{Cents: -100}, CaptureThreshold: 70}, ErrInvalidBudget},
		{Settings{MonthlyBudget: Money{Cents: 100}, CaptureThreshold: -1}, ErrInvalidThreshold},
		{Settings{MonthlyBudget: Money{Cents: 100}, CaptureThreshold: 101}, ErrInvalidThreshold},
	}
	for i, tc := range cases {
		if err := tc.cfg.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: got %v, want %v", i, err, tc.want)
		}
	}
}

func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.MonthlyBudget.Cents != 30000 {
		t.Fatalf("got budget %d", cfg.MonthlyBudget.Cents)
	}
	if cfg.CaptureThreshold != 70 {
		t.Fatalf("got threshold %d", cfg.CaptureThreshold)
	}
}
