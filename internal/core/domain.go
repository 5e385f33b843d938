package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// OriginManual marks an amount typed in by the user.
	OriginManual Origin = "manual"
	// OriginCapture marks an amount proposed by the receipt scanner.
	OriginCapture Origin = "ocr"
)

type (
	Origin string

	Money struct {
		Cents int64
	}

	// Provenance records how a movement's amount was obtained. A confidence
	// score exists only for captured amounts; the constructors keep the two
	// fields consistent so a manual entry can never carry a confidence.
	Provenance struct {
		origin     Origin
		confidence int
	}

	// Movement is one logged spending event.
	Movement struct {
		ID          int64
		CreatedAt   time.Time
		PeriodKey   string // "YYYY-MM", derived from CreatedAt at insert
		Amount      Money
		Description string
		Provenance  Provenance
	}

	// MovementInput is the caller-supplied part of a movement; the store
	// assigns ID, CreatedAt and PeriodKey on insert.
	MovementInput struct {
		Amount      Money
		Description string
		Provenance  Provenance
	}

	// Settings is the singleton budget configuration record.
	Settings struct {
		MonthlyBudget    Money
		CaptureThreshold int // 0-100, minimum confidence to auto-accept a capture
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidOrigin     = errors.New("invalid origin")
	ErrInvalidConfidence = errors.New("confidence out of range")
	ErrInvalidThreshold  = errors.New("threshold out of range")
	ErrInvalidBudget     = errors.New("invalid monthly budget")
	ErrInvalidPeriodKey  = errors.New("invalid period key")
)

// DefaultSettings are synthesized when no settings record was ever written.
func DefaultSettings() Settings {
	return Settings{
		MonthlyBudget:    Money{Cents: 30000},
		CaptureThreshold: 70,
	}
}

// PeriodKeyFor derives the "YYYY-MM" grouping key from a creation instant.
// Keys are always computed in UTC so the same instant maps to the same key
// regardless of the host timezone.
func PeriodKeyFor(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// ParsePeriodKey validates a "YYYY-MM" string and returns the first instant
// of that month.
func ParsePeriodKey(key string) (time.Time, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, key)
	}
	return t, nil
}

// ManualEntry returns the provenance for a user-typed amount.
func ManualEntry() Provenance {
	return Provenance{origin: OriginManual}
}

// CapturedEntry returns the provenance for a scanner-proposed amount.
func CapturedEntry(confidence int) Provenance {
	return Provenance{origin: OriginCapture, confidence: confidence}
}

// NewProvenance rebuilds a provenance from raw stored values.
func NewProvenance(origin Origin, confidence int) (Provenance, error) {
	switch origin {
	case OriginManual:
		return ManualEntry(), nil
	case OriginCapture:
		p := CapturedEntry(confidence)
		return p, p.Validate()
	default:
		return Provenance{}, fmt.Errorf("%w: %q", ErrInvalidOrigin, origin)
	}
}

func (p Provenance) Origin() Origin {
	if p.origin == "" {
		return OriginManual
	}
	return p.origin
}

// Confidence returns the capture confidence and whether one is present.
// Manual entries never have a confidence.
func (p Provenance) Confidence() (int, bool) {
	if p.Origin() != OriginCapture {
		return 0, false
	}
	return p.confidence, true
}

func (p Provenance) Validate() error {
	switch p.Origin() {
	case OriginManual:
		return nil
	case OriginCapture:
		if p.confidence < 0 || p.confidence > 100 {
			return ErrInvalidConfidence
		}
		return nil
	default:
		return ErrInvalidOrigin
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (in MovementInput) Validate() error {
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	// Description is optional but bounded.
	if len(in.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return in.Provenance.Validate()
}

func (m Movement) Validate() error {
	if m.ID <= 0 {
		return errors.New("missing movement id")
	}
	if m.CreatedAt.IsZero() {
		return errors.New("missing creation time")
	}
	if m.PeriodKey != PeriodKeyFor(m.CreatedAt) {
		return fmt.Errorf("%w: %q does not match creation time", ErrInvalidPeriodKey, m.PeriodKey)
	}
	return MovementInput{
		Amount:      m.Amount,
		Description: m.Description,
		Provenance:  m.Provenance,
	}.Validate()
}

func (s Settings) Validate() error {
	if s.MonthlyBudget.Cents <= 0 {
		return ErrInvalidBudget
	}
	if s.CaptureThreshold < 0 || s.CaptureThreshold > 100 {
		return ErrInvalidThreshold
	}
	return nil
}

// NormalizeDescription trims surrounding whitespace; descriptions are kept
// verbatim otherwise.
func NormalizeDescription(s string) string {
	return strings.TrimSpace(s)
}
