// Package export serializes the full movement collection to the JSON layout
// the original data files used, so dumps stay readable by existing tooling.
// There is no import path.
package export

import (
	"encoding/json"
	"sort"
	"time"

	"talos/internal/core"
)

// ExportError wraps a serialization failure.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string {
	return "export movements: " + e.Err.Error()
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// record mirrors the historical dump layout field for field.
type record struct {
	ID           int64       `json:"id"`
	FechaISO     string      `json:"fechaISO"`
	MesAno       string      `json:"mesAño"`
	Importe      json.Number `json:"importe"`
	Descripcion  string      `json:"descripcion"`
	Origen       string      `json:"origen"`
	OCRConfianza *int        `json:"ocrConfianza,omitempty"`
}

// Filename returns the dump file name for an export taken at the given
// moment, e.g. "talos_export_2025-06-30.json".
func Filename(now time.Time) string {
	return "talos_export_" + now.UTC().Format("2006-01-02") + ".json"
}

// Dump serializes every movement, oldest first, as an indented JSON array.
// Amounts are emitted as exact decimals.
func Dump(movements []core.Movement) ([]byte, error) {
	sorted := make([]core.Movement, len(movements))
	copy(sorted, movements)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	records := make([]record, len(sorted))
	for i, m := range sorted {
		rec := record{
			ID:          m.ID,
			FechaISO:    m.CreatedAt.UTC().Format(time.RFC3339Nano),
			MesAno:      m.PeriodKey,
			Importe:     json.Number(m.Amount.Decimal().String()),
			Descripcion: m.Description,
			Origen:      string(m.Provenance.Origin()),
		}
		if c, ok := m.Provenance.Confidence(); ok {
			conf := c
			rec.OCRConfianza = &conf
		}
		records[i] = rec
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, &ExportError{Err: err}
	}
	return data, nil
}
