// Package store is the durable record store of the tracker: a SQLite file
// holding the singleton settings row and the movements table with its
// period-key index.
//
// The store is an explicit handle created once by the process and passed to
// every consumer. Tests open their own store against a temp file; nothing
// here is process-global.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"talos/internal/core"

	_ "modernc.org/sqlite"
)

const settingsKey = "default"

type Store struct {
	db *sql.DB

	// now is the insertion clock; swapped in tests to pin period keys.
	now func() time.Time
}

// NewStore opens (creating if needed) the SQLite file at dbPath and runs
// pending migrations.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Settings returns the singleton configuration record, synthesizing the
// defaults when none was ever written. A missing record is not an error.
func (s *Store) Settings(ctx context.Context) (core.Settings, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT monthly_budget_cents, capture_confidence_threshold FROM settings WHERE id = ?`,
		settingsKey)

	var cfg core.Settings
	err := row.Scan(&cfg.MonthlyBudget.Cents, &cfg.CaptureThreshold)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.Settings{}, storageErr("read settings", err)
	}
	return cfg, nil
}

// SaveSettings replaces the singleton entirely. The overwrite is idempotent.
func (s *Store) SaveSettings(ctx context.Context, cfg core.Settings) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (id, monthly_budget_cents, capture_confidence_threshold)
		 VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		     monthly_budget_cents = excluded.monthly_budget_cents,
		     capture_confidence_threshold = excluded.capture_confidence_threshold`,
		settingsKey, cfg.MonthlyBudget.Cents, cfg.CaptureThreshold)
	if err != nil {
		return storageErr("save settings", err)
	}

	slog.InfoContext(ctx, "Settings saved",
		"monthly_budget_cents", cfg.MonthlyBudget.Cents,
		"capture_threshold", cfg.CaptureThreshold)
	return nil
}

// Insert persists a new movement. The store assigns the id (strictly
// increasing, never reused), the creation instant and the period key derived
// from it.
func (s *Store) Insert(ctx context.Context, in core.MovementInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	createdAt := s.now().UTC()
	periodKey := core.PeriodKeyFor(createdAt)
	confidence := confidenceColumn(in.Provenance)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO movements (created_at, period_key, amount_cents, description, origin, capture_confidence)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		createdAt.Format(time.RFC3339Nano), periodKey, in.Amount.Cents,
		in.Description, string(in.Provenance.Origin()), confidence)
	if err != nil {
		return 0, storageErr("insert movement", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert movement id", err)
	}

	slog.InfoContext(ctx, "Movement saved",
		"id", id,
		"period_key", periodKey,
		"amount_cents", in.Amount.Cents,
		"origin", in.Provenance.Origin())
	return id, nil
}

// ByPeriod returns every movement with the given period key, via the
// period-key index. Display ordering is the aggregation layer's concern.
func (s *Store) ByPeriod(ctx context.Context, periodKey string) ([]core.Movement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, period_key, amount_cents, description, origin, capture_confidence
		 FROM movements WHERE period_key = ?`, periodKey)
	if err != nil {
		return nil, storageErr("query movements by period", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// All returns the full movement collection.
func (s *Store) All(ctx context.Context) ([]core.Movement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, period_key, amount_cents, description, origin, capture_confidence
		 FROM movements`)
	if err != nil {
		return nil, storageErr("query movements", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// Update replaces the mutable fields (amount, description) of the movement
// matching m.ID. Creation time, period key and provenance are immutable.
// Returns ErrNotFound when the id does not exist.
func (s *Store) Update(ctx context.Context, m core.Movement) error {
	if err := m.Amount.Validate(); err != nil {
		return err
	}
	if m.ID <= 0 {
		return fmt.Errorf("update movement: %w", ErrNotFound)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE movements SET amount_cents = ?, description = ? WHERE id = ?`,
		m.Amount.Cents, m.Description, m.ID)
	if err != nil {
		return storageErr("update movement", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return storageErr("update movement result", err)
	}
	if affected == 0 {
		return fmt.Errorf("update movement %d: %w", m.ID, ErrNotFound)
	}

	slog.InfoContext(ctx, "Movement updated", "id", m.ID, "amount_cents", m.Amount.Cents)
	return nil
}

// Delete removes the movement with the given id. Deleting an id that does
// not exist is not an error; delete is idempotent.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM movements WHERE id = ?`, id); err != nil {
		return storageErr("delete movement", err)
	}
	slog.InfoContext(ctx, "Movement deleted", "id", id)
	return nil
}

// Latest returns the most recently inserted movement, by insertion order
// rather than timestamp value. The second return is false when the
// collection is empty.
func (s *Store) Latest(ctx context.Context) (core.Movement, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, period_key, amount_cents, description, origin, capture_confidence
		 FROM movements ORDER BY id DESC LIMIT 1`)

	m, err := scanMovement(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Movement{}, false, nil
	}
	if err != nil {
		return core.Movement{}, false, storageErr("read latest movement", err)
	}
	return m, true, nil
}

func confidenceColumn(p core.Provenance) sql.NullInt64 {
	if c, ok := p.Confidence(); ok {
		return sql.NullInt64{Int64: int64(c), Valid: true}
	}
	return sql.NullInt64{}
}

func scanMovements(rows *sql.Rows) ([]core.Movement, error) {
	var out []core.Movement
	for rows.Next() {
		m, err := scanMovement(rows.Scan)
		if err != nil {
			return nil, storageErr("scan movement", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate movements", err)
	}
	return out, nil
}

func scanMovement(scan func(dest ...any) error) (core.Movement, error) {
	var (
		m          core.Movement
		createdAt  string
		origin     string
		confidence sql.NullInt64
	)
	if err := scan(&m.ID, &createdAt, &m.PeriodKey, &m.Amount.Cents, &m.Description, &origin, &confidence); err != nil {
		return core.Movement{}, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return core.Movement{}, fmt.Errorf("parse created_at: %w", err)
	}
	m.CreatedAt = ts

	prov, err := core.NewProvenance(core.Origin(origin), int(confidence.Int64))
	if err != nil {
		return core.Movement{}, err
	}
	m.Provenance = prov

	return m, nil
}
