package tunables

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SQLiteStore is a Store implementation backed by sqlite, with an audit
// trail of every adjustment
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a sqlite-backed store and seeds missing parameters
func NewSQLiteStore(db *sqlx.DB, defaults []Parameter) (*SQLiteStore, error) {
	store := &SQLiteStore{db: db}

	for _, p := range defaults {
		if err := store.seed(context.Background(), p); err != nil {
			return nil, fmt.Errorf("failed to seed parameter %s: %w", p.Name, err)
		}
	}

	return store, nil
}

func (s *SQLiteStore) seed(ctx context.Context, p Parameter) error {
	query := `
		INSERT INTO tunable_parameters (name, value, min_value, max_value, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query, p.Name, p.Value, p.Min, p.Max, time.Now())
	return err
}

// Get returns a parameter by name
func (s *SQLiteStore) Get(ctx context.Context, name string) (Parameter, error) {
	query := `
		SELECT name, value, min_value, max_value, updated_at
		FROM tunable_parameters
		WHERE name = ?
	`

	var param Parameter
	err := s.db.GetContext(ctx, &param, query, name)
	if err == sql.ErrNoRows {
		return Parameter{}, fmt.Errorf("parameter not found: %s", name)
	}
	if err != nil {
		return Parameter{}, fmt.Errorf("failed to get parameter: %w", err)
	}

	return param, nil
}

// Set replaces a parameter's value, clamped to its bounds
func (s *SQLiteStore) Set(ctx context.Context, name string, value float64) error {
	param, err := s.Get(ctx, name)
	if err != nil {
		return err
	}

	clamped := clampValue(value, param.Min, param.Max)

	query := `UPDATE tunable_parameters SET value = ?, updated_at = ? WHERE name = ?`
	if _, err := s.db.ExecContext(ctx, query, clamped, time.Now(), name); err != nil {
		return fmt.Errorf("failed to set parameter: %w", err)
	}

	return nil
}

// Adjust moves a parameter by delta inside a transaction and records the
// change in the audit table
func (s *SQLiteStore) Adjust(ctx context.Context, name string, delta float64) (Parameter, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Parameter{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var param Parameter
	query := `
		SELECT name, value, min_value, max_value, updated_at
		FROM tunable_parameters
		WHERE name = ?
	`
	if err := tx.GetContext(ctx, &param, query, name); err != nil {
		if err == sql.ErrNoRows {
			return Parameter{}, fmt.Errorf("parameter not found: %s", name)
		}
		return Parameter{}, fmt.Errorf("failed to get parameter: %w", err)
	}

	applied := clampDelta(delta)
	oldValue := param.Value
	param.Value = clampValue(param.Value+applied, param.Min, param.Max)
	param.UpdatedAt = time.Now()

	update := `UPDATE tunable_parameters SET value = ?, updated_at = ? WHERE name = ?`
	if _, err := tx.ExecContext(ctx, update, param.Value, param.UpdatedAt, name); err != nil {
		return Parameter{}, fmt.Errorf("failed to update parameter: %w", err)
	}

	audit := `
		INSERT INTO parameter_adjustments (id, parameter, requested, applied, old_value, new_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, audit,
		uuid.New().String(), name, delta, applied, oldValue, param.Value, param.UpdatedAt)
	if err != nil {
		return Parameter{}, fmt.Errorf("failed to record adjustment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Parameter{}, fmt.Errorf("failed to commit adjustment: %w", err)
	}

	return param, nil
}

// List returns all parameters ordered by name
func (s *SQLiteStore) List(ctx context.Context) ([]Parameter, error) {
	query := `
		SELECT name, value, min_value, max_value, updated_at
		FROM tunable_parameters
		ORDER BY name
	`

	var params []Parameter
	if err := s.db.SelectContext(ctx, &params, query); err != nil {
		return nil, fmt.Errorf("failed to list parameters: %w", err)
	}

	return params, nil
}

// RecentAdjustments returns the latest audit entries, newest first
func (s *SQLiteStore) RecentAdjustments(ctx context.Context, limit int) ([]Adjustment, error) {
	query := `
		SELECT id, parameter, requested, applied, old_value, new_value, created_at
		FROM parameter_adjustments
		ORDER BY created_at DESC
		LIMIT ?
	`

	var adjustments []Adjustment
	if err := s.db.SelectContext(ctx, &adjustments, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list adjustments: %w", err)
	}

	return adjustments, nil
}

// PruneAudit removes audit entries older than the retention period and
// returns the number of rows deleted
func (s *SQLiteStore) PruneAudit(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM parameter_adjustments WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune adjustments: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return removed, nil
}
