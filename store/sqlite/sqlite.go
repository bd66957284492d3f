/*
Package sqlite provides a SQLite-backed store for saved loans and their APR
calculation history.

PURPOSE:
  The APR engine itself never touches storage. This store sits beside it so
  the API can keep loan documents under an ID and record every calculation
  made for them (an audit trail of what APR was disclosed, and when).

KEY TABLES:
  loans:        Loan documents (factory JSON), versioned on update
  calculations: Append-only history of results per loan
  calculation_failures: Loan versions the engine rejected

INDEXES:
  - idx_calculations_loan_time: history lookups, newest first

CONCURRENCY:
  Uses sync.RWMutex for thread-safety; SQLite allows one writer at a time.

WAL MODE:
  Opened with WAL (Write-Ahead Logging) and foreign keys on, so deleting a
  loan removes its history.

USAGE:
  store, err := sqlite.New("./data/apr.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - factory/loan.go: The JSON stored in loans.config_json
  - api/handlers.go: The only writer
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// timestampLayout has fixed-width nanoseconds so computed_at sorts as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists loans and calculations in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Loans (factory JSON documents)
	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		periods_per_year INTEGER NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_loans_name
		ON loans(name);

	-- Calculations (append-only history)
	CREATE TABLE IF NOT EXISTS calculations (
		id TEXT PRIMARY KEY,
		loan_id TEXT NOT NULL REFERENCES loans(id) ON DELETE CASCADE,
		apr REAL NOT NULL,
		apr_rounded TEXT NOT NULL,
		full_periods INTEGER NOT NULL,
		odd_fraction REAL NOT NULL,
		iterations INTEGER NOT NULL,
		restarted INTEGER NOT NULL DEFAULT 0,
		config_version INTEGER NOT NULL,
		computed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_calculations_loan_time
		ON calculations(loan_id, computed_at DESC);

	-- Loan versions the engine rejected (skipped until the next edit)
	CREATE TABLE IF NOT EXISTS calculation_failures (
		loan_id TEXT NOT NULL REFERENCES loans(id) ON DELETE CASCADE,
		config_version INTEGER NOT NULL,
		error TEXT NOT NULL,
		failed_at TEXT NOT NULL,
		PRIMARY KEY (loan_id, config_version)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOAN STORE
// =============================================================================

// LoanRecord is a stored loan with its JSON document.
type LoanRecord struct {
	ID             string
	Name           string
	PeriodsPerYear int
	ConfigJSON     string
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SaveLoan inserts a loan or replaces its document, bumping the version.
func (s *Store) SaveLoan(ctx context.Context, loan LoanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO loans (id, name, periods_per_year, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			periods_per_year = excluded.periods_per_year,
			config_json = excluded.config_json,
			version = loans.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		loan.ID, loan.Name, loan.PeriodsPerYear, loan.ConfigJSON, now, now,
	)
	return err
}

// GetLoan retrieves a loan by ID. Returns nil, nil if it doesn't exist.
func (s *Store) GetLoan(ctx context.Context, id string) (*LoanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var l LoanRecord
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, periods_per_year, config_json, version, created_at, updated_at FROM loans WHERE id = ?",
		id,
	).Scan(&l.ID, &l.Name, &l.PeriodsPerYear, &l.ConfigJSON, &l.Version, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	l.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &l, nil
}

// ListLoans returns all loans ordered by name.
func (s *Store) ListLoans(ctx context.Context) ([]LoanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, periods_per_year, config_json, version, created_at, updated_at FROM loans ORDER BY name, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []LoanRecord
	for rows.Next() {
		var l LoanRecord
		var createdAt, updatedAt string
		if err := rows.Scan(&l.ID, &l.Name, &l.PeriodsPerYear, &l.ConfigJSON, &l.Version, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		l.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// DeleteLoan removes a loan and its calculation history. Reports whether a
// loan was deleted.
func (s *Store) DeleteLoan(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM loans WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// =============================================================================
// CALCULATION HISTORY
// =============================================================================

// CalculationRecord is one solved APR for a loan version.
type CalculationRecord struct {
	ID            string
	LoanID        string
	APR           float64
	Rounded       decimal.Decimal
	FullPeriods   int
	OddFraction   float64
	Iterations    int
	Restarted     bool
	ConfigVersion int
	ComputedAt    time.Time
}

// SaveCalculation appends a calculation. Records are never updated.
func (s *Store) SaveCalculation(ctx context.Context, c CalculationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	computedAt := c.ComputedAt
	if computedAt.IsZero() {
		computedAt = time.Now()
	}

	query := `
		INSERT INTO calculations (id, loan_id, apr, apr_rounded, full_periods, odd_fraction,
		                          iterations, restarted, config_version, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.LoanID, c.APR, c.Rounded.String(), c.FullPeriods, c.OddFraction,
		c.Iterations, c.Restarted, c.ConfigVersion,
		computedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save calculation: %w", err)
	}
	return nil
}

// ListCalculations returns a loan's history, newest first.
func (s *Store) ListCalculations(ctx context.Context, loanID string) ([]CalculationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, loan_id, apr, apr_rounded, full_periods, odd_fraction,
		       iterations, restarted, config_version, computed_at
		FROM calculations
		WHERE loan_id = ?
		ORDER BY computed_at DESC, rowid DESC
	`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CalculationRecord
	for rows.Next() {
		var c CalculationRecord
		var rounded, computedAt string
		if err := rows.Scan(&c.ID, &c.LoanID, &c.APR, &rounded, &c.FullPeriods, &c.OddFraction,
			&c.Iterations, &c.Restarted, &c.ConfigVersion, &computedAt); err != nil {
			return nil, err
		}
		c.Rounded = mustParseDecimal(rounded)
		c.ComputedAt, _ = time.Parse(time.RFC3339Nano, computedAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveCalculationFailure marks a loan version as one the engine rejects.
// Saving the same version again replaces the message.
func (s *Store) SaveCalculationFailure(ctx context.Context, loanID string, version int, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO calculation_failures (loan_id, config_version, error, failed_at)
		VALUES (?, ?, ?, ?)
	`, loanID, version, reason, time.Now().UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("failed to save calculation failure: %w", err)
	}
	return nil
}

// ListUncalculatedLoans returns loans with no calculation for their current
// version (new loans and loans edited since their last calculation). A
// version with a recorded failure is skipped.
func (s *Store) ListUncalculatedLoans(ctx context.Context) ([]LoanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.name, l.periods_per_year, l.config_json, l.version, l.created_at, l.updated_at
		FROM loans l
		WHERE NOT EXISTS (
			SELECT 1 FROM calculations c
			WHERE c.loan_id = l.id AND c.config_version = l.version
		)
		AND NOT EXISTS (
			SELECT 1 FROM calculation_failures f
			WHERE f.loan_id = l.id AND f.config_version = l.version
		)
		ORDER BY l.name, l.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []LoanRecord
	for rows.Next() {
		var l LoanRecord
		var createdAt, updatedAt string
		if err := rows.Scan(&l.ID, &l.Name, &l.PeriodsPerYear, &l.ConfigJSON, &l.Version, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		l.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"calculation_failures", "calculations", "loans"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func mustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
