package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/lib/pq"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	codeStringDataRightTruncation = "22001"
	codeUniqueViolation           = "23505"
	txHashConstraint              = "transactions_tx_hash_key"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type unitOfWork struct {
	db *sql.DB
}

func NewUnitOfWork(db *sql.DB) ports.UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) WithinTx(ctx context.Context, fn func(ledger ports.LedgerRepository, votes ports.VoteRepository) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&ledgerRepository{db: tx}, &voteRepository{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Migrate applies every embedded *.up.sql file in name order.
func Migrate(ctx context.Context, db *sql.DB) error {
	names, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := migrationFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}
	return nil
}

// MigrationFile returns the content of the first embedded migration whose
// name contains the given fragment, e.g. "0002_create_ledger.down".
func MigrationFile(fragment string) ([]byte, error) {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), fragment) {
			return migrationFiles.ReadFile("migrations/" + e.Name())
		}
	}
	return nil, fmt.Errorf("migration file not found: %s", fragment)
}

// translateError maps driver errors onto the store-level domain errors.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	se := &domain.StorageError{Code: string(pqErr.Code), Err: err}
	switch pqErr.Code {
	case codeStringDataRightTruncation:
		se.Kind = domain.ErrValueTooLong
	case codeUniqueViolation:
		if pqErr.Constraint == txHashConstraint {
			se.Kind = domain.ErrDuplicateTransaction
		}
	}
	return se
}
