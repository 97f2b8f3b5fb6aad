package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	codeConstraintUnique = "SQLITE_CONSTRAINT_UNIQUE"
	codeConstraintCheck  = "SQLITE_CONSTRAINT_CHECK"
)

// Open opens the embedded store at path, creating the file and its parent
// directory if needed. An empty path opens a private in-memory database.
func Open(path string) (*gorm.DB, error) {
	var dsn string
	if path == "" {
		// each call gets its own named in-memory database
		dsn = fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", uuid.NewString())
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers; a single connection avoids lock errors and
	// keeps the in-memory database alive.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&electionModel{},
		&candidateModel{},
		&transactionModel{},
		&voteModel{},
		&auditModel{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

type unitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) ports.UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) WithinTx(ctx context.Context, fn func(ledger ports.LedgerRepository, votes ports.VoteRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx}, &voteRepository{db: tx})
	})
}

// translateError maps SQLite constraint failures onto the store-level
// domain errors.
func translateError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed: transactions.tx_hash"):
		return &domain.StorageError{Code: codeConstraintUnique, Kind: domain.ErrDuplicateTransaction, Err: err}
	case strings.Contains(msg, "CHECK constraint failed: chk_transactions_tx_hash_length"):
		return &domain.StorageError{Code: codeConstraintCheck, Kind: domain.ErrValueTooLong, Err: err}
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return &domain.StorageError{Code: codeConstraintUnique, Err: err}
	}
	return err
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
