package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/ballot/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/ballot/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/ballot/internal/config"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

// Stores bundles the repositories of one storage backend.
type Stores struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
	Ledger     ports.LedgerRepository
	Votes      ports.VoteRepository
	Audit      ports.AuditRepository
	UnitOfWork ports.UnitOfWork

	db *sql.DB
}

func (s *Stores) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Stores) Close() error {
	return s.db.Close()
}

// Open connects to the backend named by cfg.StorageDriver.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to reach postgres: %w", err)
		}
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, err
			}
		}
		return NewPostgres(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func NewPostgres(db *sql.DB) *Stores {
	return &Stores{
		Elections:  postgres.NewElectionRepository(db),
		Candidates: postgres.NewCandidateRepository(db),
		Ledger:     postgres.NewLedgerRepository(db),
		Votes:      postgres.NewVoteRepository(db),
		Audit:      postgres.NewAuditRepository(db),
		UnitOfWork: postgres.NewUnitOfWork(db),
		db:         db,
	}
}

// OpenSQLite opens the embedded store. An empty path is in-memory.
func OpenSQLite(path string) (*Stores, error) {
	gdb, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	db, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	return &Stores{
		Elections:  sqlite.NewElectionRepository(gdb),
		Candidates: sqlite.NewCandidateRepository(gdb),
		Ledger:     sqlite.NewLedgerRepository(gdb),
		Votes:      sqlite.NewVoteRepository(gdb),
		Audit:      sqlite.NewAuditRepository(gdb),
		UnitOfWork: sqlite.NewUnitOfWork(gdb),
		db:         db,
	}, nil
}
