package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

// LedgerRepository is the append-only transaction store. Implementations must
// enforce uniqueness of the transaction hash and report it as
// domain.ErrDuplicateTransaction.
type LedgerRepository interface {
	InsertTransaction(ctx context.Context, tx *domain.Transaction) error
	GetByHash(ctx context.Context, hash string) (*domain.Transaction, error)
	HasVoted(ctx context.Context, electionID uuid.UUID, voterAddress string) (bool, error)
	ListOrphaned(ctx context.Context, limit int) ([]*domain.Transaction, error)
}

type VoteRepository interface {
	InsertVote(ctx context.Context, vote *domain.Vote) error
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*domain.Vote, error)
	CountVerified(ctx context.Context, electionID uuid.UUID) (int64, error)
	TallyVerified(ctx context.Context, electionID uuid.UUID) (map[uuid.UUID]int64, error)
}

// UnitOfWork runs fn with ledger and vote repositories bound to a single
// storage transaction. If fn returns an error nothing is committed.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ledger LedgerRepository, votes VoteRepository) error) error
}

// TransactionIDGenerator produces ledger transaction hashes.
type TransactionIDGenerator interface {
	Generate() (string, error)
}
