package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

func insertOrphan(t *testing.T, store *memStore, election *domain.Election, candidate *domain.Candidate) *domain.Transaction {
	t.Helper()
	hash, err := NewTransactionIDGenerator().Generate()
	require.NoError(t, err)
	tx := &domain.Transaction{
		ID:           uuid.New(),
		Hash:         hash,
		ElectionID:   election.ID,
		CandidateID:  candidate.ID,
		VoterAddress: "0xorphan",
		Payload:      json.RawMessage(`{}`),
		Signature:    "sig",
		Status:       domain.TransactionStatusConfirmed,
		CreatedAt:    testNow,
	}
	require.NoError(t, store.ledgerRepo().InsertTransaction(context.Background(), tx))
	return tx
}

func TestReconcile(t *testing.T) {
	tokenizer, err := NewVoterTokenizer([]byte("test-key"))
	require.NoError(t, err)

	setup := func(t *testing.T) (*memStore, *Metrics, []*domain.Transaction) {
		store := newMemStore()
		election := store.addElection(domain.ElectionStatusActive, testNow.Add(-time.Hour), testNow.Add(time.Hour))
		candidate := store.addCandidate(election.ID, "Ada", true)

		f := &voteFixture{store: store, sink: &recordingSink{}, election: election, candidate: candidate}
		_, err := f.service(t).SubmitVote(context.Background(), f.input())
		require.NoError(t, err)

		orphans := []*domain.Transaction{
			insertOrphan(t, store, election, candidate),
			insertOrphan(t, store, election, candidate),
		}
		return store, NewMetrics(prometheus.NewRegistry()), orphans
	}

	t.Run("flag only", func(t *testing.T) {
		store, metrics, orphans := setup(t)
		svc := NewReconcileService(store.ledgerRepo(), store.voteRepo(), store.auditRepo(), tokenizer, zerolog.Nop(), metrics, 0)

		report, err := svc.Reconcile(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Scanned)
		assert.Equal(t, 2, report.Flagged)
		assert.Equal(t, 0, report.Backfilled)
		assert.Len(t, store.voteRecords(), 1)
		assert.Equal(t, 2.0, testutil.ToFloat64(metrics.orphans))

		hashes := make([]string, 0, len(orphans))
		for _, e := range store.auditEvents() {
			assert.Equal(t, domain.ActionOrphanedTransaction, e.Action)
			assert.Equal(t, domain.ActorSystem, e.ActorType)
			hashes = append(hashes, e.ResourceID)
		}
		assert.ElementsMatch(t, []string{orphans[0].Hash, orphans[1].Hash}, hashes)
	})

	t.Run("backfill", func(t *testing.T) {
		store, metrics, orphans := setup(t)
		svc := NewReconcileService(store.ledgerRepo(), store.voteRepo(), store.auditRepo(), tokenizer, zerolog.Nop(), metrics, 0)

		report, err := svc.Reconcile(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Backfilled)
		assert.Len(t, store.voteRecords(), 3)

		vote, err := store.voteRepo().GetByTransactionID(context.Background(), orphans[0].ID)
		require.NoError(t, err)
		want, err := tokenizer.Token(orphans[0].VoterAddress, orphans[0].CreatedAt)
		require.NoError(t, err)
		assert.Equal(t, want, vote.VoterToken)
		assert.Equal(t, domain.VerificationStatusVerified, vote.VerificationStatus)

		again, err := svc.Reconcile(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, 0, again.Scanned)
	})

	t.Run("batch size", func(t *testing.T) {
		store, metrics, _ := setup(t)
		svc := NewReconcileService(store.ledgerRepo(), store.voteRepo(), store.auditRepo(), tokenizer, zerolog.Nop(), metrics, 1)

		report, err := svc.Reconcile(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Scanned)
	})

	t.Run("every flag of a large batch is persisted", func(t *testing.T) {
		store := newMemStore()
		election := store.addElection(domain.ElectionStatusActive, testNow.Add(-time.Hour), testNow.Add(time.Hour))
		candidate := store.addCandidate(election.ID, "Ada", true)
		const orphans = DefaultAuditBufferSize + 44
		for i := 0; i < orphans; i++ {
			insertOrphan(t, store, election, candidate)
		}

		slow := &slowAuditRepo{AuditRepository: store.auditRepo(), delay: time.Millisecond}
		svc := NewReconcileService(store.ledgerRepo(), store.voteRepo(), slow, tokenizer, zerolog.Nop(), nil, 0)

		report, err := svc.Reconcile(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, orphans, report.Scanned)
		assert.Equal(t, orphans, report.Flagged)
		assert.Len(t, store.auditEvents(), orphans)
	})

	t.Run("failed flags are not counted", func(t *testing.T) {
		store, metrics, _ := setup(t)
		failing := &slowAuditRepo{AuditRepository: store.auditRepo(), err: errors.New("audit_logs unavailable")}
		svc := NewReconcileService(store.ledgerRepo(), store.voteRepo(), failing, tokenizer, zerolog.Nop(), metrics, 0)

		report, err := svc.Reconcile(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Scanned)
		assert.Equal(t, 0, report.Flagged)
		assert.Equal(t, 2, report.Backfilled)
		assert.Empty(t, store.auditEvents())
		assert.Equal(t, 2.0, testutil.ToFloat64(metrics.auditFailed))
	})
}

type slowAuditRepo struct {
	ports.AuditRepository
	delay time.Duration
	err   error
}

func (r *slowAuditRepo) Save(ctx context.Context, event *domain.AuditEvent) error {
	time.Sleep(r.delay)
	if r.err != nil {
		return r.err
	}
	return r.AuditRepository.Save(ctx, event)
}
