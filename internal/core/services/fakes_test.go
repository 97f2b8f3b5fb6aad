package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

var errDuplicate = errors.New("duplicate key value violates unique constraint")

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// memStore backs the in-memory repositories used by the service tests.
type memStore struct {
	mu         sync.Mutex
	elections  map[uuid.UUID]*domain.Election
	candidates map[uuid.UUID]*domain.Candidate
	txs        []*domain.Transaction
	votes      []*domain.Vote
	audit      []*domain.AuditEvent

	electionErr  error
	candidateErr error
	// insertTx is consulted before every ledger insert; a non-nil error
	// aborts it.
	insertTx   func(tx *domain.Transaction) error
	insertVote error
	blockReads bool
}

func newMemStore() *memStore {
	return &memStore{
		elections:  make(map[uuid.UUID]*domain.Election),
		candidates: make(map[uuid.UUID]*domain.Candidate),
	}
}

func (m *memStore) addElection(status domain.ElectionStatus, start, end time.Time) *domain.Election {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &domain.Election{
		ID:        uuid.New(),
		Title:     "General",
		Status:    status,
		StartDate: start,
		EndDate:   end,
	}
	m.elections[e.ID] = e
	return e
}

func (m *memStore) addCandidate(electionID uuid.UUID, name string, active bool) *domain.Candidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &domain.Candidate{ID: uuid.New(), ElectionID: electionID, Name: name, IsActive: active}
	m.candidates[c.ID] = c
	return c
}

func (m *memStore) transactions() []*domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Transaction(nil), m.txs...)
}

func (m *memStore) voteRecords() []*domain.Vote {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Vote(nil), m.votes...)
}

func (m *memStore) auditEvents() []*domain.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.AuditEvent(nil), m.audit...)
}

func (m *memStore) electionRepo() ports.ElectionRepository   { return memElections{m} }
func (m *memStore) candidateRepo() ports.CandidateRepository { return memCandidates{m} }
func (m *memStore) ledgerRepo() ports.LedgerRepository       { return memLedger{m} }
func (m *memStore) voteRepo() ports.VoteRepository           { return memVotes{m} }
func (m *memStore) auditRepo() ports.AuditRepository         { return memAudit{m} }
func (m *memStore) unitOfWork() ports.UnitOfWork             { return memUnitOfWork{m} }

type memElections struct{ *memStore }

func (r memElections) Save(_ context.Context, e *domain.Election) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.elections[e.ID] = &cp
	return nil
}

func (r memElections) GetByID(ctx context.Context, id uuid.UUID) (*domain.Election, error) {
	if r.blockReads {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.electionErr != nil {
		return nil, r.electionErr
	}
	e, ok := r.elections[id]
	if !ok {
		return nil, domain.ErrElectionNotFound
	}
	cp := *e
	return &cp, nil
}

func (r memElections) List(_ context.Context, limit, offset int) ([]*domain.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*domain.Election, 0, len(r.elections))
	for _, e := range r.elections {
		cp := *e
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	if offset >= len(all) {
		return []*domain.Election{}, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r memElections) UpdateStatus(_ context.Context, id uuid.UUID, status domain.ElectionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.elections[id]
	if !ok {
		return domain.ErrElectionNotFound
	}
	e.Status = status
	return nil
}

type memCandidates struct{ *memStore }

func (r memCandidates) Save(_ context.Context, c *domain.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.candidates[c.ID] = &cp
	return nil
}

func (r memCandidates) GetByID(_ context.Context, id uuid.UUID) (*domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.candidateErr != nil {
		return nil, r.candidateErr
	}
	c, ok := r.candidates[id]
	if !ok {
		return nil, domain.ErrCandidateNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memCandidates) ListByElection(_ context.Context, electionID uuid.UUID, activeOnly bool) ([]*domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Candidate
	for _, c := range r.candidates {
		if c.ElectionID != electionID || (activeOnly && !c.IsActive) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memCandidates) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[id]
	if !ok {
		return domain.ErrCandidateNotFound
	}
	c.IsActive = active
	return nil
}

type memLedger struct{ *memStore }

func (r memLedger) InsertTransaction(_ context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertTx != nil {
		if err := r.insertTx(tx); err != nil {
			return err
		}
	}
	for _, existing := range r.txs {
		if existing.Hash == tx.Hash {
			return &domain.StorageError{Code: "23505", Kind: domain.ErrDuplicateTransaction, Err: errDuplicate}
		}
	}
	cp := *tx
	r.txs = append(r.txs, &cp)
	return nil
}

func (r memLedger) GetByHash(_ context.Context, hash string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.Hash == hash {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (r memLedger) HasVoted(_ context.Context, electionID uuid.UUID, voterAddress string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.ElectionID == electionID && tx.VoterAddress == voterAddress {
			return true, nil
		}
	}
	return false, nil
}

func (r memLedger) ListOrphaned(_ context.Context, limit int) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	recorded := make(map[uuid.UUID]bool, len(r.votes))
	for _, v := range r.votes {
		recorded[v.TransactionID] = true
	}
	var out []*domain.Transaction
	for _, tx := range r.txs {
		if recorded[tx.ID] || tx.Status != domain.TransactionStatusConfirmed {
			continue
		}
		cp := *tx
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type memVotes struct{ *memStore }

func (r memVotes) InsertVote(_ context.Context, vote *domain.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertVote != nil {
		return r.insertVote
	}
	for _, v := range r.votes {
		if v.TransactionID == vote.TransactionID {
			return &domain.StorageError{Code: "23505", Err: errDuplicate}
		}
	}
	cp := *vote
	r.votes = append(r.votes, &cp)
	return nil
}

func (r memVotes) GetByTransactionID(_ context.Context, transactionID uuid.UUID) (*domain.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.votes {
		if v.TransactionID == transactionID {
			cp := *v
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memVotes) CountVerified(_ context.Context, electionID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, v := range r.votes {
		if v.ElectionID == electionID && v.VerificationStatus == domain.VerificationStatusVerified {
			n++
		}
	}
	return n, nil
}

func (r memVotes) TallyVerified(_ context.Context, electionID uuid.UUID) (map[uuid.UUID]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tally := make(map[uuid.UUID]int64)
	for _, v := range r.votes {
		if v.ElectionID == electionID && v.VerificationStatus == domain.VerificationStatusVerified {
			tally[v.CandidateID]++
		}
	}
	return tally, nil
}

type memAudit struct{ *memStore }

func (r memAudit) Save(_ context.Context, event *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *event
	r.audit = append(r.audit, &cp)
	return nil
}

func (r memAudit) List(_ context.Context, limit, offset int) ([]*domain.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if offset >= len(r.audit) {
		return []*domain.AuditEvent{}, nil
	}
	out := r.audit[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return append([]*domain.AuditEvent(nil), out...), nil
}

// memUnitOfWork rolls back the ledger and vote writes of a failed callback.
type memUnitOfWork struct{ *memStore }

func (u memUnitOfWork) WithinTx(ctx context.Context, fn func(ledger ports.LedgerRepository, votes ports.VoteRepository) error) error {
	u.mu.Lock()
	txs, votes := len(u.txs), len(u.votes)
	u.mu.Unlock()

	if err := fn(memLedger{u.memStore}, memVotes{u.memStore}); err != nil {
		u.mu.Lock()
		u.txs = u.txs[:txs]
		u.votes = u.votes[:votes]
		u.mu.Unlock()
		return err
	}
	return nil
}

// recordingSink is a synchronous audit sink.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (s *recordingSink) Record(_ context.Context, event domain.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Action)
	}
	return out
}

func (s *recordingSink) find(action string) (domain.AuditEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.Action == action {
			return e, true
		}
	}
	return domain.AuditEvent{}, false
}

type panickingSink struct{}

func (panickingSink) Record(context.Context, domain.AuditEvent) {
	panic("audit store exploded")
}

// sequenceGenerator returns the given ids in order, then falls back to
// random ones.
type sequenceGenerator struct {
	mu    sync.Mutex
	ids   []string
	calls int
}

func (g *sequenceGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if len(g.ids) > 0 {
		id := g.ids[0]
		g.ids = g.ids[1:]
		return id, nil
	}
	return NewTransactionIDGenerator().Generate()
}
