package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

const (
	maxLedgerWriteAttempts = 3
	payloadSampleLimit     = 1000
)

type voteService struct {
	eligibility ports.EligibilityChecker
	uow         ports.UnitOfWork
	ledgerRepo  ports.LedgerRepository
	voteRepo    ports.VoteRepository
	audit       ports.AuditSink
	tokenizer   *VoterTokenizer

	idGen           ports.TransactionIDGenerator
	now             func() time.Time
	storageTimeout  time.Duration
	oneVotePerVoter bool
	logger          zerolog.Logger
	metrics         *Metrics
}

type VoteServiceOption func(*voteService)

func WithClock(now func() time.Time) VoteServiceOption {
	return func(s *voteService) { s.now = now }
}

func WithTransactionIDGenerator(g ports.TransactionIDGenerator) VoteServiceOption {
	return func(s *voteService) { s.idGen = g }
}

// WithStorageTimeout bounds every storage call made while handling one vote.
func WithStorageTimeout(d time.Duration) VoteServiceOption {
	return func(s *voteService) { s.storageTimeout = d }
}

// WithOneVotePerVoter rejects a second vote from the same voter address in
// the same election with domain.ErrAlreadyVoted.
func WithOneVotePerVoter(enabled bool) VoteServiceOption {
	return func(s *voteService) { s.oneVotePerVoter = enabled }
}

func WithLogger(logger zerolog.Logger) VoteServiceOption {
	return func(s *voteService) { s.logger = logger }
}

func WithMetrics(m *Metrics) VoteServiceOption {
	return func(s *voteService) { s.metrics = m }
}

func NewVoteService(
	eligibility ports.EligibilityChecker,
	uow ports.UnitOfWork,
	ledgerRepo ports.LedgerRepository,
	voteRepo ports.VoteRepository,
	audit ports.AuditSink,
	tokenizer *VoterTokenizer,
	opts ...VoteServiceOption,
) ports.VoteService {
	s := &voteService{
		eligibility: eligibility,
		uow:         uow,
		ledgerRepo:  ledgerRepo,
		voteRepo:    voteRepo,
		audit:       audit,
		tokenizer:   tokenizer,
		idGen:       NewTransactionIDGenerator(),
		now:         time.Now,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *voteService) SubmitVote(ctx context.Context, input ports.SubmitVoteInput) (*domain.VoteReceipt, error) {
	started := time.Now()

	electionID, candidateID, err := validateVoteInput(input)
	if err != nil {
		s.metrics.observeSubmission(outcomeInvalidInput, started)
		return nil, err
	}

	eligibility, election, err := s.checkEligibility(ctx, electionID)
	if err != nil {
		s.metrics.observeSubmission(outcomeFailed, started)
		return nil, err
	}
	if !eligibility.Allowed {
		rejection := &domain.EligibilityError{
			Reason:      eligibility.Reason,
			Status:      election.Status,
			Start:       election.StartDate,
			End:         election.EndDate,
			EvaluatedAt: eligibility.EvaluatedAt,
		}
		s.record(ctx, domain.AuditEvent{
			ActorType:    domain.ActorVoter,
			ActorID:      input.VoterAddress,
			Action:       domain.ActionVoteRejected,
			ResourceType: domain.ResourceElection,
			ResourceID:   electionID.String(),
			Details: map[string]any{
				"reason":        string(rejection.Reason),
				"status":        string(rejection.Status),
				"start_date":    rejection.Start,
				"end_date":      rejection.End,
				"evaluated_at":  rejection.EvaluatedAt,
				"voter_address": input.VoterAddress,
			},
		})
		s.metrics.observeSubmission(outcomeRejected, started)
		return nil, rejection
	}

	check, err := s.checkCandidate(ctx, candidateID, electionID)
	if err != nil {
		s.metrics.observeSubmission(outcomeFailed, started)
		return nil, err
	}
	if !check.Allowed {
		s.record(ctx, domain.AuditEvent{
			ActorType:    domain.ActorVoter,
			ActorID:      input.VoterAddress,
			Action:       domain.ActionVoteRejected,
			ResourceType: domain.ResourceCandidate,
			ResourceID:   candidateID.String(),
			Details: map[string]any{
				"reason":        string(check.Reason),
				"election_id":   electionID.String(),
				"voter_address": input.VoterAddress,
			},
		})
		s.metrics.observeSubmission(outcomeInvalidCandidate, started)
		return nil, &domain.CandidateError{Reason: check.Reason}
	}

	if s.oneVotePerVoter {
		voted, err := s.hasVoted(ctx, electionID, input.VoterAddress)
		if err != nil {
			s.metrics.observeSubmission(outcomeFailed, started)
			return nil, err
		}
		if voted {
			s.metrics.observeSubmission(outcomeAlreadyVoted, started)
			return nil, domain.ErrAlreadyVoted
		}
	}

	tx, vote, err := s.persist(ctx, electionID, candidateID, input)
	if err != nil {
		s.metrics.observeSubmission(outcomeFailed, started)
		return nil, err
	}

	receipt := &domain.VoteReceipt{
		TransactionID:    tx.ID,
		TransactionHash:  tx.Hash,
		Timestamp:        s.now(),
		ElectionID:       electionID,
		VerificationCode: VerificationCode(vote.VoterToken),
	}

	s.record(ctx, domain.AuditEvent{
		ActorType:    domain.ActorVoter,
		ActorID:      vote.VoterToken,
		Action:       domain.ActionVoteCast,
		ResourceType: domain.ResourceTransaction,
		ResourceID:   tx.Hash,
		Details: map[string]any{
			"election_id":    electionID.String(),
			"transaction_id": tx.ID.String(),
		},
	})
	s.metrics.observeSubmission(outcomeAccepted, started)
	return receipt, nil
}

func validateVoteInput(input ports.SubmitVoteInput) (uuid.UUID, uuid.UUID, error) {
	switch {
	case input.ElectionID == "":
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: election id is required", domain.ErrInvalidInput)
	case input.CandidateID == "":
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: candidate id is required", domain.ErrInvalidInput)
	case input.VoterAddress == "":
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: voter address is required", domain.ErrInvalidInput)
	case len(input.VoterAddress) > domain.MaxVoterAddressLength:
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: voter address exceeds %d characters", domain.ErrInvalidInput, domain.MaxVoterAddressLength)
	case len(input.VotePayload) == 0 || string(input.VotePayload) == "null":
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: vote data is required", domain.ErrInvalidInput)
	case input.Signature == "":
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: signature is required", domain.ErrInvalidInput)
	}

	electionID, err := uuid.Parse(input.ElectionID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: invalid election id", domain.ErrInvalidInput)
	}
	candidateID, err := uuid.Parse(input.CandidateID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: invalid candidate id", domain.ErrInvalidInput)
	}
	return electionID, candidateID, nil
}

func (s *voteService) checkEligibility(ctx context.Context, electionID uuid.UUID) (ports.Eligibility, *domain.Election, error) {
	ctx, cancel := s.storageContext(ctx)
	defer cancel()
	return s.eligibility.CheckEligibility(ctx, electionID)
}

func (s *voteService) checkCandidate(ctx context.Context, candidateID, electionID uuid.UUID) (ports.CandidateCheck, error) {
	ctx, cancel := s.storageContext(ctx)
	defer cancel()
	return s.eligibility.CheckCandidate(ctx, candidateID, electionID)
}

func (s *voteService) hasVoted(ctx context.Context, electionID uuid.UUID, voterAddress string) (bool, error) {
	ctx, cancel := s.storageContext(ctx)
	defer cancel()
	voted, err := s.ledgerRepo.HasVoted(ctx, electionID, voterAddress)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return voted, nil
}

// persist writes the ledger entry and its vote record in one unit of work.
// A hash collision regenerates the hash and retries.
func (s *voteService) persist(ctx context.Context, electionID, candidateID uuid.UUID, input ports.SubmitVoteInput) (*domain.Transaction, *domain.Vote, error) {
	for attempt := 1; ; attempt++ {
		hash, err := s.transactionHash()
		if err != nil {
			return nil, nil, &domain.PipelineError{Kind: domain.ErrTransactionWriteFailed, Detail: err.Error(), Err: err}
		}

		now := s.now()
		token, err := s.tokenizer.Token(input.VoterAddress, now)
		if err != nil {
			return nil, nil, &domain.PipelineError{Kind: domain.ErrVoteRecordingFailed, Detail: err.Error(), Err: err}
		}

		tx := &domain.Transaction{
			ID:           uuid.New(),
			Hash:         hash,
			ElectionID:   electionID,
			CandidateID:  candidateID,
			VoterAddress: input.VoterAddress,
			Payload:      input.VotePayload,
			Signature:    input.Signature,
			Status:       domain.TransactionStatusConfirmed,
			CreatedAt:    now,
		}
		vote := &domain.Vote{
			ID:                 uuid.New(),
			TransactionID:      tx.ID,
			ElectionID:         electionID,
			CandidateID:        candidateID,
			VoterToken:         token,
			VerificationStatus: domain.VerificationStatusVerified,
			CreatedAt:          now,
		}

		err = s.writeBallot(ctx, tx, vote)
		if err == nil {
			return tx, vote, nil
		}

		var perr *domain.PipelineError
		if !errors.As(err, &perr) {
			perr = &domain.PipelineError{Kind: domain.ErrTransactionWriteFailed, Err: err}
		}
		if errors.Is(perr.Kind, domain.ErrTransactionWriteFailed) && errors.Is(perr.Err, domain.ErrDuplicateTransaction) {
			s.metrics.incCollision()
			if attempt < maxLedgerWriteAttempts {
				s.logger.Warn().Str("transaction_hash", hash).Int("attempt", attempt).Msg("transaction hash collision, regenerating")
				continue
			}
		}
		return nil, nil, s.fail(ctx, perr, tx)
	}
}

func (s *voteService) writeBallot(ctx context.Context, tx *domain.Transaction, vote *domain.Vote) error {
	ctx, cancel := s.storageContext(ctx)
	defer cancel()

	return s.uow.WithinTx(ctx, func(ledger ports.LedgerRepository, votes ports.VoteRepository) error {
		if err := ledger.InsertTransaction(ctx, tx); err != nil {
			return &domain.PipelineError{Kind: domain.ErrTransactionWriteFailed, Err: err}
		}
		if err := votes.InsertVote(ctx, vote); err != nil {
			return &domain.PipelineError{Kind: domain.ErrVoteRecordingFailed, Err: err}
		}
		return nil
	})
}

// fail fills in the client-facing detail of a storage failure and records
// it for operators.
func (s *voteService) fail(ctx context.Context, perr *domain.PipelineError, tx *domain.Transaction) error {
	cause := perr.Err
	if cause == nil {
		cause = perr.Kind
	}

	if errors.Is(perr.Kind, domain.ErrVoteRecordingFailed) {
		perr.Detail = cause.Error()
		s.logger.Error().Err(cause).Str("transaction_hash", tx.Hash).Msg("vote recording failed, ledger write rolled back")
		s.record(ctx, domain.AuditEvent{
			ActorType:    domain.ActorSystem,
			Action:       domain.ActionVoteRecordingFailed,
			ResourceType: domain.ResourceVote,
			ResourceID:   tx.Hash,
			Details: map[string]any{
				"error_code":       domain.StorageErrorCode(cause),
				"error_message":    cause.Error(),
				"transaction_hash": tx.Hash,
				"election_id":      tx.ElectionID.String(),
				"timestamp":        s.now(),
			},
		})
		return perr
	}

	if errors.Is(cause, domain.ErrValueTooLong) && hashOverflowed(tx) {
		perr.Kind = domain.ErrTransactionIDTooLong
		perr.Detail = fmt.Sprintf("generated transaction hash of %d characters did not fit the ledger's tx_hash column: %s", len(tx.Hash), cause)
	} else {
		perr.Detail = cause.Error()
	}

	s.logger.Error().Err(cause).Str("transaction_hash", tx.Hash).Str("error_kind", perr.ErrorKind()).Msg("ledger write failed")
	s.record(ctx, domain.AuditEvent{
		ActorType:    domain.ActorSystem,
		Action:       domain.ActionTransactionFailed,
		ResourceType: domain.ResourceTransaction,
		ResourceID:   tx.Hash,
		Details: map[string]any{
			"error_code":       domain.StorageErrorCode(cause),
			"error_message":    cause.Error(),
			"transaction_hash": tx.Hash,
			"hash_length":      len(tx.Hash),
			"vote_data_sample": payloadSample(tx.Payload),
			"election_id":      tx.ElectionID.String(),
			"candidate_id":     tx.CandidateID.String(),
			"timestamp":        s.now(),
		},
	})
	return perr
}

// hashOverflowed reports whether a value-too-long error on tx can only have
// come from its hash. voter_address is the one other bounded column fed by
// the caller.
func hashOverflowed(tx *domain.Transaction) bool {
	return len(tx.VoterAddress) <= domain.MaxVoterAddressLength
}

func (s *voteService) transactionHash() (string, error) {
	hash, err := s.idGen.Generate()
	if err != nil {
		return "", err
	}
	if len(hash) > domain.TransactionHashLength {
		s.logger.Warn().
			Int("length", len(hash)).
			Int("capacity", domain.TransactionHashLength).
			Msg("generated transaction hash exceeds ledger capacity, truncating")
		s.metrics.incTruncation()
		hash = hash[:domain.TransactionHashLength]
	}
	return hash, nil
}

// record hands event to the audit sink. A panicking sink is logged and
// otherwise ignored.
func (s *voteService) record(ctx context.Context, event domain.AuditEvent) {
	if s.audit == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("action", event.Action).Msg("audit sink panicked")
		}
	}()
	s.audit.Record(ctx, event)
}

func (s *voteService) storageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storageTimeout)
}

func payloadSample(payload []byte) string {
	r := []rune(string(payload))
	if len(r) <= payloadSampleLimit {
		return string(r)
	}
	return string(r[:payloadSampleLimit])
}

func (s *voteService) VerifyReceipt(ctx context.Context, transactionHash, verificationCode string) (*domain.ReceiptVerification, error) {
	if transactionHash == "" || verificationCode == "" {
		return nil, fmt.Errorf("%w: transaction hash and verification code are required", domain.ErrInvalidInput)
	}

	ctx, cancel := s.storageContext(ctx)
	defer cancel()

	tx, err := s.ledgerRepo.GetByHash(ctx, transactionHash)
	if err != nil {
		return nil, err
	}

	result := &domain.ReceiptVerification{
		TransactionHash: tx.Hash,
		ElectionID:      tx.ElectionID,
		RecordedAt:      tx.CreatedAt,
	}

	vote, err := s.voteRepo.GetByTransactionID(ctx, tx.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return result, nil
		}
		return nil, err
	}

	result.VerificationStatus = vote.VerificationStatus
	code := VerificationCode(vote.VoterToken)
	result.Valid = subtle.ConstantTimeCompare([]byte(code), []byte(verificationCode)) == 1
	return result, nil
}
