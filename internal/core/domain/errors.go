package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput              = errors.New("invalid input")
	ErrNotFound                  = errors.New("not found")
	ErrElectionNotFound          = errors.New("election not found")
	ErrCandidateNotFound         = errors.New("candidate not found")
	ErrTransactionNotFound       = errors.New("transaction not found")
	ErrElectionNotAcceptingVotes = errors.New("election is not accepting votes")
	ErrInvalidCandidate          = errors.New("invalid candidate for this election")
	ErrAlreadyVoted              = errors.New("voter has already voted in this election")
	ErrTransactionIDTooLong      = errors.New("transaction identifier exceeds ledger capacity")
	ErrTransactionWriteFailed    = errors.New("transaction write failed")
	ErrVoteRecordingFailed       = errors.New("vote recording failed")
	ErrStorageUnavailable        = errors.New("storage unavailable")

	// Store-level errors, translated by the adapters.
	ErrDuplicateTransaction = errors.New("duplicate transaction hash")
	ErrValueTooLong         = errors.New("value too long for column")
)

type EligibilityReason string

const (
	ReasonNotStarted EligibilityReason = "not_started"
	ReasonEnded      EligibilityReason = "ended"
	ReasonInactive   EligibilityReason = "inactive"
)

type CandidateReason string

const (
	ReasonInvalidCandidate       CandidateReason = "invalid_candidate"
	ReasonCandidateWrongElection CandidateReason = "candidate_wrong_election"
	ReasonCandidateInactive      CandidateReason = "candidate_inactive"
)

// EligibilityError is returned when an election refuses a vote.
type EligibilityError struct {
	Reason      EligibilityReason `json:"reason"`
	Status      ElectionStatus    `json:"status"`
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	EvaluatedAt time.Time         `json:"evaluatedAt"`
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("%s: %s", ErrElectionNotAcceptingVotes, e.Reason)
}

func (e *EligibilityError) Unwrap() error {
	return ErrElectionNotAcceptingVotes
}

// CandidateError is returned when the candidate cannot receive the vote.
type CandidateError struct {
	Reason CandidateReason `json:"reason"`
}

func (e *CandidateError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidCandidate, e.Reason)
}

func (e *CandidateError) Unwrap() error {
	return ErrInvalidCandidate
}

// PipelineError is a storage failure raised while persisting a vote. Kind is
// one of ErrTransactionIDTooLong, ErrTransactionWriteFailed or
// ErrVoteRecordingFailed.
type PipelineError struct {
	Kind   error
	Detail string
	Err    error
}

func (e *PipelineError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *PipelineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ErrorKind returns the stable identifier reported to clients.
func (e *PipelineError) ErrorKind() string {
	switch {
	case errors.Is(e.Kind, ErrTransactionIDTooLong):
		return "TransactionIdentifierTooLong"
	case errors.Is(e.Kind, ErrVoteRecordingFailed):
		return "VoteRecordingFailed"
	default:
		return "TransactionWriteFailed"
	}
}

// StorageError carries the driver error code of a failed write. Kind is an
// optional store-level sentinel such as ErrDuplicateTransaction.
type StorageError struct {
	Code string
	Kind error
	Err  error
}

func (e *StorageError) Error() string {
	if e.Code == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s (code %s)", e.Err, e.Code)
}

func (e *StorageError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

// StorageErrorCode returns the driver code wrapped in err, if any.
func StorageErrorCode(err error) string {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
