package services

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
)

const (
	voterTokenPrefix       = "anon_"
	voterTokenDigestLength = 32
	verificationCodeLength = 8
)

// VoterTokenizer derives anonymized voter tokens with a keyed BLAKE2b digest.
type VoterTokenizer struct {
	key []byte
}

// NewVoterTokenizer accepts keys of up to 64 bytes; longer keys are rejected
// by blake2b.
func NewVoterTokenizer(key []byte) (*VoterTokenizer, error) {
	if len(key) > blake2b.Size {
		return nil, fmt.Errorf("voter token key must be at most %d bytes", blake2b.Size)
	}
	return &VoterTokenizer{key: key}, nil
}

// Token is deterministic for a given address and instant.
func (t *VoterTokenizer) Token(voterAddress string, at time.Time) (string, error) {
	h, err := blake2b.New256(t.key)
	if err != nil {
		return "", fmt.Errorf("failed to init digest: %w", err)
	}
	h.Write([]byte(voterAddress))
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(at.UnixNano()))
	h.Write(ts[:])

	digest := hex.EncodeToString(h.Sum(nil))
	return voterTokenPrefix + digest[:voterTokenDigestLength], nil
}

// VerificationCode returns the non-secret suffix of a voter token.
func VerificationCode(token string) string {
	if len(token) <= verificationCodeLength {
		return token
	}
	return token[len(token)-verificationCodeLength:]
}
