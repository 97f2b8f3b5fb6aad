package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type randomTxIDGenerator struct {
	source io.Reader
	prefix string
	size   int
}

// NewTransactionIDGenerator returns a generator whose output is the hash
// prefix followed by hex-encoded random bytes, sized so the result exactly
// fills domain.TransactionHashLength.
func NewTransactionIDGenerator() ports.TransactionIDGenerator {
	return NewTransactionIDGeneratorFrom(rand.Reader, domain.TransactionHashPrefix, domain.TransactionHashLength)
}

// NewTransactionIDGeneratorFrom builds a generator reading from source.
// length must leave an even number of characters after prefix.
func NewTransactionIDGeneratorFrom(source io.Reader, prefix string, length int) ports.TransactionIDGenerator {
	return &randomTxIDGenerator{
		source: source,
		prefix: prefix,
		size:   (length - len(prefix)) / 2,
	}
}

func (g *randomTxIDGenerator) Generate() (string, error) {
	b := make([]byte, g.size)
	if _, err := io.ReadFull(g.source, b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return g.prefix + hex.EncodeToString(b), nil
}
