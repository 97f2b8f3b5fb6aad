package services

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

func TestTransactionIDGenerator_FitsLedger(t *testing.T) {
	gen := NewTransactionIDGenerator()
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		id, err := gen.Generate()
		require.NoError(t, err)
		require.Len(t, id, domain.TransactionHashLength)
		require.True(t, strings.HasPrefix(id, domain.TransactionHashPrefix))

		_, err = hex.DecodeString(strings.TrimPrefix(id, domain.TransactionHashPrefix))
		require.NoError(t, err)

		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 10000)
}

func TestTransactionIDGenerator_DeterministicSource(t *testing.T) {
	source := bytes.NewReader(bytes.Repeat([]byte{0xab}, 31))
	gen := NewTransactionIDGeneratorFrom(source, "0x", 64)

	id, err := gen.Generate()
	require.NoError(t, err)
	assert.Equal(t, "0x"+strings.Repeat("ab", 31), id)

	_, err = gen.Generate()
	assert.Error(t, err)
}

func TestTransactionIDGenerator_SourceError(t *testing.T) {
	gen := NewTransactionIDGeneratorFrom(iotest.ErrReader(errors.New("entropy exhausted")), "0x", 64)

	_, err := gen.Generate()
	assert.ErrorContains(t, err, "entropy exhausted")
}
