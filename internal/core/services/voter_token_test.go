package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoterTokenizer(t *testing.T) {
	tokenizer, err := NewVoterTokenizer([]byte("secret"))
	require.NoError(t, err)

	token, err := tokenizer.Token("0xabc", testNow)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "anon_"))
	assert.Len(t, token, 37)
	assert.NotContains(t, token, "0xabc")

	again, err := tokenizer.Token("0xabc", testNow)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	later, err := tokenizer.Token("0xabc", testNow.Add(time.Nanosecond))
	require.NoError(t, err)
	assert.NotEqual(t, token, later)

	otherVoter, err := tokenizer.Token("0xabd", testNow)
	require.NoError(t, err)
	assert.NotEqual(t, token, otherVoter)
}

func TestVoterTokenizer_KeyChangesToken(t *testing.T) {
	a, err := NewVoterTokenizer([]byte("key-a"))
	require.NoError(t, err)
	b, err := NewVoterTokenizer([]byte("key-b"))
	require.NoError(t, err)

	ta, err := a.Token("0xabc", testNow)
	require.NoError(t, err)
	tb, err := b.Token("0xabc", testNow)
	require.NoError(t, err)
	assert.NotEqual(t, ta, tb)
}

func TestVoterTokenizer_RejectsLongKey(t *testing.T) {
	_, err := NewVoterTokenizer(bytes.Repeat([]byte("k"), 65))
	assert.Error(t, err)

	_, err = NewVoterTokenizer(bytes.Repeat([]byte("k"), 64))
	assert.NoError(t, err)
}

func TestVerificationCode(t *testing.T) {
	assert.Equal(t, "89abcdef", VerificationCode("anon_0123456789abcdef"))
	assert.Equal(t, "short", VerificationCode("short"))
}
