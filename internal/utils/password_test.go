package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("Sup3r-secret!")
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3r-secret!", hash)

	assert.NoError(t, h.Compare(hash, "Sup3r-secret!"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), ErrPasswordMismatch)
}

func TestHasher_CostIsEncoded(t *testing.T) {
	h := NewHasher(12)
	hash, err := h.Hash("pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 12, cost)
}

func TestHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.MinCost, NewHasher(1).Cost)
	assert.Equal(t, bcrypt.MaxCost, NewHasher(99).Cost)
}

func TestHasher_BadHash(t *testing.T) {
	err := NewHasher(bcrypt.MinCost).Compare("not-a-bcrypt-hash", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}
