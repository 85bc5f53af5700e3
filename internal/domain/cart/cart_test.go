package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_Add(t *testing.T) {
	var s Snapshot
	assert.True(t, s.IsEmpty())

	productID := uuid.New()
	require.NoError(t, s.Add(productID, 2))
	require.NoError(t, s.Add(productID, 3))
	require.NoError(t, s.Add(uuid.New(), 1))

	assert.Len(t, s.Lines, 2)
	assert.Equal(t, 5, s.QuantityOf(productID))

	assert.Error(t, s.Add(productID, 0))
	assert.Error(t, s.Add(productID, -1))
}

func TestSnapshot_SetQuantity(t *testing.T) {
	var s Snapshot
	productID := uuid.New()
	require.NoError(t, s.Add(productID, 2))

	require.NoError(t, s.SetQuantity(productID, 7))
	assert.Equal(t, 7, s.QuantityOf(productID))

	// zero removes the line
	require.NoError(t, s.SetQuantity(productID, 0))
	assert.True(t, s.IsEmpty())

	assert.Error(t, s.SetQuantity(productID, 1), "line no longer exists")
	assert.Error(t, s.SetQuantity(uuid.New(), -1))
}

func TestSnapshot_Remove(t *testing.T) {
	var s Snapshot
	productID := uuid.New()
	require.NoError(t, s.Add(productID, 2))

	require.NoError(t, s.Remove(productID))
	assert.True(t, s.IsEmpty())
	assert.Error(t, s.Remove(productID))
}
