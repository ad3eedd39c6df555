package sales

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosscheck/pkg/platform/sentinel"
)

func TestGetOrder(t *testing.T) {
	store := NewInMemoryStore()
	store.Put(Order{OrderID: "SO-1", TotalAmount: decimal.RequireFromString("99.50")})

	t.Run("found", func(t *testing.T) {
		order, err := store.GetOrder(context.Background(), "SO-1")
		require.NoError(t, err)
		assert.Equal(t, "SO-1", order.OrderID)
		assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("99.50")))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := store.GetOrder(context.Background(), "SO-404")
		require.Error(t, err)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestPutOverwritesInPlace(t *testing.T) {
	store := NewInMemoryStore()
	store.Put(Order{OrderID: "SO-1"})
	store.Put(Order{OrderID: "SO-2"})
	store.Put(Order{OrderID: "SO-1", ContactID: "C-9"})

	assert.Equal(t, 2, store.Count())

	order, err := store.GetOrder(context.Background(), "SO-1")
	require.NoError(t, err)
	assert.Equal(t, "C-9", order.ContactID)

	orders, _, err := store.ListOrders(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "SO-1", orders[0].OrderID, "overwrite keeps the original position")
}

func TestListOrdersPagination(t *testing.T) {
	store := NewInMemoryStore()
	for i := 1; i <= 7; i++ {
		store.Put(Order{OrderID: fmt.Sprintf("SO-%d", i)})
	}

	page1, total, err := store.ListOrders(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, page1, 3)
	assert.Equal(t, "SO-1", page1[0].OrderID)

	page3, total, err := store.ListOrders(context.Background(), 3, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, page3, 1)
	assert.Equal(t, "SO-7", page3[0].OrderID)

	empty, total, err := store.ListOrders(context.Background(), 4, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Empty(t, empty)
}
