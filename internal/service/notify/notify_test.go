package notify

import (
	"fmt"
	"testing"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrain(t *testing.T) {
	in := NewInbox(0)
	assert.Empty(t, in.Drain())

	in.NotifyNewOrder(order.Order{ID: "0f5c2a1e-9a7b", CustomerName: "Ana", ItemSummary: "2x Ribeye"})
	in.NotifyNewOrder(order.Order{ID: "b", CustomerName: "Luis"})
	assert.Equal(t, 2, in.Len())

	got := in.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "0f5c2a1e", got[0].ShortID)
	assert.Equal(t, "2x Ribeye", got[0].Summary)
	assert.Equal(t, "Luis", got[1].CustomerName)
	assert.Zero(t, in.Len())
}

func TestDropsOldestWhenFull(t *testing.T) {
	in := NewInbox(3)
	for i := 0; i < 5; i++ {
		in.NotifyNewOrder(order.Order{ID: fmt.Sprintf("o-%d", i)})
	}

	got := in.Drain()
	require.Len(t, got, 3)
	assert.Equal(t, "o-2", got[0].OrderID)
	assert.Equal(t, "o-4", got[2].OrderID)
}
