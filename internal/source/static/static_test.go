package static

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/storepulse/internal/source/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSampleTables(t *testing.T) {
	res := New().Load(context.Background(), domain.Request{Kind: domain.KindStatic})

	require.Len(t, res.Tables.Products, 5)
	require.Len(t, res.Tables.Customers, 3)
	assert.Empty(t, res.Warnings)

	// 12 + 20 + 15 + 9 + 7 synthesized orders
	assert.Len(t, res.Tables.Orders, 63)

	first := res.Tables.Orders[0]
	assert.Equal(t, "O101-0", first.OrderID)
	assert.Equal(t, "2025-08-01", first.PlacedAt.Format("2006-01-02"))
	require.Len(t, first.LineItems, 1)
	assert.Equal(t, int64(OrderQuantity), first.LineItems[0].Quantity)
	assert.True(t, first.LineItems[0].LineAmount.Equal(decimal.NewFromInt(500)))
}

func TestTablesReturnsIndependentCopies(t *testing.T) {
	a := Tables()
	a.Products[0].Title = "changed"

	b := Tables()
	assert.Equal(t, "Smart Watch", b.Products[0].Title)
}
