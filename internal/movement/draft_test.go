package movement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bekzodm/omborscan/internal/movement"
)

func TestDraft_Apply(t *testing.T) {
	d := &movement.Draft{Kind: movement.KindIn}
	p := &movement.Product{ID: "prod-7", Name: "Copper wire 2mm", SKU: "CW-002", Unit: "m", StockQty: 10}

	line := d.Apply(p, "item-1", 2, 1.5)
	require.Len(t, d.Lines, 1)
	assert.Equal(t, "item-1", line.ItemID)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 10, line.StockQty)

	// Re-applying the same product must not duplicate the line; the server
	// total wins over any local arithmetic.
	line = d.Apply(p, "item-1", 7, 2.0)
	require.Len(t, d.Lines, 1)
	assert.Equal(t, 7, line.Quantity)
	assert.Equal(t, 2.0, line.UnitPrice)
}

func TestDraft_Remove(t *testing.T) {
	d := &movement.Draft{Lines: []movement.Line{
		{ItemID: "item-1", ProductID: "prod-7"},
		{ItemID: "item-2", ProductID: "prod-8"},
	}}

	assert.False(t, d.Remove("item-9"))
	assert.Len(t, d.Lines, 2)

	assert.True(t, d.Remove("item-1"))
	require.Len(t, d.Lines, 1)
	assert.Equal(t, "item-2", d.Lines[0].ItemID)
}
