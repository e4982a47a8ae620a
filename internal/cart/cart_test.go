package cart

import (
	"testing"

	"github.com/bayti-store/server/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMergesByProductAndColor(t *testing.T) {
	c := New("u1")
	c.Add("p1", "black", 1)
	c.Add("p1", "black", 2)
	c.Add("p1", "white", 1)
	c.Add("p2", "", 1)

	require.Len(t, c.Lines, 3)
	assert.Equal(t, 3, c.Lines[0].Quantity)
	assert.Equal(t, "white", c.Lines[1].SelectedColor)
	assert.Equal(t, 5, c.Units())
}

func TestUpdateQuantityRemovesDrainedLine(t *testing.T) {
	c := New("u1")
	c.Add("p1", "", 2)

	c.UpdateQuantity("p1", "", -1)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 1, c.Lines[0].Quantity)

	// Dropping below one unit removes the line instead of keeping a zero line.
	c.UpdateQuantity("p1", "", -1)
	assert.Empty(t, c.Lines)

	c.UpdateQuantity("ghost", "", 1)
	assert.Empty(t, c.Lines)
}

func TestRemoveAndClear(t *testing.T) {
	c := New("u1")
	c.Add("p1", "black", 4)
	c.Add("p2", "", 1)

	c.Remove("p1", "black")
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "p2", c.Lines[0].ProductID)

	c.Clear()
	assert.Empty(t, c.Lines)
	assert.Equal(t, 0, c.Units())
}

type priceTable map[string]pricing.Line

func (p priceTable) PriceOf(id string) (string, float64, *float64, bool) {
	l, ok := p[id]
	if !ok {
		return "", 0, nil, false
	}
	return l.Category, l.StandardPrice, l.WholesalePrice, true
}

func TestPricingLinesSkipsUnknownProducts(t *testing.T) {
	c := New("u1")
	c.Add("p1", "black", 2)
	c.Add("gone", "", 1)

	wholesale := 800.0
	lines := c.PricingLines(priceTable{
		"p1": {Category: "Kitchen", StandardPrice: 1000, WholesalePrice: &wholesale},
	})

	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, "Kitchen", lines[0].Category)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "black", lines[0].SelectedColor)
	require.NotNil(t, lines[0].WholesalePrice)
	assert.Equal(t, 800.0, *lines[0].WholesalePrice)
}
