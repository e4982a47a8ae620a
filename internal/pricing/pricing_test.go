package pricing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestResolveUnitPriceSelection(t *testing.T) {
	lines := []Line{
		{ProductID: "p1", Category: "Kitchen", StandardPrice: 1000, WholesalePrice: ptr(800), Quantity: 1},
		{ProductID: "p2", Category: "Decor", StandardPrice: 500, Quantity: 1},
	}

	standard := Resolve(lines, false, nil, nil)
	assert.Equal(t, 1000.0, standard.Lines[0].UnitPrice)
	assert.Equal(t, 500.0, standard.Lines[1].UnitPrice)

	wholesale := Resolve(lines, true, nil, nil)
	assert.Equal(t, 800.0, wholesale.Lines[0].UnitPrice)
	// No wholesale price defined, so the buyer tier does not matter.
	assert.Equal(t, 500.0, wholesale.Lines[1].UnitPrice)
}

func TestResolveCategoryDiscountMonotonic(t *testing.T) {
	line := []Line{{ProductID: "p1", Category: "Kitchen", StandardPrice: 730, Quantity: 3}}

	prev := Resolve(line, false, CategoryDiscounts{"Kitchen": 0}, nil)
	assert.Equal(t, prev.Lines[0].Gross, prev.Lines[0].Net, "zero discount must leave net == gross exactly")

	for pct := 1.0; pct <= 100; pct++ {
		cur := Resolve(line, false, CategoryDiscounts{"Kitchen": pct}, nil)
		assert.LessOrEqual(t, cur.Lines[0].Net, prev.Lines[0].Net, "pct %v", pct)
		prev = cur
	}
	assert.Equal(t, 0.0, prev.Lines[0].Net)
}

func TestResolveMissingCategoryIsZeroPct(t *testing.T) {
	q := Resolve(
		[]Line{{ProductID: "p1", Category: "Garden", StandardPrice: 120, Quantity: 2}},
		false,
		CategoryDiscounts{"Kitchen": 50},
		nil,
	)
	assert.Equal(t, 0.0, q.Lines[0].CategoryPct)
	assert.Equal(t, 240.0, q.Lines[0].Net)
}

func TestResolveSubtotalAdditivityOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	lines := make([]Line, 0, 12)
	for i := 0; i < 12; i++ {
		l := Line{
			ProductID:     string(rune('a' + i)),
			Category:      []string{"Kitchen", "Decor", "Appliances"}[i%3],
			StandardPrice: float64(rng.Intn(5000)) + 0.5,
			Quantity:      1 + rng.Intn(5),
		}
		if i%2 == 0 {
			l.WholesalePrice = ptr(l.StandardPrice * 0.8)
		}
		lines = append(lines, l)
	}
	discounts := CategoryDiscounts{"Kitchen": 10, "Appliances": 25}

	base := Resolve(lines, true, discounts, nil)

	sum := 0.0
	for _, lq := range base.Lines {
		sum += lq.Net
	}
	assert.Equal(t, sum, base.Subtotal)

	shuffled := make([]Line, len(lines))
	copy(shuffled, lines)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	// Accumulation order may differ in the last float bits.
	assert.InDelta(t, base.Subtotal, Resolve(shuffled, true, discounts, nil).Subtotal, 1e-9)
}

func TestResolveDiscountClamping(t *testing.T) {
	lines := []Line{{ProductID: "p1", Category: "Decor", StandardPrice: 300, Quantity: 1}}

	cases := []struct {
		name     string
		discount *UserDiscount
		total    float64
	}{
		{"none", nil, 300},
		{"fixed below subtotal", &UserDiscount{Value: 100, Kind: DiscountFixed}, 200},
		{"fixed equal to subtotal", &UserDiscount{Value: 300, Kind: DiscountFixed}, 0},
		{"fixed above subtotal", &UserDiscount{Value: 10000, Kind: DiscountFixed}, 0},
		{"percent 100", &UserDiscount{Value: 100, Kind: DiscountPercent}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := Resolve(lines, false, nil, tc.discount)
			assert.Equal(t, tc.total, q.Total)
			assert.GreaterOrEqual(t, q.Total, 0.0)
		})
	}
}

func TestResolveFixedAndFullPercentAgree(t *testing.T) {
	lines := []Line{
		{ProductID: "p1", Category: "Kitchen", StandardPrice: 1250, Quantity: 2},
		{ProductID: "p2", Category: "Decor", StandardPrice: 90, Quantity: 3},
	}
	discounts := CategoryDiscounts{"Kitchen": 15}

	byPercent := Resolve(lines, false, discounts, &UserDiscount{Value: 100, Kind: DiscountPercent})
	byFixed := Resolve(lines, false, discounts, &UserDiscount{Value: byPercent.Subtotal, Kind: DiscountFixed})

	assert.Equal(t, byPercent.Total, byFixed.Total)
	assert.Equal(t, 0.0, byPercent.Total)
}

func TestResolveIdempotent(t *testing.T) {
	lines := []Line{
		{ProductID: "p1", Category: "Kitchen", StandardPrice: 1000, WholesalePrice: ptr(800), Quantity: 2, SelectedColor: "black"},
		{ProductID: "p2", Category: "Decor", StandardPrice: 500, Quantity: 1},
	}
	discounts := CategoryDiscounts{"Kitchen": 10}
	pending := &UserDiscount{Value: 10, Kind: DiscountPercent}

	first := Resolve(lines, true, discounts, pending)
	second := Resolve(lines, true, discounts, pending)
	assert.Equal(t, first, second)
}

func TestResolveWorkedScenario(t *testing.T) {
	lines := []Line{
		{ProductID: "a", Category: "Kitchen", StandardPrice: 1000, WholesalePrice: ptr(800), Quantity: 2},
		{ProductID: "b", Category: "Decor", StandardPrice: 500, Quantity: 1},
	}
	discounts := CategoryDiscounts{"Kitchen": 10}

	standard := Resolve(lines, false, discounts, nil)
	require.Len(t, standard.Lines, 2)
	assert.Equal(t, 1000.0, standard.Lines[0].UnitPrice)
	assert.Equal(t, 2000.0, standard.Lines[0].Gross)
	assert.Equal(t, 1800.0, standard.Lines[0].Net)
	assert.Equal(t, 500.0, standard.Lines[1].UnitPrice)
	assert.Equal(t, 500.0, standard.Lines[1].Gross)
	assert.Equal(t, 500.0, standard.Lines[1].Net)
	assert.Equal(t, 2300.0, standard.Subtotal)
	assert.Equal(t, 0.0, standard.DiscountAmount)
	assert.Equal(t, 2300.0, standard.Total)

	wholesale := Resolve(lines, true, discounts, &UserDiscount{Value: 10, Kind: DiscountPercent})
	assert.Equal(t, 800.0, wholesale.Lines[0].UnitPrice)
	assert.Equal(t, 1600.0, wholesale.Lines[0].Gross)
	assert.Equal(t, 1440.0, wholesale.Lines[0].Net)
	assert.Equal(t, 500.0, wholesale.Lines[1].Net)
	assert.Equal(t, 1940.0, wholesale.Subtotal)
	assert.Equal(t, 194.0, wholesale.DiscountAmount)
	assert.Equal(t, 1746.0, wholesale.Total)
}
