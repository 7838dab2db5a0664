package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_StockStatus(t *testing.T) {
	cases := []struct {
		name string
		inv  Inventory
		want string
	}{
		{"untracked is always in stock", Inventory{TrackQuantity: false, Quantity: 0}, StockInStock},
		{"zero quantity", Inventory{TrackQuantity: true, Quantity: 0, LowStockThreshold: 10}, StockOutOfStock},
		{"below threshold", Inventory{TrackQuantity: true, Quantity: 5, LowStockThreshold: 10}, StockLowStock},
		{"at threshold", Inventory{TrackQuantity: true, Quantity: 10, LowStockThreshold: 10}, StockLowStock},
		{"above threshold", Inventory{TrackQuantity: true, Quantity: 11, LowStockThreshold: 10}, StockInStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Product{Inventory: tc.inv}
			assert.Equal(t, tc.want, p.StockStatus())
		})
	}
}

func TestProduct_DiscountPercentage(t *testing.T) {
	assert.Equal(t, 0, Product{Price: 100}.DiscountPercentage())
	assert.Equal(t, 0, Product{Price: 100, ComparePrice: 100}.DiscountPercentage())
	assert.Equal(t, 25, Product{Price: 75, ComparePrice: 100}.DiscountPercentage())
	assert.Equal(t, 33, Product{Price: 66.99, ComparePrice: 99.99}.DiscountPercentage())
}

func TestProduct_PrimaryImage(t *testing.T) {
	assert.Nil(t, Product{}.PrimaryImage())

	p := Product{Images: []ProductImage{
		{URL: "a.jpg"},
		{URL: "b.jpg", IsPrimary: true},
	}}
	img := p.PrimaryImage()
	require.NotNil(t, img)
	assert.Equal(t, "b.jpg", img.URL)

	// No flagged image falls back to the first.
	p = Product{Images: []ProductImage{{URL: "a.jpg"}, {URL: "b.jpg"}}}
	img = p.PrimaryImage()
	require.NotNil(t, img)
	assert.Equal(t, "a.jpg", img.URL)
}

func TestProduct_IsAvailable(t *testing.T) {
	base := Product{
		Status:     ProductStatusActive,
		Visibility: VisibilityVisible,
		Inventory:  Inventory{TrackQuantity: true, Quantity: 5, LowStockThreshold: 2},
	}
	assert.True(t, base.IsAvailable())

	inactive := base
	inactive.Status = ProductStatusDraft
	assert.False(t, inactive.IsAvailable())

	hidden := base
	hidden.Visibility = VisibilityHidden
	assert.False(t, hidden.IsAvailable())

	soldOut := base
	soldOut.Inventory.Quantity = 0
	assert.False(t, soldOut.IsAvailable())

	untracked := soldOut
	untracked.Inventory.TrackQuantity = false
	assert.True(t, untracked.IsAvailable())
}

func TestProduct_View(t *testing.T) {
	p := Product{
		ID:           "p1",
		Price:        50,
		ComparePrice: 100,
		Status:       ProductStatusActive,
		Visibility:   VisibilityVisible,
		Images:       []ProductImage{{URL: "a.jpg", IsPrimary: true}},
		Inventory:    Inventory{TrackQuantity: true, Quantity: 100, LowStockThreshold: 10},
	}
	v := p.View()
	assert.Equal(t, "p1", v.ID)
	assert.Equal(t, 50, v.DiscountPercentage)
	assert.Equal(t, StockInStock, v.StockStatus)
	assert.True(t, v.IsAvailable)
	require.NotNil(t, v.PrimaryImage)
	assert.Equal(t, "a.jpg", v.PrimaryImage.URL)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "wireless-keyboard", Slugify("Wireless Keyboard"))
	assert.Equal(t, "caf-lait-2", Slugify("  Café! ö Lait? (2) "))
	assert.Equal(t, "a-b-c", Slugify("a - b -- c"))
	assert.Equal(t, "", Slugify("!!!"))
}
