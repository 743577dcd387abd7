package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func product(id, name string, price string) Product {
	return Product{
		ID:       id,
		Name:     name,
		Slug:     id,
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	}
}

func TestCartAddItemMergesSameProduct(t *testing.T) {
	c := Cart{}
	c.AddItem(product("p-1", "Rose Bouquet", "29.99"), 1)
	c.AddItem(product("p-1", "Rose Bouquet", "29.99"), 2)

	assert.Len(t, c.Items, 1)
	assert.Equal(t, int64(3), c.Items[0].Quantity)
	assert.Equal(t, "89.97", c.Items[0].TotalPrice().StringFixed(2))
}

func TestCartAddItemIgnoresNonPositiveQuantity(t *testing.T) {
	c := Cart{}
	c.AddItem(product("p-1", "Rose Bouquet", "29.99"), 0)
	c.AddItem(product("p-1", "Rose Bouquet", "29.99"), -2)

	assert.True(t, c.IsEmpty())
}

func TestCartUpdateQuantity(t *testing.T) {
	c := Cart{}
	c.AddItem(product("p-1", "Rose Bouquet", "29.99"), 2)
	c.AddItem(product("p-2", "Gift Card", "10.00"), 1)

	c.UpdateQuantity("p-1", 5)
	assert.Equal(t, int64(5), c.Items[0].Quantity)

	// 0以下は削除
	c.UpdateQuantity("p-1", 0)
	assert.Len(t, c.Items, 1)
	assert.Equal(t, "p-2", c.Items[0].ProductID)

	c.UpdateQuantity("p-2", -5)
	assert.True(t, c.IsEmpty())
}

func TestCartUpdateQuantityUnknownProductIsNoop(t *testing.T) {
	c := Cart{}
	c.AddItem(product("p-1", "Rose Bouquet", "29.99"), 1)

	c.UpdateQuantity("p-404", 3)
	assert.Len(t, c.Items, 1)
	assert.Equal(t, int64(1), c.Items[0].Quantity)
}

func TestCartRemoveItem(t *testing.T) {
	c := Cart{}
	c.AddItem(product("p-1", "Rose Bouquet", "29.99"), 1)
	c.AddItem(product("p-2", "Gift Card", "10.00"), 1)

	c.RemoveItem("p-1")
	assert.Len(t, c.Items, 1)
	assert.Equal(t, "p-2", c.Items[0].ProductID)

	// 存在しないIDは何も起きない
	c.RemoveItem("p-404")
	assert.Len(t, c.Items, 1)
}

func TestCartSummary(t *testing.T) {
	c := Cart{}
	c.AddItem(product("p-1", "Rose Bouquet", "29.99"), 2)
	c.AddItem(product("p-2", "Gift Card", "10.00"), 1)

	s := c.Summary()
	assert.Equal(t, int64(3), s.TotalItems)
	assert.Equal(t, 2, s.ItemCount)
	assert.Equal(t, "69.98", s.TotalPrice.StringFixed(2))
	assert.Equal(t, "$69.98", s.FormattedTotalPrice)
	assert.False(t, s.IsEmpty)

	c.Clear()
	assert.True(t, c.Summary().IsEmpty)
	assert.Equal(t, "$0.00", c.FormattedTotalPrice())
}
