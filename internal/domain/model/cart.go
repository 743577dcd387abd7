package model

import (
	"github.com/shopspring/decimal"
)

// カートの明細。追加時点の商品情報をスナップショットで持つ。
type CartItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int64           `json:"quantity"`
}

// この明細の合計（unit_price * quantity）
func (i CartItem) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

func (i CartItem) FormattedTotalPrice() string {
	return "$" + i.TotalPrice().StringFixed(2)
}

// チェックアウト前のカート。商品IDごとに1明細（重複なし）。
// 合計などの派生値は毎回計算する（キャッシュしない）。
type Cart struct {
	Items []CartItem `json:"items"`
}

type CartSummary struct {
	TotalItems          int64           `json:"total_items"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	FormattedTotalPrice string          `json:"formatted_total_price"`
	IsEmpty             bool            `json:"is_empty"`
	ItemCount           int             `json:"item_count"`
}

// 商品を追加。同じ商品が既にあれば数量を加算する。
func (c *Cart) AddItem(p Product, qty int64) {
	if qty < 1 {
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductID == p.ID {
			c.Items[i].Quantity += qty
			return
		}
	}
	c.Items = append(c.Items, CartItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		Quantity:    qty,
	})
}

func (c *Cart) RemoveItem(productID string) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

// 数量を変更。0以下なら明細ごと削除（数量は負にならない）。
func (c *Cart) UpdateQuantity(productID string, qty int64) {
	if qty <= 0 {
		c.RemoveItem(productID)
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = qty
			return
		}
	}
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) TotalItems() int64 {
	var n int64
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.TotalPrice())
	}
	return total
}

func (c *Cart) FormattedTotalPrice() string {
	return "$" + c.TotalPrice().StringFixed(2)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) Summary() CartSummary {
	return CartSummary{
		TotalItems:          c.TotalItems(),
		TotalPrice:          c.TotalPrice(),
		FormattedTotalPrice: c.FormattedTotalPrice(),
		IsEmpty:             c.IsEmpty(),
		ItemCount:           len(c.Items),
	}
}
