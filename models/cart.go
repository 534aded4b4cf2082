package models

import "time"

// Cart is the subset of the Storefront API cart that the cart surface reads.
type Cart struct {
	ID            string             `json:"id"`
	CheckoutURL   string             `json:"checkoutUrl"`
	TotalQuantity int                `json:"totalQuantity"`
	Cost          CartCost           `json:"cost"`
	Lines         CartLineConnection `json:"lines"`
	DiscountCodes []CartDiscountCode `json:"discountCodes"`
}

type CartCost struct {
	SubtotalAmount Money `json:"subtotalAmount"`
	TotalAmount    Money `json:"totalAmount"`
}

type CartLineConnection struct {
	Nodes []CartLine `json:"nodes"`
}

type CartLine struct {
	ID          string          `json:"id"`
	Quantity    int             `json:"quantity"`
	Cost        CartLineCost    `json:"cost"`
	Merchandise CartMerchandise `json:"merchandise"`
}

type CartLineCost struct {
	TotalAmount Money `json:"totalAmount"`
}

type CartMerchandise struct {
	ID      string             `json:"id"`
	Title   string             `json:"title"`
	Image   *Image             `json:"image,omitempty"`
	Product CartProductSummary `json:"product"`
}

type CartProductSummary struct {
	Title  string `json:"title"`
	Handle string `json:"handle"`
}

type CartDiscountCode struct {
	Code       string `json:"code"`
	Applicable bool   `json:"applicable"`
}

// CartLineInput is one entry of the "add lines" mutation.
type CartLineInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// HasLines reports whether the cart holds any line items. A nil cart has none.
func (c *Cart) HasLines() bool {
	return c != nil && len(c.Lines.Nodes) > 0
}

// HasItems mirrors totalQuantity > 0.
func (c *Cart) HasItems() bool {
	return c != nil && c.TotalQuantity > 0
}

// HasApplicableDiscount reports whether any discount code currently applies.
func (c *Cart) HasApplicableDiscount() bool {
	if c == nil {
		return false
	}
	for _, code := range c.DiscountCodes {
		if code.Applicable {
			return true
		}
	}
	return false
}

// CartLinesAddedEvent is published after a successful add-to-cart.
type CartLinesAddedEvent struct {
	Event     string          `json:"event"` // "cart.lines_added"
	CartID    string          `json:"cart_id"`
	Lines     []CartLineInput `json:"lines"`
	Timestamp time.Time       `json:"timestamp"`
}
