package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money mirrors the Storefront API MoneyV2 shape. Amount is a decimal string on the wire.
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

// UnmarshalJSON reads amount leniently: a missing or unparsable amount is zero.
func (m *Money) UnmarshalJSON(b []byte) error {
	var raw struct {
		Amount       json.RawMessage `json:"amount"`
		CurrencyCode string          `json:"currencyCode"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	m.CurrencyCode = raw.CurrencyCode
	m.Amount = decimal.Zero
	if len(raw.Amount) > 0 {
		var d decimal.Decimal
		if err := d.UnmarshalJSON(raw.Amount); err == nil {
			m.Amount = d
		}
	}
	return nil
}

type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

type ImageConnection struct {
	Nodes []Image `json:"nodes"`
}

type ProductVariant struct {
	ID    string `json:"id"`
	Price Money  `json:"price"`
}

type VariantConnection struct {
	Nodes []ProductVariant `json:"nodes"`
}

// Product is the catalog entry returned by the upsell query. Images and variants keep
// the connection shape of the Storefront API so the JSON envelope matches the upstream.
// A Product decoded from JSON encodes back to exactly the bytes it was decoded from.
type Product struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Handle      string            `json:"handle"`
	Description string            `json:"description"`
	Images      ImageConnection   `json:"images"`
	Variants    VariantConnection `json:"variants"`

	raw json.RawMessage
}

type productFields Product

func (p *Product) UnmarshalJSON(b []byte) error {
	var v productFields
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Product(v)
	p.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	return json.Marshal(productFields(p))
}

// FirstImage returns the product's first image, if any.
func (p Product) FirstImage() (Image, bool) {
	if len(p.Images.Nodes) == 0 {
		return Image{}, false
	}
	return p.Images.Nodes[0], true
}

// FirstVariant returns the only variant the cart UI ever adds.
func (p Product) FirstVariant() (ProductVariant, bool) {
	if len(p.Variants.Nodes) == 0 || p.Variants.Nodes[0].ID == "" {
		return ProductVariant{}, false
	}
	return p.Variants.Nodes[0], true
}

type ProductConnection struct {
	Nodes []Product `json:"nodes"`
}
