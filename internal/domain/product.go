package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// jsonNumber writes a decimal as a bare JSON number, the form the backend
// sends and expects for prices. Decoding accepts numbers and strings.
type jsonNumber decimal.Decimal

func (n jsonNumber) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(n).String()), nil
}

func optionalNumber(d *decimal.Decimal) *jsonNumber {
	if d == nil {
		return nil
	}
	n := jsonNumber(*d)
	return &n
}

// Product is a catalog entry as served by the backend or the sample catalog.
// Fields the client does not model are kept in Extra and written back as-is.
type Product struct {
	ID            int              `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	Category      string           `json:"category,omitempty"`
	CategoryID    int              `json:"category_id,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Stock         int              `json:"stock,omitempty"`
	Color         string           `json:"color,omitempty"`
	Material      string           `json:"material,omitempty"`
	Size          string           `json:"size,omitempty"`
	Images        []string         `json:"images,omitempty"`
	Image         string           `json:"image,omitempty"`
	Badge         string           `json:"badge,omitempty"`
	Rating        float64          `json:"rating,omitempty"`
	Reviews       int              `json:"reviews,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var productKeys = map[string]struct{}{
	"id": {}, "name": {}, "description": {}, "category": {}, "category_id": {},
	"price": {}, "originalPrice": {}, "stock": {}, "color": {}, "material": {},
	"size": {}, "images": {}, "image": {}, "badge": {}, "rating": {}, "reviews": {},
}

// productFields has Product's layout without its JSON methods.
type productFields Product

// MarshalJSON writes the modeled fields merged with Extra.
func (p Product) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(struct {
		productFields
		Price         jsonNumber  `json:"price"`
		OriginalPrice *jsonNumber `json:"originalPrice,omitempty"`
	}{productFields(p), jsonNumber(p.Price), optionalNumber(p.OriginalPrice)})
	if err != nil || len(p.Extra) == 0 {
		return base, err
	}
	merged, err := mergeObject(base, p.Extra)
	if err != nil {
		return nil, err
	}
	return json.Marshal(merged)
}

// UnmarshalJSON reads the modeled fields and keeps every other key in Extra.
func (p *Product) UnmarshalJSON(data []byte) error {
	var f productFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range raw {
		if _, ok := productKeys[k]; ok {
			delete(raw, k)
		}
	}
	f.Extra = nil
	if len(raw) > 0 {
		f.Extra = raw
	}
	*p = Product(f)
	return nil
}

// PrimaryImage returns the first image URL, if any.
func (p Product) PrimaryImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return p.Image
}

// OnSale reports whether the product carries a higher original price.
func (p Product) OnSale() bool {
	return p.OriginalPrice != nil && p.OriginalPrice.GreaterThan(p.Price)
}

// mergeObject decodes base as an object and adds extra keys it does not set.
func mergeObject(base []byte, extra map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}
	return m, nil
}

// ProductInput is the body of a product create or update.
type ProductInput struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    string          `json:"category" validate:"required"`
	CategoryID  int             `json:"category_id"`
	Color       string          `json:"color"`
	Material    string          `json:"material"`
	Size        string          `json:"size"`
}

func (in ProductInput) MarshalJSON() ([]byte, error) {
	type fields ProductInput
	return json.Marshal(struct {
		fields
		Price jsonNumber `json:"price"`
	}{fields(in), jsonNumber(in.Price)})
}

// ProductImage is one stored image of a product.
type ProductImage struct {
	ID        int    `json:"id"`
	URL       string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
	SortOrder int    `json:"sort_order"`
}

// Category is a product category.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
