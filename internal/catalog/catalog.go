// Package catalog holds the product catalog and the selection rules
// coupling products to sizes and aspect ratios. The catalog is static
// configuration: loaded once at startup and read-only afterwards, so
// every lookup is deterministic and total over its contents.
package catalog

import (
	"fmt"

	"github.com/amgst/mapapp2/internal/errors"
	"github.com/amgst/mapapp2/internal/geometry"
)

// SizeOption is one purchasable size of a product. AspectRatio is the
// "W:H" label that constrains the preview frame for this size.
type SizeOption struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Dimensions  string  `json:"dimensions"`
	AspectRatio string  `json:"aspectRatio"`
	Price       float64 `json:"price"`
}

// ProductVariant is one configurable product with its ordered sizes.
// Description is markdown.
type ProductVariant struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	BasePrice   float64      `json:"basePrice"`
	Sizes       []SizeOption `json:"sizes"`
}

// Catalog is a validated, immutable product catalog.
type Catalog struct {
	products []ProductVariant
	byID     map[string]int
}

// New builds a Catalog from the given products, validating that every
// product has at least one size, ids are unique, and every aspect
// ratio label parses.
func New(products []ProductVariant) (*Catalog, error) {
	if len(products) == 0 {
		return nil, errors.NewInvalidRequest("catalog must contain at least one product")
	}

	byID := make(map[string]int, len(products))
	for i, p := range products {
		if p.ID == "" {
			return nil, errors.NewInvalidRequest("product id must not be empty")
		}
		if _, dup := byID[p.ID]; dup {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("duplicate product id: %s", p.ID))
		}
		if len(p.Sizes) == 0 {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("product %s has no sizes", p.ID))
		}

		sizeIDs := make(map[string]bool, len(p.Sizes))
		for _, s := range p.Sizes {
			if s.ID == "" {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("product %s has a size with empty id", p.ID))
			}
			if sizeIDs[s.ID] {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("product %s has duplicate size id: %s", p.ID, s.ID))
			}
			sizeIDs[s.ID] = true
			if _, err := geometry.ParseAspectRatio(s.AspectRatio); err != nil {
				return nil, err
			}
		}
		byID[p.ID] = i
	}

	return &Catalog{products: products, byID: byID}, nil
}

// Products returns the catalog contents in declaration order.
func (c *Catalog) Products() []ProductVariant {
	out := make([]ProductVariant, len(c.products))
	copy(out, c.products)
	return out
}

// Product looks up a product by id.
func (c *Catalog) Product(productID string) (ProductVariant, error) {
	i, ok := c.byID[productID]
	if !ok {
		return ProductVariant{}, errors.NewUnknownProduct(productID)
	}
	return c.products[i], nil
}

// Selection is the result of choosing a product: its auto-selected
// first size and that size's aspect ratio.
type Selection struct {
	ProductID   string  `json:"productId"`
	SizeID      string  `json:"sizeId"`
	AspectRatio string  `json:"aspectRatio"`
	Price       float64 `json:"price"`
}

// SelectProduct resolves a product id to its first size (auto-selection
// rule: choosing a product always selects its first size).
func (c *Catalog) SelectProduct(productID string) (Selection, error) {
	p, err := c.Product(productID)
	if err != nil {
		return Selection{}, err
	}

	first := p.Sizes[0]
	return Selection{
		ProductID:   p.ID,
		SizeID:      first.ID,
		AspectRatio: first.AspectRatio,
		Price:       first.Price,
	}, nil
}

// SizeChoice is the result of choosing a size within a product.
type SizeChoice struct {
	SizeID      string  `json:"sizeId"`
	AspectRatio string  `json:"aspectRatio"`
	Price       float64 `json:"price"`
}

// SelectSize resolves a size within a product. The size must belong to
// that product's size list.
func (c *Catalog) SelectSize(productID, sizeID string) (SizeChoice, error) {
	p, err := c.Product(productID)
	if err != nil {
		return SizeChoice{}, err
	}

	for _, s := range p.Sizes {
		if s.ID == sizeID {
			return SizeChoice{
				SizeID:      s.ID,
				AspectRatio: s.AspectRatio,
				Price:       s.Price,
			}, nil
		}
	}
	return SizeChoice{}, errors.NewUnknownSize(productID, sizeID)
}
