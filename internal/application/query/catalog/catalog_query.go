package catalog

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("catalog: product not found")

// Product is the storefront read model for one catalog entry.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	UnitPrice   int64    `json:"unitPrice"` // minor currency units (cents)
	ImageRef    string   `json:"imageRef"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Sizes       []string `json:"sizes,omitempty"`
}

// ImageResolver turns a stored image ref into a servable URL.
type ImageResolver interface {
	Resolve(ctx context.Context, ref string) string
}

// Query serves the product catalog. Catalog management is out of scope:
// the list is the fixed storefront assortment.
type Query struct {
	products []Product
	images   ImageResolver
}

func NewQuery(images ImageResolver) *Query {
	return &Query{
		products: defaultProducts(),
		images:   images,
	}
}

func (q *Query) List(ctx context.Context) []Product {
	out := make([]Product, len(q.products))
	copy(out, q.products)
	for i := range out {
		out[i].ImageRef = q.resolve(ctx, out[i].ImageRef)
	}
	return out
}

func (q *Query) GetByID(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	for _, p := range q.products {
		if p.ID == id {
			p.ImageRef = q.resolve(ctx, p.ImageRef)
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (q *Query) resolve(ctx context.Context, ref string) string {
	if q.images == nil {
		return ref
	}
	return q.images.Resolve(ctx, ref)
}

func defaultProducts() []Product {
	return []Product{
		{
			ID:          "01",
			Name:        "Product 1",
			UnitPrice:   2999,
			ImageRef:    "one.jpeg",
			Description: "This is the description for Product 1. It is a very good product.",
			Category:    "Electronics",
		},
		{
			ID:          "02",
			Name:        "Product 2",
			UnitPrice:   4999,
			ImageRef:    "two.jpeg",
			Description: "This is the description for Product 2. It is another great product.",
			Category:    "Clothing",
			Sizes:       []string{"S", "M", "L"},
		},
		{
			ID:          "03",
			Name:        "Product 3",
			UnitPrice:   1999,
			ImageRef:    "three.jpeg",
			Description: "This is the description for Product 3. You will love this product.",
			Category:    "Home Goods",
		},
	}
}
