// Package model defines the catalog and directory entities the client
// synchronizes with the storefront API.
package model

// Entity is anything with a stable numeric identifier. The state stores key
// all collection mutations on it.
type Entity interface {
	EntityID() int64
}

// Rating carries the aggregate review score the API attaches to a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is a single catalog entry.
type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      *Rating `json:"rating,omitempty"`
	Stock       *int    `json:"stock,omitempty"`
}

// EntityID implements Entity.
func (p Product) EntityID() int64 { return p.ID }

// Categories is the fixed set of product categories the storefront accepts.
var Categories = []string{
	"electronics",
	"jewelery",
	"men's clothing",
	"women's clothing",
}

// ValidCategory reports whether s is one of the accepted categories.
func ValidCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}

// PlaceholderImage is used when a product form leaves the image blank.
const PlaceholderImage = "https://via.placeholder.com/150"
