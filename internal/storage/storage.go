// Package storage defines the product catalog consulted by the product lookup tool.
package storage

import (
	"context"
	"errors"
)

// ErrProductNotFound is returned by lookups for identifiers the catalog does not hold.
var ErrProductNotFound = errors.New("product not found")

// Product is a catalog record.
type Product struct {
	ID    string  `json:"-" db:"id"`
	Name  string  `json:"name" db:"name"`
	Price float64 `json:"price" db:"price"`
	Stock int     `json:"stock" db:"stock"`
}

// ProductLookup is a read-only product source. Implementations must be safe
// for concurrent use.
type ProductLookup interface {
	// LookupProduct returns ErrProductNotFound when id is unknown.
	LookupProduct(ctx context.Context, id string) (*Product, error)
}

// DefaultProducts is the seed catalog.
func DefaultProducts() []Product {
	return []Product{
		{ID: "laptop-01", Name: "SuperFast Laptop", Price: 1200, Stock: 15},
		{ID: "mouse-02", Name: "ErgoComfort Mouse", Price: 80, Stock: 45},
		{ID: "keyboard-03", Name: "Mechanical Keyboard", Price: 150, Stock: 20},
	}
}
