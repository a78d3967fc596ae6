package memory

import (
	"context"

	"github.com/tjfontaine/toolchat/internal/storage"
)

// Store is an in-memory, read-only ProductLookup.
type Store struct {
	products map[string]storage.Product
}

var _ storage.ProductLookup = (*Store)(nil)

// New creates a store holding a copy of products.
func New(products []storage.Product) *Store {
	s := &Store{products: make(map[string]storage.Product, len(products))}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

// NewDefault creates a store seeded with storage.DefaultProducts.
func NewDefault() *Store {
	return New(storage.DefaultProducts())
}

func (s *Store) LookupProduct(ctx context.Context, id string) (*storage.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	return &p, nil
}
