package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/tjfontaine/toolchat/internal/storage"
)

func TestMemoryStore_LookupProduct(t *testing.T) {
	store := NewDefault()

	for _, want := range storage.DefaultProducts() {
		got, err := store.LookupProduct(context.Background(), want.ID)
		if err != nil {
			t.Fatalf("LookupProduct(%s) error = %v", want.ID, err)
		}
		if *got != want {
			t.Errorf("LookupProduct(%s) = %+v, want %+v", want.ID, *got, want)
		}
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	store := NewDefault()

	for _, id := range []string{"", "laptop-02", "LAPTOP-01", " laptop-01"} {
		_, err := store.LookupProduct(context.Background(), id)
		if !errors.Is(err, storage.ErrProductNotFound) {
			t.Errorf("LookupProduct(%q) error = %v, want ErrProductNotFound", id, err)
		}
	}
}

func TestMemoryStore_ReturnsCopy(t *testing.T) {
	store := NewDefault()

	p, err := store.LookupProduct(context.Background(), "mouse-02")
	if err != nil {
		t.Fatalf("LookupProduct() error = %v", err)
	}
	p.Stock = 0

	again, _ := store.LookupProduct(context.Background(), "mouse-02")
	if again.Stock != 45 {
		t.Errorf("Stock = %d after caller mutation, want 45", again.Stock)
	}
}
