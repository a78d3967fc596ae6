package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tjfontaine/toolchat/internal/storage"
)

// Store is a SQLite-backed ProductLookup.
type Store struct {
	db *sqlx.DB
}

var _ storage.ProductLookup = (*Store)(nil)

// NewSQLite opens (or creates) the catalog at dsn. When the products table is
// empty it is filled with seed.
func NewSQLite(dsn string, seed []storage.Product) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.seed(seed); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed products: %w", err)
	}

	return store, nil
}

// DB returns the underlying sqlx.DB for advanced operations
func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price REAL NOT NULL,
		stock INTEGER NOT NULL
	)`)
	return err
}

func (s *Store) seed(products []storage.Product) error {
	if len(products) == 0 {
		return nil
	}

	var count int
	if err := s.db.Get(&count, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range products {
		if _, err := tx.NamedExec(
			`INSERT INTO products (id, name, price, stock) VALUES (:id, :name, :price, :stock)`, p,
		); err != nil {
			return fmt.Errorf("insert %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// Upsert writes a product record.
func (s *Store) Upsert(ctx context.Context, p storage.Product) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO products (id, name, price, stock) VALUES (:id, :name, :price, :stock)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, price = excluded.price, stock = excluded.stock`, p)
	return err
}

func (s *Store) LookupProduct(ctx context.Context, id string) (*storage.Product, error) {
	var p storage.Product
	err := s.db.GetContext(ctx, &p, `SELECT id, name, price, stock FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup product %s: %w", id, err)
	}
	return &p, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
