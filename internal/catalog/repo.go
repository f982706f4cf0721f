package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	Price       int       `json:"price"`
	Quantities  int       `json:"quantities"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) GetByID(ctx context.Context, id string) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, description, brand, price, quantities, created_at, updated_at
		FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Brand, &p.Price, &p.Quantities, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, description, brand, price, quantities, created_at, updated_at
		FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Brand, &p.Price, &p.Quantities, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Reserve: decrement bersyarat dalam satu statement (compare-and-swap di row),
// bukan read-then-write — dua handler mutasi stok tanpa lock lintas service.
// Return harga satuan + stok sisa setelah decrement.
func (r *Repo) Reserve(ctx context.Context, productID string, qty int) (price, remaining int, err error) {
	err = r.DB.QueryRow(ctx, `
		UPDATE products
		SET quantities = quantities - $2, updated_at = now()
		WHERE id = $1 AND quantities >= $2
		RETURNING price, quantities`, productID, qty).
		Scan(&price, &remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		// bedakan stok kurang vs produk tidak ada
		var exists bool
		if e := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id=$1)`, productID).Scan(&exists); e != nil {
			return 0, 0, e
		}
		if !exists {
			return 0, 0, ErrNotFound
		}
		return 0, 0, ErrInsufficientStock
	}
	return price, remaining, err
}

// Restore tulis balik snapshot ledger (stok saat reservasi + qty yang dipesan),
// bukan increment dari nilai sekarang — hindari dobel kompensasi saat batch
// cancel diputar ulang.
func (r *Repo) Restore(ctx context.Context, productID string, stockSnapshot, qty int) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE products SET quantities = $2 + $3, updated_at = now()
		WHERE id = $1`, productID, stockSnapshot, qty)
	return err
}
