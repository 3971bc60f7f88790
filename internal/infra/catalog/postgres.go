package catalog

import (
	"context"
	"errors"
	"log/slog"

	"pos-checkout/internal/domain/catalog"
	"pos-checkout/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Schema is the table the Postgres catalog reads. Operators own the data;
// the service never writes to it.
const Schema = `CREATE TABLE IF NOT EXISTS products (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	price    NUMERIC(14, 2) NOT NULL CHECK (price >= 0),
	active   BOOLEAN NOT NULL DEFAULT TRUE
)`

const (
	findProductSQL  = `SELECT id, name, category, price::text FROM products WHERE id = $1 AND active`
	listProductsSQL = `SELECT id, name, category, price::text FROM products WHERE active ORDER BY id`
)

type PostgresCatalog struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresCatalog(pool *pgxpool.Pool, logger *slog.Logger) *PostgresCatalog {
	return &PostgresCatalog{pool: pool, logger: logger}
}

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to open catalog database")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, errs.Wrap(err, "failed to ping catalog database")
	}
	return pool, pool.Close, nil
}

func (c *PostgresCatalog) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	row := c.pool.QueryRow(ctx, findProductSQL, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.ErrProductNotFound
	}
	if err != nil {
		c.logger.Error("catalog lookup failed", "product_id", id, "error", err)
		return nil, errs.Wrap(err, "failed to find product")
	}
	return p, nil
}

func (c *PostgresCatalog) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := c.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list products")
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errs.Wrap(err, "failed to scan product")
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, "failed to iterate products")
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*catalog.Product, error) {
	var (
		p     catalog.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &price); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, errs.Wrap(err, "invalid price")
	}
	p.Price = d
	return &p, nil
}
