package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/shopassist/backend/internal/domain"
)

// listProductsQuery reads every product with its category name and review
// aggregates. Products without reviews report a zero rating.
const listProductsQuery = `
SELECT
	p.id,
	p.name,
	p.description,
	p.price,
	COALESCE(c.name, p.category_id, '') AS category,
	p.brand,
	p.images,
	p.tags,
	p.stock,
	COALESCE(AVG(r.rating), 0)::float8 AS rating,
	COUNT(r.id) AS review_count,
	p.created_at,
	p.updated_at
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
LEFT JOIN reviews r ON r.product_id = p.id
GROUP BY p.id, c.name
ORDER BY p.created_at, p.id`

// PostgresConfig configures the Postgres catalog source
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresRepository reads the catalog from the product database
type PostgresRepository struct {
	db *sqlx.DB
}

// productRow mirrors one row of listProductsQuery
type productRow struct {
	ID          string          `db:"id"`
	Name        string          `db:"name"`
	Description sql.NullString  `db:"description"`
	Price       sql.NullFloat64 `db:"price"`
	Category    string          `db:"category"`
	Brand       sql.NullString  `db:"brand"`
	Images      pq.StringArray  `db:"images"`
	Tags        pq.StringArray  `db:"tags"`
	Stock       sql.NullInt64   `db:"stock"`
	Rating      float64         `db:"rating"`
	ReviewCount int             `db:"review_count"`
	CreatedAt   sql.NullTime    `db:"created_at"`
	UpdatedAt   sql.NullTime    `db:"updated_at"`
}

// NewPostgresRepository connects to the product database
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen / 2
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = 5 * time.Minute
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newPostgresRepository(db), nil
}

func newPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListProducts loads every product from the database
func (r *PostgresRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, listProductsQuery); err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}

	log.Debug().Str("component", "catalog_postgres").Int("products", len(products)).Msg("loaded catalog from database")
	return products, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

var _ domain.CatalogRepository = (*PostgresRepository)(nil)

func (row productRow) toDomain() domain.Product {
	product := domain.Product{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description.String,
		Price:       row.Price.Float64,
		Category:    row.Category,
		Brand:       row.Brand.String,
		Images:      nonNil([]string(row.Images)),
		Tags:        nonNil([]string(row.Tags)),
		Stock:       int(row.Stock.Int64),
		Rating:      row.Rating,
		ReviewCount: row.ReviewCount,
	}
	if row.CreatedAt.Valid {
		product.CreatedAt = row.CreatedAt.Time.UTC()
	}
	if row.UpdatedAt.Valid {
		product.UpdatedAt = row.UpdatedAt.Time.UTC()
	}
	return product
}
