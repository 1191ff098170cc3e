package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/meatshop/internal/dal/postgres"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/product"
	"github.com/jackc/pgx/v5"
)

var columns = []string{"id", "name", "description", "price", "category", "image_url", "available"}

// PostgresProductRepository stores the product catalog.
type PostgresProductRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresProductRepository creates a new product repository.
func NewPostgresProductRepository(conn postgres.GenericConn) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func returning() string {
	return "RETURNING " + strings.Join(columns, ", ")
}

func collectOne(rows pgx.Rows) (product.Product, error) {
	p, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[product.Product])
	if errors.Is(err, pgx.ErrNoRows) {
		return product.Product{}, product.ErrProductNotFound
	}
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to scan product: %w", err)
	}

	return p, nil
}

// List returns the catalog ordered by category and name.
func (r *PostgresProductRepository) List(ctx context.Context, onlyAvailable bool) ([]product.Product, error) {
	q := r.sb.Select(columns...).From("products").OrderBy("category ASC", "name ASC")
	if onlyAvailable {
		q = q.Where(sq.Eq{"available": true})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[product.Product])
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	return products, nil
}

// Get returns one product.
func (r *PostgresProductRepository) Get(ctx context.Context, id string) (product.Product, error) {
	query, args, err := r.sb.Select(columns...).From("products").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to query product: %w", err)
	}

	return collectOne(rows)
}

// Insert stores a new product with a database-assigned id.
func (r *PostgresProductRepository) Insert(ctx context.Context, p product.Product) (product.Product, error) {
	query, args, err := r.sb.Insert("products").
		Columns("name", "description", "price", "category", "image_url", "available").
		Values(p.Name, p.Description, p.Price, p.Category, p.ImageURL, p.Available).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}

	return collectOne(rows)
}

// Update overwrites a product. Existing orders keep the name and price they copied.
func (r *PostgresProductRepository) Update(ctx context.Context, p product.Product) (product.Product, error) {
	query, args, err := r.sb.Update("products").
		Set("name", p.Name).
		Set("description", p.Description).
		Set("price", p.Price).
		Set("category", p.Category).
		Set("image_url", p.ImageURL).
		Set("available", p.Available).
		Where(sq.Eq{"id": p.ID}).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to build update query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to update product: %w", err)
	}

	return collectOne(rows)
}

// SetAvailability toggles whether the product can be added to orders.
func (r *PostgresProductRepository) SetAvailability(ctx context.Context, id string, available bool) (product.Product, error) {
	query, args, err := r.sb.Update("products").
		Set("available", available).
		Where(sq.Eq{"id": id}).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to build update query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to update product availability: %w", err)
	}

	return collectOne(rows)
}

// Delete removes a product.
func (r *PostgresProductRepository) Delete(ctx context.Context, id string) error {
	query, args, err := r.sb.Delete("products").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrProductNotFound
	}

	return nil
}
