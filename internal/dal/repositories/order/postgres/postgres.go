package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/meatshop/internal/dal/postgres"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/orderrecord"
	"github.com/jackc/pgx/v5"
)

const table = "orders"

// PostgresOrderRepository stores order records in the orders table.
type PostgresOrderRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a repository over a pool or a transaction.
func NewPostgresOrderRepository(conn postgres.GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func returning() string {
	return "RETURNING " + strings.Join(orderrecord.Columns, ", ")
}

func collect(rows pgx.Rows) ([]orderrecord.Record, error) {
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[orderrecord.Record])
	if err != nil {
		return nil, fmt.Errorf("failed to scan orders: %w", err)
	}

	return records, nil
}

func collectOne(rows pgx.Rows) (orderrecord.Record, error) {
	rec, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[orderrecord.Record])
	if errors.Is(err, pgx.ErrNoRows) {
		return orderrecord.Record{}, order.ErrOrderNotFound
	}
	if err != nil {
		return orderrecord.Record{}, fmt.Errorf("failed to scan order: %w", err)
	}

	return rec, nil
}

// List returns every order, newest first.
func (r *PostgresOrderRepository) List(ctx context.Context) ([]orderrecord.Record, error) {
	query, args, err := r.sb.
		Select(orderrecord.Columns...).
		From(table).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	return collect(rows)
}

// Get returns the order with the given id.
func (r *PostgresOrderRepository) Get(ctx context.Context, id string) (orderrecord.Record, error) {
	query, args, err := r.sb.
		Select(orderrecord.Columns...).
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return orderrecord.Record{}, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return orderrecord.Record{}, fmt.Errorf("failed to query order: %w", err)
	}

	return collectOne(rows)
}

// Insert stores a new order. The id and creation time are assigned by the database.
func (r *PostgresOrderRepository) Insert(ctx context.Context, rec orderrecord.Record) (orderrecord.Record, error) {
	query, args, err := r.sb.
		Insert(table).
		SetMap(orderrecord.SetMap(rec)).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return orderrecord.Record{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return orderrecord.Record{}, fmt.Errorf("failed to insert order: %w", err)
	}

	return collectOne(rows)
}

// Update overwrites every writable column of the order.
func (r *PostgresOrderRepository) Update(ctx context.Context, rec orderrecord.Record) (orderrecord.Record, error) {
	query, args, err := r.sb.
		Update(table).
		SetMap(orderrecord.SetMap(rec)).
		Where(sq.Eq{"id": rec.ID}).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return orderrecord.Record{}, fmt.Errorf("failed to build update query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return orderrecord.Record{}, fmt.Errorf("failed to update order: %w", err)
	}

	return collectOne(rows)
}

// Delete removes the order and returns the removed record.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id string) (orderrecord.Record, error) {
	query, args, err := r.sb.
		Delete(table).
		Where(sq.Eq{"id": id}).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return orderrecord.Record{}, fmt.Errorf("failed to build delete query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return orderrecord.Record{}, fmt.Errorf("failed to delete order: %w", err)
	}

	return collectOne(rows)
}
