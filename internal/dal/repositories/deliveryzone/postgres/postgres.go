package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/meatshop/internal/dal/postgres"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/deliveryzone"
	"github.com/jackc/pgx/v5"
)

var columns = []string{"id", "name", "cost"}

// PostgresZoneRepository stores delivery zones.
type PostgresZoneRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresZoneRepository creates a new zone repository.
func NewPostgresZoneRepository(conn postgres.GenericConn) *PostgresZoneRepository {
	return &PostgresZoneRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func collectOne(rows pgx.Rows) (deliveryzone.Zone, error) {
	z, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[deliveryzone.Zone])
	if errors.Is(err, pgx.ErrNoRows) {
		return deliveryzone.Zone{}, deliveryzone.ErrZoneNotFound
	}
	if err != nil {
		return deliveryzone.Zone{}, fmt.Errorf("failed to scan delivery zone: %w", err)
	}

	return z, nil
}

// List returns every zone ordered by name.
func (r *PostgresZoneRepository) List(ctx context.Context) ([]deliveryzone.Zone, error) {
	query, args, err := r.sb.Select(columns...).From("delivery_zones").OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery zones: %w", err)
	}

	zones, err := pgx.CollectRows(rows, pgx.RowToStructByName[deliveryzone.Zone])
	if err != nil {
		return nil, fmt.Errorf("failed to scan delivery zones: %w", err)
	}

	return zones, nil
}

// Get returns one zone.
func (r *PostgresZoneRepository) Get(ctx context.Context, id string) (deliveryzone.Zone, error) {
	query, args, err := r.sb.Select(columns...).From("delivery_zones").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return deliveryzone.Zone{}, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return deliveryzone.Zone{}, fmt.Errorf("failed to query delivery zone: %w", err)
	}

	return collectOne(rows)
}

// Insert stores a new zone with a database-assigned id.
func (r *PostgresZoneRepository) Insert(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error) {
	query, args, err := r.sb.Insert("delivery_zones").
		Columns("name", "cost").
		Values(z.Name, z.Cost).
		Suffix("RETURNING id, name, cost").
		ToSql()
	if err != nil {
		return deliveryzone.Zone{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return deliveryzone.Zone{}, fmt.Errorf("failed to insert delivery zone: %w", err)
	}

	return collectOne(rows)
}

// Update changes name and cost. Orders keep the cost they copied.
func (r *PostgresZoneRepository) Update(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error) {
	query, args, err := r.sb.Update("delivery_zones").
		Set("name", z.Name).
		Set("cost", z.Cost).
		Where(sq.Eq{"id": z.ID}).
		Suffix("RETURNING id, name, cost").
		ToSql()
	if err != nil {
		return deliveryzone.Zone{}, fmt.Errorf("failed to build update query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return deliveryzone.Zone{}, fmt.Errorf("failed to update delivery zone: %w", err)
	}

	return collectOne(rows)
}

// Delete removes a zone.
func (r *PostgresZoneRepository) Delete(ctx context.Context, id string) error {
	query, args, err := r.sb.Delete("delivery_zones").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete delivery zone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return deliveryzone.ErrZoneNotFound
	}

	return nil
}
