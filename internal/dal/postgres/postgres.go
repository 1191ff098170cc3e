package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/viper"
)

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx.
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Client represents a Postgres client.
type Client struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying connection pool.
func (p *Client) Pool() *pgxpool.Pool {
	return p.pool
}

// Close closes the database connection for graceful shutdown.
func (p *Client) Close() {
	p.pool.Close()
}

func connString() string {
	port := os.Getenv("MEATSHOP_PG_PORT")
	if port == "" {
		port = "5432"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("MEATSHOP_PG_HOST"),
		port,
		os.Getenv("MEATSHOP_PG_USER"),
		os.Getenv("MEATSHOP_PG_PASSWORD"),
		os.Getenv("MEATSHOP_PG_DB"),
	)
}

// MustNewClient creates a new Postgres client and applies pending migrations.
func MustNewClient() *Client {
	config, err := pgxpool.ParseConfig(connString())
	if err != nil {
		panic(err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		panic(err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		panic(err)
	}

	c := &Client{
		pool: pool,
	}
	if err := c.Migrate(); err != nil {
		panic(err)
	}

	return c
}

// Migrate runs goose migrations from postgres.migrations_path.
func (p *Client) Migrate() error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db := stdlib.OpenDBFromPool(p.pool)
	if err := goose.Up(db, viper.GetString("postgres.migrations_path")); err != nil &&
		!errors.Is(err, goose.ErrNoNextVersion) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
