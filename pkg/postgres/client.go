// Package postgres records index builds in PostgreSQL through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/config"
)

// schema is applied by EnsureSchema; every statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS index_builds (
	build_id           TEXT        NOT NULL,
	variant            TEXT        NOT NULL,
	layout             TEXT        NOT NULL,
	terms              INTEGER     NOT NULL,
	documents          INTEGER     NOT NULL,
	max_df             INTEGER     NOT NULL,
	uncompressed_bytes BIGINT      NOT NULL,
	compressed_bytes   BIGINT      NOT NULL,
	checksum           TEXT        NOT NULL,
	completed_at       TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (build_id, variant)
);
CREATE TABLE IF NOT EXISTS index_build_terms (
	build_id TEXT    NOT NULL,
	variant  TEXT    NOT NULL,
	term     TEXT    NOT NULL,
	kind     TEXT    NOT NULL,
	df       INTEGER NOT NULL,
	PRIMARY KEY (build_id, variant, kind, term)
);`

type Client struct {
	DB  *sql.DB
	cfg config.PostgresConfig
}

func New(cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{DB: db, cfg: cfg}, nil
}

// EnsureSchema creates the build tables if they do not exist.
func (c *Client) EnsureSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// Ping verifies the database is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *Client) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back transaction after error %v: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
