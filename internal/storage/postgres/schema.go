// Package postgres provides pgx-backed repository implementations for
// the item master and inventory ledger — the two components that need
// durable storage in a production deployment. Uses a pgxpool.Pool, raw
// SQL via QueryRow/Exec/Query, and an idempotent CREATE TABLE IF NOT
// EXISTS schema bootstrap.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id UUID PRIMARY KEY,
	sku TEXT NOT NULL,
	sku_lower TEXT GENERATED ALWAYS AS (lower(sku)) STORED,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	procurement TEXT NOT NULL,
	stock_unit TEXT NOT NULL,
	material_type_id UUID,
	color_id UUID,
	standard_cost NUMERIC(18,6) NOT NULL DEFAULT 0,
	reorder_point NUMERIC(18,6) NOT NULL DEFAULT 0,
	safety_stock NUMERIC(18,6) NOT NULL DEFAULT 0,
	lead_time_days INT NOT NULL DEFAULT 0,
	lot_tracked BOOLEAN NOT NULL DEFAULT false,
	active BOOLEAN NOT NULL DEFAULT true
);
CREATE UNIQUE INDEX IF NOT EXISTS items_sku_lower_active_idx ON items (sku_lower) WHERE active;

CREATE TABLE IF NOT EXISTS material_types (
	id UUID PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS colors (
	id UUID PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sku_sequences (
	prefix TEXT PRIMARY KEY,
	next_value INT NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS inventory_txns (
	id UUID PRIMARY KEY,
	item_id UUID NOT NULL,
	location_id UUID NOT NULL,
	quantity NUMERIC(18,6) NOT NULL,
	kind TEXT NOT NULL,
	ref_kind TEXT NOT NULL DEFAULT '',
	ref_id UUID,
	reservation_id UUID,
	idempotency_key TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	created_by TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS inventory_txns_stream_idx ON inventory_txns (item_id, location_id);
CREATE UNIQUE INDEX IF NOT EXISTS inventory_txns_idempotency_idx ON inventory_txns (idempotency_key) WHERE idempotency_key IS NOT NULL AND idempotency_key <> '';

CREATE TABLE IF NOT EXISTS reservations (
	id UUID PRIMARY KEY,
	item_id UUID NOT NULL,
	location_id UUID NOT NULL,
	quantity NUMERIC(18,6) NOT NULL,
	ref_kind TEXT NOT NULL DEFAULT '',
	ref_id UUID,
	active BOOLEAN NOT NULL DEFAULT true
);
CREATE INDEX IF NOT EXISTS reservations_stream_idx ON reservations (item_id, location_id);
`

// EnsureSchema creates every table and index this package depends on,
// idempotently. Uniqueness invariants (active SKU, idempotency key) are
// enforced here via the partial unique indexes above rather than
// re-checked in application code.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Pools bundles the pgxpool.Pool a caller wires into ItemRepository and
// LedgerRepository, so callers that want durable storage hold one handle
// rather than threading a bare *pgxpool.Pool through their own wiring code.
type Pools struct {
	Pool *pgxpool.Pool
}

// Connect opens a pgxpool.Pool against dsn and ensures the schema exists.
// Callers are responsible for closing the returned Pools.Pool.
func Connect(ctx context.Context, dsn string) (*Pools, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Pools{Pool: pool}, nil
}
