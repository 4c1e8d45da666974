package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/ledger"
)

// LedgerStore is the pgx-backed ledger store. Its methods take a context,
// so it does not itself satisfy ledger.Store; LedgerRepository in shim.go
// adapts it to that interface. Every append is a single
// INSERT against the immutable inventory_txns table; uniqueness of
// idempotency_key is enforced by the partial unique index in schema.go
// rather than re-checked here.
type LedgerStore struct {
	pool *pgxpool.Pool
}

// NewLedgerStore builds a pgx-backed LedgerStore. Callers must have
// already run EnsureSchema.
func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

func (s *LedgerStore) AppendTxn(ctx context.Context, txn ledger.Txn) error {
	var refID, reservationID *string
	if !txn.RefID.IsZero() {
		v := txn.RefID.String()
		refID = &v
	}
	if !txn.ReservationID.IsZero() {
		v := txn.ReservationID.String()
		reservationID = &v
	}
	var idempotencyKey *string
	if txn.IdempotencyKey != "" {
		idempotencyKey = &txn.IdempotencyKey
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO inventory_txns (id, item_id, location_id, quantity, kind, ref_kind, ref_id, reservation_id, idempotency_key, created_at, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, txn.ID.String(), txn.ItemID.String(), txn.LocationID.String(), txn.Quantity, string(txn.Kind),
		txn.RefKind, refID, reservationID, idempotencyKey, txn.CreatedAt, txn.CreatedBy)
	return err
}

func (s *LedgerStore) TxnsByStream(ctx context.Context, itemID, locationID core.ID) ([]ledger.Txn, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, item_id, location_id, quantity, kind, ref_kind, ref_id, reservation_id, idempotency_key, created_at, created_by
		FROM inventory_txns WHERE item_id=$1 AND location_id=$2 ORDER BY created_at
	`, itemID.String(), locationID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTxns(rows)
}

func (s *LedgerStore) AllTxns(ctx context.Context) ([]ledger.Txn, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, item_id, location_id, quantity, kind, ref_kind, ref_id, reservation_id, idempotency_key, created_at, created_by
		FROM inventory_txns ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTxns(rows)
}

func (s *LedgerStore) FindByIdempotencyKey(ctx context.Context, key string) (ledger.Txn, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, item_id, location_id, quantity, kind, ref_kind, ref_id, reservation_id, idempotency_key, created_at, created_by
		FROM inventory_txns WHERE idempotency_key = $1
	`, key)
	txn, err := scanTxn(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Txn{}, false, nil
	}
	if err != nil {
		return ledger.Txn{}, false, err
	}
	return txn, true, nil
}

func (s *LedgerStore) SaveReservation(ctx context.Context, r ledger.Reservation) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reservations (id, item_id, location_id, quantity, ref_kind, ref_id, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, r.ID.String(), r.ItemID.String(), r.LocationID.String(), r.Quantity, r.RefKind, r.RefID.String(), r.Active)
	return err
}

func (s *LedgerStore) GetReservation(ctx context.Context, id core.ID) (ledger.Reservation, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, item_id, location_id, quantity, ref_kind, ref_id, active FROM reservations WHERE id=$1
	`, id.String())
	r, err := scanReservation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Reservation{}, false, nil
	}
	if err != nil {
		return ledger.Reservation{}, false, err
	}
	return r, true, nil
}

func (s *LedgerStore) UpdateReservation(ctx context.Context, r ledger.Reservation) error {
	_, err := s.pool.Exec(ctx, `UPDATE reservations SET quantity=$2, active=$3 WHERE id=$1`, r.ID.String(), r.Quantity, r.Active)
	return err
}

func (s *LedgerStore) ReservationsByStream(ctx context.Context, itemID, locationID core.ID) ([]ledger.Reservation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, item_id, location_id, quantity, ref_kind, ref_id, active FROM reservations WHERE item_id=$1 AND location_id=$2
	`, itemID.String(), locationID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ledger.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanTxns(rows pgx.Rows) ([]ledger.Txn, error) {
	var out []ledger.Txn
	for rows.Next() {
		txn, err := scanTxn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}

func scanTxn(row scannable) (ledger.Txn, error) {
	var txn ledger.Txn
	var id, itemID, locationID, kind string
	var refID, reservationID, idempotencyKey *string
	err := row.Scan(&id, &itemID, &locationID, &txn.Quantity, &kind, &txn.RefKind, &refID, &reservationID, &idempotencyKey, &txn.CreatedAt, &txn.CreatedBy)
	if err != nil {
		return ledger.Txn{}, err
	}
	if txn.ID, err = core.ParseID(id); err != nil {
		return ledger.Txn{}, err
	}
	if txn.ItemID, err = core.ParseID(itemID); err != nil {
		return ledger.Txn{}, err
	}
	if txn.LocationID, err = core.ParseID(locationID); err != nil {
		return ledger.Txn{}, err
	}
	txn.Kind = ledger.Kind(kind)
	if refID != nil {
		if txn.RefID, err = core.ParseID(*refID); err != nil {
			return ledger.Txn{}, err
		}
	}
	if reservationID != nil {
		if txn.ReservationID, err = core.ParseID(*reservationID); err != nil {
			return ledger.Txn{}, err
		}
	}
	if idempotencyKey != nil {
		txn.IdempotencyKey = *idempotencyKey
	}
	return txn, nil
}

func scanReservation(row scannable) (ledger.Reservation, error) {
	var r ledger.Reservation
	var id, itemID, locationID, refID string
	err := row.Scan(&id, &itemID, &locationID, &r.Quantity, &r.RefKind, &refID, &r.Active)
	if err != nil {
		return ledger.Reservation{}, err
	}
	if r.ID, err = core.ParseID(id); err != nil {
		return ledger.Reservation{}, err
	}
	if r.ItemID, err = core.ParseID(itemID); err != nil {
		return ledger.Reservation{}, err
	}
	if r.LocationID, err = core.ParseID(locationID); err != nil {
		return ledger.Reservation{}, err
	}
	if r.RefID, err = core.ParseID(refID); err != nil {
		return ledger.Reservation{}, err
	}
	return r, nil
}
