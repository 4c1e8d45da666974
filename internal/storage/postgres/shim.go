package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/itemmaster"
	"github.com/filaops/core/internal/ledger"
)

// ItemRepository adapts the ctx-taking ItemStore to the context-free
// itemmaster.Repository interface every service in this module is
// written against (see DESIGN.md Open Question 5). It exists so a
// caller that wants durable storage can plug this package in without
// threading context.Context through every package in the module — every
// call just runs against context.Background().
type ItemRepository struct {
	store *ItemStore
}

var _ itemmaster.Repository = (*ItemRepository)(nil)

// NewItemRepository wraps a pgx-backed ItemStore as an
// itemmaster.Repository.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{store: NewItemStore(pool)}
}

func (r *ItemRepository) Create(item itemmaster.Item) error {
	return r.store.Create(context.Background(), item)
}

func (r *ItemRepository) Update(item itemmaster.Item) error {
	return r.store.Update(context.Background(), item)
}

func (r *ItemRepository) Get(id core.ID) (itemmaster.Item, error) {
	return r.store.Get(context.Background(), id)
}

func (r *ItemRepository) GetBySKU(sku string) (itemmaster.Item, error) {
	return r.store.GetBySKU(context.Background(), sku)
}

func (r *ItemRepository) List(f itemmaster.Filter) ([]itemmaster.Item, error) {
	return r.store.List(context.Background(), f)
}

func (r *ItemRepository) NextSKUSeq(prefix string) (int, error) {
	return r.store.NextSKUSeq(context.Background(), prefix)
}

func (r *ItemRepository) GetMaterialType(code string) (itemmaster.MaterialType, error) {
	return r.store.GetMaterialType(context.Background(), code)
}

func (r *ItemRepository) GetColor(code string) (itemmaster.Color, error) {
	return r.store.GetColor(context.Background(), code)
}

// SeedMaterialType inserts a material type row directly, mirroring
// memory.ItemStore.SeedMaterialType for demo/bootstrap callers that need
// to register lookup rows before any item references them.
func (r *ItemRepository) SeedMaterialType(mt itemmaster.MaterialType) error {
	_, err := r.store.pool.Exec(context.Background(),
		`INSERT INTO material_types (id, code, name) VALUES ($1,$2,$3) ON CONFLICT (code) DO NOTHING`,
		mt.ID.String(), mt.Code, mt.Name)
	return err
}

// SeedColor inserts a color row directly, mirroring
// memory.ItemStore.SeedColor.
func (r *ItemRepository) SeedColor(c itemmaster.Color) error {
	_, err := r.store.pool.Exec(context.Background(),
		`INSERT INTO colors (id, code, name) VALUES ($1,$2,$3) ON CONFLICT (code) DO NOTHING`,
		c.ID.String(), c.Code, c.Name)
	return err
}

// LedgerRepository adapts the ctx-taking LedgerStore to the
// context-free ledger.Store interface, the same way ItemRepository
// adapts ItemStore.
type LedgerRepository struct {
	store *LedgerStore
}

var _ ledger.Store = (*LedgerRepository)(nil)

// NewLedgerRepository wraps a pgx-backed LedgerStore as a ledger.Store.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{store: NewLedgerStore(pool)}
}

func (r *LedgerRepository) AppendTxn(txn ledger.Txn) error {
	return r.store.AppendTxn(context.Background(), txn)
}

func (r *LedgerRepository) TxnsByStream(itemID, locationID core.ID) ([]ledger.Txn, error) {
	return r.store.TxnsByStream(context.Background(), itemID, locationID)
}

func (r *LedgerRepository) AllTxns() ([]ledger.Txn, error) {
	return r.store.AllTxns(context.Background())
}

func (r *LedgerRepository) FindByIdempotencyKey(key string) (ledger.Txn, bool, error) {
	return r.store.FindByIdempotencyKey(context.Background(), key)
}

func (r *LedgerRepository) SaveReservation(res ledger.Reservation) error {
	return r.store.SaveReservation(context.Background(), res)
}

func (r *LedgerRepository) GetReservation(id core.ID) (ledger.Reservation, bool, error) {
	return r.store.GetReservation(context.Background(), id)
}

func (r *LedgerRepository) UpdateReservation(res ledger.Reservation) error {
	return r.store.UpdateReservation(context.Background(), res)
}

func (r *LedgerRepository) ReservationsByStream(itemID, locationID core.ID) ([]ledger.Reservation, error) {
	return r.store.ReservationsByStream(context.Background(), itemID, locationID)
}
