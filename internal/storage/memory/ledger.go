package memory

import (
	"sync"

	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/ledger"
)

// LedgerStore is an in-memory ledger.Store: an append-only transaction
// log plus a reservation table, both append-only slices indexed by
// stream key.
type LedgerStore struct {
	mu             sync.RWMutex
	txns           []ledger.Txn
	byStream       map[streamKey][]int // index into txns
	byIdempotency  map[string]int
	reservations   map[core.ID]ledger.Reservation
}

type streamKey struct {
	item     core.ID
	location core.ID
}

// NewLedgerStore builds an empty LedgerStore.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		byStream:      make(map[streamKey][]int),
		byIdempotency: make(map[string]int),
		reservations:  make(map[core.ID]ledger.Reservation),
	}
}

func (s *LedgerStore) AppendTxn(txn ledger.Txn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := len(s.txns)
	s.txns = append(s.txns, txn)
	key := streamKey{item: txn.ItemID, location: txn.LocationID}
	s.byStream[key] = append(s.byStream[key], idx)
	if txn.IdempotencyKey != "" {
		s.byIdempotency[txn.IdempotencyKey] = idx
	}
	return nil
}

func (s *LedgerStore) TxnsByStream(itemID, locationID core.ID) ([]ledger.Txn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := streamKey{item: itemID, location: locationID}
	out := make([]ledger.Txn, 0, len(s.byStream[key]))
	for _, idx := range s.byStream[key] {
		out = append(out, s.txns[idx])
	}
	return out, nil
}

func (s *LedgerStore) AllTxns() ([]ledger.Txn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Txn, len(s.txns))
	copy(out, s.txns)
	return out, nil
}

func (s *LedgerStore) FindByIdempotencyKey(key string) (ledger.Txn, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byIdempotency[key]
	if !ok {
		return ledger.Txn{}, false, nil
	}
	return s.txns[idx], true, nil
}

func (s *LedgerStore) SaveReservation(r ledger.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[r.ID] = r
	return nil
}

func (s *LedgerStore) GetReservation(id core.ID) (ledger.Reservation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[id]
	return r, ok, nil
}

func (s *LedgerStore) UpdateReservation(r ledger.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[r.ID] = r
	return nil
}

func (s *LedgerStore) ReservationsByStream(itemID, locationID core.ID) ([]ledger.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ledger.Reservation
	for _, r := range s.reservations {
		if r.ItemID == itemID && r.LocationID == locationID {
			out = append(out, r)
		}
	}
	return out, nil
}
