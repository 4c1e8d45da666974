package ledger

import "github.com/filaops/core/internal/core"

// Store is the append-only transaction log plus the reservation table
// the Service layers locking and invariants on top of. It is
// intentionally narrow: two concrete append-only logs rather than a
// generic event stream.
type Store interface {
	AppendTxn(txn Txn) error
	TxnsByStream(itemID, locationID core.ID) ([]Txn, error)
	AllTxns() ([]Txn, error)
	FindByIdempotencyKey(key string) (Txn, bool, error)

	SaveReservation(r Reservation) error
	GetReservation(id core.ID) (Reservation, bool, error)
	UpdateReservation(r Reservation) error
	ReservationsByStream(itemID, locationID core.ID) ([]Reservation, error)
}
