// Package ledger is the sole writer of on-hand/reserved quantity state.
// It is built as an append-only event stream keyed by (item, location):
// Txn is the event, Store is the event store, and Kind is the closed
// set of transaction kinds below.
package ledger

import (
	"time"

	"github.com/filaops/core/internal/core"
)

// Kind is the closed set of transaction kinds.
type Kind string

const (
	KindReceipt            Kind = "receipt"
	KindIssue               Kind = "issue"
	KindConsumption         Kind = "consumption"
	KindReservation         Kind = "reservation"
	KindReservationRelease  Kind = "reservation_release"
	KindTransferOut         Kind = "transfer_out"
	KindTransferIn          Kind = "transfer_in"
	KindAdjustment          Kind = "adjustment"
	KindScrap               Kind = "scrap"
	KindShipment            Kind = "shipment"
)

// onHandEffect reports whether a kind's signed quantity lands on on_hand
// (1) or not (0). The sign lives in the posted quantity itself: receipts
// and transfer_in post positive quantities, issue/consumption/scrap/
// shipment/transfer_out post negative ones, and adjustment may be either.
// reservation/reservation_release never touch on_hand.
func (k Kind) onHandEffect() int64 {
	switch k {
	case KindReceipt, KindTransferIn, KindIssue, KindConsumption, KindScrap,
		KindShipment, KindTransferOut, KindAdjustment:
		return 1
	case KindReservation, KindReservationRelease:
		return 0
	default:
		return 0
	}
}

// reservedEffect reports the signed multiplier a kind applies to
// reserved. Only reservation/reservation_release/consumption touch it;
// consumption of a previously reserved claim releases the reservation as
// part of the same posting.
func (k Kind) reservedEffect() int64 {
	switch k {
	case KindReservation:
		return 1
	case KindReservationRelease, KindConsumption:
		return -1
	default:
		return 0
	}
}

func (k Kind) valid() bool {
	switch k {
	case KindReceipt, KindIssue, KindConsumption, KindReservation,
		KindReservationRelease, KindTransferOut, KindTransferIn,
		KindAdjustment, KindScrap, KindShipment:
		return true
	default:
		return false
	}
}

// Txn is an immutable, signed ledger entry.
// Quantity is always expressed in the item's stock_unit and is signed:
// positive for increases, negative for decreases, regardless of Kind —
// callers of Post supply the sign; Kind only determines which derived
// total (on_hand vs reserved) the signed quantity lands against.
type Txn struct {
	ID             core.ID
	ItemID         core.ID
	LocationID     core.ID
	Quantity       core.Decimal
	Kind           Kind
	RefKind        string
	RefID          core.ID
	ReservationID  core.ID // not set by Service; reservation, release and consumption postings carry the reservation's RefKind/RefID
	IdempotencyKey string
	CreatedAt      time.Time
	CreatedBy      string
}

// Balance is the derived (item, location) view.
type Balance struct {
	ItemID     core.ID
	LocationID core.ID
	OnHand     core.Decimal
	Reserved   core.Decimal
}

// Available returns on_hand - reserved.
func (b Balance) Available() core.Decimal {
	return b.OnHand.Sub(b.Reserved)
}

// Reservation identifies a specific claim on on-hand inventory.
// Quantity tracks how much of the original claim has not yet been
// consumed or released.
type Reservation struct {
	ID         core.ID
	ItemID     core.ID
	LocationID core.ID
	Quantity   core.Decimal // remaining (unconsumed, unreleased) amount
	RefKind    string
	RefID      core.ID
	Active     bool
}

// PostInput is the caller-supplied payload for Post.
type PostInput struct {
	ItemID          core.ID
	LocationID      core.ID
	Quantity        core.Decimal
	Kind            Kind
	RefKind         string
	RefID           core.ID
	IdempotencyKey  string
	CreatedBy       string
	AllowNegative   bool // explicit flag required for negative on_hand via adjustment
}
