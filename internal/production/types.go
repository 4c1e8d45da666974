// Package production implements the production order state machine:
// release, start, complete-operation, pass/fail QC, split, cancel, and
// ship, with every transition's inventory side effects posted through
// the ledger. Each side effect is its own ledger posting; a failure
// part-way through a transition leaves the postings already made in
// place and does not roll them back. Built in an explicit, composite-
// operation style: material reservation and split redistribution are
// generalized from the same pattern used for engineering-change
// allocation tracking.
package production

import (
	"time"

	"github.com/filaops/core/internal/core"
)

// Status is the closed set of production-order lifecycle states.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusReleased   Status = "released"
	StatusInProgress Status = "in_progress"
	StatusQC         Status = "qc"
	StatusComplete   Status = "complete"
	StatusShipped    Status = "shipped"
	StatusCancelled  Status = "cancelled"
	StatusSplit      Status = "split"
)

// Order is a work order to produce qty_ordered of an item.
type Order struct {
	ID             core.ID
	Code           string
	ItemID         core.ID
	QtyOrdered     core.Decimal
	QtyCompleted   core.Decimal
	QtyScrapped    core.Decimal
	Status         Status
	SalesOrderID   *core.ID
	SalesOrderLine *core.ID
	ParentOrderID  *core.ID
	NeededDate     time.Time
	WorkCenterID   *core.ID
}

// MaterialReservation records one ledger reservation made on behalf of
// a production order's material release, so split/cancel can find and
// redistribute or release it without re-deriving the BOM explosion.
type MaterialReservation struct {
	ID                core.ID
	ProductionOrderID core.ID
	ItemID            core.ID
	LocationID        core.ID
	ReservationID     core.ID
	Qty               core.Decimal
}

// ShortfallLine is a material the release step could not fully reserve.
// Reservations fail individually; partial release is allowed, and each
// shortfall surfaces as its own blocking issue.
type ShortfallLine struct {
	ItemID      core.ID
	QtyRequired core.Decimal
	QtyReserved core.Decimal
}

// ReleaseResult enumerates everything a release call did, per the
// "explicit composite operation" convention.
type ReleaseResult struct {
	Reserved []MaterialReservation
	Short    []ShortfallLine
}
