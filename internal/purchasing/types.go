// Package purchasing is the minimal outbound-procurement entity the MRP
// engine and blocking-issues analyzer need: purchase orders as a source
// of scheduled receipts and as a target for "expedite"/"create missing
// PO" resolution actions.
package purchasing

import (
	"time"

	"github.com/filaops/core/internal/core"
)

// Status is the closed set of purchase-order lifecycle states.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusOrdered   Status = "ordered"
	StatusPartial   Status = "partial"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

// PurchaseOrder is an order placed with a vendor.
type PurchaseOrder struct {
	ID           core.ID
	Code         string
	VendorID     core.ID
	Status       Status
	ExpectedDate time.Time
}

// POLine is one item line on a purchase order. QtyReceived is
// monotonically non-decreasing; the order's Status follows the
// aggregate receipt progression across its lines.
type POLine struct {
	ID           core.ID
	PurchaseOrderID core.ID
	ItemID       core.ID
	QtyOrdered   core.Decimal
	QtyReceived  core.Decimal
	UnitCost     core.Decimal
	ExpectedDate time.Time
}
