// Package sales is the minimal customer-order entity the MRP engine's
// demand collection and the blocking-issues analyzer operate against.
package sales

import (
	"time"

	"github.com/filaops/core/internal/core"
)

// Status is the closed set of sales-order lifecycle states.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusConfirmed   Status = "confirmed"
	StatusInProgress  Status = "in_progress"
	StatusReadyToShip Status = "ready_to_ship"
	StatusShipped     Status = "shipped"
	StatusCancelled   Status = "cancelled"
)

// Order is a customer order.
type Order struct {
	ID            core.ID
	Number        string
	CustomerID    core.ID
	Status        Status
	RequestedDate time.Time
}

// Line is one item line on a sales order.
type Line struct {
	ID           core.ID
	OrderID      core.ID
	Seq          int
	ItemID       core.ID
	QtyOrdered   core.Decimal
	QtyAllocated core.Decimal
	UnitPrice    core.Decimal
	NeedDateOverride *time.Time // overrides Order.RequestedDate when set
}

// NeedDate resolves the line's effective need date.
func (l Line) NeedDate(order Order) time.Time {
	if l.NeedDateOverride != nil {
		return *l.NeedDateOverride
	}
	return order.RequestedDate
}
