package sales

import "github.com/filaops/core/internal/core"

// Repository is the storage-agnostic sales order contract.
type Repository interface {
	Create(o Order, lines []Line) error
	Get(id core.ID) (Order, error)
	GetByNumber(number string) (Order, error)
	LinesForOrder(orderID core.ID) ([]Line, error)
	UpdateStatus(id core.ID, status Status) error
	UpdateLineAllocation(lineID core.ID, qtyAllocated core.Decimal) error

	// ConfirmedLines returns every line belonging to an order whose status
	// is confirmed (in-progress, ready-to-ship, shipped, draft and
	// cancelled orders are excluded), the MRP engine's primary demand
	// source.
	ConfirmedLines() ([]Line, error)
}
