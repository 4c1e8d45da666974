package purchasing

import "github.com/filaops/core/internal/core"

// Repository is the storage-agnostic purchase order contract.
type Repository interface {
	Create(po PurchaseOrder, lines []POLine) error
	Get(id core.ID) (PurchaseOrder, error)
	GetByCode(code string) (PurchaseOrder, error)
	LinesForOrder(poID core.ID) ([]POLine, error)
	UpdateStatus(id core.ID, status Status) error
	ReceiveLine(lineID core.ID, qty core.Decimal) error

	// OpenLinesForItem returns every not-yet-fully-received line across
	// non-cancelled orders for an item, used by snapshot.Loader to build
	// the MRP scheduled-receipts schedule.
	OpenLinesForItem(itemID core.ID) ([]POLine, error)
}
