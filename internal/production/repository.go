package production

import "github.com/filaops/core/internal/core"

// Repository is the storage-agnostic production order contract.
type Repository interface {
	Create(o Order) error
	Update(o Order) error
	Get(id core.ID) (Order, error)
	GetByCode(code string) (Order, error)
	ChildrenOf(parentID core.ID) ([]Order, error)

	// FindBySalesOrderLine returns the production order linked to a
	// sales order line, if any, for the blocking-issues analyzer to
	// distinguish "production missing" from "production incomplete".
	FindBySalesOrderLine(lineID core.ID) (Order, bool, error)

	SaveMaterialReservation(mr MaterialReservation) error
	MaterialReservationsForOrder(poID core.ID) ([]MaterialReservation, error)
	DeleteMaterialReservation(id core.ID) error
}
