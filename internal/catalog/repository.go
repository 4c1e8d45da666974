package catalog

import (
	"time"

	"github.com/filaops/core/internal/core"
)

// Repository is the storage-agnostic catalog contract, narrowed per
// entity rather than one do-everything interface.
type Repository interface {
	CreateBOM(b BOM) error
	CreateBOMLines(lines []BOMLine) error
	BOMsForParent(parentItemID core.ID) ([]BOM, error)
	BOMLinesForBOM(bomID core.ID) ([]BOMLine, error)
	DeactivateBOM(id core.ID) error

	CreateRouting(r Routing) error
	CreateOperations(ops []Operation) error
	RoutingsForParent(parentItemID core.ID) ([]Routing, error)
	OperationsForRouting(routingID core.ID) ([]Operation, error)
	DeactivateRouting(id core.ID) error

	CreateWorkCenter(wc WorkCenter) error
	GetWorkCenter(id core.ID) (WorkCenter, error)
	GetWorkCenterByCode(code string) (WorkCenter, error)

	// AllActiveBOMsAt and AllActiveRoutingsAt list every BOM/routing that
	// is active at asOf in one call. The snapshot loader does not use
	// them; it resolves BOMs per item through Service.ResolveBOM.
	AllActiveBOMsAt(asOf time.Time) ([]BOM, error)
	AllActiveRoutingsAt(asOf time.Time) ([]Routing, error)
}
