package itemmaster

import "github.com/filaops/core/internal/core"

// Repository is the storage-agnostic item master contract, one narrow
// interface per entity rather than a single do-everything interface.
type Repository interface {
	Create(item Item) error
	Update(item Item) error
	Get(id core.ID) (Item, error)
	GetBySKU(sku string) (Item, error)
	List(f Filter) ([]Item, error)
	NextSKUSeq(prefix string) (int, error)

	GetMaterialType(code string) (MaterialType, error)
	GetColor(code string) (Color, error)
}
