package itemmaster

import (
	"fmt"

	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/ledger"
)

// Service is the item master's public contract: create,
// update, soft-delete, list/filter, and the material-create shortcut.
type Service struct {
	repo     Repository
	locs     core.LocationRepository
	ledger   *ledger.Service
	config   core.Config
}

// New builds an item master Service. ledgerSvc is used only by
// CreateMaterial, which posts the initial receipt.
func New(repo Repository, locs core.LocationRepository, ledgerSvc *ledger.Service, config core.Config) *Service {
	return &Service{repo: repo, locs: locs, ledger: ledgerSvc, config: config}
}

// CreateItem validates and persists a new Item, auto-generating its SKU
// (kind-prefixed, monotonically numbered) when the caller doesn't supply
// one.
func (s *Service) CreateItem(in CreateItemInput) (Item, error) {
	if !in.Kind.valid() {
		return Item{}, core.NewFieldError(core.ErrValidation, core.CodeInvalidTransition, "unknown item kind", "kind")
	}
	if !in.Procurement.valid() {
		return Item{}, core.NewFieldError(core.ErrValidation, core.CodeInvalidTransition, "unknown procurement policy", "procurement")
	}
	if in.StockUnit == "" {
		return Item{}, core.NewFieldError(core.ErrValidation, core.CodeInvalidUnit, "stock_unit is required", "stock_unit")
	}

	sku := in.SKU
	if sku == "" {
		generated, err := s.nextSKU(in.Kind)
		if err != nil {
			return Item{}, err
		}
		sku = generated
	} else if _, err := s.repo.GetBySKU(sku); err == nil {
		return Item{}, core.ErrDuplicateSKU(sku)
	}

	item := Item{
		ID:             core.NewID(),
		SKU:            sku,
		Name:           in.Name,
		Kind:           in.Kind,
		Procurement:    in.Procurement,
		StockUnit:      in.StockUnit,
		MaterialTypeID: in.MaterialTypeID,
		ColorID:        in.ColorID,
		StandardCost:   in.StandardCost,
		ReorderPoint:   in.ReorderPoint,
		SafetyStock:    in.SafetyStock,
		LeadTimeDays:   in.LeadTimeDays,
		LotTracked:     in.LotTracked,
		Active:         true,
	}
	if err := s.repo.Create(item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// UpdateItem persists changes to an existing item. SKU and Kind are
// immutable after creation.
func (s *Service) UpdateItem(item Item) error {
	existing, err := s.repo.Get(item.ID)
	if err != nil {
		return err
	}
	if item.SKU != existing.SKU {
		return core.NewFieldError(core.ErrValidation, core.CodeInvalidTransition, "sku is immutable after creation", "sku")
	}
	if item.Kind != existing.Kind {
		return core.NewFieldError(core.ErrValidation, core.CodeInvalidTransition, "kind is immutable after creation", "kind")
	}
	return s.repo.Update(item)
}

// SoftDelete deactivates an item rather than removing it, preserving
// ledger/BOM referential history for items already referenced by
// historical transactions.
func (s *Service) SoftDelete(id core.ID) error {
	item, err := s.repo.Get(id)
	if err != nil {
		return err
	}
	item.Active = false
	return s.repo.Update(item)
}

// Get returns a single item by ID.
func (s *Service) Get(id core.ID) (Item, error) {
	return s.repo.Get(id)
}

// GetBySKU returns a single item by its SKU.
func (s *Service) GetBySKU(sku string) (Item, error) {
	return s.repo.GetBySKU(sku)
}

// List returns items matching f: filter by kind, active, or low-stock.
func (s *Service) List(f Filter) ([]Item, error) {
	return s.repo.List(f)
}

// CreateMaterial is the material-create shortcut: it creates
// the Item and, if InitialQty is positive, posts an initial receipt into
// the default location — both in one call, per the "explicit composite
// operation" convention that replaces helper functions with
// silent side effects.
func (s *Service) CreateMaterial(in CreateMaterialInput) (CreateMaterialResult, error) {
	matType, err := s.repo.GetMaterialType(in.MaterialTypeCode)
	if err != nil {
		return CreateMaterialResult{}, err
	}
	color, err := s.repo.GetColor(in.ColorCode)
	if err != nil {
		return CreateMaterialResult{}, err
	}
	if in.StockUnit == "" {
		return CreateMaterialResult{}, core.NewFieldError(core.ErrValidation, core.CodeInvalidUnit, "stock_unit is required", "stock_unit")
	}

	sku := fmt.Sprintf("MAT-%s-%s", in.MaterialTypeCode, in.ColorCode)
	if _, err := s.repo.GetBySKU(sku); err == nil {
		return CreateMaterialResult{}, core.ErrDuplicateSKU(sku)
	}

	item := Item{
		ID:             core.NewID(),
		SKU:            sku,
		Name:           fmt.Sprintf("%s %s", matType.Name, color.Name),
		Kind:           KindSupply,
		Procurement:    ProcurementBuy,
		StockUnit:      in.StockUnit,
		MaterialTypeID: &matType.ID,
		ColorID:        &color.ID,
		StandardCost:   in.Cost,
		Active:         true,
	}
	if err := s.repo.Create(item); err != nil {
		return CreateMaterialResult{}, err
	}

	result := CreateMaterialResult{Item: item}
	if in.InitialQty.IsPositive() {
		defaultLoc, err := s.locs.GetDefault()
		if err != nil {
			return CreateMaterialResult{}, err
		}
		receiptID, err := s.ledger.Post(ledger.PostInput{
			ItemID:     item.ID,
			LocationID: defaultLoc.ID,
			Quantity:   in.InitialQty,
			Kind:       ledger.KindReceipt,
			RefKind:    "material_create",
			RefID:      item.ID,
		})
		if err != nil {
			return CreateMaterialResult{}, err
		}
		result.ReceiptID = receiptID
	}
	return result, nil
}

func (s *Service) nextSKU(kind Kind) (string, error) {
	prefix := kind.skuPrefix()
	seq, err := s.repo.NextSKUSeq(prefix)
	if err != nil {
		return "", core.Wrap(core.ErrInternal, core.CodeCatalogInconsistency, "failed to allocate sku sequence", err)
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}
