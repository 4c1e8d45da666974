// Package itemmaster is the canonical entity for every stocked or
// consumed thing: finished good, component, supply/material, or service.
// Generalizes a single discrete "part" model into a four-kind,
// three-procurement item taxonomy with decimal-precision costs and
// stock levels.
package itemmaster

import "github.com/filaops/core/internal/core"

// Kind is the closed set of item kinds.
type Kind string

const (
	KindFinishedGood Kind = "finished_good"
	KindComponent    Kind = "component"
	KindSupply       Kind = "supply"
	KindService      Kind = "service"
)

func (k Kind) valid() bool {
	switch k {
	case KindFinishedGood, KindComponent, KindSupply, KindService:
		return true
	default:
		return false
	}
}

// skuPrefix returns the auto-generated SKU prefix for a kind.
func (k Kind) skuPrefix() string {
	switch k {
	case KindFinishedGood:
		return "FG-"
	case KindComponent:
		return "CP-"
	case KindSupply:
		return "SP-"
	case KindService:
		return "SV-"
	default:
		return "XX-"
	}
}

// Procurement is the closed set of procurement policies.
type Procurement string

const (
	ProcurementMake       Procurement = "make"
	ProcurementBuy        Procurement = "buy"
	ProcurementMakeOrBuy  Procurement = "make_or_buy"
)

func (p Procurement) valid() bool {
	switch p {
	case ProcurementMake, ProcurementBuy, ProcurementMakeOrBuy:
		return true
	default:
		return false
	}
}

// Item is the canonical stocked-or-consumed entity.
type Item struct {
	ID              core.ID
	SKU             string
	Name            string
	Kind            Kind
	Procurement     Procurement
	StockUnit       string
	MaterialTypeID  *core.ID
	ColorID         *core.ID
	StandardCost    core.Decimal
	ReorderPoint    core.Decimal
	SafetyStock     core.Decimal
	LeadTimeDays    int
	LotTracked      bool
	Active          bool
}

// MaterialType is a filament/resin family (e.g. "PLA", "PETG").
type MaterialType struct {
	ID   core.ID
	Code string
	Name string
}

// Color is a pigment/finish option for a material type.
type Color struct {
	ID   core.ID
	Code string
	Name string
}

// Filter narrows List queries by kind, active status, and low-stock.
type Filter struct {
	Kind       *Kind
	Active     *bool
	LowStockOf func(item Item) (onHand core.Decimal, ok bool) // supplied by caller; nil disables low-stock filtering
}

// CreateItemInput is the generic item-creation payload; item creation
// accepts either this or CreateMaterialInput.
type CreateItemInput struct {
	SKU            string // optional; auto-generated when empty
	Name           string
	Kind           Kind
	Procurement    Procurement
	StockUnit      string
	MaterialTypeID *core.ID
	ColorID        *core.ID
	StandardCost   core.Decimal
	ReorderPoint   core.Decimal
	SafetyStock    core.Decimal
	LeadTimeDays   int
	LotTracked     bool
}

// CreateMaterialInput is the material-create shortcut: it
// produces the Item plus an initial receipt into the default location in
// one call, SKU following MAT-{type_code}-{color_code}. The item is
// persisted before the receipt is posted; a failed receipt leaves the
// item in place.
type CreateMaterialInput struct {
	MaterialTypeCode string
	ColorCode        string
	InitialQty       core.Decimal
	Cost             core.Decimal
	StockUnit        string
}

// CreateMaterialResult enumerates everything the material shortcut
// created in its single call (§9 "explicit composite operations").
type CreateMaterialResult struct {
	Item      Item
	ReceiptID core.ID // zero if InitialQty was zero
}
