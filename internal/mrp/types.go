// Package mrp is the planning core: BOM explosion, netting
// against the ledger and incoming supply, planned-order generation,
// pegging, and sub-assembly due-date cascading. The explode → net →
// generate planned orders pipeline generalizes a serial-effectivity
// aerospace BOM explosion into date-bucketed netting over an
// item/location ledger, with proportional pegging across shared demand.
package mrp

import (
	"time"

	"github.com/filaops/core/internal/core"
)

// DemandSourceKind is the closed set of MRP demand origins.
type DemandSourceKind string

const (
	SourceSalesLine    DemandSourceKind = "sales_line"
	SourceFirmPlanned  DemandSourceKind = "firm_planned"
	SourceSafetyStock  DemandSourceKind = "safety_stock"
	SourceSubAssembly  DemandSourceKind = "sub_assembly" // generated internally during explosion
)

// Demand is one top-level requirement fed into a planning run.
type Demand struct {
	ItemID       core.ID
	Qty          core.Decimal
	NeedDate     time.Time
	SourceKind   DemandSourceKind
	SourceID     core.ID
}

// PlannedOrderKind mirrors the item's procurement policy at plan time.
type PlannedOrderKind string

const (
	PlannedOrderMake PlannedOrderKind = "make"
	PlannedOrderBuy  PlannedOrderKind = "buy"
)

// PegEntry links a PlannedOrder back to the specific demand it was
// generated to cover, preserving proportional allocation for demands
// that share a bucket.
type PegEntry struct {
	SourceKind DemandSourceKind
	SourceID   core.ID
	Qty        core.Decimal
}

// PlannedOrder is MRP's ephemeral output: firming converts it
// into a ProductionOrder or PurchaseOrder.
type PlannedOrder struct {
	ID          core.ID
	Kind        PlannedOrderKind
	ItemID      core.ID
	Qty         core.Decimal
	ReleaseDate time.Time
	NeedDate    time.Time
	Pegging     []PegEntry
}

// WarningKind is the closed set of non-fatal planning conditions: these
// surface as warnings, not hard failures.
type WarningKind string

const (
	WarningInactiveItemDemand       WarningKind = "inactive_item_demand"
	WarningNegativeProjectedAvailable WarningKind = "negative_projected_available"
)

// Warning is a non-fatal planning condition surfaced alongside results.
type Warning struct {
	Kind   WarningKind
	ItemID core.ID
	Bucket time.Time
	Detail string
}

// Options controls MRP engine behavior.
type Options struct {
	// CascadeSubAssemblyDates, when true (default), propagates a parent's
	// need_date backward by its own lead/throughput time before deriving
	// child demand dates. When false, every sub-assembly demand in the
	// chain uses the original root demand's need_date unmodified, with
	// every sub-assembly planned against that same parent need_date.
	CascadeSubAssemblyDates bool
}

// Result is a completed planning run's output.
type Result struct {
	PlannedOrders []PlannedOrder
	Warnings      []Warning
}

func dayKey(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
