// Package catalog is the versioned BOM and routing recipe store: which
// components at what quantity/unit per parent, and which operations at
// which work centers. Cycle detection generalizes a
// validate-a-flat-slice utility into a per-mutation closure check over a
// persisted, revisioned catalog.
package catalog

import (
	"time"

	"github.com/filaops/core/internal/core"
)

// ConsumeStage is the closed set of points at which a BOM line is drawn
// down.
type ConsumeStage string

const (
	ConsumeStageProduction ConsumeStage = "production"
	ConsumeStageShipping   ConsumeStage = "shipping"
)

func (c ConsumeStage) valid() bool {
	switch c {
	case ConsumeStageProduction, ConsumeStageShipping:
		return true
	default:
		return false
	}
}

// BOM is a versioned recipe header for a parent item.
type BOM struct {
	ID            core.ID
	ParentItemID  core.ID
	Revision      int
	Active        bool
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
}

// BOMLine is one component requirement within a BOM.
type BOMLine struct {
	ID           core.ID
	BOMID        core.ID
	Seq          int
	ComponentID  core.ID
	QtyPer       core.Decimal
	Unit         string
	ScrapFactor  core.Decimal // in [0,1)
	ConsumeStage ConsumeStage
	CostOnly     bool
}

// QtyNeeded returns qty_per * (1 + scrap_factor), still expressed in the
// line's own unit — conversion to
// the component's stock_unit is the caller's (Service.ResolveBOM's) job.
func (l BOMLine) QtyNeeded() core.Decimal {
	return l.QtyPer.Mul(core.NewDecimalFromInt(1).Add(l.ScrapFactor))
}

// Routing is a versioned operation sequence for a parent item.
type Routing struct {
	ID           core.ID
	ParentItemID core.ID
	Revision     int
	Active       bool
}

// Operation is one step of a routing.
type Operation struct {
	ID             core.ID
	RoutingID      core.ID
	Seq            int
	WorkCenterID   core.ID
	SetupTime      core.Decimal // hours
	RunTimePerUnit core.Decimal // hours per unit
	RateOverride   *core.Decimal
}

// WorkCenter is a production resource with finite daily capacity.
type WorkCenter struct {
	ID            core.ID
	Code          string
	Name          string
	Kind          string
	DailyCapacity core.Decimal // hours/day
	DefaultRate   core.Decimal
}

// ResolvedLine is a BOMLine with its quantity converted into the
// component's stock_unit, ready for MRP explosion or cost rollup.
type ResolvedLine struct {
	Line          BOMLine
	QtyNeededInStockUnit core.Decimal
}
