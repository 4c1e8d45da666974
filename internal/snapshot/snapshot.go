// Package snapshot is the explicit preloading step for MRP. A Snapshot
// holds an in-memory view of items, available balances, and open
// purchase supply as of a single instant. BOM resolution and routing
// throughput are not preloaded: Snapshot.ResolveBOM and
// Snapshot.ThroughputDays call through to the catalog service, and so to
// its repository, each time the engine asks.
package snapshot

import (
	"sort"
	"time"

	"github.com/filaops/core/internal/catalog"
	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/itemmaster"
	"github.com/filaops/core/internal/ledger"
	"github.com/filaops/core/internal/purchasing"
	"github.com/filaops/core/internal/uom"
)

// ScheduledReceipt is a quantity of an item expected on a future date,
// from an open purchase order line. Production orders are not loaded as
// receipts.
type ScheduledReceipt struct {
	ItemID core.ID
	Date   time.Time
	Qty    core.Decimal
}

// Snapshot is the frozen planning graph the MRP engine consumes.
type Snapshot struct {
	AsOf        time.Time
	catalogSvc  *catalog.Service
	items       map[core.ID]itemmaster.Item
	balances    map[core.ID]core.Decimal // item -> on_hand - reserved, at default location
	receipts    map[core.ID][]ScheduledReceipt
	units       *uom.Table
}

// Loader performs the one-time preload of items, balances, and open
// purchase lines. Catalog lookups made during planning still go through
// the catalog service (see Snapshot.ResolveBOM).
type Loader struct {
	Items      itemmaster.Repository
	Catalog    *catalog.Service
	Ledger     *ledger.Service
	Locations  core.LocationRepository
	PurchOrders purchasing.Repository
	Units      *uom.Table
}

// Load builds a Snapshot as of asOf for exactly the items named by
// itemIDs plus their transitive BOM components (discovered while
// loading, since the MRP engine itself never resolves a BOM that wasn't
// preloaded).
func (l *Loader) Load(asOf time.Time, itemIDs []core.ID) (*Snapshot, error) {
	snap := &Snapshot{
		AsOf:       asOf,
		catalogSvc: l.Catalog,
		items:      make(map[core.ID]itemmaster.Item),
		balances:   make(map[core.ID]core.Decimal),
		receipts:   make(map[core.ID][]ScheduledReceipt),
		units:      l.Units,
	}

	defaultLoc, err := l.Locations.GetDefault()
	if err != nil {
		return nil, err
	}

	seen := map[core.ID]bool{}
	queue := append([]core.ID{}, itemIDs...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true

		item, err := l.Items.Get(id)
		if err != nil {
			return nil, err
		}
		snap.items[id] = item

		available, err := l.Ledger.Available(id, defaultLoc.ID)
		if err != nil {
			return nil, err
		}
		snap.balances[id] = available

		if item.Kind == itemmaster.KindService {
			continue
		}
		_, lines, err := l.Catalog.ResolveBOM(id, asOf)
		if err != nil {
			continue // MissingActiveBOM is valid for buy items; engine handles it for make items
		}
		for _, rl := range lines {
			queue = append(queue, rl.Line.ComponentID)
		}
	}

	if l.PurchOrders != nil {
		for id := range snap.items {
			lines, err := l.PurchOrders.OpenLinesForItem(id)
			if err != nil {
				return nil, err
			}
			for _, pl := range lines {
				outstanding := pl.QtyOrdered.Sub(pl.QtyReceived)
				if outstanding.IsPositive() {
					snap.receipts[id] = append(snap.receipts[id], ScheduledReceipt{ItemID: id, Date: pl.ExpectedDate, Qty: outstanding})
				}
			}
			sort.Slice(snap.receipts[id], func(i, j int) bool { return snap.receipts[id][i].Date.Before(snap.receipts[id][j].Date) })
		}
	}

	return snap, nil
}

// Item returns the preloaded item master record.
func (s *Snapshot) Item(id core.ID) (itemmaster.Item, bool) {
	item, ok := s.items[id]
	return item, ok
}

// Available returns the preloaded on_hand-minus-reserved balance.
func (s *Snapshot) Available(id core.ID) core.Decimal {
	return s.balances[id]
}

// ScheduledReceipts returns the preloaded open-supply schedule for an item.
func (s *Snapshot) ScheduledReceipts(id core.ID) []ScheduledReceipt {
	return s.receipts[id]
}

// ResolveBOM delegates to the catalog service at the snapshot's AsOf
// instant. Nothing is cached: every call reads the catalog repository
// through the service, which decides what is "active at asOf".
func (s *Snapshot) ResolveBOM(parentItemID core.ID) (catalog.BOM, []catalog.ResolvedLine, error) {
	return s.catalogSvc.ResolveBOM(parentItemID, s.AsOf)
}

// ThroughputDays delegates to the catalog service's routing throughput
// estimate.
func (s *Snapshot) ThroughputDays(parentItemID core.ID, batchQty core.Decimal) (core.Decimal, error) {
	return s.catalogSvc.ThroughputDays(parentItemID, batchQty)
}
