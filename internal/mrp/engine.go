package mrp

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/itemmaster"
	"github.com/filaops/core/internal/snapshot"
)

// Engine runs planning passes against a loaded Snapshot. It is
// synchronous and starts no goroutines; BOM and routing lookups go
// through Snapshot.ResolveBOM and Snapshot.ThroughputDays, which read the
// catalog repository at call time.
type Engine struct{}

// NewEngine builds an Engine. It is stateless; all planning state lives
// in the per-call itemPlan map.
func NewEngine() *Engine {
	return &Engine{}
}

type itemPlan struct {
	gross        map[time.Time]core.Decimal
	pegsByBucket map[time.Time][]PegEntry
}

func newItemPlan() *itemPlan {
	return &itemPlan{gross: make(map[time.Time]core.Decimal), pegsByBucket: make(map[time.Time][]PegEntry)}
}

func (p *itemPlan) addDemand(bucket time.Time, qty core.Decimal, sourceKind DemandSourceKind, sourceID core.ID) {
	p.gross[bucket] = p.gross[bucket].Add(qty)
	p.pegsByBucket[bucket] = append(p.pegsByBucket[bucket], PegEntry{SourceKind: sourceKind, SourceID: sourceID, Qty: qty})
}

// Plan executes the full MRP algorithm: collect
// gross demand, explode top-down through the BOM, net against the
// ledger and incoming supply, generate planned orders, peg them to
// demand, and (per Options) cascade sub-assembly due dates.
func (e *Engine) Plan(ctx context.Context, snap *snapshot.Snapshot, demands []Demand, opts Options) (*Result, error) {
	state := make(map[core.ID]*itemPlan)
	var warnings []Warning

	for _, d := range demands {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stack := make(map[core.ID]bool)
		if err := e.explode(snap, state, &warnings, opts, d.ItemID, d.Qty, d.NeedDate, d.NeedDate, d.SourceKind, d.SourceID, stack); err != nil {
			return nil, err
		}
	}

	itemIDs := make([]core.ID, 0, len(state))
	for id := range state {
		itemIDs = append(itemIDs, id)
	}
	sort.Slice(itemIDs, func(i, j int) bool { return itemIDs[i].String() < itemIDs[j].String() })

	var orders []PlannedOrder
	for _, itemID := range itemIDs {
		item, ok := snap.Item(itemID)
		if !ok {
			return nil, core.ErrItemNotFound(itemID.String())
		}
		itemOrders, itemWarnings, err := e.netItem(snap, item, state[itemID])
		if err != nil {
			return nil, err
		}
		orders = append(orders, itemOrders...)
		warnings = append(warnings, itemWarnings...)
	}

	return &Result{PlannedOrders: orders, Warnings: warnings}, nil
}

// explode recurses a single demand down through the active BOM,
// accumulating gross requirements per (item, date bucket) into state,
// and detecting cycles via a DFS recursion stack scoped to this demand's
// root.
func (e *Engine) explode(
	snap *snapshot.Snapshot,
	state map[core.ID]*itemPlan,
	warnings *[]Warning,
	opts Options,
	itemID core.ID,
	qty core.Decimal,
	needDate time.Time,
	rootNeedDate time.Time,
	sourceKind DemandSourceKind,
	sourceID core.ID,
	stack map[core.ID]bool,
) error {
	item, ok := snap.Item(itemID)
	if !ok {
		return core.ErrItemNotFound(itemID.String())
	}
	if !item.Active {
		*warnings = append(*warnings, Warning{Kind: WarningInactiveItemDemand, ItemID: itemID, Bucket: dayKey(needDate), Detail: "demand against inactive item skipped"})
		return nil
	}
	if stack[itemID] {
		return core.ErrBOMCycle(itemID.String())
	}
	stack[itemID] = true
	defer delete(stack, itemID)

	plan, ok := state[itemID]
	if !ok {
		plan = newItemPlan()
		state[itemID] = plan
	}
	bucket := dayKey(needDate)
	plan.addDemand(bucket, qty, sourceKind, sourceID)

	if item.Kind == itemmaster.KindService {
		return nil
	}

	_, lines, err := snap.ResolveBOM(itemID)
	if err != nil {
		if ce, isCoreErr := err.(*core.Error); isCoreErr && ce.Code == core.CodeMissingActiveBOM {
			if item.Procurement == itemmaster.ProcurementMake {
				return err
			}
			return nil
		}
		return err
	}

	for _, rl := range lines {
		if rl.Line.CostOnly {
			continue
		}
		childQty := rl.QtyNeededInStockUnit.Mul(qty)
		child, ok := snap.Item(rl.Line.ComponentID)
		if !ok {
			return core.ErrItemNotFound(rl.Line.ComponentID.String())
		}

		leadDays, err := e.componentLeadDays(snap, child, childQty)
		if err != nil {
			return err
		}

		childNeedDate := rootNeedDate
		if opts.CascadeSubAssemblyDates {
			childNeedDate = needDate.AddDate(0, 0, -leadDays)
		}

		if err := e.explode(snap, state, warnings, opts, child.ID, childQty, childNeedDate, rootNeedDate, SourceSubAssembly, itemID, stack); err != nil {
			return err
		}
	}
	return nil
}

// componentLeadDays resolves the calendar-day offset to apply when
// propagating a parent's need_date backward onto a component: vendor
// lead time for buy items, routing throughput estimate for make items.
// Zero lead time yields release_date = need_date, so a zero here is
// valid, not an error.
func (e *Engine) componentLeadDays(snap *snapshot.Snapshot, item itemmaster.Item, batchQty core.Decimal) (int, error) {
	if item.Procurement == itemmaster.ProcurementBuy {
		return item.LeadTimeDays, nil
	}
	days, err := snap.ThroughputDays(item.ID, batchQty)
	if err != nil {
		return 0, err
	}
	f, _ := days.Float64()
	return int(math.Ceil(f)), nil
}

// netItem runs the date-ordered netting recurrence for a single item
// and generates a PlannedOrder for every bucket with a positive net
// requirement, pegged proportionally across the demand sources that
// contributed to that bucket.
func (e *Engine) netItem(snap *snapshot.Snapshot, item itemmaster.Item, plan *itemPlan) ([]PlannedOrder, []Warning, error) {
	if plan == nil {
		return nil, nil, nil
	}

	projAvail := snap.Available(item.ID)
	safetyDeficit := item.SafetyStock.Sub(projAvail)
	if safetyDeficit.IsPositive() {
		firstBucket := earliestBucket(plan.gross)
		if firstBucket.IsZero() {
			firstBucket = dayKey(time.Now())
		}
		plan.addDemand(firstBucket, safetyDeficit, SourceSafetyStock, item.ID)
	}

	buckets := make([]time.Time, 0, len(plan.gross))
	for b := range plan.gross {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Before(buckets[j]) })

	receiptsByBucket := map[time.Time]core.Decimal{}
	for _, r := range snap.ScheduledReceipts(item.ID) {
		b := dayKey(r.Date)
		receiptsByBucket[b] = receiptsByBucket[b].Add(r.Qty)
	}

	var orders []PlannedOrder
	var warnings []Warning

	for _, t := range buckets {
		grossT := plan.gross[t]
		scheduledT := receiptsByBucket[t]

		netT := grossT.Sub(projAvail).Sub(scheduledT)
		if netT.IsNegative() {
			netT = core.Zero
		}

		plannedReceiptsT := core.Zero
		if netT.IsPositive() {
			order, err := e.generatePlannedOrder(snap, item, netT, t, plan.pegsByBucket[t], grossT)
			if err != nil {
				return nil, nil, err
			}
			orders = append(orders, order)
			plannedReceiptsT = netT
		}

		projAvail = projAvail.Add(scheduledT).Sub(grossT).Add(plannedReceiptsT)
		if projAvail.IsNegative() {
			warnings = append(warnings, Warning{Kind: WarningNegativeProjectedAvailable, ItemID: item.ID, Bucket: t, Detail: "projected available remains negative after netting"})
		}
	}

	return orders, warnings, nil
}

func (e *Engine) generatePlannedOrder(snap *snapshot.Snapshot, item itemmaster.Item, qty core.Decimal, needDate time.Time, pegs []PegEntry, grossTotal core.Decimal) (PlannedOrder, error) {
	kind := PlannedOrderBuy
	if item.Procurement == itemmaster.ProcurementMake || item.Procurement == itemmaster.ProcurementMakeOrBuy {
		kind = PlannedOrderMake
	}

	leadDays, err := e.componentLeadDays(snap, item, qty)
	if err != nil {
		return PlannedOrder{}, err
	}
	releaseDate := needDate.AddDate(0, 0, -leadDays)

	var pegging []PegEntry
	if grossTotal.IsPositive() {
		for _, p := range pegs {
			share := p.Qty.Div(grossTotal).Mul(qty)
			pegging = append(pegging, PegEntry{SourceKind: p.SourceKind, SourceID: p.SourceID, Qty: core.RoundBank(share, 6)})
		}
	}

	return PlannedOrder{
		ID:          core.NewID(),
		Kind:        kind,
		ItemID:      item.ID,
		Qty:         qty,
		ReleaseDate: releaseDate,
		NeedDate:    needDate,
		Pegging:     pegging,
	}, nil
}

func earliestBucket(gross map[time.Time]core.Decimal) time.Time {
	var earliest time.Time
	for b := range gross {
		if earliest.IsZero() || b.Before(earliest) {
			earliest = b
		}
	}
	return earliest
}
