package catalog

import (
	"fmt"
	"sort"
	"time"

	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/itemmaster"
	"github.com/filaops/core/internal/uom"
)

// Service is the BOM & Routing catalog's public contract:
// CRUD with revision control, active-recipe retrieval at a point in
// time, cost rollup, and cycle safety.
type Service struct {
	repo  Repository
	items itemmaster.Repository
	units *uom.Table
}

// New builds a catalog Service.
func New(repo Repository, items itemmaster.Repository, units *uom.Table) *Service {
	return &Service{repo: repo, items: items, units: units}
}

// CreateBOM validates cycle safety and persists a new BOM revision,
// deactivating any prior active revision for the same parent: at most
// one active revision per (parent, point-in-time).
func (s *Service) CreateBOM(parentItemID core.ID, lines []BOMLine, effectiveFrom time.Time) (BOM, error) {
	for i, l := range lines {
		if !l.ConsumeStage.valid() {
			return BOM{}, core.NewFieldError(core.ErrValidation, core.CodeInvalidTransition, "unknown consume_stage", "consume_stage")
		}
		if l.ScrapFactor.IsNegative() || l.ScrapFactor.GreaterThanOrEqual(core.NewDecimalFromInt(1)) {
			return BOM{}, core.NewFieldError(core.ErrValidation, core.CodeNegativeQuantity, "scrap_factor must be in [0,1)", "scrap_factor")
		}
		lines[i].ID = core.NewID()
	}

	if err := s.checkAcyclic(parentItemID, lines); err != nil {
		return BOM{}, err
	}

	existing, err := s.repo.BOMsForParent(parentItemID)
	if err != nil {
		return BOM{}, err
	}
	revision := 1
	for _, b := range existing {
		if b.Active {
			if err := s.repo.DeactivateBOM(b.ID); err != nil {
				return BOM{}, err
			}
		}
		if b.Revision >= revision {
			revision = b.Revision + 1
		}
	}

	bom := BOM{ID: core.NewID(), ParentItemID: parentItemID, Revision: revision, Active: true, EffectiveFrom: effectiveFrom}
	if err := s.repo.CreateBOM(bom); err != nil {
		return BOM{}, err
	}
	for i := range lines {
		lines[i].BOMID = bom.ID
	}
	if err := s.repo.CreateBOMLines(lines); err != nil {
		return BOM{}, err
	}
	return bom, nil
}

// checkAcyclic validates that the transitive component closure of
// parentItemID, extended by the proposed lines, does not contain
// parentItemID itself. Generalizes a DFS-with-recursion-stack cycle
// detector from a flat-slice utility into a live-catalog walk.
func (s *Service) checkAcyclic(parentItemID core.ID, proposedLines []BOMLine) error {
	visited := map[core.ID]bool{}
	stack := map[core.ID]bool{}
	path := []core.ID{}

	var walk func(itemID core.ID, overrideLines []BOMLine) error
	walk = func(itemID core.ID, overrideLines []BOMLine) error {
		visited[itemID] = true
		stack[itemID] = true
		path = append(path, itemID)

		var children []core.ID
		if overrideLines != nil {
			for _, l := range overrideLines {
				children = append(children, l.ComponentID)
			}
		} else {
			resolved, err := s.activeBOMAt(itemID, time.Now())
			if err != nil || resolved == nil {
				children = nil
			} else {
				for _, l := range resolved.lines {
					children = append(children, l.ComponentID)
				}
			}
		}

		for _, child := range children {
			if stack[child] {
				return core.ErrBOMCycle(cyclePath(path, child))
			}
			if !visited[child] {
				if err := walk(child, nil); err != nil {
					return err
				}
			}
		}

		stack[itemID] = false
		path = path[:len(path)-1]
		return nil
	}

	return walk(parentItemID, proposedLines)
}

func cyclePath(path []core.ID, closingWith core.ID) string {
	s := ""
	for _, id := range path {
		s += id.String() + " -> "
	}
	return s + closingWith.String()
}

type resolvedBOM struct {
	bom   BOM
	lines []BOMLine
}

// activeBOMAt returns the active BOM for parentItemID whose effectivity
// window contains asOf, choosing the highest revision on ties.
func (s *Service) activeBOMAt(parentItemID core.ID, asOf time.Time) (*resolvedBOM, error) {
	all, err := s.repo.BOMsForParent(parentItemID)
	if err != nil {
		return nil, err
	}
	var best *BOM
	for i := range all {
		b := all[i]
		if !b.Active {
			continue
		}
		if b.EffectiveFrom.After(asOf) {
			continue
		}
		if b.EffectiveTo != nil && !b.EffectiveTo.After(asOf) {
			continue
		}
		if best == nil || b.Revision > best.Revision {
			best = &b
		}
	}
	if best == nil {
		return nil, nil
	}
	lines, err := s.repo.BOMLinesForBOM(best.ID)
	if err != nil {
		return nil, err
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Seq < lines[j].Seq })
	return &resolvedBOM{bom: *best, lines: lines}, nil
}

// ResolveBOM returns the active BOM for parentItemID at asOf with every
// line's quantity converted into its component's stock_unit.
func (s *Service) ResolveBOM(parentItemID core.ID, asOf time.Time) (BOM, []ResolvedLine, error) {
	rb, err := s.activeBOMAt(parentItemID, asOf)
	if err != nil {
		return BOM{}, nil, err
	}
	if rb == nil {
		return BOM{}, nil, core.NewError(core.ErrBusinessRule, core.CodeMissingActiveBOM, "no active bom for item "+parentItemID.String())
	}
	out := make([]ResolvedLine, 0, len(rb.lines))
	for _, l := range rb.lines {
		component, err := s.items.Get(l.ComponentID)
		if err != nil {
			return BOM{}, nil, err
		}
		qty, err := s.units.Convert(l.QtyNeeded(), l.Unit, component.StockUnit)
		if err != nil {
			return BOM{}, nil, err
		}
		out = append(out, ResolvedLine{Line: l, QtyNeededInStockUnit: qty})
	}
	return rb.bom, out, nil
}

// RollupCost computes the fully-loaded standard cost of parentItemID by
// traversing its active BOM depth-first; cost_only lines contribute to
// cost but are skipped by material planning elsewhere.
func (s *Service) RollupCost(parentItemID core.ID, asOf time.Time) (core.Decimal, error) {
	visited := map[core.ID]bool{}
	var walk func(itemID core.ID) (core.Decimal, error)
	walk = func(itemID core.ID) (core.Decimal, error) {
		if visited[itemID] {
			return core.Zero, core.ErrBOMCycle(itemID.String())
		}
		visited[itemID] = true
		defer delete(visited, itemID)

		item, err := s.items.Get(itemID)
		if err != nil {
			return core.Zero, err
		}
		rb, err := s.activeBOMAt(itemID, asOf)
		if err != nil {
			return core.Zero, err
		}
		if rb == nil {
			return item.StandardCost, nil
		}
		total := core.Zero
		for _, l := range rb.lines {
			childCost, err := walk(l.ComponentID)
			if err != nil {
				return core.Zero, err
			}
			total = total.Add(childCost.Mul(l.QtyNeeded()))
		}
		return total, nil
	}
	return walk(parentItemID)
}

// CreateRouting persists a new routing revision, deactivating any prior
// active one for the parent, after validating operation sequence numbers
// are unique and strictly increasing.
func (s *Service) CreateRouting(parentItemID core.ID, ops []Operation) (Routing, error) {
	sort.Slice(ops, func(i, j int) bool { return ops[i].Seq < ops[j].Seq })
	for i := 1; i < len(ops); i++ {
		if ops[i].Seq <= ops[i-1].Seq {
			return Routing{}, core.NewFieldError(core.ErrValidation, core.CodeInvalidTransition, "operation seqs must be unique and strictly increasing", "seq")
		}
	}

	existing, err := s.repo.RoutingsForParent(parentItemID)
	if err != nil {
		return Routing{}, err
	}
	revision := 1
	for _, r := range existing {
		if r.Active {
			if err := s.repo.DeactivateRouting(r.ID); err != nil {
				return Routing{}, err
			}
		}
		if r.Revision >= revision {
			revision = r.Revision + 1
		}
	}

	routing := Routing{ID: core.NewID(), ParentItemID: parentItemID, Revision: revision, Active: true}
	if err := s.repo.CreateRouting(routing); err != nil {
		return Routing{}, err
	}
	for i := range ops {
		ops[i].ID = core.NewID()
		ops[i].RoutingID = routing.ID
	}
	if err := s.repo.CreateOperations(ops); err != nil {
		return Routing{}, err
	}
	return routing, nil
}

// ActiveRouting returns the active routing and its operations for an
// item, ordered by sequence.
func (s *Service) ActiveRouting(parentItemID core.ID) (Routing, []Operation, error) {
	all, err := s.repo.RoutingsForParent(parentItemID)
	if err != nil {
		return Routing{}, nil, err
	}
	var best *Routing
	for i := range all {
		r := all[i]
		if r.Active && (best == nil || r.Revision > best.Revision) {
			best = &r
		}
	}
	if best == nil {
		return Routing{}, nil, core.NewError(core.ErrBusinessRule, core.CodeMissingActiveBOM, "no active routing for item "+parentItemID.String())
	}
	ops, err := s.repo.OperationsForRouting(best.ID)
	if err != nil {
		return Routing{}, nil, err
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Seq < ops[j].Seq })
	return *best, ops, nil
}

// ThroughputDays estimates calendar days to produce batchQty of an item
// via its active routing: Σ(setup + run_per_unit × batch_qty) converted
// to calendar days at each work center's daily capacity.
func (s *Service) ThroughputDays(parentItemID core.ID, batchQty core.Decimal) (core.Decimal, error) {
	_, ops, err := s.ActiveRouting(parentItemID)
	if err != nil {
		return core.Zero, err
	}
	total := core.Zero
	for _, op := range ops {
		wc, err := s.repo.GetWorkCenter(op.WorkCenterID)
		if err != nil {
			return core.Zero, err
		}
		hours := op.SetupTime.Add(op.RunTimePerUnit.Mul(batchQty))
		if wc.DailyCapacity.IsZero() {
			return core.Zero, core.NewError(core.ErrBusinessRule, core.CodeCatalogInconsistency, fmt.Sprintf("work center %s has zero daily capacity", wc.Code))
		}
		total = total.Add(hours.Div(wc.DailyCapacity))
	}
	return core.RoundBank(total, 6), nil
}
