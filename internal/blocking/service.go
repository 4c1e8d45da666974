package blocking

import (
	"sort"
	"time"

	"github.com/filaops/core/internal/catalog"
	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/itemmaster"
	"github.com/filaops/core/internal/ledger"
	"github.com/filaops/core/internal/production"
	"github.com/filaops/core/internal/purchasing"
	"github.com/filaops/core/internal/sales"
)

// Service is the blocking-issues analyzer. It is a pure
// function of its inputs for a fixed snapshot of catalog, ledger, and
// orders (determinism requirement).
type Service struct {
	sales      sales.Repository
	production production.Repository
	purchasing purchasing.Repository
	items      itemmaster.Repository
	ledger     *ledger.Service
	catalog    *catalog.Service
	locs       core.LocationRepository
	clock      core.Clock
}

// New builds a blocking-issues analyzer Service.
func New(salesRepo sales.Repository, productionRepo production.Repository, purchasingRepo purchasing.Repository, items itemmaster.Repository, ledgerSvc *ledger.Service, catalogSvc *catalog.Service, locs core.LocationRepository, clock core.Clock) *Service {
	return &Service{sales: salesRepo, production: productionRepo, purchasing: purchasingRepo, items: items, ledger: ledgerSvc, catalog: catalogSvc, locs: locs, clock: clock}
}

// SalesOrderIssues classifies why a sales order cannot yet ship.
func (s *Service) SalesOrderIssues(soID core.ID) (Analysis, error) {
	lines, err := s.sales.LinesForOrder(soID)
	if err != nil {
		return Analysis{}, err
	}
	loc, err := s.locs.GetDefault()
	if err != nil {
		return Analysis{}, err
	}

	var issues []Issue
	var actions []Action
	var latestCoverage time.Time

	for _, line := range lines {
		item, err := s.items.Get(line.ItemID)
		if err != nil {
			return Analysis{}, err
		}
		available, err := s.ledger.Available(line.ItemID, loc.ID)
		if err != nil {
			return Analysis{}, err
		}
		if available.GreaterThanOrEqual(line.QtyOrdered) {
			continue
		}

		if item.Kind == itemmaster.KindFinishedGood && item.Procurement != itemmaster.ProcurementBuy {
			po, found, err := s.production.FindBySalesOrderLine(line.ID)
			if err != nil {
				return Analysis{}, err
			}
			if !found {
				issues = append(issues, Issue{Type: IssueProductionMissing, Severity: SeverityBlocking, ItemID: line.ItemID, ReferenceType: "sales_order_line", ReferenceID: line.ID, Detail: "no production order covers this line"})
				actions = append(actions, Action{Type: ActionCreateProduction, ReferenceType: "sales_order_line", ReferenceID: line.ID})
				continue
			}
			if po.Status != production.StatusComplete && po.Status != production.StatusShipped {
				issues = append(issues, Issue{Type: IssueProductionIncomplete, Severity: SeverityBlocking, ItemID: line.ItemID, ReferenceType: "production_order", ReferenceID: po.ID, Detail: "linked production order is not yet complete"})
				actions = append(actions, Action{Type: ActionCompleteProduction, ReferenceType: "production_order", ReferenceID: po.ID})

				throughput, err := s.catalog.ThroughputDays(line.ItemID, po.QtyOrdered.Sub(po.QtyCompleted))
				if err == nil {
					candidate := addDays(s.clock.Now(), throughput)
					if candidate.After(latestCoverage) {
						latestCoverage = candidate
					}
				}
				continue
			}
		}

		itemIssues, itemActions, coverage := s.materialIssues(line.ItemID, line.QtyOrdered.Sub(available), loc.ID, line.ItemID)
		issues = append(issues, itemIssues...)
		actions = append(actions, itemActions...)
		if coverage.After(latestCoverage) {
			latestCoverage = coverage
		}
	}

	return s.finalize(issues, actions, latestCoverage), nil
}

// ProductionOrderIssues classifies why a production order cannot
// progress: unresolved material shortages on its production-stage BOM
// lines, measured against each material's available quantity.
func (s *Service) ProductionOrderIssues(poID core.ID) (Analysis, error) {
	po, err := s.production.Get(poID)
	if err != nil {
		return Analysis{}, err
	}
	loc, err := s.locs.GetDefault()
	if err != nil {
		return Analysis{}, err
	}

	_, lines, err := s.catalog.ResolveBOM(po.ItemID, s.clock.Now())
	if err != nil {
		return Analysis{}, err
	}

	var issues []Issue
	var actions []Action
	var latestCoverage time.Time

	for _, rl := range lines {
		if rl.Line.CostOnly || rl.Line.ConsumeStage != catalog.ConsumeStageProduction {
			continue
		}
		needed := rl.QtyNeededInStockUnit.Mul(po.QtyOrdered)
		available, err := s.ledger.Available(rl.Line.ComponentID, loc.ID)
		if err != nil {
			return Analysis{}, err
		}
		if available.GreaterThanOrEqual(needed) {
			continue
		}
		itemIssues, itemActions, coverage := s.materialIssues(rl.Line.ComponentID, needed.Sub(available), loc.ID, po.ItemID)
		issues = append(issues, itemIssues...)
		actions = append(actions, itemActions...)
		if coverage.After(latestCoverage) {
			latestCoverage = coverage
		}
	}

	return s.finalize(issues, actions, latestCoverage), nil
}

// materialIssues classifies a single material shortfall: a covering
// open purchase order yields a warning (purchase_pending) plus an
// expedite action; no coverage yields a blocking material_shortage plus
// a create-PO action. Reservations elsewhere that make on_hand look
// sufficient but unavailable surface as inventory_reserved.
func (s *Service) materialIssues(itemID core.ID, shortQty core.Decimal, locationID core.ID, topItemID core.ID) ([]Issue, []Action, time.Time) {
	var issues []Issue
	var actions []Action
	var coverage time.Time

	bal, err := s.ledger.Balance(itemID, locationID)
	if err == nil && bal.Reserved.IsPositive() && bal.OnHand.GreaterThanOrEqual(bal.Available().Add(shortQty)) {
		issues = append(issues, Issue{Type: IssueInventoryReserved, Severity: SeverityWarning, ItemID: itemID, ReferenceType: "item", ReferenceID: itemID, Detail: "on-hand exists but is held by other reservations"})
		actions = append(actions, Action{Type: ActionReassignReservation, ReferenceType: "item", ReferenceID: itemID})
	}

	if s.purchasing == nil {
		issues = append(issues, Issue{Type: IssueMaterialShortage, Severity: SeverityBlocking, ItemID: itemID, ReferenceType: "item", ReferenceID: itemID, Detail: "insufficient available quantity, no incoming coverage"})
		actions = append(actions, Action{Type: ActionCreateMissingPO, ReferenceType: "item", ReferenceID: itemID})
		return issues, actions, coverage
	}

	openLines, err := s.purchasing.OpenLinesForItem(itemID)
	if err != nil {
		openLines = nil
	}
	remaining := shortQty
	covered := false
	for _, line := range openLines {
		outstanding := line.QtyOrdered.Sub(line.QtyReceived)
		if outstanding.IsPositive() {
			covered = true
			remaining = remaining.Sub(outstanding)
			issues = append(issues, Issue{Type: IssuePurchasePending, Severity: SeverityWarning, ItemID: itemID, ReferenceType: "purchase_order_line", ReferenceID: line.ID, Detail: "open purchase order covers this shortage"})
			actions = append(actions, Action{Type: ActionExpeditePO, ReferenceType: "purchase_order_line", ReferenceID: line.ID})
			candidate := line.ExpectedDate
			if throughput, err := s.catalog.ThroughputDays(topItemID, shortQty); err == nil {
				candidate = addDays(candidate, throughput)
			}
			if candidate.After(coverage) {
				coverage = candidate
			}
		}
		if remaining.IsZero() || remaining.IsNegative() {
			break
		}
	}
	if !covered || remaining.IsPositive() {
		issues = append(issues, Issue{Type: IssueMaterialShortage, Severity: SeverityBlocking, ItemID: itemID, ReferenceType: "item", ReferenceID: itemID, Detail: "insufficient available quantity, no incoming coverage"})
		actions = append(actions, Action{Type: ActionCreateMissingPO, ReferenceType: "item", ReferenceID: itemID})
	}
	return issues, actions, coverage
}

func (s *Service) finalize(issues []Issue, actions []Action, latestCoverage time.Time) Analysis {
	sort.SliceStable(actions, func(i, j int) bool { return ActionPriority(actions[i].Type) < ActionPriority(actions[j].Type) })

	canProceed := true
	for _, issue := range issues {
		if issue.Severity == SeverityBlocking {
			canProceed = false
			break
		}
	}

	ready := latestCoverage
	if ready.IsZero() {
		ready = s.clock.Now()
	}
	if canProceed && len(issues) == 0 {
		ready = s.clock.Now()
	}

	return Analysis{
		CanProceed:     canProceed,
		IssueCount:     len(issues),
		EstimatedReady: ready,
		Issues:         issues,
		Actions:        actions,
	}
}

func addDays(t time.Time, days core.Decimal) time.Time {
	f, _ := days.Float64()
	return t.Add(time.Duration(f * float64(24*time.Hour)))
}
