package production

import (
	"fmt"

	"github.com/filaops/core/internal/catalog"
	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/ledger"
	"github.com/filaops/core/internal/sales"
)

// Service implements the production order state machine and its
// inventory side effects.
type Service struct {
	repo    Repository
	ledger  *ledger.Service
	catalog *catalog.Service
	sales   sales.Repository
	locs    core.LocationRepository
	clock   core.Clock
}

// New builds a production Service.
func New(repo Repository, ledgerSvc *ledger.Service, catalogSvc *catalog.Service, salesRepo sales.Repository, locs core.LocationRepository, clock core.Clock) *Service {
	return &Service{repo: repo, ledger: ledgerSvc, catalog: catalogSvc, sales: salesRepo, locs: locs, clock: clock}
}

// Create persists a new draft production order.
func (s *Service) Create(o Order) (Order, error) {
	if _, err := s.repo.GetByCode(o.Code); err == nil {
		return Order{}, core.NewFieldError(core.ErrValidation, core.CodeDuplicateSKU, "production order code already in use: "+o.Code, "code")
	}
	o.ID = core.NewID()
	o.Status = StatusDraft
	if err := s.repo.Create(o); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Release reserves all production-stage materials for the order's BOM
// explosion in the default location. Individual
// reservation failures do not abort the release; they surface as
// ShortfallLine entries for the blocking-issues analyzer to report.
func (s *Service) Release(poID core.ID) (ReleaseResult, error) {
	po, err := s.repo.Get(poID)
	if err != nil {
		return ReleaseResult{}, err
	}
	if po.Status != StatusDraft {
		return ReleaseResult{}, core.NewFieldError(core.ErrValidation, core.CodeInvalidTransition, "only a draft production order can be released", "status")
	}

	_, lines, err := s.catalog.ResolveBOM(po.ItemID, s.clock.Now())
	if err != nil {
		return ReleaseResult{}, err
	}
	loc, err := s.locs.GetDefault()
	if err != nil {
		return ReleaseResult{}, err
	}

	result := ReleaseResult{}
	for _, rl := range lines {
		if rl.Line.CostOnly || rl.Line.ConsumeStage != catalog.ConsumeStageProduction {
			continue
		}
		qty := rl.QtyNeededInStockUnit.Mul(po.QtyOrdered)
		reservationID, err := s.ledger.Reserve(rl.Line.ComponentID, loc.ID, qty, "production_order", po.ID)
		if err != nil {
			result.Short = append(result.Short, ShortfallLine{ItemID: rl.Line.ComponentID, QtyRequired: qty})
			continue
		}
		mr := MaterialReservation{ID: core.NewID(), ProductionOrderID: po.ID, ItemID: rl.Line.ComponentID, LocationID: loc.ID, ReservationID: reservationID, Qty: qty}
		if err := s.repo.SaveMaterialReservation(mr); err != nil {
			return ReleaseResult{}, err
		}
		result.Reserved = append(result.Reserved, mr)
	}

	po.Status = StatusReleased
	if err := s.repo.Update(po); err != nil {
		return ReleaseResult{}, err
	}
	return result, nil
}

// Start transitions a released order to in_progress. No inventory effect.
func (s *Service) Start(poID core.ID) error {
	po, err := s.repo.Get(poID)
	if err != nil {
		return err
	}
	if po.Status != StatusReleased {
		return core.NewFieldError(core.ErrValidation, core.CodeInvalidTransition, "only a released production order can start", "status")
	}
	po.Status = StatusInProgress
	return s.repo.Update(po)
}

// CompleteOperation records the output of one routing operation. For an
// intermediate step, it is status-only. For the final non-shipping
// operation (isFinalOp), it posts a receipt of qty_good into FG
// inventory, consumes the reserved production-stage materials, and
// scraps the portion of each reserved material proportional to qty_bad.
func (s *Service) CompleteOperation(poID core.ID, isFinalOp bool, qtyGood, qtyBad core.Decimal) error {
	po, err := s.repo.Get(poID)
	if err != nil {
		return err
	}
	if po.Status != StatusInProgress {
		return core.NewFieldError(core.ErrValidation, core.CodeInvalidTransition, "production order is not in progress", "status")
	}
	if !isFinalOp {
		return nil
	}

	totalQty := qtyGood.Add(qtyBad)
	if po.QtyCompleted.Add(po.QtyScrapped).Add(totalQty).GreaterThan(po.QtyOrdered) {
		return core.NewFieldError(core.ErrValidation, core.CodeNegativeQuantity, "qty_completed + qty_scrapped would exceed qty_ordered", "qty_good")
	}

	loc, err := s.locs.GetDefault()
	if err != nil {
		return err
	}
	if qtyGood.IsPositive() {
		if _, err := s.ledger.Post(ledger.PostInput{ItemID: po.ItemID, LocationID: loc.ID, Quantity: qtyGood, Kind: ledger.KindReceipt, RefKind: "production_order", RefID: po.ID}); err != nil {
			return err
		}
	}

	reservations, err := s.repo.MaterialReservationsForOrder(poID)
	if err != nil {
		return err
	}
	scrapShare := core.Zero
	if totalQty.IsPositive() {
		scrapShare = qtyBad.Div(totalQty)
	}
	for _, mr := range reservations {
		if err := s.ledger.Consume(mr.ReservationID, mr.Qty); err != nil {
			return err
		}
		if scrapShare.IsPositive() {
			scrapQty := core.RoundBank(mr.Qty.Mul(scrapShare), 6)
			if scrapQty.IsPositive() {
				if _, err := s.ledger.Post(ledger.PostInput{ItemID: mr.ItemID, LocationID: mr.LocationID, Quantity: scrapQty.Neg(), Kind: ledger.KindScrap, RefKind: "production_order", RefID: po.ID}); err != nil {
					return err
				}
			}
		}
	}

	po.QtyCompleted = po.QtyCompleted.Add(qtyGood)
	po.QtyScrapped = po.QtyScrapped.Add(qtyBad)
	po.Status = StatusQC
	return s.repo.Update(po)
}

// PassQC transitions a QC-pending order to complete and, if it is
// linked to a sales order whose every line is now fulfillable, moves
// that sales order to ready_to_ship.
func (s *Service) PassQC(poID core.ID) error {
	po, err := s.repo.Get(poID)
	if err != nil {
		return err
	}
	if po.Status != StatusQC {
		return core.NewFieldError(core.ErrValidation, core.CodeInvalidTransition, "production order is not pending qc", "status")
	}
	po.Status = StatusComplete
	if err := s.repo.Update(po); err != nil {
		return err
	}
	if po.SalesOrderID == nil {
		return nil
	}
	return s.evaluateSalesOrderReadiness(*po.SalesOrderID)
}

// FailQC sends the order back to in_progress for rework.
func (s *Service) FailQC(poID core.ID) error {
	po, err := s.repo.Get(poID)
	if err != nil {
		return err
	}
	if po.Status != StatusQC {
		return core.NewFieldError(core.ErrValidation, core.CodeInvalidTransition, "production order is not pending qc", "status")
	}
	po.Status = StatusInProgress
	return s.repo.Update(po)
}

func (s *Service) evaluateSalesOrderReadiness(soID core.ID) error {
	lines, err := s.sales.LinesForOrder(soID)
	if err != nil {
		return err
	}
	loc, err := s.locs.GetDefault()
	if err != nil {
		return err
	}
	for _, line := range lines {
		available, err := s.ledger.Available(line.ItemID, loc.ID)
		if err != nil {
			return err
		}
		if available.LessThan(line.QtyOrdered) {
			return nil
		}
	}
	return s.sales.UpdateStatus(soID, sales.StatusReadyToShip)
}

// Split creates child production orders from the remaining (not yet
// completed) quantity, proportionally redistributing each reserved
// material across the children and transitioning the parent to split.
// childShares must sum to po.QtyOrdered - po.QtyCompleted.
func (s *Service) Split(poID core.ID, childShares []core.Decimal) ([]Order, error) {
	po, err := s.repo.Get(poID)
	if err != nil {
		return nil, err
	}
	if po.Status != StatusReleased && po.Status != StatusInProgress {
		return nil, core.NewFieldError(core.ErrValidation, core.CodeInvalidTransition, "only a released or in-progress production order can be split", "status")
	}
	remaining := po.QtyOrdered.Sub(po.QtyCompleted)
	sum := core.Zero
	for _, c := range childShares {
		sum = sum.Add(c)
	}
	if !sum.Equal(remaining) {
		return nil, core.NewFieldError(core.ErrValidation, core.CodeNegativeQuantity, fmt.Sprintf("child shares must sum to remaining qty %s, got %s", remaining, sum), "qty")
	}

	reservations, err := s.repo.MaterialReservationsForOrder(poID)
	if err != nil {
		return nil, err
	}

	children := make([]Order, 0, len(childShares))
	for i, share := range childShares {
		child := Order{
			ID:             core.NewID(),
			Code:           fmt.Sprintf("%s-%d", po.Code, i+1),
			ItemID:         po.ItemID,
			QtyOrdered:     share,
			Status:         StatusReleased,
			SalesOrderID:   po.SalesOrderID,
			SalesOrderLine: po.SalesOrderLine,
			ParentOrderID:  &po.ID,
			NeededDate:     po.NeededDate,
			WorkCenterID:   po.WorkCenterID,
		}
		if err := s.repo.Create(child); err != nil {
			return nil, err
		}

		proportion := share.Div(remaining)
		for _, mr := range reservations {
			childQty := core.RoundBank(mr.Qty.Mul(proportion), 6)
			if !childQty.IsPositive() {
				continue
			}
			reservationID, err := s.ledger.Reserve(mr.ItemID, mr.LocationID, childQty, "production_order", child.ID)
			if err != nil {
				continue
			}
			if err := s.repo.SaveMaterialReservation(MaterialReservation{ID: core.NewID(), ProductionOrderID: child.ID, ItemID: mr.ItemID, LocationID: mr.LocationID, ReservationID: reservationID, Qty: childQty}); err != nil {
				return nil, err
			}
		}
		children = append(children, child)
	}

	for _, mr := range reservations {
		if err := s.ledger.Release(mr.ReservationID); err != nil {
			return nil, err
		}
		if err := s.repo.DeleteMaterialReservation(mr.ID); err != nil {
			return nil, err
		}
	}

	po.Status = StatusSplit
	if err := s.repo.Update(po); err != nil {
		return nil, err
	}
	return children, nil
}

// Cancel releases every active reservation and marks the order
// cancelled. Allowed only from draft, released, or in_progress — before
// any completion has been posted.
func (s *Service) Cancel(poID core.ID) error {
	po, err := s.repo.Get(poID)
	if err != nil {
		return err
	}
	switch po.Status {
	case StatusDraft, StatusReleased, StatusInProgress:
	default:
		return core.NewFieldError(core.ErrValidation, core.CodeInvalidTransition, "production order cannot be cancelled from its current status", "status")
	}
	if po.QtyCompleted.IsPositive() {
		return core.NewFieldError(core.ErrValidation, core.CodeInvalidTransition, "production order has completions and cannot be cancelled", "status")
	}

	reservations, err := s.repo.MaterialReservationsForOrder(poID)
	if err != nil {
		return err
	}
	for _, mr := range reservations {
		if err := s.ledger.Release(mr.ReservationID); err != nil {
			return err
		}
		if err := s.repo.DeleteMaterialReservation(mr.ID); err != nil {
			return err
		}
	}
	po.Status = StatusCancelled
	return s.repo.Update(po)
}

// Ship posts shipment of finished goods and an issue of the shipping-stage
// BOM lines (packaging, labels) for a sales order. Shipping-stage lines are
// never reserved at release (Release only reserves production-stage
// lines), so drawing them down here is an issue of free stock, not a
// consumption of an existing reservation — posting it as KindConsumption
// would drive the (item, location) reserved total negative.
// itemID is the finished good being shipped.
func (s *Service) Ship(soID, itemID core.ID, qty core.Decimal) error {
	loc, err := s.locs.GetDefault()
	if err != nil {
		return err
	}
	available, err := s.ledger.Available(itemID, loc.ID)
	if err != nil {
		return err
	}
	if available.LessThan(qty) {
		return core.NewError(core.ErrBusinessRule, core.CodeShipmentBlocked, "fulfillable finished-goods quantity is less than requested shipment")
	}

	_, lines, err := s.catalog.ResolveBOM(itemID, s.clock.Now())
	if err == nil {
		for _, rl := range lines {
			if rl.Line.CostOnly || rl.Line.ConsumeStage != catalog.ConsumeStageShipping {
				continue
			}
			needed := rl.QtyNeededInStockUnit.Mul(qty)
			componentAvailable, err := s.ledger.Available(rl.Line.ComponentID, loc.ID)
			if err != nil {
				return err
			}
			if componentAvailable.LessThan(needed) {
				return core.NewError(core.ErrBusinessRule, core.CodeShipmentBlocked, "shipping-stage material shortage")
			}
		}
		for _, rl := range lines {
			if rl.Line.CostOnly || rl.Line.ConsumeStage != catalog.ConsumeStageShipping {
				continue
			}
			needed := rl.QtyNeededInStockUnit.Mul(qty)
			if _, err := s.ledger.Post(ledger.PostInput{ItemID: rl.Line.ComponentID, LocationID: loc.ID, Quantity: needed.Neg(), Kind: ledger.KindIssue, RefKind: "sales_order", RefID: soID}); err != nil {
				return err
			}
		}
	}

	if _, err := s.ledger.Post(ledger.PostInput{ItemID: itemID, LocationID: loc.ID, Quantity: qty.Neg(), Kind: ledger.KindShipment, RefKind: "sales_order", RefID: soID}); err != nil {
		return err
	}
	return s.sales.UpdateStatus(soID, sales.StatusShipped)
}
