package production_test

import (
	"testing"
	"time"

	"github.com/filaops/core/internal/catalog"
	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/itemmaster"
	"github.com/filaops/core/internal/ledger"
	"github.com/filaops/core/internal/production"
	"github.com/filaops/core/internal/sales"
	"github.com/filaops/core/internal/storage/memory"
	"github.com/filaops/core/internal/uom"
)

type prodWorld struct {
	items      *memory.ItemStore
	locs       *memory.LocationStore
	ledgerSvc  *ledger.Service
	catalogSvc *catalog.Service
	salesStore *memory.SalesStore
	prodStore  *memory.ProductionStore
	svc        *production.Service
	defaultLoc core.Location
}

func newProdWorld(t *testing.T) *prodWorld {
	t.Helper()
	locs := memory.NewLocationStore()
	defaultLoc := core.Location{ID: core.NewID(), Code: "DEFAULT", Default: true}
	if err := locs.Create(defaultLoc); err != nil {
		t.Fatalf("seed default location: %v", err)
	}
	items := memory.NewItemStore()
	catalogSt := memory.NewCatalogStore()
	catalogSvc := catalog.New(catalogSt, items, uom.DefaultTable())
	ledgerSvc := ledger.New(memory.NewLedgerStore(), core.SystemClock{}, core.DefaultConfig())
	salesStore := memory.NewSalesStore()
	prodStore := memory.NewProductionStore()
	svc := production.New(prodStore, ledgerSvc, catalogSvc, salesStore, locs, core.SystemClock{})
	return &prodWorld{items: items, locs: locs, ledgerSvc: ledgerSvc, catalogSvc: catalogSvc, salesStore: salesStore, prodStore: prodStore, svc: svc, defaultLoc: defaultLoc}
}

func (w *prodWorld) createItem(t *testing.T, sku string, kind itemmaster.Kind, procurement itemmaster.Procurement) itemmaster.Item {
	t.Helper()
	item := itemmaster.Item{ID: core.NewID(), SKU: sku, Name: sku, Kind: kind, Procurement: procurement, StockUnit: "each", Active: true}
	if err := w.items.Create(item); err != nil {
		t.Fatalf("create item %s: %v", sku, err)
	}
	return item
}

func (w *prodWorld) receive(t *testing.T, itemID core.ID, qty string) {
	t.Helper()
	if _, err := w.ledgerSvc.Post(ledger.PostInput{ItemID: itemID, LocationID: w.defaultLoc.ID, Quantity: core.MustDecimal(qty), Kind: ledger.KindReceipt}); err != nil {
		t.Fatalf("seed receipt: %v", err)
	}
}

func (w *prodWorld) bom(t *testing.T, parent core.ID, lines []catalog.BOMLine) {
	t.Helper()
	if _, err := w.catalogSvc.CreateBOM(parent, lines, time.Now().AddDate(0, 0, -1)); err != nil {
		t.Fatalf("CreateBOM: %v", err)
	}
}

func TestReleaseReservesProductionStageMaterials(t *testing.T) {
	w := newProdWorld(t)
	fg := w.createItem(t, "FG-REL", itemmaster.KindFinishedGood, itemmaster.ProcurementMake)
	material := w.createItem(t, "CP-REL", itemmaster.KindComponent, itemmaster.ProcurementBuy)
	w.bom(t, fg.ID, []catalog.BOMLine{{ComponentID: material.ID, Seq: 1, QtyPer: core.NewDecimalFromInt(2), Unit: "each", ConsumeStage: catalog.ConsumeStageProduction}})
	w.receive(t, material.ID, "100")

	po, err := w.svc.Create(production.Order{Code: "PO-1", ItemID: fg.ID, QtyOrdered: core.MustDecimal("10")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, err := w.svc.Release(po.ID)
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if len(result.Short) != 0 {
		t.Fatalf("expected no shortfalls, got %+v", result.Short)
	}
	if len(result.Reserved) != 1 || !result.Reserved[0].Qty.Equal(core.MustDecimal("20")) {
		t.Fatalf("expected a 20-unit reservation, got %+v", result.Reserved)
	}

	avail, err := w.ledgerSvc.Available(material.ID, w.defaultLoc.ID)
	if err != nil {
		t.Fatalf("Available: %v", err)
	}
	if !avail.Equal(core.MustDecimal("80")) {
		t.Errorf("available material after release = %s, want 80 (100 - 20 reserved)", avail)
	}

	updated, err := w.prodStore.Get(po.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if updated.Status != production.StatusReleased {
		t.Errorf("status after release = %s, want released", updated.Status)
	}
}

func TestReleaseSurfacesShortfallWithoutAborting(t *testing.T) {
	w := newProdWorld(t)
	fg := w.createItem(t, "FG-SHORT", itemmaster.KindFinishedGood, itemmaster.ProcurementMake)
	scarce := w.createItem(t, "CP-SHORT", itemmaster.KindComponent, itemmaster.ProcurementBuy)
	plentiful := w.createItem(t, "CP-PLENTY", itemmaster.KindComponent, itemmaster.ProcurementBuy)
	w.bom(t, fg.ID, []catalog.BOMLine{
		{ComponentID: scarce.ID, Seq: 1, QtyPer: core.NewDecimalFromInt(1), Unit: "each", ConsumeStage: catalog.ConsumeStageProduction},
		{ComponentID: plentiful.ID, Seq: 2, QtyPer: core.NewDecimalFromInt(1), Unit: "each", ConsumeStage: catalog.ConsumeStageProduction},
	})
	w.receive(t, scarce.ID, "3")
	w.receive(t, plentiful.ID, "100")

	po, err := w.svc.Create(production.Order{Code: "PO-2", ItemID: fg.ID, QtyOrdered: core.MustDecimal("10")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	result, err := w.svc.Release(po.ID)
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if len(result.Short) != 1 || result.Short[0].ItemID != scarce.ID {
		t.Fatalf("expected a shortfall on the scarce item, got %+v", result.Short)
	}
	if len(result.Reserved) != 1 || result.Reserved[0].ItemID != plentiful.ID {
		t.Fatalf("expected the plentiful line to still be reserved, got %+v", result.Reserved)
	}
}

func TestFullLifecycleCompletesAndShipsWithScrap(t *testing.T) {
	w := newProdWorld(t)
	fg := w.createItem(t, "FG-FULL", itemmaster.KindFinishedGood, itemmaster.ProcurementMake)
	material := w.createItem(t, "CP-FULL", itemmaster.KindComponent, itemmaster.ProcurementBuy)
	packaging := w.createItem(t, "CP-PKG", itemmaster.KindComponent, itemmaster.ProcurementBuy)
	w.bom(t, fg.ID, []catalog.BOMLine{
		{ComponentID: material.ID, Seq: 1, QtyPer: core.NewDecimalFromInt(1), Unit: "each", ConsumeStage: catalog.ConsumeStageProduction},
		{ComponentID: packaging.ID, Seq: 2, QtyPer: core.NewDecimalFromInt(1), Unit: "each", ConsumeStage: catalog.ConsumeStageShipping},
	})
	w.receive(t, material.ID, "100")
	w.receive(t, packaging.ID, "100")

	salesSvc := sales.New(w.salesStore)
	order, err := salesSvc.CreateOrder(sales.Order{Number: "SO-1", RequestedDate: time.Now().AddDate(0, 0, 7)}, []sales.Line{{ItemID: fg.ID, QtyOrdered: core.MustDecimal("10")}})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if err := salesSvc.Confirm(order.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	lines, err := w.salesStore.LinesForOrder(order.ID)
	if err != nil || len(lines) != 1 {
		t.Fatalf("LinesForOrder: %v, %+v", err, lines)
	}
	lineID := lines[0].ID

	po, err := w.svc.Create(production.Order{Code: "PO-FULL", ItemID: fg.ID, QtyOrdered: core.MustDecimal("10"), SalesOrderID: &order.ID, SalesOrderLine: &lineID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := w.svc.Release(po.ID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := w.svc.Start(po.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.svc.CompleteOperation(po.ID, true, core.MustDecimal("9"), core.MustDecimal("1")); err != nil {
		t.Fatalf("CompleteOperation: %v", err)
	}

	fgAvail, err := w.ledgerSvc.Available(fg.ID, w.defaultLoc.ID)
	if err != nil {
		t.Fatalf("Available fg: %v", err)
	}
	if !fgAvail.Equal(core.MustDecimal("9")) {
		t.Errorf("fg available after complete = %s, want 9", fgAvail)
	}
	materialAvail, err := w.ledgerSvc.Available(material.ID, w.defaultLoc.ID)
	if err != nil {
		t.Fatalf("Available material: %v", err)
	}
	// 100 - 10 reserved/consumed - 1 scrap (10 * 1/10 scrap share) = 89
	if !materialAvail.Equal(core.MustDecimal("89")) {
		t.Errorf("material available after complete+scrap = %s, want 89", materialAvail)
	}

	if err := w.svc.PassQC(po.ID); err != nil {
		t.Fatalf("PassQC: %v", err)
	}
	updated, err := w.prodStore.Get(po.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if updated.Status != production.StatusComplete {
		t.Errorf("status after PassQC = %s, want complete", updated.Status)
	}
	soAfter, err := w.salesStore.Get(order.ID)
	if err != nil {
		t.Fatalf("Get sales order: %v", err)
	}
	if soAfter.Status == sales.StatusReadyToShip {
		t.Error("sales order should not be ready_to_ship: only 9 of 10 ordered units are available")
	}
}

func TestFailQCReturnsOrderToInProgress(t *testing.T) {
	w := newProdWorld(t)
	fg := w.createItem(t, "FG-QC", itemmaster.KindFinishedGood, itemmaster.ProcurementMake)
	material := w.createItem(t, "CP-QC", itemmaster.KindComponent, itemmaster.ProcurementBuy)
	w.bom(t, fg.ID, []catalog.BOMLine{{ComponentID: material.ID, Seq: 1, QtyPer: core.NewDecimalFromInt(1), Unit: "each", ConsumeStage: catalog.ConsumeStageProduction}})
	w.receive(t, material.ID, "10")

	po, err := w.svc.Create(production.Order{Code: "PO-QC", ItemID: fg.ID, QtyOrdered: core.MustDecimal("5")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := w.svc.Release(po.ID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := w.svc.Start(po.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.svc.CompleteOperation(po.ID, true, core.MustDecimal("5"), core.Zero); err != nil {
		t.Fatalf("CompleteOperation: %v", err)
	}
	if err := w.svc.FailQC(po.ID); err != nil {
		t.Fatalf("FailQC: %v", err)
	}
	updated, err := w.prodStore.Get(po.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if updated.Status != production.StatusInProgress {
		t.Errorf("status after FailQC = %s, want in_progress", updated.Status)
	}
}

func TestCompleteOperationRejectsExceedingQtyOrdered(t *testing.T) {
	w := newProdWorld(t)
	fg := w.createItem(t, "FG-OVER", itemmaster.KindFinishedGood, itemmaster.ProcurementMake)
	material := w.createItem(t, "CP-OVER", itemmaster.KindComponent, itemmaster.ProcurementBuy)
	w.bom(t, fg.ID, []catalog.BOMLine{{ComponentID: material.ID, Seq: 1, QtyPer: core.NewDecimalFromInt(1), Unit: "each", ConsumeStage: catalog.ConsumeStageProduction}})
	w.receive(t, material.ID, "10")

	po, err := w.svc.Create(production.Order{Code: "PO-OVER", ItemID: fg.ID, QtyOrdered: core.MustDecimal("5")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := w.svc.Release(po.ID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := w.svc.Start(po.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.svc.CompleteOperation(po.ID, true, core.MustDecimal("4"), core.MustDecimal("2")); err == nil {
		t.Fatal("expected an error: 4 good + 2 scrap = 6 exceeds qty_ordered of 5")
	}
}

func TestSplitRedistributesReservationsProportionally(t *testing.T) {
	w := newProdWorld(t)
	fg := w.createItem(t, "FG-SPLIT", itemmaster.KindFinishedGood, itemmaster.ProcurementMake)
	material := w.createItem(t, "CP-SPLIT", itemmaster.KindComponent, itemmaster.ProcurementBuy)
	w.bom(t, fg.ID, []catalog.BOMLine{{ComponentID: material.ID, Seq: 1, QtyPer: core.NewDecimalFromInt(1), Unit: "each", ConsumeStage: catalog.ConsumeStageProduction}})
	w.receive(t, material.ID, "100")

	po, err := w.svc.Create(production.Order{Code: "PO-SPLIT", ItemID: fg.ID, QtyOrdered: core.MustDecimal("10")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := w.svc.Release(po.ID); err != nil {
		t.Fatalf("Release: %v", err)
	}

	children, err := w.svc.Split(po.ID, []core.Decimal{core.MustDecimal("6"), core.MustDecimal("4")})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}

	totalReserved := core.Zero
	for _, c := range children {
		reservations, err := w.prodStore.MaterialReservationsForOrder(c.ID)
		if err != nil {
			t.Fatalf("MaterialReservationsForOrder: %v", err)
		}
		for _, mr := range reservations {
			totalReserved = totalReserved.Add(mr.Qty)
		}
	}
	if !totalReserved.Equal(core.MustDecimal("10")) {
		t.Errorf("total reservations across children = %s, want 10 (conserved from parent's 10)", totalReserved)
	}

	parentReservations, err := w.prodStore.MaterialReservationsForOrder(po.ID)
	if err != nil {
		t.Fatalf("MaterialReservationsForOrder parent: %v", err)
	}
	if len(parentReservations) != 0 {
		t.Errorf("expected parent's reservations to be released/deleted after split, got %d", len(parentReservations))
	}

	updated, err := w.prodStore.Get(po.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if updated.Status != production.StatusSplit {
		t.Errorf("parent status after split = %s, want split", updated.Status)
	}
}

func TestSplitRejectsSharesNotSummingToRemaining(t *testing.T) {
	w := newProdWorld(t)
	fg := w.createItem(t, "FG-SPLITBAD", itemmaster.KindFinishedGood, itemmaster.ProcurementMake)
	material := w.createItem(t, "CP-SPLITBAD", itemmaster.KindComponent, itemmaster.ProcurementBuy)
	w.bom(t, fg.ID, []catalog.BOMLine{{ComponentID: material.ID, Seq: 1, QtyPer: core.NewDecimalFromInt(1), Unit: "each", ConsumeStage: catalog.ConsumeStageProduction}})
	w.receive(t, material.ID, "100")

	po, err := w.svc.Create(production.Order{Code: "PO-SPLITBAD", ItemID: fg.ID, QtyOrdered: core.MustDecimal("10")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := w.svc.Release(po.ID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := w.svc.Split(po.ID, []core.Decimal{core.MustDecimal("6"), core.MustDecimal("3")}); err == nil {
		t.Fatal("expected an error: shares sum to 9, not remaining 10")
	}
}

func TestCancelReleasesReservations(t *testing.T) {
	w := newProdWorld(t)
	fg := w.createItem(t, "FG-CANCEL", itemmaster.KindFinishedGood, itemmaster.ProcurementMake)
	material := w.createItem(t, "CP-CANCEL", itemmaster.KindComponent, itemmaster.ProcurementBuy)
	w.bom(t, fg.ID, []catalog.BOMLine{{ComponentID: material.ID, Seq: 1, QtyPer: core.NewDecimalFromInt(1), Unit: "each", ConsumeStage: catalog.ConsumeStageProduction}})
	w.receive(t, material.ID, "100")

	po, err := w.svc.Create(production.Order{Code: "PO-CANCEL", ItemID: fg.ID, QtyOrdered: core.MustDecimal("10")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := w.svc.Release(po.ID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := w.svc.Cancel(po.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	avail, err := w.ledgerSvc.Available(material.ID, w.defaultLoc.ID)
	if err != nil {
		t.Fatalf("Available: %v", err)
	}
	if !avail.Equal(core.MustDecimal("100")) {
		t.Errorf("available after cancel = %s, want 100 (reservation released)", avail)
	}
	updated, err := w.prodStore.Get(po.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if updated.Status != production.StatusCancelled {
		t.Errorf("status after cancel = %s, want cancelled", updated.Status)
	}
}

func TestCancelRejectsOrderWithCompletions(t *testing.T) {
	w := newProdWorld(t)
	fg := w.createItem(t, "FG-CANCELDONE", itemmaster.KindFinishedGood, itemmaster.ProcurementMake)
	material := w.createItem(t, "CP-CANCELDONE", itemmaster.KindComponent, itemmaster.ProcurementBuy)
	w.bom(t, fg.ID, []catalog.BOMLine{{ComponentID: material.ID, Seq: 1, QtyPer: core.NewDecimalFromInt(1), Unit: "each", ConsumeStage: catalog.ConsumeStageProduction}})
	w.receive(t, material.ID, "100")

	po, err := w.svc.Create(production.Order{Code: "PO-CANCELDONE", ItemID: fg.ID, QtyOrdered: core.MustDecimal("10")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := w.svc.Release(po.ID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := w.svc.Start(po.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.svc.CompleteOperation(po.ID, true, core.MustDecimal("10"), core.Zero); err != nil {
		t.Fatalf("CompleteOperation: %v", err)
	}
	if err := w.svc.Cancel(po.ID); err == nil {
		t.Fatal("expected cancel to be rejected once qty_completed is positive")
	}
}

func TestShipRejectsInsufficientFinishedGoods(t *testing.T) {
	w := newProdWorld(t)
	fg := w.createItem(t, "FG-SHIP", itemmaster.KindFinishedGood, itemmaster.ProcurementMake)
	w.receive(t, fg.ID, "3")

	if err := w.svc.Ship(core.NewID(), fg.ID, core.MustDecimal("5")); err == nil {
		t.Fatal("expected ShipmentBlocked shipping more than available")
	}
}

func TestShipConsumesShippingStageMaterialsAndPostsShipment(t *testing.T) {
	w := newProdWorld(t)
	fg := w.createItem(t, "FG-SHIP2", itemmaster.KindFinishedGood, itemmaster.ProcurementMake)
	box := w.createItem(t, "CP-BOX", itemmaster.KindComponent, itemmaster.ProcurementBuy)
	w.bom(t, fg.ID, []catalog.BOMLine{{ComponentID: box.ID, Seq: 1, QtyPer: core.NewDecimalFromInt(1), Unit: "each", ConsumeStage: catalog.ConsumeStageShipping}})
	w.receive(t, fg.ID, "10")
	w.receive(t, box.ID, "10")

	salesSvc := sales.New(w.salesStore)
	order, err := salesSvc.CreateOrder(sales.Order{Number: "SO-SHIP", RequestedDate: time.Now()}, []sales.Line{{ItemID: fg.ID, QtyOrdered: core.MustDecimal("5")}})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if err := w.svc.Ship(order.ID, fg.ID, core.MustDecimal("5")); err != nil {
		t.Fatalf("Ship: %v", err)
	}

	fgAvail, _ := w.ledgerSvc.Available(fg.ID, w.defaultLoc.ID)
	if !fgAvail.Equal(core.MustDecimal("5")) {
		t.Errorf("fg available after ship = %s, want 5", fgAvail)
	}
	boxAvail, _ := w.ledgerSvc.Available(box.ID, w.defaultLoc.ID)
	if !boxAvail.Equal(core.MustDecimal("5")) {
		t.Errorf("box available after ship = %s, want 5 (5 consumed for shipping)", boxAvail)
	}
	soAfter, err := w.salesStore.Get(order.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if soAfter.Status != sales.StatusShipped {
		t.Errorf("sales order status after ship = %s, want shipped", soAfter.Status)
	}
}
