package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/filaops/core/internal/catalog"
	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/itemmaster"
	"github.com/filaops/core/internal/ledger"
	"github.com/filaops/core/internal/purchasing"
	"github.com/filaops/core/internal/sales"
	"github.com/filaops/core/internal/storage/memory"
	"github.com/filaops/core/internal/storage/postgres"
	"github.com/filaops/core/internal/uom"
)

// materialSeeder registers material-type/color lookup rows ahead of the
// item-master operations that reference them by code. Both
// memory.ItemStore and postgres.ItemRepository implement it, so
// seedDemo works unchanged against either backend.
type materialSeeder interface {
	SeedMaterialType(itemmaster.MaterialType) error
	SeedColor(itemmaster.Color) error
}

// world bundles every service and store the demo wires together, so main
// and the print routines can share one set of handles without a DI
// container. items/ledgerStore are interface-typed so -postgres-dsn can
// swap in the durable adapters from internal/storage/postgres without
// touching anything else in this package; every other store stays
// in-memory (see DESIGN.md: those are the two components spec §6 calls
// out for durable storage).
type world struct {
	log          *zap.SugaredLogger
	clock        core.Clock
	config       core.Config
	units        *uom.Table
	locs         *memory.LocationStore
	items        itemmaster.Repository
	ledgerStore  ledger.Store
	catalogStore *memory.CatalogStore
	salesStore   *memory.SalesStore
	purchStore   *memory.PurchasingStore
	prodStore    *memory.ProductionStore

	itemSvc    *itemmaster.Service
	ledgerSvc  *ledger.Service
	catalogSvc *catalog.Service
	salesSvc   *sales.Service
	purchSvc   *purchasing.Service

	demoEnclosureID  core.ID
	demoSalesOrderID core.ID
}

// newWorld constructs every store and service, defaulting item master and
// ledger storage to in-memory. withPostgres, if non-nil, swaps those two
// onto the pgx-backed adapters instead (see main's -postgres-dsn flag).
func newWorld(withPostgres *postgres.Pools) *world {
	cfg, err := core.LoadConfig("")
	if err != nil {
		cfg = core.DefaultConfig()
	}
	log, err := core.NewLogger(false)
	if err != nil {
		log = core.NopLogger()
	}
	clock := core.SystemClock{}

	w := &world{
		log:          log,
		clock:        clock,
		config:       cfg,
		units:        uom.DefaultTable(),
		locs:         memory.NewLocationStore(),
		items:        memory.NewItemStore(),
		ledgerStore:  memory.NewLedgerStore(),
		catalogStore: memory.NewCatalogStore(),
		salesStore:   memory.NewSalesStore(),
		purchStore:   memory.NewPurchasingStore(),
		prodStore:    memory.NewProductionStore(),
	}
	if withPostgres != nil {
		w.items = postgres.NewItemRepository(withPostgres.Pool)
		w.ledgerStore = postgres.NewLedgerRepository(withPostgres.Pool)
		w.log.Infow("using postgres-backed item master and ledger")
	}

	w.ledgerSvc = ledger.New(w.ledgerStore, clock, cfg)
	w.itemSvc = itemmaster.New(w.items, w.locs, w.ledgerSvc, cfg)
	w.catalogSvc = catalog.New(w.catalogStore, w.items, w.units)
	w.salesSvc = sales.New(w.salesStore)
	w.purchSvc = purchasing.New(w.purchStore)

	w.log.Infow("world constructed", "sub_assembly_cascading", cfg.MRPEnableSubAssemblyCascading)
	return w
}

// seedDemo populates a small two-level BOM (a finished good printed part
// made of two filament materials) plus a confirmed sales order, so the
// first run of the CLI has something to plan against without requiring
// the operator to hand-author CSV/JSON fixtures up front.
func (w *world) seedDemo() error {
	mainLoc := core.Location{ID: core.NewID(), Code: "MAIN", Name: "Main Warehouse", Default: true}
	if err := w.locs.Create(mainLoc); err != nil {
		return err
	}

	pla := itemmaster.MaterialType{ID: core.NewID(), Code: "PLA", Name: "Polylactic Acid"}
	petg := itemmaster.MaterialType{ID: core.NewID(), Code: "PETG", Name: "PETG"}
	black := itemmaster.Color{ID: core.NewID(), Code: "BLK", Name: "Black"}
	natural := itemmaster.Color{ID: core.NewID(), Code: "NAT", Name: "Natural"}

	seeder, ok := w.items.(materialSeeder)
	if !ok {
		return core.NewError(core.ErrInternal, core.CodeCatalogInconsistency, "item repository does not support seeding material types/colors")
	}
	for _, mt := range []itemmaster.MaterialType{pla, petg} {
		if err := seeder.SeedMaterialType(mt); err != nil {
			return err
		}
	}
	for _, c := range []itemmaster.Color{black, natural} {
		if err := seeder.SeedColor(c); err != nil {
			return err
		}
	}

	blackPLA, err := w.itemSvc.CreateMaterial(itemmaster.CreateMaterialInput{
		MaterialTypeCode: "PLA",
		ColorCode:        "BLK",
		InitialQty:       core.NewDecimalFromInt(20000),
		Cost:             core.MustDecimal("0.02"),
		StockUnit:        "g",
	})
	if err != nil {
		return err
	}

	natPETG, err := w.itemSvc.CreateMaterial(itemmaster.CreateMaterialInput{
		MaterialTypeCode: "PETG",
		ColorCode:        "NAT",
		InitialQty:       core.NewDecimalFromInt(5000),
		Cost:             core.MustDecimal("0.03"),
		StockUnit:        "g",
	})
	if err != nil {
		return err
	}

	bracket, err := w.itemSvc.CreateItem(itemmaster.CreateItemInput{
		Name:         "Mounting Bracket (printed)",
		Kind:         itemmaster.KindComponent,
		Procurement:  itemmaster.ProcurementMake,
		StockUnit:    "each",
		StandardCost: core.MustDecimal("1.10"),
		SafetyStock:  core.NewDecimalFromInt(5),
		LeadTimeDays: 1,
	})
	if err != nil {
		return err
	}

	enclosure, err := w.itemSvc.CreateItem(itemmaster.CreateItemInput{
		Name:         "Enclosure Assembly",
		Kind:         itemmaster.KindFinishedGood,
		Procurement:  itemmaster.ProcurementMake,
		StockUnit:    "each",
		StandardCost: core.MustDecimal("6.50"),
		SafetyStock:  core.NewDecimalFromInt(2),
		LeadTimeDays: 0,
	})
	if err != nil {
		return err
	}

	hardwareKit, err := w.itemSvc.CreateItem(itemmaster.CreateItemInput{
		Name:         "Fastener Kit",
		Kind:         itemmaster.KindSupply,
		Procurement:  itemmaster.ProcurementBuy,
		StockUnit:    "each",
		StandardCost: core.MustDecimal("0.40"),
		LeadTimeDays: 7,
	})
	if err != nil {
		return err
	}

	now := w.clock.Now()

	if _, err := w.catalogSvc.CreateBOM(bracket.ID, []catalog.BOMLine{
		{ComponentID: blackPLA.Item.ID, Seq: 1, QtyPer: core.NewDecimalFromInt(42), Unit: "g", ScrapFactor: core.MustDecimal("0.05"), ConsumeStage: catalog.ConsumeStageProduction},
	}, now); err != nil {
		return err
	}

	if _, err := w.catalogSvc.CreateBOM(enclosure.ID, []catalog.BOMLine{
		{ComponentID: bracket.ID, Seq: 1, QtyPer: core.NewDecimalFromInt(4), Unit: "each", ConsumeStage: catalog.ConsumeStageProduction},
		{ComponentID: natPETG.Item.ID, Seq: 2, QtyPer: core.NewDecimalFromInt(180), Unit: "g", ScrapFactor: core.MustDecimal("0.08"), ConsumeStage: catalog.ConsumeStageProduction},
		{ComponentID: hardwareKit.ID, Seq: 3, QtyPer: core.NewDecimalFromInt(1), Unit: "each", ConsumeStage: catalog.ConsumeStageShipping},
	}, now); err != nil {
		return err
	}

	printer := catalog.WorkCenter{ID: core.NewID(), Code: "PRINT-1", Name: "FDM Printer Farm", Kind: "printer", DailyCapacity: core.NewDecimalFromInt(20), DefaultRate: core.MustDecimal("5.00")}
	if err := w.catalogStore.CreateWorkCenter(printer); err != nil {
		return err
	}
	if _, err := w.catalogSvc.CreateRouting(bracket.ID, []catalog.Operation{
		{Seq: 1, WorkCenterID: printer.ID, SetupTime: core.MustDecimal("0.25"), RunTimePerUnit: core.MustDecimal("1.5")},
	}); err != nil {
		return err
	}
	if _, err := w.catalogSvc.CreateRouting(enclosure.ID, []catalog.Operation{
		{Seq: 1, WorkCenterID: printer.ID, SetupTime: core.MustDecimal("0.5"), RunTimePerUnit: core.MustDecimal("0.25")},
	}); err != nil {
		return err
	}

	po := purchasing.PurchaseOrder{ID: core.NewID(), Code: "PO-1001", VendorID: core.NewID(), Status: purchasing.StatusOrdered, ExpectedDate: now.AddDate(0, 0, 10)}
	poLine := purchasing.POLine{ID: core.NewID(), PurchaseOrderID: po.ID, ItemID: hardwareKit.ID, QtyOrdered: core.NewDecimalFromInt(500), UnitCost: core.MustDecimal("0.35"), ExpectedDate: po.ExpectedDate}
	if err := w.purchStore.Create(po, []purchasing.POLine{poLine}); err != nil {
		return err
	}

	customerID := core.NewID()
	order, err := w.salesSvc.CreateOrder(sales.Order{
		ID:            core.NewID(),
		Number:        "SO-2001",
		CustomerID:    customerID,
		RequestedDate: now.AddDate(0, 0, 14),
	}, []sales.Line{
		{ItemID: enclosure.ID, QtyOrdered: core.NewDecimalFromInt(50), UnitPrice: core.MustDecimal("24.99")},
	})
	if err != nil {
		return err
	}
	if err := w.salesSvc.Confirm(order.ID); err != nil {
		return err
	}

	w.demoEnclosureID = enclosure.ID
	w.demoSalesOrderID = order.ID
	return nil
}
