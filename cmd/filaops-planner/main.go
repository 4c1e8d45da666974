// Command filaops-planner is a demo harness for the planning engine: it
// seeds a small in-memory catalog and sales order, runs an MRP pass
// against a snapshot, and prints the planned orders plus a blocking-issues
// report for the seeded sales order, using a flag-driven, single-pass
// CLI shape.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/filaops/core/internal/blocking"
	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/mrp"
	"github.com/filaops/core/internal/production"
	"github.com/filaops/core/internal/snapshot"
	"github.com/filaops/core/internal/storage/postgres"
)

func main() {
	var (
		horizonDays = flag.Int("horizon", 90, "planning horizon in days (informational; netting runs against all known demand regardless)")
		verbose     = flag.Bool("verbose", false, "enable verbose output")
		format      = flag.String("format", "text", "output format: text, json")
		envFile     = flag.String("env", ".env", "optional .env file to load before reading FILAOPS_* environment config")
		postgresDSN = flag.String("postgres-dsn", "", "if set, back the item master and ledger with postgres (internal/storage/postgres) instead of memory")
	)
	flag.Parse()

	// godotenv.Load is a no-op error when the file is absent; we only
	// want it to populate the process environment ahead of viper's
	// AutomaticEnv binding in core.LoadConfig, never to fail startup.
	_ = godotenv.Load(*envFile)

	if *format != "text" && *format != "json" {
		fmt.Fprintf(os.Stderr, "Error: unsupported output format %q\n", *format)
		os.Exit(1)
	}

	if *verbose {
		fmt.Println("🚀 filaops planner")
		fmt.Printf("Horizon: %d days\n\n", *horizonDays)
	}

	var pools *postgres.Pools
	if *postgresDSN != "" {
		var err error
		pools, err = postgres.Connect(context.Background(), *postgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
			os.Exit(1)
		}
		defer pools.Pool.Close()
	}

	w := newWorld(pools)
	if *verbose {
		fmt.Println("📦 seeding demo catalog and sales order...")
	}
	if err := w.seedDemo(); err != nil {
		fmt.Fprintf(os.Stderr, "Error seeding demo data: %v\n", err)
		os.Exit(1)
	}

	prodSvc := production.New(w.prodStore, w.ledgerSvc, w.catalogSvc, w.salesStore, w.locs, w.clock)
	_ = prodSvc // wired for future release/ship commands; not exercised by this read-only demo pass
	blockingSvc := blocking.New(w.salesStore, w.prodStore, w.purchStore, w.items, w.ledgerSvc, w.catalogSvc, w.locs, w.clock)

	confirmed, err := w.salesStore.ConfirmedLines()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading confirmed sales lines: %v\n", err)
		os.Exit(1)
	}

	var demands []mrp.Demand
	var itemIDs []core.ID
	for _, line := range confirmed {
		order, err := w.salesStore.Get(line.OrderID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading sales order: %v\n", err)
			os.Exit(1)
		}
		demands = append(demands, mrp.Demand{
			ItemID:     line.ItemID,
			Qty:        line.QtyOrdered.Sub(line.QtyAllocated),
			NeedDate:   line.NeedDate(order),
			SourceKind: mrp.SourceSalesLine,
			SourceID:   line.ID,
		})
		itemIDs = append(itemIDs, line.ItemID)
	}

	loader := &snapshot.Loader{
		Items:       w.items,
		Catalog:     w.catalogSvc,
		Ledger:      w.ledgerSvc,
		Locations:   w.locs,
		PurchOrders: w.purchStore,
		Units:       w.units,
	}

	if *verbose {
		fmt.Println("🔄 loading planning snapshot...")
	}
	asOf := w.clock.Now()
	snap, err := loader.Load(asOf, itemIDs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		os.Exit(1)
	}

	engine := mrp.NewEngine()
	opts := mrp.Options{CascadeSubAssemblyDates: w.config.MRPEnableSubAssemblyCascading}

	if *verbose {
		fmt.Println("⚙️  running MRP explosion and netting...")
	}
	result, err := engine.Plan(context.Background(), snap, demands, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running MRP plan: %v\n", err)
		os.Exit(1)
	}

	var analysis blocking.Analysis
	if !w.demoSalesOrderID.IsZero() {
		analysis, err = blockingSvc.SalesOrderIssues(w.demoSalesOrderID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running blocking analysis: %v\n", err)
			os.Exit(1)
		}
	}

	switch *format {
	case "json":
		if err := printJSON(result, analysis); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding JSON output: %v\n", err)
			os.Exit(1)
		}
	default:
		printText(w, result, analysis, *verbose)
	}
}
