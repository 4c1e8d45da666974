package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/filaops/core/internal/blocking"
	"github.com/filaops/core/internal/mrp"
)

// printText renders the planned-order set and blocking analysis as a
// banner, a summary block, and one section per result kind.
func printText(w *world, result *mrp.Result, analysis blocking.Analysis, verbose bool) {
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("                  PLANNING RUN RESULTS")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()

	fmt.Println("📊 SUMMARY")
	fmt.Printf("  Planned Orders: %d\n", len(result.PlannedOrders))
	fmt.Printf("  Warnings:       %d\n", len(result.Warnings))
	fmt.Println()

	if len(result.PlannedOrders) > 0 {
		fmt.Println("📝 PLANNED ORDERS")
		fmt.Println("────────────────────────────────────────────────────────────────")
		orders := append([]mrp.PlannedOrder{}, result.PlannedOrders...)
		sort.Slice(orders, func(i, j int) bool { return orders[i].NeedDate.Before(orders[j].NeedDate) })
		for _, o := range orders {
			item, _ := w.items.Get(o.ItemID)
			fmt.Printf("%-6s %-28s qty=%-10s release=%s need=%s\n",
				o.Kind, item.SKU, o.Qty.String(), o.ReleaseDate.Format("2006-01-02"), o.NeedDate.Format("2006-01-02"))
			if verbose {
				for _, peg := range o.Pegging {
					fmt.Printf("         peg: %s qty=%s source=%s\n", peg.SourceKind, peg.Qty.String(), peg.SourceID.String())
				}
			}
		}
		fmt.Println()
	}

	if len(result.Warnings) > 0 {
		fmt.Println("⚠️  WARNINGS")
		fmt.Println("────────────────────────────────────────────────────────────────")
		for _, wn := range result.Warnings {
			item, _ := w.items.Get(wn.ItemID)
			fmt.Printf("%-32s %-28s %s\n", wn.Kind, item.SKU, wn.Detail)
		}
		fmt.Println()
	}

	fmt.Println("🚦 BLOCKING ANALYSIS (seeded sales order)")
	fmt.Println("────────────────────────────────────────────────────────────────")
	fmt.Printf("Can proceed: %v   Issues: %d   Estimated ready: %s\n",
		analysis.CanProceed, analysis.IssueCount, analysis.EstimatedReady.Format("2006-01-02"))
	for _, issue := range analysis.Issues {
		item, _ := w.items.Get(issue.ItemID)
		fmt.Printf("  [%s] %-24s %-20s %s\n", issue.Severity, issue.Type, item.SKU, issue.Detail)
	}
	for _, action := range analysis.Actions {
		fmt.Printf("  -> %-24s %s\n", action.Type, action.Detail)
	}
	fmt.Println()
	fmt.Println("🏁 done")
}

// printJSON emits the same result as a single JSON document, for callers
// that want to pipe the output into another tool.
func printJSON(result *mrp.Result, analysis blocking.Analysis) error {
	out := struct {
		PlannedOrders []mrp.PlannedOrder `json:"planned_orders"`
		Warnings      []mrp.Warning      `json:"warnings"`
		Blocking      blocking.Analysis  `json:"blocking_analysis"`
	}{
		PlannedOrders: result.PlannedOrders,
		Warnings:      result.Warnings,
		Blocking:      analysis,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
