// Package uom implements unit-of-measure conversion as a directed
// multigraph over units within a dimension: mass, time,
// count, length, following the same terse, no-framework idiom as the
// rest of this module: simple value types with small validated methods
// rather than a standalone service.
package uom

import "github.com/filaops/core/internal/core"

// Dimension is the closed set of quantity dimensions a unit can belong
// to. Units from different dimensions are never convertible.
type Dimension string

const (
	DimensionMass   Dimension = "mass"
	DimensionTime   Dimension = "time"
	DimensionCount  Dimension = "count"
	DimensionLength Dimension = "length"
)

// edge is one directed conversion factor: 1 unit of From = Factor units of To.
type edge struct {
	to     string
	factor core.Decimal
}

// Table is a validated conversion graph. Zero value is usable but empty;
// construct via NewTable then AddUnit/AddConversion, or DefaultTable for
// the built-in mass/time/count/length set.
type Table struct {
	dimensionOf map[string]Dimension
	edges       map[string][]edge
}

// NewTable builds an empty conversion table.
func NewTable() *Table {
	return &Table{
		dimensionOf: make(map[string]Dimension),
		edges:       make(map[string][]edge),
	}
}

// AddUnit registers a unit as belonging to dimension d. A unit must be
// registered before it can appear in AddConversion or Convert.
func (t *Table) AddUnit(unit string, d Dimension) {
	t.dimensionOf[unit] = d
}

// AddConversion adds a bidirectional edge: 1 from = factor to, and
// 1 to = (1/factor) from. Both units must already be registered via
// AddUnit in the same dimension.
func (t *Table) AddConversion(from, to string, factor core.Decimal) error {
	dFrom, ok := t.dimensionOf[from]
	if !ok {
		return core.NewFieldError(core.ErrValidation, core.CodeInvalidUnit, "unknown unit: "+from, "from_unit")
	}
	dTo, ok := t.dimensionOf[to]
	if !ok {
		return core.NewFieldError(core.ErrValidation, core.CodeInvalidUnit, "unknown unit: "+to, "to_unit")
	}
	if dFrom != dTo {
		return core.ErrIncommensurable(from, to)
	}
	if factor.IsZero() || factor.IsNegative() {
		return core.NewFieldError(core.ErrValidation, core.CodeInvalidUnit, "conversion factor must be positive", "factor")
	}
	t.edges[from] = append(t.edges[from], edge{to: to, factor: factor})
	t.edges[to] = append(t.edges[to], edge{to: from, factor: core.NewDecimalFromInt(1).DivRound(factor, 12)})
	return nil
}

// Convert converts qty from one unit to another, banker's-rounding the
// result at scale 6. Cross-dimension conversion
// fails with IncommensurableUnits.
func (t *Table) Convert(qty core.Decimal, from, to string) (core.Decimal, error) {
	if from == to {
		return qty, nil
	}
	dFrom, ok := t.dimensionOf[from]
	if !ok {
		return core.Zero, core.NewFieldError(core.ErrValidation, core.CodeInvalidUnit, "unknown unit: "+from, "from_unit")
	}
	dTo, ok := t.dimensionOf[to]
	if !ok {
		return core.Zero, core.NewFieldError(core.ErrValidation, core.CodeInvalidUnit, "unknown unit: "+to, "to_unit")
	}
	if dFrom != dTo {
		return core.Zero, core.ErrIncommensurable(from, to)
	}
	factor, found := t.pathFactor(from, to)
	if !found {
		return core.Zero, core.ErrIncommensurable(from, to)
	}
	return core.RoundBank(qty.Mul(factor), 6), nil
}

// pathFactor finds the product of edge factors along any path from
// start to target via BFS, returning the cumulative factor. The catalog
// validation step (ValidatePaths) guarantees every path between two
// reachable units within a dimension yields the same factor, so taking
// the first discovered path is sufficient at conversion time.
func (t *Table) pathFactor(start, target string) (core.Decimal, bool) {
	type frame struct {
		unit   string
		factor core.Decimal
	}
	visited := map[string]bool{start: true}
	queue := []frame{{unit: start, factor: core.NewDecimalFromInt(1)}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.unit == target {
			return cur.factor, true
		}
		for _, e := range t.edges[cur.unit] {
			if visited[e.to] {
				continue
			}
			visited[e.to] = true
			queue = append(queue, frame{unit: e.to, factor: cur.factor.Mul(e.factor)})
		}
	}
	return core.Zero, false
}

// ValidatePaths checks that every pair of units reachable from one
// another within a dimension yields an identical conversion factor
// regardless of which path is taken, so catalog setup can assert every
// conversion path within a dimension agrees. It
// compares the BFS-shortest-path factor against a DFS enumeration of all
// simple paths between the pair, failing if they diverge beyond a small
// epsilon introduced by intermediate rounding.
func (t *Table) ValidatePaths() error {
	units := make([]string, 0, len(t.dimensionOf))
	for u := range t.dimensionOf {
		units = append(units, u)
	}
	for _, a := range units {
		for _, b := range units {
			if a >= b {
				continue
			}
			if t.dimensionOf[a] != t.dimensionOf[b] {
				continue
			}
			paths := t.allPathFactors(a, b)
			if len(paths) < 2 {
				continue
			}
			first := paths[0]
			for _, f := range paths[1:] {
				if core.RoundBank(f, 6).Cmp(core.RoundBank(first, 6)) != 0 {
					return core.NewError(core.ErrValidation, core.CodeCatalogInconsistency, "conversion paths between "+a+" and "+b+" disagree")
				}
			}
		}
	}
	return nil
}

func (t *Table) allPathFactors(start, target string) []core.Decimal {
	var out []core.Decimal
	var walk func(cur string, visited map[string]bool, factor core.Decimal)
	walk = func(cur string, visited map[string]bool, factor core.Decimal) {
		if cur == target {
			out = append(out, factor)
			return
		}
		for _, e := range t.edges[cur] {
			if visited[e.to] {
				continue
			}
			visited[e.to] = true
			walk(e.to, visited, factor.Mul(e.factor))
			delete(visited, e.to)
		}
	}
	walk(start, map[string]bool{start: true}, core.NewDecimalFromInt(1))
	return out
}

// DefaultTable builds the conversion graph for the default dimensions:
// grams/kilograms, minutes/hours/days, a bare "each" count unit, and
// millimetres/metres.
func DefaultTable() *Table {
	t := NewTable()
	t.AddUnit("g", DimensionMass)
	t.AddUnit("kg", DimensionMass)
	_ = t.AddConversion("g", "kg", core.MustDecimal("0.001"))

	t.AddUnit("min", DimensionTime)
	t.AddUnit("hr", DimensionTime)
	t.AddUnit("day", DimensionTime)
	_ = t.AddConversion("min", "hr", core.MustDecimal("0.016666666667"))
	_ = t.AddConversion("hr", "day", core.MustDecimal("0.041666666667"))

	t.AddUnit("each", DimensionCount)

	t.AddUnit("mm", DimensionLength)
	t.AddUnit("m", DimensionLength)
	_ = t.AddConversion("mm", "m", core.MustDecimal("0.001"))
	return t
}
