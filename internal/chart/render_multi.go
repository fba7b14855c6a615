package chart

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

func renderHeatmap(rc *renderCtx) (Figure, error) {
	f, err := Shape(rc.ds, Heatmap, AllNumeric, AllNumeric)
	if err != nil {
		return Figure{}, err
	}
	m := f.Matrix
	return Figure{
		Title:  "Correlation matrix",
		Matrix: &Matrix{XLabels: m.Columns, YLabels: m.Columns, Values: m.Values},
	}, nil
}

func renderRadar(rc *renderCtx) (Figure, error) {
	names := numericColumns(rc.ds)
	if len(names) < radarMin {
		return Figure{}, fmt.Errorf("radar needs at least %d numeric columns (found %d)", radarMin, len(names))
	}
	if len(names) > radarMax {
		names = names[:radarMax]
	}
	means := make([]float64, len(names))
	for i, n := range names {
		c, _ := rc.ds.Column(n)
		means[i], _ = analysis.MeanStd(c.Floats())
	}
	return Figure{
		Title:      "Column means",
		Dimensions: names,
		Series:     []Series{{Name: "Mean", Labels: names, Y: means}},
	}, nil
}

func renderParallelCoordinates(rc *renderCtx) (Figure, error) {
	names := numericColumns(rc.ds)
	if len(names) < 2 {
		return Figure{}, fmt.Errorf("parallel coordinates need at least 2 numeric columns (found %d)", len(names))
	}
	if len(names) > parallelMax {
		names = names[:parallelMax]
	}
	cols := make([]*analysis.Column, len(names))
	for i, n := range names {
		cols[i], _ = rc.ds.Column(n)
	}
	var rows [][]float64
	for r := 0; r < rc.ds.NumRows(); r++ {
		row := make([]float64, len(cols))
		ok := true
		for i, c := range cols {
			if row[i], ok = c.Float(r); !ok {
				break
			}
		}
		if ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return Figure{}, fmt.Errorf("no complete rows across %s", strings.Join(names, ", "))
	}
	idx := rc.sample(len(rows), parallelRows)
	kept := make([][]float64, len(idx))
	for i, j := range idx {
		kept[i] = rows[j]
	}
	return Figure{
		Title:      "Parallel coordinates",
		Dimensions: names,
		Series:     []Series{{Name: "rows", Style: StyleLines, Rows: kept}},
	}, nil
}

// flows counts transitions between consecutive columns and returns the nodes
// in first-seen order.
func flows(cols []*analysis.Column, rows int) ([]string, []Link) {
	var nodes []string
	seenNode := map[string]bool{}
	addNode := func(n string) {
		if !seenNode[n] {
			seenNode[n] = true
			nodes = append(nodes, n)
		}
	}
	type edge struct{ s, t string }
	counts := map[edge]float64{}
	var order []edge
	for r := 0; r < rows; r++ {
		for i := 0; i+1 < len(cols); i++ {
			a, b := cols[i], cols[i+1]
			if a.IsNull(r) || b.IsNull(r) {
				continue
			}
			e := edge{nodeName(a, r), nodeName(b, r)}
			addNode(e.s)
			addNode(e.t)
			if _, ok := counts[e]; !ok {
				order = append(order, e)
			}
			counts[e]++
		}
	}
	links := make([]Link, len(order))
	for i, e := range order {
		links[i] = Link{Source: e.s, Target: e.t, Value: counts[e]}
	}
	return nodes, links
}

func nodeName(c *analysis.Column, r int) string { return c.Name() + ": " + c.String(r) }

func renderSankey(rc *renderCtx) (Figure, error) {
	x, err := rc.column(rc.m.X, "x")
	if err != nil {
		return Figure{}, err
	}
	y, err := rc.column(rc.m.Y, "y")
	if err != nil {
		return Figure{}, err
	}
	nodes, links := flows([]*analysis.Column{x, y}, rc.ds.NumRows())
	if len(links) == 0 {
		return Figure{}, fmt.Errorf("no rows with both %q and %q", x.Name(), y.Name())
	}
	return Figure{
		Title: fmt.Sprintf("Flow from %s to %s", x.Name(), y.Name()),
		Nodes: nodes,
		Links: links,
	}, nil
}

func renderParallelCategories(rc *renderCtx) (Figure, error) {
	var cols []*analysis.Column
	var names []string
	for i := 0; i < rc.ds.NumCols() && len(cols) < parCatMax; i++ {
		c := rc.ds.ColumnAt(i)
		if !c.IsNumeric() && IsCategorical(c) {
			cols = append(cols, c)
			names = append(names, c.Name())
		}
	}
	if len(cols) < 2 {
		return Figure{}, fmt.Errorf("parallel categories need at least 2 categorical columns (found %d)", len(cols))
	}
	nodes, links := flows(cols, rc.ds.NumRows())
	return Figure{
		Title:      "Category flows",
		Dimensions: names,
		Nodes:      nodes,
		Links:      links,
	}, nil
}

// renderSurface pivots the mean of z over the (y, x) grid of distinct values.
func renderSurface(rc *renderCtx) (Figure, error) {
	names := numericColumns(rc.ds)
	if len(names) < 3 {
		return Figure{}, fmt.Errorf("surface needs at least 3 numeric columns (found %d)", len(names))
	}
	pick := func(ref ColumnRef, skip ...string) string {
		if ref.IsColumn() {
			if c, ok := rc.ds.Column(ref.Name()); ok && c.IsNumeric() {
				return c.Name()
			}
		}
	next:
		for _, n := range names {
			for _, s := range skip {
				if n == s {
					continue next
				}
			}
			return n
		}
		return ""
	}
	xn := pick(rc.m.X)
	yn := pick(rc.m.Y, xn)
	if yn == xn {
		yn = pick(Count, xn)
	}
	zn := pick(Count, xn, yn)
	x, _ := rc.ds.Column(xn)
	y, _ := rc.ds.Column(yn)
	z, _ := rc.ds.Column(zn)

	type cell struct{ x, y float64 }
	sums := map[cell]float64{}
	counts := map[cell]int{}
	xset, yset := map[float64]bool{}, map[float64]bool{}
	for r := 0; r < rc.ds.NumRows(); r++ {
		xv, okx := x.Float(r)
		yv, oky := y.Float(r)
		zv, okz := z.Float(r)
		if !okx || !oky || !okz {
			continue
		}
		k := cell{xv, yv}
		sums[k] += zv
		counts[k]++
		xset[xv], yset[yv] = true, true
	}
	if len(counts) == 0 {
		return Figure{}, fmt.Errorf("no complete rows across %s, %s and %s", xn, yn, zn)
	}
	xv, yv := sortedKeys(xset, surfaceMax), sortedKeys(yset, surfaceMax)
	grid := make([][]float64, len(yv))
	for i, b := range yv {
		grid[i] = make([]float64, len(xv))
		for j, a := range xv {
			if n := counts[cell{a, b}]; n > 0 {
				grid[i][j] = sums[cell{a, b}] / float64(n)
			}
		}
	}
	return Figure{
		Title:       fmt.Sprintf("%s over %s and %s", zn, xn, yn),
		XLabel:      xn,
		YLabel:      yn,
		Matrix:      &Matrix{XLabels: formatAll(xv), YLabels: formatAll(yv), Values: grid},
		Annotations: []string{"z = mean " + zn},
	}, nil
}

func sortedKeys(set map[float64]bool, limit int) []float64 {
	out := make([]float64, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Float64s(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func formatAll(vals []float64) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return out
}

var priceKeywords = map[string][]string{
	"open":  {"open", "시가"},
	"high":  {"high", "고가"},
	"low":   {"low", "저가"},
	"close": {"close", "종가"},
}

// findByName returns the first column whose name starts a word with one of
// the keywords, or contains a non-ASCII keyword.
func findByName(ds *analysis.Dataset, keywords []string) *analysis.Column {
	for i := 0; i < ds.NumCols(); i++ {
		c := ds.ColumnAt(i)
		lower := strings.ToLower(c.Name())
		for _, kw := range keywords {
			if !utils.IsASCII(kw) {
				if strings.Contains(lower, kw) {
					return c
				}
				continue
			}
			for _, w := range utils.ColumnWords(c.Name()) {
				if strings.HasPrefix(w, kw) {
					return c
				}
			}
		}
	}
	return nil
}

// renderCandlestick serves candlestick and OHLC charts from open, high, low
// and close columns found by name.
func renderCandlestick(rc *renderCtx) (Figure, error) {
	cols := map[string]*analysis.Column{}
	var missing []string
	for _, k := range []string{"open", "high", "low", "close"} {
		c := findByName(rc.ds, priceKeywords[k])
		if c == nil {
			missing = append(missing, k)
			continue
		}
		cols[k] = c
	}
	if len(missing) > 0 {
		return Figure{}, fmt.Errorf("%s needs open, high, low and close columns (missing %s)", rc.kind, strings.Join(missing, ", "))
	}
	var label *analysis.Column
	if rc.m.X.IsColumn() {
		label, _ = rc.ds.Column(rc.m.X.Name())
	}
	if label == nil {
		for i := 0; i < rc.ds.NumCols(); i++ {
			if c := rc.ds.ColumnAt(i); c.Storage() == analysis.StorageTime {
				label = c
				break
			}
		}
	}
	var bars []OHLCBar
	for r := 0; r < rc.ds.NumRows(); r++ {
		o, ok1 := cols["open"].Float(r)
		h, ok2 := cols["high"].Float(r)
		l, ok3 := cols["low"].Float(r)
		c, ok4 := cols["close"].Float(r)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}
		name := strconv.Itoa(r + 1)
		if label != nil && !label.IsNull(r) {
			name = label.String(r)
		}
		bars = append(bars, OHLCBar{Label: name, Open: o, High: h, Low: l, Close: c})
	}
	if len(bars) == 0 {
		return Figure{}, fmt.Errorf("no complete price rows")
	}
	title := "Price movement"
	if label != nil {
		title += " by " + label.Name()
	}
	return Figure{
		Title:  title,
		Series: []Series{{Name: "price", OHLC: bars}},
	}, nil
}
