package chart

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
)

func renderScatter(rc *renderCtx) (Figure, error) {
	x, err := rc.column(rc.m.X, "x")
	if err != nil {
		return Figure{}, err
	}
	y, err := rc.optionalY()
	if err != nil {
		return Figure{}, err
	}
	if y == nil {
		labels, values, yLabel, err := rc.categories(false)
		if err != nil {
			return Figure{}, err
		}
		return Figure{
			Title:  titleFor(yLabel, x.Name()),
			XLabel: x.Name(),
			YLabel: yLabel,
			Series: []Series{{Name: yLabel, Style: StyleMarkers, Labels: labels, Y: values}},
		}, nil
	}
	if !NumericLike(y) {
		return Figure{}, fmt.Errorf("scatter needs a numeric y, %q is not numeric", y.Name())
	}
	if !x.IsNumeric() && IsCategorical(x) {
		return rc.groupedScatter(x, y)
	}
	xs, ys := pairs(x, y)
	if len(xs) == 0 {
		return Figure{}, fmt.Errorf("no numeric pairs in %q and %q", x.Name(), y.Name())
	}
	r := analysis.Pearson(xs, ys)
	idx := rc.sample(len(xs), scatterLimit)
	sx := make([]float64, len(idx))
	sy := make([]float64, len(idx))
	for i, j := range idx {
		sx[i], sy[i] = xs[j], ys[j]
	}
	fig := Figure{
		Title:       fmt.Sprintf("%s vs %s", y.Name(), x.Name()),
		XLabel:      x.Name(),
		YLabel:      y.Name(),
		Series:      []Series{{Name: y.Name(), Style: StyleMarkers, X: sx, Y: sy}},
		Annotations: []string{fmt.Sprintf("r = %.3f", r)},
	}
	if len(idx) < len(xs) {
		fig.Annotations = append(fig.Annotations, fmt.Sprintf("sampled %d of %d points", len(idx), len(xs)))
	}
	if math.Abs(r) > trendMinR {
		if trend, ok := trendLine(xs, ys); ok {
			fig.Series = append(fig.Series, trend)
		}
	}
	return fig, nil
}

// groupedScatter plots one point per category at the mean of y, using the
// grouped frame the shaper produces for a categorical x.
func (rc *renderCtx) groupedScatter(x, y *analysis.Column) (Figure, error) {
	frame, err := Shape(rc.ds, rc.kind, Column(x.Name()), Column(y.Name()))
	if err != nil || frame.Kind != FrameGroups {
		frame = GroupMeans(x, y)
	}
	if frame.Len() == 0 {
		return Figure{}, fmt.Errorf("no numeric values in %q", y.Name())
	}
	s := Series{Name: "Average " + y.Name(), Style: StyleMarkers}
	for i, g := range frame.Groups {
		s.X = append(s.X, float64(i))
		s.Y = append(s.Y, g.Value)
	}
	return Figure{
		Title:       fmt.Sprintf("Average %s by %s", y.Name(), x.Name()),
		XLabel:      x.Name(),
		YLabel:      "Average " + y.Name(),
		Categories:  frame.Labels(),
		Series:      []Series{s},
		Annotations: []string{fmt.Sprintf("mean of %s across %d categories", y.Name(), frame.Len())},
	}, nil
}

// trendLine fits y = a + b·x by least squares over the full data.
func trendLine(xs, ys []float64) (Series, bool) {
	n := float64(len(xs))
	var sx, sy, sxx, sxy float64
	lo, hi := xs[0], xs[0]
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxx += xs[i] * xs[i]
		sxy += xs[i] * ys[i]
		lo = math.Min(lo, xs[i])
		hi = math.Max(hi, xs[i])
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return Series{}, false
	}
	b := (n*sxy - sx*sy) / den
	a := (sy - b*sx) / n
	return Series{Name: "Trend", Style: StyleLines, X: []float64{lo, hi}, Y: []float64{a + b*lo, a + b*hi}}, true
}

// renderBox draws box and violin charts: five-number summaries with the raw
// values of up to boxLimit categories.
func renderBox(rc *renderCtx) (Figure, error) {
	x, err := rc.column(rc.m.X, "x")
	if err != nil {
		return Figure{}, err
	}
	y, err := rc.optionalY()
	if err != nil {
		return Figure{}, err
	}
	title := fmt.Sprintf("%s of %s", rc.kind, x.Name())
	if y == nil || !IsCategorical(x) {
		target := x
		if y != nil {
			target = y
		}
		vals, err := numbers(target)
		if err != nil {
			return Figure{}, err
		}
		box := fiveNumber(vals)
		return Figure{
			Title:  fmt.Sprintf("%s of %s", rc.kind, target.Name()),
			YLabel: target.Name(),
			Series: []Series{{Name: target.Name(), Y: vals, Box: &box}},
		}, nil
	}
	if !NumericLike(y) {
		return Figure{}, fmt.Errorf("column %q is not numeric", y.Name())
	}
	f := RawPairs(x, y)
	groups := map[string][]float64{}
	var order []string
	for i, label := range f.XLabels {
		if _, ok := groups[label]; !ok {
			if len(order) == boxLimit {
				continue
			}
			order = append(order, label)
		}
		groups[label] = append(groups[label], f.YValues[i])
	}
	if len(order) == 0 {
		return Figure{}, fmt.Errorf("no numeric values in %q", y.Name())
	}
	series := make([]Series, len(order))
	for i, label := range order {
		box := fiveNumber(groups[label])
		series[i] = Series{Name: label, Y: groups[label], Box: &box}
	}
	return Figure{
		Title:      title + " and " + y.Name(),
		XLabel:     x.Name(),
		YLabel:     y.Name(),
		Categories: order,
		Series:     series,
	}, nil
}

func fiveNumber(vals []float64) BoxStats {
	s := append([]float64(nil), vals...)
	sort.Float64s(s)
	return BoxStats{
		Min:    s[0],
		Q1:     analysis.Quantile(s, 0.25),
		Median: analysis.Quantile(s, 0.5),
		Q3:     analysis.Quantile(s, 0.75),
		Max:    s[len(s)-1],
	}
}

// renderStrip draws every observation of y at its category position.
func renderStrip(rc *renderCtx) (Figure, error) {
	x, err := rc.column(rc.m.X, "x")
	if err != nil {
		return Figure{}, err
	}
	y, err := rc.column(rc.m.Y, "y")
	if err != nil {
		return Figure{}, err
	}
	if !NumericLike(y) {
		return Figure{}, fmt.Errorf("column %q is not numeric", y.Name())
	}
	f := RawPairs(x, y)
	pos := map[string]int{}
	var cats []string
	var series []Series
	for i, label := range f.XLabels {
		p, ok := pos[label]
		if !ok {
			p = len(cats)
			pos[label] = p
			cats = append(cats, label)
			series = append(series, Series{Name: label, Style: StyleMarkers})
		}
		series[p].X = append(series[p].X, float64(p))
		series[p].Y = append(series[p].Y, f.YValues[i])
	}
	if len(series) == 0 {
		return Figure{}, fmt.Errorf("no data to plot for %q", x.Name())
	}
	return Figure{
		Title:      fmt.Sprintf("%s by %s", y.Name(), x.Name()),
		XLabel:     x.Name(),
		YLabel:     y.Name(),
		Categories: cats,
		Series:     series,
	}, nil
}

// renderDensity bins numeric x/y pairs into a densityBins grid of counts.
func renderDensity(rc *renderCtx) (Figure, error) {
	x, err := rc.column(rc.m.X, "x")
	if err != nil {
		return Figure{}, err
	}
	y, err := rc.column(rc.m.Y, "y")
	if err != nil {
		return Figure{}, err
	}
	xs, ys := pairs(x, y)
	if len(xs) == 0 {
		return Figure{}, fmt.Errorf("no numeric pairs in %q and %q", x.Name(), y.Name())
	}
	_, xLabels, _, _ := histogram(xs, densityBins)
	_, yLabels, _, _ := histogram(ys, densityBins)
	bin := func(vals []float64) func(float64) int {
		lo, hi := vals[0], vals[0]
		for _, v := range vals {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if lo == hi {
			lo, hi = lo-0.5, hi+0.5
		}
		w := (hi - lo) / densityBins
		return func(v float64) int {
			i := int((v - lo) / w)
			if i >= densityBins {
				i = densityBins - 1
			}
			return i
		}
	}
	bx, by := bin(xs), bin(ys)
	grid := make([][]float64, densityBins)
	for i := range grid {
		grid[i] = make([]float64, densityBins)
	}
	for i := range xs {
		grid[by(ys[i])][bx(xs[i])]++
	}
	return Figure{
		Title:  fmt.Sprintf("Density of %s and %s", x.Name(), y.Name()),
		XLabel: x.Name(),
		YLabel: y.Name(),
		Matrix: &Matrix{XLabels: xLabels, YLabels: yLabels, Values: grid},
	}, nil
}

// renderScatter3D uses the first numeric column outside x and y as z, or y
// itself when there is none.
func renderScatter3D(rc *renderCtx) (Figure, error) {
	x, err := rc.column(rc.m.X, "x")
	if err != nil {
		return Figure{}, err
	}
	y, err := rc.column(rc.m.Y, "y")
	if err != nil {
		return Figure{}, err
	}
	z := y
	for _, name := range numericColumns(rc.ds) {
		if name != x.Name() && name != y.Name() {
			z, _ = rc.ds.Column(name)
			break
		}
	}
	var xs, ys, zs []float64
	for i := 0; i < x.Len(); i++ {
		xv, okx := x.Float(i)
		yv, oky := y.Float(i)
		zv, okz := z.Float(i)
		if okx && oky && okz {
			xs, ys, zs = append(xs, xv), append(ys, yv), append(zs, zv)
		}
	}
	if len(xs) == 0 {
		return Figure{}, fmt.Errorf("no numeric rows in %q, %q and %q", x.Name(), y.Name(), z.Name())
	}
	idx := rc.sample(len(xs), scatterLimit)
	s := Series{Name: z.Name(), Style: StyleMarkers}
	for _, j := range idx {
		s.X, s.Y, s.Z = append(s.X, xs[j]), append(s.Y, ys[j]), append(s.Z, zs[j])
	}
	return Figure{
		Title:       fmt.Sprintf("%s, %s and %s", x.Name(), y.Name(), z.Name()),
		XLabel:      x.Name(),
		YLabel:      y.Name(),
		Series:      []Series{s},
		Annotations: []string{"z = " + z.Name()},
	}, nil
}
