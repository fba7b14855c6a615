package chart

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
)

func renderBar(rc *renderCtx) (Figure, error) {
	labels, values, yLabel, err := rc.categories(false)
	if err != nil {
		return Figure{}, err
	}
	if yLabel != Count.String() {
		sortDesc(labels, values)
	}
	labels, values = truncate(labels, values, barLimit)
	x := rc.m.X.Name()
	return Figure{
		Title:  titleFor(yLabel, x),
		XLabel: x,
		YLabel: yLabel,
		Series: []Series{{Name: yLabel, Style: StyleBars, Labels: labels, Y: values}},
	}, nil
}

func renderPie(rc *renderCtx) (Figure, error) {
	labels, values, yLabel, err := rc.categories(false)
	if err != nil {
		return Figure{}, err
	}
	sortDesc(labels, values)
	labels, values = truncate(labels, values, pieLimit)
	x := rc.m.X.Name()
	return Figure{
		Title:  "Share of " + x,
		Series: []Series{{Name: yLabel, Labels: labels, Y: values}},
	}, nil
}

func renderFunnel(rc *renderCtx) (Figure, error) {
	labels, values, yLabel, err := rc.categories(false)
	if err != nil {
		return Figure{}, err
	}
	sortDesc(labels, values)
	x := rc.m.X.Name()
	return Figure{
		Title:  "Funnel of " + x,
		Series: []Series{{Name: yLabel, Labels: labels, Y: values}},
	}, nil
}

// renderWaterfall draws each category as a relative step followed by the total.
func renderWaterfall(rc *renderCtx) (Figure, error) {
	labels, values, yLabel, err := rc.categories(true)
	if err != nil {
		return Figure{}, err
	}
	total := 0.0
	measures := make([]string, 0, len(labels)+1)
	for _, v := range values {
		total += v
		measures = append(measures, "relative")
	}
	labels = append(labels, "Total")
	values = append(values, total)
	measures = append(measures, "total")
	x := rc.m.X.Name()
	return Figure{
		Title:  titleFor(yLabel, x),
		XLabel: x,
		YLabel: yLabel,
		Series: []Series{{Name: yLabel, Style: StyleBars, Labels: labels, Y: values, Text: measures}},
	}, nil
}

// renderTreemap draws a flat hierarchy: the x column as root, its values as leaves.
func renderTreemap(rc *renderCtx) (Figure, error) {
	labels, values, yLabel, err := rc.categories(true)
	if err != nil {
		return Figure{}, err
	}
	x := rc.m.X.Name()
	return Figure{
		Title:  titleFor(yLabel, x),
		Nodes:  []string{x},
		Series: []Series{{Name: x, Labels: labels, Y: values}},
	}, nil
}

func renderLine(rc *renderCtx) (Figure, error) {
	labels, values, yLabel, err := rc.categories(false)
	if err != nil {
		return Figure{}, err
	}
	x, _ := rc.column(rc.m.X, "x")
	orderAxis(x, labels, values)
	limit, style := lineLimit, StyleLines
	if rc.kind == Area {
		limit, style = areaLimit, StyleArea
	}
	labels, values = truncate(labels, values, limit)
	return Figure{
		Title:  titleFor(yLabel, x.Name()),
		XLabel: x.Name(),
		YLabel: yLabel,
		Series: []Series{{Name: yLabel, Style: style, Labels: labels, Y: values}},
	}, nil
}

// orderAxis sorts labels chronologically when x holds dates, numerically when
// x is numeric, and leaves them in place otherwise.
func orderAxis(x *analysis.Column, labels []string, values []float64) {
	if x.Storage() == analysis.StorageTime || x.Storage() == analysis.StorageString {
		times := map[string]time.Time{}
		for i := 0; i < x.Len(); i++ {
			if t, ok := x.Time(i); ok {
				times[x.String(i)] = t
			}
		}
		for _, l := range labels {
			if _, ok := times[l]; !ok {
				return
			}
		}
		sortBy(labels, values, func(a, b string) bool { return times[a].Before(times[b]) })
		return
	}
	if x.IsNumeric() {
		sortBy(labels, values, func(a, b string) bool {
			fa, _ := analysis.ParseNumeric(a)
			fb, _ := analysis.ParseNumeric(b)
			return fa < fb
		})
	}
}

func sortBy(labels []string, values []float64, less func(a, b string) bool) {
	idx := make([]int, len(labels))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return less(labels[idx[a]], labels[idx[b]]) })
	l := make([]string, len(labels))
	v := make([]float64, len(values))
	for i, j := range idx {
		l[i], v[i] = labels[j], values[j]
	}
	copy(labels, l)
	copy(values, v)
}

// histogram splits vals into n equal-width bins.
func histogram(vals []float64, n int) (centers []float64, labels []string, counts []float64, width float64) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width = (hi - lo) / float64(n)
	counts = make([]float64, n)
	for _, v := range vals {
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		counts[i]++
	}
	centers = make([]float64, n)
	labels = make([]string, n)
	for i := range centers {
		a := lo + float64(i)*width
		centers[i] = a + width/2
		labels[i] = fmt.Sprintf("%.4g-%.4g", a, a+width)
	}
	return centers, labels, counts, width
}

func renderHistogram(rc *renderCtx) (Figure, error) {
	x, err := rc.column(rc.m.X, "x")
	if err != nil {
		return Figure{}, err
	}
	vals, err := numbers(x)
	if err != nil {
		return Figure{}, err
	}
	centers, labels, counts, _ := histogram(vals, histBins)
	return Figure{
		Title:  "Distribution of " + x.Name(),
		XLabel: x.Name(),
		YLabel: Count.String(),
		Series: []Series{{Name: Count.String(), Style: StyleBars, Labels: labels, X: centers, Y: counts}},
	}, nil
}

// renderDistplot overlays a density-normalized histogram with a Gaussian KDE.
func renderDistplot(rc *renderCtx) (Figure, error) {
	x, err := rc.column(rc.m.X, "x")
	if err != nil {
		return Figure{}, err
	}
	vals, err := numbers(x)
	if err != nil {
		return Figure{}, err
	}
	centers, labels, counts, width := histogram(vals, histBins)
	n := float64(len(vals))
	density := make([]float64, len(counts))
	for i, c := range counts {
		density[i] = c / (n * width)
	}
	kx, ky := kde(vals, kdePoints)
	return Figure{
		Title:  "Distribution of " + x.Name(),
		XLabel: x.Name(),
		YLabel: "Density",
		Series: []Series{
			{Name: "Histogram", Style: StyleBars, Labels: labels, X: centers, Y: density},
			{Name: "KDE", Style: StyleLines, X: kx, Y: ky},
		},
	}, nil
}

// kde evaluates a Gaussian kernel density estimate with Silverman's bandwidth.
func kde(vals []float64, points int) (xs, ys []float64) {
	_, std := analysis.MeanStd(vals)
	n := float64(len(vals))
	h := 1.06 * std * math.Pow(n, -0.2)
	if h <= 0 || math.IsNaN(h) {
		h = 1
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	lo, hi = lo-h, hi+h
	step := (hi - lo) / float64(points-1)
	norm := 1 / (n * h * math.Sqrt(2*math.Pi))
	xs = make([]float64, points)
	ys = make([]float64, points)
	for i := range xs {
		t := lo + float64(i)*step
		sum := 0.0
		for _, v := range vals {
			u := (t - v) / h
			sum += math.Exp(-0.5 * u * u)
		}
		xs[i], ys[i] = t, sum*norm
	}
	return xs, ys
}

func renderECDF(rc *renderCtx) (Figure, error) {
	x, err := rc.column(rc.m.X, "x")
	if err != nil {
		return Figure{}, err
	}
	vals, err := numbers(x)
	if err != nil {
		return Figure{}, err
	}
	sort.Float64s(vals)
	frac := make([]float64, len(vals))
	for i := range vals {
		frac[i] = float64(i+1) / float64(len(vals))
	}
	return Figure{
		Title:  "ECDF of " + x.Name(),
		XLabel: x.Name(),
		YLabel: "Proportion",
		Series: []Series{{Name: x.Name(), Style: StyleLines, X: vals, Y: frac}},
	}, nil
}
