package chart

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
)

// Config tunes rendering. The zero value is usable.
type Config struct {
	// Title replaces the renderer's default title when set.
	Title string
	// Width and Height size HTML exports, e.g. "900px".
	Width  string
	Height string
	// Seed drives jitter and sampling so output is reproducible.
	Seed   int64
	Logger *zap.Logger
}

// DefaultConfig returns the settings used by the CLI and server.
func DefaultConfig() Config {
	return Config{Width: "900px", Height: "500px", Seed: 42}
}

const (
	barLimit     = 15
	pieLimit     = 8
	lineLimit    = 50
	areaLimit    = 100
	scatterLimit = 1000
	trendMinR    = 0.3
	histBins     = 30
	boxLimit     = 10
	densityBins  = 20
	radarMin     = 3
	radarMax     = 8
	parallelMax  = 6
	parCatMax    = 4
	parallelRows = 500
	surfaceMax   = 50
	kdePoints    = 100
)

type renderFunc func(rc *renderCtx) (Figure, error)

var renderers = map[Kind]renderFunc{
	Bar:                 renderBar,
	Line:                renderLine,
	Pie:                 renderPie,
	Scatter:             renderScatter,
	Histogram:           renderHistogram,
	Box:                 renderBox,
	Violin:              renderBox,
	Strip:               renderStrip,
	Area:                renderLine,
	Heatmap:             renderHeatmap,
	DensityContour:      renderDensity,
	DensityHeatmap:      renderDensity,
	Funnel:              renderFunnel,
	Waterfall:           renderWaterfall,
	Treemap:             renderTreemap,
	Sunburst:            renderTreemap,
	Sankey:              renderSankey,
	Radar:               renderRadar,
	ParallelCoordinates: renderParallelCoordinates,
	ParallelCategories:  renderParallelCategories,
	Scatter3D:           renderScatter3D,
	Surface:             renderSurface,
	Candlestick:         renderCandlestick,
	OHLC:                renderCandlestick,
	Distplot:            renderDistplot,
	ECDF:                renderECDF,
	Choropleth:          renderChoropleth,
	ScatterGeo:          renderScatterGeo,
}

// Registered reports whether kind has a renderer.
func Registered(kind Kind) bool {
	_, ok := renderers[kind]
	return ok
}

type renderCtx struct {
	ctx  context.Context
	ds   *analysis.Dataset
	kind Kind
	m    Mapping
	cfg  Config
	rng  *rand.Rand
}

// RenderChart draws ds as kind using the column mapping. It never panics and
// never fails: problems produce an ErrorFigure.
func RenderChart(ctx context.Context, ds *analysis.Dataset, kind Kind, m Mapping, cfg Config) (fig Figure) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("chart renderer panicked", zap.Stringer("kind", kind), zap.Any("panic", r))
			fig = ErrorFigure(fmt.Sprint(r))
		}
	}()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return ErrorFigure(err.Error())
	}
	if ds == nil || ds.NumCols() == 0 {
		return ErrorFigure(analysis.ErrEmptyDataset.Error())
	}
	if s, ok := m.Sentinel(); ok {
		switch s {
		case RefAllNumeric:
			kind = Heatmap
		case RefInsufficientNumeric:
			return ErrorFigure(ErrInsufficientNumeric.Error())
		case RefRecommendation:
			return ErrorFigure("no chart for a recommendation request")
		}
	}
	for _, ref := range []ColumnRef{m.X, m.Y} {
		if ref.IsColumn() {
			if _, ok := ds.Column(ref.Name()); !ok {
				return ErrorFigure(fmt.Sprintf("column %q not found", ref.Name()))
			}
		}
	}
	fn, ok := renderers[kind]
	if !ok {
		return ErrorFigure(fmt.Sprintf("unsupported chart type %q", kind))
	}
	rc := &renderCtx{ctx: ctx, ds: ds, kind: kind, m: m, cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
	fig, err := fn(rc)
	if err != nil {
		log.Warn("chart not rendered", zap.Stringer("kind", kind), zap.Stringer("mapping", m), zap.Error(err))
		return ErrorFigure(err.Error())
	}
	fig.Kind = kind
	if cfg.Title != "" {
		fig.Title = cfg.Title
	}
	return fig
}

// column resolves a mapped axis to a dataset column.
func (rc *renderCtx) column(ref ColumnRef, axis string) (*analysis.Column, error) {
	if !ref.IsColumn() {
		return nil, fmt.Errorf("%s column is required for %s", axis, rc.kind)
	}
	c, ok := rc.ds.Column(ref.Name())
	if !ok {
		return nil, fmt.Errorf("column %q not found", ref.Name())
	}
	return c, nil
}

// optionalY returns the y column, or nil when y is an aggregate.
func (rc *renderCtx) optionalY() (*analysis.Column, error) {
	if !rc.m.Y.IsColumn() {
		return nil, nil
	}
	return rc.column(rc.m.Y, "y")
}

func numbers(c *analysis.Column) ([]float64, error) {
	vals := c.Floats()
	if len(vals) == 0 {
		return nil, fmt.Errorf("column %q has no numeric values", c.Name())
	}
	return vals, nil
}

// pairs returns rows where both columns are numeric.
func pairs(x, y *analysis.Column) (xs, ys []float64) {
	for i := 0; i < x.Len(); i++ {
		xv, okx := x.Float(i)
		yv, oky := y.Float(i)
		if okx && oky {
			xs = append(xs, xv)
			ys = append(ys, yv)
		}
	}
	return xs, ys
}

// sample picks at most n row indexes out of total, in row order.
func (rc *renderCtx) sample(total, n int) []int {
	if total <= n {
		idx := make([]int, total)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	idx := rc.rng.Perm(total)[:n]
	sort.Ints(idx)
	return idx
}

// categories shapes x (and y when mapped) into labels and values: counts when
// y is an aggregate, group means or sums for a categorical x, raw rows
// otherwise.
func (rc *renderCtx) categories(sum bool) (labels []string, values []float64, yLabel string, err error) {
	x, err := rc.column(rc.m.X, "x")
	if err != nil {
		return nil, nil, "", err
	}
	y, err := rc.optionalY()
	if err != nil {
		return nil, nil, "", err
	}
	yRef := Count
	if y != nil {
		yRef = Column(y.Name())
	}
	f, err := Shape(rc.ds, rc.kind, Column(x.Name()), yRef)
	if err != nil {
		return nil, nil, "", err
	}
	switch f.Kind {
	case FrameCounts:
		labels, values, yLabel = f.Labels(), f.Values(), Count.String()
	case FrameGroups:
		labels, yLabel = f.Labels(), "Mean "+f.Y
		values = f.Values()
		if sum {
			yLabel = "Total " + f.Y
			for i, g := range f.Groups {
				values[i] = g.Sum
			}
		}
	case FrameRaw:
		if !f.YNumeric {
			return nil, nil, "", fmt.Errorf("column %q is not numeric", f.Y)
		}
		labels, values, yLabel = f.Labels(), f.Values(), f.Y
	default:
		return nil, nil, "", fmt.Errorf("unexpected frame for %s", rc.kind)
	}
	if len(labels) == 0 {
		return nil, nil, "", fmt.Errorf("no data to plot for %q", x.Name())
	}
	return labels, values, yLabel, nil
}

// sortDesc orders labels by value, largest first, keeping ties stable.
func sortDesc(labels []string, values []float64) {
	idx := make([]int, len(labels))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] > values[idx[b]] })
	l := make([]string, len(labels))
	v := make([]float64, len(values))
	for i, j := range idx {
		l[i], v[i] = labels[j], values[j]
	}
	copy(labels, l)
	copy(values, v)
}

func truncate(labels []string, values []float64, n int) ([]string, []float64) {
	if len(labels) > n {
		return labels[:n], values[:n]
	}
	return labels, values
}

func titleFor(yLabel, x string) string {
	if yLabel == Count.String() {
		return "Count of " + x
	}
	return fmt.Sprintf("%s by %s", yLabel, x)
}
