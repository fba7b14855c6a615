package chart

import (
	"errors"
	"fmt"
	"math"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
)

// ErrInsufficientNumeric is returned when a chart needs more numeric columns
// than the dataset has.
var ErrInsufficientNumeric = errors.New("at least 2 numeric columns are required")

// FrameKind tags the layout of a shaped frame.
type FrameKind int

const (
	// FrameCounts holds value counts of x, largest first.
	FrameCounts FrameKind = iota
	// FrameGroups holds per-category mean, count and std of y.
	FrameGroups
	// FrameRaw holds row-aligned x/y pairs.
	FrameRaw
	// FrameMatrix holds a correlation matrix.
	FrameMatrix
)

// Group is one row of a counted or grouped frame. For counts Value and Count
// are equal.
type Group struct {
	Label string
	Value float64
	Count int
	Std   float64
	Sum   float64
}

// Frame is the chart-ready view of a dataset.
type Frame struct {
	Kind FrameKind
	X    string
	Y    string

	Groups []Group

	// Raw rows. XValues is NaN where x is not numeric; YValues is NaN where
	// y is not numeric, in which case YLabels carries the text.
	XLabels  []string
	XValues  []float64
	YValues  []float64
	YLabels  []string
	YNumeric bool

	Matrix *analysis.CorrMatrix
}

// Len returns the number of rows in the frame.
func (f Frame) Len() int {
	switch f.Kind {
	case FrameCounts, FrameGroups:
		return len(f.Groups)
	case FrameMatrix:
		if f.Matrix == nil {
			return 0
		}
		return len(f.Matrix.Columns)
	}
	return len(f.XLabels)
}

// Labels returns the category labels of a counted or grouped frame, or the x
// labels of raw rows.
func (f Frame) Labels() []string {
	if f.Kind == FrameRaw {
		return append([]string(nil), f.XLabels...)
	}
	out := make([]string, len(f.Groups))
	for i, g := range f.Groups {
		out[i] = g.Label
	}
	return out
}

// Values returns counts, group means or raw y values.
func (f Frame) Values() []float64 {
	if f.Kind == FrameRaw {
		return append([]float64(nil), f.YValues...)
	}
	out := make([]float64, len(f.Groups))
	for i, g := range f.Groups {
		out[i] = g.Value
	}
	return out
}

// Shape derives the frame a chart of kind draws from x and y. Missing column
// names fall back to the first and second dataset columns.
func Shape(ds *analysis.Dataset, kind Kind, x, y ColumnRef) (Frame, error) {
	if ds == nil || ds.NumCols() == 0 {
		return Frame{}, analysis.ErrEmptyDataset
	}
	switch x.Kind() {
	case RefAllNumeric:
		return CorrelationFrame(ds)
	case RefInsufficientNumeric:
		return Frame{}, ErrInsufficientNumeric
	case RefRecommendation:
		return Frame{}, errors.New("recommendation requests have no frame")
	}
	if kind == Heatmap {
		return CorrelationFrame(ds)
	}
	xc := pickColumn(ds, x, 0)
	if y.Kind() != RefColumn || kind.Arity() == ArityX {
		return ValueCounts(xc), nil
	}
	yc := pickColumn(ds, y, 1)
	if yc == nil || yc == xc {
		return ValueCounts(xc), nil
	}
	if IsCategorical(xc) && NumericLike(yc) {
		if kind == Box || kind == Violin {
			return RawPairs(xc, yc), nil
		}
		return GroupMeans(xc, yc), nil
	}
	return RawPairs(xc, yc), nil
}

func pickColumn(ds *analysis.Dataset, ref ColumnRef, fallback int) *analysis.Column {
	if ref.IsColumn() {
		if c, ok := ds.Column(ref.Name()); ok {
			return c
		}
	}
	if fallback < ds.NumCols() {
		return ds.ColumnAt(fallback)
	}
	return nil
}

// IsCategorical reports whether c is drawn as discrete categories: text or
// boolean storage, or fewer distinct values than half its rows.
func IsCategorical(c *analysis.Column) bool {
	switch c.Storage() {
	case analysis.StorageString, analysis.StorageBool:
		return true
	}
	return c.Len() > 0 && float64(c.Unique()) < 0.5*float64(c.Len())
}

// NumericLike reports whether c stores numbers or has text cells that parse
// as numbers.
func NumericLike(c *analysis.Column) bool {
	if c.IsNumeric() {
		return true
	}
	if c.Storage() != analysis.StorageString {
		return false
	}
	for i := 0; i < c.Len(); i++ {
		if _, ok := c.Float(i); ok {
			return true
		}
	}
	return false
}

// ValueCounts counts the non-null values of c, largest first with ties in
// first-seen order.
func ValueCounts(c *analysis.Column) Frame {
	top := analysis.TopValues(c, 0)
	f := Frame{Kind: FrameCounts, X: c.Name(), Y: Count.String(), Groups: make([]Group, len(top))}
	for i, t := range top {
		n := float64(t.Count)
		f.Groups[i] = Group{Label: t.Value, Value: n, Count: t.Count, Sum: n}
	}
	return f
}

// GroupMeans groups y by x in first-seen order. Rows where either value is
// missing are skipped; the std of a single-row group is 0.
func GroupMeans(x, y *analysis.Column) Frame {
	vals := map[string][]float64{}
	var order []string
	for i := 0; i < x.Len(); i++ {
		if x.IsNull(i) {
			continue
		}
		v, ok := y.Float(i)
		if !ok || math.IsNaN(v) {
			continue
		}
		label := x.String(i)
		if _, seen := vals[label]; !seen {
			order = append(order, label)
		}
		vals[label] = append(vals[label], v)
	}
	f := Frame{Kind: FrameGroups, X: x.Name(), Y: y.Name(), Groups: make([]Group, len(order))}
	for i, label := range order {
		mean, std := analysis.MeanStd(vals[label])
		sum := 0.0
		for _, v := range vals[label] {
			sum += v
		}
		f.Groups[i] = Group{Label: label, Value: mean, Count: len(vals[label]), Std: std, Sum: sum}
	}
	return f
}

// RawPairs returns the rows where x is present. When y is numeric, rows whose
// y does not coerce are dropped.
func RawPairs(x, y *analysis.Column) Frame {
	f := Frame{Kind: FrameRaw, X: x.Name(), Y: y.Name(), YNumeric: NumericLike(y)}
	for i := 0; i < x.Len(); i++ {
		if x.IsNull(i) {
			continue
		}
		yv := math.NaN()
		if f.YNumeric {
			v, ok := y.Float(i)
			if !ok {
				continue
			}
			yv = v
		}
		xv := math.NaN()
		if v, ok := x.Float(i); ok {
			xv = v
		}
		f.XLabels = append(f.XLabels, x.String(i))
		f.XValues = append(f.XValues, xv)
		f.YValues = append(f.YValues, yv)
		f.YLabels = append(f.YLabels, y.String(i))
	}
	return f
}

// CorrelationFrame is the Pearson matrix over every numeric column.
func CorrelationFrame(ds *analysis.Dataset) (Frame, error) {
	names := numericColumns(ds)
	if len(names) < 2 {
		return Frame{}, fmt.Errorf("%w (found %d)", ErrInsufficientNumeric, len(names))
	}
	m := analysis.Correlation(ds, names)
	return Frame{Kind: FrameMatrix, X: AllNumeric.String(), Y: AllNumeric.String(), Matrix: m}, nil
}

func numericColumns(ds *analysis.Dataset) []string {
	var out []string
	for i := 0; i < ds.NumCols(); i++ {
		if c := ds.ColumnAt(i); c.IsNumeric() {
			out = append(out, c.Name())
		}
	}
	return out
}
