package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// SemanticType is the analytical role inferred for a column.
type SemanticType string

const (
	TypeNumeric     SemanticType = "numeric"
	TypeCategorical SemanticType = "categorical"
	TypeDatetime    SemanticType = "datetime"
	TypeUnknown     SemanticType = "unknown"
)

// CategoricalRatio is the distinct-value ratio below which a text column is
// treated as a category rather than free text or an identifier.
const CategoricalRatio = 0.5

// CategoryCount is a value with its frequency.
type CategoryCount struct {
	Value string
	Count int
}

// ColumnProfile is a typed summary of one column.
type ColumnProfile struct {
	Name    string
	Type    SemanticType
	Storage Storage
	Unit    string
	NonNull int
	Nulls   int
	Unique  int
	Samples []string
	// Numeric stats; zero when the column is not numeric or failed to summarize.
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Max   float64
	// Categorical top values
	TopValues []CategoryCount
}

// IsNumeric reports whether the column is typed numeric.
func (p ColumnProfile) IsNumeric() bool { return p.Type == TypeNumeric }

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// Schema is the ordered set of column profiles for a dataset.
type Schema struct {
	Name     string
	Rows     int
	Columns  []ColumnProfile
	Samples  [][]string
	Corr     *CorrMatrix
	Warnings []string
}

// Names returns column names in dataset order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Lookup returns the profile for name.
func (s *Schema) Lookup(name string) (ColumnProfile, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}

// Numeric returns the names of numeric columns in order.
func (s *Schema) Numeric() []string { return s.ofType(TypeNumeric) }

// Categorical returns the names of categorical columns in order.
func (s *Schema) Categorical() []string { return s.ofType(TypeCategorical) }

// Datetime returns the names of datetime columns in order.
func (s *Schema) Datetime() []string { return s.ofType(TypeDatetime) }

func (s *Schema) ofType(t SemanticType) []string {
	var out []string
	for _, c := range s.Columns {
		if c.Type == t {
			out = append(out, c.Name)
		}
	}
	return out
}

// Classify applies the typing rules to a column.
func Classify(c *Column) SemanticType {
	switch c.Storage() {
	case StorageInt, StorageFloat:
		return TypeNumeric
	case StorageTime:
		return TypeDatetime
	case StorageString, StorageBool:
		if c.Len() > 0 && float64(c.Unique())/float64(c.Len()) < CategoricalRatio {
			return TypeCategorical
		}
	}
	return TypeUnknown
}

// Profile summarizes every column of ds with default options.
func Profile(ds *Dataset) *Schema {
	return ProfileWithOptions(ds, DefaultOptions())
}

// ProfileWithOptions summarizes every column of ds. It never fails; a column
// whose statistics cannot be computed keeps its type with zeroed stats and a
// warning is recorded.
func ProfileWithOptions(ds *Dataset, opt Options) *Schema {
	s := &Schema{Name: ds.Name(), Rows: ds.NumRows()}
	for i := 0; i < ds.NumCols(); i++ {
		c := ds.ColumnAt(i)
		p, err := profileColumn(c)
		if err != nil {
			s.Warnings = append(s.Warnings, fmt.Sprintf("column %q: %v", c.Name(), err))
		}
		s.Columns = append(s.Columns, p)
	}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	for i := 0; i < ds.NumRows() && i < sampleRows; i++ {
		s.Samples = append(s.Samples, ds.Row(i))
	}
	if opt.Correlations {
		if m := Correlation(ds, s.Numeric()); m != nil {
			s.Corr = m
		}
	}
	return s
}

func profileColumn(c *Column) (p ColumnProfile, err error) {
	p = ColumnProfile{
		Name:    c.Name(),
		Storage: c.Storage(),
		Unit:    c.Unit(),
		Type:    Classify(c),
	}
	defer func() {
		if r := recover(); r != nil {
			p.Count, p.Mean, p.Std, p.Min, p.Max = 0, 0, 0, 0, 0
			p.TopValues = nil
			err = fmt.Errorf("statistics unavailable: %v", r)
		}
	}()
	p.NonNull = c.NonNull()
	p.Nulls = c.Len() - p.NonNull
	p.Unique = c.Unique()
	for i := 0; i < c.Len() && len(p.Samples) < 5; i++ {
		if !c.IsNull(i) {
			p.Samples = append(p.Samples, c.String(i))
		}
	}
	switch p.Type {
	case TypeNumeric:
		var w welford
		for _, v := range c.Floats() {
			w.add(v)
		}
		p.Count, p.Mean, p.Std, p.Min, p.Max = w.n, w.mean, w.std(), w.min, w.max
		if w.n == 0 {
			p.Min, p.Max = 0, 0
		}
	case TypeCategorical:
		p.TopValues = TopValues(c, 5)
	}
	return p, nil
}

// TopValues returns the k most frequent non-null values, ties in first-seen order.
func TopValues(c *Column, k int) []CategoryCount {
	counts := map[string]int{}
	var order []string
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v := c.String(i)
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}
	out := make([]CategoryCount, len(order))
	for i, v := range order {
		out[i] = CategoryCount{Value: v, Count: counts[v]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

type welford struct {
	n        int
	mean, m2 float64
	min, max float64
}

func (w *welford) add(x float64) {
	if w.n == 0 {
		w.min, w.max = x, x
	}
	w.n++
	d := x - w.mean
	w.mean += d / float64(w.n)
	w.m2 += d * (x - w.mean)
	if x < w.min {
		w.min = x
	}
	if x > w.max {
		w.max = x
	}
}

// std is the sample standard deviation; 0 for fewer than two values.
func (w *welford) std() float64 {
	if w.n < 2 {
		return 0
	}
	return math.Sqrt(w.m2 / float64(w.n-1))
}

// MeanStd returns the mean and sample standard deviation of vals.
func MeanStd(vals []float64) (mean, std float64) {
	var w welford
	for _, v := range vals {
		w.add(v)
	}
	return w.mean, w.std()
}

// Correlation computes pairwise-complete Pearson correlations between the named
// columns. It returns nil when fewer than two columns are given.
func Correlation(ds *Dataset, names []string) *CorrMatrix {
	if len(names) < 2 {
		return nil
	}
	cols := make([]*Column, 0, len(names))
	kept := make([]string, 0, len(names))
	for _, n := range names {
		if c, ok := ds.Column(n); ok {
			cols = append(cols, c)
			kept = append(kept, n)
		}
	}
	if len(cols) < 2 {
		return nil
	}
	k := len(cols)
	mat := make([][]float64, k)
	for i := range mat {
		mat[i] = make([]float64, k)
		mat[i][i] = 1
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			var xs, ys []float64
			for r := 0; r < ds.NumRows(); r++ {
				x, okx := cols[i].Float(r)
				y, oky := cols[j].Float(r)
				if okx && oky {
					xs = append(xs, x)
					ys = append(ys, y)
				}
			}
			v := Pearson(xs, ys)
			mat[i][j], mat[j][i] = v, v
		}
	}
	return &CorrMatrix{Columns: kept, Values: mat}
}

// Pearson returns the correlation coefficient of paired samples, or 0 when it
// is undefined.
func Pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0
	}
	var sx, sy, sxx, syy, sxy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxx += xs[i] * xs[i]
		syy += ys[i] * ys[i]
		sxy += xs[i] * ys[i]
	}
	fn := float64(n)
	num := fn*sxy - sx*sy
	den := math.Sqrt((fn*sxx - sx*sx) * (fn*syy - sy*sy))
	if den == 0 || math.IsNaN(den) {
		return 0
	}
	r := num / den
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// Quantile interpolates the q-th quantile of sorted values.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// IsIDName reports whether a column name looks like an identifier.
func IsIDName(name string) bool {
	return strings.Contains(strings.ToLower(name), "id")
}
