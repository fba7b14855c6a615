package analysis

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrEmptyDataset is returned when a dataset has no columns.
	ErrEmptyDataset = errors.New("dataset has no columns")
	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// Storage is the runtime storage type of a column.
type Storage int

const (
	StorageString Storage = iota
	StorageInt
	StorageFloat
	StorageTime
	StorageBool
)

func (s Storage) String() string {
	switch s {
	case StorageInt:
		return "int"
	case StorageFloat:
		return "float"
	case StorageTime:
		return "time"
	case StorageBool:
		return "bool"
	default:
		return "string"
	}
}

// Column is a named, typed, read-only vector of values. Null cells are tracked
// per row; the typed slices hold zero values at null positions.
type Column struct {
	name    string
	unit    string
	storage Storage
	raw     []string
	nums    []float64
	times   []time.Time
	valid   []bool
}

// NewStringColumn builds a string column. Empty strings are null.
func NewStringColumn(name string, vals []string) *Column {
	c := &Column{name: name, storage: StorageString, raw: make([]string, len(vals)), valid: make([]bool, len(vals))}
	for i, v := range vals {
		v = strings.TrimSpace(v)
		c.raw[i] = v
		c.valid[i] = v != ""
	}
	return c
}

// NewFloatColumn builds a float column. NaN values are null.
func NewFloatColumn(name string, vals []float64) *Column {
	c := &Column{name: name, storage: StorageFloat, raw: make([]string, len(vals)), nums: make([]float64, len(vals)), valid: make([]bool, len(vals))}
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		c.nums[i] = v
		c.valid[i] = true
		c.raw[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return c
}

// NewIntColumn builds an integer column.
func NewIntColumn(name string, vals []int64) *Column {
	c := &Column{name: name, storage: StorageInt, raw: make([]string, len(vals)), nums: make([]float64, len(vals)), valid: make([]bool, len(vals))}
	for i, v := range vals {
		c.nums[i] = float64(v)
		c.valid[i] = true
		c.raw[i] = strconv.FormatInt(v, 10)
	}
	return c
}

// NewTimeColumn builds a datetime column. Zero times are null.
func NewTimeColumn(name string, vals []time.Time) *Column {
	c := &Column{name: name, storage: StorageTime, raw: make([]string, len(vals)), times: make([]time.Time, len(vals)), valid: make([]bool, len(vals))}
	for i, v := range vals {
		if v.IsZero() {
			continue
		}
		c.times[i] = v
		c.valid[i] = true
		c.raw[i] = v.Format(time.RFC3339)
	}
	return c
}

func (c *Column) Name() string { return c.name }
func (c *Column) Unit() string { return c.unit }
func (c *Column) Storage() Storage { return c.storage }
func (c *Column) Len() int { return len(c.valid) }

// IsNumeric reports whether the column stores integers or floats.
func (c *Column) IsNumeric() bool {
	return c.storage == StorageInt || c.storage == StorageFloat
}

// IsNull reports whether row i holds no value.
func (c *Column) IsNull(i int) bool { return i < 0 || i >= len(c.valid) || !c.valid[i] }

// String returns the textual value of row i, or "" when null.
func (c *Column) String(i int) string {
	if c.IsNull(i) {
		return ""
	}
	return c.raw[i]
}

// Float returns the numeric value of row i. String cells are coerced;
// values that do not parse report false.
func (c *Column) Float(i int) (float64, bool) {
	if c.IsNull(i) {
		return 0, false
	}
	switch c.storage {
	case StorageInt, StorageFloat:
		return c.nums[i], true
	case StorageBool:
		if c.raw[i] == "true" {
			return 1, true
		}
		return 0, true
	case StorageTime:
		return 0, false
	default:
		return parseNumeric(c.raw[i], DefaultOptions())
	}
}

// Time returns the time value of row i. String cells are parsed with the
// known layouts.
func (c *Column) Time(i int) (time.Time, bool) {
	if c.IsNull(i) {
		return time.Time{}, false
	}
	if c.storage == StorageTime {
		return c.times[i], true
	}
	if c.storage == StorageString {
		return parseTimeMaybe(c.raw[i])
	}
	return time.Time{}, false
}

// Floats returns the non-null numeric values of the column after coercion.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.valid))
	for i := range c.valid {
		if v, ok := c.Float(i); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Unique returns the number of distinct non-null values.
func (c *Column) Unique() int {
	seen := make(map[string]struct{}, len(c.valid))
	for i := range c.valid {
		if c.valid[i] {
			seen[c.raw[i]] = struct{}{}
		}
	}
	return len(seen)
}

// NonNull returns the number of non-null rows.
func (c *Column) NonNull() int {
	n := 0
	for _, v := range c.valid {
		if v {
			n++
		}
	}
	return n
}

// Dataset is an ordered set of equally long, uniquely named columns. It is
// never modified after construction.
type Dataset struct {
	name  string
	cols  []*Column
	index map[string]int
	rows  int
}

// NewDataset assembles columns into a dataset.
func NewDataset(name string, cols ...*Column) (*Dataset, error) {
	if len(cols) == 0 {
		return nil, ErrEmptyDataset
	}
	ds := &Dataset{name: name, cols: cols, index: make(map[string]int, len(cols)), rows: cols[0].Len()}
	for i, c := range cols {
		if _, dup := ds.index[c.name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.name)
		}
		if c.Len() != ds.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.name, c.Len(), ds.rows)
		}
		ds.index[c.name] = i
	}
	return ds, nil
}

// MustDataset is like NewDataset but panics on error. Intended for fixtures.
func MustDataset(name string, cols ...*Column) *Dataset {
	ds, err := NewDataset(name, cols...)
	if err != nil {
		panic(err)
	}
	return ds
}

func (d *Dataset) Name() string { return d.name }
func (d *Dataset) NumRows() int { return d.rows }
func (d *Dataset) NumCols() int { return len(d.cols) }

// ColumnAt returns the i-th column.
func (d *Dataset) ColumnAt(i int) *Column { return d.cols[i] }

// Column looks up a column by exact name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[i], true
}

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.name
	}
	return out
}

// Row returns the textual values of row i.
func (d *Dataset) Row(i int) []string {
	out := make([]string, len(d.cols))
	for j, c := range d.cols {
		out[j] = c.String(i)
	}
	return out
}
