package chart

import (
	"encoding/json"
	"fmt"
)

// RefKind tags the variant held by a ColumnRef.
type RefKind int

const (
	// RefColumn names a dataset column.
	RefColumn RefKind = iota
	// RefCount is the count-of-rows aggregate.
	RefCount
	// RefAllNumeric asks for every numeric column (heatmap).
	RefAllNumeric
	// RefInsufficientNumeric means a multi-variable chart lacks numeric columns.
	RefInsufficientNumeric
	// RefRecommendation means the user asked which chart to use.
	RefRecommendation
)

// legacy wire spellings of the sentinels
const (
	countName          = "Count"
	allNumericName     = "all_numeric"
	insufficientName   = "insufficient_numeric"
	recommendationName = "recommendation_request"
)

// ColumnRef is either a concrete column or one of the sentinels.
type ColumnRef struct {
	kind RefKind
	name string
}

// Column refers to a named dataset column.
func Column(name string) ColumnRef { return ColumnRef{kind: RefColumn, name: name} }

var (
	Count                 = ColumnRef{kind: RefCount}
	AllNumeric            = ColumnRef{kind: RefAllNumeric}
	InsufficientNumeric   = ColumnRef{kind: RefInsufficientNumeric}
	RecommendationRequest = ColumnRef{kind: RefRecommendation}
)

func (r ColumnRef) Kind() RefKind { return r.kind }

// Name returns the column name, or "" for sentinels.
func (r ColumnRef) Name() string {
	if r.kind != RefColumn {
		return ""
	}
	return r.name
}

// IsColumn reports whether r names a concrete column.
func (r ColumnRef) IsColumn() bool { return r.kind == RefColumn && r.name != "" }

// String returns the wire spelling of r.
func (r ColumnRef) String() string {
	switch r.kind {
	case RefCount:
		return countName
	case RefAllNumeric:
		return allNumericName
	case RefInsufficientNumeric:
		return insufficientName
	case RefRecommendation:
		return recommendationName
	default:
		return r.name
	}
}

// ParseRef converts a wire string into a ColumnRef. Sentinel spellings win
// over column names.
func ParseRef(s string) ColumnRef {
	switch s {
	case countName:
		return Count
	case allNumericName:
		return AllNumeric
	case insufficientName:
		return InsufficientNumeric
	case recommendationName:
		return RecommendationRequest
	}
	return Column(s)
}

func (r ColumnRef) MarshalJSON() ([]byte, error) { return json.Marshal(r.String()) }

func (r *ColumnRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*r = ParseRef(s)
	return nil
}

// Mapping is the resolved x/y assignment for a chart.
type Mapping struct {
	X ColumnRef `json:"x"`
	Y ColumnRef `json:"y"`
}

func (m Mapping) String() string { return fmt.Sprintf("x=%s y=%s", m.X, m.Y) }

// Sentinel returns the sentinel both axes share, if any.
func (m Mapping) Sentinel() (RefKind, bool) {
	switch m.X.kind {
	case RefAllNumeric, RefInsufficientNumeric, RefRecommendation:
		return m.X.kind, true
	}
	return RefColumn, false
}
