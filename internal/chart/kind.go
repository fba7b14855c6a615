package chart

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is a supported chart type. The set is closed; external names enter
// through ParseKind.
type Kind int

const (
	Bar Kind = iota
	Line
	Pie
	Scatter
	Histogram
	Box
	Violin
	Strip
	Area
	Heatmap
	DensityContour
	DensityHeatmap
	Funnel
	Waterfall
	Treemap
	Sunburst
	Sankey
	Radar
	ParallelCoordinates
	ParallelCategories
	Scatter3D
	Surface
	Candlestick
	OHLC
	Distplot
	ECDF
	Choropleth
	ScatterGeo
	numKinds
)

// Arity describes which columns a chart kind consumes.
type Arity int

const (
	// ArityX needs only an x column; y is counted or derived.
	ArityX Arity = iota + 1
	// ArityXY needs an x column and a y column.
	ArityXY
	// ArityMatrix reads every numeric column as a matrix.
	ArityMatrix
	// ArityDerived picks its own columns from the dataset.
	ArityDerived
)

// Family groups kinds by the echarts series type used to draw them.
type Family string

const (
	FamilyBar      Family = "bar"
	FamilyLine     Family = "line"
	FamilyPie      Family = "pie"
	FamilyScatter  Family = "scatter"
	FamilyBoxplot  Family = "boxplot"
	FamilyHeatmap  Family = "heatmap"
	FamilyFunnel   Family = "funnel"
	FamilyTree     Family = "treemap"
	FamilySunburst Family = "sunburst"
	FamilySankey   Family = "sankey"
	FamilyRadar    Family = "radar"
	FamilyParallel Family = "parallel"
	FamilyKline    Family = "kline"
	FamilyGeo      Family = "geo"
)

type kindInfo struct {
	name   string
	arity  Arity
	korean string
	family Family
}

var kinds = [numKinds]kindInfo{
	Bar:                 {"bar", ArityXY, "막대차트", FamilyBar},
	Line:                {"line", ArityXY, "선그래프", FamilyLine},
	Pie:                 {"pie", ArityX, "파이차트", FamilyPie},
	Scatter:             {"scatter", ArityXY, "산점도", FamilyScatter},
	Histogram:           {"histogram", ArityX, "히스토그램", FamilyBar},
	Box:                 {"box", ArityXY, "박스플롯", FamilyBoxplot},
	Violin:              {"violin", ArityXY, "바이올린 플롯", FamilyBoxplot},
	Strip:               {"strip", ArityXY, "스트립 플롯", FamilyScatter},
	Area:                {"area", ArityXY, "영역차트", FamilyLine},
	Heatmap:             {"heatmap", ArityMatrix, "히트맵", FamilyHeatmap},
	DensityContour:      {"density_contour", ArityXY, "밀도 등고선", FamilyHeatmap},
	DensityHeatmap:      {"density_heatmap", ArityXY, "밀도 히트맵", FamilyHeatmap},
	Funnel:              {"funnel", ArityXY, "깔때기 차트", FamilyFunnel},
	Waterfall:           {"waterfall", ArityXY, "폭포 차트", FamilyBar},
	Treemap:             {"treemap", ArityXY, "트리맵", FamilyTree},
	Sunburst:            {"sunburst", ArityXY, "선버스트", FamilySunburst},
	Sankey:              {"sankey", ArityXY, "생키 다이어그램", FamilySankey},
	Radar:               {"radar", ArityDerived, "레이더 차트", FamilyRadar},
	ParallelCoordinates: {"parallel_coordinates", ArityDerived, "평행좌표", FamilyParallel},
	ParallelCategories:  {"parallel_categories", ArityDerived, "평행 카테고리", FamilySankey},
	Scatter3D:           {"scatter_3d", ArityXY, "3D 산점도", FamilyScatter},
	Surface:             {"surface", ArityDerived, "3D 표면", FamilyHeatmap},
	Candlestick:         {"candlestick", ArityDerived, "캔들스틱", FamilyKline},
	OHLC:                {"ohlc", ArityDerived, "OHLC 차트", FamilyKline},
	Distplot:            {"distplot", ArityX, "분포 플롯", FamilyBar},
	ECDF:                {"ecdf", ArityX, "누적분포", FamilyLine},
	Choropleth:          {"choropleth", ArityXY, "지도 차트", FamilyGeo},
	ScatterGeo:          {"scattergeo", ArityXY, "지리 산점도", FamilyGeo},
}

// aliases are alternate external spellings.
var aliases = map[string]Kind{
	"map":        Choropleth,
	"boxplot":    Box,
	"scatter3d":  Scatter3D,
	"3d_scatter": Scatter3D,
	"dendogram":  Treemap,
	"dendrogram": Treemap,
	"donut":      Pie,
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

func (k Kind) valid() bool { return k >= 0 && k < numKinds }

// String returns the external name of k.
func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kinds[k].name
}

// Arity returns the column arity of k.
func (k Kind) Arity() Arity {
	if !k.valid() {
		return ArityXY
	}
	return kinds[k].arity
}

// RequiresY reports whether k needs a y column.
func (k Kind) RequiresY() bool { return k.Arity() == ArityXY }

// Family returns the drawing family of k.
func (k Kind) Family() Family {
	if !k.valid() {
		return FamilyBar
	}
	return kinds[k].family
}

// KoreanName is the display name used in user-facing suggestions.
func (k Kind) KoreanName() string {
	if !k.valid() {
		return k.String()
	}
	return kinds[k].korean
}

// LookupKind resolves an external name without fallback.
func LookupKind(name string) (Kind, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "_")
	n = strings.ReplaceAll(n, " ", "_")
	for i, info := range kinds {
		if info.name == n {
			return Kind(i), true
		}
	}
	if k, ok := aliases[n]; ok {
		return k, true
	}
	return Bar, false
}

// ParseKind converts an external chart-type name into a Kind. Unrecognized
// names become Bar; the second result reports whether that fallback applied.
func ParseKind(name string) (kind Kind, fellBack bool) {
	k, ok := LookupKind(name)
	return k, !ok
}

// MarshalJSON encodes k by name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind name, falling back to Bar.
func (k *Kind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*k, _ = ParseKind(s)
	return nil
}
