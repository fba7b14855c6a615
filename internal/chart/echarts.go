package chart

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteHTML renders figures as a standalone echarts page. Kinds without a
// native echarts series fall back to the closest drawable family.
func WriteHTML(w io.Writer, cfg Config, figs ...Figure) error {
	if len(figs) == 0 {
		return fmt.Errorf("no figures to render")
	}
	page := components.NewPage()
	page.PageTitle = figs[0].Title
	for _, f := range figs {
		page.AddCharts(echartsFor(f, cfg))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func globalOpts(f Figure, cfg Config) []charts.GlobalOpts {
	width, height := cfg.Width, cfg.Height
	if width == "" {
		width = "900px"
	}
	if height == "" {
		height = "500px"
	}
	subtitle := strings.Join(f.Annotations, "; ")
	if f.IsError() && len(f.Series) > 0 && len(f.Series[0].Text) > 0 {
		subtitle = f.Series[0].Text[0]
	}
	if f.LocationMode != "" {
		subtitle = strings.TrimPrefix(subtitle+"; locations: "+f.LocationMode, "; ")
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: width, Height: height}),
		charts.WithTitleOpts(opts.Title{Title: f.Title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(f.Series) > 1)}),
	}
}

// echartsFor maps a figure onto an echarts chart by family.
func echartsFor(f Figure, cfg Config) components.Charter {
	if f.IsError() {
		return barChart(f, cfg)
	}
	switch f.Kind.Family() {
	case FamilyLine:
		return lineChart(f, cfg)
	case FamilyPie, FamilyTree, FamilySunburst:
		return pieChart(f, cfg)
	case FamilyFunnel:
		return funnelChart(f, cfg)
	case FamilyScatter:
		return scatterChart(f, cfg)
	case FamilyBoxplot:
		return boxChart(f, cfg)
	case FamilyHeatmap:
		return heatmapChart(f, cfg)
	case FamilySankey:
		return sankeyChart(f, cfg)
	case FamilyRadar:
		return radarChart(f, cfg)
	case FamilyParallel:
		return parallelChart(f, cfg)
	case FamilyKline:
		return klineChart(f, cfg)
	case FamilyGeo:
		if f.Kind == ScatterGeo {
			return scatterChart(f, cfg)
		}
	}
	return barChart(f, cfg)
}

// axisLabels returns the first series' labels, or its x positions formatted.
func axisLabels(f Figure) []string {
	if len(f.Series) == 0 {
		return nil
	}
	s := f.Series[0]
	if len(s.Labels) > 0 {
		return s.Labels
	}
	return formatAll(s.X)
}

func barChart(f Figure, cfg Config) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOpts(f, cfg)...)
	bar.SetXAxis(axisLabels(f))
	for _, s := range f.Series {
		if len(s.Labels) == 0 && f.Kind != Distplot {
			continue
		}
		if s.Style == StyleLines {
			continue
		}
		data := make([]opts.BarData, len(s.Y))
		for i, v := range s.Y {
			data[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(s.Name, data)
	}
	return bar
}

func lineChart(f Figure, cfg Config) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOpts(f, cfg)...)
	line.SetXAxis(axisLabels(f))
	for _, s := range f.Series {
		data := make([]opts.LineData, len(s.Y))
		for i, v := range s.Y {
			data[i] = opts.LineData{Value: v}
		}
		var so []charts.SeriesOpts
		if s.Style == StyleArea {
			so = append(so, charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.3}))
		}
		line.AddSeries(s.Name, data, so...)
	}
	return line
}

func pieChart(f Figure, cfg Config) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(globalOpts(f, cfg)...)
	for _, s := range f.Series {
		data := make([]opts.PieData, len(s.Labels))
		for i, l := range s.Labels {
			data[i] = opts.PieData{Name: l, Value: s.Y[i]}
		}
		pie.AddSeries(s.Name, data)
	}
	return pie
}

func funnelChart(f Figure, cfg Config) *charts.Funnel {
	fn := charts.NewFunnel()
	fn.SetGlobalOptions(globalOpts(f, cfg)...)
	for _, s := range f.Series {
		data := make([]opts.FunnelData, len(s.Labels))
		for i, l := range s.Labels {
			data[i] = opts.FunnelData{Name: l, Value: s.Y[i]}
		}
		fn.AddSeries(s.Name, data)
	}
	return fn
}

func scatterChart(f Figure, cfg Config) *charts.Scatter {
	sc := charts.NewScatter()
	gopts := globalOpts(f, cfg)
	categorical := len(f.Series) > 0 && len(f.Series[0].Labels) > 0
	if !categorical {
		gopts = append(gopts, charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: f.XLabel}))
	}
	gopts = append(gopts, charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: f.YLabel}))
	sc.SetGlobalOptions(gopts...)
	if categorical {
		sc.SetXAxis(f.Series[0].Labels)
	}
	for _, s := range f.Series {
		data := make([]opts.ScatterData, len(s.Y))
		for i, v := range s.Y {
			if categorical || i >= len(s.X) {
				data[i] = opts.ScatterData{Value: v}
				continue
			}
			data[i] = opts.ScatterData{Value: []interface{}{s.X[i], v}}
		}
		sc.AddSeries(s.Name, data)
	}
	return sc
}

func boxChart(f Figure, cfg Config) *charts.BoxPlot {
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(globalOpts(f, cfg)...)
	names := make([]string, 0, len(f.Series))
	data := make([]opts.BoxPlotData, 0, len(f.Series))
	for _, s := range f.Series {
		if s.Box == nil {
			continue
		}
		b := s.Box
		names = append(names, s.Name)
		data = append(data, opts.BoxPlotData{Value: []float64{b.Min, b.Q1, b.Median, b.Q3, b.Max}})
	}
	box.SetXAxis(names).AddSeries(f.YLabel, data)
	return box
}

func heatmapChart(f Figure, cfg Config) *charts.HeatMap {
	hm := charts.NewHeatMap()
	if f.Matrix == nil {
		hm.SetGlobalOptions(globalOpts(f, cfg)...)
		return hm
	}
	m := f.Matrix
	lo, hi := math.Inf(1), math.Inf(-1)
	var data []opts.HeatMapData
	for yi, row := range m.Values {
		for xi, v := range row {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
			data = append(data, opts.HeatMapData{Value: [3]interface{}{xi, yi, v}})
		}
	}
	if lo > hi {
		lo, hi = 0, 1
	}
	gopts := append(globalOpts(f, cfg),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: m.XLabels}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: m.YLabels}),
		charts.WithVisualMapOpts(opts.VisualMap{Calculable: opts.Bool(true), Min: float32(lo), Max: float32(hi)}),
	)
	hm.SetGlobalOptions(gopts...)
	hm.SetXAxis(m.XLabels).AddSeries(f.Title, data)
	return hm
}

func sankeyChart(f Figure, cfg Config) *charts.Sankey {
	sk := charts.NewSankey()
	sk.SetGlobalOptions(globalOpts(f, cfg)...)
	nodes := make([]opts.SankeyNode, len(f.Nodes))
	for i, n := range f.Nodes {
		nodes[i] = opts.SankeyNode{Name: n}
	}
	links := make([]opts.SankeyLink, len(f.Links))
	for i, l := range f.Links {
		links[i] = opts.SankeyLink{Source: l.Source, Target: l.Target, Value: float32(l.Value)}
	}
	sk.AddSeries(f.Title, nodes, links)
	return sk
}

func radarChart(f Figure, cfg Config) *charts.Radar {
	rd := charts.NewRadar()
	if len(f.Series) == 0 {
		rd.SetGlobalOptions(globalOpts(f, cfg)...)
		return rd
	}
	s := f.Series[0]
	top := 0.0
	for _, v := range s.Y {
		top = math.Max(top, v)
	}
	indicators := make([]*opts.Indicator, len(s.Labels))
	for i, l := range s.Labels {
		indicators[i] = &opts.Indicator{Name: l, Max: float32(top * 1.2)}
	}
	rd.SetGlobalOptions(append(globalOpts(f, cfg),
		charts.WithRadarComponentOpts(opts.RadarComponent{Indicator: indicators}))...)
	vals := make([]float32, len(s.Y))
	for i, v := range s.Y {
		vals[i] = float32(v)
	}
	rd.AddSeries(s.Name, []opts.RadarData{{Name: s.Name, Value: vals}})
	return rd
}

// parallelChart draws each row as a line across the dimensions.
func parallelChart(f Figure, cfg Config) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOpts(f, cfg)...)
	line.SetXAxis(f.Dimensions)
	for _, s := range f.Series {
		for i, row := range s.Rows {
			data := make([]opts.LineData, len(row))
			for j, v := range row {
				data[j] = opts.LineData{Value: v}
			}
			line.AddSeries(strconv.Itoa(i+1), data)
		}
	}
	return line
}

func klineChart(f Figure, cfg Config) *charts.Kline {
	kl := charts.NewKLine()
	kl.SetGlobalOptions(globalOpts(f, cfg)...)
	if len(f.Series) == 0 {
		return kl
	}
	bars := f.Series[0].OHLC
	labels := make([]string, len(bars))
	data := make([]opts.KlineData, len(bars))
	for i, b := range bars {
		labels[i] = b.Label
		data[i] = opts.KlineData{Value: [4]float64{b.Open, b.Close, b.Low, b.High}}
	}
	kl.SetXAxis(labels).AddSeries(f.Series[0].Name, data)
	return kl
}
