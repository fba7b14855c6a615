package server

import "github.com/KaramelBytes/dataloom-cli/internal/analysis"

type topValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type columnView struct {
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Storage   string     `json:"storage"`
	Unit      string     `json:"unit,omitempty"`
	NonNull   int        `json:"non_null"`
	Nulls     int        `json:"nulls"`
	Unique    int        `json:"unique"`
	Samples   []string   `json:"samples,omitempty"`
	Mean      *float64   `json:"mean,omitempty"`
	Std       *float64   `json:"std,omitempty"`
	Min       *float64   `json:"min,omitempty"`
	Max       *float64   `json:"max,omitempty"`
	TopValues []topValue `json:"top_values,omitempty"`
}

type correlationView struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

type profileView struct {
	Name         string           `json:"name"`
	Rows         int              `json:"rows"`
	Columns      []columnView     `json:"columns"`
	Correlations *correlationView `json:"correlations,omitempty"`
	Warnings     []string         `json:"warnings,omitempty"`
	Markdown     string           `json:"markdown"`
}

func newProfileView(s *analysis.Schema) profileView {
	v := profileView{Name: s.Name, Rows: s.Rows, Warnings: s.Warnings, Markdown: s.Markdown()}
	for _, c := range s.Columns {
		cv := columnView{
			Name:    c.Name,
			Type:    string(c.Type),
			Storage: c.Storage.String(),
			Unit:    c.Unit,
			NonNull: c.NonNull,
			Nulls:   c.Nulls,
			Unique:  c.Unique,
			Samples: c.Samples,
		}
		if c.IsNumeric() && c.Count > 0 {
			mean, std, lo, hi := c.Mean, c.Std, c.Min, c.Max
			cv.Mean, cv.Std, cv.Min, cv.Max = &mean, &std, &lo, &hi
		}
		for _, tv := range c.TopValues {
			cv.TopValues = append(cv.TopValues, topValue{Value: tv.Value, Count: tv.Count})
		}
		v.Columns = append(v.Columns, cv)
	}
	if s.Corr != nil {
		v.Correlations = &correlationView{Columns: s.Corr.Columns, Values: s.Corr.Values}
	}
	return v
}
