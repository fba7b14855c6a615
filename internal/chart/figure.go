package chart

// Figure is a renderable chart description. It serializes to JSON and can be
// exported to HTML with WriteHTML.
type Figure struct {
	Kind   Kind   `json:"kind"`
	Title  string `json:"title"`
	XLabel string `json:"x_label,omitempty"`
	YLabel string `json:"y_label,omitempty"`

	// Categories names the ticks of a categorical x axis whose series carry
	// positions in X.
	Categories  []string `json:"categories,omitempty"`
	Series      []Series `json:"series,omitempty"`
	Matrix      *Matrix  `json:"matrix,omitempty"`
	Links       []Link   `json:"links,omitempty"`
	Nodes       []string `json:"nodes,omitempty"`
	Dimensions  []string `json:"dimensions,omitempty"`
	Annotations []string `json:"annotations,omitempty"`

	// LocationMode is set on choropleth figures: ISO-3, ISO-2, korea-regions
	// or country names.
	LocationMode string `json:"location_mode,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Series is one trace of a figure. Categorical traces use Labels with Y;
// numeric traces use X and Y (and Z for three dimensions).
type Series struct {
	Name   string      `json:"name"`
	Style  string      `json:"style,omitempty"`
	Labels []string    `json:"labels,omitempty"`
	X      []float64   `json:"x,omitempty"`
	Y      []float64   `json:"y,omitempty"`
	Z      []float64   `json:"z,omitempty"`
	Text   []string    `json:"text,omitempty"`
	Box    *BoxStats   `json:"box,omitempty"`
	Rows   [][]float64 `json:"rows,omitempty"`
	OHLC   []OHLCBar   `json:"ohlc,omitempty"`
}

// Series styles.
const (
	StyleBars    = "bars"
	StyleLines   = "lines"
	StyleMarkers = "markers"
	StyleArea    = "area"
)

// Matrix is a labeled grid of values, Values[row][col].
type Matrix struct {
	XLabels []string    `json:"x_labels"`
	YLabels []string    `json:"y_labels"`
	Values  [][]float64 `json:"values"`
}

// Link is a weighted flow between two nodes.
type Link struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
}

// BoxStats is a five-number summary.
type BoxStats struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// OHLCBar is one price bar.
type OHLCBar struct {
	Label string  `json:"label"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

const errorFigureTitle = "Chart Generation Error"

// ErrorFigure is the placeholder drawn when a chart cannot be produced.
func ErrorFigure(msg string) Figure {
	return Figure{
		Kind:  Bar,
		Title: errorFigureTitle,
		Series: []Series{{
			Name:   "Error",
			Style:  StyleBars,
			Labels: []string{"Error"},
			Y:      []float64{1},
			Text:   []string{"Chart generation failed: " + msg},
		}},
		Error: msg,
	}
}

// IsError reports whether f is an error placeholder.
func (f Figure) IsError() bool { return f.Error != "" }
