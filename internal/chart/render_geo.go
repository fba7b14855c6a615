package chart

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
)

// Location modes for choropleth figures.
const (
	LocationISO3    = "ISO-3"
	LocationISO2    = "ISO-2"
	LocationKorea   = "korea-regions"
	LocationCountry = "country names"
)

var koreanRegions = []string{
	"서울", "부산", "대구", "인천", "광주", "대전", "울산", "세종",
	"경기", "강원", "충북", "충남", "충청", "전북", "전남", "전라", "경북", "경남", "경상", "제주",
}

// LocationMode guesses how location labels should be matched to a map.
func LocationMode(labels []string) string {
	if len(labels) == 0 {
		return LocationCountry
	}
	iso := func(n int) bool {
		for _, l := range labels {
			if len(l) != n || strings.ToUpper(l) != l {
				return false
			}
			for _, r := range l {
				if r < 'A' || r > 'Z' {
					return false
				}
			}
		}
		return true
	}
	switch {
	case iso(3):
		return LocationISO3
	case iso(2):
		return LocationISO2
	}
	for _, l := range labels {
		for _, region := range koreanRegions {
			if strings.Contains(l, region) {
				return LocationKorea
			}
		}
	}
	return LocationCountry
}

func renderChoropleth(rc *renderCtx) (Figure, error) {
	labels, values, yLabel, err := rc.categories(false)
	if err != nil {
		return Figure{}, err
	}
	x := rc.m.X.Name()
	return Figure{
		Title:        titleFor(yLabel, x),
		XLabel:       x,
		YLabel:       yLabel,
		LocationMode: LocationMode(labels),
		Series:       []Series{{Name: yLabel, Labels: labels, Y: values}},
	}, nil
}

var (
	latKeywords = []string{"lat", "latitude", "위도"}
	lonKeywords = []string{"lon", "lng", "long", "longitude", "경도"}
)

// renderScatterGeo plots latitude/longitude columns found by name, or the
// mapped x (longitude) and y (latitude) columns.
func renderScatterGeo(rc *renderCtx) (Figure, error) {
	lat := findByName(rc.ds, latKeywords)
	lon := findByName(rc.ds, lonKeywords)
	if lat == nil || lon == nil {
		x, err := rc.column(rc.m.X, "x")
		if err != nil {
			return Figure{}, err
		}
		y, err := rc.column(rc.m.Y, "y")
		if err != nil {
			return Figure{}, err
		}
		lon, lat = x, y
	}
	xs, ys := pairs(lon, lat)
	if len(xs) == 0 {
		return Figure{}, fmt.Errorf("no numeric coordinates in %q and %q", lon.Name(), lat.Name())
	}
	var text []string
	if rc.m.X.IsColumn() {
		if c, ok := rc.ds.Column(rc.m.X.Name()); ok && c != lon && c != lat {
			text = labelsFor(c, lon, lat)
		}
	}
	return Figure{
		Title:  "Locations",
		XLabel: lon.Name(),
		YLabel: lat.Name(),
		Series: []Series{{Name: "points", Style: StyleMarkers, X: xs, Y: ys, Text: text}},
	}, nil
}

// labelsFor returns c's text for the rows where both coordinates are numeric.
func labelsFor(c, lon, lat *analysis.Column) []string {
	var out []string
	for i := 0; i < c.Len(); i++ {
		_, ok1 := lon.Float(i)
		_, ok2 := lat.Float(i)
		if ok1 && ok2 {
			out = append(out, c.String(i))
		}
	}
	return out
}
