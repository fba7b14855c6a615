package analysis

import (
	"bytes"
	"encoding/base64"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var csvRows = []string{
	"Group;Concentration (g/L);Temp (°F);Score;LocaleNumber;Category;Note",
	"A;0,5;70;10,0;1.000,0;alpha;first",
	"A;0,6;71;11,0;1.100,0;alpha;second",
	"A;0,55;69;9,5;0.900,0;beta;third",
	"B;0,7;75;10,5;1.050,0;alpha;fourth",
	"B;0,65;74;9,8;0.980,0;beta;fifth",
	"B;0,68;73;10,2;1.020,0;alpha;sixth",
	"A;0,52;68;8,8;0.880,0;gamma;seventh",
	"B;0,75;76;9,7;0.970,0;beta;eighth",
	"A;3,0;95;50,0;5.000,0;alpha;ninth",
	"B;0,66;72;10,1;1.010,0;gamma;tenth",
}

var scoreVals = []float64{10, 11, 9.5, 10.5, 9.8, 10.2, 8.8, 9.7, 50, 10.1}

const xlsxFixtureBase64 = `
UEsDBBQAAAAIAMEwN1vYAxPv/wAAALYCAAATABwAW0NvbnRlbnRfVHlwZXNdLnhtbFVUCQADyjjSaMo40mh1eAsAAQQAAAAABAAAAAC1ks1OwzAQhO95CsvX
Kt60B4RQkh74OQKH8gDG3iRW/CfbLeHtcVIEEqIIpHJaWTOz32jlejsZTQ4YonK2oWtWUYJWOKls39Cn3V15SbdtUe9ePUaSvTY2dEjJXwFEMaDhkTmPNiud
C4an/Aw9eC5G3iNsquoChLMJbSrTvIO2BSH1DXZ8rxO5nbJyRAfUkZLro3fGNZR7r5XgKetwsPILqHyHsJxcPHFQPq6ygcIpyCyeZnxGH/JFgpJIHnlI99xk
I0waXlwYn50b2c97vunquk4JlE7sTY6w6ANyGQfEZDRbJjNc2dWvKiz+CMtYn7nLx/6/V9n8d5Ualm/YFm9QSwMECgAAAAAAxDA3WwAAAAAAAAAAAAAAAAMA
HAB4bC9VVAkAA9A40mjyONJodXgLAAEEAAAAAAQAAAAAUEsDBBQAAAAIAMQwN1tM2kS6xQAAAEkBAAAPABwAeGwvd29ya2Jvb2sueG1sVVQJAAPQONJo0DjS
aHV4CwABBAAAAAAEAAAAAI1Qu27DMAzc/RUC90aOhyIwZGcJAnhvP0CxaVuIRRqk+vj8qjEMZOjQ7Y7k3ZF05++4mE8UDUwNHA8lGKSeh0BTA+9v15cTnNvC
fbHcb8x3k8dJG5hTWmtrtZ8xej3wipQ7I0v0KVOZrK6CftAZMcXFVmX5aqMPBJtDLf/x4HEMPV64/4hIaTMRXHzKy+ocVoW2MMY9QvQX7sSQj9hANxELgnnU
uiHfB0bqkIF0wxHsH5KLT/5JUD0Jqk3g7J7n7P6WtvgBUEsDBAoAAAAAANIwN1sAAAAAAAAAAAAAAAAOABwAeGwvd29ya3NoZWV0cy9VVAkAA+s40mjyONJo
dXgLAAEEAAAAAAQAAAAAUEsDBBQAAAAIANIwN1u3fFZsqwIAAIASAAAYABwAeGwvd29ya3NoZWV0cy9zaGVldDIueG1sVVQJAAPrONJo6zjSaHV4CwABBAAA
AAAEAAAAAJ3YT26bQBiH4X1OgVilkguD/wEVJkoMzibKJukBJngMqGYGDeMkvVXP0JN1nEhVQ/r7QCxx/BDsV9/gIbl6bY7Os9BdreTGDTzmOkIWal/LcuN+
f9x9jdyr9CJ5UfpHVwlhHPt+2W3cypj2m+93RSUa3nmqFdL+5aB0w4091KXftVrw/Rtqjv6csbXf8Fq66YXjJG8vZ9zw85E91urF0fb/u+/H9pXifHwduI7Z
uLU81lI8GO2mSd2liUlvtTq1iW/SxD+/4Bcf3Q1yWyULIY3mxn5e57L0777gs2zRWR5F0zqXv3/tCJwh/FAoLbDLkbtTBT+K+1PzJDTmO/jJuRGl0j8xvUX0
Xpn/XHDi22gf8837+ebgjNdEOmTYbEWkQipkRCKEAjYjWA6Zxxgpd0jyY1txogxyh1p3ZlSaRT/NYkIaZNhsTaRBKgyINAgFAZkGMi8YSIPkUBrkOlEouR/V
Ztlvs5zQBhk7NtTcILaOiTgIxdSI5vAKvXigDZJPwlBpEDNVrceVWfXLrMApb4gyyLBZSIRBKiS+4gyhgFw8c8g8tqLLIDk0Ncgd1EmbalSbdb/NekIbZOyK
Rk0NYuGSiINQPIuINvAKvTii2yA5MDWIHerDyDJhv0w4oQwytgzxdW0RCxdEGYTs2MyJNJB5bE6nQXJobJDr6teRbaJ+m2jCvQYZu8oQ39cWMSpohlBETg28
Qi8amBokS940VBrkOvFsNxzj4sT9OPGEwUHG3m6oJQ2xkPhplyEUU7e2HF6hF4d0HCQHljTERF1WI9ME7NPWlE2YHIgW1OfeQhZTvwagom/qOXaDGxxIh1Y2
CGU9dnqCz08P0I6Wmh+I7J2H2uZAFxJrYgaVvfcQ+6McO4/R29cdpENLHIRmYIVL/H+e9yT+34dJ6cUfUEsDBBQAAAAIAMcwN1sqMey0swAAAPgAAAAYABwA
eGwvd29ya3NoZWV0cy9zaGVldDEueG1sVVQJAAPWONJo1jjSaHV4CwABBAAAAAAEAAAAAE2P3WrDMAxG7/MURverkl6MUhyXwegLrHsA46iNqf+QxbLHr5OO
0cvzSfoO0qffGNQPcfU5jTDselCUXJ58uo3wfTm/HeBkOr1kvteZSFTbT3WEWaQcEaubKdq6y4VSm1wzRysN+Ya1MNlpO4oB933/jtH6BKZTSm/xpxW7UmPO
i+Lmhye3xK38MYCSEXwKPtGXMBjtq9FiSrCO5hwmYo1iNK4xur82bHWbBl88Gv+fMN0DUEsDBAoAAAAAAMYwN1sAAAAAAAAAAAAAAAAJABwAeGwvX3JlbHMv
VVQJAAPTONJo8jjSaHV4CwABBAAAAAAEAAAAAFBLAwQUAAAACADGMDdbCmPblLYAAACtAQAAGgAcAHhsL19yZWxzL3dvcmtib29rLnhtbC5yZWxzVVQJAAPT
ONJo0zjSaHV4CwABBAAAAAAEAAAAAL2QSwrCMBBA9z1FmL2dtgsRadqNCN1KPUBIpx/aJiGJv9sbBMWCgitXw/zePCYvr/PEzmTdoBWHNE6AkZK6GVTH4Vjv
Vxsoiyg/0CR8GHH9YBwLO8px6L03W0Qne5qFi7UhFTqttrPwIbUdGiFH0RFmSbJG+86AImJsgWVVw8FWTQqsvhn6Ba/bdpC00/I0k/IfruBF29H1RD5Ahe3I
c3iVHD5CGgcq4Fef7M8+2dMnx8XXi+gOUEsDBAoAAAAAAMMwN1sAAAAAAAAAAAAAAAAGABwAX3JlbHMvVVQJAAPNONJo8jjSaHV4CwABBAAAAAAEAAAAAFBL
AwQUAAAACADDMDdbDxvLDKoAAAAcAQAACwAcAF9yZWxzLy5yZWxzVVQJAAPNONJozTjSaHV4CwABBAAAAAAEAAAAAI3PsQ6CMBAG4J2naG6XgoMxxsJiTFgN
PkAtRyHQXtNWxbe3oxgHx8v9913+Y72YmT3Qh5GsgDIvgKFV1I1WC7i2580e6io7XnCWMUXCMLrA0o0NAoYY3YHzoAY0MuTk0KZNT97ImEavuZNqkhr5tih2
3H8aUGWMrVjWdAJ805XA2pfDf3jq+1HhidTdoI0/vnwlkiy9xihgmfmT/HQjmvKEAk8d+apklb0BUEsBAh4DFAAAAAgAwTA3W9gDE+//AAAAtgIAABMAGAAA
AAAAAQAAAKSBAAAAAFtDb250ZW50X1R5cGVzXS54bWxVVAUAA8o40mh1eAsAAQQAAAAABAAAAABQSwECHgMKAAAAAADEMDdbAAAAAAAAAAAAAAAAAwAYAAAA
AAAAABAA7UFMAQAAeGwvVVQFAAPQONJodXgLAAEEAAAAAAQAAAAAUEsBAh4DFAAAAAgAxDA3W0zaRLrFAAAASQEAAA8AGAAAAAAAAQAAAKSBiQEAAHhsL3dv
cmtib29rLnhtbFVUBQAD0DjSaHV4CwABBAAAAAAEAAAAAFBLAQIeAwoAAAAAANIwN1sAAAAAAAAAAAAAAAAOABgAAAAAAAAAEADtQZcCAAB4bC93b3Jrc2hl
ZXRzL1VUBQAD6zjSaHV4CwABBAAAAAAEAAAAAFBLAQIeAxQAAAAIANIwN1u3fFZsqwIAAIASAAAYABgAAAAAAAEAAACkgd8CAAB4bC93b3Jrc2hlZXRzL3No
ZWV0Mi54bWxVVAUAA+s40mh1eAsAAQQAAAAABAAAAABQSwECHgMUAAAACADHMDdbKjHstLMAAAD4AAAAGAAYAAAAAAABAAAApIHcBQAAeGwvd29ya3NoZWV0
cy9zaGVldDEueG1sVVQFAAPWONJodXgLAAEEAAAAAAQAAAAAUEsBAh4DCgAAAAAAxjA3WwAAAAAAAAAAAAAAAAkAGAAAAAAAAAAQAO1B4QYAAHhsL19yZWxz
L1VUBQAD0zjSaHV4CwABBAAAAAAEAAAAAFBLAQIeAxQAAAAIAMYwN1sKY9uUtgAAAK0BAAAaABgAAAAAAAEAAACkgSQHAAB4bC9fcmVscy93b3JrYm9vay54
bWwucmVsc1VUBQAD0zjSaHV4CwABBAAAAAAEAAAAAFBLAQIeAwoAAAAAAMMwN1sAAAAAAAAAAAAAAAAGABgAAAAAAAAAEADtQS4IAABfcmVscy9VVAUAA804
0mh1eAsAAQQAAAAABAAAAABQSwECHgMUAAAACADDMDdbDxvLDKoAAAAcAQAACwAYAAAAAAABAAAApIFuCAAAX3JlbHMvLnJlbHNVVAUAA8040mh1eAsAAQQA
AAAABAAAAABQSwUGAAAAAAoACgBTAwAAXQkAAAAA
`

func loadCSVFixture(t *testing.T, opt Options) *Dataset {
	t.Helper()
	ds, err := ReadCSV(strings.NewReader(strings.Join(csvRows, "\n")), "analysis_dataset.csv", opt)
	require.NoError(t, err)
	return ds
}

func TestReadCSVInfersStorage(t *testing.T) {
	ds := loadCSVFixture(t, DefaultOptions())

	require.Equal(t, 10, ds.NumRows())
	require.Equal(t, []string{"Group", "Concentration (g/L)", "Temp (°F)", "Score", "LocaleNumber", "Category", "Note"}, ds.Names())

	want := map[string]Storage{
		"Group":               StorageString,
		"Concentration (g/L)": StorageFloat,
		"Temp (°F)":           StorageInt,
		"Score":               StorageFloat,
		"LocaleNumber":        StorageFloat,
		"Category":            StorageString,
		"Note":                StorageString,
	}
	for name, st := range want {
		c, ok := ds.Column(name)
		require.True(t, ok, name)
		assert.Equal(t, st, c.Storage(), name)
	}

	conc, _ := ds.Column("Concentration (g/L)")
	assert.Equal(t, "g/L", conc.Unit())
	v, ok := conc.Float(8)
	require.True(t, ok)
	assert.InDelta(t, 3.0, v, 1e-9)

	loc, _ := ds.Column("LocaleNumber")
	v, _ = loc.Float(0)
	assert.InDelta(t, 1000.0, v, 1e-9)
}

func TestProfileTypesAndStats(t *testing.T) {
	s := Profile(loadCSVFixture(t, DefaultOptions()))

	types := map[string]SemanticType{}
	for _, c := range s.Columns {
		types[c.Name] = c.Type
	}
	assert.Equal(t, TypeCategorical, types["Group"])
	assert.Equal(t, TypeCategorical, types["Category"])
	assert.Equal(t, TypeUnknown, types["Note"], "all-distinct text must not be categorical")
	assert.Equal(t, TypeNumeric, types["Score"])
	assert.Equal(t, TypeNumeric, types["Temp (°F)"])

	score, ok := s.Lookup("Score")
	require.True(t, ok)
	mean, std := MeanStd(scoreVals)
	assert.Equal(t, 10, score.Count)
	assert.InDelta(t, mean, score.Mean, 1e-9)
	assert.InDelta(t, std, score.Std, 1e-9)
	assert.InDelta(t, 8.8, score.Min, 1e-9)
	assert.InDelta(t, 50.0, score.Max, 1e-9)

	group, _ := s.Lookup("Group")
	assert.Equal(t, 2, group.Unique)
	require.Len(t, group.TopValues, 2)
	assert.Equal(t, CategoryCount{Value: "A", Count: 5}, group.TopValues[0])

	assert.Len(t, group.Samples, 5)
	assert.Len(t, s.Samples, 5)
	assert.Equal(t, []string{"Concentration (g/L)", "Temp (°F)", "Score", "LocaleNumber"}, s.Numeric())
	assert.Equal(t, []string{"Group", "Category"}, s.Categorical())
}

func TestProfileCorrelations(t *testing.T) {
	s := Profile(loadCSVFixture(t, DefaultOptions()))
	require.NotNil(t, s.Corr)
	require.Equal(t, s.Numeric(), s.Corr.Columns)
	for i := range s.Corr.Columns {
		assert.InDelta(t, 1.0, s.Corr.Values[i][i], 1e-12)
		for j := range s.Corr.Columns {
			assert.InDelta(t, s.Corr.Values[i][j], s.Corr.Values[j][i], 1e-12)
		}
	}
	// the outlier row drives every numeric column, so score and concentration move together
	assert.Greater(t, s.Corr.Values[0][2], 0.9)
}

func TestProfileNullsAndDatetime(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ds := MustDataset("t",
		NewTimeColumn("When", []time.Time{day, day.AddDate(0, 0, 1), {}, day.AddDate(0, 0, 3)}),
		NewFloatColumn("Value", []float64{1, math.NaN(), 3, 4}),
		NewStringColumn("Kind", []string{"a", "a", "", "a"}),
	)
	s := Profile(ds)
	when, _ := s.Lookup("When")
	assert.Equal(t, TypeDatetime, when.Type)
	assert.Equal(t, 1, when.Nulls)

	val, _ := s.Lookup("Value")
	assert.Equal(t, 3, val.Count)
	assert.InDelta(t, 8.0/3.0, val.Mean, 1e-9)

	kind, _ := s.Lookup("Kind")
	assert.Equal(t, TypeCategorical, kind.Type)
	assert.Equal(t, 3, kind.NonNull)
	assert.Equal(t, []string{"When"}, s.Datetime())
}

func TestProfileEmptyNumericColumnHasZeroStats(t *testing.T) {
	ds := MustDataset("t", NewFloatColumn("x", []float64{math.NaN(), math.NaN()}))
	p, _ := Profile(ds).Lookup("x")
	assert.Equal(t, TypeNumeric, p.Type)
	assert.Zero(t, p.Count)
	assert.Zero(t, p.Min)
	assert.Zero(t, p.Max)
}

func TestNewDatasetRejectsDuplicates(t *testing.T) {
	_, err := NewDataset("t", NewStringColumn("a", []string{"x"}), NewStringColumn("a", []string{"y"}))
	require.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = NewDataset("t")
	require.ErrorIs(t, err, ErrEmptyDataset)

	_, err = ReadCSV(strings.NewReader(""), "empty.csv", DefaultOptions())
	require.ErrorIs(t, err, ErrEmptyDataset)
}

func TestFromRecordsNamesBlankHeadersAndCapsRows(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxRows = 2
	ds, err := FromRecords("t", []string{"a", " "}, [][]string{{"1", "x"}, {"2", "y"}, {"3", "z"}}, opt)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "column_2"}, ds.Names())
	assert.Equal(t, 2, ds.NumRows())
}

func TestMarkdownSections(t *testing.T) {
	md := Profile(loadCSVFixture(t, DefaultOptions())).Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: analysis_dataset.csv",
		"Rows: 10",
		"[SCHEMA]",
		"- Concentration (g/L) [g/L]: numeric",
		"- Group: categorical",
		"top A(5), B(5)",
		"[CORRELATIONS]",
		"[HEAD AND SAMPLE ROWS]",
	} {
		assert.Contains(t, md, want)
	}
}

func TestReadXLSXSheetSelection(t *testing.T) {
	raw := strings.ReplaceAll(strings.TrimSpace(xlsxFixtureBase64), "\n", "")
	data, err := base64.StdEncoding.DecodeString(raw)
	require.NoError(t, err)

	opt := DefaultOptions()
	opt.SheetName = "Data"
	byName, err := ReadXLSX(bytes.NewReader(data), "analysis_dataset.xlsx", opt)
	require.NoError(t, err)
	assert.Contains(t, byName.Names(), "Group")
	assert.Equal(t, 10, byName.NumRows())

	opt = DefaultOptions()
	opt.SheetIndex = 2
	byIndex, err := ReadXLSX(bytes.NewReader(data), "analysis_dataset.xlsx", opt)
	require.NoError(t, err)
	assert.Equal(t, byName.Names(), byIndex.Names())

	opt.SheetIndex = 9
	_, err = ReadXLSX(bytes.NewReader(data), "analysis_dataset.xlsx", opt)
	assert.Error(t, err)
}
