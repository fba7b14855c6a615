package analysis

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Options controls how raw tabular records are loaded and profiled.
type Options struct {
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// SampleRows determines how many example rows the profile keeps.
	SampleRows int
	// Delimiter for CSV. If 0, detected from the file name and header.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// SheetName or SheetIndex (1-based) select an XLSX worksheet.
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for dataset loading.
func DefaultOptions() Options {
	return Options{
		MaxRows:      100000,
		SampleRows:   5,
		Correlations: true,
	}
}

// FromRecords builds a dataset from a header row and string records,
// inferring a storage type per column. Blank headers are named column_<n>.
func FromRecords(name string, header []string, records [][]string, opt Options) (*Dataset, error) {
	if len(header) == 0 {
		return nil, ErrEmptyDataset
	}
	if opt.MaxRows > 0 && len(records) > opt.MaxRows {
		records = records[:opt.MaxRows]
	}
	cols := make([]*Column, len(header))
	for j, h := range header {
		colName := strings.TrimSpace(h)
		if colName == "" {
			colName = fmt.Sprintf("column_%d", j+1)
		}
		vals := make([]string, len(records))
		for i, rec := range records {
			if j < len(rec) {
				vals[i] = strings.TrimSpace(rec[j])
			}
		}
		cols[j] = inferColumn(colName, vals, opt)
	}
	return NewDataset(name, cols...)
}

// inferColumn picks the narrowest storage every non-empty value fits:
// int, float, bool, time, then string.
func inferColumn(name string, vals []string, opt Options) *Column {
	_, unit := splitUnits(name)
	nonEmpty := 0
	allInt, allNum, allBool, allTime := true, true, true, true
	for _, v := range vals {
		if isNullToken(v) {
			continue
		}
		nonEmpty++
		if allInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				allInt = false
			}
		}
		if allNum {
			if _, ok := parseNumeric(v, opt); !ok {
				allNum = false
			}
		}
		if allBool {
			if _, ok := parseBool(v); !ok {
				allBool = false
			}
		}
		if allTime {
			if _, ok := parseTimeMaybe(v); !ok {
				allTime = false
			}
		}
		if !allNum && !allBool && !allTime {
			break
		}
	}
	c := &Column{name: name, unit: unit, raw: make([]string, len(vals)), valid: make([]bool, len(vals))}
	switch {
	case nonEmpty == 0:
		c.storage = StorageString
	case allInt:
		c.storage = StorageInt
	case allNum:
		c.storage = StorageFloat
	case allBool:
		c.storage = StorageBool
	case allTime:
		c.storage = StorageTime
	default:
		c.storage = StorageString
	}
	if c.storage == StorageInt || c.storage == StorageFloat {
		c.nums = make([]float64, len(vals))
	}
	if c.storage == StorageTime {
		c.times = make([]time.Time, len(vals))
	}
	for i, v := range vals {
		if isNullToken(v) {
			continue
		}
		switch c.storage {
		case StorageInt, StorageFloat:
			f, _ := parseNumeric(v, opt)
			c.nums[i] = f
			c.raw[i] = v
		case StorageBool:
			b, _ := parseBool(v)
			c.raw[i] = strconv.FormatBool(b)
		case StorageTime:
			t, _ := parseTimeMaybe(v)
			c.times[i] = t
			c.raw[i] = v
		default:
			c.raw[i] = v
		}
		c.valid[i] = true
	}
	return c
}

func isNullToken(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "na", "n/a", "nan", "null", "none", "-":
		return true
	}
	return false
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y":
		return true, true
	case "false", "no", "n":
		return false, true
	}
	return false, false
}

var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"2006-01", "2006.01.02",
}

func parseTimeMaybe(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseNumeric coerces a cell to a float using the default locale detection.
func ParseNumeric(s string) (float64, bool) { return parseNumeric(s, DefaultOptions()) }

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimSuffix(raw, "%")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec, thou = ',', '.'
		case cpos >= 0 && dpos >= 0:
			dec, thou = '.', ','
		case cpos >= 0 && len(raw)-cpos-1 == 3:
			// 1,234 reads as a thousands group
			dec, thou = '.', ','
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., Weight (kg)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Mass [mg/L]
	{regexp.MustCompile(`^(.*?)[_\s-]+(kg|g|cm|mm|km|mg/L|°[CF]|%|ppm|usd|krw)$`), 2},
}

// splitUnits separates a trailing unit annotation from a header.
func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}
