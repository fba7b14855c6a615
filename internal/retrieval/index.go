// Package retrieval maps question vocabulary onto column names.
package retrieval

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

// minWordRunes is the shortest column word that gets indexed.
const minWordRunes = 3

// ColumnIndex maps single words and ordered word pairs of column names to the
// columns that contain them. It is built per dataset and never mutated.
type ColumnIndex struct {
	columns []string
	entries map[string][]string
	words   map[string][]string // column -> indexed single words
	bigrams map[string][]string // column -> indexed bigrams
}

// BuildColumnIndex indexes every word longer than two runes and every ordered
// pair of such words, lower-cased with '_' and '-' read as spaces.
func BuildColumnIndex(columns []string) *ColumnIndex {
	idx := &ColumnIndex{
		columns: append([]string(nil), columns...),
		entries: map[string][]string{},
		words:   map[string][]string{},
		bigrams: map[string][]string{},
	}
	for _, col := range columns {
		var kept []string
		for _, w := range utils.ColumnWords(col) {
			if len([]rune(w)) >= minWordRunes {
				kept = append(kept, w)
			}
		}
		for _, w := range kept {
			idx.add(w, col)
			idx.words[col] = appendUnique(idx.words[col], w)
		}
		for i := 0; i < len(kept); i++ {
			for j := i + 1; j < len(kept); j++ {
				bg := kept[i] + " " + kept[j]
				idx.add(bg, col)
				idx.bigrams[col] = appendUnique(idx.bigrams[col], bg)
			}
		}
	}
	return idx
}

func (idx *ColumnIndex) add(key, col string) {
	idx.entries[key] = appendUnique(idx.entries[key], col)
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

// Columns returns the indexed column names in dataset order.
func (idx *ColumnIndex) Columns() []string { return append([]string(nil), idx.columns...) }

// Lookup returns the columns containing token, in dataset order.
func (idx *ColumnIndex) Lookup(token string) []string {
	return append([]string(nil), idx.entries[strings.ToLower(token)]...)
}

// Keys returns every indexed token, sorted.
func (idx *ColumnIndex) Keys() []string {
	keys := make([]string, 0, len(idx.entries))
	for k := range idx.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Words returns the indexed single words of column.
func (idx *ColumnIndex) Words(column string) []string {
	return append([]string(nil), idx.words[column]...)
}

// Bigrams returns the indexed word pairs of column.
func (idx *ColumnIndex) Bigrams(column string) []string {
	return append([]string(nil), idx.bigrams[column]...)
}

// Mentioned returns the columns with at least one index key present in the
// normalized question, in dataset order.
func (idx *ColumnIndex) Mentioned(question string) []string {
	q := utils.NormalizeQuestion(question)
	var out []string
	for _, col := range idx.columns {
		for _, w := range idx.words[col] {
			if utils.ContainsTerm(q, w) {
				out = append(out, col)
				break
			}
		}
	}
	return out
}

// Suggest returns up to three column names that fuzzily match name, best
// first. It backs "did you mean" hints for user-supplied columns.
func (idx *ColumnIndex) Suggest(name string) []string {
	matches := fuzzy.Find(strings.ToLower(name), lowerAll(idx.columns))
	var out []string
	for _, m := range matches {
		out = append(out, idx.columns[m.Index])
		if len(out) == 3 {
			break
		}
	}
	return out
}

// Resolve finds the column called name, ignoring case.
func (idx *ColumnIndex) Resolve(name string) (string, bool) {
	for _, c := range idx.columns {
		if c == name {
			return c, true
		}
	}
	for _, c := range idx.columns {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
