package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/parser"
)

func TestLoadFileCSV(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "hop_harvest.csv")
	content := "date,plot,alpha_acids,moisture\n" +
		"2024-08-10,A1,12.5%,74\n" +
		"2024-08-12,A1,11.8%,71\n" +
		"2024-08-15,B3,10.2%,68\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	ds, err := parser.LoadFile(p, analysis.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "hop_harvest.csv", ds.Name())
	assert.Equal(t, 3, ds.NumRows())

	schema := analysis.Profile(ds)
	assert.Equal(t, []string{"date"}, schema.Datetime())
	assert.Equal(t, []string{"alpha_acids", "moisture"}, schema.Numeric())
}

func TestLoadBytesTSVAndTXT(t *testing.T) {
	tsv := []byte("name\tvalue\na\t1\nb\t2\n")
	ds, err := parser.LoadBytes(tsv, "data.tsv", analysis.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "value"}, ds.Names())

	txt := []byte("name;value\na;1\nb;2\n")
	ds, err = parser.LoadBytes(txt, "export.txt", analysis.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "value"}, ds.Names())
}

func TestLoadUnsupported(t *testing.T) {
	_, err := parser.LoadBytes([]byte("x"), "notes.docx", analysis.DefaultOptions())
	require.ErrorIs(t, err, parser.ErrUnsupported)
	assert.False(t, parser.Supported("a.pdf"))
	assert.True(t, parser.Supported("A.XLSX"))
}

func TestLoadDuplicateHeaders(t *testing.T) {
	_, err := parser.LoadBytes([]byte("a,a\n1,2\n"), "dup.csv", analysis.DefaultOptions())
	require.ErrorIs(t, err, analysis.ErrDuplicateColumn)
}
