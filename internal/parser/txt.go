package parser

import (
	"io"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
)

// txtLoader treats .txt exports as delimited text with a sniffed separator.
type txtLoader struct{}

func (txtLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".txt")
}

func (txtLoader) Load(r io.Reader, filename string, opt analysis.Options) (*analysis.Dataset, error) {
	return analysis.ReadCSV(r, filename, opt)
}
