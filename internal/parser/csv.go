package parser

import (
	"io"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvLoader) Load(r io.Reader, filename string, opt analysis.Options) (*analysis.Dataset, error) {
	return analysis.ReadCSV(r, filename, opt)
}
