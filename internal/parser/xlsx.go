package parser

import (
	"io"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxLoader) Load(r io.Reader, filename string, opt analysis.Options) (*analysis.Dataset, error) {
	return analysis.ReadXLSX(r, filename, opt)
}
