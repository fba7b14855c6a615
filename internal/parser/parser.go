package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
)

// Loader turns a tabular file into a dataset.
type Loader interface {
	CanLoad(filename string) bool
	Load(r io.Reader, filename string, opt analysis.Options) (*analysis.Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates a file format has no registered loader.
var ErrUnsupported = errors.New("unsupported dataset format")

// LoadBytes selects a loader based on filename and parses data into a dataset.
func LoadBytes(data []byte, filename string, opt analysis.Options) (*analysis.Dataset, error) {
	for _, l := range registry {
		if l.CanLoad(filename) {
			ds, err := l.Load(bytes.NewReader(data), filepath.Base(filename), opt)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", filepath.Base(filename), err)
			}
			return ds, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(filename))
}

// LoadFile reads path from disk and parses it into a dataset.
func LoadFile(path string, opt analysis.Options) (*analysis.Dataset, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return LoadBytes(data, path, opt)
}

// Supported reports whether any registered loader accepts filename.
func Supported(filename string) bool {
	for _, l := range registry {
		if l.CanLoad(filename) {
			return true
		}
	}
	return false
}

func init() {
	Register(csvLoader{})
	Register(txtLoader{})
	Register(xlsxLoader{})
}
