// Package project keeps the dataset registry of a DataLoom workspace: a
// directory holding workspace.json, which maps dataset ids to files on disk.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/parser"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

var (
	// ErrDatasetNotFound is returned when no registered dataset matches a reference.
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrAmbiguousName is returned when a name reference matches more than one dataset.
	ErrAmbiguousName = errors.New("dataset name is ambiguous")
	// ErrWorkspaceExists is returned by Init when the directory already holds a workspace.
	ErrWorkspaceExists = errors.New("workspace already exists")
)

// Dataset is a registered data file.
type Dataset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Description string    `json:"description,omitempty"`
	Sheet       string    `json:"sheet,omitempty"`
	SheetIndex  int       `json:"sheet_index,omitempty"`
	Rows        int       `json:"rows"`
	Columns     []string  `json:"columns"`
	AddedAt     time.Time `json:"added_at"`
}

// Workspace is a dataset registry persisted as workspace.json.
type Workspace struct {
	Name      string              `json:"name"`
	Datasets  map[string]*Dataset `json:"datasets"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`

	rootDir string
}

// NewWorkspace constructs an in-memory workspace. Call Save to persist.
func NewWorkspace(name, rootDir string) *Workspace {
	now := time.Now()
	return &Workspace{
		Name:      name,
		Datasets:  make(map[string]*Dataset),
		CreatedAt: now,
		UpdatedAt: now,
		rootDir:   rootDir,
	}
}

// Init creates and saves a new workspace in dir. It refuses to overwrite an
// existing workspace.json.
func Init(dir, name string) (*Workspace, error) {
	if _, err := os.Stat(filepath.Join(dir, utils.WorkspaceFile)); err == nil {
		return nil, fmt.Errorf("%w at %s", ErrWorkspaceExists, dir)
	}
	if name == "" {
		name = filepath.Base(filepath.Clean(dir))
	}
	w := NewWorkspace(name, dir)
	if err := w.Save(); err != nil {
		return nil, err
	}
	return w, nil
}

// Load reads workspace.json from dir.
func Load(dir string) (*Workspace, error) {
	path := filepath.Join(dir, utils.WorkspaceFile)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("workspace not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read workspace: %w", err)
	}
	var w Workspace
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("parse workspace: %w", err)
	}
	if w.Datasets == nil {
		w.Datasets = make(map[string]*Dataset)
	}
	w.rootDir = dir
	return &w, nil
}

// RootDir returns the workspace directory.
func (w *Workspace) RootDir() string { return w.rootDir }

// Save writes workspace.json atomically.
func (w *Workspace) Save() error {
	if w.rootDir == "" {
		return errors.New("workspace root directory not set")
	}
	if err := utils.EnsureDir(w.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	w.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(w)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(w.rootDir, utils.WorkspaceFile), data)
}

// AddDataset loads the file at path to validate it, then registers it under a
// fresh id. Names must be unique within a workspace.
func (w *Workspace) AddDataset(path, description string, opt analysis.Options) (*Dataset, error) {
	if !parser.Supported(path) {
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	name := filepath.Base(abs)
	for _, d := range w.Datasets {
		if strings.EqualFold(d.Name, name) {
			return nil, fmt.Errorf("dataset %q already registered as %s", name, d.ID)
		}
	}
	ds, err := parser.LoadFile(abs, opt)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	d := &Dataset{
		ID:          uuid.NewString(),
		Name:        name,
		Path:        abs,
		Description: strings.TrimSpace(description),
		Sheet:       opt.SheetName,
		SheetIndex:  opt.SheetIndex,
		Rows:        ds.NumRows(),
		Columns:     ds.Names(),
		AddedAt:     time.Now(),
	}
	if w.Datasets == nil {
		w.Datasets = make(map[string]*Dataset)
	}
	w.Datasets[d.ID] = d
	w.UpdatedAt = time.Now()
	return d, nil
}

// Remove unregisters the dataset matching ref. The file itself is untouched.
func (w *Workspace) Remove(ref string) (*Dataset, error) {
	d, err := w.Find(ref)
	if err != nil {
		return nil, err
	}
	delete(w.Datasets, d.ID)
	w.UpdatedAt = time.Now()
	return d, nil
}

// Find resolves ref as a dataset id, then as a case-insensitive name.
func (w *Workspace) Find(ref string) (*Dataset, error) {
	ref = strings.TrimSpace(ref)
	if d, ok := w.Datasets[ref]; ok {
		return d, nil
	}
	var match *Dataset
	for _, d := range w.Datasets {
		if !strings.EqualFold(d.Name, ref) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousName, ref)
		}
		match = d
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, ref)
	}
	return match, nil
}

// List returns the registered datasets ordered by name, then id.
func (w *Workspace) List() []*Dataset {
	out := make([]*Dataset, 0, len(w.Datasets))
	for _, d := range w.Datasets {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
