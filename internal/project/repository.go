package project

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/parser"
)

type cached struct {
	ds      *analysis.Dataset
	modTime time.Time
}

// Repository serves registered datasets by id or name. Loaded datasets are
// cached until the underlying file changes.
type Repository struct {
	mu     sync.RWMutex
	ws     *Workspace
	opt    analysis.Options
	cache  map[string]cached
	logger *zap.Logger
}

// NewRepository returns a Repository over ws. opt controls how files are loaded.
func NewRepository(ws *Workspace, opt analysis.Options, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		ws:     ws,
		opt:    opt,
		cache:  make(map[string]cached),
		logger: logger.Named("repository"),
	}
}

// Get returns the dataset registered under fileID, which may be an id or a
// unique name.
func (r *Repository) Get(ctx context.Context, fileID string) (*analysis.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	entry, err := r.ws.Find(fileID)
	if err != nil {
		r.mu.RUnlock()
		return nil, err
	}
	c, hit := r.cache[entry.ID]
	r.mu.RUnlock()

	info, err := os.Stat(entry.Path)
	if err != nil {
		return nil, fmt.Errorf("stat dataset %s: %w", entry.Name, err)
	}
	if hit && c.modTime.Equal(info.ModTime()) {
		return c.ds, nil
	}

	opt := r.opt
	if entry.Sheet != "" || entry.SheetIndex > 0 {
		opt.SheetName, opt.SheetIndex = entry.Sheet, entry.SheetIndex
	}
	start := time.Now()
	ds, err := parser.LoadFile(entry.Path, opt)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", entry.Name, err)
	}
	r.logger.Debug("dataset loaded",
		zap.String("file_id", entry.ID),
		zap.String("name", entry.Name),
		zap.Int("rows", ds.NumRows()),
		zap.Int("columns", ds.NumCols()),
		zap.Duration("elapsed", time.Since(start)))

	r.mu.Lock()
	r.cache[entry.ID] = cached{ds: ds, modTime: info.ModTime()}
	r.mu.Unlock()
	return ds, nil
}

// Entry returns the registry entry for fileID.
func (r *Repository) Entry(fileID string) (*Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, err := r.ws.Find(fileID)
	if err != nil {
		return nil, err
	}
	cp := *d
	return &cp, nil
}

// List returns copies of the registered entries ordered by name.
func (r *Repository) List() []Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.ws.List()
	out := make([]Dataset, len(entries))
	for i, d := range entries {
		out[i] = *d
	}
	return out
}

// Reload replaces the workspace with ws and drops cached entries that are no
// longer registered.
func (r *Repository) Reload(ws *Workspace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ws = ws
	for id := range r.cache {
		if _, ok := ws.Datasets[id]; !ok {
			delete(r.cache, id)
		}
	}
}
