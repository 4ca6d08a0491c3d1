package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"nypd-dashboard/models"
	"nypd-dashboard/utils"
)

// Source makes the raw dataset available on local disk.
type Source interface {
	Ensure(ctx context.Context) (path string, downloaded bool, err error)
}

// Repository loads the complaint table once and hands the same snapshot to
// every caller for the rest of its lifetime.
type Repository struct {
	source  Source
	cleaner *Cleaner
	logger  *utils.Logger

	group singleflight.Group
	mu    sync.RWMutex
	table *models.Table
}

// NewRepository creates a Repository reading from source.
func NewRepository(source Source, logger *utils.Logger) *Repository {
	return &Repository{
		source:  source,
		cleaner: NewCleaner(logger),
		logger:  logger,
	}
}

// Load returns the cleaned table, fetching and parsing it on first use.
// Concurrent first calls share one load. A failed load is not cached, so the
// next call starts over; nothing retries on its own. The shared load is not
// cancelled when the caller that started it goes away.
func (r *Repository) Load(ctx context.Context) (*models.Table, error) {
	if t := r.cached(); t != nil {
		return t, nil
	}

	v, err, _ := r.group.Do("table", func() (any, error) {
		if t := r.cached(); t != nil {
			return t, nil
		}
		t, err := r.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.table = t
		r.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Table), nil
}

// Loaded reports whether the table is already in memory.
func (r *Repository) Loaded() bool {
	return r.cached() != nil
}

func (r *Repository) cached() *models.Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table
}

func (r *Repository) load(ctx context.Context) (*models.Table, error) {
	start := time.Now()

	path, _, err := r.source.Ensure(ctx)
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load data: open %q: %w", path, err)
	}
	defer f.Close()

	df, err := r.cleaner.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}

	t, err := r.cleaner.Clean(df)
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	t.Source = path

	r.logger.Info("[loader] Loaded %d complaints × %d columns from %s in %v",
		t.Rows(), t.Columns(), path, time.Since(start).Round(time.Millisecond))
	return t, nil
}
