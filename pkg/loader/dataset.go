package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/oasftree/pkg/debug"
	"github.com/vanderheijden86/oasftree/pkg/metrics"
	"github.com/vanderheijden86/oasftree/pkg/model"
)

// SourceEmbedded is the LoadResult.Source of built-in forests.
const SourceEmbedded = "embedded"

// LoadResult describes how one taxonomy type was loaded.
type LoadResult struct {
	Type model.TaxonomyType
	// Source is the file path, or SourceEmbedded.
	Source string
	Forest model.Forest
	// Fallback is set when a data directory was given but the built-in
	// forest had to be used instead.
	Fallback bool
	// Error is the reason for a fallback caused by a broken file.
	Error error
}

// DatasetLoader loads the forests of every taxonomy type, one goroutine per type.
type DatasetLoader struct {
	dir    string
	types  []model.TaxonomyType
	logger *log.Logger
}

// NewDatasetLoader returns a loader reading from dir. An empty dir uses the
// embedded dataset.
func NewDatasetLoader(dir string) *DatasetLoader {
	return &DatasetLoader{
		dir:   dir,
		types: model.AllTypes,
		// Silent by default so robot output stays clean.
		logger: log.New(io.Discard, "", 0),
	}
}

// SetLogger sets a custom logger for warnings
func (l *DatasetLoader) SetLogger(logger *log.Logger) {
	l.logger = logger
}

// Dir returns the data directory, empty for the embedded dataset.
func (l *DatasetLoader) Dir() string { return l.dir }

// LoadAll loads every type. A missing or broken file for one type falls back
// to the embedded forest; the reason is logged and kept in the results.
// Only an unreadable data directory or a cancelled context is fatal.
func (l *DatasetLoader) LoadAll(ctx context.Context) (model.Dataset, []LoadResult, error) {
	defer metrics.TimerWithCallback(metrics.DatasetLoad, func(d time.Duration) {
		debug.LogTiming("dataset load", d)
	})()

	if l.dir != "" {
		info, err := os.Stat(l.dir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read data directory: %w", err)
		}
		if !info.IsDir() {
			return nil, nil, fmt.Errorf("data directory %s is not a directory", l.dir)
		}
	}

	results := make([]LoadResult, len(l.types))
	g, ctx := errgroup.WithContext(ctx)
	for i, typ := range l.types {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := l.loadType(typ)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, results, err
	}

	ds := make(model.Dataset, len(results))
	for _, res := range results {
		ds[res.Type] = res.Forest
		if res.Fallback {
			l.logFallback(res)
		}
	}
	l.logger.Printf("Finished loading %d taxonomy types", len(results))
	return ds, results, nil
}

// loadType returns an error only when the embedded forest itself is unusable.
func (l *DatasetLoader) loadType(typ model.TaxonomyType) (LoadResult, error) {
	res := LoadResult{Type: typ, Source: SourceEmbedded}
	if l.dir != "" {
		path, err := FindTypeFile(l.dir, typ)
		if err == nil {
			forest, err := LoadForestFromFile(path)
			if err == nil {
				res.Source = path
				res.Forest = forest
				return res, nil
			}
			res.Error = err
		} else if !errors.Is(err, ErrNoDataFile) {
			res.Error = err
		}
		res.Fallback = true
	}

	forest, err := Embedded(typ)
	if err != nil {
		return res, err
	}
	res.Forest = forest
	return res, nil
}

func (l *DatasetLoader) logFallback(res LoadResult) {
	if res.Error != nil {
		l.logger.Printf("WARNING: using embedded %s taxonomy: %v", res.Type, res.Error)
		return
	}
	l.logger.Printf("no %s data in %s, using embedded taxonomy", res.Type, l.dir)
}

// Load is a convenience wrapper around NewDatasetLoader(dir).LoadAll.
func Load(ctx context.Context, dir string) (model.Dataset, error) {
	ds, _, err := NewDatasetLoader(dir).LoadAll(ctx)
	return ds, err
}
