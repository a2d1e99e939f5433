package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vanderheijden86/oasftree/pkg/loader"
	"github.com/vanderheijden86/oasftree/pkg/model"
	"github.com/vanderheijden86/oasftree/pkg/taxonomy"
	"github.com/vanderheijden86/oasftree/pkg/watcher"
)

// runCheck loads every type from dir and builds its index, printing one line
// per type. It returns false when any file was rejected or any forest fails
// to index.
func runCheck(ctx context.Context, dir string, w io.Writer) bool {
	ds, results, err := loader.NewDatasetLoader(dir).LoadAll(ctx)
	if err != nil {
		fmt.Fprintf(w, "FAIL  %v\n", err)
		return false
	}

	ok := true
	for _, res := range results {
		if res.Error != nil {
			fmt.Fprintf(w, "FAIL  %-7s %v\n", res.Type, res.Error)
			ok = false
			continue
		}
		idx, err := taxonomy.Build(res.Type, ds[res.Type])
		if err != nil {
			fmt.Fprintf(w, "FAIL  %-7s %s: %v\n", res.Type, res.Source, err)
			ok = false
			continue
		}
		fmt.Fprintf(w, "ok    %-7s %s: %d categories, %d roots\n",
			res.Type, res.Source, idx.CountAll(), len(idx.Roots()))
	}
	return ok
}

// runWatch re-runs the check every time a data file in dir changes, until
// ctx is cancelled.
func runWatch(ctx context.Context, dir string, w io.Writer) error {
	wt, err := watcher.NewWatcher(dir,
		watcher.WithMatch(loader.IsDataFileName),
		watcher.WithOnError(func(err error) {
			fmt.Fprintf(w, "watch error: %v\n", err)
		}),
	)
	if err != nil {
		return err
	}
	if err := wt.Start(); err != nil {
		return err
	}
	defer wt.Stop()

	mode := "fsnotify"
	if wt.IsPolling() {
		mode = fmt.Sprintf("polling every %s", wt.PollInterval())
	}
	fmt.Fprintf(w, "Watching %s (%s, %s)\n", wt.Dir(), wt.FilesystemType(), mode)
	runCheck(ctx, dir, w)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-wt.Changed():
			fmt.Fprintf(w, "\n[%s] change detected\n", time.Now().Format(time.TimeOnly))
			runCheck(ctx, dir, w)
		}
	}
}

// reloadFunc is the ui.ReloadFunc used for live reload. Unlike LoadAll's
// silent fallback, a broken file is reported so the TUI keeps its current
// dataset.
func reloadFunc(dir string) func(ctx context.Context) (model.Dataset, error) {
	return func(ctx context.Context) (model.Dataset, error) {
		ds, results, err := loader.NewDatasetLoader(dir).LoadAll(ctx)
		if err != nil {
			return nil, err
		}
		for _, res := range results {
			if res.Error != nil {
				return nil, fmt.Errorf("%s: %w", res.Type, res.Error)
			}
		}
		return ds, nil
	}
}
