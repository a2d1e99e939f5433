package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	_ "github.com/vanderheijden86/oasftree/internal/ttyguard"
	"github.com/vanderheijden86/oasftree/pkg/config"
	"github.com/vanderheijden86/oasftree/pkg/debug"
	"github.com/vanderheijden86/oasftree/pkg/export"
	"github.com/vanderheijden86/oasftree/pkg/loader"
	"github.com/vanderheijden86/oasftree/pkg/metrics"
	"github.com/vanderheijden86/oasftree/pkg/model"
	"github.com/vanderheijden86/oasftree/pkg/taxonomy"
	"github.com/vanderheijden86/oasftree/pkg/ui"
	"github.com/vanderheijden86/oasftree/pkg/version"
	"github.com/vanderheijden86/oasftree/pkg/watcher"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	typeFlag := flag.String("type", "", "Taxonomy type to open: skill or domain (default from config)")
	queryFlag := flag.String("query", "", "Initial search query")
	dataDir := flag.String("data-dir", "", "Directory with skills/domains JSON or YAML files (default: embedded data)")
	expandDepth := flag.Int("expand-depth", -1, "Levels shown expanded at start (default from config)")
	matchSlug := flag.Bool("match-slug", false, "Also match the query against category slugs")
	pick := flag.Bool("pick", false, "Exit after selecting a category and print it as JSON")
	noDetail := flag.Bool("no-detail", false, "Start with the detail pane hidden")
	robotTree := flag.Bool("robot-tree", false, "Print the visible rows as JSON and exit")
	robotExpandAll := flag.Bool("expand-all", false, "Expand every category before printing (with --robot-tree or outline exports)")
	robotSelect := flag.String("robot-select", "", "Print the category with this slug as JSON and exit")
	robotStats := flag.Bool("robot-stats", false, "Print structural statistics for every taxonomy as JSON and exit")
	check := flag.Bool("check", false, "Validate the data files and exit")
	watch := flag.Bool("watch", false, "With --check: re-validate whenever a data file changes")
	exportSQLite := flag.String("export-sqlite", "", "Export every taxonomy to a SQLite database at this path")
	exportSVG := flag.String("export-svg", "", "Export the outline of --type to an SVG file")
	exportPNG := flag.String("export-png", "", "Export the outline of --type to a PNG file")
	exportWizard := flag.Bool("export", false, "Run the interactive export wizard")
	debugMetrics := flag.Bool("debug-metrics", false, "Print timing metrics to stderr on exit")
	flag.Parse()

	// CPU profiling support
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: oasftree [options]")
		fmt.Println("\nBrowse the OASF skill and domain taxonomies.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("oasftree %s\n", version.String())
		os.Exit(0)
	}

	if *watch && !*check {
		fmt.Fprintln(os.Stderr, "Error: --watch requires --check")
		os.Exit(2)
	}
	if *exportSVG != "" && *exportPNG != "" {
		fmt.Fprintln(os.Stderr, "Error: --export-svg and --export-png are mutually exclusive")
		os.Exit(2)
	}

	if *debugMetrics {
		metrics.SetEnabled(true)
		defer metrics.WriteSummary(os.Stderr)
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", cfgErr)
		cfg = config.DefaultConfig()
	}
	cfg.ApplyEnv()
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *matchSlug {
		cfg.MatchSlug = true
	}
	if *expandDepth >= 0 {
		cfg.ExpandDepth = *expandDepth
	}

	if *typeFlag != "" {
		cfg.DefaultType = *typeFlag
	}
	typ, err := cfg.Type()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	dir := cfg.ResolvedDataDir()
	debug.Log("data dir %q, type %q", dir, typ)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *check {
		if *watch {
			if dir == "" {
				fmt.Fprintln(os.Stderr, "Error: --watch needs --data-dir (the embedded data never changes)")
				os.Exit(2)
			}
			if err := runWatch(ctx, dir, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
		if !runCheck(ctx, dir, os.Stdout) {
			os.Exit(1)
		}
		return
	}

	dsLoader := loader.NewDatasetLoader(dir)
	dsLoader.SetLogger(log.New(os.Stderr, "", 0))
	ds, _, err := dsLoader.LoadAll(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading taxonomy: %v\n", err)
		os.Exit(1)
	}

	catalog := taxonomy.NewCatalog(ds)
	filter := taxonomy.FilterOptions{MatchSlug: cfg.MatchSlug}
	newRobotBrowser := func() *taxonomy.Browser {
		b, err := taxonomy.NewBrowser(catalog, typ, taxonomy.BrowserOptions{
			Filter:      filter,
			ExpandDepth: cfg.ExpandDepth,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return b
	}

	switch {
	case *robotTree:
		exitOnErr(writeJSON(os.Stdout, buildTreeOutput(newRobotBrowser(), *queryFlag, *robotExpandAll)))
		return
	case *robotSelect != "":
		out, err := buildSelectOutput(newRobotBrowser(), *robotSelect)
		exitOnErr(err)
		exitOnErr(writeJSON(os.Stdout, out))
		return
	case *robotStats:
		out, err := buildStatsOutput(catalog)
		exitOnErr(err)
		exitOnErr(writeJSON(os.Stdout, out))
		return
	case *exportSQLite != "":
		exitOnErr(exportDatabase(catalog, dir, *exportSQLite))
		fmt.Printf("Exported taxonomy database to %s\n", *exportSQLite)
		return
	case *exportSVG != "" || *exportPNG != "":
		wc := export.WizardConfig{
			Format:     export.FormatSVG,
			Types:      []string{string(typ)},
			Query:      *queryFlag,
			ExpandAll:  *robotExpandAll,
			OutputPath: *exportSVG,
		}
		if *exportPNG != "" {
			wc.Format, wc.OutputPath = export.FormatPNG, *exportPNG
		}
		path, err := export.Run(wc, catalog, filter)
		exitOnErr(err)
		fmt.Printf("Exported %s outline to %s\n", typ, path)
		return
	case *exportWizard:
		exitOnErr(runExportWizard(catalog, filter, cfg.Export.Dir))
		return
	}

	opts := ui.Options{
		Type:        typ,
		Query:       *queryFlag,
		Filter:      filter,
		ExpandDepth: cfg.ExpandDepth,
		ShowDetail:  cfg.DetailVisible() && !*noDetail,
		SplitRatio:  cfg.UI.SplitRatio,
		PickMode:    *pick,
	}
	if dir != "" {
		w, err := watcher.NewWatcher(dir, watcher.WithMatch(loader.IsDataFileName))
		if err == nil && w.Start() == nil {
			defer w.Stop()
			opts.Watcher = w
			opts.Reload = reloadFunc(dir)
		} else {
			debug.Log("live reload disabled for %s", dir)
		}
	}

	m, err := ui.NewModel(ds, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	final, err := runTUIProgram(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
	if *pick {
		ref, t, ok := final.Selection()
		if !ok {
			os.Exit(1)
		}
		exitOnErr(writeJSON(os.Stdout, pickOutput{Type: t, Selected: ref}))
	}
}

type pickOutput struct {
	Type     model.TaxonomyType `json:"type"`
	Selected model.CategoryRef  `json:"selected"`
}

func exportDatabase(catalog *taxonomy.Catalog, source, path string) error {
	indexes := make([]*taxonomy.TreeIndex, 0, len(model.AllTypes))
	for _, typ := range model.AllTypes {
		idx, err := catalog.Index(typ)
		if err != nil {
			return err
		}
		indexes = append(indexes, idx)
	}
	exp := export.NewSQLiteExporter(indexes...)
	exp.Source = source
	if exp.Source == "" {
		exp.Source = loader.SourceEmbedded
	}
	exp.SetLogger(log.New(os.Stderr, "", 0))
	return exp.Export(path)
}

func runExportWizard(catalog *taxonomy.Catalog, filter taxonomy.FilterOptions, outputDir string) error {
	wc, err := export.NewWizard(outputDir).Run()
	if err != nil {
		return err
	}
	path, err := export.Run(*wc, catalog, filter)
	if err != nil {
		return err
	}
	if err := export.SaveWizardConfig(wc); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save export settings: %v\n", err)
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

func exitOnErr(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, model.ErrNotFound) {
		os.Exit(2)
	}
	os.Exit(1)
}
