// Command pantheon browses a mythological genealogy in the terminal, one
// ego graph at a time.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/pantheon/internal/datasource"
	"github.com/vanderheijden86/pantheon/pkg/analysis"
	"github.com/vanderheijden86/pantheon/pkg/config"
	"github.com/vanderheijden86/pantheon/pkg/debug"
	"github.com/vanderheijden86/pantheon/pkg/export"
	"github.com/vanderheijden86/pantheon/pkg/genealogy"
	"github.com/vanderheijden86/pantheon/pkg/loader"
	"github.com/vanderheijden86/pantheon/pkg/metrics"
	"github.com/vanderheijden86/pantheon/pkg/model"
	"github.com/vanderheijden86/pantheon/pkg/rings"
	"github.com/vanderheijden86/pantheon/pkg/ui"
	"github.com/vanderheijden86/pantheon/pkg/version"
	"github.com/vanderheijden86/pantheon/pkg/watcher"
)

// AutoCloseEnvVar makes the TUI quit after the given milliseconds.
const AutoCloseEnvVar = "PANTHEON_TUI_AUTOCLOSE_MS"

type options struct {
	data         string
	slug         string
	watch        bool
	configPath   string
	version      bool
	help         bool
	robotEgo     string
	focusConsort string
	focusChild   string
	exportJSON   string
	exportSQLite string
	snapshot     string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (options, *flag.FlagSet, error) {
	var o options
	fs := flag.NewFlagSet("pantheon", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.data, "data", "", "Dataset path (.json, .yaml, .db) or http(s) URL")
	fs.StringVar(&o.slug, "slug", "", "Slug of the initial central figure")
	fs.BoolVar(&o.watch, "watch", false, "Reload when the dataset file changes")
	fs.StringVar(&o.configPath, "config", "", "Config file (default "+config.ConfigPath()+")")
	fs.BoolVar(&o.version, "version", false, "Show version")
	fs.BoolVar(&o.help, "help", false, "Show help")
	fs.StringVar(&o.robotEgo, "robot-ego", "", "Print the rings of SLUG as JSON and exit")
	fs.StringVar(&o.focusConsort, "focus-consort", "", "Consort focus applied to --robot-ego and --snapshot")
	fs.StringVar(&o.focusChild, "focus-child", "", "Child focus applied to --robot-ego and --snapshot")
	fs.StringVar(&o.exportJSON, "export-json", "", "Normalise the YAML source given by --data into OUT and exit")
	fs.StringVar(&o.exportSQLite, "export-sqlite", "", "Write the dataset to the SQLite file OUT and exit")
	fs.StringVar(&o.snapshot, "snapshot", "", "Render the ego graph of --slug to OUT.svg or OUT.png (comma separated) and exit")
	err := fs.Parse(args)
	return o, fs, err
}

func run(args []string, stdout, stderr io.Writer) int {
	o, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if o.help {
		fmt.Fprintln(stdout, "Usage: pantheon [options]")
		fmt.Fprintln(stdout, "\nAn ego-centred viewer for mythological genealogies.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return 0
	}
	if o.version {
		fmt.Fprintf(stdout, "pantheon %s\n", version.String())
		return 0
	}
	if o.focusConsort != "" && o.focusChild != "" {
		fmt.Fprintln(stderr, "Error: --focus-consort and --focus-child are mutually exclusive")
		return 2
	}

	cfg, err := loadConfig(o.configPath)
	if err != nil {
		// Non-fatal: continue with defaults.
		fmt.Fprintf(stderr, "Warning: %v\n", err)
		cfg = config.DefaultConfig()
	}
	if o.data == "" {
		o.data = strings.TrimSpace(os.Getenv(loader.DataPathEnvVar))
	}
	if o.data == "" {
		o.data = cfg.Data.Path
	}
	if o.slug == "" {
		o.slug = cfg.DefaultSlug
	}

	if o.exportJSON != "" {
		if o.data == "" {
			fmt.Fprintln(stderr, "Error: --export-json needs --data pointing at the YAML source")
			return 2
		}
		ds, err := loader.ExportJSON(o.data, o.exportJSON)
		if err != nil {
			fmt.Fprintf(stderr, "Error exporting JSON: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Exported %d entities and %d relations to %s\n", len(ds.Entities), len(ds.Relations), o.exportJSON)
		return 0
	}

	loadOpts, watchPath, err := resolveSource(o.data)
	if err != nil {
		if errors.Is(err, loader.ErrNoDataset) {
			// Nothing configured to show: render nothing.
			debug.Log("no dataset configured, exiting")
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	load := func(ctx context.Context) (model.Dataset, error) {
		res, err := datasource.Load(ctx, loadOpts)
		if err != nil {
			return model.Dataset{}, err
		}
		return res.Dataset, nil
	}

	timeout := cfg.Data.Timeout
	if timeout <= 0 {
		timeout = loader.DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	switch {
	case o.robotEgo != "":
		return runRobotEgo(ctx, load, o, stdout, stderr)
	case o.exportSQLite != "":
		return runExportSQLite(ctx, load, o.exportSQLite, stdout, stderr)
	case o.snapshot != "":
		return runSnapshot(ctx, load, o, stdout, stderr)
	}

	if o.slug == "" && isInteractive() {
		ds, err := load(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading dataset: %v\n", err)
			return 1
		}
		slug, err := ui.PickEntity(genealogy.BuildStore(ds).Entities(), cfg.Culture)
		if errors.Is(err, huh.ErrUserAborted) {
			return 0
		}
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		o.slug = slug
		// The picker already paid for the load.
		load = func(context.Context) (model.Dataset, error) { return ds, nil }
	}

	uiOpts := ui.Options{Load: load, InitialSlug: o.slug, Config: cfg}
	if o.watch && watchPath != "" {
		w, err := watcher.NewWatcher(watchPath, watcher.WithOnError(func(err error) {
			debug.Error("watcher", err)
		}))
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			fmt.Fprintf(stderr, "Warning: cannot watch %s: %v\n", watchPath, err)
		} else {
			defer w.Stop()
			uiOpts.Watcher = w
		}
	}

	if err := runTUIProgram(ui.NewModel(uiOpts), cfg.UI.Mouse); err != nil {
		fmt.Fprintf(stderr, "Error running pantheon: %v\n", err)
		return 1
	}
	debug.LogIf(metrics.Enabled(), "timings:\n%s", metrics.Summary())
	return 0
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// resolveSource picks what to load: the explicit path, else the first root
// (cwd, then the user data dir) that holds a dataset. watchPath is the local
// file behind the choice, empty for URLs.
func resolveSource(data string) (datasource.LoadOptions, string, error) {
	if data != "" {
		if loader.IsRemote(data) {
			return datasource.LoadOptions{Path: data}, "", nil
		}
		return datasource.LoadOptions{Path: data}, data, nil
	}
	for _, root := range []string{"", config.DataDir()} {
		sources, err := datasource.DiscoverSources(datasource.DiscoveryOptions{Root: root})
		if err != nil {
			return datasource.LoadOptions{}, "", err
		}
		if len(sources) > 0 {
			return datasource.LoadOptions{Root: root}, sources[0].Path, nil
		}
	}
	return datasource.LoadOptions{}, "", loader.ErrNoDataset
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// computeRings loads the dataset and computes the rings of slug under the
// focus flags.
func computeRings(ctx context.Context, load ui.LoadFunc, slug string, o options) (rings.Result, rings.FocusState, *genealogy.Store, error) {
	ds, err := load(ctx)
	if err != nil {
		return rings.Result{}, rings.FocusState{}, nil, fmt.Errorf("loading dataset: %w", err)
	}
	store := genealogy.BuildStore(ds)
	g, ok := store.EgoGraph(slug)
	if !ok {
		return rings.Result{}, rings.FocusState{}, nil, fmt.Errorf("%s (%s)", ui.NoDataMessage, slug)
	}
	state := rings.FocusState{
		FocusedConsortSlug:  o.focusConsort,
		SelectedConsortSlug: o.focusConsort,
		FocusedChildSlug:    o.focusChild,
	}
	return rings.ComputeRings(g, state, store), state, store, nil
}

func runRobotEgo(ctx context.Context, load ui.LoadFunc, o options, stdout, stderr io.Writer) int {
	res, state, store, err := computeRings(ctx, load, o.robotEgo, o)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	report := export.BuildRobotEgo(res, state, analysis.NewLineage(store))
	if err := export.WriteRobotEgo(stdout, report); err != nil {
		fmt.Fprintf(stderr, "Error encoding JSON: %v\n", err)
		return 1
	}
	return 0
}

func runExportSQLite(ctx context.Context, load ui.LoadFunc, out string, stdout, stderr io.Writer) int {
	ds, err := load(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading dataset: %v\n", err)
		return 1
	}
	if err := datasource.WriteSQLite(ctx, ds, out); err != nil {
		fmt.Fprintf(stderr, "Error writing SQLite: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Wrote %d entities and %d relations to %s\n", len(ds.Entities), len(ds.Relations), out)
	return 0
}

func runSnapshot(ctx context.Context, load ui.LoadFunc, o options, stdout, stderr io.Writer) int {
	if o.slug == "" {
		fmt.Fprintln(stderr, "Error: --snapshot needs --slug")
		return 2
	}
	res, _, _, err := computeRings(ctx, load, o.slug, o)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	var paths []string
	for _, p := range strings.Split(o.snapshot, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	if err := export.SaveSnapshots(ctx, res, "", paths); err != nil {
		fmt.Fprintf(stderr, "Error writing snapshot: %v\n", err)
		return 1
	}
	for _, p := range paths {
		fmt.Fprintf(stdout, "Wrote %s\n", p)
	}
	return 0
}

func runTUIProgram(m ui.Model, mouse bool) error {
	popts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithoutSignalHandler()}
	if mouse {
		popts = append(popts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, popts...)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	if v := os.Getenv(AutoCloseEnvVar); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()
				select {
				case <-runDone:
				case <-timer.C:
					p.Quit()
				}
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
