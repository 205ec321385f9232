package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"

	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"

	"tilekit/internal/monitoring"
	"tilekit/internal/tileset"
)

type checkCmd struct {
	assets  assetFlags
	workers int
	verbose bool
}

func (c *checkCmd) Name() string     { return "check" }
func (c *checkCmd) Synopsis() string { return "decode every template bitmap and report load statistics" }
func (c *checkCmd) Usage() string {
	return "tileutils check [-t <path>] [-m <mounts>] [-w <workers>] [-v]\n"
}
func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	c.assets.register(f)
	f.IntVar(&c.workers, "w", 0, "Parallel decoders (default from config)")
	f.BoolVar(&c.verbose, "v", false, "Log every template")
}

func (c *checkCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	cfg, ts, files, err := c.assets.open()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer files.Close()

	workers := c.workers
	if workers <= 0 {
		workers = cfg.GetWorkers()
	}

	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	monitor := monitoring.NewLoadMonitor()
	bar := progressbar.New(ts.TemplateCount())
	err = ts.LoadTiles(files,
		tileset.WithWorkers(workers),
		tileset.WithMonitor(monitor),
		tileset.WithLogger(logger),
		tileset.WithProgress(func(done, _ int) { bar.Set(done) }),
	)
	bar.Finish()
	fmt.Println()

	stats := monitor.GetDetailedStats()
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%-16s %v\n", k, stats[k])
	}
	fmt.Printf("%-16s %d/%d\n", "cached", ts.LoadedCount(), ts.TemplateCount())

	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
