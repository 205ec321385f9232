package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"github.com/google/subcommands"

	"tilekit/internal/catalogdb"
	"tilekit/internal/tileset"
)

type exportCmd struct {
	assets     assetFlags
	outputPath string
}

func (c *exportCmd) Name() string     { return "export" }
func (c *exportCmd) Synopsis() string { return "export the tile set catalog to a SQLite database" }
func (c *exportCmd) Usage() string {
	return "tileutils export -o <path> [-t <path>] [-m <mounts>]\n"
}
func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.assets.register(f)
	f.StringVar(&c.outputPath, "o", "", "Output database path")
}

func (c *exportCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.outputPath == "" {
		log.Println("missing output path (-o)")
		return subcommands.ExitUsageError
	}

	cfg, ts, files, err := c.assets.open()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer files.Close()

	if err := ts.LoadTiles(files, tileset.WithWorkers(cfg.GetWorkers())); err != nil {
		log.Printf("Warning: %v (unloaded templates use placeholder tiles)", err)
	}

	writer, err := catalogdb.NewWriter(c.outputPath,
		catalogdb.WithMetadata(map[string]string{"source": cfg.Assets.TileSet}),
		catalogdb.WithLogger(slog.Default()),
	)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer writer.Close()

	if err := writer.WriteTileSet(ts); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	if err := writer.Finalize(); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
