package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/google/subcommands"

	"tilekit/internal/graphics"
)

type infoCmd struct {
	assets  assetFlags
	verbose bool
}

func (c *infoCmd) Name() string     { return "info" }
func (c *infoCmd) Synopsis() string { return "print tile set fields and catalog sizes" }
func (c *infoCmd) Usage() string {
	return "tileutils info [-t <path>] [-c <path>] [-v]\n"
}
func (c *infoCmd) SetFlags(f *flag.FlagSet) {
	c.assets.register(f)
	f.BoolVar(&c.verbose, "v", false, "List terrain types and templates")
}

func (c *infoCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	_, ts, files, err := c.assets.open()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer files.Close()

	fmt.Printf("Name:       %s\n", ts.Name())
	fmt.Printf("Id:         %s\n", ts.ID())
	fmt.Printf("Palette:    %s\n", ts.Palette())
	fmt.Printf("Extensions: %s\n", strings.Join(ts.Extensions(), ", "))
	fmt.Printf("Terrain:    %d\n", ts.TerrainCount())
	fmt.Printf("Templates:  %d\n", ts.TemplateCount())

	if !c.verbose {
		return subcommands.ExitSuccess
	}

	fmt.Println()
	for _, line := range graphics.TerrainLegend(ts) {
		fmt.Println(line)
	}
	fmt.Println()
	for _, t := range ts.Templates() {
		fmt.Printf("%5d %-12s %dx%d cells=%d", t.ID, t.Image, t.Size.X, t.Size.Y, len(t.Cells()))
		if t.PickAny {
			fmt.Print(" pick-any")
		}
		fmt.Println()
	}
	return subcommands.ExitSuccess
}
