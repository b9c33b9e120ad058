package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextroute-dev/nextroute/internal/config"
	"github.com/nextroute-dev/nextroute/internal/packager"
	"github.com/nextroute-dev/nextroute/pkg/compile"
	"github.com/nextroute-dev/nextroute/pkg/routes"
)

func inspectCmd() *cobra.Command {
	var (
		buildDir string
		stats    bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Compile the routing configuration and print it",
		Long: `Compile the routing configuration from the build description and
print it to stdout without writing any output files.

Examples:
  nextroute inspect
  nextroute inspect --stats
  nextroute inspect --build-dir=.next`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(buildDir, stats)
		},
	}

	cmd.Flags().StringVarP(&buildDir, "build-dir", "b", "", "Build directory (default from nextroute.json)")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print per-phase rule counts instead of the document")

	return cmd
}

func runInspect(buildDir string, stats bool) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(wd)
	if err != nil {
		return err
	}
	if buildDir != "" {
		cfg.Paths.Build = buildDir
	}

	desc, err := packager.LoadDescription(cfg.BuildDir())
	if err != nil {
		return err
	}
	table, err := compile.Compile(desc)
	if err != nil {
		return err
	}

	if stats {
		printStats(table)
		return nil
	}

	data, err := table.MarshalIndent()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

// printStats reports how many rules precede each phase marker. Rules before
// the first marker run in the main phase.
func printStats(table *routes.RouteTable) {
	phase := "main"
	counts := map[string]int{}
	var order []string

	order = append(order, phase)
	for _, r := range table.Routes {
		if r.IsMarker() {
			phase = string(r.Handle)
			order = append(order, phase)
			continue
		}
		counts[phase]++
	}

	fmt.Printf("  %d rules\n\n", len(table.Routes))
	for _, p := range order {
		fmt.Printf("  %-12s %d\n", p, counts[p])
	}
}
