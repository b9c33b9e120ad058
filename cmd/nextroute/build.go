package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nextroute-dev/nextroute/internal/config"
	"github.com/nextroute-dev/nextroute/internal/offload"
	"github.com/nextroute-dev/nextroute/internal/packager"
	"github.com/nextroute-dev/nextroute/internal/telemetry"
)

func buildCmd() *cobra.Command {
	var (
		buildDir  string
		output    string
		noOffload bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Package the build output for deployment",
		Long: `Compile the routing configuration and assemble the deployable
artifact directory.

This command:
  • Reads build-description.json from the build directory
  • Compiles the phase-ordered routing rule list
  • Writes config.json and per-function config documents
  • Links prerendered fallback variants to their parent functions
  • Copies static assets, or offloads them to object storage

Examples:
  nextroute build
  nextroute build --output=dist
  nextroute build --no-offload`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(buildDir, output, noOffload)
		},
	}

	cmd.Flags().StringVarP(&buildDir, "build-dir", "b", "", "Build directory (default from nextroute.json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from nextroute.json)")
	cmd.Flags().BoolVar(&noOffload, "no-offload", false, "Keep static assets local even when offload is configured")

	return cmd
}

func runBuild(buildDir, output string, noOffload bool) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(wd)
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if buildDir != "" {
		cfg.Paths.Build = buildDir
	}
	if output != "" {
		cfg.Paths.Output = output
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	options := packager.Options{
		OnProgress: func(step string) {
			info(step)
		},
	}
	if cfg.Telemetry.Metrics {
		options.Metrics = telemetry.NewMetrics()
	}
	if cfg.Telemetry.Tracing {
		options.Tracer = telemetry.NewTracer()
	}
	if cfg.Offload.Enabled && !noOffload {
		uploader, err := offload.NewS3Uploader(ctx, cfg.Offload)
		if err != nil {
			return err
		}
		options.Uploader = uploader
		options.UploadPrefix = cfg.Offload.Prefix
	} else if cfg.Offload.Enabled {
		warn("Offload configured but disabled with --no-offload")
	}

	fmt.Println("  Packaging build output...")
	fmt.Println()

	result, err := packager.New(cfg, options).Package(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	success("Packaged in %s", result.Duration.Round(1000000))
	fmt.Println()
	fmt.Println("  Output:")
	fmt.Printf("    %s/\n", cfg.Paths.Output)
	fmt.Printf("    ├── config.json       (%d rules)\n", result.RuleCount)
	fmt.Printf("    ├── functions/        (%d configs)\n", result.Functions)
	if result.Uploaded > 0 {
		fmt.Printf("    └── static/           (%d files offloaded)\n", result.Uploaded)
	} else {
		fmt.Printf("    └── static/           (%d files)\n", result.StaticCopied)
	}
	fmt.Println()

	return nil
}
