package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nextroute-dev/nextroute/internal/config"
	"github.com/nextroute-dev/nextroute/internal/dev"
	"github.com/nextroute-dev/nextroute/internal/telemetry"
)

func devCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Serve the compiled configuration with watch mode",
		Long: `Watch the build directory, recompile the routing configuration on
change, and serve the current document over HTTP.

Endpoints:
  /config.json   the compiled routing configuration
  /events        WebSocket reload notifications
  /metrics       Prometheus metrics (when enabled)

Examples:
  nextroute dev
  nextroute dev --port=4000
  nextroute dev --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(port, host)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from nextroute.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from nextroute.json)")

	return cmd
}

func runDev(port int, host string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(wd)
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if port > 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}

	options := dev.ServerOptions{
		Config: cfg,
		OnCompile: func(err error) {
			if err != nil {
				errorMsg("Compile failed: %s", err)
			} else {
				success("Compiled")
			}
		},
		OnReload: func(clients int) {
			if clients > 0 {
				success("Notified %d clients", clients)
			}
		},
	}
	if cfg.Telemetry.Metrics {
		options.Metrics = telemetry.NewMetrics()
	}

	server := dev.NewServer(options)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		cancel()
	}()

	info("Watching %s", cfg.BuildDir())
	info("Serving http://%s:%d/config.json", cfg.Dev.Host, cfg.Dev.Port)
	fmt.Println()

	return server.Start(ctx)
}
