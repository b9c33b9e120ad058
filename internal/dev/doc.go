// Package dev implements watch mode for the route compiler.
//
// This package implements:
//   - Polling file watching over the framework's build output
//   - Recompilation of the routing configuration on change
//   - WebSocket-based reload notification for connected tools
//   - An HTTP server exposing the current compiled document
//
// # Architecture
//
// The development server consists of several components:
//
//   - Watcher: monitors the build directory for changes
//   - Server: recompiles and serves the routing configuration
//   - ReloadServer: notifies clients of recompiles via WebSocket
//
// # Usage
//
//	srv := dev.NewServer(dev.ServerOptions{Config: cfg})
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// The server exposes:
//
//	GET /config.json   current compiled routing configuration
//	GET /events        WebSocket reload feed
//	GET /metrics       Prometheus metrics (when telemetry.metrics is set)
//
// The dev server serves the compiled document for inspection; it does not
// dispatch requests against the rules.
//
// # Reload Protocol
//
// Clients connect to /events via WebSocket. Messages are JSON-encoded:
//
//	{"type": "reload"}                // configuration was recompiled
//	{"type": "error", "error": "..."} // recompilation failed
//	{"type": "clear"}                 // a previous error was resolved
package dev
