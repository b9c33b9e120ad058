// Package packager turns a completed framework build into a deployable
// artifact directory: the compiled routing configuration, per-function config
// documents, copied (or offloaded) static assets, and the symlinks that bind
// prerendered fallback variants to their parent functions.
//
// The packager owns the ordering contract of the system: every derived build
// fact is read before the compiler runs, and the compiler's output is
// verified against the phase-order invariant before anything is written.
//
// # Usage
//
//	p := packager.New(cfg, packager.Options{})
//	result, err := p.Package(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Packaged in %s\n", result.Duration)
//
// # Output Structure
//
//	.nextroute/output/
//	├── config.json             # routing configuration document
//	├── functions/
//	│   ├── posts/[slug].func.json
//	│   └── api/hello.func.json
//	└── static/
//	    ├── _next/static/...    # framework assets (unless offloaded)
//	    └── ...                 # public files
package packager
