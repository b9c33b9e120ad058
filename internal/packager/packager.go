package packager

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/nextroute-dev/nextroute/internal/config"
	"github.com/nextroute-dev/nextroute/internal/errors"
	"github.com/nextroute-dev/nextroute/internal/offload"
	"github.com/nextroute-dev/nextroute/internal/telemetry"
	"github.com/nextroute-dev/nextroute/pkg/build"
	"github.com/nextroute-dev/nextroute/pkg/compile"
	"github.com/nextroute-dev/nextroute/pkg/routes"
)

// Result contains the packaging output.
type Result struct {
	// Duration is how long packaging took.
	Duration time.Duration

	// RoutesPath is the path of the written routing configuration.
	RoutesPath string

	// RuleCount is the number of entries in the compiled rule list.
	RuleCount int

	// Functions is the number of function config documents written.
	Functions int

	// StaticCopied is the number of static files copied into the output.
	StaticCopied int

	// Uploaded is the number of assets offloaded to object storage.
	Uploaded int
}

// Options configures the packager.
type Options struct {
	// Uploader offloads static assets instead of leaving them in the output
	// directory. Nil keeps assets local.
	Uploader offload.Uploader

	// UploadPrefix is prepended to every offloaded object key.
	UploadPrefix string

	// Metrics records packaging observations. Nil disables.
	Metrics *telemetry.Metrics

	// Tracer emits spans around compile and package. Nil disables.
	Tracer *telemetry.Tracer

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Packager builds the deployable artifact directory.
type Packager struct {
	config  *config.Config
	options Options
}

// New creates a new packager.
func New(cfg *config.Config, options Options) *Packager {
	return &Packager{
		config:  cfg,
		options: options,
	}
}

// Package runs the full packaging pipeline: load the build description,
// compile the route table, write the configuration and function documents,
// and copy or offload static assets.
func (p *Packager) Package(ctx context.Context) (result *Result, err error) {
	start := time.Now()
	result = &Result{}

	outputDir := p.config.OutputDir()

	ctx, span := p.options.Tracer.StartPackage(ctx, outputDir)
	defer func() {
		telemetry.End(span, err)
		p.options.Metrics.RecordBuild(err)
	}()

	p.progress("Reading build description...")
	desc, err := LoadDescription(p.config.BuildDir())
	if err != nil {
		return nil, err
	}

	p.progress("Compiling route table...")
	table, err := p.compileTable(ctx, desc)
	if err != nil {
		return nil, err
	}
	result.RuleCount = len(table.Routes)

	p.progress("Cleaning output directory...")
	if err = os.RemoveAll(outputDir); err != nil {
		return nil, errors.New("N202").Wrap(err)
	}
	if err = os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.New("N202").Wrap(err)
	}

	p.progress("Writing routing configuration...")
	result.RoutesPath = filepath.Join(outputDir, config.RoutesFileName)
	data, err := table.MarshalIndent()
	if err != nil {
		return nil, errors.New("N202").Wrap(err)
	}
	if err = os.WriteFile(result.RoutesPath, data, 0644); err != nil {
		return nil, errors.New("N202").
			WithDetail("Cannot write %s", result.RoutesPath).
			Wrap(err)
	}

	p.progress("Writing function configs...")
	functionsDir := filepath.Join(outputDir, "functions")
	result.Functions, err = p.writeFunctionConfigs(functionsDir, desc)
	if err != nil {
		return nil, err
	}
	if err = p.linkPrerenderedVariants(functionsDir, desc); err != nil {
		return nil, err
	}

	p.progress("Copying static assets...")
	staticDir := filepath.Join(outputDir, "static")
	result.StaticCopied, err = p.collectStatic(staticDir)
	if err != nil {
		return nil, err
	}

	if p.options.Uploader != nil {
		p.progress("Offloading static assets...")
		urls, err := offload.Dir(ctx, p.options.Uploader, staticDir, p.options.UploadPrefix)
		if err != nil {
			return nil, err
		}
		result.Uploaded = len(urls)
		p.options.Metrics.RecordUploads(result.Uploaded)
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (p *Packager) compileTable(ctx context.Context, desc *build.Description) (*routes.RouteTable, error) {
	_, span := p.options.Tracer.StartCompile(ctx, desc.BuildID)

	compileStart := time.Now()
	table, err := compile.Compile(desc)
	telemetry.EndCompile(span, table, err)
	if err != nil {
		return nil, err
	}
	p.options.Metrics.RecordCompile(time.Since(compileStart), table)

	// The compiler upholds this by construction; a violation here is a bug,
	// not bad input, and must stop the build before anything is written.
	if err := routes.CheckPhaseOrder(table.Routes); err != nil {
		return nil, errors.Newf(errors.CategoryInvariant, "compiled table violates phase order: %s", err)
	}
	return table, nil
}

// collectStatic copies framework assets and public files into the output
// static directory.
func (p *Packager) collectStatic(staticDir string) (int, error) {
	copied := 0

	// .next/static → static/_next/static
	frameworkStatic := filepath.Join(p.config.BuildDir(), "static")
	if _, err := os.Stat(frameworkStatic); err == nil {
		n, err := copyDir(frameworkStatic, filepath.Join(staticDir, "_next", "static"))
		if err != nil {
			return 0, errors.New("N203").
				WithDetail("Copying %s", frameworkStatic).
				Wrap(err)
		}
		copied += n
	}

	// public → static/
	publicDir := p.config.StaticDir()
	if _, err := os.Stat(publicDir); err == nil {
		n, err := copyDir(publicDir, staticDir)
		if err != nil {
			return 0, errors.New("N203").
				WithDetail("Copying %s", publicDir).
				Wrap(err)
		}
		copied += n
	}

	return copied, nil
}

// progress reports packaging progress.
func (p *Packager) progress(step string) {
	if p.options.OnProgress != nil {
		p.options.OnProgress(step)
	}
}
