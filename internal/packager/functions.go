package packager

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nextroute-dev/nextroute/internal/errors"
	"github.com/nextroute-dev/nextroute/pkg/build"
)

// OperationType classifies a server function for the serving tier.
type OperationType string

const (
	// OperationPage marks page-rendering functions.
	OperationPage OperationType = "PAGE"

	// OperationAPI marks API route functions.
	OperationAPI OperationType = "API"
)

// FunctionConfig is the per-function config document written next to each
// function output.
type FunctionConfig struct {
	Runtime   string        `json:"runtime"`
	Handler   string        `json:"handler"`
	Operation OperationType `json:"operation"`
}

const defaultRuntime = "nodejs"

// ClassifyOperation derives the operation type of a function output. App
// router pages are always pages; in the pages tree, anything under /api is an
// API route and everything else is a page.
func ClassifyOperation(fn build.FunctionOutput) OperationType {
	if fn.App {
		return OperationPage
	}
	if fn.Page == "/api" || strings.HasPrefix(fn.Page, "/api/") {
		return OperationAPI
	}
	return OperationPage
}

// functionConfigPath maps a page identity to its config document path under
// the functions directory. The root page maps to index.
func functionConfigPath(functionsDir, page string) string {
	rel := strings.TrimPrefix(page, "/")
	if rel == "" {
		rel = "index"
	}
	return filepath.Join(functionsDir, filepath.FromSlash(rel)+".func.json")
}

// writeFunctionConfigs writes one config document per function output and
// returns the number written.
func (p *Packager) writeFunctionConfigs(functionsDir string, desc *build.Description) (int, error) {
	for _, fn := range desc.Functions {
		runtime := fn.Runtime
		if runtime == "" {
			runtime = defaultRuntime
		}
		cfg := FunctionConfig{
			Runtime:   runtime,
			Handler:   strings.TrimPrefix(fn.Page, "/"),
			Operation: ClassifyOperation(fn),
		}
		if cfg.Handler == "" {
			cfg.Handler = "index"
		}

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return 0, errors.New("N202").Wrap(err)
		}
		data = append(data, '\n')

		path := functionConfigPath(functionsDir, fn.Page)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return 0, errors.New("N202").Wrap(err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return 0, errors.New("N202").
				WithDetail("Cannot write %s", path).
				Wrap(err)
		}
	}
	return len(desc.Functions), nil
}

// linkPrerenderedVariants binds every prerendered fallback-false path to its
// parent function by symlinking the variant's config document to the
// parent's. A parent page with no function output is a fatal inconsistency in
// the build's output graph.
func (p *Packager) linkPrerenderedVariants(functionsDir string, desc *build.Description) error {
	byPage := make(map[string]bool, len(desc.Functions))
	for _, fn := range desc.Functions {
		byPage[fn.Page] = true
	}

	for _, page := range sortedPages(desc.PrerenderFallbackFalse) {
		if !byPage[page] {
			return errors.New("N002").
				WithDetail("Page %s has prerendered variants but no function output", page)
		}
		parent := functionConfigPath(functionsDir, page)

		for _, variant := range desc.PrerenderFallbackFalse[page] {
			link := functionConfigPath(functionsDir, variant)
			if err := os.MkdirAll(filepath.Dir(link), 0755); err != nil {
				return errors.New("N202").Wrap(err)
			}
			target, err := filepath.Rel(filepath.Dir(link), parent)
			if err != nil {
				return errors.New("N202").Wrap(err)
			}
			if err := os.Symlink(target, link); err != nil {
				if os.IsExist(err) {
					continue
				}
				return errors.New("N202").
					WithDetail("Cannot link %s to %s", link, parent).
					Wrap(err)
			}
		}
	}
	return nil
}

func sortedPages(m map[string][]string) []string {
	pages := make([]string, 0, len(m))
	for page := range m {
		pages = append(pages, page)
	}
	sort.Strings(pages)
	return pages
}
