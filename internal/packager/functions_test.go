package packager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nextroute-dev/nextroute/internal/errors"
	"github.com/nextroute-dev/nextroute/pkg/build"
)

func TestClassifyOperation(t *testing.T) {
	tests := []struct {
		name string
		fn   build.FunctionOutput
		want OperationType
	}{
		{
			name: "pages tree page",
			fn:   build.FunctionOutput{Page: "/posts/[slug]"},
			want: OperationPage,
		},
		{
			name: "pages tree api route",
			fn:   build.FunctionOutput{Page: "/api/hello"},
			want: OperationAPI,
		},
		{
			name: "bare api root",
			fn:   build.FunctionOutput{Page: "/api"},
			want: OperationAPI,
		},
		{
			name: "app router page",
			fn:   build.FunctionOutput{Page: "/dashboard", App: true},
			want: OperationPage,
		},
		{
			name: "app router page under api path",
			fn:   build.FunctionOutput{Page: "/api/docs", App: true},
			want: OperationPage,
		},
		{
			name: "api prefix in a longer segment",
			fn:   build.FunctionOutput{Page: "/apidocs"},
			want: OperationPage,
		},
		{
			name: "root page",
			fn:   build.FunctionOutput{Page: "/"},
			want: OperationPage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyOperation(tt.fn); got != tt.want {
				t.Errorf("ClassifyOperation(%q) = %q, want %q", tt.fn.Page, got, tt.want)
			}
		})
	}
}

func TestFunctionConfigPath(t *testing.T) {
	tests := []struct {
		page string
		want string
	}{
		{"/posts/[slug]", filepath.Join("fns", "posts", "[slug].func.json")},
		{"/", filepath.Join("fns", "index.func.json")},
		{"/api/hello", filepath.Join("fns", "api", "hello.func.json")},
	}
	for _, tt := range tests {
		if got := functionConfigPath("fns", tt.page); got != tt.want {
			t.Errorf("functionConfigPath(%q) = %q, want %q", tt.page, got, tt.want)
		}
	}
}

func TestLinkPrerenderedVariants(t *testing.T) {
	desc := packageDesc(t)
	desc.PrerenderFallbackFalse = map[string][]string{
		"/posts/[slug]": {"/posts/hello", "/posts/world"},
	}
	cfg := writeProject(t, desc)

	p := New(cfg, Options{})
	if _, err := p.Package(context.Background()); err != nil {
		t.Fatalf("Package error: %v", err)
	}

	functionsDir := filepath.Join(cfg.OutputDir(), "functions")
	for _, variant := range []string{"hello", "world"} {
		link := filepath.Join(functionsDir, "posts", variant+".func.json")
		fi, err := os.Lstat(link)
		if err != nil {
			t.Fatalf("variant link missing: %v", err)
		}
		if fi.Mode()&os.ModeSymlink == 0 {
			t.Errorf("%s is not a symlink", link)
		}
		// The link resolves to the parent's config.
		var fnCfg FunctionConfig
		readJSON(t, link, &fnCfg)
		if fnCfg.Operation != OperationPage {
			t.Errorf("resolved operation = %q", fnCfg.Operation)
		}
	}
}

func TestLinkPrerenderedVariantsMissingParent(t *testing.T) {
	desc := packageDesc(t)
	desc.DynamicRoutes = append(desc.DynamicRoutes, build.DynamicRoute{
		Page: "/gallery/[id]",
		Src:  "^/gallery/([^/]+?)(?:/)?$",
		Dest: "/gallery/[id]?id=$1",
	})
	desc.PrerenderFallbackFalse = map[string][]string{
		"/gallery/[id]": {"/gallery/1"},
	}
	cfg := writeProject(t, desc)

	_, err := New(cfg, Options{}).Package(context.Background())
	if err == nil {
		t.Fatal("expected invariant violation for missing parent output")
	}
	e, ok := err.(*errors.Error)
	if !ok || e.Code != "N002" {
		t.Fatalf("error = %v, want code N002", err)
	}
	if !errors.IsInvariant(err) {
		t.Error("missing parent must classify as an invariant violation")
	}
}
