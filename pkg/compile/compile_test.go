package compile

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/dlclark/regexp2"

	"github.com/nextroute-dev/nextroute/internal/errors"
	"github.com/nextroute-dev/nextroute/pkg/build"
	"github.com/nextroute-dev/nextroute/pkg/routes"
)

// minimalDesc returns a small but realistic description: pages tree, one
// static-ish rewrite, one redirect, a 404 output.
func minimalDesc() *build.Description {
	return &build.Description{
		BuildID:      "abc123",
		HasPagesDir:  true,
		Has404Output: true,
		Rewrites: build.RewriteGroups{
			AfterFiles: []build.Rewrite{
				{Src: `^/proxy/(.*)(?:/)?$`, Dest: "/api/proxy?path=$1"},
			},
		},
		Redirects: []build.Redirect{
			{Src: "^/old-blog/(.*)$", Dest: "/blog/$1", StatusCode: 308},
		},
		DynamicRoutes: []build.DynamicRoute{
			{Page: "/posts/[slug]", Src: "^/posts/([^/]+?)(?:/)?$", Dest: "/posts/[slug]?slug=$1"},
		},
	}
}

func fullDesc() *build.Description {
	detection := true
	d := minimalDesc()
	d.BasePath = "/docs"
	d.TrailingSlash = true
	d.HasAppDir = true
	d.CacheComponents = true
	d.ClientSegmentCache = true
	d.Has500Output = true
	d.HasNotFoundOutput = true
	d.Middleware = &build.Middleware{
		Path: "middleware",
		Matchers: []build.MiddlewareMatcher{
			{Regexp: "^/docs/dashboard(?:/.*)?$"},
		},
	}
	d.I18N = &build.I18N{
		DefaultLocale:   "en-US",
		Locales:         []string{"en-US", "fr", "nl-NL"},
		LocaleDetection: &detection,
		Domains: []build.DomainLocale{
			{Domain: "example.fr", DefaultLocale: "fr"},
		},
	}
	d.Headers = []build.Header{
		{Src: "^/docs/(.*)$", Headers: map[string]string{"x-frame-options": "DENY"}, Priority: true},
	}
	d.Images = &build.ImageConfig{
		Sizes: []int{640, 1080},
		RemotePatterns: []build.RemotePattern{
			{Protocol: "https", Hostname: "*.example.com", Pathname: "/media/**"},
		},
	}
	return d
}

func mustCompile(t *testing.T, desc *build.Description) *routes.RouteTable {
	t.Helper()
	table, err := Compile(desc)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	return table
}

// compileSrc compiles a generated source with a backtracking engine.
// Generated patterns use lookaheads and (?<name>) groups from the routing
// engine's grammar, which Go's RE2 cannot evaluate.
func compileSrc(t *testing.T, src string) *regexp2.Regexp {
	t.Helper()
	re, err := regexp2.Compile(src, regexp2.None)
	if err != nil {
		t.Fatalf("generated source %q does not compile: %v", src, err)
	}
	return re
}

func matches(t *testing.T, src, path string) bool {
	t.Helper()
	ok, err := compileSrc(t, src).MatchString(path)
	if err != nil {
		t.Fatalf("matching %q against %q: %v", path, src, err)
	}
	return ok
}

// namedRef rewrites the engine's $name capture references into the ${name}
// form the test regex engine understands; numeric references pass through.
var namedRef = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)`)

func TestCompileDeterminism(t *testing.T) {
	for _, tt := range []struct {
		name string
		desc func() *build.Description
	}{
		{name: "minimal", desc: minimalDesc},
		{name: "full", desc: fullDesc},
	} {
		t.Run(tt.name, func(t *testing.T) {
			a := mustCompile(t, tt.desc())
			b := mustCompile(t, tt.desc())

			aBytes, err := a.MarshalIndent()
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			bBytes, err := b.MarshalIndent()
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if !bytes.Equal(aBytes, bBytes) {
				t.Error("identical descriptions produced different bytes")
			}
		})
	}
}

func TestPhaseOrdering(t *testing.T) {
	for _, tt := range []struct {
		name string
		desc func() *build.Description
	}{
		{name: "minimal", desc: minimalDesc},
		{name: "full", desc: fullDesc},
		{name: "empty", desc: func() *build.Description { return &build.Description{BuildID: "x"} }},
	} {
		t.Run(tt.name, func(t *testing.T) {
			table := mustCompile(t, tt.desc())
			if err := routes.CheckPhaseOrder(table.Routes); err != nil {
				t.Fatalf("phase order violated: %v", err)
			}
			markers := 0
			for _, r := range table.Routes {
				if r.IsMarker() {
					markers++
				}
			}
			if markers != 6 {
				t.Errorf("marker count = %d, want 6", markers)
			}
		})
	}
}

// phaseOf returns the marker preceding index i ("" for the pre-filesystem
// region).
func phaseOf(table *routes.RouteTable, i int) routes.Phase {
	var current routes.Phase
	for j := 0; j <= i; j++ {
		if table.Routes[j].IsMarker() {
			current = table.Routes[j].Handle
		}
	}
	return current
}

func TestRulePhasePlacement(t *testing.T) {
	table := mustCompile(t, fullDesc())

	find := func(pred func(routes.Rule) bool) int {
		for i, r := range table.Routes {
			if pred(r) {
				return i
			}
		}
		return -1
	}

	// User headers, redirects, middleware, beforeFiles all precede the
	// filesystem marker.
	if i := find(func(r routes.Rule) bool { return r.MiddlewarePath != "" }); i == -1 {
		t.Fatal("middleware matcher not emitted")
	} else if phaseOf(table, i) != "" {
		t.Errorf("middleware matcher in phase %q, want pre-filesystem", phaseOf(table, i))
	}

	// afterFiles rewrites live between filesystem and resource.
	if i := find(func(r routes.Rule) bool { return strings.Contains(r.Src, "/proxy/") }); i == -1 {
		t.Fatal("afterFiles rewrite not emitted")
	} else if phaseOf(table, i) != routes.PhaseFilesystem {
		t.Errorf("afterFiles rewrite in phase %q, want filesystem", phaseOf(table, i))
	}

	// Dynamic routes follow the rewrite marker.
	if i := find(func(r routes.Rule) bool { return strings.Contains(r.Src, "/posts/") }); i == -1 {
		t.Fatal("dynamic route not emitted")
	} else if phaseOf(table, i) != routes.PhaseRewrite {
		t.Errorf("dynamic route in phase %q, want rewrite", phaseOf(table, i))
	}

	// Immutable caching headers follow the hit marker.
	if i := find(func(r routes.Rule) bool {
		return r.Headers[routes.HeaderCacheControl] == routes.ImmutableCacheControl
	}); i == -1 {
		t.Fatal("immutable asset rule not emitted")
	} else if phaseOf(table, i) != routes.PhaseHit {
		t.Errorf("immutable asset rule in phase %q, want hit", phaseOf(table, i))
	}
}

func TestI18NAllOrNothing(t *testing.T) {
	t.Run("unset emits no locale rules", func(t *testing.T) {
		table := mustCompile(t, minimalDesc())
		for i, r := range table.Routes {
			if r.Locale != nil {
				t.Errorf("rule %d has a locale directive without i18n", i)
			}
			if strings.Contains(r.Src, "$wildcard") || strings.Contains(r.Dest, "$wildcard") {
				t.Errorf("rule %d references $wildcard without i18n", i)
			}
		}
		if table.Wildcard != nil {
			t.Error("wildcard table emitted without i18n")
		}
	})

	t.Run("set emits every locale group", func(t *testing.T) {
		table := mustCompile(t, fullDesc())

		var wildcardRules, localeDirectives, defaultRewrites int
		for _, r := range table.Routes {
			if strings.Contains(r.Dest, "$wildcard") {
				wildcardRules++
			}
			if r.Locale != nil {
				localeDirectives++
			}
			if strings.Contains(r.Dest, "/en-US") && r.Continue && r.Locale == nil && !strings.Contains(r.Dest, "$wildcard") {
				defaultRewrites++
			}
		}
		if wildcardRules != 2 {
			t.Errorf("wildcard substitution rules = %d, want 2", wildcardRules)
		}
		// Domain redirect plus root detection redirect.
		if localeDirectives != 2 {
			t.Errorf("locale directives = %d, want 2", localeDirectives)
		}
		if defaultRewrites < 2 {
			t.Errorf("default-locale rewrites = %d, want >= 2", defaultRewrites)
		}
		if len(table.Wildcard) != 1 || table.Wildcard[0].Domain != "example.fr" {
			t.Errorf("wildcard table = %+v", table.Wildcard)
		}
	})
}

func TestLocaleEscaping(t *testing.T) {
	d := minimalDesc()
	d.I18N = &build.I18N{
		DefaultLocale: "en.US",
		Locales:       []string{"en.US", "fr"},
	}
	table := mustCompile(t, d)

	var stripRule *routes.Rule
	for i := range table.Routes {
		r := &table.Routes[i]
		if r.Check && strings.Contains(r.Src, "en") && r.Dest == "/$1" {
			stripRule = r
			break
		}
	}
	if stripRule == nil {
		t.Fatal("locale strip rule not found")
	}
	if !strings.Contains(stripRule.Src, `en\.US`) {
		t.Fatalf("locale code not escaped in %q", stripRule.Src)
	}

	if !matches(t, stripRule.Src, "/en.US/about") {
		t.Error("escaped pattern should match the literal locale")
	}
	if matches(t, stripRule.Src, "/enXUS/about") {
		t.Error("escaped pattern must not match a lookalike locale")
	}
}

// applyRule runs a rule's regex rewrite against a path, resolving capture
// references in the destination the way the routing engine does.
func applyRule(t *testing.T, r routes.Rule, path string) (string, bool) {
	t.Helper()
	re := compileSrc(t, r.Src)
	ok, err := re.MatchString(path)
	if err != nil {
		t.Fatalf("matching %q: %v", path, err)
	}
	if !ok {
		return "", false
	}
	dest := namedRef.ReplaceAllString(r.Dest, "${$1}")
	out, err := re.Replace(path, dest, -1, -1)
	if err != nil {
		t.Fatalf("rewriting %q: %v", path, err)
	}
	return out, true
}

func TestDataRouteRoundTrip(t *testing.T) {
	d := minimalDesc()
	d.Middleware = &build.Middleware{Path: "middleware"}

	c := newCompiler(d)
	denorm := c.denormalizeDataRoutes(false)
	norm := c.normalizeDataRoutes(false)
	if len(denorm) != 2 || len(norm) != 3 {
		t.Fatalf("rule counts: denorm=%d norm=%d", len(denorm), len(norm))
	}

	// Canonical -> data.
	dataPath, ok := applyRule(t, denorm[1], "/blog/post-1")
	if !ok {
		t.Fatal("denormalize general rule did not match /blog/post-1")
	}
	if dataPath != "/_next/data/abc123/blog/post-1.json" {
		t.Fatalf("denormalized path = %q", dataPath)
	}

	// Marker-injection rule matches the data path only when the header is
	// absent; applying it twice changes nothing (idempotent tagging).
	if !matches(t, norm[0].Src, dataPath) {
		t.Errorf("header injection rule does not match %q", dataPath)
	}
	if norm[0].Headers[routes.HeaderNextData] != "1" {
		t.Errorf("header injection rule headers = %v", norm[0].Headers)
	}

	// Data -> canonical.
	back, ok := applyRule(t, norm[2], dataPath)
	if !ok {
		t.Fatal("normalize general rule did not match the data path")
	}
	if back != "/blog/post-1" {
		t.Errorf("round trip = %q, want /blog/post-1", back)
	}

	// Root special case.
	rootData, ok := applyRule(t, denorm[0], "/")
	if !ok {
		t.Fatal("denormalize root rule did not match /")
	}
	if rootData != "/_next/data/abc123/index.json" {
		t.Errorf("root data path = %q", rootData)
	}
	rootBack, ok := applyRule(t, norm[1], rootData)
	if !ok {
		t.Fatal("normalize index rule did not match the root data path")
	}
	if rootBack != "/" {
		t.Errorf("root round trip = %q, want /", rootBack)
	}
}

func TestDynamicRoute404Guard(t *testing.T) {
	guardSrc := "^/_next/data/(.*)$"

	t.Run("pages without middleware", func(t *testing.T) {
		table := mustCompile(t, minimalDesc())

		guards, firstGuard, firstDynamic := 0, -1, -1
		for i, r := range table.Routes {
			if r.Src == guardSrc && r.Status == 404 && phaseOf(table, i) == routes.PhaseRewrite {
				guards++
				if firstGuard == -1 {
					firstGuard = i
				}
			}
			if r.Check && strings.Contains(r.Src, "/posts/") && firstDynamic == -1 {
				firstDynamic = i
			}
		}
		if guards != 1 {
			t.Fatalf("guard count = %d, want 1", guards)
		}
		if firstDynamic == -1 || firstGuard > firstDynamic {
			t.Errorf("guard at %d must precede first dynamic route at %d", firstGuard, firstDynamic)
		}
	})

	t.Run("middleware present", func(t *testing.T) {
		d := minimalDesc()
		d.Middleware = &build.Middleware{Path: "middleware"}
		table := mustCompile(t, d)
		for i, r := range table.Routes {
			if r.Src == guardSrc && r.Status == 404 && phaseOf(table, i) == routes.PhaseRewrite {
				t.Errorf("guard emitted at %d despite middleware", i)
			}
		}
	})
}

func TestFallbackFalseExclusion(t *testing.T) {
	d := minimalDesc()
	d.PrerenderFallbackFalse = map[string][]string{
		"/posts/[slug]": {"/posts/a"},
	}
	table := mustCompile(t, d)

	for i, r := range table.Routes {
		if strings.Contains(r.Src, "/posts/([^/]+?)") {
			t.Errorf("fallback-false dynamic route still emitted at %d", i)
		}
	}
}

func TestFallbackFalseInvariant(t *testing.T) {
	d := minimalDesc()
	d.PrerenderFallbackFalse = map[string][]string{
		"/ghosts/[id]": {"/ghosts/1"},
	}
	_, err := Compile(d)
	if err == nil {
		t.Fatal("expected invariant violation for unknown fallback-false page")
	}
	if !errors.IsInvariant(err) {
		t.Errorf("error %v is not an invariant violation", err)
	}
}

func TestNotFoundPrecedence(t *testing.T) {
	tests := []struct {
		name        string
		hasNotFound bool
		has404      bool
		want        string
	}{
		{name: "not-found output wins", hasNotFound: true, has404: true, want: "/_not-found"},
		{name: "static 404 next", has404: true, want: "/404"},
		{name: "error page last", want: "/_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := minimalDesc()
			d.HasNotFoundOutput = tt.hasNotFound
			d.Has404Output = tt.has404
			table := mustCompile(t, d)

			var dest string
			for i, r := range table.Routes {
				if r.Status == 404 && phaseOf(table, i) == routes.PhaseError {
					dest = r.Dest
				}
			}
			if dest != tt.want {
				t.Errorf("not-found fallback dest = %q, want %q", dest, tt.want)
			}
		})
	}
}

func TestBasePathPrefixing(t *testing.T) {
	d := minimalDesc()
	d.BasePath = "/docs"
	table := mustCompile(t, d)

	for i, r := range table.Routes {
		if r.IsMarker() || r.Src == "" {
			continue
		}
		// User-supplied patterns (rewrites, redirects, dynamic routes) are
		// already base-path qualified by the framework; generated rules must
		// anchor under the base path or the root-relative image endpoint.
		if strings.HasPrefix(r.Src, "^/docs") || strings.HasPrefix(r.Src, "^/old-blog") ||
			strings.HasPrefix(r.Src, "^/proxy") || strings.HasPrefix(r.Src, "^/posts") {
			continue
		}
		t.Errorf("rule %d source %q escapes the base path", i, r.Src)
	}
}

func TestLiteralErrorPagesMatchUnprefixedPath(t *testing.T) {
	rules := newCompiler(i18nDesc(nil)).literalErrorPages()
	if len(rules) != 2 {
		t.Fatalf("got %d rules", len(rules))
	}

	for i, want := range []struct {
		status int
		page   string
	}{{404, "404"}, {500, "500"}} {
		r := rules[i]
		if r.Status != want.status || !r.Continue {
			t.Errorf("rule %d = status %d continue %v", i, r.Status, r.Continue)
		}
		// The rule stands on its own: it matches the bare page as well as
		// every locale-prefixed form, without an earlier locale rewrite.
		for _, path := range []string{"/" + want.page, "/fr/" + want.page, "/nl-NL/" + want.page + "/"} {
			if !matches(t, r.Src, path) {
				t.Errorf("pattern %q does not match %q", r.Src, path)
			}
		}
		if matches(t, r.Src, "/de/"+want.page) {
			t.Errorf("pattern %q matches an unconfigured locale", r.Src)
		}
	}
}

func TestLiteralErrorPagesWithoutI18N(t *testing.T) {
	rules := newCompiler(minimalDesc()).literalErrorPages()
	if src := rules[0].Src; src != "^/404(?:/)?$" {
		t.Errorf("404 src = %q", src)
	}
	if !matches(t, rules[0].Src, "/404") || matches(t, rules[0].Src, "/en/404") {
		t.Error("plain pattern should match only the bare page")
	}
}
