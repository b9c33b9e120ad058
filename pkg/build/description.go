// Package build defines the resolved build description handed to the route
// compiler: everything the framework's build step knows about pages,
// rewrites, redirects, headers, i18n, middleware, and feature flags, plus the
// derived facts the packaging step computes from the build's outputs.
//
// The description is immutable for the compiler's lifetime. It is typically
// produced as a JSON document by the framework build and decoded here.
package build

// Description is the complete compiler input.
type Description struct {
	// BuildID qualifies data routes and hashed static assets.
	BuildID string `json:"buildId"`

	// BasePath prefixes every generated source and destination. Empty or
	// "/docs" style, never trailing-slashed.
	BasePath string `json:"basePath,omitempty"`

	// TrailingSlash mirrors the framework's trailingSlash setting.
	TrailingSlash bool `json:"trailingSlash,omitempty"`

	I18N *I18N `json:"i18n,omitempty"`

	Rewrites  RewriteGroups `json:"rewrites"`
	Redirects []Redirect    `json:"redirects,omitempty"`
	Headers   []Header      `json:"headers,omitempty"`

	// DynamicRoutes are the framework's dynamic page routes in match order.
	DynamicRoutes []DynamicRoute `json:"dynamicRoutes,omitempty"`

	Middleware *Middleware `json:"middleware,omitempty"`

	// Feature flags.
	CacheComponents    bool `json:"cacheComponents,omitempty"`
	ClientSegmentCache bool `json:"clientSegmentCache,omitempty"`
	HasAppDir          bool `json:"hasAppDir,omitempty"`
	HasPagesDir        bool `json:"hasPagesDir,omitempty"`

	// Derived facts supplied by the packaging step.
	HasNotFoundOutput bool `json:"hasNotFoundOutput,omitempty"`
	Has404Output      bool `json:"has404Output,omitempty"`
	Has500Output      bool `json:"has500Output,omitempty"`

	// PrerenderFallbackFalse maps a dynamic page using fallback: false to the
	// concrete paths that were actually prerendered. Paths outside the set
	// must 404 instead of rendering on demand.
	PrerenderFallbackFalse map[string][]string `json:"prerenderFallbackFalse,omitempty"`

	// Functions are the server function outputs the build produced.
	Functions []FunctionOutput `json:"functions,omitempty"`

	Images *ImageConfig `json:"images,omitempty"`
}

// I18N holds the framework's internationalization settings.
type I18N struct {
	DefaultLocale string `json:"defaultLocale"`

	// Locales is ordered; pattern alternations preserve this order so output
	// stays deterministic.
	Locales []string `json:"locales"`

	Domains []DomainLocale `json:"domains,omitempty"`

	// LocaleDetection enables Accept-Language/cookie based redirects.
	// The framework default is on.
	LocaleDetection *bool `json:"localeDetection,omitempty"`
}

// DetectionEnabled reports whether locale detection is active (default true).
func (i *I18N) DetectionEnabled() bool {
	return i.LocaleDetection == nil || *i.LocaleDetection
}

// DomainLocale maps locales to an external domain.
type DomainLocale struct {
	Domain        string   `json:"domain"`
	DefaultLocale string   `json:"defaultLocale"`
	Locales       []string `json:"locales,omitempty"`
	HTTP          bool     `json:"http,omitempty"`
}

// RewriteGroups are the three user-declared rewrite phases.
type RewriteGroups struct {
	BeforeFiles []Rewrite `json:"beforeFiles,omitempty"`
	AfterFiles  []Rewrite `json:"afterFiles,omitempty"`
	Fallback    []Rewrite `json:"fallback,omitempty"`
}

// Rewrite is one user-declared conditional rewrite, already regex-compiled by
// the framework (Src is a regex source, Dest a destination template).
type Rewrite struct {
	Src     string      `json:"src"`
	Dest    string      `json:"dest"`
	Has     []Condition `json:"has,omitempty"`
	Missing []Condition `json:"missing,omitempty"`
}

// Redirect is one user-declared redirect.
type Redirect struct {
	Src        string      `json:"src"`
	Dest       string      `json:"dest"`
	StatusCode int         `json:"statusCode,omitempty"`
	Priority   bool        `json:"priority,omitempty"`
	Has        []Condition `json:"has,omitempty"`
	Missing    []Condition `json:"missing,omitempty"`
}

// Header is one user-declared header group.
type Header struct {
	Src      string            `json:"src"`
	Headers  map[string]string `json:"headers"`
	Priority bool              `json:"priority,omitempty"`
	Has      []Condition       `json:"has,omitempty"`
	Missing  []Condition       `json:"missing,omitempty"`
}

// DynamicRoute is one dynamic page route from the routes manifest.
type DynamicRoute struct {
	// Page is the page identity (e.g. "/posts/[slug]").
	Page string `json:"page"`

	Src     string      `json:"src"`
	Dest    string      `json:"dest"`
	Has     []Condition `json:"has,omitempty"`
	Missing []Condition `json:"missing,omitempty"`
}

// FunctionOutput is one server function the build produced.
type FunctionOutput struct {
	// Page is the page identity (e.g. "/posts/[slug]", "/api/hello").
	Page string `json:"page"`

	// App marks an App-Router page.
	App bool `json:"app,omitempty"`

	// Runtime is the function runtime tag. Empty means the default node
	// runtime.
	Runtime string `json:"runtime,omitempty"`
}

// Middleware describes the root middleware function and its matchers.
type Middleware struct {
	// Path identifies the middleware function for downstream dispatch.
	Path string `json:"path"`

	Matchers []MiddlewareMatcher `json:"matchers,omitempty"`
}

// MiddlewareMatcher is one compiled middleware matcher.
type MiddlewareMatcher struct {
	Regexp  string      `json:"regexp"`
	Has     []Condition `json:"has,omitempty"`
	Missing []Condition `json:"missing,omitempty"`
}

// Condition mirrors the platform's has/missing condition shape on the input
// side. Types: header, cookie, query, host.
type Condition struct {
	Type  string `json:"type"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
}

// ImageConfig is the framework's image optimization configuration, with
// hostname/pathname patterns still in glob form.
type ImageConfig struct {
	Sizes                  []int           `json:"sizes,omitempty"`
	Qualities              []int           `json:"qualities,omitempty"`
	Domains                []string        `json:"domains,omitempty"`
	RemotePatterns         []RemotePattern `json:"remotePatterns,omitempty"`
	LocalPatterns          []LocalPattern  `json:"localPatterns,omitempty"`
	MinimumCacheTTL        int             `json:"minimumCacheTTL,omitempty"`
	Formats                []string        `json:"formats,omitempty"`
	DangerouslyAllowSVG    bool            `json:"dangerouslyAllowSVG,omitempty"`
	ContentSecurityPolicy  string          `json:"contentSecurityPolicy,omitempty"`
	ContentDispositionType string          `json:"contentDispositionType,omitempty"`
}

// RemotePattern is a glob-form remote image pattern.
type RemotePattern struct {
	Protocol string `json:"protocol,omitempty"`
	Hostname string `json:"hostname"`
	Port     string `json:"port,omitempty"`
	Pathname string `json:"pathname,omitempty"`
	Search   string `json:"search,omitempty"`
}

// LocalPattern is a glob-form local image pattern.
type LocalPattern struct {
	Pathname string `json:"pathname,omitempty"`
	Search   string `json:"search,omitempty"`
}

// HasMiddleware reports whether root middleware exists.
func (d *Description) HasMiddleware() bool {
	return d.Middleware != nil
}

// ShouldResolveMiddlewareData reports whether data routes must be normalized
// and denormalized around middleware: a pages-style route tree and active
// middleware must both exist.
func (d *Description) ShouldResolveMiddlewareData() bool {
	return d.HasPagesDir && d.HasMiddleware()
}

// ShouldHandlePrefetchRSC reports whether rewrites must preserve prefetch RSC
// suffixes. Cache components keep prefetch payloads addressable as distinct
// paths.
func (d *Description) ShouldHandlePrefetchRSC() bool {
	return d.HasAppDir && d.CacheComponents
}

// ShouldHandleSegmentPrefetches reports whether rewrites must preserve
// segment-prefetch suffixes.
func (d *Description) ShouldHandleSegmentPrefetches() bool {
	return d.HasAppDir && d.ClientSegmentCache
}
