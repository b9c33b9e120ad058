// Package compile turns a resolved build description into the deployment
// platform's routing configuration: one ordered rule list partitioned by
// phase markers, plus the wildcard domain table, image config, and static
// overrides.
//
// The compiler is pure and deterministic. It performs no I/O, never mutates
// its input, and compiles identical descriptions to byte-identical tables.
// The only failure mode is an invariant violation in the upstream build
// graph; malformed optional input (no i18n, no rewrites) is not an error, it
// just disables the corresponding rule groups.
package compile

import (
	"sort"
	"strings"

	"github.com/nextroute-dev/nextroute/pkg/build"
	"github.com/nextroute-dev/nextroute/pkg/pattern"
	"github.com/nextroute-dev/nextroute/pkg/routes"
)

// Reserved path suffixes of partial-render (RSC) fetches.
const (
	rscSuffix         = ".rsc"
	rscPrefetchSuffix = ".prefetch.rsc"
	segmentsDirSuffix = ".segments"
	segmentSuffix     = ".segment.rsc"

	// rootPrefetchOutput is the filesystem name of the root page's prefetch
	// payload; "/" itself has no basename to suffix.
	rootPrefetchOutput = "__index.prefetch.rsc"

	// dataCatchallOutput is the sentinel destination meaning "middleware
	// produced no match for this data request".
	dataCatchallOutput = "__next_data_catchall"
)

// optionalTrailingSlash is the canonical pattern tail the framework emits for
// every path-shaped source.
const optionalTrailingSlash = "(?:/)?$"

// configVersion is the routing configuration document version understood by
// the downstream engine.
const configVersion = 3

// Compile produces the route table for desc.
//
// The rule list is assembled from named fragment builders concatenated in a
// fixed order; a builder whose feature is disabled contributes an empty
// fragment rather than being branched around at the call site, which keeps
// the emission order readable as a single sequence.
func Compile(desc *build.Description) (*routes.RouteTable, error) {
	c := newCompiler(desc)

	dynamic, err := c.dynamicRouteRules()
	if err != nil {
		return nil, err
	}

	rw := c.normalizeRewrites()

	var rules []routes.Rule
	appendAll := func(groups ...[]routes.Rule) {
		for _, g := range groups {
			rules = append(rules, g...)
		}
	}

	appendAll(
		c.priorityRedirects(),
		c.normalizeDataRoutes(true),
		c.localeBlock(),
		c.userHeaders(),
		c.redirects(),
		c.middlewareMatchers(),
		rw.Before,
		c.literalErrorPages(),
		c.denormalizeDataRoutes(true),
		c.appRSCRewrites(),

		marker(routes.PhaseFilesystem),
		c.basePathImageRewrite(),
		c.normalizeDataRoutes(false),
		c.dataCatchallRewrite(),
		c.indexRSCNormalize(),
		rw.After,
		c.rscPathRepair(),

		marker(routes.PhaseResource),
		rw.Fallback,
		c.directoryListing404(),

		marker(routes.PhaseMiss),
		c.staticAsset404(),
		c.localeStripForPublicFiles(),
		c.segmentPrefetchFallback(),

		marker(routes.PhaseRewrite),
		c.denormalizeDataRoutes(false),
		dynamic,
		c.middlewareDataMatch(),

		marker(routes.PhaseHit),
		c.immutableAssetHeaders(),
		c.matchedPathAnnotations(),

		marker(routes.PhaseError),
		c.notFoundFallback(),
		c.serverErrorFallback(),
	)

	return &routes.RouteTable{
		Version:   configVersion,
		Routes:    rules,
		Wildcard:  c.wildcardTable(),
		Images:    projectImages(desc.Images),
		Overrides: c.staticOverrides(),
	}, nil
}

// compiler holds the description plus the derived fragments every builder
// needs: escaped build ID, base path prefixes, and the locale alternation.
type compiler struct {
	desc *build.Description

	// prefix is the base path without a trailing slash ("" or "/docs");
	// prefixSlash always ends in a slash ("/" or "/docs/").
	prefix      string
	prefixSlash string

	escBuildID string

	// localeAlt is the escaped alternation of locale codes ("en|fr|en\.US"),
	// empty when i18n is unset.
	localeAlt string
}

func newCompiler(desc *build.Description) *compiler {
	c := &compiler{desc: desc}

	base := pattern.Join(desc.BasePath)
	if base == "/" {
		c.prefix = ""
		c.prefixSlash = "/"
	} else {
		c.prefix = base
		c.prefixSlash = base + "/"
	}

	c.escBuildID = pattern.Escape(desc.BuildID)

	if desc.I18N != nil {
		escaped := make([]string, len(desc.I18N.Locales))
		for i, locale := range desc.I18N.Locales {
			escaped[i] = pattern.Escape(locale)
		}
		c.localeAlt = strings.Join(escaped, "|")
	}
	return c
}

func marker(p routes.Phase) []routes.Rule {
	return []routes.Rule{{Handle: p}}
}

// join prefixes parts with the base path.
func (c *compiler) join(parts ...string) string {
	return pattern.Join(append([]string{c.desc.BasePath}, parts...)...)
}

// rootSrc matches exactly the base path root ("/" or "/docs", optional
// trailing slash).
func (c *compiler) rootSrc() string {
	return "^" + c.prefix + "/?$"
}

// catchAllSrc matches every path under the base path, including the root.
func (c *compiler) catchAllSrc() string {
	return "^" + c.prefix + "/.*$"
}

// nonLocaleSrc matches any path that is neither under _next nor already
// locale-prefixed, capturing the remainder.
func (c *compiler) nonLocaleSrc() string {
	return "^" + c.prefixSlash + "(?!(?:_next/.*|" + c.localeAlt + ")(?:/.*|$))(.*)$"
}

func convertConditions(in []build.Condition) []routes.Condition {
	if len(in) == 0 {
		return nil
	}
	out := make([]routes.Condition, len(in))
	for i, cond := range in {
		out[i] = routes.Condition{
			Type:  routes.ConditionType(cond.Type),
			Key:   cond.Key,
			Value: cond.Value,
		}
	}
	return out
}

// headerCondition is shorthand for a presence-only header condition, usable
// in both Has and Missing lists.
func headerCondition(name string) []routes.Condition {
	return []routes.Condition{{Type: routes.ConditionHeader, Key: name}}
}

// sortedKeys returns the map's keys in lexical order so that iteration cannot
// introduce nondeterminism into output or error reporting.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
