package compile

import (
	"strings"

	"github.com/nextroute-dev/nextroute/internal/errors"
	"github.com/nextroute-dev/nextroute/pkg/build"
	"github.com/nextroute-dev/nextroute/pkg/routes"
)

// priorityRedirects emits redirects flagged priority ahead of everything
// else. They carry continue so the locale handling that follows cannot
// shadow them.
func (c *compiler) priorityRedirects() []routes.Rule {
	var rules []routes.Rule
	for _, r := range c.desc.Redirects {
		if !r.Priority {
			continue
		}
		rule := convertRedirect(r)
		rule.Continue = true
		rules = append(rules, rule)
	}
	return rules
}

// redirects emits the remaining, non-priority redirects.
func (c *compiler) redirects() []routes.Rule {
	var rules []routes.Rule
	for _, r := range c.desc.Redirects {
		if r.Priority {
			continue
		}
		rules = append(rules, convertRedirect(r))
	}
	return rules
}

func convertRedirect(r build.Redirect) routes.Rule {
	status := r.StatusCode
	if status == 0 {
		status = 308
	}
	return routes.Rule{
		Src:     r.Src,
		Headers: map[string]string{routes.HeaderLocation: r.Dest},
		Status:  status,
		Has:     convertConditions(r.Has),
		Missing: convertConditions(r.Missing),
	}
}

// userHeaders emits user-declared header groups. Every header rule continues
// so it can stack with later matches; priority headers are additionally
// important, which lets them win over engine defaults.
func (c *compiler) userHeaders() []routes.Rule {
	var rules []routes.Rule
	for _, h := range c.desc.Headers {
		headers := make(map[string]string, len(h.Headers))
		for k, v := range h.Headers {
			headers[k] = v
		}
		rules = append(rules, routes.Rule{
			Src:       h.Src,
			Headers:   headers,
			Has:       convertConditions(h.Has),
			Missing:   convertConditions(h.Missing),
			Continue:  true,
			Important: h.Priority,
		})
	}
	return rules
}

// middlewareMatchers emits one dispatch directive per middleware matcher.
// Matches continue with override: middleware effects replace earlier route
// effects and evaluation still proceeds so the matched page resolves.
func (c *compiler) middlewareMatchers() []routes.Rule {
	if !c.desc.HasMiddleware() {
		return nil
	}
	mw := c.desc.Middleware
	var rules []routes.Rule
	for _, m := range mw.Matchers {
		rules = append(rules, routes.Rule{
			Src:            m.Regexp,
			Has:            convertConditions(m.Has),
			Missing:        convertConditions(m.Missing),
			MiddlewarePath: mw.Path,
			Continue:       true,
			Override:       true,
		})
	}
	return rules
}

// literalErrorPages short-circuits requests whose path literally is /404 or
// /500 (optionally locale-prefixed) to that status, unless the request is an
// on-demand revalidation carrying the bypass header.
func (c *compiler) literalErrorPages() []routes.Rule {
	statuses := []int{404, 500}
	rules := make([]routes.Rule, 0, len(statuses))
	for _, status := range statuses {
		page := "/404"
		if status == 500 {
			page = "/500"
		}
		var src string
		if c.desc.I18N != nil {
			// The separator is optional so a bare, unprefixed /404 matches
			// without relying on an earlier locale rewrite.
			src = "^" + c.join("/(?:"+c.localeAlt+")?") + "[/]?" + page[1:] + optionalTrailingSlash
		} else {
			src = "^" + c.join(page) + optionalTrailingSlash
		}
		rules = append(rules, routes.Rule{
			Src:      src,
			Status:   status,
			Missing:  headerCondition(routes.HeaderPrerenderRevalidate),
			Continue: true,
		})
	}
	return rules
}

// appRSCRewrites rewrites requests carrying the RSC header to the
// .rsc-suffixed variant of their page, tagging Vary so caches keep HTML and
// RSC payloads apart.
func (c *compiler) appRSCRewrites() []routes.Rule {
	if !c.desc.HasAppDir {
		return nil
	}
	vary := c.rscVaryValue()
	rscHas := []routes.Condition{{Type: routes.ConditionHeader, Key: routes.HeaderRSC, Value: "1"}}
	return []routes.Rule{
		{
			Src:      c.rootSrc(),
			Has:      rscHas,
			Dest:     c.join("/index" + rscSuffix),
			Headers:  map[string]string{routes.HeaderVary: vary},
			Continue: true,
			Override: true,
		},
		{
			Src:      "^" + c.join(`/((?!.+\.rsc).+?)`) + optionalTrailingSlash,
			Has:      rscHas,
			Dest:     c.join("/$1" + rscSuffix),
			Headers:  map[string]string{routes.HeaderVary: vary},
			Continue: true,
			Override: true,
		},
	}
}

func (c *compiler) rscVaryValue() string {
	value := "RSC, Next-Router-State-Tree, Next-Router-Prefetch"
	if c.desc.ShouldHandleSegmentPrefetches() {
		value += ", Next-Router-Segment-Prefetch"
	}
	return value
}

// basePathImageRewrite canonicalizes the image optimizer endpoint when a base
// path is configured, since the optimizer itself is mounted at the root.
func (c *compiler) basePathImageRewrite() []routes.Rule {
	if c.desc.BasePath == "" {
		return nil
	}
	return []routes.Rule{{
		Src:   "^" + c.join("/_next/image") + "/?$",
		Dest:  "/_next/image",
		Check: true,
	}}
}

// dataCatchallRewrite forces the rewrite phase to run for unmatched
// _next/data requests instead of falling straight through to 404. Only
// needed when no middleware resolves data requests.
func (c *compiler) dataCatchallRewrite() []routes.Rule {
	if c.desc.HasMiddleware() {
		return nil
	}
	return []routes.Rule{{
		Src:   "^" + c.join("/_next/data/(.*)") + "$",
		Dest:  c.join("/_next/data/$1"),
		Check: true,
	}}
}

// indexRSCNormalize maps index-based RSC request paths to their root-based
// form before user rewrites run, so rewrites written against "/" apply to
// the root RSC fetch too. rscPathRepair restores the filesystem names after
// the rewrite pass.
func (c *compiler) indexRSCNormalize() []routes.Rule {
	if !c.desc.HasAppDir {
		return nil
	}
	return []routes.Rule{{
		Src:      "^" + c.join(`/index(\.rsc|\.prefetch\.rsc)`) + "$",
		Dest:     c.join("/$1"),
		Continue: true,
	}}
}

// rscPathRepair maps root-form RSC paths left over after the rewrite pass
// back to the index-based filesystem outputs.
func (c *compiler) rscPathRepair() []routes.Rule {
	if !c.desc.HasAppDir {
		return nil
	}
	return []routes.Rule{
		{
			Src:   "^" + c.join(`/\.prefetch\.rsc`) + "$",
			Dest:  c.join("/" + rootPrefetchOutput),
			Check: true,
		},
		{
			Src:   "^" + c.join(`/\.rsc`) + "$",
			Dest:  c.join("/index" + rscSuffix),
			Check: true,
		},
	}
}

// directoryListing404 ensures a matched directory without an index output
// serves the not-found page instead of a listing.
func (c *compiler) directoryListing404() []routes.Rule {
	return []routes.Rule{{
		Src:    c.catchAllSrc(),
		Status: 404,
	}}
}

// staticAsset404 turns missing framework static assets into plain 404s in
// the miss phase; without it they would fall through to page resolution.
func (c *compiler) staticAsset404() []routes.Rule {
	return []routes.Rule{{
		Src:    "^" + c.join("/_next/static/(?:[^/]+/pages|pages|chunks|runtime|css|image|media)/.+") + "$",
		Status: 404,
		Check:  true,
		Dest:   "$0",
	}}
}

// segmentPrefetchFallback strips a segment-prefetch suffix down to the
// canonical prefetch path when no per-segment output exists.
func (c *compiler) segmentPrefetchFallback() []routes.Rule {
	if !c.desc.ShouldHandleSegmentPrefetches() {
		return nil
	}
	dest := rscSuffix
	if c.desc.ShouldHandlePrefetchRSC() {
		dest = rscPrefetchSuffix
	}
	return []routes.Rule{{
		Src:   "^" + c.join(`/(.+?)\`+segmentsDirSuffix+`/.+\.segment\.rsc`) + optionalTrailingSlash,
		Dest:  c.join("/$1" + dest),
		Check: true,
	}}
}

// dynamicRouteRules emits the dynamic page routes, omitting fallback-false
// pages (their prerendered paths are filesystem outputs; everything else
// must fall through to 404) and inserting the synthetic _next/data guard
// when a pages tree exists without middleware.
func (c *compiler) dynamicRouteRules() ([]routes.Rule, error) {
	known := make(map[string]bool, len(c.desc.DynamicRoutes))
	for _, r := range c.desc.DynamicRoutes {
		known[r.Page] = true
	}
	for _, page := range sortedKeys(c.desc.PrerenderFallbackFalse) {
		if !known[page] {
			return nil, errors.New("N001").WithDetail(
				"page %s is marked fallback-false but has no dynamic route", page)
		}
	}

	needsGuard := c.desc.HasPagesDir && !c.desc.HasMiddleware()
	guarded := false

	var rules []routes.Rule
	for _, r := range c.desc.DynamicRoutes {
		if _, fallbackFalse := c.desc.PrerenderFallbackFalse[r.Page]; fallbackFalse {
			continue
		}
		if needsGuard && !guarded && !strings.Contains(r.Src, "_next/data") {
			rules = append(rules, routes.Rule{
				Src:    "^" + c.join("/_next/data/(.*)") + "$",
				Status: 404,
			})
			guarded = true
		}
		rules = append(rules, routes.Rule{
			Src:     r.Src,
			Dest:    r.Dest,
			Has:     convertConditions(r.Has),
			Missing: convertConditions(r.Missing),
			Check:   true,
		})
	}
	return rules, nil
}

// middlewareDataMatch tags build-id-qualified data requests with the matched
// path for middleware resolution and catches the remainder with the sentinel
// output meaning "middleware produced no match".
func (c *compiler) middlewareDataMatch() []routes.Rule {
	if !c.desc.ShouldResolveMiddlewareData() {
		return nil
	}
	src := "^" + c.join("/_next/data/", c.escBuildID, `/(.*)\.json`) + "$"
	return []routes.Rule{
		{
			Src:      src,
			Headers:  map[string]string{routes.HeaderNextMatchedPath: "/$1"},
			Continue: true,
			Override: true,
		},
		{
			Src:  src,
			Dest: dataCatchallOutput,
		},
	}
}

// immutableAssetHeaders marks framework-emitted hashed assets immutable.
func (c *compiler) immutableAssetHeaders() []routes.Rule {
	return []routes.Rule{{
		Src: "^" + c.join(
			"/_next/static/(?:[^/]+/pages|pages|chunks|runtime|css|image|media|"+c.escBuildID+")/.+",
		) + "$",
		Headers:   map[string]string{routes.HeaderCacheControl: routes.ImmutableCacheControl},
		Continue:  true,
		Important: true,
	}}
}

// matchedPathAnnotations reports which page the filesystem phase actually
// resolved, so the platform can attribute the render.
func (c *compiler) matchedPathAnnotations() []routes.Rule {
	return []routes.Rule{
		{
			Src:       "^" + c.join("/index") + "$",
			Headers:   map[string]string{routes.HeaderMatchedPath: "/"},
			Continue:  true,
			Important: true,
		},
		{
			Src:       "^" + c.prefixSlash + "((?!index$).*)$",
			Headers:   map[string]string{routes.HeaderMatchedPath: "/$1"},
			Continue:  true,
			Important: true,
		},
	}
}

// notFoundDest resolves the not-found destination by output precedence.
func (c *compiler) notFoundDest() string {
	switch {
	case c.desc.HasNotFoundOutput:
		return "/_not-found"
	case c.desc.Has404Output:
		return "/404"
	default:
		return "/_error"
	}
}

// notFoundFallback is the error-phase 404 handler: locale-aware pair when
// i18n is set, a single base-path-aware rule otherwise.
func (c *compiler) notFoundFallback() []routes.Rule {
	dest := c.notFoundDest()
	if c.desc.I18N == nil {
		return []routes.Rule{{
			Src:    c.catchAllSrc(),
			Dest:   c.join(dest),
			Status: 404,
		}}
	}
	return []routes.Rule{
		{
			Src:           "^" + c.prefixSlash + "(?<nextLocale>" + c.localeAlt + ")(/.*|$)",
			Dest:          c.join("/$nextLocale", dest),
			Status:        404,
			CaseSensitive: true,
		},
		{
			Src:    c.catchAllSrc(),
			Dest:   c.join("/"+c.desc.I18N.DefaultLocale, dest),
			Status: 404,
		},
	}
}

// serverErrorFallback mirrors notFoundFallback for status 500.
func (c *compiler) serverErrorFallback() []routes.Rule {
	dest := "/_error"
	if c.desc.Has500Output {
		dest = "/500"
	}
	if c.desc.I18N == nil {
		return []routes.Rule{{
			Src:    c.catchAllSrc(),
			Dest:   c.join(dest),
			Status: 500,
		}}
	}
	return []routes.Rule{
		{
			Src:           "^" + c.prefixSlash + "(?<nextLocale>" + c.localeAlt + ")(/.*|$)",
			Dest:          c.join("/$nextLocale", dest),
			Status:        500,
			CaseSensitive: true,
		},
		{
			Src:    c.catchAllSrc(),
			Dest:   c.join("/"+c.desc.I18N.DefaultLocale, dest),
			Status: 500,
		},
	}
}

// wildcardTable associates each locale domain with its default locale for
// $wildcard substitution.
func (c *compiler) wildcardTable() []routes.Wildcard {
	if c.desc.I18N == nil || len(c.desc.I18N.Domains) == 0 {
		return nil
	}
	table := make([]routes.Wildcard, len(c.desc.I18N.Domains))
	for i, d := range c.desc.I18N.Domains {
		table[i] = routes.Wildcard{Domain: d.Domain, Value: d.DefaultLocale}
	}
	return table
}

// staticOverrides declares content types for the prerendered error pages.
func (c *compiler) staticOverrides() map[string]routes.Override {
	overrides := make(map[string]routes.Override)
	if c.desc.Has404Output {
		overrides["404.html"] = routes.Override{ContentType: "text/html; charset=utf-8", Path: "404"}
	}
	if c.desc.Has500Output {
		overrides["500.html"] = routes.Override{ContentType: "text/html; charset=utf-8", Path: "500"}
	}
	if len(overrides) == 0 {
		return nil
	}
	return overrides
}
