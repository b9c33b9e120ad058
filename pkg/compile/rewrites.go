package compile

import (
	"strings"

	"github.com/nextroute-dev/nextroute/pkg/build"
	"github.com/nextroute-dev/nextroute/pkg/routes"
)

// rewriteGroups holds the three user rewrite phases after normalization into
// platform rule form.
type rewriteGroups struct {
	Before   []routes.Rule
	After    []routes.Rule
	Fallback []routes.Rule
}

// normalizeRewrites converts the user-declared rewrites into platform rules.
//
// beforeFiles rewrites continue with override and drop the check-then-stop
// semantics: they run before filesystem matching, so stopping there would
// shadow every static output. afterFiles and fallback rewrites keep the
// default check semantics.
//
// When partial-render (RSC) fetches must survive rewrites, any rewrite whose
// pattern ends in the canonical optional-trailing-slash tail is widened to
// also match the reserved RSC suffixes, and its destination forwards the
// captured suffix.
func (c *compiler) normalizeRewrites() rewriteGroups {
	return rewriteGroups{
		Before:   c.convertRewrites(c.desc.Rewrites.BeforeFiles, true),
		After:    c.convertRewrites(c.desc.Rewrites.AfterFiles, false),
		Fallback: c.convertRewrites(c.desc.Rewrites.Fallback, false),
	}
}

func (c *compiler) convertRewrites(in []build.Rewrite, beforeFiles bool) []routes.Rule {
	var rules []routes.Rule
	for _, rw := range in {
		rule := routes.Rule{
			Src:     rw.Src,
			Dest:    rw.Dest,
			Has:     convertConditions(rw.Has),
			Missing: convertConditions(rw.Missing),
		}
		if beforeFiles {
			rule.Continue = true
			rule.Override = true
		} else {
			rule.Check = true
		}

		// A rewrite with neither pattern nor destination is malformed input;
		// pass it through untouched.
		if rw.Src == "" && rw.Dest == "" {
			rules = append(rules, rule)
			continue
		}

		// Headers first: they must record the rewrite's original target,
		// not the suffix-widened destination.
		c.addRewrittenHeaders(&rule)
		c.addRSCSuffixGroup(&rule)
		rules = append(rules, rule)
	}
	return rules
}

// addRSCSuffixGroup widens a path-shaped source to also match the reserved
// RSC suffixes and forwards the captured suffix on the destination.
func (c *compiler) addRSCSuffixGroup(rule *routes.Rule) {
	prefetch := c.desc.ShouldHandlePrefetchRSC()
	segments := c.desc.ShouldHandleSegmentPrefetches()
	if !prefetch && !segments {
		return
	}
	if !strings.HasSuffix(rule.Src, optionalTrailingSlash) {
		return
	}

	// Longest suffix first so the alternation cannot stop at a bare .rsc
	// prefix of a longer reserved suffix.
	var alts []string
	if prefetch {
		alts = append(alts, `\.prefetch\.rsc`)
	}
	if segments {
		alts = append(alts, `\`+segmentsDirSuffix+`/.+\.segment\.rsc`)
	}
	alts = append(alts, `\.rsc`)

	group := "(?<nxtsuffix>" + strings.Join(alts, "|") + ")?"
	rule.Src = strings.TrimSuffix(rule.Src, optionalTrailingSlash) + group + optionalTrailingSlash
	// The captured suffix rides at the very end, after any query the
	// destination already carries.
	rule.Dest += "$nxtsuffix"
}

// addRewrittenHeaders records the rewrite's original path and query as
// headers so later stages can recover the target after the destination has
// been through further processing. External destinations are left alone:
// their target is visible in the proxied URL.
func (c *compiler) addRewrittenHeaders(rule *routes.Rule) {
	dest := rule.Dest
	if dest == "" || strings.HasPrefix(dest, "http://") || strings.HasPrefix(dest, "https://") {
		return
	}

	// Split on the first "?", then drop any "#" fragment from each half: a
	// fragment before the "?" must not swallow the query.
	path, query, _ := strings.Cut(dest, "?")
	path, _, _ = strings.Cut(path, "#")
	query, _, _ = strings.Cut(query, "#")

	if rule.Headers == nil {
		rule.Headers = make(map[string]string, 2)
	}
	rule.Headers[routes.HeaderRewrittenPath] = path
	if query != "" {
		rule.Headers[routes.HeaderRewrittenQuery] = query
	}
}
