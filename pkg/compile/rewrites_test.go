package compile

import (
	"strings"
	"testing"

	"github.com/nextroute-dev/nextroute/pkg/build"
	"github.com/nextroute-dev/nextroute/pkg/routes"
)

func TestRewriteFlagSemantics(t *testing.T) {
	d := &build.Description{
		BuildID: "abc123",
		Rewrites: build.RewriteGroups{
			BeforeFiles: []build.Rewrite{{Src: "^/a(?:/)?$", Dest: "/b"}},
			AfterFiles:  []build.Rewrite{{Src: "^/c(?:/)?$", Dest: "/d"}},
			Fallback:    []build.Rewrite{{Src: "^/e(?:/)?$", Dest: "/f"}},
		},
	}
	rw := newCompiler(d).normalizeRewrites()

	before := rw.Before[0]
	if !before.Continue || !before.Override || before.Check {
		t.Errorf("beforeFiles flags = continue=%v override=%v check=%v", before.Continue, before.Override, before.Check)
	}
	for _, r := range []routes.Rule{rw.After[0], rw.Fallback[0]} {
		if r.Continue || r.Override || !r.Check {
			t.Errorf("after/fallback flags = continue=%v override=%v check=%v", r.Continue, r.Override, r.Check)
		}
	}
}

func TestRewriteRSCSuffixGroup(t *testing.T) {
	tests := []struct {
		name     string
		prefetch bool
		segments bool
		wantAlts []string
		skipAlts []string
	}{
		{
			name:     "prefetch only",
			prefetch: true,
			wantAlts: []string{`\.prefetch\.rsc`, `\.rsc`},
			skipAlts: []string{`\.segment\.rsc`},
		},
		{
			name:     "segments only",
			segments: true,
			wantAlts: []string{`\.segments/.+\.segment\.rsc`, `\.rsc`},
			skipAlts: []string{`\.prefetch\.rsc|`},
		},
		{
			name:     "both",
			prefetch: true,
			segments: true,
			wantAlts: []string{`\.prefetch\.rsc`, `\.segments/.+\.segment\.rsc`, `\.rsc`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &build.Description{
				BuildID:            "abc123",
				HasAppDir:          true,
				CacheComponents:    tt.prefetch,
				ClientSegmentCache: tt.segments,
				Rewrites: build.RewriteGroups{
					AfterFiles: []build.Rewrite{{Src: "^/blog/(.*)(?:/)?$", Dest: "/news/$1?tag=x"}},
				},
			}
			r := newCompiler(d).normalizeRewrites().After[0]

			if !strings.Contains(r.Src, "(?<nxtsuffix>") {
				t.Fatalf("src %q lacks the suffix group", r.Src)
			}
			for _, alt := range tt.wantAlts {
				if !strings.Contains(r.Src, alt) {
					t.Errorf("src %q lacks alternative %q", r.Src, alt)
				}
			}
			for _, alt := range tt.skipAlts {
				if strings.Contains(r.Src, alt) {
					t.Errorf("src %q contains disabled alternative %q", r.Src, alt)
				}
			}
			if !strings.HasSuffix(r.Dest, "$nxtsuffix") {
				t.Errorf("dest %q does not forward the suffix", r.Dest)
			}

			// The widened pattern still matches the plain path and now also
			// the suffixed fetch.
			if !matches(t, r.Src, "/blog/post-1") {
				t.Error("widened pattern no longer matches the plain path")
			}
			if tt.prefetch && !matches(t, r.Src, "/blog/post-1.prefetch.rsc") {
				t.Error("widened pattern does not match the prefetch fetch")
			}
			if tt.segments && !matches(t, r.Src, "/blog/post-1.segments/a/b.segment.rsc") {
				t.Error("widened pattern does not match the segment fetch")
			}
		})
	}
}

func TestRewriteSuffixRequiresCanonicalTail(t *testing.T) {
	d := &build.Description{
		BuildID:         "abc123",
		HasAppDir:       true,
		CacheComponents: true,
		Rewrites: build.RewriteGroups{
			AfterFiles: []build.Rewrite{{Src: "^/exact$", Dest: "/target"}},
		},
	}
	r := newCompiler(d).normalizeRewrites().After[0]
	if strings.Contains(r.Src, "nxtsuffix") {
		t.Errorf("pattern without the canonical tail was widened: %q", r.Src)
	}
}

func TestRewrittenTargetHeaders(t *testing.T) {
	tests := []struct {
		name      string
		dest      string
		wantPath  string
		wantQuery string
		external  bool
	}{
		{
			name:     "plain path",
			dest:     "/news/$1",
			wantPath: "/news/$1",
		},
		{
			name:      "path with query",
			dest:      "/news/$1?tag=x",
			wantPath:  "/news/$1",
			wantQuery: "tag=x",
		},
		{
			name:      "fragments stripped from both halves",
			dest:      "/news/$1#section?q=1#frag",
			wantPath:  "/news/$1",
			wantQuery: "q=1",
		},
		{
			name:      "fragment before query keeps the query",
			dest:      "/a#f?q=1",
			wantPath:  "/a",
			wantQuery: "q=1",
		},
		{
			name:     "external https untouched",
			dest:     "https://example.com/a?b=c",
			external: true,
		},
		{
			name:     "external http untouched",
			dest:     "http://example.com/a",
			external: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &build.Description{
				BuildID: "abc123",
				Rewrites: build.RewriteGroups{
					AfterFiles: []build.Rewrite{{Src: "^/blog/(.*)(?:/)?$", Dest: tt.dest}},
				},
			}
			r := newCompiler(d).normalizeRewrites().After[0]

			if tt.external {
				if len(r.Headers) != 0 {
					t.Errorf("external destination gained headers: %v", r.Headers)
				}
				return
			}
			if got := r.Headers[routes.HeaderRewrittenPath]; got != tt.wantPath {
				t.Errorf("rewritten path = %q, want %q", got, tt.wantPath)
			}
			if got := r.Headers[routes.HeaderRewrittenQuery]; got != tt.wantQuery {
				t.Errorf("rewritten query = %q, want %q", got, tt.wantQuery)
			}
		})
	}
}

func TestMalformedRewritePassthrough(t *testing.T) {
	d := &build.Description{
		BuildID: "abc123",
		Rewrites: build.RewriteGroups{
			AfterFiles: []build.Rewrite{{}},
		},
	}
	r := newCompiler(d).normalizeRewrites().After[0]
	if r.Src != "" || r.Dest != "" || r.Headers != nil {
		t.Errorf("malformed rewrite was modified: %+v", r)
	}
	if !r.Check {
		t.Error("malformed rewrite still carries the group's flag semantics")
	}
}

func TestFragmentStrippedFromSuffixedDest(t *testing.T) {
	// Header attachment sees the original destination; suffix widening must
	// not leak into the recorded path.
	d := &build.Description{
		BuildID:         "abc123",
		HasAppDir:       true,
		CacheComponents: true,
		Rewrites: build.RewriteGroups{
			AfterFiles: []build.Rewrite{{Src: "^/blog/(.*)(?:/)?$", Dest: "/news/$1"}},
		},
	}
	r := newCompiler(d).normalizeRewrites().After[0]
	if got := r.Headers[routes.HeaderRewrittenPath]; got != "/news/$1" {
		t.Errorf("rewritten path header = %q, want original target", got)
	}
	if r.Dest != "/news/$1$nxtsuffix" {
		t.Errorf("dest = %q", r.Dest)
	}
}
