package compile

import (
	"github.com/nextroute-dev/nextroute/pkg/build"
	"github.com/nextroute-dev/nextroute/pkg/pattern"
	"github.com/nextroute-dev/nextroute/pkg/routes"
)

// projectImages maps the framework's image optimization configuration into
// the platform's shape. Hostname and pathname globs become regex sources;
// size, quality, format, and CSP settings carry through unchanged. Absent
// collections become empty sequences, never null, so the document shape is
// stable across inputs.
func projectImages(cfg *build.ImageConfig) *routes.Images {
	if cfg == nil {
		return nil
	}

	out := &routes.Images{
		Sizes:                  emptyIfNil(cfg.Sizes),
		Qualities:              emptyIfNil(cfg.Qualities),
		Domains:                emptyIfNil(cfg.Domains),
		Formats:                emptyIfNil(cfg.Formats),
		MinimumCacheTTL:        cfg.MinimumCacheTTL,
		DangerouslyAllowSVG:    cfg.DangerouslyAllowSVG,
		ContentSecurityPolicy:  cfg.ContentSecurityPolicy,
		ContentDispositionType: cfg.ContentDispositionType,
	}

	out.RemotePatterns = make([]routes.RemotePattern, len(cfg.RemotePatterns))
	for i, p := range cfg.RemotePatterns {
		hostname := p.Hostname
		if hostname == "" {
			hostname = "**"
		}
		out.RemotePatterns[i] = routes.RemotePattern{
			Protocol: p.Protocol,
			Hostname: pattern.GlobToRegex(hostname),
			Port:     p.Port,
			Pathname: globOrEmpty(p.Pathname),
			Search:   p.Search,
		}
	}

	out.LocalPatterns = make([]routes.LocalPattern, len(cfg.LocalPatterns))
	for i, p := range cfg.LocalPatterns {
		out.LocalPatterns[i] = routes.LocalPattern{
			Pathname: globOrEmpty(p.Pathname),
			Search:   p.Search,
		}
	}

	return out
}

func globOrEmpty(glob string) string {
	if glob == "" {
		return ""
	}
	return pattern.GlobToRegex(glob)
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
