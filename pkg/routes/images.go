package routes

// Images is the platform's image optimization section of the config document.
// Hostname and pathname fields of the pattern entries are regex sources, not
// globs; the projector in pkg/compile performs the translation. Collections
// are always present (empty, not null) so the document shape is stable.
type Images struct {
	Sizes                  []int           `json:"sizes"`
	Qualities              []int           `json:"qualities"`
	Domains                []string        `json:"domains"`
	RemotePatterns         []RemotePattern `json:"remotePatterns"`
	LocalPatterns          []LocalPattern  `json:"localPatterns"`
	MinimumCacheTTL        int             `json:"minimumCacheTTL,omitempty"`
	Formats                []string        `json:"formats"`
	DangerouslyAllowSVG    bool            `json:"dangerouslyAllowSVG,omitempty"`
	ContentSecurityPolicy  string          `json:"contentSecurityPolicy,omitempty"`
	ContentDispositionType string          `json:"contentDispositionType,omitempty"`
}

// RemotePattern allows optimization of images served from a remote host.
type RemotePattern struct {
	Protocol string `json:"protocol,omitempty"`
	Hostname string `json:"hostname"`
	Port     string `json:"port,omitempty"`
	Pathname string `json:"pathname,omitempty"`
	Search   string `json:"search,omitempty"`
}

// LocalPattern allows optimization of images served from the app itself.
type LocalPattern struct {
	Pathname string `json:"pathname,omitempty"`
	Search   string `json:"search,omitempty"`
}
