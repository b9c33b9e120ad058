package compile

import "github.com/nextroute-dev/nextroute/pkg/routes"

// Data routes are the JSON-serving variants of page paths
// (/_next/data/<buildId>/<page>.json) used for client-side navigation. When a
// pages-style tree runs behind middleware, the platform must resolve data
// requests against page outputs: the data prefix is stripped before
// resolution (normalize) and restored afterwards (denormalize). The
// x-nextjs-data marker header keeps the two directions connected once the
// prefix is gone; injecting it is idempotent.

// normalizeDataRoutes converts a data path to its canonical page path.
// isOverride is set only for the earliest, pre-redirect pass.
func (c *compiler) normalizeDataRoutes(isOverride bool) []routes.Rule {
	if !c.desc.ShouldResolveMiddlewareData() {
		return nil
	}

	// The index data route resolves to the bare root.
	indexDest := c.prefix
	if indexDest == "" {
		indexDest = "/"
	}
	restDest := c.join("/$1")
	if c.desc.TrailingSlash {
		restDest += "/"
	}

	return []routes.Rule{
		// Tag the request so later stages can still recognize it as a data
		// fetch after the prefix is stripped.
		{
			Src:      "^" + c.join("/_next/data/(.*)") + "$",
			Missing:  headerCondition(routes.HeaderNextData),
			Headers:  map[string]string{routes.HeaderNextData: "1"},
			Continue: true,
			Override: isOverride,
		},
		{
			Src:      "^" + c.join("/_next/data/", c.escBuildID, `/index\.json`) + "$",
			Dest:     indexDest,
			Has:      headerCondition(routes.HeaderNextData),
			Continue: true,
			Override: isOverride,
		},
		{
			Src:      "^" + c.join("/_next/data/", c.escBuildID, `/(.*)\.json`) + "$",
			Dest:     restDest,
			Has:      headerCondition(routes.HeaderNextData),
			Continue: true,
			Override: isOverride,
		},
	}
}

// denormalizeDataRoutes restores the build-id-qualified data path for a
// canonical page path, for requests tagged as data fetches.
func (c *compiler) denormalizeDataRoutes(isOverride bool) []routes.Rule {
	if !c.desc.ShouldResolveMiddlewareData() {
		return nil
	}

	return []routes.Rule{
		{
			Src:      c.rootSrc(),
			Dest:     c.join("/_next/data/", c.desc.BuildID, "/index.json"),
			Has:      headerCondition(routes.HeaderNextData),
			Continue: true,
			Override: isOverride,
		},
		{
			Src:      "^" + c.prefixSlash + `((?!_next/)(?:.*[^/]|.*))/?$`,
			Dest:     c.join("/_next/data/", c.desc.BuildID, "/$1.json"),
			Has:      headerCondition(routes.HeaderNextData),
			Continue: true,
			Override: isOverride,
		},
	}
}
