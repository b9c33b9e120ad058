package routes

// HeaderName is the closed set of platform and framework header names that
// appear in generated rules and function configs. Generated output references
// these constants only; free-form header strings in rule construction are a
// typo hazard that survives into every deployment.
type HeaderName = string

// Framework signaling headers.
const (
	// HeaderNextData marks a request as a data-route fetch after the
	// /_next/data prefix has been rewritten away.
	HeaderNextData HeaderName = "x-nextjs-data"

	// HeaderMatchedPath reports which path the filesystem phase resolved.
	HeaderMatchedPath HeaderName = "x-matched-path"

	// HeaderNextMatchedPath carries the framework-normalized matched path for
	// middleware data resolving.
	HeaderNextMatchedPath HeaderName = "x-nextjs-matched-path"

	// HeaderRewrittenPath and HeaderRewrittenQuery preserve a rewrite's
	// original target through later processing.
	HeaderRewrittenPath  HeaderName = "x-nextjs-rewritten-path"
	HeaderRewrittenQuery HeaderName = "x-nextjs-rewritten-query"

	// HeaderRSC marks a partial-render (RSC) fetch.
	HeaderRSC HeaderName = "rsc"

	// HeaderPrerenderRevalidate bypasses the literal /404 and /500
	// short-circuits during on-demand revalidation.
	HeaderPrerenderRevalidate HeaderName = "x-prerender-revalidate"

	HeaderVary         HeaderName = "vary"
	HeaderCacheControl HeaderName = "cache-control"

	// HeaderLocation carries a redirect's target.
	HeaderLocation HeaderName = "Location"
)

// Client geo/IP headers injected by the platform edge. The serverless
// launcher strips client-supplied values for these names before invoking
// user code.
const (
	HeaderIPCountry       HeaderName = "x-vercel-ip-country"
	HeaderIPCountryRegion HeaderName = "x-vercel-ip-country-region"
	HeaderIPCity          HeaderName = "x-vercel-ip-city"
	HeaderIPLatitude      HeaderName = "x-vercel-ip-latitude"
	HeaderIPLongitude     HeaderName = "x-vercel-ip-longitude"
	HeaderIPTimezone      HeaderName = "x-vercel-ip-timezone"
	HeaderRealIP          HeaderName = "x-real-ip"
)

// ClientInfoHeaders lists every platform-provided client geo/IP header.
var ClientInfoHeaders = []HeaderName{
	HeaderIPCountry,
	HeaderIPCountryRegion,
	HeaderIPCity,
	HeaderIPLatitude,
	HeaderIPLongitude,
	HeaderIPTimezone,
	HeaderRealIP,
}

// LocaleCookie is the cookie consulted by locale-detection redirects.
const LocaleCookie = "NEXT_LOCALE"

// ImmutableCacheControl is applied to hashed framework static assets.
const ImmutableCacheControl = "public,max-age=31536000,immutable"
