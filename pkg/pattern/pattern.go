// Package pattern produces the literal building blocks spliced into generated
// route regexes: escaping of user-supplied strings, POSIX path joining for
// basePath prefixing, and glob-to-regex translation for the image config.
//
// Every source pattern in the emitted route table passes user input (locale
// codes, base path segments, build IDs) through Escape. The routing engine
// consuming the table compiles these strings verbatim, so an unescaped
// metacharacter is a correctness bug, not a cosmetic one.
package pattern

import (
	"path"
	"strings"
)

// metachars are the characters Escape neutralizes. The set matches the
// grammar of the downstream routing engine's regex dialect.
const metachars = `|\{}()[]^$+*?.-`

// Escape returns s with every regex metacharacter backslash-escaped, so that
// the result matches exactly the literal characters of s. It is total: any
// input is accepted and the function never fails.
func Escape(s string) string {
	if !strings.ContainsAny(s, metachars) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune(metachars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Join joins path fragments with forward slashes regardless of host OS,
// guaranteeing a single leading slash. It is used to prefix generated sources
// and destinations with the configured base path.
//
// Join cleans duplicate slashes, so fragments that must keep a trailing slash
// (trailing-slash-aware destinations) are concatenated by hand instead.
func Join(parts ...string) string {
	joined := path.Join(append([]string{"/"}, parts...)...)
	if joined == "" {
		return "/"
	}
	return joined
}
