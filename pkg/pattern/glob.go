package pattern

import "strings"

// GlobToRegex translates the image-config glob dialect into an anchored regex
// source string understood by the routing engine:
//
//   - `**` matches any run of characters, across segment boundaries
//   - `*` matches any run of characters within one segment
//   - `?` matches a single character within one segment
//   - everything else matches literally
//
// The result is a pattern SOURCE embedded in the config document, not a
// compiled matcher; hostname and pathname patterns are translated
// independently by the image projector.
func GlobToRegex(glob string) string {
	var b strings.Builder
	b.Grow(len(glob) + 8)
	b.WriteByte('^')
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		default:
			if strings.IndexByte(metachars, c) >= 0 {
				b.WriteByte('\\')
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('$')
	return b.String()
}
