package policy

import "strings"

// Pattern is a compiled route pattern such as "/debts/:id"
type Pattern struct {
	raw      string
	segments []string
}

// Compile splits a route pattern into segments once so it can be matched many times
func Compile(pattern string) Pattern {
	return Pattern{raw: pattern, segments: splitPath(pattern)}
}

// String returns the pattern as written
func (p Pattern) String() string {
	return p.raw
}

// Match reports whether path matches the pattern segment by segment.
// A ":name" segment matches any single non-empty segment.
func (p Pattern) Match(path string) bool {
	segments := splitPath(path)
	if len(segments) != len(p.segments) {
		return false
	}
	for i, seg := range p.segments {
		if strings.HasPrefix(seg, ":") {
			continue
		}
		if seg != segments[i] {
			return false
		}
	}
	return true
}

// splitPath drops the query string, empty segments and trailing slashes
func splitPath(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}
