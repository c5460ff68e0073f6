package tmpl

import (
	"regexp"
	"strings"
)

var varRe = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

// substitute replaces every remaining tag with the string form of its
// value. Leftover control tags are dropped. With guard set, braces coming
// from values are masked so they survive later passes as literal text.
func substitute(src string, s scope, guard bool, rep *Report) string {
	return varRe.ReplaceAllStringFunc(src, func(tag string) string {
		path := strings.TrimSpace(tag[2 : len(tag)-2])
		if isControl(path) {
			rep.strip(1)
			return ""
		}

		out := Stringify(s.lookup(path))
		if guard && strings.Contains(out, "{") {
			out = strings.ReplaceAll(out, "{", guardMark)
		}
		return out
	})
}

func isControl(path string) bool {
	if path == "else" {
		return true
	}
	return strings.HasPrefix(path, "#") || strings.HasPrefix(path, "/")
}
