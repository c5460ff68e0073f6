package sanitizer

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once

	paragraphEndRe = regexp.MustCompile(`(?i)</\s*(?:p|h[1-6]|table|blockquote|ul|ol)\s*>|<\s*hr\b[^>]*>`)
	lineEndRe      = regexp.MustCompile(`(?i)<\s*br\b[^>]*>|</\s*(?:div|tr|li)\s*>`)
	cellEndRe      = regexp.MustCompile(`(?i)</\s*(?:td|th)\s*>`)
	listItemRe     = regexp.MustCompile(`(?i)<\s*li\b[^>]*>`)
	linkRe         = regexp.MustCompile(`(?is)<\s*a\b[^>]*?\bhref\s*=\s*"([^"]*)"[^>]*>(.*?)</\s*a\s*>`)
)

func initPolicies() {
	initOnce.Do(func() {
		// StrictPolicy strips all HTML, including script, style and title content.
		strictPolicy = bluemonday.StrictPolicy()
	})
}

// PlainText converts an HTML email body into its plain-text alternative.
//
// Block elements become line breaks, list items get a "- " marker and links
// are written as "label (url)". All markup is then stripped with the
// bluemonday strict policy and entities are decoded. Runs of blank lines
// collapse into one.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	initPolicies()

	s = linkRe.ReplaceAllStringFunc(s, rewriteLink)
	s = listItemRe.ReplaceAllString(s, "$0- ")
	s = paragraphEndRe.ReplaceAllString(s, "$0\n\n")
	s = lineEndRe.ReplaceAllString(s, "$0\n")
	s = cellEndRe.ReplaceAllString(s, "$0 ")

	s = html.UnescapeString(strictPolicy.Sanitize(s))
	return normalizeLines(s)
}

// StripHTML removes every tag and returns the text content on one line.
func StripHTML(s string) string {
	initPolicies()
	return strings.Join(strings.Fields(html.UnescapeString(strictPolicy.Sanitize(s))), " ")
}

func rewriteLink(tag string) string {
	m := linkRe.FindStringSubmatch(tag)
	href := strings.TrimSpace(html.UnescapeString(m[1]))
	label := m[2]

	text := StripHTML(label)
	lower := strings.ToLower(href)
	switch {
	case href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(lower, "javascript:"):
		return label
	case text == "" || text == href:
		return href
	case strings.HasPrefix(lower, "mailto:") && strings.TrimPrefix(href, href[:7]) == text:
		return label
	}
	return label + " (" + href + ")"
}

func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
