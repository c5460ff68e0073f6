package tmpl

import (
	"regexp"
	"strings"
)

var (
	// ifTagRe matches both if-open (group 1 holds the path) and if-close tags.
	ifTagRe = regexp.MustCompile(`\{\{\s*(?:#if\s+([^{}]+?)|/if)\s*\}\}`)
	elseRe  = regexp.MustCompile(`\{\{\s*else\s*\}\}`)
)

// ifTag is an if-open or if-close tag located in the text.
type ifTag struct {
	path       string
	start, end int
	open       bool
}

// block is a located if-block: the full span and the inner content bounds.
type block struct {
	path                 string
	start, end           int
	innerStart, innerEnd int
}

func scanIfTags(src string) []ifTag {
	locs := ifTagRe.FindAllStringSubmatchIndex(src, -1)
	tags := make([]ifTag, len(locs))
	for i, loc := range locs {
		t := ifTag{start: loc[0], end: loc[1]}
		if loc[2] >= 0 {
			t.open = true
			t.path = src[loc[2]:loc[3]]
		}
		tags[i] = t
	}
	return tags
}

// innermostBlocks returns, left to right, the balanced blocks whose inner
// content holds no further if-open tag: an open immediately followed by a
// close. The blocks never overlap and the scan is linear in len(tags).
func innermostBlocks(tags []ifTag) []block {
	var blocks []block
	for i, t := range tags {
		if !t.open || i+1 >= len(tags) || tags[i+1].open {
			continue
		}
		closing := tags[i+1]
		blocks = append(blocks, block{
			path:       t.path,
			start:      t.start,
			end:        closing.end,
			innerStart: t.end,
			innerEnd:   closing.start,
		})
	}
	return blocks
}

// resolveConditionals resolves if-blocks innermost first, one nesting level
// per pass. When the pass limit is reached or a pass cannot resolve any
// block, the remaining if/else tags are stripped.
func (e *Engine) resolveConditionals(src string, s scope, rep *Report) string {
	for pass := 0; ; pass++ {
		tags := scanIfTags(src)
		if !hasOpen(tags) {
			return src
		}
		if pass >= e.passLimit() {
			return stripConditionals(src, rep)
		}

		blocks := innermostBlocks(tags)
		if len(blocks) == 0 {
			return stripConditionals(src, rep)
		}

		var b strings.Builder
		b.Grow(len(src))
		last := 0
		for _, blk := range blocks {
			b.WriteString(src[last:blk.start])
			b.WriteString(chooseBranch(src[blk.innerStart:blk.innerEnd], s.lookup(blk.path)))
			last = blk.end
		}
		b.WriteString(src[last:])

		src = b.String()
		rep.Passes++
	}
}

// chooseBranch splits inner on its first else tag and returns the branch
// selected by cond.
func chooseBranch(inner string, cond Value) string {
	ifBranch, elseBranch := inner, ""
	if loc := elseRe.FindStringIndex(inner); loc != nil {
		ifBranch, elseBranch = inner[:loc[0]], inner[loc[1]:]
	}
	if Truthy(cond) {
		return ifBranch
	}
	return elseBranch
}

func (e *Engine) passLimit() int {
	if e.maxPasses <= 0 {
		return DefaultMaxPasses
	}
	return e.maxPasses
}

func hasOpen(tags []ifTag) bool {
	for _, t := range tags {
		if t.open {
			return true
		}
	}
	return false
}

// stripConditionals removes every if-open, if-close and else tag.
func stripConditionals(src string, rep *Report) string {
	n := 0
	count := func(string) string {
		n++
		return ""
	}
	src = ifTagRe.ReplaceAllStringFunc(src, count)
	src = elseRe.ReplaceAllStringFunc(src, count)
	rep.strip(n)
	return src
}
