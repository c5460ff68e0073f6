package tmpl

import (
	"regexp"
	"strings"
)

const (
	// IndexKey exposes the zero-based item position inside each-blocks.
	IndexKey = "@index"
	// ItemTotalKey exposes price × quantity inside each-blocks.
	ItemTotalKey = "itemTotal"

	priceKey    = "price"
	quantityKey = "quantity"
)

var (
	eachOpenRe  = regexp.MustCompile(`\{\{\s*#each\s+([^{}]+?)\s*\}\}`)
	eachCloseRe = regexp.MustCompile(`\{\{\s*/each\s*\}\}`)
)

// expandEach replaces every each-block with one rendering of its body per
// list element. Blocks do not nest: an open tag pairs with the next close tag.
func (e *Engine) expandEach(src string, data Map, rep *Report) string {
	if !eachOpenRe.MatchString(src) {
		return src
	}

	var b strings.Builder
	b.Grow(len(src))

	rest := src
	for {
		open := eachOpenRe.FindStringSubmatchIndex(rest)
		if open == nil {
			b.WriteString(rest)
			break
		}

		b.WriteString(rest[:open[0]])
		path := rest[open[2]:open[3]]
		after := rest[open[1]:]

		closing := eachCloseRe.FindStringIndex(after)
		if closing == nil {
			// Unclosed block: drop the open tag and keep the text.
			rep.strip(1)
			rest = after
			continue
		}

		body := after[:closing[0]]
		if list, ok := Lookup(data, path).(List); ok {
			for i, item := range list {
				b.WriteString(e.renderItem(body, data, i, item, rep))
			}
		}
		rest = after[closing[1]:]
	}

	return b.String()
}

// renderItem resolves conditionals and variables of one body copy.
// Lookups see the index, then the item keys, then the derived total,
// then the root data.
func (e *Engine) renderItem(body string, data Map, index int, item Value, rep *Report) string {
	s := make(scope, 0, 4)
	s = append(s, Map{IndexKey: Number(index)})

	if m, ok := item.(Map); ok {
		s = append(s, m)
		if total, ok := itemTotal(m); ok {
			s = append(s, Map{ItemTotalKey: String(total)})
		}
	}
	s = append(s, data)

	out := e.resolveConditionals(body, s, rep)
	return substitute(out, s, true, rep)
}

// itemTotal derives the two-decimal line total of an item that has numeric
// price and quantity fields and no total of its own.
func itemTotal(item Map) (string, bool) {
	if _, own := item[ItemTotalKey]; own {
		return "", false
	}
	price, ok := AsNumber(item[priceKey])
	if !ok {
		return "", false
	}
	qty, ok := AsNumber(item[quantityKey])
	if !ok {
		return "", false
	}
	return Fixed2(price * qty), true
}
