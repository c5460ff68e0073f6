package mailer

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// DefaultButtonStyle is the inline style of rendered buttons. Email clients
// ignore most stylesheets, so buttons carry their styling inline.
const DefaultButtonStyle = "display:inline-block;padding:12px 24px;background-color:#2563eb;" +
	"color:#ffffff;text-decoration:none;border-radius:6px;font-weight:600"

// buttonPrefix is the syntax prefix that triggers button parsing:
// [!button|Label](https://example.com).
var buttonPrefix = []byte("[!button|")

// KindButton is the node kind for ButtonNode.
var KindButton = ast.NewNodeKind("Button")

// ButtonNode is a call-to-action link in the markdown AST.
type ButtonNode struct {
	ast.BaseInline
	URL   []byte
	Label []byte
}

// Kind implements ast.Node.
func (n *ButtonNode) Kind() ast.NodeKind { return KindButton }

// Dump implements ast.Node.
func (n *ButtonNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"URL":   string(n.URL),
		"Label": string(n.Label),
	}, nil)
}

type buttonParser struct{}

func (buttonParser) Trigger() []byte { return []byte{'['} }

func (buttonParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, buttonPrefix) {
		return nil
	}

	rest := line[len(buttonPrefix):]
	labelEnd := indexUnescaped(rest, ']')
	if labelEnd < 0 || labelEnd+1 >= len(rest) || rest[labelEnd+1] != '(' {
		return nil
	}
	urlPart := rest[labelEnd+2:]
	urlEnd := indexUnescaped(urlPart, ')')
	if urlEnd < 0 {
		return nil
	}

	block.Advance(len(buttonPrefix) + labelEnd + 2 + urlEnd + 1)
	return &ButtonNode{
		Label: util.UnescapePunctuations(bytes.TrimSpace(rest[:labelEnd])),
		URL:   util.UnescapePunctuations(bytes.TrimSpace(urlPart[:urlEnd])),
	}
}

// indexUnescaped returns the index of the first c in b not preceded by a
// backslash escape, or -1.
func indexUnescaped(b []byte, c byte) int {
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case '\\':
			i++
		case c:
			return i
		}
	}
	return -1
}

type buttonRenderer struct {
	style string
}

func (r *buttonRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindButton, r.render)
}

func (r *buttonRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ButtonNode)

	// Script and data URLs never become links; the label is kept as text.
	if len(n.URL) == 0 || html.IsDangerousURL(n.URL) {
		_, _ = w.Write(util.EscapeHTML(n.Label))
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.URL, false)))
	_, _ = w.WriteString(`" class="btn" style="`)
	_, _ = w.Write(util.EscapeHTML([]byte(r.style)))
	_, _ = w.WriteString(`" target="_blank">`)
	_, _ = w.Write(util.EscapeHTML(n.Label))
	_, _ = w.WriteString(`</a>`)
	return ast.WalkContinue, nil
}

// ButtonExtension adds [!button|Label](url) call-to-action links to goldmark.
type ButtonExtension struct {
	Style string
}

// NewButtonExtension creates the extension. An empty style selects
// DefaultButtonStyle.
func NewButtonExtension(style string) goldmark.Extender {
	return &ButtonExtension{Style: style}
}

// Extend implements goldmark.Extender.
func (e *ButtonExtension) Extend(m goldmark.Markdown) {
	style := e.Style
	if style == "" {
		style = DefaultButtonStyle
	}
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(buttonParser{}, 50),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&buttonRenderer{style: style}, 50),
	))
}
