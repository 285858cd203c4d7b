package render

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// markdown is shared by the PDF walker and the HTML renderer so both see the
// same tree (GFM tables, strikethrough, task lists, autolinks).
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

func parseMarkdown(src []byte) ast.Node {
	return markdown.Parser().Parse(text.NewReader(src))
}

// span is a run of inline text with a single style.
type span struct {
	text    string
	bold    bool
	italic  bool
	code    bool
	newline bool
}

func (s span) style() string {
	switch {
	case s.bold && s.italic:
		return "BI"
	case s.bold:
		return "B"
	case s.italic:
		return "I"
	}
	return ""
}

// inlineSpans flattens the inline children of n into styled runs.
func inlineSpans(n ast.Node, src []byte, st span, out []span) []span {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			s := st
			s.text = string(v.Segment.Value(src))
			out = append(out, s)
			if v.HardLineBreak() {
				out = append(out, span{newline: true})
			} else if v.SoftLineBreak() {
				s.text = " "
				out = append(out, s)
			}
		case *ast.String:
			s := st
			s.text = string(v.Value)
			out = append(out, s)
		case *ast.Emphasis:
			s := st
			if v.Level >= 2 {
				s.bold = true
			} else {
				s.italic = true
			}
			out = inlineSpans(v, src, s, out)
		case *ast.CodeSpan:
			s := st
			s.code = true
			out = inlineSpans(v, src, s, out)
		case *ast.AutoLink:
			s := st
			s.text = string(v.Label(src))
			out = append(out, s)
		case *east.TaskCheckBox:
			s := st
			s.text = "[ ] "
			if v.IsChecked {
				s.text = "[x] "
			}
			out = append(out, s)
		case *ast.RawHTML:
		default:
			out = inlineSpans(c, src, st, out)
		}
	}
	return out
}

// plainText returns the inline text of n without styling.
func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	for _, s := range inlineSpans(n, src, span{}, nil) {
		if s.newline {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(s.text)
	}
	return strings.TrimSpace(b.String())
}

// blockLines returns the raw lines of a code block.
func blockLines(n ast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return strings.TrimRight(b.String(), "\n")
}
