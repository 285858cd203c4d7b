package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

// Page geometry in millimetres (A4).
const (
	marginLeft   = 25.0
	marginTop    = 28.0
	marginRight  = 25.0
	marginBottom = 28.0

	bodySize = 10.5
	codeSize = 8.5
)

type pdfRenderer struct {
	pdf   *fpdf.Fpdf
	doc   *Document
	theme *Theme
	tr    func(string) string

	pageW, pageH float64
	width        float64 // text column width

	background bool         // fill the page colour on new pages
	unnumbered map[int]bool // pages without a folio
	quote      int          // blockquote nesting
}

func renderPDF(doc *Document) ([]byte, error) {
	p := fpdf.New("P", "mm", "A4", "")
	r := &pdfRenderer{
		pdf:        p,
		doc:        doc,
		theme:      doc.theme(),
		tr:         p.UnicodeTranslatorFromDescriptor(""),
		unnumbered: make(map[int]bool),
	}
	r.pageW, r.pageH = p.GetPageSize()
	r.width = r.pageW - marginLeft - marginRight

	p.SetMargins(marginLeft, marginTop, marginRight)
	p.SetAutoPageBreak(true, marginBottom)
	p.SetTitle(doc.Title, true)
	p.SetAuthor(doc.Author, true)
	p.SetCreator("chronicle", true)
	p.SetSubject(doc.DateRange(), true)
	if !doc.GeneratedAt.IsZero() {
		p.SetCreationDate(doc.GeneratedAt)
	}
	p.SetHeaderFunc(r.pageBackground)
	p.SetFooterFunc(r.folio)

	r.cover()
	links := make([]int, len(doc.Entries))
	for i := range links {
		links[i] = p.AddLink()
	}
	if len(doc.Entries) > 1 {
		r.contents(links)
	}
	for i, e := range doc.Entries {
		r.entry(e, links[i])
	}
	for _, s := range doc.Archives {
		r.archive(s)
	}
	r.colophon()

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf layout: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *pdfRenderer) txt(s string) string { return r.tr(pdfText(s)) }

func (r *pdfRenderer) prose(s string) string { return r.tr(pdfProse(s)) }

func (r *pdfRenderer) textColor(c Color) { r.pdf.SetTextColor(c.R, c.G, c.B) }
func (r *pdfRenderer) fillColor(c Color) { r.pdf.SetFillColor(c.R, c.G, c.B) }
func (r *pdfRenderer) drawColor(c Color) { r.pdf.SetDrawColor(c.R, c.G, c.B) }

func (r *pdfRenderer) pageBackground() {
	if !r.background {
		return
	}
	r.fillColor(r.theme.Page)
	r.pdf.Rect(0, 0, r.pageW, r.pageH, "F")
}

func (r *pdfRenderer) folio() {
	if r.unnumbered[r.pdf.PageNo()] {
		return
	}
	r.pdf.SetY(-18)
	r.pdf.SetFont("Helvetica", "", 8)
	r.textColor(r.theme.InkFaded)
	r.pdf.CellFormat(0, 6, strconv.Itoa(r.pdf.PageNo()), "", 0, "C", false, 0, "")
}

func (r *pdfRenderer) addPage(numbered bool) {
	r.pdf.AddPage()
	if !numbered {
		r.unnumbered[r.pdf.PageNo()] = true
	}
}

// ensure starts a new page unless h millimetres fit above the bottom margin.
func (r *pdfRenderer) ensure(h float64) {
	if r.pdf.GetY()+h > r.pageH-marginBottom {
		r.pdf.AddPage()
	}
}

// diamonds draws n ornamental diamonds centred on y.
func (r *pdfRenderer) diamonds(y float64, n int, size float64, filled bool, c Color) {
	gap := size * 2.4
	x := r.pageW/2 - gap*float64(n-1)/2
	style := "D"
	if filled {
		style = "F"
	}
	r.fillColor(c)
	r.drawColor(c)
	r.pdf.SetLineWidth(0.3)
	for i := 0; i < n; i++ {
		cx := x + gap*float64(i)
		r.pdf.Polygon([]fpdf.PointType{
			{X: cx, Y: y - size/2},
			{X: cx + size/2, Y: y},
			{X: cx, Y: y + size/2},
			{X: cx - size/2, Y: y},
		}, style)
	}
}

func (r *pdfRenderer) centred(h float64, s string) {
	r.pdf.SetX(marginLeft)
	r.pdf.CellFormat(0, h, s, "", 1, "C", false, 0, "")
}

func (r *pdfRenderer) cover() {
	t := r.theme
	p := r.pdf
	r.background = false
	r.addPage(false)

	p.LinearGradient(0, 0, r.pageW, r.pageH,
		t.CoverFrom.R, t.CoverFrom.G, t.CoverFrom.B,
		t.CoverTo.R, t.CoverTo.G, t.CoverTo.B,
		0, 0, 1, 1)
	r.diamonds(40, 3, 5, true, t.CoverAccent)

	p.SetY(100)
	p.SetFont("Times", "", 38)
	r.textColor(t.CoverText)
	p.SetX(marginLeft)
	p.MultiCell(0, 15, r.prose(r.doc.Title), "", "C", false)

	if r.doc.Subtitle != "" {
		p.Ln(4)
		p.SetFont("Helvetica", "", 10)
		r.textColor(t.CoverAccent)
		r.centred(6, r.prose(spaced(r.doc.Subtitle)))
	}

	y := p.GetY() + 12
	r.drawColor(t.CoverAccent)
	p.SetLineWidth(0.3)
	p.Line(r.pageW/2-14, y, r.pageW/2+14, y)
	p.SetY(y + 12)

	p.SetFont("Helvetica", "", 12)
	r.textColor(t.CoverText)
	r.centred(7, r.txt(r.doc.DateRange()))
	p.Ln(2)
	p.SetFont("Helvetica", "", 8)
	r.textColor(t.CoverMuted)
	r.centred(5, r.txt(spaced(r.doc.CountLabel())))

	if r.doc.Author != "" {
		p.Ln(10)
		p.SetFont("Times", "I", 11)
		r.textColor(t.CoverText)
		r.centred(6, r.prose(r.doc.Author))
	}

	r.diamonds(r.pageH-40, 3, 4, false, t.CoverAccent)
}

func (r *pdfRenderer) contents(links []int) {
	t := r.theme
	p := r.pdf
	r.background = true
	r.addPage(false)

	r.diamonds(marginTop+4, 3, 3.5, true, t.Accent)
	p.SetY(marginTop + 12)
	p.SetFont("Times", "", 26)
	r.textColor(t.Accent2)
	r.centred(12, "Contents")
	p.SetFont("Helvetica", "", 8)
	r.textColor(t.Muted)
	r.centred(5, spaced("Journal Entries"))
	p.Ln(10)

	for i, e := range r.doc.Entries {
		r.ensure(10)
		y := p.GetY()
		p.SetX(marginLeft)
		p.SetFont("Helvetica", "", 9)
		r.textColor(t.InkFaded)
		p.CellFormat(30, 8, e.Date, "", 0, "L", false, links[i], "")
		p.SetFont("Times", "", 12)
		r.textColor(t.Ink)
		p.CellFormat(r.width-30, 8, r.prose(plainTitle(e.Title)), "", 1, "L", false, links[i], "")

		r.drawColor(t.Rule)
		p.SetLineWidth(0.2)
		p.SetDashPattern([]float64{0.6, 0.8}, 0)
		p.Line(marginLeft, y+8.5, marginLeft+r.width, y+8.5)
		p.SetDashPattern([]float64{}, 0)
		p.Ln(1.5)
	}
}

func (r *pdfRenderer) entry(e Entry, link int) {
	t := r.theme
	p := r.pdf
	r.background = true
	r.addPage(true)
	p.SetLink(link, 0, -1)

	weekday, monthDay, year := dateParts(e.Date)

	r.diamonds(marginTop+2, 1, 4, true, t.Accent)
	p.SetY(marginTop + 8)
	p.SetFont("Helvetica", "", 9)
	r.textColor(t.Accent)
	r.centred(5, spaced(weekday))
	p.SetFont("Times", "", 30)
	r.textColor(t.Accent2)
	r.centred(13, monthDay)
	p.SetFont("Helvetica", "", 10)
	r.textColor(t.InkFaded)
	r.centred(5, spaced(year))

	if e.Title != "" {
		p.Ln(3)
		p.SetFont("Times", "I", 14)
		r.textColor(t.Emphasis)
		p.SetX(marginLeft)
		p.MultiCell(0, 7, r.prose(plainTitle(e.Title)), "", "C", false)
	}

	p.Ln(3)
	y := p.GetY()
	r.drawColor(t.Accent)
	p.SetLineWidth(0.4)
	p.Line(r.pageW/2-15, y, r.pageW/2+15, y)
	p.Ln(7)

	if e.Highlight != "" {
		r.highlight(e.Highlight)
	}

	r.markdown(bodyWithoutTitle(e.Body))

	p.Ln(4)
	r.ensure(10)
	r.diamonds(p.GetY()+3, 3, 2.5, true, t.Accent)
	p.Ln(8)
}

func (r *pdfRenderer) highlight(s string) {
	t := r.theme
	p := r.pdf
	r.ensure(20)

	y0 := p.GetY()
	p.SetFont("Helvetica", "I", bodySize)
	r.textColor(t.InkLight)
	r.fillColor(t.PageAlt)
	p.SetX(marginLeft + 1.2)
	p.MultiCell(r.width-1.2, 6, r.prose(s), "", "L", true)
	y1 := p.GetY()

	r.fillColor(t.Accent)
	p.Rect(marginLeft, y0, 1.2, y1-y0, "F")
	p.Ln(6)
}

func (r *pdfRenderer) archive(s Section) {
	t := r.theme
	p := r.pdf
	r.background = true
	r.addPage(true)

	r.diamonds(marginTop+2, 3, 3, true, t.Accent)
	p.SetY(marginTop + 8)
	p.SetFont("Times", "", 24)
	r.textColor(t.Accent2)
	p.SetX(marginLeft)
	p.MultiCell(0, 11, r.prose(plainTitle(s.Title)), "", "C", false)
	if s.Blurb != "" {
		p.SetFont("Helvetica", "I", 9.5)
		r.textColor(t.InkFaded)
		p.SetX(marginLeft)
		p.MultiCell(0, 5, r.prose(s.Blurb), "", "C", false)
	}
	p.Ln(8)

	r.markdown(s.Body)
}

func (r *pdfRenderer) colophon() {
	t := r.theme
	p := r.pdf
	r.background = true
	r.addPage(false)

	r.diamonds(r.pageH/2-20, 3, 3.5, true, t.Accent)
	p.SetY(r.pageH/2 - 10)
	p.SetFont("Helvetica", "", 9)
	r.textColor(t.InkLight)
	r.centred(5, "Typeset in Times & Helvetica")
	by := r.doc.Author
	if by == "" {
		by = "chronicle"
	}
	r.centred(5, r.prose("Crafted with care by "+by))
	p.Ln(6)
	p.SetFont("Helvetica", "I", 8)
	r.textColor(t.InkFaded)
	r.centred(5, r.doc.generatedLabel())
}

// markdown lays out a markdown body in the text column.
func (r *pdfRenderer) markdown(body string) {
	src := []byte(body)
	r.blocks(parseMarkdown(src), src, 0)
}

func (r *pdfRenderer) blocks(parent ast.Node, src []byte, indent float64) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		r.block(n, src, indent)
	}
}

func (r *pdfRenderer) block(n ast.Node, src []byte, indent float64) {
	switch v := n.(type) {
	case *ast.Heading:
		r.heading(v, src)
	case *ast.Paragraph:
		r.flow(inlineSpans(v, src, span{}, nil), indent)
		r.pdf.Ln(2.5)
	case *ast.TextBlock:
		r.flow(inlineSpans(v, src, span{}, nil), indent)
		r.pdf.Ln(0.8)
	case *ast.List:
		r.list(v, src, indent)
	case *ast.Blockquote:
		r.blockquote(v, src, indent)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		r.code(blockLines(n, src), indent)
	case *ast.ThematicBreak:
		r.rule()
	case *east.Table:
		r.table(v, src)
	case *ast.HTMLBlock:
	default:
		r.blocks(n, src, indent)
	}
}

func (r *pdfRenderer) heading(h *ast.Heading, src []byte) {
	t := r.theme
	p := r.pdf
	title := r.tr(strings.TrimSpace(pdfProse(plainText(h, src))))
	if title == "" {
		return
	}

	r.ensure(22)
	p.Ln(2)
	p.SetX(marginLeft)
	switch h.Level {
	case 1:
		p.SetFont("Times", "B", 18)
		r.textColor(t.Accent2)
		p.MultiCell(0, 9, title, "", "L", false)
	case 2:
		p.SetFont("Times", "", 15)
		r.textColor(t.Accent2)
		p.MultiCell(0, 7.5, title, "", "L", false)
		y := p.GetY() + 0.5
		r.drawColor(t.Accent)
		p.SetLineWidth(0.3)
		p.Line(marginLeft, y, marginLeft+18, y)
		p.Ln(1.5)
	case 3:
		p.SetFont("Helvetica", "B", 11)
		r.textColor(t.InkLight)
		p.MultiCell(0, 6, title, "", "L", false)
	default:
		p.SetFont("Helvetica", "B", bodySize)
		r.textColor(t.InkFaded)
		p.MultiCell(0, 5.5, title, "", "L", false)
	}
	p.Ln(1.5)
}

// flow writes styled runs as wrapped text starting at indent.
func (r *pdfRenderer) flow(spans []span, indent float64) {
	t := r.theme
	p := r.pdf
	lh := bodySize * 0.55

	p.SetLeftMargin(marginLeft + indent)
	defer p.SetLeftMargin(marginLeft)
	p.SetX(marginLeft + indent)

	for _, s := range spans {
		if s.newline {
			p.Ln(lh)
			continue
		}
		if r.quote > 0 {
			s.italic = true
		}
		switch {
		case s.code:
			p.SetFont("Courier", "", bodySize-1)
			r.textColor(t.Emphasis)
			p.Write(lh, r.txt(s.text))
			continue
		case r.quote > 0:
			r.textColor(t.InkLight)
		case s.bold:
			r.textColor(t.Accent2)
		default:
			r.textColor(t.Ink)
		}
		p.SetFont("Helvetica", s.style(), bodySize)
		p.Write(lh, r.prose(s.text))
	}
	p.Ln(lh)
}

func (r *pdfRenderer) list(l *ast.List, src []byte, indent float64) {
	t := r.theme
	p := r.pdf
	lh := bodySize * 0.55
	num := l.Start
	if num == 0 {
		num = 1
	}

	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		r.ensure(lh * 2)
		marker := r.txt("•")
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d.", num)
			num++
		}
		p.SetX(marginLeft + indent)
		p.SetFont("Helvetica", "B", bodySize)
		r.textColor(t.Accent)
		p.CellFormat(6, lh, marker, "", 0, "L", false, 0, "")

		first := true
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if !first {
				p.SetX(marginLeft + indent + 6)
			}
			r.block(c, src, indent+6)
			first = false
		}
	}
	if indent == 0 {
		p.Ln(2)
	}
}

func (r *pdfRenderer) blockquote(q *ast.Blockquote, src []byte, indent float64) {
	p := r.pdf
	r.ensure(12)
	page, y0 := p.PageNo(), p.GetY()

	r.quote++
	r.blocks(q, src, indent+5)
	r.quote--

	if p.PageNo() == page {
		r.drawColor(r.theme.Accent)
		p.SetLineWidth(0.8)
		x := marginLeft + indent + 1.5
		p.Line(x, y0, x, p.GetY()-2)
	}
	p.Ln(1.5)
}

func (r *pdfRenderer) code(code string, indent float64) {
	p := r.pdf
	r.ensure(12)
	p.SetFont("Courier", "", codeSize)
	r.textColor(r.theme.Ink)
	r.fillColor(r.theme.PageAlt)
	p.SetX(marginLeft + indent)
	p.MultiCell(r.width-indent, 4.3, r.txt(code), "", "L", true)
	p.Ln(3)
}

func (r *pdfRenderer) rule() {
	p := r.pdf
	p.Ln(2)
	y := p.GetY()
	r.drawColor(r.theme.Rule)
	p.SetLineWidth(0.3)
	p.Line(marginLeft+r.width*0.3, y, marginLeft+r.width*0.7, y)
	p.Ln(4)
}

var tableAlign = map[east.Alignment]string{
	east.AlignLeft:   "L",
	east.AlignRight:  "R",
	east.AlignCenter: "C",
	east.AlignNone:   "L",
}

func (r *pdfRenderer) table(tbl *east.Table, src []byte) {
	t := r.theme
	p := r.pdf
	const lh, pad = 5.0, 1.5

	type row struct {
		cells  []string
		header bool
	}
	var rows []row
	cols := 0
	for n := tbl.FirstChild(); n != nil; n = n.NextSibling() {
		var rw row
		_, rw.header = n.(*east.TableHeader)
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			rw.cells = append(rw.cells, r.prose(plainText(c, src)))
		}
		cols = max(cols, len(rw.cells))
		rows = append(rows, rw)
	}
	if cols == 0 {
		return
	}

	colW := r.width / float64(cols)
	r.drawColor(t.Rule)
	p.SetLineWidth(0.2)
	for _, rw := range rows {
		style := ""
		if rw.header {
			style = "B"
		}
		p.SetFont("Helvetica", style, bodySize-1)

		lines := 1
		for _, cell := range rw.cells {
			lines = max(lines, len(p.SplitText(cell, colW-2*pad)))
		}
		h := float64(lines)*lh + 2*pad
		r.ensure(h)

		x, y := marginLeft, p.GetY()
		for i := 0; i < cols; i++ {
			box := "D"
			if rw.header {
				r.fillColor(t.PageAlt)
				box = "FD"
			}
			p.Rect(x, y, colW, h, box)
			if i < len(rw.cells) {
				align := "L"
				if i < len(tbl.Alignments) {
					align = tableAlign[tbl.Alignments[i]]
				}
				r.textColor(t.Ink)
				p.SetXY(x+pad, y+pad)
				p.MultiCell(colW-2*pad, lh, rw.cells[i], "", align, false)
			}
			x += colW
		}
		p.SetXY(marginLeft, y+h)
	}
	p.Ln(4)
}
