package render

import (
	"regexp"
	"strings"
)

// The PDF core fonts only cover cp1252. Common symbols get ASCII stand-ins;
// anything else outside the encoding (emoji, pictographs) is dropped.
var pdfReplacer = strings.NewReplacer(
	"→", "->",
	"←", "<-",
	"⇒", "=>",
	"↔", "<->",
	"✓", "v",
	"✔", "v",
	"✗", "x",
	"✘", "x",
	"≈", "~",
	"≠", "!=",
	"≤", "<=",
	"≥", ">=",
	"◆", "*",
	"◇", "*",
	"◈", "*",
	"✦", "*",
	"★", "*",
	"☆", "*",
	"\t", "    ",
	"\u00a0", " ",
	"\u2009", " ",
	"\u202f", " ",
)

var cp1252Extras = map[rune]bool{
	'€': true, '‚': true, 'ƒ': true, '„': true, '…': true, '†': true, '‡': true,
	'ˆ': true, '‰': true, 'Š': true, '‹': true, 'Œ': true, 'Ž': true, '‘': true,
	'’': true, '“': true, '”': true, '•': true, '–': true, '—': true, '˜': true,
	'™': true, 'š': true, '›': true, 'œ': true, 'ž': true, 'Ÿ': true,
}

func encodable(r rune) bool {
	switch {
	case r == '\n':
		return true
	case r >= 0x20 && r < 0x7f:
		return true
	case r >= 0xa0 && r <= 0xff:
		return true
	}
	return cp1252Extras[r]
}

// pdfText maps s onto characters the core fonts can draw.
func pdfText(s string) string {
	s = pdfReplacer.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if encodable(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var runOfSpaces = regexp.MustCompile(` {2,}`)

// pdfProse is pdfText for flowing text: gaps left by dropped emoji collapse.
func pdfProse(s string) string {
	return runOfSpaces.ReplaceAllString(pdfText(s), " ")
}

// spaced letter-spaces s for small-caps style labels.
func spaced(s string) string {
	runes := []rune(strings.ToUpper(s))
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}
