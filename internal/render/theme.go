package render

import (
	"fmt"
	"sort"
	"strconv"
)

// Color is an RGB colour.
type Color struct {
	R, G, B int
}

func hexColor(s string) Color {
	if len(s) != 7 || s[0] != '#' {
		panic(fmt.Sprintf("render: bad colour %q", s))
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		panic(fmt.Sprintf("render: bad colour %q", s))
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}
}

// Hex returns the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Theme is a named palette shared by the PDF and HTML renderers.
type Theme struct {
	Name        string
	Description string

	CoverFrom   Color // cover gradient, top left
	CoverTo     Color // cover gradient, bottom right
	CoverText   Color
	CoverAccent Color
	CoverMuted  Color

	Page     Color // page background
	PageAlt  Color // highlight boxes, code, table headers
	Rule     Color
	Accent   Color
	Accent2  Color
	Muted    Color
	Emphasis Color

	Ink      Color
	InkLight Color
	InkFaded Color
}

// DefaultTheme is used when no theme is configured.
const DefaultTheme = "velvet"

var themes = map[string]*Theme{
	"velvet": {
		Name:        "velvet",
		Description: "Editorial magazine style: dark forest cover, cream pages, gold accents",
		CoverFrom:   hexColor("#1a2f2a"),
		CoverTo:     hexColor("#3d5e54"),
		CoverText:   hexColor("#faf6f0"),
		CoverAccent: hexColor("#c9a227"),
		CoverMuted:  hexColor("#a08520"),
		Page:        hexColor("#faf6f0"),
		PageAlt:     hexColor("#f5efe5"),
		Rule:        hexColor("#e8dfd0"),
		Accent:      hexColor("#c9a227"),
		Accent2:     hexColor("#2d4a42"),
		Muted:       hexColor("#a08520"),
		Emphasis:    hexColor("#b85c38"),
		Ink:         hexColor("#2c2c2c"),
		InkLight:    hexColor("#555555"),
		InkFaded:    hexColor("#888888"),
	},
	"parchment": {
		Name:        "parchment",
		Description: "Light sepia pages with walnut ink and a pale cover",
		CoverFrom:   hexColor("#f4ead5"),
		CoverTo:     hexColor("#e2cfa6"),
		CoverText:   hexColor("#3b2f20"),
		CoverAccent: hexColor("#8b5a2b"),
		CoverMuted:  hexColor("#9c7b4f"),
		Page:        hexColor("#fbf7ee"),
		PageAlt:     hexColor("#f3ead8"),
		Rule:        hexColor("#e0d2b4"),
		Accent:      hexColor("#8b5a2b"),
		Accent2:     hexColor("#5c4326"),
		Muted:       hexColor("#9c7b4f"),
		Emphasis:    hexColor("#a0432a"),
		Ink:         hexColor("#2e261c"),
		InkLight:    hexColor("#5a4d3c"),
		InkFaded:    hexColor("#8f8170"),
	},
	"midnight": {
		Name:        "midnight",
		Description: "Dark navy pages with silver text and blue accents",
		CoverFrom:   hexColor("#0b1020"),
		CoverTo:     hexColor("#1f2b45"),
		CoverText:   hexColor("#e8ecf5"),
		CoverAccent: hexColor("#8fb3ff"),
		CoverMuted:  hexColor("#6d83b3"),
		Page:        hexColor("#141b2d"),
		PageAlt:     hexColor("#1c2540"),
		Rule:        hexColor("#2c3858"),
		Accent:      hexColor("#8fb3ff"),
		Accent2:     hexColor("#b7c8f0"),
		Muted:       hexColor("#6d83b3"),
		Emphasis:    hexColor("#f0a070"),
		Ink:         hexColor("#dfe4ee"),
		InkLight:    hexColor("#b3bccd"),
		InkFaded:    hexColor("#7c879c"),
	},
}

// ThemeNames returns the registered theme names, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Themes returns every registered theme, sorted by name.
func Themes() []*Theme {
	out := make([]*Theme, 0, len(themes))
	for _, name := range ThemeNames() {
		out = append(out, themes[name])
	}
	return out
}

// LookupTheme returns the named theme. An empty name selects DefaultTheme.
func LookupTheme(name string) (*Theme, bool) {
	if name == "" {
		name = DefaultTheme
	}
	t, ok := themes[name]
	return t, ok
}
