package colour

import (
	"maps"

	"github.com/jmylchreest/tabtint/internal/scheme"
)

// SchemePair holds an optional colour per scheme. A nil entry means the
// colour is undefined for that scheme.
type SchemePair struct {
	Light *Colour
	Dark  *Colour
}

// For returns the entry for s.
func (p SchemePair) For(s scheme.Scheme) (Colour, bool) {
	var c *Colour
	if s == scheme.Dark {
		c = p.Dark
	} else {
		c = p.Light
	}
	if c == nil {
		return Colour{}, false
	}
	return *c, true
}

// Pair builds a SchemePair from two concrete colours.
func Pair(light, dark Colour) SchemePair {
	return SchemePair{Light: &light, Dark: &dark}
}

// DarkOnly builds a SchemePair that is undefined in light mode.
func DarkOnly(dark Colour) SchemePair {
	return SchemePair{Dark: &dark}
}

// CodeTable resolves symbolic codes to concrete colours per scheme.
type CodeTable struct {
	entries map[Code]SchemePair
}

// DefaultCodeTable returns the built-in colours for every code.
func DefaultCodeTable() *CodeTable {
	return &CodeTable{entries: map[Code]SchemePair{
		CodeHome:        Pair(RGB(255, 255, 255), RGB(43, 42, 51)),
		CodeFallback:    Pair(RGB(255, 255, 255), RGB(28, 27, 34)),
		CodePlaintext:   Pair(RGB(255, 255, 255), RGB(28, 27, 34)),
		CodeSystem:      Pair(RGB(249, 249, 251), RGB(28, 27, 34)),
		CodeAddon:       Pair(RGB(236, 236, 236), RGB(50, 50, 50)),
		CodePDFViewer:   Pair(RGB(249, 249, 250), RGB(56, 56, 61)),
		CodeImageViewer: DarkOnly(RGB(33, 33, 33)),
		CodeJSONViewer:  Pair(RGB(249, 249, 250), RGB(12, 12, 13)),
		CodeDefault:     Pair(RGB(255, 255, 255), RGB(28, 27, 34)),
	}}
}

// With returns a copy of the table with code's entry for s replaced.
// Coded replacement values are ignored.
func (t *CodeTable) With(code Code, s scheme.Scheme, c Colour) *CodeTable {
	if c.IsCoded() || !code.Valid() {
		return t
	}
	next := &CodeTable{entries: maps.Clone(t.entries)}
	pair := next.entries[code]
	if s == scheme.Dark {
		pair.Dark = &c
	} else {
		pair.Light = &c
	}
	next.entries[code] = pair
	return next
}

// NewCodeTable builds a table from explicit entries. Codes without an entry
// are undefined in both schemes.
func NewCodeTable(entries map[Code]SchemePair) *CodeTable {
	return &CodeTable{entries: maps.Clone(entries)}
}

// Lookup returns the concrete colour for code in scheme s, or false when the
// code has no colour defined for that scheme.
func (t *CodeTable) Lookup(code Code, s scheme.Scheme) (Colour, bool) {
	pair, ok := t.entries[code]
	if !ok {
		return Colour{}, false
	}
	return pair.For(s)
}

// Fallback returns the FALLBACK colour for s. FALLBACK is defined for both
// schemes in every table built by this package.
func (t *CodeTable) Fallback(s scheme.Scheme) Colour {
	if c, ok := t.Lookup(CodeFallback, s); ok {
		return c
	}
	if s == scheme.Dark {
		return RGB(28, 27, 34)
	}
	return White
}
