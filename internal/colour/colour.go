// Package colour provides the colour value used throughout tabtint: a
// channel-based RGBA colour or a symbolic code resolved per scheme at theme
// dispatch, together with the compositing and contrast maths applied to it.
package colour

import (
	"errors"
	"fmt"
	"math"
)

// Code names a special colour whose concrete value depends on the scheme.
type Code int

// Symbolic colour codes. The zero value means "not coded".
const (
	CodeNone Code = iota
	CodeHome
	CodeFallback
	CodePlaintext
	CodeSystem
	CodeAddon
	CodePDFViewer
	CodeImageViewer
	CodeJSONViewer
	CodeDefault
)

var codeNames = map[Code]string{
	CodeHome:        "HOME",
	CodeFallback:    "FALLBACK",
	CodePlaintext:   "PLAINTEXT",
	CodeSystem:      "SYSTEM",
	CodeAddon:       "ADDON",
	CodePDFViewer:   "PDFVIEWER",
	CodeImageViewer: "IMAGEVIEWER",
	CodeJSONViewer:  "JSONVIEWER",
	CodeDefault:     "DEFAULT",
}

// String returns the upper-case name of the code.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Valid reports whether c is one of the symbolic codes.
func (c Code) Valid() bool {
	_, ok := codeNames[c]
	return ok
}

// ParseCode converts a code name such as "HOME" into a Code.
func ParseCode(name string) (Code, error) {
	for code, n := range codeNames {
		if n == name {
			return code, nil
		}
	}
	return CodeNone, fmt.Errorf("%w: %q", ErrUnknownCode, name)
}

// ErrUnknownCode is returned when a code outside the closed set is requested.
var ErrUnknownCode = errors.New("unknown colour code")

// alphaEpsilon snaps composited alpha values this close to 1 onto 1 so that
// compositing over an opaque colour is always reported as opaque.
const alphaEpsilon = 1e-9

// Colour is either a concrete RGBA colour or a symbolic code, never both.
// Channels are clamped to 0-255 and alpha to 0-1 on construction.
// The zero value is transparent black.
type Colour struct {
	r, g, b, a float64
	code       Code
}

// FromChannels builds a concrete colour, clamping every channel into range.
func FromChannels(r, g, b, a float64) Colour {
	return Colour{
		r: clamp(r, 0, 255),
		g: clamp(g, 0, 255),
		b: clamp(b, 0, 255),
		a: clamp(a, 0, 1),
	}
}

// RGB builds an opaque colour.
func RGB(r, g, b float64) Colour {
	return FromChannels(r, g, b, 1)
}

// FromCode builds a coded colour. Only codes from the closed set are accepted.
func FromCode(code Code) (Colour, error) {
	if !code.Valid() {
		return Colour{}, fmt.Errorf("%w: %d", ErrUnknownCode, int(code))
	}
	return Colour{code: code}, nil
}

// MustCode is FromCode for package-level constants; it panics on an unknown code.
func MustCode(code Code) Colour {
	c, err := FromCode(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Common reference colours.
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(255, 255, 255)
	Transparent = FromChannels(0, 0, 0, 0)
)

// IsCoded reports whether the colour is symbolic.
func (c Colour) IsCoded() bool {
	return c.code != CodeNone
}

// Code returns the symbolic code, or CodeNone for a concrete colour.
func (c Colour) Code() Code {
	return c.code
}

// R returns the red channel (0-255).
func (c Colour) R() float64 {
	c.mustBeConcrete("R")
	return c.r
}

// G returns the green channel (0-255).
func (c Colour) G() float64 {
	c.mustBeConcrete("G")
	return c.g
}

// B returns the blue channel (0-255).
func (c Colour) B() float64 {
	c.mustBeConcrete("B")
	return c.b
}

// A returns the alpha channel (0-1).
func (c Colour) A() float64 {
	c.mustBeConcrete("A")
	return c.a
}

// IsOpaque reports whether the colour is coded or fully opaque.
func (c Colour) IsOpaque() bool {
	return c.IsCoded() || c.a == 1
}

// Opacity returns the colour with alpha multiplied by factor clamped to 0-1.
func (c Colour) Opacity(factor float64) Colour {
	c.mustBeConcrete("Opacity")
	return FromChannels(c.r, c.g, c.b, c.a*clamp(factor, 0, 1))
}

// Brightness moves the colour towards white (positive percent) or black
// (negative percent). 100 and above yield white, -100 and below yield black.
// Alpha is preserved.
func (c Colour) Brightness(percent float64) Colour {
	c.mustBeConcrete("Brightness")
	switch {
	case percent >= 100:
		return FromChannels(255, 255, 255, c.a)
	case percent > 0:
		t := percent / 100
		return FromChannels(
			c.r+(255-c.r)*t,
			c.g+(255-c.g)*t,
			c.b+(255-c.b)*t,
			c.a,
		)
	case percent == 0:
		return c
	case percent > -100:
		t := (percent + 100) / 100
		return FromChannels(c.r*t, c.g*t, c.b*t, c.a)
	default:
		return FromChannels(0, 0, 0, c.a)
	}
}

// Mix composites c over under and returns the result.
func (c Colour) Mix(under Colour) Colour {
	c.mustBeConcrete("Mix")
	under.mustBeConcrete("Mix")

	aOut := c.a + under.a*(1-c.a)
	if aOut == 0 {
		return Transparent
	}
	if aOut > 1-alphaEpsilon {
		aOut = 1
	}

	channel := func(top, bottom float64) float64 {
		return (top*c.a + bottom*under.a*(1-c.a)) / aOut
	}
	return FromChannels(
		channel(c.r, under.r),
		channel(c.g, under.g),
		channel(c.b, under.b),
		aOut,
	)
}

// Equal reports whether two colours are identical. Concrete colours compare
// by their rounded channels and alpha.
func (c Colour) Equal(other Colour) bool {
	if c.IsCoded() || other.IsCoded() {
		return c.code == other.code
	}
	return c.ToRGBA() == other.ToRGBA()
}

// String renders coded colours by name and concrete colours as rgba().
func (c Colour) String() string {
	if c.IsCoded() {
		return c.code.String()
	}
	return c.ToRGBA()
}

func (c Colour) mustBeConcrete(op string) {
	if c.IsCoded() {
		panic(fmt.Sprintf("colour: %s called on coded colour %s", op, c.code))
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
