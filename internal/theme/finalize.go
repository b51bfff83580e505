package theme

import (
	"github.com/jmylchreest/tabtint/internal/colour"
	"github.com/jmylchreest/tabtint/internal/scheme"
)

// FinalizeOptions are the preference values consulted when picking the
// colour and scheme a theme is built from.
type FinalizeOptions struct {
	Scheme              scheme.Scheme
	AllowOppositeScheme bool
	MinContrastLightX10 int
	MinContrastDarkX10  int
	Codes               *colour.CodeTable
}

// Final is the concrete colour and scheme handed to Build.
type Final struct {
	Colour    colour.Colour
	Scheme    scheme.Scheme
	Corrected bool
}

// Finalize resolves coded colours and applies contrast correction.
//
// A coded colour is looked up for the current scheme, then for the reversed
// scheme when opposite schemes are allowed. Otherwise the reversed scheme's
// colour is corrected for the current scheme; a code with no colour in
// either scheme becomes the FALLBACK colour.
func Finalize(c colour.Colour, opts FinalizeOptions) Final {
	codes := opts.Codes
	if codes == nil {
		codes = colour.DefaultCodeTable()
	}
	s := opts.Scheme

	if !c.IsCoded() {
		return correct(c, opts)
	}

	code := c.Code()
	if concrete, ok := codes.Lookup(code, s); ok {
		return Final{Colour: concrete, Scheme: s}
	}
	reversed, ok := codes.Lookup(code, s.Reverse())
	if !ok {
		return Final{Colour: codes.Fallback(s), Scheme: s}
	}
	if opts.AllowOppositeScheme {
		return Final{Colour: reversed, Scheme: s.Reverse()}
	}
	return correct(reversed, opts)
}

func correct(c colour.Colour, opts FinalizeOptions) Final {
	res := c.ContrastCorrection(colour.CorrectionOptions{
		Preferred:           opts.Scheme,
		AllowOppositeScheme: opts.AllowOppositeScheme,
		MinContrastLightX10: opts.MinContrastLightX10,
		MinContrastDarkX10:  opts.MinContrastDarkX10,
	})
	return Final{Colour: res.Colour, Scheme: res.Scheme, Corrected: res.Corrected}
}
