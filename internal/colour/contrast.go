package colour

import (
	"fmt"

	"github.com/jmylchreest/tabtint/internal/scheme"
)

// Correction is the outcome of ContrastCorrection.
type Correction struct {
	Colour    Colour
	Scheme    scheme.Scheme
	Corrected bool
}

// CorrectionOptions configures ContrastCorrection. Thresholds are contrast
// ratios multiplied by ten (45 means 4.5:1).
type CorrectionOptions struct {
	Preferred           scheme.Scheme
	AllowOppositeScheme bool
	MinContrastLightX10 int
	MinContrastDarkX10  int
	// RefLight is the text colour used in light mode. Defaults to black.
	RefLight *Colour
	// RefDark is the text colour used in dark mode. Defaults to white.
	RefDark *Colour
}

// ContrastCorrection picks the scheme the colour can be shown in and, when
// neither scheme is acceptable, shifts its brightness towards the preferred
// scheme's threshold.
//
// Eligibility is strict: a ratio equal to the threshold is not eligible.
func (c Colour) ContrastCorrection(opts CorrectionOptions) Correction {
	c.mustBeConcrete("ContrastCorrection")

	refLight := Black
	if opts.RefLight != nil {
		refLight = *opts.RefLight
	}
	refDark := White
	if opts.RefDark != nil {
		refDark = *opts.RefDark
	}

	contrastRatioLight := c.ContrastRatio(refLight)
	contrastRatioDark := c.ContrastRatio(refDark)
	minLight := float64(opts.MinContrastLightX10)
	minDark := float64(opts.MinContrastDarkX10)

	eligibleLight := contrastRatioLight > minLight/10
	eligibleDark := contrastRatioDark > minDark/10
	preferred := opts.Preferred
	allow := opts.AllowOppositeScheme

	switch {
	case eligibleLight && (preferred == scheme.Light || (preferred == scheme.Dark && allow)):
		return Correction{Colour: c, Scheme: scheme.Light}
	case eligibleDark && (preferred == scheme.Dark || (preferred == scheme.Light && allow)):
		return Correction{Colour: c, Scheme: scheme.Dark}
	case preferred == scheme.Light:
		luminance := c.RelativeLuminance()
		dim := 100 * ((minLight/(10*contrastRatioLight) - 1) * (luminance + luminanceOffset)) / (255 - luminance)
		return Correction{Colour: c.Brightness(dim), Scheme: scheme.Light, Corrected: true}
	case preferred == scheme.Dark:
		dim := 100*(10*contrastRatioDark)/minDark - 100
		return Correction{Colour: c.Brightness(dim), Scheme: scheme.Dark, Corrected: true}
	default:
		panic(fmt.Sprintf("colour: contrast correction with invalid preferred scheme %q", preferred))
	}
}
