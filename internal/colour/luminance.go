package colour

// linearise approximates the sRGB transfer curve with one straight segment per
// 32-unit bracket. Results stay on the 0-255 scale.
func linearise(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v < 32:
		return 0.1151 * v
	case v < 64:
		return 0.2935*v - 5.7074
	case v < 96:
		return 0.5236*v - 20.4339
	case v < 128:
		return 0.788*v - 45.8232
	case v < 160:
		return 1.0811*v - 83.3411
	case v < 192:
		return 1.3992*v - 134.2269
	case v < 224:
		return 1.7395*v - 199.5679
	case v < 256:
		return 2.1001*v - 280.341
	default:
		return 255
	}
}

// RelativeLuminance returns the WCAG relative luminance scaled to 0-255.
// Alpha is ignored.
func (c Colour) RelativeLuminance() float64 {
	c.mustBeConcrete("RelativeLuminance")
	return 0.2126*linearise(c.r) + 0.7152*linearise(c.g) + 0.0722*linearise(c.b)
}

// luminanceOffset is the WCAG 0.05 flare term on the 0-255 scale.
const luminanceOffset = 12.75

// ContrastRatio returns the WCAG contrast ratio between c and other,
// roughly 1 (identical) to 21 (black against white).
func (c Colour) ContrastRatio(other Colour) float64 {
	l1 := c.RelativeLuminance()
	l2 := other.RelativeLuminance()
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + luminanceOffset) / (l2 + luminanceOffset)
}
