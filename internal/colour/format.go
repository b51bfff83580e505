package colour

import (
	"fmt"
	"math"
	"strconv"
)

// ToRGB renders the colour as "rgb(r, g, b)" with rounded channels.
func (c Colour) ToRGB() string {
	c.mustBeConcrete("ToRGB")
	r, g, b := c.rounded()
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}

// ToRGBA renders the colour as "rgba(r, g, b, a)" with rounded channels and
// alpha to three decimals.
func (c Colour) ToRGBA() string {
	c.mustBeConcrete("ToRGBA")
	r, g, b := c.rounded()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatAlpha(c.a))
}

// ToHex renders the colour as "#rrggbb", dropping alpha.
func (c Colour) ToHex() string {
	c.mustBeConcrete("ToHex")
	r, g, b := c.rounded()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// ToHexWithAlpha renders the colour as "#rrggbbaa".
func (c Colour) ToHexWithAlpha() string {
	c.mustBeConcrete("ToHexWithAlpha")
	r, g, b := c.rounded()
	return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, int(math.Round(c.a*255)))
}

func (c Colour) rounded() (r, g, b int) {
	return int(math.Round(c.r)), int(math.Round(c.g)), int(math.Round(c.b))
}

func formatAlpha(a float64) string {
	return strconv.FormatFloat(math.Round(a*1000)/1000, 'f', -1, 64)
}
