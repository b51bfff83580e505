package colour

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

var (
	rgbRegex = regexp.MustCompile(`^rgba?\(\s*([-+0-9.e]+%?)\s*[,\s]\s*([-+0-9.e]+%?)\s*[,\s]\s*([-+0-9.e]+%?)\s*(?:[,/]\s*([-+0-9.e]+%?)\s*)?\)$`)
	hslRegex = regexp.MustCompile(`^hsla?\(\s*([-+0-9.e]+)(?:deg)?\s*[,\s]\s*([-+0-9.e]+)%\s*[,\s]\s*([-+0-9.e]+)%\s*(?:[,/]\s*([-+0-9.e]+%?)\s*)?\)$`)
)

// FromString parses a CSS colour as browsers normalise it: hex, rgb()/rgba(),
// hsl()/hsla(), named colours and "transparent". Anything it cannot parse
// becomes opaque black.
func FromString(s string) Colour {
	c, ok := Parse(s)
	if !ok {
		return Black
	}
	return c
}

// Parse is FromString reporting whether parsing succeeded.
func Parse(s string) (Colour, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Colour{}, false
	}

	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}

	if m := rgbRegex.FindStringSubmatch(s); m != nil {
		r, okR := parseChannel(m[1])
		g, okG := parseChannel(m[2])
		b, okB := parseChannel(m[3])
		a, okA := parseAlpha(m[4])
		if !okR || !okG || !okB || !okA {
			return Colour{}, false
		}
		return FromChannels(r, g, b, a), true
	}

	if m := hslRegex.FindStringSubmatch(s); m != nil {
		return parseHSL(m)
	}

	if s == "transparent" {
		return Transparent, true
	}

	if named, ok := colornames.Map[s]; ok {
		return RGB(float64(named.R), float64(named.G), float64(named.B)), true
	}

	return Colour{}, false
}

// parseHex accepts RGB, RGBA, RRGGBB and RRGGBBAA digits.
func parseHex(hex string) (Colour, bool) {
	if len(hex) == 3 || len(hex) == 4 {
		expanded := make([]byte, 0, len(hex)*2)
		for i := 0; i < len(hex); i++ {
			expanded = append(expanded, hex[i], hex[i])
		}
		hex = string(expanded)
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Colour{}, false
	}

	var channels [4]float64
	channels[3] = 255
	for i := 0; i < len(hex)/2; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return Colour{}, false
		}
		channels[i] = float64(v)
	}

	return FromChannels(channels[0], channels[1], channels[2], channels[3]/255), true
}

// parseChannel reads a 0-255 number or a percentage of 255.
func parseChannel(s string) (float64, bool) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		return v * 255 / 100, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseAlpha reads a 0-1 number or a percentage. Empty means opaque.
func parseAlpha(s string) (float64, bool) {
	if s == "" {
		return 1, true
	}
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		return v / 100, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseHSL(m []string) (Colour, bool) {
	h, errH := strconv.ParseFloat(m[1], 64)
	sat, errS := strconv.ParseFloat(m[2], 64)
	light, errL := strconv.ParseFloat(m[3], 64)
	a, okA := parseAlpha(m[4])
	if errH != nil || errS != nil || errL != nil || !okA {
		return Colour{}, false
	}
	if math.IsInf(h, 0) || math.IsNaN(h) {
		return Colour{}, false
	}

	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	hsl := colorful.Hsl(h, clamp(sat/100, 0, 1), clamp(light/100, 0, 1)).Clamped()
	return FromChannels(hsl.R*255, hsl.G*255, hsl.B*255, a), true
}
