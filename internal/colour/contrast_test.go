package colour

import (
	"testing"

	"github.com/jmylchreest/tabtint/internal/scheme"
)

func TestContrastCorrection_NoCorrectionNeeded(t *testing.T) {
	tests := []struct {
		name       string
		c          Colour
		opts       CorrectionOptions
		wantScheme scheme.Scheme
	}{
		{
			name:       "black is always dark eligible",
			c:          Black,
			opts:       CorrectionOptions{Preferred: scheme.Dark, MinContrastLightX10: 45, MinContrastDarkX10: 45},
			wantScheme: scheme.Dark,
		},
		{
			name:       "white in light mode",
			c:          White,
			opts:       CorrectionOptions{Preferred: scheme.Light, MinContrastLightX10: 45, MinContrastDarkX10: 45},
			wantScheme: scheme.Light,
		},
		{
			name:       "grey flips to light when allowed",
			c:          RGB(128, 128, 128),
			opts:       CorrectionOptions{Preferred: scheme.Dark, AllowOppositeScheme: true, MinContrastLightX10: 45, MinContrastDarkX10: 45},
			wantScheme: scheme.Light,
		},
		{
			name:       "black flips to dark when allowed",
			c:          Black,
			opts:       CorrectionOptions{Preferred: scheme.Light, AllowOppositeScheme: true, MinContrastLightX10: 45, MinContrastDarkX10: 45},
			wantScheme: scheme.Dark,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.c.ContrastCorrection(tt.opts)
			if got.Corrected {
				t.Errorf("Corrected = true, want false")
			}
			if got.Scheme != tt.wantScheme {
				t.Errorf("Scheme = %s, want %s", got.Scheme, tt.wantScheme)
			}
			if !got.Colour.Equal(tt.c) {
				t.Errorf("Colour = %s, want unchanged %s", got.Colour, tt.c)
			}
		})
	}
}

func TestContrastCorrection_BoundaryIsNotEligible(t *testing.T) {
	white := White
	opts := CorrectionOptions{
		Preferred:           scheme.Light,
		MinContrastLightX10: 10,
		MinContrastDarkX10:  10,
		RefLight:            &white,
		RefDark:             &white,
	}

	// Against itself the ratio is exactly 1.0, which equals the 1.0 threshold.
	got := White.ContrastCorrection(opts)
	if !got.Corrected {
		t.Fatal("ratio equal to threshold must trigger correction")
	}
	if got.Scheme != scheme.Light {
		t.Errorf("Scheme = %s, want light", got.Scheme)
	}

	opts.MinContrastLightX10 = 9
	if got := White.ContrastCorrection(opts); got.Corrected {
		t.Error("ratio above threshold must not be corrected")
	}
}

func TestContrastCorrection_LightFormula(t *testing.T) {
	grey := RGB(128, 128, 128)
	opts := CorrectionOptions{Preferred: scheme.Light, MinContrastLightX10: 90, MinContrastDarkX10: 45}

	crLight := grey.ContrastRatio(Black)
	lum := grey.RelativeLuminance()
	dim := 100 * ((90/(10*crLight) - 1) * (lum + 12.75)) / (255 - lum)
	want := grey.Brightness(dim)

	got := grey.ContrastCorrection(opts)
	if !got.Corrected || got.Scheme != scheme.Light {
		t.Fatalf("got %+v, want corrected light", got)
	}
	if !got.Colour.Equal(want) {
		t.Errorf("Colour = %s, want %s", got.Colour, want)
	}
	if dim <= 0 {
		t.Errorf("dim = %v, expected the light branch to lighten", dim)
	}
	if got.Colour.ContrastRatio(Black) <= crLight {
		t.Error("correction did not improve contrast against black")
	}
}

func TestContrastCorrection_DarkFormula(t *testing.T) {
	grey := RGB(128, 128, 128)
	opts := CorrectionOptions{Preferred: scheme.Dark, MinContrastLightX10: 90, MinContrastDarkX10: 45}

	crDark := grey.ContrastRatio(White)
	dim := 100*(10*crDark)/45 - 100
	want := grey.Brightness(dim)

	got := grey.ContrastCorrection(opts)
	if !got.Corrected || got.Scheme != scheme.Dark {
		t.Fatalf("got %+v, want corrected dark", got)
	}
	if !got.Colour.Equal(want) {
		t.Errorf("Colour = %s, want %s", got.Colour, want)
	}
	if got.Colour.ContrastRatio(White) <= crDark {
		t.Error("correction did not improve contrast against white")
	}
}

func TestContrastCorrection_DarkReachesThreshold(t *testing.T) {
	samples := []Colour{RGB(128, 128, 128), RGB(200, 50, 50), RGB(90, 160, 220), RGB(240, 240, 240)}
	for _, c := range samples {
		got := c.ContrastCorrection(CorrectionOptions{Preferred: scheme.Dark, MinContrastLightX10: 210, MinContrastDarkX10: 45})
		if !got.Corrected {
			continue
		}
		if ratio := got.Colour.ContrastRatio(White); ratio < 4.5-0.01 {
			t.Errorf("%s corrected to %s with ratio %.3f, want >= 4.5", c, got.Colour, ratio)
		}
	}
}

func TestContrastCorrection_InvalidSchemePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid scheme")
		}
	}()
	RGB(128, 128, 128).ContrastCorrection(CorrectionOptions{Preferred: "sepia", MinContrastLightX10: 90, MinContrastDarkX10: 90})
}

// The light formula lightens towards the threshold without reaching it.
// Dark greys corrected for light mode stay below 4.5:1 against black.
func TestContrastCorrection_LightFormulaUndershoots(t *testing.T) {
	opts := CorrectionOptions{Preferred: scheme.Light, MinContrastLightX10: 45, MinContrastDarkX10: 45}

	for v := 0.0; v <= 110; v += 10 {
		grey := RGB(v, v, v)
		before := grey.ContrastRatio(Black)

		got := grey.ContrastCorrection(opts)
		if !got.Corrected || got.Scheme != scheme.Light {
			t.Fatalf("grey %v: got %+v, want corrected light", v, got)
		}

		after := got.Colour.ContrastRatio(Black)
		if after <= before {
			t.Errorf("grey %v: ratio %v did not improve on %v", v, after, before)
		}
		if after >= 4.5 {
			t.Errorf("grey %v: ratio %v reached the threshold, the light formula has changed", v, after)
		}
	}
}
