package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tabtint/internal/colour"
	"github.com/jmylchreest/tabtint/internal/scheme"
)

func TestBuildAdaptiveSlots(t *testing.T) {
	c := colour.RGB(100, 100, 100)
	o := Offsets{TabSelected: 10, Toolbar: -10}

	light := Build(c, scheme.Light, o)
	dark := Build(c, scheme.Dark, o)

	assert.Equal(t, "rgba(100, 100, 100, 1)", light.Colors["frame"])
	assert.Equal(t, c.Brightness(-15).ToRGBA(), light.Colors["tab_selected"])
	assert.Equal(t, c.Brightness(15).ToRGBA(), dark.Colors["tab_selected"])
	assert.Equal(t, c.Brightness(15).ToRGBA(), light.Colors["toolbar"])
	assert.Equal(t, c.Brightness(-15).ToRGBA(), dark.Colors["toolbar"])
	assert.Equal(t, "rgba(100, 100, 100, 1)", light.Colors["ntp_background"])

	for _, slot := range AdaptiveSlots {
		assert.Contains(t, light.Colors, slot)
		assert.Contains(t, dark.Colors, slot)
	}
}

func TestBuildBorders(t *testing.T) {
	c := colour.RGB(200, 150, 100)
	o := Offsets{Sidebar: 4, SidebarBorder: 6, Popup: 10, PopupBorder: 0}

	got := Build(c, scheme.Light, o)

	assert.Equal(t, c.Brightness(-1.5*10).ToRGBA(), got.Colors["sidebar_border"])
	assert.Equal(t, "rgba(0, 0, 0, 0)", got.Colors["popup_border"])
	assert.Equal(t, "rgba(0, 0, 0, 0)", got.Colors["tab_line"])
	assert.Equal(t, "rgba(0, 0, 0, 0)", got.Colors["toolbar_bottom_separator"])
}

func TestBuildStaticSlots(t *testing.T) {
	light := Build(colour.RGB(250, 250, 250), scheme.Light, DefaultOffsets())
	dark := Build(colour.RGB(250, 250, 250), scheme.Dark, DefaultOffsets())

	assert.Equal(t, "rgb(0, 0, 0)", light.Colors["toolbar_text"])
	assert.Equal(t, "rgb(255, 255, 255)", dark.Colors["toolbar_text"])
	assert.Equal(t, "light", light.Properties.ColorScheme)
	assert.Equal(t, scheme.Dark, dark.Scheme())
	assert.Equal(t, "auto", dark.Properties.ContentColorScheme)
}

func TestFinalize(t *testing.T) {
	codes := colour.DefaultCodeTable()

	tests := []struct {
		name          string
		colour        colour.Colour
		opts          FinalizeOptions
		wantColour    string
		wantScheme    scheme.Scheme
		wantCorrected bool
	}{
		{
			name:       "coded current scheme",
			colour:     colour.MustCode(colour.CodeHome),
			opts:       FinalizeOptions{Scheme: scheme.Dark, Codes: codes},
			wantColour: "rgba(43, 42, 51, 1)",
			wantScheme: scheme.Dark,
		},
		{
			name:       "coded reversed scheme allowed",
			colour:     colour.MustCode(colour.CodeImageViewer),
			opts:       FinalizeOptions{Scheme: scheme.Light, AllowOppositeScheme: true, MinContrastLightX10: 45, MinContrastDarkX10: 45, Codes: codes},
			wantColour: "rgba(33, 33, 33, 1)",
			wantScheme: scheme.Dark,
		},
		{
			name:       "concrete eligible",
			colour:     colour.RGB(250, 250, 250),
			opts:       FinalizeOptions{Scheme: scheme.Light, MinContrastLightX10: 45, MinContrastDarkX10: 45},
			wantColour: "rgba(250, 250, 250, 1)",
			wantScheme: scheme.Light,
		},
		{
			name:       "black is dark eligible",
			colour:     colour.Black,
			opts:       FinalizeOptions{Scheme: scheme.Dark, MinContrastLightX10: 45, MinContrastDarkX10: 45},
			wantColour: "rgba(0, 0, 0, 1)",
			wantScheme: scheme.Dark,
		},
		{
			name:       "concrete flips scheme when allowed",
			colour:     colour.RGB(20, 20, 20),
			opts:       FinalizeOptions{Scheme: scheme.Light, AllowOppositeScheme: true, MinContrastLightX10: 45, MinContrastDarkX10: 45},
			wantColour: "rgba(20, 20, 20, 1)",
			wantScheme: scheme.Dark,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Finalize(tt.colour, tt.opts)
			assert.Equal(t, tt.wantColour, got.Colour.ToRGBA())
			assert.Equal(t, tt.wantScheme, got.Scheme)
			assert.Equal(t, tt.wantCorrected, got.Corrected)
		})
	}
}

func TestFinalizeCodedCorrectsReversedColour(t *testing.T) {
	opts := FinalizeOptions{Scheme: scheme.Light, MinContrastLightX10: 45, MinContrastDarkX10: 45}

	got := Finalize(colour.MustCode(colour.CodeImageViewer), opts)

	require.False(t, got.Colour.IsCoded())
	assert.Equal(t, scheme.Light, got.Scheme)
	assert.True(t, got.Corrected)
	assert.Greater(t, got.Colour.ContrastRatio(colour.Black), colour.RGB(33, 33, 33).ContrastRatio(colour.Black))
}

func TestFinalizeCodedWithoutAnyColour(t *testing.T) {
	// A table whose PDF entry is removed for both schemes.
	empty := colour.SchemePair{}
	codes := colour.NewCodeTable(map[colour.Code]colour.SchemePair{
		colour.CodeFallback:  colour.Pair(colour.RGB(1, 2, 3), colour.RGB(4, 5, 6)),
		colour.CodePDFViewer: empty,
	})

	got := Finalize(colour.MustCode(colour.CodePDFViewer), FinalizeOptions{Scheme: scheme.Dark, Codes: codes})
	assert.Equal(t, "rgba(4, 5, 6, 1)", got.Colour.ToRGBA())
	assert.Equal(t, scheme.Dark, got.Scheme)
	assert.False(t, got.Corrected)
}
