package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tabtint/internal/colour"
	"github.com/jmylchreest/tabtint/internal/scheme"
)

type contrastReport struct {
	Colour      string        `json:"colour"`
	Luminance   float64       `json:"luminance"`
	Against     string        `json:"against,omitempty"`
	Ratio       float64       `json:"ratio,omitempty"`
	RatioBlack  float64       `json:"ratio_black,omitempty"`
	RatioWhite  float64       `json:"ratio_white,omitempty"`
	Corrected   string        `json:"corrected,omitempty"`
	ThemeScheme scheme.Scheme `json:"theme_scheme,omitempty"`
	Changed     bool          `json:"changed,omitempty"`
}

func newContrastCmd() *cobra.Command {
	var (
		schemeFl schemeFlag
		jsonOut  bool
		noColour bool
	)

	cmd := &cobra.Command{
		Use:   "contrast <colour> [colour]",
		Short: "Check a colour against the contrast thresholds",
		Long: `With one colour, show its luminance, its contrast against black and white
text and the colour the host would use after contrast correction with the
configured thresholds.

With two colours, show the contrast ratio between them.

Colours may be hex, rgb(), hsl() or CSS names. Translucent colours are
composited over white first.`,
		Example: `  tabtint contrast "#336699"
  tabtint contrast rebeccapurple --scheme dark
  tabtint contrast white "rgb(118, 118, 118)"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd)
			mgr, err := loadConfig(cmd, logger)
			if err != nil {
				return err
			}
			prefs := mgr.Preferences()

			c, err := parseOpaque(args[0])
			if err != nil {
				return err
			}
			r := contrastReport{Colour: c.ToHex(), Luminance: c.RelativeLuminance()}

			if len(args) == 2 {
				other, err := parseOpaque(args[1])
				if err != nil {
					return err
				}
				r.Against = other.ToHex()
				r.Ratio = c.ContrastRatio(other)
			} else {
				current := currentScheme(schemeFl, prefs)
				res := c.ContrastCorrection(colour.CorrectionOptions{
					Preferred:           current,
					AllowOppositeScheme: prefs.AllowDarkLight,
					MinContrastLightX10: prefs.MinContrastLight,
					MinContrastDarkX10:  prefs.MinContrastDark,
				})
				r.RatioBlack = c.ContrastRatio(colour.Black)
				r.RatioWhite = c.ContrastRatio(colour.White)
				r.Corrected = res.Colour.ToHex()
				r.ThemeScheme = res.Scheme
				r.Changed = res.Corrected
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, r)
			}

			sw := newSwatcher(out, noColour)
			table := NewTable([]string{"Field", "Value"})
			table.AddRow([]string{"Colour", sw.label(c, r.Colour)})
			table.AddRow([]string{"Luminance", fmt.Sprintf("%.2f", r.Luminance)})
			if r.Against != "" {
				other, _ := parseOpaque(args[1])
				table.AddRow([]string{"Against", sw.label(other, r.Against)})
				table.AddRow([]string{"Ratio", fmt.Sprintf("%.2f:1", r.Ratio)})
			} else {
				table.AddRow([]string{"Black text", fmt.Sprintf("%.2f:1 (min %.1f)", r.RatioBlack, float64(prefs.MinContrastLight)/10)})
				table.AddRow([]string{"White text", fmt.Sprintf("%.2f:1 (min %.1f)", r.RatioWhite, float64(prefs.MinContrastDark)/10)})
				table.AddRow([]string{"Theme scheme", r.ThemeScheme.String()})
				corrected := colour.FromString(r.Corrected)
				table.AddRow([]string{"Result", sw.label(corrected, r.Corrected)})
				table.AddRow([]string{"Corrected", fmt.Sprintf("%t", r.Changed)})
			}
			fmt.Fprint(out, table.Render())
			return nil
		},
	}

	addSchemeFlag(cmd.Flags(), &schemeFl)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	cmd.Flags().BoolVar(&noColour, "no-colour", false, "disable colour swatches")
	return cmd
}

// parseOpaque parses s and composites it over white.
func parseOpaque(s string) (colour.Colour, error) {
	c, ok := colour.Parse(s)
	if !ok {
		return colour.Colour{}, fmt.Errorf("invalid colour: %q", s)
	}
	if !c.IsOpaque() {
		c = c.Mix(colour.White)
	}
	return c, nil
}
