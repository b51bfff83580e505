// Package config loads and watches the user preferences consumed by the
// engine.
package config

import (
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/tabtint/internal/colour"
	"github.com/jmylchreest/tabtint/internal/policy"
	"github.com/jmylchreest/tabtint/internal/scheme"
	"github.com/jmylchreest/tabtint/internal/theme"
)

// Scheme override values.
const (
	SchemeAuto  = "auto"
	SchemeLight = "light"
	SchemeDark  = "dark"
)

// Preferences is the normalised preference object. It is a value: the
// engine swaps whole copies and never mutates one in place.
type Preferences struct {
	// Scheme is the browser web appearance override: auto, light or dark.
	Scheme            string `mapstructure:"scheme" json:"scheme" validate:"oneof=auto light dark"`
	AllowDarkLight    bool   `mapstructure:"allow_dark_light" json:"allow_dark_light"`
	Dynamic           bool   `mapstructure:"dynamic" json:"dynamic"`
	CompatibilityMode bool   `mapstructure:"compatibility_mode" json:"compatibility_mode"`

	// Contrast thresholds are ratios multiplied by ten.
	MinContrastLight int `mapstructure:"min_contrast_light" json:"min_contrast_light" validate:"min=10,max=210"`
	MinContrastDark  int `mapstructure:"min_contrast_dark" json:"min_contrast_dark" validate:"min=10,max=210"`

	HomeBackgroundLight string `mapstructure:"home_background_light" json:"home_background_light" validate:"omitempty,csscolour"`
	HomeBackgroundDark  string `mapstructure:"home_background_dark" json:"home_background_dark" validate:"omitempty,csscolour"`
	FallbackColourLight string `mapstructure:"fallback_colour_light" json:"fallback_colour_light" validate:"omitempty,csscolour"`
	FallbackColourDark  string `mapstructure:"fallback_colour_dark" json:"fallback_colour_dark" validate:"omitempty,csscolour"`

	Offsets theme.Offsets `mapstructure:"offsets" json:"offsets"`

	// Policies are validated individually; invalid ones are dropped.
	Policies []policy.Policy `mapstructure:"policies" json:"policies" validate:"-"`

	Server  Server   `mapstructure:"server" json:"server"`
	Plugins []string `mapstructure:"plugins" json:"plugins"`
}

// Server configures the WebSocket bridge to the extension.
type Server struct {
	Listen         string        `mapstructure:"listen" json:"listen" validate:"required,hostname_port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins" json:"allowed_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout" validate:"gt=0"`
	Throttle       time.Duration `mapstructure:"throttle" json:"throttle" validate:"gte=0"`
}

// Defaults returns the preferences used when nothing is configured.
func Defaults() Preferences {
	return Preferences{
		Scheme:           SchemeAuto,
		AllowDarkLight:   true,
		Dynamic:          true,
		MinContrastLight: 45,
		MinContrastDark:  45,
		Offsets:          theme.DefaultOffsets(),
		Server: Server{
			Listen:         "127.0.0.1:7447",
			AllowedOrigins: []string{"moz-extension://*"},
			RequestTimeout: 2 * time.Second,
			Throttle:       250 * time.Millisecond,
		},
	}
}

// SchemeOverride implements scheme.OverrideProvider.
func (p Preferences) SchemeOverride() string {
	return p.Scheme
}

// CodeTable returns the built-in code colours with the HOME and FALLBACK
// overrides applied.
func (p Preferences) CodeTable() *colour.CodeTable {
	t := colour.DefaultCodeTable()
	overrides := []struct {
		value string
		code  colour.Code
		s     scheme.Scheme
	}{
		{p.HomeBackgroundLight, colour.CodeHome, scheme.Light},
		{p.HomeBackgroundDark, colour.CodeHome, scheme.Dark},
		{p.FallbackColourLight, colour.CodeFallback, scheme.Light},
		{p.FallbackColourDark, colour.CodeFallback, scheme.Dark},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		if c, ok := colour.Parse(o.value); ok {
			t = t.With(o.code, o.s, c)
		}
	}
	return t
}

// PolicySet validates the configured policies.
func (p Preferences) PolicySet(logger hclog.Logger) *policy.Set {
	return policy.NewSet(p.Policies, logger)
}

// FinalizeOptions returns the theme options for the current scheme.
func (p Preferences) FinalizeOptions(current scheme.Scheme) theme.FinalizeOptions {
	return theme.FinalizeOptions{
		Scheme:              current,
		AllowOppositeScheme: p.AllowDarkLight,
		MinContrastLightX10: p.MinContrastLight,
		MinContrastDarkX10:  p.MinContrastDark,
		Codes:               p.CodeTable(),
	}
}
