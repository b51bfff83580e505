// Package theme builds the browser theme object from a final colour and
// scheme, and decides that final colour from a resolved page result.
package theme

import (
	"github.com/jmylchreest/tabtint/internal/colour"
	"github.com/jmylchreest/tabtint/internal/scheme"
)

// Offsets are the user's brightness adjustments per chrome region, in
// percent. Border offsets are relative to their surface.
type Offsets struct {
	TabBar              int `json:"tabbar" mapstructure:"tabbar" validate:"min=-50,max=50"`
	TabBarBorder        int `json:"tabbar_border" mapstructure:"tabbar_border" validate:"min=-50,max=50"`
	TabSelected         int `json:"tab_selected" mapstructure:"tab_selected" validate:"min=-50,max=50"`
	TabSelectedBorder   int `json:"tab_selected_border" mapstructure:"tab_selected_border" validate:"min=-50,max=50"`
	Toolbar             int `json:"toolbar" mapstructure:"toolbar" validate:"min=-50,max=50"`
	ToolbarBorder       int `json:"toolbar_border" mapstructure:"toolbar_border" validate:"min=-50,max=50"`
	ToolbarField        int `json:"toolbar_field" mapstructure:"toolbar_field" validate:"min=-50,max=50"`
	ToolbarFieldBorder  int `json:"toolbar_field_border" mapstructure:"toolbar_field_border" validate:"min=-50,max=50"`
	ToolbarFieldOnFocus int `json:"toolbar_field_focus" mapstructure:"toolbar_field_focus" validate:"min=-50,max=50"`
	Sidebar             int `json:"sidebar" mapstructure:"sidebar" validate:"min=-50,max=50"`
	SidebarBorder       int `json:"sidebar_border" mapstructure:"sidebar_border" validate:"min=-50,max=50"`
	Popup               int `json:"popup" mapstructure:"popup" validate:"min=-50,max=50"`
	PopupBorder         int `json:"popup_border" mapstructure:"popup_border" validate:"min=-50,max=50"`
}

// DefaultOffsets are the offsets used when the user has not changed them.
func DefaultOffsets() Offsets {
	return Offsets{
		TabBar:              0,
		TabBarBorder:        0,
		TabSelected:         10,
		TabSelectedBorder:   0,
		Toolbar:             0,
		ToolbarBorder:       0,
		ToolbarField:        5,
		ToolbarFieldBorder:  5,
		ToolbarFieldOnFocus: 5,
		Sidebar:             5,
		SidebarBorder:       5,
		Popup:               5,
		PopupBorder:         5,
	}
}

// offsetFactor scales a user offset into a brightness percentage.
const offsetFactor = 1.5

// Theme is the object passed to browser.theme.update.
type Theme struct {
	Colors     map[string]string `json:"colors"`
	Properties Properties        `json:"properties"`
}

// Properties declares the scheme the chrome is drawn in.
type Properties struct {
	ColorScheme        string `json:"color_scheme"`
	ContentColorScheme string `json:"content_color_scheme"`
}

// Scheme returns the scheme the theme was built for.
func (t Theme) Scheme() scheme.Scheme {
	return scheme.Scheme(t.Properties.ColorScheme)
}

// AdaptiveSlots lists the slots derived from the page colour, in display order.
var AdaptiveSlots = []string{
	"frame",
	"frame_inactive",
	"tab_selected",
	"tab_line",
	"toolbar",
	"toolbar_top_separator",
	"toolbar_bottom_separator",
	"toolbar_field",
	"toolbar_field_border",
	"toolbar_field_focus",
	"toolbar_field_border_focus",
	"sidebar",
	"sidebar_border",
	"popup",
	"popup_border",
	"ntp_background",
}

// staticSlots are the text and icon slots, fixed per scheme.
var staticSlots = map[scheme.Scheme]map[string]string{
	scheme.Light: {
		"tab_background_text":      "rgb(30, 30, 30)",
		"tab_text":                 "rgb(0, 0, 0)",
		"toolbar_text":             "rgb(0, 0, 0)",
		"toolbar_field_text":       "rgba(0, 0, 0, 0.9)",
		"toolbar_field_text_focus": "rgb(0, 0, 0)",
		"toolbar_field_highlight":  "rgba(0, 97, 224, 0.3)",
		"sidebar_text":             "rgb(0, 0, 0)",
		"popup_text":               "rgb(0, 0, 0)",
		"ntp_text":                 "rgb(0, 0, 0)",
		"icons":                    "rgb(30, 30, 30)",
		"icons_attention":          "rgb(0, 97, 224)",
		"tab_loading":              "rgb(0, 97, 224)",
		"button_background_hover":  "rgba(0, 0, 0, 0.11)",
		"button_background_active": "rgba(0, 0, 0, 0.22)",
		"tab_background_separator": "rgba(0, 0, 0, 0)",
	},
	scheme.Dark: {
		"tab_background_text":      "rgb(225, 225, 225)",
		"tab_text":                 "rgb(255, 255, 255)",
		"toolbar_text":             "rgb(255, 255, 255)",
		"toolbar_field_text":       "rgba(255, 255, 255, 0.9)",
		"toolbar_field_text_focus": "rgb(255, 255, 255)",
		"toolbar_field_highlight":  "rgba(0, 221, 255, 0.3)",
		"sidebar_text":             "rgb(255, 255, 255)",
		"popup_text":               "rgb(255, 255, 255)",
		"ntp_text":                 "rgb(255, 255, 255)",
		"icons":                    "rgb(225, 225, 225)",
		"icons_attention":          "rgb(84, 255, 189)",
		"tab_loading":              "rgb(0, 221, 255)",
		"button_background_hover":  "rgba(255, 255, 255, 0.11)",
		"button_background_active": "rgba(255, 255, 255, 0.22)",
		"tab_background_separator": "rgba(0, 0, 0, 0)",
	},
}

// Build maps a concrete colour to every theme slot. Offsets darken in light
// mode and lighten in dark mode. c must not be coded.
func Build(c colour.Colour, s scheme.Scheme, o Offsets) Theme {
	sign := -1.0
	if s == scheme.Dark {
		sign = 1
	}
	surface := func(offset int) string {
		return c.Brightness(sign * offsetFactor * float64(offset)).ToRGBA()
	}
	border := func(own, parent int) string {
		if own == 0 {
			return colour.Transparent.ToRGBA()
		}
		return surface(own + parent)
	}

	colors := map[string]string{
		"frame":                      surface(o.TabBar),
		"frame_inactive":             surface(o.TabBar),
		"tab_selected":               surface(o.TabSelected),
		"tab_line":                   border(o.TabSelectedBorder, o.TabSelected),
		"toolbar":                    surface(o.Toolbar),
		"toolbar_top_separator":      border(o.TabBarBorder, o.TabBar),
		"toolbar_bottom_separator":   border(o.ToolbarBorder, o.Toolbar),
		"toolbar_field":              surface(o.ToolbarField),
		"toolbar_field_border":       border(o.ToolbarFieldBorder, o.ToolbarField),
		"toolbar_field_focus":        surface(o.ToolbarFieldOnFocus),
		"toolbar_field_border_focus": border(o.ToolbarFieldBorder, o.ToolbarFieldOnFocus),
		"sidebar":                    surface(o.Sidebar),
		"sidebar_border":             border(o.SidebarBorder, o.Sidebar),
		"popup":                      surface(o.Popup),
		"popup_border":               border(o.PopupBorder, o.Popup),
		"ntp_background":             surface(0),
	}
	for slot, value := range staticSlots[s] {
		colors[slot] = value
	}

	return Theme{
		Colors: colors,
		Properties: Properties{
			ColorScheme:        s.String(),
			ContentColorScheme: "auto",
		},
	}
}
