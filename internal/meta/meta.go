// Package meta holds the reason codes and results that explain why a colour
// was chosen for a tab. They are shown in the extension's popup info panel.
package meta

import "github.com/jmylchreest/tabtint/internal/colour"

// Reason tags the rule that produced a colour.
type Reason string

const (
	ReasonHomePage        Reason = "HOME_PAGE"
	ReasonProtectedPage   Reason = "PROTECTED_PAGE"
	ReasonAddon           Reason = "ADDON"
	ReasonTextViewer      Reason = "TEXT_VIEWER"
	ReasonImageViewer     Reason = "IMAGE_VIEWER"
	ReasonPDFViewer       Reason = "PDF_VIEWER"
	ReasonJSONViewer      Reason = "JSON_VIEWER"
	ReasonFallbackColour  Reason = "FALLBACK_COLOUR"
	ReasonColourSpecified Reason = "COLOUR_SPECIFIED"
	ReasonThemeUsed       Reason = "THEME_USED"
	ReasonThemeMissing    Reason = "THEME_MISSING"
	ReasonThemeIgnored    Reason = "THEME_IGNORED"
	ReasonColourPicked    Reason = "COLOUR_PICKED"
	ReasonQSUsed          Reason = "QS_USED"
	ReasonQSFailed        Reason = "QS_FAILED"
)

// Result is a resolved page colour and the reason it was chosen.
type Result struct {
	Colour colour.Colour
	Reason Reason
	// Info carries extra context such as an add-on id or a query selector.
	Info string
}

// Entry is the last applied result for a window.
type Entry struct {
	Result
	Corrected bool
}

// EntryJSON is the META_REQUEST response shape.
type EntryJSON struct {
	Colour    string `json:"colour"`
	Reason    Reason `json:"reason"`
	Info      string `json:"info,omitempty"`
	Corrected bool   `json:"corrected"`
}

// JSON converts the entry for the popup. Coded colours are reported by name.
func (e Entry) JSON() EntryJSON {
	return EntryJSON{
		Colour:    e.Colour.String(),
		Reason:    e.Reason,
		Info:      e.Info,
		Corrected: e.Corrected,
	}
}
