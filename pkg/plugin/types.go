// Package plugin provides the public API for tabtint theme sink plugins.
// External plugins should import this package instead of internal packages.
package plugin

// PluginInfo contains metadata about a plugin, returned by --plugin-info.
type PluginInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	Description     string `json:"description"`
	PluginProtocol  string `json:"plugin_protocol"` // "json-stdio" or "go-plugin"
}

// ThemeUpdate is sent to sink plugins every time a window's theme is applied.
type ThemeUpdate struct {
	WindowID int `json:"window_id"`
	// Scheme is "light" or "dark".
	Scheme string `json:"scheme"`
	// Colour is the final chrome colour as #rrggbb.
	Colour    string `json:"colour"`
	Reason    string `json:"reason"`
	Info      string `json:"info,omitempty"`
	Corrected bool   `json:"corrected"`
	// Colors holds every browser theme slot, keyed by slot name.
	Colors map[string]string `json:"colors"`
}
