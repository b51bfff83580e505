// Package messaging defines the messages exchanged between the core, the
// page collector and the extension UI, and dispatches incoming ones.
package messaging

import (
	"github.com/jmylchreest/tabtint/internal/signal"
)

// Header identifies a message.
type Header string

const (
	HeaderGetColour      Header = "GET_COLOUR"
	HeaderUpdateColour   Header = "UPDATE_COLOUR"
	HeaderScriptReady    Header = "SCRIPT_READY"
	HeaderSetThemeColour Header = "SET_THEME_COLOUR"
	HeaderSchemeRequest  Header = "SCHEME_REQUEST"
	HeaderMetaRequest    Header = "META_REQUEST"
	HeaderPrefChanged    Header = "PREF_CHANGED"
	HeaderInitRequest    Header = "INIT_REQUEST"
)

// Envelope is decoded first to find the header.
type Envelope struct {
	Header Header `json:"header" validate:"required"`
}

// GetColour asks a page for its colour evidence. The page answers with a
// signal.Bundle.
type GetColour struct {
	Header  Header `json:"header"`
	Active  bool   `json:"active"`
	Dynamic bool   `json:"dynamic"`
	Query   string `json:"query,omitempty"`
}

// NewGetColour builds a GET_COLOUR request.
func NewGetColour(active, dynamic bool, query string) GetColour {
	return GetColour{Header: HeaderGetColour, Active: active, Dynamic: dynamic, Query: query}
}

// UpdateColour is pushed by a page whose colour changed.
type UpdateColour struct {
	Header Header        `json:"header"`
	Colour signal.Bundle `json:"colour"`
}

// SetThemeColour asks the page to write a theme-color meta tag instead of
// the core using the theme API.
type SetThemeColour struct {
	Header Header `json:"header"`
	Colour string `json:"colour" validate:"required"`
}

// NewSetThemeColour builds a SET_THEME_COLOUR request.
func NewSetThemeColour(c string) SetThemeColour {
	return SetThemeColour{Header: HeaderSetThemeColour, Colour: c}
}

// MetaRequest asks for the cached result of a window.
type MetaRequest struct {
	Header   Header `json:"header"`
	WindowID *int   `json:"windowId" validate:"required"`
}

// Sender identifies the tab a page message came from. UI messages carry a
// zero Sender.
type Sender struct {
	TabID    int    `json:"tabId"`
	WindowID int    `json:"windowId"`
	URL      string `json:"url,omitempty"`
}
