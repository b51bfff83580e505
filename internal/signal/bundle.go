// Package signal defines the colour evidence a page reports back to the core.
// Bundles are produced by the page collector and consumed once by the resolver.
package signal

import (
	"math"
	"strconv"
	"strings"

	"github.com/jmylchreest/tabtint/internal/scheme"
)

// Bundle is the unprocessed colour evidence for one page load.
type Bundle struct {
	Theme Theme    `json:"theme"`
	Page  []Sample `json:"page"`
	Query *Query   `json:"query,omitempty"`
}

// Theme holds the theme-color meta tag values. A page with a single,
// scheme-agnostic tag reports it under both keys.
type Theme struct {
	Light string `json:"light,omitempty"`
	Dark  string `json:"dark,omitempty"`
}

// Sample is one element's background along the DOM ancestor chain, ordered
// from the element under the sampling point outwards.
type Sample struct {
	Colour  string `json:"colour"`
	Opacity string `json:"opacity"`
	Filter  string `json:"filter"`
}

// Query is the background colour of the element matched by a policy's selector.
type Query struct {
	Colour string `json:"colour"`
}

// ThemeFor returns the theme-color tag for s, or "" when the page has none.
func (b Bundle) ThemeFor(s scheme.Scheme) string {
	if s == scheme.Dark {
		return b.Theme.Dark
	}
	return b.Theme.Light
}

// ParsedOpacity returns the sample's opacity. A missing or unparseable
// value reports false and the sample is not composited.
func (s Sample) ParsedOpacity() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s.Opacity), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
