// Package scheme provides the light/dark colour scheme type and the resolver
// that derives the current scheme from the browser override and the system.
package scheme

import (
	"fmt"
	"strings"
)

// Scheme is the colour mode the browser chrome is rendered in.
type Scheme string

const (
	// Light renders dark text over a light chrome.
	Light Scheme = "light"
	// Dark renders light text over a dark chrome.
	Dark Scheme = "dark"
)

// Reverse returns the opposite scheme.
func (s Scheme) Reverse() Scheme {
	if s == Dark {
		return Light
	}
	return Dark
}

// String implements fmt.Stringer.
func (s Scheme) String() string {
	return string(s)
}

// Valid reports whether s is light or dark.
func (s Scheme) Valid() bool {
	return s == Light || s == Dark
}

// Parse converts a user supplied string into a Scheme.
// Accepts "light", "dark" and the "prefer-" forms used by some desktops.
func Parse(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light", "prefer-light":
		return Light, nil
	case "dark", "prefer-dark":
		return Dark, nil
	default:
		return "", fmt.Errorf("invalid scheme: %q (valid: light, dark)", s)
	}
}
