package scheme

import (
	"os"
	"strings"
	"sync"
)

const (
	priorityMedia = 100
	priorityEnv   = 20
)

// MediaDetector holds the prefers-color-scheme state reported by the browser.
// The extension pushes updates whenever the media query changes.
type MediaDetector struct {
	mu    sync.RWMutex
	value Scheme
}

// NewMediaDetector creates a detector with no reported state.
func NewMediaDetector() *MediaDetector {
	return &MediaDetector{}
}

// Name implements Detector.
func (*MediaDetector) Name() string { return "media-query" }

// Priority implements Detector.
func (*MediaDetector) Priority() int { return priorityMedia }

// Set records the latest media query state.
func (m *MediaDetector) Set(s Scheme) {
	m.mu.Lock()
	m.value = s
	m.mu.Unlock()
}

// Detect implements Detector.
func (m *MediaDetector) Detect() (Scheme, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value, m.value.Valid()
}

// EnvDetector reads GTK_THEME, which users commonly set to force a dark variant.
type EnvDetector struct{}

// Name implements Detector.
func (EnvDetector) Name() string { return "GTK_THEME" }

// Priority implements Detector.
func (EnvDetector) Priority() int { return priorityEnv }

// Detect implements Detector.
func (EnvDetector) Detect() (Scheme, bool) {
	theme := os.Getenv("GTK_THEME")
	if theme == "" {
		return "", false
	}
	if strings.Contains(strings.ToLower(theme), "dark") {
		return Dark, true
	}
	return Light, true
}
