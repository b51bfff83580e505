// Package plugin provides the public API for tabtint theme sink plugins.
package plugin

import (
	"context"
)

// SinkPlugin is the interface that sink plugins must implement for go-plugin RPC.
type SinkPlugin interface {
	// Apply receives a theme that was just applied to a browser window.
	Apply(ctx context.Context, update ThemeUpdate) error

	// GetMetadata returns plugin metadata.
	GetMetadata() PluginInfo
}
