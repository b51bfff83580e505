// notify - Tabtint Sink Plugin for Desktop Notifications
//
// Sends a desktop notification when a browser window's chrome switches
// between light and dark. Uses dunstify when available, notify-send
// otherwise. Runs over the go-plugin protocol so the process stays alive
// between theme updates and can remember each window's last scheme.
//
// Build:
//   go build -o tabtint-notify .
//
// Usage (config.toml):
//   plugins = ["/path/to/tabtint-notify"]
//
// Author: Tabtint Contributors
// License: MIT

package main

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/jmylchreest/tabtint/pkg/plugin"
)

const (
	icon      = "preferences-desktop-theme"
	timeoutMs = "3000"
)

// NotifyPlugin notifies when a window changes scheme.
type NotifyPlugin struct {
	mu      sync.Mutex
	schemes map[int]string
	binary  string
}

func newNotifyPlugin() *NotifyPlugin {
	p := &NotifyPlugin{schemes: make(map[int]string)}
	for _, name := range []string{"dunstify", "notify-send"} {
		if path, err := exec.LookPath(name); err == nil {
			p.binary = path
			break
		}
	}
	return p
}

// Apply implements plugin.SinkPlugin.
func (p *NotifyPlugin) Apply(ctx context.Context, update plugin.ThemeUpdate) error {
	p.mu.Lock()
	previous, seen := p.schemes[update.WindowID]
	p.schemes[update.WindowID] = update.Scheme
	p.mu.Unlock()

	if !seen || previous == update.Scheme {
		return nil
	}
	if p.binary == "" {
		return fmt.Errorf("neither dunstify nor notify-send found on $PATH")
	}

	summary := fmt.Sprintf("Window %d is now %s", update.WindowID, update.Scheme)
	body := fmt.Sprintf("%s (%s)", update.Colour, update.Reason)
	if update.Corrected {
		body += ", contrast corrected"
	}

	// #nosec G204 -- binary is resolved via exec.LookPath
	cmd := exec.CommandContext(ctx, p.binary,
		"-a", "tabtint",
		"-i", icon,
		"-u", "low",
		"-t", timeoutMs,
		summary,
		body,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", p.binary, err, out)
	}
	return nil
}

// GetMetadata implements plugin.SinkPlugin.
func (p *NotifyPlugin) GetMetadata() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:            "notify",
		Version:         "0.1.0",
		ProtocolVersion: plugin.ProtocolVersion,
		Description:     "Desktop notification when a window switches between light and dark",
		PluginProtocol:  string(plugin.PluginTypeGoPlugin),
	}
}

func main() {
	plugin.Serve(newNotifyPlugin())
}
