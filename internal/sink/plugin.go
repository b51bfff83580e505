package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/tabtint/internal/plugin/executor"
	sinkplugin "github.com/jmylchreest/tabtint/pkg/plugin"
)

// PluginApplier is the part of executor.PluginExecutor the plugin sink uses.
type PluginApplier interface {
	Name() string
	Apply(ctx context.Context, update sinkplugin.ThemeUpdate) error
	Close()
}

// Plugin forwards updates to an external theme sink plugin. Plugin failures
// are logged and never stop the theme from being applied elsewhere.
type Plugin struct {
	applier PluginApplier
	logger  hclog.Logger
}

// NewPlugin wraps an applier.
func NewPlugin(applier PluginApplier, logger hclog.Logger) *Plugin {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Plugin{applier: applier, logger: logger.With("plugin", applier.Name())}
}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return p.applier.Name()
}

// Apply implements Sink.
func (p *Plugin) Apply(ctx context.Context, u Update) error {
	if err := p.applier.Apply(ctx, ToThemeUpdate(u)); err != nil {
		p.logger.Warn("theme sink plugin failed", "window", u.WindowID, "error", err)
	}
	return nil
}

// Close stops the plugin process if one is running.
func (p *Plugin) Close() {
	p.applier.Close()
}

// ToThemeUpdate converts an update to the plugin wire type.
func ToThemeUpdate(u Update) sinkplugin.ThemeUpdate {
	colors := make(map[string]string, len(u.Theme.Colors))
	for k, v := range u.Theme.Colors {
		colors[k] = v
	}
	return sinkplugin.ThemeUpdate{
		WindowID:  u.WindowID,
		Scheme:    u.Theme.Properties.ColorScheme,
		Colour:    u.Colour.ToHex(),
		Reason:    string(u.Entry.Reason),
		Info:      u.Entry.Info,
		Corrected: u.Entry.Corrected,
		Colors:    colors,
	}
}

// LoadPlugins starts an executor for every plugin path. Plugins that fail
// detection are skipped; their errors are joined into the returned error.
func LoadPlugins(paths []string, logger hclog.Logger) ([]*Plugin, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	var (
		plugins []*Plugin
		errs    []error
	)
	for _, path := range paths {
		exec, err := executor.New(path, logger)
		if err != nil {
			errs = append(errs, fmt.Errorf("plugin %s: %w", path, err))
			continue
		}
		logger.Info("loaded theme sink plugin", "name", exec.Name(), "protocol", exec.Protocol())
		plugins = append(plugins, NewPlugin(exec, logger))
	}
	return plugins, errors.Join(errs...)
}
