package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TABTINT_MIN_CONTRAST_LIGHT.
const EnvPrefix = "TABTINT"

// Manager loads preferences from file and environment and notifies
// listeners when the file changes.
type Manager struct {
	viper    *viper.Viper
	logger   hclog.Logger
	explicit bool

	mu        sync.RWMutex
	prefs     Preferences
	callbacks []func(Preferences)
	watching  bool
}

// ConfigDir returns the directory searched for config files.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tabtint"), nil
}

// NewManager creates a manager. An empty path searches the user config
// directory and the working directory for config.{toml,yaml,json}.
func NewManager(path string, logger hclog.Logger) (*Manager, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		dir, err := ConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine config directory: %w", err)
		}
		v.AddConfigPath(dir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	m := &Manager{
		viper:    v,
		logger:   logger,
		explicit: path != "",
		prefs:    Defaults(),
	}
	m.setDefaults()
	return m, nil
}

func (m *Manager) setDefaults() {
	d := Defaults()
	v := m.viper
	v.SetDefault("scheme", d.Scheme)
	v.SetDefault("allow_dark_light", d.AllowDarkLight)
	v.SetDefault("dynamic", d.Dynamic)
	v.SetDefault("compatibility_mode", d.CompatibilityMode)
	v.SetDefault("min_contrast_light", d.MinContrastLight)
	v.SetDefault("min_contrast_dark", d.MinContrastDark)
	v.SetDefault("home_background_light", "")
	v.SetDefault("home_background_dark", "")
	v.SetDefault("fallback_colour_light", "")
	v.SetDefault("fallback_colour_dark", "")

	v.SetDefault("offsets.tabbar", d.Offsets.TabBar)
	v.SetDefault("offsets.tabbar_border", d.Offsets.TabBarBorder)
	v.SetDefault("offsets.tab_selected", d.Offsets.TabSelected)
	v.SetDefault("offsets.tab_selected_border", d.Offsets.TabSelectedBorder)
	v.SetDefault("offsets.toolbar", d.Offsets.Toolbar)
	v.SetDefault("offsets.toolbar_border", d.Offsets.ToolbarBorder)
	v.SetDefault("offsets.toolbar_field", d.Offsets.ToolbarField)
	v.SetDefault("offsets.toolbar_field_border", d.Offsets.ToolbarFieldBorder)
	v.SetDefault("offsets.toolbar_field_focus", d.Offsets.ToolbarFieldOnFocus)
	v.SetDefault("offsets.sidebar", d.Offsets.Sidebar)
	v.SetDefault("offsets.sidebar_border", d.Offsets.SidebarBorder)
	v.SetDefault("offsets.popup", d.Offsets.Popup)
	v.SetDefault("offsets.popup_border", d.Offsets.PopupBorder)

	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("server.throttle", d.Server.Throttle)
	v.SetDefault("plugins", []string{})
}

// Load reads the config file and environment. A missing config file is not
// an error unless the path was given explicitly.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

// load must be called with m.mu held for write.
func (m *Manager) load() error {
	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if m.explicit || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		m.logger.Debug("no config file found, using defaults")
	} else {
		m.logger.Debug("loaded config", "file", m.viper.ConfigFileUsed())
	}

	prefs := Preferences{}
	if err := m.viper.Unmarshal(&prefs); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := prefs.Validate(); err != nil {
		return err
	}

	m.prefs = prefs
	return nil
}

// Preferences returns the current preferences.
func (m *Manager) Preferences() Preferences {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prefs
}

// ConfigFileUsed returns the path of the loaded file, if any.
func (m *Manager) ConfigFileUsed() string {
	return m.viper.ConfigFileUsed()
}

// Reload re-reads the preferences and notifies listeners. On error the
// previous preferences stay in effect.
func (m *Manager) Reload() (Preferences, error) {
	m.mu.Lock()
	if err := m.load(); err != nil {
		prefs := m.prefs
		m.mu.Unlock()
		return prefs, err
	}
	m.notifyLocked()
	return m.Preferences(), nil
}

// OnChange registers fn to be called with the new preferences after every
// successful reload.
func (m *Manager) OnChange(fn func(Preferences)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// Watch reloads the preferences whenever the config file changes.
func (m *Manager) Watch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watching {
		return
	}

	m.viper.OnConfigChange(func(e fsnotify.Event) {
		m.logger.Debug("config change detected", "op", e.Op.String(), "file", e.Name)
		m.mu.Lock()
		if err := m.load(); err != nil {
			m.mu.Unlock()
			m.logger.Warn("failed to reload config, keeping previous preferences", "error", err)
			return
		}
		m.notifyLocked()
	})
	m.viper.WatchConfig()
	m.watching = true
}

// notifyLocked copies the callbacks, releases m.mu and invokes them.
func (m *Manager) notifyLocked() {
	prefs := m.prefs
	callbacks := make([]func(Preferences), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, cb := range callbacks {
		cb(prefs)
	}
}
