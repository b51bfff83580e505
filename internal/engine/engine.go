// Package engine owns the mutable state of the colour pipeline and runs a
// resolution cycle whenever a window's active tab may need a new colour.
package engine

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/tabtint/internal/cache"
	"github.com/jmylchreest/tabtint/internal/config"
	"github.com/jmylchreest/tabtint/internal/messaging"
	"github.com/jmylchreest/tabtint/internal/meta"
	"github.com/jmylchreest/tabtint/internal/policy"
	"github.com/jmylchreest/tabtint/internal/protected"
	"github.com/jmylchreest/tabtint/internal/ratelimit"
	"github.com/jmylchreest/tabtint/internal/scheme"
	"github.com/jmylchreest/tabtint/internal/signal"
	"github.com/jmylchreest/tabtint/internal/sink"
)

// ErrNoPage is returned when no page context is available to query.
var ErrNoPage = errors.New("page context unavailable")

// refreshConcurrency bounds the windows resolved at once by Refresh.
const refreshConcurrency = 4

// PageContext talks to the collector running inside a tab.
type PageContext interface {
	// RequestColour sends GET_COLOUR and waits for the signal bundle.
	RequestColour(ctx context.Context, tabID int, req messaging.GetColour) (signal.Bundle, error)
	// SetThemeColour sends SET_THEME_COLOUR.
	SetThemeColour(ctx context.Context, tabID int, msg messaging.SetThemeColour) error
}

// Tab is the browser's view of a tab.
type Tab struct {
	ID         int    `json:"id"`
	WindowID   int    `json:"windowId"`
	URL        string `json:"url"`
	Title      string `json:"title,omitempty"`
	FavIconURL string `json:"favIconUrl,omitempty"`
	Active     bool   `json:"active"`
}

// Options configures an Engine.
type Options struct {
	Preferences config.Preferences
	Page        PageContext
	Addons      protected.AddonRegistry
	Sink        sink.Sink
	// Reload returns freshly loaded preferences for PREF_CHANGED and
	// INIT_REQUEST. When nil the current preferences are kept.
	Reload    func() (config.Preferences, error)
	Detectors []scheme.Detector
	Logger    hclog.Logger
}

type pushed struct {
	tabID  int
	bundle signal.Bundle
}

// Engine implements messaging.Backend.
type Engine struct {
	logger     hclog.Logger
	page       PageContext
	sink       sink.Sink
	reload     func() (config.Preferences, error)
	classifier *protected.Classifier
	schemes    *scheme.Resolver
	media      *scheme.MediaDetector
	cache      *cache.Cache
	throttle   *ratelimit.Throttle[int]

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	prefs    config.Preferences
	policies *policy.Set
	tabs     map[int]Tab
	pending  map[int]pushed
}

// New creates an engine. The throttle interval is read from the initial
// preferences and does not change on reload.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.Named("engine")

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		logger:     logger,
		page:       opts.Page,
		sink:       opts.Sink,
		reload:     opts.Reload,
		classifier: protected.NewClassifier(opts.Addons, logger.Named("protected")),
		media:      scheme.NewMediaDetector(),
		cache:      cache.New(),
		ctx:        ctx,
		cancel:     cancel,
		prefs:      opts.Preferences,
		policies:   opts.Preferences.PolicySet(logger),
		tabs:       make(map[int]Tab),
		pending:    make(map[int]pushed),
	}

	e.schemes = scheme.NewResolver(e)
	e.schemes.RegisterDetector(e.media)
	for _, d := range opts.Detectors {
		e.schemes.RegisterDetector(d)
	}
	e.schemes.Refresh()
	e.schemes.OnChange(e.schemeChanged)

	e.throttle = ratelimit.New(opts.Preferences.Server.Throttle, e.runWindow)
	return e
}

// Close stops pending resolutions and cancels those in flight.
func (e *Engine) Close() {
	e.throttle.Stop()
	e.cancel()
}

// SchemeOverride implements scheme.OverrideProvider.
func (e *Engine) SchemeOverride() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.prefs.Scheme
}

// Preferences returns the preferences in use.
func (e *Engine) Preferences() config.Preferences {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.prefs
}

// SetPreferences swaps the preferences, drops every cached result and
// re-resolves all known windows.
func (e *Engine) SetPreferences(ctx context.Context, prefs config.Preferences) error {
	policies := prefs.PolicySet(e.logger)

	e.mu.Lock()
	e.prefs = prefs
	e.policies = policies
	e.mu.Unlock()

	e.cache.Clear()
	e.schemes.Refresh()
	return e.Refresh(ctx)
}

// Refresh resolves every known window now, a few at a time.
func (e *Engine) Refresh(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for _, windowID := range e.Windows() {
		g.Go(func() error {
			if err := e.resolveWindow(ctx, windowID); err != nil {
				return fmt.Errorf("window %d: %w", windowID, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Windows returns the windows with a known active tab, sorted.
func (e *Engine) Windows() []int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Sorted(maps.Keys(e.tabs))
}

// ActiveTab returns the known active tab of windowID.
func (e *Engine) ActiveTab(windowID int) (Tab, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.tabs[windowID]
	return t, ok
}

// ScriptReady implements messaging.Backend.
func (e *Engine) ScriptReady(_ context.Context, sender messaging.Sender) {
	if !e.isActive(sender) {
		e.logger.Trace("ignoring SCRIPT_READY from background tab", "tab", sender.TabID)
		return
	}
	e.throttle.Trigger(sender.WindowID)
}

// UpdateColour implements messaging.Backend. The bundle replaces the next
// page round-trip for the sender's window.
func (e *Engine) UpdateColour(_ context.Context, sender messaging.Sender, bundle signal.Bundle) {
	if !e.isActive(sender) {
		return
	}
	e.mu.Lock()
	e.pending[sender.WindowID] = pushed{tabID: sender.TabID, bundle: bundle}
	e.mu.Unlock()
	e.throttle.Trigger(sender.WindowID)
}

// CurrentScheme implements messaging.Backend.
func (e *Engine) CurrentScheme() string {
	return e.schemes.Refresh().Scheme.String()
}

// Meta implements messaging.Backend.
func (e *Engine) Meta(windowID int) (meta.Entry, bool) {
	return e.cache.Get(windowID)
}

// ReloadPreferences implements messaging.Backend.
func (e *Engine) ReloadPreferences(ctx context.Context) error {
	if e.reload == nil {
		e.cache.Clear()
		return e.Refresh(ctx)
	}
	prefs, err := e.reload()
	if err != nil {
		return err
	}
	return e.SetPreferences(ctx, prefs)
}

func (e *Engine) isActive(sender messaging.Sender) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.tabs[sender.WindowID]
	return ok && t.ID == sender.TabID
}

// schemeChanged drops results computed for the old scheme.
func (e *Engine) schemeChanged(p scheme.Preference) {
	e.logger.Info("colour scheme changed", "scheme", p.Scheme, "source", p.Source)
	e.cache.Clear()
	for _, windowID := range e.Windows() {
		e.throttle.Trigger(windowID)
	}
}

func (e *Engine) runWindow(windowID int) {
	if err := e.resolveWindow(e.ctx, windowID); err != nil && e.ctx.Err() == nil {
		e.logger.Warn("failed to apply theme", "window", windowID, "error", err)
	}
}
