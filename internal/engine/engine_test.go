package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tabtint/internal/colour"
	"github.com/jmylchreest/tabtint/internal/config"
	"github.com/jmylchreest/tabtint/internal/messaging"
	"github.com/jmylchreest/tabtint/internal/meta"
	"github.com/jmylchreest/tabtint/internal/policy"
	"github.com/jmylchreest/tabtint/internal/scheme"
	"github.com/jmylchreest/tabtint/internal/signal"
	"github.com/jmylchreest/tabtint/internal/sink"
)

type mockPage struct {
	mock.Mock
}

func (m *mockPage) RequestColour(_ context.Context, tabID int, req messaging.GetColour) (signal.Bundle, error) {
	args := m.Called(tabID, req)
	return args.Get(0).(signal.Bundle), args.Error(1)
}

func (m *mockPage) SetThemeColour(_ context.Context, tabID int, msg messaging.SetThemeColour) error {
	return m.Called(tabID, msg).Error(0)
}

type recorder struct {
	mu      sync.Mutex
	updates []sink.Update
}

func (r *recorder) Apply(_ context.Context, u sink.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

func (r *recorder) last() sink.Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates[len(r.updates)-1]
}

func testPrefs(policies ...policy.Policy) config.Preferences {
	prefs := config.Defaults()
	prefs.Server.Throttle = 0
	prefs.Policies = policies
	return prefs
}

func newTestEngine(t *testing.T, prefs config.Preferences, page PageContext) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	e := New(Options{Preferences: prefs, Page: page, Sink: rec})
	t.Cleanup(e.Close)
	return e, rec
}

// seedTab records an active tab without triggering a resolution.
func seedTab(e *Engine, tab Tab) {
	tab.Active = true
	e.mu.Lock()
	e.tabs[tab.WindowID] = tab
	e.mu.Unlock()
}

func TestResolveContentPage(t *testing.T) {
	page := &mockPage{}
	page.On("RequestColour", 7, messaging.NewGetColour(true, true, "")).Return(signal.Bundle{
		Page: []signal.Sample{{Colour: "rgb(10, 10, 10)", Opacity: "1"}},
	}, nil)

	e, rec := newTestEngine(t, testPrefs(), page)
	seedTab(e, Tab{ID: 7, WindowID: 1, URL: "https://example.com/"})

	require.NoError(t, e.resolveWindow(context.Background(), 1))
	require.Equal(t, 1, rec.count())

	u := rec.last()
	assert.Equal(t, 1, u.WindowID)
	assert.Equal(t, "#0a0a0a", u.Colour.ToHex())
	assert.Equal(t, meta.ReasonColourPicked, u.Entry.Reason)
	assert.False(t, u.Entry.Corrected)
	assert.Equal(t, "dark", u.Theme.Properties.ColorScheme)

	entry, ok := e.Meta(1)
	require.True(t, ok)
	assert.Equal(t, meta.ReasonColourPicked, entry.Reason)
	page.AssertExpectations(t)
}

func TestLiteralPolicySkipsPage(t *testing.T) {
	page := &mockPage{}
	prefs := testPrefs(policy.Policy{HeaderType: policy.HeaderURL, Header: "example.com", Type: policy.TypeColour, Value: "#ff0000"})

	e, rec := newTestEngine(t, prefs, page)
	seedTab(e, Tab{ID: 7, WindowID: 1, URL: "https://example.com/page"})

	require.NoError(t, e.resolveWindow(context.Background(), 1))
	assert.Equal(t, meta.ReasonColourSpecified, rec.last().Entry.Reason)
	page.AssertNotCalled(t, "RequestColour", mock.Anything, mock.Anything)
}

func TestProtectedPageSkipsPage(t *testing.T) {
	page := &mockPage{}
	e, rec := newTestEngine(t, testPrefs(), page)
	seedTab(e, Tab{ID: 2, WindowID: 4, URL: "about:newtab"})

	require.NoError(t, e.resolveWindow(context.Background(), 4))
	u := rec.last()
	assert.Equal(t, meta.ReasonHomePage, u.Entry.Reason)
	assert.True(t, u.Entry.Colour.IsCoded())
	assert.Equal(t, colour.CodeHome, u.Entry.Colour.Code())
	assert.False(t, u.Colour.IsCoded())
	page.AssertNotCalled(t, "RequestColour", mock.Anything, mock.Anything)
}

func TestUnreachablePageFallsBackToClassifier(t *testing.T) {
	page := &mockPage{}
	page.On("RequestColour", 3, mock.Anything).Return(signal.Bundle{}, errors.New("no receiving end"))

	e, rec := newTestEngine(t, testPrefs(), page)
	seedTab(e, Tab{ID: 3, WindowID: 1, URL: "https://example.com/report.pdf"})

	require.NoError(t, e.resolveWindow(context.Background(), 1))
	assert.Equal(t, meta.ReasonPDFViewer, rec.last().Entry.Reason)
}

func TestNoPageContextFallsBackToClassifier(t *testing.T) {
	e, rec := newTestEngine(t, testPrefs(), nil)
	seedTab(e, Tab{ID: 3, WindowID: 1, URL: "https://example.com/"})

	require.NoError(t, e.resolveWindow(context.Background(), 1))
	assert.Equal(t, meta.ReasonFallbackColour, rec.last().Entry.Reason)
}

func TestQuerySelectorPolicy(t *testing.T) {
	page := &mockPage{}
	page.On("RequestColour", 5, mock.MatchedBy(func(req messaging.GetColour) bool {
		return req.Header == messaging.HeaderGetColour && req.Query == "header.top"
	})).Return(signal.Bundle{Query: &signal.Query{Colour: "#336699"}}, nil)

	prefs := testPrefs(policy.Policy{HeaderType: policy.HeaderURL, Header: "*.example.com", Type: policy.TypeQuerySelector, Value: "header.top"})
	e, rec := newTestEngine(t, prefs, page)
	seedTab(e, Tab{ID: 5, WindowID: 2, URL: "https://www.example.com/"})

	require.NoError(t, e.resolveWindow(context.Background(), 2))
	u := rec.last()
	assert.Equal(t, meta.ReasonQSUsed, u.Entry.Reason)
	assert.Equal(t, "header.top", u.Entry.Info)
	page.AssertExpectations(t)
}

func TestCompatibilityModeSetsThemeColour(t *testing.T) {
	page := &mockPage{}
	page.On("RequestColour", 7, mock.Anything).Return(signal.Bundle{
		Page: []signal.Sample{{Colour: "#ffffff", Opacity: "1"}},
	}, nil)
	page.On("SetThemeColour", 7, messaging.NewSetThemeColour("#ffffff")).Return(nil)

	prefs := testPrefs()
	prefs.CompatibilityMode = true
	e, rec := newTestEngine(t, prefs, page)
	seedTab(e, Tab{ID: 7, WindowID: 1, URL: "https://example.com/"})

	require.NoError(t, e.resolveWindow(context.Background(), 1))
	assert.Zero(t, rec.count())
	page.AssertExpectations(t)
}

func TestPushedBundleReplacesRoundTrip(t *testing.T) {
	page := &mockPage{}
	e, rec := newTestEngine(t, testPrefs(), page)
	seedTab(e, Tab{ID: 7, WindowID: 1, URL: "https://example.com/"})

	e.UpdateColour(context.Background(), messaging.Sender{TabID: 7, WindowID: 1}, signal.Bundle{
		Page: []signal.Sample{{Colour: "rgb(200, 30, 30)", Opacity: "1"}},
	})

	require.Eventually(t, func() bool { return rec.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "#c81e1e", rec.last().Colour.ToHex())
	page.AssertNotCalled(t, "RequestColour", mock.Anything, mock.Anything)
}

func TestMessagesFromBackgroundTabsAreIgnored(t *testing.T) {
	e, rec := newTestEngine(t, testPrefs(), nil)
	seedTab(e, Tab{ID: 7, WindowID: 1, URL: "https://example.com/"})

	e.ScriptReady(context.Background(), messaging.Sender{TabID: 8, WindowID: 1})
	e.UpdateColour(context.Background(), messaging.Sender{TabID: 8, WindowID: 1}, signal.Bundle{})

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, rec.count())
}

func TestScriptReadyResolvesActiveTab(t *testing.T) {
	e, rec := newTestEngine(t, testPrefs(), nil)
	seedTab(e, Tab{ID: 7, WindowID: 1, URL: "about:addons"})

	e.ScriptReady(context.Background(), messaging.Sender{TabID: 7, WindowID: 1})
	require.Eventually(t, func() bool { return rec.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, meta.ReasonProtectedPage, rec.last().Entry.Reason)
}

func TestTabEvents(t *testing.T) {
	e, rec := newTestEngine(t, testPrefs(), nil)

	e.TabActivated(Tab{ID: 1, WindowID: 10, URL: "about:home"})
	require.Eventually(t, func() bool { return rec.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Background tab updates are ignored.
	e.TabUpdated(Tab{ID: 2, WindowID: 10, URL: "https://other.example/"})
	tab, ok := e.ActiveTab(10)
	require.True(t, ok)
	assert.Equal(t, 1, tab.ID)

	e.TabUpdated(Tab{ID: 1, WindowID: 10, URL: "about:config"})
	tab, _ = e.ActiveTab(10)
	assert.Equal(t, "about:config", tab.URL)

	e.TabAttached(Tab{ID: 1, WindowID: 11, URL: "about:config", Active: true})
	_, ok = e.ActiveTab(10)
	assert.False(t, ok)
	assert.Equal(t, []int{11}, e.Windows())

	e.TabRemoved(99, 11)
	assert.Equal(t, []int{11}, e.Windows())
	e.TabRemoved(1, 11)
	assert.Empty(t, e.Windows())
}

func TestWindowRemovedDropsCache(t *testing.T) {
	e, _ := newTestEngine(t, testPrefs(), nil)
	seedTab(e, Tab{ID: 1, WindowID: 3, URL: "about:home"})
	require.NoError(t, e.resolveWindow(context.Background(), 3))

	_, ok := e.Meta(3)
	require.True(t, ok)

	e.WindowRemoved(3)
	_, ok = e.Meta(3)
	assert.False(t, ok)
	assert.Empty(t, e.Windows())
}

func TestSchemeOverride(t *testing.T) {
	e, _ := newTestEngine(t, testPrefs(), nil)
	assert.Equal(t, "light", e.CurrentScheme())

	e.SetSystemScheme(scheme.Dark)
	assert.Equal(t, "dark", e.CurrentScheme())

	e.SetSchemeOverride(config.SchemeLight)
	assert.Equal(t, "light", e.CurrentScheme())

	e.SetSchemeOverride(config.SchemeAuto)
	assert.Equal(t, "dark", e.CurrentScheme())
}

func TestSchemeChangeReappliesThemes(t *testing.T) {
	e, rec := newTestEngine(t, testPrefs(), nil)
	seedTab(e, Tab{ID: 1, WindowID: 1, URL: "about:home"})
	require.NoError(t, e.resolveWindow(context.Background(), 1))
	require.Equal(t, "light", rec.last().Theme.Properties.ColorScheme)

	e.SetSchemeOverride(config.SchemeDark)

	require.Eventually(t, func() bool {
		return rec.count() >= 2 && rec.last().Theme.Properties.ColorScheme == "dark"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRefreshResolvesEveryWindow(t *testing.T) {
	e, rec := newTestEngine(t, testPrefs(), nil)
	for i := 1; i <= 6; i++ {
		seedTab(e, Tab{ID: i, WindowID: i, URL: "about:home"})
	}

	require.NoError(t, e.Refresh(context.Background()))
	assert.Equal(t, 6, rec.count())
	for i := 1; i <= 6; i++ {
		_, ok := e.Meta(i)
		assert.True(t, ok, "window %d", i)
	}
}

func TestReloadPreferences(t *testing.T) {
	next := testPrefs(policy.Policy{HeaderType: policy.HeaderURL, Header: "example.com", Type: policy.TypeColour, Value: "#123456"})
	var fail bool
	rec := &recorder{}
	e := New(Options{
		Preferences: testPrefs(),
		Sink:        rec,
		Reload: func() (config.Preferences, error) {
			if fail {
				return config.Preferences{}, errors.New("bad config")
			}
			return next, nil
		},
	})
	t.Cleanup(e.Close)
	seedTab(e, Tab{ID: 1, WindowID: 1, URL: "https://example.com/"})

	require.NoError(t, e.ReloadPreferences(context.Background()))
	assert.Len(t, e.Preferences().Policies, 1)
	assert.Equal(t, meta.ReasonColourSpecified, rec.last().Entry.Reason)

	fail = true
	assert.Error(t, e.ReloadPreferences(context.Background()))
	assert.Len(t, e.Preferences().Policies, 1)
}

func TestEngineImplementsBackend(t *testing.T) {
	var _ messaging.Backend = (*Engine)(nil)
	var _ scheme.OverrideProvider = (*Engine)(nil)
}
