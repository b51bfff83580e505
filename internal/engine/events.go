package engine

import "github.com/jmylchreest/tabtint/internal/scheme"

// TabActivated records tab as the active tab of its window.
func (e *Engine) TabActivated(tab Tab) {
	tab.Active = true
	e.mu.Lock()
	e.tabs[tab.WindowID] = tab
	delete(e.pending, tab.WindowID)
	e.mu.Unlock()
	e.throttle.Trigger(tab.WindowID)
}

// TabUpdated handles navigation and title or favicon changes. Updates for
// background tabs are ignored.
func (e *Engine) TabUpdated(tab Tab) {
	e.mu.Lock()
	cur, ok := e.tabs[tab.WindowID]
	if !tab.Active && (!ok || cur.ID != tab.ID) {
		e.mu.Unlock()
		return
	}
	tab.Active = true
	e.tabs[tab.WindowID] = tab
	if cur.URL != tab.URL {
		delete(e.pending, tab.WindowID)
	}
	e.mu.Unlock()
	e.throttle.Trigger(tab.WindowID)
}

// TabAttached handles a tab moved into another window.
func (e *Engine) TabAttached(tab Tab) {
	e.mu.Lock()
	for windowID, t := range e.tabs {
		if t.ID == tab.ID && windowID != tab.WindowID {
			delete(e.tabs, windowID)
			delete(e.pending, windowID)
		}
	}
	if tab.Active {
		e.tabs[tab.WindowID] = tab
		delete(e.pending, tab.WindowID)
	}
	e.mu.Unlock()
	if tab.Active {
		e.throttle.Trigger(tab.WindowID)
	}
}

// TabRemoved forgets the tab if it was the active tab of its window.
func (e *Engine) TabRemoved(tabID, windowID int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.tabs[windowID]; ok && t.ID == tabID {
		delete(e.tabs, windowID)
		delete(e.pending, windowID)
	}
}

// WindowRemoved forgets everything about windowID.
func (e *Engine) WindowRemoved(windowID int) {
	e.mu.Lock()
	delete(e.tabs, windowID)
	delete(e.pending, windowID)
	e.mu.Unlock()
	e.throttle.Forget(windowID)
	e.cache.Delete(windowID)
}

// WindowFocused re-resolves the focused window.
func (e *Engine) WindowFocused(windowID int) {
	if _, ok := e.ActiveTab(windowID); ok {
		e.throttle.Trigger(windowID)
	}
}

// SetSchemeOverride changes the browser web appearance override. A change
// of the effective scheme re-resolves every window.
func (e *Engine) SetSchemeOverride(value string) {
	e.mu.Lock()
	e.prefs.Scheme = value
	e.mu.Unlock()
	e.schemes.Refresh()
}

// SetSystemScheme records the prefers-color-scheme state reported by the
// browser.
func (e *Engine) SetSystemScheme(s scheme.Scheme) {
	e.media.Set(s)
	e.schemes.Refresh()
}
