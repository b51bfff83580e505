package engine

import (
	"context"
	"fmt"

	"github.com/jmylchreest/tabtint/internal/config"
	"github.com/jmylchreest/tabtint/internal/messaging"
	"github.com/jmylchreest/tabtint/internal/meta"
	"github.com/jmylchreest/tabtint/internal/policy"
	"github.com/jmylchreest/tabtint/internal/protected"
	"github.com/jmylchreest/tabtint/internal/resolver"
	"github.com/jmylchreest/tabtint/internal/scheme"
	"github.com/jmylchreest/tabtint/internal/signal"
	"github.com/jmylchreest/tabtint/internal/sink"
	"github.com/jmylchreest/tabtint/internal/theme"
)

// resolveWindow runs one resolution cycle for the active tab of windowID
// and applies the result. A result superseded by a newer cycle is dropped.
func (e *Engine) resolveWindow(ctx context.Context, windowID int) error {
	e.mu.Lock()
	tab, ok := e.tabs[windowID]
	push, hasPush := e.pending[windowID]
	if hasPush {
		delete(e.pending, windowID)
	}
	prefs, policies := e.prefs, e.policies
	e.mu.Unlock()
	if !ok {
		return nil
	}
	if hasPush && push.tabID != tab.ID {
		hasPush = false
	}

	gen := e.cache.Begin(windowID)
	current := e.schemes.Refresh().Scheme

	var bundle *signal.Bundle
	if hasPush {
		bundle = &push.bundle
	}
	result := e.resolveTab(ctx, tab, current, prefs, policies, bundle)

	final := theme.Finalize(result.Colour, prefs.FinalizeOptions(current))
	entry := meta.Entry{Result: result, Corrected: final.Corrected}
	if !e.cache.Put(windowID, gen, entry) {
		e.logger.Debug("dropping superseded result", "window", windowID, "generation", gen)
		return nil
	}

	e.logger.Debug("resolved window colour",
		"window", windowID, "tab", tab.ID, "colour", final.Colour.ToHex(),
		"scheme", final.Scheme, "reason", result.Reason, "corrected", final.Corrected)

	if prefs.CompatibilityMode {
		if e.page == nil {
			return ErrNoPage
		}
		msg := messaging.NewSetThemeColour(final.Colour.ToHex())
		if err := e.page.SetThemeColour(ctx, tab.ID, msg); err != nil {
			return fmt.Errorf("failed to set theme colour: %w", err)
		}
		return nil
	}

	if e.sink == nil {
		return nil
	}
	return e.sink.Apply(ctx, sink.Update{
		WindowID: windowID,
		Theme:    theme.Build(final.Colour, final.Scheme, prefs.Offsets),
		Colour:   final.Colour,
		Entry:    entry,
	})
}

// resolveTab picks the page colour. bundle is evidence pushed by the page;
// when nil the page is asked for it.
func (e *Engine) resolveTab(ctx context.Context, tab Tab, s scheme.Scheme, prefs config.Preferences, policies *policy.Set, bundle *signal.Bundle) meta.Result {
	p := policies.Match(tab.URL)
	if p.IsLiteralURL() {
		return resolver.Literal(p)
	}

	page := protected.Page{URL: tab.URL, Title: tab.Title, FavIconURL: tab.FavIconURL}
	if protected.IsProtected(tab.URL) {
		return e.classifier.Classify(ctx, page, s, policies)
	}

	if bundle == nil {
		b, err := e.requestColour(ctx, tab, p, prefs)
		if err != nil {
			e.logger.Debug("page unreachable, classifying by URL", "tab", tab.ID, "url", tab.URL, "error", err)
			return e.classifier.Classify(ctx, page, s, policies)
		}
		bundle = &b
	}

	return resolver.Resolve(resolver.Input{
		Policy:   p,
		Bundle:   *bundle,
		Scheme:   s,
		Fallback: prefs.CodeTable().Fallback(s),
	})
}

func (e *Engine) requestColour(ctx context.Context, tab Tab, p *policy.Policy, prefs config.Preferences) (signal.Bundle, error) {
	if e.page == nil {
		return signal.Bundle{}, ErrNoPage
	}
	query := ""
	if p != nil && p.Type == policy.TypeQuerySelector {
		query = p.Selector()
	}
	if prefs.Server.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, prefs.Server.RequestTimeout)
		defer cancel()
	}
	return e.page.RequestColour(ctx, tab.ID, messaging.NewGetColour(tab.Active, prefs.Dynamic, query))
}
