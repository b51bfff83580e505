// Package protected classifies browser pages that content scripts cannot
// sample, mapping them to symbolic colour codes or built-in colours.
package protected

import (
	"context"
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/tabtint/internal/colour"
	"github.com/jmylchreest/tabtint/internal/meta"
	"github.com/jmylchreest/tabtint/internal/policy"
	"github.com/jmylchreest/tabtint/internal/scheme"
)

// Page describes the tab being classified.
type Page struct {
	URL        string
	Title      string
	FavIconURL string
}

// AddonRegistry resolves a moz-extension host UUID to the add-on id that
// declared it.
type AddonRegistry interface {
	AddonID(ctx context.Context, uuid string) (id string, ok bool, err error)
}

// Classifier runs the protected-page rules in order; the first match wins.
type Classifier struct {
	addons AddonRegistry
	logger hclog.Logger
}

// NewClassifier creates a classifier. addons may be nil, in which case
// extension pages always get the ADDON code.
func NewClassifier(addons AddonRegistry, logger hclog.Logger) *Classifier {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Classifier{addons: addons, logger: logger}
}

// IsProtected reports whether the URL alone identifies a page that content
// scripts cannot run in. Such pages are classified without a page round-trip.
func IsProtected(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.HasPrefix(lower, "about:"),
		strings.HasPrefix(lower, "moz-extension:"),
		strings.HasPrefix(lower, "view-source:"),
		strings.HasPrefix(lower, "chrome:"),
		strings.HasPrefix(lower, "resource:"),
		strings.HasPrefix(lower, "jar:file:"),
		strings.HasPrefix(lower, "data:image"):
		return true
	}
	_, restricted := restrictedDomains[hostname(rawURL)]
	return restricted
}

// Classify returns the colour for page in the current scheme s. policies
// supplies add-on rules and may be nil.
func (c *Classifier) Classify(ctx context.Context, page Page, s scheme.Scheme, policies *policy.Set) meta.Result {
	raw := page.URL
	lower := strings.ToLower(raw)

	switch {
	case hasAnyPrefix(lower, homePrefixes):
		return coded(colour.CodeHome, meta.ReasonHomePage)

	case strings.HasPrefix(lower, "about:"):
		name := aboutName(lower)
		return lookup(aboutPages[name], s, colour.CodeDefault)

	case strings.HasPrefix(lower, "moz-extension:"):
		return c.classifyAddon(ctx, raw, policies)
	}

	if pair, ok := restrictedDomains[hostname(raw)]; ok {
		return lookup(pair, s, colour.CodeFallback)
	}

	bare := stripQuery(lower)
	switch {
	case strings.HasPrefix(lower, "view-source:"):
		return coded(colour.CodePlaintext, meta.ReasonTextViewer)

	case strings.HasPrefix(lower, "chrome:"),
		strings.HasPrefix(lower, "resource:"),
		strings.HasPrefix(lower, "jar:file:"):
		ext := path.Ext(bare)
		switch {
		case slices.Contains(textExtensions, ext):
			return coded(colour.CodePlaintext, meta.ReasonTextViewer)
		case slices.Contains(imageExtensions, ext):
			return coded(colour.CodeImageViewer, meta.ReasonImageViewer)
		default:
			return coded(colour.CodeSystem, meta.ReasonProtectedPage)
		}

	case strings.HasPrefix(lower, "data:image"):
		return coded(colour.CodeImageViewer, meta.ReasonImageViewer)
	}

	title := strings.ToLower(strings.TrimSpace(page.Title))
	switch {
	case strings.HasSuffix(bare, ".pdf") || strings.HasSuffix(title, ".pdf"):
		return coded(colour.CodePDFViewer, meta.ReasonPDFViewer)

	case strings.HasSuffix(bare, ".json") || strings.HasSuffix(title, ".json"):
		return coded(colour.CodeJSONViewer, meta.ReasonJSONViewer)

	case strings.HasPrefix(strings.ToLower(page.FavIconURL), "chrome:"):
		return coded(colour.CodeDefault, meta.ReasonProtectedPage)

	case title != "" && (lower == "http://"+title || lower == "https://"+title):
		return coded(colour.CodePlaintext, meta.ReasonTextViewer)
	}

	return coded(colour.CodeFallback, meta.ReasonFallbackColour)
}

func (c *Classifier) classifyAddon(ctx context.Context, raw string, policies *policy.Set) meta.Result {
	fallback := coded(colour.CodeAddon, meta.ReasonAddon)
	if c.addons == nil {
		return fallback
	}

	uuid := hostname(raw)
	id, ok, err := c.addons.AddonID(ctx, uuid)
	if err != nil {
		c.logger.Debug("add-on lookup failed", "uuid", uuid, "error", err)
		return fallback
	}
	if !ok {
		return fallback
	}

	if p := policies.MatchAddon(id); p != nil && p.Type == policy.TypeColour {
		return meta.Result{
			Colour: colour.FromString(p.ColourValue()),
			Reason: meta.ReasonAddon,
			Info:   id,
		}
	}
	return fallback
}

// lookup prefers the current scheme's colour, then the reversed scheme's,
// then the given code.
func lookup(pair colour.SchemePair, s scheme.Scheme, otherwise colour.Code) meta.Result {
	if c, ok := pair.For(s); ok {
		return meta.Result{Colour: c, Reason: meta.ReasonProtectedPage}
	}
	if c, ok := pair.For(s.Reverse()); ok {
		return meta.Result{Colour: c, Reason: meta.ReasonProtectedPage}
	}
	return coded(otherwise, meta.ReasonProtectedPage)
}

func coded(code colour.Code, reason meta.Reason) meta.Result {
	return meta.Result{Colour: colour.MustCode(code), Reason: reason}
}

// aboutName extracts "debugging" from "about:debugging#/runtime/this-firefox".
func aboutName(lower string) string {
	name := strings.TrimPrefix(lower, "about:")
	if i := strings.IndexAny(name, "?#/"); i >= 0 {
		name = name[:i]
	}
	return name
}

func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func stripQuery(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		return s[:i]
	}
	return s
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
