// Package resolver turns the colour evidence reported by a page, together
// with the site policy, into one opaque page colour and the reason for it.
package resolver

import (
	"github.com/jmylchreest/tabtint/internal/colour"
	"github.com/jmylchreest/tabtint/internal/meta"
	"github.com/jmylchreest/tabtint/internal/policy"
	"github.com/jmylchreest/tabtint/internal/scheme"
	"github.com/jmylchreest/tabtint/internal/signal"
)

// SelectorPlaceholder is reported as info for a query selector policy with
// an empty selector.
const SelectorPlaceholder = "🅀"

// Input is everything a resolution needs. Fallback is the scheme's FALLBACK
// colour and must be opaque.
type Input struct {
	Policy   *policy.Policy
	Bundle   signal.Bundle
	Scheme   scheme.Scheme
	Fallback colour.Colour
}

// Literal returns the result for a URL COLOUR policy. Such policies are
// applied without querying the page.
func Literal(p *policy.Policy) meta.Result {
	return meta.Result{
		Colour: colour.FromString(p.ColourValue()),
		Reason: meta.ReasonColourSpecified,
	}
}

// Resolve picks the page colour. The returned colour is always opaque.
func Resolve(in Input) meta.Result {
	p := in.Policy
	if p == nil {
		return meta.Result{Colour: PageColour(in.Bundle.Page, in.Fallback), Reason: meta.ReasonColourPicked}
	}

	switch p.Type {
	case policy.TypeColour:
		return Literal(p)

	case policy.TypeThemeColour:
		theme, ok := colour.Parse(in.Bundle.ThemeFor(in.Scheme))
		opaque := ok && theme.IsOpaque()
		wanted := p.UseTheme()
		if wanted && opaque {
			return meta.Result{Colour: theme, Reason: meta.ReasonThemeUsed}
		}

		reason := meta.ReasonColourPicked
		switch {
		case wanted:
			reason = meta.ReasonThemeMissing
		case opaque:
			reason = meta.ReasonThemeIgnored
		}
		return meta.Result{Colour: PageColour(in.Bundle.Page, in.Fallback), Reason: reason}

	case policy.TypeQuerySelector:
		info := p.Selector()
		if info == "" {
			info = SelectorPlaceholder
		}
		if q := in.Bundle.Query; q != nil {
			if c, ok := colour.Parse(q.Colour); ok && c.IsOpaque() {
				return meta.Result{Colour: c, Reason: meta.ReasonQSUsed, Info: info}
			}
		}
		return meta.Result{Colour: PageColour(in.Bundle.Page, in.Fallback), Reason: meta.ReasonQSFailed, Info: info}
	}

	return meta.Result{Colour: PageColour(in.Bundle.Page, in.Fallback), Reason: meta.ReasonColourPicked}
}

// PageColour composites the sampled backgrounds, nearest first, until the
// result is opaque. A result that stays translucent is laid over fallback.
func PageColour(samples []signal.Sample, fallback colour.Colour) colour.Colour {
	acc := colour.Transparent
	for _, s := range samples {
		op, ok := s.ParsedOpacity()
		if !ok {
			continue
		}
		acc = acc.Mix(colour.FromString(s.Colour).Opacity(op))
		if acc.IsOpaque() {
			return acc
		}
	}
	return acc.Mix(fallback)
}
