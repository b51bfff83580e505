package scheme

import (
	"sort"
	"strings"
	"sync"
)

const (
	// SourceFallback indicates no override or detector provided the scheme.
	SourceFallback = "fallback"
	// SourceOverride indicates the browser "web appearance" override was used.
	SourceOverride = "override"
)

// Preference is a resolved scheme together with where it came from.
type Preference struct {
	Scheme Scheme
	Source string
}

// Detector reports the system colour scheme preference.
// Multiple detectors can be registered; higher priorities are asked first.
type Detector interface {
	Name() string
	Priority() int
	// Detect returns the detected scheme and whether detection succeeded.
	Detect() (Scheme, bool)
}

// OverrideProvider exposes the browser "web appearance" setting.
// Expected values: "auto", "light", "dark".
type OverrideProvider interface {
	SchemeOverride() string
}

// Resolver derives the current scheme: explicit override first, then
// detectors by priority, then the fallback.
type Resolver struct {
	mu        sync.RWMutex
	override  OverrideProvider
	detectors []Detector
	fallback  Scheme
	current   Preference
	callbacks []*callbackWrapper
}

type callbackWrapper struct {
	fn func(Preference)
}

// NewResolver creates a resolver. override may be nil.
func NewResolver(override OverrideProvider) *Resolver {
	return &Resolver{
		override: override,
		fallback: Light,
		current:  Preference{Scheme: Light, Source: SourceFallback},
	}
}

// SetOverride replaces the override provider.
func (r *Resolver) SetOverride(override OverrideProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.override = override
}

// RegisterDetector adds a detector. It is consulted on the next Resolve.
func (r *Resolver) RegisterDetector(d Detector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detectors = append(r.detectors, d)
}

// Resolve computes the current preference without updating the cached value.
func (r *Resolver) Resolve() Preference {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveInternal()
}

// Current returns the preference computed by the last Refresh.
func (r *Resolver) Current() Preference {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// resolveInternal must be called with at least a read lock held.
func (r *Resolver) resolveInternal() Preference {
	if r.override != nil {
		if s, err := Parse(r.override.SchemeOverride()); err == nil {
			return Preference{Scheme: s, Source: SourceOverride}
		}
	}

	sorted := make([]Detector, len(r.detectors))
	copy(sorted, r.detectors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})

	for _, d := range sorted {
		if s, ok := d.Detect(); ok {
			return Preference{Scheme: s, Source: d.Name()}
		}
	}

	return Preference{Scheme: r.fallback, Source: SourceFallback}
}

// Refresh recomputes the scheme and invokes OnChange callbacks if it flipped.
func (r *Resolver) Refresh() Preference {
	r.mu.Lock()
	next := r.resolveInternal()
	changed := next.Scheme != r.current.Scheme
	r.current = next
	callbacks := make([]*callbackWrapper, len(r.callbacks))
	copy(callbacks, r.callbacks)
	r.mu.Unlock()

	if changed {
		for _, cb := range callbacks {
			cb.fn(next)
		}
	}
	return next
}

// OnChange registers a callback invoked when Refresh observes a different
// scheme. The returned function unregisters it.
func (r *Resolver) OnChange(fn func(Preference)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	wrapper := &callbackWrapper{fn: fn}
	r.callbacks = append(r.callbacks, wrapper)

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, cb := range r.callbacks {
			if cb == wrapper {
				r.callbacks = append(r.callbacks[:i], r.callbacks[i+1:]...)
				return
			}
		}
	}
}

// StaticOverride is an OverrideProvider holding a fixed value.
type StaticOverride string

// SchemeOverride implements OverrideProvider.
func (s StaticOverride) SchemeOverride() string {
	return strings.ToLower(string(s))
}
