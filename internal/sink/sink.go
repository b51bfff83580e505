// Package sink delivers built themes to whatever applies them: the browser
// bridge, a log stream, or external plugins.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/jmylchreest/tabtint/internal/colour"
	"github.com/jmylchreest/tabtint/internal/meta"
	"github.com/jmylchreest/tabtint/internal/theme"
)

// Update is one theme application for a window.
type Update struct {
	WindowID int
	Theme    theme.Theme
	// Colour is the concrete colour the theme was built from.
	Colour colour.Colour
	// Entry is the cached result; its colour may still be coded.
	Entry meta.Entry
}

// Sink applies themes.
type Sink interface {
	Apply(ctx context.Context, u Update) error
}

// Func adapts a function to Sink.
type Func func(ctx context.Context, u Update) error

// Apply implements Sink.
func (f Func) Apply(ctx context.Context, u Update) error {
	return f(ctx, u)
}

// Multi fans an update out to every sink. All sinks are called; their
// errors are joined.
type Multi []Sink

// Apply implements Sink.
func (m Multi) Apply(ctx context.Context, u Update) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Apply(ctx, u); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Writer writes each update as one JSON line.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a JSON lines sink.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

type writerLine struct {
	WindowID int            `json:"window_id"`
	Colour   string         `json:"colour"`
	Meta     meta.EntryJSON `json:"meta"`
	Theme    theme.Theme    `json:"theme"`
}

// Apply implements Sink.
func (s *Writer) Apply(_ context.Context, u Update) error {
	data, err := json.Marshal(writerLine{
		WindowID: u.WindowID,
		Colour:   u.Colour.ToHex(),
		Meta:     u.Entry.JSON(),
		Theme:    u.Theme,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal theme: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("failed to write theme: %w", err)
	}
	return nil
}
