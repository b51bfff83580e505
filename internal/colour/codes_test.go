package colour

import (
	"testing"

	"github.com/jmylchreest/tabtint/internal/scheme"
)

func TestCodeTableLookup(t *testing.T) {
	table := DefaultCodeTable()

	for code := range codeNames {
		if _, ok := table.Lookup(code, scheme.Dark); !ok {
			t.Errorf("%s has no dark colour", code)
		}
	}

	if _, ok := table.Lookup(CodeImageViewer, scheme.Light); ok {
		t.Error("IMAGEVIEWER should be undefined in light mode")
	}
	if _, ok := table.Lookup(CodeNone, scheme.Light); ok {
		t.Error("CodeNone should never resolve")
	}
}

func TestCodeTableWith(t *testing.T) {
	base := DefaultCodeTable()
	red := RGB(255, 0, 0)
	next := base.With(CodeHome, scheme.Dark, red)

	got, ok := next.Lookup(CodeHome, scheme.Dark)
	if !ok || !got.Equal(red) {
		t.Errorf("override not applied: %s", got)
	}

	orig, _ := base.Lookup(CodeHome, scheme.Dark)
	if orig.Equal(red) {
		t.Error("With must not mutate the receiver")
	}

	if next.With(CodeHome, scheme.Light, MustCode(CodeFallback)) != next {
		t.Error("coded overrides should be ignored")
	}
}

func TestCodeTableFallback(t *testing.T) {
	table := DefaultCodeTable()
	if !table.Fallback(scheme.Light).IsOpaque() || !table.Fallback(scheme.Dark).IsOpaque() {
		t.Error("fallback colours must be opaque")
	}
	empty := &CodeTable{}
	if !empty.Fallback(scheme.Light).Equal(White) {
		t.Error("empty table should fall back to white in light mode")
	}
}
