package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/jmylchreest/tabtint/internal/colour"
)

const (
	swatchWidth    = 6
	defaultColumns = 100
)

// swatcher renders colour blocks when the output is a terminal.
type swatcher struct {
	renderer *lipgloss.Renderer
	enabled  bool
}

func newSwatcher(w io.Writer, disabled bool) swatcher {
	return swatcher{
		renderer: lipgloss.NewRenderer(w),
		enabled:  !disabled && isTerminal(w),
	}
}

// block returns a solid block of c, or "" when colour output is off. Only
// the RGB channels are shown.
func (s swatcher) block(c colour.Colour) string {
	if !s.enabled || c.IsCoded() {
		return ""
	}
	return s.renderer.NewStyle().
		Background(lipgloss.Color(c.ToHex())).
		Width(swatchWidth).
		Render("")
}

// label renders text over c, picking black or white for contrast.
func (s swatcher) label(c colour.Colour, text string) string {
	if !s.enabled || c.IsCoded() {
		return text
	}
	fg := colour.White
	if c.ContrastRatio(colour.Black) > c.ContrastRatio(colour.White) {
		fg = colour.Black
	}
	return s.renderer.NewStyle().
		Background(lipgloss.Color(c.ToHex())).
		Foreground(lipgloss.Color(fg.ToHex())).
		Padding(0, 1).
		Render(text)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or a default for pipes and files.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultColumns
}
