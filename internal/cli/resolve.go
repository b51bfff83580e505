package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tabtint/internal/colour"
	"github.com/jmylchreest/tabtint/internal/meta"
	"github.com/jmylchreest/tabtint/internal/policy"
	"github.com/jmylchreest/tabtint/internal/protected"
	"github.com/jmylchreest/tabtint/internal/resolver"
	"github.com/jmylchreest/tabtint/internal/signal"
	"github.com/jmylchreest/tabtint/internal/theme"
)

func newResolveCmd() *cobra.Command {
	var (
		url      string
		schemeFl schemeFlag
		jsonOut  bool
		slots    bool
		noColour bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [file|-]",
		Short: "Resolve a page signal bundle into a theme",
		Long: `Resolve a signal bundle, as a page collector reports it, into the theme the
browser would be given.

The bundle is read from the file argument, or from stdin when the argument is
"-" or missing. With --url the configured policies are matched against it and
protected URLs are classified without looking at the bundle.

Bundle format:
  {
    "theme": {"light": "#ffffff", "dark": "#000000"},
    "page": [{"colour": "rgba(0, 0, 0, 0)", "opacity": "1", "filter": "none"}],
    "query": {"colour": "rgb(200, 30, 30)"}
  }`,
		Example: `  tabtint resolve bundle.json
  cat bundle.json | tabtint resolve --url https://example.com --slots
  tabtint resolve bundle.json --scheme dark --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd)
			mgr, err := loadConfig(cmd, logger)
			if err != nil {
				return err
			}
			prefs := mgr.Preferences()

			current := currentScheme(schemeFl, prefs)

			bundle, err := readBundle(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			var res meta.Result
			policies := prefs.PolicySet(logger.Named("policy"))
			var p *policy.Policy
			if url != "" {
				p = policies.Match(url)
			}
			switch {
			case p.IsLiteralURL():
				res = resolver.Literal(p)
			case url != "" && protected.IsProtected(url):
				res = protected.NewClassifier(nil, logger).Classify(cmd.Context(), protected.Page{URL: url}, current, policies)
			default:
				res = resolver.Resolve(resolver.Input{
					Policy:   p,
					Bundle:   bundle,
					Scheme:   current,
					Fallback: prefs.CodeTable().Fallback(current),
				})
			}
			logger.Debug("resolved", "reason", res.Reason, "colour", res.Colour)

			final := theme.Finalize(res.Colour, prefs.FinalizeOptions(current))
			built := theme.Build(final.Colour, final.Scheme, prefs.Offsets)
			r := newReport(url, current, res, final)

			out := cmd.OutOrStdout()
			if jsonOut {
				if slots {
					r.Theme = &built
				}
				return writeJSON(out, r)
			}

			sw := newSwatcher(out, noColour)
			printReport(out, r, final, sw)
			if slots {
				fmt.Fprintln(out)
				printSlots(out, built, sw)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "", "tab URL used for policy matching and protected pages")
	addSchemeFlag(cmd.Flags(), &schemeFl)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	cmd.Flags().BoolVar(&slots, "slots", false, "include every theme slot")
	cmd.Flags().BoolVar(&noColour, "no-colour", false, "disable colour swatches")
	return cmd
}

func readBundle(stdin io.Reader, args []string) (signal.Bundle, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return signal.Bundle{}, fmt.Errorf("failed to read bundle: %w", err)
	}

	var bundle signal.Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return signal.Bundle{}, fmt.Errorf("failed to parse bundle: %w", err)
	}
	return bundle, nil
}

// printSlots lists the adaptive slots in display order, then the static ones.
func printSlots(w io.Writer, t theme.Theme, sw swatcher) {
	table := NewTable([]string{"Slot", "", "Value"})
	seen := make(map[string]bool, len(t.Colors))
	for _, slot := range theme.AdaptiveSlots {
		seen[slot] = true
		addSlotRow(table, slot, t.Colors[slot], sw)
	}
	for _, slot := range slices.Sorted(maps.Keys(t.Colors)) {
		if !seen[slot] {
			addSlotRow(table, slot, t.Colors[slot], sw)
		}
	}
	table.AddRow([]string{"color_scheme", "", t.Properties.ColorScheme})
	table.AddRow([]string{"content_color_scheme", "", t.Properties.ContentColorScheme})
	fmt.Fprint(w, table.Render())
}

func addSlotRow(table *Table, slot, value string, sw swatcher) {
	block := ""
	if c, ok := colour.Parse(value); ok && c.A() > 0 {
		block = sw.block(c)
	}
	table.AddRow([]string{slot, block, value})
}
