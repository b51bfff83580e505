package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/tabtint/internal/config"
	"github.com/jmylchreest/tabtint/internal/meta"
	"github.com/jmylchreest/tabtint/internal/protected"
	"github.com/jmylchreest/tabtint/internal/resolver"
	"github.com/jmylchreest/tabtint/internal/scheme"
	"github.com/jmylchreest/tabtint/internal/theme"
)

// report is the JSON output shared by classify and resolve.
type report struct {
	URL         string         `json:"url,omitempty"`
	Scheme      scheme.Scheme  `json:"scheme"`
	Result      meta.EntryJSON `json:"result"`
	Colour      string         `json:"colour"`
	ThemeScheme scheme.Scheme  `json:"theme_scheme"`
	Theme       *theme.Theme   `json:"theme,omitempty"`
}

func newReport(url string, s scheme.Scheme, res meta.Result, final theme.Final) report {
	entry := meta.Entry{Result: res, Corrected: final.Corrected}
	return report{
		URL:         url,
		Scheme:      s,
		Result:      entry.JSON(),
		Colour:      final.Colour.ToHex(),
		ThemeScheme: final.Scheme,
	}
}

func newClassifyCmd() *cobra.Command {
	var (
		title    string
		favicon  string
		schemeFl schemeFlag
		jsonOut  bool
		noColour bool
	)

	cmd := &cobra.Command{
		Use:   "classify <url>",
		Short: "Show the colour chosen for a URL without querying the page",
		Long: `Classify a URL the way the host does before asking the page for colours.

Browser pages (about:, moz-extension:, view-source: and so on), restricted
domains, viewers and URL policies with a literal colour are resolved here.
Any other URL gets the FALLBACK colour, which is what a tab shows when the
page cannot be reached.`,
		Example: `  tabtint classify about:newtab
  tabtint classify https://example.com/report.pdf --scheme dark
  tabtint classify https://addons.mozilla.org --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd)
			mgr, err := loadConfig(cmd, logger)
			if err != nil {
				return err
			}
			prefs := mgr.Preferences()

			current := currentScheme(schemeFl, prefs)

			page := protected.Page{URL: args[0], Title: title, FavIconURL: favicon}
			res := classify(cmd.Context(), logger, page, current, prefs)
			final := theme.Finalize(res.Colour, prefs.FinalizeOptions(current))
			r := newReport(page.URL, current, res, final)

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, r)
			}
			printReport(out, r, final, newSwatcher(out, noColour))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "tab title")
	cmd.Flags().StringVar(&favicon, "favicon", "", "tab favicon URL")
	addSchemeFlag(cmd.Flags(), &schemeFl)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	cmd.Flags().BoolVar(&noColour, "no-colour", false, "disable colour swatches")
	return cmd
}

// classify applies a literal URL policy, or runs the protected-page rules.
func classify(ctx context.Context, logger hclog.Logger, page protected.Page, s scheme.Scheme, prefs config.Preferences) meta.Result {
	policies := prefs.PolicySet(logger.Named("policy"))
	if p := policies.Match(page.URL); p.IsLiteralURL() {
		return resolver.Literal(p)
	}
	return protected.NewClassifier(nil, logger).Classify(ctx, page, s, policies)
}

func printReport(w io.Writer, r report, final theme.Final, sw swatcher) {
	table := NewTable([]string{"Field", "Value"})
	table.SetColumnMaxWidth(1, terminalWidth(w)-20)
	if r.URL != "" {
		table.AddRow([]string{"URL", r.URL})
	}
	table.AddRow([]string{"Scheme", r.Scheme.String()})
	table.AddRow([]string{"Reason", string(r.Result.Reason)})
	if r.Result.Info != "" {
		table.AddRow([]string{"Info", r.Result.Info})
	}
	table.AddRow([]string{"Resolved", r.Result.Colour})
	table.AddRow([]string{"Colour", sw.label(final.Colour, r.Colour)})
	table.AddRow([]string{"Theme scheme", r.ThemeScheme.String()})
	table.AddRow([]string{"Corrected", fmt.Sprintf("%t", r.Result.Corrected)})
	fmt.Fprint(w, table.Render())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
