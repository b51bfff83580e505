// Package cli provides the command-line interface for tabtint.
package cli

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/tabtint/internal/config"
	"github.com/jmylchreest/tabtint/internal/logging"
	"github.com/jmylchreest/tabtint/internal/scheme"
	"github.com/jmylchreest/tabtint/internal/version"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tabtint",
		Short: "Adaptive browser chrome colours",
		Long: `tabtint colours the browser's tab bar, toolbar and popups to match the
page being viewed, correcting the colour so text stays readable.

Run "tabtint serve" for the extension to connect to, or use the diagnostic
commands to see how a URL, a page signal bundle or a colour is handled.`,
		Version:      version.Version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default: $XDG_CONFIG_HOME/tabtint/config.toml)")
	rootCmd.PersistentFlags().Bool("log-json", false, "log in JSON format")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newContrastCmd())
	rootCmd.AddCommand(newPoliciesCmd())
	rootCmd.AddCommand(newServeCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// newLogger builds the logger from the global flags.
func newLogger(cmd *cobra.Command) hclog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	jsonLogs, _ := cmd.Flags().GetBool("log-json")
	return logging.New(logging.Options{
		Name:    "tabtint",
		Verbose: verbose,
		Quiet:   quiet,
		Output:  cmd.ErrOrStderr(),
		JSON:    jsonLogs,
	})
}

// loadConfig creates a config manager and loads the preferences.
func loadConfig(cmd *cobra.Command, logger hclog.Logger) (*config.Manager, error) {
	path, _ := cmd.Flags().GetString("config")
	mgr, err := config.NewManager(path, logger.Named("config"))
	if err != nil {
		return nil, err
	}
	if err := mgr.Load(); err != nil {
		return nil, err
	}
	return mgr, nil
}

// schemeFlag is a --scheme value, validated when the flag is parsed.
type schemeFlag struct {
	value scheme.Scheme
}

var _ pflag.Value = (*schemeFlag)(nil)

func (f *schemeFlag) String() string { return string(f.value) }

func (f *schemeFlag) Type() string { return "scheme" }

func (f *schemeFlag) Set(s string) error {
	v, err := scheme.Parse(s)
	if err != nil {
		return err
	}
	f.value = v
	return nil
}

func addSchemeFlag(fs *pflag.FlagSet, f *schemeFlag) {
	fs.VarP(f, "scheme", "s", "current scheme: light or dark (default: from preferences and environment)")
}

// currentScheme returns the scheme given on the command line, or the one
// derived from the preferences and the environment.
func currentScheme(flag schemeFlag, prefs config.Preferences) scheme.Scheme {
	if flag.value.Valid() {
		return flag.value
	}
	r := scheme.NewResolver(prefs)
	r.RegisterDetector(scheme.EnvDetector{})
	return r.Refresh().Scheme
}
