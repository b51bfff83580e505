package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/tabtint/internal/config"
	"github.com/jmylchreest/tabtint/internal/engine"
	"github.com/jmylchreest/tabtint/internal/scheme"
	"github.com/jmylchreest/tabtint/internal/server"
	"github.com/jmylchreest/tabtint/internal/sink"
)

func newServeCmd() *cobra.Command {
	var (
		listen   string
		printAll bool
		noWatch  bool
		noPlugin bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the host the browser extension connects to",
		Long: `Serve the WebSocket the browser extension connects to and colour its
windows until interrupted.

Preferences are reloaded when the config file changes. Theme sink plugins
listed under "plugins" receive every applied theme.`,
		Example: `  tabtint serve
  tabtint serve --listen 127.0.0.1:7787 --print
  tabtint serve -v --no-watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd)
			mgr, err := loadConfig(cmd, logger)
			if err != nil {
				return err
			}
			prefs := mgr.Preferences()
			if listen != "" {
				prefs.Server.Listen = listen
			}
			if path := mgr.ConfigFileUsed(); path != "" {
				logger.Info("loaded config", "path", path)
			}

			bridge := server.New(server.Options{
				AllowedOrigins: prefs.Server.AllowedOrigins,
				RequestTimeout: prefs.Server.RequestTimeout,
				Logger:         logger,
			})

			sinks := sink.Multi{bridge}
			if !noPlugin {
				plugins, err := sink.LoadPlugins(prefs.Plugins, logger.Named("plugin"))
				if err != nil {
					logger.Warn("some plugins failed to load", "error", err)
				}
				for _, p := range plugins {
					defer p.Close()
					sinks = append(sinks, p)
				}
			}
			if printAll {
				sinks = append(sinks, sink.NewWriter(cmd.OutOrStdout()))
			}

			eng := engine.New(engine.Options{
				Preferences: prefs,
				Page:        bridge,
				Addons:      bridge,
				Sink:        sinks,
				Reload: func() (config.Preferences, error) {
					if err := mgr.Load(); err != nil {
						return config.Preferences{}, err
					}
					return mgr.Preferences(), nil
				},
				Detectors: []scheme.Detector{scheme.EnvDetector{}},
				Logger:    logger,
			})
			defer eng.Close()
			bridge.Attach(eng)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !noWatch {
				mgr.OnChange(func(p config.Preferences) {
					logger.Info("preferences changed, refreshing windows")
					if err := eng.SetPreferences(ctx, p); err != nil {
						logger.Warn("refresh after preference change failed", "error", err)
					}
				})
				mgr.Watch()
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return bridge.ListenAndServe(gctx, prefs.Server.Listen)
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("shutting down")
				return nil
			})
			if err := g.Wait(); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default: server.listen from preferences)")
	cmd.Flags().BoolVar(&printAll, "print", false, "also write every applied theme to stdout as JSON lines")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload preferences when the config file changes")
	cmd.Flags().BoolVar(&noPlugin, "no-plugins", false, "do not start theme sink plugins")
	return cmd
}
