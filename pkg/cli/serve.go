package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	httpctrl "github.com/secmon-lab/grc-lookup/pkg/controller/http"
	"github.com/secmon-lab/grc-lookup/pkg/service/worker"
	"github.com/secmon-lab/grc-lookup/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var prefetchInterval time.Duration
	var appCfg appConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("GRC_LOOKUP_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "prefetch-interval",
			Usage:       "Interval of background cache refresh for all jurisdictions (0 disables it)",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("GRC_LOOKUP_PREFETCH_INTERVAL"),
			Destination: &prefetchInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags(true)...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := appCfg.newApp(ctx, appOptions{
				guidance: true,
				content:  true,
				version:  c.Root().Version,
			})
			if err != nil {
				return err
			}
			defer a.Close()

			logging.Default().Info("Configuration loaded",
				"source", appCfg.source,
				"guidance", appCfg.guidance,
				"jurisdictions", a.registry.IDStrings(),
			)

			var prefetchWorker *worker.PrefetchWorker
			if prefetchInterval > 0 {
				prefetchWorker = worker.NewPrefetchWorker(a.uc.Lookup, prefetchInterval)
				if err := prefetchWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start prefetch worker")
				}
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(a.uc.Lookup, httpctrl.WithVersion(c.Root().Version)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				if prefetchWorker != nil {
					prefetchWorker.Stop()
				}
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop prefetch worker first
				if prefetchWorker != nil {
					prefetchWorker.Stop()
				}
				a.guidance.Disconnect()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
