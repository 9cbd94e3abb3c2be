package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/funccache/auth"
	"github.com/jonwraymond/funccache/cache"
	"github.com/jonwraymond/funccache/health"
	"github.com/jonwraymond/funccache/observe"
	"github.com/jonwraymond/funccache/secret"
)

// newServeMux routes the probes and metrics. Liveness and readiness stay
// open for orchestrators; the detailed report and metrics require a key
// when authn is set.
func newServeMux(a *app, authn *auth.APIKeyAuthenticator, timeout time.Duration) *http.ServeMux {
	agg := newAggregator(a, timeout)
	mux := http.NewServeMux()
	mux.Handle("/healthz", health.LivenessHandler())
	mux.Handle("/readyz", health.ReadinessHandler(agg))
	mux.Handle("/health", auth.Require(authn, health.DetailedHandler(agg)))
	if h := a.obs.MetricsHandler(); h != nil {
		mux.Handle("/metrics", auth.Require(authn, h))
	}
	return mux
}

func newServeCmd(a *app) *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health probes and the metrics endpoint",
		Long: `Serve /healthz, /readyz and /health for the configured cache. When the
metrics exporter is prometheus, /metrics is served as well.

When serve.api_keys is set, /health and /metrics require one of the keys in
the X-API-Key header (or serve.api_key_header) or as a bearer token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Serve.Addr
			}
			authn, err := a.cfg.Authenticator(ctx, secret.NewResolver(a.strict))
			if err != nil {
				return err
			}

			return a.run(ctx, func(c *cache.Cache) error {
				srv := &http.Server{
					Addr:              addr,
					Handler:           newServeMux(a, authn, timeout),
					ReadHeaderTimeout: 5 * time.Second,
				}
				log := a.obs.Logger().WithCache(observe.CacheMeta{Cache: c.Name(), Policy: c.Policy().Tag()})

				errc := make(chan error, 1)
				go func() { errc <- srv.ListenAndServe() }()
				log.Info(ctx, "serving", observe.F("addr", addr), observe.F("auth", authn != nil))

				select {
				case err := <-errc:
					if errors.Is(err, http.ErrServerClosed) {
						return nil
					}
					return err
				case <-ctx.Done():
				}

				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default serve.addr)")
	cmd.Flags().DurationVar(&timeout, "check-timeout", 5*time.Second, "per-check timeout")
	return cmd
}
