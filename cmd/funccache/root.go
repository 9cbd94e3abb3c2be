package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/funccache/cache"
	"github.com/jonwraymond/funccache/config"
	"github.com/jonwraymond/funccache/fingerprint"
	"github.com/jonwraymond/funccache/observe"
	"github.com/jonwraymond/funccache/resilience"
	"github.com/jonwraymond/funccache/secret"
)

// app holds what the subcommands share. Connections are opened lazily so
// that commands such as version never touch Redis.
type app struct {
	configPath string
	strict     bool

	cfg     *config.Config
	client  redis.UniversalClient
	breaker *resilience.CircuitBreaker
	obs     observe.Observer
	cache   *cache.Cache
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "funccache",
		Short: "Inspect and maintain Redis-backed function caches",
		Long: `funccache operates on the Redis keys written by the funccache library.

Configuration is read from --config, or from funccache.yaml in the working
directory or the user config directory. Every key can be overridden with a
FUNCCACHE_ environment variable, for example FUNCCACHE_CACHE_NAME=users or
FUNCCACHE_REDIS_URL=redis://localhost:6379/0.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "version":
				return nil
			}
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "configuration file")
	root.PersistentFlags().BoolVar(&a.strict, "strict-secrets", true, "fail on unresolvable secret references")

	root.AddCommand(
		newKeysCmd(a),
		newSizeCmd(a),
		newPurgeCmd(a),
		newFingerprintCmd(a),
		newHealthCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

// open connects to Redis and builds the configured cache.
func (a *app) open(ctx context.Context) error {
	if a.cache != nil {
		return nil
	}
	if a.cfg == nil {
		return errors.New("funccache: configuration not loaded")
	}

	obs, err := observe.NewObserver(ctx, a.cfg.ObserveConfig())
	if err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	client, err := a.cfg.NewClient(ctx, secret.NewResolver(a.strict))
	if err != nil {
		_ = obs.Shutdown(ctx)
		return err
	}
	exec, breaker := a.cfg.Executor()
	c, err := a.cfg.NewCache(client, exec, obs)
	if err != nil {
		_ = client.Close()
		_ = obs.Shutdown(ctx)
		return err
	}

	a.obs, a.client, a.breaker, a.cache = obs, client, breaker, c
	return nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.client != nil {
		errs = append(errs, a.client.Close())
	}
	if a.obs != nil {
		errs = append(errs, a.obs.Shutdown(ctx))
	}
	a.client, a.obs, a.cache = nil, nil, nil
	return errors.Join(errs...)
}

// run opens the cache, calls fn and closes everything again.
func (a *app) run(ctx context.Context, fn func(*cache.Cache) error) (err error) {
	if err := a.open(ctx); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.close(context.WithoutCancel(ctx)))
	}()
	return fn(a.cache)
}

// identityFlags selects a function for the per-function variants.
type identityFlags struct {
	name string
	code string
}

func (f *identityFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "func", "", "fully-qualified function name")
	cmd.Flags().StringVar(&f.code, "code", "", "function code payload (source location and revision)")
}

// identity returns nil when no function was named.
func (f *identityFlags) identity() *fingerprint.Identity {
	if f.name == "" {
		return nil
	}
	id := fingerprint.NewIdentity(f.name, []byte(f.code))
	return &id
}
