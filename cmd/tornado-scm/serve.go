package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cjrt007/Tornado.Ai/auth"
	"github.com/cjrt007/Tornado.Ai/cache"
	"github.com/cjrt007/Tornado.Ai/config"
	"github.com/cjrt007/Tornado.Ai/health"
	"github.com/cjrt007/Tornado.Ai/observe"
	"github.com/cjrt007/Tornado.Ai/resilience"
	"github.com/cjrt007/Tornado.Ai/scm"
	"github.com/cjrt007/Tornado.Ai/server"
	"github.com/cjrt007/Tornado.Ai/tools"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, addr)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overriding server.host and server.port")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, addr string) error {
	obsCfg := cfg.ObserveConfig()
	obsCfg.Version = version
	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	logger := obs.Logger()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			logger.Warn(shutdownCtx, "telemetry shutdown failed", observe.F("error", err))
		}
	}()

	instruments, err := observe.NewCacheInstruments(obs.Meter())
	if err != nil {
		return err
	}
	defer func() { _ = instruments.Close() }()

	opts := []scm.Option{
		scm.WithLogger(logger),
		scm.WithTracer(observe.NewResolveTracer(obs.Tracer())),
		scm.WithInstruments(instruments),
	}
	if cfg.Cache.SingleFlight {
		opts = append(opts, scm.WithSingleFlight())
	}
	manager, err := scm.New[tools.ExecutionResult](scm.Config{
		DefaultTTL: cfg.Cache.DefaultTTL,
		MaxTTL:     cfg.Cache.MaxTTL,
		MaxEntries: cfg.Cache.MaxEntries,
	}, opts...)
	if err != nil {
		return err
	}

	guards := resilience.NewGuards(resilience.GuardConfig{
		MaxConcurrent: cfg.Tools.MaxConcurrent,
		MaxWait:       cfg.Tools.MaxWait,
		Timeout:       cfg.Tools.Timeout,
		MaxFailures:   cfg.Tools.MaxFailures,
		ResetTimeout:  cfg.Tools.ResetTimeout,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn(context.Background(), "circuit state changed",
				observe.F(observe.AttrToolID, name),
				observe.F("from", from.String()),
				observe.F("to", to.String()),
			)
		},
	})
	dispatcher, err := tools.NewDispatcher(tools.DefaultCatalog(), manager,
		tools.WithLogger(logger),
		tools.WithGuards(guards),
	)
	if err != nil {
		return err
	}

	authn, err := authenticator(cfg.Auth)
	if err != nil {
		return err
	}

	agg := health.NewAggregator()
	agg.Register(health.NewCacheChecker(manager, health.CacheCheckerConfig{EvictionRatio: cfg.Cache.EvictionRatio}))
	agg.Register(health.NewCheckerFunc("circuits", func(context.Context) health.Result {
		return circuitHealth(guards.States())
	}))

	handler, err := server.New(server.Deps{
		Manager:       manager,
		Dispatcher:    dispatcher,
		Authenticator: authn,
		Health:        agg,
		Logger:        logger,
		Tracer:        obs.Tracer(),
		Metrics:       obs.MetricsHandler(),
		CORS:          cfg.Server.CORS,
	})
	if err != nil {
		return err
	}

	if addr == "" {
		addr = cfg.Server.Addr()
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(ctx, "listening",
			observe.F("addr", addr),
			observe.F("auth", authn.Name()),
			observe.F("single_flight", cfg.Cache.SingleFlight),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.Cache.SweepInterval > 0 {
		sweeper := cache.NewSweeper(manager, cache.SweeperConfig{
			Interval: cfg.Cache.SweepInterval,
			OnSweep: func(removed int) {
				if removed > 0 {
					logger.Debug(ctx, "expired entries purged", observe.F("removed", removed))
				}
			},
		})
		g.Go(func() error {
			_ = sweeper.Run(ctx)
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info(shutdownCtx, "shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func authenticator(cfg config.AuthConfig) (auth.Authenticator, error) {
	if !cfg.Enabled {
		return auth.NewAnonymousAuthenticator(), nil
	}
	return auth.NewJWTAuthenticator(auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
		Leeway:   cfg.Leeway,
	})
}

// circuitHealth reports degraded while any tool's breaker is not closed.
func circuitHealth(states map[string]resilience.State) health.Result {
	open := make(map[string]any)
	for name, s := range states {
		if s != resilience.StateClosed {
			open[name] = s.String()
		}
	}
	if len(open) == 0 {
		return health.Healthy(fmt.Sprintf("%d circuits closed", len(states)))
	}
	return health.Degraded(fmt.Sprintf("%d of %d circuits not closed", len(open), len(states))).WithDetails(open)
}
