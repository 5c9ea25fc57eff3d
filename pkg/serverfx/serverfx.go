// Package serverfx wires the whole service: configuration, schema registry,
// database, middleware, and the HTTP lifecycle, all through Fx.
package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tasklight/tasklight-core/pkg/config"
	"github.com/tasklight/tasklight-core/pkg/dispatch"
	"github.com/tasklight/tasklight-core/pkg/domain"
	"github.com/tasklight/tasklight-core/pkg/executor"
	"github.com/tasklight/tasklight-core/pkg/identity"
	"github.com/tasklight/tasklight-core/pkg/middleware/auth"
	"github.com/tasklight/tasklight-core/pkg/middleware/logger"
	"github.com/tasklight/tasklight-core/pkg/middleware/metrics"
	"github.com/tasklight/tasklight-core/pkg/schema"
	"github.com/tasklight/tasklight-core/pkg/store"
	"github.com/tasklight/tasklight-core/pkg/transport/httpx"
)

// ---------- Connection configuration ----------

// provideConnString establishes the write-once connection configuration.
// A missing DATABASE_URL is startup-fatal, never a silently empty default.
func provideConnString(cfg *config.Config, zl *zap.Logger) *config.ConnString {
	cs := config.NewConnString()
	if cfg.DatabaseURL == "" {
		zl.Fatal("DATABASE_URL not set")
	}
	if err := cs.Set(cfg.DatabaseURL); err != nil {
		zl.Fatal("connection configuration failed", zap.Error(err))
	}
	return cs
}

// ---------- Schema registry ----------

func provideRegistry(cfg *config.Config, zl *zap.Logger) *schema.Registry {
	reg, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		zl.Fatal("schema load failed", zap.Error(err), zap.String("path", cfg.SchemaPath))
	}
	return reg
}

// ---------- Store ----------

func provideStore(cs *config.ConnString, cfg *config.Config, zl *zap.Logger) *store.Store {
	s, err := store.Open(cs)
	if err != nil {
		zl.Fatal("store open failed", zap.Error(err))
	}
	if cfg.MigrationsPath != "" {
		if err := s.Migrate(cfg.MigrationsPath); err != nil {
			zl.Fatal("migrations failed", zap.Error(err), zap.String("path", cfg.MigrationsPath))
		}
	}
	return s
}

func provideInvoker(s *store.Store, reg *schema.Registry) executor.Invoker {
	return store.NewInvoker(s, reg)
}

// ---------- Router ----------

func provideRouter(
	reg *schema.Registry,
	a *auth.Middleware,
	lm *logger.Middleware,
	/* name:"metrics" */ m http.Handler,
	exec *executor.Executor,
	id *identity.Handlers,
	r httpx.Router,
	zl *zap.Logger,
) http.Handler {
	domain.RegisterTypes()

	h, err := dispatch.BuildRouter(reg, dispatch.BuildDeps{
		Auth:     a,
		LogMW:    lm,
		Metrics:  m,
		Router:   r,
		Exec:     exec,
		Identity: id,
		Log:      zl,
	})
	if err != nil {
		zl.Fatal("router build failed", zap.Error(err))
	}
	return h
}

// ---------- Lifecycle ----------

type serverDeps struct {
	fx.In
	Logger *zap.Logger
	Store  *store.Store
	App    http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, cfg *config.Config, d serverDeps) {
	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      d.App,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
	useTLS := fileExists(cfg.TLSCert) && fileExists(cfg.TLSKey)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if useTLS {
				d.Logger.Info("server starting (TLS)", zap.String("addr", cfg.ListenAddr), zap.String("cert", cfg.TLSCert))
				go func() {
					if err := srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			} else {
				d.Logger.Info("server starting (PLAINTEXT)", zap.String("addr", cfg.ListenAddr))
				go func() {
					srv.TLSConfig = nil
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping")
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			return d.Store.Close()
		},
	})
}

// ---------- tiny helpers ----------

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Module assembles the full service graph.
func Module() fx.Option {
	return fx.Options(
		fx.Provide(config.Load),
		logger.Module,
		auth.Module,
		identity.Module,
		fx.Provide(provideConnString),
		fx.Provide(provideRegistry),
		fx.Provide(provideStore),
		fx.Provide(provideInvoker),
		fx.Provide(executor.New),
		fx.Provide(fx.Annotate(metrics.ProvideMetrics, fx.ResultTags(`name:"metrics"`))),
		fx.Provide(httpx.NewChi),
		fx.Provide(fx.Annotate(
			provideRouter,
			fx.ParamTags(``, ``, ``, `name:"metrics"`, ``, ``, ``, ``),
			fx.ResultTags(`name:"app"`),
		)),
		fx.Invoke(registerHooks),
	)
}
