package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
	"github.com/Eshhar121/ecommerce-frontend/internal/config"
	"github.com/Eshhar121/ecommerce-frontend/internal/credstore"
	"github.com/Eshhar121/ecommerce-frontend/internal/logging"
	"github.com/Eshhar121/ecommerce-frontend/internal/server"
	"github.com/Eshhar121/ecommerce-frontend/internal/session"
	"github.com/Eshhar121/ecommerce-frontend/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := logging.New(cfg.LogFormat, cfg.Debug)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
			Endpoint:    cfg.Telemetry.Endpoint,
			Insecure:    cfg.Telemetry.Insecure,
			ServiceName: cfg.Telemetry.ServiceName,
			Environment: cfg.Telemetry.Environment,
		}, logger)
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(sctx); err != nil {
				logger.Warn("telemetry shutdown", zap.Error(err))
			}
		}()

		serverMetrics, err := telemetry.NewServerMetrics()
		if err != nil {
			return fmt.Errorf("server metrics: %w", err)
		}
		sessionMetrics, err := telemetry.NewSessionMetrics()
		if err != nil {
			return fmt.Errorf("session metrics: %w", err)
		}
		guardMetrics, err := telemetry.NewGuardMetrics()
		if err != nil {
			return fmt.Errorf("guard metrics: %w", err)
		}

		store, ping, closeStore, err := openCredentialStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		logger.Info("credential store ready", zap.String("store", cfg.CredentialStore))

		registry, err := session.NewRegistry(session.RegistryOptions{
			BackendURL:     cfg.BackendURL,
			BackendTimeout: cfg.BackendTimeout,
			Store:          store,
			CredentialTTL:  cfg.VisitorTTL,
			MaxVisitors:    cfg.MaxVisitors,
			IdleTTL:        cfg.VisitorIdleTTL,
			Logger:         logger,
			Metrics:        sessionMetrics,
		})
		if err != nil {
			return fmt.Errorf("create visitor registry: %w", err)
		}
		defer registry.Purge()

		signer, err := auth.NewVisitorSigner([]byte(cfg.VisitorSecret), cfg.VisitorTTL)
		if err != nil {
			return fmt.Errorf("create visitor signer: %w", err)
		}

		corsOpts := server.DefaultCORSOptions(cfg.AllowedOrigins)
		r, err := server.NewRouter(server.RouterOptions{
			Visitors:      registry,
			Signer:        signer,
			Logger:        logger,
			ServerMetrics: serverMetrics,
			GuardMetrics:  guardMetrics,
			CORSOptions:   &corsOpts,
			CSRFKey:       []byte(cfg.CSRFKey),
			SecureCookies: cfg.SecureCookies,
			ResolveWait:   cfg.ResolveWait,
			HealthHandler: healthHandler(ping, logger),
		})
		if err != nil {
			return fmt.Errorf("build router: %w", err)
		}

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting storefront",
				zap.String("addr", cfg.ServerAddr),
				zap.String("backend", cfg.BackendURL),
				zap.Bool("csrf", cfg.CSRFKey != ""),
			)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			logger.Info("shutting down gracefully")
		}

		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server stopped")
		return nil
	},
}

// openCredentialStore returns the configured store, a readiness probe and
// a close function.
func openCredentialStore(ctx context.Context, cfg *config.Config) (credstore.Store, func(context.Context) error, func(), error) {
	noop := func(context.Context) error { return nil }
	if cfg.CredentialStore != config.CredentialStoreRedis {
		return credstore.NewMemory(0, cfg.VisitorTTL), noop, func() {}, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.Redis.Addr},
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := credstore.NewRedis(client, cfg.Redis.Prefix)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pctx); err != nil {
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	return store, store.Ping, func() { _ = client.Close() }, nil
}

func healthHandler(ping func(context.Context) error, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := ping(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

func init() {
	serveCmd.Flags().String("addr", "", "Server bind address (env: STOREFRONT_SERVER_ADDR)")
	serveCmd.Flags().String("backend-url", "", "Backend base URL (env: STOREFRONT_BACKEND_URL)")
	serveCmd.Flags().String("log-format", "", "Log format, json or console (env: STOREFRONT_LOG_FORMAT)")
	_ = viper.BindPFlag("server_addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("backend_url", serveCmd.Flags().Lookup("backend-url"))
	_ = viper.BindPFlag("log_format", serveCmd.Flags().Lookup("log-format"))
	rootCmd.AddCommand(serveCmd)
}
