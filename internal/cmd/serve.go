package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/aveekpatra/Domain-AI/internal/config"
	apperrors "github.com/aveekpatra/Domain-AI/internal/errors"
	"github.com/aveekpatra/Domain-AI/internal/metrics"
	"github.com/aveekpatra/Domain-AI/internal/observability"
	"github.com/aveekpatra/Domain-AI/internal/ratelimit"
	"github.com/aveekpatra/Domain-AI/internal/registrar"
	"github.com/aveekpatra/Domain-AI/internal/security"
	"github.com/aveekpatra/Domain-AI/internal/server"
	"github.com/aveekpatra/Domain-AI/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
	promptsDir string
)

const (
	basicJanitorInterval = time.Minute
	aiSweepInterval      = time.Hour
)

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return apperrors.NewInternalError("telemetry system not initialized")
	}
	return nil
}

// registrarHealthChecker reports a registrar that cannot serve lookups.
type registrarHealthChecker struct {
	client  registrar.Client
	variant registrar.Variant
}

func (c registrarHealthChecker) CheckHealth(ctx context.Context) error {
	if c.client == nil {
		return apperrors.NewRegistrarConfigError(registrar.CredentialsHint(c.variant))
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the domain discovery API with graceful shutdown support.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config file reload (logging level and limits need a restart)`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return apperrors.WrapConfigInvalid(ctx, err, "invalid configuration")
	}

	if err := observability.InitServerLogger(observability.ServerLoggerOptions{
		Service:     config.AppName,
		Level:       cfg.Logging.Level,
		Environment: cfg.App.Environment,
		Namespace:   config.AppName,
	}); err != nil {
		return apperrors.WrapConfigInvalid(ctx, err, "logger initialization failed")
	}
	if err := observability.InitMetrics(config.AppName, cfg.Metrics.Port); err != nil {
		observability.ServerLogger.Error("Failed to initialize metrics", zap.Error(err))
		return apperrors.WrapInternal(ctx, err, "metrics initialization failed")
	}
	metrics.SetServerStartTime(time.Now())

	backend, err := openBucketStore(ctx, cfg)
	if err != nil {
		return apperrors.WrapInternal(ctx, err, "rate limit store unavailable")
	}

	aiLimiter := ratelimit.NewAILimiter(backend.Store, ratelimit.MergeOperations(cfg.RateLimit.Operations))
	aiLimiter.OnSweepError = func(err error) {
		observability.ServerLogger.Warn("Inline bucket sweep failed", zap.Error(err))
	}
	basic := ratelimit.NewBasic(cfg.RateLimit.Basic.Window, cfg.RateLimit.Basic.Max)

	runCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	basic.StartJanitor(runCtx, basicJanitorInterval)
	go sweepBuckets(runCtx, aiLimiter, aiSweepInterval)

	reg, err := newRegistrar(cfg.Registrar)
	if err != nil {
		_ = backend.Close()
		return apperrors.WrapConfigInvalid(ctx, err, "registrar configuration invalid")
	}
	if reg == nil {
		observability.ServerLogger.Warn("Registrar credentials missing; availability lookups disabled",
			zap.String("variant", cfg.Registrar.Variant))
	}

	gateway, err := newGateway(cfg.AI, promptsDir)
	if err != nil {
		_ = backend.Close()
		return apperrors.WrapInternal(ctx, err, "model gateway initialization failed")
	}

	api := &handlers.API{
		Prompts:       security.NewAnalyzer(),
		Basic:         basic,
		AI:            aiLimiter,
		Usage:         aiLimiter,
		Generator:     gateway,
		Improver:      gateway,
		Registrar:     reg,
		Variant:       registrar.Variant(cfg.Registrar.Variant),
		FillScores:    cfg.Generate.FillMissingScores,
		MeterValidate: cfg.RateLimit.MeterValidate,
		Diagnostics:   !cfg.IsProduction(),
		Logger:        observability.ServerLogger,
	}

	var hm *handlers.HealthManager
	if cfg.Health.Enabled {
		hm = handlers.NewHealthManager(versionInfo.Version)
		hm.RegisterChecker("telemetry", telemetryHealthChecker{})
		hm.RegisterChecker("bucket_store", backend)
		hm.RegisterChecker("registrar", handlers.Optional(registrarHealthChecker{
			client:  reg,
			variant: registrar.Variant(cfg.Registrar.Variant),
		}))
	}

	upstreams := handlers.Upstreams{Model: gateway.Model, Registrar: cfg.Registrar.Variant}
	if reg != nil {
		upstreams.Registrar = string(reg.Variant())
	}

	srv := server.New(cfg, server.Deps{API: api, Health: hm, Upstreams: upstreams})

	observability.ServerLogger.Info("Initializing server",
		zap.String("service", config.AppName),
		zap.String("version", versionInfo.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Int("metrics_port", cfg.Metrics.Port),
		zap.String("ratelimit_store", cfg.RateLimit.Store),
		zap.String("model", gateway.Model))

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 10 * time.Second
	}

	// Shutdown handlers run LIFO: HTTP server, then stores and metrics, then the logger.
	signals.OnShutdown(func(ctx context.Context) error {
		observability.ServerLogger.Info("Flushing logger...")
		if err := observability.SyncLoggers(); err != nil {
			observability.ServerLogger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
		}
		return nil
	})

	signals.OnShutdown(func(ctx context.Context) error {
		stopBackground()
		if err := backend.Close(); err != nil {
			observability.ServerLogger.Warn("Closing rate limit store failed", zap.Error(err))
		}
		if err := observability.StopMetrics(); err != nil {
			observability.ServerLogger.Warn("Stopping metrics exporter failed", zap.Error(err))
		}
		return nil
	})

	signals.OnShutdown(func(ctx context.Context) error {
		observability.ServerLogger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return apperrors.WrapInternal(ctx, err, "server shutdown failed")
		}
		observability.ServerLogger.Info("HTTP server stopped gracefully")
		return nil
	})

	signals.OnReload(func(ctx context.Context) error {
		observability.ServerLogger.Info("Received SIGHUP: attempting config reload")

		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				observability.ServerLogger.Info("No config file found - using defaults and environment variables")
				return nil
			}
			observability.ServerLogger.Error("Failed to reload config file",
				zap.String("file", viper.ConfigFileUsed()),
				zap.Error(err))
			return apperrors.WrapConfigInvalid(ctx, err, "config reload failed")
		}
		if _, err := loadConfig(); err != nil {
			observability.ServerLogger.Error("Reloaded config is invalid", zap.Error(err))
			return apperrors.WrapConfigInvalid(ctx, err, "config reload failed")
		}

		observability.ServerLogger.Info("Configuration reloaded successfully",
			zap.String("file", viper.ConfigFileUsed()))
		return nil
	})

	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		observability.ServerLogger.Warn("Failed to enable double-tap force quit", zap.Error(err))
	}

	errChan := make(chan error, 1)
	go func() {
		observability.ServerLogger.Info("Starting HTTP server...",
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	go func() {
		if err := signals.Listen(ctx); err != nil {
			observability.ServerLogger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()

	if err := <-errChan; err != nil {
		return apperrors.WrapInternal(ctx, err, "server error")
	}
	return nil
}

// sweepBuckets drops expired AI-tier buckets until ctx is cancelled.
func sweepBuckets(ctx context.Context, limiter *ratelimit.AILimiter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := limiter.Sweep(ctx)
			if err != nil {
				observability.ServerLogger.Warn("Bucket sweep failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				observability.ServerLogger.Debug("Swept expired buckets", zap.Int("removed", removed))
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")
	serveCmd.Flags().StringVar(&promptsDir, "prompts-dir", "", "directory of prompt overrides (*.md with YAML frontmatter)")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
