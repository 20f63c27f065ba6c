package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/config"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/domain/surgery"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/repository/breaker"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/repository/mongodb"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/server"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/service"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/pkg/tracer"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, log)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not create store indexes on startup")
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	tp, err := tracer.Init(ctx, cfg.Tracing, cfg.App.Version)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewCollector(cfg.App.Name, reg)

	repo, closeStore, err := openStore(ctx, cfg, m, log)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Breaker.Enabled {
		repo = breaker.New(repo, cfg.Breaker, m, log)
	}

	svc := service.NewSurgeryService(repo, m, log, service.WithListConfig(cfg.List))

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit, m)
		defer limiter.Stop()
	}

	router := server.NewRouter(server.Deps{
		Config:      cfg,
		Service:     svc,
		Metrics:     m,
		Gatherer:    reg,
		RateLimiter: limiter,
		Log:         log,
	})

	log.Info("starting surgery scheduler",
		zap.String("addr", cfg.Server.Address()),
		zap.String("store", cfg.Database.Driver),
		zap.Bool("breaker", cfg.Breaker.Enabled),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
	)
	return server.New(cfg.Server, router, log).Run(ctx)
}

// openStore returns the configured surgery store and a func releasing it.
func openStore(ctx context.Context, cfg *config.Config, m *metrics.Collector, log *zap.Logger) (surgery.Repository, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory surgery store; data is lost on restart")
		return memory.NewSurgeryRepository(), func() {}, nil

	case config.DriverMongo:
		client, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			database.Disconnect(disconnectCtx, client, log)
		}

		repo := mongodb.NewSurgeryRepository(client, cfg.Database.Name, cfg.Database.Collection,
			cfg.Database.QueryTimeout, m, log)
		if !skipMigrate {
			if err := database.Migrate(ctx, log, repo); err != nil {
				closeFn()
				return nil, nil, err
			}
		}
		log.Info("connected to mongodb",
			zap.String("database", cfg.Database.Name),
			zap.String("collection", cfg.Database.Collection),
		)
		return repo, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Database.Driver)
	}
}
