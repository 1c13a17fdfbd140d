// Package bootstrap wires configuration, storage, transport, and the
// event pipeline into runnable API and worker processes.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/adapters/cache"
	eventadapter "github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/adapters/events"
	httpadapter "github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/adapters/http"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/adapters/memory"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/adapters/postgres"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/application"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	outbox     *eventadapter.OutboxWorker
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	var closers []io.Closer
	cleanup := func(context.Context) {
		for _, closer := range closers {
			_ = closer.Close()
		}
	}

	var repos ports.Repositories
	var txRunner ports.TxRunner
	if cfg.DatabaseURL != "" {
		db, dbErr := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
		if dbErr != nil {
			return nil, dbErr
		}
		sqlDB, sqlErr := db.DB()
		if sqlErr != nil {
			return nil, sqlErr
		}
		closers = append(closers, sqlDB)
		if migErr := postgres.RunMigrations(ctx, db); migErr != nil {
			cleanup(ctx)
			return nil, migErr
		}
		pg := postgres.NewRepositories(db)
		repos = pg.Ports()
		txRunner = postgres.NewTxRunner(db)
	} else {
		logger.WarnContext(ctx, "no postgres url configured, using in-memory store")
		mem := memory.NewRepositories()
		repos = mem.Ports()
		txRunner = memory.NewTxRunner(mem)
	}

	if seedErr := seedPlatform(ctx, cfg, repos.Platform); seedErr != nil {
		cleanup(ctx)
		return nil, seedErr
	}

	cacheStore := ports.Cache(cache.Noop{})
	if cfg.RedisURL != "" {
		redisClient, redisErr := cache.Connect(ctx, cfg.RedisURL)
		if redisErr != nil {
			cleanup(ctx)
			return nil, redisErr
		}
		closers = append(closers, redisClient)
		cacheStore = cache.NewRedisCache(redisClient)
	}

	service := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:     cfg.ServiceID,
			AdminAccount:    cfg.AdminAccount,
			IdempotencyTTL:  cfg.IdempotencyTTL,
			BalanceCacheTTL: cfg.BalanceCacheTTL,
		},
		Balances:      repos.Balances,
		Payments:      repos.Payments,
		Escrows:       repos.Escrows,
		Subscriptions: repos.Subscriptions,
		Platform:      repos.Platform,
		Outbox:        repos.Outbox,
		Idempotency:   repos.Idempotency,
		Tx:            txRunner,
		Cache:         cacheStore,
	})

	handler := httpadapter.NewHandler(service)
	router := httpadapter.NewRouter(handler, logger, func() bool { return true })
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		cleanup(ctx)
		return nil, err
	}

	publisher := ports.EventPublisher(eventadapter.NewLoggingPublisher(logger))
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers)
		publisher = kafkaPublisher
		closers = append(closers, kafkaPublisher)
	}
	outbox := eventadapter.NewOutboxWorker(repos.Outbox, publisher, logger, cfg.OutboxPollInterval, cfg.OutboxBatchSize)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		outbox:     outbox,
		cleanupFn:  cleanup,
	}, nil
}

// seedPlatform writes the singleton config record on first boot only.
// An existing record wins over config so admin changes survive restarts.
func seedPlatform(ctx context.Context, cfg Config, platform ports.PlatformRepository) error {
	_, err := platform.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if cfg.SeedFeeRateBps > domain.MaxFeeRateBps {
		return fmt.Errorf("seed fee rate %d exceeds cap %d", cfg.SeedFeeRateBps, domain.MaxFeeRateBps)
	}
	return platform.Save(ctx, domain.Platform{
		FeeRateBps:       cfg.SeedFeeRateBps,
		MinPaymentAmount: cfg.SeedMinPaymentAmount,
	})
}

func Build(ctx context.Context, configPath string) (*Runtime, error) {
	return NewRuntime(ctx, configPath)
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 2)

	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := r.outbox.Run(ctx)
	r.cleanupFn(context.Background())
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
