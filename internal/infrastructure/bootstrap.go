package infrastructure

import (
	"context"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"txguard/internal/config"
	"txguard/internal/repository"
	"txguard/internal/service"
	transportGRPC "txguard/internal/transport/grpc"
	transportHTTP "txguard/internal/transport/http"
	transportNATS "txguard/internal/transport/nats"
	"txguard/internal/worker"
)

// Bootstrap initialises all dependencies from config and wires up the application.
// Returns the App, a cleanup function, or an error.
func Bootstrap(ctx context.Context) (*App, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}

	log, err := NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()
	cleanupFns = append(cleanupFns, func() { _ = log.Sync() })

	db, err := connectPostgres(ctx, cfg.DSN())
	if err != nil {
		return nil, runCleanup(cleanupFns), err
	}
	cleanupFns = append(cleanupFns, db.Close)

	rdb, err := connectRedis(ctx, cfg.RedisAddr())
	if err != nil {
		return nil, runCleanup(cleanupFns), err
	}
	cleanupFns = append(cleanupFns, func() { _ = rdb.Close() })

	var nc *nats.Conn
	if cfg.BusProvider == "nats" || cfg.WorkerProvider == "nats" {
		nc, err = connectNats(cfg.NatsAddr(), log.With(zap.String("component", "nats")))
		if err != nil {
			return nil, runCleanup(cleanupFns), err
		}
		cleanupFns = append(cleanupFns, nc.Close)
	}

	// ── Bus ───────────────────────────────────────────────────────────────────
	var bus repository.MessageBus
	switch cfg.BusProvider {
	case "nats":
		bus = transportNATS.NewBus(nc)
	case "grpc":
		grpcBus, cleanup, err := transportGRPC.NewBusFromAddr(cfg.GRPCAddr())
		if err != nil {
			return nil, runCleanup(cleanupFns), err
		}
		bus = grpcBus
		cleanupFns = append(cleanupFns, cleanup)
	}

	// ── Service ───────────────────────────────────────────────────────────────
	pipeline := service.NewPipeline(
		bus,
		repository.NewOutcomeRepo(db),
		log.With(zap.String("component", "pipeline")),
		service.WithAuditWorkers(cfg.AuditWorkers),
		service.WithReportCache(repository.NewAuditCache(rdb, cfg.AuditCacheTTL)),
	)
	svc := service.WithLogging(pipeline, log.With(zap.String("component", "service")))

	// ── Servers ───────────────────────────────────────────────────────────────
	// With WorkerProvider == "grpc" the gRPC server's Publish method journals events.
	servers := []Server{
		transportGRPC.NewServer(cfg.GRPCListenAddr(), svc, log.With(zap.String("component", "grpc"))),
	}
	if nc != nil {
		servers = append(servers, transportNATS.NewHandler(svc, nc, log.With(zap.String("component", "nats_handler"))))
	}
	if cfg.WorkerProvider == "nats" {
		servers = append(servers, worker.NewOutcomeWorker(svc, nc, log.With(zap.String("component", "worker"))))
	}
	if addr, apiErr := cfg.ApiAddr(); apiErr == nil {
		servers = append(servers, transportHTTP.NewServer(addr, svc, log.With(zap.String("component", "http"))))
	} else {
		log.Info("HTTP API not started", zap.String("reason", apiErr.Error()))
	}

	return NewApp(servers, log), runCleanup(cleanupFns), nil
}

// runCleanup returns a single function that calls all cleanup functions in reverse order.
func runCleanup(fns []func()) func() {
	return func() {
		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
	}
}
