package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/affiliates"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/auth"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/backend"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/backend/memory"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/config"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/gotrue"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/httpx"
	kafkax "github.com/handshakeadmin/DYOROfficial-sub002/internal/kafka"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/logx"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/orders"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/payments"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/postgres"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logx.New(cfg.Env, cfg.ServiceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis
	var cache redisx.Cache = redisx.NewMemory()
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		cache = redisx.Store{R: rdb}
	} else {
		logger.Warn("REDIS_ADDR not set; using in-process cache")
	}

	// Backend
	var (
		authAPI  backend.Auth = backend.Offline{}
		store    backend.Store
		sessions auth.SessionResolver = auth.Unauthenticated{}
	)
	switch cfg.Backend.Mode {
	case config.ModeLive:
		db, err := connectDB(ctx, cfg.Backend.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		live := backend.NewLive(gotrue.New(cfg.Backend.URL, cfg.Backend.AnonKey), db)
		authAPI, store = live, live
		sessions = auth.NewResolver(live, cache, cfg.Backend.CookieName, logger)
	default:
		logger.Warn("backend not configured; every guarded route will deny access")
		store = memory.New()
	}

	// Kafka producers
	var orderEvents, commissionEvents httpx.EventPublisher = kafkax.Discard{}, kafkax.Discard{}
	var producers []*kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		op := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusUpdated, 1024, logger)
		cp := kafkax.NewProducer(cfg.KafkaBrokers, affiliates.TopicCommissionUpdated, 1024, logger)
		producers = append(producers, op, cp)
		orderEvents, commissionEvents = op, cp
		for _, p := range producers {
			p.Start(ctx)
		}
	} else {
		logger.Warn("KAFKA_BROKERS not set; status events are discarded")
	}

	var provider payments.Provider = payments.Unconfigured{}
	if cfg.PayPalEnabled() {
		provider = payments.NewPayPal(cfg.PayPal.BaseURL, cfg.PayPal.ClientID, cfg.PayPal.ClientSecret)
	}

	guard := &auth.Guard{Sessions: sessions, Store: store, Log: logger}
	router := httpx.NewRouter(logger)
	(&httpx.CatalogHandler{Store: store, Log: logger}).Register(router)
	(&httpx.CheckoutHandler{Store: store, Provider: provider, Cache: cache, Log: logger, Currency: cfg.PayPal.Currency}).Register(router)
	(&httpx.AffiliateHandler{Auth: authAPI, Store: store, Guard: guard, Cache: cache, Log: logger, SiteURL: cfg.SiteURL}).Register(router)
	(&httpx.AdminHandler{
		Store:             store,
		Guard:             guard,
		OrderEvents:       orderEvents,
		CommissionEvents:  commissionEvents,
		Log:               logger,
		Service:           cfg.ServiceName,
		StrictTransitions: cfg.StrictOrderTransitions,
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr), zap.String("backend", cfg.Backend.Mode.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(sctx)
		for _, p := range producers {
			p.Close()
		}
		for _, p := range producers {
			p.WaitClosed()
		}
		return err
	})
	return g.Wait()
}

func connectDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("POSTGRES_DSN is required when the backend is configured")
	}
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return postgres.Connect(cctx, dsn)
}
