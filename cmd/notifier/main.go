package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/affiliates"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/backend"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/config"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/gotrue"
	kafkax "github.com/handshakeadmin/DYOROfficial-sub002/internal/kafka"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/logx"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/mailer"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/notify"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/orders"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/postgres"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logx.New(cfg.Env, cfg.ServiceName+"-notifier")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("notifier exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	if len(cfg.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if cfg.Backend.PostgresDSN == "" {
		return errors.New("POSTGRES_DSN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.Backend.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	var cache redisx.Cache = redisx.NewMemory()
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		cache = redisx.Store{R: rdb}
	}

	gt := gotrue.New(cfg.Backend.URL, cfg.Backend.AnonKey)
	gt.ServiceKey = cfg.Backend.ServiceRoleKey

	svc := &notify.Service{
		Directory: backend.NewLive(gt, db),
		Mailer:    mailer.NewSMTP(cfg.SMTP),
		Cache:     cache,
		Log:       logger,
		Name:      cfg.NotifierGroup,
		From:      cfg.SMTP.From,
		FromName:  cfg.ServiceName,
		SiteURL:   cfg.SiteURL,
	}

	if gt.ServiceKey != "" && gt.BaseURL != "" {
		svc.Accounts = gt
	} else {
		logger.Warn("BACKEND_SERVICE_ROLE_KEY not set; customers without a profile email are skipped")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, topic := range []string{orders.TopicOrderStatusUpdated, affiliates.TopicCommissionUpdated} {
		topic := topic
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, topic, cfg.NotifierWorkers, logger)
		g.Go(func() error {
			logger.Info("consumer started", zap.String("topic", topic), zap.Int("workers", cfg.NotifierWorkers))
			return cons.Start(gctx, svc.Handle)
		})
	}
	err = g.Wait()
	logger.Info("notifier stopped")
	return err
}
