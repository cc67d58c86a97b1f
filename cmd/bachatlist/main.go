package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bachatlist/config"
	"bachatlist/internal/amazon"
	"bachatlist/internal/catalog"
	"bachatlist/internal/cuelinks"
	"bachatlist/internal/database"
	"bachatlist/internal/http-server/router"
	"bachatlist/internal/lib/jwt"
	"bachatlist/internal/lock"
	"bachatlist/internal/logger"
	"bachatlist/internal/models"
	"bachatlist/internal/monitor"
	"bachatlist/internal/notify"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Debug(".env not found, using process environment")
	}
	log.Info("starting bachatlist", zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.Database.Path
	if cfg.Database.Driver == database.DriverPostgres {
		dsn = cfg.Database.URL
	}
	db, err := database.New(ctx, cfg.Database.Driver, dsn, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	var locker lock.Locker = lock.NewLocal()
	if cfg.Redis.Addr != "" {
		rdb, err := lock.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("failed to connect redis", zap.Error(err))
		}
		defer rdb.Close()
		locker = lock.NewRedis(rdb)
	}

	var amazonOpts []amazon.Option
	if cfg.Amazon.BaseURL != "" {
		amazonOpts = append(amazonOpts, amazon.WithBaseURL(cfg.Amazon.BaseURL))
	}
	paapi := amazon.NewClient(logger.Component(log, "amazon"), amazonOpts...)

	tg := notify.NewTelegram(cfg.Telegram.APIEndpoint, &http.Client{Timeout: cfg.HTTPServer.Timeout}, log)

	dispatcher := notify.NewDispatcher(db, log)
	dispatcher.Register(models.ChannelTelegram, tg)

	if sns, err := notify.NewSNSFromRegion(ctx, cfg.AWS.Region); err != nil {
		log.Warn("sns channel disabled", zap.Error(err))
	} else {
		dispatcher.Register(models.ChannelSNS, sns)
	}

	if cfg.SMTP.Host != "" {
		dispatcher.Register(models.ChannelEmail,
			notify.NewSMTPEmail(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From))
	}

	if cfg.RabbitMQ.URL != "" {
		mq, err := notify.DialAMQP(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
		if err != nil {
			log.Fatal("failed to connect rabbitmq", zap.Error(err))
		}
		defer mq.Close()
		dispatcher.Register(models.ChannelAMQP, notify.NewAMQP(mq.Channel, cfg.RabbitMQ.QueueName))
	}

	syncer := monitor.NewSyncer(db, paapi, dispatcher, locker, cfg.RequestInterval, cfg.SyncLockTTL, log)
	mon := monitor.New(db, syncer, dispatcher, cfg.CheckInterval, cfg.DigestInterval, log)
	go mon.Start(ctx)

	srv := &http.Server{
		Addr: cfg.HTTPServer.Address,
		Handler: router.New(log, router.Deps{
			Store:      db,
			Syncer:     mon,
			Catalog:    catalog.New(db, paapi, log),
			Cuelinks:   cuelinks.NewImporter(db, &http.Client{Timeout: 30 * time.Second}, cfg.Cuelinks.BaseURL, cfg.Cuelinks.APIKey, log),
			Digest:     dispatcher,
			Bot:        tg,
			JWT:        jwt.New(cfg.JWTSecret),
			CronSecret: cfg.CronSecret,
		}),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout * 6,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("http server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
