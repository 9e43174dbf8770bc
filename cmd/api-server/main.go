package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/clinic-scheduling/internal/api"
	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/db"
	"github.com/hackgods/clinic-scheduling/internal/events"
	"github.com/hackgods/clinic-scheduling/internal/logger"
	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	zlog.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("version", version),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, db.WithMaxConns(cfg.PostgresMaxConns), db.WithApplicationName("clinic-api"))
	cancelPg()
	if err != nil {
		zlog.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	zlog.Info("connected to Postgres")

	if cfg.MigrateOnStart {
		applied, err := db.NewEmbeddedMigrator(pgPool, zlog).Up(rootCtx)
		if err != nil {
			zlog.Fatal("migration error", zap.Error(err))
		}
		zlog.Info("migrations up to date", zap.Int("applied", applied))
	}

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		zlog.Fatal("redis connection error", zap.Error(err))
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			zlog.Warn("error closing redis", zap.Error(err))
		}
	}()
	zlog.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsExchange, cfg.EventsConfirm, zlog)
		if err != nil {
			zlog.Fatal("rabbitmq connection error", zap.Error(err))
		}
		publisher = events.NewAsyncPublisher(amqpPub, cfg.EventsBuffer, zlog)
	} else {
		zlog.Info("RABBITMQ_URL not set, events are only written to event_logs")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			zlog.Warn("error closing event publisher", zap.Error(err))
		}
	}()

	repo := appointment.NewPgRepository(pgPool, zlog)
	locker := redisclient.NewRedisDoctorLocker(rdb, cfg.LockTTL, zlog)
	svc := appointment.NewService(repo, locker, cfg, zlog, appointment.WithPublisher(publisher))

	router := api.NewRouter(api.RouterConfig{
		Service:         svc,
		Health:          api.NewHealthHandler(pgPool, api.RedisPinger{Client: rdb}, cfg.Env, version),
		Logger:          zlog,
		Layouts:         cfg.Layouts,
		DefaultDuration: cfg.DefaultDurationMinutes,
		RateLimitRPS:    cfg.RateLimitRPS,
		CORSOrigins:     cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		zlog.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-rootCtx.Done():
	case err := <-serverErr:
		if err != nil {
			zlog.Error("http server error", zap.Error(err))
		}
	}

	zlog.Info("shutting down api-server", zap.Duration("timeout", cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
