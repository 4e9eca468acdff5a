package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/PigeonPost/config"
	"github.com/BearBump/PigeonPost/internal/api/httpapi"
	"github.com/BearBump/PigeonPost/internal/broker/kafka"
	"github.com/BearBump/PigeonPost/internal/broker/messages"
	"github.com/BearBump/PigeonPost/internal/cache"
	"github.com/BearBump/PigeonPost/internal/cache/rediscache"
	"github.com/BearBump/PigeonPost/internal/logger"
	"github.com/BearBump/PigeonPost/internal/services/auth"
	"github.com/BearBump/PigeonPost/internal/services/sweeper"
	"github.com/BearBump/PigeonPost/internal/services/trackings"
	"github.com/BearBump/PigeonPost/internal/storage/pgpigeon"
	"go.uber.org/zap"
)

type pigeonAPIApp struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger

	opts     apiOpts
	handler  http.Handler
	svc      *trackings.Service
	consumer kafkaConsumer
	jobs     []*sweeper.Sweeper

	closers []func()
}

func mustBootstrapPigeonAPI(args []string) *pigeonAPIApp {
	cfg, err := config.Load("pigeon-api", args)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}
	pp := cfg.PigeonPost

	log := logger.New(cfg.Log.Mode, logger.Options{
		Dir:        cfg.Log.Dir,
		Filename:   cfg.Log.Filename,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	app := &pigeonAPIApp{log: log}
	app.closers = append(app.closers, func() { _ = log.Sync() })

	httpAddr := pp.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	consumerGroup := pp.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "pigeon-api"
	}
	topic := cfg.Kafka.StatusChangedTopicName
	if topic == "" {
		topic = messages.TrackingStatusChangedTopic
	}
	cacheTTL := time.Duration(pp.RecordCacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	requestTimeout := time.Duration(pp.RequestTimeoutSeconds) * time.Second
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}
	sessionTTL := time.Duration(pp.SessionTTLHours) * time.Hour
	if sessionTTL <= 0 {
		sessionTTL = auth.DefaultSessionTTL
	}
	sweepInterval := time.Duration(pp.SessionSweepIntervalSeconds) * time.Second
	if sweepInterval <= 0 {
		sweepInterval = time.Hour
	}
	loginLimit := int64(pp.LoginRateLimitPerMinute)
	if loginLimit <= 0 {
		loginLimit = 10
	}
	adminUsername := pp.AdminUsername
	if adminUsername == "" {
		adminUsername = "admin"
	}
	adminHash := mustAdminPasswordHash(pp, log)

	st := mustOpenPostgresWithRetry(cfg.Database.ConnString(), 60*time.Second, log)
	app.closers = append(app.closers, st.Close)

	var (
		recordCache cache.BytesCache
		limiter     httpapi.RateLimiter
	)
	if cfg.Redis.Enabled() {
		rc := rediscache.NewClient(rediscache.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		app.closers = append(app.closers, func() { _ = rc.Close() })
		recordCache = rediscache.New(rc)
		limiter = rediscache.NewRateLimiter(rc, "rl:login")
	} else {
		log.Warn("redis is not configured: record cache and login throttling disabled")
	}

	svc := trackings.New(st, recordCache, cacheTTL).
		WithLogger(log).
		WithPublicBaseURL(pp.PublicBaseURL)

	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers())
		app.closers = append(app.closers, func() { _ = producer.Close() })
		svc.WithPublisher(producer, topic)

		consumer := kafka.NewConsumer(cfg.Kafka.Brokers(), topic, consumerGroup).WithLogger(log)
		app.closers = append(app.closers, func() { _ = consumer.Close() })
		app.consumer = consumer
	} else {
		log.Warn("kafka is not configured: status change events disabled")
	}

	authn := auth.New(st, adminUsername, adminHash, log).WithTTL(sessionTTL)
	sessionSweeper := newSessionSweeper(authn.SweepExpired, sweepInterval, log)

	api := httpapi.New(svc, authn, limiter, httpapi.Options{
		RequestTimeout:      requestTimeout,
		LoginLimitPerMinute: loginLimit,
		SwaggerPath:         pp.SwaggerPath,
	}, log)

	app.ctx, app.cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app.opts = apiOpts{
		httpAddr:      httpAddr,
		topic:         topic,
		consumerGroup: consumerGroup,
	}
	app.handler = api.Router()
	app.svc = svc
	app.jobs = []*sweeper.Sweeper{sessionSweeper}
	return app
}

// newSessionSweeper: первый проход сразу после старта, чтобы не ждать целый интервал.
func newSessionSweeper(job sweeper.Job, interval time.Duration, log *zap.Logger) *sweeper.Sweeper {
	sw := sweeper.New("session-sweeper", job, log).WithSettings(interval, 30*time.Second)
	sw.Trigger()
	return sw
}

// mustAdminPasswordHash: bcrypt-хэш из конфига, иначе хэшируем admin_password (режим разработки).
func mustAdminPasswordHash(pp config.PigeonPostConfig, log *zap.Logger) string {
	if pp.AdminPasswordHash != "" {
		return pp.AdminPasswordHash
	}
	if pp.AdminPassword == "" {
		panic("admin_password_hash (or admin_password) is required")
	}
	log.Warn("admin password is configured in plaintext, use admin_password_hash in production")
	hash, err := auth.HashPassword(pp.AdminPassword)
	if err != nil {
		panic(fmt.Sprintf("hash admin password: %v", err))
	}
	return hash
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration, log *zap.Logger) *pgpigeon.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgpigeon.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		log.Warn("postgres is not ready, retrying", zap.Error(err))
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *pigeonAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *pigeonAPIApp) Run() error {
	return runPigeonAPI(a.ctx, a.opts, a.handler, a.svc, a.consumer, a.jobs, a.log)
}
