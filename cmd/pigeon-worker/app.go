package main

import (
	"context"
	"time"

	"github.com/BearBump/PigeonPost/config"
	"github.com/BearBump/PigeonPost/internal/broker/kafka"
	"github.com/BearBump/PigeonPost/internal/broker/messages"
	"github.com/BearBump/PigeonPost/internal/cache"
	"github.com/BearBump/PigeonPost/internal/cache/rediscache"
	"github.com/BearBump/PigeonPost/internal/logger"
	"github.com/BearBump/PigeonPost/internal/services/sweeper"
	"github.com/BearBump/PigeonPost/internal/services/trackings"
	"github.com/BearBump/PigeonPost/internal/storage/pgpigeon"
	"go.uber.org/zap"
)

type workerFactories struct {
	newStorage  func(cfg *config.Config) (repo trackings.Repository, closeFn func(), err error)
	newProducer func(cfg *config.Config) (p trackings.Publisher, closeFn func())
	newCache    func(cfg *config.Config) (c cache.BytesCache, closeFn func())
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newStorage: func(cfg *config.Config) (trackings.Repository, func(), error) {
			st, err := pgpigeon.New(cfg.Database.ConnString())
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newProducer: func(cfg *config.Config) (trackings.Publisher, func()) {
			if !cfg.Kafka.Enabled() {
				return nil, nil
			}
			p := kafka.NewProducer(cfg.Kafka.Brokers())
			return p, func() { _ = p.Close() }
		},
		newCache: func(cfg *config.Config) (cache.BytesCache, func()) {
			if !cfg.Redis.Enabled() {
				return nil, nil
			}
			rc := rediscache.NewClient(rediscache.Options{
				Addr:     cfg.Redis.Addr(),
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			return rediscache.New(rc), func() { _ = rc.Close() }
		},
	}
}

type workerOpts struct {
	interval  time.Duration
	batchSize int
	topic     string
	cacheTTL  time.Duration
}

func workerOptsFromConfig(cfg *config.Config) workerOpts {
	o := workerOpts{
		interval:  time.Duration(cfg.PigeonPost.WorkerRefreshIntervalSeconds) * time.Second,
		batchSize: cfg.PigeonPost.WorkerBatchSize,
		topic:     cfg.Kafka.StatusChangedTopicName,
		cacheTTL:  time.Duration(cfg.PigeonPost.RecordCacheTTLSeconds) * time.Second,
	}
	if o.interval <= 0 {
		o.interval = 60 * time.Second
	}
	if o.batchSize <= 0 {
		o.batchSize = 500
	}
	if o.topic == "" {
		o.topic = messages.TrackingStatusChangedTopic
	}
	if o.cacheTTL <= 0 {
		o.cacheTTL = 10 * time.Minute
	}
	return o
}

// newStatusRefresher собирает фоновую задачу: пересчёт и сохранение стадии недоставленных записей.
func newStatusRefresher(cfg *config.Config, f workerFactories, l *zap.Logger) (*sweeper.Sweeper, func(), error) {
	o := workerOptsFromConfig(cfg)

	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	repo, closeFn, err := f.newStorage(cfg)
	if err != nil {
		return nil, nil, err
	}
	if closeFn != nil {
		closers = append(closers, closeFn)
	}

	var c cache.BytesCache
	if f.newCache != nil {
		var closeCache func()
		c, closeCache = f.newCache(cfg)
		if closeCache != nil {
			closers = append(closers, closeCache)
		}
	}

	svc := trackings.New(repo, c, o.cacheTTL).WithLogger(l)
	if f.newProducer != nil {
		p, closeProducer := f.newProducer(cfg)
		if closeProducer != nil {
			closers = append(closers, closeProducer)
		}
		if p != nil {
			svc.WithPublisher(p, o.topic)
		}
	}

	job := sweeper.New("status-refresher", func(ctx context.Context) (int64, error) {
		return svc.RefreshUndelivered(ctx, o.batchSize)
	}, l).WithSettings(o.interval, o.interval)

	return job, closeAll, nil
}

// RunPigeonWorker крутит пересчёт стадий и служебный HTTP-сервер до отмены ctx.
func RunPigeonWorker(ctx context.Context, cfg *config.Config, f workerFactories, l *zap.Logger, onListen func(httpAddr string)) error {
	log := logger.OrNop(l)

	job, closeFn, err := newStatusRefresher(cfg, f, log)
	if err != nil {
		return err
	}
	defer closeFn()

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runWorkerHTTPServer(ctx, workerHTTPOpts{
			httpAddr:    cfg.PigeonPost.WorkerHTTPAddr,
			swaggerPath: cfg.PigeonPost.WorkerSwaggerPath,
			onListen:    onListen,
			job:         job,
			cfg:         cfg,
		})
	}()

	// первый проход сразу после старта, дальше по тикеру
	job.Trigger()
	runErr := make(chan error, 1)
	go func() {
		runErr <- job.Run(ctx)
	}()

	select {
	case err := <-runErr:
		return err
	case err := <-httpErr:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error("worker http server stopped", zap.Error(err))
		return err
	}
}
