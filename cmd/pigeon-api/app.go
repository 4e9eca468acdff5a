package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/BearBump/PigeonPost/internal/broker/messages"
	"github.com/BearBump/PigeonPost/internal/logger"
	"github.com/BearBump/PigeonPost/internal/services/sweeper"
	"go.uber.org/zap"
)

type apiOpts struct {
	httpAddr string

	topic         string
	consumerGroup string

	onListen func(httpAddr string)
}

type kafkaConsumer interface {
	ConsumeStatusChanges(ctx context.Context, handler func(messages.TrackingStatusChanged) error) error
}

type cacheInvalidator interface {
	InvalidateCached(ctx context.Context, trackingNumber string)
}

// runPigeonAPI держит HTTP-сервер, consumer событий (если есть) и фоновые задачи до отмены ctx.
func runPigeonAPI(ctx context.Context, opts apiOpts, handler http.Handler, inv cacheInvalidator, consumer kafkaConsumer, jobs []*sweeper.Sweeper, l *zap.Logger) error {
	log := logger.OrNop(l)

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	for _, job := range jobs {
		go func(job *sweeper.Sweeper) {
			_ = job.Run(ctx)
		}(job)
	}

	if consumer != nil {
		go func() {
			log.Info("kafka consumer started", zap.String("topic", opts.topic), zap.String("group", opts.consumerGroup))
			if err := consumer.ConsumeStatusChanges(ctx, statusChangedHandler(ctx, inv, log)); err != nil && ctx.Err() == nil {
				log.Error("kafka consumer stopped", zap.Error(err))
			}
		}()
	}

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runHTTPServer(ctx, lis, handler, log)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-httpErr:
		return err
	}
}

// statusChangedHandler сбрасывает кэш записи, изменённой другим процессом.
func statusChangedHandler(ctx context.Context, inv cacheInvalidator, log *zap.Logger) func(messages.TrackingStatusChanged) error {
	return func(m messages.TrackingStatusChanged) error {
		inv.InvalidateCached(ctx, m.TrackingNumber)
		log.Debug("record cache invalidated",
			zap.String("tracking_number", m.TrackingNumber),
			zap.String("new_status", m.NewStatus),
			zap.Bool("deleted", m.Deleted),
		)
		return nil
	}
}

func runHTTPServer(ctx context.Context, lis net.Listener, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("HTTP server listening", zap.String("addr", lis.Addr().String()))
	return srv.Serve(lis)
}
