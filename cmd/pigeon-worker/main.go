package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/BearBump/PigeonPost/config"
	"github.com/BearBump/PigeonPost/internal/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("pigeon-worker", os.Args[1:])
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	log := logger.New(cfg.Log.Mode, logger.Options{
		Dir:        cfg.Log.Dir,
		Filename:   cfg.Log.Filename,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = RunPigeonWorker(ctx, cfg, defaultWorkerFactories(), log, func(addr string) {
		log.Info("worker HTTP server listening", zap.String("addr", addr))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("worker stopped", zap.Error(err))
		cancel()
		_ = log.Sync()
		os.Exit(1)
	}
}
