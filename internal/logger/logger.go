package logger

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ModeDebug = "debug"

	defaultDir        = "logs"
	defaultFilename   = "pigeonpost.log"
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 7
	defaultMaxAgeDays = 30
)

// Options задаёт файл с ротацией. Пустой Dir — писать в stdout.
type Options struct {
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New: debug — консольный формат в stdout, иначе JSON (в файл, если задан Dir).
// Если файл открыть не удалось, пишем JSON в stdout.
func New(mode string, opts Options) *zap.Logger {
	debug := strings.EqualFold(strings.TrimSpace(mode), ModeDebug)
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	enc := encoderConfig()

	if debug {
		return build(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(os.Stdout), level)
	}

	if strings.TrimSpace(opts.Dir) == "" {
		return build(zapcore.NewJSONEncoder(enc), zapcore.AddSync(os.Stdout), level)
	}

	ws, err := fileWriteSyncer(opts)
	if err != nil {
		l := build(zapcore.NewJSONEncoder(enc), zapcore.AddSync(os.Stdout), level)
		l.Warn("log file unavailable, writing to stdout", zap.Error(err))
		return l
	}
	return build(zapcore.NewJSONEncoder(enc), ws, level)
}

// OrNop подставляет no-op логгер вместо nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

func encoderConfig() zapcore.EncoderConfig {
	c := zap.NewProductionEncoderConfig()
	c.TimeKey = "time"
	c.MessageKey = "message"
	c.EncodeTime = zapcore.ISO8601TimeEncoder
	c.EncodeDuration = zapcore.MillisDurationEncoder
	c.EncodeLevel = zapcore.LowercaseLevelEncoder
	c.EncodeCaller = zapcore.ShortCallerEncoder
	return c
}

func build(enc zapcore.Encoder, ws zapcore.WriteSyncer, level zap.AtomicLevel) *zap.Logger {
	return zap.New(zapcore.NewCore(enc, ws, level), zap.AddCaller())
}

func fileWriteSyncer(opts Options) (zapcore.WriteSyncer, error) {
	dir := strings.TrimSpace(opts.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create log dir")
	}
	name := strings.TrimSpace(opts.Filename)
	if name == "" {
		name = defaultFilename
	}
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open log file")
	}
	_ = f.Close()

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    positiveOr(opts.MaxSizeMB, defaultMaxSizeMB),
		MaxBackups: positiveOr(opts.MaxBackups, defaultMaxBackups),
		MaxAge:     positiveOr(opts.MaxAgeDays, defaultMaxAgeDays),
		Compress:   opts.Compress,
	}), nil
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
