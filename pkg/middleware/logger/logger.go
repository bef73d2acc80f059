package logger

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ServiceEnv struct {
	Platform string
	Service  string
	Env      string
}

type LogConfig struct {
	Path       string
	LogLevel   string
	MaxSizeMB  int
	MaxBackups int
	ServiceEnv ServiceEnv
}

var (
	mu      sync.RWMutex
	log     = otelzap.New(zap.NewNop())
	rotator *lumberjack.Logger
)

// Init builds the process logger: json lines to a rotated file plus console output.
func Init(conf *LogConfig) {
	level, err := zapcore.ParseLevel(conf.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encConf := zap.NewProductionEncoderConfig()
	encConf.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encConf), zapcore.Lock(os.Stdout), level),
	}

	var w *lumberjack.Logger
	if conf.Path != "" {
		w = &lumberjack.Logger{
			Filename:   conf.Path,
			MaxSize:    orDefault(conf.MaxSizeMB, 100),
			MaxBackups: orDefault(conf.MaxBackups, 5),
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encConf), zapcore.AddSync(w), level))
	}

	z := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.Fields(
			zap.String("platform", conf.ServiceEnv.Platform),
			zap.String("service", conf.ServiceEnv.Service),
			zap.String("env", conf.ServiceEnv.Env),
		))

	mu.Lock()
	defer mu.Unlock()
	log = otelzap.New(z, otelzap.WithMinLevel(level))
	rotator = w
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	_ = log.Sync()
	if rotator != nil {
		_ = rotator.Close()
		rotator = nil
	}
}

func current() *otelzap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func Debugf(ctx context.Context, format string, args ...any) {
	current().Ctx(ctx).Debug(fmt.Sprintf(format, args...))
}

func Infof(ctx context.Context, format string, args ...any) {
	current().Ctx(ctx).Info(fmt.Sprintf(format, args...))
}

func Warnf(ctx context.Context, format string, args ...any) {
	current().Ctx(ctx).Warn(fmt.Sprintf(format, args...))
}

func Errorf(ctx context.Context, format string, args ...any) {
	current().Ctx(ctx).Error(fmt.Sprintf(format, args...))
}

func Fatalf(ctx context.Context, format string, args ...any) {
	current().Ctx(ctx).Fatal(fmt.Sprintf(format, args...))
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
