package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yungbote/studyhub-backend/internal/platform/envutil"
)

// Logger wraps zap's SugaredLogger with key/value calls. Values pass through the
// process redactor before encoding.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a logger for mode:
//
//	development  console, debug
//	production   json, info
//	test         console, warn
//
// LOG_LEVEL overrides the level of any mode.
func New(mode string) (*Logger, error) {
	cfg, err := modeConfig(mode)
	if err != nil {
		return nil, err
	}
	zl, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &Logger{SugaredLogger: zl.Sugar()}, nil
}

func modeConfig(mode string) (zap.Config, error) {
	var (
		cfg   zap.Config
		level zapcore.Level
	)
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg, level = zap.NewProductionConfig(), zapcore.InfoLevel
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "test":
		cfg, level = zap.NewDevelopmentConfig(), zapcore.WarnLevel
	default:
		cfg, level = zap.NewDevelopmentConfig(), zapcore.DebugLevel
	}
	if raw := envutil.String("LOG_LEVEL", ""); raw != "" {
		parsed, err := zapcore.ParseLevel(raw)
		if err != nil {
			return zap.Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		level = parsed
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg, nil
}

func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, kv ...any) { l.SugaredLogger.Debugw(msg, scrub(kv)...) }
func (l *Logger) Info(msg string, kv ...any)  { l.SugaredLogger.Infow(msg, scrub(kv)...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.SugaredLogger.Warnw(msg, scrub(kv)...) }
func (l *Logger) Error(msg string, kv ...any) { l.SugaredLogger.Errorw(msg, scrub(kv)...) }
func (l *Logger) Fatal(msg string, kv ...any) { l.SugaredLogger.Fatalw(msg, scrub(kv)...) }

func (l *Logger) With(kv ...any) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(scrub(kv)...)}
}
