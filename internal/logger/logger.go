// Package logger is a thin printf-style wrapper around zap with optional
// file rotation. Engines log through the package default logger.
package logger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is a log severity.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// Logger wraps a zap.Logger.
type Logger struct {
	zapLogger *zap.Logger
}

// RotationConfig controls the rotating log file.
type RotationConfig struct {
	Filename   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

var defaultLogger = mustNew(WARN)

func mustNew(level Level) *Logger {
	l, err := New(level)
	if err != nil {
		panic(fmt.Sprintf("init logger: %v", err))
	}
	return l
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05"))
	}
	cfg.CallerKey = "caller"
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.LevelKey = "level"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.MessageKey = "message"
	return cfg
}

// New creates a logger writing console-encoded lines to stderr.
func New(level Level) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	cfg.Encoding = "console"
	cfg.EncoderConfig = encoderConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if level == DEBUG {
		cfg.Development = true
	}

	zl, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, err
	}
	return &Logger{zapLogger: zl}, nil
}

// NewWithRotation creates a JSON logger writing to a lumberjack-rotated file.
func NewWithRotation(level Level, rc RotationConfig) *Logger {
	if rc.MaxSize == 0 {
		rc.MaxSize = 100
	}
	if rc.MaxBackups == 0 {
		rc.MaxBackups = 3
	}
	if rc.MaxAge == 0 {
		rc.MaxAge = 28
	}

	sink := &lumberjack.Logger{
		Filename:   rc.Filename,
		MaxSize:    rc.MaxSize,
		MaxBackups: rc.MaxBackups,
		MaxAge:     rc.MaxAge,
		Compress:   rc.Compress,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(sink),
		zap.NewAtomicLevelAt(zapLevel(level)),
	)
	return &Logger{zapLogger: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zapLogger: zap.NewNop()}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.zapLogger.Debug(fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.zapLogger.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.zapLogger.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.zapLogger.Error(fmt.Sprintf(format, args...))
}

// With returns a child logger carrying the given fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zapLogger: l.zapLogger.With(fields...)}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.zapLogger.Sync()
}

// SetDefault replaces the package default logger.
func SetDefault(l *Logger) {
	if defaultLogger != nil {
		defaultLogger.Sync()
	}
	defaultLogger = l
}

// Default returns the package default logger.
func Default() *Logger {
	return defaultLogger
}

func Debug(format string, args ...interface{}) { defaultLogger.Debug(format, args...) }
func Info(format string, args ...interface{})  { defaultLogger.Info(format, args...) }
func Warn(format string, args ...interface{})  { defaultLogger.Warn(format, args...) }
func Error(format string, args ...interface{}) { defaultLogger.Error(format, args...) }
func Sync()                                    { defaultLogger.Sync() }

// ParseLevel parses a level name, defaulting to INFO.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

func zapLevel(level Level) zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
