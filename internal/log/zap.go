package log

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a sugared zap logger to Logger. It emits one JSON object
// per entry.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZap builds a JSON logger writing to w.
func NewZap(lvl Level, w io.Writer) *ZapLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(zapLevel(lvl)),
	)
	return &ZapLogger{sugar: zap.New(core).Sugar()}
}

func zapLevel(l Level) zapcore.Level {
	switch l {
	case ErrorLevel:
		return zapcore.ErrorLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case DebugLevel:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func (z *ZapLogger) Info(msg string, kv ...interface{})  { z.sugar.Infow(msg, kv...) }
func (z *ZapLogger) Warn(msg string, kv ...interface{})  { z.sugar.Warnw(msg, kv...) }
func (z *ZapLogger) Error(msg string, kv ...interface{}) { z.sugar.Errorw(msg, kv...) }
func (z *ZapLogger) Debug(msg string, kv ...interface{}) { z.sugar.Debugw(msg, kv...) }

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error { return z.sugar.Sync() }
