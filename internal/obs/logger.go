package obs

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogConfig struct {
	Level  string
	Pretty bool
	App    string
	Env    string
	Ver    string
}

// NewLogger builds the process-wide zap logger. Unknown levels fall back
// to info rather than failing startup.
func NewLogger(c LogConfig) (*zap.Logger, error) {
	base := zap.NewProductionConfig()
	if c.Pretty {
		base = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	base.Level = zap.NewAtomicLevelAt(level)
	base.EncoderConfig.TimeKey = "ts"
	base.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return base.Build(zap.Fields(
		zap.String("service", c.App),
		zap.String("env", c.Env),
		zap.String("version", c.Ver),
	))
}

// WithTrace annotates log entries with the current trace and span IDs so
// logs and traces can be joined in the backend.
func WithTrace(ctx context.Context, log *zap.Logger) *zap.Logger {
	if log == nil {
		return nil
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return log
	}
	return log.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
