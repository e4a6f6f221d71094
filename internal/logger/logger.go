// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// venuedesk writes lifecycle, intake, and error events to one JSON log per
// day under `<root>/logs/YYYY-MM-DD.log`.  When running in an interactive
// TTY the same events are teed, colourised, to stdout.  Rotation,
// compression, and retention are handled by Lumberjack.
//
// Usage
// -----
//
//	log, err := logger.New(cfg.Paths.Root, logger.RunningInTTY())
//	if err != nil { … }
//	log.Infow("submission stored", "id", id, "venue", venueID)
//
// Request-scoped loggers travel on the context via WithContext and
// FromContext; FromContext falls back to the global logger.
package logger

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a *zap.SugaredLogger that writes JSON to logs/YYYY-MM-DD.log.
// When tee is true a console core is attached as well.  The logger is
// installed as the process-wide default via zap.ReplaceGlobals.
func New(rootDir string, tee bool) (*zap.SugaredLogger, error) {
	logDir := filepath.Join(rootDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	fileSink := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, time.Now().Format("2006-01-02")+".log"),
		MaxSize:    50, // MB
		MaxBackups: 7,
		MaxAge:     14, // days
		Compress:   true,
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(fileSink), zap.InfoLevel),
	}
	if tee {
		consoleCfg := encCfg
		consoleCfg.EncodeLevel = zapcore.LowercaseColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.AddSync(os.Stdout),
			zap.InfoLevel,
		))
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.ErrorOutput(zapcore.AddSync(fileSink)),
	).Sugar()

	zap.ReplaceGlobals(z.Desugar())
	z.Infow("logger online", "tee", tee)
	return z, nil
}

// RunningInTTY reports whether stdout is a character device.
func RunningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

/*──────────────────────────── context helpers ─────────────────────────────*/

type ctxKey struct{}

// WithContext returns a copy of ctx carrying l.
func WithContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored by WithContext or zap.S().
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.SugaredLogger); ok && l != nil {
		return l
	}
	return zap.S()
}
