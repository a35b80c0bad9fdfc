package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
)

type KMSLogger struct {
	*slog.Logger
}

var kmsLogger *KMSLogger

// enableStack controls whether KMSLogger.Error attaches a formatted
// stack trace to the log record.
var enableStack bool

func InitLogger(logLevel, format, output string, processStack bool) error {
	var writer io.Writer
	switch output {
	case "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		return errors.Newf("invalid log output: %s", output)
	}
	return InitLoggerWithWriter(logLevel, format, writer, processStack)
}

func InitLoggerWithWriter(logLevel, format string, writer io.Writer, processStack bool) error {
	var slogLevel slog.Level
	if err := slogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return errors.Wrapf(err, "invalid log level: %s", logLevel)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     slogLevel,
		AddSource: true,
	}

	var slogLogger *slog.Logger
	switch format {
	case "text":
		slogLogger = slog.New(slog.NewTextHandler(writer, handlerOpts))
	case "json":
		slogLogger = slog.New(slog.NewJSONHandler(writer, handlerOpts))
	default:
		return errors.Newf("invalid log format: %s", format)
	}

	enableStack = processStack
	kmsLogger = &KMSLogger{slogLogger}
	return nil
}

func GetLogger() *KMSLogger {
	return kmsLogger
}

// log emits a record whose source location points at the caller of the
// exported wrapper, `offset` frames above this function's caller.
func (l *KMSLogger) log(logLevel slog.Level, offset int, msg string, otherArgs ...any) {
	ctx := context.TODO()
	if !l.Logger.Enabled(ctx, logLevel) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3+offset, pcs[:])
	r := slog.NewRecord(time.Now(), logLevel, msg, pcs[0])
	r.Add(otherArgs...)
	_ = l.Logger.Handler().Handle(ctx, r)
}

func (l *KMSLogger) Debug(msg string, otherArgs ...any) {
	l.log(slog.LevelDebug, 0, msg, otherArgs...)
}

func (l *KMSLogger) Info(msg string, otherArgs ...any) {
	l.log(slog.LevelInfo, 0, msg, otherArgs...)
}

func (l *KMSLogger) Warn(msg string, otherArgs ...any) {
	l.log(slog.LevelWarn, 0, msg, otherArgs...)
}

func (l *KMSLogger) Error(msg string, err error, otherArgs ...any) {
	if err == nil {
		l.log(slog.LevelError, 0, msg, otherArgs...)
		return
	}
	if enableStack {
		err = errors.WithStackDepth(err, 1)
		otherArgs = append(otherArgs, "error", err.Error(), "stack", fmt.Sprintf("%+v", err))
	} else {
		otherArgs = append(otherArgs, "error", err.Error())
	}
	l.log(slog.LevelError, 0, msg, otherArgs...)
}

func (l *KMSLogger) Fatal(msg string, err error, otherArgs ...any) {
	l.Error(msg, err, otherArgs...)
	os.Exit(1)
}

func (l *KMSLogger) TimeTrack(start time.Time, name string, otherArgs ...any) {
	args := append([]any{"name", name, "elapsed", time.Since(start).Nanoseconds()}, otherArgs...)
	l.log(slog.LevelInfo, 0, "time track", args...)
}

func (l *KMSLogger) WithModule(moduleName string) *KMSLogger {
	return &KMSLogger{
		l.With("module", moduleName),
	}
}

func (l *KMSLogger) WithTarget(label, addr string, port uint16) *KMSLogger {
	return &KMSLogger{
		l.With(
			"validator", label,
			"addr", addr,
			"port", port,
		),
	}
}

func (l *KMSLogger) WithSigner(providerName, keyID string) *KMSLogger {
	return &KMSLogger{
		l.With(
			"provider", providerName,
			"key_id", keyID,
		),
	}
}
