package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Logger owns the process logger. Console output is for humans, JSON for log shippers.
type Logger struct {
	mx  sync.Mutex
	out io.Writer
	lg  zerolog.Logger
}

func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout)
}

// NewLoggerTo builds a console logger writing to out.
func NewLoggerTo(out io.Writer) *Logger {
	l := &Logger{
		mx:  sync.Mutex{},
		out: out,
		lg:  zerolog.Nop(),
	}

	return l.SetFormat(FormatConsole)
}

// SetFormat rebuilds the logger for format. Unknown formats mean console.
// Loggers handed out by Get before the call keep the old format.
func (l *Logger) SetFormat(format string) *Logger {
	l.mx.Lock()
	defer l.mx.Unlock()

	var output io.Writer = l.out
	if format != FormatJSON {
		//nolint:exhaustruct
		output = zerolog.ConsoleWriter{
			Out:        l.out,
			TimeFormat: time.RFC3339,
		}
	}

	l.lg = zerolog.New(output).With().Timestamp().Logger()

	return l
}

func (l *Logger) Get() *zerolog.Logger {
	l.mx.Lock()
	defer l.mx.Unlock()

	lg := l.lg

	return &lg
}

// SetLogLevel sets the global log level for all loggers.
func (l *Logger) SetLogLevel(level zerolog.Level) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(level)

	return l
}

// SetLogLevelName is SetLogLevel for a textual level; unknown names fall back to info.
func (l *Logger) SetLogLevelName(name string) *Logger {
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return l.SetLogLevel(level)
}

// GetWithTrace tags the logger with the trace and span of ctx, if any.
func GetWithTrace(ctx context.Context, logger *zerolog.Logger) *zerolog.Logger {
	spanContext := trace.SpanContextFromContext(ctx)
	if !spanContext.IsValid() {
		return logger
	}

	updated := logger.With().
		Str("traceID", spanContext.TraceID().String()).
		Str("spanID", spanContext.SpanID().String()).
		Logger()

	return &updated
}
