package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	selgoErrors "github.com/selgo-ml/selgo/pkg/errors"
)

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	zl zerolog.Logger
}

// zerologProvider creates zerolog-backed loggers sharing one output and
// level.
type zerologProvider struct {
	mu    sync.Mutex
	out   io.Writer
	level zerolog.Level
}

// NewZerologProvider creates a LoggerProvider backed by zerolog, writing to
// stderr at the given minimum level.
func NewZerologProvider(level Level) LoggerProvider {
	return NewZerologProviderWithOutput(level, os.Stderr)
}

// NewZerologProviderWithOutput creates a zerolog-backed LoggerProvider
// writing to the given writer. Useful for capturing output in tests.
func NewZerologProviderWithOutput(level Level, out io.Writer) LoggerProvider {
	return &zerologProvider{
		out:   out,
		level: toZerologLevel(level),
	}
}

func (p *zerologProvider) GetLogger() Logger {
	p.mu.Lock()
	defer p.mu.Unlock()
	zl := zerolog.New(p.out).Level(p.level).With().Timestamp().Logger()
	return &zerologLogger{zl: zl}
}

func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	p.mu.Lock()
	defer p.mu.Unlock()
	zl := zerolog.New(p.out).Level(p.level).With().Timestamp().Str(ComponentKey, name).Logger()
	return &zerologLogger{zl: zl}
}

func (p *zerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = toZerologLevel(level)
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func (l *zerologLogger) Debug(msg string, fields ...any) {
	l.emit(l.zl.Debug(), msg, fields)
}

func (l *zerologLogger) Info(msg string, fields ...any) {
	l.emit(l.zl.Info(), msg, fields)
}

func (l *zerologLogger) Warn(msg string, fields ...any) {
	l.emit(l.zl.Warn(), msg, fields)
}

func (l *zerologLogger) Error(msg string, fields ...any) {
	e := l.zl.Error()
	// An error in the first position is attached as the canonical error
	// field rather than a generic key-value pair.
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			e = e.Err(err)
			fields = fields[1:]
		}
	}
	l.emit(e, msg, fields)
}

func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", fields[i])
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= l.zl.GetLevel()
}

// emit attaches alternating key-value fields to the event and sends it.
func (l *zerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", fields[i])
		}
		switch v := fields[i+1].(type) {
		case string:
			e = e.Str(key, v)
		case int:
			e = e.Int(key, v)
		case int64:
			e = e.Int64(key, v)
		case float64:
			e = e.Float64(key, v)
		case bool:
			e = e.Bool(key, v)
		case error:
			e = e.AnErr(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	e.Msg(msg)
}

// InstallWarningSink routes pkg/errors warnings through the given logger so
// warnings such as ConvergenceWarning appear as structured records.
func InstallWarningSink(logger Logger) {
	selgoErrors.SetZerologWarnFunc(func(warning error) {
		logger.Warn("library warning", "warning", warning.Error())
	})
}
