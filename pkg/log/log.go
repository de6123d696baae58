package log

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger used across sensorlink.
// Arguments after the message are alternating keys and values.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(err error, msg string, keysAndValues ...any)

	// WithName appends a name segment to the logger name.
	WithName(name string) Logger

	// WithValues returns a logger that adds keysAndValues to every entry.
	WithValues(keysAndValues ...any) Logger

	// Logr exposes the same sink as a logr.Logger for libraries
	// that log through logr (klog, among others).
	Logr() logr.Logger
}

var _ Logger = (*zapLogger)(nil)

type zapLogger struct {
	core *zap.Logger
}

var (
	once sync.Once

	// level is shared by the global logger so it can be changed at runtime.
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	std Logger = NewNopLogger()
)

// Init builds the global logger from opts. Only the first call has an effect;
// use SetLevel to change the verbosity afterwards.
func Init(opts *Options) {
	once.Do(func() {
		if opts == nil {
			opts = NewOptions()
		}
		if err := SetLevel(opts.Level); err != nil {
			level.SetLevel(zapcore.InfoLevel)
		}
		std = newLogger(opts, level)
	})
}

// SetLevel changes the minimum level of the global logger.
func SetLevel(text string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(text)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", text, err)
	}
	level.SetLevel(l)
	return nil
}

// Level returns the current minimum level of the global logger.
func Level() string {
	return level.Level().String()
}

// NewLogger creates a standalone Logger with its own level.
func NewLogger(opts *Options) Logger {
	if opts == nil {
		opts = NewOptions()
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(opts.Level)); err != nil {
		l = zapcore.InfoLevel
	}
	return newLogger(opts, zap.NewAtomicLevelAt(l))
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return &zapLogger{core: zap.NewNop()}
}

func newLogger(opts *Options, lvl zap.AtomicLevel) Logger {
	outputs := opts.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	cfg := &zap.Config{
		DisableCaller:    opts.DisableCaller,
		Level:            lvl,
		Encoding:         opts.Format,
		EncoderConfig:    encoderConfig(opts),
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}

	core, err := cfg.Build(zap.AddCallerSkip(opts.CallerSkip), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		panic(fmt.Sprintf("failed to build zap logger: %v", err))
	}
	if opts.Name != "" {
		core = core.Named(opts.Name)
	}
	return &zapLogger{core: core}
}

func encoderConfig(opts *Options) zapcore.EncoderConfig {
	enc := zapcore.EncoderConfig{
		MessageKey:    "message",
		LevelKey:      "level",
		TimeKey:       "timestamp",
		NameKey:       "logger",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
		// Durations in milliseconds; keep-alive and timeout knobs read naturally.
		EncodeDuration: func(d time.Duration, pae zapcore.PrimitiveArrayEncoder) {
			pae.AppendFloat64(float64(d) / float64(time.Millisecond))
		},
	}
	if opts.Format == "console" && opts.EnableColor {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return enc
}

func Debug(msg string, keysAndValues ...any)            { std.Debug(msg, keysAndValues...) }
func Info(msg string, keysAndValues ...any)             { std.Info(msg, keysAndValues...) }
func Warn(msg string, keysAndValues ...any)             { std.Warn(msg, keysAndValues...) }
func Error(err error, msg string, keysAndValues ...any) { std.Error(err, msg, keysAndValues...) }
func WithName(name string) Logger                       { return std.WithName(name) }
func WithValues(keysAndValues ...any) Logger            { return std.WithValues(keysAndValues...) }
func Logr() logr.Logger                                 { return std.Logr() }

// Std returns the global logger.
func Std() Logger {
	return std
}

func (z *zapLogger) Debug(msg string, keysAndValues ...any) {
	z.core.Debug(msg, toFields(keysAndValues...)...)
}

func (z *zapLogger) Info(msg string, keysAndValues ...any) {
	z.core.Info(msg, toFields(keysAndValues...)...)
}

func (z *zapLogger) Warn(msg string, keysAndValues ...any) {
	z.core.Warn(msg, toFields(keysAndValues...)...)
}

func (z *zapLogger) Error(err error, msg string, keysAndValues ...any) {
	fields := toFields(keysAndValues...)
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	z.core.Error(msg, fields...)
}

func (z *zapLogger) WithName(name string) Logger {
	return &zapLogger{core: z.core.Named(name)}
}

func (z *zapLogger) WithValues(keysAndValues ...any) Logger {
	return &zapLogger{core: z.core.With(toFields(keysAndValues...)...)}
}

func (z *zapLogger) Logr() logr.Logger {
	return zapr.NewLogger(z.core)
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying l.
func NewContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger stored in ctx, or the global logger.
func FromContext(ctx context.Context) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(Logger); ok {
			return l
		}
	}
	return std
}
