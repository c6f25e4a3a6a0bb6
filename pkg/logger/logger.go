package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap to provide a simpler interface.
type Logger struct {
	*zap.SugaredLogger
}

// Config holds logger configuration.
type Config struct {
	Level      string `json:"level"`
	OutputPath string `json:"output_path"`
	Format     string `json:"format"` // "json" or "console"
}

// New creates a new logger instance.
func New(config *Config) (*Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(config.Level)); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}

	zapConfig := zap.Config{
		Level:            level,
		OutputPaths:      []string{config.OutputPath},
		ErrorOutputPaths: []string{config.OutputPath},
		Encoding:         config.Format,
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:   "msg",
			LevelKey:     "level",
			TimeKey:      "time",
			CallerKey:    "caller",
			LineEnding:   zapcore.DefaultLineEnding,
			EncodeLevel:  zapcore.LowercaseLevelEncoder,
			EncodeTime:   zapcore.ISO8601TimeEncoder,
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}

	l, err := zapConfig.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: l.Sugar()}, nil
}

// NewDefault creates a logger with console output at info level.
func NewDefault() *Logger {
	l, err := New(&Config{Level: "info", OutputPath: "stdout", Format: "console"})
	if err != nil {
		zl, _ := zap.NewProduction()
		return &Logger{SugaredLogger: zl.Sugar()}
	}
	return l
}

// NewNop discards all output; used in tests.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}
