// Package logging builds the process's zap logger. Unlike the teacher's
// package-global Log, the *zap.SugaredLogger here is constructed once at
// startup and threaded explicitly through every component that needs it,
// so nothing in internal/protocol, internal/robot, or internal/registry
// carries an implicit dependency on a global.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the rotating file sink and minimum level.
type Options struct {
	FilePath string
	Level    string // debug, info, warn, error
	MaxSizeMB int
	MaxBackups int
	MaxAgeDays int
}

// New builds a *zap.SugaredLogger writing JSON lines to a lumberjack
// rotating file sink. The returned sync func must be called before the
// process exits so buffered entries are flushed.
func New(opts Options) (*zap.SugaredLogger, func(), error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	maxSize := opts.MaxSizeMB
	if maxSize == 0 {
		maxSize = 10
	}
	maxBackups := opts.MaxBackups
	if maxBackups == 0 {
		maxBackups = 3
	}
	maxAge := opts.MaxAgeDays
	if maxAge == 0 {
		maxAge = 7
	}

	lj := &lumberjack.Logger{
		Filename:   opts.FilePath,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
		Compress:   false,
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(lj), level)
	logger := zap.New(core, zap.AddCaller())
	sugar := logger.Sugar()

	sync := func() { _ = logger.Sync() }
	return sugar, sync, nil
}

func parseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("parse log level %q: %w", level, err)
	}
	return l, nil
}
