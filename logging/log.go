package logging

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxFileSize = 500
	defaultMaxAge      = 28
)

type LoggerKey struct{}

func NewContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey{}, logger)
}

func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey{}).(*zap.Logger); ok {
		return logger
	}
	return New(zap.DebugLevel, "", false)
}

// FileRotation controls rotation of the log file.
// Zero values fall back to the defaults.
type FileRotation struct {
	MaxSizeMB  int
	MaxBackups int
}

func New(level zapcore.LevelEnabler, logFileName string, json bool, rotation ...FileRotation) *zap.Logger {
	var encoder zapcore.Encoder
	if json {
		encoder = zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	consoleSyncer := zapcore.Lock(os.Stdout)
	var cores []zapcore.Core
	cores = append(cores, zapcore.NewCore(encoder, consoleSyncer, level))

	if logFileName != "" {
		fileLogger := &lumberjack.Logger{
			Filename: logFileName,
			MaxSize:  defaultMaxFileSize,
			MaxAge:   defaultMaxAge,
			Compress: true,
		}
		if len(rotation) > 0 {
			if rotation[0].MaxSizeMB > 0 {
				fileLogger.MaxSize = rotation[0].MaxSizeMB
			}
			fileLogger.MaxBackups = rotation[0].MaxBackups
		}
		fs := zapcore.AddSync(fileLogger)
		cores = append(cores, zapcore.NewCore(encoder, fs, zap.DebugLevel))
	}

	return zap.New(zapcore.NewTee(cores...))
}
