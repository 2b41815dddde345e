package utils

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SetupLogger builds the process logger. Unknown levels fall back to INFO.
func SetupLogger(level string) *zap.SugaredLogger {
	parsedLevel, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsedLevel = zapcore.InfoLevel
	}

	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(parsedLevel)
	logger := zap.Must(config.Build())
	return logger.Sugar()
}
