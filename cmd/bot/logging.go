package main

import (
	"fmt"

	"github.com/xaenox/assistant-bot/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	return zc.Build()
}
