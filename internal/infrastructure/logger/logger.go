package logger

import (
	"fmt"
	"strings"

	"cabinet-suite-core/internal/app/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger construit le logger zap selon l'environnement et LOG_LEVEL
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	var zapConfig zap.Config
	if cfg.IsDevelopment() {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.TimeKey = "horodatage"
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapConfig.Build(zap.Fields(zap.String("env", cfg.Environment)))
	if err != nil {
		return nil, fmt.Errorf("construction logger: %w", err)
	}
	return logger, nil
}

// ParseLevel convertit LOG_LEVEL (debug, info, warn, error)
func ParseLevel(value string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("LOG_LEVEL inconnu: %s", value)
	}
}
