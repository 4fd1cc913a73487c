package eventide

import (
	"strings"

	"go.uber.org/zap"
)

// NewLogger builds a zap logger for the given mode. "prod" and "production"
// select JSON output at info level; anything else is the development console
// logger at debug level
func NewLogger(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
