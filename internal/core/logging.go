package core

import "go.uber.org/zap"

// NewLogger builds the process-wide structured logger. Only the demo CLI
// logs through it; the internal services take no logger and return
// internal errors (CatalogInconsistency, LedgerCorruption) to callers
// without logging them.
func NewLogger(development bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// NopLogger returns a logger that discards everything, used by tests and
// by components that were not handed a logger explicitly.
func NopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
