// Package logging constructs the process-wide structured logger every
// other package derives its own component logger from via With(...),
// matching the teacher's zap-based logging convention.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production zap.Logger with sampling enabled, so a hot
// serialize/send path logging at Warn or above doesn't flood output under
// sustained failure.
func New(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewSamplerWithOptions(core, 1_000_000_000, 100, 100)
	}))
}

// Component derives a child logger tagged with the given pipeline/flusher
// identity fields, matching the convention of tagging every log line with
// pipeline identity.
func Component(base *zap.Logger, component, configName string) *zap.Logger {
	return base.With(zap.String("component", component), zap.String("config_name", configName))
}
