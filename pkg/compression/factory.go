package compression

import "go.uber.org/zap"

// Factory resolves a configured compression type name to a Compressor,
// falling back to a configured default (with a warning) on an unknown
// name, mirroring CompressorFactory::Create's WARN+DEFAULT fallback.
type Factory struct {
	def    Type
	logger *zap.Logger
}

// NewFactory returns a Factory whose fallback is def.
func NewFactory(def Type, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{def: def, logger: logger}
}

// Create resolves name to a Compressor. An empty name uses the factory's
// configured default; an unrecognized name logs a warning and falls back
// to that default.
func (f *Factory) Create(name string) (Compressor, error) {
	t := Type(name)
	switch t {
	case None, LZ4, ZSTD, Snappy:
		return New(t)
	case "":
		return New(f.def)
	default:
		f.logger.Warn("unknown compress type, falling back to default",
			zap.String("configured", name), zap.String("default", string(f.def)))
		return New(f.def)
	}
}
