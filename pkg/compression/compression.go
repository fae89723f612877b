// Package compression provides the Compressor abstraction each serializer's
// output is wrapped in before it reaches the sender queue, grounded on
// Compressor.h / CompressorFactory.cpp.
package compression

import (
	"fmt"

	"github.com/DataDog/zstd"
	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

// Type identifies a wire compression algorithm.
type Type string

const (
	None   Type = "none"
	LZ4    Type = "lz4"
	ZSTD   Type = "zstd"
	Snappy Type = "snappy"
)

// Compressor compresses one complete payload at a time; every
// implementation is stateless and safe for concurrent use.
type Compressor interface {
	Type() Type
	Compress(src []byte) ([]byte, error)
	// ContentEncoding is the HTTP Content-Encoding / SLS x-log-compresstype
	// header value identifying this algorithm on the wire.
	ContentEncoding() string
}

type noneCompressor struct{}

func (noneCompressor) Type() Type                       { return None }
func (noneCompressor) Compress(src []byte) ([]byte, error) { return src, nil }
func (noneCompressor) ContentEncoding() string           { return "" }

type lz4Compressor struct{}

func (lz4Compressor) Type() Type { return LZ4 }

func (lz4Compressor) Compress(src []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(src)))
	var c lz4.Compressor
	n, err := c.CompressBlock(src, buf)
	if err != nil {
		return nil, fmt.Errorf("compression: lz4 compress: %w", err)
	}
	if n == 0 && len(src) > 0 {
		// Incompressible input: lz4 signals this by writing zero bytes.
		return nil, fmt.Errorf("compression: lz4 block incompressible")
	}
	return buf[:n], nil
}

func (lz4Compressor) ContentEncoding() string { return "lz4" }

type zstdCompressor struct {
	level int
}

func (z zstdCompressor) Type() Type { return ZSTD }

func (z zstdCompressor) Compress(src []byte) ([]byte, error) {
	out, err := zstd.CompressLevel(nil, src, z.level)
	if err != nil {
		return nil, fmt.Errorf("compression: zstd compress: %w", err)
	}
	return out, nil
}

func (zstdCompressor) ContentEncoding() string { return "zstd" }

type snappyCompressor struct{}

func (snappyCompressor) Type() Type { return Snappy }

func (snappyCompressor) Compress(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

func (snappyCompressor) ContentEncoding() string { return "snappy" }

// New returns a Compressor for t. ZSTD defaults to level 1, matching the
// original's DEFAULT_COMPRESS_LEVEL.
func New(t Type) (Compressor, error) {
	switch t {
	case None, "":
		return noneCompressor{}, nil
	case LZ4:
		return lz4Compressor{}, nil
	case ZSTD:
		return zstdCompressor{level: 1}, nil
	case Snappy:
		return snappyCompressor{}, nil
	default:
		return nil, fmt.Errorf("compression: unsupported type %q", t)
	}
}

// Decompress reverses Compress for t, used by tests and by the local-file
// flusher's own readback verification.
func Decompress(t Type, data []byte) ([]byte, error) {
	switch t {
	case None, "":
		return data, nil
	case LZ4:
		// Compress emits a raw LZ4 block, which does not record its
		// uncompressed size: grow the destination until the block fits.
		limit := 255*len(data) + 64
		for size := 4*len(data) + 64; ; size *= 2 {
			buf := make([]byte, size)
			n, err := lz4.UncompressBlock(data, buf)
			if err == nil {
				return buf[:n], nil
			}
			if size >= limit {
				return nil, fmt.Errorf("compression: lz4 decompress: %w", err)
			}
		}
	case ZSTD:
		out, err := zstd.Decompress(nil, data)
		if err != nil {
			return nil, fmt.Errorf("compression: zstd decompress: %w", err)
		}
		return out, nil
	case Snappy:
		out, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("compression: snappy decompress: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("compression: unsupported type %q", t)
	}
}
