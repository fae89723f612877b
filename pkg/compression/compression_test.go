package compression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog, repeatedly, repeatedly, repeatedly")
	for _, typ := range []Type{None, LZ4, ZSTD, Snappy} {
		t.Run(string(typ), func(t *testing.T) {
			c, err := New(typ)
			require.NoError(t, err)
			compressed, err := c.Compress(payload)
			require.NoError(t, err)
			out, err := Decompress(typ, compressed)
			require.NoError(t, err)
			assert.Equal(t, payload, out)
		})
	}
}

func TestFactoryFallsBackOnUnknown(t *testing.T) {
	f := NewFactory(ZSTD, nil)
	c, err := f.Create("not-a-real-codec")
	require.NoError(t, err)
	assert.Equal(t, ZSTD, c.Type())
}

func TestFactoryEmptyUsesDefault(t *testing.T) {
	f := NewFactory(LZ4, nil)
	c, err := f.Create("")
	require.NoError(t, err)
	assert.Equal(t, LZ4, c.Type())
}
