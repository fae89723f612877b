package relabel

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceAction(t *testing.T) {
	lb := NewLabelsBuilder(map[string]string{"host": "web-01"})
	cfg := Config{
		SourceLabels: []string{"host"},
		Regex:        regexp.MustCompile(`^(web)-(\d+)$`),
		TargetLabel:  "role",
		Replacement:  "$1",
		Action:       Replace,
	}
	ok := Relabel(lb, &cfg)
	require.True(t, ok)
	assert.Equal(t, "web", lb.Get("role"))
}

func TestKeepDropActions(t *testing.T) {
	lb := NewLabelsBuilder(map[string]string{"env": "staging"})
	keep := Config{SourceLabels: []string{"env"}, Regex: regexp.MustCompile(`^prod$`), Action: Keep}
	assert.False(t, Relabel(lb, &keep))

	drop := Config{SourceLabels: []string{"env"}, Regex: regexp.MustCompile(`^staging$`), Action: Drop}
	assert.False(t, Relabel(lb, &drop))
}

func TestHashModWritesShardLabel(t *testing.T) {
	lb := NewLabelsBuilder(map[string]string{"id": "abc123"})
	cfg := Config{SourceLabels: []string{"id"}, TargetLabel: "shard", Modulus: 16, Action: HashMod}
	require.True(t, Relabel(lb, &cfg))
	assert.NotEmpty(t, lb.Get("shard"))
}

func TestLabelMapLabelDropLabelKeep(t *testing.T) {
	lb := NewLabelsBuilder(map[string]string{"__meta_foo": "1", "__meta_bar": "2", "keep_me": "3"})

	mapCfg := Config{Regex: regexp.MustCompile(`^__meta_(.*)`), Replacement: "$1", Action: LabelMap}
	require.True(t, Relabel(lb, &mapCfg))
	assert.Equal(t, "1", lb.Get("foo"))
	assert.Equal(t, "2", lb.Get("bar"))

	dropCfg := Config{Regex: regexp.MustCompile(`^__meta_.*`), Action: LabelDrop}
	require.True(t, Relabel(lb, &dropCfg))
	assert.Empty(t, lb.Get("__meta_foo"))
	assert.Equal(t, "3", lb.Get("keep_me"))

	keepCfg := Config{Regex: regexp.MustCompile(`^keep_me$`), Action: LabelKeep}
	require.True(t, Relabel(lb, &keepCfg))
	assert.Empty(t, lb.Get("foo"))
	assert.Equal(t, "3", lb.Get("keep_me"))
}

func TestLowercaseUppercase(t *testing.T) {
	lb := NewLabelsBuilder(map[string]string{"src": "MixedCase"})
	lower := Config{SourceLabels: []string{"src"}, TargetLabel: "lower", Action: Lowercase}
	upper := Config{SourceLabels: []string{"src"}, TargetLabel: "upper", Action: Uppercase}
	require.True(t, Relabel(lb, &lower))
	require.True(t, Relabel(lb, &upper))
	assert.Equal(t, "mixedcase", lb.Get("lower"))
	assert.Equal(t, "MIXEDCASE", lb.Get("upper"))
}
