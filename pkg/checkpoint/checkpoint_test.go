package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loongcollector/agent/pkg/event"
)

func TestStitchCoversFullRange(t *testing.T) {
	groups := []*event.Group{
		{ExactlyOnceCheckpoint: &event.Checkpoint{Key: "f1", ReadOffset: 100, ReadLength: 50}},
		{ExactlyOnceCheckpoint: &event.Checkpoint{Key: "f1", ReadOffset: 150, ReadLength: 30}},
		{ExactlyOnceCheckpoint: &event.Checkpoint{Key: "f2", ReadOffset: 0, ReadLength: 10}},
	}
	ranges := Stitch(groups)
	require.Len(t, ranges, 2)
	assert.Equal(t, Range{Key: "f1", Offset: 100, Length: 80}, ranges[0])
	assert.Equal(t, Range{Key: "f2", Offset: 0, Length: 10}, ranges[1])
}

func TestStitchIgnoresGroupsWithoutCheckpoint(t *testing.T) {
	groups := []*event.Group{{}}
	assert.Empty(t, Stitch(groups))
}
