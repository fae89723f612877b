package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffGrowsAndCaps(t *testing.T) {
	p := New(DefaultConfig())
	assert.Equal(t, 2*time.Second, p.GetBackoffDuration())
	p.IncError()
	assert.Equal(t, 4*time.Second, p.GetBackoffDuration())
	p.IncError()
	assert.Equal(t, 8*time.Second, p.GetBackoffDuration())
	for i := 0; i < 10; i++ {
		p.IncError()
	}
	assert.Equal(t, 64*time.Second, p.GetBackoffDuration(), "capped at MaxSecs")
}

func TestBackoffRecoversAfterStreak(t *testing.T) {
	p := New(DefaultConfig())
	p.IncError()
	p.IncError()
	assert.Equal(t, 2, p.ErrorCount())
	p.IncSuccess()
	assert.Equal(t, 2, p.ErrorCount(), "one success is below RecoverStep, no decay yet")
	p.IncSuccess()
	assert.Equal(t, 1, p.ErrorCount(), "RecoverStep consecutive successes decay the streak by one")
}
