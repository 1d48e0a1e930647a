package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntervalGate_FirstCallAllowed(t *testing.T) {
	g := NewIntervalGate(10 * time.Second)
	assert.True(t, g.Allow())
}

func TestIntervalGate_SecondCallWithinIntervalRefused(t *testing.T) {
	g := NewIntervalGate(10 * time.Second)
	assert.True(t, g.Allow())
	assert.False(t, g.Allow())
}

func TestIntervalGate_ShortIntervalRecovers(t *testing.T) {
	g := NewIntervalGate(10 * time.Millisecond)
	assert.True(t, g.Allow())
	assert.False(t, g.Allow())

	time.Sleep(15 * time.Millisecond)
	assert.True(t, g.Allow())
}

func TestIntervalGate_NonPositiveIntervalAdmitsEverything(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		g := NewIntervalGate(d)
		for i := 0; i < 100; i++ {
			assert.True(t, g.Allow())
		}
	}
}
