package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterAllowsUnderLimit(t *testing.T) {
	l := NewLimiter(100, 5, time.Minute)
	for i := 0; i < 5; i++ {
		assert.NoError(t, l.Allow("user-a"))
	}
}

func TestLimiterUserLimitExhausted(t *testing.T) {
	l := NewLimiter(100, 2, time.Minute)

	require.NoError(t, l.Allow("user-a"))
	require.NoError(t, l.Allow("user-a"))
	assert.ErrorIs(t, l.Allow("user-a"), ErrUserExhausted)

	// Other users have their own counter.
	assert.NoError(t, l.Allow("user-b"))
}

func TestLimiterGlobalLimitExhausted(t *testing.T) {
	l := NewLimiter(3, 100, time.Minute)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Allow(fmt.Sprintf("user-%d", i)))
	}
	assert.ErrorIs(t, l.Allow("user-x"), ErrGlobalExhausted)
}

func TestLimiterWindowExpiry(t *testing.T) {
	l := NewLimiter(100, 1, 50*time.Millisecond)

	require.NoError(t, l.Allow("user-a"))
	require.ErrorIs(t, l.Allow("user-a"), ErrUserExhausted)

	time.Sleep(80 * time.Millisecond)
	assert.NoError(t, l.Allow("user-a"))
}
