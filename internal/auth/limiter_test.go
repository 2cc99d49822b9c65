package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginLimiter_RefillsOverTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l := NewLoginLimiter(3, nil)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("jperez"))
	}
	assert.False(t, l.Allow("jperez"))
	assert.True(t, l.Allow("otro"), "buckets are per username")

	// One token every 20s
	now = now.Add(20 * time.Second)
	assert.True(t, l.Allow("jperez"))
	assert.False(t, l.Allow("jperez"))
}

func TestLoginLimiter_Reset(t *testing.T) {
	l := NewLoginLimiter(1, nil)
	assert.True(t, l.Allow("jperez"))
	assert.False(t, l.Allow(" JPEREZ "))

	l.Reset("jperez")
	assert.True(t, l.Allow("jperez"))
}

func TestLoginLimiter_Disabled(t *testing.T) {
	var nilLimiter *LoginLimiter
	assert.True(t, nilLimiter.Allow("x"))

	l := NewLoginLimiter(0, nil)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("x"))
	}
}

func TestLoginLimiter_CleanupOldEntries(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l := NewLoginLimiter(5, nil)
	l.now = func() time.Time { return now }

	l.Allow("viejo")
	now = now.Add(2 * time.Hour)
	l.Allow("nuevo")

	assert.Equal(t, 1, l.CleanupOldEntries(time.Hour))
	assert.Equal(t, 1, l.Len())
}
