package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJoinLimiterAllowsUpToLimit(t *testing.T) {
	req := require.New(t)
	l := NewJoinLimiter(3, time.Minute)

	req.True(l.Allow("a"))
	req.True(l.Allow("a"))
	req.True(l.Allow("a"))
	req.False(l.Allow("a"))
	req.False(l.Allow("a"))
}

func TestJoinLimiterIsPerConnection(t *testing.T) {
	req := require.New(t)
	l := NewJoinLimiter(1, time.Minute)

	req.True(l.Allow("a"))
	req.False(l.Allow("a"))
	req.True(l.Allow("b"))
}

func TestJoinLimiterWindowSlides(t *testing.T) {
	req := require.New(t)
	l := NewJoinLimiter(2, 20*time.Millisecond)

	req.True(l.Allow("a"))
	req.True(l.Allow("a"))
	req.False(l.Allow("a"))

	time.Sleep(30 * time.Millisecond)
	req.True(l.Allow("a"))
}

func TestJoinLimiterForget(t *testing.T) {
	req := require.New(t)
	l := NewJoinLimiter(1, time.Minute)

	req.True(l.Allow("a"))
	req.False(l.Allow("a"))

	l.Forget("a")
	req.True(l.Allow("a"))
}
