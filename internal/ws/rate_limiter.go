package ws

import (
	"sync"
	"time"

	"cosync/internal/domain"
)

// JoinLimiter bounds join-request attempts per connection over a
// sliding window, so a misbehaving client cannot churn the registry.
type JoinLimiter struct {
	mu      sync.Mutex
	history map[domain.ConnID][]time.Time
	limit   int
	window  time.Duration
}

func NewJoinLimiter(limit int, window time.Duration) *JoinLimiter {
	return &JoinLimiter{
		history: make(map[domain.ConnID][]time.Time),
		limit:   limit,
		window:  window,
	}
}

func (l *JoinLimiter) Allow(id domain.ConnID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-l.window)

	attempts := l.history[id]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= l.limit {
		l.history[id] = fresh
		return false
	}

	fresh = append(fresh, now)
	l.history[id] = fresh
	return true
}

// Forget drops a connection's history once it disconnects; ids are
// never reused, so the entries would otherwise leak.
func (l *JoinLimiter) Forget(id domain.ConnID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.history, id)
}
