package shared

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Cooldowns allows one use of a command per user every period.
type Cooldowns struct {
	period time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewCooldowns(period time.Duration) *Cooldowns {
	return &Cooldowns{
		period:   period,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether userID may run command now and consumes the use if so.
// A zero period disables cooldowns.
func (c *Cooldowns) Allow(command, userID string) bool {
	return c.AllowAt(command, userID, time.Now())
}

func (c *Cooldowns) AllowAt(command, userID string, now time.Time) bool {
	if c == nil || c.period <= 0 || userID == "" {
		return true
	}

	key := command + ":" + userID

	c.mu.Lock()
	l, ok := c.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(c.period), 1)
		c.limiters[key] = l
	}
	c.mu.Unlock()

	return l.AllowN(now, 1)
}

// Prune drops limiters that are full again, so idle users do not pile up.
func (c *Cooldowns) Prune(now time.Time) int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, l := range c.limiters {
		if l.TokensAt(now) >= 1 {
			delete(c.limiters, key)
			removed++
		}
	}
	return removed
}

func (c *Cooldowns) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.limiters)
}
