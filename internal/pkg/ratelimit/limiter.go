package ratelimit

import (
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
)

var (
	ErrGlobalExhausted = errors.New("global rate limit exhausted")
	ErrUserExhausted   = errors.New("user rate limit exhausted")
)

const globalKey = "__global__"

// Limiter counts submissions per fixed window, one counter for the whole
// process plus one per user. Counters expire with the window, so a user who
// goes quiet is forgotten automatically.
type Limiter struct {
	counters    *cache.Cache
	globalLimit int
	userLimit   int
}

func NewLimiter(globalLimit, userLimit int, window time.Duration) *Limiter {
	return &Limiter{
		counters:    cache.New(window, 2*window),
		globalLimit: globalLimit,
		userLimit:   userLimit,
	}
}

// Allow increments both counters and reports which limit, if any, is
// exhausted. The global limit is checked first.
func (l *Limiter) Allow(userId string) error {
	if l.increment(globalKey) > int64(l.globalLimit) {
		return ErrGlobalExhausted
	}
	if l.increment(userId) > int64(l.userLimit) {
		return ErrUserExhausted
	}
	return nil
}

func (l *Limiter) increment(key string) int64 {
	if err := l.counters.Add(key, int64(1), cache.DefaultExpiration); err == nil {
		return 1
	}
	n, err := l.counters.IncrementInt64(key, 1)
	if err != nil {
		// Counter expired between Add and Increment; start a fresh window.
		l.counters.Set(key, int64(1), cache.DefaultExpiration)
		return 1
	}
	return n
}
