package application

import (
	"sync"
	"time"
)

// SessionTimers owns one single-shot expiry timer per author.
type SessionTimers struct {
	mu     sync.Mutex
	gen    uint64
	timers map[string]*sessionTimer
}

type sessionTimer struct {
	timer *time.Timer
	gen   uint64
}

func NewSessionTimers() *SessionTimers {
	return &SessionTimers{timers: make(map[string]*sessionTimer)}
}

// Reset cancels the pending timer of key, if any, and arms a new one.
// onExpire runs in its own goroutine and only if the timer was not reset or
// cancelled in the meantime.
func (st *SessionTimers) Reset(key string, d time.Duration, onExpire func()) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if cur, ok := st.timers[key]; ok {
		cur.timer.Stop()
	}
	st.gen++
	gen := st.gen
	st.timers[key] = &sessionTimer{
		gen: gen,
		timer: time.AfterFunc(d, func() {
			if st.claim(key, gen) {
				onExpire()
			}
		}),
	}
}

// claim removes the timer entry if it still belongs to generation gen.
func (st *SessionTimers) claim(key string, gen uint64) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	cur, ok := st.timers[key]
	if !ok || cur.gen != gen {
		return false
	}
	delete(st.timers, key)
	return true
}

// Cancel stops the pending timer of key.
func (st *SessionTimers) Cancel(key string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if cur, ok := st.timers[key]; ok {
		cur.timer.Stop()
		delete(st.timers, key)
	}
}

// Pending reports whether key has an armed timer.
func (st *SessionTimers) Pending(key string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.timers[key]
	return ok
}
