package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/legacyvault/admin-trust/internal/core/ports"
)

const (
	limiterWindow      = 15 * time.Minute
	limiterMaxFailures = 5
	limiterIdleEvict   = time.Hour
	limiterSweepEvery  = time.Minute
)

type loginAttempt struct {
	at      time.Time
	success bool
}

// LoginLimiter enforces the per-identifier sliding window on login
// attempts: 5 failures within 15 minutes lock the identifier out until the
// oldest failure slides out of the window. Successful attempts are recorded
// but never clear earlier failures. State is in-process only and is
// discarded on restart.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]loginAttempt
	now      func() time.Time
	log      zerolog.Logger
}

// NewLoginLimiter constructs a limiter. Call Start to enable the periodic
// sweep that evicts identifiers idle for more than an hour.
func NewLoginLimiter(log zerolog.Logger) *LoginLimiter {
	return &LoginLimiter{
		attempts: make(map[string][]loginAttempt),
		now:      time.Now,
		log:      log,
	}
}

var _ ports.LoginLimiter = (*LoginLimiter)(nil)

// Check reports whether identifier may attempt a login, how many failures
// remain before lockout, and, when locked out, the instant the window
// reopens.
func (l *LoginLimiter) Check(identifier string) (bool, int, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	failures := l.recentFailuresLocked(identifier)
	if len(failures) < limiterMaxFailures {
		return true, limiterMaxFailures - len(failures), time.Time{}
	}
	// Window reopens when the oldest failure ages out.
	resetAt := failures[0].at.Add(limiterWindow)
	return false, 0, resetAt
}

// RecordAttempt appends an attempt for the identifier. Two concurrent calls
// for the same identifier both land; the map is guarded by a single mutex
// since the critical section is a slice append.
func (l *LoginLimiter) RecordAttempt(identifier string, success bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts[identifier] = append(l.attempts[identifier], loginAttempt{at: l.now(), success: success})
}

// recentFailuresLocked prunes entries older than the window and returns the
// failed attempts still inside it, oldest first. Caller holds l.mu.
func (l *LoginLimiter) recentFailuresLocked(identifier string) []loginAttempt {
	cutoff := l.now().Add(-limiterWindow)
	kept := l.attempts[identifier][:0]
	var failures []loginAttempt
	for _, a := range l.attempts[identifier] {
		if a.at.Before(cutoff) {
			continue
		}
		kept = append(kept, a)
		if !a.success {
			failures = append(failures, a)
		}
	}
	if len(kept) == 0 {
		delete(l.attempts, identifier)
	} else {
		l.attempts[identifier] = kept
	}
	return failures
}

// Start launches the background sweep. The sweep stops when ctx is
// cancelled.
func (l *LoginLimiter) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(limiterSweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.sweep()
			}
		}
	}()
}

// sweep drops identifiers whose most recent attempt is older than the idle
// threshold, bounding memory growth.
func (l *LoginLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-limiterIdleEvict)
	removed := 0
	for id, attempts := range l.attempts {
		if len(attempts) == 0 || attempts[len(attempts)-1].at.Before(cutoff) {
			delete(l.attempts, id)
			removed++
		}
	}
	if removed > 0 {
		l.log.Debug().Int("evicted", removed).Msg("login limiter sweep")
	}
}
