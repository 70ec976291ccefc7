// Package ratelimit provides in-memory request throttling. State lives in
// process memory; a multi-instance deployment would move it to a shared store.
package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"reviewhub/config"
	domainerrors "reviewhub/internal/domain/errors"
	"reviewhub/internal/domain/service"
)

const (
	defaultWindow                 = time.Minute
	defaultMaxAttemptsPerWindow   = 10
	defaultMaxConsecutiveFailures = 5
	defaultLockoutDuration        = 5 * time.Minute
	defaultSweepInterval          = time.Minute
)

// loginState tracks one key's recent attempts and failure streak.
type loginState struct {
	attempts    []time.Time
	consecutive int
	lockedUntil time.Time
	lastSeen    time.Time
}

// LoginGuard is a sliding-window rate limiter with a consecutive-failure
// lockout. It implements service.LoginGuard.
type LoginGuard struct {
	mu     sync.Mutex
	states map[string]*loginState

	window                 time.Duration
	maxAttemptsPerWindow   int
	maxConsecutiveFailures int
	lockoutDuration        time.Duration
	sweepInterval          time.Duration

	logger *slog.Logger
	now    func() time.Time
	stop   chan struct{}
	done   chan struct{}
}

// NewLoginGuard is the constructor for LoginGuard. Zero config values fall
// back to the documented defaults. Start must be called before the sweeper
// reclaims idle entries.
func NewLoginGuard(cfg *config.Config, logger *slog.Logger) *LoginGuard {
	guard := &LoginGuard{
		states:                 make(map[string]*loginState),
		window:                 defaultWindow,
		maxAttemptsPerWindow:   defaultMaxAttemptsPerWindow,
		maxConsecutiveFailures: defaultMaxConsecutiveFailures,
		lockoutDuration:        defaultLockoutDuration,
		sweepInterval:          defaultSweepInterval,
		logger:                 logger,
		now:                    time.Now,
		stop:                   make(chan struct{}),
		done:                   make(chan struct{}),
	}

	if cfg != nil && cfg.LoginGuard != nil {
		lg := cfg.LoginGuard
		if lg.Window > 0 {
			guard.window = lg.Window
		}
		if lg.MaxAttemptsPerWindow > 0 {
			guard.maxAttemptsPerWindow = lg.MaxAttemptsPerWindow
		}
		if lg.MaxConsecutiveFailures > 0 {
			guard.maxConsecutiveFailures = lg.MaxConsecutiveFailures
		}
		if lg.LockoutDuration > 0 {
			guard.lockoutDuration = lg.LockoutDuration
		}
		if lg.SweepInterval > 0 {
			guard.sweepInterval = lg.SweepInterval
		}
	}

	return guard
}

var _ service.LoginGuard = (*LoginGuard)(nil)

// Check gates one attempt for the key. An allowed attempt is counted
// immediately so a flood of in-flight requests cannot slip under the window.
func (g *LoginGuard) Check(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	state, ok := g.states[key]
	if !ok {
		state = &loginState{}
		g.states[key] = state
	}
	state.lastSeen = now

	if now.Before(state.lockedUntil) {
		return domainerrors.NewRateLimitError(
			domainerrors.ReasonLockedOut,
			"嘗試次數過多,帳號已暫時鎖定",
			state.lockedUntil.Sub(now),
		)
	}

	state.attempts = pruneBefore(state.attempts, now.Add(-g.window))
	if len(state.attempts) >= g.maxAttemptsPerWindow {
		retryAfter := state.attempts[0].Add(g.window).Sub(now)

		return domainerrors.NewRateLimitError(
			domainerrors.ReasonTooManyAttempts,
			"嘗試次數過多,請稍後再試",
			retryAfter,
		)
	}

	state.attempts = append(state.attempts, now)

	return nil
}

// RecordFailure increments the key's failure streak and engages the lockout
// once the streak reaches the threshold.
func (g *LoginGuard) RecordFailure(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	state, ok := g.states[key]
	if !ok {
		state = &loginState{}
		g.states[key] = state
	}
	state.lastSeen = now

	state.consecutive++
	if state.consecutive >= g.maxConsecutiveFailures {
		state.lockedUntil = now.Add(g.lockoutDuration)
		state.consecutive = 0
		g.logger.Warn("Login key locked out",
			slog.String("key", key),
			slog.Time("until", state.lockedUntil),
		)
	}
}

// RecordSuccess resets the failure streak for the key.
func (g *LoginGuard) RecordSuccess(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if state, ok := g.states[key]; ok {
		state.consecutive = 0
	}
}

// Start launches the background sweeper. Wired as an fx OnStart hook.
func (g *LoginGuard) Start(_ context.Context) error {
	go g.sweepLoop()

	return nil
}

// Stop terminates the sweeper. Wired as an fx OnStop hook.
func (g *LoginGuard) Stop(ctx context.Context) error {
	close(g.stop)

	select {
	case <-g.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *LoginGuard) sweepLoop() {
	defer close(g.done)

	ticker := time.NewTicker(g.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

// sweep drops keys that have been idle long enough that neither the window
// nor a lockout could still apply to them.
func (g *LoginGuard) sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	idleCutoff := now.Add(-(g.window + g.lockoutDuration))
	for key, state := range g.states {
		if state.lastSeen.Before(idleCutoff) && now.After(state.lockedUntil) {
			delete(g.states, key)
		}
	}
}

func pruneBefore(attempts []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(attempts) && !attempts[idx].After(cutoff) {
		idx++
	}

	return attempts[idx:]
}
