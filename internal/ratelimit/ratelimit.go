// Package ratelimit implements a sliding-window throttle over a client-state
// store. It deters casual spamming from a single client; it is not an
// abuse-prevention boundary — a real deployment needs server-side
// enforcement behind it.
package ratelimit

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/notelink/notelink/internal/clientstate"
)

const storagePrefix = "rate_limit_"

// Limiter gates actions by counting recent permitted timestamps per action
// key. Storage faults fail open: a broken state store never blocks a user.
type Limiter struct {
	store  clientstate.Store
	logger *zap.Logger
	now    func() time.Time
}

// New returns a limiter backed by the given store.
func New(store clientstate.Store, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{store: store, logger: logger, now: time.Now}
}

// Check reports whether an action identified by key is allowed under the
// given limit within the trailing window. An allowed call records its
// timestamp; a rejected call does not consume a slot. Windows persist in
// the store and are pruned on every check.
func (l *Limiter) Check(key string, limit int, window time.Duration) bool {
	if l == nil || l.store == nil {
		return true
	}
	if limit <= 0 || window <= 0 {
		return true
	}

	storageKey := storagePrefix + key
	now := l.now().UnixMilli()
	windowMs := window.Milliseconds()

	stored, ok, err := l.store.Get(storageKey)
	if err != nil {
		l.logger.Warn("rate limit check failed open on storage read",
			zap.String("action", key), zap.Error(err))
		return true
	}

	var timestamps []int64
	if ok && stored != "" {
		if err := json.Unmarshal([]byte(stored), &timestamps); err != nil {
			l.logger.Warn("rate limit window unreadable, resetting",
				zap.String("action", key), zap.Error(err))
			timestamps = nil
		}
	}

	kept := timestamps[:0]
	for _, ts := range timestamps {
		if now-ts < windowMs {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= limit {
		return false
	}

	kept = append(kept, now)
	encoded, err := json.Marshal(kept)
	if err != nil {
		l.logger.Warn("rate limit window encode failed open",
			zap.String("action", key), zap.Error(err))
		return true
	}
	if err := l.store.Set(storageKey, string(encoded)); err != nil {
		l.logger.Warn("rate limit check failed open on storage write",
			zap.String("action", key), zap.Error(err))
	}
	return true
}
