package services

import "sync"

// LockRegistry hands out one mutex per channel so replies in a channel are
// generated and sent one at a time. Locks are created on first use and kept
// for the life of the process; the channel-id space is bounded by the guilds
// the bot is in, so the map never needs eviction.
type LockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLockRegistry creates an empty registry.
func NewLockRegistry() *LockRegistry {
	return &LockRegistry{locks: make(map[string]*sync.Mutex)}
}

// For returns the lock for the given channel, creating it on first access.
// Callers hold the lock across the whole generate-and-send sequence.
func (r *LockRegistry) For(channelID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[channelID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[channelID] = lock
	}
	return lock
}
