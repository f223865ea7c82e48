package revocation

import (
	"sync"
	"time"
)

// Registry is a process-local blacklist of explicitly logged-out access
// tokens. Entries are best-effort: they only need to outlive the natural
// lifetime of the tokens they block, after which signature verification
// rejects the token anyway. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	entries   map[string]time.Time
	retention time.Duration
	done      chan struct{}
	closeOnce sync.Once
}

// NewRegistry starts a registry whose entries are swept out after retention.
// The retention window must exceed the access-token TTL.
func NewRegistry(retention time.Duration) *Registry {
	r := &Registry{
		entries:   make(map[string]time.Time),
		retention: retention,
		done:      make(chan struct{}),
	}

	go r.sweep()

	return r
}

// Revoke records a token as blacklisted from now until the retention window
// elapses.
func (r *Registry) Revoke(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[token] = time.Now()
}

// IsRevoked reports whether the token is currently blacklisted. Entries past
// retention are treated as absent even before the sweeper removes them.
func (r *Registry) IsRevoked(token string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	insertedAt, ok := r.entries[token]
	if !ok {
		return false
	}

	return time.Since(insertedAt) < r.retention
}

// Len reports the number of entries currently held, expired or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// Close stops the background sweeper. The registry remains usable but no
// longer reclaims memory.
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
}

func (r *Registry) sweep() {
	interval := r.retention / 4
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictExpired()
		case <-r.done:
			return
		}
	}
}

func (r *Registry) evictExpired() {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	for token, insertedAt := range r.entries {
		if now.Sub(insertedAt) >= r.retention {
			delete(r.entries, token)
		}
	}
}
