package workspace

import (
	"sync"
	"time"

	"mentorportal/internal/metrics"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Registry holds the live workspaces, bounded in count and idle time.
// The least recently used workspace is dropped when the bound is hit.
type Registry struct {
	deps Deps

	mu    sync.Mutex
	cache *expirable.LRU[string, *Workspace]
}

// NewRegistry creates a registry of at most maxSessions workspaces, each
// expiring after ttl without use.
func NewRegistry(deps Deps, maxSessions int, ttl time.Duration) *Registry {
	logger := deps.Logger.With("component", "workspace_registry")
	onEvict := func(id string, _ *Workspace) {
		logger.Debug("workspace evicted", "session_id", id)
	}
	return &Registry{
		deps:  deps,
		cache: expirable.NewLRU[string, *Workspace](maxSessions, onEvict, ttl),
	}
}

// Get returns the workspace for a session id, creating it on first use.
// Every call restarts the workspace's idle timer.
func (r *Registry) Get(id string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws, ok := r.cache.Get(id)
	if !ok {
		ws = New(id, r.deps)
	}
	// Re-adding restarts the TTL
	r.cache.Add(id, ws)
	metrics.SetActiveSessions(r.cache.Len())
	return ws
}

// Peek returns an existing workspace without creating or touching it.
func (r *Registry) Peek(id string) (*Workspace, bool) {
	return r.cache.Peek(id)
}

// Remove drops a workspace.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Remove(id)
	metrics.SetActiveSessions(r.cache.Len())
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	return r.cache.Len()
}
