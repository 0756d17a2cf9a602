package workspace

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/studentdash/roster-backend/internal/coordinator"
	"github.com/studentdash/roster-backend/internal/service"
)

// Workspace is the coordinator pair serving one dashboard client.
type Workspace struct {
	ID       string
	Session  *coordinator.Session
	Roster   *coordinator.Roster
	identity *service.IdentityClient
	ctx      context.Context
	cancel   context.CancelFunc
	lastSeen atomic.Int64
}

// Context is cancelled when the workspace is torn down.
func (w *Workspace) Context() context.Context {
	return w.ctx
}

// Touch marks the workspace as used now.
func (w *Workspace) Touch() {
	w.lastSeen.Store(time.Now().UnixNano())
}

// LastSeen reports when the workspace was last used.
func (w *Workspace) LastSeen() time.Time {
	return time.Unix(0, w.lastSeen.Load())
}

func (w *Workspace) close() {
	w.cancel()
	w.Session.Close()
	w.Roster.Close()
}

// Registry holds the live workspaces of the process, keyed by client ID.
type Registry struct {
	auth      service.IdentityBackend
	directory coordinator.DataProvider
	log       zerolog.Logger

	mu    sync.Mutex
	items map[string]*Workspace
}

// NewRegistry creates an empty Registry.
func NewRegistry(auth service.IdentityBackend, directory coordinator.DataProvider, log zerolog.Logger) *Registry {
	return &Registry{
		auth:      auth,
		directory: directory,
		log:       log.With().Str("component", "workspace_registry").Logger(),
		items:     make(map[string]*Workspace),
	}
}

// Acquire returns the workspace for clientID, creating one when clientID is
// empty or unknown. A created workspace always gets a freshly minted ID; a
// client cannot choose the ID of a workspace it did not open. token seeds
// session restore for a new workspace only. The second result reports
// whether a workspace was created.
func (r *Registry) Acquire(clientID, token string) (*Workspace, bool) {
	r.mu.Lock()
	if ws, ok := r.items[clientID]; ok && clientID != "" {
		r.mu.Unlock()
		ws.Touch()
		return ws, false
	}

	clientID = uuid.New().String()
	ws := r.newWorkspace(clientID, token)
	r.items[clientID] = ws
	count := len(r.items)
	r.mu.Unlock()

	r.log.Info().Str("workspace_id", clientID).Int("workspaces", count).Msg("Workspace opened")

	// The dashboard loads the roster as soon as it opens.
	go func() {
		_ = ws.Roster.Refresh(ws.Context())
	}()
	return ws, true
}

// Get returns the workspace for clientID without creating one.
func (r *Registry) Get(clientID string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.items[clientID]
	if ok {
		ws.Touch()
	}
	return ws, ok
}

// Release tears the workspace down.
func (r *Registry) Release(clientID string) bool {
	r.mu.Lock()
	ws, ok := r.items[clientID]
	delete(r.items, clientID)
	r.mu.Unlock()

	if !ok {
		return false
	}
	ws.close()
	r.log.Info().Str("workspace_id", clientID).Msg("Workspace closed")
	return true
}

// ReapIdle tears down workspaces unused for longer than maxIdle.
func (r *Registry) ReapIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	var stale []*Workspace
	for id, ws := range r.items {
		if ws.LastSeen().Before(cutoff) {
			stale = append(stale, ws)
			delete(r.items, id)
		}
	}
	r.mu.Unlock()

	for _, ws := range stale {
		ws.close()
	}
	return len(stale)
}

// Revoke drops the session holding tokenID from whichever workspace has it.
func (r *Registry) Revoke(tokenID string) int {
	r.mu.Lock()
	clients := make([]*service.IdentityClient, 0, len(r.items))
	for _, ws := range r.items {
		clients = append(clients, ws.identity)
	}
	r.mu.Unlock()

	revoked := 0
	for _, c := range clients {
		if c.Revoke(tokenID) {
			revoked++
		}
	}
	return revoked
}

// Len reports the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Close tears down every workspace.
func (r *Registry) Close() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]*Workspace)
	r.mu.Unlock()

	for _, ws := range items {
		ws.close()
	}
}

// newWorkspace must be called with r.mu held.
func (r *Registry) newWorkspace(id, token string) *Workspace {
	ctx, cancel := context.WithCancel(context.Background())
	wsLog := r.log.With().Str("workspace_id", id).Logger()

	identity := service.NewIdentityClient(ctx, r.auth, token, wsLog)
	ws := &Workspace{
		ID:       id,
		Session:  coordinator.NewSession(identity, wsLog),
		Roster:   coordinator.NewRoster(r.directory, wsLog),
		identity: identity,
		ctx:      ctx,
		cancel:   cancel,
	}
	ws.Touch()
	return ws
}
