package registry

import (
	"sync"
	"sync/atomic"
	"time"

	"robotctl/internal/robot"
)

// recentCapacity bounds how many terminated sessions the dashboard's
// "recent activity" view can look back at.
const recentCapacity = 50

// Record is the admin-visible projection of one session's state.
type Record struct {
	ID         uint64    `json:"id"`
	RemoteAddr string    `json:"remote_addr"`
	Username   string    `json:"username,omitempty"`
	State      string    `json:"state"`
	Position   Position  `json:"position"`
	Heading    string    `json:"heading"`
	StartedAt  time.Time `json:"started_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Err        string    `json:"error,omitempty"`
}

// Position mirrors robot.Position for JSON encoding without exposing the
// robot package's internals beyond the two fields the dashboard needs.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Registry tracks every in-flight session plus a short, bounded history of
// recently terminated ones, for the admin HTTP surface and dashboard feed
// to read without touching any protocol state directly.
type Registry struct {
	mu      sync.RWMutex
	nextID  atomic.Uint64
	active  map[uint64]*Record
	recent  []Record
	metrics *Metrics
}

// NewRegistry constructs an empty Registry backed by metrics.
func NewRegistry(metrics *Metrics) *Registry {
	return &Registry{active: make(map[uint64]*Record), metrics: metrics}
}

// Metrics returns the registry's metrics instance.
func (r *Registry) Metrics() *Metrics { return r.metrics }

// Begin registers a new session and returns its id and an opaque *Record
// handle identifying it. The handle's fields must never be read or written
// directly off the lock; callers (typically the acceptor, via robot.Hooks)
// mutate it only through SetState/SetPosition/SetUsername, and read it only
// through the snapshots those methods, ActiveSessions, or RecentSessions
// return. The caller must call End when the session terminates.
func (r *Registry) Begin(remoteAddr string) (uint64, *Record) {
	id := r.nextID.Add(1)
	rec := &Record{
		ID:         id,
		RemoteAddr: remoteAddr,
		State:      robot.StateNew.String(),
		StartedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	r.mu.Lock()
	r.active[id] = rec
	r.mu.Unlock()

	r.metrics.SessionsTotal.Add(1)
	r.metrics.SessionsActive.Add(1)
	return id, rec
}

// SetState updates rec's State under the registry lock and returns a
// snapshot of the record as it stood immediately after the update.
func (r *Registry) SetState(rec *Record, state string) Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.State = state
	rec.UpdatedAt = time.Now()
	return *rec
}

// SetPosition updates rec's Position under the registry lock and returns a
// snapshot of the record as it stood immediately after the update.
func (r *Registry) SetPosition(rec *Record, pos Position) Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.Position = pos
	rec.UpdatedAt = time.Now()
	return *rec
}

// SetHeading updates rec's Heading under the registry lock and returns a
// snapshot of the record as it stood immediately after the update.
func (r *Registry) SetHeading(rec *Record, heading string) Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.Heading = heading
	rec.UpdatedAt = time.Now()
	return *rec
}

// SetUsername updates rec's Username under the registry lock and returns a
// snapshot of the record as it stood immediately after the update.
func (r *Registry) SetUsername(rec *Record, username string) Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.Username = username
	rec.UpdatedAt = time.Now()
	return *rec
}

// Snapshot returns a copy of rec's current state under the registry lock,
// for callers that need to publish a record without having just mutated it
// (e.g. the "connected" event fired right after Begin).
func (r *Registry) Snapshot(rec *Record) Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *rec
}

// End deregisters a session, recording its terminal outcome in the recent
// history ring.
func (r *Registry) End(id uint64, outcome robot.Outcome) {
	r.mu.Lock()
	rec, ok := r.active[id]
	if ok {
		delete(r.active, id)
		rec.State = outcome.State.String()
		rec.UpdatedAt = time.Now()
		if outcome.Err != nil {
			rec.Err = outcome.Err.Error()
		}
		r.recent = append(r.recent, *rec)
		if len(r.recent) > recentCapacity {
			r.recent = r.recent[len(r.recent)-recentCapacity:]
		}
	}
	r.mu.Unlock()

	r.metrics.SessionsActive.Add(-1)
	if outcome.Err == nil && outcome.Secret != "" {
		r.metrics.SecretsFound.Add(1)
	}
	if outcome.Err != nil {
		r.metrics.RecordErrorKind(outcome.ErrKind)
	}
}

// ActiveSessions returns a snapshot of every currently registered session.
func (r *Registry) ActiveSessions() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, 0, len(r.active))
	for _, rec := range r.active {
		out = append(out, *rec)
	}
	return out
}

// RecentSessions returns a snapshot of recently terminated sessions, most
// recent last.
func (r *Registry) RecentSessions() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, len(r.recent))
	copy(out, r.recent)
	return out
}
