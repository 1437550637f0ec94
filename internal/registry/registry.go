package registry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds the role-partitioned connection sets. It is the only
// owner of shared connection state; components mutate it exclusively
// through these methods.
type Registry struct {
	logger *slog.Logger

	mu         sync.RWMutex
	roles      map[Role]map[string]*Conn
	heartbeats map[*Conn]func()
}

// New creates an empty Registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		logger:     logger,
		roles:      make(map[Role]map[string]*Conn),
		heartbeats: make(map[*Conn]func()),
	}
}

// Register adds a classified connection to its role set. Registering
// the same connection twice is a no-op. If another connection already
// holds the same id in that role set it is evicted and returned so the
// caller can close it (reconnect semantics).
func (r *Registry) Register(c *Conn, role Role) (evicted *Conn, err error) {
	if role == RoleUnclassified {
		return nil, ErrUnclassified
	}
	id := c.ID()
	if id == "" {
		return nil, ErrEmptyID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.roles[role]
	if !ok {
		set = make(map[string]*Conn)
		r.roles[role] = set
	}

	if prev, ok := set[id]; ok {
		if prev == c {
			return nil, nil
		}
		evicted = prev
		if cancel, ok := r.heartbeats[prev]; ok {
			delete(r.heartbeats, prev)
			defer cancel()
		}
	}

	set[id] = c
	r.logger.Info("connection registered", "conn_id", id, "role", role)
	return evicted, nil
}

// Unregister removes a connection from its role set and clears its
// auxiliary state. Unregistering an absent connection is a no-op. The
// returned bool reports whether this connection still held its registry
// entry; an evicted connection whose id has been taken over by a
// replacement returns false.
func (r *Registry) Unregister(c *Conn) bool {
	role := c.Role()
	id := c.ID()

	r.mu.Lock()

	if cancel, ok := r.heartbeats[c]; ok {
		delete(r.heartbeats, c)
		defer cancel()
	}

	removed := false
	if set, ok := r.roles[role]; ok {
		if cur, ok := set[id]; ok && cur == c {
			delete(set, id)
			removed = true
		}
	}
	r.mu.Unlock()

	if removed {
		r.logger.Info("connection unregistered", "conn_id", id, "role", role)
	}
	return removed
}

// SetHeartbeat records the heartbeat cancel function for a connection.
// Any previous heartbeat is cancelled first.
func (r *Registry) SetHeartbeat(c *Conn, cancel func()) {
	r.mu.Lock()
	prev := r.heartbeats[c]
	r.heartbeats[c] = cancel
	r.mu.Unlock()

	if prev != nil {
		prev()
	}
}

// FindByRole returns a snapshot of the connections in a role set.
func (r *Registry) FindByRole(role Role) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.roles[role]
	conns := make([]*Conn, 0, len(set))
	for _, c := range set {
		conns = append(conns, c)
	}
	return conns
}

// FindByID looks up a connection by role and id.
func (r *Registry) FindByID(role Role, id string) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.roles[role][id]
	return c, ok
}

// Producers returns a snapshot of every producer-family connection.
func (r *Registry) Producers() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var conns []*Conn
	for _, role := range []Role{RoleProducer, RoleProducerMultiMonitor, RoleProducerDualScreen} {
		for _, c := range r.roles[role] {
			conns = append(conns, c)
		}
	}
	return conns
}

// FindProducer looks up a producer-family connection by id across all
// producer roles.
func (r *Registry) FindProducer(id string) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, role := range []Role{RoleProducer, RoleProducerMultiMonitor, RoleProducerDualScreen} {
		if c, ok := r.roles[role][id]; ok {
			return c, true
		}
	}
	return nil, false
}

// Multicast marshals v once and delivers it to every connection in the
// role set. Delivery is best-effort per recipient: a failed or dropped
// send is logged and never aborts delivery to the others. Returns the
// number of successful enqueues.
func (r *Registry) Multicast(role Role, v any) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("marshal multicast message: %w", err)
	}
	return r.MulticastRaw(role, data), nil
}

// MulticastRaw delivers pre-marshaled bytes to every connection in the
// role set (used for pass-through broadcast).
func (r *Registry) MulticastRaw(role Role, data []byte) int {
	delivered := 0
	for _, c := range r.FindByRole(role) {
		if err := c.SendRaw(data); err != nil {
			r.logger.Warn("multicast send failed",
				"role", role,
				"conn_id", c.ID(),
				"error", err,
			)
			continue
		}
		delivered++
	}
	return delivered
}

// Stats returns current per-role membership counts.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return Stats{
		Producers:            len(r.roles[RoleProducer]),
		MultiMonitorProducer: len(r.roles[RoleProducerMultiMonitor]),
		DualScreenProducers:  len(r.roles[RoleProducerDualScreen]),
		Spawners:             len(r.roles[RoleSpawner]),
		Consumers:            len(r.roles[RoleConsumer]),
	}
}
