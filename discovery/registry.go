// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package discovery is the agent registry the orchestrator reads to
// bootstrap which agents exist for a run (spec §6, "Registry
// (discovery)"). The wire-level registry (etcd/Consul/whatever) is
// explicitly external to this spec; Registry is the interface boundary,
// the way networking/router/stub.go marks a boundary the node repository
// owns rather than consensus.
package discovery

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultTTL is how long a registration is valid without a heartbeat
// (spec §6: "a TTL (default 120 s)").
const DefaultTTL = 120 * time.Second

// DefaultHeartbeatInterval is the cadence agents are expected to
// re-publish at (spec §6: "a heartbeat cadence (default every 30 s)").
const DefaultHeartbeatInterval = 30 * time.Second

// ErrUnknownAgent is returned when an operation names an agent the
// registry has no (unexpired) record for.
var ErrUnknownAgent = errors.New("discovery: unknown or expired agent")

// GossipStatsSummary is the optional gossip snapshot an agent may publish
// alongside its registration, for discovery-time visibility before the
// gossip verifier's own push-based ingest runs.
type GossipStatsSummary struct {
	ActiveViewSize int
	SuspectCount   int
}

// Registration is one agent's published discovery record (spec §6:
// "{agent_id, api_base_url, p2p_listen_addr, version, status,
// gossip_stats?}").
type Registration struct {
	AgentID       string
	APIBaseURL    string
	P2PListenAddr string
	Version       string
	Status        string
	GossipStats   *GossipStatsSummary
	registeredAt  time.Time
	lastHeartbeat time.Time
}

// Registry is the interface the orchestrator bootstraps discovery
// through. A production deployment backs this with etcd/Consul/whatever;
// the transport is explicitly out of scope for this spec.
type Registry interface {
	Publish(ctx context.Context, reg Registration) error
	Heartbeat(ctx context.Context, agentID string) error
	List(ctx context.Context) ([]Registration, error)
	Deregister(ctx context.Context, agentID string) error
}

// MemoryRegistry is an in-process Registry with TTL-based expiry, letting
// the orchestrator and its tests run without a real discovery backend.
type MemoryRegistry struct {
	mu   sync.RWMutex
	ttl  time.Duration
	now  func() time.Time
	byID map[string]Registration
}

// NewMemoryRegistry builds a MemoryRegistry with the given TTL (pass 0
// for DefaultTTL).
func NewMemoryRegistry(ttl time.Duration) *MemoryRegistry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryRegistry{
		ttl:  ttl,
		now:  time.Now,
		byID: make(map[string]Registration),
	}
}

// Publish upserts an agent's registration, stamping its heartbeat time.
func (r *MemoryRegistry) Publish(_ context.Context, reg Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	reg.registeredAt = now
	reg.lastHeartbeat = now
	r.byID[reg.AgentID] = reg
	return nil
}

// Heartbeat refreshes an existing registration's TTL clock.
func (r *MemoryRegistry) Heartbeat(_ context.Context, agentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.byID[agentID]
	if !ok {
		return ErrUnknownAgent
	}
	reg.lastHeartbeat = r.now()
	r.byID[agentID] = reg
	return nil
}

// List returns every non-expired registration.
func (r *MemoryRegistry) List(_ context.Context) ([]Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()

	var out []Registration
	for id, reg := range r.byID {
		if now.Sub(reg.lastHeartbeat) > r.ttl {
			delete(r.byID, id)
			continue
		}
		out = append(out, reg)
	}
	return out, nil
}

// Deregister removes an agent's registration immediately.
func (r *MemoryRegistry) Deregister(_ context.Context, agentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[agentID]; !ok {
		return ErrUnknownAgent
	}
	delete(r.byID, agentID)
	return nil
}
