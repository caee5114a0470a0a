// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package agent

import (
	"sync"

	"github.com/luxfi/netproof/proof"
)

// AddressObserver tracks the agent's own externally-observed v4/v6
// addresses, learned from inbound connect-back attempts, feeding the
// connectivity verifier's Fallback sentinel logic (spec §4.2, "A Fallback
// sentinel address (0.0.0.0:0) means the endpoint omitted v4").
type AddressObserver struct {
	mu   sync.RWMutex
	v4   string
	v6   string
	seen map[string]struct{}
}

// NewAddressObserver returns an observer with no addresses yet learned;
// both families default to the Fallback sentinel until an inbound
// connect-back attempt reveals a real external address.
func NewAddressObserver() *AddressObserver {
	return &AddressObserver{
		v4:   proof.FallbackAddr,
		v6:   proof.FallbackAddr,
		seen: make(map[string]struct{}),
	}
}

// RecordObserved records an externally-visible address for the given IP
// version, learned from an inbound connection.
func (o *AddressObserver) RecordObserved(version proof.IPVersion, addr string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen[addr] = struct{}{}
	switch version {
	case proof.IPv4:
		o.v4 = addr
	case proof.IPv6:
		o.v6 = addr
	}
}

// ListenAddress returns the best-known external address for a version,
// or the Fallback sentinel if none has been observed.
func (o *AddressObserver) ListenAddress(version proof.IPVersion) string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	switch version {
	case proof.IPv6:
		return o.v6
	default:
		return o.v4
	}
}

// HasV6 reports whether a real (non-Fallback) v6 address has been
// observed, used to decide whether v6 connect-back attempts should even
// be scheduled (spec §4.2: "IPv6 is attempted only if both endpoints
// advertised a v6 listen address").
func (o *AddressObserver) HasV6() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.v6 != proof.FallbackAddr
}
