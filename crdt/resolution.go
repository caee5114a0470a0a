// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crdt

import "github.com/luxfi/netproof/proof"

// resolutionStrategy scores conflict resolution for one CRDT type from
// its concurrent-pair count and whether convergence was achieved,
// matching spec §4.4 step 4's heuristic scoring: "detection of concurrent
// pair categories and the presence of convergence". Adding a CRDT type is
// adding a table entry, not a type-switch branch (spec §9, "Polymorphism
// over CRDT semantics").
type resolutionStrategy func(concurrentPairs int, converged bool) bool

// resolutionStrategies maps each CrdtType to the strategy that scores its
// conflict resolution. Every strategy returns true ("resolution outcome
// consistent with the CRDT type") whenever the run converged; per spec,
// the verifier does not re-execute CRDT semantics, it only attests that
// *some* valid resolution converged.
var resolutionStrategies = map[proof.CrdtType]resolutionStrategy{
	// OR-Set: "add wins over concurrent remove" — any concurrent pairs
	// are expected and benign as long as convergence held.
	proof.CrdtOrSet: func(_ int, converged bool) bool { return converged },
	// G-Counter: "merge by max per origin" — monotonic, always resolves.
	proof.CrdtGCounter: func(_ int, converged bool) bool { return converged },
	// PN-Counter: "inc-dec merge" — same as G-Counter, symmetric merge.
	proof.CrdtPnCounter: func(_ int, converged bool) bool { return converged },
	// LWW-Register: "highest timestamp wins" — concurrent writes must
	// still resolve to a single winner; convergence is the only signal
	// available without re-executing timestamp comparison.
	proof.CrdtLwwReg: func(_ int, converged bool) bool { return converged },
	// PeerCache: an OR-Set variant, same resolution rule.
	proof.CrdtPeerCache: func(_ int, converged bool) bool { return converged },
}

// ScoreConflictResolution looks up the strategy for crdtType and applies
// it; an unknown CrdtType is treated as unresolved.
func ScoreConflictResolution(crdtType proof.CrdtType, concurrentPairs int, converged bool) bool {
	strategy, ok := resolutionStrategies[crdtType]
	if !ok {
		return false
	}
	return strategy(concurrentPairs, converged)
}
