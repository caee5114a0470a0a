// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crdt

import "github.com/luxfi/netproof/proof"

// ComputeStateHash hashes a replica's serializable state into a
// StateHash, grounded on crdt_verification.rs::compute_state_hash.
func ComputeStateHash(state any) (proof.StateHash, error) {
	h, err := proof.ContentHash(state)
	if err != nil {
		return proof.StateHash{}, err
	}
	return proof.StateHash(h), nil
}
