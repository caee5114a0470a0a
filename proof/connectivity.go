// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

// CrossValidation records whether two agents agree on the existence of a
// connection between them: A's matrix says it reached B, and B's matrix
// says it reached A.
type CrossValidation struct {
	A     AgentID `json:"a"`
	B     AgentID `json:"b"`
	Agree bool    `json:"agree"`
}

// NetworkConnectivityProof attests, from ObserverID's point of view, which
// agents were expected to be reachable, which were actually observed, the
// full pairwise connectivity matrix, and the cross-validation outcome for
// every pair.
type NetworkConnectivityProof struct {
	ObserverID         AgentID                     `json:"observer_id"`
	ExpectedPeers      map[AgentID]struct{}        `json:"expected_peers"`
	ObservedPeers      map[AgentID]struct{}        `json:"observed_peers"`
	ConnectivityMatrix map[AgentID]map[AgentID]struct{} `json:"connectivity_matrix"`
	CrossValidations   []CrossValidation           `json:"cross_validations"`
	Attestation        Attestation                 `json:"attestation"`
}

// ObservedSubsetOfExpected reports invariant P2/§3:
// expected_peers ⊇ observed_peers.
func (p NetworkConnectivityProof) ObservedSubsetOfExpected() bool {
	for id := range p.ObservedPeers {
		if _, ok := p.ExpectedPeers[id]; !ok {
			return false
		}
	}
	return true
}

// AllCrossValidationsAgree reports whether every recorded pair agreed.
func (p NetworkConnectivityProof) AllCrossValidationsAgree() bool {
	for _, cv := range p.CrossValidations {
		if !cv.Agree {
			return false
		}
	}
	return true
}
