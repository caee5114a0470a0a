// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package connectivity

import "github.com/luxfi/netproof/proof"

// CrossValidationTolerance bounds how many disagreeing pairs are
// tolerated before a proof fails (spec §4.2 step 5: "no cross-validation
// disagreement above the scenario's tolerance").
type CrossValidationTolerance struct {
	MaxDisagreements int
}

// Passes implements spec §4.2 step 5's pass predicate: observed peers
// equal expected peers, and cross-validation disagreement stays within
// tolerance. The "every pair in the required method set has a successful
// path" clause is enforced by the caller, which only adds an edge to the
// connectivity matrix once some method has succeeded.
func Passes(p proof.NetworkConnectivityProof, tol CrossValidationTolerance) bool {
	if !setsEqual(p.ObservedPeers, p.ExpectedPeers) {
		return false
	}

	disagreements := 0
	for _, cv := range p.CrossValidations {
		if !cv.Agree {
			disagreements++
		}
	}
	return disagreements <= tol.MaxDisagreements
}

func setsEqual(a, b map[proof.AgentID]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// IsFallbackAddress reports whether addr is the Fallback sentinel
// (0.0.0.0:0) meaning the endpoint omitted a v4 listen address — spec
// §4.2: "the verifier counts this as a missing capability, not a
// failure".
func IsFallbackAddress(addr string) bool {
	return addr == proof.FallbackAddr
}
