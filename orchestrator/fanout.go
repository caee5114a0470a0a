// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/luxfi/netproof/agent"
	"github.com/luxfi/netproof/agentclient"
	"github.com/luxfi/netproof/scenario"
)

// maxConcurrentStarts bounds how many StartRun RPCs run in flight at once,
// generalizing the teacher's bounded-concurrency fan-out framing (spec §5)
// to an explicit errgroup limit rather than an unbounded goroutine per
// agent.
const maxConcurrentStarts = 16

// StartAll publishes a run to every agent currently listed in the
// registry, fanning out concurrently with golang.org/x/sync/errgroup and
// collecting per-agent success/failure into an agent.StartRunResult (spec
// §4.1: "caller receives a StartRunResult enumerating success/failure per
// agent").
func (o *Orchestrator) StartAll(ctx context.Context, runID string, spec scenario.ScenarioSpec, deadlines agentclient.Deadlines) (agent.StartRunResult, error) {
	regs, err := o.registry.List(ctx)
	if err != nil {
		return agent.StartRunResult{}, err
	}

	peers := make([]string, 0, len(regs))
	for _, r := range regs {
		peers = append(peers, r.AgentID)
	}

	var mu sync.Mutex
	result := agent.StartRunResult{FailedAgents: make(map[string]string)}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentStarts)

	for _, reg := range regs {
		reg := reg
		group.Go(func() error {
			client := o.newClient(reg.APIBaseURL, deadlines)
			resp, err := client.StartRun(groupCtx, agent.StartRunRequest{
				RunID:      runID,
				Scenario:   spec,
				AgentRole:  "participant",
				PeerAgents: peers,
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.FailedAgents[reg.AgentID] = err.Error()
			case !resp.Success:
				result.FailedAgents[reg.AgentID] = resp.Error
			default:
				result.SuccessfulAgents = append(result.SuccessfulAgents, reg.AgentID)
			}
			return nil
		})
	}

	// Every per-agent error is captured into FailedAgents rather than
	// propagated, so one unreachable agent never aborts the fan-out for
	// the rest (spec §4.1); group.Wait() only ever returns a non-nil error
	// if a goroutine body itself returned one, which never happens here.
	_ = group.Wait()

	return result, nil
}
