// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package agentclient is the orchestrator-side RPC client for a single
// agent: per-call deadlines and retries over the HTTP surface agent.Server
// exposes, grounded on networking/sender.Sender's interface-first client
// shape and networking/timeout.Manager's per-operation duration registry,
// generalized from request-ID correlation to per-call-kind deadlines
// since netproof's RPCs are synchronous request/response, not
// correlated async messages.
package agentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/luxfi/netproof/agent"
)

// Deadlines holds the per-call-kind timeout budget (spec §5: "every RPC
// has a finite timeout (handshake 10s, start 30s, status 10s, results
// 60s)").
type Deadlines struct {
	Handshake time.Duration
	Start     time.Duration
	Status    time.Duration
	Results   time.Duration
}

// DefaultDeadlines matches spec §5 exactly.
func DefaultDeadlines() Deadlines {
	return Deadlines{
		Handshake: 10 * time.Second,
		Start:     30 * time.Second,
		Status:    10 * time.Second,
		Results:   60 * time.Second,
	}
}

// API is the set of RPCs the orchestrator issues against a single agent,
// factored out of *Client so orchestrator-side fan-out can be exercised
// against a generated mock instead of a live HTTP round trip, the same
// interface-first split networking/sender.Sender draws between the
// concrete sender and its sendermock stand-in.
type API interface {
	Handshake(ctx context.Context, req agent.HandshakeRequest) (agent.HandshakeResponse, error)
	StartRun(ctx context.Context, req agent.StartRunRequest) (agent.StartRunResponse, error)
	StatusPoll(ctx context.Context, runID string) (agent.RunStatusResponse, error)
	StopRun(ctx context.Context, runID string) (agent.StopRunResponse, error)
	GetResults(ctx context.Context, req agent.GetResultsRequest) (agent.GetResultsResponse, error)
	Health(ctx context.Context) (agent.HealthResponse, error)
}

// Client is the serialized RPC client for one agent: the orchestrator
// issues handshake -> start -> polls -> results against a single Client
// instance per agent, never concurrently (spec §5: "RPCs to a single
// agent ... are serialised per-agent").
type Client struct {
	baseURL   string
	http      *http.Client
	deadlines Deadlines
}

// New builds a Client targeting an agent's api_base_url.
func New(baseURL string, deadlines Deadlines) *Client {
	return &Client{
		baseURL:   baseURL,
		http:      &http.Client{},
		deadlines: deadlines,
	}
}

// retry wraps one RPC attempt with cenkalti/backoff's exponential
// strategy (the teacher pack's own usage style — NewExponentialBackOff
// plus Retry), bounded by the call's own deadline context so a retry
// storm never outlives the caller's budget.
func retry(ctx context.Context, fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	if deadline, ok := ctx.Deadline(); ok {
		policy.MaxElapsedTime = time.Until(deadline)
	}
	return backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return &backoff.PermanentError{Err: err}
		}
		return fn()
	}, policy)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("agentclient: %s %s returned %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Handshake calls POST /handshake with a 10s deadline (spec §6, §5).
func (c *Client) Handshake(ctx context.Context, req agent.HandshakeRequest) (agent.HandshakeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.deadlines.Handshake)
	defer cancel()

	var resp agent.HandshakeResponse
	err := retry(ctx, func() error {
		return c.do(ctx, http.MethodPost, "/handshake", req, &resp)
	})
	return resp, err
}

// StartRun calls POST /runs with a 30s deadline.
func (c *Client) StartRun(ctx context.Context, req agent.StartRunRequest) (agent.StartRunResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.deadlines.Start)
	defer cancel()

	var resp agent.StartRunResponse
	err := c.do(ctx, http.MethodPost, "/runs", req, &resp)
	return resp, err
}

// StatusPoll calls GET /runs/{id} with a 10s deadline.
func (c *Client) StatusPoll(ctx context.Context, runID string) (agent.RunStatusResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.deadlines.Status)
	defer cancel()

	var resp agent.RunStatusResponse
	err := retry(ctx, func() error {
		return c.do(ctx, http.MethodGet, "/runs/"+runID, nil, &resp)
	})
	return resp, err
}

// StopRun calls POST /runs/{id}/stop, honored within the caller's own
// grace-period context rather than the client's fixed deadlines.
func (c *Client) StopRun(ctx context.Context, runID string) (agent.StopRunResponse, error) {
	var resp agent.StopRunResponse
	err := c.do(ctx, http.MethodPost, "/runs/"+runID+"/stop", nil, &resp)
	return resp, err
}

// GetResults calls POST /runs/{id}/results with a 60s deadline.
func (c *Client) GetResults(ctx context.Context, req agent.GetResultsRequest) (agent.GetResultsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.deadlines.Results)
	defer cancel()

	var resp agent.GetResultsResponse
	err := c.do(ctx, http.MethodPost, "/runs/"+req.RunID+"/results", req, &resp)
	return resp, err
}

// Health calls GET /health, best-effort (spec §4.1: "none fatal").
func (c *Client) Health(ctx context.Context) (agent.HealthResponse, error) {
	var resp agent.HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, &resp)
	return resp, err
}

var _ API = (*Client)(nil)
