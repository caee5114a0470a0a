// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublishThenList(t *testing.T) {
	r := NewMemoryRegistry(0)
	ctx := context.Background()

	require.NoError(t, r.Publish(ctx, Registration{
		AgentID:       "agent-1",
		APIBaseURL:    "http://127.0.0.1:8080",
		P2PListenAddr: "127.0.0.1:9000",
		Version:       "1.0.0",
		Status:        "ready",
	}))

	regs, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	require.Equal(t, "agent-1", regs[0].AgentID)
}

func TestHeartbeatUnknownAgent(t *testing.T) {
	r := NewMemoryRegistry(0)
	err := r.Heartbeat(context.Background(), "nope")
	require.ErrorIs(t, err, ErrUnknownAgent)
}

func TestTTLExpiryRemovesFromList(t *testing.T) {
	r := NewMemoryRegistry(10 * time.Millisecond)
	ctx := context.Background()

	clock := time.Now()
	r.now = func() time.Time { return clock }

	require.NoError(t, r.Publish(ctx, Registration{AgentID: "agent-1"}))

	clock = clock.Add(20 * time.Millisecond)
	regs, err := r.List(ctx)
	require.NoError(t, err)
	require.Empty(t, regs)
}

func TestHeartbeatRefreshesTTL(t *testing.T) {
	r := NewMemoryRegistry(10 * time.Millisecond)
	ctx := context.Background()

	clock := time.Now()
	r.now = func() time.Time { return clock }

	require.NoError(t, r.Publish(ctx, Registration{AgentID: "agent-1"}))

	clock = clock.Add(8 * time.Millisecond)
	require.NoError(t, r.Heartbeat(ctx, "agent-1"))

	clock = clock.Add(8 * time.Millisecond)
	regs, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, regs, 1)
}

func TestDeregister(t *testing.T) {
	r := NewMemoryRegistry(0)
	ctx := context.Background()
	require.NoError(t, r.Publish(ctx, Registration{AgentID: "agent-1"}))
	require.NoError(t, r.Deregister(ctx, "agent-1"))

	regs, err := r.List(ctx)
	require.NoError(t, err)
	require.Empty(t, regs)

	err = r.Deregister(ctx, "agent-1")
	require.ErrorIs(t, err, ErrUnknownAgent)
}
